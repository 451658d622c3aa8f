package session

import (
	"time"

	"github.com/aaronzipp/sussie-baka/internal/game"
	"github.com/aaronzipp/sussie-baka/internal/models"
	"github.com/aaronzipp/sussie-baka/internal/protocol"
)

// authority decides what an action does: the host mutates the canonical
// state, a client asks the host to. It is fixed when the session is built.
type authority interface {
	authoritative() bool
	startGame(id string, override models.Role) bool
	updateSettings(set models.Settings) bool
	kill(id, targetID string) bool
	report(id string) bool
	callMeeting(id string) bool
	sabotage(id string, t models.SabotageType) bool
	fix(id string) bool
	vote(id, targetID string) bool
	completeTask(id, taskID string) bool
	addProgress(id string) bool
	chat(id, text string) bool
}

// hostAuthority runs actions against the canonical state. The host applies
// its own actions and every client intent through it.
type hostAuthority struct {
	state *game.State
	now   func() time.Time
}

func (h hostAuthority) authoritative() bool { return true }

func (h hostAuthority) startGame(id string, override models.Role) bool {
	return h.state.StartGame(id, override)
}

func (h hostAuthority) updateSettings(set models.Settings) bool {
	return h.state.UpdateSettings(set)
}

func (h hostAuthority) kill(id, targetID string) bool {
	return h.state.Kill(id, targetID)
}

func (h hostAuthority) report(id string) bool {
	return h.state.Report(id)
}

func (h hostAuthority) callMeeting(id string) bool {
	return h.state.CallMeeting(id)
}

func (h hostAuthority) sabotage(id string, t models.SabotageType) bool {
	return h.state.TriggerSabotage(id, t)
}

func (h hostAuthority) fix(id string) bool {
	return h.state.FixSabotage(id)
}

func (h hostAuthority) vote(id, targetID string) bool {
	return h.state.CastVote(id, targetID)
}

func (h hostAuthority) completeTask(id, taskID string) bool {
	return h.state.CompleteTask(id, taskID)
}

func (h hostAuthority) addProgress(id string) bool {
	return h.state.AddTaskProgress(id)
}

func (h hostAuthority) chat(id, text string) bool {
	_, ok := h.state.AddChat(id, text, h.now())
	return ok
}

// clientAuthority turns actions into intents for the host. The latest
// position always goes out first so the host judges proximity where the
// player actually stands.
type clientAuthority struct {
	s *Session
}

func (c clientAuthority) authoritative() bool { return false }

func (c clientAuthority) intent(t string, payload any) bool {
	c.s.sendMove()
	return c.s.sendHost(t, payload) == nil
}

func (c clientAuthority) startGame(string, models.Role) bool { return false }

func (c clientAuthority) updateSettings(models.Settings) bool { return false }

func (c clientAuthority) kill(_, targetID string) bool {
	return c.intent(protocol.MsgAction, protocol.Action{Action: protocol.ActionKill, TargetID: targetID})
}

func (c clientAuthority) report(string) bool {
	return c.intent(protocol.MsgAction, protocol.Action{Action: protocol.ActionReport})
}

func (c clientAuthority) callMeeting(string) bool {
	return c.intent(protocol.MsgAction, protocol.Action{Action: protocol.ActionMeeting})
}

func (c clientAuthority) sabotage(id string, t models.SabotageType) bool {
	p := c.s.state.Player(id)
	if p == nil || p.Role != models.RoleImpostor || !t.Valid() {
		return false
	}
	return c.intent(protocol.MsgAction, protocol.Action{Action: protocol.ActionSabotage, Sabotage: t})
}

func (c clientAuthority) fix(string) bool {
	return c.intent(protocol.MsgAction, protocol.Action{Action: protocol.ActionFix})
}

func (c clientAuthority) vote(_, targetID string) bool {
	if c.s.state.Phase != models.PhaseMeeting {
		return false
	}
	return c.intent(protocol.MsgVote, protocol.Vote{TargetID: targetID})
}

func (c clientAuthority) completeTask(_, taskID string) bool {
	return c.intent(protocol.MsgTaskComplete, protocol.TaskComplete{TaskID: taskID})
}

// addProgress is bot-only and bots live on the host
func (c clientAuthority) addProgress(string) bool { return false }

func (c clientAuthority) chat(_, text string) bool {
	if text == "" {
		return false
	}
	return c.intent(protocol.MsgChat, protocol.Chat{Text: text})
}
