package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/aaronzipp/sussie-baka/internal/game"
	"github.com/aaronzipp/sussie-baka/internal/models"
	"github.com/aaronzipp/sussie-baka/internal/protocol"
	"github.com/aaronzipp/sussie-baka/internal/transport"
	"github.com/google/uuid"
)

// codeAttempts bounds how many generated codes Host tries before giving up
const codeAttempts = 5

// Host opens a room and returns the authoritative session for it. An empty
// code asks for a generated one.
func Host(ctx context.Context, cfg Config, code string) (*Session, error) {
	code = game.NormalizeRoomCode(code)
	l, code, err := listen(ctx, cfg.Network, code)
	if err != nil {
		return nil, fmt.Errorf("host: %w", err)
	}

	s := newSession(ModeHost, cfg)
	s.code = code
	s.listener = l
	s.auth = hostAuthority{state: s.state, now: s.cfg.Now}
	s.selfID = uuid.New().String()
	p := models.NewPlayer(s.selfID, cfg.Profile)
	p.IsHost = true
	s.state.AddPlayer(p)

	go s.acceptLoop(l)
	s.logger.Printf("session %s: hosting as %s", code, s.selfID)
	s.announce()
	s.beat = AnnounceInterval
	return s, nil
}

func listen(ctx context.Context, n transport.Network, code string) (transport.Listener, string, error) {
	if code != "" {
		l, err := transport.Listen(ctx, n, code)
		return l, code, err
	}
	var err error
	for range codeAttempts {
		code = game.GenerateRoomCode()
		var l transport.Listener
		l, err = transport.Listen(ctx, n, code)
		if err == nil {
			return l, code, nil
		}
		if !errors.Is(err, transport.ErrRoomTaken) {
			break
		}
	}
	return nil, "", err
}

func (s *Session) acceptLoop(l transport.Listener) {
	for c := range l.Accept() {
		if !s.push(inbound{kind: inOpen, conn: c}) {
			c.Close()
			return
		}
		go s.pump(c)
	}
	s.push(inbound{kind: inListenerClosed})
}

func (s *Session) hostReceive(m inbound) {
	switch m.kind {
	case inOpen:
		s.pending[m.conn.ID()] = m.conn
	case inClosed:
		s.dropConn(m.conn)
	case inListenerClosed:
		s.fail(fmt.Errorf("room %s: %w", s.code, transport.ErrClosed))
	case inData:
		env, err := protocol.DecodeEnvelope(m.data)
		if err != nil {
			s.logger.Printf("session %s: dropping message from %s: %v", s.code, m.conn.ID(), err)
			return
		}
		pid, joined := s.connPlayer[m.conn.ID()]
		if !joined {
			if env.T == protocol.MsgJoin {
				s.admit(m.conn, env)
			} else if debug.Load() {
				s.logger.Printf("session %s: %s sent %s before joining", s.code, m.conn.ID(), env.T)
			}
			return
		}
		s.hostIntent(pid, env)
	}
}

func (s *Session) admit(c transport.Conn, env protocol.Envelope) {
	join, err := protocol.DecodePayload[protocol.Join](env)
	if err != nil {
		s.logger.Printf("session %s: bad join from %s: %v", s.code, c.ID(), err)
		return
	}
	reason := ""
	switch {
	case s.state.Phase != models.PhaseLobby:
		reason = "game in progress"
	case len(s.state.Players) >= s.state.Settings.MaxPlayers:
		reason = "room full"
	}
	if reason != "" {
		s.sendTo(c, protocol.MsgJoinRejected, protocol.JoinRejected{Reason: reason})
		delete(s.pending, c.ID())
		c.Close()
		s.logger.Printf("session %s: rejected %q: %s", s.code, join.Profile.Name, reason)
		return
	}

	// earlier changes belong to the players already in the room
	s.flush()

	id := uuid.New().String()
	p := s.state.AddPlayer(models.NewPlayer(id, join.Profile))
	delete(s.pending, c.ID())
	s.peers[id] = c
	s.connPlayer[c.ID()] = id
	s.sendTo(c, protocol.MsgJoinAccepted, protocol.JoinAccepted{
		Room:     s.code,
		PlayerID: id,
		Players:  s.state.Snapshot(),
		Settings: s.state.Settings,
	})
	s.logger.Printf("session %s: %s joined as %s", s.code, p.Name, id)
}

func (s *Session) dropConn(c transport.Conn) {
	delete(s.pending, c.ID())
	pid, ok := s.connPlayer[c.ID()]
	if !ok {
		return
	}
	delete(s.connPlayer, c.ID())
	delete(s.peers, pid)
	delete(s.prev, pid)
	s.state.RemovePlayer(pid)
	s.logger.Printf("session %s: player %s disconnected", s.code, pid)
}

// hostIntent applies a client's intent on its behalf
func (s *Session) hostIntent(pid string, env protocol.Envelope) {
	h := hostAuthority{state: s.state, now: s.cfg.Now}
	if debug.Load() {
		s.logger.Printf("session %s: intent %s from %s", s.code, env.T, pid)
	}
	var err error
	switch env.T {
	case protocol.MsgMove:
		var m protocol.Position
		if m, err = protocol.DecodePayload[protocol.Position](env); err == nil {
			s.state.SetPosition(pid, models.Point{X: m.X, Y: m.Y}, m.FacingRight)
		}
	case protocol.MsgAction:
		var a protocol.Action
		if a, err = protocol.DecodePayload[protocol.Action](env); err == nil {
			switch a.Action {
			case protocol.ActionKill:
				h.kill(pid, a.TargetID)
			case protocol.ActionReport:
				h.report(pid)
			case protocol.ActionMeeting:
				h.callMeeting(pid)
			case protocol.ActionSabotage:
				h.sabotage(pid, a.Sabotage)
			case protocol.ActionFix:
				h.fix(pid)
			default:
				err = fmt.Errorf("unknown action %q", a.Action)
			}
		}
	case protocol.MsgVote:
		var v protocol.Vote
		if v, err = protocol.DecodePayload[protocol.Vote](env); err == nil {
			h.vote(pid, v.TargetID)
		}
	case protocol.MsgTaskComplete:
		var t protocol.TaskComplete
		if t, err = protocol.DecodePayload[protocol.TaskComplete](env); err == nil {
			h.completeTask(pid, t.TaskID)
		}
	case protocol.MsgChat:
		var c protocol.Chat
		if c, err = protocol.DecodePayload[protocol.Chat](env); err == nil {
			h.chat(pid, c.Text)
		}
	default:
		err = fmt.Errorf("unexpected message type %q", env.T)
	}
	if err != nil {
		s.logger.Printf("session %s: dropping intent from %s: %v", s.code, pid, err)
	}
}

// broadcastEvent sends the broadcast for a canonical state change. Changes
// clients derive on their own, like the reveal ending, send nothing.
func (s *Session) broadcastEvent(e game.Event) {
	switch e.Kind {
	case game.EventPlayerJoined:
		s.broadcast(protocol.MsgPlayerJoined, protocol.PlayerJoined{Player: *e.Player}, e.PlayerID)
	case game.EventPlayerLeft:
		s.broadcast(protocol.MsgPlayerLeft, protocol.PlayerLeft{PlayerID: e.PlayerID}, "")
	case game.EventSettingsChanged:
		s.broadcast(protocol.MsgSettings, protocol.SettingsChanged{Settings: *e.Settings}, "")
	case game.EventGameStarted:
		s.broadcast(protocol.MsgGameStarted, protocol.GameStarted{
			Players:  e.Players,
			Tasks:    e.Tasks,
			Settings: *e.Settings,
		}, "")
	case game.EventMeetingStarted:
		s.broadcast(protocol.MsgMeetingStarted, protocol.MeetingStarted{CallerID: e.PlayerID, Players: e.Players}, "")
	case game.EventVoteCast:
		s.broadcast(protocol.MsgVoteCast, protocol.VoteCast{VoterID: e.PlayerID, TargetID: e.TargetID}, "")
	case game.EventMeetingEnded:
		s.broadcast(protocol.MsgMeetingEnded, protocol.MeetingEnded{Result: *e.Result, Players: e.Players}, "")
	case game.EventPlayerKilled:
		s.broadcast(protocol.MsgPlayerKilled, protocol.PlayerKilled{
			KillerID: e.PlayerID,
			TargetID: e.TargetID,
			X:        e.Pos.X,
			Y:        e.Pos.Y,
		}, "")
	case game.EventSabotageChanged:
		s.broadcast(protocol.MsgSabotage, protocol.SabotageChanged{Sabotage: e.Sabotage}, "")
	case game.EventTaskProgress:
		s.broadcast(protocol.MsgTaskProgress, protocol.TaskProgress{
			Progress: e.Progress,
			PlayerID: e.PlayerID,
			TaskID:   e.TargetID,
		}, "")
	case game.EventChat:
		s.broadcast(protocol.MsgChatMessage, protocol.ChatMessage{Message: *e.Chat}, "")
	case game.EventGameEnded:
		s.broadcast(protocol.MsgGameEnded, protocol.GameEnded{Winner: e.Winner}, "")
	}
}

func (s *Session) broadcastRoster() {
	if len(s.peers) == 0 {
		return
	}
	r := protocol.Roster{Players: make([]protocol.Position, 0, len(s.state.Players))}
	for _, p := range s.state.Players {
		r.Players = append(r.Players, protocol.Position{ID: p.ID, X: p.X, Y: p.Y, FacingRight: p.FacingRight})
	}
	s.broadcast(protocol.MsgRoster, r, "")
}

// broadcast sends one message to every joined peer except the given player
func (s *Session) broadcast(t string, payload any, except string) {
	if len(s.peers) == 0 {
		return
	}
	b, err := protocol.Encode(t, payload)
	if err != nil {
		s.logger.Printf("session %s: broadcast %s: %v", s.code, t, err)
		return
	}
	for pid, c := range s.peers {
		if pid == except {
			continue
		}
		if err := c.Send(b); err != nil && debug.Load() {
			s.logger.Printf("session %s: send %s to %s: %v", s.code, t, pid, err)
		}
	}
}

func (s *Session) sendTo(c transport.Conn, t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		s.logger.Printf("session %s: encode %s: %v", s.code, t, err)
		return
	}
	if err := c.Send(b); err != nil {
		s.logger.Printf("session %s: send %s to %s: %v", s.code, t, c.ID(), err)
	}
}
