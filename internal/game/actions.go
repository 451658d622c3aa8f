package game

import (
	"strings"
	"time"

	"github.com/aaronzipp/sussie-baka/internal/geometry"
	"github.com/aaronzipp/sussie-baka/internal/models"
	"github.com/google/uuid"
)

// CanMove reports whether movement input is accepted in the current phase
func (s *State) CanMove() bool {
	return s.Phase == models.PhaseLobby || s.Phase == models.PhasePlaying
}

// StepPlayer integrates one frame of movement along dir. Dead players move
// as ghosts.
func (s *State) StepPlayer(id string, dir models.Point) {
	p := s.Player(id)
	if p == nil || !s.CanMove() {
		return
	}
	speed := PlayerSpeed * s.Settings.PlayerSpeed
	delta := geometry.Normalize(dir).Scale(speed)
	if delta == (models.Point{}) {
		return
	}
	p.SetPos(geometry.ResolveCollision(s.Level.Walls, p.Pos(), delta, p.IsDead))
	if delta.X != 0 {
		p.FacingRight = delta.X > 0
	}
}

// SetPosition applies a reported position for a player
func (s *State) SetPosition(id string, pos models.Point, facingRight bool) bool {
	p := s.Player(id)
	if p == nil || !s.CanMove() {
		return false
	}
	p.SetPos(pos)
	p.FacingRight = facingRight
	return true
}

// NearbyBody returns the first unreported body within InteractRadius of pos
func (s *State) NearbyBody(pos models.Point) *models.Player {
	for _, p := range s.Players {
		if p.IsBody() && geometry.Within(pos, p.DeathPos(), InteractRadius) {
			return p
		}
	}
	return nil
}

func (s *State) nearButton(pos models.Point) bool {
	return geometry.Within(pos, s.Level.EmergencyButton, InteractRadius)
}

func (s *State) nearSabotage(pos models.Point) bool {
	if !s.Sabotage.Active() {
		return false
	}
	spot, ok := s.Level.SabotageSpots[s.Sabotage.Type]
	return ok && geometry.Within(pos, spot, InteractRadius)
}

// NearbyTask returns the first incomplete assigned task within reach
func (s *State) NearbyTask(id string) (models.Task, bool) {
	p := s.Player(id)
	if p == nil {
		return models.Task{}, false
	}
	for _, t := range s.Tasks[id] {
		if !t.Completed && geometry.Within(p.Pos(), t.Location, InteractRadius) {
			return t, true
		}
	}
	return models.Task{}, false
}

// KillTarget returns who killerID would kill right now, ignoring cooldown
func (s *State) KillTarget(killerID string) *models.Player {
	k := s.Player(killerID)
	if k == nil || k.IsDead || k.Role != models.RoleImpostor || s.Phase != models.PhasePlaying {
		return nil
	}
	return geometry.ClosestPlayerWithin(k, s.Players, KillRadius)
}

// Kill resolves an impostor kill. An empty targetID picks the nearest victim.
func (s *State) Kill(killerID, targetID string) bool {
	if s.Cooldown(killerID) > 0 {
		return false
	}
	nearest := s.KillTarget(killerID)
	if nearest == nil {
		return false
	}
	target := nearest
	if targetID != "" && targetID != nearest.ID {
		// any living victim in reach is accepted, not only the nearest
		target = s.Player(targetID)
		k := s.Player(killerID)
		if target == nil || target.IsDead || target.ID == killerID ||
			!geometry.Within(k.Pos(), target.Pos(), KillRadius) {
			return false
		}
	}
	at := target.Pos()
	s.applyKill(killerID, target.ID, at)
	s.cooldowns[killerID] = s.Settings.KillCooldown
	s.kills[killerID]++
	s.emit(Event{Kind: EventPlayerKilled, PlayerID: killerID, TargetID: target.ID, Pos: at})
	s.checkWin()
	return true
}

func (s *State) applyKill(killerID, targetID string, at models.Point) {
	if t := s.Player(targetID); t != nil && !t.IsDead {
		t.IsDead = true
		t.IsBodyReported = false
		t.SetPos(at)
		t.DeathX, t.DeathY = at.X, at.Y
	}
	if k := s.Player(killerID); k != nil {
		k.SetPos(at)
	}
}

// Vent moves an impostor to the partner of the vent it stands on
func (s *State) Vent(id string) bool {
	p := s.Player(id)
	if p == nil || p.IsDead || p.Role != models.RoleImpostor || s.Phase != models.PhasePlaying {
		return false
	}
	from, ok := s.Level.NearestVent(p.Pos())
	if !ok {
		return false
	}
	to, ok := s.Level.Vent(from.Link)
	if !ok {
		return false
	}
	p.SetPos(to.Pos)
	s.emit(Event{Kind: EventVented, PlayerID: id, TargetID: to.ID, Pos: to.Pos})
	return true
}

// TriggerSabotage starts a sabotage if none is running
func (s *State) TriggerSabotage(id string, t models.SabotageType) bool {
	p := s.Player(id)
	if p == nil || p.Role != models.RoleImpostor || s.Phase != models.PhasePlaying {
		return false
	}
	if !t.Valid() || s.Sabotage.Active() {
		return false
	}
	s.Sabotage = models.Sabotage{Type: t, Timer: SabotageSeconds}
	s.emit(Event{Kind: EventSabotageChanged, PlayerID: id, Sabotage: s.Sabotage})
	return true
}

// FixSabotage clears the active sabotage for a living player at its console
func (s *State) FixSabotage(id string) bool {
	p := s.Player(id)
	if p == nil || p.IsDead || s.Phase != models.PhasePlaying || !s.nearSabotage(p.Pos()) {
		return false
	}
	s.Sabotage = models.Sabotage{Type: models.SabotageNone}
	s.emit(Event{Kind: EventSabotageChanged, PlayerID: id, Sabotage: s.Sabotage})
	return true
}

// CompleteTask marks one of id's tasks done and advances shared progress
func (s *State) CompleteTask(id, taskID string) bool {
	p := s.Player(id)
	if p == nil || p.IsDead || p.Role != models.RoleCrewmate || s.Phase != models.PhasePlaying {
		return false
	}
	tasks := s.Tasks[id]
	for i := range tasks {
		t := &tasks[i]
		if t.ID != taskID || t.Completed {
			continue
		}
		if !geometry.Within(p.Pos(), t.Location, InteractRadius) {
			return false
		}
		t.Completed = true
		s.tasksDone[id]++
		s.emit(Event{Kind: EventTaskCompleted, PlayerID: id, TargetID: taskID})
		s.addProgress(id, taskID)
		return true
	}
	return false
}

// AddTaskProgress credits one task increment without a task record. Bots use it.
func (s *State) AddTaskProgress(id string) bool {
	if s.Phase != models.PhasePlaying {
		return false
	}
	s.addProgress(id, "")
	return true
}

func (s *State) addProgress(id, taskID string) {
	s.Progress = roundProgress(s.Progress + TaskIncrement)
	s.emit(Event{Kind: EventTaskProgress, PlayerID: id, TargetID: taskID, Progress: s.Progress})
	s.checkWin()
}

// AddChat appends a chat line from a player in the lobby or a meeting
func (s *State) AddChat(id, text string, now time.Time) (models.ChatMessage, bool) {
	text = strings.TrimSpace(text)
	p := s.Player(id)
	if p == nil || text == "" {
		return models.ChatMessage{}, false
	}
	if s.Phase != models.PhaseLobby && s.Phase != models.PhaseMeeting {
		return models.ChatMessage{}, false
	}
	msg := models.ChatMessage{
		ID:          uuid.New().String(),
		PlayerID:    p.ID,
		PlayerName:  p.Name,
		PlayerColor: p.Color,
		Text:        text,
		IsDead:      p.IsDead,
		Timestamp:   now.UnixMilli(),
	}
	s.appendChat(msg)
	return msg, true
}

func (s *State) appendChat(msg models.ChatMessage) {
	s.Chat = append(s.Chat, msg)
	cp := msg
	s.emit(Event{Kind: EventChat, PlayerID: msg.PlayerID, Chat: &cp})
}
