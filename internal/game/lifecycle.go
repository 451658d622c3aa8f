package game

import (
	"maps"

	"github.com/aaronzipp/sussie-baka/internal/models"
)

// StartGame moves the lobby into the role reveal. initiator may carry a
// pre-selected role override; the impostor budget is adjusted around it.
func (s *State) StartGame(initiator string, override models.Role) bool {
	if s.Phase != models.PhaseLobby || len(s.Players) < MinPlayers {
		return false
	}
	n := len(s.Players)
	budget := min(max(s.Settings.ImpostorCount, 1), n-1)

	shuffled := make([]*models.Player, n)
	for i, j := range s.rng.Perm(n) {
		shuffled[i] = s.Players[j]
	}
	s.Players = shuffled

	pinned := ""
	if override != models.RoleNone {
		if p := s.Player(initiator); p != nil {
			pinned = p.ID
			p.Role = override
			if override == models.RoleImpostor {
				budget--
			}
		}
	}
	for _, p := range s.Players {
		if p.ID == pinned {
			continue
		}
		if budget > 0 {
			p.Role = models.RoleImpostor
			budget--
		} else {
			p.Role = models.RoleCrewmate
		}
	}

	s.Tasks = make(map[string][]models.Task)
	s.cooldowns = make(map[string]float64)
	s.kills = make(map[string]int)
	s.tasksDone = make(map[string]int)
	for _, p := range s.Players {
		p.X = SpawnX + (s.rng.Float64()*2-1)*SpawnJitter
		p.Y = SpawnY + (s.rng.Float64()*2-1)*SpawnJitter
		p.IsDead = false
		p.IsBodyReported = false
		p.DeathX, p.DeathY = 0, 0
		s.cooldowns[p.ID] = s.Settings.KillCooldown
		if p.Role == models.RoleCrewmate {
			s.Tasks[p.ID] = s.sampleTasks(s.Settings.TaskCount)
		}
	}

	s.beginReveal()
	set := s.Settings
	s.emit(Event{
		Kind:     EventGameStarted,
		PlayerID: initiator,
		Players:  s.Snapshot(),
		Tasks:    cloneTasks(s.Tasks),
		Settings: &set,
	})
	return true
}

func (s *State) beginReveal() {
	s.Sabotage = models.Sabotage{Type: models.SabotageNone}
	s.Meeting = models.Meeting{}
	s.Progress = 0
	s.Winner = models.RoleNone
	s.Chat = nil
	s.Phase = models.PhaseReveal
	s.revealTimer = RevealSeconds
}

func (s *State) sampleTasks(count int) []models.Task {
	template := s.Level.Tasks
	count = min(count, len(template))
	out := make([]models.Task, 0, count)
	for _, i := range s.rng.Perm(len(template))[:count] {
		t := template[i]
		t.Completed = false
		out = append(out, t)
	}
	return out
}

func cloneTasks(in map[string][]models.Task) map[string][]models.Task {
	out := make(map[string][]models.Task, len(in))
	for id, ts := range in {
		out[id] = append([]models.Task(nil), ts...)
	}
	return out
}

// Report starts a meeting if reporter is alive and next to an unreported body
func (s *State) Report(reporterID string) bool {
	if s.Phase != models.PhasePlaying {
		return false
	}
	p := s.Player(reporterID)
	if p == nil || p.IsDead || s.NearbyBody(p.Pos()) == nil {
		return false
	}
	s.startMeeting(reporterID)
	return true
}

// CallMeeting starts a meeting from the emergency button
func (s *State) CallMeeting(callerID string) bool {
	if s.Phase != models.PhasePlaying {
		return false
	}
	p := s.Player(callerID)
	if p == nil || p.IsDead || !s.nearButton(p.Pos()) {
		return false
	}
	s.startMeeting(callerID)
	return true
}

func (s *State) startMeeting(callerID string) {
	s.openMeeting(callerID)
	s.emit(Event{Kind: EventMeetingStarted, PlayerID: callerID, Players: s.Snapshot()})
}

func (s *State) openMeeting(callerID string) {
	for _, p := range s.Players {
		if p.IsDead {
			p.IsBodyReported = true
		}
	}
	s.Meeting = models.Meeting{
		Votes:    make(map[string]string),
		Timer:    s.Settings.VotingTime,
		CalledBy: callerID,
	}
	s.Chat = nil
	s.Phase = models.PhaseMeeting
}

// Votes returns a copy of the current meeting's votes
func (s *State) Votes() map[string]string {
	return maps.Clone(s.Meeting.Votes)
}
