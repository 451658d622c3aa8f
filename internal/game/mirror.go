package game

import "github.com/aaronzipp/sussie-baka/internal/models"

// The Apply methods update a client mirror from host broadcasts. They skip
// precondition checks since the host already ran them, and emit the same
// events the host saw so sinks behave identically in every mode.

// ApplyRoster replaces the whole roster, as on join acceptance
func (s *State) ApplyRoster(players []models.Player) {
	s.Players = make([]*models.Player, len(players))
	for i := range players {
		p := players[i]
		s.Players[i] = &p
	}
}

// ApplyPlayerJoined adds or replaces a single roster entry
func (s *State) ApplyPlayerJoined(p models.Player) {
	if existing := s.Player(p.ID); existing != nil {
		*existing = p
		return
	}
	np := p
	s.Players = append(s.Players, &np)
	s.emit(Event{Kind: EventPlayerJoined, PlayerID: p.ID, Player: &p})
}

// ApplyPlayerLeft removes a player the host dropped
func (s *State) ApplyPlayerLeft(id string) {
	for i, p := range s.Players {
		if p.ID == id {
			s.Players = append(s.Players[:i], s.Players[i+1:]...)
			s.emit(Event{Kind: EventPlayerLeft, PlayerID: id})
			return
		}
	}
}

// ApplySettings installs host settings
func (s *State) ApplySettings(set models.Settings) {
	s.Settings = set
	cp := set
	s.emit(Event{Kind: EventSettingsChanged, Settings: &cp})
}

// ApplyGameStarted enters the reveal with the host's roles and tasks
func (s *State) ApplyGameStarted(players []models.Player, tasks map[string][]models.Task, set models.Settings) {
	s.ApplyRoster(players)
	s.Settings = set
	s.Tasks = cloneTasks(tasks)
	s.cooldowns = make(map[string]float64)
	s.kills = make(map[string]int)
	s.tasksDone = make(map[string]int)
	for _, p := range s.Players {
		s.cooldowns[p.ID] = set.KillCooldown
	}
	s.beginReveal()
	cp := set
	s.emit(Event{Kind: EventGameStarted, Players: s.Snapshot(), Tasks: cloneTasks(s.Tasks), Settings: &cp})
}

// ApplyLiveness copies death and report flags from a host roster, leaving
// positions alone
func (s *State) ApplyLiveness(players []models.Player) {
	for _, up := range players {
		p := s.Player(up.ID)
		if p == nil {
			continue
		}
		p.IsDead = up.IsDead
		p.IsBodyReported = up.IsBodyReported
		p.DeathX, p.DeathY = up.DeathX, up.DeathY
		p.Role = up.Role
	}
}

// ApplyMeetingStarted opens the meeting announced by the host
func (s *State) ApplyMeetingStarted(callerID string, players []models.Player) {
	if s.Phase == models.PhaseEnded {
		return
	}
	s.ApplyLiveness(players)
	s.openMeeting(callerID)
	s.emit(Event{Kind: EventMeetingStarted, PlayerID: callerID, Players: s.Snapshot()})
}

// ApplyVote records a vote the host accepted
func (s *State) ApplyVote(voterID, targetID string) {
	if s.Phase != models.PhaseMeeting || s.Meeting.Votes == nil {
		return
	}
	s.Meeting.Votes[voterID] = targetID
	s.emit(Event{Kind: EventVoteCast, PlayerID: voterID, TargetID: targetID})
}

// ApplyMeetingEnded shows the host's tally and starts the results countdown
func (s *State) ApplyMeetingEnded(result models.VoteResult, players []models.Player) {
	if s.Phase != models.PhaseMeeting {
		return
	}
	s.ApplyLiveness(players)
	s.applyMeetingResult(&result)
	s.emit(Event{Kind: EventMeetingEnded, Result: &result, Players: s.Snapshot()})
}

// ApplyKill marks the victim dead where the host saw it
func (s *State) ApplyKill(killerID, targetID string, at models.Point) {
	s.applyKill(killerID, targetID, at)
	if s.Player(killerID) != nil {
		s.kills[killerID]++
	}
	s.emit(Event{Kind: EventPlayerKilled, PlayerID: killerID, TargetID: targetID, Pos: at})
}

// ApplySabotage installs the host's sabotage state
func (s *State) ApplySabotage(sab models.Sabotage) {
	if !sab.Active() {
		sab = models.Sabotage{Type: models.SabotageNone}
	}
	s.Sabotage = sab
	s.emit(Event{Kind: EventSabotageChanged, Sabotage: sab})
}

// ApplyTaskProgress sets shared progress and marks the task done if it is ours
func (s *State) ApplyTaskProgress(progress float64, playerID, taskID string) {
	s.Progress = progress
	if taskID != "" {
		tasks := s.Tasks[playerID]
		for i := range tasks {
			if tasks[i].ID == taskID && !tasks[i].Completed {
				tasks[i].Completed = true
				s.tasksDone[playerID]++
				s.emit(Event{Kind: EventTaskCompleted, PlayerID: playerID, TargetID: taskID})
			}
		}
	}
	s.emit(Event{Kind: EventTaskProgress, PlayerID: playerID, TargetID: taskID, Progress: progress})
}

// ApplyChat appends a relayed chat line
func (s *State) ApplyChat(msg models.ChatMessage) {
	s.appendChat(msg)
}

// ApplyGameEnded finishes the round with the host's verdict
func (s *State) ApplyGameEnded(winner models.Role) {
	s.end(winner)
}
