package game

import "github.com/aaronzipp/sussie-baka/internal/models"

// EventKind names a state change
type EventKind string

const (
	EventPlayerJoined    EventKind = "player-joined"
	EventPlayerLeft      EventKind = "player-left"
	EventSettingsChanged EventKind = "settings-changed"
	EventGameStarted     EventKind = "game-started"
	EventPlayStarted     EventKind = "play-started"
	EventMeetingStarted  EventKind = "meeting-started"
	EventVoteCast        EventKind = "vote-cast"
	EventMeetingEnded    EventKind = "meeting-ended"
	EventRoundResumed    EventKind = "round-resumed"
	EventPlayerKilled    EventKind = "player-killed"
	EventVented          EventKind = "vented"
	EventSabotageChanged EventKind = "sabotage-changed"
	EventTaskCompleted   EventKind = "task-completed"
	EventTaskProgress    EventKind = "task-progress"
	EventChat            EventKind = "chat"
	EventGameEnded       EventKind = "game-ended"
)

// Event records one state change in the order it happened. Only the fields
// relevant to Kind are set.
type Event struct {
	Kind     EventKind
	PlayerID string
	TargetID string
	Pos      models.Point

	Player   *models.Player
	Players  []models.Player
	Tasks    map[string][]models.Task
	Settings *models.Settings
	Sabotage models.Sabotage
	Progress float64
	Result   *models.VoteResult
	Chat     *models.ChatMessage
	Winner   models.Role
}

func (s *State) emit(e Event) {
	s.events = append(s.events, e)
}

// Drain returns and clears the queued events
func (s *State) Drain() []Event {
	ev := s.events
	s.events = nil
	return ev
}

// Snapshot copies the roster in order
func (s *State) Snapshot() []models.Player {
	out := make([]models.Player, len(s.Players))
	for i, p := range s.Players {
		out[i] = *p
	}
	return out
}
