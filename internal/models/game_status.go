package models

// Phase represents the current high-level state of a session
type Phase string

const (
	PhaseLobby   Phase = "LOBBY"
	PhaseReveal  Phase = "REVEAL"
	PhasePlaying Phase = "PLAYING"
	PhaseMeeting Phase = "MEETING"
	PhaseEnded   Phase = "ENDED"
)

// InRound reports whether roles are assigned and the round is still running
func (p Phase) InRound() bool {
	return p == PhaseReveal || p == PhasePlaying || p == PhaseMeeting
}
