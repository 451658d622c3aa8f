package protocol

import "github.com/aaronzipp/sussie-baka/internal/models"

// Host broadcasts

type JoinAccepted struct {
	Room     string          `json:"room"`
	PlayerID string          `json:"playerId"`
	Players  []models.Player `json:"players"`
	Settings models.Settings `json:"settings"`
}

type JoinRejected struct {
	Reason string `json:"reason"`
}

type PlayerJoined struct {
	Player models.Player `json:"player"`
}

type PlayerLeft struct {
	PlayerID string `json:"playerId"`
}

type SettingsChanged struct {
	Settings models.Settings `json:"settings"`
}

// GameStarted carries roles and every crewmate's task list. Every recipient
// enters the reveal on receipt.
type GameStarted struct {
	Players  []models.Player          `json:"players"`
	Tasks    map[string][]models.Task `json:"tasks"`
	Settings models.Settings          `json:"settings"`
}

// Position is one player's place on the map. It is both the client's
// periodic move and an entry of the host's roster snapshot.
type Position struct {
	ID          string  `json:"id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	FacingRight bool    `json:"facingRight"`
}

type Roster struct {
	Players []Position `json:"players"`
}

type MeetingStarted struct {
	CallerID string          `json:"callerId"`
	Players  []models.Player `json:"players"`
}

type VoteCast struct {
	VoterID  string `json:"voterId"`
	TargetID string `json:"targetId"`
}

type MeetingEnded struct {
	Result  models.VoteResult `json:"results"`
	Players []models.Player   `json:"players"`
}

type PlayerKilled struct {
	KillerID string  `json:"killerId"`
	TargetID string  `json:"targetId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

type SabotageChanged struct {
	Sabotage models.Sabotage `json:"sabotage"`
}

type TaskProgress struct {
	Progress float64 `json:"progress"`
	PlayerID string  `json:"playerId,omitempty"`
	TaskID   string  `json:"taskId,omitempty"`
}

type ChatMessage struct {
	Message models.ChatMessage `json:"message"`
}

type GameEnded struct {
	Winner models.Role `json:"winner"`
}

// Client intents

type Join struct {
	Profile models.Profile `json:"profile"`
}

// ActionKind is the discrete intent of an Action message
type ActionKind string

const (
	ActionKill     ActionKind = "KILL"
	ActionReport   ActionKind = "REPORT"
	ActionMeeting  ActionKind = "MEETING"
	ActionSabotage ActionKind = "SABOTAGE"
	ActionFix      ActionKind = "FIX_SABOTAGE"
)

type Action struct {
	Action   ActionKind          `json:"action"`
	TargetID string              `json:"targetId,omitempty"`
	Sabotage models.SabotageType `json:"sabotage,omitempty"`
}

type Vote struct {
	TargetID string `json:"targetId"`
}

type TaskComplete struct {
	TaskID string `json:"taskId"`
}

type Chat struct {
	Text string `json:"text"`
}
