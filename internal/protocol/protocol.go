// Package protocol is the host/client sync contract: the message catalog,
// its payloads and the envelope codec.
package protocol

import "encoding/json"

// host -> clients
const (
	MsgJoinAccepted   = "join-accepted"
	MsgJoinRejected   = "join-rejected"
	MsgPlayerJoined   = "player-joined"
	MsgPlayerLeft     = "player-left"
	MsgSettings       = "settings"
	MsgGameStarted    = "game-started"
	MsgRoster         = "roster"
	MsgMeetingStarted = "meeting-started"
	MsgVoteCast       = "vote-cast"
	MsgMeetingEnded   = "meeting-ended"
	MsgPlayerKilled   = "player-killed"
	MsgSabotage       = "sabotage"
	MsgTaskProgress   = "task-progress"
	MsgChatMessage    = "chat-message"
	MsgGameEnded      = "game-ended"
)

// client -> host intents
const (
	MsgJoin         = "join"
	MsgMove         = "move"
	MsgAction       = "action"
	MsgVote         = "vote"
	MsgTaskComplete = "task-complete"
	MsgChat         = "chat"
)

// Cadence is counted in frames of the session tick
const (
	FrameHz         = 60
	MoveEveryFrames = 3
	RosterEvery     = 6

	// InterpolationFactor is the share of the remaining distance a remote
	// player covers toward its latest target each frame
	InterpolationFactor = 0.2
)

// Envelope is the framing of every message on a peer connection
type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"` // raw payload bytes
}
