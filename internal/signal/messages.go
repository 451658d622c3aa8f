// Package signal is the directory relay's wire protocol: flat JSON messages
// tagged by a type field, the fire-and-forget relay, and a client for
// game sessions.
package signal

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aaronzipp/sussie-baka/internal/models"
)

// Directory message type constants
const (
	TypeRegisterPlayer        = "REGISTER_PLAYER"
	TypeRegisterLobby         = "REGISTER_LOBBY"
	TypeGetLobbies            = "GET_LOBBIES"
	TypeLobbyList             = "LOBBY_LIST"
	TypeSendInvite            = "SEND_INVITE"
	TypeInviteReceived        = "INVITE_RECEIVED"
	TypeFriendRequest         = "FRIEND_REQUEST"
	TypeFriendRequestReceived = "FRIEND_REQUEST_RECEIVED"
	TypeFriendAccept          = "FRIEND_ACCEPT"
	TypeFriendAccepted        = "FRIEND_ACCEPTED"
)

// ErrNoType is returned for messages without a type field
var ErrNoType = errors.New("signal: message has no type")

// Message is every directory message. Only the fields of Type are set.
type Message struct {
	Type string `json:"type"`

	Name string `json:"name,omitempty"`

	Code        string `json:"code,omitempty"`
	HostName    string `json:"hostName,omitempty"`
	PlayerCount int    `json:"playerCount,omitempty"`
	MaxPlayers  int    `json:"maxPlayers,omitempty"`

	Lobbies []models.LobbySummary `json:"lobbies,omitempty"`

	TargetName string `json:"targetName,omitempty"`
	RoomCode   string `json:"roomCode,omitempty"`

	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Decode parses one directory message
func Decode(b []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return Message{}, fmt.Errorf("decode directory message: %w", err)
	}
	if m.Type == "" {
		return Message{}, ErrNoType
	}
	return m, nil
}

// Encode serializes a directory message
func Encode(m Message) ([]byte, error) {
	return json.Marshal(m)
}

// LobbyRecord converts a REGISTER_LOBBY message to a directory record
func (m Message) LobbyRecord() models.LobbyRecord {
	return models.LobbyRecord{
		Code:        m.Code,
		HostName:    m.HostName,
		PlayerCount: m.PlayerCount,
		MaxPlayers:  m.MaxPlayers,
	}
}

// lobbyList is LOBBY_LIST on the wire. Unlike Message it always carries
// the lobbies array, empty or not.
type lobbyList struct {
	Type    string                `json:"type"`
	Lobbies []models.LobbySummary `json:"lobbies"`
}

// EncodeLobbyList builds the reply to GET_LOBBIES
func EncodeLobbyList(lobbies []models.LobbySummary) ([]byte, error) {
	if lobbies == nil {
		lobbies = []models.LobbySummary{}
	}
	return json.Marshal(lobbyList{Type: TypeLobbyList, Lobbies: lobbies})
}
