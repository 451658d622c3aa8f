package models

import "time"

// LobbyRecord is a joinable session advertised in the directory
type LobbyRecord struct {
	Code        string
	HostName    string
	PlayerCount int
	MaxPlayers  int
	LastSeen    time.Time
}

// LobbySummary is the wire shape of a LOBBY_LIST entry
type LobbySummary struct {
	ID    string `json:"id"`
	Host  string `json:"host"`
	Count int    `json:"count"`
	Max   int    `json:"max"`
}

// Summary converts a record to its listing form
func (l LobbyRecord) Summary() LobbySummary {
	return LobbySummary{ID: l.Code, Host: l.HostName, Count: l.PlayerCount, Max: l.MaxPlayers}
}
