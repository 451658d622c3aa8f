package signal

import (
	"log"
	"sync/atomic"

	"github.com/aaronzipp/sussie-baka/internal/store"
)

var debug atomic.Bool

// SetDebug turns verbose per-message logging on or off
func SetDebug(on bool) {
	debug.Store(on)
}

// Relay applies directory messages against the presence and lobby stores.
// It never looks at game state and never waits on a recipient.
type Relay struct {
	lobbies   *store.LobbyStore
	presences *store.PresenceStore
	logger    *log.Logger
}

// NewRelay creates a relay over the given stores
func NewRelay(lobbies *store.LobbyStore, presences *store.PresenceStore, logger *log.Logger) *Relay {
	if logger == nil {
		logger = log.Default()
	}
	return &Relay{lobbies: lobbies, presences: presences, logger: logger}
}

// Handle processes one message from p. name is the presence p registered
// so far; the returned name replaces it.
func (r *Relay) Handle(p store.Peer, name string, m Message) string {
	if debug.Load() {
		r.logger.Printf("relay: %s from %q", m.Type, name)
	}
	switch m.Type {
	case TypeRegisterPlayer:
		if m.Name == "" {
			return name
		}
		if name != "" && name != m.Name {
			r.presences.Remove(name, p)
		}
		r.presences.Register(m.Name, p)
		return m.Name

	case TypeRegisterLobby:
		if m.Code == "" {
			return name
		}
		r.lobbies.Set(m.LobbyRecord())

	case TypeGetLobbies:
		b, err := EncodeLobbyList(r.lobbies.List())
		if err != nil {
			r.logger.Printf("relay: encode lobby list: %v", err)
			return name
		}
		if err := p.Send(b); err != nil && debug.Load() {
			r.logger.Printf("relay: send lobby list: %v", err)
		}

	case TypeSendInvite:
		r.deliver(m.TargetName, Message{Type: TypeInviteReceived, HostName: m.HostName, RoomCode: m.RoomCode})

	case TypeFriendRequest:
		r.deliver(m.To, Message{Type: TypeFriendRequestReceived, From: m.From})

	case TypeFriendAccept:
		r.deliver(m.To, Message{Type: TypeFriendAccepted, From: m.From})

	default:
		if debug.Load() {
			r.logger.Printf("relay: ignoring message type %q", m.Type)
		}
	}
	return name
}

// Disconnect forgets the presence of a closed connection
func (r *Relay) Disconnect(p store.Peer, name string) {
	if name != "" {
		r.presences.Remove(name, p)
	}
}

// deliver forwards m to name if it is online. Messages for absent names are
// dropped.
func (r *Relay) deliver(name string, m Message) {
	peer, ok := r.presences.Get(name)
	if !ok {
		if debug.Load() {
			r.logger.Printf("relay: %s for offline %q dropped", m.Type, name)
		}
		return
	}
	b, err := Encode(m)
	if err != nil {
		r.logger.Printf("relay: encode %s: %v", m.Type, err)
		return
	}
	if err := peer.Send(b); err != nil && debug.Load() {
		r.logger.Printf("relay: send %s to %q: %v", m.Type, name, err)
	}
}
