package store

import "sync"

// Peer is a directory connection that relayed messages can be written to
type Peer interface {
	Send(b []byte) error
}

// PresenceStore maps player names to their directory connection
type PresenceStore struct {
	peers map[string]Peer
	mu    sync.RWMutex
}

// NewPresenceStore creates an empty presence store
func NewPresenceStore() *PresenceStore {
	return &PresenceStore{peers: make(map[string]Peer)}
}

// Register points name at p. The latest registration wins.
func (s *PresenceStore) Register(name string, p Peer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.peers[name] = p
}

// Get returns the connection registered for name
func (s *PresenceStore) Get(name string) (Peer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.peers[name]
	return p, ok
}

// Remove drops name only if it still points at p, so a stale connection
// closing cannot evict a newer registration
func (s *PresenceStore) Remove(name string, p Peer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.peers[name]; ok && cur == p {
		delete(s.peers, name)
		return true
	}
	return false
}

// Count returns the number of registered names
func (s *PresenceStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.peers)
}
