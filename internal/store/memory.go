package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aaronzipp/sussie-baka/internal/models"
)

// DefaultLobbyTTL is how long a lobby stays listed without a heartbeat
const DefaultLobbyTTL = 10 * time.Second

// LobbyStore manages advertised lobbies
type LobbyStore struct {
	lobbies map[string]models.LobbyRecord
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
}

// NewLobbyStore creates a new lobby store. A nil clock means time.Now.
func NewLobbyStore(ttl time.Duration, now func() time.Time) *LobbyStore {
	if ttl <= 0 {
		ttl = DefaultLobbyTTL
	}
	if now == nil {
		now = time.Now
	}
	return &LobbyStore{
		lobbies: make(map[string]models.LobbyRecord),
		ttl:     ttl,
		now:     now,
	}
}

// Get retrieves a live lobby by code. A lobby past its TTL is treated as
// gone even before the sweeper removes it.
func (s *LobbyStore) Get(code string) (models.LobbyRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lobby, exists := s.lobbies[code]
	if !exists || lobby.LastSeen.Before(s.cutoff()) {
		return models.LobbyRecord{}, false
	}
	return lobby, true
}

// Set stores a lobby and stamps its heartbeat
func (s *LobbyStore) Set(lobby models.LobbyRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lobby.LastSeen = s.now()
	s.lobbies[lobby.Code] = lobby
}

// Exists checks if a live lobby code exists
func (s *LobbyStore) Exists(code string) bool {
	_, ok := s.Get(code)
	return ok
}

// List returns the listing of every live lobby, ordered by code
func (s *LobbyStore) List() []models.LobbySummary {
	s.mu.RLock()
	cutoff := s.cutoff()
	out := make([]models.LobbySummary, 0, len(s.lobbies))
	for _, l := range s.lobbies {
		if !l.LastSeen.Before(cutoff) {
			out = append(out, l.Summary())
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *LobbyStore) cutoff() time.Time {
	return s.now().Add(-s.ttl)
}

// Sweep evicts lobbies whose heartbeat is older than the TTL and returns
// how many it removed
func (s *LobbyStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.cutoff()
	removed := 0
	for code, l := range s.lobbies {
		if l.LastSeen.Before(cutoff) {
			delete(s.lobbies, code)
			removed++
		}
	}
	return removed
}

// RunSweeper sweeps every interval until ctx is done
func (s *LobbyStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
