package store

import (
	"context"
	"testing"
	"time"

	"github.com/aaronzipp/sussie-baka/internal/models"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestLobbyTTL(t *testing.T) {
	c := &clock{t: time.Unix(1000, 0)}
	s := NewLobbyStore(10*time.Second, c.now)
	s.Set(models.LobbyRecord{Code: "AAAAAA", HostName: "a", PlayerCount: 1, MaxPlayers: 10})
	s.Set(models.LobbyRecord{Code: "BBBBBB", HostName: "b", PlayerCount: 2, MaxPlayers: 10})

	c.advance(8 * time.Second)
	// heartbeat keeps B alive
	s.Set(models.LobbyRecord{Code: "BBBBBB", HostName: "b", PlayerCount: 3, MaxPlayers: 10})
	c.advance(3 * time.Second)

	if n := s.Sweep(); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
	if s.Exists("AAAAAA") {
		t.Fatalf("stale lobby survived")
	}
	got := s.List()
	if len(got) != 1 || got[0] != (models.LobbySummary{ID: "BBBBBB", Host: "b", Count: 3, Max: 10}) {
		t.Fatalf("list = %+v", got)
	}
}

func TestLobbyExactlyAtTTLSurvives(t *testing.T) {
	c := &clock{t: time.Unix(0, 0)}
	s := NewLobbyStore(10*time.Second, c.now)
	s.Set(models.LobbyRecord{Code: "CCCCCC"})
	c.advance(10 * time.Second)
	if s.Sweep() != 0 {
		t.Fatalf("lobby evicted at exactly the TTL")
	}
	c.advance(time.Millisecond)
	if s.Sweep() != 1 {
		t.Fatalf("lobby kept past the TTL")
	}
}

func TestStaleLobbyHiddenBeforeSweep(t *testing.T) {
	c := &clock{t: time.Unix(0, 0)}
	s := NewLobbyStore(10*time.Second, c.now)
	s.Set(models.LobbyRecord{Code: "STALE1", HostName: "h"})
	c.advance(12 * time.Second)

	if got := s.List(); len(got) != 0 {
		t.Fatalf("stale lobby listed: %+v", got)
	}
	if s.Exists("STALE1") {
		t.Fatalf("stale lobby still exists")
	}
	if _, ok := s.Get("STALE1"); ok {
		t.Fatalf("stale lobby still returned by Get")
	}
	// a heartbeat revives it before the sweeper runs
	s.Set(models.LobbyRecord{Code: "STALE1", HostName: "h"})
	if got, ok := s.Get("STALE1"); !ok || got.HostName != "h" {
		t.Fatalf("revived lobby = %+v %v", got, ok)
	}
}

func TestListOrdered(t *testing.T) {
	s := NewLobbyStore(0, nil)
	for _, code := range []string{"ZZZZZZ", "AAAAAA", "MMMMMM"} {
		s.Set(models.LobbyRecord{Code: code})
	}
	got := s.List()
	if got[0].ID != "AAAAAA" || got[1].ID != "MMMMMM" || got[2].ID != "ZZZZZZ" {
		t.Fatalf("order = %+v", got)
	}
}

func TestRunSweeperStops(t *testing.T) {
	s := NewLobbyStore(time.Nanosecond, nil)
	s.Set(models.LobbyRecord{Code: "GONE00"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunSweeper(ctx, time.Millisecond)
		close(done)
	}()
	deadline := time.Now().Add(2 * time.Second)
	for s.Exists("GONE00") {
		if time.Now().After(deadline) {
			t.Fatalf("sweeper never ran")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("sweeper did not stop")
	}
}

type peer struct{ sent [][]byte }

func (p *peer) Send(b []byte) error {
	p.sent = append(p.sent, b)
	return nil
}

func TestPresenceLatestWins(t *testing.T) {
	s := NewPresenceStore()
	old, cur := &peer{}, &peer{}
	s.Register("alice", old)
	s.Register("alice", cur)

	if s.Remove("alice", old) {
		t.Fatalf("stale connection removed the new registration")
	}
	got, ok := s.Get("alice")
	if !ok || got != cur {
		t.Fatalf("presence = %v %v", got, ok)
	}
	if !s.Remove("alice", cur) {
		t.Fatalf("current connection not removed")
	}
	if s.Count() != 0 {
		t.Fatalf("count = %d", s.Count())
	}
}
