package game

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/aaronzipp/sussie-baka/internal/models"
)

func TestMirrorFollowsHostRound(t *testing.T) {
	host := newLobby(t, 3, models.DefaultSettings(), 9)
	host.Settings.ImpostorCount = 1
	host.StartGame("p0", models.RoleImpostor)
	started := host.Drain()[0]

	mirror := NewState(models.DefaultSettings(), rand.New(rand.NewSource(1)))
	mirror.ApplyGameStarted(started.Players, started.Tasks, *started.Settings)
	if mirror.Phase != models.PhaseReveal {
		t.Fatalf("mirror phase = %s", mirror.Phase)
	}
	if len(mirror.Tasks["p1"]) != host.Settings.TaskCount {
		t.Fatalf("mirror tasks = %v", mirror.Tasks)
	}
	mirror.Advance(RevealSeconds, false)
	host.Advance(RevealSeconds, true)

	host.SetCooldown("p0", 0)
	host.Player("p0").SetPos(models.Point{X: 1500, Y: 1000})
	host.Player("p1").SetPos(models.Point{X: 1520, Y: 1000})
	host.Drain()
	host.Kill("p0", "p1")
	var kill Event
	for _, e := range host.Drain() {
		if e.Kind == EventPlayerKilled {
			kill = e
		}
	}
	mirror.ApplyKill(kill.PlayerID, kill.TargetID, kill.Pos)
	if p := mirror.Player("p1"); !p.IsDead || p.DeathPos() != host.Player("p1").DeathPos() {
		t.Fatalf("mirror victim = %+v", p)
	}

	mirror.ApplyGameEnded(models.RoleImpostor)
	mirror.ApplyGameEnded(models.RoleCrewmate)
	if mirror.Winner != models.RoleImpostor {
		t.Fatalf("second game-ended overrode the first")
	}
}

func TestMirrorMeetingResumesLocally(t *testing.T) {
	s := newRound(t, 4)
	s.ApplyMeetingStarted("p1", s.Snapshot())
	if s.Phase != models.PhaseMeeting {
		t.Fatalf("phase = %s", s.Phase)
	}
	s.Advance(s.Settings.VotingTime+1, false)
	if s.Meeting.Result != nil {
		t.Fatalf("mirror concluded the meeting itself")
	}
	s.ApplyMeetingEnded(models.VoteResult{Ejected: "p2", Tally: map[string]int{"p2": 3}}, s.Snapshot())
	if !s.Player("p2").IsDead {
		t.Fatalf("ejection not applied")
	}
	s.Advance(ResultsSeconds, false)
	if s.Phase != models.PhasePlaying {
		t.Fatalf("phase = %s after results", s.Phase)
	}
}

func TestGenerateRoomCode(t *testing.T) {
	code := GenerateRoomCode()
	if len(code) != RoomCodeLength {
		t.Fatalf("len(%q) = %d", code, len(code))
	}
	for _, c := range code {
		if !strings.ContainsRune(RoomCodeChars, c) {
			t.Fatalf("code %q has %q", code, c)
		}
	}
}
