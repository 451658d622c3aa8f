package game

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/aaronzipp/sussie-baka/internal/models"
)

func newLobby(t *testing.T, n int, set models.Settings, seed int64) *State {
	t.Helper()
	s := NewState(set, rand.New(rand.NewSource(seed)))
	for i := 0; i < n; i++ {
		s.AddPlayer(models.NewPlayer(fmt.Sprintf("p%d", i), models.Profile{Name: fmt.Sprintf("P%d", i)}))
	}
	s.Drain()
	return s
}

// newRound starts a round, skips the reveal and pins p0 as the only
// impostor so tests can reason about roles.
func newRound(t *testing.T, n int) *State {
	t.Helper()
	set := models.DefaultSettings()
	set.ImpostorCount = 1
	s := newLobby(t, n, set, 1)
	if !s.StartGame("p0", models.RoleImpostor) {
		t.Fatalf("StartGame refused")
	}
	s.Advance(RevealSeconds, true)
	if s.Phase != models.PhasePlaying {
		t.Fatalf("phase = %s after reveal, want PLAYING", s.Phase)
	}
	s.Drain()
	return s
}

func countKind(events []Event, k EventKind) int {
	n := 0
	for _, e := range events {
		if e.Kind == k {
			n++
		}
	}
	return n
}

func TestAddPlayerDedupesNames(t *testing.T) {
	s := NewState(models.DefaultSettings(), rand.New(rand.NewSource(1)))
	a := s.AddPlayer(models.NewPlayer("a", models.Profile{Name: "Red"}))
	b := s.AddPlayer(models.NewPlayer("b", models.Profile{Name: "Red"}))
	c := s.AddPlayer(models.NewPlayer("c", models.Profile{Name: "Red"}))
	if a.Name != "Red" || b.Name != "Red 2" || c.Name != "Red 3" {
		t.Fatalf("names = %q %q %q", a.Name, b.Name, c.Name)
	}
	if got := countKind(s.Drain(), EventPlayerJoined); got != 3 {
		t.Fatalf("joined events = %d, want 3", got)
	}
}

func TestStartGameAssignsExactImpostorCount(t *testing.T) {
	for imps := 1; imps <= 3; imps++ {
		for n := imps + 1; n <= 15; n++ {
			set := models.DefaultSettings()
			set.ImpostorCount = imps
			s := newLobby(t, n, set, int64(n*10+imps))
			if !s.StartGame("p0", models.RoleNone) {
				t.Fatalf("StartGame(n=%d, imps=%d) refused", n, imps)
			}
			_, got := s.Alive()
			if got != imps {
				t.Fatalf("n=%d: impostors = %d, want %d", n, got, imps)
			}
			if s.Phase != models.PhaseReveal {
				t.Fatalf("phase = %s, want REVEAL", s.Phase)
			}
		}
	}
}

func TestStartGameHonorsOverride(t *testing.T) {
	set := models.DefaultSettings()
	set.ImpostorCount = 2
	for seed := int64(0); seed < 20; seed++ {
		s := newLobby(t, 6, set, seed)
		s.StartGame("p3", models.RoleImpostor)
		if s.Player("p3").Role != models.RoleImpostor {
			t.Fatalf("seed %d: override ignored", seed)
		}
		if _, imps := s.Alive(); imps != 2 {
			t.Fatalf("seed %d: impostors = %d, want 2", seed, imps)
		}

		s = newLobby(t, 6, set, seed)
		s.StartGame("p3", models.RoleCrewmate)
		if s.Player("p3").Role != models.RoleCrewmate {
			t.Fatalf("seed %d: crewmate override ignored", seed)
		}
		if _, imps := s.Alive(); imps != 2 {
			t.Fatalf("seed %d: impostors = %d, want 2", seed, imps)
		}
	}
}

func TestStartGameReshuffles(t *testing.T) {
	set := models.DefaultSettings()
	set.ImpostorCount = 1
	s := NewState(set, rand.New(rand.NewSource(42)))
	for i := 0; i < 8; i++ {
		s.AddPlayer(models.NewPlayer(fmt.Sprintf("p%d", i), models.Profile{Name: "x"}))
	}
	seen := make(map[string]bool)
	for round := 0; round < 20; round++ {
		s.Phase = models.PhaseLobby
		s.StartGame("p0", models.RoleNone)
		for _, p := range s.Players {
			if p.Role == models.RoleImpostor {
				seen[p.ID] = true
			}
		}
	}
	if len(seen) < 2 {
		t.Fatalf("impostor never changed across 20 rounds: %v", seen)
	}
}

func TestStartGameSetsUpRound(t *testing.T) {
	set := models.DefaultSettings()
	set.TaskCount = 3
	set.ImpostorCount = 1
	s := newLobby(t, 4, set, 3)
	s.StartGame("p0", models.RoleNone)
	for _, p := range s.Players {
		if p.X < SpawnX-SpawnJitter || p.X > SpawnX+SpawnJitter || p.Y < SpawnY-SpawnJitter || p.Y > SpawnY+SpawnJitter {
			t.Fatalf("%s spawned at (%v,%v)", p.ID, p.X, p.Y)
		}
		if s.Cooldown(p.ID) != set.KillCooldown {
			t.Fatalf("%s cooldown = %v", p.ID, s.Cooldown(p.ID))
		}
		tasks := s.Tasks[p.ID]
		if p.Role == models.RoleImpostor {
			if len(tasks) != 0 {
				t.Fatalf("impostor got %d tasks", len(tasks))
			}
			continue
		}
		if len(tasks) != 3 {
			t.Fatalf("%s got %d tasks, want 3", p.ID, len(tasks))
		}
		ids := map[string]bool{}
		for _, tk := range tasks {
			if ids[tk.ID] {
				t.Fatalf("%s got task %s twice", p.ID, tk.ID)
			}
			ids[tk.ID] = true
		}
	}
	started := s.Drain()
	if countKind(started, EventGameStarted) != 1 {
		t.Fatalf("want one game-started event, got %v", started)
	}
}

func TestStartGameNeedsLobby(t *testing.T) {
	s := newRound(t, 4)
	if s.StartGame("p0", models.RoleNone) {
		t.Fatalf("StartGame accepted mid-round")
	}
	one := newLobby(t, 1, models.DefaultSettings(), 1)
	if one.StartGame("p0", models.RoleNone) {
		t.Fatalf("StartGame accepted a single player")
	}
}

func TestEvaluateWin(t *testing.T) {
	s := newRound(t, 4)
	if w := s.EvaluateWin(); w != models.RoleNone {
		t.Fatalf("fresh round winner = %s", w)
	}
	if s.EvaluateWin() != s.EvaluateWin() {
		t.Fatalf("EvaluateWin not idempotent")
	}

	s.Player("p1").IsDead = true
	s.Player("p2").IsDead = true
	if w := s.EvaluateWin(); w != models.RoleImpostor {
		t.Fatalf("1 imp vs 1 crew winner = %s, want IMPOSTOR", w)
	}
	if a, b := s.EvaluateWin(), s.EvaluateWin(); a != b {
		t.Fatalf("EvaluateWin not idempotent: %s then %s", a, b)
	}

	s = newRound(t, 4)
	s.Player("p0").IsDead = true
	if w := s.EvaluateWin(); w != models.RoleCrewmate {
		t.Fatalf("no impostors winner = %s, want CREWMATE", w)
	}

	s = newRound(t, 4)
	s.Progress = 1
	if w := s.EvaluateWin(); w != models.RoleCrewmate {
		t.Fatalf("full progress winner = %s, want CREWMATE", w)
	}
}

func TestTallyVotes(t *testing.T) {
	tests := []struct {
		name    string
		votes   map[string]string
		ejected string
		tie     bool
	}{
		{"three way tie with skip", map[string]string{"A": "X", "B": "Y", "C": models.SkipVote}, "", true},
		{"plurality", map[string]string{"A": "X", "B": "X", "C": "Y"}, "X", false},
		{"skip wins", map[string]string{"A": models.SkipVote, "B": models.SkipVote, "C": "Y"}, "", false},
		{"no votes", map[string]string{}, "", false},
		{"two way tie", map[string]string{"A": "X", "B": "Y"}, "", true},
	}
	for _, tt := range tests {
		got := TallyVotes(tt.votes)
		if got.Ejected != tt.ejected || got.Tie != tt.tie {
			t.Fatalf("%s: got ejected=%q tie=%v, want %q %v", tt.name, got.Ejected, got.Tie, tt.ejected, tt.tie)
		}
	}
}

func TestTwentyTasksWinIndependentOfTaskCount(t *testing.T) {
	for _, taskCount := range []int{1, 5, 10} {
		s := newRound(t, 5)
		s.Settings.TaskCount = taskCount
		for i := 0; i < 19; i++ {
			s.AddTaskProgress("p1")
		}
		if s.Phase != models.PhasePlaying {
			t.Fatalf("ended early at progress %v", s.Progress)
		}
		s.AddTaskProgress("p2")
		if s.Progress != 1.0 {
			t.Fatalf("progress = %v, want exactly 1.0", s.Progress)
		}
		if s.Phase != models.PhaseEnded || s.Winner != models.RoleCrewmate {
			t.Fatalf("phase=%s winner=%s, want ENDED CREWMATE", s.Phase, s.Winner)
		}
		if got := countKind(s.Drain(), EventGameEnded); got != 1 {
			t.Fatalf("game-ended events = %d, want 1", got)
		}
	}
}

func TestCompleteTaskNeedsProximity(t *testing.T) {
	s := newRound(t, 4)
	task := s.Tasks["p1"][0]
	p := s.Player("p1")
	p.SetPos(models.Point{X: task.Location.X + 500, Y: task.Location.Y})
	if s.CompleteTask("p1", task.ID) {
		t.Fatalf("completed a task from across the map")
	}
	p.SetPos(task.Location)
	if !s.CompleteTask("p1", task.ID) {
		t.Fatalf("CompleteTask refused at the task")
	}
	if s.CompleteTask("p1", task.ID) {
		t.Fatalf("completed the same task twice")
	}
	if s.Progress != TaskIncrement {
		t.Fatalf("progress = %v, want %v", s.Progress, TaskIncrement)
	}
	if _, done := s.Stats("p1"); done != 1 {
		t.Fatalf("tasks credited = %d, want 1", done)
	}
	if s.CompleteTask("p0", task.ID) {
		t.Fatalf("impostor completed a crewmate task")
	}
}

func TestKillCooldownGatesCanKill(t *testing.T) {
	s := newRound(t, 5)
	s.SetCooldown("p0", 0)
	s.Player("p0").SetPos(models.Point{X: 1200, Y: 600})
	for i, id := range []string{"p1", "p2", "p3", "p4"} {
		s.Player(id).SetPos(models.Point{X: 1200 + float64(i+1)*10, Y: 600})
	}

	if !s.Affordances("p0").CanKill {
		t.Fatalf("CanKill false with a victim in reach and no cooldown")
	}
	if !s.Kill("p0", "") {
		t.Fatalf("Kill refused")
	}
	victim := s.Player("p1")
	if !victim.IsDead || victim.DeathPos() != (models.Point{X: 1210, Y: 600}) {
		t.Fatalf("victim = %+v", victim)
	}
	if s.Player("p0").Pos() != victim.DeathPos() {
		t.Fatalf("killer not snapped onto the body")
	}
	if s.Affordances("p0").CanKill {
		t.Fatalf("CanKill true right after a kill")
	}
	if s.Kill("p0", "") {
		t.Fatalf("second kill went through during cooldown")
	}

	dt := 1.0 / 60
	steps := int(s.Settings.KillCooldown/dt) + 2
	for i := 0; i < steps; i++ {
		s.Advance(dt, true)
	}
	a := s.Affordances("p0")
	if !a.CanKill || a.KillTarget != "p2" {
		t.Fatalf("after cooldown: %+v", a)
	}
	if kills, _ := s.Stats("p0"); kills != 1 {
		t.Fatalf("kills = %d, want 1", kills)
	}
}

func TestKillEndsGameWhenImpostorsReachParity(t *testing.T) {
	s := newRound(t, 3)
	s.SetCooldown("p0", 0)
	s.Player("p0").SetPos(models.Point{X: 1200, Y: 600})
	s.Player("p1").SetPos(models.Point{X: 1220, Y: 600})
	s.Player("p2").SetPos(models.Point{X: 2000, Y: 1400})
	s.Kill("p0", "p1")
	if s.Phase != models.PhaseEnded || s.Winner != models.RoleImpostor {
		t.Fatalf("phase=%s winner=%s", s.Phase, s.Winner)
	}
}

func TestReactorExpiryEndsGameOnce(t *testing.T) {
	s := newRound(t, 5)
	if !s.TriggerSabotage("p0", models.SabotageReactor) {
		t.Fatalf("TriggerSabotage refused")
	}
	if s.TriggerSabotage("p0", models.SabotageO2) {
		t.Fatalf("second sabotage accepted while one is active")
	}
	s.Drain()
	var events []Event
	for i := 0; i < 60*40; i++ {
		s.Advance(1.0/60, true)
		events = append(events, s.Drain()...)
	}
	if got := countKind(events, EventGameEnded); got != 1 {
		t.Fatalf("game-ended events = %d, want 1", got)
	}
	if s.Winner != models.RoleImpostor {
		t.Fatalf("winner = %s", s.Winner)
	}
}

func TestLightsExpiryDoesNotEndGame(t *testing.T) {
	s := newRound(t, 5)
	s.TriggerSabotage("p0", models.SabotageLights)
	for i := 0; i < 40; i++ {
		s.Advance(1, true)
	}
	if s.Phase != models.PhasePlaying {
		t.Fatalf("lights ended the game")
	}
}

func TestMirrorNeverEndsOnSabotage(t *testing.T) {
	s := newRound(t, 5)
	s.ApplySabotage(models.Sabotage{Type: models.SabotageO2, Timer: 1})
	s.Advance(2, false)
	if s.Phase != models.PhasePlaying {
		t.Fatalf("mirror ended the game on its own")
	}
}

func TestFixSabotage(t *testing.T) {
	s := newRound(t, 5)
	s.TriggerSabotage("p0", models.SabotageReactor)
	spot := s.Level.SabotageSpots[models.SabotageReactor]
	if s.FixSabotage("p1") {
		t.Fatalf("fixed from afar")
	}
	s.Player("p1").SetPos(spot)
	if u, _ := s.ResolveUse("p1"); u != UseFix {
		t.Fatalf("use = %s at the console, want fix", u)
	}
	if !s.FixSabotage("p1") || s.Sabotage.Active() {
		t.Fatalf("fix failed: %+v", s.Sabotage)
	}
}

func TestFixPanel(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 50; i++ {
		f := NewFixPanel(models.SabotageLights, rng)
		if f.Done() {
			t.Fatalf("lights panel opened already solved")
		}
		done := false
		for j := range f.Switches {
			if !f.Switches[j] {
				done = f.Toggle(j)
			}
		}
		if !done {
			t.Fatalf("panel not done with all switches on: %v", f.Switches)
		}
	}

	f := NewFixPanel(models.SabotageO2, rng)
	for i := 0; i < 4; i++ {
		if f.Push() {
			t.Fatalf("done after %d pushes", i+1)
		}
	}
	if !f.Push() {
		t.Fatalf("not done after 5 pushes, progress %v", f.Progress)
	}
}

func TestMeetingFlow(t *testing.T) {
	s := newRound(t, 4)
	button := s.Level.EmergencyButton
	s.Player("p1").SetPos(models.Point{X: button.X, Y: button.Y + 70})
	if !s.CallMeeting("p1") {
		t.Fatalf("CallMeeting refused next to the button")
	}
	if s.Meeting.Timer != s.Settings.VotingTime {
		t.Fatalf("meeting timer = %v", s.Meeting.Timer)
	}
	s.CastVote("p1", "p0")
	s.CastVote("p2", "p0")
	if s.CastVote("p2", "p3") {
		t.Fatalf("voted twice")
	}
	s.CastVote("p3", "p1")
	s.Advance(0.01, true)
	if s.Meeting.Result != nil {
		t.Fatalf("meeting closed with p0 still to vote")
	}
	s.CastVote("p0", "p3")
	s.Advance(0.01, true)
	if s.Meeting.Result == nil || s.Meeting.Result.Ejected != "p0" {
		t.Fatalf("result = %+v, want p0 ejected", s.Meeting.Result)
	}
	if got := s.Meeting.Result.Tally["p0"]; got != 2 {
		t.Fatalf("tally[p0] = %d, want 2", got)
	}
}

func TestMeetingEjectsAndResumes(t *testing.T) {
	s := newRound(t, 5)
	s.SetCooldown("p0", 0)
	s.Player("p0").SetPos(models.Point{X: 1500, Y: 1000})
	s.Player("p1").SetPos(models.Point{X: 1510, Y: 1000})
	s.Kill("p0", "p1")
	s.Player("p2").SetPos(models.Point{X: 1520, Y: 1010})
	if !s.Report("p2") {
		t.Fatalf("Report refused next to a body")
	}
	if !s.Player("p1").IsBodyReported {
		t.Fatalf("body not marked reported")
	}
	for _, id := range []string{"p0", "p2", "p3", "p4"} {
		target := "p0"
		if id == "p0" {
			target = "p2"
		}
		if !s.CastVote(id, target) {
			t.Fatalf("vote from %s refused", id)
		}
	}
	if s.CastVote("p1", "p0") {
		t.Fatalf("dead player voted")
	}
	s.Advance(0.01, true)
	if s.Meeting.Result == nil || s.Meeting.Result.Ejected != "p0" {
		t.Fatalf("result = %+v", s.Meeting.Result)
	}
	if !s.Player("p0").IsDead {
		t.Fatalf("ejected player still alive")
	}
	s.Advance(ResultsSeconds, true)
	if s.Phase != models.PhaseEnded || s.Winner != models.RoleCrewmate {
		t.Fatalf("phase=%s winner=%s after ejecting the only impostor", s.Phase, s.Winner)
	}
	for _, p := range s.Players {
		if p.Pos() != (models.Point{X: SpawnX, Y: SpawnY}) {
			t.Fatalf("%s not reset to spawn: %v", p.ID, p.Pos())
		}
	}
}

func TestMeetingTimeoutWithTieEjectsNobody(t *testing.T) {
	s := newRound(t, 5)
	button := s.Level.EmergencyButton
	s.Player("p1").SetPos(models.Point{X: button.X, Y: button.Y + 70})
	s.CallMeeting("p1")
	s.CastVote("p1", "p2")
	s.CastVote("p2", "p1")
	s.Advance(s.Settings.VotingTime, true)
	if s.Meeting.Result == nil || !s.Meeting.Result.Tie || s.Meeting.Result.Ejected != "" {
		t.Fatalf("result = %+v", s.Meeting.Result)
	}
	s.Advance(ResultsSeconds, true)
	if s.Phase != models.PhasePlaying {
		t.Fatalf("phase = %s, want PLAYING", s.Phase)
	}
	for _, p := range s.Players {
		if p.IsDead {
			t.Fatalf("%s died on a tie", p.ID)
		}
	}
}

func TestUsePriority(t *testing.T) {
	s := newRound(t, 5)
	imp := s.Player("p0")
	vent := s.Level.Vents[0]
	imp.SetPos(vent.Pos)
	if u, id := s.ResolveUse("p0"); u != UseVent || id != vent.ID {
		t.Fatalf("use = %s %s, want vent %s", u, id, vent.ID)
	}
	if !s.Vent("p0") {
		t.Fatalf("Vent refused")
	}
	linked, _ := s.Level.Vent(vent.Link)
	if imp.Pos() != linked.Pos {
		t.Fatalf("vented to %v, want %v", imp.Pos(), linked.Pos)
	}
	if s.Vent("p1") {
		t.Fatalf("crewmate used a vent")
	}

	// body beats everything else
	crew := s.Player("p1")
	s.Player("p2").IsDead = true
	s.Player("p2").DeathX, s.Player("p2").DeathY = linked.Pos.X, linked.Pos.Y
	if u, _ := s.ResolveUse("p0"); u != UseReport {
		t.Fatalf("use = %s next to a body, want report", u)
	}

	s.Player("p2").IsBodyReported = true
	task := s.Tasks["p1"][0]
	crew.SetPos(task.Location)
	if u, id := s.ResolveUse("p1"); u != UseTask || id != task.ID {
		t.Fatalf("use = %s %s, want task %s", u, id, task.ID)
	}
}

func TestRemovePlayerRechecksWin(t *testing.T) {
	s := newRound(t, 4)
	s.RemovePlayer("p0")
	if s.Phase != models.PhaseEnded || s.Winner != models.RoleCrewmate {
		t.Fatalf("phase=%s winner=%s after impostor left", s.Phase, s.Winner)
	}
}

func TestStepPlayerSpeedAndGhost(t *testing.T) {
	s := newRound(t, 4)
	p := s.Player("p1")
	p.SetPos(models.Point{X: 1500, Y: 1000})
	s.StepPlayer("p1", models.Point{X: 3, Y: 0})
	if p.X != 1500+PlayerSpeed || !p.FacingRight {
		t.Fatalf("moved to %v facing right=%v", p.Pos(), p.FacingRight)
	}
	s.StepPlayer("p1", models.Point{X: -1, Y: 0})
	if p.FacingRight {
		t.Fatalf("facing not updated")
	}

	// walk into the admin wall at x=1500..1800, y=600..620 from below
	p.SetPos(models.Point{X: 1600, Y: 620 + 18 + 2})
	s.StepPlayer("p1", models.Point{X: 0, Y: -1})
	if p.Y != 640 {
		t.Fatalf("walked through wall to %v", p.Pos())
	}
	p.IsDead = true
	s.StepPlayer("p1", models.Point{X: 0, Y: -1})
	if p.Y != 635 {
		t.Fatalf("ghost blocked at %v", p.Pos())
	}
}
