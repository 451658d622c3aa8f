package session

import (
	"context"
	"errors"
	"io"
	"log"
	"math/rand"
	"testing"
	"time"

	"github.com/aaronzipp/sussie-baka/internal/game"
	"github.com/aaronzipp/sussie-baka/internal/geometry"
	"github.com/aaronzipp/sussie-baka/internal/models"
	"github.com/aaronzipp/sussie-baka/internal/transport"
)

const frame = 1.0 / 60

func testConfig(n transport.Network, name string, seed int64) Config {
	return Config{
		Network: n,
		Profile: models.Profile{Name: name, Color: Palette[0]},
		Logger:  log.New(io.Discard, "", 0),
		Rand:    rand.New(rand.NewSource(seed)),
	}
}

// settle ticks every session until cond holds
func settle(t *testing.T, dt float64, cond func() bool, ss ...*Session) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not reached")
		}
		for _, s := range ss {
			s.Tick(dt, game.Input{})
		}
		time.Sleep(time.Millisecond)
	}
}

type room struct {
	net     *transport.MemoryNetwork
	host    *Session
	clients []*Session
	events  map[*Session][]game.Event
}

func (r *room) all() []*Session {
	return append([]*Session{r.host}, r.clients...)
}

func newRoom(t *testing.T, clients int) *room {
	t.Helper()
	r := &room{net: transport.NewMemoryNetwork(), events: make(map[*Session][]game.Event)}
	ctx := context.Background()

	cfg := testConfig(r.net, "Host", 1)
	set := models.DefaultSettings()
	set.ImpostorCount = 1
	set.TaskCount = 3
	cfg.Settings = set
	cfg.Override = models.RoleImpostor
	var err error
	r.host, err = Host(ctx, cfg, "TEST01")
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	hostSession := r.host
	r.host.cfg.Sink = SinkFunc(func(e game.Event) { r.events[hostSession] = append(r.events[hostSession], e) })

	for i := range clients {
		// Join blocks on the handshake, so the host ticks in the background
		stop := make(chan struct{})
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				select {
				case <-stop:
					return
				default:
					r.host.Tick(frame, game.Input{})
					time.Sleep(time.Millisecond)
				}
			}
		}()
		c, err := Join(ctx, testConfig(r.net, "Crew", int64(i+2)), "test01")
		close(stop)
		<-done
		if err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
		cs := c
		c.cfg.Sink = SinkFunc(func(e game.Event) { r.events[cs] = append(r.events[cs], e) })
		r.clients = append(r.clients, c)
	}
	want := clients + 1
	settle(t, frame, func() bool {
		for _, s := range r.all() {
			if len(s.State().Players) != want {
				return false
			}
		}
		return true
	}, r.all()...)
	t.Cleanup(func() {
		for _, s := range r.all() {
			s.Leave()
		}
	})
	return r
}

func (r *room) start(t *testing.T) {
	t.Helper()
	if !r.host.StartGame() {
		t.Fatalf("StartGame refused")
	}
	settle(t, 0.1, func() bool {
		for _, s := range r.all() {
			if s.State().Phase != models.PhasePlaying {
				return false
			}
		}
		return true
	}, r.all()...)
}

func TestJoinRosterAndNames(t *testing.T) {
	r := newRoom(t, 2)
	names := map[string]bool{}
	for _, p := range r.host.State().Players {
		names[p.Name] = true
	}
	if !names["Host"] || !names["Crew"] || !names["Crew 2"] {
		t.Fatalf("names = %v", names)
	}
	for _, c := range r.clients {
		if c.SelfID() == "" || c.Self() == nil {
			t.Fatalf("client has no self")
		}
		if c.Self().IsHost {
			t.Fatalf("client flagged as host")
		}
	}
	if !r.host.Self().IsHost {
		t.Fatalf("host not flagged as host")
	}
}

func TestStartGameReplicatesRolesAndTasks(t *testing.T) {
	r := newRoom(t, 2)
	r.start(t)

	hs := r.host.State()
	if hs.Player(r.host.SelfID()).Role != models.RoleImpostor {
		t.Fatalf("override ignored")
	}
	for _, c := range r.clients {
		cs := c.State()
		for _, hp := range hs.Players {
			cp := cs.Player(hp.ID)
			if cp == nil || cp.Role != hp.Role {
				t.Fatalf("role mismatch for %s", hp.ID)
			}
		}
		if c.Self().Role != models.RoleCrewmate {
			t.Fatalf("client role = %s", c.Self().Role)
		}
		if got := len(cs.Tasks[c.SelfID()]); got != 3 {
			t.Fatalf("client tasks = %d, want 3", got)
		}
	}
}

func TestKillObservedEverywhere(t *testing.T) {
	r := newRoom(t, 2)
	r.start(t)

	hs := r.host.State()
	hostID := r.host.SelfID()
	victimID := r.clients[0].SelfID()
	hs.SetCooldown(hostID, 0)
	victim := hs.Player(victimID)
	hs.Player(hostID).SetPos(victim.Pos().Add(models.Point{X: 1}))

	target := r.host.Affordances().KillTarget
	if target == "" || !r.host.Affordances().CanKill {
		t.Fatalf("host cannot kill: %+v", r.host.Affordances())
	}
	r.host.Tick(frame, game.Input{Kill: true})

	dead := hs.Player(target)
	if !dead.IsDead {
		t.Fatalf("victim alive on host")
	}
	// one crewmate left against one impostor
	if hs.Phase != models.PhaseEnded || hs.Winner != models.RoleImpostor {
		t.Fatalf("host phase = %s winner = %s", hs.Phase, hs.Winner)
	}
	settle(t, frame, func() bool {
		for _, c := range r.clients {
			if c.State().Phase != models.PhaseEnded {
				return false
			}
		}
		return true
	}, r.clients...)

	for _, c := range r.clients {
		p := c.State().Player(target)
		if !p.IsDead || p.DeathPos() != dead.DeathPos() {
			t.Fatalf("client sees victim %+v, host %+v", p, dead)
		}
		if c.State().Winner != models.RoleImpostor {
			t.Fatalf("client winner = %s", c.State().Winner)
		}
		res, ok := c.Result()
		if !ok || res.Won || res.Role != models.RoleCrewmate {
			t.Fatalf("client result = %+v %v", res, ok)
		}
	}
	res, ok := r.host.Result()
	if !ok || !res.Won || res.Kills != 1 {
		t.Fatalf("host result = %+v %v", res, ok)
	}

	ended := 0
	for _, e := range r.events[r.host] {
		if e.Kind == game.EventGameEnded {
			ended++
		}
	}
	if ended != 1 {
		t.Fatalf("host emitted %d game-ended events", ended)
	}
}

func TestMeetingEjectsAcrossNetwork(t *testing.T) {
	r := newRoom(t, 2)
	r.start(t)

	hs := r.host.State()
	hostID := r.host.SelfID()
	hs.Player(hostID).SetPos(hs.Level.EmergencyButton)
	r.host.Tick(frame, game.Input{Use: true})
	if hs.Phase != models.PhaseMeeting {
		t.Fatalf("host phase = %s", hs.Phase)
	}
	settle(t, frame, func() bool {
		for _, c := range r.clients {
			if c.State().Phase != models.PhaseMeeting {
				return false
			}
		}
		return true
	}, r.all()...)

	if !r.host.Vote(models.SkipVote) {
		t.Fatalf("host vote refused")
	}
	for _, c := range r.clients {
		if !c.Vote(hostID) {
			t.Fatalf("client vote not sent")
		}
	}
	settle(t, frame, func() bool {
		for _, s := range r.all() {
			if s.State().Meeting.Result == nil {
				return false
			}
		}
		return true
	}, r.all()...)

	for _, s := range r.all() {
		res := s.State().Meeting.Result
		if res.Ejected != hostID || res.Tally[hostID] != 2 {
			t.Fatalf("result = %+v", res)
		}
	}
	settle(t, 0.1, func() bool {
		for _, s := range r.all() {
			if s.State().Phase != models.PhaseEnded {
				return false
			}
		}
		return true
	}, r.all()...)
	for _, s := range r.all() {
		if s.State().Winner != models.RoleCrewmate {
			t.Fatalf("winner = %s", s.State().Winner)
		}
	}
}

func TestClientPredictsOwnPosition(t *testing.T) {
	r := newRoom(t, 1)
	r.start(t)
	c := r.clients[0]
	start := c.Self().Pos()

	// walk down; the spawn room is open below the spawn point
	for range 30 {
		c.Tick(frame, game.Input{Move: models.Point{Y: 1}})
		r.host.Tick(frame, game.Input{})
		time.Sleep(time.Millisecond)
	}
	moved := c.Self().Pos()
	if geometry.Distance(start, moved) == 0 {
		t.Fatalf("client did not move")
	}
	settle(t, frame, func() bool {
		hp := r.host.State().Player(c.SelfID())
		return geometry.Distance(hp.Pos(), moved) < 1e-6
	}, r.all()...)
	if c.Self().Pos() != moved {
		t.Fatalf("roster overwrote predicted position: %+v vs %+v", c.Self().Pos(), moved)
	}
}

func TestJoinRejectedDuringRound(t *testing.T) {
	r := newRoom(t, 1)
	r.start(t)

	errc := make(chan error, 1)
	go func() {
		_, err := Join(context.Background(), testConfig(r.net, "Late", 9), "TEST01")
		errc <- err
	}()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case err := <-errc:
			if !errors.Is(err, ErrJoinRejected) {
				t.Fatalf("err = %v, want ErrJoinRejected", err)
			}
			return
		case <-deadline:
			t.Fatalf("join never answered")
		default:
			r.host.Tick(frame, game.Input{})
			time.Sleep(time.Millisecond)
		}
	}
}

func TestHostLossEndsClient(t *testing.T) {
	r := newRoom(t, 1)
	c := r.clients[0]
	r.net.Drop("TEST01")
	settle(t, frame, func() bool {
		select {
		case <-c.Done():
			return true
		default:
			return false
		}
	}, c)
	if !errors.Is(c.Err(), ErrHostDisconnected) {
		t.Fatalf("err = %v", c.Err())
	}
}

func TestClientLeaveRemovesPlayer(t *testing.T) {
	r := newRoom(t, 2)
	leaving := r.clients[0]
	leaving.Leave()
	if leaving.Err() != nil {
		t.Fatalf("leave err = %v", leaving.Err())
	}
	settle(t, frame, func() bool {
		return len(r.host.State().Players) == 2 && len(r.clients[1].State().Players) == 2
	}, r.host, r.clients[1])
	if r.clients[1].State().Player(leaving.SelfID()) != nil {
		t.Fatalf("remaining client still sees leaver")
	}
}

func TestRoomCodeTaken(t *testing.T) {
	n := transport.NewMemoryNetwork()
	h, err := Host(context.Background(), testConfig(n, "A", 1), "SAME01")
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	defer h.Leave()
	_, err = Host(context.Background(), testConfig(n, "B", 2), "SAME01")
	if !errors.Is(err, transport.ErrRoomTaken) {
		t.Fatalf("err = %v, want ErrRoomTaken", err)
	}
}

func TestGeneratedRoomCode(t *testing.T) {
	h, err := Host(context.Background(), testConfig(transport.NewMemoryNetwork(), "A", 1), "")
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	defer h.Leave()
	if len(h.Code()) != game.RoomCodeLength {
		t.Fatalf("code = %q", h.Code())
	}
}

type fakeDirectory struct {
	calls []int
}

func (d *fakeDirectory) AnnounceLobby(code, hostName string, count, maxPlayers int) error {
	d.calls = append(d.calls, count)
	return nil
}

func TestHostAnnouncesLobby(t *testing.T) {
	dir := &fakeDirectory{}
	cfg := testConfig(transport.NewMemoryNetwork(), "A", 1)
	cfg.Directory = dir
	h, err := Host(context.Background(), cfg, "DIR001")
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	defer h.Leave()
	for range 100 {
		h.Tick(0.1, game.Input{}) // 10s
	}
	// once on open, then every 3s
	if len(dir.calls) != 4 {
		t.Fatalf("announcements = %d, want 4", len(dir.calls))
	}
	if dir.calls[0] != 1 {
		t.Fatalf("count = %d", dir.calls[0])
	}
}

func TestFreeplayRunsHostPath(t *testing.T) {
	cfg := testConfig(nil, "Solo", 7)
	s := Freeplay(cfg)
	defer s.Leave()
	if s.Mode() != ModeFreeplay {
		t.Fatalf("mode = %s", s.Mode())
	}
	st := s.State()
	if len(st.Players) != FreeplayBots+1 {
		t.Fatalf("players = %d", len(st.Players))
	}
	if !s.StartGame() {
		t.Fatalf("StartGame refused")
	}
	for range 40 {
		s.Tick(0.1, game.Input{})
	}
	if st.Phase != models.PhasePlaying {
		t.Fatalf("phase = %s", st.Phase)
	}
	imps := 0
	for _, p := range st.Players {
		if p.Role == models.RoleImpostor {
			imps++
		}
	}
	if imps != st.Settings.ImpostorCount {
		t.Fatalf("impostors = %d, want %d", imps, st.Settings.ImpostorCount)
	}

	before := make(map[string]models.Point)
	for _, p := range st.Players {
		before[p.ID] = p.Pos()
	}
	for range 600 {
		s.Tick(frame, game.Input{})
	}
	moved := 0
	for _, p := range st.Players {
		if p.ID != s.SelfID() && p.Pos() != before[p.ID] {
			moved++
		}
	}
	if moved == 0 {
		t.Fatalf("no bot moved")
	}
}

func TestLocalTaskFlow(t *testing.T) {
	cfg := testConfig(nil, "Solo", 3)
	cfg.Override = models.RoleCrewmate
	s := Freeplay(cfg)
	defer s.Leave()
	s.StartGame()
	for range 40 {
		s.Tick(0.1, game.Input{})
	}
	st := s.State()
	task := st.Tasks[s.SelfID()][0]
	s.Self().SetPos(task.Location)
	s.Tick(frame, game.Input{Use: true})
	if s.ActiveTask() != task.ID {
		t.Fatalf("active task = %q, want %q", s.ActiveTask(), task.ID)
	}
	before := st.Progress
	if !s.CompleteTask() {
		t.Fatalf("CompleteTask refused")
	}
	if st.Progress <= before {
		t.Fatalf("progress did not advance")
	}
	if _, tasks := st.Stats(s.SelfID()); tasks != 1 {
		t.Fatalf("tasks = %d", tasks)
	}
}

func TestSetDebugToggles(t *testing.T) {
	SetDebug(true)
	if !debug.Load() {
		t.Fatalf("debug not enabled")
	}
	SetDebug(false)
	if debug.Load() {
		t.Fatalf("debug not disabled")
	}
}
