// Package session runs one game session: the single-goroutine tick that
// owns the game state, the host/client replication policy on top of a peer
// transport, and freeplay with bots.
package session

import (
	"errors"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aaronzipp/sussie-baka/internal/game"
	"github.com/aaronzipp/sussie-baka/internal/models"
	"github.com/aaronzipp/sussie-baka/internal/protocol"
	"github.com/aaronzipp/sussie-baka/internal/transport"
)

var debug atomic.Bool

// SetDebug turns verbose per-message logging on or off
func SetDebug(on bool) {
	debug.Store(on)
}

const (
	inboxSize = 4096

	// AnnounceInterval is how often a host re-registers its lobby
	AnnounceInterval = 3.0
)

var (
	// ErrHostDisconnected ends a client session when the host link closes
	ErrHostDisconnected = errors.New("session: host disconnected")
	// ErrJoinRejected is returned by Join when the host refuses the player
	ErrJoinRejected = errors.New("session: join rejected")
)

// Mode is how a session relates to the rest of the room
type Mode int

const (
	ModeFreeplay Mode = iota
	ModeHost
	ModeClient
)

func (m Mode) String() string {
	switch m {
	case ModeFreeplay:
		return "freeplay"
	case ModeHost:
		return "host"
	case ModeClient:
		return "client"
	}
	return "unknown"
}

// Sink receives every state change in the order it happened
type Sink interface {
	Emit(e game.Event)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(game.Event)

func (f SinkFunc) Emit(e game.Event) { f(e) }

// Directory announces a hosted lobby to the discovery relay
type Directory interface {
	AnnounceLobby(code, hostName string, count, maxPlayers int) error
}

// Config configures a session
type Config struct {
	Network  transport.Network
	Profile  models.Profile
	Settings models.Settings
	Sink     Sink
	Logger   *log.Logger
	Rand     *rand.Rand
	// Override pins the local player's role when this session starts the game
	Override  models.Role
	Directory Directory
	Now       func() time.Time
}

type inboundKind int

const (
	inOpen inboundKind = iota
	inData
	inClosed
	inListenerClosed
)

type inbound struct {
	kind inboundKind
	conn transport.Conn
	data []byte
}

// Session is one player's view of a room. Tick and every exported mutating
// method must be called from the same goroutine.
type Session struct {
	mode   Mode
	cfg    Config
	logger *log.Logger
	state  *game.State
	auth   authority
	bots   *game.Bots

	selfID string
	code   string
	frame  int
	prev   map[string]game.Input

	fix      *game.FixPanel
	openTask string
	beat     float64

	// host side
	listener   transport.Listener
	pending    map[string]transport.Conn
	peers      map[string]transport.Conn
	connPlayer map[string]string

	// client side
	host    transport.Conn
	targets map[string]models.Point

	inbox chan inbound
	quit  chan struct{}
	once  sync.Once
	mu    sync.Mutex
	err   error
}

func newSession(mode Mode, cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Sink == nil {
		cfg.Sink = SinkFunc(func(game.Event) {})
	}
	settings := cfg.Settings
	if settings == (models.Settings{}) {
		settings = models.DefaultSettings()
	}
	return &Session{
		mode:       mode,
		cfg:        cfg,
		logger:     cfg.Logger,
		state:      game.NewState(settings, cfg.Rand),
		bots:       game.NewBots(),
		prev:       make(map[string]game.Input),
		pending:    make(map[string]transport.Conn),
		peers:      make(map[string]transport.Conn),
		connPlayer: make(map[string]string),
		targets:    make(map[string]models.Point),
		inbox:      make(chan inbound, inboxSize),
		quit:       make(chan struct{}),
	}
}

// Mode returns whether this session is freeplay, a host or a client
func (s *Session) Mode() Mode { return s.mode }

// Code returns the room code, empty in freeplay
func (s *Session) Code() string { return s.code }

// SelfID returns the local player's id
func (s *Session) SelfID() string { return s.selfID }

// State exposes the game state for read-only use by renderers
func (s *Session) State() *game.State { return s.state }

// Self returns the local player
func (s *Session) Self() *models.Player { return s.state.Player(s.selfID) }

// Affordances returns the local player's action buttons for this frame
func (s *Session) Affordances() game.Affordances {
	return s.state.Affordances(s.selfID)
}

// ActiveTask is the id of the task console the local player has open
func (s *Session) ActiveTask() string { return s.openTask }

// FixPanel is the open sabotage console, or nil
func (s *Session) FixPanel() *game.FixPanel { return s.fix }

// Done is closed once the session has ended
func (s *Session) Done() <-chan struct{} { return s.quit }

// Err reports why the session ended. It is nil while running and after Leave.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Tick advances the session by one frame of dt seconds with the local
// player's input.
func (s *Session) Tick(dt float64, in game.Input) {
	if s.ended() {
		return
	}
	s.drain()
	if s.ended() {
		return
	}
	s.state.Advance(dt, s.auth.authoritative())

	s.step(s.selfID, in)
	for _, id := range s.botIDs() {
		s.step(id, s.bots.Input(s.state, id, dt))
	}
	if s.mode == ModeClient {
		s.interpolate()
	}

	s.flush()
	s.frame++
	s.cadence()
	s.heartbeat(dt)
}

func (s *Session) ended() bool {
	select {
	case <-s.quit:
		return true
	default:
		return false
	}
}

func (s *Session) botIDs() []string {
	var ids []string
	for _, p := range s.state.Players {
		if s.bots.Is(p.ID) {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// step feeds one frame of input for a player through movement and the
// edge-triggered actions
func (s *Session) step(id string, in game.Input) {
	if id == "" {
		return
	}
	prev := s.prev[id]
	s.prev[id] = in

	if in.Move != (models.Point{}) {
		s.state.StepPlayer(id, in.Move)
	}
	if in.Report && !prev.Report && s.state.Affordances(id).CanReport {
		s.auth.report(id)
	}
	if in.Kill && !prev.Kill {
		if a := s.state.Affordances(id); a.CanKill {
			s.auth.kill(id, a.KillTarget)
		}
	}
	if in.Use && !prev.Use {
		s.use(id)
	}
	if in.Work {
		s.auth.addProgress(id)
	}
}

func (s *Session) use(id string) {
	kind, target := s.state.ResolveUse(id)
	switch kind {
	case game.UseReport:
		s.auth.report(id)
	case game.UseFix:
		if id == s.selfID {
			s.BeginFix()
		}
	case game.UseMeeting:
		s.auth.callMeeting(id)
	case game.UseVent:
		s.state.Vent(id)
	case game.UseTask:
		if id == s.selfID {
			s.openTask = target
		}
	}
}

// flush hands queued state changes to peers and the sink
func (s *Session) flush() {
	for _, e := range s.state.Drain() {
		if s.mode != ModeClient {
			s.broadcastEvent(e)
		}
		s.observe(e)
		s.cfg.Sink.Emit(e)
	}
}

// observe resets local UI state that a state change invalidates
func (s *Session) observe(e game.Event) {
	switch e.Kind {
	case game.EventGameStarted:
		clear(s.targets)
		s.bots.Reset(s.state)
		s.fix, s.openTask = nil, ""
	case game.EventRoundResumed:
		clear(s.targets)
	case game.EventMeetingStarted, game.EventGameEnded:
		s.fix, s.openTask = nil, ""
	case game.EventSabotageChanged:
		if !e.Sabotage.Active() {
			s.fix = nil
		}
	case game.EventTaskCompleted:
		if e.PlayerID == s.selfID && e.TargetID == s.openTask {
			s.openTask = ""
		}
	}
}

func (s *Session) cadence() {
	switch s.mode {
	case ModeClient:
		if s.frame%protocol.MoveEveryFrames == 0 {
			s.sendMove()
		}
	case ModeHost:
		if s.frame%protocol.RosterEvery == 0 {
			s.broadcastRoster()
		}
	}
}

func (s *Session) heartbeat(dt float64) {
	if s.mode != ModeHost || s.cfg.Directory == nil {
		return
	}
	s.beat -= dt
	if s.beat > 0 {
		return
	}
	s.beat = AnnounceInterval
	s.announce()
}

func (s *Session) announce() {
	if s.cfg.Directory == nil {
		return
	}
	err := s.cfg.Directory.AnnounceLobby(s.code, s.cfg.Profile.Name, len(s.state.Players), s.state.Settings.MaxPlayers)
	if err != nil {
		s.logger.Printf("session %s: announce lobby: %v", s.code, err)
	}
}

// StartGame begins a round. Only the host can start.
func (s *Session) StartGame() bool {
	return s.auth.startGame(s.selfID, s.cfg.Override)
}

// UpdateSettings changes the lobby settings. Only the host can change them.
func (s *Session) UpdateSettings(set models.Settings) bool {
	return s.auth.updateSettings(set)
}

// Vote casts the local player's vote; target is a player id or models.SkipVote
func (s *Session) Vote(target string) bool {
	return s.auth.vote(s.selfID, target)
}

// Chat sends a chat line in the lobby or a meeting
func (s *Session) Chat(text string) bool {
	return s.auth.chat(s.selfID, text)
}

// Sabotage triggers a sabotage as the local impostor
func (s *Session) Sabotage(t models.SabotageType) bool {
	return s.auth.sabotage(s.selfID, t)
}

// BeginFix opens the console of the active sabotage
func (s *Session) BeginFix() bool {
	if !s.state.Sabotage.Active() {
		return false
	}
	if s.fix == nil || s.fix.Type != s.state.Sabotage.Type {
		s.fix = game.NewFixPanel(s.state.Sabotage.Type, s.state.Rand())
	}
	return true
}

// ToggleSwitch flips a lights switch on the open console
func (s *Session) ToggleSwitch(i int) bool {
	if s.fix == nil {
		return false
	}
	if s.fix.Toggle(i) {
		s.fix = nil
		return s.auth.fix(s.selfID)
	}
	return false
}

// PushFix adds repair progress on the open console
func (s *Session) PushFix() bool {
	if s.fix == nil {
		return false
	}
	if s.fix.Push() {
		s.fix = nil
		return s.auth.fix(s.selfID)
	}
	return false
}

// CloseFix abandons the open console
func (s *Session) CloseFix() { s.fix = nil }

// CompleteTask finishes the open task console
func (s *Session) CompleteTask() bool {
	if s.openTask == "" {
		return false
	}
	id := s.openTask
	s.openTask = ""
	return s.auth.completeTask(s.selfID, id)
}

// CloseTask abandons the open task console
func (s *Session) CloseTask() { s.openTask = "" }

// Result summarizes the round for the local player once it has a winner
func (s *Session) Result() (models.Result, bool) {
	if s.state.Phase != models.PhaseEnded || s.state.Winner == models.RoleNone {
		return models.Result{}, false
	}
	role := models.RoleNone
	if me := s.Self(); me != nil {
		role = me.Role
	}
	kills, tasks := s.state.Stats(s.selfID)
	return models.Result{
		Winner:         s.state.Winner,
		Role:           role,
		Won:            role != models.RoleNone && role == s.state.Winner,
		Kills:          kills,
		TasksCompleted: tasks,
	}, true
}

// Leave ends the session and closes its connections
func (s *Session) Leave() {
	s.state.Leave()
	s.finish(nil)
}

func (s *Session) fail(err error) {
	s.logger.Printf("session %s: %v", s.code, err)
	s.state.Leave()
	s.finish(err)
}

func (s *Session) finish(err error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.quit)
		if s.listener != nil {
			s.listener.Close()
		}
		if s.host != nil {
			s.host.Close()
		}
		for _, c := range s.pending {
			c.Close()
		}
		for _, c := range s.peers {
			c.Close()
		}
	})
}

// drain processes everything the transport readers queued since last tick
func (s *Session) drain() {
	for {
		select {
		case m := <-s.inbox:
			if s.mode == ModeClient {
				s.clientReceive(m)
			} else {
				s.hostReceive(m)
			}
			if s.ended() {
				return
			}
		default:
			return
		}
	}
}

func (s *Session) push(m inbound) bool {
	select {
	case s.inbox <- m:
		return true
	case <-s.quit:
		return false
	}
}

// pump forwards a connection's messages to the inbox until it closes
func (s *Session) pump(c transport.Conn) {
	for b := range c.Messages() {
		if !s.push(inbound{kind: inData, conn: c, data: b}) {
			return
		}
	}
	s.push(inbound{kind: inClosed, conn: c})
}
