package game

import (
	"github.com/aaronzipp/sussie-baka/internal/geometry"
	"github.com/aaronzipp/sussie-baka/internal/models"
)

// Input is one frame of intent from a human or a bot. Both feed the same
// step pipeline.
type Input struct {
	Move   models.Point
	Use    bool
	Report bool
	Kill   bool
	// Work credits one task increment. Only bots set it.
	Work bool
}

type botMode int

const (
	botIdle botMode = iota
	botMoving
	botWorking
)

// arriveDistance is how close a bot must get to its chosen task
const arriveDistance = 10.0

type bot struct {
	mode   botMode
	timer  float64
	target models.Point
}

// Bots drives the synthetic players of freeplay
type Bots struct {
	bots map[string]*bot
}

// NewBots creates an empty bot driver
func NewBots() *Bots {
	return &Bots{bots: make(map[string]*bot)}
}

// Add registers id as a bot
func (b *Bots) Add(id string) {
	b.bots[id] = &bot{mode: botIdle}
}

// Is reports whether id is driven by this driver
func (b *Bots) Is(id string) bool {
	_, ok := b.bots[id]
	return ok
}

// Input advances bot id's behavior by dt and returns its intent for the frame.
// A bot that finds an unreported body reports it from where it stands.
func (b *Bots) Input(s *State, id string, dt float64) Input {
	bt, ok := b.bots[id]
	p := s.Player(id)
	if !ok || p == nil || p.IsDead || s.Phase != models.PhasePlaying {
		return Input{}
	}
	rng := s.Rand()
	var in Input
	if s.NearbyBody(p.Pos()) != nil {
		in.Report = true
	}
	switch bt.mode {
	case botIdle:
		bt.timer -= dt
		if bt.timer <= 0 {
			tasks := s.Level.Tasks
			bt.target = tasks[rng.Intn(len(tasks))].Location
			bt.mode = botMoving
		}
	case botMoving:
		if geometry.Distance(p.Pos(), bt.target) < arriveDistance {
			bt.mode = botWorking
			bt.timer = 3 + rng.Float64()*5
			break
		}
		in.Move = bt.target.Sub(p.Pos())
	case botWorking:
		bt.timer -= dt
		if bt.timer <= 0 {
			bt.mode = botIdle
			bt.timer = rng.Float64() * 5
			in.Work = rng.Float64() < 0.5
		}
	}
	return in
}

// Reset puts every bot back to a short random idle, as at round start
func (b *Bots) Reset(s *State) {
	rng := s.Rand()
	for _, bt := range b.bots {
		bt.mode = botIdle
		bt.timer = rng.Float64() * 3
	}
}
