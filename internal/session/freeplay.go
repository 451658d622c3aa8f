package session

import (
	"fmt"
	"slices"

	"github.com/aaronzipp/sussie-baka/internal/models"
	"github.com/google/uuid"
)

// FreeplayBots is how many bots fill a freeplay lobby
const FreeplayBots = 14

// Palette is the base player color set
var Palette = []string{
	"#C51111", "#132ED1", "#117F2D", "#ED54BA", "#EF7D0D", "#F5F557",
	"#3F474E", "#D6E0F0", "#6B2FBB", "#38FEDC", "#50EF39", "#710808",
}

// Freeplay creates a local lobby of the player and bots. It runs the host
// code path with no transport.
func Freeplay(cfg Config) *Session {
	s := newSession(ModeFreeplay, cfg)
	s.auth = hostAuthority{state: s.state, now: s.cfg.Now}
	s.selfID = uuid.New().String()
	me := models.NewPlayer(s.selfID, cfg.Profile)
	me.IsHost = true
	s.state.AddPlayer(me)

	rng := s.state.Rand()
	base := max(slices.Index(Palette, cfg.Profile.Color), 0)
	for i := range FreeplayBots {
		id := fmt.Sprintf("bot_%d", i)
		p := models.NewPlayer(id, models.Profile{
			Name:  fmt.Sprintf("Bot %d", i+1),
			Color: Palette[(base+i+1)%len(Palette)],
		})
		p.X = 1400 + (rng.Float64()-0.5)*200
		p.Y = 400 + (rng.Float64()-0.5)*200
		s.state.AddPlayer(p)
		s.bots.Add(id)
	}
	return s
}
