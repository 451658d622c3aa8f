package game

import (
	"math/rand"

	"github.com/aaronzipp/sussie-baka/internal/models"
)

// UseKind is what the context action would do right now
type UseKind string

const (
	UseNone    UseKind = ""
	UseReport  UseKind = "report"
	UseFix     UseKind = "fix"
	UseMeeting UseKind = "meeting"
	UseVent    UseKind = "vent"
	UseTask    UseKind = "task"
)

// Affordances are the per-frame action buttons of one player
type Affordances struct {
	CanReport  bool
	CanUse     bool
	CanKill    bool
	Use        UseKind
	TaskID     string
	KillTarget string
}

// Affordances computes what id may do this frame
func (s *State) Affordances(id string) Affordances {
	var a Affordances
	p := s.Player(id)
	if p == nil || p.IsDead || s.Phase != models.PhasePlaying {
		return a
	}
	a.CanReport = s.NearbyBody(p.Pos()) != nil
	a.Use, a.TaskID = s.ResolveUse(id)
	a.CanUse = s.anyUsable(p)
	if t := s.KillTarget(id); t != nil {
		a.KillTarget = t.ID
		a.CanKill = s.Cooldown(id) <= 0
	}
	return a
}

func (s *State) anyUsable(p *models.Player) bool {
	pos := p.Pos()
	if s.nearSabotage(pos) || s.nearButton(pos) {
		return true
	}
	if p.Role == models.RoleImpostor {
		_, ok := s.Level.NearestVent(pos)
		return ok
	}
	_, ok := s.NearbyTask(p.ID)
	return ok
}

// ResolveUse picks the context action by priority: report, fix, emergency
// button, vent (impostors) and finally the nearest open task (crewmates).
func (s *State) ResolveUse(id string) (UseKind, string) {
	p := s.Player(id)
	if p == nil || p.IsDead || s.Phase != models.PhasePlaying {
		return UseNone, ""
	}
	pos := p.Pos()
	switch {
	case s.NearbyBody(pos) != nil:
		return UseReport, ""
	case s.nearSabotage(pos):
		return UseFix, ""
	case s.nearButton(pos):
		return UseMeeting, ""
	}
	if p.Role == models.RoleImpostor {
		if v, ok := s.Level.NearestVent(pos); ok {
			return UseVent, v.ID
		}
		return UseNone, ""
	}
	if t, ok := s.NearbyTask(id); ok {
		return UseTask, t.ID
	}
	return UseNone, ""
}

// FixPanel is one player's repair console for the active sabotage. Lights
// is fixed by flipping every switch on; other types by repeated pushes.
type FixPanel struct {
	Type     models.SabotageType
	Switches [LightsSwitches]bool
	Progress float64
}

// NewFixPanel opens a console with the lights switches scrambled
func NewFixPanel(t models.SabotageType, rng *rand.Rand) *FixPanel {
	f := &FixPanel{Type: t}
	if t == models.SabotageLights {
		for i := range f.Switches {
			f.Switches[i] = rng.Intn(2) == 1
		}
		if f.Done() {
			f.Switches[rng.Intn(LightsSwitches)] = false
		}
	}
	return f
}

// Toggle flips switch i and reports whether the panel is complete
func (f *FixPanel) Toggle(i int) bool {
	if f.Type == models.SabotageLights && i >= 0 && i < LightsSwitches {
		f.Switches[i] = !f.Switches[i]
	}
	return f.Done()
}

// Push adds one step of repair progress and reports whether it is complete
func (f *FixPanel) Push() bool {
	if f.Type != models.SabotageLights {
		f.Progress = roundProgress(f.Progress + FixStep)
	}
	return f.Done()
}

// Done reports whether the panel has been repaired
func (f *FixPanel) Done() bool {
	if f.Type == models.SabotageLights {
		for _, on := range f.Switches {
			if !on {
				return false
			}
		}
		return true
	}
	return f.Progress >= 1
}
