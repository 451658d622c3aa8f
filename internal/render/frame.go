package render

import (
	"sort"

	"github.com/aaronzipp/sussie-baka/internal/game"
	"github.com/aaronzipp/sussie-baka/internal/models"
)

// LightsViewRadius is how far a living crewmate sees while the lights are out
const LightsViewRadius = 100.0

// Source is what a frame is read from. *session.Session satisfies it.
type Source interface {
	State() *game.State
	SelfID() string
	Affordances() game.Affordances
	ActiveTask() string
	FixPanel() *game.FixPanel
}

// Sprite is one drawable player
type Sprite struct {
	ID          string
	Name        string
	Color       string
	Hat         string
	Skin        string
	Pet         string
	Pos         models.Point
	FacingRight bool
	Ghost       bool
	Self        bool
	// Impostor is only set where the viewer is allowed to know it
	Impostor bool
}

// Body is an unreported corpse
type Body struct {
	ID    string
	Color string
	Pos   models.Point
}

// SabotageView is the active hazard as the HUD shows it
type SabotageView struct {
	Type  models.SabotageType
	Timer float64
	Spot  models.Point
}

// Ballot is one row of the meeting screen
type Ballot struct {
	ID       string
	Name     string
	Color    string
	Dead     bool
	HasVoted bool
	// VotedBy lists voter ids and is only filled once results are in
	VotedBy []string
}

// MeetingView is the vote screen
type MeetingView struct {
	Timer        float64
	CalledBy     string
	Ballots      []Ballot
	SkipVotes    int
	CanVote      bool
	Result       *models.VoteResult
	ResultsTimer float64
	Chat         []models.ChatMessage
}

// Frame is a read-only snapshot for a renderer. Nothing in it aliases
// session state.
type Frame struct {
	Phase models.Phase
	// Reveal is the time left on the role reveal screen
	Reveal      float64
	Camera      models.Point
	ViewRadius  float64
	Role        models.Role
	Dead        bool
	Players     []Sprite
	Bodies      []Body
	Tasks       []models.Task
	Progress    float64
	Cooldown    float64
	Sabotage    *SabotageView
	Affordances game.Affordances
	ActiveTask  string
	FixPanel    *game.FixPanel
	Meeting     *MeetingView
	Winner      models.Role
}

// Snapshot builds the frame the local player should see
func Snapshot(src Source) Frame {
	st := src.State()
	selfID := src.SelfID()
	me := st.Player(selfID)

	f := Frame{
		Phase:       st.Phase,
		ViewRadius:  game.ViewRadius,
		Progress:    st.Progress,
		Cooldown:    st.Cooldown(selfID),
		Affordances: src.Affordances(),
		ActiveTask:  src.ActiveTask(),
		Winner:      st.Winner,
	}
	if st.Phase == models.PhaseReveal {
		f.Reveal = st.RevealRemaining()
	}
	if me != nil {
		f.Camera = me.Pos()
		f.Role = me.Role
		f.Dead = me.IsDead
	}
	if fp := src.FixPanel(); fp != nil {
		cp := *fp
		f.FixPanel = &cp
	}

	crewView := me != nil && me.Alive(models.RoleCrewmate)
	if st.Sabotage.Active() {
		f.Sabotage = &SabotageView{
			Type:  st.Sabotage.Type,
			Timer: st.Sabotage.Timer,
			Spot:  st.Level.SabotageSpots[st.Sabotage.Type],
		}
		if st.Sabotage.Type == models.SabotageLights && crewView {
			f.ViewRadius = LightsViewRadius
		}
	}

	for _, p := range st.Players {
		if p.IsBody() {
			f.Bodies = append(f.Bodies, Body{ID: p.ID, Color: p.Color, Pos: p.DeathPos()})
		}
		// ghosts are only visible to other ghosts
		if p.IsDead && !f.Dead {
			continue
		}
		f.Players = append(f.Players, Sprite{
			ID:          p.ID,
			Name:        p.Name,
			Color:       p.Color,
			Hat:         p.Hat,
			Skin:        p.Skin,
			Pet:         p.Pet,
			Pos:         p.Pos(),
			FacingRight: p.FacingRight,
			Ghost:       p.IsDead,
			Self:        p.ID == selfID,
			Impostor:    p.Role == models.RoleImpostor && (f.Role == models.RoleImpostor || st.Phase == models.PhaseEnded),
		})
	}

	if crewView {
		for _, t := range st.Tasks[selfID] {
			if !t.Completed {
				f.Tasks = append(f.Tasks, t)
			}
		}
	}

	if st.Phase == models.PhaseMeeting {
		f.Meeting = meetingView(st, me)
	}
	return f
}

func meetingView(st *game.State, me *models.Player) *MeetingView {
	m := st.Meeting
	votes := st.Votes()
	v := &MeetingView{
		Timer:        m.Timer,
		CalledBy:     m.CalledBy,
		ResultsTimer: m.ResultsTimer,
		Chat:         append([]models.ChatMessage(nil), st.Chat...),
	}
	if m.Result != nil {
		r := *m.Result
		r.Tally = make(map[string]int, len(m.Result.Tally))
		for k, n := range m.Result.Tally {
			r.Tally[k] = n
		}
		v.Result = &r
	}
	if me != nil && !me.IsDead && m.Result == nil {
		_, voted := votes[me.ID]
		v.CanVote = !voted
	}

	byTarget := make(map[string][]string)
	for voter, target := range votes {
		byTarget[target] = append(byTarget[target], voter)
	}
	for _, p := range st.Players {
		_, voted := votes[p.ID]
		b := Ballot{ID: p.ID, Name: p.Name, Color: p.Color, Dead: p.IsDead, HasVoted: voted}
		if m.Result != nil {
			b.VotedBy = byTarget[p.ID]
			sort.Strings(b.VotedBy)
		}
		v.Ballots = append(v.Ballots, b)
	}
	if m.Result != nil {
		v.SkipVotes = len(byTarget[models.SkipVote])
	}
	return v
}
