package game

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/aaronzipp/sussie-baka/internal/models"
)

// State is one session's game state. It is owned by a single goroutine;
// nothing here locks.
type State struct {
	Phase    models.Phase
	Players  []*models.Player
	Settings models.Settings
	Sabotage models.Sabotage
	Meeting  models.Meeting
	Progress float64
	Winner   models.Role
	Tasks    map[string][]models.Task
	Chat     []models.ChatMessage
	Level    *Level

	revealTimer float64
	cooldowns   map[string]float64
	kills       map[string]int
	tasksDone   map[string]int
	rng         *rand.Rand
	events      []Event
}

// NewState creates an empty lobby on the default level
func NewState(settings models.Settings, rng *rand.Rand) *State {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &State{
		Phase:     models.PhaseLobby,
		Settings:  settings.Clamped(),
		Sabotage:  models.Sabotage{Type: models.SabotageNone},
		Tasks:     make(map[string][]models.Task),
		Level:     DefaultLevel(),
		cooldowns: make(map[string]float64),
		kills:     make(map[string]int),
		tasksDone: make(map[string]int),
		rng:       rng,
	}
}

// Player returns the player with the given id or nil
func (s *State) Player(id string) *models.Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Rand exposes the state's random source to the bot driver
func (s *State) Rand() *rand.Rand {
	return s.rng
}

// UniqueName returns name, or "name N" for the smallest N >= 2 not in use
func (s *State) UniqueName(name string) string {
	taken := func(n string) bool {
		for _, p := range s.Players {
			if p.Name == n {
				return true
			}
		}
		return false
	}
	final := name
	for i := 2; taken(final); i++ {
		final = fmt.Sprintf("%s %d", name, i)
	}
	return final
}

// AddPlayer appends p to the roster at spawn, de-duplicating its name
func (s *State) AddPlayer(p models.Player) *models.Player {
	if existing := s.Player(p.ID); existing != nil {
		return existing
	}
	p.Name = s.UniqueName(p.Name)
	if p.X == 0 && p.Y == 0 {
		p.X, p.Y = SpawnX, SpawnY
	}
	if p.Role == models.RoleNone {
		p.Role = models.RoleCrewmate
	}
	np := &p
	s.Players = append(s.Players, np)
	cp := p
	s.emit(Event{Kind: EventPlayerJoined, PlayerID: p.ID, Player: &cp})
	return np
}

// RemovePlayer drops a player and re-checks the win condition mid-round
func (s *State) RemovePlayer(id string) bool {
	for i, p := range s.Players {
		if p.ID != id {
			continue
		}
		s.Players = append(s.Players[:i], s.Players[i+1:]...)
		delete(s.Tasks, id)
		delete(s.cooldowns, id)
		if s.Meeting.Votes != nil {
			delete(s.Meeting.Votes, id)
		}
		s.emit(Event{Kind: EventPlayerLeft, PlayerID: id})
		s.checkWin()
		return true
	}
	return false
}

// UpdateSettings replaces the lobby settings. Only allowed in the lobby.
func (s *State) UpdateSettings(set models.Settings) bool {
	if s.Phase != models.PhaseLobby {
		return false
	}
	s.Settings = set.Clamped()
	cp := s.Settings
	s.emit(Event{Kind: EventSettingsChanged, Settings: &cp})
	return true
}

// Cooldown returns the remaining kill cooldown of a player
func (s *State) Cooldown(id string) float64 {
	return s.cooldowns[id]
}

// SetCooldown overrides a player's kill cooldown
func (s *State) SetCooldown(id string, v float64) {
	s.cooldowns[id] = math.Max(0, v)
}

// RevealRemaining is the time left on the role reveal
func (s *State) RevealRemaining() float64 {
	return s.revealTimer
}

// Stats returns the kills and completed tasks credited to a player this round
func (s *State) Stats(id string) (kills, tasks int) {
	return s.kills[id], s.tasksDone[id]
}

// Alive counts living players per role
func (s *State) Alive() (crew, imps int) {
	for _, p := range s.Players {
		if p.IsDead {
			continue
		}
		switch p.Role {
		case models.RoleImpostor:
			imps++
		case models.RoleCrewmate:
			crew++
		}
	}
	return crew, imps
}

// EvaluateWin returns the winning team, or RoleNone while the round goes on.
// It has no side effects.
func (s *State) EvaluateWin() models.Role {
	crew, imps := s.Alive()
	switch {
	case imps >= crew:
		return models.RoleImpostor
	case imps == 0:
		return models.RoleCrewmate
	case s.Progress >= 1:
		return models.RoleCrewmate
	}
	return models.RoleNone
}

func (s *State) checkWin() {
	if !s.Phase.InRound() {
		return
	}
	if w := s.EvaluateWin(); w != models.RoleNone {
		s.end(w)
	}
}

// End finishes the round with the given winner. Only the first call counts.
func (s *State) End(winner models.Role) {
	s.end(winner)
}

func (s *State) end(winner models.Role) {
	if s.Phase == models.PhaseEnded {
		return
	}
	s.Phase = models.PhaseEnded
	s.Winner = winner
	s.emit(Event{Kind: EventGameEnded, Winner: winner})
}

// Leave moves the session to Ended without a winner
func (s *State) Leave() {
	s.Phase = models.PhaseEnded
}

// Advance runs the timers for one frame. Only an authoritative state
// concludes meetings or ends the game on sabotage expiry; mirrors wait for
// the host's broadcast.
func (s *State) Advance(dt float64, authoritative bool) {
	switch s.Phase {
	case models.PhaseReveal:
		s.revealTimer = math.Max(0, s.revealTimer-dt)
		if s.revealTimer == 0 {
			s.Phase = models.PhasePlaying
			s.emit(Event{Kind: EventPlayStarted})
		}
	case models.PhasePlaying:
		for id, cd := range s.cooldowns {
			s.cooldowns[id] = math.Max(0, cd-dt)
		}
		if s.Sabotage.Active() && s.Sabotage.Timer > 0 {
			s.Sabotage.Timer = math.Max(0, s.Sabotage.Timer-dt)
			if s.Sabotage.Timer == 0 && s.Sabotage.Critical() && authoritative {
				s.end(models.RoleImpostor)
			}
		}
	case models.PhaseMeeting:
		if s.Meeting.Result == nil {
			s.Meeting.Timer = math.Max(0, s.Meeting.Timer-dt)
			if authoritative && (s.Meeting.Timer == 0 || s.allVoted()) {
				s.concludeMeeting()
			}
			return
		}
		s.Meeting.ResultsTimer = math.Max(0, s.Meeting.ResultsTimer-dt)
		if s.Meeting.ResultsTimer == 0 {
			s.resumePlay()
			if authoritative {
				s.checkWin()
			}
		}
	}
}

func roundProgress(v float64) float64 {
	return math.Min(1, math.Round(v*1e9)/1e9)
}
