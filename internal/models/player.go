package models

// Role is the team a player belongs to for one round
type Role string

const (
	RoleNone     Role = ""
	RoleCrewmate Role = "CREWMATE"
	RoleImpostor Role = "IMPOSTOR"
)

// Profile is what the progression collaborator hands the session at start.
// Cosmetic ids are opaque.
type Profile struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Hat   string `json:"hat,omitempty"`
	Skin  string `json:"skin,omitempty"`
	Pet   string `json:"pet,omitempty"`
}

// Player represents a participant in a session
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Hat   string `json:"hat,omitempty"`
	Skin  string `json:"skin,omitempty"`
	Pet   string `json:"pet,omitempty"`

	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	FacingRight bool    `json:"facingRight"`

	Role           Role    `json:"role"`
	IsDead         bool    `json:"isDead"`
	DeathX         float64 `json:"deathX,omitempty"`
	DeathY         float64 `json:"deathY,omitempty"`
	IsBodyReported bool    `json:"isBodyReported"`
	IsHost         bool    `json:"isHost"`
}

// NewPlayer builds a lobby player from a profile
func NewPlayer(id string, p Profile) Player {
	return Player{
		ID:          id,
		Name:        p.Name,
		Color:       p.Color,
		Hat:         p.Hat,
		Skin:        p.Skin,
		Pet:         p.Pet,
		FacingRight: true,
		Role:        RoleCrewmate,
	}
}

// Pos returns the player's live position
func (p *Player) Pos() Point {
	return Point{X: p.X, Y: p.Y}
}

// SetPos moves the player
func (p *Player) SetPos(pt Point) {
	p.X, p.Y = pt.X, pt.Y
}

// DeathPos returns where the body lies. Only meaningful when IsDead.
func (p *Player) DeathPos() Point {
	return Point{X: p.DeathX, Y: p.DeathY}
}

// IsBody reports whether the player is an unreported corpse
func (p *Player) IsBody() bool {
	return p.IsDead && !p.IsBodyReported
}

// Alive reports whether the player is alive with the given role
func (p *Player) Alive(r Role) bool {
	return !p.IsDead && p.Role == r
}
