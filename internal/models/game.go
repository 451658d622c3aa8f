package models

// Settings are the host-owned lobby configuration
type Settings struct {
	MaxPlayers     int     `json:"maxPlayers"`
	ImpostorCount  int     `json:"impostorCount"`
	TaskCount      int     `json:"taskCount"`
	PlayerSpeed    float64 `json:"playerSpeed"`
	KillCooldown   float64 `json:"killCooldown"`
	DiscussionTime float64 `json:"discussionTime"`
	VotingTime     float64 `json:"votingTime"`
}

// DefaultSettings returns the stock lobby configuration
func DefaultSettings() Settings {
	return Settings{
		MaxPlayers:     15,
		ImpostorCount:  2,
		TaskCount:      5,
		PlayerSpeed:    1.0,
		KillCooldown:   25,
		DiscussionTime: 15,
		VotingTime:     30,
	}
}

// Clamped returns a copy with every field pulled into its allowed range
func (s Settings) Clamped() Settings {
	s.MaxPlayers = clampInt(s.MaxPlayers, 4, 15)
	s.ImpostorCount = clampInt(s.ImpostorCount, 1, 3)
	s.TaskCount = clampInt(s.TaskCount, 1, 10)
	s.PlayerSpeed = clampFloat(s.PlayerSpeed, 0.5, 3)
	s.KillCooldown = clampFloat(s.KillCooldown, 10, 60)
	s.DiscussionTime = clampFloat(s.DiscussionTime, 0, 120)
	s.VotingTime = clampFloat(s.VotingTime, 5, 300)
	return s
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func clampFloat(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}

// TaskType is the minigame kind. The session never interprets it.
type TaskType string

const (
	TaskWires    TaskType = "WIRES"
	TaskDownload TaskType = "DOWNLOAD"
	TaskNumbers  TaskType = "NUMBERS"
	TaskDivert   TaskType = "DIVERT"
	TaskFuel     TaskType = "FUEL"
	TaskTrash    TaskType = "TRASH"
	TaskScan     TaskType = "SCAN"
)

// Task is one crewmate chore
type Task struct {
	ID        string   `json:"id"`
	Type      TaskType `json:"type"`
	Title     string   `json:"title"`
	Location  Point    `json:"location"`
	Completed bool     `json:"completed"`
}

// SabotageType identifies the active hazard
type SabotageType string

const (
	SabotageNone    SabotageType = "NONE"
	SabotageLights  SabotageType = "LIGHTS"
	SabotageReactor SabotageType = "REACTOR"
	SabotageO2      SabotageType = "O2"
)

// Valid reports whether t names a triggerable sabotage
func (t SabotageType) Valid() bool {
	return t == SabotageLights || t == SabotageReactor || t == SabotageO2
}

// Sabotage is the singleton hazard of a round
type Sabotage struct {
	Type  SabotageType `json:"type"`
	Timer float64      `json:"timer"`
}

// Active reports whether any sabotage is running
func (s Sabotage) Active() bool {
	return s.Type != "" && s.Type != SabotageNone
}

// Critical reports whether the sabotage loses the game when its timer runs out
func (s Sabotage) Critical() bool {
	return s.Type == SabotageReactor || s.Type == SabotageO2
}

// SkipVote is the vote target meaning "eject no one"
const SkipVote = "SKIP"

// VoteResult is the outcome of a meeting tally
type VoteResult struct {
	Tally   map[string]int `json:"tally"`
	Ejected string         `json:"ejectedId,omitempty"`
	Tie     bool           `json:"tie"`
}

// Meeting holds the state of one vote round
type Meeting struct {
	Votes        map[string]string
	Timer        float64
	CalledBy     string
	Result       *VoteResult
	ResultsTimer float64
}

// ChatMessage is a meeting or lobby chat line
type ChatMessage struct {
	ID          string `json:"id"`
	PlayerID    string `json:"playerId"`
	PlayerName  string `json:"playerName"`
	PlayerColor string `json:"playerColor"`
	Text        string `json:"text"`
	IsDead      bool   `json:"isDead"`
	Timestamp   int64  `json:"timestamp"`
}

// Result is the end-of-game summary handed to the progression collaborator
type Result struct {
	Winner         Role `json:"winner"`
	Role           Role `json:"role"`
	Won            bool `json:"won"`
	Kills          int  `json:"kills"`
	TasksCompleted int  `json:"tasksCompleted"`
}
