package game

const (
	// PlayerSpeed is the per-frame distance at a speed multiplier of 1
	PlayerSpeed = 5.0

	// InteractRadius bounds report, fix, task, vent and button use
	InteractRadius = 80.0

	// KillRadius bounds how far an impostor can reach
	KillRadius = 60.0

	// ViewRadius is how far a crewmate sees
	ViewRadius = 250.0

	// MapWidth and MapHeight are the level bounds
	MapWidth  = 2800.0
	MapHeight = 1600.0

	// SpawnX and SpawnY are the round-start and post-meeting gathering point
	SpawnX = 1200.0
	SpawnY = 300.0

	// SpawnJitter is the half-width of the random spread at round start
	SpawnJitter = 25.0

	// RevealSeconds is how long roles are shown before play begins
	RevealSeconds = 3.0

	// ResultsSeconds is how long the vote outcome is shown before play resumes
	ResultsSeconds = 4.0

	// SabotageSeconds is the countdown of every triggered sabotage
	SabotageSeconds = 30.0

	// TaskIncrement is added to shared progress per completed task.
	// It does not depend on Settings.TaskCount.
	TaskIncrement = 0.05

	// LightsSwitches is how many switches the lights panel has
	LightsSwitches = 5

	// FixStep is the progress one press adds on a non-lights fix panel
	FixStep = 0.2

	// MinPlayers is the smallest roster a round can start with
	MinPlayers = 2

	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6

	// RoomCodeChars are the characters used for generating room codes (excluding ambiguous chars)
	RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)
