package game

import (
	"github.com/aaronzipp/sussie-baka/internal/geometry"
	"github.com/aaronzipp/sussie-baka/internal/models"
)

// Level is the static map a round is played on
type Level struct {
	Walls           []models.Wall
	Vents           []models.Vent
	Tasks           []models.Task
	EmergencyButton models.Point
	SabotageSpots   map[models.SabotageType]models.Point
}

// Vent returns the vent with the given id
func (l *Level) Vent(id string) (models.Vent, bool) {
	for _, v := range l.Vents {
		if v.ID == id {
			return v, true
		}
	}
	return models.Vent{}, false
}

// NearestVent returns the first vent within InteractRadius of p
func (l *Level) NearestVent(p models.Point) (models.Vent, bool) {
	for _, v := range l.Vents {
		if geometry.Within(p, v.Pos, InteractRadius) {
			return v, true
		}
	}
	return models.Vent{}, false
}

// DefaultLevel returns the stock ship map
func DefaultLevel() *Level {
	return &Level{
		Walls:           append([]models.Wall(nil), shipWalls...),
		Vents:           append([]models.Vent(nil), shipVents...),
		Tasks:           append([]models.Task(nil), shipTasks...),
		EmergencyButton: models.Point{X: 1280, Y: 250},
		SabotageSpots: map[models.SabotageType]models.Point{
			models.SabotageLights:  {X: 1000, Y: 1000},
			models.SabotageReactor: {X: 200, Y: 600},
			models.SabotageO2:      {X: 1900, Y: 525},
		},
	}
}

var shipWalls = []models.Wall{
	// hull
	{X: 0, Y: 0, W: 2800, H: 50},
	{X: 0, Y: 1550, W: 2800, H: 50},
	{X: 0, Y: 0, W: 50, H: 1600},
	{X: 2750, Y: 0, W: 50, H: 1600},
	// cafeteria
	{X: 1100, Y: 50, W: 20, H: 400},
	{X: 1700, Y: 50, W: 20, H: 400},
	{X: 1100, Y: 450, W: 250, H: 20},
	{X: 1450, Y: 450, W: 270, H: 20},
	{X: 1250, Y: 200, W: 300, H: 100},
	// weapons, o2
	{X: 1800, Y: 50, W: 20, H: 300},
	{X: 1800, Y: 350, W: 300, H: 20},
	{X: 2100, Y: 200, W: 20, H: 150},
	{X: 1800, Y: 450, W: 200, H: 20},
	{X: 1800, Y: 600, W: 200, H: 20},
	{X: 1800, Y: 450, W: 20, H: 150},
	// navigation
	{X: 2300, Y: 400, W: 20, H: 500},
	{X: 2300, Y: 400, W: 400, H: 20},
	{X: 2300, Y: 900, W: 400, H: 20},
	// shields
	{X: 1800, Y: 1000, W: 20, H: 300},
	{X: 1800, Y: 1000, W: 200, H: 20},
	{X: 2100, Y: 1200, W: 100, H: 20},
	// admin
	{X: 1500, Y: 600, W: 300, H: 20},
	{X: 1500, Y: 800, W: 300, H: 20},
	{X: 1500, Y: 600, W: 20, H: 50},
	{X: 1500, Y: 750, W: 20, H: 50},
	{X: 1800, Y: 600, W: 20, H: 200},
	// storage, comms
	{X: 1200, Y: 900, W: 20, H: 500},
	{X: 1600, Y: 900, W: 20, H: 500},
	{X: 1200, Y: 900, W: 400, H: 20},
	{X: 1600, Y: 1200, W: 250, H: 20},
	{X: 1850, Y: 1200, W: 20, H: 250},
	// electrical
	{X: 800, Y: 900, W: 400, H: 20},
	{X: 800, Y: 900, W: 20, H: 400},
	{X: 1200, Y: 900, W: 20, H: 400},
	{X: 1000, Y: 1100, W: 10, H: 200},
	// engines
	{X: 400, Y: 1000, W: 300, H: 20},
	{X: 400, Y: 1200, W: 300, H: 20},
	{X: 400, Y: 250, W: 300, H: 20},
	{X: 400, Y: 450, W: 300, H: 20},
	// security
	{X: 600, Y: 600, W: 200, H: 20},
	{X: 600, Y: 800, W: 200, H: 20},
	{X: 800, Y: 600, W: 20, H: 200},
	// reactor
	{X: 50, Y: 250, W: 20, H: 950},
	{X: 350, Y: 250, W: 20, H: 950},
	// medbay
	{X: 750, Y: 350, W: 350, H: 20},
	{X: 750, Y: 350, W: 20, H: 200},
	{X: 1100, Y: 350, W: 20, H: 200},
}

var shipVents = []models.Vent{
	{ID: "v1", Pos: models.Point{X: 200, Y: 350}, Link: "v2"},
	{ID: "v2", Pos: models.Point{X: 500, Y: 1100}, Link: "v1"},
	{ID: "v3", Pos: models.Point{X: 900, Y: 1100}, Link: "v4"},
	{ID: "v4", Pos: models.Point{X: 700, Y: 700}, Link: "v5"},
	{ID: "v5", Pos: models.Point{X: 800, Y: 400}, Link: "v3"},
	{ID: "v6", Pos: models.Point{X: 1650, Y: 700}, Link: "v7"},
	{ID: "v7", Pos: models.Point{X: 1600, Y: 300}, Link: "v8"},
	{ID: "v8", Pos: models.Point{X: 1900, Y: 550}, Link: "v6"},
	{ID: "v9", Pos: models.Point{X: 2000, Y: 1100}, Link: "v10"},
	{ID: "v10", Pos: models.Point{X: 2500, Y: 800}, Link: "v9"},
}

var shipTasks = []models.Task{
	{ID: "t1", Type: models.TaskWires, Location: models.Point{X: 200, Y: 400}, Title: "Fix Wiring (Reactor)"},
	{ID: "t2", Type: models.TaskNumbers, Location: models.Point{X: 200, Y: 800}, Title: "Unlock Manifolds (Reactor)"},
	{ID: "t3", Type: models.TaskFuel, Location: models.Point{X: 500, Y: 350}, Title: "Fuel Engines (Upper)"},
	{ID: "t4", Type: models.TaskFuel, Location: models.Point{X: 500, Y: 1100}, Title: "Fuel Engines (Lower)"},
	{ID: "t5", Type: models.TaskScan, Location: models.Point{X: 900, Y: 450}, Title: "Submit Scan (Medbay)"},
	{ID: "t6", Type: models.TaskDownload, Location: models.Point{X: 1650, Y: 700}, Title: "Upload Data (Admin)"},
	{ID: "t7", Type: models.TaskWires, Location: models.Point{X: 1400, Y: 1100}, Title: "Fix Wiring (Storage)"},
	{ID: "t8", Type: models.TaskTrash, Location: models.Point{X: 1400, Y: 1300}, Title: "Empty Trash (Storage)"},
	{ID: "t9", Type: models.TaskWires, Location: models.Point{X: 900, Y: 1000}, Title: "Fix Wiring (Electrical)"},
	{ID: "t10", Type: models.TaskDownload, Location: models.Point{X: 850, Y: 1200}, Title: "Download Data (Electrical)"},
	{ID: "t11", Type: models.TaskDivert, Location: models.Point{X: 850, Y: 1000}, Title: "Divert Power (Electrical)"},
	{ID: "t12", Type: models.TaskWires, Location: models.Point{X: 2400, Y: 700}, Title: "Fix Wiring (Navigation)"},
	{ID: "t13", Type: models.TaskDownload, Location: models.Point{X: 2600, Y: 600}, Title: "Download Data (Navigation)"},
	{ID: "t14", Type: models.TaskTrash, Location: models.Point{X: 1900, Y: 500}, Title: "Empty Trash (O2)"},
	{ID: "t15", Type: models.TaskWires, Location: models.Point{X: 2000, Y: 200}, Title: "Fix Wiring (Weapons)"},
	{ID: "t16", Type: models.TaskDownload, Location: models.Point{X: 1900, Y: 100}, Title: "Download Data (Weapons)"},
	{ID: "t17", Type: models.TaskWires, Location: models.Point{X: 1900, Y: 1100}, Title: "Prime Shields (Shields)"},
	{ID: "t18", Type: models.TaskDownload, Location: models.Point{X: 1650, Y: 200}, Title: "Download Data (Cafeteria)"},
	{ID: "t19", Type: models.TaskDownload, Location: models.Point{X: 1700, Y: 1300}, Title: "Download Data (Comms)"},
	{ID: "t20", Type: models.TaskWires, Location: models.Point{X: 700, Y: 700}, Title: "Fix Wiring (Security)"},
}
