// Package geometry holds the pure collision and proximity helpers shared by
// the host and every client mirror. Results must be bit-identical everywhere,
// so nothing here touches randomness or wall-clock time.
package geometry

import (
	"math"

	"github.com/aaronzipp/sussie-baka/internal/models"
)

// PlayerRadius is the bounding circle used for wall collision
const PlayerRadius = 18

// Distance returns the Euclidean distance between a and b
func Distance(a, b models.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Within reports whether a and b are strictly closer than r
func Within(a, b models.Point, r float64) bool {
	return Distance(a, b) < r
}

// Normalize scales v to unit length. The zero vector stays zero.
func Normalize(v models.Point) models.Point {
	l := math.Hypot(v.X, v.Y)
	if l == 0 {
		return models.Point{}
	}
	return models.Point{X: v.X / l, Y: v.Y / l}
}

// Overlaps reports whether a circle of radius r at p intersects w
func Overlaps(w models.Wall, p models.Point, r float64) bool {
	return p.X+r > w.X &&
		p.X-r < w.X+w.W &&
		p.Y+r > w.Y &&
		p.Y-r < w.Y+w.H
}

// ResolveCollision applies delta one axis at a time. X is tested against
// the old Y, then Y against the resolved X; an axis whose move would overlap
// any wall keeps its old value so the player slides along the wall.
func ResolveCollision(walls []models.Wall, pos, delta models.Point, ghost bool) models.Point {
	next := pos.Add(delta)
	if ghost {
		return next
	}
	probe := models.Point{X: next.X, Y: pos.Y}
	for _, w := range walls {
		if Overlaps(w, probe, PlayerRadius) {
			next.X = pos.X
			break
		}
	}
	for _, w := range walls {
		if Overlaps(w, next, PlayerRadius) {
			next.Y = pos.Y
			break
		}
	}
	return next
}

// ClosestPlayerWithin returns the living candidate nearest to me that is
// strictly inside maxDist, skipping me itself. Ties go to the earliest
// candidate in slice order.
func ClosestPlayerWithin(me *models.Player, candidates []*models.Player, maxDist float64) *models.Player {
	var closest *models.Player
	best := maxDist
	for _, p := range candidates {
		if p.IsDead || p.ID == me.ID {
			continue
		}
		if d := Distance(me.Pos(), p.Pos()); d < best {
			best = d
			closest = p
		}
	}
	return closest
}
