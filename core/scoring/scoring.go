// Package scoring ranks driver/request pairs for assignment.
//
// The score balances three factors: proximity (ETA to the pickup), fairness
// (drivers who already completed many trips are penalised) and starvation
// avoidance (drivers who waited longest get a capped discount). Lower scores
// win.
package scoring

import (
	"errors"

	"github.com/ridegrid/ridegrid/core/model"
)

const (
	// FairnessMultiplier is the per-completed-trip score penalty.
	FairnessMultiplier = 10
	// MaxIdleBonus caps the idle-time discount.
	MaxIdleBonus = 50
)

// ErrNoCandidates is returned by FindBest when the driver pool is empty.
// Callers treat it as "no assignment possible right now", never as a fault.
var ErrNoCandidates = errors.New("scoring: no candidate drivers")

// Distance returns the Manhattan distance between two positions.
func Distance(a, b model.Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// ETA returns the number of ticks needed to cover the Manhattan distance
// between from and to at the given speed (units per tick, at least 1).
// The division rounds up so travel time is never underestimated.
func ETA(from, to model.Position, speed int) int {
	if speed < 1 {
		speed = 1
	}
	return (Distance(from, to) + speed - 1) / speed
}

// Score computes the assignment score for driver against request.
// Lower is better.
func Score(d *model.Driver, req *model.RideRequest) int {
	eta := ETA(d.Pos, req.Pickup, 1)
	fairness := d.TotalTrips * FairnessMultiplier
	idle := d.IdleTicks
	if idle > MaxIdleBonus {
		idle = MaxIdleBonus
	}
	return eta + fairness - idle
}

// FindBest returns the candidate with the minimum score. Ties are broken by
// candidate order: the first driver with the minimum score wins.
func FindBest(candidates []*model.Driver, req *model.RideRequest) (*model.Driver, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	best := candidates[0]
	bestScore := Score(best, req)
	for _, d := range candidates[1:] {
		if s := Score(d, req); s < bestScore {
			best = d
			bestScore = s
		}
	}
	return best, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
