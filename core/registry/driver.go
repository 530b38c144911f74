// Package registry owns the in-memory entity collections of the simulation.
//
// Each registry keeps its entities in insertion order and generates
// sequential ids ("Driver 1", "Rider 1", "Request 1") from an independent
// monotonic counter. Counters are never reused after deletion and reset only
// on Clear. The registries are not safe for concurrent use on their own; the
// engine serialises access behind one coarse lock.
package registry

import (
	"fmt"

	"github.com/ridegrid/ridegrid/core/grid"
	"github.com/ridegrid/ridegrid/core/model"
)

// DriverRegistry owns the driver collection.
type DriverRegistry struct {
	drivers []*model.Driver
	counter int
}

// NewDriverRegistry returns an empty registry.
func NewDriverRegistry() *DriverRegistry { return &DriverRegistry{} }

// Add creates an available driver at the given position. The position is
// validated against g once, at creation time.
func (r *DriverRegistry) Add(pos model.Position, g grid.Grid) (*model.Driver, error) {
	if !g.Contains(pos) {
		return nil, &OutOfBoundsError{X: pos.X, Y: pos.Y, Context: "add driver"}
	}
	r.counter++
	d := &model.Driver{
		ID:     fmt.Sprintf("Driver %d", r.counter),
		Pos:    pos,
		Status: model.DriverAvailable,
	}
	r.drivers = append(r.drivers, d)
	return d, nil
}

// Get returns the driver with the given id.
func (r *DriverRegistry) Get(id string) (*model.Driver, bool) {
	for _, d := range r.drivers {
		if d.ID == id {
			return d, true
		}
	}
	return nil, false
}

// Remove deletes the driver. It reports whether the driver existed; removing
// an unknown id is a benign outcome, not an error.
func (r *DriverRegistry) Remove(id string) bool {
	for i, d := range r.drivers {
		if d.ID == id {
			r.drivers = append(r.drivers[:i], r.drivers[i+1:]...)
			return true
		}
	}
	return false
}

// List returns the drivers in insertion order.
func (r *DriverRegistry) List() []*model.Driver {
	out := make([]*model.Driver, len(r.drivers))
	copy(out, r.drivers)
	return out
}

// Available returns the drivers ready for assignment, in insertion order.
func (r *DriverRegistry) Available() []*model.Driver {
	return r.byStatus(model.DriverAvailable)
}

// OnTrip returns the drivers currently serving a request, in insertion order.
func (r *DriverRegistry) OnTrip() []*model.Driver {
	return r.byStatus(model.DriverOnTrip)
}

func (r *DriverRegistry) byStatus(st model.DriverStatus) []*model.Driver {
	var out []*model.Driver
	for _, d := range r.drivers {
		if d.Status == st {
			out = append(out, d)
		}
	}
	return out
}

// MoveOneStep advances the driver at most one grid unit per axis towards its
// target. The axes are independent, so a step may change both coordinates.
// Drivers without a target do not move.
func (r *DriverRegistry) MoveOneStep(d *model.Driver) {
	if d.Trip == nil {
		return
	}
	if d.Pos.X < d.Trip.Target.X {
		d.Pos.X++
	} else if d.Pos.X > d.Trip.Target.X {
		d.Pos.X--
	}
	if d.Pos.Y < d.Trip.Target.Y {
		d.Pos.Y++
	} else if d.Pos.Y > d.Trip.Target.Y {
		d.Pos.Y--
	}
}

// CompleteTrip returns the driver to the available pool: the assignment is
// cleared, the trip counter bumped and the idle counter zeroed.
func (r *DriverRegistry) CompleteTrip(d *model.Driver) {
	d.Status = model.DriverAvailable
	d.Trip = nil
	d.TotalTrips++
	d.IdleTicks = 0
}

// IncrementIdle bumps the idle counter of an available driver by one tick.
func (r *DriverRegistry) IncrementIdle(d *model.Driver) {
	d.IdleTicks++
}

// Len returns the number of drivers.
func (r *DriverRegistry) Len() int { return len(r.drivers) }

// Clear removes every driver and resets the id counter.
func (r *DriverRegistry) Clear() {
	r.drivers = nil
	r.counter = 0
}
