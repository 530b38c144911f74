package registry

import (
	"fmt"

	"github.com/ridegrid/ridegrid/core/grid"
	"github.com/ridegrid/ridegrid/core/model"
)

// RiderRegistry owns the rider collection.
type RiderRegistry struct {
	riders  []*model.Rider
	counter int
}

// NewRiderRegistry returns an empty registry.
func NewRiderRegistry() *RiderRegistry { return &RiderRegistry{} }

// Add creates a rider. Both positions are validated against g at creation
// time; the error names the offending point.
func (r *RiderRegistry) Add(pickup, dropoff model.Position, g grid.Grid) (*model.Rider, error) {
	if !g.Contains(pickup) {
		return nil, &OutOfBoundsError{X: pickup.X, Y: pickup.Y, Context: "add rider pickup"}
	}
	if !g.Contains(dropoff) {
		return nil, &OutOfBoundsError{X: dropoff.X, Y: dropoff.Y, Context: "add rider dropoff"}
	}
	r.counter++
	rd := &model.Rider{
		ID:      fmt.Sprintf("Rider %d", r.counter),
		Pickup:  pickup,
		Dropoff: dropoff,
	}
	r.riders = append(r.riders, rd)
	return rd, nil
}

// Get returns the rider with the given id.
func (r *RiderRegistry) Get(id string) (*model.Rider, bool) {
	for _, rd := range r.riders {
		if rd.ID == id {
			return rd, true
		}
	}
	return nil, false
}

// Remove deletes the rider, reporting whether it existed.
func (r *RiderRegistry) Remove(id string) bool {
	for i, rd := range r.riders {
		if rd.ID == id {
			r.riders = append(r.riders[:i], r.riders[i+1:]...)
			return true
		}
	}
	return false
}

// List returns the riders in insertion order.
func (r *RiderRegistry) List() []*model.Rider {
	out := make([]*model.Rider, len(r.riders))
	copy(out, r.riders)
	return out
}

// Len returns the number of riders.
func (r *RiderRegistry) Len() int { return len(r.riders) }

// Clear removes every rider and resets the id counter.
func (r *RiderRegistry) Clear() {
	r.riders = nil
	r.counter = 0
}
