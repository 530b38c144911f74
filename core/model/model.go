package model

import (
	"fmt"
	"time"
)

// Position is a cell on the simulation grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) String() string { return fmt.Sprintf("(%d, %d)", p.X, p.Y) }

// DriverStatus enumerates the lifecycle states of a driver.
type DriverStatus int

const (
	DriverAvailable DriverStatus = iota
	DriverOnTrip
	// DriverOffline is declared for forward compatibility; no transition
	// currently produces it.
	DriverOffline
)

func (s DriverStatus) String() string {
	switch s {
	case DriverAvailable:
		return "available"
	case DriverOnTrip:
		return "on_trip"
	case DriverOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// MarshalText makes the status render as its name in JSON payloads.
func (s DriverStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *DriverStatus) UnmarshalText(b []byte) error {
	switch string(b) {
	case "available":
		*s = DriverAvailable
	case "on_trip":
		*s = DriverOnTrip
	case "offline":
		*s = DriverOffline
	default:
		return fmt.Errorf("unknown driver status %q", b)
	}
	return nil
}

// RequestStatus enumerates the lifecycle states of a ride request.
type RequestStatus int

const (
	RequestWaiting RequestStatus = iota
	RequestAssigned
	RequestCompleted
	// RequestFailed is reserved; the waiting queue guarantees no request is
	// ever rejected, so nothing produces it today.
	RequestFailed
)

func (s RequestStatus) String() string {
	switch s {
	case RequestWaiting:
		return "waiting"
	case RequestAssigned:
		return "assigned"
	case RequestCompleted:
		return "completed"
	case RequestFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s RequestStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *RequestStatus) UnmarshalText(b []byte) error {
	switch string(b) {
	case "waiting":
		*s = RequestWaiting
	case "assigned":
		*s = RequestAssigned
	case "completed":
		*s = RequestCompleted
	case "failed":
		*s = RequestFailed
	default:
		return fmt.Errorf("unknown request status %q", b)
	}
	return nil
}

// TripPhase identifies which leg of an assigned trip a driver is on.
type TripPhase int

const (
	PhaseToPickup TripPhase = iota
	PhaseToDropoff
)

func (p TripPhase) String() string {
	switch p {
	case PhaseToPickup:
		return "to_pickup"
	case PhaseToDropoff:
		return "to_dropoff"
	default:
		return "unknown"
	}
}

func (p TripPhase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *TripPhase) UnmarshalText(b []byte) error {
	switch string(b) {
	case "to_pickup":
		*p = PhaseToPickup
	case "to_dropoff":
		*p = PhaseToDropoff
	default:
		return fmt.Errorf("unknown trip phase %q", b)
	}
	return nil
}

// Trip bundles the per-assignment state of a driver. It is present exactly
// while the driver is on a trip, so phase, target and request id can never
// disagree with the driver status.
type Trip struct {
	Phase     TripPhase `json:"phase"`
	Target    Position  `json:"target"`
	RequestID string    `json:"request_id"`
}

// Driver is a vehicle on the grid.
type Driver struct {
	ID         string       `json:"id"`
	Pos        Position     `json:"position"`
	Status     DriverStatus `json:"status"`
	TotalTrips int          `json:"total_trips"`
	IdleTicks  int          `json:"idle_ticks"`
	Trip       *Trip        `json:"trip,omitempty"`
}

// OnTrip reports whether the driver currently carries an assignment.
func (d *Driver) OnTrip() bool { return d.Status == DriverOnTrip && d.Trip != nil }

// AtTarget reports whether the driver has reached its current target.
// It is false for drivers without an assignment.
func (d *Driver) AtTarget() bool { return d.Trip != nil && d.Pos == d.Trip.Target }

// Rider is a customer waiting for, or currently on, a ride. Riders exist only
// while they have an active request; trip completion removes them.
type Rider struct {
	ID      string   `json:"id"`
	Pickup  Position `json:"pickup"`
	Dropoff Position `json:"dropoff"`
}

// RideRequest is one ride order. Pickup and dropoff are copied from the rider
// at creation time. Completed requests stay in the registry.
type RideRequest struct {
	ID               string        `json:"id"`
	RiderID          string        `json:"rider_id"`
	Status           RequestStatus `json:"status"`
	Pickup           Position      `json:"pickup"`
	Dropoff          Position      `json:"dropoff"`
	AssignedDriverID string        `json:"assigned_driver_id,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}
