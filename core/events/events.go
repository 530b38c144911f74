// Package events defines the payloads published on the internal event bus.
package events

import (
	"time"

	"github.com/ridegrid/ridegrid/core/model"
)

// AssignmentEvent is published when a request is matched to a driver, either
// immediately or from the waiting queue.
type AssignmentEvent struct {
	RequestID string
	RiderID   string
	DriverID  string
	PickupETA int
	FromQueue bool
	Time      time.Time
}

// TripCompletedEvent is published when a driver reaches the dropoff.
type TripCompletedEvent struct {
	RequestID string
	DriverID  string
	Dropoff   model.Position
	Time      time.Time
}

// RequestQueuedEvent is published when no driver was available and the
// request entered the waiting queue.
type RequestQueuedEvent struct {
	RequestID  string
	RiderID    string
	QueueDepth int
	Time       time.Time
}

// TickEvent summarises one simulation step.
type TickEvent struct {
	Tick       int
	Moved      int
	Completed  int
	Assigned   int
	QueueDepth int
	Time       time.Time
}
