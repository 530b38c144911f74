// Package queue implements the FIFO holding area for ride requests that
// could not be assigned immediately. No request is ever rejected: it waits
// here until a drain pass finds it a driver.
package queue

import (
	"github.com/ridegrid/ridegrid/core/model"
	"github.com/ridegrid/ridegrid/core/scoring"
)

// AssignFunc establishes the request/driver link on a successful match.
// The engine supplies it so the queue never touches registries directly.
type AssignFunc func(req *model.RideRequest, d *model.Driver)

// WaitingQueue is a FIFO of unassigned requests.
type WaitingQueue struct {
	requests []*model.RideRequest
}

// New returns an empty queue.
func New() *WaitingQueue { return &WaitingQueue{} }

// Enqueue appends the request to the tail.
func (q *WaitingQueue) Enqueue(req *model.RideRequest) {
	q.requests = append(q.requests, req)
}

// Remove deletes the request by identity if present. Used when a rider
// cancels while still queued.
func (q *WaitingQueue) Remove(req *model.RideRequest) bool {
	for i, r := range q.requests {
		if r == req {
			q.requests = append(q.requests[:i], q.requests[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of queued requests.
func (q *WaitingQueue) Len() int { return len(q.requests) }

// Requests returns a snapshot of the queue in FIFO order.
func (q *WaitingQueue) Requests() []*model.RideRequest {
	out := make([]*model.RideRequest, len(q.requests))
	copy(out, q.requests)
	return out
}

// Drain walks the queue head to tail and assigns each request to the best
// scoring driver among the drivers not yet consumed in this pass, so one
// drain never double-books a driver. Once the pool is exhausted no later
// request can succeed either, so the walk stops. Assigned requests are
// removed from the queue; the untouched tail keeps its FIFO order.
// It returns the assigned requests in processing order.
func (q *WaitingQueue) Drain(pool []*model.Driver, assign AssignFunc) []*model.RideRequest {
	if len(pool) == 0 || len(q.requests) == 0 {
		return nil
	}

	remaining := make([]*model.Driver, len(pool))
	copy(remaining, pool)

	var processed []*model.RideRequest
	for _, req := range q.Requests() {
		if len(remaining) == 0 {
			break
		}
		best, err := scoring.FindBest(remaining, req)
		if err != nil {
			// No candidate for this request; leave it queued and keep
			// walking, a later pair may still match.
			continue
		}
		assign(req, best)
		processed = append(processed, req)
		for i, d := range remaining {
			if d.ID == best.ID {
				remaining = append(remaining[:i], remaining[i+1:]...)
				break
			}
		}
	}

	for _, req := range processed {
		q.Remove(req)
	}
	return processed
}

// Clear empties the queue.
func (q *WaitingQueue) Clear() { q.requests = nil }
