package registry

import (
	"fmt"
	"time"

	"github.com/ridegrid/ridegrid/core/model"
)

// RequestRegistry owns the ride request collection. Completed requests are
// retained so statistics can count them.
type RequestRegistry struct {
	requests []*model.RideRequest
	counter  int
	now      func() time.Time
}

// NewRequestRegistry returns an empty registry using the wall clock for
// request timestamps.
func NewRequestRegistry() *RequestRegistry {
	return &RequestRegistry{now: time.Now}
}

// SetClock overrides the timestamp source. Intended for tests.
func (r *RequestRegistry) SetClock(now func() time.Time) { r.now = now }

// Create opens a waiting request for the rider, copying its pickup and
// dropoff positions.
func (r *RequestRegistry) Create(rider *model.Rider) *model.RideRequest {
	r.counter++
	ts := r.now()
	req := &model.RideRequest{
		ID:        fmt.Sprintf("Request %d", r.counter),
		RiderID:   rider.ID,
		Status:    model.RequestWaiting,
		Pickup:    rider.Pickup,
		Dropoff:   rider.Dropoff,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	r.requests = append(r.requests, req)
	return req
}

// Get returns the request with the given id.
func (r *RequestRegistry) Get(id string) (*model.RideRequest, bool) {
	for _, req := range r.requests {
		if req.ID == id {
			return req, true
		}
	}
	return nil, false
}

// List returns the requests in insertion order.
func (r *RequestRegistry) List() []*model.RideRequest {
	out := make([]*model.RideRequest, len(r.requests))
	copy(out, r.requests)
	return out
}

// ByStatus returns the requests with the given status, in insertion order.
func (r *RequestRegistry) ByStatus(st model.RequestStatus) []*model.RideRequest {
	var out []*model.RideRequest
	for _, req := range r.requests {
		if req.Status == st {
			out = append(out, req)
		}
	}
	return out
}

// Assign marks the request as taken by the driver.
func (r *RequestRegistry) Assign(req *model.RideRequest, driverID string) {
	req.Status = model.RequestAssigned
	req.AssignedDriverID = driverID
	req.UpdatedAt = r.now()
}

// Complete marks the request as finished. The request stays in the registry.
func (r *RequestRegistry) Complete(req *model.RideRequest) {
	req.Status = model.RequestCompleted
	req.UpdatedAt = r.now()
}

// RemoveOne deletes the request by identity, reporting whether it was held.
func (r *RequestRegistry) RemoveOne(req *model.RideRequest) bool {
	for i, held := range r.requests {
		if held == req {
			r.requests = append(r.requests[:i], r.requests[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveForRider deletes every request owned by the rider and returns them.
func (r *RequestRegistry) RemoveForRider(riderID string) []*model.RideRequest {
	var removed []*model.RideRequest
	kept := r.requests[:0]
	for _, req := range r.requests {
		if req.RiderID == riderID {
			removed = append(removed, req)
		} else {
			kept = append(kept, req)
		}
	}
	r.requests = kept
	return removed
}

// Len returns the number of requests, completed ones included.
func (r *RequestRegistry) Len() int { return len(r.requests) }

// Clear removes every request and resets the id counter.
func (r *RequestRegistry) Clear() {
	r.requests = nil
	r.counter = 0
}
