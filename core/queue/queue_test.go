package queue

import (
	"testing"

	"github.com/ridegrid/ridegrid/core/model"
)

func request(id string, pickup model.Position) *model.RideRequest {
	return &model.RideRequest{ID: id, Status: model.RequestWaiting, Pickup: pickup}
}

func driver(id string, pos model.Position) *model.Driver {
	return &model.Driver{ID: id, Pos: pos, Status: model.DriverAvailable}
}

// markAssigned mimics the engine's assignment side effects so the drain's
// scoring sees consumed drivers as busy.
func markAssigned(req *model.RideRequest, d *model.Driver) {
	req.Status = model.RequestAssigned
	req.AssignedDriverID = d.ID
	d.Status = model.DriverOnTrip
}

func TestDrainNeverDoubleBooks(t *testing.T) {
	q := New()
	r1 := request("Request 1", model.Position{X: 0, Y: 0})
	r2 := request("Request 2", model.Position{X: 0, Y: 1})
	q.Enqueue(r1)
	q.Enqueue(r2)

	d := driver("Driver 1", model.Position{X: 0, Y: 0})
	processed := q.Drain([]*model.Driver{d}, markAssigned)

	if len(processed) != 1 {
		t.Fatalf("expected 1 assignment got %d", len(processed))
	}
	if processed[0] != r1 {
		t.Fatalf("expected head of queue first, got %s", processed[0].ID)
	}
	if q.Len() != 1 {
		t.Fatalf("expected 1 request left got %d", q.Len())
	}
	if q.Requests()[0] != r2 {
		t.Fatalf("expected Request 2 still queued")
	}
}

func TestDrainAssignsDistinctDrivers(t *testing.T) {
	q := New()
	r1 := request("Request 1", model.Position{X: 0, Y: 0})
	r2 := request("Request 2", model.Position{X: 9, Y: 9})
	q.Enqueue(r1)
	q.Enqueue(r2)

	d1 := driver("Driver 1", model.Position{X: 0, Y: 1})
	d2 := driver("Driver 2", model.Position{X: 9, Y: 8})
	processed := q.Drain([]*model.Driver{d1, d2}, markAssigned)

	if len(processed) != 2 {
		t.Fatalf("expected 2 assignments got %d", len(processed))
	}
	if r1.AssignedDriverID == r2.AssignedDriverID {
		t.Fatalf("same driver assigned twice: %s", r1.AssignedDriverID)
	}
	if q.Len() != 0 {
		t.Fatalf("expected empty queue got %d", q.Len())
	}
}

func TestDrainKeepsFIFOForUntouched(t *testing.T) {
	q := New()
	reqs := []*model.RideRequest{
		request("Request 1", model.Position{}),
		request("Request 2", model.Position{}),
		request("Request 3", model.Position{}),
	}
	for _, r := range reqs {
		q.Enqueue(r)
	}

	d := driver("Driver 1", model.Position{})
	q.Drain([]*model.Driver{d}, markAssigned)

	left := q.Requests()
	if len(left) != 2 || left[0].ID != "Request 2" || left[1].ID != "Request 3" {
		t.Fatalf("FIFO order broken: %+v", left)
	}
}

func TestDrainEmptyPool(t *testing.T) {
	q := New()
	q.Enqueue(request("Request 1", model.Position{}))
	if got := q.Drain(nil, markAssigned); got != nil {
		t.Fatalf("expected no assignments got %v", got)
	}
	if q.Len() != 1 {
		t.Fatalf("request should remain queued")
	}
}

func TestRemoveSpecific(t *testing.T) {
	q := New()
	r1 := request("Request 1", model.Position{})
	r2 := request("Request 2", model.Position{})
	q.Enqueue(r1)
	q.Enqueue(r2)

	if !q.Remove(r1) {
		t.Fatalf("expected removal of queued request")
	}
	if q.Remove(r1) {
		t.Fatalf("second removal should report false")
	}
	if q.Len() != 1 || q.Requests()[0] != r2 {
		t.Fatalf("unexpected queue state")
	}
}
