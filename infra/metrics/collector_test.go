package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ridegrid/ridegrid/core/events"
	coremetrics "github.com/ridegrid/ridegrid/core/metrics"
	"github.com/ridegrid/ridegrid/internal/eventbus"
)

// recordingSink captures every record it receives; it implements all four
// recorder interfaces.
type recordingSink struct {
	mu          sync.Mutex
	assignments []coremetrics.AssignmentRecord
	trips       []coremetrics.TripRecord
	ticks       []coremetrics.TickRecord
	queued      []coremetrics.QueueRecord
}

func (r *recordingSink) RecordAssignment(rec coremetrics.AssignmentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments = append(r.assignments, rec)
	return nil
}

func (r *recordingSink) RecordTrip(rec coremetrics.TripRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trips = append(r.trips, rec)
	return nil
}

func (r *recordingSink) RecordTick(rec coremetrics.TickRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = append(r.ticks, rec)
	return nil
}

func (r *recordingSink) RecordQueued(rec coremetrics.QueueRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queued = append(r.queued, rec)
	return nil
}

func (r *recordingSink) counts() (int, int, int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.assignments), len(r.trips), len(r.ticks), len(r.queued)
}

func TestEventCollectorRecordsAllEventKinds(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sink := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartEventCollector(ctx, bus, sink)

	now := time.Now()
	bus.Publish(events.AssignmentEvent{RequestID: "Request 1", RiderID: "Rider 1", DriverID: "Driver 1", PickupETA: 4, FromQueue: true, Time: now})
	bus.Publish(events.TripCompletedEvent{RequestID: "Request 1", DriverID: "Driver 1", Time: now})
	bus.Publish(events.TickEvent{Tick: 1, Moved: 1, Completed: 1, QueueDepth: 0, Time: now})
	bus.Publish(events.RequestQueuedEvent{RequestID: "Request 2", QueueDepth: 1, Time: now})

	deadline := time.After(2 * time.Second)
	for {
		a, tr, tk, q := sink.counts()
		if a == 1 && tr == 1 && tk == 1 && q == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("collector incomplete: %d %d %d %d", a, tr, tk, q)
		case <-time.After(10 * time.Millisecond):
		}
	}

	if rec := sink.assignments[0]; rec.DriverID != "Driver 1" || !rec.FromQueue || rec.PickupETA != 4 {
		t.Fatalf("assignment record wrong: %+v", rec)
	}
}

func TestEventCollectorStopsOnCancel(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sink := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	StartEventCollector(ctx, bus, sink)
	cancel()

	// After cancellation the subscription is dropped; events must not land.
	time.Sleep(50 * time.Millisecond)
	bus.Publish(events.AssignmentEvent{RequestID: "Request 1"})
	time.Sleep(50 * time.Millisecond)

	if a, _, _, _ := sink.counts(); a != 0 {
		t.Fatalf("collector recorded after cancel: %d", a)
	}
}

func TestMultiSinkFansOut(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	multi := NewMultiSink(a, b, coremetrics.NopSink{})

	if err := multi.RecordAssignment(coremetrics.AssignmentRecord{RequestID: "Request 1"}); err != nil {
		t.Fatalf("assignment: %v", err)
	}
	if err := multi.RecordTrip(coremetrics.TripRecord{RequestID: "Request 1"}); err != nil {
		t.Fatalf("trip: %v", err)
	}
	if err := multi.RecordTick(coremetrics.TickRecord{Tick: 1}); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if err := multi.RecordQueued(coremetrics.QueueRecord{RequestID: "Request 2"}); err != nil {
		t.Fatalf("queued: %v", err)
	}

	for _, s := range []*recordingSink{a, b} {
		asg, tr, tk, q := s.counts()
		if asg != 1 || tr != 1 || tk != 1 || q != 1 {
			t.Fatalf("sink missed records: %d %d %d %d", asg, tr, tk, q)
		}
	}
}
