package metrics

import (
	"context"

	"github.com/ridegrid/ridegrid/core/events"
	coremetrics "github.com/ridegrid/ridegrid/core/metrics"
	"github.com/ridegrid/ridegrid/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// simulation events. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				record(sink, ev)
			}
		}
	}()
}

func record(sink coremetrics.MetricsSink, ev eventbus.Event) {
	switch e := ev.(type) {
	case events.AssignmentEvent:
		_ = sink.RecordAssignment(coremetrics.AssignmentRecord{
			RequestID: e.RequestID,
			RiderID:   e.RiderID,
			DriverID:  e.DriverID,
			PickupETA: e.PickupETA,
			FromQueue: e.FromQueue,
			Time:      e.Time,
		})
	case events.TripCompletedEvent:
		if tr, ok := sink.(coremetrics.TripRecorder); ok {
			_ = tr.RecordTrip(coremetrics.TripRecord{
				RequestID: e.RequestID,
				DriverID:  e.DriverID,
				Time:      e.Time,
			})
		}
	case events.TickEvent:
		if tr, ok := sink.(coremetrics.TickRecorder); ok {
			_ = tr.RecordTick(coremetrics.TickRecord{
				Tick:       e.Tick,
				Moved:      e.Moved,
				Completed:  e.Completed,
				Assigned:   e.Assigned,
				QueueDepth: e.QueueDepth,
				Time:       e.Time,
			})
		}
	case events.RequestQueuedEvent:
		if qr, ok := sink.(coremetrics.QueueRecorder); ok {
			_ = qr.RecordQueued(coremetrics.QueueRecord{
				RequestID:  e.RequestID,
				QueueDepth: e.QueueDepth,
				Time:       e.Time,
			})
		}
	}
}
