package sim

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/ridegrid/ridegrid/core/model"
	"github.com/ridegrid/ridegrid/core/scoring"
)

// Stats is a snapshot of the simulation counters. FailedRides is always
// zero, the waiting queue never rejects a rider. AverageETA is the mean
// remaining pickup ETA (in ticks at the configured speed) over drivers
// currently heading to a pickup.
type Stats struct {
	TotalRequests  int     `json:"total_requests"`
	CompletedRides int     `json:"completed_rides"`
	FailedRides    int     `json:"failed_rides"`
	AverageETA     float64 `json:"average_eta"`
	ActiveDrivers  int     `json:"active_drivers"`
	TotalDrivers   int     `json:"total_drivers"`
}

// QueuedRequestInfo summarises one waiting queue entry.
type QueuedRequestInfo struct {
	ID        string    `json:"id"`
	RiderID   string    `json:"rider_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// QueueInfo describes the waiting queue and the driver pool it drains into.
type QueueInfo struct {
	QueueLength        int                 `json:"queue_length"`
	WaitingRequests    int                 `json:"waiting_requests"`
	AvailableDrivers   int                 `json:"available_drivers"`
	AvailableDriverIDs []string            `json:"available_driver_ids"`
	QueuedRequests     []QueuedRequestInfo `json:"queue_requests"`
}

// Stats computes the current simulation statistics.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	var etas []float64
	for _, d := range e.drivers.OnTrip() {
		if d.Trip.Phase == model.PhaseToPickup {
			etas = append(etas, float64(scoring.ETA(d.Pos, d.Trip.Target, e.cfg.DriverSpeed)))
		}
	}
	var avg float64
	if len(etas) > 0 {
		avg = stat.Mean(etas, nil)
	}

	active := 0
	for _, d := range e.drivers.List() {
		if d.Status != model.DriverOffline {
			active++
		}
	}

	return Stats{
		TotalRequests:  e.requests.Len(),
		CompletedRides: len(e.requests.ByStatus(model.RequestCompleted)),
		FailedRides:    0,
		AverageETA:     avg,
		ActiveDrivers:  active,
		TotalDrivers:   e.drivers.Len(),
	}
}

// QueueInfo reports the waiting queue contents and the available pool.
func (e *Engine) QueueInfo() QueueInfo {
	e.mu.Lock()
	defer e.mu.Unlock()

	avail := e.drivers.Available()
	ids := make([]string, len(avail))
	for i, d := range avail {
		ids[i] = d.ID
	}

	queued := e.queue.Requests()
	qs := make([]QueuedRequestInfo, len(queued))
	for i, req := range queued {
		qs[i] = QueuedRequestInfo{
			ID:        req.ID,
			RiderID:   req.RiderID,
			Status:    req.Status.String(),
			CreatedAt: req.CreatedAt,
		}
	}

	return QueueInfo{
		QueueLength:        e.queue.Len(),
		WaitingRequests:    len(e.requests.ByStatus(model.RequestWaiting)),
		AvailableDrivers:   len(avail),
		AvailableDriverIDs: ids,
		QueuedRequests:     qs,
	}
}
