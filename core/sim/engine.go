// Package sim contains the dispatch and simulation engine: the tick loop
// that moves drivers, manages trip phases, and drains the waiting queue
// whenever driver availability changes.
package sim

import (
	"sync"
	"time"

	"github.com/ridegrid/ridegrid/core/events"
	"github.com/ridegrid/ridegrid/core/logger"
	"github.com/ridegrid/ridegrid/core/model"
	"github.com/ridegrid/ridegrid/core/queue"
	"github.com/ridegrid/ridegrid/core/registry"
	"github.com/ridegrid/ridegrid/core/scoring"
	"github.com/ridegrid/ridegrid/internal/eventbus"
)

// Engine owns the whole simulation world: the three registries, the waiting
// queue and the current config. It is the sole mutator of cross-entity links.
// Every public operation takes the engine lock, so intermediate states
// (driver marked on-trip before its request is marked assigned) are never
// observable from a concurrent host.
type Engine struct {
	mu       sync.Mutex
	cfg      Config
	drivers  *registry.DriverRegistry
	riders   *registry.RiderRegistry
	requests *registry.RequestRegistry
	queue    *queue.WaitingQueue
	tick     int

	log logger.Logger
	bus eventbus.EventBus
	now func() time.Time
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

// NewEngine creates an engine with an empty world. The bus may be nil when no
// observer is interested in simulation events.
func NewEngine(cfg Config, log logger.Logger, bus eventbus.EventBus) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Engine{
		cfg:      cfg,
		drivers:  registry.NewDriverRegistry(),
		riders:   registry.NewRiderRegistry(),
		requests: registry.NewRequestRegistry(),
		queue:    queue.New(),
		log:      log,
		bus:      bus,
		now:      time.Now,
	}, nil
}

// AddDriver creates an available driver and immediately drains the queue: the
// newcomer may be the best match for a long-waiting request.
func (e *Engine) AddDriver(x, y int) (model.Driver, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, err := e.drivers.Add(model.Position{X: x, Y: y}, e.cfg.Grid())
	if err != nil {
		return model.Driver{}, err
	}
	e.log.Infof("driver %s added at %s", d.ID, d.Pos)
	e.drainQueue()
	return cloneDriver(d), nil
}

// RemoveDriver deletes the driver, reporting whether it existed. A request
// assigned to the removed driver stays assigned to the now-gone id; it is
// neither requeued nor failed.
func (e *Engine) RemoveDriver(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drivers.Remove(id)
}

// AddRider creates a rider together with its ride request. The request is
// assigned to the best available driver right away, or queued when none is.
func (e *Engine) AddRider(pickupX, pickupY, dropoffX, dropoffY int) (model.Rider, model.RideRequest, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rd, err := e.riders.Add(
		model.Position{X: pickupX, Y: pickupY},
		model.Position{X: dropoffX, Y: dropoffY},
		e.cfg.Grid(),
	)
	if err != nil {
		return model.Rider{}, model.RideRequest{}, err
	}
	req := e.openRequest(rd)
	return *rd, *req, nil
}

// RemoveRider drops the rider, its requests and any queued entries, reporting
// whether the rider existed. A driver already en route for this rider keeps
// driving to the stale target; it is not released.
func (e *Engine) RemoveRider(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.removeRiderLocked(id)
}

// CreateRequest opens an additional request for an existing rider. The second
// return is false when the rider does not exist.
func (e *Engine) CreateRequest(riderID string) (model.RideRequest, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rd, ok := e.riders.Get(riderID)
	if !ok {
		return model.RideRequest{}, false
	}
	req := e.openRequest(rd)
	return *req, true
}

// AdvanceTick advances the simulation by one tick:
//
//  1. every on-trip driver moves one step; reaching the pickup flips the
//     phase, reaching the dropoff completes the trip and immediately drains
//     the queue against the freed driver;
//  2. drivers still available (and not freed this very tick) age by one
//     idle tick;
//  3. a final drain covers drivers that were available all along.
//
// A driver assigned during this tick's drains moves for the first time on the
// next tick: movement strictly precedes assignment.
func (e *Engine) AdvanceTick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tick++
	busy := e.drivers.OnTrip()
	queuedBefore := e.queue.Len()
	e.log.Debugf("tick %d: %d drivers on trip", e.tick, len(busy))

	completed := make(map[string]bool)
	for _, d := range busy {
		if e.moveDriver(d) {
			completed[d.ID] = true
		}
	}

	for _, d := range e.drivers.Available() {
		if completed[d.ID] {
			// Freed this tick; its idle clock restarts at zero.
			continue
		}
		e.drivers.IncrementIdle(d)
	}

	e.drainQueue()

	e.publish(events.TickEvent{
		Tick:       e.tick,
		Moved:      len(busy),
		Completed:  len(completed),
		Assigned:   queuedBefore - e.queue.Len(),
		QueueDepth: e.queue.Len(),
		Time:       e.now(),
	})
}

// Reset clears the whole world. Registries empty, counters restart at 1.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.drivers.Clear()
	e.riders.Clear()
	e.requests.Clear()
	e.queue.Clear()
	e.tick = 0
	e.log.Infof("simulation reset")
}

// Tick returns the number of ticks advanced since the last reset.
func (e *Engine) Tick() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// Config returns the current simulation config.
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// SetConfig replaces the simulation config after validating it. Existing
// entities are not re-checked against the new bounds; bounds apply at
// creation time only.
func (e *Engine) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()
	return nil
}

// GetDriver returns a snapshot of the driver with the given id.
func (e *Engine) GetDriver(id string) (model.Driver, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, ok := e.drivers.Get(id)
	if !ok {
		return model.Driver{}, false
	}
	return cloneDriver(d), true
}

// GetRider returns a snapshot of the rider with the given id.
func (e *Engine) GetRider(id string) (model.Rider, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rd, ok := e.riders.Get(id)
	if !ok {
		return model.Rider{}, false
	}
	return *rd, true
}

// GetRequest returns a snapshot of the request with the given id.
func (e *Engine) GetRequest(id string) (model.RideRequest, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	req, ok := e.requests.Get(id)
	if !ok {
		return model.RideRequest{}, false
	}
	return *req, true
}

// ListDrivers returns a snapshot of all drivers in insertion order.
func (e *Engine) ListDrivers() []model.Driver {
	e.mu.Lock()
	defer e.mu.Unlock()
	ds := e.drivers.List()
	out := make([]model.Driver, len(ds))
	for i, d := range ds {
		out[i] = cloneDriver(d)
	}
	return out
}

// ListRiders returns a snapshot of all riders in insertion order.
func (e *Engine) ListRiders() []model.Rider {
	e.mu.Lock()
	defer e.mu.Unlock()
	rs := e.riders.List()
	out := make([]model.Rider, len(rs))
	for i, rd := range rs {
		out[i] = *rd
	}
	return out
}

// ListRequests returns a snapshot of all requests in insertion order,
// completed ones included.
func (e *Engine) ListRequests() []model.RideRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	rs := e.requests.List()
	out := make([]model.RideRequest, len(rs))
	for i, req := range rs {
		out[i] = *req
	}
	return out
}

// openRequest creates a request for the rider and places it: immediate
// assignment when a driver is available, the waiting queue otherwise.
// Caller holds the lock.
func (e *Engine) openRequest(rd *model.Rider) *model.RideRequest {
	req := e.requests.Create(rd)
	if !e.tryAssign(req) {
		e.queue.Enqueue(req)
		e.log.Infof("request %s queued (depth %d)", req.ID, e.queue.Len())
		e.publish(events.RequestQueuedEvent{
			RequestID:  req.ID,
			RiderID:    req.RiderID,
			QueueDepth: e.queue.Len(),
			Time:       e.now(),
		})
	}
	return req
}

// tryAssign attempts a single immediate assignment against all currently
// available drivers. An empty pool is routine, not an error.
func (e *Engine) tryAssign(req *model.RideRequest) bool {
	best, err := scoring.FindBest(e.drivers.Available(), req)
	if err != nil {
		return false
	}
	e.assign(req, best, false)
	return true
}

// assign establishes the request/driver link and publishes the event.
func (e *Engine) assign(req *model.RideRequest, d *model.Driver, fromQueue bool) {
	e.requests.Assign(req, d.ID)
	d.Status = model.DriverOnTrip
	d.Trip = &model.Trip{
		Phase:     model.PhaseToPickup,
		Target:    req.Pickup,
		RequestID: req.ID,
	}
	d.IdleTicks = 0

	eta := scoring.ETA(d.Pos, req.Pickup, e.cfg.DriverSpeed)
	e.log.Infof("request %s assigned to %s (pickup ETA %d)", req.ID, d.ID, eta)
	e.publish(events.AssignmentEvent{
		RequestID: req.ID,
		RiderID:   req.RiderID,
		DriverID:  d.ID,
		PickupETA: eta,
		FromQueue: fromQueue,
		Time:      e.now(),
	})
}

// drainQueue runs one queue pass against the currently available drivers.
func (e *Engine) drainQueue() []*model.RideRequest {
	return e.queue.Drain(e.drivers.Available(), func(req *model.RideRequest, d *model.Driver) {
		e.assign(req, d, true)
	})
}

// moveDriver advances one on-trip driver and handles phase transitions. It
// reports whether the driver completed its trip on this step.
func (e *Engine) moveDriver(d *model.Driver) bool {
	e.drivers.MoveOneStep(d)
	if !d.AtTarget() {
		return false
	}

	req, ok := e.requests.Get(d.Trip.RequestID)
	if !ok {
		// The request vanished under the driver (rider removed mid-trip).
		// Not fatal for the tick; the driver stays stranded on-trip.
		e.log.Warnf("driver %s reached target %s but request %s is gone", d.ID, d.Pos, d.Trip.RequestID)
		return false
	}

	switch d.Trip.Phase {
	case model.PhaseToPickup:
		d.Trip.Phase = model.PhaseToDropoff
		d.Trip.Target = req.Dropoff
		e.log.Debugf("driver %s picked up %s, heading to %s", d.ID, req.RiderID, req.Dropoff)
		return false
	case model.PhaseToDropoff:
		e.completeTrip(d, req)
		return true
	default:
		return false
	}
}

// completeTrip finishes the ride: the request is kept as completed, the
// driver returns to the pool, the rider leaves the world, and the freed
// driver is offered to the queue within the same tick.
func (e *Engine) completeTrip(d *model.Driver, req *model.RideRequest) {
	e.requests.Complete(req)
	e.drivers.CompleteTrip(d)

	// Drop the rider and any still-waiting requests it had left behind. The
	// completed request itself stays in the registry.
	riderID := req.RiderID
	for _, other := range e.requests.List() {
		if other.RiderID == riderID && other.Status == model.RequestWaiting {
			e.queue.Remove(other)
			e.requests.RemoveOne(other)
		}
	}
	e.riders.Remove(riderID)

	e.log.Infof("driver %s completed %s at %s", d.ID, req.ID, d.Pos)
	e.publish(events.TripCompletedEvent{
		RequestID: req.ID,
		DriverID:  d.ID,
		Dropoff:   d.Pos,
		Time:      e.now(),
	})
	e.drainQueue()
}

// removeRiderLocked purges the rider, its registry requests and queue
// entries. Caller holds the lock.
func (e *Engine) removeRiderLocked(id string) bool {
	for _, req := range e.requests.RemoveForRider(id) {
		e.queue.Remove(req)
	}
	return e.riders.Remove(id)
}

func (e *Engine) publish(ev eventbus.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}

// cloneDriver copies a driver so callers never share the engine's mutable
// trip state.
func cloneDriver(d *model.Driver) model.Driver {
	out := *d
	if d.Trip != nil {
		t := *d.Trip
		out.Trip = &t
	}
	return out
}
