package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/ridegrid/ridegrid/core/metrics"
)

// PromSink records simulation events in Prometheus metrics.
type PromSink struct {
	assignments *prometheus.CounterVec
	trips       prometheus.Counter
	queued      prometheus.Counter
	ticks       prometheus.Counter
	queueDepth  prometheus.Gauge
	pickupETA   prometheus.Histogram
}

// NewPromSink registers simulation metrics on the default Prometheus
// registerer. The metrics server is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_assignments_total",
		Help: "Total number of request assignments",
	}, []string{"from_queue"})
	trips := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_trips_completed_total",
		Help: "Total number of completed trips",
	})
	queued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_requests_queued_total",
		Help: "Total number of requests that entered the waiting queue",
	})
	ticks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_ticks_total",
		Help: "Total number of simulation ticks advanced",
	})
	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_queue_depth",
		Help: "Requests currently waiting in the queue",
	})
	pickupETA := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_pickup_eta_ticks",
		Help:    "Pickup ETA at assignment time, in ticks",
		Buckets: prometheus.LinearBuckets(0, 5, 10),
	})

	sink := &PromSink{
		assignments: assignments,
		trips:       trips,
		queued:      queued,
		ticks:       ticks,
		queueDepth:  queueDepth,
		pickupETA:   pickupETA,
	}
	for _, c := range []prometheus.Collector{assignments, trips, queued, ticks, queueDepth, pickupETA} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return sink, nil
}

// RecordAssignment increments the assignment counter and observes the ETA.
func (s *PromSink) RecordAssignment(rec coremetrics.AssignmentRecord) error {
	s.assignments.WithLabelValues(strconv.FormatBool(rec.FromQueue)).Inc()
	s.pickupETA.Observe(float64(rec.PickupETA))
	return nil
}

// RecordTrip increments the completed trip counter.
func (s *PromSink) RecordTrip(coremetrics.TripRecord) error {
	s.trips.Inc()
	return nil
}

// RecordTick counts the tick and tracks the queue depth.
func (s *PromSink) RecordTick(rec coremetrics.TickRecord) error {
	s.ticks.Inc()
	s.queueDepth.Set(float64(rec.QueueDepth))
	return nil
}

// RecordQueued counts queue entries and tracks the queue depth.
func (s *PromSink) RecordQueued(rec coremetrics.QueueRecord) error {
	s.queued.Inc()
	s.queueDepth.Set(float64(rec.QueueDepth))
	return nil
}

// StartPromServer serves /metrics on addr until the context is canceled.
func StartPromServer(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
