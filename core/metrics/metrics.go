// Package metrics defines the observability event types and sink interfaces
// used by the simulation. Concrete sinks live under infra/metrics.
package metrics

import "time"

// AssignmentRecord captures one driver/request match.
type AssignmentRecord struct {
	RequestID string
	RiderID   string
	DriverID  string
	PickupETA int
	FromQueue bool
	Time      time.Time
}

// TripRecord captures one completed trip.
type TripRecord struct {
	RequestID string
	DriverID  string
	Time      time.Time
}

// TickRecord captures one simulation step.
type TickRecord struct {
	Tick       int
	Moved      int
	Completed  int
	Assigned   int
	QueueDepth int
	Time       time.Time
}

// QueueRecord captures a request entering the waiting queue.
type QueueRecord struct {
	RequestID  string
	QueueDepth int
	Time       time.Time
}

// MetricsSink records assignments for observability purposes.
type MetricsSink interface {
	RecordAssignment(rec AssignmentRecord) error
}

// TripRecorder records completed trips.
type TripRecorder interface {
	RecordTrip(rec TripRecord) error
}

// TickRecorder records simulation steps.
type TickRecorder interface {
	RecordTick(rec TickRecord) error
}

// QueueRecorder records queue entries.
type QueueRecorder interface {
	RecordQueued(rec QueueRecord) error
}

// NopSink discards every record.
type NopSink struct{}

func (NopSink) RecordAssignment(AssignmentRecord) error { return nil }
func (NopSink) RecordTrip(TripRecord) error             { return nil }
func (NopSink) RecordTick(TickRecord) error             { return nil }
func (NopSink) RecordQueued(QueueRecord) error          { return nil }

// Config defines settings for metrics sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusAddr    string `json:"prometheus_addr"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}
