package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/ridegrid/ridegrid/core/metrics"
	"github.com/ridegrid/ridegrid/infra/logger"
)

const influxTimeout = 5 * time.Second

// InfluxSink writes simulation events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg coremetrics.Config) *InfluxSink {
	client := influxdb2.NewClientWithOptions(cfg.InfluxURL, cfg.InfluxToken,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: influxTimeout}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// when the health check fails, so a missing backend never blocks simulation.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), influxTimeout)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordAssignment writes one assignment point.
func (s *InfluxSink) RecordAssignment(rec coremetrics.AssignmentRecord) error {
	p := write.NewPointWithMeasurement("assignment").
		AddTag("driver_id", rec.DriverID).
		AddTag("from_queue", strconv.FormatBool(rec.FromQueue)).
		AddField("request_id", rec.RequestID).
		AddField("rider_id", rec.RiderID).
		AddField("pickup_eta", rec.PickupETA).
		SetTime(rec.Time)
	return s.write(p)
}

// RecordTrip writes one trip completion point.
func (s *InfluxSink) RecordTrip(rec coremetrics.TripRecord) error {
	p := write.NewPointWithMeasurement("trip_completed").
		AddTag("driver_id", rec.DriverID).
		AddField("request_id", rec.RequestID).
		SetTime(rec.Time)
	return s.write(p)
}

// RecordTick writes one tick summary point.
func (s *InfluxSink) RecordTick(rec coremetrics.TickRecord) error {
	p := write.NewPointWithMeasurement("tick").
		AddField("tick", rec.Tick).
		AddField("moved", rec.Moved).
		AddField("completed", rec.Completed).
		AddField("assigned", rec.Assigned).
		AddField("queue_depth", rec.QueueDepth).
		SetTime(rec.Time)
	return s.write(p)
}

// RecordQueued writes one queue entry point.
func (s *InfluxSink) RecordQueued(rec coremetrics.QueueRecord) error {
	p := write.NewPointWithMeasurement("request_queued").
		AddField("request_id", rec.RequestID).
		AddField("queue_depth", rec.QueueDepth).
		SetTime(rec.Time)
	return s.write(p)
}

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), influxTimeout)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }
