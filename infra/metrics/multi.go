package metrics

import coremetrics "github.com/ridegrid/ridegrid/core/metrics"

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAssignment forwards the record to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordAssignment(rec coremetrics.AssignmentRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordAssignment(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordTrip forwards trip completions to sinks that record them.
func (m *MultiSink) RecordTrip(rec coremetrics.TripRecord) error {
	for _, s := range m.Sinks {
		if tr, ok := s.(coremetrics.TripRecorder); ok {
			if err := tr.RecordTrip(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordTick forwards tick summaries to sinks that record them.
func (m *MultiSink) RecordTick(rec coremetrics.TickRecord) error {
	for _, s := range m.Sinks {
		if tr, ok := s.(coremetrics.TickRecorder); ok {
			if err := tr.RecordTick(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordQueued forwards queue entries to sinks that record them.
func (m *MultiSink) RecordQueued(rec coremetrics.QueueRecord) error {
	for _, s := range m.Sinks {
		if qr, ok := s.(coremetrics.QueueRecorder); ok {
			if err := qr.RecordQueued(rec); err != nil {
				return err
			}
		}
	}
	return nil
}
