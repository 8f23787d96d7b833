package metrics

import (
	"time"

	"github.com/kilianp07/jumpvector/core/jumpvector"
)

// DispatchRecord describes one command run against the jump vector.
type DispatchRecord struct {
	CommandID string
	Code      uint32
	Outcome   jumpvector.Outcome
	Panicked  bool
	Latency   time.Duration
	Source    string
	Time      time.Time
}

// MetricsSink records dispatches for observability purposes.
type MetricsSink interface {
	RecordDispatch(rec DispatchRecord) error
}

// TableSizeRecorder records the occupancy of the table.
type TableSizeRecorder interface {
	RecordTableSize(active, capacity int) error
}

// RegistrationRecord describes a runtime AddHandler call.
type RegistrationRecord struct {
	Code     byte
	Accepted bool
	Time     time.Time
}

// RegistrationRecorder records runtime handler registrations.
type RegistrationRecorder interface {
	RecordRegistration(rec RegistrationRecord) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordDispatch(DispatchRecord) error         { return nil }
func (NopSink) RecordTableSize(int, int) error              { return nil }
func (NopSink) RecordRegistration(RegistrationRecord) error { return nil }
