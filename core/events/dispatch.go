package events

import (
	"time"

	"github.com/kilianp07/jumpvector/core/jumpvector"
)

// DispatchEvent is published for every command handled by the operator.
// Panicked is set when the handler panicked; Outcome is then Rejected.
type DispatchEvent struct {
	CommandID string
	Code      uint32
	Value     byte
	Outcome   jumpvector.Outcome
	Panicked  bool
	Source    string
	Latency   time.Duration
	Time      time.Time
}

// RegistrationEvent is published when a handler is added after start-up.
type RegistrationEvent struct {
	Code     byte
	Accepted bool
	Active   int
	Capacity int
	Time     time.Time
}
