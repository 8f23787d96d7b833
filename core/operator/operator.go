package operator

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/kilianp07/jumpvector/core/events"
	"github.com/kilianp07/jumpvector/core/journal"
	"github.com/kilianp07/jumpvector/core/jumpvector"
	"github.com/kilianp07/jumpvector/core/logger"
	"github.com/kilianp07/jumpvector/core/monitoring"
	"github.com/kilianp07/jumpvector/internal/eventbus"
)

// OutcomePanic is reported in Reply.Outcome when the handler panicked.
const OutcomePanic = "panic"

// Operator serializes access to a Table and reports each dispatch.
type Operator struct {
	mu    sync.Mutex
	table *jumpvector.Table

	bus     eventbus.EventBus
	journal journal.Store
	log     logger.Logger
	now     func() time.Time
}

// Option configures an Operator.
type Option func(*Operator)

// WithEventBus publishes DispatchEvent and RegistrationEvent on bus.
func WithEventBus(bus eventbus.EventBus) Option {
	return func(o *Operator) { o.bus = bus }
}

// WithJournal appends a record for every handled command.
func WithJournal(s journal.Store) Option {
	return func(o *Operator) { o.journal = s }
}

// WithLogger sets the logger used for journal failures and debug output.
func WithLogger(l logger.Logger) Option {
	return func(o *Operator) { o.log = l }
}

// New wraps table. The Operator becomes the only caller allowed to touch
// the table.
func New(table *jumpvector.Table, opts ...Option) *Operator {
	o := &Operator{table: table, now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	if o.journal == nil {
		o.journal = journal.NopStore{}
	}
	if o.log == nil {
		o.log = nopLogger{}
	}
	return o
}

// Handle runs cmd against the table. A panicking handler is recovered,
// reported to the monitor and answered with Result=false.
func (o *Operator) Handle(ctx context.Context, cmd Command) Reply {
	start := o.now()
	outcome, panicked := o.dispatch(cmd)
	latency := o.now().Sub(start)

	reply := Reply{
		CommandID: cmd.CommandID,
		Code:      cmd.Code,
		Value:     cmd.Value,
		Mapped:    outcome != jumpvector.Unmapped,
		Result:    outcome == jumpvector.Accepted,
		Outcome:   outcome.String(),
	}
	if panicked {
		reply.Outcome = OutcomePanic
	}

	if o.bus != nil {
		o.bus.Publish(events.DispatchEvent{
			CommandID: cmd.CommandID,
			Code:      cmd.Code,
			Value:     cmd.Value,
			Outcome:   outcome,
			Panicked:  panicked,
			Source:    cmd.Source,
			Latency:   latency,
			Time:      start,
		})
	}
	rec := journal.Record{
		Timestamp:     start,
		CommandID:     cmd.CommandID,
		Code:          cmd.Code,
		Value:         cmd.Value,
		Outcome:       reply.Outcome,
		Result:        reply.Result,
		Panicked:      panicked,
		Source:        cmd.Source,
		LatencyMicros: latency.Microseconds(),
	}
	if err := o.journal.Append(ctx, rec); err != nil {
		o.log.Errorf("journal append %s: %v", cmd.CommandID, err)
	}
	o.log.Debugw("command handled", map[string]any{
		"command_id": cmd.CommandID,
		"code":       cmd.Code,
		"value":      cmd.Value,
		"outcome":    reply.Outcome,
	})
	return reply
}

func (o *Operator) dispatch(cmd Command) (outcome jumpvector.Outcome, panicked bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err := monitoring.CapturePanic(r, map[string]string{
				"module":     "operator",
				"code":       strconv.FormatUint(uint64(cmd.Code), 10),
				"command_id": cmd.CommandID,
			})
			o.log.Errorf("handler for code %d: %v", cmd.Code, err)
			outcome, panicked = jumpvector.Rejected, true
		}
	}()
	return o.table.Dispatch(cmd.Code, cmd.Value), false
}

// ProcessValue is the boolean form of Handle used by callers that only need
// the handler's result.
func (o *Operator) ProcessValue(ctx context.Context, code uint32, value byte) bool {
	return o.Handle(ctx, Command{CommandID: strconv.FormatInt(o.now().UnixNano(), 10), Code: code, Value: value, Source: "local"}).Result
}

// Register adds a handler to the table at runtime.
func (o *Operator) Register(code byte, h jumpvector.Handler) bool {
	o.mu.Lock()
	ok := o.table.AddHandler(code, h)
	active, capacity := o.table.Len(), o.table.Capacity()
	o.mu.Unlock()

	if o.bus != nil {
		o.bus.Publish(events.RegistrationEvent{
			Code:     code,
			Accepted: ok,
			Active:   active,
			Capacity: capacity,
			Time:     o.now(),
		})
	}
	if !ok {
		o.log.Warnf("register code %d refused: table full (%d/%d)", code, active, capacity)
	}
	return ok
}

// Validate reports whether code is mapped.
func (o *Operator) Validate(code uint32) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.table.ValidateAddress(code)
}

// Snapshot describes the table contents at a point in time.
type Snapshot struct {
	Codes    []uint32 `json:"codes"`
	Active   int      `json:"active"`
	Capacity int      `json:"capacity"`
}

// Snapshot returns the active codes in registration order.
func (o *Operator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	entries := o.table.Entries()
	codes := make([]uint32, len(entries))
	for i, e := range entries {
		codes[i] = e.Code
	}
	return Snapshot{Codes: codes, Active: o.table.Len(), Capacity: o.table.Capacity()}
}

// Journal returns the store records are written to.
func (o *Operator) Journal() journal.Store { return o.journal }

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Infow(string, map[string]any)  {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
