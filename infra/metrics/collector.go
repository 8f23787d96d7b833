package metrics

import (
	"context"

	"github.com/kilianp07/jumpvector/core/events"
	coremetrics "github.com/kilianp07/jumpvector/core/metrics"
	"github.com/kilianp07/jumpvector/infra/logger"
	"github.com/kilianp07/jumpvector/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// operator events. It stops when the context is canceled or the bus closed.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink, log logger.Logger) {
	if bus == nil || sink == nil {
		return
	}
	if log == nil {
		log = logger.NopLogger{}
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
				if err := collect(ev, sink); err != nil {
					log.Warnf("record %T: %v", ev, err)
				}
			}
		}
	}()
}

func collect(ev eventbus.Event, sink coremetrics.MetricsSink) error {
	switch e := ev.(type) {
	case events.DispatchEvent:
		return sink.RecordDispatch(coremetrics.DispatchRecord{
			CommandID: e.CommandID,
			Code:      e.Code,
			Outcome:   e.Outcome,
			Panicked:  e.Panicked,
			Latency:   e.Latency,
			Source:    e.Source,
			Time:      e.Time,
		})
	case events.RegistrationEvent:
		if r, ok := sink.(coremetrics.RegistrationRecorder); ok {
			if err := r.RecordRegistration(coremetrics.RegistrationRecord{
				Code:     e.Code,
				Accepted: e.Accepted,
				Time:     e.Time,
			}); err != nil {
				return err
			}
		}
		if r, ok := sink.(coremetrics.TableSizeRecorder); ok {
			return r.RecordTableSize(e.Active, e.Capacity)
		}
	}
	return nil
}
