package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/jumpvector/core/metrics"
)

// PromSink records jump vector activity in Prometheus metrics.
type PromSink struct {
	dispatches    *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	panics        prometheus.Counter
	registrations *prometheus.CounterVec
	entries       prometheus.Gauge
	capacity      prometheus.Gauge
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jumpvector_dispatch_total",
			Help: "Total number of commands dispatched, by function code and outcome",
		}, []string{"code", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jumpvector_dispatch_latency_seconds",
			Help:    "Time spent looking up and running the handler",
			Buckets: []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 1e-2, 1e-1},
		}, []string{"code"}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jumpvector_handler_panics_total",
			Help: "Number of handler invocations that panicked",
		}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jumpvector_registrations_total",
			Help: "Runtime handler registrations, by result",
		}, []string{"result"}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jumpvector_table_entries",
			Help: "Number of active entries in the jump vector",
		}),
		capacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jumpvector_table_capacity",
			Help: "Capacity of the jump vector",
		}),
	}
	var err error
	if s.dispatches, err = register(reg, s.dispatches); err != nil {
		return nil, err
	}
	if s.latency, err = register(reg, s.latency); err != nil {
		return nil, err
	}
	if s.panics, err = register(reg, s.panics); err != nil {
		return nil, err
	}
	if s.registrations, err = register(reg, s.registrations); err != nil {
		return nil, err
	}
	if s.entries, err = register(reg, s.entries); err != nil {
		return nil, err
	}
	if s.capacity, err = register(reg, s.capacity); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordDispatch counts the dispatch and observes its latency.
func (s *PromSink) RecordDispatch(rec coremetrics.DispatchRecord) error {
	code := strconv.FormatUint(uint64(rec.Code), 10)
	s.dispatches.WithLabelValues(code, rec.Outcome.String()).Inc()
	s.latency.WithLabelValues(code).Observe(rec.Latency.Seconds())
	if rec.Panicked {
		s.panics.Inc()
	}
	return nil
}

// RecordTableSize sets the occupancy gauges.
func (s *PromSink) RecordTableSize(active, capacity int) error {
	s.entries.Set(float64(active))
	s.capacity.Set(float64(capacity))
	return nil
}

// RecordRegistration counts a runtime registration attempt.
func (s *PromSink) RecordRegistration(rec coremetrics.RegistrationRecord) error {
	result := "accepted"
	if !rec.Accepted {
		result = "table_full"
	}
	s.registrations.WithLabelValues(result).Inc()
	return nil
}
