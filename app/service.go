package app

import (
	"context"
	"fmt"
	"time"

	apitable "github.com/kilianp07/jumpvector/api/table"
	"github.com/kilianp07/jumpvector/config"
	"github.com/kilianp07/jumpvector/core/journal"
	"github.com/kilianp07/jumpvector/core/jumpvector"
	coremetrics "github.com/kilianp07/jumpvector/core/metrics"
	coremon "github.com/kilianp07/jumpvector/core/monitoring"
	"github.com/kilianp07/jumpvector/core/operator"
	_ "github.com/kilianp07/jumpvector/infra/handlers"
	"github.com/kilianp07/jumpvector/infra/logger"
	"github.com/kilianp07/jumpvector/infra/metrics"
	"github.com/kilianp07/jumpvector/infra/monitoring"
	"github.com/kilianp07/jumpvector/infra/mqtt"
	"github.com/kilianp07/jumpvector/internal/eventbus"
)

// Service wires the jump vector to its transports and reporting.
type Service struct {
	Operator *operator.Operator

	cfg     *config.Config
	bus     *eventbus.Bus
	sink    coremetrics.MetricsSink
	journal journal.Store
	server  *mqtt.PahoServer
	log     logger.Logger
}

// New creates a Service from the configuration. The MQTT server is only
// created when a broker is configured.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	table, err := jumpvector.Build(cfg.Table)
	if err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}
	store, err := journal.Open(cfg.Journal)
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("metrics: %w", err)
	}
	if r, ok := sink.(coremetrics.TableSizeRecorder); ok {
		if err := r.RecordTableSize(table.Len(), table.Capacity()); err != nil {
			logg.Warnf("record table size: %v", err)
		}
	}

	bus := eventbus.New()
	op := operator.New(table,
		operator.WithEventBus(bus),
		operator.WithJournal(store),
		operator.WithLogger(logger.New("operator")),
	)
	svc := &Service{Operator: op, cfg: cfg, bus: bus, sink: sink, journal: store, log: logg}

	if cfg.MQTT.Broker != "" {
		svc.server, err = mqtt.NewPahoServer(cfg.MQTT, op)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("mqtt server: %w", err)
		}
	}
	logg.Infof("jump vector loaded: %d/%d entries", table.Len(), table.Capacity())
	return svc, nil
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.bus, s.sink, s.log)
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if addr := s.cfg.API.Addr; addr != "" {
		h := apitable.NewMux(s.Operator, s.cfg.API.Token)
		timeout := time.Duration(s.cfg.API.ReadTimeoutSeconds) * time.Second
		go func() {
			if err := apitable.ListenAndServe(ctx, addr, h, timeout); err != nil {
				s.log.Errorf("api server: %v", err)
			}
		}()
	}
	if s.server != nil {
		go func() {
			if err := s.server.Serve(ctx); err != nil {
				s.log.Errorf("mqtt server: %v", err)
				coremon.CaptureException(err, map[string]string{"module": "mqtt"})
			}
		}()
	}
	<-ctx.Done()
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	coremon.Flush(2 * time.Second)
	return s.journal.Close()
}
