// Package metrics defines the interfaces used to record jump vector activity.
//
// A MetricsSink records every dispatched command; sinks may additionally
// implement TableSizeRecorder and RegistrationRecorder. Concrete sinks
// (Prometheus, InfluxDB) live in infra/metrics and register themselves in the
// sink registry so that NewMetricsSink can build them from configuration.
// Several configured sinks are combined into a MultiSink.
package metrics
