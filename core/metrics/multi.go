package metrics

import "errors"

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDispatch forwards the record to every sink. All sinks are tried; the
// returned error joins the individual failures.
func (m *MultiSink) RecordDispatch(rec DispatchRecord) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordDispatch(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordTableSize forwards table occupancy when supported by the sink.
func (m *MultiSink) RecordTableSize(active, capacity int) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(TableSizeRecorder); ok {
			if err := r.RecordTableSize(active, capacity); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RecordRegistration forwards registrations when supported by the sink.
func (m *MultiSink) RecordRegistration(rec RegistrationRecord) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(RegistrationRecorder); ok {
			if err := r.RecordRegistration(rec); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink holding resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
