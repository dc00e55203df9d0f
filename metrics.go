package prefs

import "time"

// Metrics receives engine counters. pkg/metrics provides a Prometheus
// implementation.
type Metrics interface {
	LoadCompleted(report LoadReport, elapsed time.Duration)
	FieldRejected(field string)
	WriteDispatched(bytes int)
	WriteCompleted(elapsed time.Duration, err error)
	SerializeFailed()
	StateChanged(dirty, inFlight bool)
}

type noopMetrics struct{}

func (noopMetrics) LoadCompleted(LoadReport, time.Duration) {}
func (noopMetrics) FieldRejected(string)                    {}
func (noopMetrics) WriteDispatched(int)                     {}
func (noopMetrics) WriteCompleted(time.Duration, error)     {}
func (noopMetrics) SerializeFailed()                        {}
func (noopMetrics) StateChanged(bool, bool)                 {}
