package metrics

import "time"

// Collector receives pipeline instrumentation events. Implementations must be
// safe for concurrent use.
type Collector interface {
	ObserveDispatch(status string, latency time.Duration)
	ObserveRun(batchSize int, duration time.Duration)
	SetStagingCounts(pending, verified int)
	AddCommitted(count int)
}

// NoOpCollector discards all events. It is used where metrics are disabled.
type NoOpCollector struct{}

func (NoOpCollector) ObserveDispatch(string, time.Duration) {}
func (NoOpCollector) ObserveRun(int, time.Duration)         {}
func (NoOpCollector) SetStagingCounts(int, int)             {}
func (NoOpCollector) AddCommitted(int)                      {}
