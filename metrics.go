package aegis

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordRun is called after each segmentation run. segments is the
	// final live segment count (zero when the run failed), duration the
	// total time taken, err nil if successful.
	RecordRun(method string, segments int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRun(string, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RunCount      atomic.Int64
	RunErrors     atomic.Int64
	RunTotalNanos atomic.Int64
	LastSegments  atomic.Int64
}

// RecordRun records a segmentation run.
func (c *BasicMetricsCollector) RecordRun(_ string, segments int, duration time.Duration, err error) {
	c.RunCount.Add(1)
	c.RunTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		c.RunErrors.Add(1)
		return
	}
	c.LastSegments.Store(int64(segments))
}

// Stats is a point-in-time view of collected metrics.
type Stats struct {
	RunCount     int64
	RunErrors    int64
	RunAvgNanos  int64
	LastSegments int64
}

// GetStats returns a snapshot of the collected metrics.
func (c *BasicMetricsCollector) GetStats() Stats {
	count := c.RunCount.Load()
	var avg int64
	if count > 0 {
		avg = c.RunTotalNanos.Load() / count
	}
	return Stats{
		RunCount:     count,
		RunErrors:    c.RunErrors.Load(),
		RunAvgNanos:  avg,
		LastSegments: c.LastSegments.Load(),
	}
}
