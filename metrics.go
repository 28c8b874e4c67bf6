package walstore

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    storeBytes    prometheus.Counter
//	    fetchDuration prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordStore(bytes int64, duration time.Duration, err error) {
//	    p.storeBytes.Add(float64(bytes))
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordStore is called after each Store call.
	// bytes is the segment size uploaded, err is nil if successful.
	RecordStore(bytes int64, duration time.Duration, err error)

	// RecordFetch is called after each FetchSegment call.
	RecordFetch(duration time.Duration, err error)

	// RecordMeta is called after each Meta call.
	RecordMeta(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordStore(int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordFetch(time.Duration, error)        {}
func (NoopMetricsCollector) RecordMeta(time.Duration, error)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	StoreCount      atomic.Int64
	StoreErrors     atomic.Int64
	StoreBytes      atomic.Int64
	StoreTotalNanos atomic.Int64
	FetchCount      atomic.Int64
	FetchErrors     atomic.Int64
	FetchTotalNanos atomic.Int64
	MetaCount       atomic.Int64
	MetaErrors      atomic.Int64
}

// RecordStore implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStore(bytes int64, duration time.Duration, err error) {
	b.StoreCount.Add(1)
	b.StoreTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.StoreErrors.Add(1)
		return
	}
	b.StoreBytes.Add(bytes)
}

// RecordFetch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFetch(duration time.Duration, err error) {
	b.FetchCount.Add(1)
	b.FetchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FetchErrors.Add(1)
	}
}

// RecordMeta implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMeta(duration time.Duration, err error) {
	b.MetaCount.Add(1)
	if err != nil {
		b.MetaErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		StoreCount:    b.StoreCount.Load(),
		StoreErrors:   b.StoreErrors.Load(),
		StoreBytes:    b.StoreBytes.Load(),
		StoreAvgNanos: avg(b.StoreTotalNanos.Load(), b.StoreCount.Load()),
		FetchCount:    b.FetchCount.Load(),
		FetchErrors:   b.FetchErrors.Load(),
		FetchAvgNanos: avg(b.FetchTotalNanos.Load(), b.FetchCount.Load()),
		MetaCount:     b.MetaCount.Load(),
		MetaErrors:    b.MetaErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	StoreCount    int64
	StoreErrors   int64
	StoreBytes    int64
	StoreAvgNanos int64
	FetchCount    int64
	FetchErrors   int64
	FetchAvgNanos int64
	MetaCount     int64
	MetaErrors    int64
}
