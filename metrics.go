package towertrack

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus; the HTTP server in the server package does exactly that for
// its own request metrics.
type MetricsCollector interface {
	// RecordCatalogLoad is called after a catalog load.
	// loaded is the number of records accepted, skipped the number
	// rejected by the manager guards.
	RecordCatalogLoad(loaded, skipped int, duration time.Duration)

	// RecordSync is called after each completion sync.
	// awarded is the number of awarded badges fetched; err is nil on
	// success.
	RecordSync(awarded int, duration time.Duration, err error)

	// RecordSnapshot is called after each snapshot save or load.
	RecordSnapshot(op string, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCatalogLoad(int, int, time.Duration)   {}
func (NoopMetricsCollector) RecordSync(int, time.Duration, error)        {}
func (NoopMetricsCollector) RecordSnapshot(string, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	CatalogLoads   atomic.Int64
	RecordsLoaded  atomic.Int64
	RecordsSkipped atomic.Int64
	SyncCount      atomic.Int64
	SyncErrors     atomic.Int64
	SyncTotalNanos atomic.Int64
	SnapshotCount  atomic.Int64
	SnapshotErrors atomic.Int64
}

// RecordCatalogLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCatalogLoad(loaded, skipped int, duration time.Duration) {
	b.CatalogLoads.Add(1)
	b.RecordsLoaded.Add(int64(loaded))
	b.RecordsSkipped.Add(int64(skipped))
}

// RecordSync implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSync(awarded int, duration time.Duration, err error) {
	b.SyncCount.Add(1)
	b.SyncTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SyncErrors.Add(1)
	}
}

// RecordSnapshot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshot(op string, duration time.Duration, err error) {
	b.SnapshotCount.Add(1)
	if err != nil {
		b.SnapshotErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		CatalogLoads:   b.CatalogLoads.Load(),
		RecordsLoaded:  b.RecordsLoaded.Load(),
		RecordsSkipped: b.RecordsSkipped.Load(),
		SyncCount:      b.SyncCount.Load(),
		SyncErrors:     b.SyncErrors.Load(),
		SyncAvgNanos:   b.avgSyncNanos(),
		SnapshotCount:  b.SnapshotCount.Load(),
		SnapshotErrors: b.SnapshotErrors.Load(),
	}
}

func (b *BasicMetricsCollector) avgSyncNanos() int64 {
	count := b.SyncCount.Load()
	if count == 0 {
		return 0
	}
	return b.SyncTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	CatalogLoads   int64
	RecordsLoaded  int64
	RecordsSkipped int64
	SyncCount      int64
	SyncErrors     int64
	SyncAvgNanos   int64
	SnapshotCount  int64
	SnapshotErrors int64
}
