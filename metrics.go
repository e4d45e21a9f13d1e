package camelalloc

import (
	"sync/atomic"

	"github.com/hupe1980/camelalloc/sizeclass"
)

// MetricsCollector defines an interface for collecting allocator metrics.
// Implement this interface to integrate with monitoring systems; package prom
// exports BasicMetricsCollector to Prometheus.
//
// Methods run on the allocation hot path and must not allocate through the
// allocator they observe.
type MetricsCollector interface {
	// RecordAlloc is called after each allocation.
	// size is the requested size, err is nil if successful.
	RecordAlloc(category sizeclass.Category, size int, err error)

	// RecordDealloc is called after each deallocation.
	RecordDealloc(size int)

	// RecordChunkMapped is called when an arena maps a new chunk.
	RecordChunkMapped(arena, size int)

	// RecordContention is called when the first pass skips a held arena.
	RecordContention()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAlloc(sizeclass.Category, int, error) {}
func (NoopMetricsCollector) RecordDealloc(int)                          {}
func (NoopMetricsCollector) RecordChunkMapped(int, int)                 {}
func (NoopMetricsCollector) RecordContention()                          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SmallAllocs   atomic.Int64
	LargeAllocs   atomic.Int64
	HugeAllocs    atomic.Int64
	AllocBytes    atomic.Int64
	AllocFailures atomic.Int64
	DeallocCount  atomic.Int64
	DeallocBytes  atomic.Int64
	ChunksMapped  atomic.Int64
	ChunkBytes    atomic.Int64
	Contention    atomic.Int64
}

// RecordAlloc implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAlloc(category sizeclass.Category, size int, err error) {
	if err != nil {
		b.AllocFailures.Add(1)
		return
	}
	switch category {
	case sizeclass.Small:
		b.SmallAllocs.Add(1)
	case sizeclass.Large:
		b.LargeAllocs.Add(1)
	default:
		b.HugeAllocs.Add(1)
	}
	b.AllocBytes.Add(int64(size))
}

// RecordDealloc implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDealloc(size int) {
	b.DeallocCount.Add(1)
	b.DeallocBytes.Add(int64(size))
}

// RecordChunkMapped implements MetricsCollector.
func (b *BasicMetricsCollector) RecordChunkMapped(_, size int) {
	b.ChunksMapped.Add(1)
	b.ChunkBytes.Add(int64(size))
}

// RecordContention implements MetricsCollector.
func (b *BasicMetricsCollector) RecordContention() {
	b.Contention.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SmallAllocs:   b.SmallAllocs.Load(),
		LargeAllocs:   b.LargeAllocs.Load(),
		HugeAllocs:    b.HugeAllocs.Load(),
		AllocBytes:    b.AllocBytes.Load(),
		AllocFailures: b.AllocFailures.Load(),
		DeallocCount:  b.DeallocCount.Load(),
		DeallocBytes:  b.DeallocBytes.Load(),
		ChunksMapped:  b.ChunksMapped.Load(),
		ChunkBytes:    b.ChunkBytes.Load(),
		Contention:    b.Contention.Load(),
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SmallAllocs   int64
	LargeAllocs   int64
	HugeAllocs    int64
	AllocBytes    int64
	AllocFailures int64
	DeallocCount  int64
	DeallocBytes  int64
	ChunksMapped  int64
	ChunkBytes    int64
	Contention    int64
}

// Allocs returns the total number of successful allocations.
func (s BasicMetricsStats) Allocs() int64 {
	return s.SmallAllocs + s.LargeAllocs + s.HugeAllocs
}
