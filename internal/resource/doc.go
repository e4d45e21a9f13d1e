// Package resource implements the memory budget arenas consult before
// mapping a new chunk.
//
// The Controller combines two limits:
//
//   - Memory: a weighted semaphore caps total mapped bytes (non-blocking, fail-fast)
//   - Map rate: a token bucket caps how often new chunks may be mapped
//
// Usage:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 8 << 20,
//	    MapsPerSecond:    100,
//	})
//
//	if err := rc.AcquireMemory(2 << 20); err != nil {
//	    // ErrMemoryLimitExceeded or ErrMapRateExceeded: do not grow
//	}
//
// Reservations are normally permanent because chunks are never unmapped;
// ReleaseMemory undoes a reservation whose mapping was abandoned.
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
