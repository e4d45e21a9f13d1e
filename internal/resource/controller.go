package resource

import (
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

var (
	// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
	ErrMemoryLimitExceeded = errors.New("memory limit exceeded")
	// ErrMapRateExceeded is returned when chunk mappings arrive faster than allowed.
	ErrMapRateExceeded = errors.New("map rate exceeded")
)

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for mapped chunk memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MapsPerSecond caps the rate of new chunk mappings.
	// If 0, unlimited.
	MapsPerSecond float64

	// MapBurst is the number of mappings allowed in a burst. Defaults to 1.
	MapBurst int
}

// Controller governs how much memory arenas may map.
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Mapping rate
	mapLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MapBurst <= 0 {
		cfg.MapBurst = 1
	}

	c := &Controller{cfg: cfg}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.MapsPerSecond > 0 {
		c.mapLimiter = rate.NewLimiter(rate.Limit(cfg.MapsPerSecond), cfg.MapBurst)
	}

	return c
}

// AcquireMemory attempts to reserve memory for a chunk mapping.
// Non-blocking: the allocation path never waits for budget.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil {
		return nil
	}
	if bytes <= 0 {
		return nil
	}

	if c.mapLimiter != nil && !c.mapLimiter.AllowN(time.Now(), 1) {
		return ErrMapRateExceeded
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return ErrMemoryLimitExceeded
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory returns a reservation whose mapping did not happen.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil {
		return
	}
	if bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}
