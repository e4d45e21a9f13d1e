package camelalloc

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"

	"github.com/hupe1980/camelalloc/internal/arena"
	"github.com/hupe1980/camelalloc/internal/resource"
	"github.com/hupe1980/camelalloc/internal/tracker"
	"github.com/hupe1980/camelalloc/sizeclass"
	"github.com/hupe1980/camelalloc/vmspace"
)

const (
	// NumArenas is the number of independently locked arenas.
	NumArenas = 2
	// MaxMemory is the mapped-memory ceiling of an Allocator (64 MiB).
	MaxMemory = NumArenas * arena.MaxSize
)

type lockedArena struct {
	mu    sync.Mutex
	arena *arena.Arena
}

// allocLocked runs an allocation on an arena whose lock the caller holds and
// releases the lock, also when the arena halts on a fatal error.
func (la *lockedArena) allocLocked(size, align int) ([]byte, bool) {
	defer la.mu.Unlock()
	return la.arena.Alloc(size, align)
}

// Allocator is a process-wide leak-on-free allocator.
//
// It starts empty, serving only the small scratch buffers of its arenas, and
// maps chunks once Init has bound a memory space. All methods are safe for
// concurrent use.
type Allocator struct {
	arenas [NumArenas]lockedArena

	spaceMu sync.Mutex
	space   vmspace.Space

	leaked atomic.Uint64

	opts       options
	controller *resource.Controller
	tracker    *tracker.Tracker
	failLog    rate.Sometimes
}

// New creates an Allocator in the empty state.
func New(opts ...Option) *Allocator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	a := &Allocator{
		opts:    o,
		failLog: rate.Sometimes{First: 3, Interval: time.Second},
	}

	if o.memoryLimit > 0 || o.mapsPerSecond > 0 {
		a.controller = resource.NewController(resource.Config{
			MemoryLimitBytes: o.memoryLimit,
			MapsPerSecond:    o.mapsPerSecond,
			MapBurst:         NumArenas,
		})
	}
	if o.overlapCheck {
		a.tracker = tracker.New()
	}

	for i := range a.arenas {
		a.arenas[i].arena = arena.New(a.arenaOptions(i)...)
	}
	return a
}

func (a *Allocator) arenaOptions(idx int) []arena.Option {
	opts := []arena.Option{
		arena.WithFatalHandler(a.fatal),
		arena.WithGrowHook(func(ci arena.ChunkInfo) {
			a.opts.logger.LogChunkMapped(context.Background(), idx, ci.Index, ci.Base, ci.Size)
			a.opts.metricsCollector.RecordChunkMapped(idx, ci.Size)
		}),
	}
	if a.controller != nil {
		opts = append(opts, arena.WithMemoryAcquirer(a.controller))
	}
	return opts
}

// Init binds the memory space. It must be called exactly once; a second call
// is fatal. Every arena receives its own clone of the capability.
func (a *Allocator) Init(space vmspace.Space) {
	a.spaceMu.Lock()
	defer a.spaceMu.Unlock()

	if a.space != nil {
		a.fatal(ErrAlreadyInitialized)
	}
	if space == nil {
		a.fatal(ErrNilSpace)
	}

	root, err := space.Clone(vmspace.CredAll)
	if err != nil {
		a.fatal(fmt.Errorf("%w: %w", ErrCapability, err))
	}

	// Clone for every arena before binding any, so a failure leaves all
	// arenas unbound.
	var clones [NumArenas]vmspace.Space
	for i := range clones {
		clone, err := root.Clone(vmspace.CredAll)
		if err != nil {
			a.fatal(fmt.Errorf("%w: arena %d: %w", ErrCapability, i, err))
		}
		clones[i] = clone
	}

	for i := range a.arenas {
		la := &a.arenas[i]
		la.mu.Lock()
		err := la.arena.UseSpace(clones[i])
		la.mu.Unlock()
		if err != nil {
			a.fatal(err)
		}
	}
	a.space = root

	a.opts.logger.LogInit(context.Background(), NumArenas)
}

// Initialized reports whether Init has run.
func (a *Allocator) Initialized() bool {
	a.spaceMu.Lock()
	defer a.spaceMu.Unlock()
	return a.space != nil
}

// Allocate returns a region satisfying layout, or ErrOutOfMemory when every
// arena is full and cannot grow.
//
// A first pass skips arenas held by concurrent allocations so that parallel
// callers spread over the arenas; a second pass blocks on each arena in turn.
func (a *Allocator) Allocate(layout Layout) (Region, error) {
	if err := layout.Validate(); err != nil {
		return Region{}, err
	}

	size := layout.Size
	if a.opts.roundToClass {
		size = sizeclass.RoundUp(size)
	}

	// Pass 1: avoid contention.
	for i := range a.arenas {
		la := &a.arenas[i]
		if !la.mu.TryLock() {
			a.opts.metricsCollector.RecordContention()
			continue
		}
		if buf, ok := la.allocLocked(size, layout.Align); ok {
			return a.finish(layout, buf), nil
		}
	}

	// Pass 2: guarantee progress.
	for i := range a.arenas {
		la := &a.arenas[i]
		la.mu.Lock()
		if buf, ok := la.allocLocked(size, layout.Align); ok {
			return a.finish(layout, buf), nil
		}
	}

	err := fmt.Errorf("%w: %d bytes aligned to %d", ErrOutOfMemory, layout.Size, layout.Align)
	a.opts.metricsCollector.RecordAlloc(layout.Class().Category(), layout.Size, err)
	a.failLog.Do(func() {
		a.opts.logger.LogAllocFailure(context.Background(), layout, a.Pressure())
	})
	return Region{}, err
}

func (a *Allocator) finish(layout Layout, buf []byte) Region {
	r := Region{buf: buf}
	if a.tracker != nil {
		if err := a.tracker.Track(r.Addr(), r.Len()); err != nil {
			a.fatal(err)
		}
	}
	a.opts.metricsCollector.RecordAlloc(layout.Class().Category(), layout.Size, nil)
	return r
}

// Deallocate hands a region back. Memory is never reclaimed: the layout size
// is added to the leaked-byte counter. It never fails.
func (a *Allocator) Deallocate(_ Region, layout Layout) {
	size := max(layout.Size, 0)
	a.leaked.Add(uint64(size))
	a.opts.metricsCollector.RecordDealloc(size)
}

// MemoryUsed sums the allocation heads of all arenas.
func (a *Allocator) MemoryUsed() int {
	return a.sum((*arena.Arena).UsedSize)
}

// MemoryAllocated sums the mapped bytes of all arenas.
func (a *Allocator) MemoryAllocated() int {
	return a.sum((*arena.Arena).Size)
}

// MaxSize sums the arena ceilings.
func (a *Allocator) MaxSize() int {
	return a.sum((*arena.Arena).MaxSize)
}

// ScratchUsed sums the scratch-buffer usage of all arenas.
func (a *Allocator) ScratchUsed() int {
	return a.sum((*arena.Arena).ScratchUsed)
}

// Leaked returns the bytes handed back through Deallocate.
func (a *Allocator) Leaked() int {
	return int(a.leaked.Load())
}

func (a *Allocator) sum(fn func(*arena.Arena) int) int {
	total := 0
	for i := range a.arenas {
		la := &a.arenas[i]
		la.mu.Lock()
		total += fn(la.arena)
		la.mu.Unlock()
	}
	return total
}

// ArenaStats returns per-arena activity counters.
func (a *Allocator) ArenaStats() [NumArenas]arena.Stats {
	var stats [NumArenas]arena.Stats
	for i := range a.arenas {
		la := &a.arenas[i]
		la.mu.Lock()
		stats[i] = la.arena.Stats()
		la.mu.Unlock()
	}
	return stats
}

// Pressure is a snapshot of allocator memory usage.
type Pressure struct {
	Used      int // allocation heads, alignment padding included
	Size      int // bytes mapped
	Available int // mapping ceiling
	Leaked    int // bytes handed back
	Scratch   int // bytes served from scratch buffers
}

// Pressure returns a memory-pressure snapshot. Safe to call at any time.
func (a *Allocator) Pressure() Pressure {
	return Pressure{
		Used:      a.MemoryUsed(),
		Size:      a.MemoryAllocated(),
		Available: a.MaxSize(),
		Leaked:    a.Leaked(),
		Scratch:   a.ScratchUsed(),
	}
}

func (p Pressure) String() string {
	return fmt.Sprintf("used %s, mapped %s of %s, leaked %s, scratch %s",
		humanize.IBytes(uint64(p.Used)),
		humanize.IBytes(uint64(p.Size)),
		humanize.IBytes(uint64(p.Available)),
		humanize.IBytes(uint64(p.Leaked)),
		humanize.IBytes(uint64(p.Scratch)),
	)
}

// fatal reports an unrecoverable error and never returns.
func (a *Allocator) fatal(err error) {
	fe := &FatalError{Err: err}
	a.opts.logger.LogFatal(context.Background(), err)
	if a.opts.fatalHandler != nil {
		a.opts.fatalHandler(fe)
	}
	panic(fe)
}
