// Concurrency: Arena is NOT safe for concurrent use. The global allocator
// guards every arena with its own mutex and never holds two arena locks at once.

package arena

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/hupe1980/camelalloc/internal/mem"
	"github.com/hupe1980/camelalloc/vmspace"
)

const (
	// ChunkSize is the size of a standard chunk (2 MiB).
	ChunkSize = 2 * 1024 * 1024
	// ChunkCapacity is the maximum number of chunks per arena.
	ChunkCapacity = 16
	// MaxSize is the mapped-memory ceiling of a single arena (32 MiB).
	MaxSize = ChunkCapacity * ChunkSize
	// ScratchSize is the size of the inline buffer used before a space is bound.
	ScratchSize = 0x1000
)

var (
	// ErrChunkMap wraps failures to create or map a chunk after growth was committed.
	ErrChunkMap = errors.New("arena: chunk mapping failed")
	// ErrSpaceBound is returned when a space is bound twice.
	ErrSpaceBound = errors.New("arena: space already bound")
)

// MemoryAcquirer is an interface for acquiring memory before a chunk is mapped.
type MemoryAcquirer interface {
	AcquireMemory(amount int64) error
	ReleaseMemory(amount int64)
}

// ChunkInfo describes a mapped chunk.
type ChunkInfo struct {
	Index int
	Base  int
	Size  int
	Start vmspace.VAddr
}

// Stats tracks arena activity.
//
// Note on semantics:
//   - Allocs: successful chunk-backed allocations
//   - ScratchAllocs: successful allocations served by the scratch buffer
//   - Failed: allocations that returned no memory
//   - TailWaste: bytes abandoned at the end of chunks when growing
type Stats struct {
	Allocs        uint64
	ScratchAllocs uint64
	Failed        uint64
	TailWaste     uint64
}

// Arena is a monotonic allocator over up to ChunkCapacity chunks plus a small
// scratch buffer for allocations made before a space is available.
type Arena struct {
	chunks [ChunkCapacity]*Chunk
	count  int
	size   int // sum of chunk sizes
	head   int // next allocation offset

	space vmspace.Space

	scratch    [ScratchSize]byte
	scratchPtr int

	stats    Stats
	acquirer MemoryAcquirer
	onGrow   func(ChunkInfo)
	fatal    func(error)
}

// Option is a configuration option for Arena.
type Option func(*Arena)

// WithMemoryAcquirer sets the memory acquirer for the arena.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(a *Arena) {
		a.acquirer = acquirer
	}
}

// WithGrowHook registers a function called after every new chunk is mapped.
// It runs while the caller holds the arena.
func WithGrowHook(fn func(ChunkInfo)) Option {
	return func(a *Arena) {
		a.onGrow = fn
	}
}

// WithFatalHandler sets the function invoked when a committed chunk cannot be
// mapped. If the handler returns, the arena panics with the error.
func WithFatalHandler(fn func(error)) Option {
	return func(a *Arena) {
		a.fatal = fn
	}
}

// New creates an empty arena: no chunks, head at zero, no space.
func New(opts ...Option) *Arena {
	a := &Arena{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// UseSpace binds the space new chunks are mapped into.
func (a *Arena) UseSpace(space vmspace.Space) error {
	if a.space != nil {
		return ErrSpaceBound
	}
	a.space = space
	return nil
}

// Bound reports whether a space has been bound.
func (a *Arena) Bound() bool {
	return a.space != nil
}

// Alloc returns size bytes aligned to align, or false when the arena can
// neither serve the request from its chunks, grow, nor fall back to the
// scratch buffer. align must be a power of two.
func (a *Arena) Alloc(size, align int) ([]byte, bool) {
	if align <= 0 {
		align = 1
	}
	// No chunk or scratch buffer can hold more than MaxSize bytes.
	if size < 0 || size > MaxSize || align > MaxSize {
		a.stats.Failed++
		return nil, false
	}

	head := a.head
	a.alignTo(align)

	// Grow at most once, then retry.
	for grown := false; ; grown = true {
		if buf, ok := a.carve(size); ok {
			a.stats.Allocs++
			return buf, true
		}
		if grown || !a.extend(size, align) {
			break
		}
		a.alignTo(align)
	}

	// Only successful chunk allocations move the head.
	a.head = head
	return a.scratchAlloc(size, align)
}

// alignTo always advances head by at least align, even when already aligned.
func (a *Arena) alignTo(align int) {
	a.head = (a.head &^ (align - 1)) + align
}

func (a *Arena) carve(size int) ([]byte, bool) {
	for _, c := range a.chunks[:a.count] {
		if !c.Contains(a.head) {
			continue
		}
		buf, ok := c.TryGetSlice(a.head, size)
		if ok {
			a.head += size
		}
		return buf, ok
	}
	return nil, false
}

func (a *Arena) extend(size, align int) bool {
	// Not initialized yet: fall back to scratch rather than fail hard.
	if a.space == nil {
		return false
	}
	if a.count == ChunkCapacity {
		return false
	}

	length := chunkLength(size, align)
	if a.size+length > MaxSize {
		return false
	}

	if a.acquirer != nil {
		if err := a.acquirer.AcquireMemory(int64(length)); err != nil {
			return false
		}
	}

	c, err := NewChunk(a.size, length, a.space)
	if err != nil {
		if a.acquirer != nil {
			a.acquirer.ReleaseMemory(int64(length))
		}
		a.fail(fmt.Errorf("%w: %w", ErrChunkMap, err))
	}

	if a.count > 0 && a.head < a.size {
		a.stats.TailWaste += uint64(a.size - a.head)
	}

	a.head = a.size
	a.chunks[a.count] = c
	a.count++
	a.size += length

	if a.onGrow != nil {
		a.onGrow(ChunkInfo{Index: a.count - 1, Base: c.base, Size: c.size, Start: c.start})
	}
	return true
}

// chunkLength returns ChunkSize, or the smallest multiple of it that can hold
// a request placed align bytes past the chunk base.
func chunkLength(size, align int) int {
	need := align + size + 1 // the last byte of a chunk is never handed out
	return mem.AlignUp(need, ChunkSize)
}

func (a *Arena) fail(err error) {
	if a.fatal != nil {
		a.fatal(err)
	}
	panic(err)
}

func (a *Arena) scratchAlloc(size, align int) ([]byte, bool) {
	base := uintptr(unsafe.Pointer(&a.scratch[0])) //nolint:gosec // alignment arithmetic only
	start := a.scratchPtr + mem.Pad(base+uintptr(a.scratchPtr), align)

	if ScratchSize-start < size {
		a.stats.Failed++
		return nil, false
	}

	a.scratchPtr = start + size
	a.stats.ScratchAllocs++
	return a.scratch[start : start+size : start+size], true
}

// UsedSize returns the allocation head.
func (a *Arena) UsedSize() int {
	return a.head
}

// FreeSize returns the bytes left before the arena ceiling.
func (a *Arena) FreeSize() int {
	return max(a.MaxSize()-a.head, 0)
}

// Size returns the bytes mapped so far.
func (a *Arena) Size() int {
	return a.size
}

// MaxSize returns the arena ceiling.
func (a *Arena) MaxSize() int {
	return MaxSize
}

// ScratchUsed returns the bytes consumed from the scratch buffer.
func (a *Arena) ScratchUsed() int {
	return a.scratchPtr
}

// NumChunks returns the number of mapped chunks.
func (a *Arena) NumChunks() int {
	return a.count
}

// Chunks describes the mapped chunks in creation order.
func (a *Arena) Chunks() []ChunkInfo {
	infos := make([]ChunkInfo, a.count)
	for i, c := range a.chunks[:a.count] {
		infos[i] = ChunkInfo{Index: i, Base: c.base, Size: c.size, Start: c.start}
	}
	return infos
}

// Stats returns the current arena statistics.
func (a *Arena) Stats() Stats {
	return a.stats
}

func (a *Arena) String() string {
	return fmt.Sprintf(
		"Arena{chunks: %d, size: %.2f MB, used: %.2f MB, scratch: %d B, allocs: %d}",
		a.count,
		float64(a.size)/(1024*1024),
		float64(a.head)/(1024*1024),
		a.scratchPtr,
		a.stats.Allocs+a.stats.ScratchAllocs,
	)
}
