// Package tracker records handed-out address ranges and detects overlaps.
//
// It backs the allocator's overlap check and the concurrency tests. Ranges
// are stored byte-granular in a 64-bit roaring bitmap, which keeps dense
// bump-allocated runs compact.
package tracker

import (
	"errors"
	"fmt"
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// ErrOverlap is returned when a range intersects a tracked range.
var ErrOverlap = errors.New("tracker: overlapping range")

// Tracker is a concurrency-safe set of address ranges.
type Tracker struct {
	mu sync.Mutex
	bm *roaring64.Bitmap
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{bm: roaring64.New()}
}

// Track records [addr, addr+size). Empty ranges are ignored.
func (t *Tracker) Track(addr uintptr, size int) error {
	if size <= 0 {
		return nil
	}
	lo, hi := uint64(addr), uint64(addr)+uint64(size)

	t.mu.Lock()
	defer t.mu.Unlock()

	if n := t.countLocked(lo, hi); n > 0 {
		return fmt.Errorf("%w: [%#x, %#x) shares %d bytes", ErrOverlap, lo, hi, n)
	}
	t.bm.AddRange(lo, hi)
	return nil
}

// Overlaps reports whether [addr, addr+size) intersects a tracked range.
func (t *Tracker) Overlaps(addr uintptr, size int) bool {
	if size <= 0 {
		return false
	}
	lo, hi := uint64(addr), uint64(addr)+uint64(size)

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.countLocked(lo, hi) > 0
}

// Bytes returns the number of tracked bytes.
func (t *Tracker) Bytes() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bm.GetCardinality()
}

// countLocked returns how many tracked bytes fall in [lo, hi).
func (t *Tracker) countLocked(lo, hi uint64) uint64 {
	n := t.bm.Rank(hi - 1)
	if lo > 0 {
		n -= t.bm.Rank(lo - 1)
	}
	return n
}
