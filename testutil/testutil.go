package testutil

import (
	"slices"

	"github.com/hupe1980/camelalloc/internal/workload"
)

// RNG is the seeded, thread-safe workload generator shared with camelctl.
type RNG = workload.Generator

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return workload.New(seed)
}

// Fill sets every byte of buf to v.
func Fill(buf []byte, v byte) {
	workload.Fill(buf, v)
}

// AllEqual reports whether every byte of buf equals v.
func AllEqual(buf []byte, v byte) bool {
	for _, b := range buf {
		if b != v {
			return false
		}
	}
	return true
}

// Span is a half-open address range [Lo, Hi).
type Span struct {
	Lo, Hi uintptr
}

// Overlaps reports whether s and o share at least one address.
// Empty spans never overlap.
func (s Span) Overlaps(o Span) bool {
	if s.Lo == s.Hi || o.Lo == o.Hi {
		return false
	}
	return s.Lo < o.Hi && o.Lo < s.Hi
}

// CountOverlaps returns the number of spans that overlap an earlier span in
// address order. spans is not modified.
func CountOverlaps(spans []Span) int {
	sorted := slices.Clone(spans)
	slices.SortFunc(sorted, func(a, b Span) int {
		switch {
		case a.Lo < b.Lo:
			return -1
		case a.Lo > b.Lo:
			return 1
		}
		return 0
	})

	var (
		count int
		end   uintptr
		seen  bool
	)
	for _, s := range sorted {
		if s.Lo == s.Hi {
			continue
		}
		if seen && s.Lo < end {
			count++
		}
		if !seen || s.Hi > end {
			end = s.Hi
		}
		seen = true
	}
	return count
}
