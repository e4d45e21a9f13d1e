package camelalloc

import (
	"fmt"
	"unsafe"

	"github.com/hupe1980/camelalloc/internal/mem"
	"github.com/hupe1980/camelalloc/sizeclass"
)

// MaxAlign is the largest supported alignment. Chunks are page aligned, so
// larger alignments cannot be honoured.
const MaxAlign = sizeclass.PageSize

// Layout describes a requested block of memory.
type Layout struct {
	Size  int
	Align int
}

// NewLayout validates and returns a Layout.
func NewLayout(size, align int) (Layout, error) {
	l := Layout{Size: size, Align: align}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// LayoutOf returns the layout of a value of type T.
func LayoutOf[T any]() Layout {
	var zero T
	return Layout{Size: int(unsafe.Sizeof(zero)), Align: int(unsafe.Alignof(zero))}
}

// Validate checks that Size is non-negative and Align is a power of two no
// larger than MaxAlign.
func (l Layout) Validate() error {
	if l.Size < 0 {
		return fmt.Errorf("%w: negative size %d", ErrInvalidLayout, l.Size)
	}
	if !mem.IsPow2(l.Align) {
		return fmt.Errorf("%w: alignment %d is not a power of two", ErrInvalidLayout, l.Align)
	}
	if l.Align > MaxAlign {
		return fmt.Errorf("%w: alignment %d exceeds %d", ErrInvalidLayout, l.Align, MaxAlign)
	}
	return nil
}

// Class returns the size class of the layout.
func (l Layout) Class() sizeclass.Class {
	return sizeclass.Of(l.Size)
}

// Region is memory borrowed from the allocator. The holder has exclusive use
// of Len bytes starting at Addr until it hands the region back.
type Region struct {
	buf []byte
}

// Bytes returns the region as a byte slice.
func (r Region) Bytes() []byte { return r.buf }

// Len returns the region length.
func (r Region) Len() int { return len(r.buf) }

// Pointer returns the first byte of the region, or nil for the zero Region.
func (r Region) Pointer() unsafe.Pointer {
	if r.buf == nil {
		return nil
	}
	return unsafe.Pointer(unsafe.SliceData(r.buf))
}

// Addr returns the virtual address of the region.
func (r Region) Addr() uintptr {
	return uintptr(r.Pointer())
}

// IsZero reports whether r is the zero Region.
func (r Region) IsZero() bool { return r.buf == nil }
