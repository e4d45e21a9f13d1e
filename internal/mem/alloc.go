package mem

import (
	"math/bits"
	"unsafe"
)

// PageSize is the alignment of memory objects handed out by memory spaces.
const PageSize = 4096

// IsPow2 reports whether n is a positive power of two.
func IsPow2(n int) bool {
	return n > 0 && bits.OnesCount(uint(n)) == 1
}

// Pad returns the bytes needed to advance addr to a multiple of align.
// align must be a power of two.
func Pad(addr uintptr, align int) int {
	a := uintptr(align)
	return int((a - addr&(a-1)) & (a - 1))
}

// AlignUp rounds n up to a multiple of align. align must be a power of two.
func AlignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// AllocAligned allocates a zeroed byte slice of the given size whose first
// byte sits at a multiple of align.
//
// Note: This function allocates align extra bytes to find the aligned offset.
// The underlying array is kept alive by the returned slice.
func AllocAligned(size, align int) []byte {
	if size <= 0 {
		return nil
	}
	if !IsPow2(align) {
		align = 1
	}

	buf := make([]byte, size+align)
	offset := Pad(uintptr(unsafe.Pointer(&buf[0])), align) //nolint:gosec // unsafe is required for memory alignment

	return buf[offset : offset+size : offset+size]
}
