package camelalloc

import (
	"fmt"
	"unsafe"

	"github.com/hupe1980/camelalloc/vmspace"
)

// Default is the process-wide allocator. It is valid from package load,
// before any memory space exists, and serves only scratch memory until Init.
var Default = New()

// Init binds the process memory space to Default. Call it once, before the
// process needs more than the scratch buffers.
func Init(space vmspace.Space) {
	Default.Init(space)
}

// MemoryPressure returns a snapshot of Default.
func MemoryPressure() Pressure {
	return Default.Pressure()
}

// Alloc implements the host runtime's allocation entry point: it returns the
// first byte of a block satisfying layout, or nil on failure.
func (a *Allocator) Alloc(layout Layout) unsafe.Pointer {
	r, err := a.Allocate(layout)
	if err != nil {
		return nil
	}
	return r.Pointer()
}

// Dealloc implements the host runtime's release entry point.
func (a *Allocator) Dealloc(ptr unsafe.Pointer, layout Layout) {
	var r Region
	if ptr != nil && layout.Size > 0 {
		r = Region{buf: unsafe.Slice((*byte)(ptr), layout.Size)}
	}
	a.Deallocate(r, layout)
}

// HandleAllocError is the host runtime's out-of-memory hook. It never returns.
func (a *Allocator) HandleAllocError(layout Layout) {
	a.fatal(fmt.Errorf("%w: %d bytes aligned to %d", ErrAllocHook, layout.Size, layout.Align))
}
