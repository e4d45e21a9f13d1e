package camelalloc

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfMemory is returned when every arena is full and cannot grow.
	ErrOutOfMemory = errors.New("out of memory")
	// ErrInvalidLayout is returned for negative sizes or bad alignments.
	ErrInvalidLayout = errors.New("invalid layout")
	// ErrAlreadyInitialized reports a second Init call.
	ErrAlreadyInitialized = errors.New("allocator can only be initialized once")
	// ErrNilSpace reports an Init call without a memory space.
	ErrNilSpace = errors.New("nil memory space")
	// ErrCapability reports a failure to clone the memory-space capability.
	ErrCapability = errors.New("cannot clone memory-space capability")
	// ErrAllocHook reports that the host runtime's allocation-error hook ran.
	ErrAllocHook = errors.New("error allocating")
)

// FatalError is an unrecoverable allocator error. The allocator panics with a
// *FatalError after the configured fatal handler returns.
//
// The original underlying error can be accessed via errors.Unwrap.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal allocator error: %v", e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }
