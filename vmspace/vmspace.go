package vmspace

import (
	"errors"
	"unsafe"
)

var (
	// ErrPermission is returned when a space lacks the credentials for an operation.
	ErrPermission = errors.New("vmspace: permission denied")
	// ErrInvalidSize is returned for non-positive object or mapping sizes.
	ErrInvalidSize = errors.New("vmspace: invalid size")
	// ErrOutOfBounds is returned when a mapping exceeds its object.
	ErrOutOfBounds = errors.New("vmspace: out of bounds")
	// ErrFault is the default error for injected faults.
	ErrFault = errors.New("vmspace: injected fault")
)

// Protection is the access mode of an object or mapping.
type Protection uint8

const (
	// ProtRead allows reads.
	ProtRead Protection = 1 << iota
	// ProtWrite allows writes.
	ProtWrite

	// ProtRW allows reads and writes.
	ProtRW = ProtRead | ProtWrite
)

// Credentials restrict what a space handle may do.
type Credentials uint8

const (
	// CredMap allows creating objects and mapping them.
	CredMap Credentials = 1 << iota
	// CredClone allows cloning the handle.
	CredClone

	// CredAll grants every credential.
	CredAll = CredMap | CredClone
)

// Has reports whether c includes all of want.
func (c Credentials) Has(want Credentials) bool {
	return c&want == want
}

// VAddr is a virtual address in the process.
type VAddr uintptr

// MemoryObject owns backing store for mappings.
type MemoryObject interface {
	// Size is the object length in bytes.
	Size() int
	// Close releases the backing store.
	Close() error
}

// Mapping is a mapped range of a memory object.
type Mapping struct {
	base VAddr
	data []byte
}

// NewMapping wraps a mapped byte range. data must stay mapped for the
// lifetime of every slice derived from it.
func NewMapping(data []byte) Mapping {
	if len(data) == 0 {
		return Mapping{}
	}
	return Mapping{
		base: VAddr(uintptr(unsafe.Pointer(&data[0]))), //nolint:gosec // address is only reported
		data: data,
	}
}

// Base returns the first virtual address of the mapping.
func (m Mapping) Base() VAddr { return m.base }

// Len returns the mapping length in bytes.
func (m Mapping) Len() int { return len(m.data) }

// Bytes returns the mapped memory.
func (m Mapping) Bytes() []byte { return m.data }

// Space is a capability-scoped handle to a virtual address space.
type Space interface {
	// CreateObject creates an anonymous memory object of size bytes.
	CreateObject(size int, prot Protection) (MemoryObject, error)

	// Map maps length bytes of obj, starting at objOffset, into the space.
	// offsetHint is advisory; zero lets the space choose.
	Map(offsetHint uintptr, obj MemoryObject, objOffset, length int, prot Protection) (Mapping, error)

	// Clone returns a new handle to the same space with the given credentials.
	// Credentials can only be reduced, never widened.
	Clone(creds Credentials) (Space, error)

	// Credentials reports the credentials of this handle.
	Credentials() Credentials
}
