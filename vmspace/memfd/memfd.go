//go:build linux

// Package memfd implements vmspace.Space on Linux with memfd_create(2)
// memory objects mapped by mmap(2).
package memfd

import (
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/hupe1980/camelalloc/internal/mmap"
	"github.com/hupe1980/camelalloc/vmspace"
)

var objectSeq atomic.Uint64

// Object is a memfd-backed memory object.
type Object struct {
	fd   int
	size int
	prot vmspace.Protection

	mu       sync.Mutex
	mappings []*mmap.Mapping
	closed   bool
}

// Size implements vmspace.MemoryObject.
func (o *Object) Size() int { return o.size }

// Close unmaps every mapping of the object and closes the descriptor.
func (o *Object) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true

	var firstErr error
	for _, m := range o.mappings {
		if err := m.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	o.mappings = nil
	if err := unix.Close(o.fd); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Space is a handle to the calling process's address space.
type Space struct {
	creds vmspace.Credentials
}

// New returns a Space handle with every credential.
func New() *Space {
	return &Space{creds: vmspace.CredAll}
}

// Credentials implements vmspace.Space.
func (s *Space) Credentials() vmspace.Credentials { return s.creds }

// CreateObject implements vmspace.Space.
func (s *Space) CreateObject(size int, prot vmspace.Protection) (vmspace.MemoryObject, error) {
	if !s.creds.Has(vmspace.CredMap) {
		return nil, vmspace.ErrPermission
	}
	if size <= 0 {
		return nil, vmspace.ErrInvalidSize
	}

	name := fmt.Sprintf("camelalloc-%d", objectSeq.Add(1))
	fd, err := mmap.Memfd(name, size)
	if err != nil {
		return nil, err
	}
	return &Object{fd: fd, size: size, prot: prot}, nil
}

// Map implements vmspace.Space. The offset hint is ignored; the kernel picks
// the address.
func (s *Space) Map(_ uintptr, obj vmspace.MemoryObject, objOffset, length int, prot vmspace.Protection) (vmspace.Mapping, error) {
	if !s.creds.Has(vmspace.CredMap) {
		return vmspace.Mapping{}, vmspace.ErrPermission
	}
	o, ok := obj.(*Object)
	if !ok {
		return vmspace.Mapping{}, fmt.Errorf("memfd: foreign memory object %T", obj)
	}
	if length <= 0 {
		return vmspace.Mapping{}, vmspace.ErrInvalidSize
	}
	if objOffset < 0 || objOffset+length > o.size {
		return vmspace.Mapping{}, vmspace.ErrOutOfBounds
	}
	if prot&^o.prot != 0 {
		return vmspace.Mapping{}, vmspace.ErrPermission
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return vmspace.Mapping{}, mmap.ErrClosed
	}

	m, err := mmap.MapFd(o.fd, int64(objOffset), length)
	if err != nil {
		return vmspace.Mapping{}, fmt.Errorf("memfd: map %d bytes: %w", length, err)
	}
	o.mappings = append(o.mappings, m)
	return vmspace.NewMapping(m.Bytes()), nil
}

// Clone implements vmspace.Space.
func (s *Space) Clone(creds vmspace.Credentials) (vmspace.Space, error) {
	if !s.creds.Has(vmspace.CredClone) {
		return nil, vmspace.ErrPermission
	}
	if !s.creds.Has(creds) {
		return nil, vmspace.ErrPermission
	}
	return &Space{creds: creds}, nil
}
