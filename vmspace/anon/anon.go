//go:build unix

// Package anon implements vmspace.Space with private anonymous mmap(2)
// mappings. It works on every unix; mapping an object returns a view of the
// object's single mapping instead of a second kernel mapping.
package anon

import (
	"fmt"
	"sync"

	"github.com/hupe1980/camelalloc/internal/mmap"
	"github.com/hupe1980/camelalloc/vmspace"
)

// Object is an anonymous mapping.
type Object struct {
	mu   sync.Mutex
	m    *mmap.Mapping
	prot vmspace.Protection
}

// Size implements vmspace.MemoryObject.
func (o *Object) Size() int { return o.m.Size() }

// Close unmaps the object. Views handed out by Map become invalid.
func (o *Object) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.m.Close()
}

// Option configures a Space.
type Option func(*Space)

// WithPrefault asks the kernel to populate new objects eagerly.
func WithPrefault() Option {
	return func(s *Space) {
		s.prefault = true
	}
}

// Space is a handle to the calling process's address space.
type Space struct {
	creds    vmspace.Credentials
	prefault bool
}

// New returns a Space handle with every credential.
func New(opts ...Option) *Space {
	s := &Space{creds: vmspace.CredAll}
	for _, opt := range opts {
		opt(s)
	}
	return s
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

	m, err := mmap.MapAnon(size)
	if err != nil {
		return nil, fmt.Errorf("anon: map %d bytes: %w", size, err)
	}
	if s.prefault {
		if err := m.Advise(mmap.AccessWillNeed); err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("anon: advise: %w", err)
		}
	}
	return &Object{m: m, prot: prot}, nil
}

// Map implements vmspace.Space. The offset hint is ignored.
func (s *Space) Map(_ uintptr, obj vmspace.MemoryObject, objOffset, length int, prot vmspace.Protection) (vmspace.Mapping, error) {
	if !s.creds.Has(vmspace.CredMap) {
		return vmspace.Mapping{}, vmspace.ErrPermission
	}
	o, ok := obj.(*Object)
	if !ok {
		return vmspace.Mapping{}, fmt.Errorf("anon: foreign memory object %T", obj)
	}
	if length <= 0 {
		return vmspace.Mapping{}, vmspace.ErrInvalidSize
	}
	if prot&^o.prot != 0 {
		return vmspace.Mapping{}, vmspace.ErrPermission
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	data := o.m.Bytes()
	if data == nil {
		return vmspace.Mapping{}, mmap.ErrClosed
	}
	if objOffset < 0 || objOffset+length > len(data) {
		return vmspace.Mapping{}, vmspace.ErrOutOfBounds
	}
	return vmspace.NewMapping(data[objOffset : objOffset+length : objOffset+length]), nil
}

// Clone implements vmspace.Space.
func (s *Space) Clone(creds vmspace.Credentials) (vmspace.Space, error) {
	if !s.creds.Has(vmspace.CredClone) || !s.creds.Has(creds) {
		return nil, vmspace.ErrPermission
	}
	return &Space{creds: creds, prefault: s.prefault}, nil
}
