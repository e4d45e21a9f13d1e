// Package simulated implements vmspace.Space on top of the Go heap.
//
// It runs on every platform and can inject faults into object creation,
// mapping and cloning, which makes it the space of choice for tests.
package simulated

import (
	"sync"

	"github.com/hupe1980/camelalloc/internal/mem"
	"github.com/hupe1980/camelalloc/vmspace"
)

// Fault defines specific failure behavior. Counters are shared by every
// clone of a space.
type Fault struct {
	FailCreateAfter int // Fail object creation after this many successes. -1 to disable.
	FailMapAfter    int // Fail mappings after this many successes. -1 to disable.
	FailClone       bool
	CloneSuccesses  int // With FailClone, clones that succeed before the first failure.
	Err             error
}

// NoFault never fails.
var NoFault = Fault{FailCreateAfter: -1, FailMapAfter: -1}

type state struct {
	mu      sync.Mutex
	fault   Fault
	creates int
	maps    int
	clones  int
	mapped  int
	objects []*Object
}

// Object is a heap-backed memory object.
type Object struct {
	data   []byte
	prot   vmspace.Protection
	closed bool
}

// Size implements vmspace.MemoryObject.
func (o *Object) Size() int { return len(o.data) }

// Close implements vmspace.MemoryObject.
func (o *Object) Close() error {
	o.closed = true
	o.data = nil
	return nil
}

// Space is a simulated address space handle.
type Space struct {
	st    *state
	creds vmspace.Credentials
}

// New creates a Space with every credential and no faults.
func New() *Space {
	return NewFaulty(NoFault)
}

// NewFaulty creates a Space that fails according to fault.
func NewFaulty(fault Fault) *Space {
	if fault.Err == nil {
		fault.Err = vmspace.ErrFault
	}
	return &Space{st: &state{fault: fault}, creds: vmspace.CredAll}
}

// SetFault replaces the fault rules for this space and its clones.
func (s *Space) SetFault(fault Fault) {
	if fault.Err == nil {
		fault.Err = vmspace.ErrFault
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	s.st.fault = fault
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

	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	if f := s.st.fault; f.FailCreateAfter >= 0 && s.st.creates >= f.FailCreateAfter {
		return nil, f.Err
	}
	s.st.creates++

	o := &Object{data: mem.AllocAligned(size, mem.PageSize), prot: prot}
	s.st.objects = append(s.st.objects, o)
	return o, nil
}

// Map implements vmspace.Space. Mapping the same object twice yields views of
// the same memory.
func (s *Space) Map(_ uintptr, obj vmspace.MemoryObject, objOffset, length int, prot vmspace.Protection) (vmspace.Mapping, error) {
	if !s.creds.Has(vmspace.CredMap) {
		return vmspace.Mapping{}, vmspace.ErrPermission
	}
	o, ok := obj.(*Object)
	if !ok || o.closed {
		return vmspace.Mapping{}, vmspace.ErrPermission
	}
	if length <= 0 {
		return vmspace.Mapping{}, vmspace.ErrInvalidSize
	}
	if objOffset < 0 || objOffset+length > len(o.data) {
		return vmspace.Mapping{}, vmspace.ErrOutOfBounds
	}
	if prot&^o.prot != 0 {
		return vmspace.Mapping{}, vmspace.ErrPermission
	}

	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	if f := s.st.fault; f.FailMapAfter >= 0 && s.st.maps >= f.FailMapAfter {
		return vmspace.Mapping{}, f.Err
	}
	s.st.maps++
	s.st.mapped += length

	return vmspace.NewMapping(o.data[objOffset : objOffset+length : objOffset+length]), nil
}

// Clone implements vmspace.Space.
func (s *Space) Clone(creds vmspace.Credentials) (vmspace.Space, error) {
	if !s.creds.Has(vmspace.CredClone) || !s.creds.Has(creds) {
		return nil, vmspace.ErrPermission
	}

	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	f := s.st.fault
	if f.FailClone && s.st.clones >= f.CloneSuccesses {
		return nil, f.Err
	}
	s.st.clones++
	return &Space{st: s.st, creds: creds}, nil
}

// Stats is a snapshot of the space activity across all clones.
type Stats struct {
	Objects     int
	Maps        int
	MappedBytes int
}

// Stats returns the activity counters.
func (s *Space) Stats() Stats {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return Stats{
		Objects:     s.st.creates,
		Maps:        s.st.maps,
		MappedBytes: s.st.mapped,
	}
}
