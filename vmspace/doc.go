// Package vmspace defines the virtual-memory collaborator the allocator
// bootstraps its heap from.
//
// A Space is a capability: it can create anonymous memory objects, map them
// into the address space and clone itself with equal or reduced credentials.
//
//	space := memfd.New()                  // Linux host
//	obj, _ := space.CreateObject(size, vmspace.ProtRW)
//	m, _ := space.Map(0, obj, 0, size, vmspace.ProtRW)
//	buf := m.Bytes()
//
// Implementations live in sub-packages:
//
//   - memfd: memfd_create(2) objects mapped with mmap(2)
//   - simulated: Go heap backed objects with fault injection
package vmspace
