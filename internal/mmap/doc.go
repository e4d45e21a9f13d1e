// Package mmap wraps the mmap(2) family for off-heap memory.
//
// # Overview
//
// Chunks handed out by the allocator live outside the Go heap. This package
// creates the backing memory (anonymous mappings or memfd objects) and maps it
// read-write so the garbage collector never scans or moves it.
//
// # Usage
//
//	fd, err := mmap.Memfd("chunk", 2<<20)
//	if err != nil { ... }
//	m, err := mmap.MapFd(fd, 0, 2<<20)
//	if err != nil { ... }
//	data := m.Bytes()
//
//	// Anonymous private memory
//	m, err = mmap.MapAnon(4096)
//
// # Thread Safety
//
// Close is idempotent and protected by an atomic flag. Callers must ensure no
// goroutine touches Bytes() after Close returns.
package mmap
