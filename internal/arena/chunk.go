package arena

import (
	"fmt"

	"github.com/hupe1980/camelalloc/vmspace"
)

// Chunk is one mapped region of virtual memory backing part of an arena.
// It is immutable once constructed.
type Chunk struct {
	base    int           // arena-relative offset of the first byte
	start   vmspace.VAddr // virtual address returned by the mapping
	size    int
	backing vmspace.MemoryObject // never released: memory is not reclaimed
	data    []byte
}

// NewChunk creates a read-write memory object of size bytes and maps it into
// space at object offset 0.
func NewChunk(base, size int, space vmspace.Space) (*Chunk, error) {
	backing, err := space.CreateObject(size, vmspace.ProtRW)
	if err != nil {
		return nil, fmt.Errorf("create %d byte object: %w", size, err)
	}

	m, err := space.Map(0, backing, 0, size, vmspace.ProtRW)
	if err != nil {
		_ = backing.Close()
		return nil, fmt.Errorf("map %d bytes at base %d: %w", size, base, err)
	}
	if m.Len() != size {
		_ = backing.Close()
		return nil, fmt.Errorf("short mapping: got %d bytes, want %d", m.Len(), size)
	}

	return &Chunk{
		base:    base,
		start:   m.Base(),
		size:    size,
		backing: backing,
		data:    m.Bytes(),
	}, nil
}

// Contains reports whether the arena-relative offset addr lies in the chunk.
func (c *Chunk) Contains(addr int) bool {
	if addr < c.base {
		return false
	}
	return addr-c.base < c.size
}

// TryGetSlice returns size bytes starting at the arena-relative offset addr.
// The request must end strictly before the chunk's last byte.
func (c *Chunk) TryGetSlice(addr, size int) ([]byte, bool) {
	if addr < c.base || size < 0 {
		return nil, false
	}

	offset := addr - c.base
	if offset >= c.size || size >= c.size-offset {
		return nil, false
	}

	return c.data[offset : offset+size : offset+size], true
}

// Base returns the arena-relative offset of the chunk.
func (c *Chunk) Base() int { return c.base }

// Start returns the virtual address of the chunk's first byte.
func (c *Chunk) Start() vmspace.VAddr { return c.start }

// Size returns the chunk length in bytes.
func (c *Chunk) Size() int { return c.size }

// Backing returns the memory object that owns the chunk's memory.
func (c *Chunk) Backing() vmspace.MemoryObject { return c.backing }
