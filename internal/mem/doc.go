// Package mem provides alignment arithmetic and aligned heap allocation.
//
// # Aligned Allocation
//
// AllocAligned backs simulated memory objects with page-aligned Go memory so
// that heap-backed chunks honour the same alignment guarantees as mmap(2).
package mem
