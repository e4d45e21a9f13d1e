// Package arena provides the bump-pointer sub-allocator behind the global
// allocator.
//
// The arena carves allocations from lazily mapped 2 MiB chunks obtained
// through a vmspace.Space. It never frees.
//
// # Features
//
//   - Off-heap chunks mapped on demand (at most 16 per arena)
//   - Branch-free head alignment
//   - 4 KiB scratch buffer for bootstrap allocations before a space is bound
//   - Optional memory budget consulted before every mapping
//
// # Safety
//
// Failing to map a chunk after growth was committed is fatal: the configured
// fatal handler runs and the arena panics.
package arena
