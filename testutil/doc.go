// Package testutil provides testing utilities for camelalloc.
//
// This package is intended for use in tests and benchmarks only.
// It wraps the internal workload generator and provides helpers for checking
// that handed-out regions stay disjoint.
//
// # Random Workloads
//
//	rng := testutil.NewRNG(seed)
//	sizes := rng.SkewedSizes(1000, 64<<10, 1.5) // mostly small, heavy tail
//	aligns := rng.Aligns(1000, 6)                // 1..64
//
// # Overlap Verification
//
//	n := testutil.CountOverlaps(spans)
package testutil
