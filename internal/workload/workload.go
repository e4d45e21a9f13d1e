// Package workload generates reproducible allocation request streams.
//
// Sizes follow a Zipf law over power-of-two buckets: most requests are small
// and a few are large, the way real programs allocate. camelctl stress and the
// test helpers draw their requests from here.
package workload

import (
	"math"
	"math/rand"
	"sync"
)

// Generator is a seeded request generator. It is safe for concurrent use.
type Generator struct {
	mu   sync.Mutex
	rand *rand.Rand
	seed int64
}

// New creates a Generator with the given seed.
func New(seed int64) *Generator {
	return &Generator{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // reproducible workloads
		seed: seed,
	}
}

// Reset rewinds the generator to its seed.
func (g *Generator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rand.Seed(g.seed)
}

// Seed returns the initial seed.
func (g *Generator) Seed() int64 {
	return g.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (g *Generator) Intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (g *Generator) Uint64() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rand.Uint64()
}

// Zipf returns a value in [0, n) with P(k) ∝ 1/(k+1)^s.
func (g *Generator) Zipf(n int, s float64) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.zipfLocked(n, s)
}

func (g *Generator) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := g.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}
	return n - 1
}

// SkewedSizes generates n request sizes in [1, maxSize]. A Zipf draw with
// skew s picks the power-of-two bucket, a uniform draw the size inside it.
func (g *Generator) SkewedSizes(n, maxSize int, s float64) []int {
	g.mu.Lock()
	defer g.mu.Unlock()

	buckets := 1
	for 1<<buckets < maxSize {
		buckets++
	}

	sizes := make([]int, n)
	for i := range sizes {
		b := g.zipfLocked(buckets, s)
		lo, hi := 1<<b, min(1<<(b+1), maxSize+1)
		if lo >= hi {
			lo = 1
		}
		sizes[i] = lo + g.rand.Intn(hi-lo)
	}
	return sizes
}

// Aligns generates n power-of-two alignments in [1, 1<<maxShift].
func (g *Generator) Aligns(n, maxShift int) []int {
	g.mu.Lock()
	defer g.mu.Unlock()

	aligns := make([]int, n)
	for i := range aligns {
		aligns[i] = 1 << g.rand.Intn(maxShift+1)
	}
	return aligns
}

// Fill sets every byte of buf to v.
func Fill(buf []byte, v byte) {
	for i := range buf {
		buf[i] = v
	}
}
