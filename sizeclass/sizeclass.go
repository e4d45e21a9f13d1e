package sizeclass

import (
	"fmt"
	"math/bits"
)

const (
	// HalfQuantum is the largest request served by the Tiny class.
	HalfQuantum = Quantum / 2
	// Quantum is the granularity of the Quantum class.
	Quantum = 16
	// MaxQuantum is the largest request served by the Quantum class.
	MaxQuantum = 512
	// Kilo is the unit of the Kilo class.
	Kilo = 1024
	// MaxKilo is the largest request served by the Kilo class (1 MiB).
	MaxKilo = 1024 * 1024
	// Mega is the unit of the Mega class (2 MiB).
	Mega = 2 * 1024 * 1024
	// PageSize separates Small from Large allocations.
	PageSize = 4096
)

// Kind identifies the family of a size class.
type Kind uint8

const (
	// Tiny holds power-of-two sizes 2, 4 and 8.
	Tiny Kind = iota
	// QuantumKind holds multiples of Quantum up to MaxQuantum.
	QuantumKind
	// KiloKind holds power-of-two multiples of Kilo up to MaxKilo.
	KiloKind
	// MegaKind holds multiples of Mega.
	MegaKind
)

func (k Kind) String() string {
	switch k {
	case Tiny:
		return "tiny"
	case QuantumKind:
		return "quantum"
	case KiloKind:
		return "kilo"
	case MegaKind:
		return "mega"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Category groups classes by how they relate to the page size.
type Category uint8

const (
	// Small covers everything below a page.
	Small Category = iota
	// Large covers Kilo classes of at least a page.
	Large
	// Huge covers the Mega classes.
	Huge
)

func (c Category) String() string {
	switch c {
	case Small:
		return "small"
	case Large:
		return "large"
	case Huge:
		return "huge"
	default:
		return fmt.Sprintf("category(%d)", uint8(c))
	}
}

// Class is a discretized allocation size.
//
// N is the exponent for Tiny and Kilo classes and the multiple for Quantum
// and Mega classes.
type Class struct {
	Kind Kind
	N    int
}

// Of classifies a requested byte count. Negative sizes are treated as zero.
func Of(size int) Class {
	if size < 0 {
		size = 0
	}
	switch {
	case size <= HalfQuantum:
		// nextPow2(0) = 1 is floored to 2.
		return Class{Kind: Tiny, N: max(log2Ceil(size), 1)}
	case size <= MaxQuantum:
		return Class{Kind: QuantumKind, N: ceilDiv(size, Quantum)}
	case size <= MaxKilo:
		return Class{Kind: KiloKind, N: log2Ceil(size) - 10}
	default:
		return Class{Kind: MegaKind, N: ceilDiv(size, Mega)}
	}
}

// Size returns the reservable byte count of the class.
func (c Class) Size() int {
	switch c.Kind {
	case Tiny:
		return 1 << c.N
	case QuantumKind:
		return c.N * Quantum
	case KiloKind:
		return Kilo << c.N
	default:
		return c.N * Mega
	}
}

// Category reports the size category of the class.
func (c Class) Category() Category {
	switch c.Kind {
	case Tiny, QuantumKind:
		return Small
	case KiloKind:
		if c.Size() < PageSize {
			return Small
		}
		return Large
	default:
		return Huge
	}
}

func (c Class) String() string {
	return fmt.Sprintf("%s(%d)", c.Kind, c.N)
}

// RoundUp returns the reservable size for a request. A size whose class
// cannot be represented as an int is returned unchanged.
func RoundUp(size int) int {
	if r := Of(size).Size(); r >= size {
		return r
	}
	return size
}

// log2Ceil returns p such that 1<<p is the next power of two >= n.
func log2Ceil(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

func ceilDiv(n, d int) int {
	q := n / d
	if n%d != 0 {
		q++
	}
	return q
}
