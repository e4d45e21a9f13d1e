package mem

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestAllocAligned(t *testing.T) {
	sizes := []int{1, 10, 63, 64, 65, 100, 1024, 1 << 20}
	aligns := []int{1, 8, 64, PageSize}

	for _, align := range aligns {
		for _, size := range sizes {
			buf := AllocAligned(size, align)
			assert.Len(t, buf, size)
			assert.Equal(t, size, cap(buf))

			addr := uintptr(unsafe.Pointer(&buf[0]))
			assert.Zero(t, addr%uintptr(align), "Address %d should be aligned to %d for size %d", addr, align, size)
		}
	}

	assert.Nil(t, AllocAligned(0, 64))
	assert.Nil(t, AllocAligned(-1, 64))
	assert.Len(t, AllocAligned(10, 3), 10)
}

func TestPad(t *testing.T) {
	tests := []struct {
		addr  uintptr
		align int
		want  int
	}{
		{0, 8, 0},
		{1, 8, 7},
		{8, 8, 0},
		{9, 16, 7},
		{4095, PageSize, 1},
		{12345, 1, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.addr, tt.align), func(t *testing.T) {
			assert.Equal(t, tt.want, Pad(tt.addr, tt.align))
		})
	}
}

func TestAlignUp(t *testing.T) {
	assert.Equal(t, 0, AlignUp(0, 16))
	assert.Equal(t, 16, AlignUp(1, 16))
	assert.Equal(t, 16, AlignUp(16, 16))
	assert.Equal(t, 2<<20, AlignUp(2<<20-1, 2<<20))
}

func TestIsPow2(t *testing.T) {
	for _, n := range []int{1, 2, 4, 4096, 1 << 30} {
		assert.True(t, IsPow2(n), n)
	}
	for _, n := range []int{0, -2, 3, 6, 4095} {
		assert.False(t, IsPow2(n), n)
	}
}

func BenchmarkAllocAligned(b *testing.B) {
	for b.Loop() {
		_ = AllocAligned(4096, PageSize)
	}
}
