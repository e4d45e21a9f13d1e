package arena

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/camelalloc/vmspace"
	"github.com/hupe1980/camelalloc/vmspace/simulated"
)

func TestChunk_New(t *testing.T) {
	space := simulated.New()

	c, err := NewChunk(8192, 4096, space)
	require.NoError(t, err)

	assert.Equal(t, 8192, c.Base())
	assert.Equal(t, 4096, c.Size())
	assert.NotZero(t, c.Start())
	assert.Equal(t, 4096, c.Backing().Size())
	assert.Equal(t, 1, space.Stats().Objects)
}

func TestChunk_NewErrors(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		space := simulated.NewFaulty(simulated.Fault{FailCreateAfter: 0, FailMapAfter: -1})
		_, err := NewChunk(0, 4096, space)
		assert.ErrorIs(t, err, vmspace.ErrFault)
	})

	t.Run("map", func(t *testing.T) {
		space := simulated.NewFaulty(simulated.Fault{FailCreateAfter: -1, FailMapAfter: 0})
		_, err := NewChunk(0, 4096, space)
		assert.ErrorIs(t, err, vmspace.ErrFault)
	})
}

func TestChunk_Contains(t *testing.T) {
	c, err := NewChunk(4096, 4096, simulated.New())
	require.NoError(t, err)

	assert.False(t, c.Contains(0))
	assert.False(t, c.Contains(4095))
	assert.True(t, c.Contains(4096))
	assert.True(t, c.Contains(8191))
	assert.False(t, c.Contains(8192))
}

func TestChunk_TryGetSlice(t *testing.T) {
	c, err := NewChunk(4096, 4096, simulated.New())
	require.NoError(t, err)

	t.Run("below base", func(t *testing.T) {
		_, ok := c.TryGetSlice(4095, 1)
		assert.False(t, ok)
	})

	t.Run("inside", func(t *testing.T) {
		buf, ok := c.TryGetSlice(4096+100, 50)
		require.True(t, ok)
		assert.Len(t, buf, 50)
		assert.Equal(t, 50, cap(buf))
		assert.Equal(t, uintptr(c.Start())+100, addrOf(buf))
	})

	t.Run("exact end is rejected", func(t *testing.T) {
		// offset+size == chunk size: the last byte stays unusable.
		_, ok := c.TryGetSlice(4096+4096-10, 10)
		assert.False(t, ok)
	})

	t.Run("one byte before end", func(t *testing.T) {
		buf, ok := c.TryGetSlice(4096+4096-11, 10)
		require.True(t, ok)
		assert.Len(t, buf, 10)
	})

	t.Run("past end", func(t *testing.T) {
		_, ok := c.TryGetSlice(4096+4000, 200)
		assert.False(t, ok)
	})

	t.Run("negative size", func(t *testing.T) {
		_, ok := c.TryGetSlice(4096, -1)
		assert.False(t, ok)
	})

	t.Run("size near MaxInt", func(t *testing.T) {
		_, ok := c.TryGetSlice(4096+16, math.MaxInt-10)
		assert.False(t, ok)
	})

	t.Run("offset past chunk", func(t *testing.T) {
		_, ok := c.TryGetSlice(4096+8192, 0)
		assert.False(t, ok)
	})
}

func TestChunk_SlicesShareMemory(t *testing.T) {
	c, err := NewChunk(0, 4096, simulated.New())
	require.NoError(t, err)

	a, ok := c.TryGetSlice(0, 16)
	require.True(t, ok)
	b, ok := c.TryGetSlice(8, 16)
	require.True(t, ok)

	a[10] = 0x7f
	assert.Equal(t, byte(0x7f), b[2])
}
