//go:build linux

package camelalloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/camelalloc/internal/arena"
	"github.com/hupe1980/camelalloc/testutil"
	"github.com/hupe1980/camelalloc/vmspace"
	"github.com/hupe1980/camelalloc/vmspace/memfd"
)

func TestAllocator_Memfd(t *testing.T) {
	space := memfd.New()
	obj, err := space.CreateObject(4096, vmspace.ProtRW)
	if err != nil {
		t.Skipf("memfd unavailable: %v", err)
	}
	require.NoError(t, obj.Close())

	a := New(WithOverlapCheck())
	a.Init(space)

	r := mustAllocate(t, a, 4096, 4096)
	assert.Zero(t, r.Addr()%4096)
	testutil.Fill(r.Bytes(), 0x5a)
	assert.True(t, testutil.AllEqual(r.Bytes(), 0x5a))

	var g errgroup.Group
	for w := range 4 {
		g.Go(func() error {
			for range 256 {
				r, err := a.Allocate(Layout{Size: 1000, Align: 8})
				if err != nil {
					return err
				}
				testutil.Fill(r.Bytes(), byte(w))
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.LessOrEqual(t, a.MemoryAllocated(), 2*arena.ChunkSize)
}
