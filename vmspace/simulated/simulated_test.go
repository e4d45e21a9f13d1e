package simulated

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/camelalloc/vmspace"
)

func TestSpace_MapSharesObjectMemory(t *testing.T) {
	s := New()

	obj, err := s.CreateObject(1024, vmspace.ProtRW)
	require.NoError(t, err)

	a, err := s.Map(0, obj, 0, 1024, vmspace.ProtRW)
	require.NoError(t, err)
	b, err := s.Map(0, obj, 512, 512, vmspace.ProtRead)
	require.NoError(t, err)

	assert.Zero(t, uintptr(a.Base())%4096, "objects are page aligned")

	a.Bytes()[600] = 7
	assert.Equal(t, byte(7), b.Bytes()[88])
	assert.Equal(t, a.Base()+512, b.Base())

	st := s.Stats()
	assert.Equal(t, 1, st.Objects)
	assert.Equal(t, 2, st.Maps)
	assert.Equal(t, 1536, st.MappedBytes)
}

func TestSpace_Faults(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		s := NewFaulty(Fault{FailCreateAfter: 1, FailMapAfter: -1})
		_, err := s.CreateObject(16, vmspace.ProtRW)
		require.NoError(t, err)
		_, err = s.CreateObject(16, vmspace.ProtRW)
		assert.ErrorIs(t, err, vmspace.ErrFault)
	})

	t.Run("map", func(t *testing.T) {
		custom := errors.New("boom")
		s := NewFaulty(Fault{FailCreateAfter: -1, FailMapAfter: 0, Err: custom})
		obj, err := s.CreateObject(16, vmspace.ProtRW)
		require.NoError(t, err)
		_, err = s.Map(0, obj, 0, 16, vmspace.ProtRW)
		assert.ErrorIs(t, err, custom)
	})

	t.Run("clone shares counters", func(t *testing.T) {
		s := New()
		c, err := s.Clone(vmspace.CredAll)
		require.NoError(t, err)

		s.SetFault(Fault{FailCreateAfter: 0, FailMapAfter: -1})
		_, err = c.CreateObject(16, vmspace.ProtRW)
		assert.ErrorIs(t, err, vmspace.ErrFault)
	})

	t.Run("clone", func(t *testing.T) {
		s := NewFaulty(Fault{FailCreateAfter: -1, FailMapAfter: -1, FailClone: true})
		_, err := s.Clone(vmspace.CredAll)
		assert.ErrorIs(t, err, vmspace.ErrFault)
	})

	t.Run("clone after successes", func(t *testing.T) {
		s := NewFaulty(Fault{FailCreateAfter: -1, FailMapAfter: -1, FailClone: true, CloneSuccesses: 2})
		c, err := s.Clone(vmspace.CredAll)
		require.NoError(t, err)
		_, err = c.Clone(vmspace.CredAll)
		require.NoError(t, err)
		_, err = s.Clone(vmspace.CredAll)
		assert.ErrorIs(t, err, vmspace.ErrFault)
	})
}

func TestSpace_Credentials(t *testing.T) {
	s := New()
	ro, err := s.Clone(vmspace.CredClone)
	require.NoError(t, err)

	_, err = ro.CreateObject(16, vmspace.ProtRW)
	assert.ErrorIs(t, err, vmspace.ErrPermission)

	_, err = ro.Clone(vmspace.CredAll)
	assert.ErrorIs(t, err, vmspace.ErrPermission)
}

func TestSpace_MapBounds(t *testing.T) {
	s := New()
	obj, err := s.CreateObject(64, vmspace.ProtRead)
	require.NoError(t, err)

	_, err = s.Map(0, obj, 32, 64, vmspace.ProtRead)
	assert.ErrorIs(t, err, vmspace.ErrOutOfBounds)

	_, err = s.Map(0, obj, 0, 0, vmspace.ProtRead)
	assert.ErrorIs(t, err, vmspace.ErrInvalidSize)

	_, err = s.Map(0, obj, 0, 64, vmspace.ProtRW)
	assert.ErrorIs(t, err, vmspace.ErrPermission)
}
