//go:build linux

package mmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestMapAnon_ReadWriteClose(t *testing.T) {
	m, err := MapAnon(8192)
	require.NoError(t, err)

	data := m.Bytes()
	require.Len(t, data, 8192)
	assert.Equal(t, 8192, m.Size())

	data[0], data[8191] = 0xAA, 0x55
	assert.Equal(t, byte(0xAA), m.Bytes()[0])
	assert.Equal(t, byte(0x55), m.Bytes()[8191])

	require.NoError(t, m.Advise(AccessRandom))
	require.NoError(t, m.Close())
	require.NoError(t, m.Close(), "close must be idempotent")
	assert.Nil(t, m.Bytes())
	assert.ErrorIs(t, m.Advise(AccessDefault), ErrClosed)
}

func TestMapAnon_InvalidSize(t *testing.T) {
	_, err := MapAnon(0)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestMemfd_SharedMappings(t *testing.T) {
	fd, err := Memfd("mmap-test", 4096)
	require.NoError(t, err)
	defer unix.Close(fd)

	a, err := MapFd(fd, 0, 4096)
	require.NoError(t, err)
	defer a.Close()

	b, err := MapFd(fd, 0, 4096)
	require.NoError(t, err)
	defer b.Close()

	a.Bytes()[100] = 42
	assert.Equal(t, byte(42), b.Bytes()[100], "both mappings share the memfd pages")
}

func TestMapFd_InvalidArgs(t *testing.T) {
	_, err := Memfd("bad", 0)
	assert.ErrorIs(t, err, ErrInvalidSize)

	fd, err := Memfd("mmap-test", 4096)
	require.NoError(t, err)
	defer unix.Close(fd)

	_, err = MapFd(fd, 3, 10)
	assert.ErrorIs(t, err, ErrInvalidOffset)

	_, err = MapFd(fd, 0, -1)
	assert.ErrorIs(t, err, ErrInvalidSize)
}
