package mmap

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Memfd creates an anonymous memory file of size bytes and returns its
// descriptor. The caller owns the descriptor.
func Memfd(name string, size int) (int, error) {
	if size <= 0 {
		return -1, ErrInvalidSize
	}
	fd, err := unix.MemfdCreate(name, unix.MFD_CLOEXEC)
	if err != nil {
		return -1, fmt.Errorf("memfd_create %q: %w", name, err)
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("ftruncate %q to %d: %w", name, size, err)
	}
	return fd, nil
}
