//go:build !linux

package main

import (
	"errors"

	"github.com/hupe1980/camelalloc/vmspace"
)

func newMemfdSpace() (vmspace.Space, error) {
	return nil, errors.New("memfd space is only available on linux")
}
