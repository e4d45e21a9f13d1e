//go:build linux

package main

import (
	"github.com/hupe1980/camelalloc/vmspace"
	"github.com/hupe1980/camelalloc/vmspace/memfd"
)

func newMemfdSpace() (vmspace.Space, error) {
	return memfd.New(), nil
}
