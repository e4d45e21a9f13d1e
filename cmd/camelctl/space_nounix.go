//go:build !unix

package main

import (
	"errors"

	"github.com/hupe1980/camelalloc/vmspace"
)

func newAnonSpace() (vmspace.Space, error) {
	return nil, errors.New("anon space is only available on unix")
}
