//go:build unix

package main

import (
	"github.com/hupe1980/camelalloc/vmspace"
	"github.com/hupe1980/camelalloc/vmspace/anon"
)

func newAnonSpace() (vmspace.Space, error) {
	var opts []anon.Option
	if prefault {
		opts = append(opts, anon.WithPrefault())
	}
	return anon.New(opts...), nil
}
