package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/camelalloc/vmspace"
)

func TestStressCommand(t *testing.T) {
	resetFlags()
	jsonOut = true
	stressOverlapCheck = true

	output, err := captureOutput(t, func() error {
		return runStress(context.Background())
	})
	require.NoError(t, err)

	var got StressReport
	decodeJSON(t, output, &got)
	assert.Equal(t, 4, got.Workers)
	assert.Equal(t, int64(4*1000), got.Allocs)
	assert.Zero(t, got.Failures)
	assert.GreaterOrEqual(t, got.Used, int(got.Bytes))
	assert.Zero(t, got.Leaked)
}

func TestStressCommand_MemoryLimit(t *testing.T) {
	resetFlags()
	jsonOut = true
	stressAllocs = 4000
	stressMaxSize = "16KiB"
	stressMemoryLimit = "2MiB"
	stressRelease = true

	output, err := captureOutput(t, func() error {
		return runStress(context.Background())
	})
	require.NoError(t, err)

	var got StressReport
	decodeJSON(t, output, &got)
	assert.Equal(t, int64(4*4000), got.Allocs+got.Failures)
	assert.Positive(t, got.Failures)
	assert.Equal(t, int64(1), got.Chunks)
	assert.Equal(t, 2<<20, got.Mapped)
	assert.Positive(t, got.Leaked)
}

func TestStressCommand_Text(t *testing.T) {
	resetFlags()
	stressAllocs = 100

	output, err := captureOutput(t, func() error {
		return runStress(context.Background())
	})
	require.NoError(t, err)
	assert.Contains(t, output, "Allocations: 400 (0 failed)")
	assert.Contains(t, output, "Pressure:")
}

func TestStressCommand_InvalidFlags(t *testing.T) {
	resetFlags()
	stressWorkers = 0
	require.Error(t, runStress(context.Background()))

	resetFlags()
	stressMaxSize = "huge"
	require.Error(t, runStress(context.Background()))

	resetFlags()
	stressMemoryLimit = "plenty"
	require.Error(t, runStress(context.Background()))
}

func TestStressCommand_RealSpaces(t *testing.T) {
	for _, kind := range []string{"anon", "memfd"} {
		t.Run(kind, func(t *testing.T) {
			resetFlags()
			jsonOut = true
			spaceKind = kind
			prefault = kind == "anon"
			stressAllocs = 200

			space, err := newSpace()
			if err != nil {
				t.Skipf("%s space unavailable: %v", kind, err)
			}
			obj, err := space.CreateObject(4096, vmspace.ProtRW)
			if err != nil {
				t.Skipf("%s space unavailable: %v", kind, err)
			}
			require.NoError(t, obj.Close())

			output, err := captureOutput(t, func() error {
				return runStress(context.Background())
			})
			require.NoError(t, err)

			var got StressReport
			decodeJSON(t, output, &got)
			assert.Equal(t, int64(4*200), got.Allocs)
		})
	}
}
