package prom

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/camelalloc"
	"github.com/hupe1980/camelalloc/vmspace/simulated"
)

type fixedPressure camelalloc.Pressure

func (f fixedPressure) Pressure() camelalloc.Pressure { return camelalloc.Pressure(f) }

func TestCollector_Pressure(t *testing.T) {
	c := NewCollector(fixedPressure{Used: 100, Size: 2 << 20, Available: 64 << 20, Leaked: 7, Scratch: 12})

	expected := `
# HELP camelalloc_memory_leaked_bytes Bytes handed back and never reclaimed.
# TYPE camelalloc_memory_leaked_bytes gauge
camelalloc_memory_leaked_bytes 7
# HELP camelalloc_memory_used_bytes Sum of arena allocation heads, alignment padding included.
# TYPE camelalloc_memory_used_bytes gauge
camelalloc_memory_used_bytes 100
`
	err := promtestutil.CollectAndCompare(c, strings.NewReader(expected),
		"camelalloc_memory_used_bytes", "camelalloc_memory_leaked_bytes")
	require.NoError(t, err)

	assert.Equal(t, 5, promtestutil.CollectAndCount(c))
}

func TestCollector_BasicMetrics(t *testing.T) {
	mc := &camelalloc.BasicMetricsCollector{}
	a := camelalloc.New(camelalloc.WithMetricsCollector(mc))
	a.Init(simulated.New())

	for _, size := range []int{16, 32, 8192, 3 << 20} {
		_, err := a.Allocate(camelalloc.Layout{Size: size, Align: 8})
		require.NoError(t, err)
	}
	a.Deallocate(camelalloc.Region{}, camelalloc.Layout{Size: 16, Align: 8})

	c := NewCollector(a, WithBasicMetrics(mc))
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))

	expected := `
# HELP camelalloc_allocations_total Successful allocations by size category.
# TYPE camelalloc_allocations_total counter
camelalloc_allocations_total{category="huge"} 1
camelalloc_allocations_total{category="large"} 1
camelalloc_allocations_total{category="small"} 2
# HELP camelalloc_deallocations_total Deallocation calls.
# TYPE camelalloc_deallocations_total counter
camelalloc_deallocations_total 1
# HELP camelalloc_memory_leaked_bytes Bytes handed back and never reclaimed.
# TYPE camelalloc_memory_leaked_bytes gauge
camelalloc_memory_leaked_bytes 16
`
	err := promtestutil.GatherAndCompare(reg, strings.NewReader(expected),
		"camelalloc_allocations_total", "camelalloc_deallocations_total", "camelalloc_memory_leaked_bytes")
	require.NoError(t, err)

	assert.Equal(t, 5+8, promtestutil.CollectAndCount(c))
}

func TestCollector_Lint(t *testing.T) {
	c := NewCollector(camelalloc.New(), WithBasicMetrics(&camelalloc.BasicMetricsCollector{}))
	problems, err := promtestutil.CollectAndLint(c)
	require.NoError(t, err)
	assert.Empty(t, problems)
}
