// Package prom exports allocator state to Prometheus.
//
//	c := prom.NewCollector(allocator, prom.WithBasicMetrics(mc))
//	prometheus.MustRegister(c)
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/camelalloc"
)

const namespace = "camelalloc"

// PressureSource provides memory-pressure snapshots.
// *camelalloc.Allocator implements it.
type PressureSource interface {
	Pressure() camelalloc.Pressure
}

// Collector implements prometheus.Collector. Values are read at scrape time.
type Collector struct {
	source PressureSource
	basic  *camelalloc.BasicMetricsCollector

	used      *prometheus.Desc
	mapped    *prometheus.Desc
	available *prometheus.Desc
	leaked    *prometheus.Desc
	scratch   *prometheus.Desc

	allocs     *prometheus.Desc
	allocBytes *prometheus.Desc
	failures   *prometheus.Desc
	deallocs   *prometheus.Desc
	chunks     *prometheus.Desc
	contention *prometheus.Desc
}

// Option configures a Collector.
type Option func(*Collector)

// WithBasicMetrics additionally exports the counters of mc.
func WithBasicMetrics(mc *camelalloc.BasicMetricsCollector) Option {
	return func(c *Collector) {
		c.basic = mc
	}
}

// NewCollector creates a Collector for source.
func NewCollector(source PressureSource, opts ...Option) *Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}

	c := &Collector{
		source:    source,
		used:      desc("memory_used_bytes", "Sum of arena allocation heads, alignment padding included."),
		mapped:    desc("memory_mapped_bytes", "Bytes mapped from the memory space."),
		available: desc("memory_available_bytes", "Mapping ceiling."),
		leaked:    desc("memory_leaked_bytes", "Bytes handed back and never reclaimed."),
		scratch:   desc("scratch_used_bytes", "Bytes served from the pre-initialization scratch buffers."),

		allocs:     desc("allocations_total", "Successful allocations by size category.", "category"),
		allocBytes: desc("allocated_bytes_total", "Requested bytes of successful allocations."),
		failures:   desc("allocation_failures_total", "Allocations no arena could serve."),
		deallocs:   desc("deallocations_total", "Deallocation calls."),
		chunks:     desc("chunks_mapped_total", "Chunks mapped by all arenas."),
		contention: desc("arena_contention_total", "Arenas skipped because another allocation held them."),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.used
	ch <- c.mapped
	ch <- c.available
	ch <- c.leaked
	ch <- c.scratch

	if c.basic != nil {
		ch <- c.allocs
		ch <- c.allocBytes
		ch <- c.failures
		ch <- c.deallocs
		ch <- c.chunks
		ch <- c.contention
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	p := c.source.Pressure()

	gauge := func(d *prometheus.Desc, v int) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v))
	}
	gauge(c.used, p.Used)
	gauge(c.mapped, p.Size)
	gauge(c.available, p.Available)
	gauge(c.leaked, p.Leaked)
	gauge(c.scratch, p.Scratch)

	if c.basic == nil {
		return
	}

	st := c.basic.GetStats()
	counter := func(d *prometheus.Desc, v int64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
	}
	counter(c.allocs, st.SmallAllocs, "small")
	counter(c.allocs, st.LargeAllocs, "large")
	counter(c.allocs, st.HugeAllocs, "huge")
	counter(c.allocBytes, st.AllocBytes)
	counter(c.failures, st.AllocFailures)
	counter(c.deallocs, st.DeallocCount)
	counter(c.chunks, st.ChunksMapped)
	counter(c.contention, st.Contention)
}
