package main

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/camelalloc"
	"github.com/hupe1980/camelalloc/internal/workload"
)

var (
	stressWorkers      int
	stressAllocs       int
	stressMaxSize      string
	stressMaxAlign     int
	stressSkew         float64
	stressSeed         int64
	stressMemoryLimit  string
	stressMapRate      float64
	stressOverlapCheck bool
	stressRelease      bool
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVarP(&stressWorkers, "workers", "w", 4, "Concurrent allocating goroutines")
	cmd.Flags().IntVarP(&stressAllocs, "allocs", "n", 10000, "Allocations per worker")
	cmd.Flags().StringVar(&stressMaxSize, "max-size", "16KiB", "Largest request size")
	cmd.Flags().IntVar(&stressMaxAlign, "max-align", 64, "Largest alignment (power of two)")
	cmd.Flags().Float64Var(&stressSkew, "skew", 1.2, "Zipf skew of the size distribution")
	cmd.Flags().Int64Var(&stressSeed, "seed", 42, "Workload seed")
	cmd.Flags().StringVar(&stressMemoryLimit, "memory-limit", "", "Cap on mapped memory (e.g. 8MiB)")
	cmd.Flags().Float64Var(&stressMapRate, "map-rate", 0, "Chunk mappings per second (0 = unlimited)")
	cmd.Flags().BoolVar(&stressOverlapCheck, "overlap-check", false, "Verify that no two regions overlap")
	cmd.Flags().BoolVar(&stressRelease, "release", false, "Hand every region back right after use")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Run a concurrent allocation workload",
		Long: `The stress command runs several goroutines that allocate randomly sized
and aligned blocks, write to them and report throughput, failures and the
final memory pressure. Exhaustion is reported, not treated as an error.

Example:
  camelctl stress
  camelctl stress -w 8 -n 50000 --max-size 4KiB --overlap-check
  camelctl stress --space memfd --memory-limit 8MiB --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress(cmd.Context())
		},
	}
	return cmd
}

// StressReport is the stress output.
type StressReport struct {
	Workers    int           `json:"workers"`
	Allocs     int64         `json:"allocs"`
	Failures   int64         `json:"failures"`
	Bytes      int64         `json:"bytes"`
	Contention int64         `json:"contention"`
	Chunks     int64         `json:"chunks"`
	Duration   time.Duration `json:"duration_ns"`
	Used       int           `json:"used"`
	Mapped     int           `json:"mapped"`
	Leaked     int           `json:"leaked"`
}

func stressOptions(mc camelalloc.MetricsCollector) ([]camelalloc.Option, error) {
	opts := []camelalloc.Option{camelalloc.WithMetricsCollector(mc)}

	if stressMemoryLimit != "" {
		limit, err := humanize.ParseBytes(stressMemoryLimit)
		if err != nil {
			return nil, fmt.Errorf("invalid memory limit %q: %w", stressMemoryLimit, err)
		}
		opts = append(opts, camelalloc.WithMemoryLimit(int64(limit)))
	}
	if stressMapRate > 0 {
		opts = append(opts, camelalloc.WithMapRateLimit(stressMapRate))
	}
	if stressOverlapCheck {
		opts = append(opts, camelalloc.WithOverlapCheck())
	}
	return opts, nil
}

func runStress(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if stressWorkers <= 0 || stressAllocs <= 0 {
		return errors.New("workers and allocs must be positive")
	}
	maxSize, err := parseSize(stressMaxSize)
	if err != nil {
		return err
	}
	if maxSize <= 0 {
		return errors.New("max-size must be positive")
	}
	maxShift := 0
	for 1<<(maxShift+1) <= stressMaxAlign && 1<<(maxShift+1) <= camelalloc.MaxAlign {
		maxShift++
	}

	mc := &camelalloc.BasicMetricsCollector{}
	opts, err := stressOptions(mc)
	if err != nil {
		return err
	}
	a, err := newAllocator(opts...)
	if err != nil {
		return err
	}

	var failures atomic.Int64
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	for w := range stressWorkers {
		gen := workload.New(stressSeed + int64(w))
		sizes := gen.SkewedSizes(stressAllocs, maxSize, stressSkew)
		aligns := gen.Aligns(stressAllocs, maxShift)

		g.Go(func() error {
			for i := range sizes {
				if err := ctx.Err(); err != nil {
					return err
				}
				layout := camelalloc.Layout{Size: sizes[i], Align: aligns[i]}
				r, err := a.Allocate(layout)
				if errors.Is(err, camelalloc.ErrOutOfMemory) {
					failures.Add(1)
					continue
				}
				if err != nil {
					return err
				}
				workload.Fill(r.Bytes(), byte(w))
				if stressRelease {
					a.Deallocate(r, layout)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	st := mc.GetStats()
	p := a.Pressure()
	report := StressReport{
		Workers:    stressWorkers,
		Allocs:     st.Allocs(),
		Failures:   failures.Load(),
		Bytes:      st.AllocBytes,
		Contention: st.Contention,
		Chunks:     st.ChunksMapped,
		Duration:   elapsed,
		Used:       p.Used,
		Mapped:     p.Size,
		Leaked:     p.Leaked,
	}

	if jsonOut {
		return printJSON(report)
	}

	printInfo("Workers:     %d\n", report.Workers)
	printInfo("Allocations: %s (%s failed)\n", humanize.Comma(report.Allocs), humanize.Comma(report.Failures))
	printInfo("Requested:   %s\n", humanize.IBytes(uint64(report.Bytes)))
	printInfo("Chunks:      %d\n", report.Chunks)
	printInfo("Contention:  %s skips\n", humanize.Comma(report.Contention))
	printInfo("Duration:    %s (%s allocs/s)\n", elapsed.Round(time.Microsecond),
		humanize.Comma(int64(float64(report.Allocs)/max(elapsed.Seconds(), 1e-9))))
	printInfo("Pressure:    %s\n", p)
	return nil
}
