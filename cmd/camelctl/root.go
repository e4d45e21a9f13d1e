package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/camelalloc"
	"github.com/hupe1980/camelalloc/vmspace"
	"github.com/hupe1980/camelalloc/vmspace/simulated"
)

var (
	// Global flags
	verbose   bool
	quiet     bool
	jsonOut   bool
	spaceKind string
	prefault  bool
)

var rootCmd = &cobra.Command{
	Use:   "camelctl",
	Short: "Inspect size classes and exercise the camelalloc arena allocator",
	Long: `camelctl classifies request sizes, reports allocator memory pressure and
runs concurrent allocation workloads against a simulated, anonymous-mmap or
memfd-backed memory space.`,
	Version:      "0.1.0",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		StringVar(&spaceKind, "space", "simulated", "Memory space backing the allocator (simulated, anon, memfd)")
	rootCmd.PersistentFlags().
		BoolVar(&prefault, "prefault", false, "Populate anon chunks eagerly")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// newSpace creates the memory space selected by --space.
func newSpace() (vmspace.Space, error) {
	switch spaceKind {
	case "", "simulated":
		return simulated.New(), nil
	case "anon":
		return newAnonSpace()
	case "memfd":
		return newMemfdSpace()
	default:
		return nil, fmt.Errorf("unknown space %q (want simulated, anon or memfd)", spaceKind)
	}
}

// newAllocator creates an initialized allocator. Verbose mode logs to stderr.
func newAllocator(opts ...camelalloc.Option) (*camelalloc.Allocator, error) {
	space, err := newSpace()
	if err != nil {
		return nil, err
	}
	if verbose {
		opts = append(opts, camelalloc.WithLogger(camelalloc.NewTextLogger(slog.LevelDebug)))
	}

	a := camelalloc.New(opts...)
	a.Init(space)
	printVerbose("Allocator initialized on %s space\n", spaceKind)
	return a, nil
}
