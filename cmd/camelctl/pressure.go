package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hupe1980/camelalloc"
)

var pressureAlign int

func init() {
	cmd := newPressureCmd()
	cmd.Flags().IntVar(&pressureAlign, "align", 8, "Alignment of every allocation")
	rootCmd.AddCommand(cmd)
}

func newPressureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pressure [size]...",
		Short: "Allocate the given sizes and report memory pressure",
		Long: `The pressure command initializes a fresh allocator, performs one
allocation per size argument and prints the resulting memory pressure.

Example:
  camelctl pressure
  camelctl pressure 100 4KiB 3MiB
  camelctl pressure 1MiB --space memfd --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPressure(args)
		},
	}
	return cmd
}

// PressureReport is the pressure output.
type PressureReport struct {
	Used      int `json:"used"`
	Mapped    int `json:"mapped"`
	Available int `json:"available"`
	Leaked    int `json:"leaked"`
	Scratch   int `json:"scratch"`
	Failed    int `json:"failed"`
}

func runPressure(args []string) error {
	layouts := make([]camelalloc.Layout, 0, len(args))
	for _, arg := range args {
		size, err := parseSize(arg)
		if err != nil {
			return err
		}
		l, err := camelalloc.NewLayout(size, pressureAlign)
		if err != nil {
			return err
		}
		layouts = append(layouts, l)
	}

	a, err := newAllocator()
	if err != nil {
		return err
	}

	failed := 0
	for _, l := range layouts {
		r, err := a.Allocate(l)
		if err != nil {
			printVerbose("%s: %v\n", humanize.IBytes(uint64(l.Size)), err)
			failed++
			continue
		}
		printVerbose("%s at %#x\n", humanize.IBytes(uint64(l.Size)), r.Addr())
	}

	p := a.Pressure()
	if jsonOut {
		return printJSON(PressureReport{
			Used:      p.Used,
			Mapped:    p.Size,
			Available: p.Available,
			Leaked:    p.Leaked,
			Scratch:   p.Scratch,
			Failed:    failed,
		})
	}

	printInfo("%s\n", p)
	if failed > 0 {
		return fmt.Errorf("%d of %d allocations failed", failed, len(layouts))
	}
	return nil
}
