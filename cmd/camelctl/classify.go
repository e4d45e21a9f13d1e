package main

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hupe1980/camelalloc/sizeclass"
)

func init() {
	rootCmd.AddCommand(newClassifyCmd())
}

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <size>...",
		Short: "Show the size class of request sizes",
		Long: `The classify command maps each request size to its size class, the
rounded block size and the size category.

Sizes accept unit suffixes.

Example:
  camelctl classify 3 100 5000
  camelctl classify 2MiB 3MB --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(args)
		},
	}
	return cmd
}

// Classification is the classify output for one size.
type Classification struct {
	Size     int    `json:"size"`
	Class    string `json:"class"`
	Rounded  int    `json:"rounded"`
	Category string `json:"category"`
}

func classify(size int) Classification {
	c := sizeclass.Of(size)
	return Classification{
		Size:     size,
		Class:    c.String(),
		Rounded:  c.Size(),
		Category: c.Category().String(),
	}
}

func parseSize(s string) (int, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("size %q is too large", s)
	}
	return int(n), nil
}

func runClassify(args []string) error {
	results := make([]Classification, 0, len(args))
	for _, arg := range args {
		size, err := parseSize(arg)
		if err != nil {
			return err
		}
		results = append(results, classify(size))
	}

	if jsonOut {
		return printJSON(results)
	}

	for _, r := range results {
		printInfo("%-12d %-14s %-10s %s\n", r.Size, r.Class, humanize.IBytes(uint64(r.Rounded)), r.Category)
	}
	return nil
}
