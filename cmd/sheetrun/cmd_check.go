package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sheetrun/internal/logging"
	"sheetrun/internal/sheet"
	"sheetrun/internal/testcase"
)

var checkCmd = &cobra.Command{
	Use:   "check [sheet]",
	Short: "Validate the sheet header and count runnable cases",
	Args:  cobra.MaximumNArgs(1),
	RunE:  checkSheet,
}

func checkSheet(cmd *cobra.Command, args []string) error {
	if err := applyFlags(cmd, cfg, args); err != nil {
		return err
	}
	filter, err := buildFilter(cmd)
	if err != nil {
		return err
	}

	opts := cfg.LoadOptions()
	opts.Sheet.Logger = logging.Get(logging.CategorySheet)
	grid, err := sheet.Load(cfg.Suite.Path, opts.Sheet)
	if err != nil {
		return err
	}
	header, err := sheet.LocateHeader(grid)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Suite.Path, err)
	}
	recs, err := sheet.ExtractRecords(grid, header)
	if err != nil {
		return err
	}
	suite := filter.Apply(testcase.Classifier{DefaultURL: opts.DefaultURL}.FromRecords(recs))

	counts := map[testcase.Category]int{}
	ui := 0
	for _, d := range suite {
		counts[d.Category.Primary()]++
		if d.Category.Has(testcase.UI) {
			ui++
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Sheet:      %s\n", cfg.Suite.Path)
	fmt.Fprintf(out, "Header row: %d\n", header+1)
	fmt.Fprintf(out, "Cases:      %d (positive %d, negative %d, default %d; ui %d)\n",
		len(suite), counts[testcase.Positive], counts[testcase.Negative], counts[testcase.Default], ui)
	return nil
}
