package main

import (
	"fmt"
	"regexp"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sheetrun/internal/config"
	"sheetrun/internal/logging"
	"sheetrun/internal/testcase"
)

var (
	// Suite selection flags
	sheetName  string
	defaultURL string
	onlyKinds  []string
	matchExpr  string

	// Execution flags
	workers     int
	headless    bool
	settleMode  string
	caseTimeout time.Duration
)

func addSuiteFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sheetName, "sheet-name", "", "Worksheet to read (default: first sheet)")
	cmd.Flags().StringVar(&defaultURL, "default-url", "", "URL for cases that name none")
	cmd.Flags().StringSliceVar(&onlyKinds, "only", nil, "Only run these kinds: positive, negative, ui, default")
	cmd.Flags().StringVar(&matchExpr, "match", "", "Only run cases whose \"<id> - <name>\" matches this regexp")
}

func addExecFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&workers, "workers", 1, "Cases run concurrently, each in its own page")
	cmd.Flags().BoolVar(&headless, "headless", true, "Run Chrome headless")
	cmd.Flags().StringVar(&settleMode, "settle", "", "How to wait for output: poll or fixed")
	cmd.Flags().DurationVar(&caseTimeout, "case-timeout", 0, "Upper bound for a single case")
}

// applyFlags overlays explicitly set flags and the optional sheet argument
// onto c, then validates it.
func applyFlags(cmd *cobra.Command, c *config.Config, args []string) error {
	if len(args) > 0 {
		c.Suite.Path = args[0]
	}

	f := cmd.Flags()
	if f.Changed("sheet-name") {
		c.Suite.Sheet = sheetName
	}
	if f.Changed("default-url") {
		c.Suite.DefaultURL = defaultURL
	}
	if f.Changed("workers") {
		c.Execution.Workers = workers
	}
	if f.Changed("headless") {
		c.Browser.Headless = headless
	}
	if f.Changed("settle") {
		c.Settle.Mode = settleMode
	}
	if f.Changed("case-timeout") {
		c.Execution.CaseTimeout = caseTimeout.String()
	}

	return c.Validate()
}

// buildFilter turns --only and --match into a suite filter.
func buildFilter(cmd *cobra.Command) (testcase.Filter, error) {
	var filter testcase.Filter
	f := cmd.Flags()

	if f.Changed("only") {
		for _, k := range onlyKinds {
			cat, err := testcase.ParseCategory(k)
			if err != nil {
				return filter, err
			}
			filter.Only = append(filter.Only, cat)
		}
	}
	if f.Changed("match") && matchExpr != "" {
		re, err := regexp.Compile(matchExpr)
		if err != nil {
			return filter, fmt.Errorf("invalid --match: %w", err)
		}
		filter.Match = re
	}
	return filter, nil
}

// loadSuite reads the configured sheet and applies the command's filter.
func loadSuite(cmd *cobra.Command, c *config.Config) ([]testcase.Descriptor, error) {
	filter, err := buildFilter(cmd)
	if err != nil {
		return nil, err
	}

	timer := logging.StartTimer(logging.CategorySheet, "load suite")
	opts := c.LoadOptions()
	opts.Sheet.Logger = logging.Get(logging.CategorySheet)
	suite, err := testcase.LoadSuite(c.Suite.Path, opts)
	timer.Stop()
	if err != nil {
		return nil, err
	}

	selected := filter.Apply(suite)
	logger.Info("suite loaded",
		zap.String("path", c.Suite.Path),
		zap.Int("cases", len(suite)),
		zap.Int("selected", len(selected)))
	return selected, nil
}
