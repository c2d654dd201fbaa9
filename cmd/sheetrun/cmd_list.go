package main

import (
	"github.com/spf13/cobra"

	"sheetrun/internal/report"
)

var listCmd = &cobra.Command{
	Use:   "list [sheet]",
	Short: "List the cases derived from the sheet without running them",
	Args:  cobra.MaximumNArgs(1),
	RunE:  listCases,
}

func listCases(cmd *cobra.Command, args []string) error {
	if err := applyFlags(cmd, cfg, args); err != nil {
		return err
	}
	suite, err := loadSuite(cmd, cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	report.New(out, isTerminal(out)).Cases(suite)
	return nil
}
