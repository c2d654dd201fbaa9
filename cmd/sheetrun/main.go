// Package main implements the sheetrun CLI.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sheetrun/internal/config"
	"sheetrun/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	envFile    string
	timeout    time.Duration

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sheetrun",
	Short: "Run spreadsheet-defined test cases against a web page",
	Long: `sheetrun reads test cases from a spreadsheet (one row per case), drives
the page under test in a headless browser for each row and reports a
pass/fail verdict per case.

The header row is the first row containing "tc" (for example "TC ID").
Case kinds come from the id prefix: pos_fun, neg_fun, and "ui" anywhere
in the id or name.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// SHEETRUN_* variables may come from a .env file; real env wins
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}

		// init-config must work even when the existing file is broken
		if cmd.Name() == "init-config" {
			cfg = config.DefaultConfig()
		} else {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
		}

		if err := logging.Initialize(cfg.Logging, verbose); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = logging.Get(logging.CategoryCLI)
		logger.Debug("config loaded", zap.String("path", configPath))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file (missing file = defaults)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before config (missing file is ignored)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Minute, "Overall operation timeout")

	addSuiteFlags(runCmd)
	addSuiteFlags(listCmd)
	addSuiteFlags(checkCmd)
	addSuiteFlags(watchCmd)
	addExecFlags(runCmd)
	addExecFlags(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Quiet period after a change before re-running")
	initConfigCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing config file")

	// Add commands to root
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(initConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
