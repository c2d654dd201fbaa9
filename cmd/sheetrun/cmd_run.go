package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"sheetrun/internal/browser"
	"sheetrun/internal/config"
	"sheetrun/internal/logging"
	"sheetrun/internal/report"
	"sheetrun/internal/runner"
	"sheetrun/internal/testcase"
)

// errCasesFailed is returned when a run completes with failing cases.
var errCasesFailed = errors.New("test cases failed")

var runCmd = &cobra.Command{
	Use:   "run [sheet]",
	Short: "Run every case in the sheet and report verdicts",
	Long: `Loads the sheet (argument, config suite.path or SHEETRUN_SHEET), opens one
isolated browser page per case and prints one line per finished case
followed by a results table and a summary. Exits non-zero if any case
fails or errors.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSuite,
}

// newOpener starts the page source for a run. The returned func stops it.
var newOpener = func(ctx context.Context, out io.Writer, c browser.Config) (runner.PageOpener, func(), error) {
	sm := browser.NewSessionManager(c, logging.Get(logging.CategoryBrowser))

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Writer = out
	s.Suffix = " Starting browser..."
	s.Start()
	err := sm.Start(ctx)
	s.Stop()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return sm, func() {
		if err := sm.Shutdown(context.Background()); err != nil {
			logger.Warn("browser shutdown failed", zap.Error(err))
		}
	}, nil
}

func runSuite(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(true)
	defer cancel()

	if err := applyFlags(cmd, cfg, args); err != nil {
		return err
	}

	suite, err := loadSuite(cmd, cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(suite) == 0 {
		fmt.Fprintln(out, "No test cases found")
		return nil
	}

	opener, stop, err := newOpener(ctx, cmd.ErrOrStderr(), cfg.Browser)
	if err != nil {
		return err
	}
	defer stop()

	sum, err := executeSuite(ctx, out, cfg, suite, opener)
	if err != nil {
		return err
	}
	if !sum.OK() {
		return fmt.Errorf("%w: %d of %d", errCasesFailed, sum.Total-sum.Passed, sum.Total)
	}
	return nil
}

// commandContext is cancelled on SIGINT/SIGTERM and, when bounded, after --timeout.
func commandContext(bounded bool) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if !bounded || timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// executeSuite runs suite against opener, streaming one line per case to out,
// then renders the results and summary tables.
func executeSuite(ctx context.Context, out io.Writer, c *config.Config, suite []testcase.Descriptor, opener runner.PageOpener) (runner.Summary, error) {
	engine := runner.NewEngine(logging.Get(logging.CategoryRunner))
	engine.Locators = c.Locators
	engine.Settle = c.SettleOptions()

	p := report.New(out, isTerminal(out))
	r := &runner.Runner{
		Engine:      engine,
		Opener:      opener,
		Workers:     c.Execution.Workers,
		CaseTimeout: c.GetCaseTimeout(),
		Logger:      logging.Get(logging.CategoryRunner),
		OnResult: func(res runner.Result) {
			fmt.Fprintln(out, p.Line(res))
		},
	}

	results, sum, err := r.Run(ctx, suite)
	fmt.Fprintln(out)
	p.Results(results)
	p.Summary(sum)
	p.Timings(results)
	if err != nil {
		return sum, fmt.Errorf("run interrupted: %w", err)
	}
	return sum, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
