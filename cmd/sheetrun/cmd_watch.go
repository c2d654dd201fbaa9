package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [sheet]",
	Short: "Re-run the suite whenever the sheet file changes",
	Long: `Runs the suite once, then watches the sheet file and runs it again after
each change settles for --debounce. The browser stays up between runs.
Stops on Ctrl-C; --timeout does not apply.`,
	Args: cobra.MaximumNArgs(1),
	RunE: watchSuite,
}

func watchSuite(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(false)
	defer cancel()

	if err := applyFlags(cmd, cfg, args); err != nil {
		return err
	}

	opener, stop, err := newOpener(ctx, cmd.ErrOrStderr(), cfg.Browser)
	if err != nil {
		return err
	}
	defer stop()

	out := cmd.OutOrStdout()
	runOnce := func() {
		suite, err := loadSuite(cmd, cfg)
		if err != nil {
			fmt.Fprintf(out, "load failed: %v\n", err)
			return
		}
		if len(suite) == 0 {
			fmt.Fprintln(out, "No test cases found")
			return
		}
		if _, err := executeSuite(ctx, out, cfg, suite, opener); err != nil && ctx.Err() == nil {
			logger.Warn("run failed", zap.Error(err))
		}
	}

	return watchFile(ctx, cfg.Suite.Path, watchDebounce, runOnce)
}

// watchFile calls run once, then again each time path is written or replaced
// and no further change arrives within debounce. It returns when ctx is done.
func watchFile(ctx context.Context, path string, debounce time.Duration, run func()) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	// Editors save by writing a temp file and renaming it over the target,
	// so watch the directory rather than the file.
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	run()

	// nil until a change arrives; each change restarts the quiet period
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			logger.Debug("sheet changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			fire = time.After(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))

		case <-fire:
			fire = nil
			run()
		}
	}
}
