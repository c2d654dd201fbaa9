// Package logging provides config-driven categorized zap loggers for sheetrun.
// Each subsystem asks for its category logger; disabled categories get a no-op.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sheetrun/internal/config"
)

// Category represents a log category/system
type Category string

const (
	CategorySheet   Category = "sheet"   // Workbook loading, header detection
	CategoryRunner  Category = "runner"  // Case execution and verdicts
	CategoryBrowser Category = "browser" // Chrome lifecycle, pages
	CategoryCLI     Category = "cli"     // Command wiring, watch loop
)

var (
	mu   sync.RWMutex
	base = zap.NewNop()
	cfg  config.LoggingConfig
)

// Build constructs a logger from lc. verbose forces debug level.
func Build(lc config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if lc.Level != "" {
		l, err := zapcore.ParseLevel(lc.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", lc.Level, err)
		}
		level = l
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	zc := zap.NewProductionConfig()
	zc.Sampling = nil
	zc.Level = zap.NewAtomicLevelAt(level)
	switch lc.Format {
	case "", "console":
		zc.Encoding = "console"
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	case "json":
		zc.Encoding = "json"
	default:
		return nil, fmt.Errorf("invalid log format %q (valid: console, json)", lc.Format)
	}

	zc.OutputPaths = []string{"stderr"}
	if lc.File != "" {
		if err := os.MkdirAll(filepath.Dir(lc.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		zc.OutputPaths = append(zc.OutputPaths, lc.File)
	}

	return zc.Build()
}

// Initialize builds the base logger from lc and installs it.
func Initialize(lc config.LoggingConfig, verbose bool) error {
	l, err := Build(lc, verbose)
	if err != nil {
		return err
	}
	Use(l, lc)
	return nil
}

// Use installs l as the base logger with lc's category toggles.
func Use(l *zap.Logger, lc config.LoggingConfig) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	defer mu.Unlock()
	base = l
	cfg = lc
}

// Base returns the installed logger without a category name.
func Base() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return cfg.IsCategoryEnabled(string(category))
}

// Get returns the named logger for category.
// Returns a no-op logger if the category is disabled.
func Get(category Category) *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if !cfg.IsCategoryEnabled(string(category)) {
		return zap.NewNop()
	}
	return base.Named(string(category))
}

// Sync flushes the base logger.
func Sync() {
	// stderr returns EINVAL/ENOTTY on sync for terminals
	_ = Base().Sync()
}

// =============================================================================
// TIMING HELPERS - For performance logging
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("operation completed", zap.String("op", t.op), zap.Duration("elapsed", elapsed))
	return elapsed
}

// StopWithThreshold logs warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	log := Get(t.category)
	if elapsed > threshold {
		log.Warn("operation slow", zap.String("op", t.op), zap.Duration("elapsed", elapsed), zap.Duration("threshold", threshold))
	} else {
		log.Debug("operation completed", zap.String("op", t.op), zap.Duration("elapsed", elapsed))
	}
	return elapsed
}
