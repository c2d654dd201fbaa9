package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"sheetrun/internal/browser"
	"sheetrun/internal/runner"
	"sheetrun/internal/testcase"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "sheetrun.yaml"

// Config holds all sheetrun configuration.
type Config struct {
	// Suite source
	Suite SuiteConfig `yaml:"suite"`

	// Page interaction
	Locators runner.Locators `yaml:"locators"`
	Settle   SettleConfig    `yaml:"settle"`

	// Execution
	Execution ExecutionConfig `yaml:"execution"`

	// Chrome
	Browser browser.Config `yaml:"browser"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// SuiteConfig locates the test sheet.
type SuiteConfig struct {
	Path       string `yaml:"path"`
	Sheet      string `yaml:"sheet"` // worksheet name, empty = first
	DefaultURL string `yaml:"default_url"`
}

// SettleConfig configures the wait between input and output read.
type SettleConfig struct {
	Mode        string `yaml:"mode"` // poll, fixed
	Delay       string `yaml:"delay"`
	Timeout     string `yaml:"timeout"`
	Interval    string `yaml:"interval"`
	MaxInterval string `yaml:"max_interval"`
}

// ExecutionConfig configures the suite runner.
type ExecutionConfig struct {
	Workers     int    `yaml:"workers"`
	CaseTimeout string `yaml:"case_timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Suite: SuiteConfig{
			Path:       filepath.Join("testData", "testCases.xlsx"),
			DefaultURL: testcase.DefaultURL,
		},

		Locators: runner.DefaultLocators(),

		Settle: SettleConfig{
			Mode:        string(runner.SettlePoll),
			Delay:       "2s",
			Timeout:     "2s",
			Interval:    "100ms",
			MaxInterval: "500ms",
		},

		Execution: ExecutionConfig{
			Workers:     1,
			CaseTimeout: "60s",
		},

		Browser: browser.DefaultConfig(),

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("SHEETRUN_SHEET"); path != "" {
		c.Suite.Path = path
	}
	if url := os.Getenv("SHEETRUN_DEFAULT_URL"); url != "" {
		c.Suite.DefaultURL = url
	}
	if v := os.Getenv("SHEETRUN_HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Browser.Headless = b
		}
	}
	if v := os.Getenv("SHEETRUN_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Execution.Workers = n
		}
	}
	if bin := os.Getenv("SHEETRUN_CHROME_BIN"); bin != "" {
		if len(c.Browser.Launch) == 0 {
			c.Browser.Launch = []string{bin}
		} else {
			c.Browser.Launch[0] = bin
		}
	}
	if url := os.Getenv("SHEETRUN_DEBUGGER_URL"); url != "" {
		c.Browser.DebuggerURL = url
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Suite.Path == "" {
		return fmt.Errorf("suite path not configured (set suite.path or SHEETRUN_SHEET)")
	}
	if c.Execution.Workers < 1 {
		return fmt.Errorf("execution.workers must be at least 1, got %d", c.Execution.Workers)
	}
	switch runner.SettleMode(c.Settle.Mode) {
	case runner.SettlePoll, runner.SettleFixed:
	default:
		return fmt.Errorf("invalid settle mode: %q (valid: poll, fixed)", c.Settle.Mode)
	}
	if c.Locators.Input.IsZero() || c.Locators.Output.IsZero() || c.Locators.Buttons.IsZero() {
		return fmt.Errorf("locators.input, locators.output and locators.buttons must all be set")
	}
	for name, v := range map[string]string{
		"settle.delay":           c.Settle.Delay,
		"settle.timeout":         c.Settle.Timeout,
		"settle.interval":        c.Settle.Interval,
		"settle.max_interval":    c.Settle.MaxInterval,
		"execution.case_timeout": c.Execution.CaseTimeout,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}

// SettleOptions converts the settle section for the engine.
func (c *Config) SettleOptions() runner.SettleOptions {
	def := runner.DefaultSettleOptions()
	mode := runner.SettleMode(c.Settle.Mode)
	if mode == "" {
		mode = def.Mode
	}
	return runner.SettleOptions{
		Mode:        mode,
		Delay:       parseDuration(c.Settle.Delay, def.Delay),
		Timeout:     parseDuration(c.Settle.Timeout, def.Timeout),
		Interval:    parseDuration(c.Settle.Interval, def.Interval),
		MaxInterval: parseDuration(c.Settle.MaxInterval, def.MaxInterval),
	}
}

// GetCaseTimeout returns the per-case timeout; zero disables it.
func (c *Config) GetCaseTimeout() time.Duration {
	return parseDuration(c.Execution.CaseTimeout, 0)
}

// LoadOptions returns the suite loading options.
func (c *Config) LoadOptions() testcase.LoadOptions {
	opts := testcase.LoadOptions{DefaultURL: c.Suite.DefaultURL}
	opts.Sheet.Sheet = c.Suite.Sheet
	return opts
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
