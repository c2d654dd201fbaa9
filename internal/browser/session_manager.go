// Package browser drives Chrome through go-rod and exposes pages to the runner.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sheetrun/internal/runner"
)

// Config holds browser configuration.
type Config struct {
	// DebuggerURL attaches to an already running Chrome instead of launching one.
	DebuggerURL string `yaml:"debugger_url"`
	// Launch is the Chrome binary followed by extra command line flags.
	Launch              []string `yaml:"launch"`
	Headless            bool     `yaml:"headless"`
	ViewportWidth       int      `yaml:"viewport_width"`
	ViewportHeight      int      `yaml:"viewport_height"`
	NavigationTimeoutMs int      `yaml:"navigation_timeout_ms"`
	ActionTimeoutMs     int      `yaml:"action_timeout_ms"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Headless:            true,
		ViewportWidth:       1280,
		ViewportHeight:      720,
		NavigationTimeoutMs: 30000,
		ActionTimeoutMs:     30000,
	}
}

// GetViewportWidth returns viewport width.
func (c Config) GetViewportWidth() int {
	if c.ViewportWidth == 0 {
		return 1280
	}
	return c.ViewportWidth
}

// GetViewportHeight returns viewport height.
func (c Config) GetViewportHeight() int {
	if c.ViewportHeight == 0 {
		return 720
	}
	return c.ViewportHeight
}

// NavigationTimeout returns the navigation timeout.
func (c Config) NavigationTimeout() time.Duration {
	if c.NavigationTimeoutMs == 0 {
		return 30 * time.Second
	}
	return time.Duration(c.NavigationTimeoutMs) * time.Millisecond
}

// ActionTimeout bounds element lookups and interactions.
func (c Config) ActionTimeout() time.Duration {
	if c.ActionTimeoutMs == 0 {
		return 30 * time.Second
	}
	return time.Duration(c.ActionTimeoutMs) * time.Millisecond
}

// SessionManager owns the Chrome instance and the pages opened on it.
type SessionManager struct {
	cfg        Config
	log        *zap.Logger
	mu         sync.RWMutex
	browser    *rod.Browser
	launched   *launcher.Launcher
	pages      map[string]*rod.Page
	controlURL string // WebSocket URL for DevTools
}

// NewSessionManager creates a new session manager.
func NewSessionManager(cfg Config, log *zap.Logger) *SessionManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionManager{
		cfg:   cfg,
		log:   log,
		pages: make(map[string]*rod.Page),
	}
}

// Start connects to an existing Chrome or launches a new one.
func (m *SessionManager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// If we already have a browser, verify it's still alive
	if m.browser != nil {
		if _, err := m.browser.Version(); err == nil {
			return nil
		}
		m.log.Warn("stale browser connection detected, reconnecting")
		_ = m.browser.Close()
		m.browser = nil
		m.controlURL = ""
		m.pages = make(map[string]*rod.Page)
	}

	controlURL := m.cfg.DebuggerURL
	if controlURL == "" {
		l := launcher.New().Headless(m.cfg.Headless)
		if len(m.cfg.Launch) > 0 {
			if bin := m.cfg.Launch[0]; bin != "" {
				l = l.Bin(bin)
			}
			for _, rawFlag := range m.cfg.Launch[1:] {
				flagStr := strings.TrimLeft(rawFlag, "-")
				name, val, hasVal := strings.Cut(flagStr, "=")
				if hasVal {
					l = l.Set(flags.Flag(name), val)
				} else {
					l = l.Set(flags.Flag(name))
				}
			}
		}
		url, err := l.Launch()
		if err != nil {
			return fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = url
		m.launched = l
		m.log.Debug("chrome launched", zap.String("control_url", url))
	}

	if err := ctx.Err(); err != nil {
		m.killLaunchedLocked()
		return err
	}

	// Pages outlive the start context; each call scopes its own.
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		m.killLaunchedLocked()
		return fmt.Errorf("connect to chrome: %w", err)
	}
	m.browser = browser
	m.controlURL = controlURL
	m.log.Info("browser connected", zap.String("control_url", controlURL), zap.Bool("headless", m.cfg.Headless))
	return nil
}

func (m *SessionManager) ensureStarted(ctx context.Context) error {
	m.mu.RLock()
	if m.browser != nil {
		m.mu.RUnlock()
		return nil
	}
	m.mu.RUnlock()
	return m.Start(ctx)
}

// ControlURL returns the WebSocket debugger URL.
func (m *SessionManager) ControlURL() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.controlURL
}

// IsConnected returns whether the browser is connected.
func (m *SessionManager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.browser != nil
}

// OpenPages returns how many pages are currently open.
func (m *SessionManager) OpenPages() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pages)
}

// OpenPage opens a blank page in a fresh incognito context so cases share no
// cookies or storage. The returned func closes the page and its context.
func (m *SessionManager) OpenPage(ctx context.Context) (runner.Page, func(), error) {
	if err := m.ensureStarted(ctx); err != nil {
		return nil, nil, err
	}

	m.mu.RLock()
	b := m.browser
	m.mu.RUnlock()
	if b == nil {
		return nil, nil, errors.New("browser not connected")
	}

	incognito, err := b.Incognito()
	if err != nil {
		return nil, nil, fmt.Errorf("incognito context: %w", err)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = incognito.Close()
		return nil, nil, fmt.Errorf("create page: %w", err)
	}

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             m.cfg.GetViewportWidth(),
		Height:            m.cfg.GetViewportHeight(),
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		m.log.Warn("failed to set viewport", zap.Error(err))
	}

	id := uuid.NewString()
	m.mu.Lock()
	m.pages[id] = page
	m.mu.Unlock()

	release := func() {
		m.mu.Lock()
		delete(m.pages, id)
		m.mu.Unlock()
		if err := page.Close(); err != nil {
			m.log.Debug("page close failed", zap.Error(err))
		}
		if err := incognito.Close(); err != nil {
			m.log.Debug("incognito close failed", zap.Error(err))
		}
	}

	return NewPage(page, m.cfg), release, nil
}

// Shutdown closes tracked pages and the browser.
func (m *SessionManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, page := range m.pages {
		_ = page.Close()
		delete(m.pages, id)
	}

	var err error
	if m.browser != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	m.killLaunchedLocked()
	m.controlURL = ""
	return err
}

func (m *SessionManager) killLaunchedLocked() {
	if m.launched == nil {
		return
	}
	m.launched.Kill()
	m.launched.Cleanup()
	m.launched = nil
}
