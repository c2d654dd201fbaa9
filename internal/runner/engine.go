// Package runner drives the page under test for each case and computes its verdict.
package runner

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"sheetrun/internal/testcase"
	"sheetrun/internal/verdict"
)

// Locators address the controls every case touches.
type Locators struct {
	Input   Selector `yaml:"input"`
	Output  Selector `yaml:"output"`
	Buttons Selector `yaml:"buttons"`
}

// DefaultLocators targets the Singlish input box and the region that follows
// the "Sinhala" label. The label match ignores case and only looks at rendered
// body content, so the document title and inline scripts never anchor it.
func DefaultLocators() Locators {
	return Locators{
		Input:   Selector{CSS: `textarea[placeholder="Input Your Singlish Text Here."]`},
		Output:  Selector{XPath: outputXPath},
		Buttons: Selector{CSS: "button"},
	}
}

const outputXPath = `(//body//*[not(self::script or self::style)]` +
	`[text()[contains(translate(., 'SINHALA', 'sinhala'), 'sinhala')]]` +
	`/following-sibling::*)[1]`

// SettleMode selects how the engine waits for the output to update.
type SettleMode string

const (
	// SettleFixed sleeps for SettleOptions.Delay.
	SettleFixed SettleMode = "fixed"
	// SettlePoll polls the output until it is non-empty, differs from what the
	// region showed before the input was entered and holds for two reads,
	// bounded by SettleOptions.Timeout.
	SettlePoll SettleMode = "poll"
)

// SettleOptions configures the wait between entering input and reading output.
type SettleOptions struct {
	Mode        SettleMode
	Delay       time.Duration
	Timeout     time.Duration
	Interval    time.Duration
	MaxInterval time.Duration
}

// DefaultSettleOptions polls for up to two seconds, the same upper bound as the
// fixed delay.
func DefaultSettleOptions() SettleOptions {
	return SettleOptions{
		Mode:        SettlePoll,
		Delay:       2 * time.Second,
		Timeout:     2 * time.Second,
		Interval:    100 * time.Millisecond,
		MaxInterval: 500 * time.Millisecond,
	}
}

// commitKey is pressed after filling so pages that translate on blur update.
const commitKey = "Tab"

// Engine executes single cases.
type Engine struct {
	Locators Locators
	Settle   SettleOptions
	Logger   *zap.Logger
}

// NewEngine returns an engine with default locators and settle options.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		Locators: DefaultLocators(),
		Settle:   DefaultSettleOptions(),
		Logger:   logger,
	}
}

// Execute runs one case against p: navigate, enter input, let the page settle,
// read the output, run UI checks when flagged and decide the verdict.
// Driver failures end the case with Result.Err set.
func (e *Engine) Execute(ctx context.Context, d testcase.Descriptor, p Page) (res Result) {
	start := time.Now()
	res = Result{Descriptor: d}
	defer func() { res.Duration = time.Since(start) }()

	log := e.logger().With(zap.String("id", d.ID), zap.Int("row", d.Row))

	if err := p.Navigate(ctx, d.URL); err != nil {
		res.Err = stageErr(StageNavigate, "navigate to %s: %w", d.URL, err)
		e.logResult(log, res)
		return res
	}

	input, err := p.Locate(ctx, e.Locators.Input)
	if err != nil {
		res.Err = stageErr(StageLocate, "input %s: %w", e.Locators.Input, err)
		e.logResult(log, res)
		return res
	}

	// The output region may be a placeholder, absent or re-rendered until the
	// page reacts, so it is resolved afresh on every read.
	var baseline string
	if e.Settle.Mode != SettleFixed {
		if baseline, err = e.peekOutput(ctx, p); err != nil {
			log.Debug("baseline output read failed", zap.Error(err))
			baseline = ""
		}
	}

	if err := input.Fill(ctx, d.Input); err != nil {
		res.Err = stageErr(StageFill, "fill input: %w", err)
		e.logResult(log, res)
		return res
	}
	// Some pages only react to one of these; both are optional.
	if err := input.Press(ctx, commitKey); err != nil {
		log.Debug("commit key press ignored", zap.Error(err))
	}
	if err := input.DispatchInput(ctx); err != nil {
		log.Debug("input event dispatch ignored", zap.Error(err))
	}

	if err := e.settle(ctx, p, baseline, log); err != nil {
		res.Err = stageErr(StageSettle, "wait for output: %w", err)
		e.logResult(log, res)
		return res
	}

	output, err := p.Locate(ctx, e.Locators.Output)
	if err != nil {
		res.Err = stageErr(StageLocate, "output %s: %w", e.Locators.Output, err)
		e.logResult(log, res)
		return res
	}
	actual, err := output.Text(ctx)
	if err != nil {
		res.Err = stageErr(StageRead, "read output: %w", err)
		e.logResult(log, res)
		return res
	}
	res.Actual = strings.TrimSpace(actual)

	if d.Category.Has(testcase.UI) {
		checks, err := e.observeUI(ctx, p)
		if err != nil {
			res.Err = err
			e.logResult(log, res)
			return res
		}
		v := verdict.CheckUI(checks)
		res.UI = &v
	}

	res.Verdict = verdict.Decide(d.Category, d.ExpectedOutput, res.Actual)
	e.logResult(log, res)
	return res
}

func (e *Engine) observeUI(ctx context.Context, p Page) (verdict.UIChecks, error) {
	var c verdict.UIChecks
	var err error

	if c.InputVisible, err = e.visible(ctx, p, e.Locators.Input); err != nil {
		return c, stageErr(StageAssert, "input visibility: %w", err)
	}
	if c.ButtonCount, err = p.Count(ctx, e.Locators.Buttons); err != nil {
		return c, stageErr(StageAssert, "count %s: %w", e.Locators.Buttons, err)
	}
	if c.OutputVisible, err = e.visible(ctx, p, e.Locators.Output); err != nil {
		return c, stageErr(StageAssert, "output visibility: %w", err)
	}
	return c, nil
}

// visible reports whether sel is rendered and visible now. An element that is
// not on the page is not visible.
func (e *Engine) visible(ctx context.Context, p Page, sel Selector) (bool, error) {
	n, err := p.Count(ctx, sel)
	if err != nil || n == 0 {
		return false, err
	}
	el, err := p.Locate(ctx, sel)
	if err != nil {
		return false, err
	}
	return el.Visible(ctx)
}

// peekOutput reads the output region without waiting for it to appear. A
// region that is not rendered reads as "".
func (e *Engine) peekOutput(ctx context.Context, p Page) (string, error) {
	n, err := p.Count(ctx, e.Locators.Output)
	if err != nil || n == 0 {
		return "", err
	}
	el, err := p.Locate(ctx, e.Locators.Output)
	if err != nil {
		return "", err
	}
	text, err := el.Text(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (e *Engine) settle(ctx context.Context, p Page, baseline string, log *zap.Logger) error {
	s := e.Settle
	switch s.Mode {
	case SettleFixed:
		return sleepCtx(ctx, s.Delay)
	default:
		var last string
		seen := false
		_, err := WaitUntil(ctx, s.Timeout, s.Interval, s.MaxInterval, func(ctx context.Context) (bool, error) {
			text, err := e.peekOutput(ctx, p)
			if err != nil {
				// The node may be mid re-render; the final read reports
				// anything persistent.
				log.Debug("output poll read failed", zap.Error(err))
				seen = false
				return false, nil
			}
			stable := seen && text != "" && text != baseline && text == last
			last, seen = text, true
			return stable, nil
		})
		return err
	}
}

func (e *Engine) logResult(log *zap.Logger, r Result) {
	fields := []zap.Field{
		zap.String("title", r.Descriptor.Title()),
		zap.String("category", r.Descriptor.Category.String()),
		zap.String("input", r.Descriptor.Input),
		zap.String("expected", r.Descriptor.ExpectedOutput),
		zap.String("actual", r.Actual),
		zap.String("status", string(r.Status())),
		zap.String("reason", r.Reason()),
	}
	if r.Err != nil {
		log.Warn("case errored", append(fields, zap.Error(r.Err))...)
		return
	}
	log.Info("case finished", fields...)
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}
