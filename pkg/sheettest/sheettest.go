// Package sheettest registers sheet-driven cases as Go subtests.
//
// Each descriptor becomes one t.Run named by its title, so `go test -run`
// can select single rows:
//
//	func TestTranslator(t *testing.T) {
//		sm := browser.NewSessionManager(browser.DefaultConfig(), nil)
//		defer sm.Shutdown(context.Background())
//		sheettest.RunFile(t, "testData/testCases.xlsx", sm)
//	}
package sheettest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sheetrun/internal/runner"
	"sheetrun/internal/sheet"
	"sheetrun/internal/testcase"
)

type (
	Descriptor = testcase.Descriptor
	Result     = runner.Result
	Opener     = runner.PageOpener
	Engine     = runner.Engine
)

// Option configures Run.
type Option func(*options)

type options struct {
	engine   *runner.Engine
	parallel bool
	load     testcase.LoadOptions
	onResult func(Result)
}

// WithEngine replaces the default engine.
func WithEngine(e *Engine) Option {
	return func(o *options) { o.engine = e }
}

// WithParallel marks every case subtest parallel.
func WithParallel() Option {
	return func(o *options) { o.parallel = true }
}

// WithLoadOptions sets how RunFile reads the sheet.
func WithLoadOptions(lo testcase.LoadOptions) Option {
	return func(o *options) { o.load = lo }
}

// WithResultHook is called with each case result before it is checked.
func WithResultHook(fn func(Result)) Option {
	return func(o *options) { o.onResult = fn }
}

// Run registers one subtest per descriptor. Each subtest opens its own page
// from opener, executes the case and checks the result.
func Run(t *testing.T, suite []Descriptor, opener Opener, opts ...Option) {
	t.Helper()
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	engine := o.engine
	if engine == nil {
		engine = runner.NewEngine(zap.NewNop())
	}

	for _, d := range suite {
		t.Run(d.Title(), func(t *testing.T) {
			if o.parallel {
				t.Parallel()
			}
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			page, release, err := opener.OpenPage(ctx)
			require.NoError(t, err, "open page")
			defer release()

			res := engine.Execute(ctx, d, page)
			if o.onResult != nil {
				o.onResult(res)
			}
			Check(t, res)
		})
	}
}

// RunFile loads the sheet at path and runs it. A sheet without a header row
// fails the test.
func RunFile(t *testing.T, path string, opener Opener, opts ...Option) {
	t.Helper()
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	suite, err := testcase.LoadSuite(path, o.load)
	if errors.Is(err, sheet.ErrHeaderNotFound) {
		t.Fatalf("no header row found in %s", path)
	}
	require.NoError(t, err, "load %s", path)
	if len(suite) == 0 {
		t.Logf("%s: no test cases", path)
		return
	}
	Run(t, suite, opener, opts...)
}

// Check reports every failed check of res on t and returns whether it passed.
func Check(t assert.TestingT, res Result) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	if !assert.NoError(t, res.Err, "%s: driver error", res.Descriptor.Title()) {
		return false
	}
	ok := true
	if res.UI != nil {
		ok = assert.True(t, res.UI.Pass, "%s: %s", res.Descriptor.Title(), res.UI.Reason) && ok
	}
	ok = assert.True(t, res.Verdict.Pass, "%s: %s (actual %q)", res.Descriptor.Title(), res.Verdict.Reason, res.Actual) && ok
	return ok
}
