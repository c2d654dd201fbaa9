package runner

import (
	"context"
	"errors"
	"sync"
)

var errNotFound = errors.New("element not found")

var errDetached = errors.New("node is detached from document")

// fakePage is an in-memory translator page. The output element shows
// translate(input) once the input has been filled and delay reads have passed.
type fakePage struct {
	mu sync.Mutex

	translate func(string) string
	// delay is how many output reads return the placeholder after filling.
	delay int
	// placeholder is what the output shows before the translation arrives.
	placeholder string
	// lateOutput keeps the output region off the page until input is filled.
	lateOutput bool
	// rerender replaces the output node on fill; older handles go stale.
	rerender bool

	navErr      error
	missing     map[Selector]bool
	buttons     int
	countErr    error
	pressErr    error
	dispatchErr error
	hiddenInput bool
	hiddenOut   bool

	navigated []string
	value     string
	filled    bool
	reads     int
	pressed   []string
	gen       int
}

func newFakePage(translations map[string]string) *fakePage {
	return &fakePage{
		translate: func(s string) string { return translations[s] },
		buttons:   2,
	}
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navigated = append(p.navigated, url)
	return p.navErr
}

func (p *fakePage) Locate(ctx context.Context, sel Selector) (Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.present(sel) {
		return nil, errNotFound
	}
	if sel == DefaultLocators().Input {
		return &fakeInput{p: p}, nil
	}
	return &fakeOutput{p: p, gen: p.gen}, nil
}

func (p *fakePage) Count(ctx context.Context, sel Selector) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if sel == DefaultLocators().Buttons {
		return p.buttons, p.countErr
	}
	if !p.present(sel) {
		return 0, nil
	}
	return 1, nil
}

func (p *fakePage) present(sel Selector) bool {
	if p.missing[sel] {
		return false
	}
	return sel != DefaultLocators().Output || !p.lateOutput || p.filled
}

type fakeInput struct{ p *fakePage }

func (e *fakeInput) Fill(ctx context.Context, text string) error {
	e.p.mu.Lock()
	defer e.p.mu.Unlock()
	e.p.value = text
	e.p.filled = true
	e.p.reads = 0
	if e.p.rerender {
		e.p.gen++
	}
	return nil
}

func (e *fakeInput) Press(ctx context.Context, key string) error {
	e.p.mu.Lock()
	defer e.p.mu.Unlock()
	e.p.pressed = append(e.p.pressed, key)
	return e.p.pressErr
}

func (e *fakeInput) DispatchInput(ctx context.Context) error { return e.p.dispatchErr }

func (e *fakeInput) Text(ctx context.Context) (string, error) {
	e.p.mu.Lock()
	defer e.p.mu.Unlock()
	return e.p.value, nil
}

func (e *fakeInput) Visible(ctx context.Context) (bool, error) { return !e.p.hiddenInput, nil }

type fakeOutput struct {
	p   *fakePage
	gen int
}

func (e *fakeOutput) Fill(ctx context.Context, text string) error { return errors.New("read-only") }
func (e *fakeOutput) Press(ctx context.Context, key string) error { return nil }
func (e *fakeOutput) DispatchInput(ctx context.Context) error { return nil }
func (e *fakeOutput) Visible(ctx context.Context) (bool, error) { return !e.p.hiddenOut, nil }

func (e *fakeOutput) Text(ctx context.Context) (string, error) {
	e.p.mu.Lock()
	defer e.p.mu.Unlock()
	if e.gen != e.p.gen {
		return "", errDetached
	}
	if !e.p.filled {
		return e.p.placeholder, nil
	}
	e.p.reads++
	if e.p.reads <= e.p.delay {
		return e.p.placeholder, nil
	}
	// Pad to check that the engine trims.
	if out := e.p.translate(e.p.value); out != "" {
		return "  " + out + "\n", nil
	}
	return "", nil
}

// fakeOpener hands out a fresh fakePage per case.
type fakeOpener struct {
	mu       sync.Mutex
	newPage  func() *fakePage
	openErr  error
	opened   int
	released int
}

func (o *fakeOpener) OpenPage(ctx context.Context) (Page, func(), error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.openErr != nil {
		return nil, nil, o.openErr
	}
	o.opened++
	return o.newPage(), func() {
		o.mu.Lock()
		o.released++
		o.mu.Unlock()
	}, nil
}
