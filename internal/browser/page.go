package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"

	"sheetrun/internal/runner"
)

// keys maps the key names the runner uses to rod keys.
var keys = map[string]input.Key{
	"Tab":       input.Tab,
	"Enter":     input.Enter,
	"Escape":    input.Escape,
	"Backspace": input.Backspace,
}

var (
	_ runner.Page       = (*Page)(nil)
	_ runner.Element    = (*Element)(nil)
	_ runner.PageOpener = (*SessionManager)(nil)
)

// Page adapts a rod page to runner.Page.
type Page struct {
	page *rod.Page
	cfg  Config
}

// NewPage wraps p. Navigation and element lookups use cfg's timeouts.
func NewPage(p *rod.Page, cfg Config) *Page {
	return &Page{page: p, cfg: cfg}
}

// Rod returns the underlying rod page.
func (p *Page) Rod() *rod.Page {
	return p.page
}

// Navigate loads url and waits for the load event.
func (p *Page) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx).Timeout(p.cfg.NavigationTimeout())
	if err := page.Navigate(url); err != nil {
		return err
	}
	return page.WaitLoad()
}

// Locate waits up to the action timeout for the first match of sel.
func (p *Page) Locate(ctx context.Context, sel runner.Selector) (runner.Element, error) {
	page := p.page.Context(ctx).Timeout(p.cfg.ActionTimeout())

	var (
		el  *rod.Element
		err error
	)
	switch {
	case sel.XPath != "":
		el, err = page.ElementX(sel.XPath)
	case sel.CSS != "":
		el, err = page.Element(sel.CSS)
	default:
		return nil, fmt.Errorf("empty selector")
	}
	if err != nil {
		return nil, err
	}
	return &Element{el: el, timeout: p.cfg.ActionTimeout()}, nil
}

// Count returns the number of current matches of sel without waiting.
func (p *Page) Count(ctx context.Context, sel runner.Selector) (int, error) {
	page := p.page.Context(ctx)

	var (
		els rod.Elements
		err error
	)
	switch {
	case sel.XPath != "":
		els, err = page.ElementsX(sel.XPath)
	case sel.CSS != "":
		els, err = page.Elements(sel.CSS)
	default:
		return 0, fmt.Errorf("empty selector")
	}
	if err != nil {
		return 0, err
	}
	return len(els), nil
}
