package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
)

// Element adapts a rod element to runner.Element.
type Element struct {
	el      *rod.Element
	timeout time.Duration
}

func (e *Element) with(ctx context.Context) *rod.Element {
	return e.el.Context(ctx).Timeout(e.timeout)
}

// Fill clears the element and types text into it.
func (e *Element) Fill(ctx context.Context, text string) error {
	el := e.with(ctx)
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("select text: %w", err)
	}
	return el.Input(text)
}

// Press sends a named key ("Tab", "Enter", ...) to the element.
func (e *Element) Press(ctx context.Context, key string) error {
	k, ok := keys[key]
	if !ok {
		return fmt.Errorf("unsupported key %q", key)
	}
	return e.with(ctx).Type(k)
}

// DispatchInput fires a bubbling "input" event on the element.
func (e *Element) DispatchInput(ctx context.Context) error {
	_, err := e.with(ctx).Eval(`() => this.dispatchEvent(new Event('input', { bubbles: true }))`)
	return err
}

// Text returns the element's text content.
func (e *Element) Text(ctx context.Context) (string, error) {
	res, err := e.with(ctx).Eval(`() => this.textContent || ''`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

// Visible reports whether the element is rendered and visible.
func (e *Element) Visible(ctx context.Context) (bool, error) {
	return e.with(ctx).Visible()
}
