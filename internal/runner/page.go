package runner

import (
	"context"
	"fmt"
)

// Selector addresses elements by CSS or, when set, XPath.
type Selector struct {
	CSS   string `yaml:"css,omitempty"`
	XPath string `yaml:"xpath,omitempty"`
}

func (s Selector) String() string {
	if s.XPath != "" {
		return "xpath=" + s.XPath
	}
	return s.CSS
}

// IsZero reports whether the selector addresses nothing.
func (s Selector) IsZero() bool {
	return s.CSS == "" && s.XPath == ""
}

// Page is the page under test.
type Page interface {
	Navigate(ctx context.Context, url string) error
	// Locate returns the first element matching sel, waiting for it within
	// the driver's action timeout.
	Locate(ctx context.Context, sel Selector) (Element, error)
	// Count returns how many elements currently match sel.
	Count(ctx context.Context, sel Selector) (int, error)
}

// Element is a located control on the page.
type Element interface {
	// Fill replaces the element's value with text.
	Fill(ctx context.Context, text string) error
	Press(ctx context.Context, key string) error
	// DispatchInput fires a synthetic "input" event on the element.
	DispatchInput(ctx context.Context) error
	// Text returns the element's text, "" when it has none.
	Text(ctx context.Context) (string, error)
	Visible(ctx context.Context) (bool, error)
}

// PageOpener hands out an isolated page per case. The returned func releases it.
type PageOpener interface {
	OpenPage(ctx context.Context) (Page, func(), error)
}

// Stage names the step of a case that failed with a driver error.
type Stage string

const (
	StageOpen     Stage = "open"
	StageNavigate Stage = "navigate"
	StageLocate   Stage = "locate"
	StageFill     Stage = "fill"
	StageSettle   Stage = "settle"
	StageRead     Stage = "read"
	StageAssert   Stage = "assert"
)

// CaseError is a driver failure that ends a case without a verdict.
type CaseError struct {
	Stage Stage
	Err   error
}

func (e *CaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *CaseError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, format string, args ...any) error {
	return &CaseError{Stage: stage, Err: fmt.Errorf(format, args...)}
}
