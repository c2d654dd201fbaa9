package testcase

import (
	"fmt"
	"strings"
)

// Category classifies a test case. Positive and Negative are exclusive primary
// kinds; UI is an orthogonal flag that can be combined with either. The zero
// value is the default kind.
type Category uint8

const (
	Positive Category = 1 << iota
	Negative
	UI
)

// Default is the category of a case with no recognized markers.
const Default Category = 0

const (
	positivePrefix = "pos_fun"
	negativePrefix = "neg_fun"
	uiMarker       = "ui"
)

// Categorize derives the category from a resolved id and name.
func Categorize(id, name string) Category {
	lid := strings.ToLower(id)
	lname := strings.ToLower(name)

	var c Category
	switch {
	case strings.HasPrefix(lid, positivePrefix):
		c |= Positive
	case strings.HasPrefix(lid, negativePrefix):
		c |= Negative
	}
	if strings.Contains(lid, uiMarker) || strings.Contains(lname, uiMarker) {
		c |= UI
	}
	return c
}

// Has reports whether every flag of f is set.
func (c Category) Has(f Category) bool {
	return f != 0 && c&f == f
}

// Primary returns Positive, Negative or Default, dropping the UI flag.
func (c Category) Primary() Category {
	switch {
	case c.Has(Positive):
		return Positive
	case c.Has(Negative):
		return Negative
	default:
		return Default
	}
}

func (c Category) String() string {
	var parts []string
	switch c.Primary() {
	case Positive:
		parts = append(parts, "positive")
	case Negative:
		parts = append(parts, "negative")
	default:
		parts = append(parts, "default")
	}
	if c.Has(UI) {
		parts = append(parts, "ui")
	}
	return strings.Join(parts, "+")
}

// ParseCategory parses one of "positive", "negative", "ui" or "default".
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive", "pos":
		return Positive, nil
	case "negative", "neg":
		return Negative, nil
	case "ui":
		return UI, nil
	case "default":
		return Default, nil
	}
	return Default, fmt.Errorf("unknown category %q (valid: positive, negative, ui, default)", s)
}
