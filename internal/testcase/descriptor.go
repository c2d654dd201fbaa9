// Package testcase derives runnable test descriptors from sheet records.
package testcase

import (
	"fmt"
	"regexp"
	"strings"

	"sheetrun/internal/sheet"
)

// Fallback values for fields a record leaves empty.
const (
	UnknownID   = "Unknown ID"
	UnnamedCase = "Unnamed Test"
	DefaultURL  = "https://www.swifttranslator.com/"
)

// Column fallback chains, evaluated left to right.
var (
	idColumns       = []string{sheet.ColTCID, sheet.ColTestCaseID}
	nameColumns     = []string{"Test case name", "Test Name"}
	urlColumns      = []string{"URL", "Url", "Website"}
	inputColumns    = []string{"Input"}
	expectedColumns = []string{"Expected output"}
)

// Descriptor is one runnable case.
type Descriptor struct {
	ID             string
	Name           string
	URL            string
	Input          string
	ExpectedOutput string
	Category       Category
	// Row is the source sheet row, 0 when unknown.
	Row int
}

// Title is the name the case is registered and reported under.
func (d Descriptor) Title() string {
	return d.ID + " - " + d.Name
}

// HasExpected reports whether the case declares an expected output.
func (d Descriptor) HasExpected() bool {
	return d.ExpectedOutput != ""
}

// Classifier resolves records into descriptors.
type Classifier struct {
	// DefaultURL is used when a record names no URL. Empty means DefaultURL.
	DefaultURL string
}

// Classify resolves a record with the package default URL.
func Classify(rec sheet.Record) Descriptor {
	return Classifier{}.Classify(rec)
}

// Classify resolves each field through its fallback chain and derives the category.
func (c Classifier) Classify(rec sheet.Record) Descriptor {
	defaultURL := c.DefaultURL
	if defaultURL == "" {
		defaultURL = DefaultURL
	}

	d := Descriptor{
		ID:             orDefault(rec.First(idColumns...), UnknownID),
		Name:           orDefault(rec.First(nameColumns...), UnnamedCase),
		URL:            orDefault(rec.First(urlColumns...), defaultURL),
		Input:          rec.First(inputColumns...),
		ExpectedOutput: strings.TrimSpace(rec.First(expectedColumns...)),
		Row:            rec.Row,
	}
	d.Category = Categorize(d.ID, d.Name)
	return d
}

// FromRecords classifies records, keeping their order.
func (c Classifier) FromRecords(recs []sheet.Record) []Descriptor {
	out := make([]Descriptor, 0, len(recs))
	for _, r := range recs {
		out = append(out, c.Classify(r))
	}
	return out
}

// LoadOptions configures LoadSuite.
type LoadOptions struct {
	Sheet      sheet.LoadOptions
	DefaultURL string
}

// LoadSuite reads a sheet file and returns its descriptors in sheet order.
// A missing header row is returned as sheet.ErrHeaderNotFound.
func LoadSuite(path string, opts LoadOptions) ([]Descriptor, error) {
	grid, err := sheet.Load(path, opts.Sheet)
	if err != nil {
		return nil, err
	}
	recs, err := sheet.Extract(grid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Classifier{DefaultURL: opts.DefaultURL}.FromRecords(recs), nil
}

// Filter narrows a suite. Zero-valued fields match everything.
type Filter struct {
	// Only keeps cases of the given kinds. UI matches the UI flag; Positive,
	// Negative and Default match the primary kind.
	Only []Category
	// Match keeps cases whose title matches.
	Match *regexp.Regexp
}

// Apply returns the matching descriptors in their original order.
func (f Filter) Apply(suite []Descriptor) []Descriptor {
	if len(f.Only) == 0 && f.Match == nil {
		return suite
	}
	out := make([]Descriptor, 0, len(suite))
	for _, d := range suite {
		if f.matches(d) {
			out = append(out, d)
		}
	}
	return out
}

func (f Filter) matches(d Descriptor) bool {
	if f.Match != nil && !f.Match.MatchString(d.Title()) {
		return false
	}
	if len(f.Only) == 0 {
		return true
	}
	for _, want := range f.Only {
		if want == UI {
			if d.Category.Has(UI) {
				return true
			}
			continue
		}
		if d.Category.Primary() == want {
			return true
		}
	}
	return false
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
