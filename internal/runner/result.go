package runner

import (
	"errors"
	"time"

	"sheetrun/internal/testcase"
	"sheetrun/internal/verdict"
)

// Status is the final state of a case.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusErrored Status = "errored"
	StatusSkipped Status = "skipped"
)

// errSkipped marks cases never started because the run was cancelled.
var errSkipped = errors.New("run cancelled before case started")

// Result is the outcome of one executed case.
type Result struct {
	Descriptor testcase.Descriptor
	// Actual is the trimmed output text observed on the page.
	Actual string
	// UI holds the presence checks; nil unless the case is flagged UI.
	UI *verdict.Verdict
	// Verdict is the primary output verdict; zero when Err is set.
	Verdict  verdict.Verdict
	Err      error
	Duration time.Duration
}

// Passed reports whether every check held.
func (r Result) Passed() bool {
	return r.Status() == StatusPassed
}

// Status classifies the result.
func (r Result) Status() Status {
	switch {
	case errors.Is(r.Err, errSkipped):
		return StatusSkipped
	case r.Err != nil:
		return StatusErrored
	case r.UI != nil && !r.UI.Pass:
		return StatusFailed
	case !r.Verdict.Pass:
		return StatusFailed
	}
	return StatusPassed
}

// Reason explains the status in one line.
func (r Result) Reason() string {
	switch {
	case r.Err != nil:
		return r.Err.Error()
	case r.UI != nil && !r.UI.Pass:
		if !r.Verdict.Pass {
			return r.UI.Reason + "; " + r.Verdict.Reason
		}
		return r.UI.Reason
	}
	return r.Verdict.Reason
}

// Summary counts results by status.
type Summary struct {
	RunID    string
	Total    int
	Passed   int
	Failed   int
	Errored  int
	Skipped  int
	Duration time.Duration
}

// OK reports whether every case passed.
func (s Summary) OK() bool {
	return s.Passed == s.Total
}

// Summarize counts results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status() {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		case StatusErrored:
			s.Errored++
		case StatusSkipped:
			s.Skipped++
		}
	}
	return s
}
