// Package verdict holds the pass/fail rules applied to an observed output.
package verdict

import (
	"fmt"

	"sheetrun/internal/testcase"
)

// Verdict is the outcome of one check.
type Verdict struct {
	Pass   bool
	Reason string
}

// Pass returns a passing verdict.
func Pass(reason string) Verdict {
	return Verdict{Pass: true, Reason: reason}
}

// Fail returns a failing verdict.
func Fail(format string, args ...any) Verdict {
	return Verdict{Reason: fmt.Sprintf(format, args...)}
}

func (v Verdict) String() string {
	if v.Pass {
		return "PASS: " + v.Reason
	}
	return "FAIL: " + v.Reason
}

// Decide compares the observed output against the expectation of a case kind.
// Only the primary kind matters; the UI flag is checked separately. Equality is
// exact: callers trim both sides, nothing else is normalized.
func Decide(kind testcase.Category, expected, actual string) Verdict {
	switch kind.Primary() {
	case testcase.Negative:
		if expected != "" {
			if actual != expected {
				return Pass("output differs from expected")
			}
			return Fail("negative case produced the expected output %q", expected)
		}
		if actual == "" {
			return Pass("output is empty")
		}
		return Fail("expected empty output, got %q", actual)

	default:
		// Positive and default cases share the same rule.
		if expected != "" {
			if actual == expected {
				return Pass("output matches expected")
			}
			return Fail("expected %q, got %q", expected, actual)
		}
		if actual != "" {
			return Pass("output generated")
		}
		return Fail("expected non-empty output, got empty")
	}
}

// UIChecks are the page-presence observations made for UI cases.
type UIChecks struct {
	InputVisible  bool
	ButtonCount   int
	OutputVisible bool
}

// CheckUI fails on the first unmet presence condition.
func CheckUI(c UIChecks) Verdict {
	switch {
	case !c.InputVisible:
		return Fail("input control is not visible")
	case c.ButtonCount <= 0:
		return Fail("no buttons found on page")
	case !c.OutputVisible:
		return Fail("output region is not visible")
	}
	return Pass("input, buttons and output present")
}
