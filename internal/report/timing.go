package report

import (
	"fmt"
	"time"

	"github.com/montanaflynn/stats"

	"sheetrun/internal/runner"
)

// Timing describes how long executed cases took.
type Timing struct {
	Cases  int
	Median time.Duration
	P95    time.Duration
	Max    time.Duration
}

// CaseTimings computes duration statistics over the cases that ran.
// Skipped cases are excluded. ok is false when nothing ran.
func CaseTimings(results []runner.Result) (t Timing, ok bool) {
	data := make(stats.Float64Data, 0, len(results))
	for _, r := range results {
		if r.Status() == runner.StatusSkipped {
			continue
		}
		data = append(data, float64(r.Duration))
	}
	if len(data) == 0 {
		return t, false
	}

	t.Cases = len(data)
	median, _ := stats.Median(data)
	highest, _ := stats.Max(data)
	// Percentile rejects samples too small to rank; the maximum stands in.
	p95, err := stats.Percentile(data, 95)
	if err != nil {
		p95 = highest
	}

	t.Median = time.Duration(median)
	t.P95 = time.Duration(p95)
	t.Max = time.Duration(highest)
	return t, true
}

// Timings prints one line of case duration statistics.
func (p *Printer) Timings(results []runner.Result) {
	t, ok := CaseTimings(results)
	if !ok {
		return
	}
	fmt.Fprintf(p.Out, "Case time: median %s, p95 %s, max %s\n",
		t.Median.Round(time.Millisecond), t.P95.Round(time.Millisecond), t.Max.Round(time.Millisecond))
}
