// Package report renders suites and run results as terminal tables.
package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"sheetrun/internal/runner"
	"sheetrun/internal/testcase"
)

// maxTextWidth bounds the input, expected, actual and reason columns.
const maxTextWidth = 40

// Printer writes tables to Out.
type Printer struct {
	Out   io.Writer
	Color bool
}

// New returns a printer writing to w.
func New(w io.Writer, color bool) *Printer {
	return &Printer{Out: w, Color: color}
}

func (p *Printer) createTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.Out)
	t.SetStyle(table.StyleRounded)
	return t
}

func (p *Printer) paint(c text.Color, v any) string {
	if !p.Color {
		return fmt.Sprint(v)
	}
	return c.Sprint(v)
}

// Cases lists the descriptors of a suite.
func (p *Printer) Cases(suite []testcase.Descriptor) {
	if len(suite) == 0 {
		fmt.Fprintln(p.Out, "No test cases found")
		return
	}

	t := p.createTable()
	t.AppendHeader(table.Row{"ROW", "ID", "NAME", "CATEGORY", "INPUT", "EXPECTED", "URL"})
	t.SetColumnConfigs(textColumns("INPUT", "EXPECTED"))
	for _, d := range suite {
		t.AppendRow(table.Row{d.Row, d.ID, d.Name, d.Category.String(), d.Input, d.ExpectedOutput, d.URL})
	}
	t.Render()
	fmt.Fprintf(p.Out, "%s %d\n", p.paint(text.FgHiBlue, "Total:"), len(suite))
}

// Results renders one row per executed case.
func (p *Printer) Results(results []runner.Result) {
	if len(results) == 0 {
		fmt.Fprintln(p.Out, "No results")
		return
	}

	t := p.createTable()
	t.AppendHeader(table.Row{"ID", "NAME", "CATEGORY", "STATUS", "EXPECTED", "ACTUAL", "REASON", "TIME"})
	t.SetColumnConfigs(textColumns("EXPECTED", "ACTUAL", "REASON"))
	for _, r := range results {
		t.AppendRow(table.Row{
			r.Descriptor.ID,
			r.Descriptor.Name,
			r.Descriptor.Category.String(),
			p.status(r.Status()),
			r.Descriptor.ExpectedOutput,
			r.Actual,
			r.Reason(),
			r.Duration.Round(time.Millisecond).String(),
		})
	}
	t.Render()
}

// Summary renders the run totals.
func (p *Printer) Summary(s runner.Summary) {
	t := p.createTable()
	t.AppendHeader(table.Row{"RUN", "TOTAL", "PASSED", "FAILED", "ERRORED", "SKIPPED", "DURATION"})
	t.AppendRow(table.Row{
		s.RunID,
		s.Total,
		p.paint(text.FgGreen, s.Passed),
		p.count(text.FgRed, s.Failed),
		p.count(text.FgRed, s.Errored),
		p.count(text.FgYellow, s.Skipped),
		s.Duration.Round(time.Millisecond).String(),
	})
	t.Render()
}

// Line formats a single result for streaming progress output.
func (p *Printer) Line(r runner.Result) string {
	line := fmt.Sprintf("%-7s %s", p.status(r.Status()), r.Descriptor.Title())
	if reason := r.Reason(); reason != "" && !r.Passed() {
		line += " (" + reason + ")"
	}
	return line
}

func (p *Printer) status(s runner.Status) string {
	label := string(s)
	switch s {
	case runner.StatusPassed:
		return p.paint(text.FgGreen, label)
	case runner.StatusFailed, runner.StatusErrored:
		return p.paint(text.FgRed, label)
	default:
		return p.paint(text.FgYellow, label)
	}
}

func (p *Printer) count(c text.Color, n int) string {
	if n == 0 {
		return strconv.Itoa(n)
	}
	return p.paint(c, n)
}

func textColumns(names ...string) []table.ColumnConfig {
	cfgs := make([]table.ColumnConfig, 0, len(names))
	for _, n := range names {
		cfgs = append(cfgs, table.ColumnConfig{Name: n, WidthMax: maxTextWidth})
	}
	return cfgs
}
