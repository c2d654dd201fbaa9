// Package sheet turns a raw spreadsheet grid into test records.
// The header row is found by content rather than position, so sheets may carry
// titles, notes or blank rows above the column names.
package sheet

import (
	"errors"
	"fmt"
	"strings"
)

// Column names that identify a runnable record.
const (
	ColTCID       = "TC ID"
	ColTestCaseID = "Test Case ID"
)

// headerMarker is the lowercase substring that marks a header cell.
const headerMarker = "tc"

// ErrHeaderNotFound is returned when no row of the grid looks like a header.
// No test can be derived without one, so callers treat it as fatal.
var ErrHeaderNotFound = errors.New(`header row with "TC ID" not found in sheet`)

// Grid is a raw sheet: ordered rows of ordered cells. Empty cells are "".
type Grid [][]string

// Record is one data row keyed by header column name.
type Record struct {
	// Row is the 1-based row number in the source sheet.
	Row    int
	Fields map[string]string
}

// Get returns the value of a column, or "" when the column is absent.
func (r Record) Get(key string) string {
	return r.Fields[key]
}

// First returns the first non-empty value among keys, in order.
func (r Record) First(keys ...string) string {
	for _, k := range keys {
		if v := r.Fields[k]; v != "" {
			return v
		}
	}
	return ""
}

// Identifiable reports whether the record carries either id column.
func (r Record) Identifiable() bool {
	return r.First(ColTCID, ColTestCaseID) != ""
}

// LocateHeader returns the index of the first row holding a cell whose
// lowercase text contains "tc".
func LocateHeader(grid Grid) (int, error) {
	for i, row := range grid {
		for _, cell := range row {
			if cell == "" {
				continue
			}
			if strings.Contains(strings.ToLower(cell), headerMarker) {
				return i, nil
			}
		}
	}
	return -1, ErrHeaderNotFound
}

// ExtractRecords reads grid[headerIndex] as column names and every later row as
// a record. Missing cells default to "". Blank rows and records without an id are
// dropped; the remaining records keep sheet order.
func ExtractRecords(grid Grid, headerIndex int) ([]Record, error) {
	if headerIndex < 0 || headerIndex >= len(grid) {
		return nil, fmt.Errorf("header index %d out of range (grid has %d rows)", headerIndex, len(grid))
	}

	header := grid[headerIndex]
	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		columns[i] = name
	}

	var records []Record
	for i := headerIndex + 1; i < len(grid); i++ {
		row := grid[i]
		if isBlank(row) {
			continue
		}

		fields := make(map[string]string, len(seen))
		for j, name := range columns {
			if name == "" {
				continue
			}
			if j < len(row) {
				fields[name] = row[j]
			} else {
				fields[name] = ""
			}
		}

		rec := Record{Row: i + 1, Fields: fields}
		if !rec.Identifiable() {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Extract locates the header and returns the identifiable records below it.
func Extract(grid Grid) ([]Record, error) {
	idx, err := LocateHeader(grid)
	if err != nil {
		return nil, err
	}
	return ExtractRecords(grid, idx)
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
