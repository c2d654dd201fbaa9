package sheet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheets map[string][][]interface{}, order []string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			row := row
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "cases.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoad_WorkbookFirstSheet(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{
		"Cases": {
			{"Translator suite"},
			{"TC ID", "Test case name", "Input", "Expected output"},
			{"Pos_Fun_001", "Basic greeting", "kohomada", "කොහොමද"},
			{"Neg_Fun_002", "Digits", 1234, ""},
		},
		"Other": {
			{"unrelated"},
		},
	}, []string{"Cases", "Other"})

	grid, err := Load(path, LoadOptions{})
	require.NoError(t, err)

	recs, err := Extract(grid)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "කොහොමද", recs[0].Get("Expected output"))
	assert.Equal(t, "1234", recs[1].Get("Input"))
	assert.Equal(t, 4, recs[1].Row)
}

func TestLoad_NamedSheet(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{
		"First":  {{"nothing here"}},
		"Second": {{"TC ID"}, {"A"}},
	}, []string{"First", "Second"})

	grid, err := Load(path, LoadOptions{})
	require.NoError(t, err)
	_, err = Extract(grid)
	assert.ErrorIs(t, err, ErrHeaderNotFound)

	grid, err = Load(path, LoadOptions{Sheet: "Second"})
	require.NoError(t, err)
	recs, err := Extract(grid)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	_, err = Load(path, LoadOptions{Sheet: "Missing"})
	assert.Error(t, err)
}

func TestLoad_CSV(t *testing.T) {
	content := "Suite title\nTC ID,Input,Expected output\nPOS_FUN_1,mama,මම\n,,\n"
	path := filepath.Join(t.TempDir(), "cases.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	grid, err := Load(path, LoadOptions{})
	require.NoError(t, err)
	recs, err := Extract(grid)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "මම", recs[0].Get("Expected output"))
}

func TestLoad_CSVRowNumbersFollowFileLines(t *testing.T) {
	content := "Suite title\n\nTC ID,Input\n\nPOS_FUN_1,mama\n\"POS_FUN_2\",\"two\nlines\"\nPOS_FUN_3,kohomada\n"
	path := filepath.Join(t.TempDir(), "cases.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	grid, err := Load(path, LoadOptions{})
	require.NoError(t, err)

	idx, err := LocateHeader(grid)
	require.NoError(t, err)
	assert.Equal(t, 2, idx, "blank line above the header is kept as a row")

	recs, err := ExtractRecords(grid, idx)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, 5, recs[0].Row)
	assert.Equal(t, 6, recs[1].Row)
	assert.Equal(t, "two\nlines", recs[1].Get("Input"))
	assert.Equal(t, 7, recs[2].Row, "a quoted line break stays within one row")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.xlsx"), LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	path := filepath.Join(t.TempDir(), "cases.txt")
	require.NoError(t, os.WriteFile(path, []byte("TC ID"), 0644))
	_, err = Load(path, LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}
