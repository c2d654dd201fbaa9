package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// LoadOptions selects what to read from a workbook.
type LoadOptions struct {
	// Sheet names the worksheet to read. Empty means the first sheet.
	Sheet string
	// Logger receives load timings. Nil disables logging.
	Logger *zap.Logger
}

// Load reads the grid of a .xlsx/.xlsm workbook or a .csv file.
func Load(path string, opts LoadOptions) (Grid, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("sheet file not found: %s", path)
		}
		return nil, fmt.Errorf("stat sheet file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return loadWorkbook(path, opts.Sheet, log)
	case ".csv":
		return loadCSV(path, log)
	default:
		return nil, fmt.Errorf("unsupported sheet file type %q", ext)
	}
}

func loadWorkbook(path, sheetName string, log *zap.Logger) (Grid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheetName = sheets[0]
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}

	log.Debug("workbook loaded",
		zap.String("path", path),
		zap.String("sheet", sheetName),
		zap.Int("rows", len(rows)))
	return Grid(rows), nil
}

func loadCSV(path string, log *zap.Logger) (Grid, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Rows above the header (titles, notes) are usually shorter than the table.
	reader.FieldsPerRecord = -1

	// encoding/csv skips blank lines; spreadsheet apps show them as empty rows,
	// so they are kept to hold row numbers in step with the file.
	var rows [][]string
	lastLine := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		start, _ := reader.FieldPos(0)
		for line := lastLine + 1; line < start; line++ {
			rows = append(rows, nil)
		}
		end, _ := reader.FieldPos(len(record) - 1)
		lastLine = end + strings.Count(record[len(record)-1], "\n")
		rows = append(rows, record)
	}

	log.Debug("csv loaded", zap.String("path", path), zap.Int("rows", len(rows)))
	return Grid(rows), nil
}
