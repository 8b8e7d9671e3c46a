// =============================================================================
// Portfolio Consolidation - Workbook Reader
// =============================================================================
//
// This module opens an input extract and returns its sheets as raw text
// grids. The engine is chosen by file extension:
//
//   | Extension | Engine                        |
//   |-----------|-------------------------------|
//   | .xlsx     | excelize (raw cell values)    |
//   | .xlsm     | excelize (raw cell values)    |
//   | .xls      | xlsReader (legacy BIFF8)      |
//   | .csv      | csvparser (one sheet)         |
//
// Raw cell values are requested from excelize so dates arrive as Excel
// serial numbers and numbers without display formatting; the typed
// accessors in internal/table interpret them.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/portfolio-consolidation/internal/config"
	"github.com/ginjaninja78/portfolio-consolidation/internal/csvparser"
)

// =============================================================================
// WORKBOOK STRUCTURE
// =============================================================================

// Format identifies the engine used to read a file.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

// Sheet is one worksheet as a grid of trimmed-right text cells.
type Sheet struct {
	Name string
	Rows [][]string
}

// Workbook is an opened input file.
type Workbook struct {
	// Path is the source file.
	Path string

	// Format is the engine that read it.
	Format Format

	// Sheets are in workbook order.
	Sheets []*Sheet
}

// First returns the first sheet.
func (w *Workbook) First() (*Sheet, bool) {
	if len(w.Sheets) == 0 {
		return nil, false
	}
	return w.Sheets[0], true
}

// Sheet finds a sheet by name. The comparison ignores case and surrounding
// whitespace; exports are not consistent about either.
func (w *Workbook) Sheet(name string) (*Sheet, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, s := range w.Sheets {
		if strings.ToLower(strings.TrimSpace(s.Name)) == want {
			return s, true
		}
	}
	return nil, false
}

// SheetNames lists the sheet names.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		names[i] = s.Name
	}
	return names
}

// =============================================================================
// OPENING
// =============================================================================

// FormatOf returns the engine for a path, or an error for an unsupported
// extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported file extension '%s'", filepath.Ext(path))
	}
}

// Open reads every sheet of the file at path.
//
// PARAMETERS:
//   - path: The input file.
//   - csvSettings: Dialect used when the file is a CSV export.
//
// RETURNS:
//   - The workbook with all sheets fully materialized.
//   - An error if the file cannot be opened or read.
func Open(path string, csvSettings config.CSVSettings) (*Workbook, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	var sheets []*Sheet
	switch format {
	case FormatXLSX:
		sheets, err = readXLSX(path)
	case FormatXLS:
		sheets, err = readXLS(path)
	case FormatCSV:
		sheets, err = readCSV(path, csvSettings)
	}
	if err != nil {
		return nil, err
	}
	return &Workbook{Path: path, Format: format, Sheets: sheets}, nil
}

func readXLSX(path string) ([]*Sheet, error) {
	f, err := excelize.OpenFile(path, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var sheets []*Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet '%s': %w", name, err)
		}
		sheets = append(sheets, &Sheet{Name: name, Rows: rows})
	}
	return sheets, nil
}

func readXLS(path string) ([]*Sheet, error) {
	wb, err := xls.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy workbook: %w", err)
	}

	var sheets []*Sheet
	for i := 0; i < wb.GetNumberSheets(); i++ {
		sheet, err := wb.GetSheet(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet #%d: %w", i+1, err)
		}
		grid := make([][]string, 0, sheet.GetNumberRows())
		for _, row := range sheet.GetRows() {
			var cells []string
			for _, cell := range row.GetCols() {
				cells = append(cells, cell.GetString())
			}
			grid = append(grid, trimTrailingEmpty(cells))
		}
		sheets = append(sheets, &Sheet{Name: sheet.GetName(), Rows: grid})
	}
	return sheets, nil
}

func readCSV(path string, settings config.CSVSettings) ([]*Sheet, error) {
	rows, err := csvparser.ReadFile(path, settings)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return []*Sheet{{Name: name, Rows: rows}}, nil
}

// trimTrailingEmpty drops empty cells at the end of a row, matching what
// excelize returns for xlsx rows.
func trimTrailingEmpty(cells []string) []string {
	end := len(cells)
	for end > 0 && strings.TrimSpace(cells[end-1]) == "" {
		end--
	}
	return cells[:end]
}

// IsRowEmpty checks if a row contains only empty cells.
func IsRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
