// =============================================================================
// Portfolio Consolidation - Report Writer
// =============================================================================
//
// This module writes the consolidated report table to its output artifact.
//
// FORMATS:
//   - xlsx: one worksheet, bold frozen header row, amounts as numbers.
//           Written through the excelize stream writer.
//   - csv:  the configured delimiter and encoding (see internal/csvparser).
//
// ATOMICITY:
//   The artifact is written to a hidden temporary file in the output
//   directory and renamed into place once complete. A failed write removes
//   the temporary file; the final path either holds a full report or
//   nothing.
//
// Null cells are written as empty cells.
//
// =============================================================================

package reportwriter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/portfolio-consolidation/internal/config"
	"github.com/ginjaninja78/portfolio-consolidation/internal/csvparser"
	"github.com/ginjaninja78/portfolio-consolidation/internal/table"
	"github.com/ginjaninja78/portfolio-consolidation/internal/types"
)

// Format is an output artifact format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// Extension returns the file extension, with the leading dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// ParseFormat accepts "xlsx" or "csv", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatXLSX, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format '%s'", s)
	}
}

// =============================================================================
// WRITE OPTIONS
// =============================================================================

// Options contains options for writing a report.
type Options struct {
	// Format selects the artifact format.
	// Default: xlsx
	Format Format

	// SheetName is the worksheet name of an xlsx report.
	// Default: "Consolidado"
	SheetName string

	// ColumnWidth is the width of every xlsx column.
	// Default: 18
	ColumnWidth float64

	// NumericColumns are written as numbers in xlsx when the cell parses as
	// a decimal. Other cells of these columns stay text.
	// Default: AmountColumns
	NumericColumns []string

	// CSV is the dialect of a csv report.
	CSV config.CSVSettings
}

// AmountColumns are the money and count columns of the report.
var AmountColumns = []string{
	types.ColCurrentInstallmentAmount,
	types.ColFirstOverdueAmount,
	types.ColTotalOverdueAmount,
	types.ColPrincipal,
	types.ColGuarantee,
	types.ColCurrentInterest,
	types.ColDisbursement,
	types.ColInstallmentValue,
	types.ColTotalInstallments,
	types.ColArrearsDays,
	types.ColProductQty,
	types.ColGiftQty,
	types.ColTotalProductQty,
	types.ColGeneralGoal,
	types.ColBucketGoalAmount,
	types.ColCollectionAmount,
}

// DefaultOptions returns the default write options.
func DefaultOptions() Options {
	return Options{
		Format:         FormatXLSX,
		SheetName:      "Consolidado",
		ColumnWidth:    18,
		NumericColumns: AmountColumns,
		CSV:            config.CSVSettings{Delimiter: ",", Encoding: "UTF-8"},
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Format == "" {
		o.Format = def.Format
	}
	if o.SheetName == "" {
		o.SheetName = def.SheetName
	}
	if o.ColumnWidth <= 0 {
		o.ColumnWidth = def.ColumnWidth
	}
	if o.NumericColumns == nil {
		o.NumericColumns = def.NumericColumns
	}
	if o.CSV.Delimiter == "" {
		o.CSV.Delimiter = def.CSV.Delimiter
	}
	if o.CSV.Encoding == "" {
		o.CSV.Encoding = def.CSV.Encoding
	}
	return o
}

// =============================================================================
// WRITING
// =============================================================================

// Write writes t to dir/fileName.
//
// PARAMETERS:
//   - t: The report table.
//   - dir: The output directory. It is created if missing.
//   - fileName: The artifact name, extension included.
//   - opts: The write options. Zero fields take their defaults.
//
// RETURNS:
//   - The path of the written artifact.
//   - An error if the table cannot be encoded or the file cannot be placed.
func Write(t *table.Table, dir, fileName string, opts Options) (string, error) {
	opts = opts.withDefaults()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	finalPath := filepath.Join(dir, fileName)
	tmpPath := filepath.Join(dir, "."+uuid.NewString()+".tmp")

	file, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary output file: %w", err)
	}

	switch opts.Format {
	case FormatXLSX:
		err = writeXLSX(file, t, opts)
	case FormatCSV:
		err = writeCSV(file, t, opts)
	default:
		err = fmt.Errorf("unsupported output format '%s'", opts.Format)
	}
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close temporary output file: %w", closeErr)
	}
	if err != nil {
		os.Remove(tmpPath)
		return "", err
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to move report into place: %w", err)
	}
	return finalPath, nil
}

// writeXLSX streams the table into a single-sheet workbook.
func writeXLSX(w io.Writer, t *table.Table, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", opts.SheetName); err != nil {
		return fmt.Errorf("invalid sheet name '%s': %w", opts.SheetName, err)
	}

	sw, err := f.NewStreamWriter(opts.SheetName)
	if err != nil {
		return fmt.Errorf("failed to open sheet writer: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9E1F2"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if len(t.Columns) > 0 {
		if err := sw.SetColWidth(1, len(t.Columns), opts.ColumnWidth); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	if err := sw.SetPanes(&excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header row: %w", err)
	}

	// Header row.
	header := make([]interface{}, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: col}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	numeric := make(map[string]bool, len(opts.NumericColumns))
	for _, col := range opts.NumericColumns {
		numeric[col] = true
	}

	// Data rows.
	for i, row := range t.Rows {
		values := make([]interface{}, len(t.Columns))
		for j, col := range t.Columns {
			values[j] = cellValue(row, col, numeric[col])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// cellValue returns nil for a null cell, a float64 for a parseable numeric
// cell, and the text otherwise.
func cellValue(row table.Row, col string, numeric bool) interface{} {
	v, ok := row.Get(col)
	if !ok {
		return nil
	}
	if numeric {
		if d, ok := table.ParseDecimal(v); ok {
			return d.InexactFloat64()
		}
	}
	return v
}

// writeCSV writes the header and the rows in the configured dialect.
func writeCSV(w io.Writer, t *table.Table, opts Options) error {
	cw, err := csvparser.NewWriter(w, opts.CSV)
	if err != nil {
		return err
	}
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	record := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		for j, col := range t.Columns {
			record[j] = row.Str(col)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	return cw.Close()
}
