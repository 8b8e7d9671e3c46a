// =============================================================================
// Portfolio Consolidation - Document Loader
// =============================================================================
//
// This module turns one classified input file into normalized document
// tables, following the parse strategy of its registry entry:
//
//   flat        : first sheet, header in the first non-empty row
//   multi_sheet : each declared sheet by name, each with its own columns
//   positional  : first sheet, leading rows skipped, columns named by position
//
// For every sheet the loader projects the declared source columns (missing
// ones are tolerated here; required-ness is checked by the validator),
// renames them to their canonical names, and applies the type's cleanup.
// Empty cells become nulls.
//
// Header matching ignores case, surrounding whitespace and accents, so
// "CRÉDITO", "Credito " and "CREDITO" all find the same declared column.
//
// =============================================================================

package loader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ginjaninja78/portfolio-consolidation/internal/config"
	"github.com/ginjaninja78/portfolio-consolidation/internal/logging"
	"github.com/ginjaninja78/portfolio-consolidation/internal/registry"
	"github.com/ginjaninja78/portfolio-consolidation/internal/table"
	"github.com/ginjaninja78/portfolio-consolidation/internal/types"
	"github.com/ginjaninja78/portfolio-consolidation/internal/validation"
	"github.com/ginjaninja78/portfolio-consolidation/internal/xlsxparser"
)

// =============================================================================
// DOCUMENT STRUCTURE
// =============================================================================

// Document is one loaded, validated sheet of an input file.
type Document struct {
	// Type is the registry entry the file was classified as.
	Type *registry.DocumentType

	// Sheet is the sheet declaration used, carrying the merge key.
	Sheet *registry.SheetSpec

	// File is the source path.
	File string

	// Table holds the normalized rows.
	Table *table.Table

	// Validation is the validator's report for this sheet.
	Validation *validation.Result
}

// Loader reads input files according to the registry.
type Loader struct {
	csv       config.CSVSettings
	validator *validation.Validator
	logger    logging.Logger
	open      func(path string, settings config.CSVSettings) (*xlsxparser.Workbook, error)
}

// New creates a loader.
func New(csv config.CSVSettings, logger logging.Logger) *Loader {
	return &Loader{
		csv:       csv,
		validator: validation.NewValidator(),
		logger:    logging.OrNop(logger),
		open:      xlsxparser.Open,
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads one file as the given document type.
//
// RETURNS:
//   - One Document per sheet that loaded and validated.
//   - An error describing the first failure. For a flat or positional type
//     the error means nothing was loaded. For a multi_sheet type the valid
//     sheets are still returned alongside the error for the failing one.
//
// Missing required columns are reported as *types.ValidationError; an
// unreadable file or missing sheet as *types.LoadError.
func (l *Loader) Load(path string, dt *registry.DocumentType) ([]*Document, error) {
	wb, err := l.open(path, l.csv)
	if err != nil {
		return nil, &types.LoadError{File: path, DocumentType: dt.Key, Err: err}
	}

	var (
		docs []*Document
		errs []error
	)
	for i := range dt.Sheets {
		spec := &dt.Sheets[i]

		sheet, err := pickSheet(wb, dt, spec)
		if err != nil {
			errs = append(errs, &types.LoadError{File: path, DocumentType: dt.Key, Err: err})
			continue
		}

		var t *table.Table
		if dt.Strategy == registry.StrategyPositional {
			t = readPositional(sheet, spec)
		} else {
			t = readHeaded(sheet, spec)
		}
		t.Name = tableName(dt, spec)

		if dt.Cleanup == registry.CleanupCodebtor {
			applyCodebtorCleanup(t, spec)
		}

		result := l.validator.Validate(t, dt.Key, path, spec)
		if err := result.Err(); err != nil {
			errs = append(errs, err)
			continue
		}
		if n := result.FormatErrorCount(); n > 0 {
			l.logger.Warn("%s (%s): %d unparseable cells will be treated as empty", path, t.Name, n)
			for _, sample := range result.Samples {
				l.logger.Debug("%s: %v", path, sample)
			}
		}

		l.logger.Debug("Loaded %s sheet '%s' as %s: %d rows", path, sheet.Name, t.Name, t.Len())
		docs = append(docs, &Document{Type: dt, Sheet: spec, File: path, Table: t, Validation: result})
	}

	return docs, errors.Join(errs...)
}

func tableName(dt *registry.DocumentType, spec *registry.SheetSpec) string {
	if dt.Strategy == registry.StrategyMultiSheet {
		return dt.Key + "/" + spec.Name
	}
	return dt.Key
}

func pickSheet(wb *xlsxparser.Workbook, dt *registry.DocumentType, spec *registry.SheetSpec) (*xlsxparser.Sheet, error) {
	if dt.Strategy == registry.StrategyMultiSheet {
		sheet, ok := wb.Sheet(spec.Name)
		if !ok {
			return nil, fmt.Errorf("sheet '%s' not found (available: %s)", spec.Name, strings.Join(wb.SheetNames(), ", "))
		}
		return sheet, nil
	}
	if spec.Name != "" {
		if sheet, ok := wb.Sheet(spec.Name); ok {
			return sheet, nil
		}
	}
	sheet, ok := wb.First()
	if !ok {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return sheet, nil
}

// =============================================================================
// STRATEGIES
// =============================================================================

// readHeaded projects and renames the declared columns of a sheet whose
// first non-empty row is the header.
func readHeaded(sheet *xlsxparser.Sheet, spec *registry.SheetSpec) *table.Table {
	headerRow := -1
	for i, row := range sheet.Rows {
		if !xlsxparser.IsRowEmpty(row) {
			headerRow = i
			break
		}
	}
	t := table.New("")
	if headerRow < 0 {
		return t
	}

	positions := make(map[string]int, len(sheet.Rows[headerRow]))
	for i, h := range sheet.Rows[headerRow] {
		key := headerKey(h)
		if _, dup := positions[key]; !dup && key != "" {
			positions[key] = i
		}
	}

	type projection struct {
		index  int
		target string
	}
	var projections []projection
	for _, c := range spec.Columns {
		if i, ok := positions[headerKey(c.Source)]; ok {
			projections = append(projections, projection{index: i, target: c.Target})
			t.AddColumn(c.Target)
		}
	}

	for _, raw := range sheet.Rows[headerRow+1:] {
		if xlsxparser.IsRowEmpty(raw) {
			continue
		}
		row := make(table.Row, len(projections))
		for _, p := range projections {
			if p.index < len(raw) {
				if v := strings.TrimSpace(raw[p.index]); v != "" {
					row[p.target] = v
				}
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// readPositional names columns by position after skipping leading rows.
func readPositional(sheet *xlsxparser.Sheet, spec *registry.SheetSpec) *table.Table {
	t := table.New("", spec.Names...)
	if spec.SkipRows >= len(sheet.Rows) {
		return t
	}
	for _, raw := range sheet.Rows[spec.SkipRows:] {
		if xlsxparser.IsRowEmpty(raw) {
			continue
		}
		row := make(table.Row, len(spec.Names))
		for i, name := range spec.Names {
			if i < len(raw) {
				if v := strings.TrimSpace(raw[i]); v != "" {
					row[name] = v
				}
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// headerKey is the comparison form of a header cell.
func headerKey(h string) string {
	return registry.FoldAccents(strings.ToUpper(strings.Join(strings.Fields(h), " ")))
}

// =============================================================================
// CLEANUP
// =============================================================================

// applyCodebtorCleanup rewrites "." and empty cells to the no-codebtor
// sentinel in every projected column except the merge key.
func applyCodebtorCleanup(t *table.Table, spec *registry.SheetSpec) {
	for _, col := range t.Columns {
		if col == spec.MergeKey {
			continue
		}
		for _, r := range t.Rows {
			v, ok := r.Get(col)
			if !ok || v == "." {
				r.Set(col, types.SentinelNoCodebtor)
			}
		}
	}
}
