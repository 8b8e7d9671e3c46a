// =============================================================================
// Portfolio Consolidation - Document Validator
// =============================================================================
//
// This module validates a loaded document table against its registry entry.
//
// VALIDATION RULES:
//   1. Required columns: every column the sheet declares as required must be
//      present after loading. A miss is a ValidationError; the caller decides
//      whether it is fatal (primary ledger) or a skip (secondary file).
//   2. Field formats: cells of known date, number and percentage columns are
//      parsed. Failures are FormatErrors: they are counted and sampled for
//      the run report, never fatal. The stages coerce such cells to null.
//
// CUSTOMIZATION:
//   - Add entries to DefaultFieldKinds for new typed columns.
//
// =============================================================================

package validation

import (
	"sort"
	"strings"

	"github.com/ginjaninja78/portfolio-consolidation/internal/registry"
	"github.com/ginjaninja78/portfolio-consolidation/internal/table"
	"github.com/ginjaninja78/portfolio-consolidation/internal/types"
)

// =============================================================================
// FIELD KINDS
// =============================================================================

// FieldKind is the expected type of a column's cells.
type FieldKind string

const (
	KindDate    FieldKind = "date"
	KindNumber  FieldKind = "number"
	KindInteger FieldKind = "integer"
	KindPercent FieldKind = "percent"
)

// DefaultFieldKinds lists the typed columns of the source extracts.
func DefaultFieldKinds() map[string]FieldKind {
	return map[string]FieldKind{
		types.ColCurrentInstallmentDate:   KindDate,
		types.ColInvoiceDate:              KindDate,
		types.ColCurrentInstallmentAmount: KindNumber,
		types.ColConceptBalance:           KindNumber,
		types.ColInvoiceBalance:           KindNumber,
		types.ColSaleTotal:                KindNumber,
		types.ColItemQty:                  KindNumber,
		types.ColInstallmentValue:         KindNumber,
		types.ColDisbursement:             KindNumber,
		types.ColGoalInterest:             KindNumber,
		types.ColGoalOnTime:               KindNumber,
		types.ColGoalOverdue:              KindNumber,
		types.ColGoalArrears:              KindNumber,
		types.ColArrearsDays:              KindNumber,
		types.ColCurrentInstallment:       KindInteger,
		types.ColPaidInstallments:         KindInteger,
		types.ColTotalInstallments:        KindInteger,
		types.ColZoneGoal1To30:            KindPercent,
		types.ColZoneGoal31To90:           KindPercent,
		types.ColZoneGoal91To180:          KindPercent,
		types.ColZoneGoal181To360:         KindPercent,
		types.ColZoneCollectionTotal:      KindPercent,
	}
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Options configures a Validator.
type Options struct {
	// MaxSamples caps the FormatErrors kept per column. Counts are exact.
	MaxSamples int

	// SkipFormats disables the field-format pass.
	SkipFormats bool
}

// DefaultOptions returns the default validation options.
func DefaultOptions() Options {
	return Options{MaxSamples: 3}
}

// Validator checks document tables.
type Validator struct {
	kinds   map[string]FieldKind
	options Options
}

// NewValidator creates a validator with the default field kinds.
func NewValidator() *Validator {
	return NewValidatorWithOptions(DefaultFieldKinds(), DefaultOptions())
}

// NewValidatorWithOptions creates a validator with custom kinds and options.
func NewValidatorWithOptions(kinds map[string]FieldKind, options Options) *Validator {
	return &Validator{kinds: kinds, options: options}
}

// Result is the outcome of validating one document table.
type Result struct {
	// DocumentType and File identify the document.
	DocumentType string
	File         string
	Sheet        string

	// Missing lists absent required columns.
	Missing []string

	// FormatCounts is the number of unparseable cells per column.
	FormatCounts map[string]int

	// Samples holds up to MaxSamples FormatErrors per column.
	Samples []*types.FormatError

	// RowsValidated and FieldsValidated are counters for the run report.
	RowsValidated   int
	FieldsValidated int
}

// IsValid reports whether every required column is present.
func (r *Result) IsValid() bool {
	return len(r.Missing) == 0
}

// Err returns a ValidationError when required columns are missing.
func (r *Result) Err() error {
	if r.IsValid() {
		return nil
	}
	return &types.ValidationError{
		DocumentType: r.DocumentType,
		File:         r.File,
		Sheet:        r.Sheet,
		Missing:      r.Missing,
	}
}

// FormatErrorCount returns the total number of unparseable cells.
func (r *Result) FormatErrorCount() int {
	n := 0
	for _, c := range r.FormatCounts {
		n += c
	}
	return n
}

// Validate checks a loaded table against its sheet declaration.
//
// PARAMETERS:
//   - t: The loaded, renamed table.
//   - docType: The registry key, for error context.
//   - file: The source file, for error context.
//   - sheet: The sheet declaration holding the required columns.
//
// RETURNS:
//   - The validation result. Use Err to obtain a ValidationError.
func (v *Validator) Validate(t *table.Table, docType, file string, sheet *registry.SheetSpec) *Result {
	result := &Result{
		DocumentType: docType,
		File:         file,
		Sheet:        sheet.Name,
		FormatCounts: make(map[string]int),
	}

	required := append([]string(nil), sheet.Required...)
	// The credit key is derived later from its parts.
	for i, col := range required {
		if col == types.ColCreditKey && !t.Has(types.ColCreditKey) {
			required = append(required[:i:i], required[i+1:]...)
			required = append(required, types.ColCreditType, types.ColCreditNumber)
			break
		}
	}
	result.Missing = dedupe(t.Missing(required...))

	if v.options.SkipFormats {
		return result
	}

	columns := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if _, typed := v.kinds[c]; typed {
			columns = append(columns, c)
		}
	}
	sort.Strings(columns)

	result.RowsValidated = t.Len()
	for _, r := range t.Rows {
		for _, col := range columns {
			value, ok := r.Get(col)
			if !ok {
				continue
			}
			result.FieldsValidated++
			kind := v.kinds[col]
			if ValidateValue(value, kind) {
				continue
			}
			result.FormatCounts[col]++
			if result.FormatCounts[col] <= v.options.MaxSamples {
				result.Samples = append(result.Samples, &types.FormatError{
					Column: col,
					Value:  value,
					Kind:   string(kind),
				})
			}
		}
	}
	return result
}

// ValidateValue reports whether a non-null cell parses as the given kind.
func ValidateValue(value string, kind FieldKind) bool {
	switch kind {
	case KindDate:
		_, ok := table.ParseDate(value)
		return ok
	case KindNumber:
		_, ok := table.ParseDecimal(value)
		return ok
	case KindInteger:
		_, ok := table.ParseInt(value)
		return ok
	case KindPercent:
		_, ok := table.ParseDecimal(strings.TrimSuffix(strings.TrimSpace(value), "%"))
		return ok
	default:
		return true
	}
}

func dedupe(cols []string) []string {
	seen := make(map[string]bool, len(cols))
	out := cols[:0]
	for _, c := range cols {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
