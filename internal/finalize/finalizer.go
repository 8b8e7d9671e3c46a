// =============================================================================
// Portfolio Consolidation - Report Finalizer
// =============================================================================
//
// This module turns the enriched working table into the consolidated report.
//
// FINALIZATION STEPS:
//   1. Format dates to dd/mm/yyyy. Unparseable dates become null.
//   2. Fill the declared defaults into still-null derived columns.
//   3. Format goal percentages as whole-percent text ("20%").
//   4. Drop the transient helper columns left by the joins.
//   5. Reorder the columns: the canonical order first, leftovers after.
//
// Columns outside the helper set are never dropped.
//
// =============================================================================

package finalize

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/portfolio-consolidation/internal/table"
	"github.com/ginjaninja78/portfolio-consolidation/internal/types"
)

// Default is the value a derived column takes when it is still null.
type Default struct {
	Column string
	Value  string
}

// Defaults lists the derived columns and their fallback values.
func Defaults() []Default {
	return []Default{
		{types.ColCurrentInstallmentDate, types.SentinelExpiredTerm},
		{types.ColCurrentInstallment, types.SentinelExpiredTerm},
		{types.ColCurrentInstallmentAmount, types.SentinelExpiredTerm},
		{types.ColFirstOverdueDate, types.SentinelNoArrears},
		{types.ColFirstOverdueInstallment, types.SentinelNoArrears},
		{types.ColFirstOverdueAmount, "0"},
		{types.ColTotalOverdueAmount, "0"},
	}
}

// DateColumns are rendered in the report's date layout.
var DateColumns = []string{
	types.ColCurrentInstallmentDate,
	types.ColFirstOverdueDate,
	types.ColInvoiceDate,
}

// PercentColumns are rendered as whole-percent text.
var PercentColumns = []string{
	types.ColBucketGoalPercent,
	types.ColCollectionPercent,
}

// HelperColumns are dropped by name.
var HelperColumns = []string{types.ColInvoiceBalance}

// HelperSuffixes mark collision columns created by the enrichment joins.
var HelperSuffixes = []string{"_Analisis", "_R03", "_Venc", "_Asesores"}

// Finalize applies every finalization step in place.
//
// PARAMETERS:
//   - t: The enriched working table.
//   - order: The column order. An empty order uses the canonical order.
func Finalize(t *table.Table, order []string) {
	FormatDates(t)
	ApplyDefaults(t)
	FormatPercents(t)
	DropHelpers(t)
	if len(order) == 0 {
		order = types.CanonicalColumnOrder()
	}
	t.Reorder(order)
}

// FormatDates renders every parseable date cell as dd/mm/yyyy.
func FormatDates(t *table.Table) {
	for _, col := range DateColumns {
		if !t.Has(col) {
			continue
		}
		for _, r := range t.Rows {
			if d, ok := r.Date(col); ok {
				r.Set(col, table.FormatDate(d))
			} else {
				r.Unset(col)
			}
		}
	}
}

// ApplyDefaults fills null derived cells, declaring missing columns.
func ApplyDefaults(t *table.Table) {
	for _, d := range Defaults() {
		t.AddColumn(d.Column)
		for _, r := range t.Rows {
			if r.IsNull(d.Column) {
				r.Set(d.Column, d.Value)
			}
		}
	}
}

// FormatPercent renders a fraction as whole-percent text: 0.2 -> "20%".
func FormatPercent(fraction decimal.Decimal) string {
	return fraction.Mul(decimal.NewFromInt(100)).Round(0).String() + "%"
}

// FormatPercents rewrites the percentage columns. Unparseable cells become
// null.
func FormatPercents(t *table.Table) {
	for _, col := range PercentColumns {
		for _, r := range t.Rows {
			v, ok := r.Get(col)
			if !ok {
				continue
			}
			if d, ok := table.ParseDecimal(v); ok {
				r.Set(col, FormatPercent(d))
			} else {
				r.Unset(col)
			}
		}
	}
}

// IsHelper reports whether a column is a transient helper.
func IsHelper(col string) bool {
	for _, h := range HelperColumns {
		if col == h {
			return true
		}
	}
	for _, s := range HelperSuffixes {
		if strings.HasSuffix(col, s) {
			return true
		}
	}
	return false
}

// DropHelpers removes the helper columns.
func DropHelpers(t *table.Table) {
	var drop []string
	for _, c := range t.Columns {
		if IsHelper(c) {
			drop = append(drop, c)
		}
	}
	t.DropColumns(drop...)
}

// =============================================================================
// DATE RANGE FILTER
// =============================================================================

// FilterByDate keeps the rows whose current installment date falls within
// [start, end]. A nil bound is open. When both bounds are nil the table is
// returned unchanged; otherwise rows without a parseable date are dropped.
func FilterByDate(t *table.Table, start, end *time.Time) *table.Table {
	if start == nil && end == nil {
		return t
	}
	return t.Filter(func(r table.Row) bool {
		d, ok := r.Date(types.ColCurrentInstallmentDate)
		if !ok {
			return false
		}
		if start != nil && d.Before(table.Day(*start)) {
			return false
		}
		if end != nil && d.After(table.Day(*end)) {
			return false
		}
		return true
	})
}
