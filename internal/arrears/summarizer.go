// =============================================================================
// Portfolio Consolidation - Arrears Summarizer
// =============================================================================
//
// The due-installment extract has one row per installment occurrence. This
// module reduces it to one row per credit:
//
//   current installment : among rows due in the reference month and year,
//                         the one with the latest due date
//   first overdue       : among rows due strictly before the reference day,
//                         the one with the earliest due date
//   total overdue       : sum of the amounts of all overdue rows
//
// Ties on the current installment are broken by the smallest installment
// number, then by input order. Ties on the first overdue installment keep
// the first row in input order.
//
// Credits without any usable row are absent from the summary.
//
// =============================================================================

package arrears

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/portfolio-consolidation/internal/table"
	"github.com/ginjaninja78/portfolio-consolidation/internal/types"
)

// SummaryColumns are the columns of the summary table, key first.
var SummaryColumns = []string{
	types.ColCreditKey,
	types.ColCurrentInstallmentDate,
	types.ColCurrentInstallment,
	types.ColCurrentInstallmentAmount,
	types.ColFirstOverdueDate,
	types.ColFirstOverdueInstallment,
	types.ColFirstOverdueAmount,
	types.ColTotalOverdueAmount,
	types.ColPhone,
	types.ColMobile,
}

// installment is one parsed row of the due-installment extract.
type installment struct {
	due    time.Time
	amount decimal.Decimal
	number int64
	hasNum bool
	row    table.Row
}

// creditGroup accumulates the installments of one credit.
type creditGroup struct {
	key   string
	items []installment
	phone string
	cell  string
}

// Summarize builds the per-credit summary.
//
// PARAMETERS:
//   - installments: The normalized due-installment table (Credito,
//     Fecha_Cuota_Vigente, Valor_Cuota_Vigente, Cuota_Vigente, contacts).
//   - today: The reference day.
//
// RETURNS:
//   - One row per credit that had at least one row with a parseable due
//     date, in order of first appearance.
func Summarize(installments *table.Table, today time.Time) *table.Table {
	out := table.New("arrears_summary", SummaryColumns...)
	if installments.Empty() {
		return out
	}
	today = table.Day(today)

	groups := groupByCredit(installments)
	for _, g := range groups {
		row := table.Row{types.ColCreditKey: g.key}

		if cur, ok := currentInstallment(g.items, today); ok {
			row.Set(types.ColCurrentInstallmentDate, table.FormatDate(cur.due))
			setOptional(row, types.ColCurrentInstallment, cur.row, types.ColCurrentInstallment)
			setOptional(row, types.ColCurrentInstallmentAmount, cur.row, types.ColCurrentInstallmentAmount)
		}

		if first, total, ok := overdue(g.items, today); ok {
			row.Set(types.ColFirstOverdueDate, table.FormatDate(first.due))
			setOptional(row, types.ColFirstOverdueInstallment, first.row, types.ColCurrentInstallment)
			setOptional(row, types.ColFirstOverdueAmount, first.row, types.ColCurrentInstallmentAmount)
			row.Set(types.ColTotalOverdueAmount, table.FormatDecimal(total))
		}

		if g.phone != "" {
			row.Set(types.ColPhone, g.phone)
		}
		if g.cell != "" {
			row.Set(types.ColMobile, g.cell)
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func groupByCredit(t *table.Table) []*creditGroup {
	index := make(map[string]*creditGroup)
	var groups []*creditGroup

	for _, r := range t.Rows {
		key, ok := r.Get(types.ColCreditKey)
		if !ok {
			continue
		}
		due, ok := r.Date(types.ColCurrentInstallmentDate)
		if !ok {
			continue
		}

		g, seen := index[key]
		if !seen {
			g = &creditGroup{key: key}
			index[key] = g
			groups = append(groups, g)
		}

		item := installment{due: due, row: r}
		if amount, ok := table.ParseDecimal(r.Str(types.ColCurrentInstallmentAmount)); ok {
			item.amount = amount
		}
		item.number, item.hasNum = table.ParseInt(r.Str(types.ColCurrentInstallment))
		g.items = append(g.items, item)

		if g.phone == "" {
			g.phone = r.Str(types.ColPhone)
		}
		if g.cell == "" {
			g.cell = r.Str(types.ColMobile)
		}
	}
	return groups
}

// currentInstallment picks the latest-due row within today's month.
func currentInstallment(items []installment, today time.Time) (installment, bool) {
	var (
		best  installment
		found bool
	)
	for _, it := range items {
		if it.due.Year() != today.Year() || it.due.Month() != today.Month() {
			continue
		}
		if !found || it.due.After(best.due) || (it.due.Equal(best.due) && lowerNumber(it, best)) {
			best, found = it, true
		}
	}
	return best, found
}

// lowerNumber reports whether a has a smaller installment number than b.
// Rows without a number never win a tie.
func lowerNumber(a, b installment) bool {
	if !a.hasNum {
		return false
	}
	if !b.hasNum {
		return true
	}
	return a.number < b.number
}

// overdue returns the earliest overdue row and the total overdue amount.
func overdue(items []installment, today time.Time) (installment, decimal.Decimal, bool) {
	var (
		first installment
		total = decimal.Zero
		found bool
	)
	for _, it := range items {
		if !it.due.Before(today) {
			continue
		}
		total = total.Add(it.amount)
		if !found || it.due.Before(first.due) {
			first, found = it, true
		}
	}
	return first, total, found
}

func setOptional(dst table.Row, dstCol string, src table.Row, srcCol string) {
	if v, ok := src.Get(srcCol); ok {
		dst.Set(dstCol, v)
	}
}
