package arrears

import (
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/portfolio-consolidation/internal/table"
	"github.com/ginjaninja78/portfolio-consolidation/internal/types"
)

// installmentColumns hold installment numbers that some extracts write with
// a hundreds prefix ("103" for installment 3).
var installmentColumns = []string{
	types.ColPaidInstallments,
	types.ColCurrentInstallment,
	types.ColFirstOverdueInstallment,
}

var hundred = decimal.NewFromInt(100)

// CleanInstallments reduces installment numbers above 100 modulo 100.
// Cells that are not integral numbers become null.
func CleanInstallments(t *table.Table) {
	for _, col := range installmentColumns {
		if !t.Has(col) {
			continue
		}
		for _, r := range t.Rows {
			v, ok := r.Get(col)
			if !ok {
				continue
			}
			n, ok := table.ParseInt(v)
			if !ok {
				r.Unset(col)
				continue
			}
			d := decimal.NewFromInt(n)
			if d.GreaterThan(hundred) {
				d = d.Mod(hundred)
			}
			r.Set(col, table.FormatInt(d))
		}
	}
}

// Adjust marks credits with zero arrears days as not overdue: the overdue
// date and installment become "SIN MORA" and the overdue amounts become 0.
// Rows whose arrears days are null keep their overdue data.
//
// RETURNS:
//   - The number of rows adjusted.
func Adjust(t *table.Table) int {
	if !t.Has(types.ColArrearsDays) {
		return 0
	}
	for _, col := range []string{
		types.ColFirstOverdueDate, types.ColFirstOverdueInstallment,
		types.ColFirstOverdueAmount, types.ColTotalOverdueAmount,
	} {
		t.AddColumn(col)
	}

	adjusted := 0
	for _, r := range t.Rows {
		days, ok := table.ParseDecimal(r.Str(types.ColArrearsDays))
		if !ok || !days.IsZero() {
			continue
		}
		r.Set(types.ColFirstOverdueDate, types.SentinelNoArrears)
		r.Set(types.ColFirstOverdueInstallment, types.SentinelNoArrears)
		r.Set(types.ColFirstOverdueAmount, "0")
		r.Set(types.ColTotalOverdueAmount, "0")
		adjusted++
	}
	return adjusted
}
