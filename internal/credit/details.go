package credit

import (
	"github.com/ginjaninja78/portfolio-consolidation/internal/table"
	"github.com/ginjaninja78/portfolio-consolidation/internal/types"
)

// =============================================================================
// CREDIT DETAILS
// =============================================================================
// Installment count, installment value and disbursed amount come from two
// different extracts depending on the entity:
//
//   ARPESOD     : installment plans (SC04), keyed by the sales invoice
//   FINANSUEÑOS : disbursement workbook, keyed by the credit key
//
// Both sources keep the last row per key.

var detailColumns = []string{
	types.ColTotalInstallments,
	types.ColInstallmentValue,
	types.ColDisbursement,
}

// DetailStats counts the rows that received details from each source.
type DetailStats struct {
	FromPlans         int
	FromDisbursements int
}

// PlanDetails converts the installment-plan table into one row per credit
// key, computing the disbursed amount as installment value times count.
// Rows whose invoice reference does not resolve to a credit key are dropped.
func PlanDetails(plans *table.Table) map[string]table.Row {
	out := make(map[string]table.Row, plans.Len())
	if plans == nil {
		return out
	}
	for _, r := range plans.Rows {
		key, ok := InvoiceKey(r.Str(types.ColSalesInvoice))
		if !ok {
			continue
		}
		row := table.Row{}
		value, hasValue := table.ParseDecimal(r.Str(types.ColInstallmentValue))
		count, hasCount := table.ParseDecimal(r.Str(types.ColTotalInstallments))
		if hasValue {
			row.Set(types.ColInstallmentValue, table.FormatDecimal(value))
		}
		if hasCount {
			row.Set(types.ColTotalInstallments, table.FormatDecimal(count))
		}
		if hasValue && hasCount {
			row.Set(types.ColDisbursement, table.FormatDecimal(value.Mul(count)))
		}
		out[key] = row
	}
	return out
}

// DisbursementDetails returns the last disbursement row per credit key.
func DisbursementDetails(disbursements *table.Table) map[string]table.Row {
	out := make(map[string]table.Row, disbursements.Len())
	if disbursements == nil {
		return out
	}
	for _, r := range table.Dedup(disbursements, types.ColCreditKey, table.KeepLast).Rows {
		row := table.Row{}
		for _, col := range detailColumns {
			if v, ok := table.ParseDecimal(r.Str(col)); ok {
				row.Set(col, table.FormatDecimal(v))
			}
		}
		out[r.Str(types.ColCreditKey)] = row
	}
	return out
}

// EnrichDetails sets Total_Cuotas, Valor_Cuota and Valor_Desembolso on the
// report. Either source may be nil. When both are nil the report is left
// untouched.
func EnrichDetails(report, plans, disbursements *table.Table) DetailStats {
	var stats DetailStats
	if plans == nil && disbursements == nil {
		return stats
	}
	for _, col := range detailColumns {
		report.AddColumn(col)
	}

	byInvoice := PlanDetails(plans)
	byCredit := DisbursementDetails(disbursements)

	for _, r := range report.Rows {
		var (
			details table.Row
			found   bool
		)
		switch EntityOf(r) {
		case types.EntityArpesod:
			if plans == nil {
				continue
			}
			details, found = byInvoice[r.Str(types.ColSalesInvoice)]
			if found {
				stats.FromPlans++
			}
		case types.EntityFinansuenos:
			if disbursements == nil {
				continue
			}
			details, found = byCredit[r.Str(types.ColCreditKey)]
			if found {
				stats.FromDisbursements++
			}
		}
		for _, col := range detailColumns {
			if v, ok := details.Get(col); ok {
				r.Set(col, v)
			} else {
				r.Unset(col)
			}
		}
	}
	return stats
}
