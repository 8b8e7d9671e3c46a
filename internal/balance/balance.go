// =============================================================================
// Portfolio Consolidation - Balance Calculator
// =============================================================================
//
// Balances come from the balance-concept extract: one row per credit and
// concept. Per credit:
//
//   Saldo_Capital           = sum of CAPITAL and ABONO DIF TASA
//   Saldo_Avales            = sum of AVAL               (FINANSUEÑOS only)
//   Saldo_Interes_Corriente = sum of INTERES CORRIENTE  (FINANSUEÑOS only)
//
// An ARPESOD credit without principal concepts falls back to its invoice
// balance from the portfolio analysis. Any other missing balance is 0.
// ARPESOD rows carry "NO APLICA" in the two FINANSUEÑOS-only columns.
//
// All balances are truncated to whole pesos. Negative sums pass through.
//
// =============================================================================

package balance

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/portfolio-consolidation/internal/credit"
	"github.com/ginjaninja78/portfolio-consolidation/internal/table"
	"github.com/ginjaninja78/portfolio-consolidation/internal/types"
)

// Concept names as written in the balance extract.
const (
	ConceptPrincipal       = "CAPITAL"
	ConceptRateAdjustment  = "ABONO DIF TASA"
	ConceptGuarantee       = "AVAL"
	ConceptCurrentInterest = "INTERES CORRIENTE"
)

// Sums holds the concept totals of one credit.
type Sums struct {
	Principal    decimal.Decimal
	HasPrincipal bool
	Guarantee    decimal.Decimal
	Interest     decimal.Decimal
}

// Aggregate sums the concept balances per credit key.
func Aggregate(concepts *table.Table) map[string]*Sums {
	out := make(map[string]*Sums)
	if concepts == nil {
		return out
	}
	for _, r := range concepts.Rows {
		key, ok := r.Get(types.ColCreditKey)
		if !ok {
			continue
		}
		s, ok := out[key]
		if !ok {
			s = &Sums{}
			out[key] = s
		}
		amount := r.Decimal(types.ColConceptBalance)
		switch strings.ToUpper(strings.TrimSpace(r.Str(types.ColConcept))) {
		case ConceptPrincipal, ConceptRateAdjustment:
			s.Principal = s.Principal.Add(amount)
			s.HasPrincipal = true
		case ConceptGuarantee:
			s.Guarantee = s.Guarantee.Add(amount)
		case ConceptCurrentInterest:
			s.Interest = s.Interest.Add(amount)
		}
	}
	return out
}

// Apply writes the three balance columns on every report row. concepts may
// be nil when the extract was not loaded.
func Apply(report, concepts *table.Table) {
	report.AddColumn(types.ColPrincipal)
	report.AddColumn(types.ColGuarantee)
	report.AddColumn(types.ColCurrentInterest)

	sums := Aggregate(concepts)
	for _, r := range report.Rows {
		s := sums[r.Str(types.ColCreditKey)]
		if s == nil {
			s = &Sums{}
		}
		entity := credit.EntityOf(r)

		principal := s.Principal
		if !s.HasPrincipal {
			principal = decimal.Zero
			if entity == types.EntityArpesod {
				principal = r.Decimal(types.ColInvoiceBalance)
			}
		}
		r.Set(types.ColPrincipal, table.FormatInt(principal))

		if entity == types.EntityFinansuenos {
			r.Set(types.ColGuarantee, table.FormatInt(s.Guarantee))
			r.Set(types.ColCurrentInterest, table.FormatInt(s.Interest))
		} else {
			r.Set(types.ColGuarantee, types.SentinelNotApplicable)
			r.Set(types.ColCurrentInterest, types.SentinelNotApplicable)
		}
	}
}

// Outstanding returns the balance a collection target applies to:
// principal, guarantee and interest for FINANSUEÑOS, principal alone for
// ARPESOD. Non-numeric cells count as 0.
func Outstanding(r table.Row) decimal.Decimal {
	total := r.Decimal(types.ColPrincipal)
	if credit.EntityOf(r) == types.EntityFinansuenos {
		total = total.Add(r.Decimal(types.ColGuarantee)).Add(r.Decimal(types.ColCurrentInterest))
	}
	return total
}
