// =============================================================================
// Portfolio Consolidation - Credit Key Normalizer
// =============================================================================
//
// Every extract identifies a credit by a type code and a number, written in
// slightly different ways: " df" vs "DF", "123" vs "123.0" vs "00123".
// This module reduces them to one canonical CreditKey so the enrichment
// joins line up:
//
//   CreditKey("df ", "123.0") = "DF-123"
//
// The functions here are pure; applying them to their own output returns
// the same value.
//
// =============================================================================

package credit

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/portfolio-consolidation/internal/table"
	"github.com/ginjaninja78/portfolio-consolidation/internal/types"
)

var numericText = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)

// =============================================================================
// PURE FUNCTIONS
// =============================================================================

// Key builds the canonical CreditKey from a credit type and number.
// A number that is not an integral value contributes an empty suffix.
func Key(creditType, number string) string {
	return CreditType(creditType) + "-" + Number(number)
}

// CreditType trims and uppercases a credit-type code.
func CreditType(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Number renders a credit number as plain integer text ("123.0" -> "123",
// "00123" -> "123"). Values that are not integral numbers render as "".
func Number(s string) string {
	n, ok := table.ParseInt(s)
	if !ok {
		return ""
	}
	return decimal.NewFromInt(n).String()
}

// NormalizeKeyText canonicalizes a CreditKey that arrives as one text value
// ("df-00123" -> "DF-123"). Text without a '-' is only trimmed and
// uppercased.
func NormalizeKeyText(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	i := strings.LastIndex(s, "-")
	if i < 0 {
		return s
	}
	number := Number(s[i+1:])
	if number == "" {
		return s
	}
	return Key(s[:i], number)
}

// InvoiceKey turns an installment-plan invoice reference such as
// "001,FV,AR,123" into the CreditKey "AR-123" it belongs to.
// References with fewer than two comma-separated parts yield false.
func InvoiceKey(s string) (string, bool) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 {
		return "", false
	}
	creditType := CreditType(parts[len(parts)-2])
	number := strings.TrimSpace(parts[len(parts)-1])
	if canonical := Number(number); canonical != "" {
		number = canonical
	}
	return creditType + "-" + number, true
}

// CanonicalCode renders numeric-looking codes without float artifacts
// ("1001.0" -> "1001", " 0042 " -> "42"). Anything else, such as a person's
// name or an alphanumeric code, is only trimmed.
func CanonicalCode(s string) string {
	s = strings.TrimSpace(s)
	if !numericText.MatchString(s) {
		return s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	return d.String()
}

// CanonicalZone trims and uppercases a zone name.
func CanonicalZone(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// =============================================================================
// TABLE NORMALIZATION
// =============================================================================

// Normalize derives the CreditKey column on a table that carries both the
// credit type and number, rewriting both parts in canonical form. A table
// that already has a Credito column but lacks the parts gets that column
// canonicalized instead. Other tables pass through unchanged.
//
// Citizen ids are rendered as canonical codes wherever present.
func Normalize(t *table.Table) {
	if t == nil {
		return
	}

	switch {
	case t.Has(types.ColCreditType) && t.Has(types.ColCreditNumber):
		t.AddColumn(types.ColCreditKey)
		for _, r := range t.Rows {
			creditType := CreditType(r.Str(types.ColCreditType))
			number := Number(r.Str(types.ColCreditNumber))
			r.Set(types.ColCreditType, creditType)
			if number != "" {
				r.Set(types.ColCreditNumber, number)
			}
			r.Set(types.ColCreditKey, creditType+"-"+number)
		}
	case t.Has(types.ColCreditKey):
		t.MapColumn(types.ColCreditKey, NormalizeKeyText)
	}

	t.MapColumn(types.ColCitizenID, CanonicalCode)
}

// AssignEntity sets the Empresa column from the credit type. The column is
// always set: entity classification has no third value.
func AssignEntity(t *table.Table) {
	t.AddColumn(types.ColEntity)
	for _, r := range t.Rows {
		creditType, ok := r.Get(types.ColCreditType)
		if !ok {
			creditType = r.Str(types.ColCreditKey)
		}
		r.Set(types.ColEntity, string(types.EntityForCreditType(creditType)))
	}
}

// EntityOf returns the entity recorded on a row.
func EntityOf(r table.Row) types.Entity {
	if r.Str(types.ColEntity) == string(types.EntityFinansuenos) {
		return types.EntityFinansuenos
	}
	return types.EntityArpesod
}
