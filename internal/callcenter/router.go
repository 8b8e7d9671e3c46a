// =============================================================================
// Portfolio Consolidation - Call Center Router
// =============================================================================
//
// Every credit is placed in an arrears bucket by its days overdue:
//
//   0          -> AL DIA
//   (0, 30]    -> 1 A 30 DIAS
//   (30, 90]   -> 31 A 90 DIAS
//   above 90   -> 91 A 360 DIAS
//   otherwise  -> SIN INFO (negative, missing or unparseable)
//
// The zone matrix carries three contact columns per overdue bucket. The
// router copies the set for the credit's bucket into the canonical
// Call_Center_Apoyo, Nombre_Call_Center and Telefono_Call_Center columns
// and then drops the nine bucket-specific columns.
//
// =============================================================================

package callcenter

import (
	"github.com/ginjaninja78/portfolio-consolidation/internal/rules"
	"github.com/ginjaninja78/portfolio-consolidation/internal/table"
	"github.com/ginjaninja78/portfolio-consolidation/internal/types"
)

// Bucket is an arrears bucket label.
type Bucket string

const (
	BucketCurrent Bucket = "AL DIA"
	Bucket1To30   Bucket = "1 A 30 DIAS"
	Bucket31To90  Bucket = "31 A 90 DIAS"
	Bucket91To360 Bucket = "91 A 360 DIAS"
	BucketUnknown Bucket = "SIN INFO"
)

var buckets = rules.New(BucketUnknown,
	rules.When(BucketCurrent, func(d float64) bool { return d == 0 }),
	rules.When(Bucket1To30, rules.Between(0, 30).Contains),
	rules.When(Bucket31To90, rules.Between(30, 90).Contains),
	rules.When(Bucket91To360, rules.Above(90).Contains),
)

// Classify returns the bucket of an arrears-days cell.
func Classify(days string) Bucket {
	d, ok := table.ParseDecimal(days)
	if !ok {
		return BucketUnknown
	}
	return buckets.Eval(d.InexactFloat64())
}

// Contacts names the matrix columns holding one bucket's call-center data.
type Contacts struct {
	Support string
	Name    string
	Phone   string
}

// MatrixContacts maps each overdue bucket to its matrix columns.
var MatrixContacts = map[Bucket]Contacts{
	Bucket1To30: {
		Support: "call_center_1_30_dias",
		Name:    "call_center_nombre_1_30",
		Phone:   "call_center_telefono_1_30",
	},
	Bucket31To90: {
		Support: "call_center_31_90_dias",
		Name:    "call_center_nombre_31_90",
		Phone:   "call_center_telefono_31_90",
	},
	Bucket91To360: {
		Support: "call_center_91_360_dias",
		Name:    "call_center_nombre_91_360",
		Phone:   "call_center_telefono_91_360",
	},
}

// MatrixColumns returns the nine bucket-specific matrix columns.
func MatrixColumns() []string {
	var cols []string
	for _, b := range []Bucket{Bucket1To30, Bucket31To90, Bucket91To360} {
		c := MatrixContacts[b]
		cols = append(cols, c.Support, c.Name, c.Phone)
	}
	return cols
}

// Route sets Franja_Mora and the call-center contact columns on every row,
// then drops the bucket-specific matrix columns.
//
// RETURNS:
//   - The number of rows per bucket.
func Route(report *table.Table) map[Bucket]int {
	for _, col := range []string{
		types.ColArrearsBucket, types.ColCallCenterSupport,
		types.ColCallCenterName, types.ColCallCenterPhone,
	} {
		report.AddColumn(col)
	}

	counts := make(map[Bucket]int)
	for _, r := range report.Rows {
		bucket := Classify(r.Str(types.ColArrearsDays))
		counts[bucket]++
		r.Set(types.ColArrearsBucket, string(bucket))

		contacts, ok := MatrixContacts[bucket]
		copyCell(r, types.ColCallCenterSupport, contacts.Support, ok)
		copyCell(r, types.ColCallCenterName, contacts.Name, ok)
		copyCell(r, types.ColCallCenterPhone, contacts.Phone, ok)
	}

	report.DropColumns(MatrixColumns()...)
	return counts
}

func copyCell(r table.Row, dst, src string, routed bool) {
	if !routed {
		r.Unset(dst)
		return
	}
	if v, ok := r.Get(src); ok {
		r.Set(dst, v)
	} else {
		r.Unset(dst)
	}
}
