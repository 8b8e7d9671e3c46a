// =============================================================================
// Portfolio Consolidation - Goal Metrics Calculator
// =============================================================================
//
// Collection goals combine two sources:
//
//   ledger    : per-credit goal amounts (on time, overdue, arrears)
//   zone goals: per-zone percentages per arrears bucket, plus a total
//               collection percentage
//
// COMPUTED COLUMNS:
//   Meta_General = Meta_DC_Al_Dia + Meta_DC_Atraso + Meta_Atraso
//   Meta_%       = the zone percentage of the credit's arrears bucket
//   Meta_$       = Meta_General x Meta_%
//   Meta_T.R_%   = the zone's total collection percentage
//   Meta_T.R_$   = outstanding balance x Meta_T.R_%
//
// Goal buckets are (0,30], (30,90], (90,180] and (180,360] days. A credit
// outside them has a 0 bucket percentage.
//
// =============================================================================

package goals

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/portfolio-consolidation/internal/balance"
	"github.com/ginjaninja78/portfolio-consolidation/internal/credit"
	"github.com/ginjaninja78/portfolio-consolidation/internal/rules"
	"github.com/ginjaninja78/portfolio-consolidation/internal/table"
	"github.com/ginjaninja78/portfolio-consolidation/internal/types"
)

var hundred = decimal.NewFromInt(100)

// NormalizePercent reads percentage-like text as a fraction.
//
// "19%", "19" and "0,19" all yield 0.19. A value above 1 is read as a whole
// percentage and divided by 100; a value at or below 1 is already a
// fraction. Applying it to its own output returns the same value.
func NormalizePercent(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.Trim(s, "%"))
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if d.GreaterThan(decimal.NewFromInt(1)) {
		d = d.Div(hundred)
	}
	return d, true
}

// bucketColumns are the zone percentage columns, in bucket order.
var bucketColumns = []string{
	types.ColZoneGoal1To30,
	types.ColZoneGoal31To90,
	types.ColZoneGoal91To180,
	types.ColZoneGoal181To360,
}

// goalBuckets maps arrears days to an index into bucketColumns.
var goalBuckets = rules.New(-1,
	rules.When(0, rules.Between(0, 30).Contains),
	rules.When(1, rules.Between(30, 90).Contains),
	rules.When(2, rules.Between(90, 180).Contains),
	rules.When(3, rules.Between(180, 360).Contains),
)

// BucketColumn returns the zone percentage column for the arrears days, or
// "" when the days fall outside every goal bucket.
func BucketColumn(days decimal.Decimal) string {
	i := goalBuckets.Eval(days.InexactFloat64())
	if i < 0 {
		return ""
	}
	return bucketColumns[i]
}

// ZoneGoals indexes the zone percentage table by canonical zone.
type ZoneGoals map[string]table.Row

// NewZoneGoals keeps the first row per zone.
func NewZoneGoals(t *table.Table) ZoneGoals {
	out := make(ZoneGoals)
	if t == nil {
		return out
	}
	for _, r := range t.Rows {
		zone, ok := r.Get(types.ColZone)
		if !ok {
			continue
		}
		zone = credit.CanonicalZone(zone)
		if _, seen := out[zone]; !seen {
			out[zone] = r
		}
	}
	return out
}

// percent returns the normalized percentage of a zone column, 0 when the
// zone or the cell is missing or unparseable.
func (z ZoneGoals) percent(zone, col string) decimal.Decimal {
	if col == "" {
		return decimal.Zero
	}
	r, ok := z[credit.CanonicalZone(zone)]
	if !ok {
		return decimal.Zero
	}
	p, ok := NormalizePercent(r.Str(col))
	if !ok {
		return decimal.Zero
	}
	return p
}

// Apply computes the goal columns on every report row. Balances must
// already be set. zoneGoals may be nil, in which case the percentage-based
// columns are 0.
func Apply(report, zoneGoals *table.Table) {
	for _, col := range []string{
		types.ColGoalOnTime, types.ColGoalOverdue, types.ColGoalArrears,
		types.ColGeneralGoal, types.ColBucketGoalPercent, types.ColBucketGoalAmount,
		types.ColCollectionPercent, types.ColCollectionAmount,
	} {
		report.AddColumn(col)
	}

	zones := NewZoneGoals(zoneGoals)
	for _, r := range report.Rows {
		general := decimal.Zero
		for _, col := range []string{types.ColGoalOnTime, types.ColGoalOverdue, types.ColGoalArrears} {
			v := r.Decimal(col)
			r.Set(col, table.FormatDecimal(v))
			general = general.Add(v)
		}
		r.Set(types.ColGeneralGoal, table.FormatDecimal(general))

		bucket := ""
		if days, ok := table.ParseDecimal(r.Str(types.ColArrearsDays)); ok {
			bucket = BucketColumn(days)
		}
		zone := r.Str(types.ColZone)
		bucketPercent := zones.percent(zone, bucket)
		collectionPercent := zones.percent(zone, types.ColZoneCollectionTotal)

		r.Set(types.ColBucketGoalPercent, table.FormatDecimal(bucketPercent))
		r.Set(types.ColBucketGoalAmount, table.FormatDecimal(general.Mul(bucketPercent)))
		r.Set(types.ColCollectionPercent, table.FormatDecimal(collectionPercent))
		r.Set(types.ColCollectionAmount, table.FormatDecimal(balance.Outstanding(r).Mul(collectionPercent)))
	}

	report.DropColumns(append(append([]string(nil), bucketColumns...), types.ColZoneCollectionTotal)...)
}
