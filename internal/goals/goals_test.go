package goals

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/portfolio-consolidation/internal/table"
	"github.com/ginjaninja78/portfolio-consolidation/internal/types"
)

func TestNormalizePercent(t *testing.T) {
	cases := map[string]string{
		"19%":    "0.19",
		"19":     "0.19",
		" 19 % ": "0.19",
		"0,19":   "0.19",
		"0.19":   "0.19",
		"12,5%":  "0.125",
		"1":      "1",
		"100%":   "1",
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			got, ok := NormalizePercent(in)
			require.True(t, ok)
			assert.True(t, decimal.RequireFromString(want).Equal(got), "got %s", got)

			again, ok := NormalizePercent(got.String())
			require.True(t, ok)
			assert.True(t, got.Equal(again))
		})
	}

	for _, bad := range []string{"", "%", "abc", "1.2.3"} {
		_, ok := NormalizePercent(bad)
		assert.False(t, ok, bad)
	}
}

func TestBucketColumn(t *testing.T) {
	cases := []struct {
		days float64
		want string
	}{
		{0, ""},
		{1, types.ColZoneGoal1To30},
		{30, types.ColZoneGoal1To30},
		{30.5, types.ColZoneGoal31To90},
		{45, types.ColZoneGoal31To90},
		{90, types.ColZoneGoal31To90},
		{91, types.ColZoneGoal91To180},
		{180, types.ColZoneGoal91To180},
		{360, types.ColZoneGoal181To360},
		{361, ""},
		{-4, ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, BucketColumn(decimal.NewFromFloat(c.days)), "%v days", c.days)
	}
}

func zoneTable() *table.Table {
	z := table.New("METAS_FRANJAS", types.ColZone,
		types.ColZoneGoal1To30, types.ColZoneGoal31To90, types.ColZoneGoal91To180,
		types.ColZoneGoal181To360, types.ColZoneCollectionTotal)
	z.Rows = []table.Row{
		{types.ColZone: " z1 ", types.ColZoneGoal1To30: "10%", types.ColZoneGoal31To90: "20%",
			types.ColZoneGoal91To180: "30%", types.ColZoneGoal181To360: "40%", types.ColZoneCollectionTotal: "5"},
		{types.ColZone: "Z1", types.ColZoneGoal31To90: "99%"},
	}
	return z
}

func TestApply(t *testing.T) {
	report := table.New("report", types.ColCreditKey, types.ColEntity, types.ColZone, types.ColArrearsDays,
		types.ColGoalOnTime, types.ColGoalOverdue, types.ColGoalArrears, types.ColPrincipal,
		types.ColGuarantee, types.ColCurrentInterest)
	report.Rows = []table.Row{
		{
			types.ColCreditKey: "DF-1", types.ColEntity: string(types.EntityFinansuenos),
			types.ColZone: "Z1", types.ColArrearsDays: "45",
			types.ColGoalOnTime: "100", types.ColGoalOverdue: "200", types.ColGoalArrears: "x",
			types.ColPrincipal: "1000", types.ColGuarantee: "100", types.ColCurrentInterest: "100",
		},
		{
			types.ColCreditKey: "AR-1", types.ColEntity: string(types.EntityArpesod),
			types.ColZone: "Z9", types.ColArrearsDays: "10", types.ColGoalOnTime: "50",
			types.ColPrincipal: "1000", types.ColGuarantee: types.SentinelNotApplicable,
		},
	}

	Apply(report, zoneTable())

	df := report.Rows[0]
	assert.Equal(t, "0", df.Str(types.ColGoalArrears))
	assert.Equal(t, "300", df.Str(types.ColGeneralGoal))
	assert.Equal(t, "0.2", df.Str(types.ColBucketGoalPercent))
	assert.Equal(t, "60", df.Str(types.ColBucketGoalAmount))
	assert.Equal(t, "0.05", df.Str(types.ColCollectionPercent))
	assert.Equal(t, "60", df.Str(types.ColCollectionAmount))

	ar := report.Rows[1]
	assert.Equal(t, "50", ar.Str(types.ColGeneralGoal))
	assert.Equal(t, "0", ar.Str(types.ColBucketGoalPercent))
	assert.Equal(t, "0", ar.Str(types.ColCollectionAmount))

	assert.False(t, report.Has(types.ColZoneGoal31To90))
	assert.False(t, report.Has(types.ColZoneCollectionTotal))
}

func TestApplyWithoutZoneGoals(t *testing.T) {
	report := table.New("report", types.ColCreditKey, types.ColGoalOnTime)
	report.Rows = []table.Row{{types.ColCreditKey: "AR-1", types.ColGoalOnTime: "10"}}

	Apply(report, nil)

	r := report.Rows[0]
	assert.Equal(t, "10", r.Str(types.ColGeneralGoal))
	assert.Equal(t, "0", r.Str(types.ColBucketGoalPercent))
	assert.Equal(t, "0", r.Str(types.ColCollectionAmount))
}
