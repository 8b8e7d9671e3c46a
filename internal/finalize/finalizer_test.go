package finalize

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/portfolio-consolidation/internal/table"
	"github.com/ginjaninja78/portfolio-consolidation/internal/types"
)

func TestFinalize(t *testing.T) {
	tb := table.New("report",
		"Extra", types.ColCreditKey, types.ColEntity,
		types.ColCurrentInstallmentDate, types.ColFirstOverdueDate, types.ColInvoiceDate,
		types.ColBucketGoalPercent, types.ColCollectionPercent,
		types.ColInvoiceBalance, "Cedula_Cliente_R03", "Zona_Analisis", "Telefono_Venc", "Nombre_Vendedor_Asesores")
	tb.Rows = []table.Row{
		{
			"Extra": "x", types.ColCreditKey: "DF-1", types.ColEntity: string(types.EntityFinansuenos),
			types.ColCurrentInstallmentDate: "45828", types.ColFirstOverdueDate: "2025-05-10",
			types.ColInvoiceDate: "garbage",
			types.ColBucketGoalPercent: "0.2", types.ColCollectionPercent: "0.125",
			types.ColInvoiceBalance: "1", "Cedula_Cliente_R03": "1",
		},
		{
			types.ColCreditKey: "AR-1", types.ColEntity: string(types.EntityArpesod),
			types.ColFirstOverdueDate: types.SentinelNoArrears,
			types.ColTotalOverdueAmount: "0", types.ColBucketGoalPercent: "n/a",
		},
	}

	Finalize(tb, nil)

	df := tb.Rows[0]
	assert.Equal(t, "20/06/2025", df.Str(types.ColCurrentInstallmentDate))
	assert.Equal(t, "10/05/2025", df.Str(types.ColFirstOverdueDate))
	assert.True(t, df.IsNull(types.ColInvoiceDate))
	assert.Equal(t, "20%", df.Str(types.ColBucketGoalPercent))
	assert.Equal(t, "13%", df.Str(types.ColCollectionPercent))
	assert.Equal(t, types.SentinelExpiredTerm, df.Str(types.ColCurrentInstallment))
	assert.Equal(t, "0", df.Str(types.ColTotalOverdueAmount))

	ar := tb.Rows[1]
	assert.Equal(t, types.SentinelExpiredTerm, ar.Str(types.ColCurrentInstallmentDate))
	assert.Equal(t, types.SentinelNoArrears, ar.Str(types.ColFirstOverdueDate))
	assert.Equal(t, types.SentinelNoArrears, ar.Str(types.ColFirstOverdueInstallment))
	assert.True(t, ar.IsNull(types.ColBucketGoalPercent))

	for _, helper := range []string{types.ColInvoiceBalance, "Cedula_Cliente_R03", "Zona_Analisis", "Telefono_Venc", "Nombre_Vendedor_Asesores"} {
		assert.False(t, tb.Has(helper), helper)
	}

	require.NotEmpty(t, tb.Columns)
	assert.Equal(t, types.ColEntity, tb.Columns[0])
	assert.Equal(t, "Extra", tb.Columns[len(tb.Columns)-1])
}

func TestFinalizeCustomOrder(t *testing.T) {
	tb := table.New("report", "A", "B", "C")
	Finalize(tb, []string{"C", "Missing", "A"})

	assert.Equal(t, []string{"C", "A"}, tb.Columns[:2])
	assert.Contains(t, tb.Columns, "B")
	assert.Contains(t, tb.Columns, types.ColTotalOverdueAmount)
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "20%", FormatPercent(decimal.RequireFromString("0.2")))
	assert.Equal(t, "0%", FormatPercent(decimal.Zero))
	assert.Equal(t, "100%", FormatPercent(decimal.NewFromInt(1)))
}

func TestFilterByDate(t *testing.T) {
	tb := table.New("report", types.ColCreditKey, types.ColCurrentInstallmentDate)
	tb.Rows = []table.Row{
		{types.ColCreditKey: "A", types.ColCurrentInstallmentDate: "01/06/2025"},
		{types.ColCreditKey: "B", types.ColCurrentInstallmentDate: "30/06/2025"},
		{types.ColCreditKey: "C", types.ColCurrentInstallmentDate: "01/07/2025"},
		{types.ColCreditKey: "D"},
		{types.ColCreditKey: "E", types.ColCurrentInstallmentDate: "31/05/2025"},
	}
	start := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.June, 30, 18, 0, 0, 0, time.UTC)

	keys := func(t *table.Table) []string { return t.Values(types.ColCreditKey) }

	assert.Equal(t, []string{"A", "B"}, keys(FilterByDate(tb, &start, &end)))
	assert.Equal(t, []string{"A", "B", "C"}, keys(FilterByDate(tb, &start, nil)))
	assert.Equal(t, tb, FilterByDate(tb, nil, nil))
}
