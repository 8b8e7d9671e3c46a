package sales

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/portfolio-consolidation/internal/table"
	"github.com/ginjaninja78/portfolio-consolidation/internal/types"
)

func report(rows ...table.Row) *table.Table {
	t := table.New("report", types.ColCreditKey, types.ColEntity)
	t.Rows = rows
	return t
}

func finansuenos(key string) table.Row {
	return table.Row{types.ColCreditKey: key, types.ColEntity: string(types.EntityFinansuenos)}
}

func arpesod(key string) table.Row {
	return table.Row{types.ColCreditKey: key, types.ColEntity: string(types.EntityArpesod)}
}

func detail(rows ...table.Row) *table.Table {
	t := table.New("CRTMP", types.ColCreditKey, types.ColCitizenID, types.ColInvoiceDate,
		types.ColProductName, types.ColSaleTotal, types.ColItemQty)
	t.Rows = rows
	return t
}

func line(key, cedula, date string) table.Row {
	return table.Row{types.ColCreditKey: key, types.ColCitizenID: cedula, types.ColInvoiceDate: date}
}

func TestAssignInvoicesArpesodUsesItsOwnKey(t *testing.T) {
	rep := report(arpesod("AR-9"))
	stats := AssignInvoices(rep, detail())
	assert.Equal(t, "AR-9", rep.Rows[0].Str(types.ColSalesInvoice))
	assert.Zero(t, stats.Unassigned)
}

func TestAssignInvoicesClosestWithinWindow(t *testing.T) {
	rep := report(finansuenos("DF-1"), finansuenos("DF-2"), finansuenos("DF-3"))
	crtmp := detail(
		line("DF-1", "10", "01/06/2025"),
		line("FV-100", "10", "20/06/2025"),
		line("FV-101", "10", "28/05/2025"),
		line("FV-102", "10", "01/08/2025"),
		// Same client, invoice too far away.
		line("DF-2", "20", "01/01/2025"),
		line("FV-200", "20", "15/02/2025"),
		// Different client.
		line("DF-3", "30", "01/06/2025"),
		line("FV-300", "31", "01/06/2025"),
	)

	stats := AssignInvoices(rep, crtmp)

	assert.Equal(t, "FV-101", rep.Rows[0].Str(types.ColSalesInvoice))
	assert.Equal(t, types.SentinelUnassigned, rep.Rows[1].Str(types.ColSalesInvoice))
	assert.Equal(t, types.SentinelUnassigned, rep.Rows[2].Str(types.ColSalesInvoice))
	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, 2, stats.Unassigned)
}

func TestAssignInvoicesTiesGoToEarliestInvoiceRow(t *testing.T) {
	rep := report(finansuenos("DF-1"))
	crtmp := detail(
		line("DF-1", "10", "10/06/2025"),
		line("FV-2", "10", "15/06/2025"),
		line("FV-1", "10", "05/06/2025"),
	)

	AssignInvoices(rep, crtmp)
	assert.Equal(t, "FV-2", rep.Rows[0].Str(types.ColSalesInvoice))
}

func TestAssignInvoicesWindowIsInclusive(t *testing.T) {
	rep := report(finansuenos("DF-1"))
	crtmp := detail(
		line("DF-1", "10", "01/06/2025"),
		line("FV-9", "10", "01/07/2025"),
	)

	AssignInvoices(rep, crtmp)
	assert.Equal(t, "FV-9", rep.Rows[0].Str(types.ColSalesInvoice))
}

func TestAssignInvoicesWithoutDetail(t *testing.T) {
	rep := report(finansuenos("DF-1"), arpesod("AR-1"))
	stats := AssignInvoices(rep, nil)

	assert.True(t, stats.Missing)
	assert.Equal(t, types.SentinelNotAvailable, rep.Rows[0].Str(types.ColSalesInvoice))
	assert.Equal(t, "AR-1", rep.Rows[1].Str(types.ColSalesInvoice))
}

func TestAssignInvoicesUnparseableDates(t *testing.T) {
	rep := report(finansuenos("DF-1"), arpesod("AR-1"))
	stats := AssignInvoices(rep, detail(line("DF-1", "10", "someday"), line("FV-1", "10", "")))

	assert.True(t, stats.DateError)
	assert.Equal(t, types.SentinelDateError, rep.Rows[0].Str(types.ColSalesInvoice))
	assert.Equal(t, "AR-1", rep.Rows[1].Str(types.ColSalesInvoice))
}

func item(key, name, total, qty string) table.Row {
	return table.Row{types.ColCreditKey: key, types.ColProductName: name, types.ColSaleTotal: total, types.ColItemQty: qty}
}

func TestAddProducts(t *testing.T) {
	rep := report(arpesod("AR-1"), finansuenos("DF-1"), arpesod("AR-2"))
	rep.AddColumn(types.ColSalesInvoice)
	rep.Rows[0].Set(types.ColSalesInvoice, "AR-1")
	rep.Rows[1].Set(types.ColSalesInvoice, "FV-7")
	rep.Rows[2].Set(types.ColSalesInvoice, "AR-2")

	crtmp := detail(
		item("AR-1", "NEVERA", "1500000", "1"),
		item("AR-1", "ESTUFA", "800000", "2"),
		item("AR-1", "NEVERA", "1500000", "1"),
		item("AR-1", "LICUADORA", "6000", "1"),
		item("AR-1", "BROKEN", "n/a", "5"),
		item("FV-7", "TV", "2000000", "1.0"),
		item("DF-1", "IGNORED", "9000", "1"),
	)

	AddProducts(rep, crtmp)

	ar := rep.Rows[0]
	assert.Equal(t, "NEVERA, ESTUFA", ar.Str(types.ColProductName))
	assert.Equal(t, "4", ar.Str(types.ColProductQty))
	assert.Equal(t, "LICUADORA", ar.Str(types.ColGiftName))
	assert.Equal(t, "1", ar.Str(types.ColGiftQty))
	assert.Equal(t, "5", ar.Str(types.ColTotalProductQty))

	df := rep.Rows[1]
	assert.Equal(t, "TV", df.Str(types.ColProductName))
	assert.Equal(t, types.SentinelNotApplicable, df.Str(types.ColGiftName))
	assert.Equal(t, "1", df.Str(types.ColTotalProductQty))

	none := rep.Rows[2]
	assert.Equal(t, types.SentinelNotApplicable, none.Str(types.ColProductName))
	assert.Equal(t, "0", none.Str(types.ColProductQty))
}

func TestAddProductsWithoutDetail(t *testing.T) {
	rep := report(arpesod("AR-1"))
	AddProducts(rep, nil)

	r := rep.Rows[0]
	require.Equal(t, types.SentinelNotAvailable, r.Str(types.ColProductName))
	assert.Equal(t, types.SentinelNotAvailable, r.Str(types.ColGiftName))
	assert.Equal(t, "0", r.Str(types.ColTotalProductQty))
}
