package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/portfolio-consolidation/internal/callcenter"
	"github.com/ginjaninja78/portfolio-consolidation/internal/table"
	"github.com/ginjaninja78/portfolio-consolidation/internal/types"
)

var today = time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)

// writeSheet saves a single-sheet workbook and returns its path.
func writeSheet(t *testing.T, dir, name string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &values))
	}
	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func ledgerFile(t *testing.T, dir string) string {
	return writeSheet(t, dir, "R91.xlsx", [][]interface{}{
		{"MCDTIPCRU1", "MCDNUMCRU1", "MCDVINCULA", "VINNOMBRE", "MCDZONA", "VENCODIGO"},
		{"DF", 1, 1010, "ANA", "Z1", "1001"},
		{"DF", 2, 2020, "LUIS", "z1 ", "1002.0"},
		{"AR", 1, 3030, "EVA", "Z2", "9999"},
	})
}

func installmentsFile(t *testing.T, dir string) string {
	return writeSheet(t, dir, "VENCIMIENTOS.xlsx", [][]interface{}{
		{"MCNTIPCRU1", "MCNNUMCRU1", "MCNVINCULA", "SALDODOC", "MCNCUOCRU1", "VENCE", "VINTELEFO3"},
		{"DF", 1, 1010, 50000, 3, "05/06/2025", "3001112233"},
		{"DF", 1, 1010, 50000, 4, "25/06/2025", ""},
	})
}

func analysisFile(t *testing.T, dir string) string {
	return writeSheet(t, dir, "ANALISIS.xlsx", [][]interface{}{
		{"tipo", "numero", "diasatras", "cuotaspag", "direccion"},
		{"DF", 1, 10, 103, "CALLE 1"},
		{"DF", 2, 45, 2, "CALLE 2"},
		{"AR", 1, 0, 5, "CALLE 3"},
	})
}

func goalsFile(t *testing.T, dir string) string {
	return writeSheet(t, dir, "METAS_FRANJAS.xlsx", [][]interface{}{
		{"ZONA", "1 A 30", "31 A 90", "91 A 180", "181 A 360", "T.R"},
		{"Z1", "10%", "20%", "30%", "40%", "50%"},
	})
}

func matrixFile(t *testing.T, dir string) string {
	return writeSheet(t, dir, "MATRIZ_CARTERA.xlsx", [][]interface{}{
		{"MATRIZ"},
		{"ZONA", "COBRADOR"},
		{"Z1", "PEDRO", "300", "NORTE", "GESTOR", "301", "SI", "CC UNO", "311", "SI", "CC DOS", "312"},
	})
}

func salesFile(t *testing.T, dir string) string {
	return writeSheet(t, dir, "CRTMPCONSULTA1.xlsx", [][]interface{}{
		{"TIPO_DOCUM", "NUMERO_DOC", "IDENTIFICA", "FECHA_FACT", "CORREO", "NOMBRE_PRO", "TOTVENTA", "CANTIDAD"},
		{"DF", 1, 1010, "01/03/2025", "ana@example.com", "FINANCIACION", 0, 0},
		{"FV", 77, 1010, "20/03/2025", "", "NEVERA", 1500000, 1},
		{"FV", 77, 1010, "20/03/2025", "", "LICUADORA", 5000, 2},
		{"FV", 78, 1010, "01/06/2025", "", "TV", 900000, 1},
		{"AR", 1, 3030, "01/04/2025", "eva@example.com", "ESTUFA", 700000, 1},
	})
}

func run(t *testing.T, paths []string, mutate ...func(*Options)) (*table.Table, *Report) {
	t.Helper()
	opts := Options{Now: today}
	for _, m := range mutate {
		m(&opts)
	}
	out, report, err := Run(context.Background(), paths, opts)
	require.NoError(t, err)
	return out, report
}

func rowsByKey(t *table.Table) map[string]table.Row {
	out := make(map[string]table.Row, t.Len())
	for _, r := range t.Rows {
		out[r.Str(types.ColCreditKey)] = r
	}
	return out
}

func TestRunOverdueAndNoArrears(t *testing.T) {
	dir := t.TempDir()
	out, report := run(t, []string{ledgerFile(t, dir), installmentsFile(t, dir)})

	require.Equal(t, 3, out.Len())
	assert.Equal(t, 3, report.Rows)
	rows := rowsByKey(out)

	df1 := rows["DF-1"]
	assert.Equal(t, "50000", df1.Str(types.ColTotalOverdueAmount))
	assert.Equal(t, "05/06/2025", df1.Str(types.ColFirstOverdueDate))
	assert.Equal(t, "3", df1.Str(types.ColFirstOverdueInstallment))
	assert.Equal(t, "25/06/2025", df1.Str(types.ColCurrentInstallmentDate))
	assert.Equal(t, "3001112233", df1.Str(types.ColMobile))
	assert.Equal(t, string(types.EntityFinansuenos), df1.Str(types.ColEntity))

	ar1 := rows["AR-1"]
	assert.Equal(t, string(types.EntityArpesod), ar1.Str(types.ColEntity))
	assert.Equal(t, types.SentinelNoArrears, ar1.Str(types.ColFirstOverdueDate))
	assert.Equal(t, types.SentinelNoArrears, ar1.Str(types.ColFirstOverdueInstallment))
	assert.Equal(t, "0", ar1.Str(types.ColTotalOverdueAmount))
	assert.Equal(t, types.SentinelExpiredTerm, ar1.Str(types.ColCurrentInstallmentDate))
	assert.Equal(t, "AR-1", ar1.Str(types.ColSalesInvoice))

	assert.Equal(t, types.ColEntity, out.Columns[0])
	assert.Contains(t, report.Absent, SourceMatrix)
}

func TestRunGoalsAndCallCenter(t *testing.T) {
	dir := t.TempDir()
	out, report := run(t, []string{
		ledgerFile(t, dir), analysisFile(t, dir), goalsFile(t, dir), matrixFile(t, dir),
	})
	rows := rowsByKey(out)

	df2 := rows["DF-2"]
	assert.Equal(t, "20%", df2.Str(types.ColBucketGoalPercent))
	assert.Equal(t, "50%", df2.Str(types.ColCollectionPercent))
	assert.Equal(t, string(callcenter.Bucket31To90), df2.Str(types.ColArrearsBucket))
	assert.Equal(t, "CC DOS", df2.Str(types.ColCallCenterName))
	assert.Equal(t, "Z1", df2.Str(types.ColZone))
	assert.Equal(t, "PEDRO", df2.Str(types.ColCollector))

	df1 := rows["DF-1"]
	assert.Equal(t, "10%", df1.Str(types.ColBucketGoalPercent))
	assert.Equal(t, "CC UNO", df1.Str(types.ColCallCenterName))
	assert.Equal(t, "3", df1.Str(types.ColPaidInstallments))

	ar1 := rows["AR-1"]
	assert.Equal(t, string(callcenter.BucketCurrent), ar1.Str(types.ColArrearsBucket))
	assert.Equal(t, "0%", ar1.Str(types.ColBucketGoalPercent))
	assert.True(t, ar1.IsNull(types.ColCallCenterName))

	for _, col := range callcenter.MatrixColumns() {
		assert.False(t, out.Has(col), col)
	}
	for _, col := range out.Columns {
		assert.NotContains(t, col, "_Analisis")
	}
	assert.Equal(t, 1, report.Buckets[callcenter.Bucket31To90])
}

func TestRunWithoutMatrixStillProducesReport(t *testing.T) {
	dir := t.TempDir()
	out, report := run(t, []string{ledgerFile(t, dir), analysisFile(t, dir)})

	require.Equal(t, 3, out.Len())
	assert.Contains(t, report.Absent, SourceMatrix)
	for _, r := range out.Rows {
		assert.True(t, r.IsNull(types.ColCallCenterSupport))
		assert.True(t, r.IsNull(types.ColCallCenterName))
		assert.True(t, r.IsNull(types.ColCallCenterPhone))
	}
}

func TestRunAnalysisKeepsFirstDuplicate(t *testing.T) {
	for _, order := range [][]int{{0, 1}, {1, 0}} {
		dir := t.TempDir()
		ledger := writeSheet(t, dir, "R91.xlsx", [][]interface{}{
			{"MCDTIPCRU1", "MCDNUMCRU1", "MCDVINCULA", "MCDZONA"},
			{"DF", 5, 1, "Z1"},
		})
		dup := [][]interface{}{
			{"DF", 5, 10, "PRIMERA"},
			{"DF", 5, 99, "SEGUNDA"},
		}
		analysis := writeSheet(t, dir, "ANALISIS.xlsx", [][]interface{}{
			{"tipo", "numero", "diasatras", "direccion"},
			dup[order[0]],
			dup[order[1]],
		})

		out, _ := run(t, []string{ledger, analysis})
		require.Equal(t, 1, out.Len())
		assert.Equal(t, dup[order[0]][3], out.Rows[0].Str(types.ColAddress))
	}
}

func TestRunDuplicateLedgerRowsArePreserved(t *testing.T) {
	dir := t.TempDir()
	ledger := writeSheet(t, dir, "R91.xlsx", [][]interface{}{
		{"MCDTIPCRU1", "MCDNUMCRU1", "MCDVINCULA", "MCDZONA"},
		{"DF", 5, 1, "Z1"},
		{"DF", 5, 1, "Z1"},
	})
	out, report := run(t, []string{ledger, analysisFile(t, dir)})
	assert.Equal(t, 2, out.Len())
	assert.Equal(t, 2, report.LedgerRows)
}

func TestRunSalesInvoicesAndProducts(t *testing.T) {
	dir := t.TempDir()
	out, report := run(t, []string{ledgerFile(t, dir), salesFile(t, dir)})
	rows := rowsByKey(out)

	df1 := rows["DF-1"]
	assert.Equal(t, "FV-77", df1.Str(types.ColSalesInvoice))
	assert.Equal(t, "NEVERA", df1.Str(types.ColProductName))
	assert.Equal(t, "LICUADORA", df1.Str(types.ColGiftName))
	assert.Equal(t, "3", df1.Str(types.ColTotalProductQty))
	assert.Equal(t, "ana@example.com", df1.Str(types.ColEmail))
	assert.Equal(t, "01/03/2025", df1.Str(types.ColInvoiceDate))

	assert.Equal(t, types.SentinelUnassigned, rows["DF-2"].Str(types.ColSalesInvoice))

	ar1 := rows["AR-1"]
	assert.Equal(t, "AR-1", ar1.Str(types.ColSalesInvoice))
	assert.Equal(t, "ESTUFA", ar1.Str(types.ColProductName))

	assert.Equal(t, 1, report.Invoices.Matched)
}

func TestRunWithoutSalesDetail(t *testing.T) {
	dir := t.TempDir()
	out, _ := run(t, []string{ledgerFile(t, dir)})
	rows := rowsByKey(out)

	assert.Equal(t, types.SentinelNotAvailable, rows["DF-1"].Str(types.ColSalesInvoice))
	assert.Equal(t, types.SentinelNotAvailable, rows["DF-1"].Str(types.ColProductName))
	assert.Equal(t, "AR-1", rows["AR-1"].Str(types.ColSalesInvoice))
}

func TestRunActiveAdvisors(t *testing.T) {
	dir := t.TempDir()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "ASESORES"))
	require.NoError(t, f.SetSheetRow("ASESORES", "A1", &[]interface{}{"CODIGO ASESOR", "MOVIL ASESOR"}))
	require.NoError(t, f.SetSheetRow("ASESORES", "A2", &[]interface{}{1001, "3100000000"}))
	require.NoError(t, f.SetSheetRow("ASESORES", "A3", &[]interface{}{"1002", "3200000000"}))
	advisors := filepath.Join(dir, "ASESORES.xlsx")
	require.NoError(t, f.SaveAs(advisors))
	require.NoError(t, f.Close())

	out, report := run(t, []string{ledgerFile(t, dir), advisors})
	rows := rowsByKey(out)

	assert.Equal(t, types.SentinelActiveAdvisor, rows["DF-1"].Str(types.ColAdvisorActive))
	assert.Equal(t, "3100000000", rows["DF-1"].Str(types.ColAdvisorMobile))
	assert.Equal(t, types.SentinelActiveAdvisor, rows["DF-2"].Str(types.ColAdvisorActive))
	assert.Equal(t, types.SentinelInactiveAdvisor, rows["AR-1"].Str(types.ColAdvisorActive))

	// The cost-center sheet is missing from the workbook.
	assert.Contains(t, report.Absent, SourceAdvisors+"/"+SheetCostCenters)
}

func TestRunDateRangeFilter(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)

	out, report := run(t, []string{ledgerFile(t, dir), installmentsFile(t, dir)}, func(o *Options) {
		o.Start, o.End = &start, &end
	})
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "DF-1", out.Rows[0].Str(types.ColCreditKey))
	assert.Equal(t, 1, report.Rows)
	assert.Equal(t, 3, report.LedgerRows)
}

func TestRunProgressCheckpoints(t *testing.T) {
	dir := t.TempDir()
	var percents []int
	run(t, []string{ledgerFile(t, dir)}, func(o *Options) {
		o.Progress = func(_ string, percent int) { percents = append(percents, percent) }
	})
	assert.Equal(t, []int{0, 30, 90, 100}, percents)
}

func TestRunCustomColumnOrder(t *testing.T) {
	dir := t.TempDir()
	out, _ := run(t, []string{ledgerFile(t, dir)}, func(o *Options) {
		o.ColumnOrder = []string{types.ColClientName, types.ColCreditKey}
	})
	assert.Equal(t, []string{types.ColClientName, types.ColCreditKey}, out.Columns[:2])
	assert.Contains(t, out.Columns, types.ColEntity)
}

func TestRunWithoutLedgerIsValidationError(t *testing.T) {
	dir := t.TempDir()
	_, report, err := Run(context.Background(), []string{analysisFile(t, dir)}, Options{Now: today})

	var ve *types.ValidationError
	require.True(t, errors.As(err, &ve))
	require.NotNil(t, report)
	assert.Len(t, report.Outcomes, 1)
}

func TestRunBrokenSecondaryIsSkipped(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "FNZ003.xlsx")
	require.NoError(t, os.WriteFile(broken, []byte("not a workbook"), 0o644))

	out, report := run(t, []string{ledgerFile(t, dir), broken})
	assert.Equal(t, 3, out.Len())
	assert.Contains(t, report.Absent, SourceConcepts)
	assert.Equal(t, "0", rowsByKey(out)["DF-1"].Str(types.ColPrincipal))
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Run(ctx, []string{ledgerFile(t, dir)}, Options{Now: today})
	assert.ErrorIs(t, err, context.Canceled)
}
