package xlsxparser

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/portfolio-consolidation/internal/config"
)

func TestOpenXLSXReadsAllSheetsRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ASESORES.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "ASESORES"))
	require.NoError(t, f.SetSheetRow("ASESORES", "A1", &[]interface{}{"CODIGO ASESOR", "NOMBRE ASESOR"}))
	require.NoError(t, f.SetSheetRow("ASESORES", "A2", &[]interface{}{1001, "ANA"}))
	_, err := f.NewSheet("Centro Costos")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Centro Costos", "A1", &[]interface{}{"CENTRO DE COSTOS", "FECHA"}))
	require.NoError(t, f.SetSheetRow("Centro Costos", "A2", &[]interface{}{"C1", time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	wb, err := Open(path, config.CSVSettings{})
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, wb.Format)
	assert.Equal(t, []string{"ASESORES", "Centro Costos"}, wb.SheetNames())

	first, ok := wb.First()
	require.True(t, ok)
	assert.Equal(t, "1001", first.Rows[1][0])

	costs, ok := wb.Sheet(" centro costos ")
	require.True(t, ok)
	// Dates are read as serial numbers.
	assert.Equal(t, "45828", costs.Rows[1][1])

	_, ok = wb.Sheet("missing")
	assert.False(t, ok)
}

func TestOpenCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "FNZ003.csv")
	require.NoError(t, os.WriteFile(path, []byte("DESEMBOLSO,NUMERO\nDF,7\n"), 0o644))

	wb, err := Open(path, config.CSVSettings{Delimiter: ","})
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)
	assert.Equal(t, FormatCSV, wb.Format)
	assert.Equal(t, "FNZ003", wb.Sheets[0].Name)
	assert.Equal(t, []string{"DF", "7"}, wb.Sheets[0].Rows[1])
}

func TestOpenErrors(t *testing.T) {
	_, err := Open("report.pdf", config.CSVSettings{})
	assert.Error(t, err)

	_, err = Open(filepath.Join(t.TempDir(), "missing.xlsx"), config.CSVSettings{})
	assert.Error(t, err)

	corrupt := filepath.Join(t.TempDir(), "corrupt.xls")
	require.NoError(t, os.WriteFile(corrupt, []byte("not a workbook"), 0o644))
	_, err = Open(corrupt, config.CSVSettings{})
	assert.Error(t, err)
}

func TestFormatOf(t *testing.T) {
	for path, want := range map[string]Format{
		"a.XLSX": FormatXLSX,
		"a.xlsm": FormatXLSX,
		"a.Xls":  FormatXLS,
		"a.csv":  FormatCSV,
	} {
		got, err := FormatOf(path)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestRowHelpers(t *testing.T) {
	assert.True(t, IsRowEmpty([]string{"", "  "}))
	assert.False(t, IsRowEmpty([]string{"", "x"}))
	assert.Equal(t, []string{"a"}, trimTrailingEmpty([]string{"a", "", " "}))
}
