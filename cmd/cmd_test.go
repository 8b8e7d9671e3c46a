package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/portfolio-consolidation/internal/callcenter"
	"github.com/ginjaninja78/portfolio-consolidation/internal/config"
	"github.com/ginjaninja78/portfolio-consolidation/internal/loader"
	"github.com/ginjaninja78/portfolio-consolidation/internal/logging"
	"github.com/ginjaninja78/portfolio-consolidation/internal/pipeline"
	"github.com/ginjaninja78/portfolio-consolidation/internal/registry"
)

func TestPrintClassification(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printClassification(&out, reg, []string{"in/R91 ARPESOD.xlsx", "in/notas.xlsx"}))

	assert.Contains(t, out.String(), "R91 ARPESOD.xlsx")
	assert.Contains(t, out.String(), "(unclassified)")
	assert.Contains(t, out.String(), "2 file(s), 1 unclassified")
}

func TestPrintTypes(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)

	var out bytes.Buffer
	printTypes(&out, reg, true)

	assert.Contains(t, out.String(), "R91 (primary) [flat]")
	assert.Contains(t, out.String(), "MCDZONA")
	assert.Contains(t, out.String(), "sheet Centro Costos")
}

func TestInputFilesPrecedence(t *testing.T) {
	cfg := &config.Config{InputDir: t.TempDir(), InputFiles: []string{"a.xlsx"}}

	files, err := inputFiles(cfg, []string{"b.xlsx"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.xlsx"}, files)

	files, err = inputFiles(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.xlsx"}, files)

	cfg.InputFiles = nil
	files, err = inputFiles(cfg, nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestSummaryEntriesAndPrint(t *testing.T) {
	report := &pipeline.Report{
		RunID: "run-1",
		Outcomes: []loader.FileOutcome{
			{File: "/in/R91 ARPESOD.xlsx", DocumentType: "R91", Status: loader.StatusLoaded, Rows: 3},
			{File: "/in/notas.xlsx", Status: loader.StatusUnclassified, Message: "no document type matches the file name"},
		},
		LedgerRows: 3,
		Rows:       3,
		Buckets:    map[callcenter.Bucket]int{callcenter.BucketCurrent: 2, callcenter.BucketUnknown: 1},
		Absent:     []string{"FNZ003"},
	}
	now := time.Date(2025, time.June, 15, 9, 30, 0, 0, time.UTC)

	entries := summaryEntries(report, now)
	require.Len(t, entries, 2)
	assert.Equal(t, "R91 ARPESOD.xlsx", entries[0].File)
	assert.Equal(t, "run-1", entries[1].RunID)
	assert.Equal(t, "2025-06-15 09:30:00", entries[1].Timestamp)
	assert.Equal(t, loader.StatusUnclassified, entries[1].Status)

	var out bytes.Buffer
	printSummary(&out, report, "", logging.Nop{})
	assert.Contains(t, out.String(), "Run ID:          run-1")
	assert.Contains(t, out.String(), "AL DIA")
	assert.Contains(t, out.String(), "[FNZ003]")
	assert.Contains(t, out.String(), "Dry run")
}
