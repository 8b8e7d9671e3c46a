// =============================================================================
// Portfolio Consolidation - Enrichment Pipeline
// =============================================================================
//
// This module orchestrates one consolidation run, from the classified input
// files to the finalized report table.
//
// PIPELINE:
//   1. Load and validate every input file
//   2. Normalize credit keys on every loaded table
//   3. Start from the primary ledger, one row per ledger row
//   4. Left-join the secondary sources in a fixed order
//   5. Run the computing stages (invoices, products, details, balances,
//      goals, call center, arrears adjustment)
//   6. Apply the optional date-range filter
//   7. Finalize defaults, formats and column order
//
// ERROR HANDLING:
//   A ValidationError (missing ledger, missing required ledger column) and a
//   MergeError on the ledger side abort the run. Every other failure is
//   recorded in Report.Warnings and the affected source is treated as absent.
//
// The row count never changes between step 3 and step 6: every join is a
// left join against a deduplicated right side.
//
// =============================================================================

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/portfolio-consolidation/internal/arrears"
	"github.com/ginjaninja78/portfolio-consolidation/internal/balance"
	"github.com/ginjaninja78/portfolio-consolidation/internal/callcenter"
	"github.com/ginjaninja78/portfolio-consolidation/internal/config"
	"github.com/ginjaninja78/portfolio-consolidation/internal/credit"
	"github.com/ginjaninja78/portfolio-consolidation/internal/finalize"
	"github.com/ginjaninja78/portfolio-consolidation/internal/goals"
	"github.com/ginjaninja78/portfolio-consolidation/internal/loader"
	"github.com/ginjaninja78/portfolio-consolidation/internal/logging"
	"github.com/ginjaninja78/portfolio-consolidation/internal/registry"
	"github.com/ginjaninja78/portfolio-consolidation/internal/sales"
	"github.com/ginjaninja78/portfolio-consolidation/internal/table"
	"github.com/ginjaninja78/portfolio-consolidation/internal/types"
)

// Source table names, as the loader names them.
const (
	SourceLedger        = "R91"
	SourceAnalysis      = "ANALISIS"
	SourceInstallments  = "VENCIMIENTOS"
	SourceCodebtors     = "R03"
	SourceSales         = "CRTMPCONSULTA1"
	SourceConcepts      = "FNZ003"
	SourcePlans         = "SC04"
	SourceMatrix        = "MATRIZ_CARTERA"
	SourceZoneGoals     = "METAS_FRANJAS"
	SourceAdvisors      = "ASESORES"
	SourceDisbursements = "DESEMBOLSOS_FINANSUEÑOS"

	SheetAdvisors      = "ASESORES"
	SheetCostCenters   = "Centro Costos"
	SheetDisbursements = "Page 001"
)

// =============================================================================
// OPTIONS AND REPORT
// =============================================================================

// ProgressFunc receives coarse progress checkpoints (percent in 0..100).
type ProgressFunc func(message string, percent int)

// Options configures a run.
type Options struct {
	// Now is the reference day for arrears. Zero means time.Now().
	Now time.Time

	// Registry holds the document types. Nil means registry.Default().
	Registry *registry.Registry

	// Logger receives progress and soft-failure messages. Nil discards them.
	Logger logging.Logger

	// Progress, when set, is called at load, enrichment, finalize and done.
	Progress ProgressFunc

	// Start and End bound the optional date-range filter (inclusive).
	Start *time.Time
	End   *time.Time

	// ColumnOrder overrides the canonical report column order.
	ColumnOrder []string

	// CSV controls reading of .csv extracts.
	CSV config.CSVSettings
}

// Report describes a finished run.
type Report struct {
	// RunID identifies the run in logs and output names.
	RunID string

	// Outcomes holds one entry per input file.
	Outcomes []loader.FileOutcome

	// Warnings lists every non-fatal problem met during enrichment.
	Warnings []string

	// Absent lists the secondary sources that were not available.
	Absent []string

	// LedgerRows is the number of rows of the primary ledger.
	LedgerRows int

	// Rows is the number of rows in the final report.
	Rows int

	// Buckets counts report rows per arrears bucket.
	Buckets map[callcenter.Bucket]int

	// Invoices summarizes the sales invoice assignment.
	Invoices sales.InvoiceStats

	// Details summarizes the credit details enrichment.
	Details credit.DetailStats

	// AdjustedArrears is the number of rows reset to "SIN MORA".
	AdjustedArrears int

	// Duration is the wall time of the run.
	Duration time.Duration
}

func (r *Report) warn(logger logging.Logger, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	logger.Warn("%s", msg)
}

// =============================================================================
// PIPELINE
// =============================================================================

// Pipeline runs consolidations with fixed options.
type Pipeline struct {
	opts   Options
	logger logging.Logger
	now    func() time.Time
}

// New creates a pipeline. A nil registry is replaced by the embedded one.
//
// RETURNS:
//   - An error if the embedded registry fails validation.
func New(opts Options) (*Pipeline, error) {
	if opts.Registry == nil {
		reg, err := registry.Default()
		if err != nil {
			return nil, err
		}
		opts.Registry = reg
	}
	p := &Pipeline{opts: opts, logger: logging.OrNop(opts.Logger), now: time.Now}
	if !opts.Now.IsZero() {
		p.now = func() time.Time { return opts.Now }
	}
	return p, nil
}

// Run consolidates the input files with the given options.
func Run(ctx context.Context, paths []string, opts Options) (*table.Table, *Report, error) {
	p, err := New(opts)
	if err != nil {
		return nil, nil, err
	}
	return p.Run(ctx, paths)
}

func (p *Pipeline) progress(message string, percent int) {
	p.logger.Info("[%3d%%] %s", percent, message)
	if p.opts.Progress != nil {
		p.opts.Progress(message, percent)
	}
}

// Run executes the pipeline over the input files.
//
// RETURNS:
//   - The consolidated report table.
//   - The run report. It is returned on failure too, with the outcomes
//     gathered up to that point.
//   - A *types.ValidationError or a primary-side *types.MergeError when the
//     run cannot produce a report, or the context error when cancelled.
func (p *Pipeline) Run(ctx context.Context, paths []string) (*table.Table, *Report, error) {
	startTime := time.Now()
	report := &Report{RunID: uuid.NewString()}
	today := table.Day(p.now())

	// =========================================================================
	// STEP 1: LOAD INPUT FILES
	// =========================================================================

	p.progress("Loading input files", 0)

	set, err := loader.New(p.opts.CSV, p.logger).LoadFiles(paths, p.opts.Registry)
	if set != nil {
		report.Outcomes = set.Outcomes
	}
	if err != nil {
		return nil, report, err
	}
	if err := ctx.Err(); err != nil {
		return nil, report, err
	}

	// =========================================================================
	// STEP 2: NORMALIZE KEYS
	// =========================================================================
	// Each source is stacked (one table per type), keyed, and cached.

	sources := newSources(set)

	ledger := sources.table(SourceLedger)
	if err := ledger.Require(types.ColCreditKey, types.ColCitizenID, types.ColZone); err != nil {
		return nil, report, &types.ValidationError{DocumentType: SourceLedger, Message: err.Error()}
	}
	report.LedgerRows = ledger.Len()

	// =========================================================================
	// STEP 3: ENRICHMENT JOINS
	// =========================================================================

	p.progress("Enriching the credit ledger", 30)

	e := &enricher{report: ledger, run: report, logger: p.logger}

	summary := arrears.Summarize(sources.table(SourceInstallments), today)
	if sources.has(SourceInstallments) {
		e.join(SourceInstallments, summary, table.JoinSpec{Key: types.ColCreditKey, Policy: table.KeepFirst, Suffix: "_Venc"})
	} else {
		e.absent(SourceInstallments)
	}

	e.joinSource(sources, SourceAnalysis, table.JoinSpec{Key: types.ColCreditKey, Policy: table.KeepFirst, Suffix: "_Analisis"})
	e.joinSource(sources, SourceCodebtors, table.JoinSpec{Key: types.ColCitizenID, Policy: table.KeepFirst, Suffix: "_R03"})

	e.canonicalZones(sources.table(SourceMatrix))
	e.joinSource(sources, SourceMatrix, table.JoinSpec{Key: types.ColZone, Policy: table.KeepFirst, Suffix: "_Matriz"})

	e.joinSource(sources, SourceSales, table.JoinSpec{
		Key:     types.ColCreditKey,
		Policy:  table.KeepFirst,
		Columns: []string{types.ColCreditKey, types.ColEmail, types.ColInvoiceDate},
	})

	e.joinAdvisors(sources)

	if err := e.fatal(); err != nil {
		return nil, report, err
	}
	if err := ctx.Err(); err != nil {
		return nil, report, err
	}

	// =========================================================================
	// STEP 4: COMPUTING STAGES
	// =========================================================================

	credit.AssignEntity(ledger)

	salesDetail := sources.table(SourceSales)
	report.Invoices = sales.AssignInvoices(ledger, salesDetail)
	switch {
	case report.Invoices.Missing:
		e.absent(SourceSales)
	case report.Invoices.DateError:
		report.warn(p.logger, "%s has no parseable invoice date; FINANSUEÑOS invoices set to %s", SourceSales, types.SentinelDateError)
	}
	p.logger.Debug("Invoices matched: %d, unassigned: %d", report.Invoices.Matched, report.Invoices.Unassigned)

	sales.AddProducts(ledger, salesDetail)

	plans := sources.table(SourcePlans)
	disbursements := sources.sheet(SourceDisbursements, SheetDisbursements)
	if plans == nil {
		e.absent(SourcePlans)
	}
	if disbursements == nil {
		e.absent(SourceDisbursements)
	}
	report.Details = credit.EnrichDetails(ledger, plans, disbursements)

	arrears.CleanInstallments(ledger)

	concepts := sources.table(SourceConcepts)
	if concepts == nil {
		e.absent(SourceConcepts)
	}
	balance.Apply(ledger, concepts)

	zoneGoals := sources.table(SourceZoneGoals)
	if zoneGoals == nil {
		e.absent(SourceZoneGoals)
	}
	goals.Apply(ledger, zoneGoals)

	report.Buckets = callcenter.Route(ledger)
	report.AdjustedArrears = arrears.Adjust(ledger)

	if err := ctx.Err(); err != nil {
		return nil, report, err
	}

	// =========================================================================
	// STEP 5: FILTER AND FINALIZE
	// =========================================================================

	p.progress("Finalizing the report", 90)

	result := finalize.FilterByDate(ledger, p.opts.Start, p.opts.End)
	if result.Len() != ledger.Len() {
		p.logger.Info("Date filter kept %d of %d rows", result.Len(), ledger.Len())
	}
	finalize.Finalize(result, p.opts.ColumnOrder)
	result.Name = "Consolidado"

	report.Rows = result.Len()
	report.Duration = time.Since(startTime)

	p.progress("Done", 100)
	return result, report, nil
}
