package pipeline

import (
	"github.com/ginjaninja78/portfolio-consolidation/internal/credit"
	"github.com/ginjaninja78/portfolio-consolidation/internal/loader"
	"github.com/ginjaninja78/portfolio-consolidation/internal/logging"
	"github.com/ginjaninja78/portfolio-consolidation/internal/table"
	"github.com/ginjaninja78/portfolio-consolidation/internal/types"
)

// =============================================================================
// SOURCES
// =============================================================================

// sources hands out the loaded tables, keyed and cached by name.
type sources struct {
	set   *loader.Set
	cache map[string]*table.Table
}

func newSources(set *loader.Set) *sources {
	return &sources{set: set, cache: make(map[string]*table.Table)}
}

func (s *sources) has(name string) bool {
	return s.set.Has(name)
}

// table returns the stacked, key-normalized table, or nil when nothing was
// loaded under the name.
func (s *sources) table(name string) *table.Table {
	if t, ok := s.cache[name]; ok {
		return t
	}
	t := s.set.Table(name)
	if t != nil {
		credit.Normalize(t)
	}
	s.cache[name] = t
	return t
}

func (s *sources) sheet(typeKey, sheet string) *table.Table {
	return s.table(typeKey + "/" + sheet)
}

// =============================================================================
// ENRICHER
// =============================================================================

// enricher applies the left joins onto the working table and records what
// went wrong. The first primary-side merge failure stops further joins.
type enricher struct {
	report *table.Table
	run    *Report
	logger logging.Logger
	err    error
}

func (e *enricher) fatal() error {
	return e.err
}

// absent records a secondary source that is not available.
func (e *enricher) absent(name string) {
	for _, a := range e.run.Absent {
		if a == name {
			return
		}
	}
	e.run.Absent = append(e.run.Absent, name)
	e.logger.Warn("%s not loaded; its columns take their defaults", name)
}

// joinSource joins a loaded source, or records it as absent.
func (e *enricher) joinSource(src *sources, name string, spec table.JoinSpec) {
	right := src.table(name)
	if right == nil {
		e.absent(name)
		return
	}
	e.join(name, right, spec)
}

// join left-joins right onto the working table.
//
// A key missing from the working table is a primary-side MergeError and
// stops the run. Any other join failure is a secondary-side MergeError: it
// is recorded as a warning and the source is treated as absent.
func (e *enricher) join(name string, right *table.Table, spec table.JoinSpec) {
	if e.err != nil {
		return
	}
	if !e.report.Has(spec.Key) {
		e.err = &types.MergeError{
			Source:  name,
			Key:     spec.Key,
			Primary: true,
			Message: "the credit ledger has no such column",
		}
		return
	}
	before := e.report.Len()
	if _, err := table.LeftJoin(e.report, right, spec); err != nil {
		merr := &types.MergeError{Source: name, Key: spec.Key, Message: err.Error()}
		e.run.warn(e.logger, "%v", merr)
		e.absent(name)
		return
	}
	e.logger.Debug("Joined %s on %s (%s, %d right rows)", name, spec.Key, spec.Policy, right.Len())
	if e.report.Len() != before {
		e.err = &types.MergeError{Source: name, Key: spec.Key, Primary: true, Message: "join changed the ledger row count"}
	}
}

// canonicalZones rewrites the zone on both sides of the matrix join.
func (e *enricher) canonicalZones(matrix *table.Table) {
	e.report.MapColumn(types.ColZone, credit.CanonicalZone)
	if matrix != nil {
		matrix.MapColumn(types.ColZone, credit.CanonicalZone)
	}
}

// joinAdvisors joins the advisor and cost-center directories and derives
// Vendedor_Activo. Both directories are optional, as are the ledger's
// advisor and cost-center codes.
func (e *enricher) joinAdvisors(src *sources) {
	directory := src.sheet(SourceAdvisors, SheetAdvisors)
	switch {
	case directory == nil:
		e.absent(SourceAdvisors + "/" + SheetAdvisors)
	case !e.report.Has(types.ColAdvisorCode):
		e.run.warn(e.logger, "ledger has no %s column; advisor directory not joined", types.ColAdvisorCode)
	default:
		e.report.MapColumn(types.ColAdvisorCode, credit.CanonicalCode)
		directory.MapColumn(types.ColAdvisorCode, credit.CanonicalCode)
		e.join(SourceAdvisors+"/"+SheetAdvisors, directory, table.JoinSpec{
			Key: types.ColAdvisorCode, Policy: table.KeepFirst, Suffix: "_Asesores",
		})
		markActiveAdvisors(e.report, directory)
	}

	costCenters := src.sheet(SourceAdvisors, SheetCostCenters)
	switch {
	case costCenters == nil:
		e.absent(SourceAdvisors + "/" + SheetCostCenters)
	case !e.report.Has(types.ColCostCenterCode):
		e.run.warn(e.logger, "ledger has no %s column; cost-center directory not joined", types.ColCostCenterCode)
	default:
		e.report.MapColumn(types.ColCostCenterCode, credit.CanonicalCode)
		costCenters.MapColumn(types.ColCostCenterCode, credit.CanonicalCode)
		e.join(SourceAdvisors+"/"+SheetCostCenters, costCenters, table.JoinSpec{
			Key: types.ColCostCenterCode, Policy: table.KeepFirst, Suffix: "_Asesores",
		})
	}
}

// markActiveAdvisors sets Vendedor_Activo from directory membership.
func markActiveAdvisors(report, directory *table.Table) {
	active := make(map[string]bool, directory.Len())
	for _, r := range directory.Rows {
		if code, ok := r.Get(types.ColAdvisorCode); ok {
			active[code] = true
		}
	}
	report.AddColumn(types.ColAdvisorActive)
	for _, r := range report.Rows {
		if active[r.Str(types.ColAdvisorCode)] {
			r.Set(types.ColAdvisorActive, types.SentinelActiveAdvisor)
		} else {
			r.Set(types.ColAdvisorActive, types.SentinelInactiveAdvisor)
		}
	}
}
