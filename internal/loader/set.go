package loader

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ginjaninja78/portfolio-consolidation/internal/registry"
	"github.com/ginjaninja78/portfolio-consolidation/internal/table"
	"github.com/ginjaninja78/portfolio-consolidation/internal/types"
)

// =============================================================================
// DOCUMENT SET
// =============================================================================

// Outcome statuses recorded per input file.
const (
	StatusLoaded       = "loaded"
	StatusPartial      = "partial"
	StatusUnclassified = "unclassified"
	StatusFailed       = "failed"
)

// FileOutcome records what happened to one input file.
type FileOutcome struct {
	File         string
	DocumentType string
	Status       string
	Rows         int
	Message      string
}

// Set holds every document loaded in a run, grouped by table name
// ("R91", "ASESORES/Centro Costos", ...).
type Set struct {
	docs     map[string][]*Document
	Outcomes []FileOutcome
}

func newSet() *Set {
	return &Set{docs: make(map[string][]*Document)}
}

func (s *Set) add(doc *Document) {
	s.docs[doc.Table.Name] = append(s.docs[doc.Table.Name], doc)
}

// Has reports whether any document was loaded under the name.
func (s *Set) Has(name string) bool {
	return len(s.docs[name]) > 0
}

// Table returns the rows of every document loaded under the name, stacked
// in load order. It returns nil when nothing was loaded.
func (s *Set) Table(name string) *table.Table {
	docs := s.docs[name]
	if len(docs) == 0 {
		return nil
	}
	tables := make([]*table.Table, len(docs))
	for i, d := range docs {
		tables[i] = d.Table
	}
	return table.Concat(name, tables...)
}

// SheetTable returns the table of one sheet of a multi-sheet type.
func (s *Set) SheetTable(typeKey, sheet string) *table.Table {
	return s.Table(typeKey + "/" + sheet)
}

// Documents returns the documents loaded under the name.
func (s *Set) Documents(name string) []*Document {
	return s.docs[name]
}

// =============================================================================
// BATCH LOADING
// =============================================================================

// LoadFiles classifies and loads every path.
//
// Unclassified files and failing secondary files are logged, recorded in
// Outcomes, and skipped. A failure on the primary ledger, or a run without
// any primary ledger file, returns a *types.ValidationError.
func (l *Loader) LoadFiles(paths []string, reg *registry.Registry) (*Set, error) {
	set := newSet()
	primary := reg.Primary()

	for _, path := range paths {
		name := filepath.Base(path)
		dt, ok := reg.Classify(name)
		if !ok {
			l.logger.Warn("No document type matches '%s', skipping", name)
			set.Outcomes = append(set.Outcomes, FileOutcome{
				File: path, Status: StatusUnclassified, Message: "no document type matches the file name",
			})
			continue
		}

		docs, err := l.Load(path, dt)
		rows := 0
		for _, d := range docs {
			rows += d.Table.Len()
			set.add(d)
		}

		outcome := FileOutcome{File: path, DocumentType: dt.Key, Status: StatusLoaded, Rows: rows}
		if err != nil {
			outcome.Message = err.Error()
			outcome.Status = StatusFailed
			if len(docs) > 0 {
				outcome.Status = StatusPartial
			}
		}
		set.Outcomes = append(set.Outcomes, outcome)

		if err == nil {
			l.logger.Info("Loaded %s as %s (%d rows)", name, dt.Key, rows)
			continue
		}
		if dt.Primary {
			return set, primaryError(path, dt, err)
		}
		l.logger.Warn("Skipping %s: %v", name, err)
	}

	if !set.Has(primary.Key) {
		return set, &types.ValidationError{
			DocumentType: primary.Key,
			Message:      "no primary ledger file among the inputs",
		}
	}
	return set, nil
}

// primaryError reports a primary ledger failure as a ValidationError.
func primaryError(path string, dt *registry.DocumentType, err error) error {
	var ve *types.ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return &types.ValidationError{
		DocumentType: dt.Key,
		File:         path,
		Message:      fmt.Sprintf("primary ledger could not be loaded: %v", err),
	}
}
