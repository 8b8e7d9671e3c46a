// =============================================================================
// Portfolio Consolidation - Error Taxonomy
// =============================================================================
//
// Four error kinds describe every failure the pipeline can meet:
//
//   ValidationError : a required document, sheet or column is missing.
//                     Fatal, the run aborts before any output is written.
//   LoadError       : one secondary file is unreadable or corrupt.
//                     The file is skipped and the run continues.
//   MergeError      : a join cannot be performed (missing or mismatched key).
//                     Fatal on the primary ledger, otherwise the secondary
//                     source is treated as absent.
//   FormatError     : a non-critical cell cannot be parsed.
//                     The value is coerced to null or its default.
//
// All four are matchable with errors.As.
//
// =============================================================================

package types

import (
	"fmt"
	"strings"
)

// ValidationError reports a missing required document, sheet or column.
type ValidationError struct {
	// DocumentType is the registry key of the offending document.
	DocumentType string

	// File is the input file, when the error is tied to one.
	File string

	// Sheet is the worksheet name, when the error is tied to one.
	Sheet string

	// Missing lists the absent required columns, if any.
	Missing []string

	// Message is a human-readable description.
	Message string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("validation failed")
	if e.DocumentType != "" {
		fmt.Fprintf(&b, " for %s", e.DocumentType)
	}
	if e.File != "" {
		fmt.Fprintf(&b, " (%s", e.File)
		if e.Sheet != "" {
			fmt.Fprintf(&b, ", sheet '%s'", e.Sheet)
		}
		b.WriteString(")")
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing columns [%s]", strings.Join(e.Missing, ", "))
	}
	return b.String()
}

// LoadError reports a secondary file that could not be read.
type LoadError struct {
	File         string
	DocumentType string
	Err          error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s as %s: %v", e.File, e.DocumentType, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// MergeError reports a join that could not be performed.
type MergeError struct {
	// Source is the name of the secondary table being joined.
	Source string

	// Key is the join key column.
	Key string

	// Primary is true when the failing side is the primary ledger.
	Primary bool

	Message string
}

func (e *MergeError) Error() string {
	side := "secondary"
	if e.Primary {
		side = "primary"
	}
	return fmt.Sprintf("merge with %s on '%s' failed (%s side): %s", e.Source, e.Key, side, e.Message)
}

// FormatError reports an unparseable value in a non-critical column.
type FormatError struct {
	Column string
	Value  string
	Kind   string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("cannot parse %q in column '%s' as %s", e.Value, e.Column, e.Kind)
}
