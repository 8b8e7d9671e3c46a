// =============================================================================
// Portfolio Consolidation - In-Memory Table
// =============================================================================
//
// This package provides the tabular structure every pipeline stage works on.
// A Table is an ordered column list plus a slice of rows. A row maps column
// names to text cells; a column that is absent from a row is null.
//
// Keeping cells as text mirrors how the source spreadsheets reach us: every
// stage parses the cells it needs with the typed accessors in values.go and
// writes its results back as canonical text.
//
// =============================================================================

package table

import (
	"fmt"
	"strings"
)

// =============================================================================
// ROW
// =============================================================================

// Row is a single record. A missing key is a null cell.
type Row map[string]string

// Get returns the cell value and whether it is non-null.
func (r Row) Get(col string) (string, bool) {
	v, ok := r[col]
	return v, ok
}

// Str returns the cell value, or "" when null.
func (r Row) Str(col string) string {
	return r[col]
}

// IsNull reports whether the cell is null.
func (r Row) IsNull(col string) bool {
	_, ok := r[col]
	return !ok
}

// Set stores a non-null value.
func (r Row) Set(col, value string) {
	r[col] = value
}

// Unset turns the cell into null.
func (r Row) Unset(col string) {
	delete(r, col)
}

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// =============================================================================
// TABLE
// =============================================================================

// Table is an ordered set of columns and rows.
type Table struct {
	// Name identifies the table in logs and merge errors.
	Name string

	// Columns is the declared column order.
	Columns []string

	// Rows holds the records in input order.
	Rows []Row
}

// New creates an empty table with the given columns.
func New(name string, columns ...string) *Table {
	t := &Table{Name: name}
	for _, c := range columns {
		t.AddColumn(c)
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table is nil or has no rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Has reports whether the column is declared.
func (t *Table) Has(col string) bool {
	if t == nil {
		return false
	}
	return t.index(col) >= 0
}

func (t *Table) index(col string) int {
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Missing returns the columns from cols that are not declared.
func (t *Table) Missing(cols ...string) []string {
	var missing []string
	for _, c := range cols {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Require fails when any of the columns is not declared.
func (t *Table) Require(cols ...string) error {
	if missing := t.Missing(cols...); len(missing) > 0 {
		return fmt.Errorf("table %s is missing required columns [%s]", t.Name, strings.Join(missing, ", "))
	}
	return nil
}

// AddColumn declares a column if it is not already declared.
func (t *Table) AddColumn(col string) {
	if !t.Has(col) {
		t.Columns = append(t.Columns, col)
	}
}

// Append adds a row and declares any new columns it carries.
func (t *Table) Append(row Row) {
	for k := range row {
		if !t.Has(k) {
			t.Columns = append(t.Columns, k)
		}
	}
	t.Rows = append(t.Rows, row)
}

// DropColumns removes the columns from the declaration and from every row.
func (t *Table) DropColumns(cols ...string) {
	drop := make(map[string]bool, len(cols))
	for _, c := range cols {
		drop[c] = true
	}
	kept := t.Columns[:0]
	for _, c := range t.Columns {
		if !drop[c] {
			kept = append(kept, c)
		}
	}
	t.Columns = kept
	for _, r := range t.Rows {
		for c := range drop {
			delete(r, c)
		}
	}
}

// Rename renames columns according to the map. Columns not in the map keep
// their name.
func (t *Table) Rename(renames map[string]string) {
	for i, c := range t.Columns {
		if to, ok := renames[c]; ok {
			t.Columns[i] = to
		}
	}
	for _, r := range t.Rows {
		for from, to := range renames {
			if v, ok := r[from]; ok {
				delete(r, from)
				r[to] = v
			}
		}
	}
}

// Reorder rearranges the columns: the ones in order that exist come first,
// every other column keeps its relative position after them.
func (t *Table) Reorder(order []string) {
	seen := make(map[string]bool, len(order))
	out := make([]string, 0, len(t.Columns))
	for _, c := range order {
		if t.Has(c) && !seen[c] {
			out = append(out, c)
			seen[c] = true
		}
	}
	for _, c := range t.Columns {
		if !seen[c] {
			out = append(out, c)
		}
	}
	t.Columns = out
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := &Table{Name: t.Name, Columns: append([]string(nil), t.Columns...)}
	out.Rows = make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// Filter returns a new table holding the rows that satisfy keep.
// The rows are shared with the receiver.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := &Table{Name: t.Name, Columns: append([]string(nil), t.Columns...)}
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Values returns the column values of every row, "" for null cells.
func (t *Table) Values(col string) []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[col]
	}
	return out
}

// MapColumn rewrites every non-null cell of a column.
func (t *Table) MapColumn(col string, fn func(string) string) {
	for _, r := range t.Rows {
		if v, ok := r[col]; ok {
			r[col] = fn(v)
		}
	}
}

// Concat stacks tables vertically. Columns are the ordered union.
// Nil and empty tables are skipped; the result is never nil.
func Concat(name string, tables ...*Table) *Table {
	out := New(name)
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.Columns {
			out.AddColumn(c)
		}
		out.Rows = append(out.Rows, t.Rows...)
	}
	return out
}
