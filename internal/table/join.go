package table

import (
	"fmt"
)

// =============================================================================
// DEDUPLICATION
// =============================================================================

// DedupPolicy selects which row survives when several share a key.
type DedupPolicy int

const (
	// KeepFirst keeps the first row seen for each key.
	KeepFirst DedupPolicy = iota

	// KeepLast keeps the last row seen for each key.
	KeepLast

	// KeepAll disables deduplication.
	KeepAll
)

func (p DedupPolicy) String() string {
	switch p {
	case KeepFirst:
		return "keep-first"
	case KeepLast:
		return "keep-last"
	default:
		return "keep-all"
	}
}

// Dedup returns a new table with one row per key value. Rows whose key is
// null are dropped: a null key can never be joined. The surviving rows keep
// the relative order of their first occurrence.
func Dedup(t *Table, key string, policy DedupPolicy) *Table {
	out := &Table{Name: t.Name, Columns: append([]string(nil), t.Columns...)}
	if policy == KeepAll {
		out.Rows = append(out.Rows, t.Rows...)
		return out
	}

	position := make(map[string]int, len(t.Rows))
	for _, r := range t.Rows {
		k, ok := r[key]
		if !ok {
			continue
		}
		if i, seen := position[k]; seen {
			if policy == KeepLast {
				out.Rows[i] = r
			}
			continue
		}
		position[k] = len(out.Rows)
		out.Rows = append(out.Rows, r)
	}
	return out
}

// =============================================================================
// LEFT JOIN
// =============================================================================

// JoinSpec declares one left join of the enrichment graph.
type JoinSpec struct {
	// Key is the column both tables are joined on.
	Key string

	// Policy is the dedup policy applied to the right table before joining.
	Policy DedupPolicy

	// Suffix is appended to right-side columns that collide with a left-side
	// column. The left-side column keeps its name.
	Suffix string

	// Columns, when non-empty, limits the right table to these columns
	// (the key is always kept).
	Columns []string
}

// LeftJoin joins right onto left. Every left row is preserved in order,
// unmatched left rows get null right-side cells, unmatched right rows are
// dropped. Null keys never match.
//
// The left table is modified in place and returned.
func LeftJoin(left, right *Table, spec JoinSpec) (*Table, error) {
	if spec.Policy == KeepAll {
		return nil, fmt.Errorf("join of %s on '%s' must declare keep-first or keep-last", right.Name, spec.Key)
	}
	if !left.Has(spec.Key) {
		return nil, fmt.Errorf("left table %s has no column '%s'", left.Name, spec.Key)
	}
	if !right.Has(spec.Key) {
		return nil, fmt.Errorf("right table %s has no column '%s'", right.Name, spec.Key)
	}

	// Decide which right columns travel and under what name.
	carry := right.Columns
	if len(spec.Columns) > 0 {
		carry = nil
		for _, c := range spec.Columns {
			if right.Has(c) {
				carry = append(carry, c)
			}
		}
	}
	target := make(map[string]string, len(carry))
	for _, c := range carry {
		if c == spec.Key {
			continue
		}
		name := c
		if left.Has(c) {
			if spec.Suffix == "" {
				return nil, fmt.Errorf("column '%s' of %s collides with %s and the join declares no suffix", c, right.Name, left.Name)
			}
			name = c + spec.Suffix
		}
		target[c] = name
	}

	lookup := make(map[string]Row, right.Len())
	for _, r := range Dedup(right, spec.Key, spec.Policy).Rows {
		lookup[r[spec.Key]] = r
	}

	for _, c := range carry {
		if name, ok := target[c]; ok {
			left.AddColumn(name)
		}
	}
	for _, l := range left.Rows {
		k, ok := l[spec.Key]
		if !ok {
			continue
		}
		r, found := lookup[k]
		if !found {
			continue
		}
		for from, to := range target {
			if v, ok := r[from]; ok {
				l[to] = v
			}
		}
	}
	return left, nil
}
