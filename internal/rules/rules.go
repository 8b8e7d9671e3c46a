// =============================================================================
// Portfolio Consolidation - Ordered Rules
// =============================================================================
//
// Several stages classify a value by walking a priority-ordered list of
// conditions: arrears buckets, goal-bucket lookup, sale classification.
// This module models that as an explicit list of (predicate, value) rules
// evaluated top to bottom. The first predicate that holds decides the
// value; when none holds the list's fallback is returned.
//
// USAGE:
//   buckets := rules.New("SIN INFO",
//       rules.When("AL DIA", func(d float64) bool { return d == 0 }),
//       rules.When("1 A 30 DIAS", func(d float64) bool { return d > 0 && d <= 30 }),
//   )
//   label := buckets.Eval(12)
//
// =============================================================================

package rules

// Rule is one (predicate, value) pair.
type Rule[In any, Out any] struct {
	// Test decides whether the rule applies.
	Test func(In) bool

	// Value is returned when Test holds.
	Value Out
}

// When builds a rule.
func When[In any, Out any](value Out, test func(In) bool) Rule[In, Out] {
	return Rule[In, Out]{Test: test, Value: value}
}

// List is an immutable, ordered rule list with a fallback value.
type List[In any, Out any] struct {
	rules    []Rule[In, Out]
	fallback Out
}

// New creates a rule list. Rules are evaluated in the order given.
func New[In any, Out any](fallback Out, rules ...Rule[In, Out]) *List[In, Out] {
	return &List[In, Out]{
		rules:    append([]Rule[In, Out](nil), rules...),
		fallback: fallback,
	}
}

// Match returns the value of the first rule whose predicate holds, and
// whether any rule matched.
func (l *List[In, Out]) Match(in In) (Out, bool) {
	for _, r := range l.rules {
		if r.Test(in) {
			return r.Value, true
		}
	}
	return l.fallback, false
}

// Eval returns the value of the first matching rule, or the fallback.
func (l *List[In, Out]) Eval(in In) Out {
	out, _ := l.Match(in)
	return out
}

// Index returns the position of the first matching rule, or -1.
func (l *List[In, Out]) Index(in In) int {
	for i, r := range l.rules {
		if r.Test(in) {
			return i
		}
	}
	return -1
}

// Len returns the number of rules.
func (l *List[In, Out]) Len() int {
	return len(l.rules)
}

// Range is a half-open numeric interval (Low, High]. A nil bound is
// unbounded on that side.
type Range struct {
	Low  *float64
	High *float64
}

// Between returns the range (low, high].
func Between(low, high float64) Range {
	return Range{Low: &low, High: &high}
}

// Above returns the range (low, +inf).
func Above(low float64) Range {
	return Range{Low: &low}
}

// Contains reports whether v falls in the range.
func (r Range) Contains(v float64) bool {
	if r.Low != nil && v <= *r.Low {
		return false
	}
	if r.High != nil && v > *r.High {
		return false
	}
	return true
}
