// Package selection tracks a single contiguous range of playlist numbers.
//
// A Selection holds at most two bounds. Clicking one entry starts a pending
// selection, clicking a second entry completes the range, and clicking while
// a range is complete starts over at the clicked entry.
package selection

import (
	"fmt"
	"strconv"

	"github.com/samber/lo"
)

// Bound is an optional playlist number.
type Bound struct {
	Value int
	Valid bool
}

// Some returns a present bound.
func Some(n int) Bound {
	return Bound{Value: n, Valid: true}
}

// None is the absent bound.
var None = Bound{}

func (b Bound) String() string {
	if !b.Valid {
		return "-"
	}
	return strconv.Itoa(b.Value)
}

// Rule decides which values take part when a pending selection is completed.
type Rule int

const (
	// RuleTruthy drops absent values and the value 0. This reproduces the
	// behaviour of the existing web client, where 0 can never be the first
	// endpoint of a range.
	RuleTruthy Rule = iota
	// RulePresent drops absent values only.
	RulePresent
)

func (r Rule) keeps(b Bound) bool {
	if r == RulePresent {
		return b.Valid
	}
	return b.Valid && b.Value != 0
}

// Selection is the zero, one or two bound state. When both bounds are
// present start <= end. The zero value is the empty selection.
type Selection struct {
	start Bound
	end   Bound
}

// New builds a selection from explicit bounds.
func New(start, end Bound) (Selection, error) {
	if start.Valid && end.Valid && start.Value > end.Value {
		return Selection{}, fmt.Errorf("start %d is after end %d", start.Value, end.Value)
	}
	return Selection{start: start, end: end}, nil
}

// Single returns a pending selection of n.
func Single(n int) Selection {
	return Selection{start: Some(n)}
}

func (s Selection) Start() Bound { return s.start }
func (s Selection) End() Bound   { return s.end }

func (s Selection) IsEmpty() bool {
	return !s.start.Valid && !s.end.Valid
}

// IsRange reports whether both bounds are present.
func (s Selection) IsRange() bool {
	return s.start.Valid && s.end.Valid
}

// Clear returns the empty selection.
func (s Selection) Clear() Selection {
	return Selection{}
}

// Toggle applies a click on playlist number n using RuleTruthy.
func (s Selection) Toggle(n int) Selection {
	return s.ToggleBy(RuleTruthy, n)
}

// ToggleBy applies a click on playlist number n.
func (s Selection) ToggleBy(rule Rule, n int) Selection {
	if s.IsEmpty() || s.IsRange() {
		return Single(n)
	}

	kept := lo.FilterMap([]Bound{s.start, s.end, Some(n)}, func(b Bound, _ int) (int, bool) {
		return b.Value, rule.keeps(b)
	})
	if len(kept) == 0 {
		return Selection{}
	}
	low, high := lo.Min(kept), lo.Max(kept)
	if low == high {
		return Selection{}
	}
	return Selection{start: Some(low), end: Some(high)}
}

// Contains reports whether playlist number n is selected.
func (s Selection) Contains(n int) bool {
	return IsSelected(n, s.start, s.end)
}

// IsSelected is true for every n inside [start, end] when both bounds are
// present, otherwise only for n equal to a present bound.
func IsSelected(n int, start, end Bound) bool {
	if start.Valid && end.Valid {
		return n >= start.Value && n <= end.Value
	}
	return (start.Valid && n == start.Value) || (end.Valid && n == end.Value)
}

// Count returns how many playlist numbers the selection spans.
func (s Selection) Count() int {
	switch {
	case s.IsRange():
		return s.end.Value - s.start.Value + 1
	case s.IsEmpty():
		return 0
	default:
		return 1
	}
}

func (s Selection) String() string {
	return fmt.Sprintf("(%s, %s)", s.start, s.end)
}
