/*
Package recur is the recurrence engine: it turns a recurring financial event
(an income deposit, a bill due date) into the concrete calendar dates it falls
on inside a query window.

PURPOSE:
  Budget projection, reminder planning, and period filtering all need the same
  answer: "on which days does this rule fire?" Historically each call site
  carried its own stride math and they drifted. This package is the single
  implementation all three consume.

KEY CONCEPTS IN THIS FILE (rule.go):
  - Rule: an immutable recurrence description (anchor + frequency + amount)
  - Occurrence: one concrete day an instance of the rule falls on
  - Window: a half-open [Start, End) interval of calendar days

DESIGN PRINCIPLES:
  1. Statelessness: every query is a pure function of (rule, window)
  2. Precision: amounts are decimal.Decimal, never floats - no cent drift
  3. Totality: no query returns an error; malformed input clamps or yields
     an empty result, so callers can sit in render paths without error plumbing
  4. Bounded work: every stride loop has a fixed iteration cap

USAGE:
  rule := recur.Rule{
      ID:        "bill-42",
      Name:      "Rent",
      Frequency: recur.Monthly,
      Anchor:    recur.NewDate(2024, time.January, 31, time.UTC),
      Amount:    decimal.NewFromInt(1800),
  }
  occs := recur.Occurrences(rule, window)

SEE ALSO:
  - expand.go: striders and the unified dispatcher
  - next.go:   next-occurrence lookup
  - totals.go: period containment and amount totals
*/
package recur

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// FREQUENCY
// =============================================================================

type Frequency string

const (
	OneTime     Frequency = "one_time"
	Weekly      Frequency = "weekly"
	Biweekly    Frequency = "biweekly"
	Monthly     Frequency = "monthly"
	Semimonthly Frequency = "semimonthly"
	Yearly      Frequency = "yearly"
)

// IsValid reports whether f is one of the known frequencies.
func (f Frequency) IsValid() bool {
	switch f {
	case OneTime, Weekly, Biweekly, Monthly, Semimonthly, Yearly:
		return true
	}
	return false
}

// =============================================================================
// RULE - Immutable recurrence description
// =============================================================================

// Rule describes one recurring financial event. The engine holds no state:
// callers rebuild rules from durable storage on every query.
//
// Anchor is always treated as a calendar day; striders never look at its
// clock time. End, when set, is inclusive: no occurrence falls strictly
// after it. FirstDay/SecondDay are only meaningful for Semimonthly and are
// clamped into [1, 28] before use.
type Rule struct {
	ID        string
	Name      string
	Frequency Frequency
	Anchor    Date
	End       *Date
	FirstDay  int
	SecondDay int
	Amount    decimal.Decimal
}

// ended reports whether d falls strictly after the rule's end date.
func (r Rule) ended(d Date) bool {
	return r.End != nil && d.After(*r.End)
}

// floor is the earliest date the rule may fire. For semimonthly rules the
// anchor identifies the starting MONTH, so both configured days fire from
// the first of that month; every other frequency floors at the anchor itself.
func (r Rule) floor() Date {
	if r.Frequency == Semimonthly {
		return NewDate(r.Anchor.Year(), r.Anchor.Month(), 1, r.Anchor.Location())
	}
	return r.Anchor
}

// clampSemimonthlyDay forces a semimonthly day-of-month into [1, 28] so both
// days exist in every month. Permissive on purpose: out-of-range input clamps
// rather than rejects.
func clampSemimonthlyDay(day int) int {
	if day < 1 {
		return 1
	}
	if day > 28 {
		return 28
	}
	return day
}

// =============================================================================
// OCCURRENCE - One concrete day an instance of a rule falls on
// =============================================================================

// Occurrence is derived and ephemeral: produced by expansion, owned by the
// caller for the duration of a query, never persisted by this package.
type Occurrence struct {
	RuleID    string
	Name      string
	Date      Date
	Amount    decimal.Decimal
	Frequency Frequency
}

// =============================================================================
// WINDOW - Half-open [Start, End) interval of calendar days
// =============================================================================

// Window is half-open so adjacent periods never double-count a boundary day.
// An inverted window (Start after End) is legal and simply contains nothing.
type Window struct {
	Start Date
	End   Date
}

func NewWindow(start, end Date) Window { return Window{Start: start, End: end} }

// Contains returns true if d is inside [Start, End).
func (w Window) Contains(d Date) bool {
	return d.AfterOrEqual(w.Start) && d.Before(w.End)
}

// IsEmpty reports whether the window contains no days at all.
func (w Window) IsEmpty() bool { return !w.Start.Before(w.End) }

func (w Window) String() string {
	return "[" + w.Start.String() + ", " + w.End.String() + ")"
}
