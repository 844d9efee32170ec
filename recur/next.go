package recur

import (
	"github.com/samber/mo"
)

// =============================================================================
// NEXT-OCCURRENCE LOOKUP
// =============================================================================

// Lookahead horizons per frequency, in days. Each is wide enough that a live
// rule is guaranteed at least one occurrence inside [date, date+horizon), so
// an empty expansion means the rule is genuinely finished, not out of range.
func lookaheadDays(f Frequency) int {
	switch f {
	case Weekly:
		return 8
	case Biweekly:
		return 15
	case Monthly, Semimonthly:
		// Worst case: just missed this month's day in a 31-day month,
		// next fires at the end of the following 31-day month.
		return 63
	case Yearly:
		return 370
	default:
		return 0
	}
}

// NextOnOrAfter returns the earliest occurrence of the rule on or after date,
// or None when the rule never fires again (one-time already passed, or end
// date reached). A date landing exactly on an occurrence is included.
//
// Defined in terms of the same dispatcher every other query uses, so it can
// never disagree with expansion on a boundary case.
func NextOnOrAfter(rule Rule, date Date) mo.Option[Date] {
	if rule.Frequency == OneTime {
		// One-time rules never advance: the anchor either still lies
		// ahead or there is nothing left.
		if rule.Anchor.AfterOrEqual(date) && !rule.ended(rule.Anchor) {
			return mo.Some(rule.Anchor)
		}
		return mo.None[Date]()
	}

	lower := date
	if f := rule.floor(); f.After(lower) {
		lower = f
	}

	horizon := lookaheadDays(rule.Frequency)
	if horizon == 0 {
		return mo.None[Date]()
	}

	occs := Occurrences(rule, Window{Start: lower, End: lower.AddDays(horizon)})
	if len(occs) == 0 {
		return mo.None[Date]()
	}
	return mo.Some(occs[0].Date)
}
