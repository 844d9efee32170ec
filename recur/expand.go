/*
expand.go - Occurrence striders and the unified dispatcher

PURPOSE:
  Enumerates the concrete dates a rule fires on inside a half-open window.
  One strider per frequency family:
    - weekly/biweekly: weekday-aligned day stepping
    - monthly:         day-of-month with per-month clamping
    - yearly:          month+day with Feb-29 clamping
    - semimonthly:     the monthly strider run twice
    - one-time:        at most the anchor

  Occurrences() is the ONLY entry point external callers should use.
  Next-occurrence lookup and period totals are both defined on top of it,
  so projection, reminders, and filtering can never disagree.

BOUNDED WORK:
  Every stride loop has a fixed iteration cap. Reaching a cap truncates the
  result silently: the caps are a termination guarantee for adversarial
  inputs (window decades away from the anchor), not an error condition.

    weekly/biweekly: 520 cycles (~10 years weekly)
    monthly:         240 cycles (~20 years)
    yearly:          50 cycles

FEB-29 POLICY:
  A yearly rule anchored on Feb 29 clamps to the last valid day of February
  in non-leap years (Feb 28). The clamp is applied uniformly; the rule never
  skips a year.

SEE ALSO:
  - rule.go:   Rule, Occurrence, Window
  - next.go:   NextOnOrAfter built on this dispatcher
  - totals.go: TotalAmount / Occurs built on this dispatcher
*/
package recur

// Iteration caps. Termination guarantees, not tunables.
const (
	maxWeeklyCycles  = 520
	maxMonthlyCycles = 240
	maxYearlyCycles  = 50
)

// =============================================================================
// UNIFIED DISPATCHER
// =============================================================================

// Occurrences returns every date the rule fires on inside [window.Start,
// window.End), in ascending order with no duplicates. It is total: inverted
// windows, unknown frequencies, and rules already past their end date all
// yield an empty slice, never an error.
func Occurrences(rule Rule, window Window) []Occurrence {
	if window.IsEmpty() {
		return nil
	}

	var dates []Date
	switch rule.Frequency {
	case OneTime:
		dates = oneTimeDates(rule, window)
	case Weekly:
		dates = weeklyDates(rule, window, 1)
	case Biweekly:
		dates = weeklyDates(rule, window, 2)
	case Monthly:
		dates = monthlyDates(rule, window, rule.Anchor.Day(), rule.Anchor)
	case Semimonthly:
		dates = semimonthlyDates(rule, window)
	case Yearly:
		dates = yearlyDates(rule, window)
	default:
		return nil
	}

	occs := make([]Occurrence, 0, len(dates))
	for _, d := range dates {
		occs = append(occs, Occurrence{
			RuleID:    rule.ID,
			Name:      rule.Name,
			Date:      d,
			Amount:    rule.Amount,
			Frequency: rule.Frequency,
		})
	}
	return occs
}

// =============================================================================
// ONE-TIME
// =============================================================================

func oneTimeDates(rule Rule, window Window) []Date {
	if rule.ended(rule.Anchor) || !window.Contains(rule.Anchor) {
		return nil
	}
	return []Date{rule.Anchor}
}

// =============================================================================
// WEEKLY / BIWEEKLY STRIDER
// =============================================================================

// weeklyDates steps in units of strideWeeks*7 days from a weekday-aligned
// starting cursor. For biweekly the cursor must additionally be congruent to
// the anchor modulo two weeks; the congruence is computed in WEEKS, not days,
// since weekday alignment already guarantees day alignment.
func weeklyDates(rule Rule, window Window, strideWeeks int) []Date {
	lower := window.Start
	if rule.Anchor.After(lower) {
		lower = rule.Anchor
	}

	// First date on or after the lower bound matching the anchor's weekday.
	offset := (int(rule.Anchor.Weekday()) - int(lower.Weekday()) + 7) % 7
	cursor := lower.AddDays(offset)

	// Biweekly alignment: shift forward one week if the candidate lands on
	// the off week.
	if weeks := DaysBetween(rule.Anchor, cursor) / 7; weeks%strideWeeks != 0 {
		cursor = cursor.AddDays((strideWeeks - weeks%strideWeeks) * 7)
	}

	var dates []Date
	for i := 0; i < maxWeeklyCycles && cursor.Before(window.End); i++ {
		if rule.ended(cursor) {
			break
		}
		if cursor.AfterOrEqual(window.Start) && cursor.AfterOrEqual(rule.Anchor) {
			dates = append(dates, cursor)
		}

		next := cursor.AddDays(strideWeeks * 7)
		if !next.After(cursor) {
			// Calendar arithmetic failed to advance; stop rather than loop.
			break
		}
		cursor = next
	}
	return dates
}

// =============================================================================
// MONTHLY STRIDER (day-of-month clamping)
// =============================================================================

// monthlyDates emits one occurrence per month on min(dom, last day of that
// month). Each month clamps independently: a clamp in February must not
// lower the day for March. floor is the earliest date the rule may fire
// (the anchor for Monthly; the anchor's month start for Semimonthly).
func monthlyDates(rule Rule, window Window, dom int, floor Date) []Date {
	lower := window.Start
	if floor.After(lower) {
		lower = floor
	}

	// Occurrence in the month containing the lower bound, advanced one month
	// if that candidate falls before the bound.
	cursor := ClampedDate(lower.Year(), lower.Month(), dom, lower.Location())
	if cursor.Before(lower) {
		cursor = nextMonthOccurrence(cursor, dom)
	}

	var dates []Date
	for i := 0; i < maxMonthlyCycles && cursor.Before(window.End); i++ {
		if rule.ended(cursor) {
			break
		}
		if cursor.AfterOrEqual(window.Start) && cursor.AfterOrEqual(floor) {
			dates = append(dates, cursor)
		}

		next := nextMonthOccurrence(cursor, dom)
		if !next.After(cursor) {
			break
		}
		cursor = next
	}
	return dates
}

// nextMonthOccurrence computes the following month's occurrence fresh from
// dom and that month's own last day.
func nextMonthOccurrence(cursor Date, dom int) Date {
	first := NewDate(cursor.Year(), cursor.Month(), 1, cursor.Location()).AddMonths(1)
	return ClampedDate(first.Year(), first.Month(), dom, first.Location())
}

// =============================================================================
// SEMIMONTHLY EXPANSION
// =============================================================================

// semimonthlyDates treats the rule as two independent monthly rules, one per
// configured day. Each emitted occurrence carries the FULL per-cycle amount,
// not half; a (1, 15) rule contributes 2x amount to a full month's total.
// The anchor identifies the starting month: both days fire from that month
// on, regardless of which day of it the anchor sits on.
func semimonthlyDates(rule Rule, window Window) []Date {
	floor := rule.floor()

	first := monthlyDates(rule, window, clampSemimonthlyDay(rule.FirstDay), floor)
	second := monthlyDates(rule, window, clampSemimonthlyDay(rule.SecondDay), floor)
	return mergeDates(first, second)
}

// mergeDates merges two ascending date slices, dropping duplicates (both
// semimonthly days clamped to the same date).
func mergeDates(a, b []Date) []Date {
	merged := make([]Date, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j >= len(b) || (i < len(a) && a[i].Before(b[j])):
			merged = append(merged, a[i])
			i++
		case i >= len(a) || b[j].Before(a[i]):
			merged = append(merged, b[j])
			j++
		default: // equal
			merged = append(merged, a[i])
			i++
			j++
		}
	}
	return merged
}

// =============================================================================
// YEARLY STRIDER
// =============================================================================

// yearlyDates emits the anchor's month+day once per year. A Feb-29 anchor
// clamps to the last valid day of February in non-leap years.
func yearlyDates(rule Rule, window Window) []Date {
	startYear := window.Start.Year()
	if rule.Anchor.Year() > startYear {
		startYear = rule.Anchor.Year()
	}

	var dates []Date
	for i := 0; i < maxYearlyCycles; i++ {
		candidate := ClampedDate(startYear+i, rule.Anchor.Month(), rule.Anchor.Day(), rule.Anchor.Location())
		if candidate.AfterOrEqual(window.End) || rule.ended(candidate) {
			break
		}
		if candidate.AfterOrEqual(window.Start) && candidate.AfterOrEqual(rule.Anchor) {
			dates = append(dates, candidate)
		}
	}
	return dates
}
