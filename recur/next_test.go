package recur_test

import (
	"testing"
	"time"

	"github.com/warp/budget-engine/recur"
)

func assertNext(t *testing.T, r recur.Rule, from, want recur.Date) {
	t.Helper()
	got, ok := recur.NextOnOrAfter(r, from).Get()
	if !ok {
		t.Fatalf("expected next occurrence %s, got none", want)
	}
	if !got.Equal(want) {
		t.Fatalf("expected next occurrence %s, got %s", want, got)
	}
}

func assertNoNext(t *testing.T, r recur.Rule, from recur.Date) {
	t.Helper()
	if got, ok := recur.NextOnOrAfter(r, from).Get(); ok {
		t.Fatalf("expected no next occurrence, got %s", got)
	}
}

func TestNextOnOrAfter_AnchorOnQueryDateIsIncluded(t *testing.T) {
	// A query date landing exactly on an occurrence returns that occurrence,
	// for every frequency.

	anchor := day(2024, time.January, 5)
	for _, freq := range []recur.Frequency{
		recur.OneTime, recur.Weekly, recur.Biweekly, recur.Monthly, recur.Yearly,
	} {
		assertNext(t, rule(freq, anchor, 100), anchor, anchor)
	}
}

func TestNextOnOrAfter_Weekly(t *testing.T) {
	r := rule(recur.Weekly, day(2024, time.January, 5), 100)

	// Mid-week query advances to the next Friday.
	assertNext(t, r, day(2024, time.January, 8), day(2024, time.January, 12))

	// Query before the anchor returns the anchor itself.
	assertNext(t, r, day(2023, time.June, 1), day(2024, time.January, 5))
}

func TestNextOnOrAfter_BiweeklyAlignment(t *testing.T) {
	// GIVEN: Biweekly anchored Jan 5
	// WHEN: Querying from the off-week Friday (Jan 12)
	// THEN: Jan 19, not Jan 12

	r := rule(recur.Biweekly, day(2024, time.January, 5), 100)
	assertNext(t, r, day(2024, time.January, 12), day(2024, time.January, 19))
}

func TestNextOnOrAfter_MonthlyClamped(t *testing.T) {
	// GIVEN: Monthly anchored Jan 31
	// WHEN: Querying from Feb 1, 2024
	// THEN: Feb 29, the clamped occurrence

	r := rule(recur.Monthly, day(2024, time.January, 31), 100)
	assertNext(t, r, day(2024, time.February, 1), day(2024, time.February, 29))

	// Just past the clamped day rolls to the next month.
	assertNext(t, r, day(2024, time.March, 1), day(2024, time.March, 31))
}

func TestNextOnOrAfter_Semimonthly(t *testing.T) {
	r := rule(recur.Semimonthly, day(2024, time.January, 5), 100)
	r.FirstDay = 1
	r.SecondDay = 15

	// The first-of-month day fires even though the anchor sits on Jan 5:
	// the anchor identifies the starting month.
	assertNext(t, r, day(2024, time.January, 1), day(2024, time.January, 1))
	assertNext(t, r, day(2024, time.January, 2), day(2024, time.January, 15))
	assertNext(t, r, day(2024, time.January, 16), day(2024, time.February, 1))
}

func TestNextOnOrAfter_Yearly(t *testing.T) {
	r := rule(recur.Yearly, day(2024, time.February, 29), 100)

	// Next year's occurrence clamps to Feb 28.
	assertNext(t, r, day(2024, time.March, 1), day(2025, time.February, 28))
}

func TestNextOnOrAfter_OneTimeNeverAdvances(t *testing.T) {
	r := rule(recur.OneTime, day(2024, time.June, 15), 100)

	assertNext(t, r, day(2024, time.January, 1), day(2024, time.June, 15))
	assertNoNext(t, r, day(2024, time.June, 16))
}

func TestNextOnOrAfter_RespectsEndDate(t *testing.T) {
	// GIVEN: Weekly rule that ended Jan 12
	// WHEN: Querying past the end date
	// THEN: None - the rule never fires again

	end := day(2024, time.January, 12)
	r := rule(recur.Weekly, day(2024, time.January, 5), 100)
	r.End = &end

	assertNext(t, r, day(2024, time.January, 10), day(2024, time.January, 12))
	assertNoNext(t, r, day(2024, time.January, 13))
}

func TestNextOnOrAfter_AgreesWithExpansion(t *testing.T) {
	// The lookup must land on exactly the first date expansion would emit,
	// for every frequency and a spread of query dates.

	semimonthly := rule(recur.Semimonthly, day(2024, time.January, 5), 100)
	semimonthly.FirstDay, semimonthly.SecondDay = 3, 18

	rules := []recur.Rule{
		rule(recur.Weekly, day(2024, time.January, 5), 100),
		rule(recur.Biweekly, day(2024, time.January, 5), 100),
		rule(recur.Monthly, day(2024, time.January, 31), 100),
		rule(recur.Yearly, day(2024, time.February, 29), 100),
		semimonthly,
	}

	for _, r := range rules {
		probe := day(2024, time.January, 1)
		for i := 0; i < 90; i++ {
			next, ok := recur.NextOnOrAfter(r, probe).Get()

			// Reference answer: first occurrence in a wide window.
			wide := recur.Occurrences(r, window(probe, probe.AddDays(400)))
			if len(wide) == 0 {
				if ok {
					t.Fatalf("%s from %s: lookup found %s, expansion found nothing",
						r.Frequency, probe, next)
				}
			} else if !ok || !next.Equal(wide[0].Date) {
				t.Fatalf("%s from %s: lookup disagrees with expansion (%v vs %s)",
					r.Frequency, probe, next, wide[0].Date)
			}
			probe = probe.AddDays(1)
		}
	}
}
