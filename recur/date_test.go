package recur_test

import (
	"testing"
	"time"

	"github.com/warp/budget-engine/recur"
)

func TestDateOf_NormalizesToStartOfDay(t *testing.T) {
	// GIVEN: An instant with hour/minute noise
	// WHEN: Normalized to a calendar day
	// THEN: The result is midnight, and normalizing again changes nothing

	noisy := time.Date(2024, time.March, 15, 17, 42, 9, 120, time.UTC)
	d := recur.DateOf(noisy, time.UTC)

	if !d.Equal(recur.NewDate(2024, time.March, 15, time.UTC)) {
		t.Fatalf("expected 2024-03-15, got %s", d)
	}
	if again := recur.DateOf(d.Time, time.UTC); !again.Equal(d) {
		t.Errorf("normalization not idempotent: %s vs %s", d, again)
	}
}

func TestDaysBetween(t *testing.T) {
	a := recur.NewDate(2024, time.January, 5, time.UTC)
	b := recur.NewDate(2024, time.January, 19, time.UTC)

	if got := recur.DaysBetween(a, b); got != 14 {
		t.Errorf("expected 14 days, got %d", got)
	}
	if got := recur.DaysBetween(b, a); got != -14 {
		t.Errorf("expected -14 days, got %d", got)
	}
	if got := recur.DaysBetween(a, a); got != 0 {
		t.Errorf("expected 0 days, got %d", got)
	}
}

func TestDaysBetween_AcrossDSTTransition(t *testing.T) {
	// A spring-forward day is only 23 wall-clock hours long; the calendar-day
	// delta must still count it as a full day.
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}

	before := recur.NewDate(2024, time.March, 9, loc)
	after := recur.NewDate(2024, time.March, 11, loc)
	if got := recur.DaysBetween(before, after); got != 2 {
		t.Errorf("expected 2 days across DST transition, got %d", got)
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.February, 29},
		{2025, time.February, 28},
		{2024, time.April, 30},
		{2024, time.December, 31},
	}
	for _, c := range cases {
		if got := recur.DaysInMonth(c.year, c.month); got != c.want {
			t.Errorf("DaysInMonth(%d, %s) = %d, expected %d", c.year, c.month, got, c.want)
		}
	}
}

func TestClampedDate(t *testing.T) {
	// Day 31 in February clamps to the month's last day, never overflowing
	// into March.
	d := recur.ClampedDate(2024, time.February, 31, time.UTC)
	if !d.Equal(recur.NewDate(2024, time.February, 29, time.UTC)) {
		t.Errorf("expected 2024-02-29, got %s", d)
	}

	d = recur.ClampedDate(2025, time.February, 31, time.UTC)
	if !d.Equal(recur.NewDate(2025, time.February, 28, time.UTC)) {
		t.Errorf("expected 2025-02-28, got %s", d)
	}

	// In-range days pass through untouched.
	d = recur.ClampedDate(2024, time.July, 4, time.UTC)
	if !d.Equal(recur.NewDate(2024, time.July, 4, time.UTC)) {
		t.Errorf("expected 2024-07-04, got %s", d)
	}
}

func TestDate_At(t *testing.T) {
	d := recur.NewDate(2024, time.June, 1, time.UTC)
	got := d.At(9, 0)
	want := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}
