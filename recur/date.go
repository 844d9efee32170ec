package recur

import (
	"time"
)

// =============================================================================
// DATE - Calendar-day abstraction (all stride arithmetic happens on these)
// =============================================================================

// Date is a calendar day: an instant normalized to the start of its day in an
// explicit location. Every rule computation works on Dates, never on raw
// instants, so hour/minute noise can't corrupt equality or ordering.
type Date struct {
	Time time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int, loc *time.Location) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, loc)}
}

// DateOf normalizes an instant to the start of its calendar day in loc.
// Idempotent: DateOf(d.Time, loc) == d.
func DateOf(t time.Time, loc *time.Location) Date {
	local := t.In(loc)
	return NewDate(local.Year(), local.Month(), local.Day(), loc)
}

func Today(loc *time.Location) Date {
	return DateOf(time.Now(), loc)
}

// Comparison
func (d Date) Before(other Date) bool        { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool         { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool         { return d.Time.Equal(other.Time) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

// Arithmetic. Results are re-normalized to start of day so DST transitions
// can't leave a Date mid-day.
func (d Date) AddDays(n int) Date   { return d.renormalize(d.Time.AddDate(0, 0, n)) }
func (d Date) AddMonths(n int) Date { return d.renormalize(d.Time.AddDate(0, n, 0)) }
func (d Date) AddYears(n int) Date  { return d.renormalize(d.Time.AddDate(n, 0, 0)) }

func (d Date) renormalize(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day(), t.Location())
}

// Properties
func (d Date) Year() int             { return d.Time.Year() }
func (d Date) Month() time.Month     { return d.Time.Month() }
func (d Date) Day() int              { return d.Time.Day() }
func (d Date) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Date) Location() *time.Location { return d.Time.Location() }
func (d Date) IsZero() bool          { return d.Time.IsZero() }

func (d Date) String() string { return d.Time.Format("2006-01-02") }

// At returns the instant at the given clock time on this day, in the date's
// own location. Used by callers that turn due dates into alert times.
func (d Date) At(hour, minute int) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, d.Location())
}

// =============================================================================
// CALENDAR UTILITIES
// =============================================================================

// DaysBetween returns the calendar-day delta from..to. Both dates are
// re-projected onto UTC midnights first so a DST transition between them
// can't skew the count by an hour.
func DaysBetween(from, to Date) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampedDate builds the date year/month/day, reducing day to the last valid
// day of the month when the nominal day does not exist (Jan 31 -> Feb 29/28).
// It never overflows into the next month.
func ClampedDate(year int, month time.Month, day int, loc *time.Location) Date {
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return NewDate(year, month, day, loc)
}
