package budget_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/recur"
)

func day(year int, month time.Month, d int) recur.Date {
	return recur.NewDate(year, month, d, time.UTC)
}

func paycheck(freq recur.Frequency, anchor recur.Date, amt int64) recur.Rule {
	return recur.Rule{
		ID: "income-1", Name: "Paycheck", Frequency: freq,
		Anchor: anchor, Amount: decimal.NewFromInt(amt),
	}
}

func bill(id, name string, freq recur.Frequency, anchor recur.Date, amt int64) recur.Rule {
	return recur.Rule{
		ID: id, Name: name, Frequency: freq,
		Anchor: anchor, Amount: decimal.NewFromInt(amt),
	}
}

func TestPayPeriods_Biweekly(t *testing.T) {
	// GIVEN: Biweekly pay anchored Friday Jan 5, 2024
	// WHEN: Deriving 3 periods from Jan 1
	// THEN: Three half-open windows between consecutive paydays

	income := paycheck(recur.Biweekly, day(2024, time.January, 5), 2000)
	periods := budget.PayPeriods(income, day(2024, time.January, 1), 3)

	want := []recur.Window{
		recur.NewWindow(day(2024, time.January, 5), day(2024, time.January, 19)),
		recur.NewWindow(day(2024, time.January, 19), day(2024, time.February, 2)),
		recur.NewWindow(day(2024, time.February, 2), day(2024, time.February, 16)),
	}
	if len(periods) != len(want) {
		t.Fatalf("expected %d periods, got %d: %v", len(want), len(periods), periods)
	}
	for i := range want {
		if !periods[i].Start.Equal(want[i].Start) || !periods[i].End.Equal(want[i].End) {
			t.Errorf("period %d: expected %s, got %s", i, want[i], periods[i])
		}
	}
}

func TestPayPeriods_OneTimeIncomeYieldsNoPeriods(t *testing.T) {
	// A span needs two boundary deposits; a one-time income has one.
	income := paycheck(recur.OneTime, day(2024, time.January, 5), 2000)
	if periods := budget.PayPeriods(income, day(2024, time.January, 1), 3); len(periods) != 0 {
		t.Fatalf("expected no periods, got %d", len(periods))
	}
}

func TestPayPeriods_TruncatesAtScheduleEnd(t *testing.T) {
	// GIVEN: Weekly pay ending Jan 19, 2024 (three deposits: 5th, 12th, 19th)
	// WHEN: Asking for 5 periods
	// THEN: Only 2 come back

	end := day(2024, time.January, 19)
	income := paycheck(recur.Weekly, day(2024, time.January, 5), 2000)
	income.End = &end

	periods := budget.PayPeriods(income, day(2024, time.January, 1), 5)
	if len(periods) != 2 {
		t.Fatalf("expected 2 periods, got %d", len(periods))
	}
}

func TestProject_IncomeBillsLeftover(t *testing.T) {
	// GIVEN: Biweekly pay of 2000 and two bills
	// WHEN: Projecting the first two pay periods of 2024
	// THEN: Each summary's leftover is income minus the bills due inside it

	income := paycheck(recur.Biweekly, day(2024, time.January, 5), 2000)
	rent := bill("bill-1", "Rent", recur.Monthly, day(2024, time.January, 1), 1500)
	gym := bill("bill-2", "Gym", recur.Monthly, day(2024, time.January, 10), 40)

	periods := budget.PayPeriods(income, day(2024, time.January, 1), 2)
	summaries, err := budget.Projector{}.Project(context.Background(),
		[]recur.Rule{income}, []recur.Rule{rent, gym}, periods)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}

	// Period [Jan 5, Jan 19): payday Jan 5, gym Jan 10. Rent (Jan 1) fell
	// before the first payday.
	first := summaries[0]
	if !first.Income.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("period 1 income: expected 2000, got %s", first.Income)
	}
	if !first.Bills.Equal(decimal.NewFromInt(40)) {
		t.Errorf("period 1 bills: expected 40, got %s", first.Bills)
	}
	if !first.Leftover.Equal(decimal.NewFromInt(1960)) {
		t.Errorf("period 1 leftover: expected 1960, got %s", first.Leftover)
	}
	if len(first.BillDates) != 1 || first.BillDates[0].RuleID != "bill-2" {
		t.Errorf("period 1: expected just the gym bill, got %v", first.BillDates)
	}

	// Period [Jan 19, Feb 2): payday Jan 19, rent due Feb 1.
	second := summaries[1]
	if !second.Income.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("period 2 income: expected 2000, got %s", second.Income)
	}
	if !second.Bills.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("period 2 bills: expected 1500, got %s", second.Bills)
	}
	if !second.Leftover.Equal(decimal.NewFromInt(500)) {
		t.Errorf("period 2 leftover: expected 500, got %s", second.Leftover)
	}
}

func TestProject_TotalsMatchEngineFolds(t *testing.T) {
	// Summaries must agree exactly with recur.TotalAmount over the same
	// windows - projection adds no arithmetic of its own.

	income := paycheck(recur.Weekly, day(2024, time.January, 5), 750)
	bills := []recur.Rule{
		bill("bill-1", "Rent", recur.Monthly, day(2024, time.January, 31), 1500),
		bill("bill-2", "Streaming", recur.Monthly, day(2024, time.January, 7), 15),
	}

	periods := budget.PayPeriods(income, day(2024, time.January, 1), 6)
	summaries, err := budget.Projector{}.Project(context.Background(),
		[]recur.Rule{income}, bills, periods)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, s := range summaries {
		wantIncome := recur.TotalAmount([]recur.Rule{income}, s.Period)
		wantBills := recur.TotalAmount(bills, s.Period)
		if !s.Income.Equal(wantIncome) || !s.Bills.Equal(wantBills) {
			t.Errorf("summary %d disagrees with engine folds", i)
		}
		if !s.Leftover.Equal(wantIncome.Sub(wantBills)) {
			t.Errorf("summary %d leftover mismatch", i)
		}
	}
}

func TestProject_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	income := paycheck(recur.Weekly, day(2024, time.January, 5), 750)
	periods := budget.PayPeriods(income, day(2024, time.January, 1), 4)

	if _, err := (budget.Projector{}).Project(ctx, []recur.Rule{income}, nil, periods); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
