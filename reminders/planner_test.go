package reminders_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/budget-engine/recur"
	"github.com/warp/budget-engine/reminders"
)

func day(year int, month time.Month, d int) recur.Date {
	return recur.NewDate(year, month, d, time.UTC)
}

func TestPlan_OneReminderPerDueDate(t *testing.T) {
	// GIVEN: A weekly bill and a three-week window
	// WHEN: Planning with the default 09:00 alert time
	// THEN: One reminder per due date, firing at 09:00 on that day

	rule := recur.Rule{
		ID: "bill-1", Name: "Cleaning", Frequency: recur.Weekly,
		Anchor: day(2024, time.January, 5), Amount: decimal.NewFromInt(60),
	}

	p := reminders.NewPlanner()
	plan := p.Plan(rule, recur.NewWindow(day(2024, time.January, 1), day(2024, time.January, 20)))

	if len(plan) != 3 {
		t.Fatalf("expected 3 reminders, got %d", len(plan))
	}
	wantDue := []recur.Date{
		day(2024, time.January, 5),
		day(2024, time.January, 12),
		day(2024, time.January, 19),
	}
	for i, r := range plan {
		if !r.DueDate.Equal(wantDue[i]) {
			t.Errorf("reminder %d: expected due %s, got %s", i, wantDue[i], r.DueDate)
		}
		want := time.Date(wantDue[i].Year(), wantDue[i].Month(), wantDue[i].Day(), 9, 0, 0, 0, time.UTC)
		if !r.FireAt.Equal(want) {
			t.Errorf("reminder %d: expected fire at %s, got %s", i, want, r.FireAt)
		}
		if r.RuleID != "bill-1" || r.Name != "Cleaning" {
			t.Errorf("reminder %d: rule identity not carried through", i)
		}
	}
}

func TestPlan_CustomAlertTime(t *testing.T) {
	rule := recur.Rule{
		ID: "bill-1", Name: "Rent", Frequency: recur.Monthly,
		Anchor: day(2024, time.January, 1), Amount: decimal.NewFromInt(1500),
	}

	p := &reminders.Planner{AlertHour: 18, AlertMinute: 30}
	plan := p.Plan(rule, recur.NewWindow(day(2024, time.January, 1), day(2024, time.February, 1)))

	if len(plan) != 1 {
		t.Fatalf("expected 1 reminder, got %d", len(plan))
	}
	want := time.Date(2024, time.January, 1, 18, 30, 0, 0, time.UTC)
	if !plan[0].FireAt.Equal(want) {
		t.Errorf("expected fire at %s, got %s", want, plan[0].FireAt)
	}
}

func TestPlanAll_MergedInFireOrder(t *testing.T) {
	rent := recur.Rule{
		ID: "bill-1", Name: "Rent", Frequency: recur.Monthly,
		Anchor: day(2024, time.January, 15), Amount: decimal.NewFromInt(1500),
	}
	water := recur.Rule{
		ID: "bill-2", Name: "Water", Frequency: recur.Monthly,
		Anchor: day(2024, time.January, 3), Amount: decimal.NewFromInt(30),
	}

	p := reminders.NewPlanner()
	plan := p.PlanAll([]recur.Rule{rent, water},
		recur.NewWindow(day(2024, time.January, 1), day(2024, time.March, 1)))

	if len(plan) != 4 {
		t.Fatalf("expected 4 reminders, got %d", len(plan))
	}
	for i := 1; i < len(plan); i++ {
		if plan[i].FireAt.Before(plan[i-1].FireAt) {
			t.Errorf("reminders out of fire order at index %d", i)
		}
	}
	if plan[0].RuleID != "bill-2" {
		t.Errorf("expected the Jan 3 water bill first, got %s", plan[0].RuleID)
	}
}

func TestPlan_EmptyWindowPlansNothing(t *testing.T) {
	rule := recur.Rule{
		ID: "bill-1", Name: "Rent", Frequency: recur.Monthly,
		Anchor: day(2024, time.January, 1), Amount: decimal.NewFromInt(1500),
	}

	p := reminders.NewPlanner()
	plan := p.Plan(rule, recur.NewWindow(day(2024, time.March, 1), day(2024, time.January, 1)))
	if len(plan) != 0 {
		t.Fatalf("expected no reminders for inverted window, got %d", len(plan))
	}
}
