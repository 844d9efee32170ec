/*
Package reminders turns bill due dates into planned alert instants.

PURPOSE:
  For every due date the recurrence engine emits inside a window (typically
  the upcoming pay period), the planner produces one reminder firing at a
  fixed local clock time on that day (09:00 by default). Delivery -
  notification transport, permissions, identifiers - is someone else's job;
  this package only plans.

SEE ALSO:
  - recur: due-date expansion
  - api/scheduler.go: refreshes the stored reminder cache from this planner
*/
package reminders

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/budget-engine/recur"
)

// DefaultAlertHour is the local clock hour reminders fire at unless
// configured otherwise.
const DefaultAlertHour = 9

// Reminder is one planned alert for a single due date.
type Reminder struct {
	RuleID  string
	Name    string
	DueDate recur.Date
	FireAt  time.Time
	Amount  decimal.Decimal
}

// Planner maps due dates to alert instants at a fixed local clock time.
type Planner struct {
	AlertHour   int
	AlertMinute int
}

func NewPlanner() *Planner {
	return &Planner{AlertHour: DefaultAlertHour}
}

// Plan returns one reminder per occurrence of the rule inside the window,
// in due-date order. The alert instant is taken in the due date's own
// calendar location.
func (p *Planner) Plan(rule recur.Rule, window recur.Window) []Reminder {
	occs := recur.Occurrences(rule, window)
	out := make([]Reminder, 0, len(occs))
	for _, occ := range occs {
		out = append(out, Reminder{
			RuleID:  occ.RuleID,
			Name:    occ.Name,
			DueDate: occ.Date,
			FireAt:  occ.Date.At(p.AlertHour, p.AlertMinute),
			Amount:  occ.Amount,
		})
	}
	return out
}

// PlanAll plans reminders for every rule and merges them in fire order.
func (p *Planner) PlanAll(rules []recur.Rule, window recur.Window) []Reminder {
	var out []Reminder
	for _, rule := range rules {
		out = append(out, p.Plan(rule, window)...)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FireAt.Equal(out[j].FireAt) {
			return out[i].FireAt.Before(out[j].FireAt)
		}
		return out[i].RuleID < out[j].RuleID
	})
	return out
}
