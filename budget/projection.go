/*
Package budget builds period summaries (income vs. bills vs. leftover) on top
of the recurrence engine.

PURPOSE:
  A pay period is the span between two consecutive income deposits. For each
  period this package answers: how much comes in, how much goes out, what's
  left. All date math is delegated to the recur dispatcher - no stride
  arithmetic lives here, so projection can never drift from expansion.

PAY PERIODS:
  Derived from the MAIN income schedule: consecutive occurrences become the
  half-open boundaries [occ[i], occ[i+1]). A one-time income yields no
  periods (a span needs two boundaries).

CONCURRENCY:
  Each period's totals are independent pure computations over read-only
  rules, and addition is commutative, so periods are computed in parallel
  and reduced with errgroup.

SEE ALSO:
  - recur: occurrence expansion and totals
  - api/handlers.go: the /api/projection endpoint
*/
package budget

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/warp/budget-engine/recur"
)

// Summary is one pay period's totals. Leftover = Income - Bills; a negative
// leftover means the period's bills outrun its deposits.
type Summary struct {
	Period   recur.Window
	Income   decimal.Decimal
	Bills    decimal.Decimal
	Leftover decimal.Decimal

	// BillDates lists the individual bill occurrences inside the period,
	// in date order, for display.
	BillDates []recur.Occurrence
}

// PayPeriods derives up to count consecutive pay-period windows from the
// income schedule, starting with the first deposit on or after from. The
// result is shorter than count when the schedule ends (end date reached,
// or a one-time deposit).
func PayPeriods(income recur.Rule, from recur.Date, count int) []recur.Window {
	if count <= 0 {
		return nil
	}

	// count periods need count+1 boundary deposits.
	boundaries := make([]recur.Date, 0, count+1)
	probe := from
	for len(boundaries) < count+1 {
		next, ok := recur.NextOnOrAfter(income, probe).Get()
		if !ok {
			break
		}
		boundaries = append(boundaries, next)
		probe = next.AddDays(1)
	}

	if len(boundaries) < 2 {
		return nil
	}

	periods := make([]recur.Window, 0, len(boundaries)-1)
	for i := 0; i+1 < len(boundaries); i++ {
		periods = append(periods, recur.NewWindow(boundaries[i], boundaries[i+1]))
	}
	return periods
}

// Projector computes period summaries from income and bill rules.
type Projector struct{}

// Project computes a summary per period. Periods are processed in parallel;
// ctx cancellation aborts the remaining work.
func (Projector) Project(ctx context.Context, incomes, bills []recur.Rule, periods []recur.Window) ([]Summary, error) {
	summaries := make([]Summary, len(periods))

	g, ctx := errgroup.WithContext(ctx)
	for i, period := range periods {
		i, period := i, period
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			summaries[i] = summarize(incomes, bills, period)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func summarize(incomes, bills []recur.Rule, period recur.Window) Summary {
	income := recur.TotalAmount(incomes, period)

	billTotal := decimal.Zero
	var billDates []recur.Occurrence
	for _, bill := range bills {
		for _, occ := range recur.Occurrences(bill, period) {
			billTotal = billTotal.Add(occ.Amount)
			billDates = append(billDates, occ)
		}
	}
	sortOccurrences(billDates)

	return Summary{
		Period:    period,
		Income:    income,
		Bills:     billTotal,
		Leftover:  income.Sub(billTotal),
		BillDates: billDates,
	}
}

// sortOccurrences orders by date, then rule ID for a stable display order.
func sortOccurrences(occs []recur.Occurrence) {
	sort.Slice(occs, func(i, j int) bool {
		if !occs[i].Date.Equal(occs[j].Date) {
			return occs[i].Date.Before(occs[j].Date)
		}
		return occs[i].RuleID < occs[j].RuleID
	})
}
