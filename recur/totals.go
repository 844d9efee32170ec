package recur

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// PERIOD CONTAINMENT / TOTALS
// =============================================================================
// Both queries are trivial folds over Occurrences. No independent stride
// arithmetic lives here: totals and membership checks can never disagree
// with the expansion used for display.

// Occurs reports whether the rule fires at least once inside the window.
func Occurs(rule Rule, window Window) bool {
	return len(Occurrences(rule, window)) > 0
}

// TotalAmount sums the amounts of every occurrence of every rule inside the
// window. Each rule's expansion is independent; addition is commutative, so
// callers may also compute per-rule totals in parallel and reduce.
func TotalAmount(rules []Rule, window Window) decimal.Decimal {
	total := decimal.Zero
	for _, rule := range rules {
		for _, occ := range Occurrences(rule, window) {
			total = total.Add(occ.Amount)
		}
	}
	return total
}
