/*
Package store defines the persistence interface for budget records.

PURPOSE:
  The recurrence engine is stateless: rules are rebuilt from durable records
  on every query. This package defines those records (income sources, bills,
  and the derived reminder cache) and the interface the rest of the system
  programs against.

KEY INTERFACES:
  Store: income source + bill persistence, reminder cache, main-income flag

MAIN-INCOME INVARIANT:
  At most one income source is flagged as the main schedule (it anchors pay
  periods for projection). SetMainIncome enforces "set X, clear all others"
  atomically - this invariant lives HERE, in storage, never in the engine.

RECORD vs RULE:
  Records carry raw instants (time.Time). Conversion to engine rules happens
  at query time via Rule(loc), with the caller's explicit calendar location,
  so results never depend on implicit device locale.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite store
  - store/memory: in-memory store for testing/dev

SEE ALSO:
  - recur: the engine the rules feed
  - api/handlers.go: the main consumer
*/
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/budget-engine/recur"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrIncomeNotFound is returned when a referenced income source doesn't exist.
	ErrIncomeNotFound = errors.New("income source not found")

	// ErrBillNotFound is returned when a referenced bill doesn't exist.
	ErrBillNotFound = errors.New("bill not found")

	// ErrNoMainIncome is returned when no income source is flagged as main.
	ErrNoMainIncome = errors.New("no main income source configured")
)

// =============================================================================
// RECORDS
// =============================================================================

// IncomeSource is a durable recurring deposit: a paycheck, a pension, a
// side gig. IsMain marks the schedule that anchors pay periods; at most one
// source carries the flag.
type IncomeSource struct {
	ID        string
	Name      string
	Amount    decimal.Decimal
	Frequency recur.Frequency
	Anchor    time.Time
	End       *time.Time
	FirstDay  int
	SecondDay int
	IsMain    bool
	CreatedAt time.Time
}

// Rule converts the record into an engine rule with day semantics in loc.
func (s IncomeSource) Rule(loc *time.Location) recur.Rule {
	return toRule(s.ID, s.Name, s.Frequency, s.Anchor, s.End, s.FirstDay, s.SecondDay, s.Amount, loc)
}

// Bill is a durable recurring obligation: rent, a subscription, a loan
// payment.
type Bill struct {
	ID        string
	Name      string
	Amount    decimal.Decimal
	Frequency recur.Frequency
	Anchor    time.Time
	End       *time.Time
	FirstDay  int
	SecondDay int
	CreatedAt time.Time
}

// Rule converts the record into an engine rule with day semantics in loc.
func (b Bill) Rule(loc *time.Location) recur.Rule {
	return toRule(b.ID, b.Name, b.Frequency, b.Anchor, b.End, b.FirstDay, b.SecondDay, b.Amount, loc)
}

func toRule(id, name string, freq recur.Frequency, anchor time.Time, end *time.Time,
	firstDay, secondDay int, amount decimal.Decimal, loc *time.Location) recur.Rule {

	rule := recur.Rule{
		ID:        id,
		Name:      name,
		Frequency: freq,
		Anchor:    recur.DateOf(anchor, loc),
		FirstDay:  firstDay,
		SecondDay: secondDay,
		Amount:    amount,
	}
	if end != nil {
		d := recur.DateOf(*end, loc)
		rule.End = &d
	}
	return rule
}

// Reminder is one planned alert for a bill's due date. Reminders are a
// DERIVED cache: the scheduler recomputes them from rules, they are never
// the source of truth.
type Reminder struct {
	ID      string
	BillID  string
	Name    string
	Amount  decimal.Decimal
	DueDate time.Time
	FireAt  time.Time
}

// =============================================================================
// STORE - Persistence interface
// =============================================================================

type Store interface {
	// Income sources
	CreateIncome(ctx context.Context, src IncomeSource) error
	GetIncome(ctx context.Context, id string) (*IncomeSource, error)
	ListIncomes(ctx context.Context) ([]IncomeSource, error)
	DeleteIncome(ctx context.Context, id string) error

	// SetMainIncome flags one source as the main schedule and clears the
	// flag on every other source in the same transaction.
	SetMainIncome(ctx context.Context, id string) error

	// MainIncome returns the flagged source, or ErrNoMainIncome.
	MainIncome(ctx context.Context) (*IncomeSource, error)

	// Bills
	CreateBill(ctx context.Context, bill Bill) error
	GetBill(ctx context.Context, id string) (*Bill, error)
	ListBills(ctx context.Context) ([]Bill, error)
	DeleteBill(ctx context.Context, id string) error

	// Reminder cache
	// ReplaceReminders swaps the entire cache atomically.
	ReplaceReminders(ctx context.Context, reminders []Reminder) error
	ListReminders(ctx context.Context, from, to time.Time) ([]Reminder, error)

	Close() error
}
