// Package memory provides an in-memory store.Store implementation
// (for testing/dev).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/budget-engine/store"
)

// Store keeps all records in maps guarded by a single RWMutex. Semantics
// mirror the SQLite store, including the main-income invariant.
type Store struct {
	mu        sync.RWMutex
	incomes   map[string]store.IncomeSource
	bills     map[string]store.Bill
	reminders []store.Reminder
}

func New() *Store {
	return &Store{
		incomes: make(map[string]store.IncomeSource),
		bills:   make(map[string]store.Bill),
	}
}

func (m *Store) Close() error { return nil }

// =============================================================================
// INCOME SOURCES
// =============================================================================

func (m *Store) CreateIncome(_ context.Context, src store.IncomeSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.incomes[src.ID] = src
	return nil
}

func (m *Store) GetIncome(_ context.Context, id string) (*store.IncomeSource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src, ok := m.incomes[id]
	if !ok {
		return nil, store.ErrIncomeNotFound
	}
	return &src, nil
}

func (m *Store) ListIncomes(_ context.Context) ([]store.IncomeSource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sources := make([]store.IncomeSource, 0, len(m.incomes))
	for _, src := range m.incomes {
		sources = append(sources, src)
	}
	sortByCreated(sources, func(s store.IncomeSource) (time.Time, string) { return s.CreatedAt, s.ID })
	return sources, nil
}

func (m *Store) DeleteIncome(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.incomes[id]; !ok {
		return store.ErrIncomeNotFound
	}
	delete(m.incomes, id)
	return nil
}

// SetMainIncome sets the flag on one source and clears all others under a
// single lock hold, matching the SQLite store's transactional behavior.
func (m *Store) SetMainIncome(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.incomes[id]; !ok {
		return store.ErrIncomeNotFound
	}
	for key, src := range m.incomes {
		src.IsMain = key == id
		m.incomes[key] = src
	}
	return nil
}

func (m *Store) MainIncome(_ context.Context) (*store.IncomeSource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, src := range m.incomes {
		if src.IsMain {
			s := src
			return &s, nil
		}
	}
	return nil, store.ErrNoMainIncome
}

// =============================================================================
// BILLS
// =============================================================================

func (m *Store) CreateBill(_ context.Context, bill store.Bill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bills[bill.ID] = bill
	return nil
}

func (m *Store) GetBill(_ context.Context, id string) (*store.Bill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bill, ok := m.bills[id]
	if !ok {
		return nil, store.ErrBillNotFound
	}
	return &bill, nil
}

func (m *Store) ListBills(_ context.Context) ([]store.Bill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bills := make([]store.Bill, 0, len(m.bills))
	for _, bill := range m.bills {
		bills = append(bills, bill)
	}
	sortByCreated(bills, func(b store.Bill) (time.Time, string) { return b.CreatedAt, b.ID })
	return bills, nil
}

func (m *Store) DeleteBill(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bills[id]; !ok {
		return store.ErrBillNotFound
	}
	delete(m.bills, id)
	return nil
}

// =============================================================================
// REMINDERS
// =============================================================================

func (m *Store) ReplaceReminders(_ context.Context, reminders []store.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reminders = append([]store.Reminder(nil), reminders...)
	sort.Slice(m.reminders, func(i, j int) bool {
		if !m.reminders[i].FireAt.Equal(m.reminders[j].FireAt) {
			return m.reminders[i].FireAt.Before(m.reminders[j].FireAt)
		}
		return m.reminders[i].ID < m.reminders[j].ID
	})
	return nil
}

func (m *Store) ListReminders(_ context.Context, from, to time.Time) ([]store.Reminder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []store.Reminder
	for _, r := range m.reminders {
		if !r.FireAt.Before(from) && r.FireAt.Before(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

// sortByCreated orders records by creation time, then ID for stability.
func sortByCreated[T any](items []T, key func(T) (time.Time, string)) {
	sort.Slice(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return idi < idj
	})
}
