/*
Package sqlite provides the SQLite-backed implementation of store.Store.

PURPOSE:
  Durable persistence for income sources, bills, and the derived reminder
  cache. The same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

KEY TABLES:
  income_sources: recurring deposits, with the main-schedule flag
  bills:          recurring obligations
  reminders:      derived alert cache, rebuilt by the scheduler

MAIN-INCOME INVARIANT:
  SetMainIncome runs "set X, clear all others" as a single UPDATE inside a
  transaction, so at most one row ever carries is_main = 1.

STORAGE FORMATS:
  Dates:   RFC3339 text in UTC (lexicographic order == chronological order)
  Amounts: decimal strings, parsed with shopspring/decimal - never floats

WAL MODE:
  Opened with WAL for better concurrency: readers don't block, single
  writer, better crash recovery.

USAGE:
  st, err := sqlite.New("./data/budget.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

SEE ALSO:
  - store/store.go: interface and record definitions
  - store/memory: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/budget-engine/recur"
	"github.com/warp/budget-engine/store"
)

// Store implements store.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS income_sources (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		amount TEXT NOT NULL,
		frequency TEXT NOT NULL,
		anchor_date TEXT NOT NULL,
		end_date TEXT,
		first_day INTEGER NOT NULL DEFAULT 0,
		second_day INTEGER NOT NULL DEFAULT 0,
		is_main INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS bills (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		amount TEXT NOT NULL,
		frequency TEXT NOT NULL,
		anchor_date TEXT NOT NULL,
		end_date TEXT,
		first_day INTEGER NOT NULL DEFAULT 0,
		second_day INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reminders (
		id TEXT PRIMARY KEY,
		bill_id TEXT NOT NULL,
		name TEXT NOT NULL,
		amount TEXT NOT NULL,
		due_date TEXT NOT NULL,
		fire_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_income_sources_is_main ON income_sources(is_main);
	CREATE INDEX IF NOT EXISTS idx_reminders_fire_at ON reminders(fire_at);
	CREATE INDEX IF NOT EXISTS idx_reminders_bill ON reminders(bill_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ENCODING HELPERS
// =============================================================================

func encodeTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func decodeTime(s string) (time.Time, error) { return time.Parse(time.RFC3339, s) }

func encodeOptTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: encodeTime(*t), Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// =============================================================================
// INCOME SOURCES
// =============================================================================

func (s *Store) CreateIncome(ctx context.Context, src store.IncomeSource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO income_sources (id, name, amount, frequency, anchor_date, end_date, first_day, second_day, is_main, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		src.ID, src.Name, src.Amount.String(), string(src.Frequency),
		encodeTime(src.Anchor), encodeOptTime(src.End),
		src.FirstDay, src.SecondDay, boolToInt(src.IsMain), encodeTime(src.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert income source: %w", err)
	}
	return nil
}

func (s *Store) GetIncome(ctx context.Context, id string) (*store.IncomeSource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, amount, frequency, anchor_date, end_date, first_day, second_day, is_main, created_at
		FROM income_sources WHERE id = ?`, id)

	src, err := scanIncome(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrIncomeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get income source: %w", err)
	}
	return src, nil
}

func (s *Store) ListIncomes(ctx context.Context) ([]store.IncomeSource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, amount, frequency, anchor_date, end_date, first_day, second_day, is_main, created_at
		FROM income_sources ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list income sources: %w", err)
	}
	defer rows.Close()

	var sources []store.IncomeSource
	for rows.Next() {
		src, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan income source: %w", err)
		}
		sources = append(sources, *src)
	}
	return sources, rows.Err()
}

func (s *Store) DeleteIncome(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM income_sources WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete income source: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrIncomeNotFound
	}
	return nil
}

// SetMainIncome flags one source as main and clears every other source's
// flag in the same transaction.
func (s *Store) SetMainIncome(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM income_sources WHERE id = ?`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check income source: %w", err)
	}
	if exists == 0 {
		return store.ErrIncomeNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE income_sources SET is_main = CASE WHEN id = ? THEN 1 ELSE 0 END`, id); err != nil {
		return fmt.Errorf("failed to set main income: %w", err)
	}
	return tx.Commit()
}

func (s *Store) MainIncome(ctx context.Context) (*store.IncomeSource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, amount, frequency, anchor_date, end_date, first_day, second_day, is_main, created_at
		FROM income_sources WHERE is_main = 1 LIMIT 1`)

	src, err := scanIncome(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNoMainIncome
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get main income: %w", err)
	}
	return src, nil
}

// =============================================================================
// BILLS
// =============================================================================

func (s *Store) CreateBill(ctx context.Context, bill store.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bills (id, name, amount, frequency, anchor_date, end_date, first_day, second_day, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.Name, bill.Amount.String(), string(bill.Frequency),
		encodeTime(bill.Anchor), encodeOptTime(bill.End),
		bill.FirstDay, bill.SecondDay, encodeTime(bill.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}
	return nil
}

func (s *Store) GetBill(ctx context.Context, id string) (*store.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, amount, frequency, anchor_date, end_date, first_day, second_day, created_at
		FROM bills WHERE id = ?`, id)

	bill, err := scanBill(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrBillNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

func (s *Store) ListBills(ctx context.Context) ([]store.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, amount, frequency, anchor_date, end_date, first_day, second_day, created_at
		FROM bills ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []store.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, *bill)
	}
	return bills, rows.Err()
}

func (s *Store) DeleteBill(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrBillNotFound
	}
	return nil
}

// =============================================================================
// REMINDERS (derived cache)
// =============================================================================

// ReplaceReminders swaps the entire cache atomically. The scheduler owns the
// contents, so a full rebuild is simpler and safer than diffing.
func (s *Store) ReplaceReminders(ctx context.Context, reminders []store.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reminders`); err != nil {
		return fmt.Errorf("failed to clear reminders: %w", err)
	}
	for _, r := range reminders {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO reminders (id, bill_id, name, amount, due_date, fire_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			r.ID, r.BillID, r.Name, r.Amount.String(),
			encodeTime(r.DueDate), encodeTime(r.FireAt),
		); err != nil {
			return fmt.Errorf("failed to insert reminder: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) ListReminders(ctx context.Context, from, to time.Time) ([]store.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, bill_id, name, amount, due_date, fire_at
		FROM reminders WHERE fire_at >= ? AND fire_at < ? ORDER BY fire_at, id`,
		encodeTime(from), encodeTime(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []store.Reminder
	for rows.Next() {
		var (
			r         store.Reminder
			amountStr string
			dueStr    string
			fireStr   string
		)
		if err := rows.Scan(&r.ID, &r.BillID, &r.Name, &amountStr, &dueStr, &fireStr); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		if r.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("failed to parse reminder amount: %w", err)
		}
		if r.DueDate, err = decodeTime(dueStr); err != nil {
			return nil, fmt.Errorf("failed to parse due date: %w", err)
		}
		if r.FireAt, err = decodeTime(fireStr); err != nil {
			return nil, fmt.Errorf("failed to parse fire time: %w", err)
		}
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIncome(row rowScanner) (*store.IncomeSource, error) {
	var (
		src        store.IncomeSource
		amountStr  string
		freq       string
		anchorStr  string
		endStr     sql.NullString
		isMain     int
		createdStr string
	)
	err := row.Scan(&src.ID, &src.Name, &amountStr, &freq, &anchorStr, &endStr,
		&src.FirstDay, &src.SecondDay, &isMain, &createdStr)
	if err != nil {
		return nil, err
	}
	if err := decodeCommon(&src.Amount, &src.Anchor, &src.End, &src.CreatedAt,
		amountStr, anchorStr, endStr, createdStr); err != nil {
		return nil, err
	}
	src.Frequency = recur.Frequency(freq)
	src.IsMain = isMain != 0
	return &src, nil
}

func scanBill(row rowScanner) (*store.Bill, error) {
	var (
		bill       store.Bill
		amountStr  string
		freq       string
		anchorStr  string
		endStr     sql.NullString
		createdStr string
	)
	err := row.Scan(&bill.ID, &bill.Name, &amountStr, &freq, &anchorStr, &endStr,
		&bill.FirstDay, &bill.SecondDay, &createdStr)
	if err != nil {
		return nil, err
	}
	if err := decodeCommon(&bill.Amount, &bill.Anchor, &bill.End, &bill.CreatedAt,
		amountStr, anchorStr, endStr, createdStr); err != nil {
		return nil, err
	}
	bill.Frequency = recur.Frequency(freq)
	return &bill, nil
}

func decodeCommon(amount *decimal.Decimal, anchor *time.Time, end **time.Time, created *time.Time,
	amountStr, anchorStr string, endStr sql.NullString, createdStr string) error {

	var err error
	if *amount, err = decimal.NewFromString(amountStr); err != nil {
		return fmt.Errorf("invalid amount %q: %w", amountStr, err)
	}
	if *anchor, err = decodeTime(anchorStr); err != nil {
		return fmt.Errorf("invalid anchor date %q: %w", anchorStr, err)
	}
	if endStr.Valid {
		t, err := decodeTime(endStr.String)
		if err != nil {
			return fmt.Errorf("invalid end date %q: %w", endStr.String, err)
		}
		*end = &t
	}
	if *created, err = decodeTime(createdStr); err != nil {
		return fmt.Errorf("invalid created_at %q: %w", createdStr, err)
	}
	return nil
}
