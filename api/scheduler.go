/*
scheduler.go - Background reminder refresh scheduler

PURPOSE:
  Periodically re-plans bill reminders over a rolling horizon and stores
  the result, so the upcoming-reminders endpoint serves a precomputed
  cache instead of expanding schedules on every request.

DESIGN:
  - Runs a background goroutine with configurable refresh interval
  - Each refresh replans the full horizon from today and atomically
    replaces the stored reminder set
  - Bills added or removed between refreshes appear after the next tick;
    handlers that mutate bills can call RunNow to refresh immediately

CONFIGURATION:
  - RefreshInterval: How often to replan (default: 1 hour)
  - HorizonDays:     How far ahead to plan (default: 30)
  - Enabled:         Whether scheduler is active (default: true)

USAGE:
  scheduler := NewReminderScheduler(store, planner, loc)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: UpcomingReminders endpoint (serves the cache)
  - reminders/planner.go: Planner
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warp/budget-engine/recur"
	"github.com/warp/budget-engine/reminders"
	"github.com/warp/budget-engine/store"
)

// ReminderScheduler keeps the stored reminder cache fresh.
type ReminderScheduler struct {
	Store           store.Store
	Planner         *reminders.Planner
	Loc             *time.Location
	RefreshInterval time.Duration
	HorizonDays     int
	Enabled         bool
	Now             func() time.Time

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewReminderScheduler creates a new scheduler with default settings.
func NewReminderScheduler(st store.Store, planner *reminders.Planner, loc *time.Location) *ReminderScheduler {
	return &ReminderScheduler{
		Store:           st,
		Planner:         planner,
		Loc:             loc,
		RefreshInterval: 1 * time.Hour,
		HorizonDays:     30,
		Enabled:         true,
		Now:             time.Now,
		stop:            make(chan bool),
	}
}

// Start begins the scheduler.
func (rs *ReminderScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	rs.ticker = time.NewTicker(rs.RefreshInterval)
	rs.wg.Add(1)

	go rs.run()

	log.Printf("[Scheduler] Started with refresh interval: %v, horizon: %d days", rs.RefreshInterval, rs.HorizonDays)
}

// Stop stops the scheduler.
func (rs *ReminderScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

// RunNow triggers an immediate refresh (for testing/admin).
func (rs *ReminderScheduler) RunNow() {
	rs.refresh()
}

func (rs *ReminderScheduler) run() {
	defer rs.wg.Done()

	// Refresh immediately on start
	rs.refresh()

	for {
		select {
		case <-rs.ticker.C:
			rs.refresh()
		case <-rs.stop:
			return
		}
	}
}

func (rs *ReminderScheduler) refresh() {
	ctx := context.Background()
	today := recur.DateOf(rs.Now(), rs.Loc)
	window := recur.NewWindow(today, today.AddDays(rs.HorizonDays))

	bills, err := rs.Store.ListBills(ctx)
	if err != nil {
		log.Printf("[Scheduler] Error listing bills: %v", err)
		return
	}

	rules := make([]recur.Rule, len(bills))
	for i, b := range bills {
		rules[i] = b.Rule(rs.Loc)
	}

	plan := rs.Planner.PlanAll(rules, window)

	records := make([]store.Reminder, len(plan))
	for i, r := range plan {
		records[i] = store.Reminder{
			ID:      uuid.NewString(),
			BillID:  r.RuleID,
			Name:    r.Name,
			Amount:  r.Amount,
			DueDate: r.DueDate.Time,
			FireAt:  r.FireAt,
		}
	}

	if err := rs.Store.ReplaceReminders(ctx, records); err != nil {
		log.Printf("[Scheduler] Error storing reminders: %v", err)
		return
	}

	log.Printf("[Scheduler] Planned %d reminders over %s", len(records), window)
}
