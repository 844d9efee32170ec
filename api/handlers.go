/*
handlers.go - HTTP API handlers for the budget engine

PURPOSE:
  Exposes income sources, bills, and the recurrence queries over REST.
  Handles HTTP request/response and JSON serialization, and delegates all
  date math to the recur dispatcher.

ENDPOINTS:
  Incomes:
    GET    /api/incomes             List income sources
    POST   /api/incomes             Create income source
    GET    /api/incomes/{id}        Get income source
    DELETE /api/incomes/{id}        Delete income source
    POST   /api/incomes/{id}/main   Flag as the main schedule

  Bills:
    GET    /api/bills               List bills
    POST   /api/bills               Create bill
    GET    /api/bills/{id}          Get bill
    DELETE /api/bills/{id}          Delete bill
    GET    /api/bills/{id}/next     Next due date on or after a date
    GET    /api/bills/{id}/occurs   Does the bill fall inside a window?

  Queries:
    GET    /api/occurrences         Expand every rule over a window
    GET    /api/projection          Pay-period summaries
    GET    /api/reminders/upcoming  Planned bill alerts

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found, no main income configured
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - scheduler.go: Background reminder refresh
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/recur"
	"github.com/warp/budget-engine/reminders"
	"github.com/warp/budget-engine/store"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     store.Store
	Planner   *reminders.Planner
	Projector budget.Projector

	// Loc is the explicit calendar identity for every date computation.
	Loc *time.Location

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// NewHandler creates a new handler with the given store and calendar.
func NewHandler(st store.Store, loc *time.Location) *Handler {
	return &Handler{
		Store:   st,
		Planner: reminders.NewPlanner(),
		Loc:     loc,
		Now:     time.Now,
	}
}

func (h *Handler) today() recur.Date { return recur.DateOf(h.Now(), h.Loc) }

// =============================================================================
// INCOME HANDLERS
// =============================================================================

// ListIncomes returns all income sources with their next deposit date.
func (h *Handler) ListIncomes(w http.ResponseWriter, r *http.Request) {
	sources, err := h.Store.ListIncomes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list income sources", err)
		return
	}

	today := h.today()
	dtos := make([]IncomeDTO, len(sources))
	for i, src := range sources {
		dtos[i] = toIncomeDTO(src, h.nextDate(src.Rule(h.Loc), today))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateIncome creates a new income source.
func (h *Handler) CreateIncome(w http.ResponseWriter, r *http.Request) {
	var req CreateIncomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, anchor, end, err := h.parseRuleFields(req.Amount, req.Anchor, req.End, req.Frequency)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid income source", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	src := store.IncomeSource{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Amount:    amount,
		Frequency: recur.Frequency(req.Frequency),
		Anchor:    anchor,
		End:       end,
		FirstDay:  req.FirstDay,
		SecondDay: req.SecondDay,
		CreatedAt: h.Now(),
	}
	if err := h.Store.CreateIncome(r.Context(), src); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create income source", err)
		return
	}

	if req.Main {
		if err := h.Store.SetMainIncome(r.Context(), src.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to flag main income", err)
			return
		}
		src.IsMain = true
	}

	writeJSON(w, http.StatusCreated, toIncomeDTO(src, h.nextDate(src.Rule(h.Loc), h.today())))
}

// GetIncome returns a single income source.
func (h *Handler) GetIncome(w http.ResponseWriter, r *http.Request) {
	src, err := h.Store.GetIncome(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrIncomeNotFound) {
		writeError(w, http.StatusNotFound, "Income source not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get income source", err)
		return
	}
	writeJSON(w, http.StatusOK, toIncomeDTO(*src, h.nextDate(src.Rule(h.Loc), h.today())))
}

// DeleteIncome removes an income source.
func (h *Handler) DeleteIncome(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeleteIncome(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrIncomeNotFound) {
		writeError(w, http.StatusNotFound, "Income source not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete income source", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetMainIncome flags an income source as the main schedule.
func (h *Handler) SetMainIncome(w http.ResponseWriter, r *http.Request) {
	err := h.Store.SetMainIncome(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrIncomeNotFound) {
		writeError(w, http.StatusNotFound, "Income source not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to set main income", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// BILL HANDLERS
// =============================================================================

// ListBills returns all bills with their next due date.
func (h *Handler) ListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.Store.ListBills(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bills", err)
		return
	}

	today := h.today()
	dtos := make([]BillDTO, len(bills))
	for i, bill := range bills {
		dtos[i] = toBillDTO(bill, h.nextDate(bill.Rule(h.Loc), today))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateBill creates a new bill.
func (h *Handler) CreateBill(w http.ResponseWriter, r *http.Request) {
	var req CreateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, anchor, end, err := h.parseRuleFields(req.Amount, req.Anchor, req.End, req.Frequency)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid bill", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	bill := store.Bill{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Amount:    amount,
		Frequency: recur.Frequency(req.Frequency),
		Anchor:    anchor,
		End:       end,
		FirstDay:  req.FirstDay,
		SecondDay: req.SecondDay,
		CreatedAt: h.Now(),
	}
	if err := h.Store.CreateBill(r.Context(), bill); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create bill", err)
		return
	}
	writeJSON(w, http.StatusCreated, toBillDTO(bill, h.nextDate(bill.Rule(h.Loc), h.today())))
}

// GetBill returns a single bill.
func (h *Handler) GetBill(w http.ResponseWriter, r *http.Request) {
	bill, err := h.Store.GetBill(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrBillNotFound) {
		writeError(w, http.StatusNotFound, "Bill not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get bill", err)
		return
	}
	writeJSON(w, http.StatusOK, toBillDTO(*bill, h.nextDate(bill.Rule(h.Loc), h.today())))
}

// DeleteBill removes a bill.
func (h *Handler) DeleteBill(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeleteBill(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrBillNotFound) {
		writeError(w, http.StatusNotFound, "Bill not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete bill", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NextDue returns a bill's next due date on or after ?from (default today).
// GET /api/bills/{id}/next?from=YYYY-MM-DD
func (h *Handler) NextDue(w http.ResponseWriter, r *http.Request) {
	bill, err := h.Store.GetBill(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrBillNotFound) {
		writeError(w, http.StatusNotFound, "Bill not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get bill", err)
		return
	}

	from := h.today()
	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err = h.parseDate(raw); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
			return
		}
	}

	writeJSON(w, http.StatusOK, NextDTO{Date: dateStrPtr(h.nextDate(bill.Rule(h.Loc), from))})
}

// BillOccurs reports whether a bill falls inside [?from, ?to).
// GET /api/bills/{id}/occurs?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) BillOccurs(w http.ResponseWriter, r *http.Request) {
	bill, err := h.Store.GetBill(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrBillNotFound) {
		writeError(w, http.StatusNotFound, "Bill not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get bill", err)
		return
	}

	window, err := h.parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid window (use from/to as YYYY-MM-DD)", err)
		return
	}

	writeJSON(w, http.StatusOK, OccursDTO{Occurs: recur.Occurs(bill.Rule(h.Loc), window)})
}

// =============================================================================
// QUERY HANDLERS
// =============================================================================

// ListOccurrences expands every stored rule over [?from, ?to).
// GET /api/occurrences?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) ListOccurrences(w http.ResponseWriter, r *http.Request) {
	window, err := h.parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid window (use from/to as YYYY-MM-DD)", err)
		return
	}

	sources, err := h.Store.ListIncomes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list income sources", err)
		return
	}
	bills, err := h.Store.ListBills(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bills", err)
		return
	}

	dtos := []OccurrenceDTO{}
	for _, src := range sources {
		for _, occ := range recur.Occurrences(src.Rule(h.Loc), window) {
			dtos = append(dtos, toOccurrenceDTO(occ, "income"))
		}
	}
	for _, bill := range bills {
		for _, occ := range recur.Occurrences(bill.Rule(h.Loc), window) {
			dtos = append(dtos, toOccurrenceDTO(occ, "bill"))
		}
	}
	sort.Slice(dtos, func(i, j int) bool {
		if dtos[i].Date != dtos[j].Date {
			return dtos[i].Date < dtos[j].Date
		}
		return dtos[i].RuleID < dtos[j].RuleID
	})

	writeJSON(w, http.StatusOK, dtos)
}

// GetProjection returns pay-period summaries anchored on the main income.
// GET /api/projection?periods=N&from=YYYY-MM-DD
func (h *Handler) GetProjection(w http.ResponseWriter, r *http.Request) {
	main, err := h.Store.MainIncome(r.Context())
	if errors.Is(err, store.ErrNoMainIncome) {
		writeError(w, http.StatusNotFound, "No main income source configured", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get main income", err)
		return
	}

	count := 3
	if raw := r.URL.Query().Get("periods"); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil || count < 1 || count > 26 {
			writeError(w, http.StatusBadRequest, "periods must be between 1 and 26", err)
			return
		}
	}

	from := h.today()
	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err = h.parseDate(raw); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
			return
		}
	}

	sources, err := h.Store.ListIncomes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list income sources", err)
		return
	}
	bills, err := h.Store.ListBills(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bills", err)
		return
	}

	incomeRules := make([]recur.Rule, len(sources))
	for i, src := range sources {
		incomeRules[i] = src.Rule(h.Loc)
	}
	billRules := make([]recur.Rule, len(bills))
	for i, bill := range bills {
		billRules[i] = bill.Rule(h.Loc)
	}

	periods := budget.PayPeriods(main.Rule(h.Loc), from, count)
	summaries, err := h.Projector.Project(r.Context(), incomeRules, billRules, periods)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute projection", err)
		return
	}

	dtos := make([]SummaryDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = toSummaryDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UpcomingReminders returns cached reminders firing in the next ?days days.
// GET /api/reminders/upcoming?days=N
func (h *Handler) UpcomingReminders(w http.ResponseWriter, r *http.Request) {
	days := 14
	if raw := r.URL.Query().Get("days"); raw != "" {
		var err error
		days, err = strconv.Atoi(raw)
		if err != nil || days < 1 || days > 90 {
			writeError(w, http.StatusBadRequest, "days must be between 1 and 90", err)
			return
		}
	}

	now := h.Now()
	cached, err := h.Store.ListReminders(r.Context(), now, now.AddDate(0, 0, days))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list reminders", err)
		return
	}

	dtos := make([]ReminderDTO, len(cached))
	for i, rem := range cached {
		dtos[i] = toReminderDTO(rem)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) parseDate(s string) (recur.Date, error) {
	t, err := time.ParseInLocation(dateLayout, s, h.Loc)
	if err != nil {
		return recur.Date{}, err
	}
	return recur.DateOf(t, h.Loc), nil
}

func (h *Handler) parseWindow(r *http.Request) (recur.Window, error) {
	from, err := h.parseDate(r.URL.Query().Get("from"))
	if err != nil {
		return recur.Window{}, err
	}
	to, err := h.parseDate(r.URL.Query().Get("to"))
	if err != nil {
		return recur.Window{}, err
	}
	return recur.NewWindow(from, to), nil
}

// parseRuleFields validates and parses the fields shared by income and bill
// creation requests.
func (h *Handler) parseRuleFields(amountStr, anchorStr, endStr, freqStr string) (decimal.Decimal, time.Time, *time.Time, error) {
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return decimal.Zero, time.Time{}, nil, errInvalidAmount
	}
	if !recur.Frequency(freqStr).IsValid() {
		return decimal.Zero, time.Time{}, nil, errInvalidFrequency
	}
	anchor, err := time.ParseInLocation(dateLayout, anchorStr, h.Loc)
	if err != nil {
		return decimal.Zero, time.Time{}, nil, errInvalidAnchor
	}
	var end *time.Time
	if endStr != "" {
		t, err := time.ParseInLocation(dateLayout, endStr, h.Loc)
		if err != nil {
			return decimal.Zero, time.Time{}, nil, errInvalidEnd
		}
		end = &t
	}
	return amount, anchor, end, nil
}

var (
	errInvalidAmount    = errors.New("amount must be a decimal string")
	errInvalidFrequency = errors.New("unknown frequency")
	errInvalidAnchor    = errors.New("anchor_date must be YYYY-MM-DD")
	errInvalidEnd       = errors.New("end_date must be YYYY-MM-DD")
)

// nextDate returns the next occurrence on or after from, or nil.
func (h *Handler) nextDate(rule recur.Rule, from recur.Date) *recur.Date {
	if next, ok := recur.NextOnOrAfter(rule, from).Get(); ok {
		return &next
	}
	return nil
}

func dateStrPtr(d *recur.Date) *string {
	if d == nil {
		return nil
	}
	return strPtr(d.String())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
