/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

CONVENTIONS:
  Dates are "YYYY-MM-DD" strings (calendar days, no clock time).
  Instants (reminder fire times) are RFC3339.
  Amounts are decimal strings - currency formatting is the client's job.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/recur"
	"github.com/warp/budget-engine/store"
)

const dateLayout = "2006-01-02"

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// IncomeDTO represents an income source in API responses.
type IncomeDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Amount    string  `json:"amount"`
	Frequency string  `json:"frequency"`
	Anchor    string  `json:"anchor_date"`
	End       *string `json:"end_date,omitempty"`
	FirstDay  int     `json:"first_day,omitempty"`
	SecondDay int     `json:"second_day,omitempty"`
	IsMain    bool    `json:"is_main"`
	NextDate  *string `json:"next_date,omitempty"`
}

// CreateIncomeRequest is the request to create an income source.
type CreateIncomeRequest struct {
	Name      string `json:"name"`
	Amount    string `json:"amount"`
	Frequency string `json:"frequency"`
	Anchor    string `json:"anchor_date"`
	End       string `json:"end_date,omitempty"`
	FirstDay  int    `json:"first_day,omitempty"`
	SecondDay int    `json:"second_day,omitempty"`
	Main      bool   `json:"main,omitempty"`
}

// BillDTO represents a bill in API responses.
type BillDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Amount    string  `json:"amount"`
	Frequency string  `json:"frequency"`
	Anchor    string  `json:"anchor_date"`
	End       *string `json:"end_date,omitempty"`
	FirstDay  int     `json:"first_day,omitempty"`
	SecondDay int     `json:"second_day,omitempty"`
	NextDue   *string `json:"next_due,omitempty"`
}

// CreateBillRequest is the request to create a bill.
type CreateBillRequest struct {
	Name      string `json:"name"`
	Amount    string `json:"amount"`
	Frequency string `json:"frequency"`
	Anchor    string `json:"anchor_date"`
	End       string `json:"end_date,omitempty"`
	FirstDay  int    `json:"first_day,omitempty"`
	SecondDay int    `json:"second_day,omitempty"`
}

// OccurrenceDTO is one concrete occurrence of a rule.
type OccurrenceDTO struct {
	RuleID    string `json:"rule_id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	Amount    string `json:"amount"`
	Frequency string `json:"frequency"`
	Kind      string `json:"kind"` // "income" or "bill"
}

// SummaryDTO is one pay period's totals.
type SummaryDTO struct {
	Start     string          `json:"start"`
	End       string          `json:"end"`
	Income    string          `json:"income"`
	Bills     string          `json:"bills"`
	Leftover  string          `json:"leftover"`
	BillDates []OccurrenceDTO `json:"bill_dates"`
}

// NextDTO is the next-occurrence answer; Date is null when the rule never
// fires again.
type NextDTO struct {
	Date *string `json:"date"`
}

// OccursDTO is the period-containment answer.
type OccursDTO struct {
	Occurs bool `json:"occurs"`
}

// ReminderDTO is one planned bill alert.
type ReminderDTO struct {
	ID      string `json:"id"`
	BillID  string `json:"bill_id"`
	Name    string `json:"name"`
	Amount  string `json:"amount"`
	DueDate string `json:"due_date"`
	FireAt  string `json:"fire_at"`
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toIncomeDTO(src store.IncomeSource, next *recur.Date) IncomeDTO {
	dto := IncomeDTO{
		ID:        src.ID,
		Name:      src.Name,
		Amount:    src.Amount.String(),
		Frequency: string(src.Frequency),
		Anchor:    src.Anchor.Format(dateLayout),
		FirstDay:  src.FirstDay,
		SecondDay: src.SecondDay,
		IsMain:    src.IsMain,
	}
	if src.End != nil {
		dto.End = strPtr(src.End.Format(dateLayout))
	}
	if next != nil {
		dto.NextDate = strPtr(next.String())
	}
	return dto
}

func toBillDTO(bill store.Bill, next *recur.Date) BillDTO {
	dto := BillDTO{
		ID:        bill.ID,
		Name:      bill.Name,
		Amount:    bill.Amount.String(),
		Frequency: string(bill.Frequency),
		Anchor:    bill.Anchor.Format(dateLayout),
		FirstDay:  bill.FirstDay,
		SecondDay: bill.SecondDay,
	}
	if bill.End != nil {
		dto.End = strPtr(bill.End.Format(dateLayout))
	}
	if next != nil {
		dto.NextDue = strPtr(next.String())
	}
	return dto
}

func toOccurrenceDTO(occ recur.Occurrence, kind string) OccurrenceDTO {
	return OccurrenceDTO{
		RuleID:    occ.RuleID,
		Name:      occ.Name,
		Date:      occ.Date.String(),
		Amount:    occ.Amount.String(),
		Frequency: string(occ.Frequency),
		Kind:      kind,
	}
}

func toSummaryDTO(s budget.Summary) SummaryDTO {
	dates := make([]OccurrenceDTO, len(s.BillDates))
	for i, occ := range s.BillDates {
		dates[i] = toOccurrenceDTO(occ, "bill")
	}
	return SummaryDTO{
		Start:     s.Period.Start.String(),
		End:       s.Period.End.String(),
		Income:    s.Income.String(),
		Bills:     s.Bills.String(),
		Leftover:  s.Leftover.String(),
		BillDates: dates,
	}
}

func toReminderDTO(r store.Reminder) ReminderDTO {
	return ReminderDTO{
		ID:      r.ID,
		BillID:  r.BillID,
		Name:    r.Name,
		Amount:  r.Amount.String(),
		DueDate: r.DueDate.Format(dateLayout),
		FireAt:  r.FireAt.Format(time.RFC3339),
	}
}

func strPtr(s string) *string { return &s }
