package reimbursement

import (
	"strings"
	"time"

	"github.com/leavesync/leavesync/internal"
)

const dateLayout = "2006-01-02"

type CreateReimbursementDTO struct {
	Title       string  `json:"title"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	ExpenseDate string  `json:"expenseDate"`
	ReceiptURL  string  `json:"receiptUrl"`

	expenseDate time.Time
}

func (d *CreateReimbursementDTO) Validate() error {
	d.Title = strings.TrimSpace(d.Title)
	d.Category = strings.TrimSpace(d.Category)
	d.Description = strings.TrimSpace(d.Description)
	d.ReceiptURL = strings.TrimSpace(d.ReceiptURL)

	if d.Title == "" || len(d.Title) > 100 {
		return internal.NewValidationError("Title is required and must be at most 100 characters", internal.ErrCodeValidationFailed)
	}
	if d.Amount <= 0 {
		return internal.NewValidationError("Amount must be greater than zero", internal.ErrCodeInvalidAmount)
	}
	if !ValidCategory(d.Category) {
		return internal.NewValidationError("Invalid category", internal.ErrCodeInvalidCategory)
	}
	if len(d.Description) > 500 {
		return internal.NewValidationError("Description must be at most 500 characters", internal.ErrCodeValidationFailed)
	}
	if d.ExpenseDate == "" {
		return internal.NewValidationError("Expense date is required", internal.ErrCodeInvalidDateRange)
	}

	var err error
	d.expenseDate, err = time.Parse(dateLayout, d.ExpenseDate)
	if err != nil {
		return internal.NewValidationError("Invalid expense date format, expected YYYY-MM-DD", internal.ErrCodeInvalidDateRange)
	}

	return nil
}

// Date returns the parsed expense date. Only valid after Validate
// succeeds.
func (d *CreateReimbursementDTO) Date() time.Time {
	return d.expenseDate
}

type ReviewDTO struct {
	Comment string `json:"comment"`
}

// StatusAmount mirrors the aggregation output keyed on "_id".
type StatusAmount struct {
	Status      string  `json:"_id"`
	Count       int64   `json:"count"`
	TotalAmount float64 `json:"totalAmount"`
}

type CategoryAmount struct {
	Category    string  `json:"_id"`
	Count       int64   `json:"count"`
	TotalAmount float64 `json:"totalAmount"`
}

type MonthKey struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

type MonthAmount struct {
	Key         MonthKey `json:"_id"`
	Count       int64    `json:"count"`
	TotalAmount float64  `json:"totalAmount"`
}

type StatsDTO struct {
	ByStatus   []StatusAmount   `json:"byStatus"`
	ByCategory []CategoryAmount `json:"byCategory"`
	Monthly    []MonthAmount    `json:"monthly"`
}
