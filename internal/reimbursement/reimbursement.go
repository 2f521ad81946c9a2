package reimbursement

import (
	"time"

	reimbursementDatamodel "github.com/leavesync/leavesync/internal/core/datamodel/reimbursement"
	"github.com/leavesync/leavesync/internal/request"
)

const (
	CategoryTravel    = "Travel"
	CategoryFood      = "Food"
	CategoryEquipment = "Equipment"
	CategoryMedical   = "Medical"
	CategoryOther     = "Other"
)

func ValidCategory(c string) bool {
	switch c {
	case CategoryTravel, CategoryFood, CategoryEquipment, CategoryMedical, CategoryOther:
		return true
	}
	return false
}

// Reimbursement is the API-facing shape of a reimbursement claim.
type Reimbursement struct {
	ID              int64      `json:"id"`
	EmployeeID      int64      `json:"employeeId"`
	Title           string     `json:"title"`
	Amount          float64    `json:"amount"`
	Category        string     `json:"category"`
	Description     string     `json:"description,omitempty"`
	ExpenseDate     time.Time  `json:"expenseDate"`
	ReceiptURL      string     `json:"receiptUrl,omitempty"`
	Status          string     `json:"status"`
	ApprovedBy      *int64     `json:"approvedBy,omitempty"`
	ApproverComment string     `json:"approverComment,omitempty"`
	ReviewedAt      *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type ListFilter struct {
	Visibility request.Visibility
	Status     string
	Category   string
	Params     request.ListParams
}

func FromDataModel(rec *reimbursementDatamodel.Reimbursement) *Reimbursement {
	return &Reimbursement{
		ID:              rec.ID,
		EmployeeID:      rec.EmployeeID,
		Title:           rec.Title,
		Amount:          rec.Amount,
		Category:        rec.Category,
		Description:     rec.Description,
		ExpenseDate:     rec.ExpenseDate,
		ReceiptURL:      rec.ReceiptURL,
		Status:          rec.Status,
		ApprovedBy:      rec.ApprovedBy,
		ApproverComment: rec.ApproverComment,
		ReviewedAt:      rec.ReviewedAt,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}
