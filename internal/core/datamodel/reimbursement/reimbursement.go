package reimbursement

import "time"

type Reimbursement struct {
	ID              int64      `gorm:"primaryKey"`
	EmployeeID      int64      `gorm:"column:employee_id;not null;index"`
	Title           string     `gorm:"column:title;not null"`
	Amount          float64    `gorm:"column:amount;not null"`
	Category        string     `gorm:"column:category;not null"`
	Description     string     `gorm:"column:description;not null"`
	ExpenseDate     time.Time  `gorm:"column:expense_date;type:date;not null"`
	ReceiptURL      string     `gorm:"column:receipt_url"`
	Status          string     `gorm:"column:status;not null;default:pending;index"`
	ApprovedBy      *int64     `gorm:"column:approved_by"`
	ApproverComment string     `gorm:"column:approver_comment"`
	ReviewedAt      *time.Time `gorm:"column:reviewed_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Reimbursement) TableName() string {
	return "reimbursements"
}
