package leave

import "time"

type Leave struct {
	ID              int64      `gorm:"primaryKey"`
	EmployeeID      int64      `gorm:"column:employee_id;not null;index"`
	LeaveType       string     `gorm:"column:leave_type;not null"`
	StartDate       time.Time  `gorm:"column:start_date;type:date;not null"`
	EndDate         time.Time  `gorm:"column:end_date;type:date;not null"`
	TotalDays       int        `gorm:"column:total_days;not null"`
	Reason          string     `gorm:"column:reason;not null"`
	Status          string     `gorm:"column:status;not null;default:pending;index"`
	ApprovedBy      *int64     `gorm:"column:approved_by"`
	ApproverComment string     `gorm:"column:approver_comment"`
	ReviewedAt      *time.Time `gorm:"column:reviewed_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Leave) TableName() string {
	return "leaves"
}
