package leave

import (
	"time"

	leaveDatamodel "github.com/leavesync/leavesync/internal/core/datamodel/leave"
	"github.com/leavesync/leavesync/internal/request"
)

const (
	LeaveTypeSick      = "sick"
	LeaveTypeCasual    = "casual"
	LeaveTypeAnnual    = "annual"
	LeaveTypeMaternity = "maternity"
	LeaveTypePaternity = "paternity"
	LeaveTypeUnpaid    = "unpaid"
)

func ValidLeaveType(t string) bool {
	switch t {
	case LeaveTypeSick, LeaveTypeCasual, LeaveTypeAnnual, LeaveTypeMaternity, LeaveTypePaternity, LeaveTypeUnpaid:
		return true
	}
	return false
}

// Leave is the API-facing shape of a leave request.
type Leave struct {
	ID              int64      `json:"id"`
	EmployeeID      int64      `json:"employeeId"`
	LeaveType       string     `json:"leaveType"`
	StartDate       time.Time  `json:"startDate"`
	EndDate         time.Time  `json:"endDate"`
	TotalDays       int        `json:"totalDays"`
	Reason          string     `json:"reason"`
	Status          string     `json:"status"`
	ApprovedBy      *int64     `json:"approvedBy,omitempty"`
	ApproverComment string     `json:"approverComment,omitempty"`
	ReviewedAt      *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// WorkingDays counts weekdays (Monday through Friday) in the inclusive
// date range. A request covering only weekend days still costs one day.
func WorkingDays(start, end time.Time) int {
	start = truncateToDay(start)
	end = truncateToDay(end)

	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		wd := d.Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	if days < 1 {
		days = 1
	}
	return days
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ListFilter narrows leave listings. Visibility is derived from the
// actor's role, never from client input.
type ListFilter struct {
	Visibility request.Visibility
	Status     string
	LeaveType  string
	Params     request.ListParams
}

func FromDataModel(rec *leaveDatamodel.Leave) *Leave {
	return &Leave{
		ID:              rec.ID,
		EmployeeID:      rec.EmployeeID,
		LeaveType:       rec.LeaveType,
		StartDate:       rec.StartDate,
		EndDate:         rec.EndDate,
		TotalDays:       rec.TotalDays,
		Reason:          rec.Reason,
		Status:          rec.Status,
		ApprovedBy:      rec.ApprovedBy,
		ApproverComment: rec.ApproverComment,
		ReviewedAt:      rec.ReviewedAt,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}
