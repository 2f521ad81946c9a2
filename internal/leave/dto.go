package leave

import (
	"strings"
	"time"

	"github.com/leavesync/leavesync/internal"
)

const dateLayout = "2006-01-02"

type CreateLeaveDTO struct {
	LeaveType string `json:"leaveType"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`

	start time.Time
	end   time.Time
}

func (d *CreateLeaveDTO) Validate() error {
	d.LeaveType = strings.TrimSpace(d.LeaveType)
	d.Reason = strings.TrimSpace(d.Reason)

	if !ValidLeaveType(d.LeaveType) {
		return internal.NewValidationError("Invalid leave type", internal.ErrCodeInvalidLeaveType)
	}

	if d.StartDate == "" || d.EndDate == "" {
		return internal.NewValidationError("Start date and end date are required", internal.ErrCodeInvalidDateRange)
	}

	var err error
	d.start, err = time.Parse(dateLayout, d.StartDate)
	if err != nil {
		return internal.NewValidationError("Invalid start date format, expected YYYY-MM-DD", internal.ErrCodeInvalidDateRange)
	}
	d.end, err = time.Parse(dateLayout, d.EndDate)
	if err != nil {
		return internal.NewValidationError("Invalid end date format, expected YYYY-MM-DD", internal.ErrCodeInvalidDateRange)
	}

	if d.end.Before(d.start) {
		return internal.NewValidationError("End date cannot be before start date", internal.ErrCodeInvalidDateRange)
	}

	if len(d.Reason) < 10 || len(d.Reason) > 500 {
		return internal.NewValidationError("Reason must be between 10 and 500 characters", internal.ErrCodeInvalidReason)
	}

	return nil
}

// Range returns the parsed dates. Only valid after Validate succeeds.
func (d *CreateLeaveDTO) Range() (time.Time, time.Time) {
	return d.start, d.end
}

type ReviewDTO struct {
	Comment string `json:"comment"`
}

// StatusCount mirrors the aggregation output keyed on "_id".
type StatusCount struct {
	Status string `json:"_id"`
	Count  int64  `json:"count"`
}

type TypeDays struct {
	LeaveType string `json:"_id"`
	Count     int64  `json:"count"`
	TotalDays int    `json:"totalDays"`
}

type MonthKey struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

type MonthCount struct {
	Key       MonthKey `json:"_id"`
	Count     int64    `json:"count"`
	TotalDays int      `json:"totalDays"`
}

type StatsDTO struct {
	ByStatus []StatusCount `json:"byStatus"`
	ByType   []TypeDays    `json:"byType"`
	Monthly  []MonthCount  `json:"monthly"`
}
