package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	leaveDatamodel "github.com/leavesync/leavesync/internal/core/datamodel/leave"
	"github.com/leavesync/leavesync/internal/leave"
	"github.com/leavesync/leavesync/internal/request"
)

type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) leave.Repository {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) Create(rec *leaveDatamodel.Leave) error {
	return r.db.Create(rec).Error
}

func (r *LeaveRepository) GetByID(id int64) (*leaveDatamodel.Leave, error) {
	var rec leaveDatamodel.Leave
	err := r.db.First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *LeaveRepository) List(filter leave.ListFilter) ([]*leaveDatamodel.Leave, int64, error) {
	query := r.db.Model(&leaveDatamodel.Leave{})
	query = applyVisibility(query, filter.Visibility)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.LeaveType != "" {
		query = query.Where("leave_type = ?", filter.LeaveType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []*leaveDatamodel.Leave
	err := query.
		Order("created_at DESC").
		Limit(filter.Params.Limit).
		Offset(filter.Params.Offset()).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// CountOverlapping counts the employee's non-rejected leaves whose date
// range intersects [start, end].
func (r *LeaveRepository) CountOverlapping(employeeID int64, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&leaveDatamodel.Leave{}).
		Where("employee_id = ?", employeeID).
		Where("status <> ?", request.StatusRejected).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Count(&count).Error
	return count, err
}

// MarkReviewed settles a pending leave. The status guard in the WHERE
// clause makes the transition a compare-and-set: when another reviewer
// got there first, no row matches and the caller is told so.
func (r *LeaveRepository) MarkReviewed(id int64, status string, reviewerID int64, comment string, reviewedAt time.Time) (bool, error) {
	result := r.db.Model(&leaveDatamodel.Leave{}).
		Where("id = ? AND status = ?", id, request.StatusPending).
		Updates(map[string]interface{}{
			"status":           status,
			"approved_by":      reviewerID,
			"approver_comment": comment,
			"reviewed_at":      reviewedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *LeaveRepository) ReviewSnapshot(id int64) (*request.ReviewSnapshot, error) {
	rec, err := r.GetByID(id)
	if err != nil || rec == nil {
		return nil, err
	}
	return &request.ReviewSnapshot{EmployeeID: rec.EmployeeID, Status: rec.Status}, nil
}

func (r *LeaveRepository) Delete(id int64) error {
	return r.db.Delete(&leaveDatamodel.Leave{}, id).Error
}

func (r *LeaveRepository) StatRows(vis request.Visibility) ([]leave.StatRow, error) {
	var rows []leave.StatRow
	query := r.db.Model(&leaveDatamodel.Leave{}).
		Select("status", "leave_type", "total_days", "created_at")
	query = applyVisibility(query, vis)
	err := query.Find(&rows).Error
	return rows, err
}

func applyVisibility(query *gorm.DB, vis request.Visibility) *gorm.DB {
	if vis.EmployeeID != nil {
		return query.Where("employee_id = ?", *vis.EmployeeID)
	}
	return query
}
