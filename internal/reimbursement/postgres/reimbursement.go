package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	reimbursementDatamodel "github.com/leavesync/leavesync/internal/core/datamodel/reimbursement"
	"github.com/leavesync/leavesync/internal/reimbursement"
	"github.com/leavesync/leavesync/internal/request"
)

type ReimbursementRepository struct {
	db *gorm.DB
}

func NewReimbursementRepository(db *gorm.DB) reimbursement.Repository {
	return &ReimbursementRepository{db: db}
}

func (r *ReimbursementRepository) Create(rec *reimbursementDatamodel.Reimbursement) error {
	return r.db.Create(rec).Error
}

func (r *ReimbursementRepository) GetByID(id int64) (*reimbursementDatamodel.Reimbursement, error) {
	var rec reimbursementDatamodel.Reimbursement
	err := r.db.First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *ReimbursementRepository) List(filter reimbursement.ListFilter) ([]*reimbursementDatamodel.Reimbursement, int64, error) {
	query := r.db.Model(&reimbursementDatamodel.Reimbursement{})
	query = applyVisibility(query, filter.Visibility)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []*reimbursementDatamodel.Reimbursement
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

// MarkReviewed settles a pending claim. The status guard in the WHERE
// clause makes the transition a compare-and-set.
func (r *ReimbursementRepository) MarkReviewed(id int64, status string, reviewerID int64, comment string, reviewedAt time.Time) (bool, error) {
	result := r.db.Model(&reimbursementDatamodel.Reimbursement{}).
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

func (r *ReimbursementRepository) ReviewSnapshot(id int64) (*request.ReviewSnapshot, error) {
	rec, err := r.GetByID(id)
	if err != nil || rec == nil {
		return nil, err
	}
	return &request.ReviewSnapshot{EmployeeID: rec.EmployeeID, Status: rec.Status}, nil
}

func (r *ReimbursementRepository) StatRows(vis request.Visibility) ([]reimbursement.StatRow, error) {
	var rows []reimbursement.StatRow
	query := r.db.Model(&reimbursementDatamodel.Reimbursement{}).
		Select("status", "category", "amount", "created_at")
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
