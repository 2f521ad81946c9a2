package postgres

import (
	"errors"

	"gorm.io/gorm"

	userDatamodel "github.com/leavesync/leavesync/internal/core/datamodel/user"
	"github.com/leavesync/leavesync/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(filter user.ListFilter) ([]*userDatamodel.User, int64, error) {
	query := r.db.Model(&userDatamodel.User{})

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []*userDatamodel.User
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

func (r *UserRepository) GetByID(id int64) (*userDatamodel.User, error) {
	var rec userDatamodel.User
	err := r.db.First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *UserRepository) Update(u *userDatamodel.User) error {
	return r.db.Save(u).Error
}

func (r *UserRepository) StatRows() ([]user.StatRow, error) {
	var rows []user.StatRow
	err := r.db.Model(&userDatamodel.User{}).
		Select("role", "is_active").
		Find(&rows).Error
	return rows, err
}
