package postgres

import (
	"errors"

	"gorm.io/gorm"

	userDatamodel "github.com/leavesync/leavesync/internal/core/datamodel/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(user *userDatamodel.User) error {
	return r.db.Create(user).Error
}

// GetByEmail returns (nil, nil) when no account exists for the address.
func (r *Repository) GetByEmail(email string) (*userDatamodel.User, error) {
	var user userDatamodel.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetByID(id int64) (*userDatamodel.User, error) {
	var user userDatamodel.User
	err := r.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) Update(user *userDatamodel.User) error {
	return r.db.Save(user).Error
}
