package user

import (
	"github.com/leavesync/leavesync/internal/auth"
	userDatamodel "github.com/leavesync/leavesync/internal/core/datamodel/user"
	"github.com/leavesync/leavesync/internal/request"
)

// ListFilter narrows the user directory listing. Search matches name or
// email, case-insensitive substring.
type ListFilter struct {
	Role     string
	IsActive *bool
	Search   string
	Params   request.ListParams
}

// StatRow is the projection the stats aggregation runs over.
type StatRow struct {
	Role     string
	IsActive bool
}

type RepositoryAPI interface {
	List(filter ListFilter) ([]*userDatamodel.User, int64, error)
	GetByID(id int64) (*userDatamodel.User, error)
	Update(u *userDatamodel.User) error
	StatRows() ([]StatRow, error)
}

type ServiceAPI interface {
	List(filter ListFilter) ([]*auth.User, request.Pagination, error)
	GetByID(id int64) (*auth.User, error)
	UpdateRole(id int64, role string) (*auth.User, error)
	ToggleStatus(actor *auth.User, id int64) (*auth.User, error)
	Stats() (*StatsDTO, error)
}
