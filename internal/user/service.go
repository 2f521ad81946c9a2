package user

import (
	"log/slog"

	"github.com/leavesync/leavesync/internal"
	"github.com/leavesync/leavesync/internal/auth"
	userDatamodel "github.com/leavesync/leavesync/internal/core/datamodel/user"
	"github.com/leavesync/leavesync/internal/request"
)

type Service struct {
	repo   RepositoryAPI
	policy auth.Policy
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		policy: auth.NewPolicy(),
		logger: logger,
	}
}

func (s *Service) List(filter ListFilter) ([]*auth.User, request.Pagination, error) {
	filter.Params = filter.Params.Normalize()

	records, total, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("list users failed", "error", err)
		return nil, request.Pagination{}, internal.NewInternalError("failed to list users", err)
	}

	users := make([]*auth.User, 0, len(records))
	for _, rec := range records {
		users = append(users, auth.FromDataModel(rec))
	}
	return users, request.NewPagination(total, filter.Params), nil
}

func (s *Service) GetByID(id int64) (*auth.User, error) {
	rec, err := s.load(id)
	if err != nil {
		return nil, err
	}
	return auth.FromDataModel(rec), nil
}

func (s *Service) UpdateRole(id int64, role string) (*auth.User, error) {
	dto := UpdateRoleDTO{Role: role}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	rec, err := s.load(id)
	if err != nil {
		return nil, err
	}

	rec.Role = dto.Role
	if err := s.repo.Update(rec); err != nil {
		s.logger.Error("update role failed", "user_id", id, "error", err)
		return nil, internal.NewInternalError("failed to update role", err)
	}

	s.logger.Info("role updated", "user_id", id, "role", dto.Role)
	return auth.FromDataModel(rec), nil
}

// ToggleStatus flips the account's active flag. Admins cannot
// deactivate themselves.
func (s *Service) ToggleStatus(actor *auth.User, id int64) (*auth.User, error) {
	if err := s.policy.CanToggleStatus(actor, id); err != nil {
		return nil, err
	}

	rec, err := s.load(id)
	if err != nil {
		return nil, err
	}

	rec.IsActive = !rec.IsActive
	if err := s.repo.Update(rec); err != nil {
		s.logger.Error("toggle status failed", "user_id", id, "error", err)
		return nil, internal.NewInternalError("failed to update status", err)
	}

	s.logger.Info("status toggled", "user_id", id, "is_active", rec.IsActive)
	return auth.FromDataModel(rec), nil
}

func (s *Service) Stats() (*StatsDTO, error) {
	rows, err := s.repo.StatRows()
	if err != nil {
		s.logger.Error("user stats failed", "error", err)
		return nil, internal.NewInternalError("failed to compute user stats", err)
	}

	stats := &StatsDTO{TotalUsers: int64(len(rows))}
	for _, row := range rows {
		if row.IsActive {
			stats.ActiveUsers++
		}
	}

	groups := request.GroupBy(rows,
		func(r StatRow) string { return r.Role },
		func(StatRow) float64 { return 0 },
	)
	stats.ByRole = make([]RoleCount, 0, len(groups))
	for _, g := range groups {
		stats.ByRole = append(stats.ByRole, RoleCount{Role: g.Key, Count: g.Count})
	}
	return stats, nil
}

func (s *Service) load(id int64) (*userDatamodel.User, error) {
	rec, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("get user failed", "user_id", id, "error", err)
		return nil, internal.NewInternalError("failed to get user", err)
	}
	if rec == nil {
		return nil, internal.ErrUserNotFound
	}
	return rec, nil
}
