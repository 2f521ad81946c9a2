package leave

import (
	"context"
	"log/slog"
	"time"

	"github.com/leavesync/leavesync/internal"
	"github.com/leavesync/leavesync/internal/auth"
	leaveDatamodel "github.com/leavesync/leavesync/internal/core/datamodel/leave"
	"github.com/leavesync/leavesync/internal/core/events"
	"github.com/leavesync/leavesync/internal/request"
)

// StatRow is the projection the stats aggregation runs over. Rows are
// small and recomputed per call, so grouping happens in memory.
type StatRow struct {
	Status    string
	LeaveType string
	TotalDays int
	CreatedAt time.Time
}

type Repository interface {
	request.ReviewStore
	Create(rec *leaveDatamodel.Leave) error
	GetByID(id int64) (*leaveDatamodel.Leave, error)
	List(filter ListFilter) ([]*leaveDatamodel.Leave, int64, error)
	CountOverlapping(employeeID int64, start, end time.Time) (int64, error)
	Delete(id int64) error
	StatRows(vis request.Visibility) ([]StatRow, error)
}

type ServiceAPI interface {
	Create(actor *auth.User, dto CreateLeaveDTO) (*Leave, error)
	List(actor *auth.User, status, leaveType string, employeeIDFilter *int64, params request.ListParams) ([]*Leave, request.Pagination, error)
	GetByID(actor *auth.User, id int64) (*Leave, error)
	Approve(ctx context.Context, id, reviewerID int64, comment string) (*Leave, error)
	Reject(ctx context.Context, id, reviewerID int64, comment string) (*Leave, error)
	Delete(actor *auth.User, id int64) error
	Stats(actor *auth.User) (*StatsDTO, error)
}

type Service struct {
	repo   Repository
	engine *request.Engine
	policy auth.Policy
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo Repository, bus *events.EventBus, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		engine: request.NewEngine("Leave", repo, bus, logger),
		policy: auth.NewPolicy(),
		bus:    bus,
		logger: logger,
	}
}

// Create submits a leave request for the actor. The overlap check and
// the insert are not atomic; two simultaneous submissions for the same
// range can both pass the check. Reviewers settle such duplicates.
func (s *Service) Create(actor *auth.User, dto CreateLeaveDTO) (*Leave, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("leave validation failed", "error", err, "employee_id", actor.ID)
		return nil, err
	}

	start, end := dto.Range()

	overlapping, err := s.repo.CountOverlapping(actor.ID, start, end)
	if err != nil {
		s.logger.Error("overlap check failed", "error", err, "employee_id", actor.ID)
		return nil, internal.NewInternalError("failed to check overlapping leaves", err)
	}
	if overlapping > 0 {
		return nil, internal.NewStateConflictError("You have an overlapping leave request in this date range", internal.ErrCodeOverlappingLeave)
	}

	rec := &leaveDatamodel.Leave{
		EmployeeID: actor.ID,
		LeaveType:  dto.LeaveType,
		StartDate:  start,
		EndDate:    end,
		TotalDays:  WorkingDays(start, end),
		Reason:     dto.Reason,
		Status:     request.StatusPending,
	}

	if err := s.repo.Create(rec); err != nil {
		s.logger.Error("failed to create leave", "error", err, "employee_id", actor.ID)
		return nil, internal.NewInternalError("failed to create leave request", err)
	}

	s.logger.Info("leave created",
		"leave_id", rec.ID,
		"employee_id", actor.ID,
		"leave_type", rec.LeaveType,
		"total_days", rec.TotalDays)

	if s.bus != nil {
		event := events.NewRequestSubmittedEvent("leave", rec.ID, actor.ID)
		if err := s.bus.Publish(context.Background(), event); err != nil {
			s.logger.Warn("failed to publish submit event", "error", err, "leave_id", rec.ID)
		}
	}

	return FromDataModel(rec), nil
}

func (s *Service) List(actor *auth.User, status, leaveType string, employeeIDFilter *int64, params request.ListParams) ([]*Leave, request.Pagination, error) {
	filter := ListFilter{
		Visibility: s.policy.VisibilityFor(actor, employeeIDFilter),
		Status:     status,
		LeaveType:  leaveType,
		Params:     params.Normalize(),
	}

	records, total, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("list leaves failed", "error", err)
		return nil, request.Pagination{}, internal.NewInternalError("failed to list leaves", err)
	}

	leaves := make([]*Leave, 0, len(records))
	for _, rec := range records {
		leaves = append(leaves, FromDataModel(rec))
	}
	return leaves, request.NewPagination(total, filter.Params), nil
}

func (s *Service) GetByID(actor *auth.User, id int64) (*Leave, error) {
	rec, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if actor.IsEmployee() && rec.EmployeeID != actor.ID {
		return nil, internal.NewForbiddenError("Access denied", internal.ErrCodeNotRequestOwner)
	}
	return FromDataModel(rec), nil
}

func (s *Service) Approve(ctx context.Context, id, reviewerID int64, comment string) (*Leave, error) {
	return s.review(ctx, id, reviewerID, request.StatusApproved, comment)
}

func (s *Service) Reject(ctx context.Context, id, reviewerID int64, comment string) (*Leave, error) {
	return s.review(ctx, id, reviewerID, request.StatusRejected, comment)
}

func (s *Service) review(ctx context.Context, id, reviewerID int64, decision, comment string) (*Leave, error) {
	if err := s.engine.Review(ctx, id, reviewerID, decision, comment); err != nil {
		return nil, err
	}
	rec, err := s.load(id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(rec), nil
}

// Delete removes a leave request. Only the owner may delete, and only
// while the request is still pending.
func (s *Service) Delete(actor *auth.User, id int64) error {
	rec, err := s.load(id)
	if err != nil {
		return err
	}

	if err := s.policy.CanDeleteLeave(actor, rec.EmployeeID, rec.Status); err != nil {
		s.logger.Warn("leave delete denied",
			"leave_id", id,
			"actor_id", actor.ID,
			"owner_id", rec.EmployeeID,
			"status", rec.Status)
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete leave", "error", err, "leave_id", id)
		return internal.NewInternalError("failed to delete leave request", err)
	}

	s.logger.Info("leave deleted", "leave_id", id, "employee_id", actor.ID)
	return nil
}

// Stats aggregates over the actor's visible rows only, so employees
// get their own numbers while reviewers see the whole organisation.
func (s *Service) Stats(actor *auth.User) (*StatsDTO, error) {
	rows, err := s.repo.StatRows(s.policy.VisibilityFor(actor, nil))
	if err != nil {
		s.logger.Error("leave stats failed", "error", err)
		return nil, internal.NewInternalError("failed to compute leave stats", err)
	}

	byStatus := request.GroupBy(rows,
		func(r StatRow) string { return r.Status },
		func(StatRow) float64 { return 0 },
	)
	byType := request.GroupBy(rows,
		func(r StatRow) string { return r.LeaveType },
		func(r StatRow) float64 { return float64(r.TotalDays) },
	)
	monthly := request.GroupByMonth(rows,
		func(r StatRow) time.Time { return r.CreatedAt },
		func(r StatRow) float64 { return float64(r.TotalDays) },
		request.MonthlyBucketCap,
	)

	stats := &StatsDTO{
		ByStatus: make([]StatusCount, 0, len(byStatus)),
		ByType:   make([]TypeDays, 0, len(byType)),
		Monthly:  make([]MonthCount, 0, len(monthly)),
	}
	for _, g := range byStatus {
		stats.ByStatus = append(stats.ByStatus, StatusCount{Status: g.Key, Count: g.Count})
	}
	for _, g := range byType {
		stats.ByType = append(stats.ByType, TypeDays{LeaveType: g.Key, Count: g.Count, TotalDays: int(g.Sum)})
	}
	for _, g := range monthly {
		stats.Monthly = append(stats.Monthly, MonthCount{
			Key:       MonthKey{Month: g.Month, Year: g.Year},
			Count:     g.Count,
			TotalDays: int(g.Sum),
		})
	}
	return stats, nil
}

func (s *Service) load(id int64) (*leaveDatamodel.Leave, error) {
	rec, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("get leave failed", "error", err, "leave_id", id)
		return nil, internal.NewInternalError("failed to get leave", err)
	}
	if rec == nil {
		return nil, internal.NewNotFoundError("Leave not found", internal.ErrCodeRequestNotFound)
	}
	return rec, nil
}
