package reimbursement

import (
	"context"
	"log/slog"
	"time"

	"github.com/leavesync/leavesync/internal"
	"github.com/leavesync/leavesync/internal/auth"
	reimbursementDatamodel "github.com/leavesync/leavesync/internal/core/datamodel/reimbursement"
	"github.com/leavesync/leavesync/internal/core/events"
	"github.com/leavesync/leavesync/internal/request"
)

// StatRow is the projection the stats aggregation runs over.
type StatRow struct {
	Status    string
	Category  string
	Amount    float64
	CreatedAt time.Time
}

type Repository interface {
	request.ReviewStore
	Create(rec *reimbursementDatamodel.Reimbursement) error
	GetByID(id int64) (*reimbursementDatamodel.Reimbursement, error)
	List(filter ListFilter) ([]*reimbursementDatamodel.Reimbursement, int64, error)
	StatRows(vis request.Visibility) ([]StatRow, error)
}

type ServiceAPI interface {
	Create(actor *auth.User, dto CreateReimbursementDTO) (*Reimbursement, error)
	List(actor *auth.User, status, category string, employeeIDFilter *int64, params request.ListParams) ([]*Reimbursement, request.Pagination, error)
	GetByID(actor *auth.User, id int64) (*Reimbursement, error)
	Approve(ctx context.Context, id, reviewerID int64, comment string) (*Reimbursement, error)
	Reject(ctx context.Context, id, reviewerID int64, comment string) (*Reimbursement, error)
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
		engine: request.NewEngine("Reimbursement", repo, bus, logger),
		policy: auth.NewPolicy(),
		bus:    bus,
		logger: logger,
	}
}

func (s *Service) Create(actor *auth.User, dto CreateReimbursementDTO) (*Reimbursement, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("reimbursement validation failed", "error", err, "employee_id", actor.ID)
		return nil, err
	}

	rec := &reimbursementDatamodel.Reimbursement{
		EmployeeID:  actor.ID,
		Title:       dto.Title,
		Amount:      dto.Amount,
		Category:    dto.Category,
		Description: dto.Description,
		ExpenseDate: dto.Date(),
		ReceiptURL:  dto.ReceiptURL,
		Status:      request.StatusPending,
	}

	if err := s.repo.Create(rec); err != nil {
		s.logger.Error("failed to create reimbursement", "error", err, "employee_id", actor.ID)
		return nil, internal.NewInternalError("failed to create reimbursement claim", err)
	}

	s.logger.Info("reimbursement created",
		"reimbursement_id", rec.ID,
		"employee_id", actor.ID,
		"category", rec.Category,
		"amount", rec.Amount)

	if s.bus != nil {
		event := events.NewRequestSubmittedEvent("reimbursement", rec.ID, actor.ID)
		if err := s.bus.Publish(context.Background(), event); err != nil {
			s.logger.Warn("failed to publish submit event", "error", err, "reimbursement_id", rec.ID)
		}
	}

	return FromDataModel(rec), nil
}

func (s *Service) List(actor *auth.User, status, category string, employeeIDFilter *int64, params request.ListParams) ([]*Reimbursement, request.Pagination, error) {
	filter := ListFilter{
		Visibility: s.policy.VisibilityFor(actor, employeeIDFilter),
		Status:     status,
		Category:   category,
		Params:     params.Normalize(),
	}

	records, total, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("list reimbursements failed", "error", err)
		return nil, request.Pagination{}, internal.NewInternalError("failed to list reimbursements", err)
	}

	claims := make([]*Reimbursement, 0, len(records))
	for _, rec := range records {
		claims = append(claims, FromDataModel(rec))
	}
	return claims, request.NewPagination(total, filter.Params), nil
}

func (s *Service) GetByID(actor *auth.User, id int64) (*Reimbursement, error) {
	rec, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if actor.IsEmployee() && rec.EmployeeID != actor.ID {
		return nil, internal.NewForbiddenError("Access denied", internal.ErrCodeNotRequestOwner)
	}
	return FromDataModel(rec), nil
}

func (s *Service) Approve(ctx context.Context, id, reviewerID int64, comment string) (*Reimbursement, error) {
	return s.review(ctx, id, reviewerID, request.StatusApproved, comment)
}

func (s *Service) Reject(ctx context.Context, id, reviewerID int64, comment string) (*Reimbursement, error) {
	return s.review(ctx, id, reviewerID, request.StatusRejected, comment)
}

func (s *Service) review(ctx context.Context, id, reviewerID int64, decision, comment string) (*Reimbursement, error) {
	if err := s.engine.Review(ctx, id, reviewerID, decision, comment); err != nil {
		return nil, err
	}
	rec, err := s.load(id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(rec), nil
}

// Stats aggregates over the actor's visible rows only.
func (s *Service) Stats(actor *auth.User) (*StatsDTO, error) {
	rows, err := s.repo.StatRows(s.policy.VisibilityFor(actor, nil))
	if err != nil {
		s.logger.Error("reimbursement stats failed", "error", err)
		return nil, internal.NewInternalError("failed to compute reimbursement stats", err)
	}

	byStatus := request.GroupBy(rows,
		func(r StatRow) string { return r.Status },
		func(r StatRow) float64 { return r.Amount },
	)
	byCategory := request.GroupBy(rows,
		func(r StatRow) string { return r.Category },
		func(r StatRow) float64 { return r.Amount },
	)
	monthly := request.GroupByMonth(rows,
		func(r StatRow) time.Time { return r.CreatedAt },
		func(r StatRow) float64 { return r.Amount },
		request.MonthlyBucketCap,
	)

	stats := &StatsDTO{
		ByStatus:   make([]StatusAmount, 0, len(byStatus)),
		ByCategory: make([]CategoryAmount, 0, len(byCategory)),
		Monthly:    make([]MonthAmount, 0, len(monthly)),
	}
	for _, g := range byStatus {
		stats.ByStatus = append(stats.ByStatus, StatusAmount{Status: g.Key, Count: g.Count, TotalAmount: g.Sum})
	}
	for _, g := range byCategory {
		stats.ByCategory = append(stats.ByCategory, CategoryAmount{Category: g.Key, Count: g.Count, TotalAmount: g.Sum})
	}
	for _, g := range monthly {
		stats.Monthly = append(stats.Monthly, MonthAmount{
			Key:         MonthKey{Month: g.Month, Year: g.Year},
			Count:       g.Count,
			TotalAmount: g.Sum,
		})
	}
	return stats, nil
}

func (s *Service) load(id int64) (*reimbursementDatamodel.Reimbursement, error) {
	rec, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("get reimbursement failed", "error", err, "reimbursement_id", id)
		return nil, internal.NewInternalError("failed to get reimbursement", err)
	}
	if rec == nil {
		return nil, internal.NewNotFoundError("Reimbursement not found", internal.ErrCodeRequestNotFound)
	}
	return rec, nil
}
