package request

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/leavesync/leavesync/internal"
	"github.com/leavesync/leavesync/internal/core/events"
)

// ReviewSnapshot is the minimal projection the engine needs before
// deciding whether a transition is allowed.
type ReviewSnapshot struct {
	EmployeeID int64
	Status     string
}

// ReviewStore is the storage contract for the approval state machine.
// MarkReviewed must be a conditional update (status must still be
// pending at write time) and report whether a row was actually changed,
// so two reviewers racing on the same record cannot both win.
type ReviewStore interface {
	ReviewSnapshot(id int64) (*ReviewSnapshot, error)
	MarkReviewed(id int64, status string, reviewerID int64, comment string, reviewedAt time.Time) (bool, error)
}

// Engine drives the pending -> approved|rejected transition shared by
// leave requests and reimbursement claims. The label names the entity
// in client-facing messages ("Leave", "Reimbursement").
type Engine struct {
	label  string
	store  ReviewStore
	bus    *events.EventBus
	logger *slog.Logger
}

func NewEngine(label string, store ReviewStore, bus *events.EventBus, logger *slog.Logger) *Engine {
	return &Engine{
		label:  label,
		store:  store,
		bus:    bus,
		logger: logger,
	}
}

// Review settles a pending request. decision must be StatusApproved or
// StatusRejected; terminal records are never touched again.
func (e *Engine) Review(ctx context.Context, id, reviewerID int64, decision, comment string) error {
	if decision != StatusApproved && decision != StatusRejected {
		return internal.NewValidationError(fmt.Sprintf("invalid review decision %q", decision), internal.ErrCodeValidationFailed)
	}

	snap, err := e.store.ReviewSnapshot(id)
	if err != nil {
		e.logger.Error("failed to load request for review", "error", err, "id", id)
		return internal.NewInternalError("failed to load request", err)
	}
	if snap == nil {
		return e.notFound()
	}
	if IsTerminal(snap.Status) {
		return e.alreadyReviewed(snap.Status)
	}

	ok, err := e.store.MarkReviewed(id, decision, reviewerID, comment, time.Now())
	if err != nil {
		e.logger.Error("failed to persist review", "error", err, "id", id, "decision", decision)
		return internal.NewInternalError("failed to update request", err)
	}
	if !ok {
		// Lost the race against another reviewer; report whatever
		// status won.
		current, err := e.store.ReviewSnapshot(id)
		if err != nil || current == nil {
			return e.alreadyReviewed("reviewed")
		}
		return e.alreadyReviewed(current.Status)
	}

	e.logger.Info("request reviewed",
		"kind", strings.ToLower(e.label),
		"id", id,
		"reviewer_id", reviewerID,
		"decision", decision)

	if e.bus != nil {
		event := events.NewRequestReviewedEvent(strings.ToLower(e.label), id, snap.EmployeeID, reviewerID, decision)
		if err := e.bus.Publish(ctx, event); err != nil {
			e.logger.Warn("failed to publish review event", "error", err, "id", id)
		}
	}

	return nil
}

func (e *Engine) notFound() *internal.AppError {
	return internal.NewNotFoundError(fmt.Sprintf("%s not found", e.label), internal.ErrCodeRequestNotFound)
}

func (e *Engine) alreadyReviewed(status string) *internal.AppError {
	return internal.NewStateConflictError(fmt.Sprintf("%s already %s", e.label, status), internal.ErrCodeAlreadyReviewed)
}
