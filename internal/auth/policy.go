package auth

import (
	"fmt"
	"strings"

	"github.com/leavesync/leavesync/internal"
	"github.com/leavesync/leavesync/internal/request"
)

// Policy is the single place role comparisons happen. Every entry
// point consults these pure decision functions instead of re-checking
// role strings inline.
type Policy struct{}

func NewPolicy() Policy {
	return Policy{}
}

// VisibilityFor derives the read scope for request listings and stats.
// Employees see only their own records. Managers and admins see
// everything, optionally narrowed to one employee by an explicit
// filter; the filter is an additional restriction, never a bypass.
func (Policy) VisibilityFor(actor *User, employeeIDFilter *int64) request.Visibility {
	if actor.IsEmployee() {
		return request.OwnedBy(actor.ID)
	}
	if employeeIDFilter != nil {
		return request.OwnedBy(*employeeIDFilter)
	}
	return request.Unrestricted()
}

// CanCreateRequests: only employees submit leave and reimbursement
// requests.
func (Policy) CanCreateRequests(actor *User) bool {
	return actor.IsEmployee()
}

func (Policy) CanReview(actor *User) bool {
	return actor.CanReview()
}

// CanDeleteLeave allows owners to withdraw their own request while it
// is still pending.
func (Policy) CanDeleteLeave(actor *User, ownerID int64, status string) error {
	if actor.ID != ownerID {
		return internal.NewForbiddenError("Access denied", internal.ErrCodeNotRequestOwner)
	}
	if status != request.StatusPending {
		return internal.NewStateConflictError("Only pending leaves can be deleted", internal.ErrCodeNotPending)
	}
	return nil
}

func (Policy) CanListUsers(actor *User) bool {
	return actor.IsManager() || actor.IsAdmin()
}

func (Policy) CanManageUsers(actor *User) bool {
	return actor.IsAdmin()
}

// CanToggleStatus rejects an admin deactivating their own account.
func (Policy) CanToggleStatus(actor *User, targetID int64) error {
	if actor.ID == targetID {
		return internal.NewValidationError("You cannot deactivate your own account", internal.ErrCodeSelfDeactivation)
	}
	return nil
}

// RoleError builds the forbidden error the role middleware returns,
// naming the roles that would have been accepted.
func RoleError(actor *User, roles ...string) *internal.AppError {
	msg := fmt.Sprintf("Access denied. Required role(s): %s. Your role: %s", strings.Join(roles, ", "), actor.Role)
	return internal.NewForbiddenError(msg, internal.ErrCodeInsufficientRole)
}
