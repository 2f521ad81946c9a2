package user

import (
	"strings"

	"github.com/leavesync/leavesync/internal"
	"github.com/leavesync/leavesync/internal/auth"
)

type UpdateRoleDTO struct {
	Role string `json:"role"`
}

func (d *UpdateRoleDTO) Validate() error {
	d.Role = strings.TrimSpace(d.Role)
	if !auth.ValidRole(d.Role) {
		return internal.NewValidationError("Invalid role", internal.ErrCodeInvalidRole)
	}
	return nil
}

// RoleCount mirrors the aggregation output keyed on "_id".
type RoleCount struct {
	Role  string `json:"_id"`
	Count int64  `json:"count"`
}

type StatsDTO struct {
	TotalUsers  int64       `json:"totalUsers"`
	ActiveUsers int64       `json:"activeUsers"`
	ByRole      []RoleCount `json:"byRole"`
}
