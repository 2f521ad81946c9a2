package auth

import (
	"strings"

	"github.com/leavesync/leavesync/internal"
)

// RegisterDTO is the transport shape for self-registration.
type RegisterDTO struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role,omitempty"`
	Department string `json:"department,omitempty"`
}

func (d *RegisterDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(strings.ToLower(d.Email))
	if d.Name == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeValidationFailed)
	}
	if d.Email == "" {
		return internal.NewValidationError("email is required", internal.ErrCodeValidationFailed)
	}
	if !strings.Contains(d.Email, "@") {
		return internal.NewValidationError("email is invalid", internal.ErrCodeValidationFailed)
	}
	if len(d.Password) < 6 {
		return internal.NewValidationError("password must be at least 6 characters", internal.ErrCodeValidationFailed)
	}
	if d.Role != "" && !ValidRole(d.Role) {
		return internal.NewValidationError("Invalid role", internal.ErrCodeInvalidRole)
	}
	return nil
}

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d *LoginDTO) Validate() error {
	if d.Email == "" || d.Password == "" {
		return internal.NewValidationError("Email and password are required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateProfileDTO carries the self-service mutable fields. Pointers
// distinguish "not sent" from "clear this field".
type UpdateProfileDTO struct {
	Name       *string `json:"name,omitempty"`
	Department *string `json:"department,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Bio        *string `json:"bio,omitempty"`
}

func (d *UpdateProfileDTO) Validate() error {
	if d.Name != nil && strings.TrimSpace(*d.Name) == "" {
		return internal.NewValidationError("name cannot be empty", internal.ErrCodeValidationFailed)
	}
	return nil
}
