package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	userDatamodel "github.com/leavesync/leavesync/internal/core/datamodel/user"
)

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

func ValidRole(role string) bool {
	return role == RoleEmployee || role == RoleManager || role == RoleAdmin
}

// User is the authenticated actor plus the profile fields the identity
// endpoints expose. The password hash never leaves the repository
// layer in API responses.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Department   string    `json:"department"`
	Phone        string    `json:"phone,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`
}

func (u *User) IsEmployee() bool {
	return u.Role == RoleEmployee
}

func (u *User) IsManager() bool {
	return u.Role == RoleManager
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) CanReview() bool {
	return u.Role == RoleManager || u.Role == RoleAdmin
}

type ServiceAPI interface {
	Register(dto RegisterDTO) (*User, string, error)
	Authenticate(dto LoginDTO) (*User, string, error)
	VerifyToken(tokenString string) (*User, error)
	GetProfile(userID int64) (*User, error)
	UpdateProfile(userID int64, dto UpdateProfileDTO) (*User, error)
}

type RepositoryAPI interface {
	Create(u *userDatamodel.User) error
	GetByEmail(email string) (*userDatamodel.User, error)
	GetByID(id int64) (*userDatamodel.User, error)
	Update(u *userDatamodel.User) error
}

type TokenGeneratorAPI interface {
	GenerateToken(userID int64, email string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type ctxKey string

const ContextUserKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Department:   u.Department,
		Phone:        u.Phone,
		Bio:          u.Bio,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
