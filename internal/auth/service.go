package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/leavesync/leavesync/internal"
	userDatamodel "github.com/leavesync/leavesync/internal/core/datamodel/user"
)

// Service is the authentication gate: it owns credential verification,
// token issue/verify, and the self-service profile operations.
type Service struct {
	repo       RepositoryAPI
	tokenGen   TokenGeneratorAPI
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, tokenGen TokenGeneratorAPI, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		tokenGen:   tokenGen,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates an account and logs it in. A requested role of
// admin is silently downgraded to employee: self-registration can
// never grant admin.
func (s *Service) Register(dto RegisterDTO) (*User, string, error) {
	if err := dto.Validate(); err != nil {
		return nil, "", err
	}

	existing, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		return nil, "", internal.NewInternalError("failed to check existing user", err)
	}
	if existing != nil {
		return nil, "", internal.ErrEmailTaken
	}

	role := dto.Role
	if role == "" || role == RoleAdmin {
		role = RoleEmployee
	}

	department := strings.TrimSpace(dto.Department)
	if department == "" {
		department = "General"
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, "", internal.NewInternalError("failed to hash password", err)
	}

	record := &userDatamodel.User{
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: hash,
		Role:         role,
		Department:   department,
		IsActive:     true,
	}
	if err := s.repo.Create(record); err != nil {
		return nil, "", internal.NewInternalError("failed to create user", err)
	}

	token, err := s.tokenGen.GenerateToken(record.ID, record.Email)
	if err != nil {
		return nil, "", internal.NewInternalError("failed to issue token", err)
	}

	s.logger.Info("user registered", "user_id", record.ID, "role", role)
	return FromDataModel(record), token, nil
}

// Authenticate verifies credentials and issues a bearer token. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(dto LoginDTO) (*User, string, error) {
	if err := dto.Validate(); err != nil {
		return nil, "", err
	}

	record, err := s.repo.GetByEmail(strings.TrimSpace(strings.ToLower(dto.Email)))
	if err != nil {
		return nil, "", internal.NewInternalError("failed to look up user", err)
	}
	if record == nil {
		return nil, "", internal.ErrInvalidCredentials
	}
	if !record.IsActive {
		return nil, "", internal.ErrAccountInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, "", internal.ErrInvalidCredentials
	}

	token, err := s.tokenGen.GenerateToken(record.ID, record.Email)
	if err != nil {
		return nil, "", internal.NewInternalError("failed to issue token", err)
	}

	return FromDataModel(record), token, nil
}

// VerifyToken resolves a bearer token to a live actor. The referenced
// account must still exist and be active.
func (s *Service) VerifyToken(tokenString string) (*User, error) {
	claims, err := s.tokenGen.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	record, err := s.repo.GetByID(claims.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if record == nil {
		return nil, internal.NewUnauthorizedError("User not found. Token invalid.", internal.ErrCodeInvalidToken)
	}
	if !record.IsActive {
		return nil, internal.ErrAccountInactive
	}

	return FromDataModel(record), nil
}

func (s *Service) GetProfile(userID int64) (*User, error) {
	record, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if record == nil {
		return nil, internal.ErrUserNotFound
	}
	return FromDataModel(record), nil
}

func (s *Service) UpdateProfile(userID int64, dto UpdateProfileDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	record, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if record == nil {
		return nil, internal.ErrUserNotFound
	}

	if dto.Name != nil {
		record.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Department != nil {
		record.Department = strings.TrimSpace(*dto.Department)
	}
	if dto.Phone != nil {
		record.Phone = strings.TrimSpace(*dto.Phone)
	}
	if dto.Bio != nil {
		record.Bio = strings.TrimSpace(*dto.Bio)
	}

	if err := s.repo.Update(record); err != nil {
		return nil, internal.NewInternalError("failed to update profile", err)
	}

	return FromDataModel(record), nil
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

type JWTTokenGenerator struct {
	Secret []byte
	TTL    time.Duration
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	if ttl <= 0 {
		ttl = internal.DefaultTokenTTL
	}
	return &JWTTokenGenerator{
		Secret: []byte(secret),
		TTL:    ttl,
	}
}

func (j *JWTTokenGenerator) GenerateToken(userID int64, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, internal.ErrInvalidToken
}
