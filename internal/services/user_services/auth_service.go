// File: internal/services/user_services/auth_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iyunix/go-assistant/internal/auth"
	"github.com/iyunix/go-assistant/internal/domain"
	"github.com/iyunix/go-assistant/internal/repository/user"
)

type AuthService struct {
	userRepo     user.UserRepository
	jwtSecretKey []byte
	tokenTTL     time.Duration
	revoker      auth.TokenRevoker
	logger       Logger
}

func NewAuthService(userRepo user.UserRepository, jwtSecretKey string, tokenTTL time.Duration, revoker auth.TokenRevoker, logger Logger) *AuthService {
	if revoker == nil {
		revoker = auth.NewMemoryTokenRevoker()
	}
	return &AuthService{
		userRepo:     userRepo,
		jwtSecretKey: []byte(jwtSecretKey),
		tokenTTL:     tokenTTL,
		revoker:      revoker,
		logger:       logger,
	}
}

// Register creates an account. Name, email and password are all required.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	const op = "Register"
	if name == "" || email == "" || password == "" {
		s.logger.Warn("registration with missing fields",
			"has_name", name != "",
			"has_email", email != "",
			"has_password", password != "")
		return nil, domain.NewValidationError(op, "Missing required fields")
	}

	email = domain.NormalizeEmail(email)
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		s.logger.Error("email lookup failed", "error", err, "email", maskEmail(email))
		return nil, domain.NewUnknownError(op, err)
	}
	if exists {
		s.logger.Warn("registration failed - email already exists", "email", maskEmail(email))
		return nil, domain.NewConflictError(op, "User with this email already exists", user.ErrDuplicateEmail)
	}

	u := &domain.User{Name: name, Email: email}
	if err := u.HashPassword(password); err != nil {
		s.logger.Error("password hashing failed", "error", err, "email", maskEmail(email))
		return nil, domain.NewUnknownError(op, fmt.Errorf("failed to hash password: %w", err))
	}

	created, err := s.userRepo.Create(ctx, u)
	if err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, domain.NewConflictError(op, "User with this email already exists", err)
		}
		s.logger.Error("user creation failed", "error", err, "email", maskEmail(email))
		return nil, domain.NewUnknownError(op, err)
	}

	s.logger.Info("user registered successfully", "user_id", created.ID, "email", maskEmail(email))
	return created, nil
}

// Login checks credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	const op = "Login"
	if email == "" || password == "" {
		return nil, "", domain.NewValidationError(op, "Email and password are required")
	}

	email = domain.NormalizeEmail(email)
	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, user.ErrUserNotFound) {
			s.logger.Error("user lookup failed", "error", err, "email", maskEmail(email))
			return nil, "", domain.NewUnknownError(op, err)
		}
		s.logger.Warn("login failed - user not found", "email", maskEmail(email))
		return nil, "", invalidCredentials(op)
	}

	if err := u.ValidatePassword(password); err != nil {
		s.logger.Warn("login failed - invalid password", "user_id", u.ID)
		return nil, "", invalidCredentials(op)
	}

	token, err := auth.GenerateJWT(u.ID, s.jwtSecretKey, s.tokenTTL)
	if err != nil {
		s.logger.Error("JWT token generation failed", "error", err, "user_id", u.ID)
		return nil, "", domain.NewUnknownError(op, fmt.Errorf("failed to generate token: %w", err))
	}

	s.logger.Info("login successful", "user_id", u.ID)
	return u, token, nil
}

// ValidateToken resolves a session token to its user id. Revoked tokens are
// rejected.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (string, error) {
	const op = "ValidateToken"
	if token == "" {
		return "", domain.NewNotAuthenticatedError(op)
	}

	claims, err := auth.ValidateToken(token, s.jwtSecretKey)
	if err != nil {
		s.logger.Debug("JWT token validation failed", "error", err)
		return "", &domain.AppError{Type: domain.ErrTypeNotAuthenticated, Operation: op, Message: "Not authenticated", Cause: err}
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		s.logger.Error("revocation check failed", "error", err, "user_id", claims.UserID)
		return "", domain.NewUnknownError(op, err)
	}
	if revoked {
		s.logger.Debug("revoked token presented", "user_id", claims.UserID)
		return "", domain.NewNotAuthenticatedError(op)
	}

	return claims.UserID, nil
}

// Logout revokes the token for the rest of its lifetime. Invalid tokens are
// ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := auth.ValidateToken(token, s.jwtSecretKey)
	if err != nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.TokenID, claims.TTL(time.Now())); err != nil {
		s.logger.Error("token revocation failed", "error", err, "user_id", claims.UserID)
		return domain.NewUnknownError("Logout", err)
	}
	s.logger.Info("user logged out", "user_id", claims.UserID)
	return nil
}

func invalidCredentials(op string) error {
	return &domain.AppError{Type: domain.ErrTypeNotAuthenticated, Operation: op, Message: "Invalid credentials"}
}
