// File: internal/services/user_services/user_service.go
package user_services

import (
	"context"
	"errors"
	"time"

	"github.com/iyunix/go-assistant/internal/auth"
	"github.com/iyunix/go-assistant/internal/domain"
	"github.com/iyunix/go-assistant/internal/repository/user"
)

// UserService is the main service that composes other user-related services
type UserService struct {
	*AuthService
	userRepo user.UserRepository
	logger   Logger
}

func NewUserService(userRepo user.UserRepository, jwtSecret string, tokenTTL time.Duration, revoker auth.TokenRevoker, logger Logger) *UserService {
	return &UserService{
		AuthService: NewAuthService(userRepo, jwtSecret, tokenTTL, revoker, logger),
		userRepo:    userRepo,
		logger:      logger,
	}
}

// Profile returns the account behind an authenticated user id.
func (s *UserService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	const op = "Profile"
	if userID == "" {
		return nil, domain.NewNotAuthenticatedError(op)
	}
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			// token outlived its account
			return nil, domain.NewNotAuthenticatedError(op)
		}
		s.logger.Error("profile lookup failed", "error", err, "user_id", userID)
		return nil, domain.NewUnknownError(op, err)
	}
	return u, nil
}

// UserServiceInterface defines the complete interface for user operations
type UserServiceInterface interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	ValidateToken(ctx context.Context, token string) (string, error)
	Logout(ctx context.Context, token string) error
	Profile(ctx context.Context, userID string) (*domain.User, error)
}

var _ UserServiceInterface = (*UserService)(nil)
