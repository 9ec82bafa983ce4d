package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dungpham-npc/storefront/internal/auth"
	"github.com/dungpham-npc/storefront/internal/domain"
	"github.com/dungpham-npc/storefront/internal/repository"
	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
)

// AuthService implements login, registration, logout and password change.
type AuthService struct {
	users  repository.UserRepository
	hasher auth.PasswordHasher
	tokens TokenIssuer
	events EventPublisher
	logger *slog.Logger
	now    func() time.Time
}

// NewAuthService creates a new auth service.
func NewAuthService(
	users repository.UserRepository,
	hasher auth.PasswordHasher,
	tokens TokenIssuer,
	events EventPublisher,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		events: events,
		logger: logger,
		now:    utcNow,
	}
}

// --- Input/Output types ---

// LoginInput holds the parameters for user login.
type LoginInput struct {
	Email    string
	Password string
}

// RegisterInput holds the parameters for registering a new customer.
type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
}

// ChangePasswordInput holds the parameters for a password change.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// AuthResult is returned by Login and Register.
type AuthResult struct {
	Email       string
	AccessToken string
	Role        string
}

// --- Operations ---

// Login checks the credentials and issues a token. Unknown emails and wrong
// passwords are indistinguishable to the caller; a deactivated account is
// refused with Forbidden.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("account")
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.WarnContext(ctx, "login failed", slog.String("user_id", user.ID))
			return nil, apperrors.Unauthorized("account")
		}
		return nil, err
	}

	if !user.IsActive {
		s.logger.WarnContext(ctx, "login refused for inactive user", slog.String("user_id", user.ID))
		return nil, apperrors.Forbidden("User")
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))
	return result, nil
}

// Register creates a customer account and logs it in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if input.Password != input.ConfirmPassword {
		return nil, apperrors.InvalidArgument("Password", "mismatch")
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        domain.NormalizeEmail(input.Email),
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         domain.RoleCustomer,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.events.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return s.issue(user)
}

// Logout revokes the presented token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.tokens.InvalidateToken(ctx, token); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "user logged out")
	return nil
}

// ChangePassword replaces the user's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, input ChangePasswordInput) error {
	if input.NewPassword != input.ConfirmPassword {
		return apperrors.InvalidArgument("Password", "mismatch")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(user.PasswordHash, input.CurrentPassword); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return apperrors.InvalidArgument("Current password", "incorrect")
		}
		return err
	}

	hash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.UpdatedAt = s.now()

	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password changed", slog.String("user_id", user.ID))
	return nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateToken(auth.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &AuthResult{Email: user.Email, AccessToken: token, Role: user.Role}, nil
}
