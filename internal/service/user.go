package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dungpham-npc/storefront/internal/auth"
	"github.com/dungpham-npc/storefront/internal/domain"
	"github.com/dungpham-npc/storefront/internal/repository"
	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
	"github.com/dungpham-npc/storefront/pkg/pagination"
)

// UserService implements profile management and admin user management.
type UserService struct {
	users  repository.UserRepository
	roles  repository.RoleRepository
	hasher auth.PasswordHasher
	logger *slog.Logger
	now    func() time.Time
}

// NewUserService creates a new user service.
func NewUserService(
	users repository.UserRepository,
	roles repository.RoleRepository,
	hasher auth.PasswordHasher,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:  users,
		roles:  roles,
		hasher: hasher,
		logger: logger,
		now:    utcNow,
	}
}

// UpdateProfileInput holds the profile fields a user may change. Nil fields
// are left untouched.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

// CreateUserInput holds the parameters for an admin-created account.
type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      string
}

// AdminUpdateUserInput holds the fields an admin may change.
type AdminUpdateUserInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Role      *string
	IsActive  *bool
}

// --- Profile ---

func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	applyNames(user, input.FirstName, input.LastName, input.Phone)
	user.UpdatedAt = s.now()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "profile updated", slog.String("user_id", user.ID))
	return user, nil
}

// --- Admin ---

// ListUsers returns one page of users, optionally filtered by email.
func (s *UserService) ListUsers(ctx context.Context, filter repository.UserFilter, params pagination.Params) (pagination.Page[domain.User], error) {
	users, total, err := s.users.List(ctx, filter, params)
	if err != nil {
		return pagination.Page[domain.User]{}, err
	}
	return pagination.NewPage(users, total, params), nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return s.roles.List(ctx)
}

// CreateUser creates an active account with the given role.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if err := s.checkRole(ctx, input.Role); err != nil {
		return nil, err
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
		Phone:        input.Phone,
		Role:         input.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user created by admin",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role),
	)
	return user, nil
}

// UpdateUser changes profile fields, role or active flag. Admins cannot
// demote or deactivate themselves.
func (s *UserService) UpdateUser(ctx context.Context, actorID, id string, input AdminUpdateUserInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Role != nil && *input.Role != user.Role {
		if actorID == id {
			return nil, apperrors.InvalidArgument("role", "cannot change your own role")
		}
		if err := s.checkRole(ctx, *input.Role); err != nil {
			return nil, err
		}
		user.Role = *input.Role
	}
	if input.IsActive != nil && !*input.IsActive && actorID == id {
		return nil, apperrors.InvalidArgument("isActive", "cannot deactivate yourself")
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	applyNames(user, input.FirstName, input.LastName, input.Phone)
	user.UpdatedAt = s.now()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user updated by admin",
		slog.String("user_id", user.ID),
		slog.String("actor_id", actorID),
	)
	return user, nil
}

// DeactivateUser soft-deletes an account.
func (s *UserService) DeactivateUser(ctx context.Context, actorID, id string) error {
	inactive := false
	_, err := s.UpdateUser(ctx, actorID, id, AdminUpdateUserInput{IsActive: &inactive})
	return err
}

// EnsureAdmin creates the bootstrap admin account when no user with email
// exists yet.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	_, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	_, err = s.CreateUser(ctx, CreateUserInput{
		Email:     email,
		Password:  password,
		FirstName: "Admin",
		Role:      domain.RoleAdmin,
	})
	return err
}

func (s *UserService) checkRole(ctx context.Context, role string) error {
	if !domain.IsValidRole(role) {
		return apperrors.InvalidArgument("role", "unknown role "+role)
	}
	if _, err := s.roles.GetByName(ctx, role); err != nil {
		return err
	}
	return nil
}

func applyNames(u *domain.User, first, last, phone *string) {
	if first != nil {
		u.FirstName = *first
	}
	if last != nil {
		u.LastName = *last
	}
	if phone != nil {
		u.Phone = *phone
	}
}
