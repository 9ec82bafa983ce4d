package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dungpham-npc/storefront/internal/auth"
	"github.com/dungpham-npc/storefront/internal/domain"
	"github.com/dungpham-npc/storefront/internal/repository"
	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
	"github.com/dungpham-npc/storefront/pkg/pagination"
)

func newTestUserService(users *mockUserRepository, roles *mockRoleRepository) *UserService {
	svc := NewUserService(users, roles, auth.NewBcryptHasher(testCost), newTestLogger())
	svc.now = clock
	return svc
}

func customer() *domain.User {
	return &domain.User{
		ID:        "user-2",
		Email:     "bob@example.com",
		FirstName: "Bob",
		Role:      domain.RoleCustomer,
		IsActive:  true,
	}
}

// --- Profile ---

func TestUpdateProfile_OnlyProvidedFields(t *testing.T) {
	users := new(mockUserRepository)
	svc := newTestUserService(users, new(mockRoleRepository))
	ctx := context.Background()

	user := customer()
	user.LastName = "Builder"
	users.On("GetByID", ctx, "user-2").Return(user, nil)
	users.On("Update", ctx, user).Return(nil)

	got, err := svc.UpdateProfile(ctx, "user-2", UpdateProfileInput{Phone: strPtr("+84 123")})

	require.NoError(t, err)
	assert.Equal(t, "Bob", got.FirstName)
	assert.Equal(t, "Builder", got.LastName)
	assert.Equal(t, "+84 123", got.Phone)
	assert.Equal(t, fixedNow, got.UpdatedAt)
	users.AssertExpectations(t)
}

func TestUpdateProfile_NotFound(t *testing.T) {
	users := new(mockUserRepository)
	svc := newTestUserService(users, new(mockRoleRepository))
	ctx := context.Background()

	users.On("GetByID", ctx, "missing").Return(nil, notFound("User"))

	_, err := svc.UpdateProfile(ctx, "missing", UpdateProfileInput{})

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

// --- Admin ---

func TestListUsers_BuildsPage(t *testing.T) {
	users := new(mockUserRepository)
	svc := newTestUserService(users, new(mockRoleRepository))
	ctx := context.Background()

	filter := repository.UserFilter{Email: strPtr("example")}
	params := pagination.Params{Page: 2, Size: 1, Offset: 1}
	users.On("List", ctx, filter, params).Return([]domain.User{*customer()}, 3, nil)

	page, err := svc.ListUsers(ctx, filter, params)

	require.NoError(t, err)
	assert.Len(t, page.Content, 1)
	assert.Equal(t, 3, page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNext)
	assert.True(t, page.HasPrev)
}

func TestCreateUser_Success(t *testing.T) {
	users, roles := new(mockUserRepository), new(mockRoleRepository)
	svc := newTestUserService(users, roles)
	ctx := context.Background()

	roles.On("GetByName", ctx, domain.RoleAdmin).Return(&domain.Role{ID: "r-2", Name: domain.RoleAdmin}, nil)
	users.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "ops@example.com" && u.Role == domain.RoleAdmin && u.IsActive
	})).Return(nil)

	user, err := svc.CreateUser(ctx, CreateUserInput{
		Email:    "OPS@example.com",
		Password: "password123",
		Role:     domain.RoleAdmin,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NoError(t, auth.NewBcryptHasher(testCost).Compare(user.PasswordHash, "password123"))
	users.AssertExpectations(t)
	roles.AssertExpectations(t)
}

func TestCreateUser_UnknownRole(t *testing.T) {
	users, roles := new(mockUserRepository), new(mockRoleRepository)
	svc := newTestUserService(users, roles)

	_, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "x@y.z", Password: "p", Role: "ROOT"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))
	roles.AssertNotCalled(t, "GetByName", mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateUser_ChangesRoleAndActive(t *testing.T) {
	users, roles := new(mockUserRepository), new(mockRoleRepository)
	svc := newTestUserService(users, roles)
	ctx := context.Background()

	user := customer()
	users.On("GetByID", ctx, "user-2").Return(user, nil)
	roles.On("GetByName", ctx, domain.RoleAdmin).Return(&domain.Role{Name: domain.RoleAdmin}, nil)
	users.On("Update", ctx, user).Return(nil)

	got, err := svc.UpdateUser(ctx, "admin-1", "user-2", AdminUpdateUserInput{
		Role:     strPtr(domain.RoleAdmin),
		IsActive: boolPtr(false),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got.Role)
	assert.False(t, got.IsActive)
}

func TestUpdateUser_CannotDemoteSelf(t *testing.T) {
	users := new(mockUserRepository)
	svc := newTestUserService(users, new(mockRoleRepository))
	ctx := context.Background()

	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin, IsActive: true}
	users.On("GetByID", ctx, "admin-1").Return(admin, nil)

	_, err := svc.UpdateUser(ctx, "admin-1", "admin-1", AdminUpdateUserInput{Role: strPtr(domain.RoleCustomer)})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeactivateUser(t *testing.T) {
	users := new(mockUserRepository)
	svc := newTestUserService(users, new(mockRoleRepository))
	ctx := context.Background()

	user := customer()
	users.On("GetByID", ctx, "user-2").Return(user, nil)
	users.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool { return !u.IsActive })).Return(nil)

	require.NoError(t, svc.DeactivateUser(ctx, "admin-1", "user-2"))
	users.AssertExpectations(t)
}

func TestDeactivateUser_Self(t *testing.T) {
	users := new(mockUserRepository)
	svc := newTestUserService(users, new(mockRoleRepository))
	ctx := context.Background()

	users.On("GetByID", ctx, "admin-1").Return(&domain.User{ID: "admin-1", Role: domain.RoleAdmin, IsActive: true}, nil)

	err := svc.DeactivateUser(ctx, "admin-1", "admin-1")

	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))
}

// --- EnsureAdmin ---

func TestEnsureAdmin_CreatesWhenMissing(t *testing.T) {
	users, roles := new(mockUserRepository), new(mockRoleRepository)
	svc := newTestUserService(users, roles)
	ctx := context.Background()

	users.On("GetByEmail", ctx, "admin@example.com").Return(nil, notFound("User"))
	roles.On("GetByName", ctx, domain.RoleAdmin).Return(&domain.Role{Name: domain.RoleAdmin}, nil)
	users.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool { return u.Role == domain.RoleAdmin })).Return(nil)

	require.NoError(t, svc.EnsureAdmin(ctx, "admin@example.com", "bootstrap-pass"))
	users.AssertExpectations(t)
}

func TestEnsureAdmin_ExistingOrUnconfigured(t *testing.T) {
	users := new(mockUserRepository)
	svc := newTestUserService(users, new(mockRoleRepository))
	ctx := context.Background()

	users.On("GetByEmail", ctx, "admin@example.com").Return(&domain.User{ID: "admin-1"}, nil)

	require.NoError(t, svc.EnsureAdmin(ctx, "admin@example.com", "pw"))
	require.NoError(t, svc.EnsureAdmin(ctx, "", ""))
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	users.AssertNumberOfCalls(t, "GetByEmail", 1)
}
