package http

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/dungpham-npc/storefront/internal/catalog"
	"github.com/dungpham-npc/storefront/internal/domain"
	"github.com/dungpham-npc/storefront/internal/repository"
	"github.com/dungpham-npc/storefront/internal/service"
	"github.com/dungpham-npc/storefront/pkg/pagination"
)

// ============================================================================
// Mock services
// ============================================================================

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Login(ctx context.Context, input service.LoginInput) (*service.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *mockAuthService) Register(ctx context.Context, input service.RegisterInput) (*service.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockAuthService) ChangePassword(ctx context.Context, userID string, input service.ChangePasswordInput) error {
	return m.Called(ctx, userID, input).Error(0)
}

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserService) UpdateProfile(ctx context.Context, userID string, input service.UpdateProfileInput) (*domain.User, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserService) ListUsers(ctx context.Context, filter repository.UserFilter, params pagination.Params) (pagination.Page[domain.User], error) {
	args := m.Called(ctx, filter, params)
	return args.Get(0).(pagination.Page[domain.User]), args.Error(1)
}

func (m *mockUserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Role), args.Error(1)
}

func (m *mockUserService) CreateUser(ctx context.Context, input service.CreateUserInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserService) UpdateUser(ctx context.Context, actorID, id string, input service.AdminUpdateUserInput) (*domain.User, error) {
	args := m.Called(ctx, actorID, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserService) DeactivateUser(ctx context.Context, actorID, id string) error {
	return m.Called(ctx, actorID, id).Error(0)
}

type mockRecipientService struct {
	mock.Mock
}

func (m *mockRecipientService) List(ctx context.Context, userID string) ([]domain.Recipient, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Recipient), args.Error(1)
}

func (m *mockRecipientService) Add(ctx context.Context, userID string, input service.RecipientInput) (*domain.Recipient, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Recipient), args.Error(1)
}

func (m *mockRecipientService) Update(ctx context.Context, userID, id string, input service.RecipientInput) (*domain.Recipient, error) {
	args := m.Called(ctx, userID, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Recipient), args.Error(1)
}

func (m *mockRecipientService) Delete(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *mockRecipientService) SetDefault(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

type mockCategoryService struct {
	mock.Mock
}

func (m *mockCategoryService) ListActive(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockCategoryService) ListAll(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockCategoryService) GetActive(ctx context.Context, id string) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryService) Create(ctx context.Context, input service.CategoryInput) (*domain.Category, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryService) Update(ctx context.Context, id string, input service.CategoryInput) (*domain.Category, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockProductService struct {
	mock.Mock
}

func (m *mockProductService) List(ctx context.Context, filter catalog.Filter, sort *pagination.Sort, params pagination.Params) (pagination.Page[domain.Product], error) {
	args := m.Called(ctx, filter, sort, params)
	return args.Get(0).(pagination.Page[domain.Product]), args.Error(1)
}

func (m *mockProductService) Featured(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductService) Search(ctx context.Context, query string, params pagination.Params) (pagination.Page[domain.Product], error) {
	args := m.Called(ctx, query, params)
	return args.Get(0).(pagination.Page[domain.Product]), args.Error(1)
}

func (m *mockProductService) Rate(ctx context.Context, userID, productID string, rating int) (repository.RatingSummary, error) {
	args := m.Called(ctx, userID, productID, rating)
	return args.Get(0).(repository.RatingSummary), args.Error(1)
}

func (m *mockProductService) Create(ctx context.Context, input service.CreateProductInput) (*domain.Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductService) Update(ctx context.Context, id string, input service.UpdateProductInput) (*domain.Product, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProductService) AddImage(ctx context.Context, productID string, upload service.ImageUpload) (*domain.ProductImage, error) {
	args := m.Called(ctx, productID, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductImage), args.Error(1)
}

func (m *mockProductService) DeleteImage(ctx context.Context, productID, imageID string) error {
	return m.Called(ctx, productID, imageID).Error(0)
}

func (m *mockProductService) SetThumbnail(ctx context.Context, productID, imageID string) error {
	return m.Called(ctx, productID, imageID).Error(0)
}

func (m *mockProductService) Export(ctx context.Context, filter catalog.Filter, w io.Writer) error {
	return m.Called(ctx, filter, w).Error(0)
}

func (m *mockProductService) Reindex(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockCartService struct {
	mock.Mock
}

func (m *mockCartService) GetOrCreateCart(ctx context.Context, userID string) (*domain.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartService) AddToCart(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	args := m.Called(ctx, userID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartService) UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error) {
	args := m.Called(ctx, userID, itemID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartService) RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error) {
	args := m.Called(ctx, userID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartService) ClearCart(ctx context.Context, userID string) (*domain.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}
