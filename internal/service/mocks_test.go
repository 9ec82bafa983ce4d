package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dungpham-npc/storefront/internal/auth"
	"github.com/dungpham-npc/storefront/internal/catalog"
	"github.com/dungpham-npc/storefront/internal/domain"
	"github.com/dungpham-npc/storefront/internal/repository"
	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
	"github.com/dungpham-npc/storefront/pkg/pagination"
)

// --- Mock UserRepository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) List(ctx context.Context, filter repository.UserFilter, params pagination.Params) ([]domain.User, int, error) {
	args := m.Called(ctx, filter, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Int(1), args.Error(2)
}

// --- Mock RoleRepository ---

type mockRoleRepository struct {
	mock.Mock
}

func (m *mockRoleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Role), args.Error(1)
}

func (m *mockRoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Role), args.Error(1)
}

// --- Mock RecipientRepository ---

type mockRecipientRepository struct {
	mock.Mock
}

func (m *mockRecipientRepository) Create(ctx context.Context, rc *domain.Recipient) error {
	return m.Called(ctx, rc).Error(0)
}

func (m *mockRecipientRepository) GetByID(ctx context.Context, id string) (*domain.Recipient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Recipient), args.Error(1)
}

func (m *mockRecipientRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Recipient, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Recipient), args.Error(1)
}

func (m *mockRecipientRepository) Update(ctx context.Context, rc *domain.Recipient) error {
	return m.Called(ctx, rc).Error(0)
}

func (m *mockRecipientRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRecipientRepository) SetDefault(ctx context.Context, userID, recipientID string) error {
	return m.Called(ctx, userID, recipientID).Error(0)
}

func (m *mockRecipientRepository) CountByUserID(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

// --- Mock CategoryRepository ---

type mockCategoryRepository struct {
	mock.Mock
}

func (m *mockCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) List(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// --- Mock ProductRepository ---

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context, pred catalog.Predicate, sort catalog.Sort, params pagination.Params) ([]domain.Product, int, error) {
	args := m.Called(ctx, pred, sort, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepository) ListFeatured(ctx context.Context, limit int) ([]domain.Product, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) Update(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// --- Mock ProductImageRepository ---

type mockImageRepository struct {
	mock.Mock
}

func (m *mockImageRepository) Add(ctx context.Context, img *domain.ProductImage) error {
	return m.Called(ctx, img).Error(0)
}

func (m *mockImageRepository) GetByID(ctx context.Context, id string) (*domain.ProductImage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductImage), args.Error(1)
}

func (m *mockImageRepository) ListByProduct(ctx context.Context, productID string) ([]domain.ProductImage, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProductImage), args.Error(1)
}

func (m *mockImageRepository) Delete(ctx context.Context, productID, imageID string) error {
	return m.Called(ctx, productID, imageID).Error(0)
}

func (m *mockImageRepository) SetThumbnail(ctx context.Context, productID, imageID string) error {
	return m.Called(ctx, productID, imageID).Error(0)
}

// --- Mock RatingRepository ---

type mockRatingRepository struct {
	mock.Mock
}

func (m *mockRatingRepository) Upsert(ctx context.Context, r *domain.ProductRating) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockRatingRepository) Summary(ctx context.Context, productID string) (repository.RatingSummary, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(repository.RatingSummary), args.Error(1)
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockPublisher) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	return m.Called(ctx, cart).Error(0)
}

func (m *mockPublisher) PublishProductChanged(ctx context.Context, p *domain.Product, action string) error {
	return m.Called(ctx, p, action).Error(0)
}

// --- Mock TokenIssuer ---

type mockTokens struct {
	mock.Mock
}

func (m *mockTokens) GenerateToken(id auth.Identity) (string, error) {
	args := m.Called(id)
	return args.String(0), args.Error(1)
}

func (m *mockTokens) InvalidateToken(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

// --- Mock AssetStore ---

type mockAssets struct {
	mock.Mock
}

func (m *mockAssets) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	args := m.Called(ctx, key, contentType, body, size)
	return args.String(0), args.Error(1)
}

func (m *mockAssets) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// --- Mock ProductIndex ---

type mockIndex struct {
	mock.Mock
}

func (m *mockIndex) Index(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockIndex) Remove(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockIndex) Search(ctx context.Context, query string, params pagination.Params) ([]domain.Product, int, error) {
	args := m.Called(ctx, query, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

// --- Fake CartRepository ---

// memoryCartRepository mirrors the transactional Mutate contract: fn runs on
// a copy and the copy is stored only when fn succeeds.
type memoryCartRepository struct {
	carts map[string]*domain.Cart
	err   error
}

func newMemoryCartRepository() *memoryCartRepository {
	return &memoryCartRepository{carts: make(map[string]*domain.Cart)}
}

func (r *memoryCartRepository) GetOrCreate(_ context.Context, userID string) (*domain.Cart, error) {
	if r.err != nil {
		return nil, r.err
	}
	c, ok := r.carts[userID]
	if !ok {
		c = &domain.Cart{ID: "cart-" + userID, UserID: userID, CreatedAt: fixedNow, UpdatedAt: fixedNow}
		r.carts[userID] = c
	}
	return c.Clone(), nil
}

func (r *memoryCartRepository) Mutate(ctx context.Context, userID string, fn func(*domain.Cart) error) (*domain.Cart, error) {
	current, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(current); err != nil {
		return nil, err
	}
	current.TotalPrice = current.CalculateTotal()
	r.carts[userID] = current.Clone()
	return current, nil
}

// --- Test Helpers ---

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func notFound(subject string) error { return apperrors.NotFound(subject) }
