package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dungpham-npc/storefront/internal/domain"
	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
)

func newTestCategoryService(repo *mockCategoryRepository) *CategoryService {
	svc := NewCategoryService(repo, newTestLogger())
	svc.now = clock
	return svc
}

func TestListCategories(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo)
	ctx := context.Background()

	repo.On("List", ctx, true).Return([]domain.Category{{ID: "c-1", Name: "Shoes", IsActive: true}}, nil)
	repo.On("List", ctx, false).Return([]domain.Category{{ID: "c-1"}, {ID: "c-2"}}, nil)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetActiveCategory_InactiveIsNotFound(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo)
	ctx := context.Background()

	repo.On("GetByID", ctx, "c-1").Return(&domain.Category{ID: "c-1", IsActive: false}, nil)

	_, err := svc.GetActive(ctx, "c-1")

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestCreateCategory_DefaultsActive(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(c *domain.Category) bool { return c.IsActive && c.Name == "Shoes" })).Return(nil)

	c, err := svc.Create(ctx, CategoryInput{Name: "Shoes"})

	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, fixedNow, c.CreatedAt)
}

func TestCreateCategory_DuplicateName(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).Return(apperrors.Conflict("Category"))

	_, err := svc.Create(ctx, CategoryInput{Name: "Shoes", IsActive: boolPtr(false)})

	assert.True(t, errors.Is(err, apperrors.ErrConflict))
}

func TestUpdateCategory_KeepsActiveWhenNil(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo)
	ctx := context.Background()

	existing := &domain.Category{ID: "c-1", Name: "Old", IsActive: true}
	repo.On("GetByID", ctx, "c-1").Return(existing, nil)
	repo.On("Update", ctx, existing).Return(nil)

	c, err := svc.Update(ctx, "c-1", CategoryInput{Name: "New", Description: "d"})

	require.NoError(t, err)
	assert.Equal(t, "New", c.Name)
	assert.True(t, c.IsActive)
	assert.Equal(t, fixedNow, c.UpdatedAt)
}

func TestDeleteCategory_WithProductsRejected(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo)
	ctx := context.Background()

	repo.On("Delete", ctx, "c-1").Return(apperrors.InvalidArgument("Category", "still has products"))

	err := svc.Delete(ctx, "c-1")

	assert.Equal(t, 400, apperrors.HTTPStatus(err))
}
