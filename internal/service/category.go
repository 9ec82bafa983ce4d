package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dungpham-npc/storefront/internal/domain"
	"github.com/dungpham-npc/storefront/internal/repository"
	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
)

// CategoryService manages product categories.
type CategoryService struct {
	repo   repository.CategoryRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewCategoryService(repo repository.CategoryRepository, logger *slog.Logger) *CategoryService {
	return &CategoryService{repo: repo, logger: logger, now: utcNow}
}

// CategoryInput holds category fields. A nil IsActive means active on
// create and unchanged on update.
type CategoryInput struct {
	Name        string
	Description string
	IsActive    *bool
}

// ListActive returns the active categories by name.
func (s *CategoryService) ListActive(ctx context.Context) ([]domain.Category, error) {
	return s.repo.List(ctx, true)
}

func (s *CategoryService) ListAll(ctx context.Context) ([]domain.Category, error) {
	return s.repo.List(ctx, false)
}

// GetActive returns an active category; inactive ones are reported as not found.
func (s *CategoryService) GetActive(ctx context.Context, id string) (*domain.Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsActive {
		return nil, apperrors.NotFound("Category")
	}
	return c, nil
}

func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	now := s.now()
	c := &domain.Category{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		IsActive:    input.IsActive == nil || *input.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "category created", slog.String("category_id", c.ID))
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, input CategoryInput) (*domain.Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.Name = input.Name
	c.Description = input.Description
	if input.IsActive != nil {
		c.IsActive = *input.IsActive
	}
	c.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a category that has no products.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "category deleted", slog.String("category_id", id))
	return nil
}
