package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dungpham-npc/storefront/internal/catalog"
	"github.com/dungpham-npc/storefront/internal/domain"
	"github.com/dungpham-npc/storefront/internal/export"
	"github.com/dungpham-npc/storefront/internal/repository"
	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
	"github.com/dungpham-npc/storefront/pkg/pagination"
	"github.com/dungpham-npc/storefront/pkg/slug"
)

const exportPageSize = pagination.MaxSize

// ProductService implements catalog browsing and admin product management.
type ProductService struct {
	products   repository.ProductRepository
	images     repository.ProductImageRepository
	ratings    repository.RatingRepository
	categories repository.CategoryRepository
	assets     AssetStore
	index      ProductIndex
	events     EventPublisher
	logger     *slog.Logger
	now        func() time.Time
}

// ProductDeps groups the collaborators of ProductService.
type ProductDeps struct {
	Products   repository.ProductRepository
	Images     repository.ProductImageRepository
	Ratings    repository.RatingRepository
	Categories repository.CategoryRepository
	Assets     AssetStore
	Index      ProductIndex
	Events     EventPublisher
}

// NewProductService creates a new product service.
func NewProductService(deps ProductDeps, logger *slog.Logger) *ProductService {
	return &ProductService{
		products:   deps.Products,
		images:     deps.Images,
		ratings:    deps.Ratings,
		categories: deps.Categories,
		assets:     deps.Assets,
		index:      deps.Index,
		events:     deps.Events,
		logger:     logger,
		now:        utcNow,
	}
}

// CreateProductInput holds the parameters for a new product.
type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	CategoryID  string
	IsActive    *bool
	IsFeatured  bool
}

// UpdateProductInput holds the product fields to change. Nil fields are left
// untouched.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	CategoryID  *string
	IsActive    *bool
	IsFeatured  *bool
}

// ImageUpload is an image file received from an admin.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// --- Browsing ---

// List returns one page of products matching filter. sort may be nil.
func (s *ProductService) List(ctx context.Context, filter catalog.Filter, sort *pagination.Sort, params pagination.Params) (pagination.Page[domain.Product], error) {
	order, err := catalog.ParseSort(sort)
	if err != nil {
		return pagination.Page[domain.Product]{}, err
	}

	products, total, err := s.products.List(ctx, filter.Predicate(), order, params)
	if err != nil {
		return pagination.Page[domain.Product]{}, err
	}
	return pagination.NewPage(products, total, params), nil
}

// Featured returns the featured shelf.
func (s *ProductService) Featured(ctx context.Context) ([]domain.Product, error) {
	return s.products.ListFeatured(ctx, domain.FeaturedLimit)
}

// Get returns an active product with its images and rating summary.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, apperrors.NotFound("Product")
	}
	return p, nil
}

// Search queries the search index.
func (s *ProductService) Search(ctx context.Context, query string, params pagination.Params) (pagination.Page[domain.Product], error) {
	products, total, err := s.index.Search(ctx, query, params)
	if err != nil {
		return pagination.Page[domain.Product]{}, err
	}
	return pagination.NewPage(products, total, params), nil
}

// Rate records the user's rating and returns the product's new summary.
func (s *ProductService) Rate(ctx context.Context, userID, productID string, rating int) (repository.RatingSummary, error) {
	if !domain.ValidRating(rating) {
		return repository.RatingSummary{}, apperrors.InvalidArgument("rating", "must be between 1 and 5")
	}
	if _, err := s.Get(ctx, productID); err != nil {
		return repository.RatingSummary{}, err
	}

	err := s.ratings.Upsert(ctx, &domain.ProductRating{
		ID:        uuid.NewString(),
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		CreatedAt: s.now(),
	})
	if err != nil {
		return repository.RatingSummary{}, err
	}
	return s.ratings.Summary(ctx, productID)
}

// --- Admin ---

// Create validates input and stores a new product in an existing category.
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if input.Price.IsNegative() {
		return nil, apperrors.InvalidArgument("price", "must not be negative")
	}
	category, err := s.categories.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := &domain.Product{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Description:  input.Description,
		Price:        input.Price,
		IsActive:     input.IsActive == nil || *input.IsActive,
		IsFeatured:   input.IsFeatured,
		CategoryID:   category.ID,
		CategoryName: category.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "product created", slog.String("product_id", p.ID))
	s.changed(ctx, p, ProductCreated)
	return p, nil
}

// Update applies the fields set in input to an existing product.
func (s *ProductService) Update(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, apperrors.InvalidArgument("price", "must not be negative")
		}
		p.Price = *input.Price
	}
	if input.CategoryID != nil && *input.CategoryID != p.CategoryID {
		category, err := s.categories.GetByID(ctx, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		p.CategoryID = category.ID
		p.CategoryName = category.Name
	}
	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.Description != nil {
		p.Description = *input.Description
	}
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}
	if input.IsFeatured != nil {
		p.IsFeatured = *input.IsFeatured
	}
	p.UpdatedAt = s.now()

	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "product updated", slog.String("product_id", p.ID))
	s.changed(ctx, p, ProductUpdated)
	return p, nil
}

// Delete removes the product with its images, ratings and cart lines, then
// deletes the stored image files.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}

	for _, img := range p.Images {
		s.removeAsset(ctx, img.Key)
	}

	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id))
	s.changed(ctx, p, ProductDeleted)
	return nil
}

// AddImage stores the upload and appends it to the product's images.
func (s *ProductService) AddImage(ctx context.Context, productID string, upload ImageUpload) (*domain.ProductImage, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	key := slug.ObjectKey("products", productID, upload.Filename)
	url, err := s.assets.Put(ctx, key, upload.ContentType, upload.Body, upload.Size)
	if err != nil {
		return nil, err
	}

	img := &domain.ProductImage{
		ID:        uuid.NewString(),
		ProductID: productID,
		Key:       key,
		URL:       url,
		CreatedAt: s.now(),
	}
	if err := s.images.Add(ctx, img); err != nil {
		s.removeAsset(ctx, key)
		return nil, err
	}

	s.logger.InfoContext(ctx, "product image added",
		slog.String("product_id", productID),
		slog.String("image_id", img.ID),
	)
	s.reindex(ctx, productID)
	return img, nil
}

// DeleteImage removes an image of the product.
func (s *ProductService) DeleteImage(ctx context.Context, productID, imageID string) error {
	img, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		return err
	}
	if img.ProductID != productID {
		return apperrors.NotFound("Product image")
	}
	if err := s.images.Delete(ctx, productID, imageID); err != nil {
		return err
	}

	s.removeAsset(ctx, img.Key)
	s.reindex(ctx, productID)
	return nil
}

// SetThumbnail makes the image the product's thumbnail.
func (s *ProductService) SetThumbnail(ctx context.Context, productID, imageID string) error {
	if err := s.images.SetThumbnail(ctx, productID, imageID); err != nil {
		return err
	}
	s.reindex(ctx, productID)
	return nil
}

// Export writes every product matching filter as a spreadsheet.
func (s *ProductService) Export(ctx context.Context, filter catalog.Filter, w io.Writer) error {
	var all []domain.Product
	err := s.each(ctx, filter, func(batch []domain.Product) error {
		all = append(all, batch...)
		return nil
	})
	if err != nil {
		return err
	}
	return export.WriteProducts(w, all)
}

// Reindex rebuilds the search index from the catalog and returns the number
// of indexed products.
func (s *ProductService) Reindex(ctx context.Context) (int, error) {
	n := 0
	err := s.each(ctx, catalog.Filter{}, func(batch []domain.Product) error {
		for i := range batch {
			if err := s.index.Index(ctx, &batch[i]); err != nil {
				return fmt.Errorf("index product %s: %w", batch[i].ID, err)
			}
			n++
		}
		return nil
	})
	if err != nil {
		return n, err
	}
	s.logger.InfoContext(ctx, "search index rebuilt", slog.Int("products", n))
	return n, nil
}

// each walks every product matching filter in pages of exportPageSize.
func (s *ProductService) each(ctx context.Context, filter catalog.Filter, fn func([]domain.Product) error) error {
	seen := 0
	for page := 1; ; page++ {
		params := pagination.Params{Page: page, Size: exportPageSize, Offset: (page - 1) * exportPageSize}
		products, total, err := s.products.List(ctx, filter.Predicate(), catalog.DefaultSort, params)
		if err != nil {
			return err
		}
		if err := fn(products); err != nil {
			return err
		}
		seen += len(products)
		if len(products) == 0 || seen >= total {
			return nil
		}
	}
}

// changed keeps the search index in step and publishes product.changed.
// Both are best effort.
func (s *ProductService) changed(ctx context.Context, p *domain.Product, action string) {
	var err error
	if action == ProductDeleted {
		err = s.index.Remove(ctx, p.ID)
	} else {
		err = s.index.Index(ctx, p)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to update search index",
			slog.String("product_id", p.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.events.PublishProductChanged(ctx, p, action); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.changed event",
			slog.String("product_id", p.ID),
			slog.String("error", err.Error()),
		)
	}
}

// reindex refreshes the indexed document after an image change.
func (s *ProductService) reindex(ctx context.Context, productID string) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to reload product for indexing",
				slog.String("product_id", productID),
				slog.String("error", err.Error()),
			)
		}
		return
	}
	s.changed(ctx, p, ProductUpdated)
}

func (s *ProductService) removeAsset(ctx context.Context, key string) {
	if err := s.assets.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to delete asset",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
