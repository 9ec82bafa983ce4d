// Package repository declares the persistence contracts used by the services.
package repository

import (
	"context"

	"github.com/dungpham-npc/storefront/internal/catalog"
	"github.com/dungpham-npc/storefront/internal/domain"
	"github.com/dungpham-npc/storefront/pkg/pagination"
)

// UserFilter narrows an admin user listing.
type UserFilter struct {
	// Email matches case-insensitively as a substring.
	Email *string
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user. A taken email yields a Conflict error.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their normalized email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update modifies profile, role, password hash and active flag.
	Update(ctx context.Context, user *domain.User) error

	// List returns one page of users and the total number of matches.
	List(ctx context.Context, filter UserFilter, params pagination.Params) ([]domain.User, int, error)
}

// RoleRepository reads the seeded roles.
type RoleRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
}

// RecipientRepository defines the interface for recipient persistence operations.
type RecipientRepository interface {
	Create(ctx context.Context, recipient *domain.Recipient) error
	GetByID(ctx context.Context, id string) (*domain.Recipient, error)

	// ListByUserID returns the user's recipients, default first.
	ListByUserID(ctx context.Context, userID string) ([]domain.Recipient, error)

	Update(ctx context.Context, recipient *domain.Recipient) error
	Delete(ctx context.Context, id string) error

	// SetDefault marks the recipient as the user's default, unsetting any
	// previous default in the same transaction.
	SetDefault(ctx context.Context, userID, recipientID string) error

	CountByUserID(ctx context.Context, userID string) (int, error)
}

// CategoryRepository defines the interface for category persistence operations.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)

	// List returns categories ordered by name, optionally only active ones.
	List(ctx context.Context, activeOnly bool) ([]domain.Category, error)

	Update(ctx context.Context, category *domain.Category) error

	// Delete removes the category. It fails with InvalidArgument while
	// products still reference it.
	Delete(ctx context.Context, id string) error
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error

	// GetByID loads the product with its ordered images and rating summary.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns one page of products matching pred and the total count.
	List(ctx context.Context, pred catalog.Predicate, sort catalog.Sort, params pagination.Params) ([]domain.Product, int, error)

	// ListFeatured returns active featured products, most recently updated first.
	ListFeatured(ctx context.Context, limit int) ([]domain.Product, error)

	Update(ctx context.Context, product *domain.Product) error

	// Delete removes the product together with its images, ratings and
	// cart lines.
	Delete(ctx context.Context, id string) error
}

// ProductImageRepository defines the interface for product image persistence.
type ProductImageRepository interface {
	// Add appends the image after the product's last one. The first image of
	// a product becomes its thumbnail.
	Add(ctx context.Context, image *domain.ProductImage) error

	GetByID(ctx context.Context, id string) (*domain.ProductImage, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.ProductImage, error)

	// Delete removes the image. When it was the thumbnail the next image by
	// position takes over.
	Delete(ctx context.Context, productID, imageID string) error

	// SetThumbnail makes imageID the product's only thumbnail.
	SetThumbnail(ctx context.Context, productID, imageID string) error
}

// RatingSummary aggregates a product's ratings.
type RatingSummary struct {
	Average float64
	Count   int
}

// RatingRepository defines the interface for product rating persistence.
type RatingRepository interface {
	// Upsert stores the user's rating, replacing an earlier one.
	Upsert(ctx context.Context, rating *domain.ProductRating) error

	Summary(ctx context.Context, productID string) (RatingSummary, error)
}

// CartRepository persists carts. Mutations are serialized per cart.
type CartRepository interface {
	// GetOrCreate returns the user's cart, creating an empty one if needed.
	GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error)

	// Mutate locks the user's cart, applies fn to the loaded cart and
	// persists the result in one transaction. When fn returns an error
	// nothing is written.
	Mutate(ctx context.Context, userID string, fn func(*domain.Cart) error) (*domain.Cart, error)
}
