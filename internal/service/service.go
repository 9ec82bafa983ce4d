// Package service holds the storefront business logic. Services are
// stateless and safe for concurrent use; callers pass the acting user's id
// explicitly.
package service

import (
	"context"
	"io"
	"time"

	"github.com/dungpham-npc/storefront/internal/auth"
	"github.com/dungpham-npc/storefront/internal/domain"
	"github.com/dungpham-npc/storefront/pkg/pagination"
)

// Product change actions carried by product events.
const (
	ProductCreated = "created"
	ProductUpdated = "updated"
	ProductDeleted = "deleted"
)

// EventPublisher publishes domain events after a change has been committed.
// Publishing is best effort: failures are logged and never undo the change.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, user *domain.User) error
	PublishCartUpdated(ctx context.Context, cart *domain.Cart) error
	PublishProductChanged(ctx context.Context, product *domain.Product, action string) error
}

// TokenIssuer issues and revokes bearer tokens.
type TokenIssuer interface {
	GenerateToken(id auth.Identity) (string, error)
	InvalidateToken(ctx context.Context, token string) error
}

// AssetStore keeps uploaded product images.
type AssetStore interface {
	// Put stores the object under key and returns its public URL.
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
}

// ProductIndex is the full-text product search index.
type ProductIndex interface {
	Index(ctx context.Context, product *domain.Product) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, query string, params pagination.Params) ([]domain.Product, int, error)
}

func utcNow() time.Time {
	return time.Now().UTC()
}
