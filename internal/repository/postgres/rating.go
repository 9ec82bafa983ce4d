package postgres

import (
	"context"
	"fmt"

	"github.com/dungpham-npc/storefront/internal/domain"
	"github.com/dungpham-npc/storefront/internal/repository"
	"github.com/dungpham-npc/storefront/pkg/database"
	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
)

// RatingRepository implements repository.RatingRepository using PostgreSQL.
type RatingRepository struct {
	db database.DBTX
}

// NewRatingRepository creates a new PostgreSQL-backed rating repository.
func NewRatingRepository(db database.DBTX) *RatingRepository {
	return &RatingRepository{db: db}
}

// Upsert stores the rating; a second rating by the same user replaces the
// score and timestamp of the first.
func (r *RatingRepository) Upsert(ctx context.Context, rt *domain.ProductRating) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO product_ratings (id, product_id, user_id, rating, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id, user_id)
		DO UPDATE SET rating = EXCLUDED.rating, created_at = EXCLUDED.created_at`,
		rt.ID, rt.ProductID, rt.UserID, rt.Rating, rt.CreatedAt,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.NotFound("Product").WithCause(err)
		}
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

func (r *RatingRepository) Summary(ctx context.Context, productID string) (repository.RatingSummary, error) {
	var s repository.RatingSummary
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(AVG(rating), 0)::float8, count(*)
		FROM product_ratings
		WHERE product_id = $1`, productID,
	).Scan(&s.Average, &s.Count)
	if err != nil {
		return repository.RatingSummary{}, fmt.Errorf("rating summary: %w", err)
	}
	return s, nil
}
