package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dungpham-npc/storefront/internal/domain"
	"github.com/dungpham-npc/storefront/pkg/database"
	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
)

const imageColumns = `id, product_id, image_key, url, is_thumbnail, position, created_at`

// ProductImageRepository implements repository.ProductImageRepository using PostgreSQL.
type ProductImageRepository struct {
	db database.DBTX
}

// NewProductImageRepository creates a new PostgreSQL-backed image repository.
func NewProductImageRepository(db database.DBTX) *ProductImageRepository {
	return &ProductImageRepository{db: db}
}

// Add appends the image at the next position. The product row is locked so
// that concurrent uploads get distinct positions.
func (r *ProductImageRepository) Add(ctx context.Context, img *domain.ProductImage) error {
	return database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		var locked string
		if err := tx.QueryRow(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, img.ProductID).Scan(&locked); err != nil {
			return mapError(err, "Product", "lock product")
		}

		var maxPosition, count int
		if err := tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(position), 0), count(*) FROM product_images WHERE product_id = $1`,
			img.ProductID,
		).Scan(&maxPosition, &count); err != nil {
			return fmt.Errorf("read image positions: %w", err)
		}
		img.Position = maxPosition + 1
		img.IsThumbnail = count == 0

		_, err := tx.Exec(ctx, `
			INSERT INTO product_images (`+imageColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			img.ID, img.ProductID, img.Key, img.URL, img.IsThumbnail, img.Position, img.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert product image: %w", err)
		}
		return nil
	})
}

func (r *ProductImageRepository) GetByID(ctx context.Context, id string) (*domain.ProductImage, error) {
	img, err := scanImage(r.db.QueryRow(ctx, `SELECT `+imageColumns+` FROM product_images WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "Product image", "get product image")
	}
	return img, nil
}

func (r *ProductImageRepository) ListByProduct(ctx context.Context, productID string) ([]domain.ProductImage, error) {
	return listImages(ctx, r.db, productID)
}

// Delete removes an image. If it was the thumbnail, the image with the lowest
// remaining position becomes the thumbnail.
func (r *ProductImageRepository) Delete(ctx context.Context, productID, imageID string) error {
	return database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		var wasThumbnail bool
		err := tx.QueryRow(ctx,
			`DELETE FROM product_images WHERE id = $1 AND product_id = $2 RETURNING is_thumbnail`,
			imageID, productID,
		).Scan(&wasThumbnail)
		if err != nil {
			return mapError(err, "Product image", "delete product image")
		}
		if !wasThumbnail {
			return nil
		}

		_, err = tx.Exec(ctx, `
			UPDATE product_images SET is_thumbnail = true
			WHERE id = (
				SELECT id FROM product_images WHERE product_id = $1 ORDER BY position ASC LIMIT 1
			)`, productID)
		if err != nil {
			return fmt.Errorf("promote thumbnail: %w", err)
		}
		return nil
	})
}

// SetThumbnail makes imageID the only thumbnail of the product.
func (r *ProductImageRepository) SetThumbnail(ctx context.Context, productID, imageID string) error {
	return database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`UPDATE product_images SET is_thumbnail = false WHERE product_id = $1 AND is_thumbnail = true`,
			productID,
		); err != nil {
			return fmt.Errorf("unset thumbnail: %w", err)
		}

		ct, err := tx.Exec(ctx,
			`UPDATE product_images SET is_thumbnail = true WHERE id = $1 AND product_id = $2`,
			imageID, productID,
		)
		if err != nil {
			return fmt.Errorf("set thumbnail: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return apperrors.NotFound("Product image")
		}
		return nil
	})
}

func listImages(ctx context.Context, db database.DBTX, productID string) ([]domain.ProductImage, error) {
	rows, err := db.Query(ctx, `
		SELECT `+imageColumns+`
		FROM product_images
		WHERE product_id = $1
		ORDER BY position ASC`, productID)
	if err != nil {
		return nil, fmt.Errorf("list product images: %w", err)
	}
	defer rows.Close()

	images := []domain.ProductImage{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product image row: %w", err)
		}
		images = append(images, *img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product image rows: %w", err)
	}
	return images, nil
}

func scanImage(row rowScanner) (*domain.ProductImage, error) {
	var img domain.ProductImage
	if err := row.Scan(
		&img.ID, &img.ProductID, &img.Key, &img.URL, &img.IsThumbnail, &img.Position, &img.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &img, nil
}
