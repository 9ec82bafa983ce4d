package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dungpham-npc/storefront/internal/catalog"
	"github.com/dungpham-npc/storefront/internal/domain"
	"github.com/dungpham-npc/storefront/pkg/database"
	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
	"github.com/dungpham-npc/storefront/pkg/pagination"
)

// productSelect lists the columns read by scanProduct. The products table is
// aliased p so that catalog columns apply.
const productSelect = `
		SELECT p.id, p.name, p.description, p.price, p.is_active, p.is_featured,
		       p.category_id, c.name,
		       COALESCE((SELECT AVG(pr.rating) FROM product_ratings pr WHERE pr.product_id = p.id), 0)::float8,
		       (SELECT count(*) FROM product_ratings pr WHERE pr.product_id = p.id),
		       (SELECT pi.url FROM product_images pi WHERE pi.product_id = p.id AND pi.is_thumbnail LIMIT 1),
		       p.created_at, p.updated_at`

const productFrom = `
		FROM products p
		JOIN categories c ON c.id = p.category_id`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, is_active, is_featured, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.Price,
		p.IsActive,
		p.IsFeatured,
		p.CategoryID,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.NotFound("Category").WithCause(err)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID loads a product with all of its images.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, productSelect+productFrom+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, mapError(err, "Product", "get product")
	}

	images, err := listImages(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	p.Images = images
	return p, nil
}

// List returns products matching pred. Each product carries only its
// thumbnail image.
func (r *ProductRepository) List(ctx context.Context, pred catalog.Predicate, sort catalog.Sort, params pagination.Params) ([]domain.Product, int, error) {
	b := catalog.NewBuilder()
	if pred != nil {
		pred(b)
	}

	limit := b.Bind(params.Size)
	offset := b.Bind(params.Offset)

	// Use count(*) OVER() for total count in a single query.
	query := fmt.Sprintf(`%s, count(*) OVER() AS total_count %s
		%s
		%s
		LIMIT %s OFFSET %s`,
		productSelect, productFrom, b.Clause(), sort.OrderBy(), limit, offset,
	)

	rows, err := r.db.Query(ctx, query, b.Args()...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var (
		products []domain.Product
		total    int
	)
	for rows.Next() {
		p, err := scanProduct(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	if products == nil {
		products = []domain.Product{}
	}
	return products, total, nil
}

// ListFeatured returns up to limit active featured products, most recently
// updated first.
func (r *ProductRepository) ListFeatured(ctx context.Context, limit int) ([]domain.Product, error) {
	rows, err := r.db.Query(ctx, productSelect+productFrom+`
		WHERE p.is_featured = true AND p.is_active = true
		ORDER BY p.updated_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list featured products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}

// Update modifies an existing product.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, is_active = $4, is_featured = $5,
		    category_id = $6, updated_at = $7
		WHERE id = $8`

	ct, err := r.db.Exec(ctx, query,
		p.Name,
		p.Description,
		p.Price,
		p.IsActive,
		p.IsFeatured,
		p.CategoryID,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.NotFound("Category").WithCause(err)
		}
		return fmt.Errorf("update product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("Product")
	}
	return nil
}

// Delete removes a product and everything it owns. Carts holding the product
// are locked, lose the line and have their totals recomputed from the items
// that remain.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		locked, err := queryIDs(ctx, tx, "lock carts", `
			SELECT id FROM carts
			WHERE id IN (SELECT cart_id FROM cart_items WHERE product_id = $1)
			ORDER BY id
			FOR UPDATE`, id)
		if err != nil {
			return err
		}

		emptied, err := queryIDs(ctx, tx, "delete cart items",
			`DELETE FROM cart_items WHERE product_id = $1 RETURNING cart_id`, id)
		if err != nil {
			return err
		}

		if cartIDs := mergeIDs(locked, emptied); len(cartIDs) > 0 {
			if _, err := tx.Exec(ctx, `
				UPDATE carts c
				SET total_price = COALESCE((SELECT SUM(ci.price * ci.quantity) FROM cart_items ci WHERE ci.cart_id = c.id), 0),
				    updated_at = NOW()
				WHERE c.id = ANY($1)`, cartIDs); err != nil {
				return fmt.Errorf("recompute cart totals: %w", err)
			}
		}

		for _, s := range []struct{ op, query string }{
			{"delete ratings", `DELETE FROM product_ratings WHERE product_id = $1`},
			{"delete images", `DELETE FROM product_images WHERE product_id = $1`},
		} {
			if _, err := tx.Exec(ctx, s.query, id); err != nil {
				return fmt.Errorf("%s: %w", s.op, err)
			}
		}

		ct, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return apperrors.NotFound("Product")
		}
		return nil
	})
}

// queryIDs runs a statement returning a single text column.
func queryIDs(ctx context.Context, db database.DBTX, op, query string, args ...any) ([]string, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}

// mergeIDs returns the distinct ids of both lists in first-seen order.
func mergeIDs(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, id := range append(append([]string{}, a...), b...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// scanProduct reads the productSelect columns followed by any extra
// destinations, such as a window count.
func scanProduct(row rowScanner, extra ...any) (*domain.Product, error) {
	var (
		p         domain.Product
		thumbnail *string
	)
	dest := []any{
		&p.ID, &p.Name, &p.Description, &p.Price, &p.IsActive, &p.IsFeatured,
		&p.CategoryID, &p.CategoryName,
		&p.AverageRating, &p.RatingCount, &thumbnail,
		&p.CreatedAt, &p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if thumbnail != nil {
		p.Images = []domain.ProductImage{{ProductID: p.ID, URL: *thumbnail, IsThumbnail: true}}
	}
	return &p, nil
}
