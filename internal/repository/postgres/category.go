package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dungpham-npc/storefront/internal/domain"
	"github.com/dungpham-npc/storefront/pkg/database"
	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
)

const categoryColumns = `id, name, description, is_active, created_at, updated_at`

// CategoryRepository implements repository.CategoryRepository using PostgreSQL.
type CategoryRepository struct {
	db database.DBTX
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(db database.DBTX) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Name, c.Description, c.IsActive, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Conflict("Category").WithCause(err)
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	var c domain.Category
	err := r.db.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapError(err, "Category", "get category")
	}
	return &c, nil
}

// List returns categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	ct, err := r.db.Exec(ctx, `
		UPDATE categories
		SET name = $1, description = $2, is_active = $3, updated_at = $4
		WHERE id = $5`,
		c.Name, c.Description, c.IsActive, c.UpdatedAt, c.ID,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Conflict("Category").WithCause(err)
		}
		return fmt.Errorf("update category: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("Category")
	}
	return nil
}

// Delete removes a category that no product references. The product check
// and the delete share a transaction that locks the category row.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	return database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		var locked string
		if err := tx.QueryRow(ctx, `SELECT id FROM categories WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
			return mapError(err, "Category", "lock category")
		}

		var inUse bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM products WHERE category_id = $1)`, id,
		).Scan(&inUse); err != nil {
			return fmt.Errorf("check category products: %w", err)
		}
		if inUse {
			return apperrors.InvalidArgument("Category", "still has products")
		}

		if _, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
}
