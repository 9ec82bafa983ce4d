package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dungpham-npc/storefront/internal/domain"
	"github.com/dungpham-npc/storefront/pkg/database"
)

// CartRepository implements repository.CartRepository using PostgreSQL.
// Every mutation holds the cart row lock for the whole transaction, so
// concurrent mutations of one cart are applied one after another.
type CartRepository struct {
	db  database.DBTX
	now func() time.Time
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(db database.DBTX) *CartRepository {
	return &CartRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// GetOrCreate returns the user's cart with its items.
func (r *CartRepository) GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error) {
	if err := ensureCart(ctx, r.db, userID, r.now()); err != nil {
		return nil, err
	}

	cart, err := scanCart(r.db.QueryRow(ctx, `
		SELECT id, user_id, total_price, created_at, updated_at
		FROM carts
		WHERE user_id = $1`, userID))
	if err != nil {
		return nil, mapError(err, "Cart", "get cart")
	}

	items, err := loadCartItems(ctx, r.db, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items
	return cart, nil
}

// Mutate loads the locked cart, applies fn and writes back the difference.
func (r *CartRepository) Mutate(ctx context.Context, userID string, fn func(*domain.Cart) error) (*domain.Cart, error) {
	var result *domain.Cart

	err := database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := ensureCart(ctx, tx, userID, r.now()); err != nil {
			return err
		}

		cart, err := scanCart(tx.QueryRow(ctx, `
			SELECT id, user_id, total_price, created_at, updated_at
			FROM carts
			WHERE user_id = $1
			FOR UPDATE`, userID))
		if err != nil {
			return mapError(err, "Cart", "lock cart")
		}

		if cart.Items, err = loadCartItems(ctx, tx, cart.ID); err != nil {
			return err
		}
		before := cart.Clone()

		if err := fn(cart); err != nil {
			return err
		}
		cart.TotalPrice = cart.CalculateTotal()

		if err := persistCartItems(ctx, tx, before, cart); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE carts SET total_price = $1, updated_at = $2 WHERE id = $3`,
			cart.TotalPrice, cart.UpdatedAt, cart.ID,
		); err != nil {
			return fmt.Errorf("update cart total: %w", err)
		}

		result = cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func ensureCart(ctx context.Context, db database.DBTX, userID string, now time.Time) error {
	_, err := db.Exec(ctx, `
		INSERT INTO carts (id, user_id, total_price, created_at, updated_at)
		VALUES ($1, $2, 0, $3, $3)
		ON CONFLICT (user_id) DO NOTHING`,
		uuid.NewString(), userID, now,
	)
	if err != nil {
		return fmt.Errorf("create cart: %w", err)
	}
	return nil
}

func loadCartItems(ctx context.Context, db database.DBTX, cartID string) ([]domain.CartItem, error) {
	rows, err := db.Query(ctx, `
		SELECT ci.id, ci.cart_id, ci.product_id, p.name, ci.price, ci.quantity, ci.created_at, ci.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at ASC, ci.id ASC`, cartID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(
			&it.ID, &it.CartID, &it.ProductID, &it.ProductName, &it.Price, &it.Quantity,
			&it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cart item row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart item rows: %w", err)
	}
	return items, nil
}

// persistCartItems writes the changes between before and after.
func persistCartItems(ctx context.Context, tx pgx.Tx, before, after *domain.Cart) error {
	if len(after.Items) == 0 && len(before.Items) > 0 {
		if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, after.ID); err != nil {
			return fmt.Errorf("clear cart items: %w", err)
		}
		return nil
	}

	for _, old := range before.Items {
		if after.FindItem(old.ID) < 0 {
			if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, old.ID); err != nil {
				return fmt.Errorf("delete cart item: %w", err)
			}
		}
	}

	for _, it := range after.Items {
		i := before.FindItem(it.ID)
		switch {
		case i < 0:
			if _, err := tx.Exec(ctx, `
				INSERT INTO cart_items (id, cart_id, product_id, price, quantity, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				it.ID, after.ID, it.ProductID, it.Price, it.Quantity, it.CreatedAt, it.UpdatedAt,
			); err != nil {
				return fmt.Errorf("insert cart item: %w", err)
			}
		case before.Items[i].Quantity != it.Quantity:
			if _, err := tx.Exec(ctx,
				`UPDATE cart_items SET quantity = $1, updated_at = $2 WHERE id = $3`,
				it.Quantity, it.UpdatedAt, it.ID,
			); err != nil {
				return fmt.Errorf("update cart item: %w", err)
			}
		}
	}
	return nil
}

func scanCart(row rowScanner) (*domain.Cart, error) {
	var c domain.Cart
	if err := row.Scan(&c.ID, &c.UserID, &c.TotalPrice, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
