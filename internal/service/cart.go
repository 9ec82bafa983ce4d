package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dungpham-npc/storefront/internal/domain"
	"github.com/dungpham-npc/storefront/internal/repository"
	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
)

// CartService implements the shopping cart. Each mutation runs inside one
// repository transaction holding the cart lock; totals are recomputed from
// the items before the transaction commits.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	events   EventPublisher
	logger   *slog.Logger
	now      func() time.Time
}

// NewCartService creates a new cart service.
func NewCartService(
	carts repository.CartRepository,
	products repository.ProductRepository,
	events EventPublisher,
	logger *slog.Logger,
) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		events:   events,
		logger:   logger,
		now:      utcNow,
	}
}

// GetOrCreateCart returns the user's cart, creating an empty one on first use.
func (s *CartService) GetOrCreateCart(ctx context.Context, userID string) (*domain.Cart, error) {
	return s.carts.GetOrCreate(ctx, userID)
}

// AddToCart adds quantity units of a product. The product must exist and be
// active. A product already in the cart has its line quantity increased.
func (s *CartService) AddToCart(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, apperrors.InvalidArgument("quantity", "must be at least 1")
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, apperrors.BadRequest("Product")
	}

	cart, err := s.carts.Mutate(ctx, userID, func(c *domain.Cart) error {
		return c.AddProduct(product, quantity, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
		slog.Int("quantity", quantity),
	)
	s.publish(ctx, cart)
	return cart, nil
}

// UpdateItemQuantity sets a line's quantity. Quantity must be positive.
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidArgument("quantity", "must be greater than 0")
	}

	cart, err := s.carts.Mutate(ctx, userID, func(c *domain.Cart) error {
		return c.UpdateQuantity(itemID, quantity, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, cart)
	return cart, nil
}

// RemoveItem deletes a line from the user's cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error) {
	cart, err := s.carts.Mutate(ctx, userID, func(c *domain.Cart) error {
		return c.RemoveItem(itemID, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, cart)
	return cart, nil
}

// ClearCart removes every line; the total becomes zero.
func (s *CartService) ClearCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.carts.Mutate(ctx, userID, func(c *domain.Cart) error {
		c.Clear(s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "cart cleared", slog.String("user_id", userID))
	s.publish(ctx, cart)
	return cart, nil
}

// CalculateTotal returns the exact sum of price x quantity over the items.
func (s *CartService) CalculateTotal(cart *domain.Cart) decimal.Decimal {
	return cart.CalculateTotal()
}

func (s *CartService) publish(ctx context.Context, cart *domain.Cart) {
	if err := s.events.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("user_id", cart.UserID),
			slog.String("error", err.Error()),
		)
	}
}
