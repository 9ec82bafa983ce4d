package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
)

// Cart limits.
const (
	MaxQuantityPerItem = 100
	MaxItemsPerCart    = 50
)

// Cart belongs to exactly one user and owns its items. TotalPrice always
// equals CalculateTotal after a mutation.
type Cart struct {
	ID         string
	UserID     string
	Items      []CartItem
	TotalPrice decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CartItem is one product line. Price is the product price captured when the
// line was first added.
type CartItem struct {
	ID          string
	CartID      string
	ProductID   string
	ProductName string
	Price       decimal.Decimal
	Quantity    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Subtotal is Price x Quantity.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CalculateTotal sums the item subtotals exactly.
func (c *Cart) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Recalculate stores the computed total.
func (c *Cart) Recalculate(now time.Time) {
	c.TotalPrice = c.CalculateTotal()
	c.UpdatedAt = now
}

// ItemCount is the sum of quantities.
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// FindItem returns the index of the item with id, or -1.
func (c *Cart) FindItem(id string) int {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// FindProduct returns the index of the line for productID, or -1.
func (c *Cart) FindProduct(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddProduct adds quantity units of p. An existing line for the product has
// its quantity increased and keeps its original price; otherwise a new line
// captures the current price.
func (c *Cart) AddProduct(p *Product, quantity int, now time.Time) error {
	if quantity < 1 {
		return apperrors.InvalidArgument("quantity", "must be at least 1")
	}
	if quantity > MaxQuantityPerItem {
		return apperrors.InvalidArgument("quantity", "must not exceed 100")
	}

	if i := c.FindProduct(p.ID); i >= 0 {
		if c.Items[i].Quantity+quantity > MaxQuantityPerItem {
			return apperrors.InvalidArgument("quantity", "must not exceed 100")
		}
		c.Items[i].Quantity += quantity
		c.Items[i].UpdatedAt = now
		c.Recalculate(now)
		return nil
	}

	if len(c.Items) >= MaxItemsPerCart {
		return apperrors.InvalidArgument("cart", "must not contain more than 50 items")
	}
	c.Items = append(c.Items, CartItem{
		ID:          uuid.NewString(),
		CartID:      c.ID,
		ProductID:   p.ID,
		ProductName: p.Name,
		Price:       p.Price,
		Quantity:    quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	c.Recalculate(now)
	return nil
}

// UpdateQuantity sets the quantity of an existing line. The cart is left
// unchanged on error.
func (c *Cart) UpdateQuantity(itemID string, quantity int, now time.Time) error {
	if quantity <= 0 {
		return apperrors.InvalidArgument("quantity", "must be greater than 0")
	}
	if quantity > MaxQuantityPerItem {
		return apperrors.InvalidArgument("quantity", "must not exceed 100")
	}
	i := c.FindItem(itemID)
	if i < 0 {
		return apperrors.NotFound("Cart item")
	}
	c.Items[i].Quantity = quantity
	c.Items[i].UpdatedAt = now
	c.Recalculate(now)
	return nil
}

// RemoveItem deletes a line.
func (c *Cart) RemoveItem(itemID string, now time.Time) error {
	i := c.FindItem(itemID)
	if i < 0 {
		return apperrors.NotFound("Cart item")
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.Recalculate(now)
	return nil
}

// Clear removes every line; the total becomes zero.
func (c *Cart) Clear(now time.Time) {
	c.Items = nil
	c.Recalculate(now)
}

// Clone returns a deep copy of the cart.
func (c *Cart) Clone() *Cart {
	cpy := *c
	cpy.Items = append([]CartItem(nil), c.Items...)
	return &cpy
}
