package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus values.
const (
	OrderStatusPending   = "PENDING"
	OrderStatusPaid      = "PAID"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"
)

// TransactionStatus values.
const (
	TransactionStatusPending   = "PENDING"
	TransactionStatusSucceeded = "SUCCEEDED"
	TransactionStatusFailed    = "FAILED"
)

// Order is a placed purchase. Only the shape is modelled; no workflow acts
// on it yet.
type Order struct {
	ID          string
	UserID      string
	RecipientID string
	Status      string
	TotalPrice  decimal.Decimal
	Items       []OrderItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrderItem is a priced line of an order.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Price     decimal.Decimal
	Quantity  int
}

// Transaction records a payment attempt for an order.
type Transaction struct {
	ID        string
	OrderID   string
	Amount    decimal.Decimal
	Status    string
	Provider  string
	CreatedAt time.Time
}
