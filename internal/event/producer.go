// Package event publishes storefront domain events and consumes the ones the
// storefront reacts to itself.
package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dungpham-npc/storefront/internal/domain"
	pkgkafka "github.com/dungpham-npc/storefront/pkg/kafka"
	"github.com/dungpham-npc/storefront/pkg/logger"
)

// Topics.
var (
	TopicUserRegistered = pkgkafka.Topic("user", "registered")
	TopicCartUpdated    = pkgkafka.Topic("cart", "updated")
	TopicProductChanged = pkgkafka.Topic("product", "changed")
)

// Aggregate types.
const (
	AggregateTypeUser    = "user"
	AggregateTypeCart    = "cart"
	AggregateTypeProduct = "product"
)

// Source identifies events produced by this service.
const Source = "storefront"

// UserRegisteredData is the payload of user.registered.
type UserRegisteredData struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// CartItemData is one line in a cart.updated payload.
type CartItemData struct {
	ProductID string `json:"product_id"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
}

// CartUpdatedData is the payload of cart.updated.
type CartUpdatedData struct {
	CartID     string         `json:"cart_id"`
	UserID     string         `json:"user_id"`
	Items      []CartItemData `json:"items"`
	TotalPrice string         `json:"total_price"`
}

// ProductChangedData is the payload of product.changed.
type ProductChangedData struct {
	ID         string `json:"id"`
	Action     string `json:"action"`
	Name       string `json:"name"`
	Price      string `json:"price"`
	CategoryID string `json:"category_id"`
	IsActive   bool   `json:"is_active"`
}

// publisher is satisfied by *pkgkafka.Producer.
type publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  publisher
	logger *slog.Logger
}

func NewProducer(kafka publisher, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
	}
	return p.publish(ctx, TopicUserRegistered, user.ID, AggregateTypeUser, data)
}

func (p *Producer) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	items := make([]CartItemData, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = CartItemData{
			ProductID: item.ProductID,
			Price:     item.Price.StringFixed(2),
			Quantity:  item.Quantity,
		}
	}
	data := CartUpdatedData{
		CartID:     cart.ID,
		UserID:     cart.UserID,
		Items:      items,
		TotalPrice: cart.TotalPrice.StringFixed(2),
	}
	return p.publish(ctx, TopicCartUpdated, cart.ID, AggregateTypeCart, data)
}

func (p *Producer) PublishProductChanged(ctx context.Context, product *domain.Product, action string) error {
	data := ProductChangedData{
		ID:         product.ID,
		Action:     action,
		Name:       product.Name,
		Price:      product.Price.StringFixed(2),
		CategoryID: product.CategoryID,
		IsActive:   product.IsActive,
	}
	return p.publish(ctx, TopicProductChanged, product.ID, AggregateTypeProduct, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}
