package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dungpham-npc/storefront/internal/mail"
	pkgkafka "github.com/dungpham-npc/storefront/pkg/kafka"
)

// NotificationHandler reacts to domain events with outbound mail.
type NotificationHandler struct {
	sender mail.Sender
	logger *slog.Logger
}

func NewNotificationHandler(sender mail.Sender, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{sender: sender, logger: logger}
}

// Handle routes an event by type. Unknown types are acknowledged and skipped.
func (h *NotificationHandler) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicUserRegistered:
		return h.handleUserRegistered(ctx, event)
	default:
		h.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

// handleUserRegistered sends the welcome mail. A payload without an email
// cannot be retried into success, so it is logged and dropped.
func (h *NotificationHandler) handleUserRegistered(ctx context.Context, event *pkgkafka.Event) error {
	var data UserRegisteredData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("decode user.registered payload: %w", err)
	}
	if data.Email == "" {
		h.logger.WarnContext(ctx, "user.registered event without email",
			slog.String("event_id", event.EventID),
			slog.String("aggregate_id", event.AggregateID),
		)
		return nil
	}

	if err := h.sender.Send(ctx, mail.Welcome(data.Email, data.FirstName)); err != nil {
		return fmt.Errorf("send welcome mail: %w", err)
	}

	h.logger.InfoContext(ctx, "welcome mail sent",
		slog.String("event_id", event.EventID),
		slog.String("user_id", data.ID),
	)
	return nil
}

// NewConsumers creates the consumers for every topic the handler reads, all
// in consumer group groupID.
func NewConsumers(brokers []string, groupID string, handler *NotificationHandler, logger *slog.Logger, opts ...pkgkafka.ConsumerOption) []*pkgkafka.Consumer {
	topics := []string{TopicUserRegistered}

	consumers := make([]*pkgkafka.Consumer, 0, len(topics))
	for _, topic := range topics {
		cfg := pkgkafka.ConsumerConfig{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
		}
		consumers = append(consumers, pkgkafka.NewConsumer(cfg, handler.Handle, logger, opts...))
	}
	return consumers
}
