// Package mail sends transactional email.
package mail

import (
	"context"
	"fmt"
	"html"
	"log/slog"
)

// Message is one outbound email with an HTML body.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of delivering them. It is the
// development backend.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "mail not delivered (log backend)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}

// Welcome builds the mail sent after registration.
func Welcome(to, firstName string) Message {
	name := firstName
	if name == "" {
		name = to
	}
	return Message{
		To:      to,
		Subject: "Welcome to the storefront",
		Body: fmt.Sprintf(
			"<p>Hi %s,</p><p>Your account is ready. You can now sign in with %s.</p>",
			html.EscapeString(name), html.EscapeString(to),
		),
	}
}
