// Package notification delivers reminder messages to users.
package notification

import (
	"context"

	"github.com/FanchonSora/V-Assistant/internal/logging"
)

// Message is one notification to deliver.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier delivers messages. Implementations must be safe for concurrent
// use; the scheduler calls Notify from timer goroutines.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// NopNotifier discards every message.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Message) error { return nil }

// LogNotifier writes messages to the log instead of delivering them. Used by
// the local REPL and when SMTP is not configured.
type LogNotifier struct {
	log logging.Logger
}

// NewLogNotifier builds a notifier that logs deliveries.
func NewLogNotifier(log logging.Logger) *LogNotifier {
	return &LogNotifier{log: logging.OrNop(log)}
}

func (n *LogNotifier) Notify(_ context.Context, msg Message) error {
	n.log.Info("Reminder for %s: %s", msg.To, msg.Subject)
	return nil
}
