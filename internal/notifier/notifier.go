// Package notifier delivers alert messages to external channels
// (email, Telegram, webhooks, Kafka).
package notifier

import (
	"context"
	"errors"
	"fmt"
	"log"

	"RSISentinel/internal/model"
)

// ErrDeliveryFailed marks an alert that was computed but could not be delivered.
var ErrDeliveryFailed = errors.New("alert delivery failed")

// Message is a formatted alert payload.
type Message struct {
	Subject   string
	Body      string
	Recipient string
	// Event is the alert behind the message, for channels that send structured payloads.
	Event *model.AlertEvent
}

// Notifier is the interface for all notification backends.
type Notifier interface {
	// Send delivers a message. Returns error if delivery fails.
	Send(ctx context.Context, msg Message) error
	Name() string
}

// Multi fans a message out to every channel and joins the failures.
type Multi []Notifier

func (m Multi) Name() string { return "multi" }

// Send attempts every channel even when an earlier one fails.
func (m Multi) Send(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range m {
		if err := n.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// LogNotifier writes messages to the log. It is used when no channel is configured.
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Send(_ context.Context, msg Message) error {
	log.Printf("[INFO] alert: %s\n%s", msg.Subject, msg.Body)
	return nil
}
