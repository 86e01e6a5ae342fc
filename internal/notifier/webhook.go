package notifier

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// WebhookNotifier posts alerts as JSON to a generic HTTP endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a webhook notifier.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{url: url, client: newHTTPClient("", 10*time.Second)}
}

func (w *WebhookNotifier) Name() string { return "webhook" }

func (w *WebhookNotifier) Send(ctx context.Context, msg Message) error {
	if err := postJSON(ctx, w.client, w.url, newAlertPayload(msg)); err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	return nil
}

// alertPayload is the structured form shared by the webhook and Kafka channels.
type alertPayload struct {
	Subject   string   `json:"subject"`
	Body      string   `json:"body"`
	Recipient string   `json:"recipient,omitempty"`
	Kind      string   `json:"kind,omitempty"`
	Symbol    string   `json:"symbol,omitempty"`
	Timeframe string   `json:"timeframe,omitempty"`
	RSI       *float64 `json:"rsi,omitempty"`       // nil only without an event
	Threshold *float64 `json:"threshold,omitempty"` // nil only without an event
	TS        string   `json:"ts"`
}

func newAlertPayload(msg Message) alertPayload {
	p := alertPayload{
		Subject:   msg.Subject,
		Body:      msg.Body,
		Recipient: msg.Recipient,
		TS:        time.Now().UTC().Format(time.RFC3339Nano),
	}
	if ev := msg.Event; ev != nil {
		p.Kind = string(ev.Kind)
		p.Symbol = ev.Symbol
		p.Timeframe = ev.Timeframe
		rsi, threshold := ev.RSI.Rounded(), ev.Threshold
		p.RSI = &rsi
		p.Threshold = &threshold
		p.TS = ev.Time.UTC().Format(time.RFC3339Nano)
	}
	return p
}
