package payments

import (
	"encoding/json"
	"errors"
	"strings"
)

// EventKind is the closed set of gateway event types this pipeline settles.
// Everything else is acknowledged and ignored.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventPaymentCaptured
	EventPaymentFailed
)

// PaymentEntity is the payment object inside the gateway envelope.
type PaymentEntity struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// OrderEntity is the order object inside the gateway envelope.
type OrderEntity struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// WebhookEnvelope is the gateway-defined JSON body of a webhook delivery.
type WebhookEnvelope struct {
	Event   string `json:"event"`
	ID      string `json:"id"`
	Payload struct {
		Payment *PaymentEntity `json:"payment"`
		Order   *OrderEntity   `json:"order"`
	} `json:"payload"`
}

// ParseWebhookEnvelope decodes the raw body into the envelope. Callers must
// have verified the signature first.
func ParseWebhookEnvelope(payload []byte) (*WebhookEnvelope, error) {
	var env WebhookEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, err
	}
	if strings.TrimSpace(env.Event) == "" {
		return nil, errors.New("webhook envelope missing event type")
	}
	return &env, nil
}

// Kind maps the envelope's event string onto the settlement event set.
func (e *WebhookEnvelope) Kind() EventKind {
	switch strings.ToLower(strings.TrimSpace(e.Event)) {
	case "payment.captured", "order.paid":
		return EventPaymentCaptured
	case "payment.failed":
		return EventPaymentFailed
	default:
		return EventUnknown
	}
}

// GatewayOrderID resolves the order reference from whichever payload entity
// carries it.
func (e *WebhookEnvelope) GatewayOrderID() string {
	if e.Payload.Payment != nil && strings.TrimSpace(e.Payload.Payment.OrderID) != "" {
		return strings.TrimSpace(e.Payload.Payment.OrderID)
	}
	if e.Payload.Order != nil {
		return strings.TrimSpace(e.Payload.Order.ID)
	}
	return ""
}

// PaymentID returns the gateway payment identifier, if present.
func (e *WebhookEnvelope) PaymentID() string {
	if e.Payload.Payment != nil {
		return strings.TrimSpace(e.Payload.Payment.ID)
	}
	return ""
}
