package payments

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	GatewayEventID string
	EventType      string
	PayloadJSON    string
	SignatureValid bool
}
