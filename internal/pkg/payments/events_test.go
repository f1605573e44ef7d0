package payments

import "testing"

func TestParseWebhookEnvelope(t *testing.T) {
	raw := []byte(`{
		"event": "payment.captured",
		"id": "evt_123",
		"payload": {
			"payment": {
				"id": "pay_456",
				"order_id": "order_789",
				"amount": 9900,
				"currency": "INR",
				"status": "captured"
			}
		}
	}`)

	env, err := ParseWebhookEnvelope(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if env.ID != "evt_123" {
		t.Fatalf("unexpected event id %q", env.ID)
	}
	if env.Kind() != EventPaymentCaptured {
		t.Fatalf("expected payment captured kind, got %v", env.Kind())
	}
	if env.GatewayOrderID() != "order_789" {
		t.Fatalf("unexpected gateway order id %q", env.GatewayOrderID())
	}
	if env.PaymentID() != "pay_456" {
		t.Fatalf("unexpected payment id %q", env.PaymentID())
	}
}

func TestParseWebhookEnvelope_OrderEntityFallback(t *testing.T) {
	raw := []byte(`{
		"event": "order.paid",
		"payload": {
			"order": { "id": "order_111", "amount": 9900, "currency": "INR", "status": "paid" }
		}
	}`)

	env, err := ParseWebhookEnvelope(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if env.Kind() != EventPaymentCaptured {
		t.Fatalf("expected order.paid to map to captured kind")
	}
	if env.GatewayOrderID() != "order_111" {
		t.Fatalf("unexpected gateway order id %q", env.GatewayOrderID())
	}
}

func TestParseWebhookEnvelope_Errors(t *testing.T) {
	if _, err := ParseWebhookEnvelope([]byte("{not json")); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
	if _, err := ParseWebhookEnvelope([]byte(`{"payload":{}}`)); err == nil {
		t.Fatalf("expected error for missing event type")
	}
}

func TestEnvelopeKind_Unknown(t *testing.T) {
	tests := []string{"refund.processed", "payment.authorized", "subscription.charged", ""}
	for _, event := range tests {
		env := &WebhookEnvelope{Event: event}
		if env.Kind() != EventUnknown {
			t.Fatalf("expected %q to map to EventUnknown", event)
		}
	}

	failed := &WebhookEnvelope{Event: "payment.failed"}
	if failed.Kind() != EventPaymentFailed {
		t.Fatalf("expected payment.failed kind")
	}
}
