package controllers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/palmora-app/palmora/internal/pkg/cache"
	"github.com/palmora-app/palmora/internal/pkg/database"
	"github.com/palmora-app/palmora/internal/pkg/env"
	"github.com/palmora-app/palmora/internal/pkg/payments"
)

const webhookDedupCacheTTL = 24 * time.Hour

// HandlePaymentWebhook ingests asynchronous settlement events from the
// payment gateway. The gateway retries on any non-2xx response, so every
// event that was either settled or recognized as a duplicate is acknowledged
// with 200; only signature failures and transient storage errors are not.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := c.Get("X-Signature")
	secret := env.GetEnv("PAYMENT_WEBHOOK_SECRET", "")

	// The signature covers the exact raw bytes; nothing is parsed and no
	// storage is touched until it checks out.
	if !payments.VerifyWebhookSignature(rawBody, signature, secret) {
		log.Printf("webhook: rejected delivery with invalid signature from %s", ClientIP(c))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}

	envelope, parseErr := payments.ParseWebhookEnvelope(rawBody)

	eventID := ""
	eventType := ""
	if envelope != nil {
		eventID = envelope.ID
		eventType = envelope.Event
	}

	// Fast path: a cache hit means a previous delivery was fully processed.
	// The durable unique constraint below stays the authority.
	if eventID != "" {
		if seen, err := cache.Exists(webhookCacheKey(eventID)); err == nil && seen {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "duplicate": true})
		}
	}

	svc := payments.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	created, stored, err := svc.RecordWebhookEvent(ctx, payments.WebhookEventInput{
		GatewayEventID: eventID,
		EventType:      eventType,
		PayloadJSON:    string(rawBody),
		SignatureValid: true,
	})
	if err != nil {
		log.Printf("webhook: persisting event failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created && stored.ProcessedAt != nil {
		markWebhookSeen(stored.GatewayEventID)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "duplicate": true})
	}

	// A signed but unparseable body cannot be retried into validity, so it
	// is recorded and acknowledged rather than bounced back to the gateway.
	if parseErr != nil {
		log.Printf("webhook: malformed payload for event %s: %v", stored.GatewayEventID, parseErr)
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, parseErr)
		markWebhookSeen(stored.GatewayEventID)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
	}

	procErr := svc.ProcessEvent(ctx, envelope)
	if procErr != nil && !payments.IsPermanentProcessingError(procErr) {
		// Transient failure: keep the claim replayable so the gateway's
		// retry re-runs the cascade.
		log.Printf("webhook: processing event %s failed: %v", stored.GatewayEventID, procErr)
		_ = svc.RecordProcessingError(ctx, stored.ID, procErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_processing_failed"})
	}
	if procErr != nil {
		log.Printf("webhook: event %s settled with reconciliation flag: %v", stored.GatewayEventID, procErr)
	}

	if err := svc.MarkWebhookProcessed(ctx, stored.ID, procErr); err != nil {
		log.Printf("webhook: marking event %s processed failed: %v", stored.GatewayEventID, err)
	}
	markWebhookSeen(stored.GatewayEventID)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}

func webhookCacheKey(eventID string) string {
	return "webhook:event:" + eventID
}

func markWebhookSeen(eventID string) {
	if err := cache.Set(webhookCacheKey(eventID), 1, webhookDedupCacheTTL); err != nil {
		log.Printf("webhook: caching dedup hint for %s failed: %v", eventID, err)
	}
}
