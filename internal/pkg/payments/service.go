package payments

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/palmora-app/palmora/app/models"
	"github.com/palmora-app/palmora/internal/pkg/coupons"
	"gorm.io/gorm"
)

// ErrOrderNotFound flags a webhook referencing an order this system never
// created. It is a consistency alert for manual reconciliation, not a reason
// to make the gateway retry.
var ErrOrderNotFound = errors.New("no order found for gateway order id")

// ErrMissingOrderRef flags an envelope whose payload carries no order
// reference at all.
var ErrMissingOrderRef = errors.New("webhook payload carries no order reference")

// IsPermanentProcessingError reports whether reprocessing the same event can
// never succeed. Permanent failures are recorded and acknowledged; anything
// else is left unprocessed so a gateway retry replays the cascade.
func IsPermanentProcessingError(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrMissingOrderRef) ||
		coupons.IsCouponError(err)
}

// Service settles gateway webhook events against the order ledger.
type Service struct {
	repo Repository
}

// NewService creates a settlement service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a settlement service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// RecordWebhookEvent persists the delivery idempotently and reports whether
// this call claimed the event. When the gateway supplies no event id, one is
// synthesized from the event type and a payload hash so redeliveries of the
// identical body still collapse onto one claim.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.PaymentWebhookEvent, error) {
	_ = ctx
	eventID := strings.TrimSpace(in.GatewayEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.EventType + "|" + in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.PaymentWebhookEvent{
		GatewayEventID: eventID,
		EventType:      strings.TrimSpace(in.EventType),
		PayloadJSON:    in.PayloadJSON,
		SignatureValid: in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed finalizes an event: side effects ran, or failed in a
// way a retry can never fix. The stored error is the reconciliation trail.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}

// RecordProcessingError notes a transient failure without marking the event
// processed, leaving the claim replayable by the next delivery.
func (s *Service) RecordProcessingError(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.RecordProcessingError(webhookEventID, errMsg)
}

// ProcessEvent runs the settlement cascade for a verified, claimed event.
// Unknown event types are ignored, never errors.
func (s *Service) ProcessEvent(ctx context.Context, env *WebhookEnvelope) error {
	_ = ctx
	switch env.Kind() {
	case EventPaymentCaptured:
		return s.settle(env, models.OrderStatusPaid)
	case EventPaymentFailed:
		return s.settle(env, models.OrderStatusFailed)
	default:
		log.Printf("webhook: ignoring unsupported event type %q", env.Event)
		return nil
	}
}

// settle applies the terminal order transition and, for paid orders, the
// entitlement grant and coupon redemption, all inside one transaction.
// A transition attempt on a non-created order is a logged conflict, not an
// error: the state machine is monotonic and the gateway still gets a 200.
func (s *Service) settle(env *WebhookEnvelope, toStatus string) error {
	gatewayOrderID := env.GatewayOrderID()
	if gatewayOrderID == "" {
		return ErrMissingOrderRef
	}
	paymentID := env.PaymentID()

	var note error
	err := s.repo.InTransaction(func(tx Repository) error {
		order, err := tx.FindOrderByGatewayID(gatewayOrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		moved, err := tx.TransitionOrder(gatewayOrderID, toStatus, paymentID)
		if err != nil {
			return err
		}
		if !moved {
			log.Printf("webhook: order %s already %s, %q transition skipped", gatewayOrderID, order.Status, toStatus)
			return nil
		}

		if toStatus != models.OrderStatusPaid {
			return nil
		}

		if err := tx.GrantEntitlement(order.UserID); err != nil {
			return err
		}

		if order.CouponCode != "" {
			if err := s.redeemOrderCoupon(tx, order); err != nil {
				if !coupons.IsCouponError(err) {
					return err
				}
				note = err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return note
}

// redeemOrderCoupon commits the usage captured at order-creation time. The
// quote on the order is honored even if the coupon was deactivated in the
// meantime; only the capacity guard is re-checked. Failures here never undo
// the paid transition or the entitlement grant; they are flagged for
// reconciliation instead.
func (s *Service) redeemOrderCoupon(tx Repository, order *models.Order) error {
	coupon, err := tx.FindCouponByCode(order.CouponCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("webhook: coupon %q on order %s no longer exists, usage not recorded", order.CouponCode, order.GatewayOrderID)
			return fmt.Errorf("coupon %q on order %s: %w", order.CouponCode, order.GatewayOrderID, coupons.ErrNotFound)
		}
		return err
	}

	usage := &models.CouponUsage{
		CouponID:        coupon.ID,
		UserID:          order.UserID,
		OrderID:         order.ID,
		DiscountApplied: order.DiscountApplied,
		OriginalAmount:  order.Amount + order.DiscountApplied,
		FinalAmount:     order.Amount,
		Currency:        order.Currency,
	}
	consumed, err := tx.ConsumeCouponUsage(usage)
	if err != nil {
		return err
	}
	if !consumed {
		log.Printf("webhook: coupon %q exhausted at settlement of order %s", coupon.Code, order.GatewayOrderID)
		return fmt.Errorf("coupon %q on order %s: %w", coupon.Code, order.GatewayOrderID, coupons.ErrExhausted)
	}
	return nil
}
