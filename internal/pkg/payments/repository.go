package payments

import (
	"time"

	"github.com/palmora-app/palmora/app/models"
	"github.com/palmora-app/palmora/internal/pkg/coupons"
	"github.com/palmora-app/palmora/internal/pkg/entitlements"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides the DB operations used by the settlement service. The
// ledger/grant/redeem methods on a transaction-bound repository obtained via
// InTransaction commit or roll back together.
type Repository interface {
	CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
	RecordProcessingError(id uint, processingError string) error
	FindOrderByGatewayID(gatewayOrderID string) (*models.Order, error)
	TransitionOrder(gatewayOrderID, toStatus, paymentID string) (bool, error)
	GrantEntitlement(userID uint) error
	FindCouponByCode(code string) (*models.Coupon, error)
	ConsumeCouponUsage(usage *models.CouponUsage) (bool, error)
	InTransaction(fn func(Repository) error) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a settlement repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// CreateWebhookEventIfNotExists atomically claims the event id. The unique
// index on gateway_event_id plus ON CONFLICT DO NOTHING makes concurrent
// deliveries of the same event resolve to a single claim; the returned bool
// reports whether this call won the claim.
func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "gateway_event_id"}},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentWebhookEvent
	if err := r.db.Where("gateway_event_id = ?", event.GatewayEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.PaymentWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *gormRepository) RecordProcessingError(id uint, processingError string) error {
	return r.db.Model(&models.PaymentWebhookEvent{}).Where("id = ?", id).
		Update("processing_error", processingError).Error
}

func (r *gormRepository) FindOrderByGatewayID(gatewayOrderID string) (*models.Order, error) {
	var order models.Order
	err := r.db.Where("gateway_order_id = ?", gatewayOrderID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// TransitionOrder applies a terminal transition guarded by the current
// status. The WHERE clause on status=created is the state machine: a
// non-created order is left untouched and the method reports false.
func (r *gormRepository) TransitionOrder(gatewayOrderID, toStatus, paymentID string) (bool, error) {
	res := r.db.Model(&models.Order{}).
		Where("gateway_order_id = ? AND status = ?", gatewayOrderID, models.OrderStatusCreated).
		Updates(map[string]interface{}{
			"status":     toStatus,
			"payment_id": paymentID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormRepository) GrantEntitlement(userID uint) error {
	return entitlements.Grant(r.db, userID)
}

func (r *gormRepository) FindCouponByCode(code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.Where("code = ?", models.NormalizeCouponCode(code)).First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *gormRepository) ConsumeCouponUsage(usage *models.CouponUsage) (bool, error) {
	return coupons.NewRepository(r.db).ConsumeUsage(usage)
}

func (r *gormRepository) InTransaction(fn func(Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}
