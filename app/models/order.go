package models

import "time"

const (
	OrderStatusCreated = "created"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
)

// Order records a single purchase attempt against the payment gateway.
// Rows are created by the purchase-initiation flow and mutated only by the
// webhook pipeline; they are never deleted.
type Order struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PublicID        string    `gorm:"type:char(36);not null;uniqueIndex" json:"public_id"`
	GatewayOrderID  string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"gateway_order_id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	Amount          int64     `gorm:"not null" json:"amount"`
	Currency        string    `gorm:"type:varchar(3);not null" json:"currency"`
	Status          string    `gorm:"type:varchar(20);not null;default:'created';index" json:"status"`
	CouponCode      string    `gorm:"type:varchar(64);default:''" json:"coupon_code,omitempty"`
	DiscountApplied int64     `gorm:"default:0" json:"discount_applied,omitempty"`
	PaymentID       string    `gorm:"type:varchar(191);default:'';index" json:"payment_id,omitempty"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether the order already reached a final status.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusPaid || o.Status == OrderStatusFailed
}
