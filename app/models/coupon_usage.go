package models

import "time"

// CouponUsage is the append-only audit trail of redemptions. The row count
// per coupon must always equal the coupon's CurrentUsage.
type CouponUsage struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CouponID        uint      `gorm:"not null;index" json:"coupon_id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	OrderID         uint      `gorm:"default:0;index" json:"order_id,omitempty"`
	DiscountApplied int64     `gorm:"not null" json:"discount_applied"`
	OriginalAmount  int64     `gorm:"not null" json:"original_amount"`
	FinalAmount     int64     `gorm:"not null" json:"final_amount"`
	Currency        string    `gorm:"type:varchar(3);not null" json:"currency"`
	UsedAt          time.Time `gorm:"autoCreateTime;index" json:"used_at"`
}
