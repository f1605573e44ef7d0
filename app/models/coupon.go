package models

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	CouponTypeDiscount = "discount"
	CouponTypeFree     = "free"

	DiscountTypePercentage = "percentage"
	DiscountTypeAmount     = "amount"
)

// Coupon is an administrative promotion definition. CurrentUsage never
// exceeds UsageLimit; the guarded increment in the coupon repository is the
// only writer of CurrentUsage.
type Coupon struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Code          string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"code" validate:"required,min=3,max=64"`
	Type          string     `gorm:"type:varchar(20);not null" json:"type" validate:"oneof=discount free"`
	DiscountType  string     `gorm:"type:varchar(20);default:''" json:"discount_type,omitempty"`
	DiscountValue int64      `gorm:"default:0" json:"discount_value,omitempty"`
	Currency      string     `gorm:"type:varchar(3);default:''" json:"currency,omitempty"`
	UsageLimit    int        `gorm:"not null" json:"usage_limit" validate:"gt=0"`
	CurrentUsage  int        `gorm:"not null;default:0" json:"current_usage"`
	ValidFrom     *time.Time `gorm:"type:timestamp;default:null" json:"valid_from,omitempty"`
	ValidUntil    *time.Time `gorm:"type:timestamp;default:null" json:"valid_until,omitempty"`
	IsActive      bool       `gorm:"default:true;index" json:"is_active"`
	Description   string     `gorm:"type:text" json:"description,omitempty"`
	CreatedBy     uint       `gorm:"not null" json:"created_by"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// NormalizeCouponCode canonicalizes a user-supplied code for lookup.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks struct tags plus the structural rules that tags cannot
// express: discount fields are present iff type=discount, and a currency is
// required iff discount_type=amount.
func (c *Coupon) Validate() error {
	c.Code = NormalizeCouponCode(c.Code)

	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}

	switch c.Type {
	case CouponTypeFree:
		if c.DiscountType != "" || c.DiscountValue != 0 || c.Currency != "" {
			return errors.New("free coupons must not carry discount fields")
		}
	case CouponTypeDiscount:
		switch c.DiscountType {
		case DiscountTypePercentage:
			if c.DiscountValue <= 0 || c.DiscountValue > 100 {
				return errors.New("percentage discount value must be in (0,100]")
			}
			if c.Currency != "" {
				return errors.New("percentage discounts must not carry a currency")
			}
		case DiscountTypeAmount:
			if c.DiscountValue <= 0 {
				return errors.New("amount discount value must be positive")
			}
			if len(c.Currency) != 3 {
				return errors.New("amount discounts require an ISO currency code")
			}
		default:
			return errors.New("discount coupons require discount_type percentage or amount")
		}
	}

	if c.ValidFrom != nil && c.ValidUntil != nil && c.ValidUntil.Before(*c.ValidFrom) {
		return errors.New("valid_until must not precede valid_from")
	}
	return nil
}

// HasCapacity reports whether at least one redemption slot remains.
func (c *Coupon) HasCapacity() bool {
	return c.CurrentUsage < c.UsageLimit
}
