package coupons

import (
	"time"

	"github.com/palmora-app/palmora/app/models"
)

// Quote is the non-mutating result of applying a coupon to a pending
// purchase amount. Amounts are in minor units.
type Quote struct {
	Code           string `json:"code"`
	Type           string `json:"type"`
	DiscountType   string `json:"discount_type,omitempty"`
	OriginalAmount int64  `json:"original_amount"`
	DiscountAmount int64  `json:"discount_amount"`
	FinalAmount    int64  `json:"final_amount"`
	Currency       string `json:"currency"`
}

// BuildQuote computes the discount a coupon applies to the given amount.
// Pure arithmetic: eligibility (window, capacity, active) is checked by
// Validate, not here.
func BuildQuote(c *models.Coupon, amount int64, currency string) (Quote, error) {
	q := Quote{
		Code:           c.Code,
		Type:           c.Type,
		DiscountType:   c.DiscountType,
		OriginalAmount: amount,
		Currency:       currency,
	}

	switch {
	case c.Type == models.CouponTypeFree:
		q.DiscountAmount = amount
	case c.DiscountType == models.DiscountTypePercentage:
		// round half up in integer math
		q.DiscountAmount = (amount*c.DiscountValue + 50) / 100
		if q.DiscountAmount > amount {
			q.DiscountAmount = amount
		}
	case c.DiscountType == models.DiscountTypeAmount:
		if c.Currency != currency {
			return Quote{}, ErrCurrencyMismatch
		}
		q.DiscountAmount = c.DiscountValue
		if q.DiscountAmount > amount {
			q.DiscountAmount = amount
		}
	default:
		return Quote{}, ErrNotFound
	}

	q.FinalAmount = amount - q.DiscountAmount
	return q, nil
}

// Validate runs the full eligibility chain against a loaded coupon,
// short-circuiting on the first failure, and returns the resulting quote.
// It never mutates usage state.
func Validate(c *models.Coupon, amount int64, currency string, now time.Time) (Quote, error) {
	if c == nil {
		return Quote{}, ErrNotFound
	}
	if !c.IsActive {
		return Quote{}, ErrInactive
	}
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return Quote{}, ErrNotYetValid
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return Quote{}, ErrExpired
	}
	if !c.HasCapacity() {
		return Quote{}, ErrExhausted
	}
	return BuildQuote(c, amount, currency)
}
