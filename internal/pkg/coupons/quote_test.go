package coupons

import (
	"errors"
	"testing"
	"time"

	"github.com/palmora-app/palmora/app/models"
)

func activeCoupon(mutate func(*models.Coupon)) *models.Coupon {
	c := &models.Coupon{
		ID:            1,
		Code:          "SAVE20",
		Type:          models.CouponTypeDiscount,
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 20,
		UsageLimit:    100,
		IsActive:      true,
	}
	if mutate != nil {
		mutate(c)
	}
	return c
}

func TestBuildQuote_Percentage(t *testing.T) {
	q, err := BuildQuote(activeCoupon(nil), 1000, "INR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.DiscountAmount != 200 || q.FinalAmount != 800 {
		t.Fatalf("20%% of 1000: got discount=%d final=%d", q.DiscountAmount, q.FinalAmount)
	}
	if q.OriginalAmount != 1000 || q.Currency != "INR" {
		t.Fatalf("quote did not carry amount/currency: %+v", q)
	}
}

func TestBuildQuote_PercentageRoundsHalfUp(t *testing.T) {
	// 15% of 1050 = 157.5 -> 158
	c := activeCoupon(func(c *models.Coupon) { c.DiscountValue = 15 })
	q, err := BuildQuote(c, 1050, "INR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.DiscountAmount != 158 {
		t.Fatalf("expected half-up rounding to 158, got %d", q.DiscountAmount)
	}
}

func TestBuildQuote_FullPercentage(t *testing.T) {
	c := activeCoupon(func(c *models.Coupon) { c.DiscountValue = 100 })
	q, err := BuildQuote(c, 9900, "INR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.FinalAmount != 0 {
		t.Fatalf("100%% coupon must zero the amount, got %d", q.FinalAmount)
	}
}

func TestBuildQuote_FixedAmountClamped(t *testing.T) {
	c := activeCoupon(func(c *models.Coupon) {
		c.DiscountType = models.DiscountTypeAmount
		c.DiscountValue = 100
		c.Currency = "INR"
	})
	q, err := BuildQuote(c, 50, "INR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.DiscountAmount != 50 || q.FinalAmount != 0 {
		t.Fatalf("fixed discount must clamp to the amount: %+v", q)
	}
}

func TestBuildQuote_FixedAmountCurrencyMismatch(t *testing.T) {
	c := activeCoupon(func(c *models.Coupon) {
		c.DiscountType = models.DiscountTypeAmount
		c.DiscountValue = 500
		c.Currency = "USD"
	})
	if _, err := BuildQuote(c, 1000, "INR"); !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
}

func TestBuildQuote_FreeCoupon(t *testing.T) {
	c := activeCoupon(func(c *models.Coupon) {
		c.Type = models.CouponTypeFree
		c.DiscountType = ""
		c.DiscountValue = 0
	})
	q, err := BuildQuote(c, 9900, "INR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.DiscountAmount != 9900 || q.FinalAmount != 0 {
		t.Fatalf("free coupon must discount the full amount: %+v", q)
	}
}

func TestValidate_EligibilityOrder(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name    string
		mutate  func(*models.Coupon)
		wantErr error
	}{
		{"inactive", func(c *models.Coupon) { c.IsActive = false }, ErrInactive},
		{"not yet valid", func(c *models.Coupon) { c.ValidFrom = &future }, ErrNotYetValid},
		{"expired", func(c *models.Coupon) { c.ValidUntil = &past }, ErrExpired},
		{"exhausted", func(c *models.Coupon) { c.CurrentUsage = c.UsageLimit }, ErrExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(activeCoupon(tt.mutate), 1000, "INR", now)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_InactiveWinsOverExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	c := activeCoupon(func(c *models.Coupon) {
		c.IsActive = false
		c.ValidUntil = &past
	})
	if _, err := Validate(c, 1000, "INR", now); !errors.Is(err, ErrInactive) {
		t.Fatalf("inactive must be reported before expiry, got %v", err)
	}
}

func TestValidate_WithinWindow(t *testing.T) {
	now := time.Now()
	from := now.Add(-time.Hour)
	until := now.Add(time.Hour)
	c := activeCoupon(func(c *models.Coupon) {
		c.ValidFrom = &from
		c.ValidUntil = &until
	})
	q, err := Validate(c, 1000, "INR", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.FinalAmount != 800 {
		t.Fatalf("expected 800, got %d", q.FinalAmount)
	}
}

func TestValidate_NilCoupon(t *testing.T) {
	if _, err := Validate(nil, 1000, "INR", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
