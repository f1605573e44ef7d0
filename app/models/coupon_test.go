package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCouponCode(t *testing.T) {
	assert.Equal(t, "SAVE20", NormalizeCouponCode("  save20 "))
	assert.Equal(t, "FREE100", NormalizeCouponCode("Free100"))
	assert.Equal(t, "", NormalizeCouponCode("   "))
}

func TestCouponValidate(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		coupon  Coupon
		wantErr bool
	}{
		{
			"valid percentage discount",
			Coupon{Code: "SAVE20", Type: CouponTypeDiscount, DiscountType: DiscountTypePercentage, DiscountValue: 20, UsageLimit: 100, CreatedBy: 1},
			false,
		},
		{
			"valid fixed amount discount",
			Coupon{Code: "FLAT500", Type: CouponTypeDiscount, DiscountType: DiscountTypeAmount, DiscountValue: 500, Currency: "INR", UsageLimit: 100, CreatedBy: 1},
			false,
		},
		{
			"valid free coupon",
			Coupon{Code: "FREE100", Type: CouponTypeFree, UsageLimit: 10, CreatedBy: 1},
			false,
		},
		{
			"valid time window",
			Coupon{Code: "WINDOW", Type: CouponTypeFree, UsageLimit: 10, ValidFrom: &from, ValidUntil: &until, CreatedBy: 1},
			false,
		},
		{
			"code too short",
			Coupon{Code: "AB", Type: CouponTypeFree, UsageLimit: 10, CreatedBy: 1},
			true,
		},
		{
			"unknown type",
			Coupon{Code: "ODDBALL", Type: "voucher", UsageLimit: 10, CreatedBy: 1},
			true,
		},
		{
			"zero usage limit",
			Coupon{Code: "NOCAP", Type: CouponTypeFree, CreatedBy: 1},
			true,
		},
		{
			"percentage over 100",
			Coupon{Code: "TOOMUCH", Type: CouponTypeDiscount, DiscountType: DiscountTypePercentage, DiscountValue: 120, UsageLimit: 10, CreatedBy: 1},
			true,
		},
		{
			"percentage with currency",
			Coupon{Code: "PCTCUR", Type: CouponTypeDiscount, DiscountType: DiscountTypePercentage, DiscountValue: 20, Currency: "INR", UsageLimit: 10, CreatedBy: 1},
			true,
		},
		{
			"amount without currency",
			Coupon{Code: "NOCUR", Type: CouponTypeDiscount, DiscountType: DiscountTypeAmount, DiscountValue: 500, UsageLimit: 10, CreatedBy: 1},
			true,
		},
		{
			"discount without discount type",
			Coupon{Code: "NOTYPE", Type: CouponTypeDiscount, DiscountValue: 20, UsageLimit: 10, CreatedBy: 1},
			true,
		},
		{
			"free with discount value",
			Coupon{Code: "FREEBAD", Type: CouponTypeFree, DiscountValue: 10, UsageLimit: 10, CreatedBy: 1},
			true,
		},
		{
			"inverted validity window",
			Coupon{Code: "BACKWARDS", Type: CouponTypeFree, UsageLimit: 10, ValidFrom: &until, ValidUntil: &from, CreatedBy: 1},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.coupon.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCouponValidate_NormalizesCodeInPlace(t *testing.T) {
	c := Coupon{Code: " save20 ", Type: CouponTypeFree, UsageLimit: 10, CreatedBy: 1}
	assert.NoError(t, c.Validate())
	assert.Equal(t, "SAVE20", c.Code)
}

func TestCouponHasCapacity(t *testing.T) {
	c := Coupon{UsageLimit: 2}
	assert.True(t, c.HasCapacity())
	c.CurrentUsage = 1
	assert.True(t, c.HasCapacity())
	c.CurrentUsage = 2
	assert.False(t, c.HasCapacity())
}
