package controllers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/palmora-app/palmora/internal/pkg/coupons"
	"github.com/palmora-app/palmora/internal/pkg/database"
	"github.com/palmora-app/palmora/internal/pkg/env"
)

type validateCouponRequest struct {
	Code string `json:"code"`
}

// productPrice returns the configured lifetime-access price in minor units
// plus its currency. The pending purchase amount is always supplied
// server-side, never trusted from the client.
func productPrice() (int64, string) {
	amount, err := strconv.ParseInt(env.GetEnv("PRODUCT_PRICE", "9900"), 10, 64)
	if err != nil || amount <= 0 {
		amount = 9900
	}
	return amount, env.GetEnv("PRODUCT_CURRENCY", "INR")
}

// HandleValidateCoupon computes a discount quote for the checkout UI. This
// path is strictly read-only: usage is committed only at settlement time, so
// an abandoned checkout never consumes capacity.
func HandleValidateCoupon(c *fiber.Ctx) error {
	var req validateCouponRequest
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "coupon code is required",
		})
	}

	amount, currency := productPrice()
	svc := coupons.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	quote, coupon, err := svc.ValidateCode(ctx, req.Code, amount, currency, time.Now())
	if err != nil {
		if coupons.IsCouponError(err) {
			// Validation failures are surfaced verbatim so the user knows
			// why a code failed.
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
				"code":    coupons.ErrorCode(err),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "coupon validation failed",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"coupon": fiber.Map{
			"code": coupon.Code,
			"type": coupon.Type,
		},
		"discount": fiber.Map{
			"type":           quote.DiscountType,
			"value":          coupon.DiscountValue,
			"originalAmount": quote.OriginalAmount,
			"discountAmount": quote.DiscountAmount,
			"finalAmount":    quote.FinalAmount,
			"currency":       quote.Currency,
		},
	})
}
