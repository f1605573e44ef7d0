package controllers

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/palmora-app/palmora/app/models"
	"github.com/palmora-app/palmora/app/repository"
	"github.com/palmora-app/palmora/internal/pkg/cache"
	"github.com/palmora-app/palmora/internal/pkg/coupons"
	"github.com/palmora-app/palmora/internal/pkg/database"
	"github.com/palmora-app/palmora/internal/pkg/entitlements"
	"github.com/palmora-app/palmora/internal/pkg/usercontext"
)

const entitlementCacheTTL = 5 * time.Minute

type createOrderRequest struct {
	GatewayOrderID string `json:"gateway_order_id"`
	CouponCode     string `json:"coupon_code"`
}

// HandleCreateOrder records a purchase attempt. The quote for an optional
// coupon is captured here and persisted on the order; settlement honors that
// captured quote even if the coupon is deactivated before the webhook lands.
func HandleCreateOrder(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil || req.GatewayOrderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "bad_request",
			"message": "gateway_order_id is required",
		})
	}

	amount, currency := productPrice()
	order := &models.Order{
		PublicID:       uuid.NewString(),
		GatewayOrderID: req.GatewayOrderID,
		UserID:         userCtx.UserID,
		Amount:         amount,
		Currency:       currency,
		Status:         models.OrderStatusCreated,
	}

	if req.CouponCode != "" {
		svc := coupons.NewServiceFromDB(database.GetDB())
		ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer cancel()

		quote, coupon, err := svc.ValidateCode(ctx, req.CouponCode, amount, currency, time.Now())
		if err != nil {
			if coupons.IsCouponError(err) {
				return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
					"error":   coupons.ErrorCode(err),
					"message": err.Error(),
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal_server_error",
			})
		}
		order.CouponCode = coupon.Code
		order.DiscountApplied = quote.DiscountAmount
		order.Amount = quote.FinalAmount
	}

	repo := repository.GetGlobalFactory().GetOrderRepository()
	if err := repo.Create(order); err != nil {
		log.Printf("order create failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal_server_error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetOrder returns a single order by public reference. The checkout UI
// polls this instead of trusting the gateway redirect.
func HandleGetOrder(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	reference := c.Params("reference")

	repo := repository.GetGlobalFactory().GetOrderRepository()
	order, err := repo.GetByPublicID(reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	if order.UserID != userCtx.UserID && !userCtx.IsAdmin {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	}

	return c.Status(fiber.StatusOK).JSON(order)
}

// HandleGetEntitlement reports the caller's verified paid status and the
// product features it unlocks. Only the positive answer is cached: HasPaid
// is never unset, so a cached true can never go stale.
func HandleGetEntitlement(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	hasPaid := false
	cacheKey := "entitlement:user:" + strconv.FormatUint(uint64(userCtx.UserID), 10)
	if cached, err := cache.Get(cacheKey); err == nil && cached == "1" {
		hasPaid = true
	} else {
		paid, err := entitlements.HasLifetimeAccess(database.GetDB(), userCtx.UserID)
		if err != nil {
			log.Printf("entitlement lookup failed for user %d: %v", userCtx.UserID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
		}
		hasPaid = paid
		if hasPaid {
			if err := cache.Set(cacheKey, "1", entitlementCacheTTL); err != nil {
				log.Printf("entitlement cache write failed for user %d: %v", userCtx.UserID, err)
			}
		}
	}

	basic, full, chat, pdf := entitlements.AllowedFeatures(hasPaid)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"has_paid": hasPaid,
		"features": fiber.Map{
			"basic_reading": basic,
			"full_reading":  full,
			"chat":          chat,
			"pdf_export":    pdf,
		},
	})
}
