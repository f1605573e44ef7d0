package controllers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/palmora-app/palmora/internal/pkg/coupons"
	"github.com/palmora-app/palmora/internal/pkg/database"
	"github.com/palmora-app/palmora/internal/pkg/usercontext"
)

type adminCouponRequest struct {
	Action string `json:"action"`
	ID     uint   `json:"id"`

	coupons.CreateInput
	Update coupons.UpdateInput `json:"update"`

	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
	Type     string `json:"type_filter"`
	IsActive *bool  `json:"is_active_filter"`
	Search   string `json:"search"`
}

// HandleAdminCoupons dispatches the administrative coupon API. The action is
// carried in the JSON body or the query string; the route itself sits behind
// API key auth plus the admin allow-list middleware.
func HandleAdminCoupons(c *fiber.Ctx) error {
	var req adminCouponRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "bad_request",
				"message": "invalid JSON body",
			})
		}
	}
	action := strings.TrimSpace(req.Action)
	if action == "" {
		action = strings.TrimSpace(c.Query("action"))
	}

	svc := coupons.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch action {
	case "check-admin":
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"is_admin": true})
	case "create":
		return adminCreateCoupon(c, ctx, svc, req)
	case "update":
		return adminUpdateCoupon(c, ctx, svc, req)
	case "delete":
		return adminDeleteCoupon(c, ctx, svc, req)
	case "toggle-status":
		return adminToggleCoupon(c, ctx, svc, req)
	case "list":
		return adminListCoupons(c, ctx, svc, req)
	case "analytics":
		return adminCouponAnalytics(c, ctx, svc)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "bad_request",
			"message": "unknown action",
		})
	}
}

func adminCreateCoupon(c *fiber.Ctx, ctx context.Context, svc *coupons.Service, req adminCouponRequest) error {
	coupon, err := svc.Create(ctx, usercontext.GetUserID(c), req.CreateInput)
	if err != nil {
		if errors.Is(err, coupons.ErrDuplicateCode) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":   coupons.ErrorCode(err),
				"message": err.Error(),
			})
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   "validation_failed",
			"message": err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(coupon)
}

func adminUpdateCoupon(c *fiber.Ctx, ctx context.Context, svc *coupons.Service, req adminCouponRequest) error {
	if req.ID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "id is required"})
	}
	coupon, err := svc.Update(ctx, req.ID, req.Update)
	if err != nil {
		return adminCouponError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(coupon)
}

func adminDeleteCoupon(c *fiber.Ctx, ctx context.Context, svc *coupons.Service, req adminCouponRequest) error {
	if req.ID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "id is required"})
	}
	if err := svc.Delete(ctx, req.ID); err != nil {
		return adminCouponError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"deleted": true})
}

func adminToggleCoupon(c *fiber.Ctx, ctx context.Context, svc *coupons.Service, req adminCouponRequest) error {
	if req.ID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "id is required"})
	}
	coupon, err := svc.ToggleActive(ctx, req.ID)
	if err != nil {
		return adminCouponError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(coupon)
}

// adminListFilter merges filter inputs from the JSON body with query-string
// fallbacks so the GET form of the listing works without a body.
func adminListFilter(c *fiber.Ctx, req adminCouponRequest) coupons.ListFilter {
	filter := coupons.ListFilter{
		Type:     req.Type,
		IsActive: req.IsActive,
		Search:   req.Search,
		Page:     req.Page,
		Limit:    req.Limit,
	}
	if filter.Type == "" {
		filter.Type = strings.TrimSpace(c.Query("type"))
	}
	if filter.Search == "" {
		filter.Search = strings.TrimSpace(c.Query("search"))
	}
	if filter.IsActive == nil {
		if v := c.Query("is_active"); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				filter.IsActive = &b
			}
		}
	}
	if filter.Page == 0 {
		filter.Page, _ = strconv.Atoi(c.Query("page", "1"))
	}
	if filter.Limit == 0 {
		filter.Limit, _ = strconv.Atoi(c.Query("limit", "20"))
	}
	return filter
}

func adminListCoupons(c *fiber.Ctx, ctx context.Context, svc *coupons.Service, req adminCouponRequest) error {
	filter := adminListFilter(c, req)

	list, total, err := svc.List(ctx, filter)
	if err != nil {
		return adminCouponError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"coupons": list,
		"total":   total,
		"page":    filter.Page,
		"limit":   filter.Limit,
	})
}

func adminCouponAnalytics(c *fiber.Ctx, ctx context.Context, svc *coupons.Service) error {
	report, err := svc.Analytics(ctx)
	if err != nil {
		return adminCouponError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(report)
}

func adminCouponError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	case errors.Is(err, coupons.ErrDuplicateCode):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   coupons.ErrorCode(err),
			"message": err.Error(),
		})
	case errors.Is(err, coupons.ErrLimitBelowUsage):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   coupons.ErrorCode(err),
			"message": err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
}
