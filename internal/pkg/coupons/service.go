package coupons

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/palmora-app/palmora/app/models"
	"gorm.io/gorm"
)

// Service provides coupon validation, redemption and administrative CRUD.
type Service struct {
	repo Repository
}

// NewService creates a coupon service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a coupon service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// CreateInput carries the administrative create payload.
type CreateInput struct {
	Code          string     `json:"code"`
	Type          string     `json:"type"`
	DiscountType  string     `json:"discount_type"`
	DiscountValue int64      `json:"discount_value"`
	Currency      string     `json:"currency"`
	UsageLimit    int        `json:"usage_limit"`
	ValidFrom     *time.Time `json:"valid_from"`
	ValidUntil    *time.Time `json:"valid_until"`
	IsActive      *bool      `json:"is_active"`
	Description   string     `json:"description"`
}

// UpdateInput carries a partial administrative update; nil fields are left
// untouched.
type UpdateInput struct {
	DiscountValue *int64     `json:"discount_value"`
	UsageLimit    *int       `json:"usage_limit"`
	ValidFrom     *time.Time `json:"valid_from"`
	ValidUntil    *time.Time `json:"valid_until"`
	IsActive      *bool      `json:"is_active"`
	Description   *string    `json:"description"`
}

// ValidateCode computes the discount quote for a pending purchase without
// mutating any state. Usage is only committed at redemption time, so a
// validated-but-abandoned checkout never consumes capacity.
func (s *Service) ValidateCode(ctx context.Context, code string, amount int64, currency string, now time.Time) (Quote, *models.Coupon, error) {
	_ = ctx
	coupon, err := s.repo.GetByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Quote{}, nil, ErrNotFound
		}
		return Quote{}, nil, err
	}

	quote, err := Validate(coupon, amount, currency, now.UTC())
	if err != nil {
		return Quote{}, nil, err
	}
	return quote, coupon, nil
}

// Redeem consumes one unit of the coupon's capacity and appends the audit
// row. Invoked only from the webhook paid-transition cascade; losers of the
// final slot receive ErrExhausted and must not retry.
func (s *Service) Redeem(ctx context.Context, couponID, userID, orderID uint, quote Quote) (*models.CouponUsage, error) {
	_ = ctx
	usage := &models.CouponUsage{
		CouponID:        couponID,
		UserID:          userID,
		OrderID:         orderID,
		DiscountApplied: quote.DiscountAmount,
		OriginalAmount:  quote.OriginalAmount,
		FinalAmount:     quote.FinalAmount,
		Currency:        quote.Currency,
	}

	consumed, err := s.repo.ConsumeUsage(usage)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, ErrExhausted
	}
	return usage, nil
}

// Create validates and stores a new coupon definition.
func (s *Service) Create(ctx context.Context, createdBy uint, in CreateInput) (*models.Coupon, error) {
	_ = ctx
	coupon := &models.Coupon{
		Code:          models.NormalizeCouponCode(in.Code),
		Type:          strings.ToLower(strings.TrimSpace(in.Type)),
		DiscountType:  strings.ToLower(strings.TrimSpace(in.DiscountType)),
		DiscountValue: in.DiscountValue,
		Currency:      strings.ToUpper(strings.TrimSpace(in.Currency)),
		UsageLimit:    in.UsageLimit,
		ValidFrom:     in.ValidFrom,
		ValidUntil:    in.ValidUntil,
		IsActive:      true,
		Description:   strings.TrimSpace(in.Description),
		CreatedBy:     createdBy,
	}
	if in.IsActive != nil {
		coupon.IsActive = *in.IsActive
	}

	if err := coupon.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// Update applies a partial field change to an existing coupon. The merged
// definition is re-validated so a partial update can never store a
// structurally invalid coupon, and the usage limit can never drop below
// redemptions already committed.
func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) (*models.Coupon, error) {
	_ = ctx
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	updated := *coupon
	fields := map[string]interface{}{}
	if in.DiscountValue != nil {
		updated.DiscountValue = *in.DiscountValue
		fields["discount_value"] = *in.DiscountValue
	}
	if in.UsageLimit != nil {
		if *in.UsageLimit < coupon.CurrentUsage {
			return nil, ErrLimitBelowUsage
		}
		updated.UsageLimit = *in.UsageLimit
		fields["usage_limit"] = *in.UsageLimit
	}
	if in.ValidFrom != nil {
		updated.ValidFrom = in.ValidFrom
		fields["valid_from"] = *in.ValidFrom
	}
	if in.ValidUntil != nil {
		updated.ValidUntil = in.ValidUntil
		fields["valid_until"] = *in.ValidUntil
	}
	if in.IsActive != nil {
		updated.IsActive = *in.IsActive
		fields["is_active"] = *in.IsActive
	}
	if in.Description != nil {
		updated.Description = strings.TrimSpace(*in.Description)
		fields["description"] = updated.Description
	}
	if len(fields) == 0 {
		return coupon, nil
	}

	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateFields(id, fields); err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}

// ToggleActive flips the is_active flag.
func (s *Service) ToggleActive(ctx context.Context, id uint) (*models.Coupon, error) {
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	active := !coupon.IsActive
	return s.Update(ctx, id, UpdateInput{IsActive: &active})
}

// Delete hard-deletes a coupon definition.
func (s *Service) Delete(ctx context.Context, id uint) error {
	_ = ctx
	return s.repo.Delete(id)
}

// List returns a filtered, paginated coupon page plus the total row count.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]models.Coupon, int64, error) {
	_ = ctx
	return s.repo.List(filter)
}

// Analytics returns derived registry reporting.
func (s *Service) Analytics(ctx context.Context) (*Analytics, error) {
	_ = ctx
	return s.repo.Analytics()
}
