package coupons

import (
	"strings"

	"github.com/palmora-app/palmora/app/models"
	"gorm.io/gorm"
)

// ListFilter narrows administrative coupon listings.
type ListFilter struct {
	Type     string
	IsActive *bool
	Search   string
	Page     int
	Limit    int
}

// Analytics aggregates registry state for the admin reporting endpoint.
type Analytics struct {
	TotalCoupons   int64   `json:"total_coupons"`
	ActiveCoupons  int64   `json:"active_coupons"`
	DiscountCount  int64   `json:"discount_count"`
	FreeCount      int64   `json:"free_count"`
	TotalUsage     int64   `json:"total_usage"`
	TotalCapacity  int64   `json:"total_capacity"`
	UsageRatio     float64 `json:"usage_ratio"`
	RedemptionRows int64   `json:"redemption_rows"`
}

// Repository provides DB operations used by the coupon service.
type Repository interface {
	Create(c *models.Coupon) error
	GetByID(id uint) (*models.Coupon, error)
	GetByCode(code string) (*models.Coupon, error)
	UpdateFields(id uint, fields map[string]interface{}) error
	Delete(id uint) error
	List(filter ListFilter) ([]models.Coupon, int64, error)
	ConsumeUsage(usage *models.CouponUsage) (bool, error)
	Analytics() (*Analytics, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a coupon repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(c *models.Coupon) error {
	if err := r.db.Create(c).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateCode
		}
		return err
	}
	return nil
}

func (r *gormRepository) GetByID(id uint) (*models.Coupon, error) {
	var c models.Coupon
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *gormRepository) GetByCode(code string) (*models.Coupon, error) {
	var c models.Coupon
	err := r.db.Where("code = ?", models.NormalizeCouponCode(code)).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateFields applies a partial column update. A usage_limit change is
// guarded in the UPDATE itself so redemptions committed after the caller's
// read can never end up above the new limit.
func (r *gormRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	q := r.db.Model(&models.Coupon{}).Where("id = ?", id)
	if limit, ok := fields["usage_limit"]; ok {
		q = q.Where("current_usage <= ?", limit)
	}
	res := q.Updates(fields)
	if res.Error != nil {
		if isDuplicateKeyError(res.Error) {
			return ErrDuplicateCode
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, ok := fields["usage_limit"]; ok {
			var c models.Coupon
			if err := r.db.First(&c, id).Error; err == nil {
				return ErrLimitBelowUsage
			}
		}
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Coupon{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// clampPage normalizes pagination inputs to sane bounds.
func clampPage(filter ListFilter) (page, limit int) {
	page = filter.Page
	if page < 1 {
		page = 1
	}
	limit = filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func (r *gormRepository) List(filter ListFilter) ([]models.Coupon, int64, error) {
	q := r.db.Model(&models.Coupon{})
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Search != "" {
		like := "%" + models.NormalizeCouponCode(filter.Search) + "%"
		q = q.Where("code LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := clampPage(filter)

	var coupons []models.Coupon
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&coupons).Error
	return coupons, total, err
}

// ConsumeUsage atomically claims one redemption slot. The increment is
// guarded by the capacity check inside the UPDATE itself so two concurrent
// redemptions of the last slot resolve to exactly one winner; the usage row
// is inserted in the same transaction.
func (r *gormRepository) ConsumeUsage(usage *models.CouponUsage) (bool, error) {
	consumed := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Coupon{}).
			Where("id = ? AND current_usage < usage_limit", usage.CouponID).
			UpdateColumn("current_usage", gorm.Expr("current_usage + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Create(usage).Error; err != nil {
			return err
		}
		consumed = true
		return nil
	})
	return consumed, err
}

func (r *gormRepository) Analytics() (*Analytics, error) {
	var a Analytics
	m := r.db.Model(&models.Coupon{})

	if err := m.Count(&a.TotalCoupons).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Coupon{}).Where("is_active = ?", true).Count(&a.ActiveCoupons).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Coupon{}).Where("type = ?", models.CouponTypeDiscount).Count(&a.DiscountCount).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Coupon{}).Where("type = ?", models.CouponTypeFree).Count(&a.FreeCount).Error; err != nil {
		return nil, err
	}

	type sums struct {
		TotalUsage    int64
		TotalCapacity int64
	}
	var s sums
	if err := r.db.Model(&models.Coupon{}).
		Select("COALESCE(SUM(current_usage),0) AS total_usage, COALESCE(SUM(usage_limit),0) AS total_capacity").
		Scan(&s).Error; err != nil {
		return nil, err
	}
	a.TotalUsage = s.TotalUsage
	a.TotalCapacity = s.TotalCapacity
	if a.TotalCapacity > 0 {
		a.UsageRatio = float64(a.TotalUsage) / float64(a.TotalCapacity)
	}

	if err := r.db.Model(&models.CouponUsage{}).Count(&a.RedemptionRows).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func isDuplicateKeyError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint")
}
