package models

import (
	"time"

	"gorm.io/gorm"
)

// UserEntitlement is the durable lifetime-access flag for a user. Once
// HasPaid is set it is never unset by the settlement pipeline.
type UserEntitlement struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	UserID            uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	HasPaid           bool       `gorm:"default:false;index" json:"has_paid"`
	PaymentVerifiedAt *time.Time `gorm:"type:timestamp;default:null" json:"payment_verified_at,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// GetOrCreateUserEntitlement returns existing entitlement state or creates
// the default unpaid row.
func GetOrCreateUserEntitlement(db *gorm.DB, userID uint) (*UserEntitlement, error) {
	var ue UserEntitlement
	if err := db.Where("user_id = ?", userID).First(&ue).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ue = UserEntitlement{UserID: userID}
			if err := db.Create(&ue).Error; err != nil {
				return nil, err
			}
			return &ue, nil
		}
		return nil, err
	}
	return &ue, nil
}
