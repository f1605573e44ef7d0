package entitlements

import (
	"time"

	"github.com/palmora-app/palmora/app/models"
	"gorm.io/gorm"
)

// Grant marks a user as having lifetime paid access. It is idempotent:
// granting an already-paid user is a harmless no-op. It only needs a user id,
// so it is safely replayable during reconciliation.
func Grant(db *gorm.DB, userID uint) error {
	ue, err := models.GetOrCreateUserEntitlement(db, userID)
	if err != nil {
		return err
	}
	if ue.HasPaid {
		return nil
	}

	now := time.Now().UTC()
	return db.Model(&models.UserEntitlement{}).
		Where("user_id = ? AND has_paid = ?", userID, false).
		Updates(map[string]interface{}{
			"has_paid":            true,
			"payment_verified_at": &now,
		}).Error
}

// HasLifetimeAccess reports whether the user has verified paid access.
func HasLifetimeAccess(db *gorm.DB, userID uint) (bool, error) {
	ue, err := models.GetOrCreateUserEntitlement(db, userID)
	if err != nil {
		return false, err
	}
	return ue.HasPaid, nil
}

// AllowedFeatures maps paid status to product capabilities consumed by the
// entitlement endpoint.
func AllowedFeatures(hasPaid bool) (basicReading, fullReading, chat, pdfExport bool) {
	if hasPaid {
		return true, true, true, true
	}
	return true, false, false, false
}
