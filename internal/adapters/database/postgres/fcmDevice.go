package postgres

import (
	"context"

	"github.com/ggorockee/reviewmaps-alerts/internal/domain/entity"
	"gorm.io/gorm"
)

type FCMDeviceStorage struct {
	db *gorm.DB
}

func NewFCMDeviceStorage(db *gorm.DB) *FCMDeviceStorage {
	return &FCMDeviceStorage{
		db: db,
	}
}

// GetActiveByUser returns the user's active device tokens.
func (s *FCMDeviceStorage) GetActiveByUser(ctx context.Context, userID uint) ([]entity.FCMDevice, error) {
	var devices []entity.FCMDevice
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&devices).Error
	return devices, err
}

// Deactivate disables a token the push provider reported as dead.
func (s *FCMDeviceStorage) Deactivate(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).
		Model(&entity.FCMDevice{}).
		Where("fcm_token = ?", token).
		Update("is_active", false).Error
}
