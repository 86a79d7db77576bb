package postgres

import (
	"context"
	"errors"

	"github.com/ggorockee/reviewmaps-alerts/internal/domain/common/errorz"
	"github.com/ggorockee/reviewmaps-alerts/internal/domain/entity"
	"gorm.io/gorm"
)

type ActivityAlertStorage struct {
	db *gorm.DB
}

func NewActivityAlertStorage(db *gorm.DB) *ActivityAlertStorage {
	return &ActivityAlertStorage{
		db: db,
	}
}

// Create inserts a new alert. A violation of the (user, campaign, type, date)
// unique index is reported as errorz.ErrAlertExists so callers can treat a
// rerun of the same day's scan as a no-op.
func (s *ActivityAlertStorage) Create(ctx context.Context, alert *entity.ActivityAlert) error {
	err := s.db.WithContext(ctx).Create(alert).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errorz.ErrAlertExists
	}
	return err
}

// GetPending returns all alerts that have not been sent yet and are still
// visible to the user.
func (s *ActivityAlertStorage) GetPending(ctx context.Context) ([]entity.ActivityAlert, error) {
	var alerts []entity.ActivityAlert
	err := s.db.WithContext(ctx).
		Where("stage = ? AND is_visible = ?", entity.StagePending, true).
		Preload("Campaign").
		Order("id").
		Find(&alerts).Error
	return alerts, err
}

// MarkNotified moves one alert to the sent stage.
func (s *ActivityAlertStorage) MarkNotified(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).
		Model(&entity.ActivityAlert{}).
		Where("id = ?", id).
		Update("stage", entity.StageSent).Error
}

// MarkRead sets the read flag on the user's alerts. Already-read alerts are
// unaffected, so the call is idempotent.
func (s *ActivityAlertStorage) MarkRead(ctx context.Context, userID uint, ids []uint) error {
	return s.db.WithContext(ctx).
		Model(&entity.ActivityAlert{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Update("is_read", true).Error
}

// Hide soft-deletes the user's alerts from their listing. Rows are kept so
// the dedup index keeps suppressing regeneration.
func (s *ActivityAlertStorage) Hide(ctx context.Context, userID uint, ids []uint) error {
	return s.db.WithContext(ctx).
		Model(&entity.ActivityAlert{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Update("is_visible", false).Error
}
