package postgres

import (
	"context"

	"github.com/ggorockee/reviewmaps-alerts/internal/domain/entity"
	"gorm.io/gorm"
)

type KeywordAlertStorage struct {
	db *gorm.DB
}

func NewKeywordAlertStorage(db *gorm.DB) *KeywordAlertStorage {
	return &KeywordAlertStorage{
		db: db,
	}
}

// GetActivePage returns one page of active keyword subscriptions plus the
// total page count for that page size.
func (s *KeywordAlertStorage) GetActivePage(ctx context.Context, page, size int) ([]entity.KeywordCampaignAlert, int, error) {
	var total int64
	err := s.db.WithContext(ctx).
		Model(&entity.KeywordCampaignAlert{}).
		Where("is_active = ?", true).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var alerts []entity.KeywordCampaignAlert
	err = s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id").
		Offset(page * size).
		Limit(size).
		Find(&alerts).Error
	if err != nil {
		return nil, 0, err
	}

	return alerts, totalPages(total, size), nil
}

// Save persists stage changes on a subscription row.
func (s *KeywordAlertStorage) Save(ctx context.Context, alert *entity.KeywordCampaignAlert) error {
	return s.db.WithContext(ctx).Save(alert).Error
}

// GetUnnotified returns active rows that reached a stage but have not been
// pushed yet.
func (s *KeywordAlertStorage) GetUnnotified(ctx context.Context) ([]entity.KeywordCampaignAlert, error) {
	var alerts []entity.KeywordCampaignAlert
	err := s.db.WithContext(ctx).
		Where("is_active = ? AND is_notified = ? AND stage > ?", true, false, entity.KeywordStageNone).
		Order("id").
		Find(&alerts).Error
	return alerts, err
}

// MarkNotified flags one row as pushed.
func (s *KeywordAlertStorage) MarkNotified(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).
		Model(&entity.KeywordCampaignAlert{}).
		Where("id = ?", id).
		Update("is_notified", true).Error
}
