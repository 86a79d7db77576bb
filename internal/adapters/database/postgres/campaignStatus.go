package postgres

import (
	"context"
	"time"

	"github.com/ggorockee/reviewmaps-alerts/internal/domain/entity"
	"gorm.io/gorm"
)

type CampaignStatusStorage struct {
	db *gorm.DB
}

func NewCampaignStatusStorage(db *gorm.DB) *CampaignStatusStorage {
	return &CampaignStatusStorage{
		db: db,
	}
}

// GetByReviewerAnnouncement returns one page of APPLY statuses whose
// reviewer announcement falls on the given date.
func (s *CampaignStatusStorage) GetByReviewerAnnouncement(ctx context.Context, date time.Time, page, size int) ([]entity.CampaignStatus, int, error) {
	return s.getPage(ctx, "status = ? AND reviewer_announcement_at = ?", []interface{}{entity.StatusApply, date}, page, size)
}

// GetByReviewEnd returns one page of REVIEWING statuses whose review period
// ends on the given date.
func (s *CampaignStatusStorage) GetByReviewEnd(ctx context.Context, date time.Time, page, size int) ([]entity.CampaignStatus, int, error) {
	return s.getPage(ctx, "status = ? AND review_end_at = ?", []interface{}{entity.StatusReviewing, date}, page, size)
}

// GetByVisitStart returns one page of SELECTED statuses whose visit starts
// on the given date.
func (s *CampaignStatusStorage) GetByVisitStart(ctx context.Context, date time.Time, page, size int) ([]entity.CampaignStatus, int, error) {
	return s.getPage(ctx, "status = ? AND visit_start_at = ?", []interface{}{entity.StatusSelected, date}, page, size)
}

func (s *CampaignStatusStorage) getPage(ctx context.Context, query string, args []interface{}, page, size int) ([]entity.CampaignStatus, int, error) {
	var total int64
	err := s.db.WithContext(ctx).
		Model(&entity.CampaignStatus{}).
		Where(query, args...).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var statuses []entity.CampaignStatus
	err = s.db.WithContext(ctx).
		Where(query, args...).
		Preload("Campaign").
		Order("id").
		Offset(page * size).
		Limit(size).
		Find(&statuses).Error
	if err != nil {
		return nil, 0, err
	}

	return statuses, totalPages(total, size), nil
}
