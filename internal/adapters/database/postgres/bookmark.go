package postgres

import (
	"context"
	"time"

	"github.com/ggorockee/reviewmaps-alerts/internal/domain/entity"
	"gorm.io/gorm"
)

type BookmarkStorage struct {
	db *gorm.DB
}

func NewBookmarkStorage(db *gorm.DB) *BookmarkStorage {
	return &BookmarkStorage{
		db: db,
	}
}

// GetActiveByApplyEnd returns one page of active bookmarks whose campaign is
// active and closes applications on the given date, plus the total page
// count for that page size.
func (s *BookmarkStorage) GetActiveByApplyEnd(ctx context.Context, applyEnd time.Time, page, size int) ([]entity.Bookmark, int, error) {
	var total int64
	err := s.db.WithContext(ctx).
		Model(&entity.Bookmark{}).
		Joins("JOIN campaigns ON campaigns.id = bookmarks.campaign_id").
		Where("bookmarks.is_active = ? AND campaigns.is_active = ? AND campaigns.apply_end_at = ?", true, true, applyEnd).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var bookmarks []entity.Bookmark
	err = s.db.WithContext(ctx).
		Joins("JOIN campaigns ON campaigns.id = bookmarks.campaign_id").
		Where("bookmarks.is_active = ? AND campaigns.is_active = ? AND campaigns.apply_end_at = ?", true, true, applyEnd).
		Preload("Campaign").
		Order("bookmarks.id").
		Offset(page * size).
		Limit(size).
		Find(&bookmarks).Error
	if err != nil {
		return nil, 0, err
	}

	return bookmarks, totalPages(total, size), nil
}

func totalPages(total int64, size int) int {
	return int((total + int64(size) - 1) / int64(size))
}
