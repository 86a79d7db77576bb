package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ggorockee/reviewmaps-alerts/internal/domain/entity"
	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type CampaignStorage struct {
	db *gorm.DB
}

func NewCampaignStorage(db *gorm.DB) *CampaignStorage {
	return &CampaignStorage{
		db: db,
	}
}

// Get returns a campaign by id.
func (s *CampaignStorage) Get(ctx context.Context, id uint) (*entity.Campaign, error) {
	var campaign entity.Campaign
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&campaign).Error
	return &campaign, err
}

// CountMatchingOnDay counts active campaigns registered on the given day
// whose title contains the keyword as a literal substring.
func (s *CampaignStorage) CountMatchingOnDay(ctx context.Context, keyword string, day time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&entity.Campaign{}).
		Where("is_active = ?", true).
		Where("created_at >= ? AND created_at < ?", day, day.AddDate(0, 0, 1)).
		Where("title ILIKE ?", likePattern(keyword)).
		Count(&count).Error
	return count, err
}

// likePattern builds a contains-pattern for ILIKE, escaping the pattern
// metacharacters so the keyword itself matches literally.
func likePattern(keyword string) string {
	return fmt.Sprintf("%%%s%%", likeEscaper.Replace(keyword))
}
