package entity

import "time"

// Keyword alert stages
const (
	KeywordStageNone = 0
	KeywordStageLow  = 1
	KeywordStageHigh = 2
)

// KeywordCampaignAlert is a user's keyword subscription together with its
// current daily alert state. At most one active row exists per
// (user, keyword) pair; the stage only moves up within a day and resets
// when a new day's scan first qualifies.
type KeywordCampaignAlert struct {
	ID      uint   `gorm:"primaryKey"`
	UserID  uint   `gorm:"not null;uniqueIndex:idx_keyword_alert_user_kw"`
	Keyword string `gorm:"size:100;not null;uniqueIndex:idx_keyword_alert_user_kw"`

	Stage        int       `gorm:"not null;default:0"`
	MatchedCount int       `gorm:"not null;default:0"`
	IsNotified   bool      `gorm:"not null;default:false;index"`
	IsActive     bool      `gorm:"not null;default:true"`
	AlertDate    time.Time `gorm:"type:date"`

	CreatedAt time.Time
	UpdatedAt time.Time

	User User `gorm:"foreignKey:UserID"`
}

func (KeywordCampaignAlert) TableName() string {
	return "keyword_campaign_alerts"
}
