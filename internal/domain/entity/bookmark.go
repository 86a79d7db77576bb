package entity

import "time"

// Bookmark is owned by the campaign subsystem; this core only reads it.
type Bookmark struct {
	ID         uint `gorm:"primaryKey"`
	UserID     uint `gorm:"not null;uniqueIndex:idx_bookmark_user_campaign"`
	CampaignID uint `gorm:"not null;uniqueIndex:idx_bookmark_user_campaign"`
	IsActive   bool `gorm:"default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	User     User     `gorm:"foreignKey:UserID"`
	Campaign Campaign `gorm:"foreignKey:CampaignID"`
}

func (Bookmark) TableName() string {
	return "bookmarks"
}
