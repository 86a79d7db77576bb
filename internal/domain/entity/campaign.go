package entity

import (
	"time"

	"github.com/lib/pq"
)

// Campaign is owned by the campaign subsystem; this core only reads it.
type Campaign struct {
	ID         uint           `gorm:"primaryKey"`
	Title      string         `gorm:"size:255;not null"`
	ImageURL   string         `gorm:"size:500"`
	Channels   pq.StringArray `gorm:"type:text[]"`
	ApplyEndAt time.Time      `gorm:"type:date;index"`
	IsActive   bool           `gorm:"default:true"`
	CreatedAt  time.Time      `gorm:"index"`
	UpdatedAt  time.Time
}

func (Campaign) TableName() string {
	return "campaigns"
}
