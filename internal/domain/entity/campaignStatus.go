package entity

import "time"

type StatusType string

const (
	StatusApply     StatusType = "APPLY"
	StatusReviewing StatusType = "REVIEWING"
	StatusSelected  StatusType = "SELECTED"
)

// CampaignStatus tracks a user's progress on a campaign. Owned by the
// application subsystem; this core only reads the dates to drive
// eligibility queries.
type CampaignStatus struct {
	ID         uint       `gorm:"primaryKey"`
	UserID     uint       `gorm:"not null;index"`
	CampaignID uint       `gorm:"not null;index"`
	Status     StatusType `gorm:"size:20;not null;index"`

	ReviewerAnnouncementAt *time.Time `gorm:"type:date"`
	VisitStartAt           *time.Time `gorm:"type:date"`
	ReviewEndAt            *time.Time `gorm:"type:date"`

	CreatedAt time.Time
	UpdatedAt time.Time

	User     User     `gorm:"foreignKey:UserID"`
	Campaign Campaign `gorm:"foreignKey:CampaignID"`
}

func (CampaignStatus) TableName() string {
	return "campaign_statuses"
}
