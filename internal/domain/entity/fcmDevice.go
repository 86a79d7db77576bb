package entity

import "time"

// FCMDevice is a registered push token of a user's device.
type FCMDevice struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     *uint     `gorm:"index"`
	FCMToken   string    `gorm:"column:fcm_token;size:500;not null;uniqueIndex"`
	DeviceType string    `gorm:"size:20;not null"`
	IsActive   bool      `gorm:"default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	User *User `gorm:"foreignKey:UserID"`
}

func (FCMDevice) TableName() string {
	return "fcm_devices"
}
