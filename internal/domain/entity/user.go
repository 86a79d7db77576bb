package entity

import "time"

type User struct {
	ID        uint   `gorm:"primaryKey"`
	Nickname  string `gorm:"size:50"`
	Email     string `gorm:"size:255;uniqueIndex"`
	IsActive  bool   `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}
