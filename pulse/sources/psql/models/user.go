package models

import "time"

type User struct {
	ID             int        `json:"id" gorm:"primaryKey;autoIncrement"`
	Username       string     `json:"username" gorm:"type:varchar(50);uniqueIndex;not null"`
	Email          string     `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash   string     `json:"-" gorm:"type:varchar(255);not null"`
	ProfilePicture *string    `json:"profile_picture,omitempty" gorm:"type:varchar(512)"`
	IsOnline       bool       `json:"is_online" gorm:"not null;default:false"`
	LastSeen       *time.Time `json:"last_seen,omitempty"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}
