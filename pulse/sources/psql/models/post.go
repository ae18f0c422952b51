package models

import "time"

type Post struct {
	ID              int       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID          int       `json:"user_id" gorm:"not null;index"`
	User            User      `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Body            string    `json:"body" gorm:"type:text;not null"`
	LinkURL         *string   `json:"link_url,omitempty" gorm:"type:varchar(2048)"`
	LinkTitle       *string   `json:"link_title,omitempty" gorm:"type:varchar(512)"`
	LinkDescription *string   `json:"link_description,omitempty" gorm:"type:text"`
	LinkImage       *string   `json:"link_image,omitempty" gorm:"type:varchar(2048)"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Post) TableName() string {
	return "posts"
}

type PostLike struct {
	ID        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	PostID    int       `json:"post_id" gorm:"not null;uniqueIndex:idx_post_likes_once"`
	Post      Post      `json:"-" gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
	UserID    int       `json:"user_id" gorm:"not null;uniqueIndex:idx_post_likes_once"`
	User      User      `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (PostLike) TableName() string {
	return "post_likes"
}

type Comment struct {
	ID        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	PostID    int       `json:"post_id" gorm:"not null;index"`
	Post      Post      `json:"-" gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
	UserID    int       `json:"user_id" gorm:"not null"`
	User      User      `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Comment) TableName() string {
	return "comments"
}
