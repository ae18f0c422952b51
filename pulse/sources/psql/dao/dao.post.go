package dao

import (
	"context"
	"errors"
	"time"

	"pulse/pulse/sources/psql/models"

	"gorm.io/gorm"
)

type PostDAO struct {
	DB *gorm.DB
}

func NewPostDAO(db *gorm.DB) *PostDAO {
	return &PostDAO{DB: db}
}

// FeedItem is a post joined with its author and aggregate counts, as
// the feed renders it for one viewer.
type FeedItem struct {
	ID             int       `json:"id"`
	UserID         int       `json:"user_id"`
	Username       string    `json:"username"`
	ProfilePicture *string   `json:"profile_picture,omitempty"`
	Body           string    `json:"body"`
	LinkURL        *string   `json:"link_url,omitempty"`
	LinkTitle      *string   `json:"link_title,omitempty"`
	LinkDesc       *string   `json:"link_description,omitempty"`
	LinkImage      *string   `json:"link_image,omitempty"`
	LikeCount      int64     `json:"like_count"`
	CommentCount   int64     `json:"comment_count"`
	LikedByMe      bool      `json:"liked_by_me"`
	CreatedAt      time.Time `json:"created_at"`
}

func (dao *PostDAO) CreatePost(ctx context.Context, post *models.Post) error {
	return dao.DB.WithContext(ctx).Create(post).Error
}

func (dao *PostDAO) GetPostByID(ctx context.Context, id int) (*models.Post, error) {
	var post models.Post
	err := dao.DB.WithContext(ctx).First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (dao *PostDAO) GetFeed(ctx context.Context, viewerID, limit int) ([]FeedItem, error) {
	var items []FeedItem
	err := dao.DB.WithContext(ctx).Table("posts").
		Select(`posts.id, posts.user_id, users.username, users.profile_picture,
			posts.body, posts.link_url, posts.link_title,
			posts.link_description as link_desc, posts.link_image,
			(SELECT count(*) FROM post_likes WHERE post_likes.post_id = posts.id) as like_count,
			(SELECT count(*) FROM comments WHERE comments.post_id = posts.id) as comment_count,
			EXISTS(SELECT 1 FROM post_likes WHERE post_likes.post_id = posts.id AND post_likes.user_id = ?) as liked_by_me,
			posts.created_at`, viewerID).
		Joins("JOIN users ON users.id = posts.user_id").
		Order("posts.created_at desc, posts.id desc").
		Limit(limit).
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (dao *PostDAO) GetLike(ctx context.Context, postID, userID int) (*models.PostLike, error) {
	var like models.PostLike
	err := dao.DB.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&like).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &like, nil
}

func (dao *PostDAO) CreateLike(ctx context.Context, postID, userID int) error {
	return dao.DB.WithContext(ctx).Create(&models.PostLike{PostID: postID, UserID: userID}).Error
}

func (dao *PostDAO) DeleteLike(ctx context.Context, postID, userID int) error {
	return dao.DB.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.PostLike{}).Error
}

func (dao *PostDAO) CountLikes(ctx context.Context, postID int) (int64, error) {
	var count int64
	err := dao.DB.WithContext(ctx).Model(&models.PostLike{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

func (dao *PostDAO) CreateComment(ctx context.Context, comment *models.Comment) error {
	return dao.DB.WithContext(ctx).Create(comment).Error
}

// CommentView is a comment joined with its author.
type CommentView struct {
	ID             int       `json:"id"`
	PostID         int       `json:"post_id"`
	UserID         int       `json:"user_id"`
	Username       string    `json:"username"`
	ProfilePicture *string   `json:"profile_picture,omitempty"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
}

func (dao *PostDAO) GetCommentsByPost(ctx context.Context, postID int) ([]CommentView, error) {
	var comments []CommentView
	err := dao.DB.WithContext(ctx).Table("comments").
		Select(`comments.id, comments.post_id, comments.user_id,
			users.username, users.profile_picture, comments.body, comments.created_at`).
		Joins("JOIN users ON users.id = comments.user_id").
		Where("comments.post_id = ?", postID).
		Order("comments.created_at asc, comments.id asc").
		Scan(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
