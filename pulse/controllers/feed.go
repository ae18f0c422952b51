package controllers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pulse/pulse/errs"
	"pulse/pulse/services/linkpreview"
	"pulse/pulse/sources/psql/dao"
	"pulse/pulse/sources/psql/models"
	"pulse/pulse/utils/logging"

	"go.uber.org/zap"
)

const feedLimit = 50

// PreviewFetcher resolves a URL into preview metadata. Satisfied by
// linkpreview.Client; tests substitute a stub.
type PreviewFetcher interface {
	Fetch(ctx context.Context, url string) (*linkpreview.Preview, error)
}

type FeedController struct {
	postDAO  *dao.PostDAO
	previews PreviewFetcher
}

func NewFeedController(postDAO *dao.PostDAO, previews PreviewFetcher) *FeedController {
	return &FeedController{postDAO: postDAO, previews: previews}
}

func (c *FeedController) CreatePost(ctx context.Context, userID int, body, link string) (*models.Post, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("post body is empty: %w", errs.ErrValidation)
	}

	post := &models.Post{UserID: userID, Body: body}
	if link = strings.TrimSpace(link); link != "" {
		post.LinkURL = &link
	}
	if post.LinkURL != nil && c.previews != nil {
		// A preview is decoration; a dead link must not fail the post.
		previewCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if p, err := c.previews.Fetch(previewCtx, link); err != nil {
			logging.AppLogger.Info("link preview skipped",
				zap.String("url", link), zap.Error(err))
		} else {
			if p.Title != "" {
				post.LinkTitle = &p.Title
			}
			if p.Description != "" {
				post.LinkDescription = &p.Description
			}
			if p.ImageURL != "" {
				post.LinkImage = &p.ImageURL
			}
		}
	}

	if err := c.postDAO.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", errs.ErrStorage)
	}
	return post, nil
}

func (c *FeedController) GetFeed(ctx context.Context, viewerID int) ([]dao.FeedItem, error) {
	defer logging.LogDuration(ctx, "FeedController.GetFeed")()

	items, err := c.postDAO.GetFeed(ctx, viewerID, feedLimit)
	if err != nil {
		return nil, fmt.Errorf("load feed: %w", errs.ErrStorage)
	}
	return items, nil
}

// ToggleLike likes the post if the user has not, removes the like if
// they have. Returns the new state and count.
func (c *FeedController) ToggleLike(ctx context.Context, userID, postID int) (bool, int64, error) {
	post, err := c.postDAO.GetPostByID(ctx, postID)
	if err != nil {
		return false, 0, fmt.Errorf("get post: %w", errs.ErrStorage)
	}
	if post == nil {
		return false, 0, fmt.Errorf("post %d: %w", postID, errs.ErrNotFound)
	}

	like, err := c.postDAO.GetLike(ctx, postID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("get like: %w", errs.ErrStorage)
	}
	liked := like == nil
	if liked {
		err = c.postDAO.CreateLike(ctx, postID, userID)
	} else {
		err = c.postDAO.DeleteLike(ctx, postID, userID)
	}
	if err != nil {
		return false, 0, fmt.Errorf("toggle like: %w", errs.ErrStorage)
	}

	count, err := c.postDAO.CountLikes(ctx, postID)
	if err != nil {
		return false, 0, fmt.Errorf("count likes: %w", errs.ErrStorage)
	}
	return liked, count, nil
}

func (c *FeedController) AddComment(ctx context.Context, userID, postID int, body string) (*models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("comment body is empty: %w", errs.ErrValidation)
	}
	post, err := c.postDAO.GetPostByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", errs.ErrStorage)
	}
	if post == nil {
		return nil, fmt.Errorf("post %d: %w", postID, errs.ErrNotFound)
	}

	comment := &models.Comment{PostID: postID, UserID: userID, Body: body}
	if err := c.postDAO.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", errs.ErrStorage)
	}
	return comment, nil
}

func (c *FeedController) GetComments(ctx context.Context, postID int) ([]dao.CommentView, error) {
	post, err := c.postDAO.GetPostByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", errs.ErrStorage)
	}
	if post == nil {
		return nil, fmt.Errorf("post %d: %w", postID, errs.ErrNotFound)
	}
	comments, err := c.postDAO.GetCommentsByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", errs.ErrStorage)
	}
	return comments, nil
}
