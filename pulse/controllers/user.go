package controllers

import (
	"context"
	"fmt"
	"io"

	"pulse/pulse/errs"
	"pulse/pulse/sources/psql/dao"
	"pulse/pulse/sources/psql/models"
)

// AvatarUploader is the blob-storage contract the user controller
// needs; satisfied by storage.AvatarStore.
type AvatarUploader interface {
	Upload(ctx context.Context, userID int, filename, contentType string, body io.Reader, size int64) (string, error)
}

type UserController struct {
	userDAO *dao.UserDAO
	avatars AvatarUploader
}

func NewUserController(userDAO *dao.UserDAO, avatars AvatarUploader) *UserController {
	return &UserController{userDAO: userDAO, avatars: avatars}
}

func (c *UserController) GetUser(ctx context.Context, id int) (*models.User, error) {
	user, err := c.userDAO.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", errs.ErrStorage)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", id, errs.ErrNotFound)
	}
	return user, nil
}

func (c *UserController) GetAllUsers(ctx context.Context) ([]models.User, error) {
	users, err := c.userDAO.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", errs.ErrStorage)
	}
	return users, nil
}

// UploadAvatar stores the image and records its public URL on the
// user row.
func (c *UserController) UploadAvatar(ctx context.Context, userID int, filename, contentType string, body io.Reader, size int64) (string, error) {
	url, err := c.avatars.Upload(ctx, userID, filename, contentType, body, size)
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	if err := c.userDAO.UpdateProfilePicture(ctx, userID, url); err != nil {
		return "", fmt.Errorf("save avatar url: %w", errs.ErrStorage)
	}
	return url, nil
}
