package dao

import (
	"context"
	"errors"
	"time"

	"pulse/pulse/sources/psql/models"

	"gorm.io/gorm"
)

type UserDAO struct {
	DB *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{DB: db}
}

func (dao *UserDAO) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	err := dao.DB.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByLogin matches the given value against username or email,
// so people can sign in with either.
func (dao *UserDAO) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	err := dao.DB.WithContext(ctx).
		Where("username = ? OR email = ?", login, login).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (dao *UserDAO) CreateUser(ctx context.Context, user *models.User) error {
	return dao.DB.WithContext(ctx).Create(user).Error
}

func (dao *UserDAO) GetAllUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := dao.DB.WithContext(ctx).Order("username asc").Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (dao *UserDAO) SetOnline(ctx context.Context, userID int) error {
	return dao.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("is_online", true).Error
}

// SetOffline flips the online flag and records when the user was last
// reachable.
func (dao *UserDAO) SetOffline(ctx context.Context, userID int, lastSeen time.Time) error {
	return dao.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"is_online": false,
			"last_seen": lastSeen,
		}).Error
}

func (dao *UserDAO) UpdateProfilePicture(ctx context.Context, userID int, url string) error {
	return dao.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("profile_picture", url).Error
}
