package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pulse/pulse/config"
	"pulse/pulse/errs"
	"pulse/pulse/sources/psql/dao"
	"pulse/pulse/sources/psql/models"
	"pulse/pulse/types"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLen = 6

type AuthController struct {
	userDAO *dao.UserDAO
	cfg     config.Config
}

func NewAuthController(userDAO *dao.UserDAO, cfg config.Config) *AuthController {
	return &AuthController{
		userDAO: userDAO,
		cfg:     cfg,
	}
}

func (c *AuthController) Signup(ctx context.Context, req types.SignupRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" {
		return nil, fmt.Errorf("username and email are required: %w", errs.ErrValidation)
	}
	if req.Password != req.ConfirmPassword {
		return nil, fmt.Errorf("passwords do not match: %w", errs.ErrValidation)
	}
	if len(req.Password) < minPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, errs.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := c.userDAO.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("username or email taken: %w", errs.ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", errs.ErrStorage)
	}
	return user, nil
}

// Login accepts username or email and returns a signed token on a
// bcrypt match.
func (c *AuthController) Login(ctx context.Context, req types.LoginRequest) (string, *models.User, error) {
	user, err := c.userDAO.GetUserByLogin(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return "", nil, fmt.Errorf("lookup user: %w", errs.ErrStorage)
	}
	if user == nil {
		return "", nil, fmt.Errorf("unknown user: %w", errs.ErrForbidden)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, fmt.Errorf("bad credentials: %w", errs.ErrForbidden)
	}

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(c.cfg.JWTSecret))
	if err != nil {
		return "", nil, err
	}
	return signed, user, nil
}
