package dao

import (
	"context"
	"errors"
	"time"

	"pulse/pulse/sources/psql/models"

	"gorm.io/gorm"
)

type ChatDAO struct {
	DB *gorm.DB
}

func NewChatDAO(db *gorm.DB) *ChatDAO {
	return &ChatDAO{DB: db}
}

func (dao *ChatDAO) GetSessionByID(ctx context.Context, id int) (*models.ChatSession, error) {
	var session models.ChatSession
	err := dao.DB.WithContext(ctx).First(&session, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSessionByPair looks up the session for an unordered pair. The
// unique index only covers (user1_id, user2_id) in order, so both
// orderings are checked here.
func (dao *ChatDAO) GetSessionByPair(ctx context.Context, userA, userB int) (*models.ChatSession, error) {
	var session models.ChatSession
	err := dao.DB.WithContext(ctx).
		Where("(user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)",
			userA, userB, userB, userA).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (dao *ChatDAO) CreateSession(ctx context.Context, userA, userB int) (*models.ChatSession, error) {
	session := models.ChatSession{User1ID: userA, User2ID: userB}
	if err := dao.DB.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (dao *ChatDAO) GetSessionsForUser(ctx context.Context, userID int) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	err := dao.DB.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("updated_at desc").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// CreateMessage inserts the message and touches the session's
// updated_at in one transaction, so a stored message is never visible
// without the session recency update.
func (dao *ChatDAO) CreateMessage(ctx context.Context, msg *models.Message) error {
	return dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.ChatSession{}).
			Where("id = ?", msg.ChatSessionID).
			Update("updated_at", time.Now()).Error
	})
}

func (dao *ChatDAO) GetMessagesBySession(ctx context.Context, sessionID int) ([]models.Message, error) {
	var messages []models.Message
	err := dao.DB.WithContext(ctx).
		Where("chat_session_id = ?", sessionID).
		Order("created_at asc, id asc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkMessagesRead flags every unread message in the session that was
// not sent by the reader. Re-running it is a no-op.
func (dao *ChatDAO) MarkMessagesRead(ctx context.Context, sessionID, readerID int) error {
	return dao.DB.WithContext(ctx).Model(&models.Message{}).
		Where("chat_session_id = ? AND sender_id <> ? AND is_read = ?", sessionID, readerID, false).
		Update("is_read", true).Error
}
