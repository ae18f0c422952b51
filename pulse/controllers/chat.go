package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pulse/pulse/errs"
	"pulse/pulse/sources/psql/dao"
	"pulse/pulse/sources/psql/models"
	"pulse/pulse/types"
	"pulse/pulse/utils/logging"

	"gorm.io/gorm"
)

type ChatController struct {
	chatDAO *dao.ChatDAO
	userDAO *dao.UserDAO
}

func NewChatController(chatDAO *dao.ChatDAO, userDAO *dao.UserDAO) *ChatController {
	return &ChatController{chatDAO: chatDAO, userDAO: userDAO}
}

// StartChat finds or creates the session between the caller and the
// other user. Two callers racing on the same pair can both miss the
// select and one insert will then hit the unique index; that loser
// re-selects and returns the winning row.
func (c *ChatController) StartChat(ctx context.Context, userID, otherID int) (*models.ChatSession, error) {
	if userID == otherID {
		return nil, fmt.Errorf("cannot start a chat with yourself: %w", errs.ErrValidation)
	}

	other, err := c.userDAO.GetUserByID(ctx, otherID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", errs.ErrStorage)
	}
	if other == nil {
		return nil, fmt.Errorf("user %d: %w", otherID, errs.ErrNotFound)
	}

	session, err := c.chatDAO.GetSessionByPair(ctx, userID, otherID)
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", errs.ErrStorage)
	}
	if session != nil {
		return session, nil
	}

	session, err = c.chatDAO.CreateSession(ctx, userID, otherID)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		session, err = c.chatDAO.GetSessionByPair(ctx, userID, otherID)
		if err != nil {
			return nil, fmt.Errorf("reselect session: %w", errs.ErrStorage)
		}
		if session == nil {
			return nil, fmt.Errorf("session vanished after conflict: %w", errs.ErrConflict)
		}
		return session, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create session: %w", errs.ErrStorage)
	}
	return session, nil
}

// SendMessage validates, persists and shapes the delivery payload for
// one message. It returns the counterpart's id so the caller can fan
// out; it does no delivery itself.
func (c *ChatController) SendMessage(ctx context.Context, senderID, sessionID int, text string) (*types.MessagePayload, int, error) {
	defer logging.LogDuration(ctx, "ChatController.SendMessage")()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, 0, fmt.Errorf("message text is empty: %w", errs.ErrValidation)
	}

	session, err := c.chatDAO.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, 0, fmt.Errorf("lookup session: %w", errs.ErrStorage)
	}
	if session == nil {
		return nil, 0, fmt.Errorf("session %d: %w", sessionID, errs.ErrNotFound)
	}
	receiverID, ok := session.Counterpart(senderID)
	if !ok {
		return nil, 0, fmt.Errorf("sender %d is not in session %d: %w", senderID, sessionID, errs.ErrForbidden)
	}

	msg := &models.Message{
		ChatSessionID: sessionID,
		SenderID:      senderID,
		MessageText:   text,
	}
	if err := c.chatDAO.CreateMessage(ctx, msg); err != nil {
		return nil, 0, fmt.Errorf("store message: %w", errs.ErrStorage)
	}

	sender, err := c.userDAO.GetUserByID(ctx, senderID)
	if err != nil || sender == nil {
		return nil, 0, fmt.Errorf("lookup sender: %w", errs.ErrStorage)
	}

	payload := &types.MessagePayload{
		ID:             msg.ID,
		ChatSessionID:  msg.ChatSessionID,
		SenderID:       senderID,
		Username:       sender.Username,
		ProfilePicture: sender.ProfilePicture,
		MessageText:    msg.MessageText,
		IsRead:         msg.IsRead,
		CreatedAt:      msg.CreatedAt.Format(types.TimeFormat),
	}
	return payload, receiverID, nil
}

// GetMessages returns the session history in creation order and, as a
// side effect, marks the other participant's messages as read.
func (c *ChatController) GetMessages(ctx context.Context, requesterID, sessionID int) ([]types.MessagePayload, error) {
	session, err := c.chatDAO.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", errs.ErrStorage)
	}
	if session == nil {
		return nil, fmt.Errorf("session %d: %w", sessionID, errs.ErrNotFound)
	}
	if _, ok := session.Counterpart(requesterID); !ok {
		return nil, fmt.Errorf("user %d is not in session %d: %w", requesterID, sessionID, errs.ErrForbidden)
	}

	messages, err := c.chatDAO.GetMessagesBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", errs.ErrStorage)
	}
	if err := c.chatDAO.MarkMessagesRead(ctx, sessionID, requesterID); err != nil {
		return nil, fmt.Errorf("mark read: %w", errs.ErrStorage)
	}

	// Sender display data for the two participants.
	names := map[int]*models.User{}
	for _, id := range []int{session.User1ID, session.User2ID} {
		u, err := c.userDAO.GetUserByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("lookup participant: %w", errs.ErrStorage)
		}
		names[id] = u
	}

	out := make([]types.MessagePayload, 0, len(messages))
	for _, m := range messages {
		p := types.MessagePayload{
			ID:            m.ID,
			ChatSessionID: m.ChatSessionID,
			SenderID:      m.SenderID,
			MessageText:   m.MessageText,
			IsRead:        m.IsRead,
			CreatedAt:     m.CreatedAt.Format(types.TimeFormat),
		}
		if u := names[m.SenderID]; u != nil {
			p.Username = u.Username
			p.ProfilePicture = u.ProfilePicture
		}
		out = append(out, p)
	}
	return out, nil
}
