package models

import "time"

// ChatSession is the unique conversation between two users. The unique
// index covers the ordered pair only, so lookups must check both
// orderings of (user1_id, user2_id).
type ChatSession struct {
	ID        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	User1ID   int       `json:"user1_id" gorm:"not null;uniqueIndex:idx_chat_sessions_pair"`
	User2ID   int       `json:"user2_id" gorm:"not null;uniqueIndex:idx_chat_sessions_pair"`
	User1     User      `json:"-" gorm:"foreignKey:User1ID;references:ID;constraint:OnDelete:CASCADE"`
	User2     User      `json:"-" gorm:"foreignKey:User2ID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

// Counterpart returns the other participant's id, and false when the
// given user is not part of the session.
func (s *ChatSession) Counterpart(userID int) (int, bool) {
	switch userID {
	case s.User1ID:
		return s.User2ID, true
	case s.User2ID:
		return s.User1ID, true
	}
	return 0, false
}

type Message struct {
	ID            int         `json:"id" gorm:"primaryKey;autoIncrement"`
	ChatSessionID int         `json:"chat_session_id" gorm:"not null;index"`
	ChatSession   ChatSession `json:"-" gorm:"foreignKey:ChatSessionID;references:ID;constraint:OnDelete:CASCADE"`
	SenderID      int         `json:"sender_id" gorm:"not null"`
	Sender        User        `json:"-" gorm:"foreignKey:SenderID;references:ID;constraint:OnDelete:CASCADE"`
	MessageText   string      `json:"message_text" gorm:"type:text;not null"`
	IsRead        bool        `json:"is_read" gorm:"not null;default:false"`
	CreatedAt     time.Time   `json:"created_at" gorm:"autoCreateTime"`
}

func (Message) TableName() string {
	return "messages"
}
