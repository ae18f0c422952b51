package types

// TimeFormat is how timestamps appear in realtime payloads and history
// responses.
const TimeFormat = "2006-01-02 15:04:05"

type StartChatRequest struct {
	UserID int `json:"user_id"`
}

// MessagePayload is the delivery shape for a stored message, pushed
// over the realtime channel and returned from history fetches.
type MessagePayload struct {
	ID             int     `json:"id"`
	ChatSessionID  int     `json:"chat_session_id"`
	SenderID       int     `json:"sender_id"`
	Username       string  `json:"username"`
	ProfilePicture *string `json:"profile_picture"`
	MessageText    string  `json:"message_text"`
	IsRead         bool    `json:"is_read"`
	CreatedAt      string  `json:"created_at"`
}
