package realtime

import (
	"encoding/json"

	"pulse/pulse/types"
)

const (
	eventSendMessage = "send_message"
	eventNewMessage  = "new_message"
	eventUserOnline  = "user_online"
	eventUserOffline = "user_offline"
	eventError       = "error"
)

type inboundEvent struct {
	Type          string `json:"type"`
	ChatSessionID int    `json:"chat_session_id"`
	MessageText   string `json:"message_text"`
}

type newMessageEvent struct {
	Type string `json:"type"`
	types.MessagePayload
}

type presenceEvent struct {
	Type   string `json:"type"`
	UserID int    `json:"user_id"`
}

type errorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func encodeNewMessage(p types.MessagePayload) []byte {
	b, _ := json.Marshal(newMessageEvent{Type: eventNewMessage, MessagePayload: p})
	return b
}

func encodePresence(typ string, userID int) []byte {
	b, _ := json.Marshal(presenceEvent{Type: typ, UserID: userID})
	return b
}

func encodeError(msg string) []byte {
	b, _ := json.Marshal(errorEvent{Type: eventError, Error: msg})
	return b
}
