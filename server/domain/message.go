package domain

import "time"

const MaxMessageLength = 1000

type ChatMessage struct {
	ID         string
	RoomCode   string
	SenderID   string
	SenderName string
	Text       string
	SentAt     time.Time
}

func NewChatMessage(id, roomCode, senderID, senderName, text string, sentAt time.Time) ChatMessage {
	return ChatMessage{
		ID:         id,
		RoomCode:   roomCode,
		SenderID:   senderID,
		SenderName: senderName,
		Text:       text,
		SentAt:     sentAt,
	}
}

func (m ChatMessage) IsValid() bool {
	return m.ID != "" && m.RoomCode != "" && m.SenderID != "" && m.Text != ""
}

func (m ChatMessage) String() string {
	return m.SenderName + ": " + m.Text
}
