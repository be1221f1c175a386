package usecase

import (
	"errors"

	"github.com/ponyo877/flychat/server/domain"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Repository is the persistence boundary. Implementations assign message
// IDs and timestamps; IDs must sort in per-room append order.
type Repository interface {
	// User
	CreateUser(name, passwordHash string) (domain.UserIdentity, error)
	GetUserByName(name string) (domain.UserIdentity, string, error)
	GetUserByID(id string) (domain.UserIdentity, error)

	// Room
	CreateRoom(code string) (domain.Room, error)
	FindRoomByCode(code string) (domain.Room, error)
	DeleteRoom(code string) error

	// Message
	AppendMessage(roomCode, senderID, senderName, text string) (domain.ChatMessage, error)
	ListRecentMessages(roomCode string, limit int) ([]domain.ChatMessage, error)
}
