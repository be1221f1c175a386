package adaptor

import "github.com/ponyo877/flychat/server/domain"

type Auth interface {
	Register(name, password string) (domain.UserIdentity, string, error)
	Login(name, password string) (domain.UserIdentity, string, error)
	Verify(rawToken string) (domain.UserIdentity, error)
}

type Rooms interface {
	CreateRoom() (domain.Room, error)
	LookupRoom(code string) (domain.Room, error)
	CurrentRoom(userID string) (string, bool)
	RecentMessages(code string) ([]domain.ChatMessage, error)
	RoomUsers(code string) ([]domain.UserIdentity, error)
}

type Sessions interface {
	Attach(conn *domain.Connection)
	HandleSession(conn *domain.Connection, requests <-chan domain.Request)
	Leave(userID string) error
}
