package domain

import "errors"

var (
	// ErrAuthInvalid is returned when a credential token is missing or malformed.
	ErrAuthInvalid = errors.New("credential invalid")
	// ErrAuthExpired is returned when a credential token is past its expiry.
	ErrAuthExpired = errors.New("credential expired")
	// ErrAuthUnknownUser is returned when a valid token resolves to no known user.
	ErrAuthUnknownUser = errors.New("credential resolves to no known user")

	ErrRoomNotFound   = errors.New("room not found")
	ErrInvalidMessage = errors.New("invalid message")
	ErrNotInRoom      = errors.New("not in a room")

	ErrConnectionClosed = errors.New("connection closed")
)
