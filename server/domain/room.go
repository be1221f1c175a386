package domain

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	RoomCodeLength = 6

	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var roomCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

type Room struct {
	Code      string
	CreatedAt time.Time
}

func NewRoom(code string, createdAt time.Time) Room {
	return Room{
		Code:      code,
		CreatedAt: createdAt,
	}
}

// NormalizeRoomCode folds client input into the canonical code form.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func ValidRoomCode(code string) bool {
	return roomCodePattern.MatchString(code)
}

// GenerateRoomCode returns a random 6-character uppercase alphanumeric code.
// Uniqueness is the caller's concern; the store rejects duplicates.
func GenerateRoomCode() (string, error) {
	buf := make([]byte, RoomCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = roomCodeAlphabet[int(b)%len(roomCodeAlphabet)]
	}
	return string(buf), nil
}
