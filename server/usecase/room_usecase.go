package usecase

import (
	"errors"
	"fmt"

	"github.com/ponyo877/flychat/server/domain"
)

const (
	maxCodeAttempts = 5

	// HistoryLimit bounds how many recent messages a room history request
	// returns, oldest first.
	HistoryLimit = 100
)

// RoomUsecase serves the request/response room operations: creation,
// lookup, history and live member listings. Live membership comes from the
// tracker, which is authoritative; the store only holds room records and
// messages.
type RoomUsecase struct {
	repo     Repository
	tracker  *domain.MembershipTracker
	registry *domain.SessionRegistry
}

func NewRoomUsecase(repo Repository, tracker *domain.MembershipTracker, registry *domain.SessionRegistry) *RoomUsecase {
	return &RoomUsecase{
		repo:     repo,
		tracker:  tracker,
		registry: registry,
	}
}

// CreateRoom generates a fresh unique code and persists the room record.
// Collisions with live codes are retried a bounded number of times.
func (u *RoomUsecase) CreateRoom() (domain.Room, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := domain.GenerateRoomCode()
		if err != nil {
			return domain.Room{}, err
		}
		room, err := u.repo.CreateRoom(code)
		if err != nil {
			if errors.Is(err, ErrAlreadyExists) {
				continue
			}
			return domain.Room{}, fmt.Errorf("failed to create room: %w", err)
		}
		return room, nil
	}
	return domain.Room{}, fmt.Errorf("failed to generate a unique room code after %d attempts", maxCodeAttempts)
}

func (u *RoomUsecase) LookupRoom(code string) (domain.Room, error) {
	code = domain.NormalizeRoomCode(code)
	if !domain.ValidRoomCode(code) {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	room, err := u.repo.FindRoomByCode(code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.Room{}, domain.ErrRoomNotFound
		}
		return domain.Room{}, fmt.Errorf("failed to look up room %s: %w", code, err)
	}
	return room, nil
}

// CurrentRoom reports the room the user's live connection is bound to.
func (u *RoomUsecase) CurrentRoom(userID string) (string, bool) {
	conn, exists := u.registry.Lookup(userID)
	if !exists {
		return "", false
	}
	code := conn.ActiveRoom()
	return code, code != ""
}

func (u *RoomUsecase) RecentMessages(code string) ([]domain.ChatMessage, error) {
	room, err := u.LookupRoom(code)
	if err != nil {
		return nil, err
	}
	messages, err := u.repo.ListRecentMessages(room.Code, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages for room %s: %w", room.Code, err)
	}
	return messages, nil
}

// RoomUsers returns the identities currently connected to the room.
func (u *RoomUsecase) RoomUsers(code string) ([]domain.UserIdentity, error) {
	room, err := u.LookupRoom(code)
	if err != nil {
		return nil, err
	}
	members := u.tracker.MembersOf(room.Code)
	identities := make([]domain.UserIdentity, 0, len(members))
	for _, member := range members {
		identities = append(identities, member.Identity)
	}
	return identities, nil
}
