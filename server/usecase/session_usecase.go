package usecase

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/ponyo877/flychat/server/domain"
)

// SessionUsecase is the per-connection state machine. Each connection moves
// through Unbound -> Idle -> InRoom -> Closed: the transport edge binds an
// identity and calls Attach (Unbound -> Idle), then feeds requests into
// HandleSession one at a time, in arrival order.
//
// Store calls are never made while the registry or tracker lock is held;
// membership is mutated first, then the store is called with the lock
// released.
type SessionUsecase struct {
	repo     Repository
	registry *domain.SessionRegistry
	tracker  *domain.MembershipTracker
	router   *domain.BroadcastRouter
	logger   *slog.Logger
}

func NewSessionUsecase(
	repo Repository,
	registry *domain.SessionRegistry,
	tracker *domain.MembershipTracker,
	router *domain.BroadcastRouter,
	logger *slog.Logger,
) *SessionUsecase {
	return &SessionUsecase{
		repo:     repo,
		registry: registry,
		tracker:  tracker,
		router:   router,
		logger:   logger,
	}
}

// Attach places a freshly bound connection into the session registry,
// evicting any prior session for the same user.
func (u *SessionUsecase) Attach(conn *domain.Connection) {
	u.registry.Register(conn)
	u.logger.Info("session attached",
		"user", conn.Identity.ID,
		"name", conn.Identity.DisplayName,
		"instance", conn.InstanceID)
}

// HandleSession processes requests until the channel closes or an explicit
// disconnect arrives, then runs the disconnect path exactly once.
func (u *SessionUsecase) HandleSession(conn *domain.Connection, requests <-chan domain.Request) {
	for request := range requests {
		switch request.Type {
		case domain.RequestJoin:
			u.JoinRoom(conn, request.RoomCode)
		case domain.RequestSend:
			u.SendMessage(conn, request.RoomCode, request.Text)
		case domain.RequestLeave:
			u.LeaveRoom(conn)
		case domain.RequestDisconnect:
			u.Disconnect(conn)
			return
		default:
			u.logger.Warn("ignoring unknown request",
				"instance", conn.InstanceID, "type", int(request.Type))
		}
	}
	u.Disconnect(conn)
}

// JoinRoom moves the connection into the named room. Switching rooms is
// leave-then-join: the old room's leave side effects run first, and if the
// join then fails the connection is left idle and must re-join explicitly.
// Failures emit a targeted error to the requester only.
func (u *SessionUsecase) JoinRoom(conn *domain.Connection, code string) {
	code = domain.NormalizeRoomCode(code)
	if !domain.ValidRoomCode(code) {
		u.router.SendTo(conn, domain.NewErrorEvent("room code must be 6 uppercase letters or digits"))
		return
	}

	if prev := conn.ActiveRoom(); prev != "" {
		if prev == code {
			return
		}
		u.leaveCurrentRoom(conn, prev)
	}

	if _, err := u.repo.FindRoomByCode(code); err != nil {
		if errors.Is(err, ErrNotFound) {
			u.router.SendTo(conn, domain.NewErrorEvent("room not found"))
			return
		}
		u.logger.Error("room lookup failed", "room", code, "error", err)
		u.router.SendTo(conn, domain.NewErrorEvent("error joining room"))
		return
	}

	u.tracker.Join(code, conn)
	conn.SetActiveRoom(code)

	// The joiner already knows they joined; only peers are notified.
	u.router.BroadcastExcept(code, domain.NewUserJoinedEvent(code, conn.Identity), conn)

	u.logger.Info("joined room",
		"user", conn.Identity.ID, "room", code, "members", u.tracker.MemberCount(code))
}

// SendMessage persists the message and then broadcasts it to the room. An
// unpersisted message is never broadcast: a store failure aborts the send
// with a targeted error, leaving membership untouched.
func (u *SessionUsecase) SendMessage(conn *domain.Connection, code, text string) {
	text = strings.TrimSpace(text)
	if text == "" || len(text) > domain.MaxMessageLength {
		u.router.SendTo(conn, domain.NewErrorEvent(domain.ErrInvalidMessage.Error()))
		return
	}

	code = domain.NormalizeRoomCode(code)
	active := conn.ActiveRoom()
	if active == "" || active != code {
		// Stale client state: the room the client thinks it is in does not
		// match its live membership.
		u.router.SendTo(conn, domain.NewErrorEvent(domain.ErrNotInRoom.Error()))
		return
	}

	message, err := u.repo.AppendMessage(active, conn.Identity.ID, conn.Identity.DisplayName, text)
	if err != nil {
		u.logger.Error("failed to persist message",
			"user", conn.Identity.ID, "room", active, "error", err)
		u.router.SendTo(conn, domain.NewErrorEvent("error sending message"))
		return
	}

	u.router.Broadcast(active, domain.NewMessageEvent(message))
}

// LeaveRoom removes the connection from its current room, notifying the
// remaining members and tearing the room down if it is now empty. Leaving
// while idle is a benign no-op.
func (u *SessionUsecase) LeaveRoom(conn *domain.Connection) {
	code := conn.ActiveRoom()
	if code == "" {
		return
	}
	u.leaveCurrentRoom(conn, code)
}

// Leave runs the leave path for the user's live connection, looked up via
// the registry. It is the request/response counterpart of LeaveRoom and
// returns ErrNotInRoom when the user has no connection or is idle.
func (u *SessionUsecase) Leave(userID string) error {
	conn, exists := u.registry.Lookup(userID)
	if !exists || conn.ActiveRoom() == "" {
		return domain.ErrNotInRoom
	}
	u.LeaveRoom(conn)
	return nil
}

// Disconnect runs the full teardown for a closing connection: leave the
// active room (with last-member room deletion), drop the registry entry
// guarded by instance ID, and close the transport.
func (u *SessionUsecase) Disconnect(conn *domain.Connection) {
	u.LeaveRoom(conn)
	u.registry.Unregister(conn.Identity.ID, conn.InstanceID)
	if err := conn.Close(); err != nil {
		u.logger.Warn("error closing connection",
			"instance", conn.InstanceID, "error", err)
	}
	u.logger.Info("session detached",
		"user", conn.Identity.ID, "instance", conn.InstanceID)
}

func (u *SessionUsecase) leaveCurrentRoom(conn *domain.Connection, code string) {
	remaining := u.tracker.Leave(code, conn)
	conn.SetActiveRoom("")

	if remaining == 0 {
		// Last member out: delete the room record and its messages.
		if err := u.repo.DeleteRoom(code); err != nil {
			u.logger.Error("failed to delete empty room", "room", code, "error", err)
		}
		return
	}

	u.router.Broadcast(code, domain.NewUserLeftEvent(code, conn.Identity))
}
