package domain

import "log/slog"

// BroadcastRouter fans events out to every connection currently tracked
// under a room code. Delivery is best-effort and fire-and-forget per
// member: a failed write is logged and never aborts delivery to the rest,
// and the dead connection's own disconnect path cleans it up.
type BroadcastRouter struct {
	tracker *MembershipTracker
	logger  *slog.Logger
}

func NewBroadcastRouter(tracker *MembershipTracker, logger *slog.Logger) *BroadcastRouter {
	return &BroadcastRouter{
		tracker: tracker,
		logger:  logger,
	}
}

// Broadcast delivers the event to all current members of the room.
func (b *BroadcastRouter) Broadcast(roomCode string, event Event) {
	b.deliver(b.tracker.MembersOf(roomCode), event, nil)
}

// BroadcastExcept delivers the event to all current members except one,
// used to skip re-notifying a joiner of their own join.
func (b *BroadcastRouter) BroadcastExcept(roomCode string, event Event, except *Connection) {
	b.deliver(b.tracker.MembersOf(roomCode), event, except)
}

// SendTo targets a single connection, used for error events.
func (b *BroadcastRouter) SendTo(conn *Connection, event Event) {
	if err := conn.Deliver(event); err != nil {
		b.logger.Warn("targeted delivery failed",
			"instance", conn.InstanceID, "event", event.Type.String(), "error", err)
	}
}

func (b *BroadcastRouter) deliver(members []*Connection, event Event, except *Connection) {
	for _, member := range members {
		if except != nil && member.InstanceID == except.InstanceID {
			continue
		}
		if err := member.Deliver(event); err != nil {
			b.logger.Warn("broadcast delivery failed",
				"instance", member.InstanceID,
				"room", event.RoomCode,
				"event", event.Type.String(),
				"error", err)
		}
	}
}
