package domain

type EventType int

const (
	EventMessage EventType = iota
	EventUserJoined
	EventUserLeft
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventMessage:
		return "new-message"
	case EventUserJoined:
		return "user-joined"
	case EventUserLeft:
		return "user-left"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one outbound notification. Message, joined and left events fan
// out to a whole room; error events target a single connection.
type Event struct {
	Type        EventType
	RoomCode    string
	Message     ChatMessage
	UserID      string
	DisplayName string
	Reason      string
}

func NewMessageEvent(msg ChatMessage) Event {
	return Event{
		Type:     EventMessage,
		RoomCode: msg.RoomCode,
		Message:  msg,
	}
}

func NewUserJoinedEvent(roomCode string, identity UserIdentity) Event {
	return Event{
		Type:        EventUserJoined,
		RoomCode:    roomCode,
		UserID:      identity.ID,
		DisplayName: identity.DisplayName,
	}
}

func NewUserLeftEvent(roomCode string, identity UserIdentity) Event {
	return Event{
		Type:        EventUserLeft,
		RoomCode:    roomCode,
		UserID:      identity.ID,
		DisplayName: identity.DisplayName,
	}
}

func NewErrorEvent(reason string) Event {
	return Event{
		Type:   EventError,
		Reason: reason,
	}
}

func (e Event) IsValid() bool {
	switch e.Type {
	case EventMessage:
		return e.Message.IsValid()
	case EventUserJoined, EventUserLeft:
		return e.RoomCode != "" && e.UserID != ""
	case EventError:
		return e.Reason != ""
	default:
		return false
	}
}

func (e Event) String() string {
	switch e.Type {
	case EventMessage:
		return e.Type.String() + ": " + e.Message.String()
	case EventUserJoined, EventUserLeft:
		return e.Type.String() + ": " + e.DisplayName + " @ " + e.RoomCode
	case EventError:
		return e.Type.String() + ": " + e.Reason
	default:
		return e.Type.String()
	}
}
