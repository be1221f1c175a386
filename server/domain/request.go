package domain

type RequestType int

const (
	RequestJoin RequestType = iota
	RequestSend
	RequestLeave
	RequestDisconnect
)

func (t RequestType) String() string {
	switch t {
	case RequestJoin:
		return "join"
	case RequestSend:
		return "send"
	case RequestLeave:
		return "leave"
	case RequestDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// Request is one inbound client event. The session controller dispatches
// over this closed variant set, one request at a time per connection.
type Request struct {
	Type     RequestType
	RoomCode string
	Text     string
}

func NewJoinRequest(roomCode string) Request {
	return Request{
		Type:     RequestJoin,
		RoomCode: roomCode,
	}
}

func NewSendRequest(roomCode, text string) Request {
	return Request{
		Type:     RequestSend,
		RoomCode: roomCode,
		Text:     text,
	}
}

func NewLeaveRequest() Request {
	return Request{Type: RequestLeave}
}

func NewDisconnectRequest() Request {
	return Request{Type: RequestDisconnect}
}

func (r Request) IsValid() bool {
	switch r.Type {
	case RequestJoin:
		return r.RoomCode != ""
	case RequestSend:
		return r.RoomCode != "" && r.Text != ""
	case RequestLeave, RequestDisconnect:
		return true
	default:
		return false
	}
}

func (r Request) String() string {
	switch r.Type {
	case RequestJoin:
		return r.Type.String() + ": " + r.RoomCode
	case RequestSend:
		return r.Type.String() + ": " + r.RoomCode + " - " + r.Text
	default:
		return r.Type.String()
	}
}
