package adaptor

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/ponyo877/flychat/server/domain"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	outboxSize  = 64
	requestSize = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type clientEnvelope struct {
	Type string `json:"type"`
	Room string `json:"room,omitempty"`
	Text string `json:"text,omitempty"`
}

type serverEnvelope struct {
	Type     string           `json:"type"`
	Message  *messageResponse `json:"message,omitempty"`
	UserID   string           `json:"userId,omitempty"`
	Username string           `json:"username,omitempty"`
	Reason   string           `json:"reason,omitempty"`
}

func toServerEnvelope(event domain.Event) serverEnvelope {
	env := serverEnvelope{Type: event.Type.String()}
	switch event.Type {
	case domain.EventMessage:
		env.Message = &messageResponse{
			ID:         event.Message.ID,
			SenderID:   event.Message.SenderID,
			SenderName: event.Message.SenderName,
			Text:       event.Message.Text,
			SentAt:     event.Message.SentAt,
		}
	case domain.EventUserJoined, domain.EventUserLeft:
		env.UserID = event.UserID
		env.Username = event.DisplayName
	case domain.EventError:
		env.Reason = event.Reason
	}
	return env
}

// handleWebSocket upgrades the connection after the identity binder has
// accepted the credential. Binding runs to completion before the
// connection is registered or allowed any room operation.
func (a *Adaptor) handleWebSocket(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, err := a.auth.Verify(bearerToken(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "please authenticate")
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	transport := newWSTransport(wsConn, a.logger)
	conn := domain.NewConnection(identity, transport)
	a.sessions.Attach(conn)

	go transport.writePump()

	requests := make(chan domain.Request, requestSize)
	handled := make(chan struct{})
	go func() {
		a.sessions.HandleSession(conn, requests)
		close(handled)
	}()

	a.readLoop(conn, wsConn, requests)

	// Reader is gone; closing the request channel runs the disconnect path.
	close(requests)
	<-handled
}

func (a *Adaptor) readLoop(conn *domain.Connection, wsConn *websocket.Conn, requests chan<- domain.Request) {
	wsConn.SetReadLimit(maxMessageSize)
	_ = wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		return wsConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				a.logger.Warn("websocket read error", "instance", conn.InstanceID, "error", err)
			}
			return
		}

		var env clientEnvelope
		if err := json.Unmarshal(payload, &env); err != nil {
			a.logger.Warn("failed to unmarshal client message",
				"instance", conn.InstanceID, "error", err)
			continue
		}

		switch env.Type {
		case "join-room":
			requests <- domain.NewJoinRequest(env.Room)
		case "send-message":
			requests <- domain.NewSendRequest(env.Room, env.Text)
		case "leave-room":
			requests <- domain.NewLeaveRequest()
		default:
			a.logger.Warn("unknown client message type",
				"instance", conn.InstanceID, "type", env.Type)
		}
	}
}

// wsTransport adapts a websocket connection to domain.Transport. Events
// are queued on a buffered outbox and written by a single pump goroutine,
// so delivery order per connection matches enqueue order.
type wsTransport struct {
	conn      *websocket.Conn
	outbox    chan domain.Event
	done      chan struct{}
	closeOnce sync.Once
	logger    *slog.Logger
}

func newWSTransport(conn *websocket.Conn, logger *slog.Logger) *wsTransport {
	return &wsTransport{
		conn:   conn,
		outbox: make(chan domain.Event, outboxSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

func (t *wsTransport) WriteEvent(event domain.Event) error {
	select {
	case <-t.done:
		return domain.ErrConnectionClosed
	default:
	}
	select {
	case t.outbox <- event:
		return nil
	case <-t.done:
		return domain.ErrConnectionClosed
	default:
		// Slow consumer; drop rather than block the broadcaster.
		return errors.New("outbox full")
	}
}

func (t *wsTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		err = t.conn.Close()
	})
	return err
}

func (t *wsTransport) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = t.Close()
	}()

	for {
		select {
		case event := <-t.outbox:
			_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := t.conn.WriteJSON(toServerEnvelope(event)); err != nil {
				t.logger.Warn("websocket write failed", "error", err)
				return
			}
		case <-t.done:
			_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = t.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := t.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
