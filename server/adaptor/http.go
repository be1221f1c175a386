package adaptor

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/ponyo877/flychat/server/domain"
	"github.com/ponyo877/flychat/server/usecase"
)

// Adaptor is the transport edge: REST for the request/response plumbing
// and a websocket endpoint for live sessions.
type Adaptor struct {
	auth     Auth
	rooms    Rooms
	sessions Sessions
	logger   *slog.Logger
}

func NewAdaptor(auth Auth, rooms Rooms, sessions Sessions, logger *slog.Logger) *Adaptor {
	return &Adaptor{
		auth:     auth,
		rooms:    rooms,
		sessions: sessions,
		logger:   logger,
	}
}

func (a *Adaptor) Router() http.Handler {
	router := httprouter.New()
	router.POST("/api/auth/register", a.handleRegister)
	router.POST("/api/auth/login", a.handleLogin)
	router.POST("/api/rooms", a.authenticated(a.handleCreateRoom))
	router.POST("/api/rooms/:code/join", a.authenticated(a.handleJoinRoom))
	router.GET("/api/rooms/:code/messages", a.authenticated(a.handleRoomMessages))
	router.GET("/api/rooms/:code/users", a.authenticated(a.handleRoomUsers))
	router.GET("/api/session/room", a.authenticated(a.handleCurrentRoom))
	router.POST("/api/session/leave", a.authenticated(a.handleLeaveRoom))
	router.GET("/ws", a.handleWebSocket)
	return router
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type roomResponse struct {
	RoomCode string `json:"roomCode"`
}

type messageResponse struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Text       string    `json:"text"`
	SentAt     time.Time `json:"sentAt"`
}

func (a *Adaptor) handleRegister(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	identity, token, err := a.auth.Register(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserExists):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, usecase.ErrInvalidUsername), errors.Is(err, usecase.ErrInvalidPassword):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			a.logger.Error("register failed", "error", err)
			writeError(w, http.StatusInternalServerError, "error creating user")
		}
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{
		Token: token,
		User:  userResponse{ID: identity.ID, Username: identity.DisplayName},
	})
}

func (a *Adaptor) handleLogin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	identity, token, err := a.auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrBadCredentials) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		a.logger.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "error logging in")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{
		Token: token,
		User:  userResponse{ID: identity.ID, Username: identity.DisplayName},
	})
}

func (a *Adaptor) handleCreateRoom(w http.ResponseWriter, r *http.Request, _ httprouter.Params, _ domain.UserIdentity) {
	room, err := a.rooms.CreateRoom()
	if err != nil {
		a.logger.Error("room creation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create room, please try again")
		return
	}
	writeJSON(w, http.StatusCreated, roomResponse{RoomCode: room.Code})
}

func (a *Adaptor) handleJoinRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params, _ domain.UserIdentity) {
	code := ps.ByName("code")
	room, err := a.rooms.LookupRoom(code)
	if err != nil {
		a.writeRoomError(w, code, err)
		return
	}
	writeJSON(w, http.StatusOK, roomResponse{RoomCode: room.Code})
}

// handleLeaveRoom leaves the caller's live room over REST. The leave runs
// the same controller path as the websocket leave-room event, including
// last-member room teardown.
func (a *Adaptor) handleLeaveRoom(w http.ResponseWriter, r *http.Request, _ httprouter.Params, identity domain.UserIdentity) {
	if err := a.sessions.Leave(identity.ID); err != nil {
		if errors.Is(err, domain.ErrNotInRoom) {
			writeError(w, http.StatusNotFound, "not in a room")
			return
		}
		a.logger.Error("leave failed", "user", identity.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "left room"})
}

func (a *Adaptor) handleCurrentRoom(w http.ResponseWriter, r *http.Request, _ httprouter.Params, identity domain.UserIdentity) {
	code, ok := a.rooms.CurrentRoom(identity.ID)
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, roomResponse{RoomCode: code})
}

func (a *Adaptor) handleRoomMessages(w http.ResponseWriter, r *http.Request, ps httprouter.Params, _ domain.UserIdentity) {
	code := ps.ByName("code")
	messages, err := a.rooms.RecentMessages(code)
	if err != nil {
		a.writeRoomError(w, code, err)
		return
	}
	out := make([]messageResponse, len(messages))
	for i, m := range messages {
		out[i] = messageResponse{
			ID:         m.ID,
			SenderID:   m.SenderID,
			SenderName: m.SenderName,
			Text:       m.Text,
			SentAt:     m.SentAt,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *Adaptor) handleRoomUsers(w http.ResponseWriter, r *http.Request, ps httprouter.Params, _ domain.UserIdentity) {
	code := ps.ByName("code")
	users, err := a.rooms.RoomUsers(code)
	if err != nil {
		a.writeRoomError(w, code, err)
		return
	}
	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = userResponse{ID: u.ID, Username: u.DisplayName}
	}
	writeJSON(w, http.StatusOK, out)
}

type authedHandle func(http.ResponseWriter, *http.Request, httprouter.Params, domain.UserIdentity)

func (a *Adaptor) authenticated(next authedHandle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		identity, err := a.auth.Verify(bearerToken(r))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "please authenticate")
			return
		}
		next(w, r, ps, identity)
	}
}

// bearerToken pulls the credential from the Authorization header, falling
// back to the token query parameter for websocket dials.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func (a *Adaptor) writeRoomError(w http.ResponseWriter, code string, err error) {
	if errors.Is(err, domain.ErrRoomNotFound) {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	a.logger.Error("room request failed", "room", code, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
