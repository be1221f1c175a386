package usecase

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ponyo877/flychat/server/domain"
)

type fakeTransport struct {
	mu     sync.Mutex
	events []domain.Event
	closed bool
}

func (f *fakeTransport) WriteEvent(event domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("transport closed")
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) Events() []domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Event, len(f.events))
	copy(out, f.events)
	return out
}

func (f *fakeTransport) EventsOfType(t domain.EventType) []domain.Event {
	var out []domain.Event
	for _, event := range f.Events() {
		if event.Type == t {
			out = append(out, event)
		}
	}
	return out
}

func (f *fakeTransport) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type storedUser struct {
	identity domain.UserIdentity
	hash     string
}

type fakeRepo struct {
	mu        sync.Mutex
	users     map[string]storedUser // keyed by name
	rooms     map[string]domain.Room
	messages  map[string][]domain.ChatMessage
	deleted   []string
	seq       int
	appendErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    make(map[string]storedUser),
		rooms:    make(map[string]domain.Room),
		messages: make(map[string][]domain.ChatMessage),
	}
}

func (r *fakeRepo) addRoom(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[code] = domain.NewRoom(code, time.Now())
}

func (r *fakeRepo) messagesOf(code string) []domain.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ChatMessage, len(r.messages[code]))
	copy(out, r.messages[code])
	return out
}

func (r *fakeRepo) deletedRooms() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.deleted))
	copy(out, r.deleted)
	return out
}

func (r *fakeRepo) CreateUser(name, passwordHash string) (domain.UserIdentity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[name]; exists {
		return domain.UserIdentity{}, ErrAlreadyExists
	}
	r.seq++
	identity := domain.NewUserIdentity(fmt.Sprintf("user-%d", r.seq), name)
	r.users[name] = storedUser{identity: identity, hash: passwordHash}
	return identity, nil
}

func (r *fakeRepo) GetUserByName(name string) (domain.UserIdentity, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, exists := r.users[name]
	if !exists {
		return domain.UserIdentity{}, "", ErrNotFound
	}
	return user.identity, user.hash, nil
}

func (r *fakeRepo) GetUserByID(id string) (domain.UserIdentity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.identity.ID == id {
			return user.identity, nil
		}
	}
	return domain.UserIdentity{}, ErrNotFound
}

func (r *fakeRepo) CreateRoom(code string) (domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rooms[code]; exists {
		return domain.Room{}, ErrAlreadyExists
	}
	room := domain.NewRoom(code, time.Now())
	r.rooms[code] = room
	return room, nil
}

func (r *fakeRepo) FindRoomByCode(code string) (domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, exists := r.rooms[code]
	if !exists {
		return domain.Room{}, ErrNotFound
	}
	return room, nil
}

func (r *fakeRepo) DeleteRoom(code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, code)
	delete(r.messages, code)
	r.deleted = append(r.deleted, code)
	return nil
}

func (r *fakeRepo) AppendMessage(roomCode, senderID, senderName, text string) (domain.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return domain.ChatMessage{}, r.appendErr
	}
	r.seq++
	msg := domain.NewChatMessage(fmt.Sprintf("msg-%d", r.seq), roomCode, senderID, senderName, text, time.Now())
	r.messages[roomCode] = append(r.messages[roomCode], msg)
	return msg, nil
}

func (r *fakeRepo) ListRecentMessages(roomCode string, limit int) ([]domain.ChatMessage, error) {
	messages := r.messagesOf(roomCode)
	if len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

type testStack struct {
	repo     *fakeRepo
	registry *domain.SessionRegistry
	tracker  *domain.MembershipTracker
	router   *domain.BroadcastRouter
	sessions *SessionUsecase
}

func newTestStack() *testStack {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := newFakeRepo()
	registry := domain.NewSessionRegistry(logger)
	tracker := domain.NewMembershipTracker()
	router := domain.NewBroadcastRouter(tracker, logger)
	return &testStack{
		repo:     repo,
		registry: registry,
		tracker:  tracker,
		router:   router,
		sessions: NewSessionUsecase(repo, registry, tracker, router, logger),
	}
}

func (s *testStack) connect(userID, name string) (*domain.Connection, *fakeTransport) {
	transport := &fakeTransport{}
	conn := domain.NewConnection(domain.NewUserIdentity(userID, name), transport)
	s.sessions.Attach(conn)
	return conn, transport
}
