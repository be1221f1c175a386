package domain

import (
	"log/slog"
	"sync"
)

// SessionRegistry is the process-wide map from user ID to that user's
// single live connection. Registering a new connection for a user evicts
// the previous one; the eviction close is fire-and-forget, so two physical
// connections may briefly exist for one identity while the old transport
// drains.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Connection
	logger   *slog.Logger
}

func NewSessionRegistry(logger *slog.Logger) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*Connection),
		logger:   logger,
	}
}

// Register inserts the connection as the user's active session. Any prior
// session for the same user ID is replaced and its transport closed, so
// the superseded client observes a disconnect.
func (r *SessionRegistry) Register(conn *Connection) {
	r.mu.Lock()
	prev := r.sessions[conn.Identity.ID]
	r.sessions[conn.Identity.ID] = conn
	r.mu.Unlock()

	if prev != nil && prev.InstanceID != conn.InstanceID {
		r.logger.Info("evicting superseded session",
			"user", conn.Identity.ID,
			"old_instance", prev.InstanceID,
			"new_instance", conn.InstanceID)
		if err := prev.Close(); err != nil {
			r.logger.Warn("failed to close superseded session",
				"user", conn.Identity.ID, "error", err)
		}
	}
}

// Unregister removes the user's entry only when it still points at the
// given instance ID. A mismatch means a newer session already superseded
// this one; that is a race already resolved, not corruption, so it is a
// no-op.
func (r *SessionRegistry) Unregister(userID, instanceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.sessions[userID]
	if !exists || current.InstanceID != instanceID {
		return
	}
	delete(r.sessions, userID)
}

func (r *SessionRegistry) Lookup(userID string) (*Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, exists := r.sessions[userID]
	return conn, exists
}

func (r *SessionRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
