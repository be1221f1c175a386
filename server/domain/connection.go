package domain

import (
	"sync"

	"github.com/oklog/ulid/v2"
)

// Transport is the outbound half of one client's bidirectional channel.
// WriteEvent must be safe for use by one goroutine at a time; Connection
// serializes callers so implementations see sequential writes.
type Transport interface {
	WriteEvent(Event) error
	Close() error
}

// Connection binds a resolved identity to one live transport. The instance
// ID disambiguates successive physical connections for the same user, so a
// stale cleanup cannot tear down a session that already superseded it.
type Connection struct {
	Identity   UserIdentity
	InstanceID string

	mu         sync.Mutex
	activeRoom string
	transport  Transport
	closed     bool
}

func NewConnection(identity UserIdentity, transport Transport) *Connection {
	return &Connection{
		Identity:   identity,
		InstanceID: ulid.Make().String(),
		transport:  transport,
	}
}

// ActiveRoom returns the room code this connection is currently bound to,
// or "" when idle.
func (c *Connection) ActiveRoom() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeRoom
}

func (c *Connection) SetActiveRoom(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeRoom = code
}

// Deliver writes one event to the transport. Writes are serialized, so
// delivery order to a single connection matches the order of Deliver calls.
func (c *Connection) Deliver(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnectionClosed
	}
	return c.transport.WriteEvent(event)
}

// Close shuts the transport down. Idempotent; concurrent with Deliver.
func (c *Connection) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	return c.transport.Close()
}

func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Connection) String() string {
	return c.Identity.DisplayName + "#" + c.InstanceID
}
