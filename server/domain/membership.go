package domain

import "sync"

// MembershipTracker maps room codes to the set of connections subscribed
// to them. A connection belongs to zero or one rooms at any instant; Join
// moves a connection between rooms in a single critical section so no
// observer ever sees it in two rooms or in none mid-switch. Empty member
// sets are pruned immediately.
type MembershipTracker struct {
	mu     sync.Mutex
	rooms  map[string]map[string]*Connection
	byConn map[string]string
}

func NewMembershipTracker() *MembershipTracker {
	return &MembershipTracker{
		rooms:  make(map[string]map[string]*Connection),
		byConn: make(map[string]string),
	}
}

// Join adds the connection to the room's member set, first removing any
// membership in a different room. Returns the room code the connection was
// moved out of, or "" if it was not in a room.
func (t *MembershipTracker) Join(roomCode string, conn *Connection) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev := t.byConn[conn.InstanceID]
	if prev == roomCode {
		return ""
	}
	if prev != "" {
		t.removeLocked(prev, conn.InstanceID)
	}

	members, exists := t.rooms[roomCode]
	if !exists {
		members = make(map[string]*Connection)
		t.rooms[roomCode] = members
	}
	members[conn.InstanceID] = conn
	t.byConn[conn.InstanceID] = roomCode

	return prev
}

// Leave removes the connection from the room and returns the remaining
// member count so the caller can trigger room teardown at zero. Leaving a
// room the connection is not in is a benign no-op reporting the room's
// current size.
func (t *MembershipTracker) Leave(roomCode string, conn *Connection) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.byConn[conn.InstanceID] == roomCode {
		t.removeLocked(roomCode, conn.InstanceID)
	}
	return len(t.rooms[roomCode])
}

func (t *MembershipTracker) removeLocked(roomCode, instanceID string) {
	if members, exists := t.rooms[roomCode]; exists {
		delete(members, instanceID)
		if len(members) == 0 {
			delete(t.rooms, roomCode)
		}
	}
	delete(t.byConn, instanceID)
}

// MembersOf returns a snapshot of the room's members. The snapshot is not
// a live view; members added after it is taken legitimately miss whatever
// the caller does with it.
func (t *MembershipTracker) MembersOf(roomCode string) []*Connection {
	t.mu.Lock()
	defer t.mu.Unlock()

	members := t.rooms[roomCode]
	snapshot := make([]*Connection, 0, len(members))
	for _, conn := range members {
		snapshot = append(snapshot, conn)
	}
	return snapshot
}

// RoomOf reports which room the connection is currently a member of.
func (t *MembershipTracker) RoomOf(conn *Connection) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	code, exists := t.byConn[conn.InstanceID]
	return code, exists
}

func (t *MembershipTracker) MemberCount(roomCode string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rooms[roomCode])
}

func (t *MembershipTracker) ActiveRooms() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	codes := make([]string, 0, len(t.rooms))
	for code := range t.rooms {
		codes = append(codes, code)
	}
	return codes
}
