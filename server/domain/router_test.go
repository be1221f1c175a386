package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastReachesOnlyRoomMembers(t *testing.T) {
	tracker := NewMembershipTracker()
	router := NewBroadcastRouter(tracker, discardLogger())

	member, memberTransport := newTestConnection("u1", "alice")
	outsider, outsiderTransport := newTestConnection("u2", "bob")
	tracker.Join("AB12CD", member)
	tracker.Join("ZZZZ99", outsider)

	msg := NewChatMessage("01ABC", "AB12CD", "u1", "alice", "hello", time.Now())
	router.Broadcast("AB12CD", NewMessageEvent(msg))

	require.Len(t, memberTransport.Events(), 1)
	assert.Equal(t, EventMessage, memberTransport.Events()[0].Type)
	assert.Empty(t, outsiderTransport.Events())
}

func TestBroadcastExceptSkipsOneConnection(t *testing.T) {
	tracker := NewMembershipTracker()
	router := NewBroadcastRouter(tracker, discardLogger())

	joiner, joinerTransport := newTestConnection("u1", "alice")
	peer, peerTransport := newTestConnection("u2", "bob")
	tracker.Join("AB12CD", joiner)
	tracker.Join("AB12CD", peer)

	router.BroadcastExcept("AB12CD", NewUserJoinedEvent("AB12CD", joiner.Identity), joiner)

	assert.Empty(t, joinerTransport.Events(), "joiner must not be re-notified of their own join")
	require.Len(t, peerTransport.Events(), 1)
	assert.Equal(t, EventUserJoined, peerTransport.Events()[0].Type)
	assert.Equal(t, "u1", peerTransport.Events()[0].UserID)
}

func TestBroadcastFailedWriteDoesNotAbortOthers(t *testing.T) {
	tracker := NewMembershipTracker()
	router := NewBroadcastRouter(tracker, discardLogger())

	var healthy []*fakeTransport
	broken := &fakeTransport{failWrites: true}
	tracker.Join("AB12CD", NewConnection(NewUserIdentity("u0", "broken"), broken))
	for i := 1; i <= 3; i++ {
		transport := &fakeTransport{}
		healthy = append(healthy, transport)
		id := fmt.Sprintf("u%d", i)
		tracker.Join("AB12CD", NewConnection(NewUserIdentity(id, id), transport))
	}

	msg := NewChatMessage("01ABC", "AB12CD", "u1", "u1", "hello", time.Now())
	router.Broadcast("AB12CD", NewMessageEvent(msg))

	for _, transport := range healthy {
		assert.Len(t, transport.Events(), 1)
	}
}

func TestBroadcastPreservesPerConnectionOrder(t *testing.T) {
	tracker := NewMembershipTracker()
	router := NewBroadcastRouter(tracker, discardLogger())

	conn, transport := newTestConnection("u1", "alice")
	tracker.Join("AB12CD", conn)

	for i := 0; i < 10; i++ {
		msg := NewChatMessage(fmt.Sprintf("%02d", i), "AB12CD", "u1", "alice", fmt.Sprintf("m%d", i), time.Now())
		router.Broadcast("AB12CD", NewMessageEvent(msg))
	}

	events := transport.Events()
	require.Len(t, events, 10)
	for i, event := range events {
		assert.Equal(t, fmt.Sprintf("m%d", i), event.Message.Text)
	}
}

func TestSendToTargetsSingleConnection(t *testing.T) {
	tracker := NewMembershipTracker()
	router := NewBroadcastRouter(tracker, discardLogger())

	conn, transport := newTestConnection("u1", "alice")
	peer, peerTransport := newTestConnection("u2", "bob")
	tracker.Join("AB12CD", conn)
	tracker.Join("AB12CD", peer)

	router.SendTo(conn, NewErrorEvent("room not found"))

	require.Len(t, transport.Events(), 1)
	assert.Equal(t, EventError, transport.Events()[0].Type)
	assert.Empty(t, peerTransport.Events())
}
