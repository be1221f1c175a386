package repository

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ponyo877/flychat/server/usecase"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db)
	require.NoError(t, repo.Migrate())
	return repo
}

func TestUserRoundTrip(t *testing.T) {
	repo := newTestRepository(t)

	created, err := repo.CreateUser("alice", "hash-1")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	byName, hash, err := repo.GetUserByName("alice")
	require.NoError(t, err)
	assert.Equal(t, created, byName)
	assert.Equal(t, "hash-1", hash)

	byID, err := repo.GetUserByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, byID)
}

func TestDuplicateUsernameIsRejected(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.CreateUser("alice", "hash-1")
	require.NoError(t, err)

	_, err = repo.CreateUser("alice", "hash-2")
	assert.ErrorIs(t, err, usecase.ErrAlreadyExists)
}

func TestUnknownUserReturnsNotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, _, err := repo.GetUserByName("nobody")
	assert.ErrorIs(t, err, usecase.ErrNotFound)

	_, err = repo.GetUserByID("missing-id")
	assert.ErrorIs(t, err, usecase.ErrNotFound)
}

func TestRoomRoundTrip(t *testing.T) {
	repo := newTestRepository(t)

	created, err := repo.CreateRoom("AB12CD")
	require.NoError(t, err)

	found, err := repo.FindRoomByCode("AB12CD")
	require.NoError(t, err)
	assert.Equal(t, created.Code, found.Code)

	_, err = repo.CreateRoom("AB12CD")
	assert.ErrorIs(t, err, usecase.ErrAlreadyExists)

	_, err = repo.FindRoomByCode("ZZZZ99")
	assert.ErrorIs(t, err, usecase.ErrNotFound)
}

func TestDeleteRoomCascadesMessages(t *testing.T) {
	repo := newTestRepository(t)
	user, err := repo.CreateUser("alice", "hash-1")
	require.NoError(t, err)
	_, err = repo.CreateRoom("AB12CD")
	require.NoError(t, err)

	_, err = repo.AppendMessage("AB12CD", user.ID, user.DisplayName, "hello")
	require.NoError(t, err)

	require.NoError(t, repo.DeleteRoom("AB12CD"))

	_, err = repo.FindRoomByCode("AB12CD")
	assert.ErrorIs(t, err, usecase.ErrNotFound)

	// Re-creating the room must not resurrect old messages.
	_, err = repo.CreateRoom("AB12CD")
	require.NoError(t, err)
	messages, err := repo.ListRecentMessages("AB12CD", 100)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestAppendAssignsOrderedIDs(t *testing.T) {
	repo := newTestRepository(t)
	user, err := repo.CreateUser("alice", "hash-1")
	require.NoError(t, err)
	_, err = repo.CreateRoom("AB12CD")
	require.NoError(t, err)

	var lastID string
	for i := 0; i < 10; i++ {
		msg, err := repo.AppendMessage("AB12CD", user.ID, user.DisplayName, fmt.Sprintf("m%d", i))
		require.NoError(t, err)
		assert.Greater(t, msg.ID, lastID, "message ids must sort in append order")
		lastID = msg.ID
	}
}

func TestListRecentMessagesIsBoundedOldestFirst(t *testing.T) {
	repo := newTestRepository(t)
	user, err := repo.CreateUser("alice", "hash-1")
	require.NoError(t, err)
	_, err = repo.CreateRoom("AB12CD")
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		_, err := repo.AppendMessage("AB12CD", user.ID, user.DisplayName, fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}

	messages, err := repo.ListRecentMessages("AB12CD", 4)
	require.NoError(t, err)
	require.Len(t, messages, 4)

	// The most recent four, oldest first, with sender names resolved.
	for i, msg := range messages {
		assert.Equal(t, fmt.Sprintf("m%d", i+6), msg.Text)
		assert.Equal(t, "alice", msg.SenderName)
	}
}
