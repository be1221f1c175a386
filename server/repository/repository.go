package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/ponyo877/flychat/server/domain"
	"github.com/ponyo877/flychat/server/usecase"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the schema if it does not exist yet.
func (r *Repository) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS rooms (
		code       TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS messages (
		id         TEXT PRIMARY KEY,
		room_code  TEXT NOT NULL,
		sender_id  TEXT NOT NULL,
		content    TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room_code, id);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}

func (r *Repository) CreateUser(name, passwordHash string) (domain.UserIdentity, error) {
	id := ulid.Make().String()
	query := "INSERT INTO users (id, name, password_hash, created_at) VALUES (?, ?, ?, ?)"
	if _, err := r.db.Exec(query, id, name, passwordHash, time.Now()); err != nil {
		if isUniqueViolation(err) {
			return domain.UserIdentity{}, usecase.ErrAlreadyExists
		}
		return domain.UserIdentity{}, fmt.Errorf("failed to insert user %s: %w", name, err)
	}
	return domain.NewUserIdentity(id, name), nil
}

func (r *Repository) GetUserByName(name string) (domain.UserIdentity, string, error) {
	query := "SELECT id, password_hash FROM users WHERE name = ?"
	var id, hash string
	if err := r.db.QueryRow(query, name).Scan(&id, &hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.UserIdentity{}, "", usecase.ErrNotFound
		}
		return domain.UserIdentity{}, "", fmt.Errorf("failed to query user %s: %w", name, err)
	}
	return domain.NewUserIdentity(id, name), hash, nil
}

func (r *Repository) GetUserByID(id string) (domain.UserIdentity, error) {
	query := "SELECT name FROM users WHERE id = ?"
	var name string
	if err := r.db.QueryRow(query, id).Scan(&name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.UserIdentity{}, usecase.ErrNotFound
		}
		return domain.UserIdentity{}, fmt.Errorf("failed to query user %s: %w", id, err)
	}
	return domain.NewUserIdentity(id, name), nil
}

func (r *Repository) CreateRoom(code string) (domain.Room, error) {
	createdAt := time.Now()
	query := "INSERT INTO rooms (code, created_at) VALUES (?, ?)"
	if _, err := r.db.Exec(query, code, createdAt); err != nil {
		if isUniqueViolation(err) {
			return domain.Room{}, usecase.ErrAlreadyExists
		}
		return domain.Room{}, fmt.Errorf("failed to insert room %s: %w", code, err)
	}
	return domain.NewRoom(code, createdAt), nil
}

func (r *Repository) FindRoomByCode(code string) (domain.Room, error) {
	query := "SELECT created_at FROM rooms WHERE code = ?"
	var createdAt time.Time
	if err := r.db.QueryRow(query, code).Scan(&createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Room{}, usecase.ErrNotFound
		}
		return domain.Room{}, fmt.Errorf("failed to query room %s: %w", code, err)
	}
	return domain.NewRoom(code, createdAt), nil
}

// DeleteRoom removes the room record and cascades message deletion.
func (r *Repository) DeleteRoom(code string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages WHERE room_code = ?", code); err != nil {
		return fmt.Errorf("failed to delete messages for room %s: %w", code, err)
	}
	if _, err := tx.Exec("DELETE FROM rooms WHERE code = ?", code); err != nil {
		return fmt.Errorf("failed to delete room %s: %w", code, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit room deletion: %w", err)
	}
	return nil
}

// AppendMessage assigns a ULID and timestamp to the message and inserts
// it. ULIDs embed millisecond timestamps and sort lexicographically, so
// per-room insertion order and id order agree.
func (r *Repository) AppendMessage(roomCode, senderID, senderName, text string) (domain.ChatMessage, error) {
	id := ulid.Make()
	sentAt := time.UnixMilli(int64(id.Time()))

	query := "INSERT INTO messages (id, room_code, sender_id, content, created_at) VALUES (?, ?, ?, ?, ?)"
	if _, err := r.db.Exec(query, id.String(), roomCode, senderID, text, sentAt); err != nil {
		return domain.ChatMessage{}, fmt.Errorf("failed to insert message for room %s: %w", roomCode, err)
	}
	return domain.NewChatMessage(id.String(), roomCode, senderID, senderName, text, sentAt), nil
}

// ListRecentMessages returns the most recent limit messages, oldest first.
func (r *Repository) ListRecentMessages(roomCode string, limit int) ([]domain.ChatMessage, error) {
	query := `
		SELECT m.id, m.sender_id, u.name, m.content, m.created_at
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.room_code = ?
		ORDER BY m.id DESC
		LIMIT ?`
	rows, err := r.db.Query(query, roomCode, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages for room %s: %w", roomCode, err)
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var id, senderID, senderName, content string
		var createdAt time.Time
		if err := rows.Scan(&id, &senderID, &senderName, &content, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, domain.NewChatMessage(id, roomCode, senderID, senderName, content, createdAt))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over messages for room %s: %w", roomCode, err)
	}

	// Query is newest-first to apply the limit; flip to oldest-first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
