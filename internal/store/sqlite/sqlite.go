package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/ubet123/OrgFlow-sub000/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	pair_key   TEXT NOT NULL UNIQUE,
	user_a     TEXT NOT NULL,
	user_b     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	conversation_id INTEGER NOT NULL REFERENCES conversations(id),
	sender_id       TEXT NOT NULL,
	receiver_id     TEXT NOT NULL,
	body            TEXT NOT NULL,
	created_at      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== ConversationStore implementation ====

// FindOrCreateConversation returns the conversation for the unordered pair,
// creating it if necessary. The unique index on pair_key makes the
// one-conversation-per-pair invariant structural: when both sides attempt
// first contact concurrently the ON CONFLICT clause lets the loser fall
// through to the select and observe the winner's row.
func (s *SQLiteStore) FindOrCreateConversation(ctx context.Context, userA, userB string) (*store.Conversation, error) {
	if userB < userA {
		userA, userB = userB, userA
	}
	pairKey := store.PairKey(userA, userB)

	query := `
		INSERT INTO conversations (pair_key, user_a, user_b)
		VALUES (?, ?, ?)
		ON CONFLICT(pair_key) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, pairKey, userA, userB); err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}

	return s.getByPairKey(ctx, pairKey)
}

// GetConversation returns the conversation for the unordered pair or
// store.ErrNotFound.
func (s *SQLiteStore) GetConversation(ctx context.Context, userA, userB string) (*store.Conversation, error) {
	return s.getByPairKey(ctx, store.PairKey(userA, userB))
}

func (s *SQLiteStore) getByPairKey(ctx context.Context, pairKey string) (*store.Conversation, error) {
	query := `
		SELECT id, pair_key, user_a, user_b, created_at
		FROM conversations
		WHERE pair_key = ?
	`
	var conv store.Conversation
	err := s.db.QueryRowContext(ctx, query, pairKey).Scan(
		&conv.ID,
		&conv.PairKey,
		&conv.UserA,
		&conv.UserB,
		&conv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query conversation: %w", err)
	}

	return &conv, nil
}

// ==== MessageStore implementation ====

// AppendMessage persists a message and fills in its assigned ID.
func (s *SQLiteStore) AppendMessage(ctx context.Context, msg *store.Message) error {
	query := `
		INSERT INTO messages (conversation_id, sender_id, receiver_id, body, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, msg.ConversationID, msg.SenderID, msg.ReceiverID, msg.Body, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	msg.ID = id
	return nil
}

// ListMessages returns all messages of a conversation in append order.
func (s *SQLiteStore) ListMessages(ctx context.Context, conversationID int64) ([]*store.Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, receiver_id, body, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []*store.Message
	for rows.Next() {
		var msg store.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.ReceiverID, &msg.Body, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &msg)
	}

	return messages, rows.Err()
}
