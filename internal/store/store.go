package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Conversation is a persisted two-party thread. UserA is always the
// lexicographically smaller participant id so that the pair key is
// symmetric: (A,B) and (B,A) resolve to the same row.
type Conversation struct {
	ID        int64
	PairKey   string
	UserA     string
	UserB     string
	CreatedAt time.Time
}

// Message represents a persisted chat message. Immutable once created.
type Message struct {
	ID             int64
	ConversationID int64
	SenderID       string
	ReceiverID     string
	Body           string
	CreatedAt      time.Time
}

// PairKey builds the normalized conversation key for an unordered pair
// of user ids: "dm:{minId}:{maxId}".
func PairKey(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return "dm:" + userA + ":" + userB
}

// ConversationStore handles conversation persistence.
type ConversationStore interface {
	// FindOrCreateConversation returns the conversation for the unordered
	// pair, creating it if it does not exist yet. Safe against concurrent
	// first contact from both sides: a second caller observes the first
	// caller's row.
	FindOrCreateConversation(ctx context.Context, userA, userB string) (*Conversation, error)

	// GetConversation returns the conversation for the unordered pair or
	// ErrNotFound.
	GetConversation(ctx context.Context, userA, userB string) (*Conversation, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// AppendMessage persists a message and fills in its assigned ID.
	AppendMessage(ctx context.Context, msg *Message) error

	// ListMessages returns all messages of a conversation in the order
	// they were durably appended.
	ListMessages(ctx context.Context, conversationID int64) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	ConversationStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
