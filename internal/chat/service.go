package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/ubet123/OrgFlow-sub000/internal/core"
	"github.com/ubet123/OrgFlow-sub000/internal/store"
)

// MaxBodyLength is the maximum message body length in characters.
const MaxBodyLength = 1000

var (
	// ErrEmptyBody is returned when the message body is empty or whitespace-only.
	ErrEmptyBody = errors.New("message body is empty")
	// ErrBodyTooLong is returned when the message body exceeds MaxBodyLength characters.
	ErrBodyTooLong = errors.New("message body too long")
	// ErrMissingParticipant is returned when a sender or receiver id is empty.
	ErrMissingParticipant = errors.New("missing participant")
	// ErrSelfMessage is returned when sender and receiver are the same user.
	ErrSelfMessage = errors.New("sender and receiver must differ")
)

// IsValidationError reports whether err is a synchronous validation
// failure, i.e. the operation was rejected before touching storage.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyBody) ||
		errors.Is(err, ErrBodyTooLong) ||
		errors.Is(err, ErrMissingParticipant) ||
		errors.Is(err, ErrSelfMessage)
}

// Service implements the send/fetch API: durable persistence first, then
// best-effort delivery to the receiver's live connections.
type Service struct {
	store    store.Store
	registry *core.Registry
	log      *zerolog.Logger
}

// NewService creates the messaging service.
func NewService(st store.Store, registry *core.Registry, logger *zerolog.Logger) *Service {
	return &Service{
		store:    st,
		registry: registry,
		log:      logger,
	}
}

// Send validates the input, persists the message and returns it. A send
// succeeds the moment persistence succeeds; delivery to the receiver's
// live connections happens asynchronously afterwards and its outcome is
// never reported to the sender. An offline receiver gets nothing pushed;
// the message stays retrievable via Fetch.
func (s *Service) Send(ctx context.Context, senderID, receiverID, body string) (*store.Message, error) {
	if senderID == "" || receiverID == "" {
		return nil, ErrMissingParticipant
	}
	if senderID == receiverID {
		return nil, ErrSelfMessage
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyBody
	}
	if utf8.RuneCountInString(body) > MaxBodyLength {
		return nil, ErrBodyTooLong
	}

	conv, err := s.store.FindOrCreateConversation(ctx, senderID, receiverID)
	if err != nil {
		return nil, fmt.Errorf("find or create conversation: %w", err)
	}

	msg := &store.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Body:           body,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}

	go s.push(msg)

	return msg, nil
}

// Fetch returns the full ordered history between the caller and the
// counterpart. No conversation yet is not an error: the history is empty.
func (s *Service) Fetch(ctx context.Context, userID, counterpartID string) ([]*store.Message, error) {
	if userID == "" || counterpartID == "" {
		return nil, ErrMissingParticipant
	}

	conv, err := s.store.GetConversation(ctx, userID, counterpartID)
	if errors.Is(err, store.ErrNotFound) {
		return []*store.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	messages, err := s.store.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if messages == nil {
		messages = []*store.Message{}
	}
	return messages, nil
}

// push looks the receiver up in the registry at delivery time and sends
// the event to each live connection. Failures are logged and isolated:
// the message is already committed and the sender has already been told
// the send succeeded.
func (s *Service) push(msg *store.Message) {
	clients := s.registry.Clients(msg.ReceiverID)
	if len(clients) == 0 {
		s.log.Debug().Str("receiver_id", msg.ReceiverID).Int64("message_id", msg.ID).Msg("receiver offline, skipping push")
		return
	}

	event := core.Event{Kind: core.EventNewMessage, Message: msg}
	for _, client := range clients {
		if !client.Send(event) {
			s.log.Warn().
				Str("conn_id", client.ID).
				Str("receiver_id", msg.ReceiverID).
				Int64("message_id", msg.ID).
				Msg("dropped message delivery to slow connection")
		}
	}
}
