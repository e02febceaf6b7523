package core

import "github.com/google/uuid"

// Client is one live connection as seen by the core layer. A user may
// hold several clients at once (multiple tabs); a client with an empty
// UserID is an anonymous observer that receives presence broadcasts but
// is never part of the online set.
type Client struct {
	ID     string
	UserID string
	Events chan Event
}

// NewClient constructs a connection handle with an initialized event channel.
func NewClient(userID string) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		Events: make(chan Event, 16),
	}
}

// Send delivers an event without blocking. Returns false if the client's
// buffer is full and the event was dropped.
func (c *Client) Send(event Event) bool {
	select {
	case c.Events <- event:
		return true
	default:
		return false
	}
}
