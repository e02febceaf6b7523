package proto

import "time"

// Outbound is the envelope for events sent to websocket clients.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

const (
	// OutboundTypeOnlineUsers carries the full array of online user ids.
	OutboundTypeOnlineUsers = "online_users"
	// OutboundTypeNewMessage carries a message addressed to this connection's user.
	OutboundTypeNewMessage = "new_message"
)

// OnlineUsersData is the payload for online_users events.
type OnlineUsersData struct {
	Users []string `json:"users"`
}

// MessageData is the wire form of a message, used both in new_message
// events and in REST responses.
type MessageData struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	ReceiverID     string    `json:"receiverId"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"createdAt"`
}
