package core

import "github.com/ubet123/OrgFlow-sub000/internal/store"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventOnlineUsers carries the full set of currently online user ids.
	// Emitted to every connection after each register/unregister, including
	// ones that did not change the set.
	EventOnlineUsers EventKind = iota
	// EventNewMessage delivers a just-persisted message to the receiver's
	// connections.
	EventNewMessage
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind    EventKind
	Online  []string
	Message *store.Message // non-nil for EventNewMessage
}
