package core

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Registry tracks which user ids currently hold at least one live
// connection and broadcasts the full online set to every connection on
// each change. It is the single source of truth for "who is online now";
// callers must not cache the snapshot beyond one operation.
type Registry struct {
	log *zerolog.Logger

	mu    sync.Mutex
	conns map[*Client]struct{}
	users map[string]map[*Client]struct{}
}

// NewRegistry constructs an empty presence registry.
func NewRegistry(logger *zerolog.Logger) *Registry {
	return &Registry{
		log:   logger,
		conns: make(map[*Client]struct{}),
		users: make(map[string]map[*Client]struct{}),
	}
}

// Register adds a connection. Connections with an empty user id stay
// anonymous: they receive broadcasts but never enter the online set.
// A broadcast fires after every call, even when the online set is
// unchanged (a user's second tab); consumers tolerate redundant events.
func (r *Registry) Register(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[client] = struct{}{}
	if client.UserID != "" {
		handles, ok := r.users[client.UserID]
		if !ok {
			handles = make(map[*Client]struct{})
			r.users[client.UserID] = handles
		}
		handles[client] = struct{}{}
	}

	r.log.Debug().Str("conn_id", client.ID).Str("user_id", client.UserID).Msg("connection registered")
	r.broadcastLocked()
}

// Unregister removes a connection from wherever it is registered. If it
// was the user's last connection the user leaves the online set.
// Unregistering an unknown or already-removed handle is a silent no-op,
// but a broadcast still fires.
func (r *Registry) Unregister(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conns, client)
	if client.UserID != "" {
		if handles, ok := r.users[client.UserID]; ok {
			delete(handles, client)
			if len(handles) == 0 {
				delete(r.users, client.UserID)
			}
		}
	}

	r.log.Debug().Str("conn_id", client.ID).Str("user_id", client.UserID).Msg("connection unregistered")
	r.broadcastLocked()
}

// Snapshot returns the current online-id set, unordered.
func (r *Registry) Snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo.Keys(r.users)
}

// Clients returns the user's live connections. The slice is a fresh copy;
// it goes stale as soon as connections come or go.
func (r *Registry) Clients(userID string) []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo.Keys(r.users[userID])
}

// broadcastLocked pushes the full online snapshot to every connection,
// tracked and anonymous alike. Sends are non-blocking so a slow consumer
// can never stall registry mutations; it just misses an update.
func (r *Registry) broadcastLocked() {
	event := Event{Kind: EventOnlineUsers, Online: lo.Keys(r.users)}
	for client := range r.conns {
		if !client.Send(event) {
			r.log.Warn().Str("conn_id", client.ID).Msg("dropped presence event for slow connection")
		}
	}
}
