package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/ubet123/OrgFlow-sub000/internal/auth"
	"github.com/ubet123/OrgFlow-sub000/internal/core"
)

// WSHandler upgrades HTTP connections and bridges them to the presence
// registry. The caller's identity arrives as connection metadata: a
// validated token, or a bare user id. A connection with neither stays
// registered as an anonymous observer: it receives presence broadcasts
// but never enters the online set and never receives deliveries.
type WSHandler struct {
	registry  *core.Registry
	jwtConfig *auth.JWTConfig
	log       *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(registry *core.Registry, jwtConfig *auth.JWTConfig, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{registry: registry, jwtConfig: jwtConfig, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	userID, err := h.identify(r)
	if err != nil {
		h.log.Debug().Err(err).Msg("ws token rejected")
		stdhttp.Error(w, "invalid token", stdhttp.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	client := core.NewClient(userID)
	h.registry.Register(client)
	// The defer fires exactly once per connection, whatever loop exits
	// first. A second Unregister would be a harmless no-op anyway.
	defer h.registry.Unregister(client)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("conn_id", client.ID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

// identify resolves the connection's user id from its metadata. A token
// must validate; a bare user id is trusted as handed over by the
// identity provider. Absent both, the id is empty.
func (h *WSHandler) identify(r *stdhttp.Request) (string, error) {
	query := r.URL.Query()

	if token := query.Get("token"); token != "" {
		claims, err := auth.ValidateToken(h.jwtConfig, token)
		if err != nil {
			return "", err
		}
		return claims.UserID, nil
	}

	return query.Get("user"), nil
}

// readLoop drains the connection. Clients issue no websocket commands
// (send/fetch go over REST); reading only detects the peer going away.
func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			return err
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("conn_id", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
