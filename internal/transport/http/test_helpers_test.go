package http

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ubet123/OrgFlow-sub000/internal/auth"
	"github.com/ubet123/OrgFlow-sub000/internal/chat"
	"github.com/ubet123/OrgFlow-sub000/internal/config"
	"github.com/ubet123/OrgFlow-sub000/internal/core"
	"github.com/ubet123/OrgFlow-sub000/internal/store"
	"github.com/ubet123/OrgFlow-sub000/internal/store/sqlite"
)

func testServerConfig() config.Config {
	return config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}
}

func startTestServerWith(t *testing.T, st store.Store, cfg config.Config) (*httptest.Server, *auth.JWTConfig) {
	t.Helper()
	logger := zerolog.Nop()

	if st == nil {
		sqliteStore, err := sqlite.New(":memory:")
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		t.Cleanup(func() { _ = sqliteStore.Close() })
		st = sqliteStore
	}

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "orgflow",
		Audience: "orgflow-chat",
		TTL:      time.Hour,
	}

	registry := core.NewRegistry(&logger)
	service := chat.NewService(st, registry, &logger)

	server := NewServer(registry, service, jwtConfig, cfg, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, jwtConfig
}

func startTestServer(t *testing.T) (*httptest.Server, *auth.JWTConfig) {
	t.Helper()
	return startTestServerWith(t, nil, testServerConfig())
}

func tokenFor(t *testing.T, jwtConfig *auth.JWTConfig, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(jwtConfig, userID, "user "+userID, "employee")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// appendFailStore wraps a working store with an append path that always
// fails, for driving the persistence-failure branch.
type appendFailStore struct {
	store.Store
}

func (s *appendFailStore) AppendMessage(context.Context, *store.Message) error {
	return errors.New("database is locked")
}
