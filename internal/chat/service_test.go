package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/ubet123/OrgFlow-sub000/internal/core"
	"github.com/ubet123/OrgFlow-sub000/internal/store"
	"github.com/ubet123/OrgFlow-sub000/internal/store/sqlite"
)

func newTestService(t *testing.T) (*Service, *core.Registry) {
	t.Helper()
	logger := zerolog.Nop()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	registry := core.NewRegistry(&logger)
	return NewService(st, registry, &logger), registry
}

func waitForMessage(t *testing.T, ch chan core.Event) *store.Message {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Kind == core.EventNewMessage {
				return ev.Message
			}
			// Skip presence broadcasts.
		case <-deadline:
			t.Fatal("timed out waiting for message event")
			return nil
		}
	}
}

func TestSendValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		sender   string
		receiver string
		body     string
		want     error
	}{
		{"empty body", "1", "2", "", ErrEmptyBody},
		{"whitespace body", "1", "2", " \t\n ", ErrEmptyBody},
		{"overlong body", "1", "2", strings.Repeat("x", MaxBodyLength+1), ErrBodyTooLong},
		{"missing sender", "", "2", "hi", ErrMissingParticipant},
		{"missing receiver", "1", "", "hi", ErrMissingParticipant},
		{"self message", "1", "1", "hi", ErrSelfMessage},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := svc.Send(ctx, tc.sender, tc.receiver, tc.body)
			if err == nil {
				t.Fatalf("expected error, got message %+v", msg)
			}
			if !IsValidationError(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	// None of the rejected sends may have created state.
	history, err := svc.Fetch(ctx, "1", "2")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("validation failures must not create messages: %v", history)
	}
}

// flakyStore wraps a working store with a switchable append failure.
type flakyStore struct {
	store.Store
	appendErr error
}

func (f *flakyStore) AppendMessage(ctx context.Context, msg *store.Message) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	return f.Store.AppendMessage(ctx, msg)
}

func TestSendPersistenceFailure(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	errDiskFull := errors.New("disk full")
	flaky := &flakyStore{Store: st, appendErr: errDiskFull}
	svc := NewService(flaky, core.NewRegistry(&logger), &logger)

	msg, err := svc.Send(ctx, "1", "2", "hi")
	if err == nil {
		t.Fatalf("expected persistence error, got message %+v", msg)
	}
	// Store errors propagate unchanged, wrapped for context.
	if !errors.Is(err, errDiskFull) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if IsValidationError(err) {
		t.Fatalf("persistence failure must not look like a validation error: %v", err)
	}

	// The failed attempt left no partial writes behind.
	flaky.appendErr = nil
	history, err := svc.Fetch(ctx, "2", "1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("failed send must not create messages: %+v", history)
	}
}

func TestSendStoreUnreachable(t *testing.T) {
	logger := zerolog.Nop()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	_ = st.Close()

	svc := NewService(st, core.NewRegistry(&logger), &logger)
	if _, err := svc.Send(context.Background(), "1", "2", "hi"); err == nil {
		t.Fatal("expected error from closed store")
	}
}

func TestSendTrimsBody(t *testing.T) {
	svc, _ := newTestService(t)

	msg, err := svc.Send(context.Background(), "1", "2", "  hi there  ")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.Body != "hi there" {
		t.Fatalf("expected trimmed body, got %q", msg.Body)
	}
}

func TestSendToOfflineReceiverIsRetrievable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	msg, err := svc.Send(ctx, "1", "2", "hi")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.ID == 0 {
		t.Fatal("expected persisted message id")
	}

	// Receiver was offline; the message is still there, from both sides.
	for _, pair := range [][2]string{{"2", "1"}, {"1", "2"}} {
		history, err := svc.Fetch(ctx, pair[0], pair[1])
		if err != nil {
			t.Fatalf("fetch %v: %v", pair, err)
		}
		if len(history) != 1 || history[0].Body != "hi" {
			t.Fatalf("unexpected history for %v: %+v", pair, history)
		}
		if history[0].SenderID != "1" || history[0].ReceiverID != "2" {
			t.Fatalf("unexpected participants: %+v", history[0])
		}
	}
}

func TestFetchOrderMatchesAppendOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	bodies := []string{"one", "two", "three", "four"}
	for i, body := range bodies {
		sender, receiver := "1", "2"
		if i%2 == 1 {
			sender, receiver = receiver, sender
		}
		if _, err := svc.Send(ctx, sender, receiver, body); err != nil {
			t.Fatalf("send %q: %v", body, err)
		}
	}

	history, err := svc.Fetch(ctx, "2", "1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(history) != len(bodies) {
		t.Fatalf("expected %d messages, got %d", len(bodies), len(history))
	}
	for i, msg := range history {
		if msg.Body != bodies[i] {
			t.Fatalf("order mismatch at %d: %q", i, msg.Body)
		}
	}
}

func TestFetchWithoutConversationReturnsEmpty(t *testing.T) {
	svc, _ := newTestService(t)

	history, err := svc.Fetch(context.Background(), "1", "99")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if history == nil || len(history) != 0 {
		t.Fatalf("expected empty history, got %v", history)
	}
}

func TestSendDeliversToEveryReceiverConnection(t *testing.T) {
	svc, registry := newTestService(t)

	tabOne := core.NewClient("2")
	tabTwo := core.NewClient("2")
	registry.Register(tabOne)
	registry.Register(tabTwo)

	sent, err := svc.Send(context.Background(), "1", "2", "hi")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	for _, tab := range []*core.Client{tabOne, tabTwo} {
		got := waitForMessage(t, tab.Events)
		if got.ID != sent.ID || got.Body != "hi" || got.SenderID != "1" {
			t.Fatalf("unexpected delivery: %+v", got)
		}
	}
}

func TestSendDoesNotPushToSenderOrThirdParty(t *testing.T) {
	svc, registry := newTestService(t)

	sender := core.NewClient("1")
	bystander := core.NewClient("3")
	registry.Register(sender)
	registry.Register(bystander)

	if _, err := svc.Send(context.Background(), "1", "2", "hi"); err != nil {
		t.Fatalf("send: %v", err)
	}

	// Give the async push a moment, then check neither connection saw a
	// message event (presence broadcasts are fine).
	time.Sleep(100 * time.Millisecond)
	for _, c := range []*core.Client{sender, bystander} {
		for {
			select {
			case ev := <-c.Events:
				if ev.Kind == core.EventNewMessage {
					t.Fatalf("unexpected delivery to %s: %+v", c.UserID, ev.Message)
				}
				continue
			default:
			}
			break
		}
	}
}
