package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type recordingHandler struct {
	mu   sync.Mutex
	seen []string
	fail bool
}

func (h *recordingHandler) Handle(_ context.Context, msg redis.XMessage) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, msg.Values["type"].(string))
	if h.fail {
		return errors.New("handler failed")
	}
	return nil
}

func newTestConsumer(t *testing.T, handler MessageHandler) (*Consumer, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := NewConsumer(client, "test:stream", "test-group", "c1", time.Minute, zerolog.Nop(), handler)
	c.block = 10 * time.Millisecond
	return c, client
}

func TestConsumerAcksHandledMessages(t *testing.T) {
	handler := &recordingHandler{}
	c, client := newTestConsumer(t, handler)
	ctx := context.Background()

	if err := c.EnsureGroup(ctx); err != nil {
		t.Fatalf("EnsureGroup() error = %v", err)
	}
	if err := c.EnsureGroup(ctx); err != nil {
		t.Fatalf("second EnsureGroup() error = %v", err)
	}

	if err := client.XAdd(ctx, &redis.XAddArgs{Stream: "test:stream", Values: map[string]any{"type": "reconcile"}}).Err(); err != nil {
		t.Fatal(err)
	}

	if err := c.read(ctx); err != nil {
		t.Fatalf("read() error = %v", err)
	}
	if len(handler.seen) != 1 || handler.seen[0] != "reconcile" {
		t.Fatalf("handler saw %v", handler.seen)
	}

	pending, err := client.XPending(ctx, "test:stream", "test-group").Result()
	if err != nil {
		t.Fatal(err)
	}
	if pending.Count != 0 {
		t.Errorf("pending = %d, want 0", pending.Count)
	}
}

func TestConsumerLeavesFailedMessagesPending(t *testing.T) {
	handler := &recordingHandler{fail: true}
	c, client := newTestConsumer(t, handler)
	ctx := context.Background()

	if err := c.EnsureGroup(ctx); err != nil {
		t.Fatal(err)
	}
	if err := client.XAdd(ctx, &redis.XAddArgs{Stream: "test:stream", Values: map[string]any{"type": "reconcile"}}).Err(); err != nil {
		t.Fatal(err)
	}
	if err := c.read(ctx); err != nil {
		t.Fatalf("read() error = %v", err)
	}

	pending, err := client.XPending(ctx, "test:stream", "test-group").Result()
	if err != nil {
		t.Fatal(err)
	}
	if pending.Count != 1 {
		t.Errorf("pending = %d, want 1", pending.Count)
	}
}

func TestConsumerStartStopsOnCancel(t *testing.T) {
	c, _ := newTestConsumer(t, &recordingHandler{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Start() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}
}
