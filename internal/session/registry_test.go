package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
)

type fakeConn struct {
	mu     sync.Mutex
	userID string
	texts  []string
	binary [][]byte
	closed bool
}

func (c *fakeConn) SendText(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.texts = append(c.texts, text)
	return nil
}

func (c *fakeConn) SendBinary(_ context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.binary = append(c.binary, data)
	return nil
}

func (c *fakeConn) UserID() string { return c.userID }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegistryRegisterAndSend(t *testing.T) {
	r := NewRegistry(testLogger())
	conn := &fakeConn{userID: "u1"}
	r.Register("s1", conn)

	if got := r.ActiveCount(); got != 1 {
		t.Fatalf("ActiveCount() = %d, want 1", got)
	}
	if err := r.SendText(context.Background(), "s1", "hello"); err != nil {
		t.Fatalf("SendText() error = %v", err)
	}
	if err := r.SendBinary(context.Background(), "s1", []byte{1, 2}); err != nil {
		t.Fatalf("SendBinary() error = %v", err)
	}
	if len(conn.texts) != 1 || conn.texts[0] != "hello" {
		t.Fatalf("texts = %v, want [hello]", conn.texts)
	}
	if len(conn.binary) != 1 {
		t.Fatalf("binary sends = %d, want 1", len(conn.binary))
	}
}

func TestRegistrySendToMissingSessionDrops(t *testing.T) {
	r := NewRegistry(testLogger())
	if err := r.SendText(context.Background(), "nope", "x"); err != nil {
		t.Fatalf("SendText() to missing session should drop, got error %v", err)
	}
	if err := r.SendBinary(context.Background(), "nope", []byte{1}); err != nil {
		t.Fatalf("SendBinary() to missing session should drop, got error %v", err)
	}
}

func TestRegistryUnregisterCleansUserIndex(t *testing.T) {
	r := NewRegistry(testLogger())
	r.Register("s1", &fakeConn{userID: "u1"})
	r.Register("s2", &fakeConn{userID: "u1"})

	ids := r.SessionIDsByUserID("u1")
	sort.Strings(ids)
	if len(ids) != 2 || ids[0] != "s1" || ids[1] != "s2" {
		t.Fatalf("SessionIDsByUserID() = %v, want [s1 s2]", ids)
	}

	r.Unregister("s1")
	if ids := r.SessionIDsByUserID("u1"); len(ids) != 1 || ids[0] != "s2" {
		t.Fatalf("SessionIDsByUserID() = %v, want [s2]", ids)
	}

	r.Unregister("s2")
	if ids := r.SessionIDsByUserID("u1"); len(ids) != 0 {
		t.Fatalf("SessionIDsByUserID() = %v, want empty", ids)
	}

	// Unknown session unregister is a no-op.
	r.Unregister("s2")
}

func TestRegistryReplaceKeepsSingleEntry(t *testing.T) {
	r := NewRegistry(testLogger())
	old := &fakeConn{userID: "u1"}
	r.Register("s1", old)

	replacement := &fakeConn{userID: "u2"}
	r.Register("s1", replacement)

	if got := r.ActiveCount(); got != 1 {
		t.Fatalf("ActiveCount() = %d, want 1", got)
	}
	conn, ok := r.TryGet("s1")
	if !ok || conn != replacement {
		t.Fatalf("TryGet() = %v, want replacement connection", conn)
	}
	if ids := r.SessionIDsByUserID("u1"); len(ids) != 0 {
		t.Fatalf("stale user index for u1: %v", ids)
	}
	if ids := r.SessionIDsByUserID("u2"); len(ids) != 1 {
		t.Fatalf("SessionIDsByUserID(u2) = %v, want [s1]", ids)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry(testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i)
			r.Register(id, &fakeConn{userID: "u1"})
			_ = r.SendText(context.Background(), id, "hi")
			r.Unregister(id)
		}(i)
	}
	wg.Wait()

	if got := r.ActiveCount(); got != 0 {
		t.Fatalf("ActiveCount() = %d, want 0", got)
	}
	if ids := r.SessionIDsByUserID("u1"); len(ids) != 0 {
		t.Fatalf("user index not empty: %v", ids)
	}
}
