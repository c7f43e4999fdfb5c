package cache

import (
	"context"
	"testing"
	"time"
)

func newTestMemory() (*Memory, *time.Time) {
	m := NewMemory(0)
	clock := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }
	return m, &clock
}

func TestMemoryGetSetExpire(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestMemory()
	defer m.Close()

	if err := m.Set(ctx, "board:AAPL", []byte("v1"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := m.Get(ctx, "board:AAPL")
	if !ok || string(got) != "v1" {
		t.Fatalf("Get = %q, %v", got, ok)
	}

	*clock = clock.Add(time.Minute)
	if _, ok := m.Get(ctx, "board:AAPL"); ok {
		t.Error("expected entry to expire at its TTL")
	}
	if m.Len() != 0 {
		t.Errorf("expired entry should be dropped on read, len=%d", m.Len())
	}
}

func TestMemorySetCopiesValue(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMemory()
	defer m.Close()

	buf := []byte("abc")
	_ = m.Set(ctx, "k", buf, time.Minute)
	buf[0] = 'x'

	got, _ := m.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("cached value changed with caller buffer: %q", got)
	}
}

func TestMemoryCleanupAndDelete(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestMemory()
	defer m.Close()

	_ = m.Set(ctx, "short", []byte("1"), time.Second)
	_ = m.Set(ctx, "long", []byte("2"), time.Hour)
	*clock = clock.Add(2 * time.Second)

	if n := m.Cleanup(); n != 1 {
		t.Errorf("Cleanup removed %d, want 1", n)
	}
	if _, ok := m.Get(ctx, "long"); !ok {
		t.Error("long-lived entry should survive cleanup")
	}

	_ = m.Delete(ctx, "long")
	if m.Len() != 0 {
		t.Errorf("len after delete = %d", m.Len())
	}
}

func TestMemoryCloseIsIdempotent(t *testing.T) {
	m := NewMemory(time.Millisecond)
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestMemoryGetKeepsEntryReplacedDuringExpiry(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestMemory()
	defer m.Close()

	if err := m.Set(ctx, "board:AAPL", []byte("stale"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	*clock = clock.Add(2 * time.Minute)

	// Replace the entry right after Get has seen the expired copy.
	replaced := false
	m.now = func() time.Time {
		if !replaced {
			replaced = true
			if err := m.Set(ctx, "board:AAPL", []byte("fresh"), time.Hour); err != nil {
				t.Errorf("Set: %v", err)
			}
		}
		return *clock
	}

	got, ok := m.Get(ctx, "board:AAPL")
	if !ok || string(got) != "fresh" {
		t.Fatalf("Get = %q, %v; want fresh entry", got, ok)
	}
	if got, ok := m.Get(ctx, "board:AAPL"); !ok || string(got) != "fresh" {
		t.Errorf("fresh entry was deleted: %q, %v", got, ok)
	}
}
