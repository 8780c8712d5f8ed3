package storage

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreGetSet(t *testing.T) {
	store := NewMemoryStore("origin-1")
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("Get() on missing key reported ok")
	}

	if err = store.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value, ok, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok || value != "v" {
		t.Errorf("Get() = (%q, %v), want (%q, true)", value, ok, "v")
	}
}

func TestMemoryStoreWatch(t *testing.T) {
	store := NewMemoryStore("origin-1")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := store.Watch(ctx, "k")
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if err = store.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	select {
	case event := <-events:
		if event.Origin != "origin-1" {
			t.Errorf("event origin = %q, want %q", event.Origin, "origin-1")
		}
	case <-time.After(time.Second):
		t.Fatal("no change event delivered")
	}
}

func TestMemoryStoreWatchIgnoresOtherKeys(t *testing.T) {
	store := NewMemoryStore("origin-1")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := store.Watch(ctx, "k")
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if err = store.Set(ctx, "other", "v"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	select {
	case event := <-events:
		t.Errorf("unexpected event %+v for unrelated key", event)
	case <-time.After(50 * time.Millisecond):
	}
}
