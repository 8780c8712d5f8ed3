package storage

import "context"

// ChangeEvent is delivered whenever the persisted key is written, including
// writes made by other processes sharing the same store.
type ChangeEvent struct {
	// Origin is the instance ID of the writer. Consumers compare it
	// against their own ID to skip events caused by their own saves.
	Origin string
}

// Store is a string-keyed external store shared across processes. The last
// writer wins; no locking is attempted.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes the value under the key and announces the change
	// to all watchers, carrying this store's instance ID as origin.
	Set(ctx context.Context, key, value string) error

	// Watch returns a channel of change events for the key. The channel
	// is closed when ctx is cancelled.
	Watch(ctx context.Context, key string) (<-chan ChangeEvent, error)

	Close()
}
