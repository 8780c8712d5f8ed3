package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps values in a process-local map. Watch events reach
// subscribers of the same process only, which makes the cross-process
// reload path inert under this driver.
type MemoryStore struct {
	mu     sync.Mutex
	origin string
	values map[string]string
	subs   map[string][]chan ChangeEvent
}

func NewMemoryStore(origin string) *MemoryStore {
	return &MemoryStore{
		origin: origin,
		values: make(map[string]string),
		subs:   make(map[string][]chan ChangeEvent),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value

	event := ChangeEvent{Origin: s.origin}
	for _, sub := range s.subs[key] {
		select {
		case sub <- event:
		default:
			// Slow subscriber, drop the event. A later save will
			// announce again and the reload is a full one anyway.
		}
	}
	return nil
}

func (s *MemoryStore) Watch(ctx context.Context, key string) (<-chan ChangeEvent, error) {
	sub := make(chan ChangeEvent, 8)

	s.mu.Lock()
	s.subs[key] = append(s.subs[key], sub)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		subs := s.subs[key]
		for i, candidate := range subs {
			if candidate == sub {
				s.subs[key] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		close(sub)
	}()

	return sub, nil
}

func (s *MemoryStore) Close() {}
