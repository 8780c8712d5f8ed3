package storage

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// RedisStore persists the key in Redis and announces writes on a pub/sub
// channel derived from the key, so every process sharing the store sees
// other writers' saves.
type RedisStore struct {
	logger zerolog.Logger
	client *redis.Client
	origin string
}

func NewRedisStore(logger zerolog.Logger, client *redis.Client, origin string) *RedisStore {
	return &RedisStore{
		logger: logger,
		client: client,
		origin: origin,
	}
}

func changeChannel(key string) string {
	return key + ":changed"
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	err := s.client.Set(ctx, key, value, 0).Err()
	if err != nil {
		return err
	}

	err = s.client.Publish(ctx, changeChannel(key), s.origin).Err()
	if err != nil {
		// The value is saved; only the announcement failed. Other
		// processes stay stale until the next successful save.
		s.logger.Warn().
			Err(err).
			Str("key", key).
			Msg("failed to publish change event")
	}
	return nil
}

func (s *RedisStore) Watch(ctx context.Context, key string) (<-chan ChangeEvent, error) {
	pubsub := s.client.Subscribe(ctx, changeChannel(key))

	// Force the subscription to be established before returning.
	_, err := pubsub.Receive(ctx)
	if err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	events := make(chan ChangeEvent)
	go func() {
		defer close(events)
		defer func() { _ = pubsub.Close() }()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				select {
				case events <- ChangeEvent{Origin: msg.Payload}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}

func (s *RedisStore) Close() {
	err := s.client.Close()
	if err != nil {
		s.logger.Warn().
			Err(err).
			Msg("failed to close redis client")
	}
}
