package storage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const pgChangeChannel = "kv_state_changed"

// PostgresStore persists the key as a single upserted row and announces
// writes via LISTEN/NOTIFY, so every process sharing the database sees
// other writers' saves.
type PostgresStore struct {
	logger zerolog.Logger
	pool   *pgxpool.Pool
	origin string
}

func NewPostgresStore(logger zerolog.Logger, pool *pgxpool.Pool, origin string) *PostgresStore {
	return &PostgresStore{
		logger: logger,
		pool:   pool,
		origin: origin,
	}
}

// Init creates the backing table if it doesn't exist yet.
func (s *PostgresStore) Init(ctx context.Context) error {
	const createTableQuery = `
CREATE TABLE IF NOT EXISTS kv_state (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)
`
	_, err := s.pool.Exec(ctx, createTableQuery)
	return err
}

type pgChangePayload struct {
	Key    string `json:"key"`
	Origin string `json:"origin"`
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	const selectValueQuery = `
SELECT value FROM kv_state WHERE key = $1
`
	var value string
	err := s.pool.QueryRow(ctx, selectValueQuery, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	const upsertValueQuery = `
INSERT INTO kv_state (key, value)
VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
`
	_, err := s.pool.Exec(ctx, upsertValueQuery, key, value)
	if err != nil {
		return err
	}

	payload, _ := json.Marshal(pgChangePayload{Key: key, Origin: s.origin})
	_, err = s.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, pgChangeChannel, string(payload))
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("key", key).
			Msg("failed to notify change event")
	}
	return nil
}

func (s *PostgresStore) Watch(ctx context.Context, key string) (<-chan ChangeEvent, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	_, err = conn.Exec(ctx, "LISTEN "+pgChangeChannel)
	if err != nil {
		conn.Release()
		return nil, err
	}

	events := make(chan ChangeEvent)
	go func() {
		defer close(events)
		defer conn.Release()

		for {
			notification, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Error().
						Err(err).
						Msg("failed to wait for notification")
				}
				return
			}

			var payload pgChangePayload
			err = json.Unmarshal([]byte(notification.Payload), &payload)
			if err != nil || payload.Key != key {
				continue
			}

			select {
			case events <- ChangeEvent{Origin: payload.Origin}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
