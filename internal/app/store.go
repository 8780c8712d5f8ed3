package app

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avolkov/tasktick/internal/config"
	"github.com/avolkov/tasktick/internal/storage"
)

var (
	globalStore storage.Store

	// globalInstanceID identifies this process's writes in store change
	// events, so the sync listener can skip its own saves.
	globalInstanceID string
)

func MustOpenStore() {
	globalInstanceID = uuid.NewString()
	cfg := config.Global()

	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		globalStore = storage.NewMemoryStore(globalInstanceID)
	case config.StoreDriverRedis:
		globalStore = mustOpenRedisStore(cfg)
	case config.StoreDriverPostgres:
		globalStore = mustOpenPostgresStore(cfg)
	default:
		globalLogger.Error().
			Str("driver", cfg.Store.Driver).
			Msg("unknown store driver")
		panic(fmt.Errorf("unknown store driver: %s", cfg.Store.Driver))
	}

	globalLogger.Info().
		Str("driver", cfg.Store.Driver).
		Str("key", cfg.Store.Key).
		Msg("opened store")
}

func mustOpenRedisStore(cfg *config.Config) storage.Store {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	err := client.Ping(context.Background()).Err()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("addr", cfg.Redis.Addr).
			Msg("failed to ping redis")
		panic(err)
	}
	globalLogger.Info().
		Str("addr", cfg.Redis.Addr).
		Msg("connected to redis")

	return storage.NewRedisStore(globalLogger, client, globalInstanceID)
}

func mustOpenPostgresStore(cfg *config.Config) storage.Store {
	pgCfg := cfg.Postgres
	connURL := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pgCfg.Username, pgCfg.Password, pgCfg.Host,
		pgCfg.Port, pgCfg.Database, pgCfg.SSLMode)

	poolCfg, err := pgxpool.ParseConfig(connURL)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to parse postgres config")
		panic(err)
	}
	poolCfg.ConnConfig.ConnectTimeout = pgCfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to connect to postgres")
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pgCfg.PingTimeout)
	defer cancel()

	err = pool.Ping(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to ping postgres")
		panic(err)
	}
	globalLogger.Info().
		Str("host", pgCfg.Host).
		Int("port", pgCfg.Port).
		Msg("connected to postgres")

	store := storage.NewPostgresStore(globalLogger, pool, globalInstanceID)
	err = store.Init(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to init postgres store")
		panic(err)
	}
	return store
}

func CloseStore() {
	globalStore.Close()
	globalLogger.Info().Msg("closed store")
}
