package app

import (
	"context"

	"github.com/avolkov/tasktick/internal/config"
	v1 "github.com/avolkov/tasktick/internal/delivery/http/v1"
	"github.com/avolkov/tasktick/internal/notify"
	"github.com/avolkov/tasktick/internal/repository"
	"github.com/avolkov/tasktick/internal/storage"
	"github.com/avolkov/tasktick/internal/timer"
)

var (
	globalRepository *repository.Repository
	globalEngine     *timer.Engine
	globalEvents     *v1.EventHub

	coreCancel context.CancelFunc
)

// MustStartCore wires the repository, timer engine and sync listener and
// starts the reconciliation loop. The initial load of a corrupt store entry
// falls back to an empty collection inside the adapter, so only store I/O
// failures abort startup.
func MustStartCore() {
	cfg := config.Global()

	adapter := storage.NewAdapter(globalLogger, globalStore, cfg.Store.Key)
	globalRepository = repository.New(globalLogger, adapter)

	globalEvents = v1.NewEventHub()
	globalRepository.SetOnChange(globalEvents.Broadcast)

	var notifier notify.Notifier = notify.NewLogNotifier(globalLogger)
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(globalLogger, cfg.Notify.WebhookURL, cfg.Notify.Timeout)
	}

	globalEngine = timer.NewEngine(globalLogger, globalRepository, notifier, cfg.Timer.TickPeriod)
	globalEngine.SetOnTick(globalEvents.Broadcast)

	ctx, cancel := context.WithCancel(context.Background())
	coreCancel = cancel

	err := globalRepository.Reload(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to load tasks")
		panic(err)
	}

	globalEngine.Start(ctx)
	go watchStore(ctx, cfg.Store.Key)

	globalLogger.Info().Msg("started core")
}

// watchStore is the cross-process sync listener: a change event written by
// another process triggers a full reload. Own saves are skipped by origin.
func watchStore(ctx context.Context, key string) {
	events, err := globalStore.Watch(ctx, key)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to watch store, cross-process sync disabled")
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event.Origin == globalInstanceID {
				continue
			}

			globalLogger.Debug().
				Str("origin", event.Origin).
				Msg("store changed externally, reloading")
			err = globalRepository.Reload(ctx)
			if err != nil {
				globalLogger.Error().
					Err(err).
					Msg("failed to reload tasks")
			}
		}
	}
}

func StopCore() {
	globalEngine.Stop()
	coreCancel()
	globalLogger.Info().Msg("stopped core")
}
