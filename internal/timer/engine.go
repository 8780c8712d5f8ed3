package timer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/avolkov/tasktick/internal/notify"
	"github.com/avolkov/tasktick/internal/repository"
)

var ErrInvalidDuration = errors.New("timer duration must be a positive number of minutes")

// Engine owns the per-task deadline lifecycle and the periodic
// reconciliation loop that expires due timers. At most one loop instance
// runs at a time; Start cancels a previous loop before scheduling a new one.
type Engine struct {
	logger   zerolog.Logger
	repo     *repository.Repository
	notifier notify.Notifier
	period   time.Duration
	now      func() time.Time
	onTick   func()

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewEngine(
	logger zerolog.Logger,
	repo *repository.Repository,
	notifier notify.Notifier,
	period time.Duration,
) *Engine {
	if period <= 0 {
		period = time.Second
	}
	return &Engine{
		logger:   logger,
		repo:     repo,
		notifier: notifier,
		period:   period,
		now:      time.Now,
	}
}

// SetOnTick registers a hook fired once per reconciliation tick, after
// expiries were processed, whether or not any occurred. The render path
// uses it to refresh derived display text against the wall clock.
func (e *Engine) SetOnTick(fn func()) {
	e.onTick = fn
}

// StartTimer arms the task's timer for the given number of minutes from
// now. A non-positive duration is rejected with ErrInvalidDuration and
// changes nothing. An unknown task ID is a silent no-op.
func (e *Engine) StartTimer(ctx context.Context, id string, minutes int) error {
	if minutes <= 0 {
		return ErrInvalidDuration
	}

	deadline := e.now().UnixMilli() + int64(minutes)*oneMinute
	if e.repo.SetDeadline(ctx, id, &deadline) {
		e.logger.Debug().
			Str("task_id", id).
			Int("minutes", minutes).
			Msg("started timer")
	}
	return nil
}

// StopTimer disarms the task's timer. An unknown task ID is a silent no-op.
func (e *Engine) StopTimer(ctx context.Context, id string) {
	if e.repo.SetDeadline(ctx, id, nil) {
		e.logger.Debug().
			Str("task_id", id).
			Msg("stopped timer")
	}
}

// Start launches the reconciliation loop. A previously started loop is
// stopped first, so there is never more than one active tick source.
func (e *Engine) Start(ctx context.Context) {
	e.Stop()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	e.mu.Lock()
	e.cancel = cancel
	e.done = done
	e.mu.Unlock()

	go func() {
		defer close(done)

		ticker := time.NewTicker(e.period)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				e.Tick(loopCtx)
			}
		}
	}()

	e.logger.Info().
		Dur("period", e.period).
		Msg("started reconciliation loop")
}

// Stop cancels the reconciliation loop and waits for it to finish.
func (e *Engine) Stop() {
	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.cancel, e.done = nil, nil
	e.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	e.logger.Info().Msg("stopped reconciliation loop")
}

// Tick runs a single reconciliation pass. The current instant is captured
// once and used for every comparison in the pass. All timers due at that
// instant are expired with a single persist, each expiry emits exactly one
// notification carrying the task's text, and the tick hook fires last.
func (e *Engine) Tick(ctx context.Context) {
	now := e.now().UnixMilli()

	expired := e.repo.ExpireDue(ctx, now)
	for _, task := range expired {
		e.logger.Info().
			Str("task_id", task.ID).
			Msg("timer expired")
		e.notifier.Notify(ctx, task.Text)
	}

	if e.onTick != nil {
		e.onTick()
	}
}
