package repository

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/avolkov/tasktick/internal/models"
	"github.com/avolkov/tasktick/internal/storage"
)

// ErrEmptyText rejects adding a task whose trimmed text is blank. Unknown
// task IDs are deliberately not an error anywhere: every operation on a
// missing task is a silent no-op.
var ErrEmptyText = errors.New("task text is empty")

// Repository owns the canonical in-memory task collection. Every mutation
// writes the whole collection through to the store before returning; there
// is no batching except ExpireDue, which coalesces a tick's expiries into
// a single save. All access is serialized behind one mutex, so operations
// run to completion without interleaving.
type Repository struct {
	mu       sync.Mutex
	logger   zerolog.Logger
	adapter  *storage.Adapter
	tasks    []models.Task
	onChange func()
}

func New(logger zerolog.Logger, adapter *storage.Adapter) *Repository {
	return &Repository{
		logger:  logger,
		adapter: adapter,
		tasks:   []models.Task{},
	}
}

// SetOnChange registers a hook fired after every completed mutation and
// after Reload. The hook runs outside the repository lock.
func (r *Repository) SetOnChange(fn func()) {
	r.onChange = fn
}

func (r *Repository) notifyChanged() {
	if r.onChange != nil {
		r.onChange()
	}
}

// Add creates a task with a fresh unique ID and appends it. It returns
// ErrEmptyText if the trimmed text is empty, leaving the collection
// untouched.
func (r *Repository) Add(ctx context.Context, text, priority string) (models.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Task{}, ErrEmptyText
	}
	if !models.ValidPriority(priority) {
		priority = models.PriorityMedium
	}

	task := models.Task{
		ID:       uuid.NewString(),
		Text:     text,
		Priority: priority,
	}

	r.mu.Lock()
	r.tasks = append(r.tasks, task)
	r.persistLocked(ctx)
	r.mu.Unlock()

	r.logger.Info().
		Str("task_id", task.ID).
		Msg("added task")
	r.notifyChanged()
	return task, nil
}

func (r *Repository) Find(id string) (models.Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, task := range r.tasks {
		if task.ID == id {
			return task, true
		}
	}
	return models.Task{}, false
}

// Remove deletes the task if present and is a silent no-op otherwise.
func (r *Repository) Remove(ctx context.Context, id string) {
	r.mu.Lock()
	kept := make([]models.Task, 0, len(r.tasks))
	removed := false
	for _, task := range r.tasks {
		if task.ID == id {
			removed = true
			continue
		}
		kept = append(kept, task)
	}
	if !removed {
		r.mu.Unlock()
		return
	}
	r.tasks = kept
	r.persistLocked(ctx)
	r.mu.Unlock()

	r.logger.Info().
		Str("task_id", id).
		Msg("removed task")
	r.notifyChanged()
}

// ToggleCompleted flips the completed flag. It reports whether the task
// was found; an unknown ID changes nothing.
func (r *Repository) ToggleCompleted(ctx context.Context, id string) bool {
	r.mu.Lock()
	index := r.indexLocked(id)
	if index < 0 {
		r.mu.Unlock()
		return false
	}
	r.tasks[index].Completed = !r.tasks[index].Completed
	r.persistLocked(ctx)
	r.mu.Unlock()

	r.notifyChanged()
	return true
}

func (r *Repository) SetNote(ctx context.Context, id, note string) bool {
	r.mu.Lock()
	index := r.indexLocked(id)
	if index < 0 {
		r.mu.Unlock()
		return false
	}
	r.tasks[index].Note = strings.TrimSpace(note)
	r.persistLocked(ctx)
	r.mu.Unlock()

	r.notifyChanged()
	return true
}

// SetDeadline arms (non-nil) or disarms (nil) the task's timer.
func (r *Repository) SetDeadline(ctx context.Context, id string, deadline *int64) bool {
	r.mu.Lock()
	index := r.indexLocked(id)
	if index < 0 {
		r.mu.Unlock()
		return false
	}
	r.tasks[index].Deadline = deadline
	r.persistLocked(ctx)
	r.mu.Unlock()

	r.notifyChanged()
	return true
}

// ExpireDue clears the deadline of every task whose deadline is at or
// before now and returns the expired tasks in collection order. The
// collection is persisted at most once no matter how many tasks expired.
func (r *Repository) ExpireDue(ctx context.Context, now int64) []models.Task {
	r.mu.Lock()
	var expired []models.Task
	for i := range r.tasks {
		deadline := r.tasks[i].Deadline
		if deadline == nil || *deadline > now {
			continue
		}
		r.tasks[i].Deadline = nil
		expired = append(expired, r.tasks[i])
	}
	if len(expired) > 0 {
		r.persistLocked(ctx)
	}
	r.mu.Unlock()

	if len(expired) > 0 {
		r.notifyChanged()
	}
	return expired
}

// Reload discards the in-memory collection and rebuilds it from the store.
// A reload racing with an unsaved local mutation drops the local change;
// the last writer to the store wins.
func (r *Repository) Reload(ctx context.Context) error {
	tasks, err := r.adapter.Load(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.tasks = tasks
	r.mu.Unlock()

	r.logger.Debug().
		Int("count", len(tasks)).
		Msg("reloaded tasks from store")
	r.notifyChanged()
	return nil
}

// Snapshot returns a copy of the collection in insertion order.
func (r *Repository) Snapshot() []models.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	tasks := make([]models.Task, len(r.tasks))
	copy(tasks, r.tasks)
	return tasks
}

func (r *Repository) indexLocked(id string) int {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) persistLocked(ctx context.Context) {
	err := r.adapter.Save(ctx, r.tasks)
	if err != nil {
		// Write-through failed; the in-memory state stays authoritative
		// until the next successful save.
		r.logger.Error().
			Err(err).
			Msg("failed to persist tasks")
	}
}
