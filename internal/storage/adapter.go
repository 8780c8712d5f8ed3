package storage

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/avolkov/tasktick/internal/models"
)

// Adapter serializes the whole task collection to a single entry of the
// external store and reads it back, tolerating malformed stored data.
type Adapter struct {
	logger zerolog.Logger
	store  Store
	key    string
}

func NewAdapter(logger zerolog.Logger, store Store, key string) *Adapter {
	return &Adapter{
		logger: logger,
		store:  store,
		key:    key,
	}
}

func (a *Adapter) Save(ctx context.Context, tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}

	data, err := json.Marshal(tasks)
	if err != nil {
		// Unreachable for well-formed in-memory tasks.
		a.logger.Error().
			Err(err).
			Msg("failed to marshal tasks")
		return err
	}

	err = a.store.Set(ctx, a.key, string(data))
	if err != nil {
		a.logger.Error().
			Err(err).
			Str("key", a.key).
			Msg("failed to write tasks to store")
		return err
	}
	return nil
}

// Load reads the full collection. A missing key yields an empty collection;
// unparsable or non-array data is logged and also yields an empty one.
// Parseable records are coerced per field so that one bad field never
// discards the rest of the record.
func (a *Adapter) Load(ctx context.Context) ([]models.Task, error) {
	raw, ok, err := a.store.Get(ctx, a.key)
	if err != nil {
		a.logger.Error().
			Err(err).
			Str("key", a.key).
			Msg("failed to read tasks from store")
		return nil, err
	}
	if !ok {
		return []models.Task{}, nil
	}

	return a.decode(raw), nil
}

func (a *Adapter) decode(raw string) []models.Task {
	var elements []json.RawMessage
	err := json.Unmarshal([]byte(raw), &elements)
	if err != nil {
		a.logger.Error().
			Err(err).
			Str("key", a.key).
			Msg("corrupt persisted state, falling back to empty collection")
		return []models.Task{}
	}

	tasks := make([]models.Task, 0, len(elements))
	for _, element := range elements {
		tasks = append(tasks, coerceRecord(element))
	}
	return tasks
}

// coerceRecord normalizes a single stored record. Every field is coerced
// independently: a record with a bad deadline but a good text keeps its text.
func coerceRecord(raw json.RawMessage) models.Task {
	var fields map[string]any
	// Non-object elements leave fields nil and coerce to an empty task.
	_ = json.Unmarshal(raw, &fields)

	task := models.Task{Priority: models.PriorityMedium}

	if id, ok := fields["id"].(string); ok && id != "" {
		task.ID = id
	} else {
		task.ID = uuid.NewString()
	}

	if text, ok := fields["text"].(string); ok {
		task.Text = text
	}

	switch completed := fields["completed"].(type) {
	case bool:
		task.Completed = completed
	case float64:
		task.Completed = completed != 0
	case string:
		task.Completed = completed != ""
	}

	if priority, ok := fields["priority"].(string); ok && models.ValidPriority(priority) {
		task.Priority = priority
	}

	if note, ok := fields["note"].(string); ok {
		task.Note = note
	}

	// Only a numeric deadline is accepted; everything else means idle.
	if deadline, ok := fields["deadline"].(float64); ok {
		ms := int64(deadline)
		task.Deadline = &ms
	}

	return task
}
