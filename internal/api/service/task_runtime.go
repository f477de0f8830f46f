package service

import (
	"context"
	"time"

	"courier/internal/api/models"
	"courier/internal/latent"
	"courier/pkg"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TaskStore keeps the visible state of dispatched tasks
type TaskStore interface {
	Save(ctx context.Context, record models.TaskRecord) error
	Get(ctx context.Context, id string) (models.TaskRecord, error)
}

// CompletionSink is told about every task once it reaches a terminal state
type CompletionSink interface {
	TaskCompleted(record models.TaskRecord)
}

// TaskRuntime is shared by the services that dispatch latent actions.
// Work runs on Pool; Manager drives the actions and fires their callbacks.
type TaskRuntime struct {
	logger  zerolog.Logger
	Pool    *latent.Pool
	Manager *latent.Manager
	store   TaskStore
	sinks   []CompletionSink
}

func NewTaskRuntime(pool *latent.Pool, manager *latent.Manager, store TaskStore, logger zerolog.Logger) *TaskRuntime {
	return &TaskRuntime{
		logger:  logger,
		Pool:    pool,
		Manager: manager,
		store:   store,
	}
}

// AddSink must be called before any task is dispatched
func (slf *TaskRuntime) AddSink(sink CompletionSink) {
	slf.sinks = append(slf.sinks, sink)
}

func (slf *TaskRuntime) Store() TaskStore {
	return slf.store
}

// dispatch records a pending task and hands action to the manager
func (slf *TaskRuntime) dispatch(kind models.TaskKind, action latent.Action) (string, error) {
	record := models.TaskRecord{
		ID:        uuid.NewString(),
		Kind:      kind,
		Status:    models.TaskStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	slf.save(record)

	if err := slf.Manager.Add(record.ID, action); err != nil {
		return "", err
	}
	slf.logger.Debug().Str("taskId", record.ID).Str("kind", string(kind)).Msg("Task dispatched")
	return record.ID, nil
}

// complete stores the terminal record and notifies every sink
func (slf *TaskRuntime) complete(id string, kind models.TaskKind, update func(record *models.TaskRecord)) models.TaskRecord {
	record := models.TaskRecord{ID: id, Kind: kind}
	if slf.store != nil {
		if existing, err := slf.store.Get(context.Background(), id); err == nil {
			record = existing
		}
	}
	update(&record)
	record.CompletedAt = pkg.ToPtr(time.Now().UTC())
	slf.save(record)

	for _, sink := range slf.sinks {
		sink.TaskCompleted(record)
	}
	return record
}

func (slf *TaskRuntime) save(record models.TaskRecord) {
	if slf.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := slf.store.Save(ctx, record); err != nil {
		slf.logger.Error().Err(err).Str("taskId", record.ID).Msg("Failed to save task record")
	}
}
