package repo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"courier/internal/api/models"
	"courier/pkg"

	"github.com/redis/go-redis/v9"
)

var ErrTaskNotFound = errors.New("task not found")

const taskKeyPrefix = "courier:task:"

// TaskRepository stores task records in Redis with a TTL, or in process memory when no client is given.
type TaskRepository struct {
	client *redis.Client
	ttl    time.Duration

	mu     sync.RWMutex
	memory map[string]memoryTask
	now    func() time.Time
}

type memoryTask struct {
	record    models.TaskRecord
	expiresAt time.Time
}

func NewTaskRepository(client *redis.Client, ttl time.Duration) *TaskRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TaskRepository{
		client: client,
		ttl:    ttl,
		memory: make(map[string]memoryTask),
		now:    time.Now,
	}
}

func (slf *TaskRepository) Save(ctx context.Context, record models.TaskRecord) error {
	if slf.client != nil {
		if err := pkg.RedisSet(ctx, slf.client, taskKeyPrefix+record.ID, record, slf.ttl); err != nil {
			return fmt.Errorf("failed to store task %s: %w", record.ID, err)
		}
		return nil
	}

	slf.mu.Lock()
	defer slf.mu.Unlock()
	slf.evictExpired()
	slf.memory[record.ID] = memoryTask{record: record, expiresAt: slf.now().Add(slf.ttl)}
	return nil
}

func (slf *TaskRepository) Get(ctx context.Context, id string) (models.TaskRecord, error) {
	if slf.client != nil {
		var record models.TaskRecord
		if err := pkg.RedisGet(ctx, slf.client, taskKeyPrefix+id, &record); err != nil {
			if pkg.IsRedisNil(err) {
				return models.TaskRecord{}, ErrTaskNotFound
			}
			return models.TaskRecord{}, fmt.Errorf("failed to load task %s: %w", id, err)
		}
		return record, nil
	}

	slf.mu.RLock()
	defer slf.mu.RUnlock()
	entry, ok := slf.memory[id]
	if !ok || slf.now().After(entry.expiresAt) {
		return models.TaskRecord{}, ErrTaskNotFound
	}
	return entry.record, nil
}

func (slf *TaskRepository) Delete(ctx context.Context, id string) error {
	if slf.client != nil {
		return pkg.RedisDelete(ctx, slf.client, taskKeyPrefix+id)
	}

	slf.mu.Lock()
	defer slf.mu.Unlock()
	delete(slf.memory, id)
	return nil
}

// evictExpired must be called with mu held
func (slf *TaskRepository) evictExpired() {
	now := slf.now()
	for id, entry := range slf.memory {
		if now.After(entry.expiresAt) {
			delete(slf.memory, id)
		}
	}
}
