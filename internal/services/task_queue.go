package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/projeto-integrador-integra/integra-backend/internal/config"
	"github.com/projeto-integrador-integra/integra-backend/pkg/logger"
)

const (
	TaskTypeEmail = "email:send"
)

// Email kinds carried by an EmailTask.
const (
	EmailKindWelcome     = "welcome"
	EmailKindGroupFormed = "group_formed"
)

// EmailTask is a single outbound email job.
type EmailTask struct {
	Kind        string `json:"kind"`
	To          string `json:"to"`
	Name        string `json:"name"`
	ProjectID   string `json:"project_id,omitempty"`
	ProjectName string `json:"project_name,omitempty"`
}

// TaskProcessor handles a dequeued email task.
type TaskProcessor func(context.Context, *EmailTask) error

// TaskQueue defines the interface for email task processing
type TaskQueue interface {
	// Enqueue adds a task to the queue
	Enqueue(ctx context.Context, task *EmailTask) error
	// IsAsync returns true if queue processes tasks asynchronously
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

var (
	globalTaskQueue TaskQueue
	taskQueueOnce   sync.Once
)

// InitTaskQueue initializes the global task queue based on config
func InitTaskQueue(cfg *config.Config) TaskQueue {
	taskQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncQueue(&cfg.Redis)
			if err != nil {
				logger.Warn().Err(err).Msg("[TaskQueue] Redis unavailable, falling back to sync mode")
				globalTaskQueue = NewSyncQueue()
			} else {
				logger.Info().Str("addr", cfg.Redis.Addr).Msg("[TaskQueue] Async queue initialized")
				globalTaskQueue = queue
			}
		} else {
			logger.Info().Msg("[TaskQueue] Sync queue initialized (Redis disabled)")
			globalTaskQueue = NewSyncQueue()
		}
	})
	return globalTaskQueue
}

// GetTaskQueue returns the global task queue instance
func GetTaskQueue() TaskQueue {
	return globalTaskQueue
}

// AsyncQueue implements TaskQueue using asynq (Redis-based)
type AsyncQueue struct {
	client *asynq.Client
}

func redisOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewAsyncQueue creates a Redis-based queue, failing fast when Redis is unreachable.
func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	opt := redisOpt(cfg)
	client := asynq.NewClient(opt)

	inspector := asynq.NewInspector(opt)
	defer inspector.Close()

	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

func (q *AsyncQueue) Enqueue(ctx context.Context, task *EmailTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	info, err := q.client.EnqueueContext(ctx, asynq.NewTask(TaskTypeEmail, payload),
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	logger.Debug().Str("task_id", info.ID).Str("queue", info.Queue).Str("kind", task.Kind).Msg("[AsyncQueue] Task enqueued")
	return nil
}

func (q *AsyncQueue) IsAsync() bool {
	return true
}

func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// SyncQueue implements TaskQueue in-process when Redis is not configured.
// Tasks run on their own goroutine so callers never wait on the mail provider.
type SyncQueue struct {
	mu        sync.RWMutex
	processor TaskProcessor
	wg        sync.WaitGroup
}

func NewSyncQueue() *SyncQueue {
	return &SyncQueue{}
}

// SetProcessor sets the function that handles tasks
func (q *SyncQueue) SetProcessor(processor TaskProcessor) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.processor = processor
}

func (q *SyncQueue) Enqueue(ctx context.Context, task *EmailTask) error {
	q.mu.RLock()
	processor := q.processor
	q.mu.RUnlock()

	if processor == nil {
		logger.Warn().Str("kind", task.Kind).Msg("[SyncQueue] No processor set, task dropped")
		return nil
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		if err := processor(context.WithoutCancel(ctx), task); err != nil {
			logger.Error().Err(err).Str("kind", task.Kind).Str("to", task.To).Msg("[SyncQueue] Task processing failed")
		}
	}()

	return nil
}

func (q *SyncQueue) IsAsync() bool {
	return false
}

// Close waits for in-flight tasks to finish.
func (q *SyncQueue) Close() error {
	q.wg.Wait()
	return nil
}
