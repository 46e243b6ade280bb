package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/projeto-integrador-integra/integra-backend/internal/config"
	"github.com/projeto-integrador-integra/integra-backend/pkg/logger"
)

// Worker consumes email tasks from Redis.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor TaskProcessor
	running   bool
	mu        sync.Mutex
}

// NewWorker returns nil when Redis is disabled.
func NewWorker(cfg *config.RedisConfig) *Worker {
	if !cfg.Enabled {
		return nil
	}

	server := asynq.NewServer(
		redisOpt(cfg),
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error().Err(err).Str("type", task.Type()).Msg("[Worker] Task failed")
			}),
		},
	)

	return &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
	}
}

func (w *Worker) SetProcessor(processor TaskProcessor) {
	w.processor = processor
}

func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.mux.HandleFunc(TaskTypeEmail, w.handleEmailTask)
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	w.running = true
	logger.Info().Msg("[Worker] Async worker started")
	return nil
}

// Stop waits for in-flight tasks and shuts the worker down.
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	logger.Info().Msg("[Worker] Shutting down")
	w.server.Shutdown()
	w.running = false
}

func (w *Worker) handleEmailTask(ctx context.Context, t *asynq.Task) error {
	task, err := decodeEmailTask(t.Payload())
	if err != nil {
		// Malformed payloads will never succeed; skip retries.
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	if w.processor == nil {
		logger.Warn().Msg("[Worker] No processor set")
		return nil
	}

	return w.processor(ctx, task)
}

func decodeEmailTask(payload []byte) (*EmailTask, error) {
	var task EmailTask
	if err := json.Unmarshal(payload, &task); err != nil {
		return nil, err
	}
	if task.To == "" || task.Kind == "" {
		return nil, fmt.Errorf("email task missing recipient or kind")
	}
	return &task, nil
}
