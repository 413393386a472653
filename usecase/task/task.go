package task

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
)

// Option customizes a UseCase.
type Option func(*UseCase)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		if now != nil {
			uc.now = now
		}
	}
}

type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
	now    func() time.Time
}

func New(tasks repository.TaskRepository, logger *zap.Logger, opts ...Option) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &UseCase{
		tasks:  tasks,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *UseCase) CreateTask(ctx context.Context, in domain.NewTaskInput) (*domain.Task, error) {
	task, err := domain.NewTask(in, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.tasks.Create(ctx, task); err != nil {
		return nil, uc.storageError(ctx, "create task", err)
	}
	logger.WithRequestID(ctx, uc.logger).Debug("task created", zap.String("task_id", task.ID))
	return task, nil
}

func (uc *UseCase) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, uc.storageError(ctx, "get task", err)
	}
	return task, nil
}

// ListTasks returns every task in the store's native order.
func (uc *UseCase) ListTasks(ctx context.Context) ([]domain.Task, error) {
	tasks, err := uc.tasks.List(ctx)
	if err != nil {
		return nil, uc.storageError(ctx, "list tasks", err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// UpdateTask applies only the fields present in patch.
func (uc *UseCase) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	return uc.mutate(ctx, "update task", id, func(task *domain.Task, now time.Time) error {
		return task.Apply(patch, now)
	})
}

func (uc *UseCase) UpdateStatus(ctx context.Context, id string, status string) (*domain.Task, error) {
	return uc.mutate(ctx, "update task status", id, func(task *domain.Task, now time.Time) error {
		parsed, err := domain.ParseStatus(status)
		if err != nil {
			return err
		}
		task.SetStatus(parsed, now)
		return nil
	})
}

func (uc *UseCase) DeleteTask(ctx context.Context, id string) error {
	if err := uc.tasks.Delete(ctx, id); err != nil {
		return uc.storageError(ctx, "delete task", err)
	}
	logger.WithRequestID(ctx, uc.logger).Debug("task deleted", zap.String("task_id", id))
	return nil
}

// Stats aggregates the full task list in a single pass.
func (uc *UseCase) Stats(ctx context.Context) (domain.Stats, error) {
	tasks, err := uc.tasks.List(ctx)
	if err != nil {
		return domain.Stats{}, uc.storageError(ctx, "task stats", err)
	}
	stats := domain.NewStats()
	for _, task := range tasks {
		stats.Add(task)
	}
	return stats, nil
}

// mutate loads the task, lets change modify it and persists the result.
// Lookup happens first so an unknown id reports NotFound before any input
// validation.
func (uc *UseCase) mutate(ctx context.Context, operation, id string, change func(*domain.Task, time.Time) error) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, uc.storageError(ctx, operation, err)
	}
	if err := change(task, uc.now()); err != nil {
		return nil, err
	}
	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, uc.storageError(ctx, operation, err)
	}
	return task, nil
}

// storageError passes NotFound through and wraps anything else as an
// internal storage failure. Corrupt records surface as storage failures too.
func (uc *UseCase) storageError(ctx context.Context, operation string, err error) error {
	if domain.IsNotFound(err) {
		return err
	}
	logger.WithRequestID(ctx, uc.logger).Error("storage failure", zap.String("operation", operation), zap.Error(err))
	return domain.StorageError(operation, err)
}
