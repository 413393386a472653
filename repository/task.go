package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// TaskRepository is the persistence gateway consumed by the task use case.
// Implementations return domain.ErrTaskNotFound for absent ids and persist a
// task together with its checklist atomically.
type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) error
	// Update replaces the stored record, including the whole checklist.
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
}

// Pinger is implemented by backends that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
