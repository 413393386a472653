package bolt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// Bucket holds one JSON-encoded record per task keyed by task id.
const Bucket = "tasks"

// taskRecord is the stored JSON value; the checklist travels inside it so a
// single Put persists the task and its items together.
type taskRecord struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      string            `json:"status"`
	Priority    string            `json:"priority"`
	Tags        []string          `json:"tags"`
	DueDate     *time.Time        `json:"due_date,omitempty"`
	Checklist   []checklistRecord `json:"checklist"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type checklistRecord struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

type taskRepository struct {
	db     *bolt.DB
	bucket []byte
}

// NewTaskRepository returns a bbolt-backed implementation of TaskRepository.
// The bucket must already exist.
func NewTaskRepository(db *bolt.DB) repository.TaskRepository {
	return &taskRepository{db: db, bucket: []byte(Bucket)}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var task domain.Task
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(r.bucket).Get([]byte(id))
		if raw == nil {
			return domain.ErrTaskNotFound
		}
		var err error
		task, err = decode(raw)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var tasks []domain.Task
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(r.bucket).ForEach(func(_, v []byte) error {
			task, err := decode(v)
			if err != nil {
				return err
			}
			tasks = append(tasks, task)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := encode(task)
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(r.bucket)
		if b.Get([]byte(task.ID)) != nil {
			return fmt.Errorf("task %s already exists", task.ID)
		}
		return b.Put([]byte(task.ID), payload)
	})
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := encode(task)
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(r.bucket)
		if b.Get([]byte(task.ID)) == nil {
			return domain.ErrTaskNotFound
		}
		return b.Put([]byte(task.ID), payload)
	})
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(r.bucket)
		if b.Get([]byte(id)) == nil {
			return domain.ErrTaskNotFound
		}
		return b.Delete([]byte(id))
	})
}

// Ping verifies the file is open and the bucket readable.
func (r *taskRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(r.bucket) == nil {
			return errors.New("tasks bucket missing")
		}
		return nil
	})
}

func encode(task *domain.Task) ([]byte, error) {
	rec := taskRecord{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		Tags:        task.Tags,
		DueDate:     task.DueDate,
		Checklist:   make([]checklistRecord, 0, len(task.Checklist)),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	for _, item := range task.Checklist {
		rec.Checklist = append(rec.Checklist, checklistRecord(item))
	}
	return json.Marshal(rec)
}

func decode(raw []byte) (domain.Task, error) {
	var rec taskRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Task{}, err
	}
	status, err := domain.ParseStatus(rec.Status)
	if err != nil {
		return domain.Task{}, fmt.Errorf("task %s: %w", rec.ID, err)
	}
	priority, err := domain.ParsePriority(rec.Priority)
	if err != nil {
		return domain.Task{}, fmt.Errorf("task %s: %w", rec.ID, err)
	}

	task := domain.Task{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Status:      status,
		Priority:    priority,
		Tags:        append([]string{}, rec.Tags...),
		Checklist:   make([]domain.ChecklistItem, 0, len(rec.Checklist)),
		CreatedAt:   rec.CreatedAt.UTC(),
		UpdatedAt:   rec.UpdatedAt.UTC(),
	}
	if rec.DueDate != nil {
		due := rec.DueDate.UTC()
		task.DueDate = &due
	}
	for _, item := range rec.Checklist {
		task.Checklist = append(task.Checklist, domain.ChecklistItem(item))
	}
	return task, nil
}
