package sqlstore

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository returns a GORM-backed implementation of TaskRepository.
func NewTaskRepository(db *gorm.DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

// AutoMigrate creates or updates the tasks and checklist_items tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&taskRecord{}, &checklistItemRecord{})
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var rec taskRecord
	if err := r.withChecklist(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	task, err := toDomain(rec)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context) ([]domain.Task, error) {
	var recs []taskRecord
	if err := r.withChecklist(ctx).Order("created_at").Find(&recs).Error; err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(recs))
	for _, rec := range recs {
		task, err := toDomain(rec)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	rec := toRecord(task)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
			return err
		}
		return insertItems(tx, rec.Checklist)
	})
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	rec := toRecord(task)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&taskRecord{}).
			Where("id = ?", rec.ID).
			Select("title", "description", "status", "priority", "tags", "due_date", "updated_at").
			Updates(&rec)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrTaskNotFound
		}

		if err := tx.Where("task_id = ?", rec.ID).Delete(&checklistItemRecord{}).Error; err != nil {
			return err
		}
		return insertItems(tx, rec.Checklist)
	})
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&checklistItemRecord{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&taskRecord{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrTaskNotFound
		}
		return nil
	})
}

func (r *taskRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *taskRepository) withChecklist(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Checklist", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	})
}

func insertItems(tx *gorm.DB, items []checklistItemRecord) error {
	if len(items) == 0 {
		return nil
	}
	return tx.Create(&items).Error
}
