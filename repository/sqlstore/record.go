package sqlstore

import (
	"fmt"
	"time"

	"github.com/fastygo/taskboard/domain"
)

// taskRecord is the persisted shape of a task row. Timestamps are owned by
// the domain, so GORM's automatic time tracking is disabled.
type taskRecord struct {
	ID          string                `gorm:"primaryKey;size:36"`
	Title       string                `gorm:"size:255;not null"`
	Description string                `gorm:"type:text"`
	Status      string                `gorm:"size:50;not null;index"`
	Priority    string                `gorm:"size:50;not null"`
	Tags        []string              `gorm:"serializer:json;type:text"`
	DueDate     *time.Time            `gorm:"column:due_date"`
	CreatedAt   time.Time             `gorm:"not null;autoCreateTime:false;index"`
	UpdatedAt   time.Time             `gorm:"not null;autoUpdateTime:false"`
	Checklist   []checklistItemRecord `gorm:"foreignKey:TaskID;references:ID;constraint:OnDelete:CASCADE"`
}

func (taskRecord) TableName() string {
	return "tasks"
}

// checklistItemRecord ids are unique per owning task, hence the composite key.
type checklistItemRecord struct {
	TaskID    string `gorm:"primaryKey;size:36"`
	ID        string `gorm:"primaryKey;size:64"`
	Position  int    `gorm:"not null"`
	Text      string `gorm:"size:500;not null"`
	Completed bool   `gorm:"not null"`
}

func (checklistItemRecord) TableName() string {
	return "checklist_items"
}

func toRecord(task *domain.Task) taskRecord {
	rec := taskRecord{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		Tags:        task.Tags,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		Checklist:   toItemRecords(task.ID, task.Checklist),
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	return rec
}

func toItemRecords(taskID string, items []domain.ChecklistItem) []checklistItemRecord {
	out := make([]checklistItemRecord, 0, len(items))
	for i, item := range items {
		out = append(out, checklistItemRecord{
			TaskID:    taskID,
			ID:        item.ID,
			Position:  i,
			Text:      item.Text,
			Completed: item.Completed,
		})
	}
	return out
}

func toDomain(rec taskRecord) (domain.Task, error) {
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
		CreatedAt:   rec.CreatedAt.UTC(),
		UpdatedAt:   rec.UpdatedAt.UTC(),
		Checklist:   make([]domain.ChecklistItem, 0, len(rec.Checklist)),
	}
	if rec.DueDate != nil {
		due := rec.DueDate.UTC()
		task.DueDate = &due
	}
	for _, item := range rec.Checklist {
		task.Checklist = append(task.Checklist, domain.ChecklistItem{
			ID:        item.ID,
			Text:      item.Text,
			Completed: item.Completed,
		})
	}
	return task, nil
}
