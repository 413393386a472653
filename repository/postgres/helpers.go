package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fastygo/taskboard/domain"
)

// taskRow is the persisted shape of a tasks row.
type taskRow struct {
	ID          string
	Title       string
	Description string
	Status      string
	Priority    string
	Tags        []byte
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// checklistRow is the persisted shape of a checklist_items row.
type checklistRow struct {
	TaskID    string
	ID        string
	Position  int
	Text      string
	Completed bool
}

func toRow(task *domain.Task) (taskRow, []checklistRow, error) {
	tags := task.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return taskRow{}, nil, err
	}

	row := taskRow{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		Tags:        encoded,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	items := make([]checklistRow, 0, len(task.Checklist))
	for i, item := range task.Checklist {
		items = append(items, checklistRow{
			TaskID:    task.ID,
			ID:        item.ID,
			Position:  i,
			Text:      item.Text,
			Completed: item.Completed,
		})
	}
	return row, items, nil
}

func toDomain(row taskRow, items []checklistRow) (domain.Task, error) {
	status, err := domain.ParseStatus(row.Status)
	if err != nil {
		return domain.Task{}, fmt.Errorf("task %s: %w", row.ID, err)
	}
	priority, err := domain.ParsePriority(row.Priority)
	if err != nil {
		return domain.Task{}, fmt.Errorf("task %s: %w", row.ID, err)
	}

	task := domain.Task{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Status:      status,
		Priority:    priority,
		Tags:        []string{},
		Checklist:   make([]domain.ChecklistItem, 0, len(items)),
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
	if len(row.Tags) > 0 {
		if err := json.Unmarshal(row.Tags, &task.Tags); err != nil {
			return domain.Task{}, fmt.Errorf("task %s tags: %w", row.ID, err)
		}
		if task.Tags == nil {
			task.Tags = []string{}
		}
	}
	if row.DueDate != nil {
		due := row.DueDate.UTC()
		task.DueDate = &due
	}
	for _, item := range items {
		task.Checklist = append(task.Checklist, domain.ChecklistItem{
			ID:        item.ID,
			Text:      item.Text,
			Completed: item.Completed,
		})
	}
	return task, nil
}
