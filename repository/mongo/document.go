package mongo

import (
	"fmt"
	"time"

	"github.com/fastygo/taskboard/domain"
)

// taskDocument is the stored shape of a task; the checklist is embedded so a
// task and its items are always written in one single-document operation.
type taskDocument struct {
	ID          string              `bson:"id"`
	Title       string              `bson:"title"`
	Description string              `bson:"description"`
	Status      string              `bson:"status"`
	Priority    string              `bson:"priority"`
	Tags        []string            `bson:"tags"`
	DueDate     *time.Time          `bson:"due_date"`
	Checklist   []checklistDocument `bson:"checklist"`
	CreatedAt   time.Time           `bson:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at"`
}

type checklistDocument struct {
	ID        string `bson:"id"`
	Text      string `bson:"text"`
	Completed bool   `bson:"completed"`
}

func toDocument(task *domain.Task) taskDocument {
	doc := taskDocument{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		Tags:        task.Tags,
		DueDate:     task.DueDate,
		Checklist:   make([]checklistDocument, 0, len(task.Checklist)),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	for _, item := range task.Checklist {
		doc.Checklist = append(doc.Checklist, checklistDocument{
			ID:        item.ID,
			Text:      item.Text,
			Completed: item.Completed,
		})
	}
	return doc
}

func toDomain(doc taskDocument) (domain.Task, error) {
	status, err := domain.ParseStatus(doc.Status)
	if err != nil {
		return domain.Task{}, fmt.Errorf("task %s: %w", doc.ID, err)
	}
	priority, err := domain.ParsePriority(doc.Priority)
	if err != nil {
		return domain.Task{}, fmt.Errorf("task %s: %w", doc.ID, err)
	}

	task := domain.Task{
		ID:          doc.ID,
		Title:       doc.Title,
		Description: doc.Description,
		Status:      status,
		Priority:    priority,
		Tags:        append([]string{}, doc.Tags...),
		Checklist:   make([]domain.ChecklistItem, 0, len(doc.Checklist)),
		CreatedAt:   doc.CreatedAt.UTC(),
		UpdatedAt:   doc.UpdatedAt.UTC(),
	}
	if doc.DueDate != nil {
		due := doc.DueDate.UTC()
		task.DueDate = &due
	}
	for _, item := range doc.Checklist {
		task.Checklist = append(task.Checklist, domain.ChecklistItem{
			ID:        item.ID,
			Text:      item.Text,
			Completed: item.Completed,
		})
	}
	return task, nil
}
