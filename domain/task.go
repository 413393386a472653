package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Status is the workflow state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Priority ranks a task relative to others.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Length limits shared by every storage backend, counted in characters.
const (
	MaxTitleLength         = 255
	MaxChecklistIDLength   = 64
	MaxChecklistTextLength = 500
)

// Priorities lists every priority value in ascending order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParseStatus converts raw input into a Status, rejecting unknown values.
func ParseStatus(value string) (Status, error) {
	switch s := Status(value); s {
	case StatusTodo, StatusInProgress, StatusDone:
		return s, nil
	default:
		return "", ValidationError("invalid status %q: expected one of todo, in_progress, done", value)
	}
}

// ParsePriority converts raw input into a Priority, rejecting unknown values.
func ParsePriority(value string) (Priority, error) {
	switch p := Priority(value); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	default:
		return "", ValidationError("invalid priority %q: expected one of low, medium, high", value)
	}
}

// ChecklistItem is a single completable step owned by exactly one task.
type ChecklistItem struct {
	ID        string
	Text      string
	Completed bool
}

// Task represents a unit of work with an embedded checklist.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	Tags        []string
	DueDate     *time.Time
	Checklist   []ChecklistItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTaskInput carries the fields accepted when creating a task.
// Empty Status and Priority fall back to their defaults.
type NewTaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	Tags        []string
	DueDate     *time.Time
	Checklist   []ChecklistItem
}

// TaskPatch holds the fields explicitly supplied for a partial update.
// Nil fields are left untouched. ClearDueDate removes the due date and wins
// over DueDate.
type TaskPatch struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	Tags         *[]string
	DueDate      *time.Time
	ClearDueDate bool
	Checklist    *[]ChecklistItem
}

// NewTask validates the input and builds a task with generated identifiers
// and timestamps.
func NewTask(in NewTaskInput, now time.Time) (*Task, error) {
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}

	status := StatusTodo
	if in.Status != "" {
		parsed, err := ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	priority := PriorityMedium
	if in.Priority != "" {
		parsed, err := ParsePriority(in.Priority)
		if err != nil {
			return nil, err
		}
		priority = parsed
	}

	checklist, err := normalizeChecklist(in.Checklist)
	if err != nil {
		return nil, err
	}

	now = NormalizeTime(now)
	return &Task{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		Tags:        copyTags(in.Tags),
		DueDate:     normalizeDueDate(in.DueDate),
		Checklist:   checklist,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Apply merges the supplied patch fields into the task and refreshes
// UpdatedAt. The task is left unmodified when validation fails.
func (t *Task) Apply(patch TaskPatch, now time.Time) error {
	var (
		status    Status
		priority  Priority
		checklist []ChecklistItem
		err       error
	)

	if patch.Title != nil {
		if err := validateTitle(*patch.Title); err != nil {
			return err
		}
	}
	if patch.Status != nil {
		if status, err = ParseStatus(*patch.Status); err != nil {
			return err
		}
	}
	if patch.Priority != nil {
		if priority, err = ParsePriority(*patch.Priority); err != nil {
			return err
		}
	}
	if patch.Checklist != nil {
		if checklist, err = normalizeChecklist(*patch.Checklist); err != nil {
			return err
		}
	}

	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = status
	}
	if patch.Priority != nil {
		t.Priority = priority
	}
	if patch.Tags != nil {
		t.Tags = copyTags(*patch.Tags)
	}
	switch {
	case patch.ClearDueDate:
		t.DueDate = nil
	case patch.DueDate != nil:
		t.DueDate = normalizeDueDate(patch.DueDate)
	}
	if patch.Checklist != nil {
		t.Checklist = checklist
	}

	t.touch(now)
	return nil
}

// SetStatus moves the task to the given status and refreshes UpdatedAt.
func (t *Task) SetStatus(status Status, now time.Time) {
	t.Status = status
	t.touch(now)
}

// touch keeps UpdatedAt strictly increasing even when the clock has not
// advanced past the stored millisecond.
func (t *Task) touch(now time.Time) {
	now = NormalizeTime(now)
	if !now.After(t.UpdatedAt) {
		now = t.UpdatedAt.Add(time.Millisecond)
	}
	t.UpdatedAt = now
}

// NormalizeTime converts a timestamp to UTC at millisecond precision, the
// finest resolution every supported store preserves.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func normalizeDueDate(due *time.Time) *time.Time {
	if due == nil {
		return nil
	}
	normalized := NormalizeTime(*due)
	return &normalized
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ValidationError("title must not be empty")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ValidationError("title must be at most %d characters", MaxTitleLength)
	}
	return nil
}

func normalizeChecklist(items []ChecklistItem) ([]ChecklistItem, error) {
	out := make([]ChecklistItem, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		if strings.TrimSpace(item.Text) == "" {
			return nil, ValidationError("checklist item %d: text must not be empty", i)
		}
		if utf8.RuneCountInString(item.Text) > MaxChecklistTextLength {
			return nil, ValidationError("checklist item %d: text must be at most %d characters", i, MaxChecklistTextLength)
		}
		if item.ID == "" {
			item.ID = uuid.NewString()
		} else if utf8.RuneCountInString(item.ID) > MaxChecklistIDLength {
			return nil, ValidationError("checklist item %d: id must be at most %d characters", i, MaxChecklistIDLength)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, ValidationError("checklist item %d: duplicate id %q", i, item.ID)
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out, nil
}

func copyTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
