package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/fastygo/taskboard/domain"
)

type ChecklistItemPayload struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

type TaskCreateRequest struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Status      string                 `json:"status"`
	Priority    string                 `json:"priority"`
	Tags        []string               `json:"tags"`
	DueDate     *time.Time             `json:"due_date"`
	Checklist   []ChecklistItemPayload `json:"checklist"`
}

// TaskUpdateRequest distinguishes absent fields (nil) from supplied ones.
type TaskUpdateRequest struct {
	Title       *string                 `json:"title"`
	Description *string                 `json:"description"`
	Status      *string                 `json:"status"`
	Priority    *string                 `json:"priority"`
	Tags        *[]string               `json:"tags"`
	DueDate     NullableTime            `json:"due_date"`
	Checklist   *[]ChecklistItemPayload `json:"checklist"`
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// NullableTime records whether the key was present at all, so an explicit
// null can be told apart from an omitted field.
type NullableTime struct {
	Set   bool
	Value *time.Time
}

func (n *NullableTime) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	n.Value = &t
	return nil
}

// Decode unmarshals body into dst. Empty or syntactically broken bodies
// become ErrInvalidPayload; well-formed JSON carrying wrongly typed values
// becomes a validation error.
func Decode(body []byte, dst any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return domain.ErrInvalidPayload
	}
	err := json.Unmarshal(body, dst)
	if err == nil {
		return nil
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var timeErr *time.ParseError
	switch {
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return domain.ErrInvalidPayload
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return domain.ErrInvalidPayload
		}
		return domain.ValidationError("%s: expected %s", typeErr.Field, typeErr.Type)
	case errors.As(err, &timeErr):
		return domain.ValidationError("due_date: expected an RFC 3339 timestamp")
	default:
		return domain.ValidationError("invalid request payload: %v", err)
	}
}

// ToNewTaskInput maps a create request onto the domain input.
func (r TaskCreateRequest) ToNewTaskInput() domain.NewTaskInput {
	return domain.NewTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		Tags:        r.Tags,
		DueDate:     r.DueDate,
		Checklist:   toChecklist(r.Checklist),
	}
}

// ToPatch maps an update request onto a domain patch.
func (r TaskUpdateRequest) ToPatch() domain.TaskPatch {
	patch := domain.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		Tags:        r.Tags,
	}
	if r.DueDate.Set {
		if r.DueDate.Value == nil {
			patch.ClearDueDate = true
		} else {
			patch.DueDate = r.DueDate.Value
		}
	}
	if r.Checklist != nil {
		items := toChecklist(*r.Checklist)
		patch.Checklist = &items
	}
	return patch
}

func toChecklist(items []ChecklistItemPayload) []domain.ChecklistItem {
	out := make([]domain.ChecklistItem, 0, len(items))
	for _, item := range items {
		out = append(out, domain.ChecklistItem{
			ID:        item.ID,
			Text:      item.Text,
			Completed: item.Completed,
		})
	}
	return out
}
