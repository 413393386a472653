package transport

import (
	"time"

	"github.com/fastygo/taskboard/domain"
)

type ChecklistItemResponse struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

type TaskResponse struct {
	ID          string                  `json:"id"`
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Status      string                  `json:"status"`
	Priority    string                  `json:"priority"`
	Tags        []string                `json:"tags"`
	DueDate     *time.Time              `json:"due_date"`
	Checklist   []ChecklistItemResponse `json:"checklist"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

type StatsResponse struct {
	Total             int            `json:"total"`
	Todo              int            `json:"todo"`
	InProgress        int            `json:"in_progress"`
	Done              int            `json:"done"`
	PriorityBreakdown map[string]int `json:"priority_breakdown"`
	TagBreakdown      map[string]int `json:"tag_breakdown"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

// DependencyStatus reports one backing service on the health endpoint.
type DependencyStatus struct {
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

type HealthResponse struct {
	Status    string                      `json:"status"`
	Timestamp time.Time                   `json:"timestamp"`
	Services  map[string]DependencyStatus `json:"services"`
}

func NewTaskResponse(task domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		Tags:        make([]string, len(task.Tags)),
		DueDate:     task.DueDate,
		Checklist:   make([]ChecklistItemResponse, 0, len(task.Checklist)),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	copy(resp.Tags, task.Tags)
	for _, item := range task.Checklist {
		resp.Checklist = append(resp.Checklist, ChecklistItemResponse{
			ID:        item.ID,
			Text:      item.Text,
			Completed: item.Completed,
		})
	}
	return resp
}

func NewTaskListResponse(tasks []domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, NewTaskResponse(task))
	}
	return out
}

func NewStatsResponse(stats domain.Stats) StatsResponse {
	resp := StatsResponse{
		Total:             stats.Total,
		Todo:              stats.Todo,
		InProgress:        stats.InProgress,
		Done:              stats.Done,
		PriorityBreakdown: make(map[string]int, len(domain.Priorities)),
		TagBreakdown:      make(map[string]int, len(stats.TagBreakdown)),
	}
	for _, p := range domain.Priorities {
		resp.PriorityBreakdown[string(p)] = stats.PriorityBreakdown[p]
	}
	for tag, n := range stats.TagBreakdown {
		resp.TagBreakdown[tag] = n
	}
	return resp
}
