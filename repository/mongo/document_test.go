package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/fastygo/taskboard/domain"
)

func TestDocument_BSONRoundTrip(t *testing.T) {
	due := time.Now().Add(24 * time.Hour)
	task, err := domain.NewTask(domain.NewTaskInput{
		Title:     "x",
		Status:    "in_progress",
		Tags:      []string{"ops"},
		DueDate:   &due,
		Checklist: []domain.ChecklistItem{{ID: "c1", Text: "one", Completed: true}},
	}, time.Now())
	require.NoError(t, err)

	raw, err := bson.Marshal(toDocument(task))
	require.NoError(t, err)

	var doc taskDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))

	back, err := toDomain(doc)
	require.NoError(t, err)
	assert.Equal(t, task.ID, back.ID)
	assert.Equal(t, task.Status, back.Status)
	assert.Equal(t, task.Tags, back.Tags)
	assert.Equal(t, task.Checklist, back.Checklist)
	assert.True(t, task.CreatedAt.Equal(back.CreatedAt))
	assert.True(t, task.UpdatedAt.Equal(back.UpdatedAt))
	require.NotNil(t, back.DueDate)
	assert.True(t, task.DueDate.Equal(*back.DueDate))
}

func TestDocument_FieldNames(t *testing.T) {
	task, err := domain.NewTask(domain.NewTaskInput{Title: "x"}, time.Now())
	require.NoError(t, err)

	raw, err := bson.Marshal(toDocument(task))
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	for _, key := range []string{"id", "title", "status", "priority", "tags", "checklist", "created_at", "updated_at"} {
		assert.Contains(t, m, key)
	}
	assert.Equal(t, "todo", m["status"])
}
