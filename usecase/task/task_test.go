package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/repository/sqlstore"
)

func newRepository(t *testing.T) repository.TaskRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, sqlstore.AutoMigrate(db))
	return sqlstore.NewTaskRepository(db)
}

// steppingClock advances one second per call.
func steppingClock() func() time.Time {
	current := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func newUseCase(t *testing.T) *UseCase {
	t.Helper()
	return New(newRepository(t), zap.NewNop(), WithClock(steppingClock()))
}

func strPtr(s string) *string { return &s }

func TestUseCase_CreateScenario(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	created, err := uc.CreateTask(ctx, domain.NewTaskInput{
		Title:    "Ship release",
		Priority: "high",
		Tags:     []string{"a", "b"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.StatusTodo, created.Status)
	assert.Empty(t, created.Checklist)
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

	fetched, err := uc.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *fetched)
}

func TestUseCase_CreateValidation(t *testing.T) {
	uc := newUseCase(t)

	_, err := uc.CreateTask(context.Background(), domain.NewTaskInput{Title: ""})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	tasks, err := uc.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestUseCase_PartialUpdate(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	created, err := uc.CreateTask(ctx, domain.NewTaskInput{
		Title:       "orig",
		Description: "desc",
		Status:      "in_progress",
		Priority:    "low",
		Tags:        []string{"x"},
		Checklist:   []domain.ChecklistItem{{Text: "step"}},
	})
	require.NoError(t, err)

	updated, err := uc.UpdateTask(ctx, created.ID, domain.TaskPatch{Title: strPtr("X")})
	require.NoError(t, err)

	assert.Equal(t, "X", updated.Title)
	assert.Equal(t, created.Description, updated.Description)
	assert.Equal(t, created.Tags, updated.Tags)
	assert.Equal(t, created.Status, updated.Status)
	assert.Equal(t, created.Priority, updated.Priority)
	assert.Equal(t, created.Checklist, updated.Checklist)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))

	stored, err := uc.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *updated, *stored)
}

func TestUseCase_UpdateReplacesChecklist(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	created, err := uc.CreateTask(ctx, domain.NewTaskInput{
		Title:     "x",
		Checklist: []domain.ChecklistItem{{Text: "a"}, {Text: "b"}},
	})
	require.NoError(t, err)
	oldIDs := map[string]bool{created.Checklist[0].ID: true, created.Checklist[1].ID: true}

	replacement := []domain.ChecklistItem{{Text: "c"}}
	_, err = uc.UpdateTask(ctx, created.ID, domain.TaskPatch{Checklist: &replacement})
	require.NoError(t, err)

	stored, err := uc.GetTask(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, stored.Checklist, 1)
	assert.Equal(t, "c", stored.Checklist[0].Text)
	assert.False(t, oldIDs[stored.Checklist[0].ID])
}

func TestUseCase_UpdateErrors(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	_, err := uc.UpdateTask(ctx, "missing", domain.TaskPatch{Title: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	created, err := uc.CreateTask(ctx, domain.NewTaskInput{Title: "x"})
	require.NoError(t, err)

	_, err = uc.UpdateTask(ctx, created.ID, domain.TaskPatch{Priority: strPtr("urgent")})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	stored, err := uc.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *stored)
}

func TestUseCase_UpdateStatus(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	created, err := uc.CreateTask(ctx, domain.NewTaskInput{Title: "x"})
	require.NoError(t, err)

	updated, err := uc.UpdateStatus(ctx, created.ID, "done")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, updated.Status)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	_, err = uc.UpdateStatus(ctx, created.ID, "finished")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	// Unknown ids report NotFound regardless of the requested status.
	_, err = uc.UpdateStatus(ctx, "missing", "finished")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestUseCase_Delete(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	created, err := uc.CreateTask(ctx, domain.NewTaskInput{Title: "x"})
	require.NoError(t, err)

	require.NoError(t, uc.DeleteTask(ctx, created.ID))

	_, err = uc.GetTask(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.ErrorIs(t, uc.DeleteTask(ctx, created.ID), domain.ErrTaskNotFound)
}

func TestUseCase_Stats(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	stats, err := uc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Len(t, stats.PriorityBreakdown, 3)

	for _, in := range []domain.NewTaskInput{
		{Title: "a", Status: "todo", Priority: "high", Tags: []string{"x", "y"}},
		{Title: "b", Status: "in_progress", Tags: []string{"x", "x"}},
		{Title: "c", Status: "done", Priority: "low"},
	} {
		_, err := uc.CreateTask(ctx, in)
		require.NoError(t, err)
	}

	stats, err = uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Todo)
	assert.Equal(t, 1, stats.InProgress)
	assert.Equal(t, 1, stats.Done)
	assert.Equal(t, stats.Total, stats.Todo+stats.InProgress+stats.Done)

	sum := 0
	for _, n := range stats.PriorityBreakdown {
		sum += n
	}
	assert.Equal(t, stats.Total, sum)
	assert.Equal(t, map[domain.Priority]int{
		domain.PriorityLow:    1,
		domain.PriorityMedium: 1,
		domain.PriorityHigh:   1,
	}, stats.PriorityBreakdown)
	assert.Equal(t, map[string]int{"x": 3, "y": 1}, stats.TagBreakdown)
}

type failingRepository struct {
	repository.TaskRepository
	err error
}

func (f failingRepository) Create(context.Context, *domain.Task) error            { return f.err }
func (f failingRepository) GetByID(context.Context, string) (*domain.Task, error) { return nil, f.err }
func (f failingRepository) List(context.Context) ([]domain.Task, error)           { return nil, f.err }
func (f failingRepository) Delete(context.Context, string) error                  { return f.err }

func TestUseCase_StorageErrors(t *testing.T) {
	boom := errors.New("disk on fire")
	uc := New(failingRepository{err: boom}, nil)
	ctx := context.Background()

	_, err := uc.CreateTask(ctx, domain.NewTaskInput{Title: "x"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInternal))
	assert.ErrorIs(t, err, boom)

	_, err = uc.Stats(ctx)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInternal))

	_, err = uc.ListTasks(ctx)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInternal))

	_, err = uc.UpdateStatus(ctx, "id", "done")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInternal))

	err = uc.DeleteTask(ctx, "id")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInternal))
}
