package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

const taskColumns = `id, title, description, status, priority, tags, due_date, created_at, updated_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	err := pgx.BeginTxFunc(ctx, r.pool, readOnly, func(tx pgx.Tx) error {
		row, err := scanTask(tx.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
		if err != nil {
			return err
		}
		items, err := queryChecklist(ctx, tx, `WHERE task_id = $1`, id)
		if err != nil {
			return err
		}
		task, err = toDomain(*row, items[id])
		return err
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	err := pgx.BeginTxFunc(ctx, r.pool, readOnly, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at`)
		if err != nil {
			return err
		}
		var taskRows []taskRow
		for rows.Next() {
			row, err := scanTask(rows)
			if err != nil {
				rows.Close()
				return err
			}
			taskRows = append(taskRows, *row)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		items, err := queryChecklist(ctx, tx, ``)
		if err != nil {
			return err
		}

		tasks = make([]domain.Task, 0, len(taskRows))
		for _, row := range taskRows {
			task, err := toDomain(row, items[row.ID])
			if err != nil {
				return err
			}
			tasks = append(tasks, task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	row, items, err := toRow(task)
	if err != nil {
		return err
	}

	const query = `
	INSERT INTO tasks (id, title, description, status, priority, tags, due_date, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, query,
			row.ID,
			row.Title,
			row.Description,
			row.Status,
			row.Priority,
			row.Tags,
			row.DueDate,
			row.CreatedAt,
			row.UpdatedAt,
		); err != nil {
			return err
		}
		return insertChecklist(ctx, tx, items)
	})
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	row, items, err := toRow(task)
	if err != nil {
		return err
	}

	const query = `
	UPDATE tasks
	SET title = $2,
		description = $3,
		status = $4,
		priority = $5,
		tags = $6,
		due_date = $7,
		updated_at = $8
	WHERE id = $1
	`

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query,
			row.ID,
			row.Title,
			row.Description,
			row.Status,
			row.Priority,
			row.Tags,
			row.DueDate,
			row.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrTaskNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM checklist_items WHERE task_id = $1`, row.ID); err != nil {
			return err
		}
		return insertChecklist(ctx, tx, items)
	})
}

// Delete relies on ON DELETE CASCADE to drop the checklist.
func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

var readOnly = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

func scanTask(row pgx.Row) (*taskRow, error) {
	var t taskRow
	if err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.Tags,
		&t.DueDate,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &t, nil
}

// queryChecklist loads checklist rows grouped by task id in position order.
func queryChecklist(ctx context.Context, tx pgx.Tx, where string, args ...interface{}) (map[string][]checklistRow, error) {
	rows, err := tx.Query(ctx,
		`SELECT task_id, id, position, text, completed FROM checklist_items `+where+` ORDER BY task_id, position`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grouped := make(map[string][]checklistRow)
	for rows.Next() {
		var item checklistRow
		if err := rows.Scan(&item.TaskID, &item.ID, &item.Position, &item.Text, &item.Completed); err != nil {
			return nil, err
		}
		grouped[item.TaskID] = append(grouped[item.TaskID], item)
	}
	return grouped, rows.Err()
}

func insertChecklist(ctx context.Context, tx pgx.Tx, items []checklistRow) error {
	if len(items) == 0 {
		return nil
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"checklist_items"},
		[]string{"task_id", "id", "position", "text", "completed"},
		pgx.CopyFromSlice(len(items), func(i int) ([]any, error) {
			item := items[i]
			return []any{item.TaskID, item.ID, item.Position, item.Text, item.Completed}, nil
		}),
	)
	return err
}
