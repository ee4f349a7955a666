package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ctchen222/Task-Tracker/internal/api/models"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
)

var taskTracer = otel.Tracer("repository.task")

// TaskRepository defines the interface for task data operations.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	List(ctx context.Context, search string) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id int64) error
}

type sqliteTaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new SQLite-based TaskRepository.
func NewTaskRepository(db *sqlx.DB) TaskRepository {
	return &sqliteTaskRepository{db: db}
}

// Create inserts a new task owned by task.UserID and fills in its
// generated id.
func (r *sqliteTaskRepository) Create(ctx context.Context, task *models.Task) error {
	ctx, span := taskTracer.Start(ctx, "TaskRepository.Create")
	defer span.End()

	task.CreatedAt = time.Now().UTC()
	query := `INSERT INTO tasks (title, description, completed, created_at, user_id) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, task.Title, task.Description, task.Completed, task.CreatedAt, task.UserID)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new task id: %w", err)
	}
	task.ID = id
	return nil
}

// GetByID retrieves a task by primary key.
func (r *sqliteTaskRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	ctx, span := taskTracer.Start(ctx, "TaskRepository.GetByID")
	defer span.End()

	var task models.Task
	err := r.db.GetContext(ctx, &task, `SELECT * FROM tasks WHERE id = ?`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // no task found is not an application error
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &task, nil
}

// List returns all tasks, optionally filtered by a case-insensitive
// substring match on the title.
func (r *sqliteTaskRepository) List(ctx context.Context, search string) ([]models.Task, error) {
	ctx, span := taskTracer.Start(ctx, "TaskRepository.List")
	defer span.End()

	tasks := []models.Task{}
	var err error
	if search != "" {
		query := `SELECT * FROM tasks WHERE LOWER(title) LIKE '%' || LOWER(?) || '%' ORDER BY id`
		err = r.db.SelectContext(ctx, &tasks, query, search)
	} else {
		err = r.db.SelectContext(ctx, &tasks, `SELECT * FROM tasks ORDER BY id`)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Update persists the mutable fields of a task. Ownership never changes.
func (r *sqliteTaskRepository) Update(ctx context.Context, task *models.Task) error {
	ctx, span := taskTracer.Start(ctx, "TaskRepository.Update")
	defer span.End()

	query := `UPDATE tasks SET title = ?, description = ?, completed = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, task.Title, task.Description, task.Completed, task.ID); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// Delete removes a task row.
func (r *sqliteTaskRepository) Delete(ctx context.Context, id int64) error {
	ctx, span := taskTracer.Start(ctx, "TaskRepository.Delete")
	defer span.End()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}
