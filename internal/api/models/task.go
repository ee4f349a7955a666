package models

import "time"

// Task represents a task row. Author is populated from the owning user
// when the task is rendered.
type Task struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Completed   bool      `db:"completed" json:"completed"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UserID      int64     `db:"user_id" json:"-"`
	Author      *User     `db:"-" json:"author,omitempty"`
}

// CreateTaskRequest defines the structure for a task creation request.
type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"required"`
}

// UpdateTaskRequest enumerates the fields an owner may change on a task.
type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}
