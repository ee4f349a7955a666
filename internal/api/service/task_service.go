package service

import (
	"context"

	"ctchen222/Task-Tracker/internal/api/models"
	"ctchen222/Task-Tracker/internal/api/repository"
	"ctchen222/Task-Tracker/internal/api/response"
	"ctchen222/Task-Tracker/internal/validator"

	"go.opentelemetry.io/otel"
)

var taskServiceTracer = otel.Tracer("service.task")

// TaskService defines the interface for task-related business logic.
// Mutations require the acting user to own the task; existence is always
// checked before ownership.
type TaskService interface {
	Create(ctx context.Context, actor *models.User, req *models.CreateTaskRequest) (*models.Task, error)
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	List(ctx context.Context, search string) ([]models.Task, error)
	Update(ctx context.Context, actor *models.User, id int64, req *models.UpdateTaskRequest) (*models.Task, error)
	Delete(ctx context.Context, actor *models.User, id int64) (*models.Task, error)
}

type taskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository) TaskService {
	return &taskService{taskRepo: taskRepo, userRepo: userRepo}
}

// Create inserts a task owned by the acting user.
func (s *taskService) Create(ctx context.Context, actor *models.User, req *models.CreateTaskRequest) (*models.Task, error) {
	ctx, span := taskServiceTracer.Start(ctx, "TaskService.Create")
	defer span.End()

	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		UserID:      actor.ID,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	task.Author = actor
	return task, nil
}

// GetByID fetches a task with its author attached.
func (s *taskService) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	ctx, span := taskServiceTracer.Start(ctx, "TaskService.GetByID")
	defer span.End()

	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, response.ErrNotFound
	}
	if err := s.attachAuthor(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// List returns tasks, optionally filtered by title, with authors attached.
func (s *taskService) List(ctx context.Context, search string) ([]models.Task, error) {
	ctx, span := taskServiceTracer.Start(ctx, "TaskService.List")
	defer span.End()

	tasks, err := s.taskRepo.List(ctx, search)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if err := s.attachAuthor(ctx, &tasks[i]); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

// Update applies an update to a task the actor owns. Ownership is decided
// by comparing primary keys, never by struct identity.
func (s *taskService) Update(ctx context.Context, actor *models.User, id int64, req *models.UpdateTaskRequest) (*models.Task, error) {
	ctx, span := taskServiceTracer.Start(ctx, "TaskService.Update")
	defer span.End()

	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, response.ErrNotFound
	}
	if task.UserID != actor.ID {
		return nil, response.ErrForbidden
	}

	if err := validator.GetValidator().StructCtx(ctx, req); err != nil {
		return nil, response.ErrValidation
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	task.Author = actor
	return task, nil
}

// Delete removes a task the actor owns, returning it for the response
// message.
func (s *taskService) Delete(ctx context.Context, actor *models.User, id int64) (*models.Task, error) {
	ctx, span := taskServiceTracer.Start(ctx, "TaskService.Delete")
	defer span.End()

	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, response.ErrNotFound
	}
	if task.UserID != actor.ID {
		return nil, response.ErrForbidden
	}

	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) attachAuthor(ctx context.Context, task *models.Task) error {
	author, err := s.userRepo.GetByID(ctx, task.UserID)
	if err != nil {
		return err
	}
	task.Author = author
	return nil
}
