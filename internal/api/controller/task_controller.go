package controller

import (
	"fmt"
	"net/http"

	"ctchen222/Task-Tracker/internal/api/middleware"
	"ctchen222/Task-Tracker/internal/api/models"
	"ctchen222/Task-Tracker/internal/api/response"
	"ctchen222/Task-Tracker/internal/api/service"

	"github.com/gin-gonic/gin"
)

// TaskController handles task-related HTTP requests.
type TaskController struct {
	taskService service.TaskService
}

// NewTaskController creates a new TaskController.
func NewTaskController(taskService service.TaskService) *TaskController {
	return &TaskController{taskService: taskService}
}

// Create handles task creation; the authenticated caller becomes the
// owner.
func (tc *TaskController) Create(c *gin.Context) {
	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	task, err := tc.taskService.Create(c.Request.Context(), middleware.CurrentUser(c), &req)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}
	response.CreatedResponse(c, task)
}

// List handles listing tasks with an optional title search filter.
func (tc *TaskController) List(c *gin.Context) {
	tasks, err := tc.taskService.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}
	response.SuccessResponse(c, tasks)
}

// Get handles fetching a single task by id.
func (tc *TaskController) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	task, err := tc.taskService.GetByID(c.Request.Context(), id)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}
	response.SuccessResponse(c, task)
}

// Update handles owner-only task updates.
func (tc *TaskController) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.UpdateTaskRequest
	if err := bindStrictJSON(c, &req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	task, err := tc.taskService.Update(c.Request.Context(), middleware.CurrentUser(c), id, &req)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}
	response.SuccessResponse(c, task)
}

// Delete handles owner-only task deletion.
func (tc *TaskController) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	task, err := tc.taskService.Delete(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}
	response.SuccessResponse(c, gin.H{"success": fmt.Sprintf("%s was successfully deleted", task.Title)})
}
