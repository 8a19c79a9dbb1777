package handlers

import (
	"taskmaster/internal/middleware"
	"taskmaster/internal/services"

	"github.com/gofiber/fiber/v2"
)

// TaskHandler handles task CRUD endpoints
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateTaskRequest is the request body for task creation
type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	DueDate     string  `json:"dueDate"`
	ProjectID   *string `json:"projectId"`
}

// UpdateTaskRequest carries partial task updates; absent fields are unchanged.
// An empty dueDate clears the deadline; an empty projectId detaches the task.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"`
	ProjectID   *string `json:"projectId"`
}

// Create creates a new task
// POST /api/tasks
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		return respondError(c, err)
	}

	task, err := h.taskService.Create(middleware.UserID(c), services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     dueDate,
		ProjectID:   req.ProjectID,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(task)
}

// List returns the user's tasks with optional filters
// GET /api/tasks
func (h *TaskHandler) List(c *fiber.Ctx) error {
	tasks, err := h.taskService.List(middleware.UserID(c), services.TaskFilter{
		Status:    c.Query("status"),
		Priority:  c.Query("priority"),
		ProjectID: c.Query("projectId"),
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tasks)
}

// ListByProject returns the user's tasks within one project
// GET /api/tasks/project/:projectId
func (h *TaskHandler) ListByProject(c *fiber.Ctx) error {
	tasks, err := h.taskService.ListByProject(middleware.UserID(c), c.Params("projectId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tasks)
}

// GetByID returns a single task
// GET /api/tasks/:id
func (h *TaskHandler) GetByID(c *fiber.Ctx) error {
	task, err := h.taskService.GetByID(middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(task)
}

// Update applies a partial update to a task
// PUT /api/tasks/:id
func (h *TaskHandler) Update(c *fiber.Ctx) error {
	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	input := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		ProjectID:   req.ProjectID,
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			input.ClearDue = true
		} else {
			dueDate, err := parseDate(*req.DueDate)
			if err != nil {
				return respondError(c, err)
			}
			input.DueDate = dueDate
		}
	}

	task, err := h.taskService.Update(middleware.UserID(c), c.Params("id"), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(task)
}

// Delete removes a task
// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	if err := h.taskService.Delete(middleware.UserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Task removed",
	})
}
