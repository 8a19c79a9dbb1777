package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskmaster/internal/database"
	"taskmaster/internal/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// TaskService handles task CRUD. Creating a task and completing one feed the
// activity ledger as best-effort side effects.
type TaskService struct {
	db              *database.DB
	clock           clockwork.Clock
	activityService *ActivityService
}

// NewTaskService creates a new task service
func NewTaskService(db *database.DB, clock clockwork.Clock, activityService *ActivityService) *TaskService {
	return &TaskService{db: db, clock: clock, activityService: activityService}
}

// CreateTaskInput is the accepted shape for task creation
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    string
	DueDate     *time.Time
	ProjectID   *string
}

// UpdateTaskInput carries partial task updates; nil fields are unchanged
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
	ClearDue    bool
	ProjectID   *string
}

// TaskFilter narrows and orders task listings
type TaskFilter struct {
	Status    string
	Priority  string
	ProjectID string
	Search    string
	SortBy    string
	SortOrder string
}

// sortColumns whitelists user-supplied sort keys
var sortColumns = map[string]string{
	"title":     "title",
	"status":    "status",
	"priority":  "priority",
	"dueDate":   "due_date",
	"createdAt": "created_at",
}

// Create inserts a new task and records a task_created activity
func (s *TaskService) Create(userID string, input CreateTaskInput) (*models.Task, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, &ValidationError{Message: "Task title is required"}
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if !models.ValidTaskPriority(input.Priority) {
		return nil, &ValidationError{Message: "Invalid task priority"}
	}
	if input.ProjectID != nil {
		if err := s.checkProjectOwnership(userID, *input.ProjectID); err != nil {
			return nil, err
		}
	}

	now := s.clock.Now().UTC()
	task := &models.Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		ProjectID:   input.ProjectID,
		Title:       input.Title,
		Description: input.Description,
		Status:      models.TaskStatusPending,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.Exec(`
		INSERT INTO tasks (id, user_id, project_id, title, description, status, priority, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, task.ID, task.UserID, task.ProjectID, task.Title, task.Description, task.Status, task.Priority, task.DueDate, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.activityService.RecordActivity(userID, models.ActivityTaskCreated, 0)

	return task, nil
}

// List returns the user's tasks with optional filters and ordering
func (s *TaskService) List(userID string, filter TaskFilter) ([]models.Task, error) {
	query := `
		SELECT t.id, t.user_id, t.project_id, t.title, t.description, t.status, t.priority, t.due_date, t.completed_at, t.created_at, t.updated_at,
		       p.name, p.color
		FROM tasks t
		LEFT JOIN projects p ON p.id = t.project_id
		WHERE t.user_id = ?
	`
	args := []any{userID}

	if filter.Status != "" {
		query += " AND t.status = ?"
		args = append(args, filter.Status)
	}
	if filter.Priority != "" {
		query += " AND t.priority = ?"
		args = append(args, filter.Priority)
	}
	if filter.ProjectID != "" {
		query += " AND t.project_id = ?"
		args = append(args, filter.ProjectID)
	}
	if filter.Search != "" {
		query += " AND (t.title LIKE ? OR t.description LIKE ?)"
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
		filter.SortOrder = "desc"
	}
	direction := "ASC"
	if strings.EqualFold(filter.SortOrder, "desc") {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY t.%s %s", column, direction)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		task, err := scanTaskWithProject(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

// ListByProject returns the user's tasks within one project
func (s *TaskService) ListByProject(userID, projectID string) ([]models.Task, error) {
	if err := s.checkProjectOwnership(userID, projectID); err != nil {
		return nil, err
	}
	return s.List(userID, TaskFilter{ProjectID: projectID})
}

// GetByID returns a single owned task with its project summary
func (s *TaskService) GetByID(userID, taskID string) (*models.Task, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.user_id, t.project_id, t.title, t.description, t.status, t.priority, t.due_date, t.completed_at, t.created_at, t.updated_at,
		       p.name, p.color
		FROM tasks t
		LEFT JOIN projects p ON p.id = t.project_id
		WHERE t.id = ? AND t.user_id = ?
	`, taskID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query task: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to query task: %w", err)
		}
		return nil, &NotFoundError{Resource: "Task"}
	}
	return scanTaskWithProject(rows)
}

// Update applies a partial update. The transition into completed stamps
// completedAt and records a task_completed activity; any other status clears
// completedAt.
func (s *TaskService) Update(userID, taskID string, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.GetByID(userID, taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil && strings.TrimSpace(*input.Title) != "" {
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		if !models.ValidTaskPriority(*input.Priority) {
			return nil, &ValidationError{Message: "Invalid task priority"}
		}
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	} else if input.ClearDue {
		task.DueDate = nil
	}
	if input.ProjectID != nil {
		if *input.ProjectID == "" {
			task.ProjectID = nil
			task.Project = nil
		} else {
			if err := s.checkProjectOwnership(userID, *input.ProjectID); err != nil {
				return nil, err
			}
			task.ProjectID = input.ProjectID
		}
	}

	now := s.clock.Now().UTC()
	completedNow := false
	if input.Status != nil {
		if !models.ValidTaskStatus(*input.Status) {
			return nil, &ValidationError{Message: "Invalid task status"}
		}
		if *input.Status == models.TaskStatusCompleted && task.Status != models.TaskStatusCompleted {
			task.CompletedAt = &now
			completedNow = true
		} else if *input.Status != models.TaskStatusCompleted {
			task.CompletedAt = nil
		}
		task.Status = *input.Status
	}
	task.UpdatedAt = now

	_, err = s.db.Exec(`
		UPDATE tasks
		SET title = ?, description = ?, status = ?, priority = ?, due_date = ?, completed_at = ?, project_id = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, task.Title, task.Description, task.Status, task.Priority, task.DueDate, task.CompletedAt, task.ProjectID, task.UpdatedAt, taskID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if completedNow {
		s.activityService.RecordActivity(userID, models.ActivityTaskCompleted, 0)
	}

	return task, nil
}

// Delete removes an owned task
func (s *TaskService) Delete(userID, taskID string) error {
	res, err := s.db.Exec("DELETE FROM tasks WHERE id = ? AND user_id = ?", taskID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Resource: "Task"}
	}
	return nil
}

func (s *TaskService) checkProjectOwnership(userID, projectID string) error {
	var id string
	err := s.db.QueryRow("SELECT id FROM projects WHERE id = ? AND user_id = ?", projectID, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Resource: "Project"}
	}
	if err != nil {
		return fmt.Errorf("failed to check project ownership: %w", err)
	}
	return nil
}

func scanTaskWithProject(rows *sql.Rows) (*models.Task, error) {
	var t models.Task
	var projectID, description, projectName, projectColor sql.NullString
	var dueDate, completedAt sql.NullTime
	err := rows.Scan(&t.ID, &t.UserID, &projectID, &t.Title, &description, &t.Status, &t.Priority, &dueDate, &completedAt, &t.CreatedAt, &t.UpdatedAt, &projectName, &projectColor)
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	if description.Valid {
		t.Description = description.String
	}
	if projectID.Valid {
		t.ProjectID = &projectID.String
		if projectName.Valid {
			t.Project = &models.ProjectSummary{ID: projectID.String, Name: projectName.String, Color: projectColor.String}
		}
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	return &t, nil
}
