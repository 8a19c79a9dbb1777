package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"taskmaster/internal/database"
	"taskmaster/internal/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// defaultProjectColor is used when a project is created without one
const defaultProjectColor = "#3498db"

// ProjectService handles project CRUD
type ProjectService struct {
	db    *database.DB
	clock clockwork.Clock
}

// NewProjectService creates a new project service
func NewProjectService(db *database.DB, clock clockwork.Clock) *ProjectService {
	return &ProjectService{db: db, clock: clock}
}

// ProjectInput is the accepted shape for project creation and updates
type ProjectInput struct {
	Name        string
	Description string
	Color       string
}

// Create inserts a new project
func (s *ProjectService) Create(userID string, input ProjectInput) (*models.Project, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, &ValidationError{Message: "Project name is required"}
	}
	if input.Color == "" {
		input.Color = defaultProjectColor
	}

	now := s.clock.Now().UTC()
	project := &models.Project{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        input.Name,
		Description: input.Description,
		Color:       input.Color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.Exec(`
		INSERT INTO projects (id, user_id, name, description, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, project.ID, project.UserID, project.Name, project.Description, project.Color, project.CreatedAt, project.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// List returns the user's projects, newest first
func (s *ProjectService) List(userID string) ([]models.Project, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, name, description, color, created_at, updated_at
		FROM projects
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := make([]models.Project, 0)
	for rows.Next() {
		var p models.Project
		var description sql.NullString
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &description, &p.Color, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		if description.Valid {
			p.Description = description.String
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}

	return projects, nil
}

// GetByID returns a single owned project with its tasks
func (s *ProjectService) GetByID(userID, projectID string, taskService *TaskService) (*models.Project, error) {
	var p models.Project
	var description sql.NullString
	err := s.db.QueryRow(`
		SELECT id, user_id, name, description, color, created_at, updated_at
		FROM projects
		WHERE id = ? AND user_id = ?
	`, projectID, userID).Scan(&p.ID, &p.UserID, &p.Name, &description, &p.Color, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Resource: "Project"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query project: %w", err)
	}
	if description.Valid {
		p.Description = description.String
	}

	tasks, err := taskService.List(userID, TaskFilter{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	p.Tasks = tasks

	return &p, nil
}

// Update applies a partial update to an owned project
func (s *ProjectService) Update(userID, projectID string, input ProjectInput) (*models.Project, error) {
	var p models.Project
	var description sql.NullString
	err := s.db.QueryRow(`
		SELECT id, user_id, name, description, color, created_at, updated_at
		FROM projects
		WHERE id = ? AND user_id = ?
	`, projectID, userID).Scan(&p.ID, &p.UserID, &p.Name, &description, &p.Color, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Resource: "Project"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query project: %w", err)
	}
	if description.Valid {
		p.Description = description.String
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		p.Name = name
	}
	if input.Description != "" {
		p.Description = input.Description
	}
	if input.Color != "" {
		p.Color = input.Color
	}
	p.UpdatedAt = s.clock.Now().UTC()

	_, err = s.db.Exec(`
		UPDATE projects SET name = ?, description = ?, color = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, p.Name, p.Description, p.Color, p.UpdatedAt, projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return &p, nil
}

// Delete removes an owned project, detaching its tasks rather than deleting
// them
func (s *ProjectService) Delete(userID, projectID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE tasks SET project_id = NULL WHERE project_id = ? AND user_id = ?", projectID, userID); err != nil {
		return fmt.Errorf("failed to detach project tasks: %w", err)
	}

	res, err := tx.Exec("DELETE FROM projects WHERE id = ? AND user_id = ?", projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Resource: "Project"}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit project deletion: %w", err)
	}
	return nil
}
