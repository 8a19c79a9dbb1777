package services

import (
	"errors"
	"testing"
)

func TestProjectService_Create(t *testing.T) {
	db := setupTestDB(t)
	clock := setupTestClock(t)
	userID := createTestUser(t, db, clock, "projects@test.com")
	service := NewProjectService(db, clock)

	project, err := service.Create(userID, ProjectInput{Name: "Home renovation"})
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}
	if project.Color != defaultProjectColor {
		t.Errorf("Expected default color %s, got %s", defaultProjectColor, project.Color)
	}

	var validationErr *ValidationError
	if _, err := service.Create(userID, ProjectInput{Name: "  "}); !errors.As(err, &validationErr) {
		t.Errorf("Expected ValidationError for blank name, got %v", err)
	}
}

func TestProjectService_Update(t *testing.T) {
	db := setupTestDB(t)
	clock := setupTestClock(t)
	userID := createTestUser(t, db, clock, "update-project@test.com")
	service := NewProjectService(db, clock)

	project, err := service.Create(userID, ProjectInput{Name: "Old name", Description: "desc"})
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	updated, err := service.Update(userID, project.ID, ProjectInput{Name: "New name"})
	if err != nil {
		t.Fatalf("Failed to update project: %v", err)
	}
	if updated.Name != "New name" {
		t.Errorf("Expected updated name, got %q", updated.Name)
	}
	if updated.Description != "desc" {
		t.Errorf("Untouched fields should survive the update, got %q", updated.Description)
	}

	var notFoundErr *NotFoundError
	if _, err := service.Update(userID, "missing", ProjectInput{Name: "x"}); !errors.As(err, &notFoundErr) {
		t.Errorf("Expected NotFoundError for missing project, got %v", err)
	}
}

func TestProjectService_Delete_DetachesTasks(t *testing.T) {
	db := setupTestDB(t)
	clock := setupTestClock(t)
	userID := createTestUser(t, db, clock, "delete-project@test.com")
	projectService := NewProjectService(db, clock)
	taskService := NewTaskService(db, clock, NewActivityService(db, clock))

	project, err := projectService.Create(userID, ProjectInput{Name: "Doomed"})
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}
	task, err := taskService.Create(userID, CreateTaskInput{Title: "Survivor", ProjectID: &project.ID})
	if err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	if err := projectService.Delete(userID, project.ID); err != nil {
		t.Fatalf("Failed to delete project: %v", err)
	}

	// The task outlives its project, detached
	survivor, err := taskService.GetByID(userID, task.ID)
	if err != nil {
		t.Fatalf("Expected task to survive project deletion: %v", err)
	}
	if survivor.ProjectID != nil {
		t.Error("Expected surviving task to be detached")
	}
}

func TestProjectService_GetByID_IncludesTasks(t *testing.T) {
	db := setupTestDB(t)
	clock := setupTestClock(t)
	userID := createTestUser(t, db, clock, "project-tasks@test.com")
	projectService := NewProjectService(db, clock)
	taskService := NewTaskService(db, clock, NewActivityService(db, clock))

	project, err := projectService.Create(userID, ProjectInput{Name: "With tasks"})
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}
	if _, err := taskService.Create(userID, CreateTaskInput{Title: "First", ProjectID: &project.ID}); err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	if _, err := taskService.Create(userID, CreateTaskInput{Title: "Second", ProjectID: &project.ID}); err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	loaded, err := projectService.GetByID(userID, project.ID, taskService)
	if err != nil {
		t.Fatalf("Failed to load project: %v", err)
	}
	if len(loaded.Tasks) != 2 {
		t.Errorf("Expected 2 tasks on the project, got %d", len(loaded.Tasks))
	}
}
