package services

import (
	"errors"
	"testing"
)

func TestUserService_Create(t *testing.T) {
	db := setupTestDB(t)
	clock := setupTestClock(t)
	service := NewUserService(db, clock)

	user, err := service.Create("Alice", "  Alice@Example.COM ", "hash")
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Expected normalized email, got %q", user.Email)
	}
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	clock := setupTestClock(t)
	service := NewUserService(db, clock)

	if _, err := service.Create("Alice", "dup@example.com", "hash"); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	_, err := service.Create("Imposter", "DUP@example.com", "hash")
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("Expected ValidationError for duplicate email, got %v", err)
	}
}

func TestUserService_GetByEmail_Missing(t *testing.T) {
	db := setupTestDB(t)
	clock := setupTestClock(t)
	service := NewUserService(db, clock)

	user, err := service.GetByEmail("ghost@example.com")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if user != nil {
		t.Error("Expected nil user for unknown email")
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	clock := setupTestClock(t)
	service := NewUserService(db, clock)

	user, err := service.Create("Alice", "profile@example.com", "hash")
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	updated, err := service.UpdateProfile(user.ID, "Alicia", "", "")
	if err != nil {
		t.Fatalf("Failed to update profile: %v", err)
	}
	if updated.Name != "Alicia" {
		t.Errorf("Expected updated name, got %q", updated.Name)
	}
	if updated.Email != "profile@example.com" {
		t.Errorf("Blank email should leave the old one, got %q", updated.Email)
	}
	if updated.PasswordHash != "hash" {
		t.Error("Blank password should leave the old hash")
	}
}

func TestUserService_TouchLastLogin(t *testing.T) {
	db := setupTestDB(t)
	clock := setupTestClock(t)
	service := NewUserService(db, clock)

	user, err := service.Create("Alice", "login@example.com", "hash")
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if user.LastLoginAt != nil {
		t.Error("New user should have no last login")
	}

	if err := service.TouchLastLogin(user.ID); err != nil {
		t.Fatalf("Failed to touch last login: %v", err)
	}

	reloaded, err := service.GetByID(user.ID)
	if err != nil {
		t.Fatalf("Failed to reload user: %v", err)
	}
	if reloaded.LastLoginAt == nil {
		t.Error("Expected last login to be stamped")
	}
}
