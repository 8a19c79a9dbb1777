package services

import (
	"path/filepath"
	"testing"
	"time"

	"taskmaster/internal/database"

	"github.com/jonboulle/clockwork"
)

// setupTestDB creates a fresh SQLite database in a temp directory
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Initialize(); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}

	return db
}

// testTime is an arbitrary fixed instant the fake clocks start at
var testTime = time.Date(2025, 6, 5, 10, 0, 0, 0, time.UTC)

func setupTestClock(t *testing.T) clockwork.FakeClock {
	t.Helper()
	return clockwork.NewFakeClockAt(testTime)
}

// createTestUser inserts a user and returns its ID
func createTestUser(t *testing.T, db *database.DB, clock clockwork.Clock, email string) string {
	t.Helper()

	userService := NewUserService(db, clock)
	user, err := userService.Create("Test User", email, "hash")
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user.ID
}
