package services

import (
	"errors"
	"testing"

	"taskmaster/internal/models"
)

func TestNotificationService_CreateAndList(t *testing.T) {
	db := setupTestDB(t)
	clock := setupTestClock(t)
	userID := createTestUser(t, db, clock, "notify@test.com")
	service := NewNotificationService(db, clock)
	taskService := NewTaskService(db, clock, NewActivityService(db, clock))

	task, err := taskService.Create(userID, CreateTaskInput{Title: "Ship release"})
	if err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	created, err := service.Create(userID, &task.ID, `Your task "Ship release" is pending.`, models.NotificationTaskPending)
	if err != nil {
		t.Fatalf("Failed to create notification: %v", err)
	}
	if created.MotivationalQuote == "" {
		t.Error("Expected a motivational quote to be attached")
	}
	if created.IsRead {
		t.Error("New notification should be unread")
	}

	list, err := service.List(userID)
	if err != nil {
		t.Fatalf("Failed to list notifications: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(list))
	}
	if list[0].Task == nil || list[0].Task.Title != "Ship release" {
		t.Error("Expected the notification to embed the task summary")
	}
}

func TestNotificationService_MarkReadAndDelete(t *testing.T) {
	db := setupTestDB(t)
	clock := setupTestClock(t)
	userID := createTestUser(t, db, clock, "markread@test.com")
	service := NewNotificationService(db, clock)

	first, err := service.Create(userID, nil, "one", models.NotificationSystem)
	if err != nil {
		t.Fatalf("Failed to create notification: %v", err)
	}
	second, err := service.Create(userID, nil, "two", models.NotificationSystem)
	if err != nil {
		t.Fatalf("Failed to create notification: %v", err)
	}

	if err := service.MarkRead(userID, first.ID); err != nil {
		t.Fatalf("Failed to mark notification read: %v", err)
	}

	var unread int
	if err := db.QueryRow(`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`, userID).Scan(&unread); err != nil {
		t.Fatalf("Failed to count unread: %v", err)
	}
	if unread != 1 {
		t.Errorf("Expected 1 unread notification, got %d", unread)
	}

	if err := service.MarkAllRead(userID); err != nil {
		t.Fatalf("Failed to mark all read: %v", err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`, userID).Scan(&unread); err != nil {
		t.Fatalf("Failed to count unread: %v", err)
	}
	if unread != 0 {
		t.Errorf("Expected 0 unread after mark-all, got %d", unread)
	}

	if err := service.Delete(userID, second.ID); err != nil {
		t.Fatalf("Failed to delete notification: %v", err)
	}

	var notFoundErr *NotFoundError
	if err := service.Delete(userID, second.ID); !errors.As(err, &notFoundErr) {
		t.Errorf("Expected NotFoundError on second delete, got %v", err)
	}
}

func TestNotificationService_OwnershipIsolation(t *testing.T) {
	db := setupTestDB(t)
	clock := setupTestClock(t)
	alice := createTestUser(t, db, clock, "alice-notify@test.com")
	bob := createTestUser(t, db, clock, "bob-notify@test.com")
	service := NewNotificationService(db, clock)

	n, err := service.Create(alice, nil, "private", models.NotificationSystem)
	if err != nil {
		t.Fatalf("Failed to create notification: %v", err)
	}

	var notFoundErr *NotFoundError
	if err := service.MarkRead(bob, n.ID); !errors.As(err, &notFoundErr) {
		t.Errorf("Expected NotFoundError marking another user's notification, got %v", err)
	}
	if err := service.Delete(bob, n.ID); !errors.As(err, &notFoundErr) {
		t.Errorf("Expected NotFoundError deleting another user's notification, got %v", err)
	}
}
