package services

import (
	"errors"
	"testing"
	"time"

	"taskmaster/internal/models"
)

func newFocusFixture(t *testing.T) (*FocusService, string) {
	t.Helper()
	db := setupTestDB(t)
	clock := setupTestClock(t)
	userID := createTestUser(t, db, clock, "focus@test.com")
	return NewFocusService(db, clock, NewActivityService(db, clock)), userID
}

func TestFocusService_StartSession(t *testing.T) {
	service, userID := newFocusFixture(t)

	session, err := service.StartSession(userID, 25, nil)
	if err != nil {
		t.Fatalf("Failed to start session: %v", err)
	}

	if session.Duration != 25 {
		t.Errorf("Expected duration 25, got %d", session.Duration)
	}
	if session.Completed {
		t.Error("New session should not be completed")
	}
	if session.EndTime != nil {
		t.Error("New session should have no end time")
	}
	if session.ECoinsEarned != 0 {
		t.Errorf("New session should not have earned coins, got %d", session.ECoinsEarned)
	}
}

func TestFocusService_StartSession_InvalidDuration(t *testing.T) {
	service, userID := newFocusFixture(t)

	for _, duration := range []int{0, -5} {
		_, err := service.StartSession(userID, duration, nil)
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("Expected ValidationError for duration %d, got %v", duration, err)
		}
	}
}

func TestFocusService_StartSession_SecondActiveRejected(t *testing.T) {
	service, userID := newFocusFixture(t)

	first, err := service.StartSession(userID, 25, nil)
	if err != nil {
		t.Fatalf("Failed to start first session: %v", err)
	}

	_, err = service.StartSession(userID, 50, nil)
	var conflictErr *ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("Expected ConflictError for second active session, got %v", err)
	}
	if conflictErr.Session == nil || conflictErr.Session.ID != first.ID {
		t.Error("Conflict should carry the already-active session")
	}
}

func TestFocusService_CompleteSession(t *testing.T) {
	service, userID := newFocusFixture(t)

	session, err := service.StartSession(userID, 25, nil)
	if err != nil {
		t.Fatalf("Failed to start session: %v", err)
	}

	completed, wallet, err := service.CompleteSession(userID, session.ID)
	if err != nil {
		t.Fatalf("Failed to complete session: %v", err)
	}

	if !completed.Completed {
		t.Error("Session should be marked completed")
	}
	if completed.EndTime == nil {
		t.Error("Completed session should have an end time")
	}
	if completed.ECoinsEarned != 5 {
		t.Errorf("Expected 5 e-coins for 25 minutes, got %d", completed.ECoinsEarned)
	}
	if wallet.ECoins != 5 || wallet.LifetimeEarned != 5 {
		t.Errorf("Expected wallet balance 5/5, got %d/%d", wallet.ECoins, wallet.LifetimeEarned)
	}
}

func TestFocusService_CompleteSession_RewardFromPlannedDuration(t *testing.T) {
	tests := []struct {
		duration int
		expected int
	}{
		{4, 0},
		{5, 1},
		{9, 1},
		{15, 3},
		{23, 4},
		{25, 5},
		{120, 24},
	}

	for _, tt := range tests {
		service, userID := newFocusFixture(t)

		session, err := service.StartSession(userID, tt.duration, nil)
		if err != nil {
			t.Fatalf("Failed to start %d-minute session: %v", tt.duration, err)
		}

		completed, _, err := service.CompleteSession(userID, session.ID)
		if err != nil {
			t.Fatalf("Failed to complete %d-minute session: %v", tt.duration, err)
		}
		if completed.ECoinsEarned != tt.expected {
			t.Errorf("Expected %d e-coins for %d minutes, got %d", tt.expected, tt.duration, completed.ECoinsEarned)
		}
	}
}

func TestFocusService_CompleteSession_RecordsFocusActivity(t *testing.T) {
	db := setupTestDB(t)
	clock := setupTestClock(t)
	userID := createTestUser(t, db, clock, "focusactivity@test.com")
	service := NewFocusService(db, clock, NewActivityService(db, clock))

	session, err := service.StartSession(userID, 15, nil)
	if err != nil {
		t.Fatalf("Failed to start session: %v", err)
	}
	if _, _, err := service.CompleteSession(userID, session.ID); err != nil {
		t.Fatalf("Failed to complete session: %v", err)
	}

	var count, duration int
	err = db.QueryRow(`
		SELECT activity_count, duration FROM user_activities
		WHERE user_id = ? AND activity_type = ?
	`, userID, models.ActivityFocusSession).Scan(&count, &duration)
	if err != nil {
		t.Fatalf("Expected a focus_session activity record: %v", err)
	}
	if count != 1 || duration != 15 {
		t.Errorf("Expected count 1 and duration 15, got %d and %d", count, duration)
	}
}

func TestFocusService_CompleteSession_Twice(t *testing.T) {
	service, userID := newFocusFixture(t)

	session, err := service.StartSession(userID, 25, nil)
	if err != nil {
		t.Fatalf("Failed to start session: %v", err)
	}
	if _, _, err := service.CompleteSession(userID, session.ID); err != nil {
		t.Fatalf("Failed to complete session: %v", err)
	}

	_, _, err = service.CompleteSession(userID, session.ID)
	var notFoundErr *NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Errorf("Expected NotFoundError on second completion, got %v", err)
	}

	// Double completion must not double the reward
	wallet, err := service.GetWallet(userID)
	if err != nil {
		t.Fatalf("Failed to get wallet: %v", err)
	}
	if wallet.ECoins != 5 {
		t.Errorf("Expected wallet balance 5 after single completion, got %d", wallet.ECoins)
	}
}

func TestFocusService_CompleteSession_AllowsNewSession(t *testing.T) {
	service, userID := newFocusFixture(t)

	session, err := service.StartSession(userID, 25, nil)
	if err != nil {
		t.Fatalf("Failed to start session: %v", err)
	}
	if _, _, err := service.CompleteSession(userID, session.ID); err != nil {
		t.Fatalf("Failed to complete session: %v", err)
	}

	if _, err := service.StartSession(userID, 50, nil); err != nil {
		t.Errorf("Expected to start a new session after completing the old one: %v", err)
	}
}

func TestFocusService_CancelSession(t *testing.T) {
	db := setupTestDB(t)
	clock := setupTestClock(t)
	userID := createTestUser(t, db, clock, "cancel@test.com")
	service := NewFocusService(db, clock, NewActivityService(db, clock))

	session, err := service.StartSession(userID, 25, nil)
	if err != nil {
		t.Fatalf("Failed to start session: %v", err)
	}

	if err := service.CancelSession(userID, session.ID); err != nil {
		t.Fatalf("Failed to cancel session: %v", err)
	}

	// Cancellation is a hard delete
	var rows int
	if err := db.QueryRow(`SELECT COUNT(*) FROM focus_sessions WHERE user_id = ?`, userID).Scan(&rows); err != nil {
		t.Fatalf("Failed to query sessions: %v", err)
	}
	if rows != 0 {
		t.Errorf("Expected cancelled session to be deleted, found %d rows", rows)
	}

	// No wallet credit
	wallet, err := service.GetWallet(userID)
	if err != nil {
		t.Fatalf("Failed to get wallet: %v", err)
	}
	if wallet.ECoins != 0 || wallet.LifetimeEarned != 0 {
		t.Errorf("Cancelled session must not credit the wallet, got %d/%d", wallet.ECoins, wallet.LifetimeEarned)
	}

	// No activity record
	if err := db.QueryRow(`SELECT COUNT(*) FROM user_activities WHERE user_id = ? AND activity_type = ?`,
		userID, models.ActivityFocusSession).Scan(&rows); err != nil {
		t.Fatalf("Failed to query activities: %v", err)
	}
	if rows != 0 {
		t.Errorf("Cancelled session must not record activity, found %d rows", rows)
	}

	// A new session can start immediately
	if _, err := service.StartSession(userID, 10, nil); err != nil {
		t.Errorf("Expected to start a new session after cancellation: %v", err)
	}
}

func TestFocusService_CancelSession_NotFound(t *testing.T) {
	service, userID := newFocusFixture(t)

	err := service.CancelSession(userID, "missing-session")
	var notFoundErr *NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Errorf("Expected NotFoundError, got %v", err)
	}
}

func TestFocusService_GetWallet_LazyCreation(t *testing.T) {
	service, userID := newFocusFixture(t)

	wallet, err := service.GetWallet(userID)
	if err != nil {
		t.Fatalf("Failed to get wallet: %v", err)
	}
	if wallet.ECoins != 0 || wallet.LifetimeEarned != 0 {
		t.Errorf("Expected zero-balance wallet, got %d/%d", wallet.ECoins, wallet.LifetimeEarned)
	}

	// A second read returns the same wallet row
	again, err := service.GetWallet(userID)
	if err != nil {
		t.Fatalf("Failed to get wallet again: %v", err)
	}
	if again.ID != wallet.ID {
		t.Error("Repeated reads should return the same wallet")
	}
}

func TestFocusService_Credit(t *testing.T) {
	service, userID := newFocusFixture(t)

	wallet, err := service.Credit(userID, 10)
	if err != nil {
		t.Fatalf("Failed to credit wallet: %v", err)
	}
	if wallet.ECoins != 10 || wallet.LifetimeEarned != 10 {
		t.Errorf("Expected 10/10 after credit, got %d/%d", wallet.ECoins, wallet.LifetimeEarned)
	}

	wallet, err = service.Credit(userID, 0)
	if err != nil {
		t.Fatalf("Zero credit should be accepted: %v", err)
	}
	if wallet.ECoins != 10 {
		t.Errorf("Zero credit should not change the balance, got %d", wallet.ECoins)
	}

	_, err = service.Credit(userID, -5)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("Expected ValidationError for negative credit, got %v", err)
	}
}

func TestFocusService_WalletAccumulatesAcrossSessions(t *testing.T) {
	service, userID := newFocusFixture(t)

	for _, duration := range []int{25, 15, 4} {
		session, err := service.StartSession(userID, duration, nil)
		if err != nil {
			t.Fatalf("Failed to start %d-minute session: %v", duration, err)
		}
		if _, _, err := service.CompleteSession(userID, session.ID); err != nil {
			t.Fatalf("Failed to complete %d-minute session: %v", duration, err)
		}
	}

	wallet, err := service.GetWallet(userID)
	if err != nil {
		t.Fatalf("Failed to get wallet: %v", err)
	}
	// 25/5 + 15/5 + 4/5 = 5 + 3 + 0
	if wallet.ECoins != 8 || wallet.LifetimeEarned != 8 {
		t.Errorf("Expected 8/8 across sessions, got %d/%d", wallet.ECoins, wallet.LifetimeEarned)
	}
}

func TestFocusService_GetSessions(t *testing.T) {
	db := setupTestDB(t)
	clock := setupTestClock(t)
	userID := createTestUser(t, db, clock, "sessions@test.com")
	activityService := NewActivityService(db, clock)
	service := NewFocusService(db, clock, activityService)
	taskService := NewTaskService(db, clock, activityService)

	task, err := taskService.Create(userID, CreateTaskInput{Title: "Write report"})
	if err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	first, err := service.StartSession(userID, 25, &task.ID)
	if err != nil {
		t.Fatalf("Failed to start session: %v", err)
	}
	if _, _, err := service.CompleteSession(userID, first.ID); err != nil {
		t.Fatalf("Failed to complete session: %v", err)
	}

	clock.Advance(time.Hour)
	second, err := service.StartSession(userID, 50, nil)
	if err != nil {
		t.Fatalf("Failed to start second session: %v", err)
	}

	sessions, err := service.GetSessions(userID)
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(sessions))
	}

	// Newest first
	if sessions[0].ID != second.ID {
		t.Error("Expected the newest session first")
	}

	// The older session carries the linked task's title
	if sessions[1].Task == nil || sessions[1].Task.Title != "Write report" {
		t.Error("Expected the session to include the linked task summary")
	}
}

func TestFocusService_SessionsIsolatedPerUser(t *testing.T) {
	db := setupTestDB(t)
	clock := setupTestClock(t)
	alice := createTestUser(t, db, clock, "alice@test.com")
	bob := createTestUser(t, db, clock, "bob@test.com")
	service := NewFocusService(db, clock, NewActivityService(db, clock))

	if _, err := service.StartSession(alice, 25, nil); err != nil {
		t.Fatalf("Failed to start alice's session: %v", err)
	}

	// One user's active session never blocks another's
	if _, err := service.StartSession(bob, 25, nil); err != nil {
		t.Errorf("Expected bob to start a session while alice's is active: %v", err)
	}
}
