package services

import (
	"database/sql"
	"fmt"

	"taskmaster/internal/database"
	"taskmaster/internal/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// NotificationService handles user notifications. Rows are created by the
// deadline sweep job and read, marked and deleted through the API.
type NotificationService struct {
	db    *database.DB
	clock clockwork.Clock
}

// NewNotificationService creates a new notification service
func NewNotificationService(db *database.DB, clock clockwork.Clock) *NotificationService {
	return &NotificationService{db: db, clock: clock}
}

// Create inserts a notification with a random motivational quote attached
func (s *NotificationService) Create(userID string, taskID *string, message, notificationType string) (*models.Notification, error) {
	now := s.clock.Now().UTC()
	n := &models.Notification{
		ID:                uuid.NewString(),
		UserID:            userID,
		TaskID:            taskID,
		Message:           message,
		MotivationalQuote: RandomQuote(),
		Type:              notificationType,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	_, err := s.db.Exec(`
		INSERT INTO notifications (id, user_id, task_id, message, motivational_quote, type, is_read, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)
	`, n.ID, n.UserID, n.TaskID, n.Message, n.MotivationalQuote, n.Type, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	if m := GetMetrics(); m != nil {
		m.NotificationsCreated.WithLabelValues(notificationType).Inc()
	}

	return n, nil
}

// List returns the user's notifications, newest first, with a summary of the
// referenced task when one exists
func (s *NotificationService) List(userID string) ([]models.Notification, error) {
	rows, err := s.db.Query(`
		SELECT n.id, n.user_id, n.task_id, n.message, n.motivational_quote, n.type, n.is_read, n.created_at, n.updated_at,
		       t.title, t.status, t.priority, t.due_date
		FROM notifications n
		LEFT JOIN tasks t ON t.id = n.task_id
		WHERE n.user_id = ?
		ORDER BY n.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		var taskID, quote, taskTitle, taskStatus, taskPriority sql.NullString
		var taskDue sql.NullTime
		if err := rows.Scan(&n.ID, &n.UserID, &taskID, &n.Message, &quote, &n.Type, &n.IsRead, &n.CreatedAt, &n.UpdatedAt,
			&taskTitle, &taskStatus, &taskPriority, &taskDue); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if quote.Valid {
			n.MotivationalQuote = quote.String
		}
		if taskID.Valid {
			n.TaskID = &taskID.String
			if taskTitle.Valid {
				task := &models.NotificationTask{
					ID:       taskID.String,
					Title:    taskTitle.String,
					Status:   taskStatus.String,
					Priority: taskPriority.String,
				}
				if taskDue.Valid {
					task.DueDate = &taskDue.Time
				}
				n.Task = task
			}
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead marks one owned notification as read
func (s *NotificationService) MarkRead(userID, notificationID string) error {
	res, err := s.db.Exec(`
		UPDATE notifications SET is_read = 1, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, s.clock.Now().UTC(), notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Resource: "Notification"}
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read
func (s *NotificationService) MarkAllRead(userID string) error {
	_, err := s.db.Exec(`
		UPDATE notifications SET is_read = 1, updated_at = ?
		WHERE user_id = ? AND is_read = 0
	`, s.clock.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return nil
}

// Delete removes one owned notification
func (s *NotificationService) Delete(userID, notificationID string) error {
	res, err := s.db.Exec("DELETE FROM notifications WHERE id = ? AND user_id = ?", notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Resource: "Notification"}
	}
	return nil
}
