package models

import "time"

// Notification types
const (
	NotificationTaskPending   = "task_pending"
	NotificationTaskDueSoon   = "task_due_soon"
	NotificationTaskOverdue   = "task_overdue"
	NotificationTaskCompleted = "task_completed"
	NotificationSystem        = "system"
)

// Notification is a message shown to a user, usually about a task deadline
type Notification struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	TaskID            *string   `json:"taskId"`
	Message           string    `json:"message"`
	MotivationalQuote string    `json:"motivationalQuote,omitempty"`
	Type              string    `json:"type"`
	IsRead            bool      `json:"isRead"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`

	// Populated on list reads when the notification references a task
	Task *NotificationTask `json:"task,omitempty"`
}

// NotificationTask is the slim task shape embedded in notification responses
type NotificationTask struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Status   string     `json:"status"`
	Priority string     `json:"priority"`
	DueDate  *time.Time `json:"dueDate"`
}
