package models

import "time"

// FocusSession is one timed period of focused work. A session is active
// while Completed is false and EndTime is nil; at most one session per user
// may be active at a time.
type FocusSession struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	TaskID       *string    `json:"taskId"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      *time.Time `json:"endTime"`
	Duration     int        `json:"duration"` // planned duration in minutes
	Completed    bool       `json:"completed"`
	ECoinsEarned int        `json:"eCoinsEarned"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	// Populated on list reads when the session is linked to a task
	Task *TaskSummary `json:"task,omitempty"`
}

// TaskSummary is the slim task shape embedded in focus session responses
type TaskSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// UserWallet is a user's virtual-currency balance. LifetimeEarned only ever
// grows; there is no debit path.
type UserWallet struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	ECoins         int       `json:"eCoins"`
	LifetimeEarned int       `json:"lifetimeEarned"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
