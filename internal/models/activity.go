package models

import "time"

// Activity kinds recorded in the ledger
const (
	ActivityLogin         = "login"
	ActivityTaskCreated   = "task_created"
	ActivityTaskCompleted = "task_completed"
	ActivityFocusSession  = "focus_session"
)

// UserActivity is one aggregated unit of activity: how many times a kind
// occurred for a user on one calendar day. At most one row exists per
// (user, date, kind); repeats bump the count instead of inserting.
type UserActivity struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Date      string    `json:"date"` // YYYY-MM-DD, UTC calendar day
	Type      string    `json:"activityType"`
	Count     int       `json:"activityCount"`
	Duration  *int      `json:"duration"` // minutes, focus sessions only
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ValidActivityType reports whether t is a known activity kind
func ValidActivityType(t string) bool {
	switch t {
	case ActivityLogin, ActivityTaskCreated, ActivityTaskCompleted, ActivityFocusSession:
		return true
	}
	return false
}

// CalendarDay is one day's aggregated activity in the calendar response
type CalendarDay struct {
	Date       string                       `json:"date"`
	Count      int                          `json:"count"`
	Activities map[string]ActivityBreakdown `json:"activities"`
}

// ActivityBreakdown is the per-kind slice of a calendar day
type ActivityBreakdown struct {
	Count    int  `json:"count"`
	Duration *int `json:"duration"`
}

// Streak summarizes consecutive-day activity
type Streak struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// Calendar is the full calendar view response payload
type Calendar struct {
	CalendarData []CalendarDay `json:"calendarData"`
	Streak       Streak        `json:"streak"`
}
