package services

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"taskmaster/internal/database"
	"taskmaster/internal/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// ActivityService records aggregated per-day user activity and serves the
// streak calendar. Recording is best-effort: storage failures are logged and
// swallowed so the calling workflow (task creation, login, focus completion)
// never fails on streak bookkeeping.
type ActivityService struct {
	db       *database.DB
	clock    clockwork.Clock
	calCache *cache.Cache
	errLog   *rate.Limiter // throttles failure logging under repeated storage errors
}

// NewActivityService creates a new activity service
func NewActivityService(db *database.DB, clock clockwork.Clock) *ActivityService {
	return &ActivityService{
		db:       db,
		clock:    clock,
		calCache: cache.New(5*time.Minute, 10*time.Minute),
		errLog:   rate.NewLimiter(rate.Every(10*time.Second), 1),
	}
}

// RecordActivity records one occurrence of an activity kind for the user's
// current UTC calendar day. Repeats on the same day increment the existing
// row's count; the duration only accumulates for focus sessions. The upsert
// is a single statement so concurrent recording cannot lose updates or
// duplicate the (user, date, kind) row.
func (s *ActivityService) RecordActivity(userID, activityType string, durationMinutes int) {
	if !models.ValidActivityType(activityType) {
		log.Printf("⚠️ Ignoring unknown activity type %q for user %s", activityType, userID)
		return
	}

	now := s.clock.Now().UTC()
	today := now.Format(dayFormat)

	var duration sql.NullInt64
	if activityType == models.ActivityFocusSession && durationMinutes > 0 {
		duration = sql.NullInt64{Int64: int64(durationMinutes), Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO user_activities (id, user_id, date, activity_type, activity_count, duration, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?, ?)
		ON CONFLICT (user_id, date, activity_type) DO UPDATE SET
			activity_count = activity_count + 1,
			duration = CASE
				WHEN excluded.duration IS NULL THEN user_activities.duration
				ELSE COALESCE(user_activities.duration, 0) + excluded.duration
			END,
			updated_at = excluded.updated_at
	`, uuid.NewString(), userID, today, activityType, duration, now, now)
	if err != nil {
		if m := GetMetrics(); m != nil {
			m.ActivityFailures.Inc()
		}
		if s.errLog.Allow() {
			log.Printf("⚠️ Failed to record %s activity for user %s: %v", activityType, userID, err)
		}
		return
	}

	if m := GetMetrics(); m != nil {
		m.ActivitiesRecorded.WithLabelValues(activityType).Inc()
	}

	s.calCache.Delete(userID)
}

// GetCalendar returns the trailing year of aggregated activity plus the
// streak summary computed from the same record set. Responses are cached per
// user; RecordActivity invalidates the entry.
func (s *ActivityService) GetCalendar(userID string) (*models.Calendar, error) {
	if cached, found := s.calCache.Get(userID); found {
		if cal, ok := cached.(*models.Calendar); ok {
			return cal, nil
		}
	}

	now := s.clock.Now().UTC()
	end := now.Format(dayFormat)
	start := now.AddDate(-1, 0, 0).Format(dayFormat)

	rows, err := s.db.Query(`
		SELECT date, activity_type, activity_count, duration
		FROM user_activities
		WHERE user_id = ? AND date BETWEEN ? AND ?
		ORDER BY date ASC
	`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	calendarData := make([]models.CalendarDay, 0)
	activeDates := make([]string, 0)

	for rows.Next() {
		var date, activityType string
		var count int
		var duration sql.NullInt64
		if err := rows.Scan(&date, &activityType, &count, &duration); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}

		if len(calendarData) == 0 || calendarData[len(calendarData)-1].Date != date {
			calendarData = append(calendarData, models.CalendarDay{
				Date:       date,
				Activities: make(map[string]models.ActivityBreakdown),
			})
			activeDates = append(activeDates, date)
		}

		day := &calendarData[len(calendarData)-1]
		day.Count += count

		var durationPtr *int
		if duration.Valid {
			v := int(duration.Int64)
			durationPtr = &v
		}
		day.Activities[activityType] = models.ActivityBreakdown{Count: count, Duration: durationPtr}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}

	cal := &models.Calendar{
		CalendarData: calendarData,
		Streak:       CalculateStreak(activeDates, now),
	}

	s.calCache.Set(userID, cal, cache.DefaultExpiration)

	return cal, nil
}
