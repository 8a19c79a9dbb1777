package services

import (
	"sort"
	"time"

	"taskmaster/internal/models"
)

// dayFormat is the canonical calendar-day encoding (UTC date, no time part)
const dayFormat = "2006-01-02"

// CalculateStreak computes the current and longest consecutive-day streaks
// from the set of days on which a user had any activity. The result depends
// only on the distinct dates and the supplied "today", never on call time.
//
// The current streak counts backward from today, or from yesterday when
// today has no activity yet. If neither day is active the current streak
// is zero regardless of older history.
func CalculateStreak(activeDates []string, today time.Time) models.Streak {
	if len(activeDates) == 0 {
		return models.Streak{}
	}

	active := make(map[string]struct{}, len(activeDates))
	for _, d := range activeDates {
		active[d] = struct{}{}
	}

	day := time.Date(today.UTC().Year(), today.UTC().Month(), today.UTC().Day(), 0, 0, 0, 0, time.UTC)
	yesterday := day.AddDate(0, 0, -1)

	current := 0
	var anchor time.Time
	if _, ok := active[day.Format(dayFormat)]; ok {
		anchor = day
	} else if _, ok := active[yesterday.Format(dayFormat)]; ok {
		anchor = yesterday
	}

	if !anchor.IsZero() {
		current = 1
		for prev := anchor.AddDate(0, 0, -1); ; prev = prev.AddDate(0, 0, -1) {
			if _, ok := active[prev.Format(dayFormat)]; !ok {
				break
			}
			current++
		}
	}

	// Longest run over the entire history: sort distinct days and scan once.
	// YYYY-MM-DD sorts lexicographically in chronological order.
	days := make([]string, 0, len(active))
	for d := range active {
		days = append(days, d)
	}
	sort.Strings(days)

	longest := 0
	run := 0
	var prev time.Time
	for i, d := range days {
		parsed, err := time.Parse(dayFormat, d)
		if err != nil {
			continue
		}
		if i == 0 || !parsed.Equal(prev.AddDate(0, 0, 1)) {
			run = 1
		} else {
			run++
		}
		if run > longest {
			longest = run
		}
		prev = parsed
	}

	return models.Streak{Current: current, Longest: longest}
}
