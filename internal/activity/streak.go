package activity

import (
	"sort"
	"time"

	"github.com/tugapp/tug-cli/internal/api"
	"github.com/tugapp/tug-cli/internal/core"
)

// StreakData is the derived streak view for one value. It is recomputed
// from activity records on every call and always replaced wholesale.
type StreakData struct {
	CurrentStreak    int         `json:"current_streak"`
	LongestStreak    int         `json:"longest_streak"`
	LastActivityDate *time.Time  `json:"last_activity_date,omitempty"`
	StreakDates      []time.Time `json:"streak_dates"`
}

// CalculateStreak computes current and longest consecutive-day streaks for
// valueID from the given activities, relative to now.
//
// Activities are projected onto UTC calendar days; multiple activities on
// one day count once. The current streak only exists if the most recent
// activity day is today or yesterday — any gap at the head breaks it, even
// when older streaks exist. The longest streak considers the whole history.
// Days after today are ignored so a future-dated anomaly cannot inflate the
// current streak.
func CalculateStreak(valueID string, activities []api.ActivityRecord, now time.Time) StreakData {
	today := core.DateOnly(now)

	daySet := make(map[time.Time]struct{})
	for _, rec := range activities {
		if rec.ValueID != valueID {
			continue
		}
		day := core.DateOnly(rec.Date)
		if day.After(today) {
			continue
		}
		daySet[day] = struct{}{}
	}

	if len(daySet) == 0 {
		return StreakData{StreakDates: []time.Time{}}
	}

	days := make([]time.Time, 0, len(daySet))
	for day := range daySet {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	last := days[len(days)-1]

	// Current streak: anchored at the head, walking backward day by day.
	current := 0
	if last.Equal(today) || last.Equal(today.AddDate(0, 0, -1)) {
		current = 1
		for i := len(days) - 2; i >= 0; i-- {
			if days[i].Equal(days[i+1].AddDate(0, 0, -1)) {
				current++
			} else {
				break
			}
		}
	}

	// Longest streak: longest run of consecutive days anywhere in history.
	longest := 1
	run := 1
	for i := 1; i < len(days); i++ {
		if days[i].Equal(days[i-1].AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	return StreakData{
		CurrentStreak:    current,
		LongestStreak:    longest,
		LastActivityDate: &last,
		StreakDates:      days,
	}
}
