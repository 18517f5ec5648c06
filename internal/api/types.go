// Package api provides the HTTP client and types for the Tug API.
package api

import (
	"context"
	"net/url"
	"time"
)

// Value is a user-defined personal priority (e.g. "Reading") tracked via
// logged activities.
type Value struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// ActivityRecord is a single logged activity. ID is empty before the record
// has been persisted by the backend.
type ActivityRecord struct {
	ID              string    `json:"id,omitempty"`
	ValueID         string    `json:"value_id"`
	Name            string    `json:"name"`
	DurationMinutes int       `json:"duration"`
	Date            time.Time `json:"date"`
	Notes           string    `json:"notes,omitempty"`
}

// IndulgenceRecord is the vice-mode analogue of an activity: a logged lapse
// against a tracked vice.
type IndulgenceRecord struct {
	ID              string    `json:"id,omitempty"`
	ViceID          string    `json:"vice_id"`
	UserID          string    `json:"user_id"`
	Date            time.Time `json:"date"`
	DurationMinutes *int      `json:"duration,omitempty"`
	SeverityAtTime  int       `json:"severity_at_time"`
	Triggers        []string  `json:"triggers,omitempty"`
	EmotionalState  int       `json:"emotional_state"`
}

// IsHighRisk reports whether this indulgence was logged in a high-risk
// state: high severity or a low emotional-state score.
func (r IndulgenceRecord) IsHighRisk() bool {
	return r.SeverityAtTime >= 4 || r.EmotionalState <= 3
}

// Time-of-day buckets for indulgence pattern analysis.
const (
	TimeOfDayMorning   = "morning"
	TimeOfDayAfternoon = "afternoon"
	TimeOfDayEvening   = "evening"
	TimeOfDayNight     = "night"
)

// TimeOfDay buckets the record's hour-of-day (UTC): morning 05-11,
// afternoon 12-16, evening 17-21, night otherwise.
func (r IndulgenceRecord) TimeOfDay() string {
	switch h := r.Date.UTC().Hour(); {
	case h >= 5 && h < 12:
		return TimeOfDayMorning
	case h >= 12 && h < 17:
		return TimeOfDayAfternoon
	case h >= 17 && h < 22:
		return TimeOfDayEvening
	default:
		return TimeOfDayNight
	}
}

// Statistics is the backend's aggregate view over a set of activities.
type Statistics struct {
	TotalActivities        int     `json:"total_activities"`
	TotalDurationMinutes   int     `json:"total_duration_minutes"`
	TotalDurationHours     float64 `json:"total_duration_hours"`
	AverageDurationMinutes float64 `json:"average_duration_minutes"`
}

// SummaryEntry is one value's share of an activity summary.
type SummaryEntry struct {
	Name         string `json:"name"`
	Minutes      int    `json:"minutes"`
	CommunityAvg int    `json:"community_avg"`
}

// Summary is the backend's per-value minutes summary.
type Summary struct {
	Values []SummaryEntry `json:"values"`
}

// ActivityFilter selects activities by value and/or date range. Dates are
// sent to the backend as YYYY-MM-DD calendar days; nil means unbounded.
type ActivityFilter struct {
	ValueID string
	Start   *time.Time
	End     *time.Time
}

// Transport is the low-level interface for making API requests. body and
// out, when non-nil, are JSON-encoded and -decoded respectively.
type Transport interface {
	Do(ctx context.Context, method, endpoint string, query url.Values, body, out any) error
}
