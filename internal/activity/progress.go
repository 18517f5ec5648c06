package activity

import (
	"time"

	"github.com/tugapp/tug-cli/internal/api"
	"github.com/tugapp/tug-cli/internal/core"
)

// ProgressEntry is one value's aggregate minutes against the community
// baseline within a window.
type ProgressEntry struct {
	Minutes          int      `json:"minutes"`
	CommunityAverage int      `json:"community_average"`
	ValueIDs         []string `json:"value_ids"`
}

// CalculateProgressData sums activity minutes per active value within the
// half-open window [start, end), paired with the community baseline.
// Values with no matching activities get a zero entry rather than being
// omitted.
//
// The result is keyed by value name because downstream consumers index by
// display name. Two active values sharing a name accumulate into one entry;
// ValueIDs records which values contributed so callers can detect the
// collision.
func CalculateProgressData(values []api.Value, activities []api.ActivityRecord, start, end time.Time, baseline int) map[string]ProgressEntry {
	if baseline <= 0 {
		baseline = core.DefaultCommunityAverage
	}

	minutesByValueID := make(map[string]int)
	for _, rec := range activities {
		if rec.Date.Before(start) || !rec.Date.Before(end) {
			continue
		}
		minutesByValueID[rec.ValueID] += rec.DurationMinutes
	}

	result := make(map[string]ProgressEntry)
	for _, v := range values {
		if !v.Active {
			continue
		}
		entry := result[v.Name]
		entry.Minutes += minutesByValueID[v.ID]
		entry.CommunityAverage = baseline
		entry.ValueIDs = append(entry.ValueIDs, v.ID)
		result[v.Name] = entry
	}
	return result
}
