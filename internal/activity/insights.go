package activity

import (
	"sort"
	"time"

	"github.com/tugapp/tug-cli/internal/api"
	"github.com/tugapp/tug-cli/internal/core"
)

// ValueInsight is one value's row in the insights view: time invested, how
// it compares to the community baseline, and the value's streaks.
type ValueInsight struct {
	ValueID          string     `json:"value_id"`
	ValueName        string     `json:"value_name"`
	Minutes          int        `json:"minutes"`
	CommunityAverage int        `json:"community_average"`
	DeltaVsCommunity int        `json:"delta_vs_community"`
	Streak           StreakData `json:"streak"`
}

// BuildValueInsights turns combined insight data into per-value rows for
// each active value, sorted by value name. The community baseline comes
// from the summary when present, falling back to the default.
func BuildValueInsights(values []api.Value, data InsightData, now time.Time) []ValueInsight {
	baselineByName := make(map[string]int)
	for _, entry := range data.Progress.Summary.Values {
		baselineByName[entry.Name] = entry.CommunityAvg
	}

	insights := make([]ValueInsight, 0, len(values))
	for _, v := range values {
		if !v.Active {
			continue
		}
		records := data.ActivitiesByValue[v.ID]

		minutes := 0
		for _, rec := range records {
			minutes += rec.DurationMinutes
		}

		baseline := baselineByName[v.Name]
		if baseline <= 0 {
			baseline = core.DefaultCommunityAverage
		}

		insights = append(insights, ValueInsight{
			ValueID:          v.ID,
			ValueName:        v.Name,
			Minutes:          minutes,
			CommunityAverage: baseline,
			DeltaVsCommunity: minutes - baseline,
			Streak:           CalculateStreak(v.ID, records, now),
		})
	}

	sort.Slice(insights, func(i, j int) bool { return insights[i].ValueName < insights[j].ValueName })
	return insights
}

// TriggerCount pairs an indulgence trigger with how often it occurred.
type TriggerCount struct {
	Trigger string `json:"trigger"`
	Count   int    `json:"count"`
}

// IndulgencePattern summarizes a set of indulgences for the insights view.
type IndulgencePattern struct {
	Total       int            `json:"total"`
	HighRisk    int            `json:"high_risk"`
	ByTimeOfDay map[string]int `json:"by_time_of_day"`
	TopTriggers []TriggerCount `json:"top_triggers"`
}

// SummarizeIndulgences aggregates indulgence records into counts by risk,
// time-of-day bucket, and the five most frequent triggers.
func SummarizeIndulgences(records []api.IndulgenceRecord) IndulgencePattern {
	pattern := IndulgencePattern{
		Total:       len(records),
		ByTimeOfDay: make(map[string]int),
	}

	triggerCounts := make(map[string]int)
	for _, rec := range records {
		if rec.IsHighRisk() {
			pattern.HighRisk++
		}
		pattern.ByTimeOfDay[rec.TimeOfDay()]++
		for _, trigger := range rec.Triggers {
			triggerCounts[trigger]++
		}
	}

	for trigger, count := range triggerCounts {
		pattern.TopTriggers = append(pattern.TopTriggers, TriggerCount{Trigger: trigger, Count: count})
	}
	sort.Slice(pattern.TopTriggers, func(i, j int) bool {
		if pattern.TopTriggers[i].Count != pattern.TopTriggers[j].Count {
			return pattern.TopTriggers[i].Count > pattern.TopTriggers[j].Count
		}
		return pattern.TopTriggers[i].Trigger < pattern.TopTriggers[j].Trigger
	})
	if len(pattern.TopTriggers) > 5 {
		pattern.TopTriggers = pattern.TopTriggers[:5]
	}

	return pattern
}
