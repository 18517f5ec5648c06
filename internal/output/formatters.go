// Package output provides output formatting utilities for the Tug CLI.
package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tugapp/tug-cli/internal/activity"
	"github.com/tugapp/tug-cli/internal/api"
	"github.com/tugapp/tug-cli/internal/core"
)

// PrintJSON prints a single item as formatted JSON.
func PrintJSON(item interface{}) {
	data, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

// PrintActivities renders activities one per line, oldest first.
func PrintActivities(records []api.ActivityRecord) {
	if len(records) == 0 {
		fmt.Println("No activities found.")
		return
	}
	for _, rec := range records {
		line := fmt.Sprintf("%s  %-20s %4d min", core.FormatDate(rec.Date), rec.Name, rec.DurationMinutes)
		if rec.Notes != "" {
			line += "  — " + rec.Notes
		}
		fmt.Println(line)
	}
}

// PrintStatistics renders aggregate statistics.
func PrintStatistics(stats api.Statistics) {
	fmt.Printf("Activities:       %d\n", stats.TotalActivities)
	fmt.Printf("Total time:       %d min (%.1f h)\n", stats.TotalDurationMinutes, stats.TotalDurationHours)
	fmt.Printf("Average duration: %.1f min\n", stats.AverageDurationMinutes)
}

// PrintProgress renders the combined progress view.
func PrintProgress(data activity.ProgressData) {
	fmt.Printf("Progress (%s)\n\n", data.Timeframe)
	PrintStatistics(data.Statistics)
	if len(data.Summary.Values) == 0 {
		return
	}
	fmt.Println()
	for _, entry := range data.Summary.Values {
		fmt.Printf("%-20s %4d min (community avg %d)\n", entry.Name, entry.Minutes, entry.CommunityAvg)
	}
}

// PrintInsights renders per-value insight rows.
func PrintInsights(insights []activity.ValueInsight) {
	if len(insights) == 0 {
		fmt.Println("No insights available.")
		return
	}
	for _, ins := range insights {
		sign := "+"
		if ins.DeltaVsCommunity < 0 {
			sign = ""
		}
		fmt.Printf("%-20s %4d min (%s%d vs community)  streak %d, best %d\n",
			ins.ValueName, ins.Minutes, sign, ins.DeltaVsCommunity,
			ins.Streak.CurrentStreak, ins.Streak.LongestStreak)
	}
}

// PrintStreak renders a value's streak data.
func PrintStreak(data activity.StreakData) {
	fmt.Printf("Current streak: %d day(s)\n", data.CurrentStreak)
	fmt.Printf("Longest streak: %d day(s)\n", data.LongestStreak)
	if data.LastActivityDate != nil {
		fmt.Printf("Last activity:  %s\n", core.FormatDate(*data.LastActivityDate))
	}
}

// PrintIndulgencePattern renders an indulgence pattern summary.
func PrintIndulgencePattern(pattern activity.IndulgencePattern) {
	fmt.Printf("Indulgences: %d (%d high-risk)\n", pattern.Total, pattern.HighRisk)
	if len(pattern.ByTimeOfDay) > 0 {
		fmt.Println("\nBy time of day:")
		for _, bucket := range []string{api.TimeOfDayMorning, api.TimeOfDayAfternoon, api.TimeOfDayEvening, api.TimeOfDayNight} {
			if n := pattern.ByTimeOfDay[bucket]; n > 0 {
				fmt.Printf("  %-10s %d\n", bucket, n)
			}
		}
	}
	if len(pattern.TopTriggers) > 0 {
		fmt.Println("\nTop triggers:")
		for _, tc := range pattern.TopTriggers {
			fmt.Printf("  %-15s %d\n", tc.Trigger, tc.Count)
		}
	}
}

// Degraded prints a notice that a result is an empty default after a failed
// remote fetch.
func Degraded() {
	fmt.Fprintln(os.Stderr, "Warning: backend unavailable; showing empty results.")
}
