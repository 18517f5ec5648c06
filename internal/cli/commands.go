package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tugapp/tug-cli/internal/activity"
	"github.com/tugapp/tug-cli/internal/api"
	"github.com/tugapp/tug-cli/internal/cache"
	"github.com/tugapp/tug-cli/internal/core"
	"github.com/tugapp/tug-cli/internal/logging"
	"github.com/tugapp/tug-cli/internal/output"
)

// Flags for the log/edit commands
var (
	actName     string
	actDuration int
	actDate     string
	actNotes    string
)

func init() {
	rootCmd.AddCommand(activitiesCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(streakCmd)
	rootCmd.AddCommand(indulgencesCmd)
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	for _, cmd := range []*cobra.Command{logCmd, editCmd} {
		cmd.Flags().StringVar(&actName, "name", "", "Activity name")
		cmd.Flags().IntVar(&actDuration, "duration", 0, "Duration in minutes")
		cmd.Flags().StringVar(&actDate, "date", "", "Activity date (YYYY-MM-DD, default today)")
		cmd.Flags().StringVar(&actNotes, "notes", "", "Free-form notes")
	}
}

// app wires together the long-lived service instances used by a command.
type app struct {
	svc   *activity.Service
	api   *api.TugAPI
	cache *cache.TieredCache
	log   *logging.Logger
}

func newApp() (*app, error) {
	cfg, err := core.LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(verbose || cfg.Verbose)
	if err != nil {
		return nil, err
	}

	tiered := cache.New(cfg.CachePath, log)
	_ = tiered.Initialize() // memory-only on failure, already logged

	client := api.NewClient(cfg.APIBaseURL, cfg.APIKey, log)
	tugAPI := api.NewTugAPI(client)

	return &app{
		svc:   activity.NewService(tugAPI, tiered, log),
		api:   tugAPI,
		cache: tiered,
		log:   log,
	}, nil
}

func (a *app) close() {
	_ = a.cache.Close()
	a.log.Sync()
}

// queryFromFlags resolves the window selection flags into a Query. Priority:
// --period, then explicit --start/--end, then the --timeframe window.
func queryFromFlags(now time.Time) (activity.Query, error) {
	q := activity.Query{Timeframe: timeframe}
	q.ValueID = valueID

	if period != "" {
		start, end, err := core.PeriodRange(period, now)
		if err != nil {
			return activity.Query{}, err
		}
		q.Start, q.End = &start, &end
		return q, nil
	}

	if startStr != "" || endStr != "" {
		if startStr != "" {
			start, err := core.ParseDate(startStr)
			if err != nil {
				return activity.Query{}, err
			}
			q.Start = &start
		}
		if endStr != "" {
			end, err := core.ParseDate(endStr)
			if err != nil {
				return activity.Query{}, err
			}
			q.End = &end
		}
		return q, nil
	}

	start, end, err := core.TimeframeRange(timeframe, now)
	if err != nil {
		return activity.Query{}, err
	}
	q.Start, q.End = &start, &end
	return q, nil
}

var activitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "List logged activities for a window",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		q, err := queryFromFlags(time.Now())
		if err != nil {
			return err
		}

		records, out := a.svc.Activities(context.Background(), q, forceRefresh)
		if out.Degraded {
			output.Degraded()
		}
		if jsonOut {
			output.PrintJSON(records)
			return nil
		}
		output.PrintActivities(records)
		return nil
	},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a new activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		rec, err := recordFromFlags()
		if err != nil {
			return err
		}

		created, err := a.svc.CreateActivity(context.Background(), rec)
		if err != nil {
			return fmt.Errorf("log activity: %w", err)
		}
		if jsonOut {
			output.PrintJSON(created)
			return nil
		}
		fmt.Printf("Logged %q (%d min) as %s\n", created.Name, created.DurationMinutes, created.ID)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Update an existing activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		rec, err := recordFromFlags()
		if err != nil {
			return err
		}

		updated, err := a.svc.UpdateActivity(context.Background(), args[0], rec)
		if err != nil {
			return fmt.Errorf("update activity: %w", err)
		}
		if jsonOut {
			output.PrintJSON(updated)
			return nil
		}
		fmt.Printf("Updated %s\n", updated.ID)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Delete an activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.svc.DeleteActivity(context.Background(), args[0]); err != nil {
			return fmt.Errorf("delete activity: %w", err)
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate activity statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		q, err := queryFromFlags(time.Now())
		if err != nil {
			return err
		}

		stats, out := a.svc.Statistics(context.Background(), q, forceRefresh)
		if out.Degraded {
			output.Degraded()
		}
		if jsonOut {
			output.PrintJSON(stats)
			return nil
		}
		output.PrintStatistics(stats)
		return nil
	},
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show combined progress for the current window",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		q, err := queryFromFlags(time.Now())
		if err != nil {
			return err
		}

		data, out := a.svc.Progress(context.Background(), q, forceRefresh)
		if out.Degraded {
			output.Degraded()
		}
		if jsonOut {
			output.PrintJSON(data)
			return nil
		}
		output.PrintProgress(data)
		return nil
	},
}

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show per-value insights for the current window",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := context.Background()
		now := time.Now()

		q, err := queryFromFlags(now)
		if err != nil {
			return err
		}

		data, out := a.svc.Insights(ctx, q, forceRefresh)
		if out.Degraded {
			output.Degraded()
		}

		values, err := a.api.ListValues(ctx)
		if err != nil {
			return fmt.Errorf("list values: %w", err)
		}

		insights := activity.BuildValueInsights(values, data, now)
		if jsonOut {
			output.PrintJSON(insights)
			return nil
		}
		output.PrintInsights(insights)
		return nil
	},
}

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show current and longest streaks for a value",
	RunE: func(cmd *cobra.Command, args []string) error {
		if valueID == "" {
			return fmt.Errorf("--value is required")
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		data, out := a.svc.Streak(context.Background(), valueID, forceRefresh)
		if out.Degraded {
			output.Degraded()
		}
		if jsonOut {
			output.PrintJSON(data)
			return nil
		}
		output.PrintStreak(data)
		return nil
	},
}

var indulgencesCmd = &cobra.Command{
	Use:   "indulgences",
	Short: "Summarize logged indulgences for a window",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		q, err := queryFromFlags(time.Now())
		if err != nil {
			return err
		}

		records, err := a.api.ListIndulgences(context.Background(), q.ActivityFilter)
		if err != nil {
			return fmt.Errorf("list indulgences: %w", err)
		}

		pattern := activity.SummarizeIndulgences(records)
		if jsonOut {
			output.PrintJSON(pattern)
			return nil
		}
		output.PrintIndulgencePattern(pattern)
		return nil
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty both cache tiers",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		a.cache.ClearAll(context.Background())
		fmt.Println("Cache cleared.")
		return nil
	},
}

func recordFromFlags() (api.ActivityRecord, error) {
	if valueID == "" {
		return api.ActivityRecord{}, fmt.Errorf("--value is required")
	}
	if actName == "" {
		return api.ActivityRecord{}, fmt.Errorf("--name is required")
	}
	if actDuration < 0 {
		return api.ActivityRecord{}, fmt.Errorf("--duration must be >= 0")
	}

	date := time.Now().UTC()
	if actDate != "" {
		parsed, err := core.ParseDate(actDate)
		if err != nil {
			return api.ActivityRecord{}, err
		}
		date = parsed
	}

	return api.ActivityRecord{
		ValueID:         valueID,
		Name:            actName,
		DurationMinutes: actDuration,
		Date:            date,
		Notes:           actNotes,
	}, nil
}
