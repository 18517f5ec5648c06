// Package activity orchestrates cache-or-fetch access to the Tug backend
// and derives streak, progress, and insight views from activity records.
package activity

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tugapp/tug-cli/internal/api"
	"github.com/tugapp/tug-cli/internal/cache"
	"github.com/tugapp/tug-cli/internal/core"
	"github.com/tugapp/tug-cli/internal/logging"
)

// Outcome describes how a read operation was satisfied. Degraded means the
// remote fetch failed and the result is an empty/zero default; read paths
// report this instead of returning an error so callers can still render.
type Outcome struct {
	FromCache bool
	Degraded  bool
}

// Query selects the data for a read operation: an activity filter plus the
// timeframe that drives cache TTL volatility and key derivation.
type Query struct {
	api.ActivityFilter
	Timeframe string
}

// QueryFor builds a Query covering the current window of a timeframe.
func QueryFor(timeframe string, now time.Time) (Query, error) {
	start, end, err := core.TimeframeRange(timeframe, now)
	if err != nil {
		return Query{}, err
	}
	return Query{
		ActivityFilter: api.ActivityFilter{Start: &start, End: &end},
		Timeframe:      timeframe,
	}, nil
}

// ProgressData is the combined statistics + summary view for one window.
// It is assembled from two concurrent fetches and cached as a single entry,
// so readers never observe a half-combined value.
type ProgressData struct {
	Timeframe  string         `json:"timeframe"`
	Statistics api.Statistics `json:"statistics"`
	Summary    api.Summary    `json:"summary"`
}

// InsightData extends ProgressData with raw activities grouped by value ID,
// feeding downstream insight generation.
type InsightData struct {
	Progress          ProgressData                    `json:"progress"`
	ActivitiesByValue map[string][]api.ActivityRecord `json:"activities_by_value"`
}

// Service is the aggregation layer between callers and the remote backend.
// All reads go through the two-tier cache; all mutations invalidate it.
type Service struct {
	api   *api.TugAPI
	cache *cache.TieredCache
	log   *logging.Logger
	now   func() time.Time
}

// NewService creates a Service. One long-lived instance should be shared by
// all callers; the Service itself is stateless apart from the cache.
func NewService(tugAPI *api.TugAPI, tiered *cache.TieredCache, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{
		api:   tugAPI,
		cache: tiered,
		log:   log,
		now:   time.Now,
	}
}

func keyOpts(q Query) cache.KeyOpts {
	return cache.KeyOpts{
		ValueID:   q.ValueID,
		Start:     q.Start,
		End:       q.End,
		Timeframe: q.Timeframe,
	}
}

// ttls maps a timeframe to its cache lifetimes. Daily data changes as the
// day progresses; weekly and monthly windows move slowly.
func ttls(timeframe string) (mem, disk time.Duration) {
	switch timeframe {
	case core.TimeframeWeekly, core.TimeframeMonthly:
		return core.SlowMemoryTTL, core.SlowDiskTTL
	default:
		return core.DailyMemoryTTL, core.DailyDiskTTL
	}
}

// Activities returns activities matching the query, from cache when
// possible. A remote failure degrades to an empty list.
func (s *Service) Activities(ctx context.Context, q Query, forceRefresh bool) ([]api.ActivityRecord, Outcome) {
	key := cache.Key(cache.KindActivities, keyOpts(q))

	if !forceRefresh {
		if records, ok := cache.Fetch[[]api.ActivityRecord](ctx, s.cache, key); ok {
			return records, Outcome{FromCache: true}
		}
	}

	records, err := s.api.ListActivities(ctx, q.ActivityFilter)
	if err != nil {
		s.log.Warn("activities fetch failed, returning empty", "error", err)
		return []api.ActivityRecord{}, Outcome{Degraded: true}
	}
	if records == nil {
		records = []api.ActivityRecord{}
	}

	mem, disk := ttls(q.Timeframe)
	s.cache.Set(ctx, key, records, mem, disk)
	return records, Outcome{}
}

// Statistics returns aggregate statistics for the query. A remote failure
// degrades to zeroed statistics.
func (s *Service) Statistics(ctx context.Context, q Query, forceRefresh bool) (api.Statistics, Outcome) {
	key := cache.Key(cache.KindStatistics, keyOpts(q))

	if !forceRefresh {
		if stats, ok := cache.Fetch[api.Statistics](ctx, s.cache, key); ok {
			return stats, Outcome{FromCache: true}
		}
	}

	stats, err := s.api.Statistics(ctx, q.ActivityFilter)
	if err != nil {
		s.log.Warn("statistics fetch failed, returning zeroes", "error", err)
		return api.Statistics{}, Outcome{Degraded: true}
	}

	mem, disk := ttls(q.Timeframe)
	s.cache.Set(ctx, key, stats, mem, disk)
	return stats, Outcome{}
}

// Summary returns the per-value minutes summary for the query. A remote
// failure degrades to an empty summary.
func (s *Service) Summary(ctx context.Context, q Query, forceRefresh bool) (api.Summary, Outcome) {
	key := cache.Key(cache.KindSummary, keyOpts(q))

	if !forceRefresh {
		if summary, ok := cache.Fetch[api.Summary](ctx, s.cache, key); ok {
			return summary, Outcome{FromCache: true}
		}
	}

	summary, err := s.api.Summary(ctx, q.ActivityFilter)
	if err != nil {
		s.log.Warn("summary fetch failed, returning empty", "error", err)
		return api.Summary{}, Outcome{Degraded: true}
	}

	mem, disk := ttls(q.Timeframe)
	s.cache.Set(ctx, key, summary, mem, disk)
	return summary, Outcome{}
}

// Progress returns the combined statistics + summary view for the query.
// On a cold cache the two sub-fetches run concurrently and the combined
// entry is cached only if both succeed; a failure of either degrades the
// whole call and caches nothing.
func (s *Service) Progress(ctx context.Context, q Query, forceRefresh bool) (ProgressData, Outcome) {
	key := cache.Key(cache.KindProgress, keyOpts(q))

	if !forceRefresh {
		if data, ok := cache.Fetch[ProgressData](ctx, s.cache, key); ok {
			return data, Outcome{FromCache: true}
		}
	}

	var stats api.Statistics
	var summary api.Summary

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.api.Statistics(gctx, q.ActivityFilter)
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = s.api.Summary(gctx, q.ActivityFilter)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Warn("progress fetch failed, returning empty", "error", err)
		return ProgressData{Timeframe: q.Timeframe}, Outcome{Degraded: true}
	}

	data := ProgressData{
		Timeframe:  q.Timeframe,
		Statistics: stats,
		Summary:    summary,
	}

	mem, disk := ttls(q.Timeframe)
	s.cache.Set(ctx, key, data, mem, disk)
	return data, Outcome{}
}

// Insights returns progress data enriched with raw activities grouped by
// value ID. The two fetches run concurrently. If the activity fetch fails
// the call falls back to the progress result with empty groups rather than
// failing outright; a degraded result is never cached.
func (s *Service) Insights(ctx context.Context, q Query, forceRefresh bool) (InsightData, Outcome) {
	key := cache.Key(cache.KindInsights, keyOpts(q))

	if !forceRefresh {
		if data, ok := cache.Fetch[InsightData](ctx, s.cache, key); ok {
			return data, Outcome{FromCache: true}
		}
	}

	var progress ProgressData
	var progressOut Outcome
	var records []api.ActivityRecord
	var recordsOut Outcome

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		progress, progressOut = s.Progress(gctx, q, forceRefresh)
		return nil
	})
	g.Go(func() error {
		records, recordsOut = s.Activities(gctx, q, forceRefresh)
		return nil
	})
	_ = g.Wait()

	data := InsightData{
		Progress:          progress,
		ActivitiesByValue: make(map[string][]api.ActivityRecord),
	}

	if progressOut.Degraded {
		return data, Outcome{Degraded: true}
	}
	if recordsOut.Degraded {
		// Fall back to the cheaper progress-only view.
		s.log.Warn("insight activity fetch failed, falling back to progress only")
		return data, Outcome{Degraded: true}
	}

	for _, rec := range records {
		data.ActivitiesByValue[rec.ValueID] = append(data.ActivitiesByValue[rec.ValueID], rec)
	}

	mem, disk := ttls(q.Timeframe)
	s.cache.Set(ctx, key, data, mem, disk)
	return data, Outcome{}
}

// Streak fetches the full activity history for a value and computes its
// streaks. Future-dated activities are ignored by the calculation.
func (s *Service) Streak(ctx context.Context, valueID string, forceRefresh bool) (StreakData, Outcome) {
	q := Query{ActivityFilter: api.ActivityFilter{ValueID: valueID}}
	records, out := s.Activities(ctx, q, forceRefresh)
	return CalculateStreak(valueID, records, s.now()), out
}

// CreateActivity persists a new activity. On success every cached aggregate
// view is invalidated: a mutation's blast radius is all derived data, not
// just the literal activity list.
func (s *Service) CreateActivity(ctx context.Context, rec api.ActivityRecord) (api.ActivityRecord, error) {
	created, err := s.api.CreateActivity(ctx, rec)
	if err != nil {
		return api.ActivityRecord{}, err
	}
	s.invalidateDerived(ctx)
	return created, nil
}

// UpdateActivity patches an existing activity and invalidates caches.
func (s *Service) UpdateActivity(ctx context.Context, id string, rec api.ActivityRecord) (api.ActivityRecord, error) {
	updated, err := s.api.UpdateActivity(ctx, id, rec)
	if err != nil {
		return api.ActivityRecord{}, err
	}
	s.invalidateDerived(ctx)
	return updated, nil
}

// DeleteActivity removes an activity and invalidates caches.
func (s *Service) DeleteActivity(ctx context.Context, id string) error {
	if err := s.api.DeleteActivity(ctx, id); err != nil {
		return err
	}
	s.invalidateDerived(ctx)
	return nil
}

func (s *Service) invalidateDerived(ctx context.Context) {
	s.cache.ClearPrefix(ctx, cache.TopPrefix())
	s.log.Debug("cache invalidated after mutation")
}
