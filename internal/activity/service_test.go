package activity

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/tugapp/tug-cli/internal/api"
	"github.com/tugapp/tug-cli/internal/cache"
	"github.com/tugapp/tug-cli/internal/core"
	"github.com/tugapp/tug-cli/internal/logging"
)

func newTestService(t *testing.T) (*Service, *api.InMemoryTransport) {
	t.Helper()
	transport := api.NewInMemoryTransport()
	tiered := cache.New(filepath.Join(t.TempDir(), "cache.db"), logging.Nop())
	if err := tiered.Initialize(); err != nil {
		t.Fatalf("initialize cache: %v", err)
	}
	t.Cleanup(func() { tiered.Close() })
	return NewService(api.NewTugAPI(transport), tiered, logging.Nop()), transport
}

func weekQuery() Query {
	start, end := day("2024-07-15"), day("2024-07-22")
	return Query{
		ActivityFilter: api.ActivityFilter{Start: &start, End: &end},
		Timeframe:      core.TimeframeWeekly,
	}
}

func seedWeek(transport *api.InMemoryTransport) {
	transport.SeedValues(
		api.Value{ID: "v1", Name: "Reading", Active: true},
		api.Value{ID: "v2", Name: "Running", Active: true},
	)
	transport.SeedActivities(
		api.ActivityRecord{ID: "a1", ValueID: "v1", Name: "Reading", DurationMinutes: 30, Date: day("2024-07-15")},
		api.ActivityRecord{ID: "a2", ValueID: "v1", Name: "Reading", DurationMinutes: 45, Date: day("2024-07-16")},
		api.ActivityRecord{ID: "a3", ValueID: "v2", Name: "Running", DurationMinutes: 20, Date: day("2024-07-16")},
	)
}

func TestActivitiesSecondReadIsCacheHit(t *testing.T) {
	ctx := context.Background()
	svc, transport := newTestService(t)
	seedWeek(transport)

	first, out := svc.Activities(ctx, weekQuery(), false)
	if out.FromCache || out.Degraded {
		t.Errorf("first read outcome = %+v", out)
	}
	if len(first) != 3 {
		t.Fatalf("first read returned %d records", len(first))
	}

	second, out := svc.Activities(ctx, weekQuery(), false)
	if !out.FromCache {
		t.Error("second read should be a cache hit")
	}
	if len(second) != 3 {
		t.Errorf("second read returned %d records", len(second))
	}
	if transport.RequestsFor("activities") != 1 {
		t.Errorf("remote calls = %d, want 1", transport.RequestsFor("activities"))
	}
}

func TestForceRefreshBypassesCache(t *testing.T) {
	ctx := context.Background()
	svc, transport := newTestService(t)
	seedWeek(transport)

	svc.Activities(ctx, weekQuery(), false)
	_, out := svc.Activities(ctx, weekQuery(), true)
	if out.FromCache {
		t.Error("forced refresh must not read the cache")
	}
	if transport.RequestsFor("activities") != 2 {
		t.Errorf("remote calls = %d, want 2", transport.RequestsFor("activities"))
	}
}

func TestMutationInvalidatesCachedReads(t *testing.T) {
	ctx := context.Background()
	svc, transport := newTestService(t)
	seedWeek(transport)

	before, _ := svc.Activities(ctx, weekQuery(), false)
	if len(before) != 3 {
		t.Fatalf("precondition: %d records", len(before))
	}

	_, err := svc.CreateActivity(ctx, api.ActivityRecord{
		ValueID: "v1", Name: "Reading", DurationMinutes: 15, Date: day("2024-07-17"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	after, out := svc.Activities(ctx, weekQuery(), false)
	if out.FromCache {
		t.Error("read after mutation must not be served from cache")
	}
	if len(after) != 4 {
		t.Errorf("read after mutation returned %d records, want 4", len(after))
	}
}

func TestFailedMutationLeavesCacheIntact(t *testing.T) {
	ctx := context.Background()
	svc, transport := newTestService(t)
	seedWeek(transport)

	svc.Activities(ctx, weekQuery(), false)

	transport.Fail = errors.New("backend down")
	if _, err := svc.CreateActivity(ctx, api.ActivityRecord{ValueID: "v1", Name: "x", Date: day("2024-07-17")}); err == nil {
		t.Fatal("expected create to propagate the remote error")
	}
	transport.Fail = nil

	_, out := svc.Activities(ctx, weekQuery(), false)
	if !out.FromCache {
		t.Error("failed mutation must not invalidate the cache")
	}
}

func TestStatisticsDegradeToZero(t *testing.T) {
	ctx := context.Background()
	svc, transport := newTestService(t)
	transport.Fail = errors.New("backend down")

	stats, out := svc.Statistics(ctx, weekQuery(), false)
	if !out.Degraded {
		t.Error("expected degraded outcome")
	}
	if stats != (api.Statistics{}) {
		t.Errorf("stats = %+v, want zero value", stats)
	}

	// Degraded results are not cached: recovery is visible immediately.
	transport.Fail = nil
	seedWeek(transport)
	stats, out = svc.Statistics(ctx, weekQuery(), false)
	if out.Degraded || out.FromCache {
		t.Errorf("post-recovery outcome = %+v", out)
	}
	if stats.TotalActivities != 3 {
		t.Errorf("TotalActivities = %d, want 3", stats.TotalActivities)
	}
}

func TestSummaryDegradeToEmpty(t *testing.T) {
	ctx := context.Background()
	svc, transport := newTestService(t)
	transport.Fail = errors.New("backend down")

	summary, out := svc.Summary(ctx, weekQuery(), false)
	if !out.Degraded {
		t.Error("expected degraded outcome")
	}
	if len(summary.Values) != 0 {
		t.Errorf("summary = %+v, want empty", summary)
	}
}

func TestProgressCombinesBothFetches(t *testing.T) {
	ctx := context.Background()
	svc, transport := newTestService(t)
	seedWeek(transport)

	data, out := svc.Progress(ctx, weekQuery(), false)
	if out.Degraded || out.FromCache {
		t.Errorf("outcome = %+v", out)
	}
	if data.Statistics.TotalActivities != 3 {
		t.Errorf("Statistics.TotalActivities = %d", data.Statistics.TotalActivities)
	}
	if len(data.Summary.Values) != 2 {
		t.Errorf("Summary entries = %d", len(data.Summary.Values))
	}
	if transport.RequestsFor("activities/statistics") != 1 || transport.RequestsFor("activities/summary") != 1 {
		t.Errorf("sub-fetch counts = %d/%d",
			transport.RequestsFor("activities/statistics"), transport.RequestsFor("activities/summary"))
	}

	// Second read hits the combined cache entry; no further sub-fetches.
	_, out = svc.Progress(ctx, weekQuery(), false)
	if !out.FromCache {
		t.Error("second progress read should hit the cache")
	}
	if transport.RequestsFor("activities/statistics") != 1 || transport.RequestsFor("activities/summary") != 1 {
		t.Error("cached progress read must not refetch")
	}
}

func TestProgressPartialFailureCachesNothing(t *testing.T) {
	ctx := context.Background()
	svc, transport := newTestService(t)
	seedWeek(transport)
	transport.FailEndpoints["activities/summary"] = errors.New("summary down")

	data, out := svc.Progress(ctx, weekQuery(), false)
	if !out.Degraded {
		t.Error("expected degraded outcome")
	}
	if len(data.Summary.Values) != 0 || data.Statistics.TotalActivities != 0 {
		t.Errorf("degraded progress must be empty, got %+v", data)
	}

	// Once the backend recovers, a fresh combined fetch happens — proving
	// no partially-combined entry was cached.
	delete(transport.FailEndpoints, "activities/summary")
	data, out = svc.Progress(ctx, weekQuery(), false)
	if out.FromCache || out.Degraded {
		t.Errorf("post-recovery outcome = %+v", out)
	}
	if data.Statistics.TotalActivities != 3 || len(data.Summary.Values) != 2 {
		t.Errorf("post-recovery progress = %+v", data)
	}
}

func TestInsightsGroupsActivitiesByValue(t *testing.T) {
	ctx := context.Background()
	svc, transport := newTestService(t)
	seedWeek(transport)

	data, out := svc.Insights(ctx, weekQuery(), false)
	if out.Degraded {
		t.Fatal("unexpected degraded outcome")
	}
	if len(data.ActivitiesByValue["v1"]) != 2 {
		t.Errorf("v1 group = %d records, want 2", len(data.ActivitiesByValue["v1"]))
	}
	if len(data.ActivitiesByValue["v2"]) != 1 {
		t.Errorf("v2 group = %d records, want 1", len(data.ActivitiesByValue["v2"]))
	}

	_, out = svc.Insights(ctx, weekQuery(), false)
	if !out.FromCache {
		t.Error("second insights read should hit the cache")
	}
}

func TestInsightsFallBackToProgressOnly(t *testing.T) {
	ctx := context.Background()
	svc, transport := newTestService(t)
	seedWeek(transport)
	transport.FailEndpoints["activities"] = errors.New("list down")

	data, out := svc.Insights(ctx, weekQuery(), false)
	if !out.Degraded {
		t.Error("expected degraded outcome")
	}
	if len(data.ActivitiesByValue) != 0 {
		t.Errorf("expected empty groups, got %v", data.ActivitiesByValue)
	}
	// The cheaper progress view still came through.
	if data.Progress.Statistics.TotalActivities != 3 {
		t.Errorf("fallback progress = %+v", data.Progress)
	}
}

func TestStreakThroughService(t *testing.T) {
	ctx := context.Background()
	svc, transport := newTestService(t)

	now := time.Now().UTC()
	transport.SeedActivities(
		api.ActivityRecord{ID: "a1", ValueID: "v1", Name: "Reading", DurationMinutes: 30, Date: now.AddDate(0, 0, -1)},
		api.ActivityRecord{ID: "a2", ValueID: "v1", Name: "Reading", DurationMinutes: 30, Date: now},
	)

	streak, out := svc.Streak(ctx, "v1", false)
	if out.Degraded {
		t.Fatal("unexpected degraded outcome")
	}
	if streak.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, want 2", streak.CurrentStreak)
	}
}

func TestQueryFor(t *testing.T) {
	now := time.Date(2024, 7, 17, 12, 0, 0, 0, time.UTC)
	q, err := QueryFor(core.TimeframeWeekly, now)
	if err != nil {
		t.Fatalf("QueryFor: %v", err)
	}
	if q.Timeframe != core.TimeframeWeekly {
		t.Errorf("Timeframe = %q", q.Timeframe)
	}
	if q.Start == nil || core.FormatDate(*q.Start) != "2024-07-15" {
		t.Errorf("Start = %v", q.Start)
	}
	if q.End == nil || core.FormatDate(*q.End) != "2024-07-22" {
		t.Errorf("End = %v", q.End)
	}

	if _, err := QueryFor("hourly", now); err == nil {
		t.Error("expected error for unknown timeframe")
	}
}
