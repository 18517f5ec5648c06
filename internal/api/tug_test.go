package api

import (
	"context"
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestListActivitiesFiltering(t *testing.T) {
	ctx := context.Background()
	transport := NewInMemoryTransport()
	transport.SeedActivities(
		ActivityRecord{ID: "a1", ValueID: "v1", Name: "Reading", DurationMinutes: 30, Date: day("2024-07-15")},
		ActivityRecord{ID: "a2", ValueID: "v1", Name: "Reading", DurationMinutes: 45, Date: day("2024-07-16")},
		ActivityRecord{ID: "a3", ValueID: "v2", Name: "Running", DurationMinutes: 20, Date: day("2024-07-16")},
		ActivityRecord{ID: "a4", ValueID: "v1", Name: "Reading", DurationMinutes: 60, Date: day("2024-07-20")},
	)
	tugAPI := NewTugAPI(transport)

	start, end := day("2024-07-15"), day("2024-07-17")
	records, err := tugAPI.ListActivities(ctx, ActivityFilter{ValueID: "v1", Start: &start, End: &end})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "a1" || records[1].ID != "a2" {
		t.Errorf("records = %+v", records)
	}
}

func TestCreateAssignsID(t *testing.T) {
	ctx := context.Background()
	transport := NewInMemoryTransport()
	tugAPI := NewTugAPI(transport)

	created, err := tugAPI.CreateActivity(ctx, ActivityRecord{ValueID: "v1", Name: "Reading", DurationMinutes: 30, Date: day("2024-07-15")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Error("expected assigned ID")
	}

	records, err := tugAPI.ListActivities(ctx, ActivityFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].ID != created.ID {
		t.Errorf("records = %+v", records)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	transport := NewInMemoryTransport()
	tugAPI := NewTugAPI(transport)

	created, err := tugAPI.CreateActivity(ctx, ActivityRecord{ValueID: "v1", Name: "Reading", DurationMinutes: 30, Date: day("2024-07-15")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := tugAPI.UpdateActivity(ctx, created.ID, ActivityRecord{ValueID: "v1", Name: "Reading", DurationMinutes: 50, Date: day("2024-07-15")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.DurationMinutes != 50 || updated.ID != created.ID {
		t.Errorf("updated = %+v", updated)
	}

	if err := tugAPI.DeleteActivity(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	records, _ := tugAPI.ListActivities(ctx, ActivityFilter{})
	if len(records) != 0 {
		t.Errorf("expected no records after delete, got %d", len(records))
	}

	if err := tugAPI.DeleteActivity(ctx, "missing"); err == nil {
		t.Error("expected error deleting unknown activity")
	}
}

func TestStatisticsMath(t *testing.T) {
	ctx := context.Background()
	transport := NewInMemoryTransport()
	transport.SeedActivities(
		ActivityRecord{ID: "a1", ValueID: "v1", DurationMinutes: 30, Date: day("2024-07-15")},
		ActivityRecord{ID: "a2", ValueID: "v1", DurationMinutes: 90, Date: day("2024-07-16")},
	)
	tugAPI := NewTugAPI(transport)

	stats, err := tugAPI.Statistics(ctx, ActivityFilter{})
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.TotalActivities != 2 {
		t.Errorf("total = %d", stats.TotalActivities)
	}
	if stats.TotalDurationMinutes != 120 {
		t.Errorf("minutes = %d", stats.TotalDurationMinutes)
	}
	if stats.TotalDurationHours != 2 {
		t.Errorf("hours = %v", stats.TotalDurationHours)
	}
	if stats.AverageDurationMinutes != 60 {
		t.Errorf("average = %v", stats.AverageDurationMinutes)
	}
}

func TestSummaryCoversActiveValues(t *testing.T) {
	ctx := context.Background()
	transport := NewInMemoryTransport()
	transport.SeedValues(
		Value{ID: "v1", Name: "Reading", Active: true},
		Value{ID: "v2", Name: "Running", Active: true},
		Value{ID: "v3", Name: "Retired", Active: false},
	)
	transport.SeedActivities(
		ActivityRecord{ID: "a1", ValueID: "v1", DurationMinutes: 30, Date: day("2024-07-15")},
	)
	tugAPI := NewTugAPI(transport)

	summary, err := tugAPI.Summary(ctx, ActivityFilter{})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(summary.Values) != 2 {
		t.Fatalf("expected 2 summary entries, got %d", len(summary.Values))
	}
	byName := make(map[string]SummaryEntry)
	for _, entry := range summary.Values {
		byName[entry.Name] = entry
	}
	if byName["Reading"].Minutes != 30 {
		t.Errorf("Reading minutes = %d", byName["Reading"].Minutes)
	}
	// A value with no matching activities still gets a zero entry.
	if entry, ok := byName["Running"]; !ok || entry.Minutes != 0 {
		t.Errorf("Running entry = %+v, ok = %v", entry, ok)
	}
}

func TestRequestLog(t *testing.T) {
	ctx := context.Background()
	transport := NewInMemoryTransport()
	tugAPI := NewTugAPI(transport)

	tugAPI.ListActivities(ctx, ActivityFilter{})
	tugAPI.Statistics(ctx, ActivityFilter{})

	if transport.RequestsMade() != 2 {
		t.Errorf("RequestsMade = %d", transport.RequestsMade())
	}
	if transport.RequestsFor("activities/statistics") != 1 {
		t.Errorf("statistics requests = %d", transport.RequestsFor("activities/statistics"))
	}
}
