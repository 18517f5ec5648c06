package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tugapp/tug-cli/internal/core"
)

// TugAPI is the typed convenience layer over the Tug REST API.
type TugAPI struct {
	transport Transport
}

// NewTugAPI creates a high-level API client over the given transport.
func NewTugAPI(transport Transport) *TugAPI {
	return &TugAPI{transport: transport}
}

// queryFor renders an activity filter as query parameters. Dates are sent
// as calendar days to avoid timezone ambiguity at the transport boundary.
func queryFor(f ActivityFilter) url.Values {
	q := url.Values{}
	if f.ValueID != "" {
		q.Set("value_id", f.ValueID)
	}
	if f.Start != nil {
		q.Set("start_date", core.FormatDate(*f.Start))
	}
	if f.End != nil {
		q.Set("end_date", core.FormatDate(*f.End))
	}
	return q
}

// ListActivities fetches activities matching the filter.
func (a *TugAPI) ListActivities(ctx context.Context, f ActivityFilter) ([]ActivityRecord, error) {
	var records []ActivityRecord
	if err := a.transport.Do(ctx, http.MethodGet, "activities", queryFor(f), nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CreateActivity persists a new activity and returns it with its assigned ID.
func (a *TugAPI) CreateActivity(ctx context.Context, rec ActivityRecord) (ActivityRecord, error) {
	var created ActivityRecord
	if err := a.transport.Do(ctx, http.MethodPost, "activities", nil, rec, &created); err != nil {
		return ActivityRecord{}, err
	}
	return created, nil
}

// UpdateActivity patches an existing activity.
func (a *TugAPI) UpdateActivity(ctx context.Context, id string, rec ActivityRecord) (ActivityRecord, error) {
	var updated ActivityRecord
	endpoint := fmt.Sprintf("activities/%s", id)
	if err := a.transport.Do(ctx, http.MethodPatch, endpoint, nil, rec, &updated); err != nil {
		return ActivityRecord{}, err
	}
	return updated, nil
}

// DeleteActivity removes an activity by ID.
func (a *TugAPI) DeleteActivity(ctx context.Context, id string) error {
	endpoint := fmt.Sprintf("activities/%s", id)
	return a.transport.Do(ctx, http.MethodDelete, endpoint, nil, nil, nil)
}

// Statistics fetches aggregate statistics for the filter.
func (a *TugAPI) Statistics(ctx context.Context, f ActivityFilter) (Statistics, error) {
	var stats Statistics
	if err := a.transport.Do(ctx, http.MethodGet, "activities/statistics", queryFor(f), nil, &stats); err != nil {
		return Statistics{}, err
	}
	return stats, nil
}

// Summary fetches the per-value minutes summary for the filter.
func (a *TugAPI) Summary(ctx context.Context, f ActivityFilter) (Summary, error) {
	var summary Summary
	if err := a.transport.Do(ctx, http.MethodGet, "activities/summary", queryFor(f), nil, &summary); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

// ListValues fetches the user's tracked values.
func (a *TugAPI) ListValues(ctx context.Context) ([]Value, error) {
	var values []Value
	if err := a.transport.Do(ctx, http.MethodGet, "values", nil, nil, &values); err != nil {
		return nil, err
	}
	return values, nil
}

// ListIndulgences fetches indulgences within the filter's date range.
func (a *TugAPI) ListIndulgences(ctx context.Context, f ActivityFilter) ([]IndulgenceRecord, error) {
	var records []IndulgenceRecord
	if err := a.transport.Do(ctx, http.MethodGet, "indulgences", queryFor(f), nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}
