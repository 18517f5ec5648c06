package api

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tugapp/tug-cli/internal/core"
)

// InMemoryTransport is a lightweight simulation of the Tug backend,
// sufficient for unit testing the cache and aggregation layers. It records
// every request so tests can assert call counts.
type InMemoryTransport struct {
	mu          sync.Mutex
	activities  []ActivityRecord
	values      []Value
	indulgences []IndulgenceRecord
	entropy     *rand.Rand

	RequestLog []RequestLogEntry

	// Fail, when set, makes every request return that error. FailEndpoints
	// scopes failures to one exact endpoint.
	Fail          error
	FailEndpoints map[string]error
}

// RequestLogEntry records one request made to the transport.
type RequestLogEntry struct {
	Method   string
	Endpoint string
	Query    url.Values
}

// NewInMemoryTransport creates an empty in-memory backend.
func NewInMemoryTransport() *InMemoryTransport {
	return &InMemoryTransport{
		entropy:       rand.New(rand.NewSource(time.Now().UnixNano())),
		FailEndpoints: make(map[string]error),
	}
}

// SeedActivities adds activities to the in-memory store.
func (t *InMemoryTransport) SeedActivities(records ...ActivityRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.activities = append(t.activities, records...)
}

// SeedValues adds tracked values to the in-memory store.
func (t *InMemoryTransport) SeedValues(values ...Value) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values = append(t.values, values...)
}

// SeedIndulgences adds indulgences to the in-memory store.
func (t *InMemoryTransport) SeedIndulgences(records ...IndulgenceRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.indulgences = append(t.indulgences, records...)
}

// RequestsMade returns the total number of requests received.
func (t *InMemoryTransport) RequestsMade() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.RequestLog)
}

// RequestsFor returns how many requests hit endpoints with the given prefix.
func (t *InMemoryTransport) RequestsFor(prefix string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, entry := range t.RequestLog {
		if strings.HasPrefix(entry.Endpoint, prefix) {
			n++
		}
	}
	return n
}

// Reset clears stored data and the request log.
func (t *InMemoryTransport) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.activities = nil
	t.values = nil
	t.indulgences = nil
	t.RequestLog = nil
	t.Fail = nil
	t.FailEndpoints = make(map[string]error)
}

func (t *InMemoryTransport) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), t.entropy).String()
}

// Do simulates a backend request. Results are routed by method and endpoint
// and encoded through JSON so the transport behaves like the wire.
func (t *InMemoryTransport) Do(ctx context.Context, method, endpoint string, query url.Values, body, out any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.RequestLog = append(t.RequestLog, RequestLogEntry{Method: method, Endpoint: endpoint, Query: query})

	if t.Fail != nil {
		return t.Fail
	}
	if err, ok := t.FailEndpoints[endpoint]; ok {
		return err
	}

	switch {
	case method == "GET" && endpoint == "activities":
		return encode(t.filterActivities(query), out)

	case method == "POST" && endpoint == "activities":
		var rec ActivityRecord
		if err := reencode(body, &rec); err != nil {
			return err
		}
		rec.ID = t.newID()
		t.activities = append(t.activities, rec)
		return encode(rec, out)

	case method == "PATCH" && strings.HasPrefix(endpoint, "activities/"):
		id := strings.TrimPrefix(endpoint, "activities/")
		var rec ActivityRecord
		if err := reencode(body, &rec); err != nil {
			return err
		}
		for i := range t.activities {
			if t.activities[i].ID == id {
				rec.ID = id
				t.activities[i] = rec
				return encode(rec, out)
			}
		}
		return &APIError{StatusCode: 404, Message: "activity not found"}

	case method == "DELETE" && strings.HasPrefix(endpoint, "activities/"):
		id := strings.TrimPrefix(endpoint, "activities/")
		for i := range t.activities {
			if t.activities[i].ID == id {
				t.activities = append(t.activities[:i], t.activities[i+1:]...)
				return nil
			}
		}
		return &APIError{StatusCode: 404, Message: "activity not found"}

	case method == "GET" && endpoint == "activities/statistics":
		return encode(statisticsOf(t.filterActivities(query)), out)

	case method == "GET" && endpoint == "activities/summary":
		return encode(t.summaryOf(t.filterActivities(query)), out)

	case method == "GET" && endpoint == "values":
		return encode(t.values, out)

	case method == "GET" && endpoint == "indulgences":
		return encode(t.indulgences, out)
	}

	return &APIError{StatusCode: 404, Message: "unknown endpoint: " + endpoint}
}

// filterActivities applies value_id / start_date / end_date query params.
// The date window is half-open: start_date <= day < end_date.
func (t *InMemoryTransport) filterActivities(query url.Values) []ActivityRecord {
	out := make([]ActivityRecord, 0, len(t.activities))
	valueID := query.Get("value_id")
	startStr := query.Get("start_date")
	endStr := query.Get("end_date")

	for _, rec := range t.activities {
		if valueID != "" && rec.ValueID != valueID {
			continue
		}
		day := core.DateOnly(rec.Date)
		if startStr != "" {
			start, err := core.ParseDate(startStr)
			if err == nil && day.Before(start) {
				continue
			}
		}
		if endStr != "" {
			end, err := core.ParseDate(endStr)
			if err == nil && !day.Before(end) {
				continue
			}
		}
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func statisticsOf(records []ActivityRecord) Statistics {
	stats := Statistics{TotalActivities: len(records)}
	for _, rec := range records {
		stats.TotalDurationMinutes += rec.DurationMinutes
	}
	stats.TotalDurationHours = float64(stats.TotalDurationMinutes) / 60
	if len(records) > 0 {
		stats.AverageDurationMinutes = float64(stats.TotalDurationMinutes) / float64(len(records))
	}
	return stats
}

func (t *InMemoryTransport) summaryOf(records []ActivityRecord) Summary {
	minutesByValue := make(map[string]int)
	for _, rec := range records {
		minutesByValue[rec.ValueID] += rec.DurationMinutes
	}

	summary := Summary{Values: make([]SummaryEntry, 0, len(t.values))}
	for _, v := range t.values {
		if !v.Active {
			continue
		}
		summary.Values = append(summary.Values, SummaryEntry{
			Name:         v.Name,
			Minutes:      minutesByValue[v.ID],
			CommunityAvg: core.DefaultCommunityAverage,
		})
	}
	return summary
}

// encode round-trips v through JSON into out, mimicking wire serialization.
func encode(v, out any) error {
	if out == nil {
		return nil
	}
	return reencode(v, out)
}

func reencode(v, out any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
