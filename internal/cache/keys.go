package cache

import (
	"strings"
	"time"

	"github.com/tugapp/tug-cli/internal/core"
)

// Kind identifies the family of cached data a key belongs to. Every key
// starts with the kind's prefix, which is what makes prefix invalidation
// able to target one family or, via TopPrefix, all of them at once.
type Kind string

const (
	KindActivities Kind = "activities"
	KindStatistics Kind = "statistics"
	KindSummary    Kind = "summary"
	KindProgress   Kind = "progress"
	KindInsights   Kind = "insights"
)

// topPrefix is shared by every derived key so a single ClearPrefix call can
// invalidate all aggregate views after a mutation.
const topPrefix = "tug"

// KeyOpts are the filter parameters folded into a cache key. Zero-valued
// fields are omitted from the key entirely, so a filter with and without a
// value ID derive different, unambiguous keys.
type KeyOpts struct {
	ValueID   string
	Start     *time.Time
	End       *time.Time
	Timeframe string
}

// Key derives the deterministic cache key for a logical query. Parameters
// are appended in a fixed order (value, start, end, timeframe) and dates
// are truncated to UTC calendar days, so two calls within the same day for
// the same filter always hit the same key.
//
// No validation is performed: an inverted date range derives a key like any
// other and simply never matches a sensible query's key.
func Key(kind Kind, opts KeyOpts) string {
	parts := []string{topPrefix, string(kind)}
	if opts.ValueID != "" {
		parts = append(parts, "value="+opts.ValueID)
	}
	if opts.Start != nil {
		parts = append(parts, "start="+core.FormatDate(*opts.Start))
	}
	if opts.End != nil {
		parts = append(parts, "end="+core.FormatDate(*opts.End))
	}
	if opts.Timeframe != "" {
		parts = append(parts, "tf="+opts.Timeframe)
	}
	return strings.Join(parts, "_")
}

// KindPrefix returns the prefix covering every key of the given kind.
func KindPrefix(kind Kind) string {
	return topPrefix + "_" + string(kind)
}

// TopPrefix returns the prefix covering every key this package derives.
func TopPrefix() string {
	return topPrefix
}
