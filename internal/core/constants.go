// Package core provides shared constants, configuration, and date utilities
// for the Tug CLI.
package core

import "time"

// API configuration
const (
	DefaultAPIBaseURL = "https://api.tugapp.io"
	APIVersion        = "v1"
	APIKeyEnvVar      = "TUG_API_KEY"
)

// Date formats
const (
	DateFmt     = "2006-01-02"
	DatetimeFmt = "2006-01-02 15:04:05"
)

// Timeframes for progress and statistics aggregation.
const (
	TimeframeDaily   = "daily"
	TimeframeWeekly  = "weekly"
	TimeframeMonthly = "monthly"
)

// Cache TTLs by data volatility. Daily windows move as the day progresses,
// so they expire quickly; weekly/monthly windows move slowly.
const (
	DailyMemoryTTL = 5 * time.Minute
	DailyDiskTTL   = 1 * time.Hour
	SlowMemoryTTL  = 30 * time.Minute
	SlowDiskTTL    = 6 * time.Hour
)

// DefaultCommunityAverage is the fallback per-value community baseline in
// minutes, used when the backend does not supply one.
const DefaultCommunityAverage = 60

// Version is the current CLI version.
const Version = "0.3.0"
