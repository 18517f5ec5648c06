package api

import (
	"testing"
	"time"
)

func TestIndulgenceHighRisk(t *testing.T) {
	cases := []struct {
		name     string
		severity int
		state    int
		want     bool
	}{
		{"high severity", 4, 7, true},
		{"low emotional state", 2, 3, true},
		{"both", 5, 1, true},
		{"neither", 3, 4, false},
	}
	for _, tc := range cases {
		rec := IndulgenceRecord{SeverityAtTime: tc.severity, EmotionalState: tc.state}
		if got := rec.IsHighRisk(); got != tc.want {
			t.Errorf("%s: IsHighRisk = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIndulgenceTimeOfDay(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{5, TimeOfDayMorning},
		{11, TimeOfDayMorning},
		{12, TimeOfDayAfternoon},
		{16, TimeOfDayAfternoon},
		{17, TimeOfDayEvening},
		{21, TimeOfDayEvening},
		{22, TimeOfDayNight},
		{3, TimeOfDayNight},
	}
	for _, tc := range cases {
		rec := IndulgenceRecord{Date: time.Date(2024, 7, 15, tc.hour, 0, 0, 0, time.UTC)}
		if got := rec.TimeOfDay(); got != tc.want {
			t.Errorf("hour %d: TimeOfDay = %q, want %q", tc.hour, got, tc.want)
		}
	}
}
