package main

import (
	"testing"
	"time"
)

func TestParseScheduleTime(t *testing.T) {
	loc := time.FixedZone("test", 2*3600)

	tests := []struct {
		in        string
		want      time.Time
		wantZoned bool
	}{
		{"2025-01-29T15:30", time.Date(2025, 1, 29, 15, 30, 0, 0, loc), false},
		{"2025-01-29T15:30:45", time.Date(2025, 1, 29, 15, 30, 45, 0, loc), false},
		{"2025-01-29 15:30:45", time.Date(2025, 1, 29, 15, 30, 45, 0, loc), false},
		{"2025-01-29T15:30:45.250", time.Date(2025, 1, 29, 15, 30, 45, 250000000, loc), false},
		{"2025-01-29T15", time.Date(2025, 1, 29, 15, 0, 0, 0, loc), false},
		{"20250129T1530", time.Date(2025, 1, 29, 15, 30, 0, 0, loc), false},
		{"20250129T153045", time.Date(2025, 1, 29, 15, 30, 45, 0, loc), false},
		{"2025-01-29T15:30Z", time.Date(2025, 1, 29, 15, 30, 0, 0, time.UTC), true},
		{"2025-01-29T15:30:00+05:00", time.Date(2025, 1, 29, 10, 30, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		got, zoned, err := parseScheduleTime(tt.in, loc)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tt.in, err)
		}
		if !got.Equal(tt.want) {
			t.Fatalf("%s: expected %v, got %v", tt.in, tt.want, got)
		}
		if zoned != tt.wantZoned {
			t.Fatalf("%s: expected zoned=%v", tt.in, tt.wantZoned)
		}
	}
}

func TestParseScheduleTimeRejects(t *testing.T) {
	for _, in := range []string{"", "2025-01-29", "15:30", "2025-13-01T10:00", "29/01/2025 15:30", "soon"} {
		if _, _, err := parseScheduleTime(in, time.UTC); err == nil {
			t.Fatalf("expected %q to be rejected", in)
		}
	}
}

func TestFormatScheduleTime(t *testing.T) {
	naive := time.Date(2030, 1, 1, 0, 0, 0, 0, time.Local)
	if got := formatScheduleTime(naive, false); got != "2030-01-01T00:00:00" {
		t.Fatalf("expected 2030-01-01T00:00:00, got %s", got)
	}

	frac := time.Date(2030, 1, 1, 0, 0, 1, 500000000, time.UTC)
	if got := formatScheduleTime(frac, false); got != "2030-01-01T00:00:01.500000" {
		t.Fatalf("expected microseconds, got %s", got)
	}

	zoned := time.Date(2030, 1, 1, 9, 0, 0, 0, time.FixedZone("", -5*3600))
	if got := formatScheduleTime(zoned, true); got != "2030-01-01T09:00:00-05:00" {
		t.Fatalf("expected offset, got %s", got)
	}
}
