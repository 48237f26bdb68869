package main

import (
	"errors"
	"strings"
	"time"
)

var errInvalidScheduleTime = errors.New("invalid schedule time")

// Layouts accepted for scheduleTime. Values without an offset are local time,
// matching what an HTML datetime-local input submits ("2025-01-29T15:30").
var naiveScheduleLayouts = []string{
	"2006-01-02T15",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"20060102T15",
	"20060102T1504",
	"20060102T150405",
}

var zonedScheduleLayouts = []string{
	"2006-01-02T15:04Z07:00",
	time.RFC3339Nano,
}

// parseScheduleTime parses an ISO-8601-like date-time in loc. zoned reports
// whether the value carried its own UTC offset.
func parseScheduleTime(value string, loc *time.Location) (t time.Time, zoned bool, err error) {
	value = strings.TrimSpace(value)
	if len(value) > 10 && value[10] == ' ' {
		value = value[:10] + "T" + value[11:]
	}
	for _, layout := range naiveScheduleLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, false, nil
		}
	}
	for _, layout := range zonedScheduleLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true, nil
		}
	}
	return time.Time{}, false, errInvalidScheduleTime
}

// formatScheduleTime renders t the way it is recorded in instructions.txt:
// seconds always present, microseconds only when non-zero, offset only when
// the value carried one.
func formatScheduleTime(t time.Time, zoned bool) string {
	layout := "2006-01-02T15:04:05"
	if t.Nanosecond() != 0 {
		layout += ".000000"
	}
	if zoned {
		layout += "-07:00"
	}
	return t.Format(layout)
}
