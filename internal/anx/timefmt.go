package anx

import (
	"fmt"
	"time"
)

// timestampLayout is the exact textual form the reading client writes and
// expects for create_time/update_time: ISO-8601 with millisecond precision
// and a literal Z suffix, e.g. "2024-07-19T10:00:00.000Z".
const timestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTime renders t in the catalog's timestamp format. The time is
// converted to UTC first; the sortable textual form only holds in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// ParseTime parses a catalog timestamp. The empty string parses to the zero
// time, tolerating rows seeded by other clients that left timestamps blank.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		// Some clients write full microsecond precision; accept it on read.
		t, err2 := time.Parse(time.RFC3339Nano, s)
		if err2 != nil {
			return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
		}
		return t.UTC(), nil
	}
	return t, nil
}
