package anx_test

import (
	"testing"
	"time"

	"anx-go/internal/anx"
)

func TestFormatTime(t *testing.T) {
	t.Run("produces the exact catalog form", func(t *testing.T) {
		ts := time.Date(2024, 7, 19, 10, 0, 0, 0, time.UTC)
		if got := anx.FormatTime(ts); got != "2024-07-19T10:00:00.000Z" {
			t.Errorf("FormatTime() = %q", got)
		}
	})

	t.Run("keeps millisecond precision", func(t *testing.T) {
		ts := time.Date(2024, 7, 19, 10, 0, 0, 123456789, time.UTC)
		if got := anx.FormatTime(ts); got != "2024-07-19T10:00:00.123Z" {
			t.Errorf("FormatTime() = %q", got)
		}
	})

	t.Run("converts to UTC first", func(t *testing.T) {
		loc := time.FixedZone("UTC+2", 2*60*60)
		ts := time.Date(2024, 7, 19, 12, 0, 0, 0, loc)
		if got := anx.FormatTime(ts); got != "2024-07-19T10:00:00.000Z" {
			t.Errorf("FormatTime() = %q", got)
		}
	})
}

func TestParseTime(t *testing.T) {
	t.Run("round-trips", func(t *testing.T) {
		ts := time.Date(2024, 7, 19, 10, 0, 0, 123000000, time.UTC)
		parsed, err := anx.ParseTime(anx.FormatTime(ts))
		if err != nil {
			t.Fatalf("ParseTime() error = %v", err)
		}
		if !parsed.Equal(ts) {
			t.Errorf("round-trip changed the time: %v -> %v", ts, parsed)
		}
	})

	t.Run("empty string is the zero time", func(t *testing.T) {
		parsed, err := anx.ParseTime("")
		if err != nil {
			t.Fatalf("ParseTime(\"\") error = %v", err)
		}
		if !parsed.IsZero() {
			t.Errorf("ParseTime(\"\") = %v, want zero", parsed)
		}
	})

	t.Run("accepts microsecond precision from other clients", func(t *testing.T) {
		parsed, err := anx.ParseTime("2024-07-19T10:00:00.123456Z")
		if err != nil {
			t.Fatalf("ParseTime() error = %v", err)
		}
		want := time.Date(2024, 7, 19, 10, 0, 0, 123456000, time.UTC)
		if !parsed.Equal(want) {
			t.Errorf("ParseTime() = %v, want %v", parsed, want)
		}
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		if _, err := anx.ParseTime("yesterday"); err == nil {
			t.Error("ParseTime(\"yesterday\") succeeded")
		}
	})
}
