package geo

import (
	"strings"
	"time"
)

// ParseEpochMS converts a GPX timestamp to epoch milliseconds. Returns nil
// when the value is empty or unparseable.
func ParseEpochMS(value string) *int64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		// Some exporters omit the zone; treat those as UTC.
		t, err = time.Parse("2006-01-02T15:04:05", value)
		if err != nil {
			return nil
		}
		t = t.UTC()
	}

	ms := t.UnixMilli()
	return &ms
}

// FormatEpochMS renders epoch milliseconds as a UTC GPX timestamp.
func FormatEpochMS(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
