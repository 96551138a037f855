// Package timeutil parses the timestamp formats the CRM API returns.
// All results are UTC; unparseable input is an error, never a zero time.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layouts accepted from the CRM backend, most common first. The API is
// inconsistent: some endpoints return RFC3339 with Z, some with numeric
// offsets, some date-only strings, and a few legacy ones epoch millis.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a CRM timestamp string into a UTC time.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	// Epoch milliseconds show up in a few legacy conversation payloads.
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil && ms > 0 {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// ParseOptional parses s if non-empty, returning nil for empty input.
func ParseOptional(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// MaxTime returns the later of a and b, treating nil as absent.
func MaxTime(a, b *time.Time) *time.Time {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if b.After(*a) {
		return b
	}
	return a
}
