package main

import (
	"fmt"
	"time"
)

// isoLayout matches JavaScript's Date.toISOString when formatted in UTC.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// zonelessLayouts are accepted from clients that send a local date-time
// (e.g. an HTML datetime-local input); they are read in the viewer's zone.
var zonelessLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseStoredDate parses an entry's stored date. ok=false means the value is
// unparsable and the entry must be left out of date-dependent computations.
func parseStoredDate(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	for _, layout := range zonelessLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeEntryDate validates a client-supplied date and returns it in the
// canonical stored form (UTC, millisecond precision).
func normalizeEntryDate(s string, loc *time.Location) (string, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Format(isoLayout), nil
	}
	for _, layout := range zonelessLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC().Format(isoLayout), nil
		}
	}
	return "", fmt.Errorf("%w: date must be ISO-8601, got %q", errValidation, s)
}

// parseBound parses a date filter bound. An empty string means no bound; a bare
// YYYY-MM-DD is midnight of that day in loc.
func parseBound(s string, loc *time.Location) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("%w: expected YYYY-MM-DD or RFC 3339, got %q", errValidation, s)
	}
	return &t, nil
}

// loadLocation resolves an IANA zone name, falling back when name is empty.
func loadLocation(name string, fallback *time.Location) (*time.Location, error) {
	if name == "" {
		return fallback, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown time zone %q", errValidation, name)
	}
	return loc, nil
}
