package record

import (
	"strings"
	"time"
)

// timeLayouts are tried in order when parsing raw timestamps.
// Exporters emit RFC3339 with or without fractional seconds,
// some drop the zone suffix entirely, and some truncate to
// minute precision.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseTime parses a raw timestamp string, returning nil when
// the value is empty or unparsable. It never returns an error:
// a bad timestamp means the record is excluded from time-scoped
// aggregates, not that aggregation fails.
func ParseTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	// A bare trailing Z with no offset is common; RFC3339
	// already accepts it, but normalize "+00:00" style suffixes
	// appended after Z by sloppy serializers.
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}

// NormalizeStatus canonicalizes a raw status value to a
// lowercase string. Empty or absent values become "unknown".
// Enum-like raw values are expected to already be rendered to
// their string form by the snapshot decoder.
func NormalizeStatus(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return StatusUnknown
	}
	return strings.ToLower(raw)
}

// ShortID truncates an ID for display, matching the 8-character
// prefix convention used for UUIDs.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// InYear reports whether a parsed timestamp falls in the target
// year. A nil timestamp is never in any year.
func InYear(t *time.Time, year int) bool {
	return t != nil && t.Year() == year
}
