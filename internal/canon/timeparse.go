package canon

import "time"

// Modification-time formats seen across mtp-tools versions and the candidate
// CLI. Naive timestamps are interpreted as UTC.
var timestampLayouts = []string{
	"20060102T150405",          // MTP compact ISO
	"2006-01-02T15:04:05",      // ISO 8601
	"2006-01-02 15:04:05",      // ISO 8601, space separated
	"Mon Jan 02 15:04:05 2006", // ctime
}

// ParseTimestamp parses a date/time string into a UTC Unix timestamp.
// Returns false when no known format matches.
func ParseTimestamp(s string) (int64, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.Unix(), true
		}
	}
	// Last resort: RFC 3339 with an explicit offset.
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Unix(), true
	}
	return 0, false
}
