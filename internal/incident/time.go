package incident

import (
	"strings"
	"time"
)

// timestampLayouts are tried in order. The primary export format is
// "2006-01-02 15:04:05"; the rest cover API responses and date-only
// legacy exports.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses raw timestamp text. Empty and unparseable text
// yields ok=false; the caller records the cell as absent rather than
// failing the batch.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
