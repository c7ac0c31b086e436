package board

import (
	"strconv"
	"strings"
	"time"

	"github.com/izzyreal/washboard/internal/clocksync"
)

// isoLayouts are the timestamp forms older pages embed instead of epoch
// milliseconds. Layouts without a zone are read in the caller's location.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// ParseStamp normalizes a dataset value to epoch milliseconds. It accepts a
// decimal number of milliseconds or an ISO-8601 timestamp; anything else,
// including the empty string, is absent.
func ParseStamp(raw string, loc *time.Location) clocksync.Stamp {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return clocksync.Stamp{}
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return clocksync.FromFloat(f)
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return clocksync.At(t.UnixMilli())
		}
	}
	return clocksync.Stamp{}
}
