package store

import (
	"database/sql"
	"strings"
	"time"
)

// tsLayout is how reservation timestamps are stored: local wall time to the
// second, without a zone.
const tsLayout = "2006-01-02T15:04:05"

var tsParseLayouts = []string{
	tsLayout,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

func formatTS(t time.Time) string {
	return t.In(time.Local).Format(tsLayout)
}

func parseTS(raw sql.NullString) (time.Time, bool) {
	if !raw.Valid {
		return time.Time{}, false
	}
	v := strings.TrimSpace(raw.String)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range tsParseLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
