package clocksync

import (
	"math"
	"time"
)

// Stamp is an epoch-millisecond instant that may be absent. The zero value
// is absent.
type Stamp struct {
	MS    int64
	Valid bool
}

// At returns a present stamp.
func At(ms int64) Stamp {
	return Stamp{MS: ms, Valid: true}
}

// FromFloat converts a decoded number to a stamp. NaN and infinities are
// treated as absent.
func FromFloat(f float64) Stamp {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Stamp{}
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return Stamp{}
	}
	return At(int64(math.Round(f)))
}

// FromTime converts t to a stamp; the zero time is absent.
func FromTime(t time.Time) Stamp {
	if t.IsZero() {
		return Stamp{}
	}
	return At(t.UnixMilli())
}

// Time returns the stamp as a time.Time, or the zero time when absent.
func (s Stamp) Time() time.Time {
	if !s.Valid {
		return time.Time{}
	}
	return time.UnixMilli(s.MS)
}

// Or returns s when present and fallback otherwise.
func (s Stamp) Or(fallback Stamp) Stamp {
	if s.Valid {
		return s
	}
	return fallback
}
