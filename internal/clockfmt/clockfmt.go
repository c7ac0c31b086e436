// Package clockfmt formats signed second counts as wall-clock style strings
// such as "01:05", "1:02:05" and "-00:05".
package clockfmt

import (
	"math"
	"strconv"
)

// Zero is what an idle timer shows when it has no usable start instant.
const Zero = "00:00:00"

// Unknown is what a run line shows when its deadlines cannot be parsed.
const Unknown = "--:--"

// Clock renders sec as [h:]mm:ss. Hours are omitted when zero and a leading
// "-" marks negative input. Fractions are truncated after taking the
// magnitude, so Clock never fails for finite input.
func Clock(sec float64) string {
	if math.IsNaN(sec) || math.IsInf(sec, 0) {
		return Unknown
	}
	neg := sec < 0
	sec = math.Abs(sec)

	h := int64(math.Floor(sec / 3600))
	m := int64(math.Floor(math.Mod(sec, 3600) / 60))
	s := int64(math.Floor(math.Mod(sec, 60)))

	out := make([]byte, 0, 12)
	if neg {
		out = append(out, '-')
	}
	if h > 0 {
		out = strconv.AppendInt(out, h, 10)
		out = append(out, ':')
	}
	out = appendTwoDigits(out, m)
	out = append(out, ':')
	out = appendTwoDigits(out, s)
	return string(out)
}

// Seconds renders a whole number of seconds.
func Seconds(sec int64) string {
	return Clock(float64(sec))
}

func appendTwoDigits(b []byte, n int64) []byte {
	if n < 10 {
		b = append(b, '0')
	}
	return strconv.AppendInt(b, n, 10)
}
