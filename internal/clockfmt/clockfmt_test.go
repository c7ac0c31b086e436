package clockfmt

import (
	"math"
	"strings"
	"testing"
)

func TestClock(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{in: 0, want: "00:00"},
		{in: 5, want: "00:05"},
		{in: 65, want: "01:05"},
		{in: 599, want: "09:59"},
		{in: 3599, want: "59:59"},
		{in: 3600, want: "1:00:00"},
		{in: 3725, want: "1:02:05"},
		{in: 36000, want: "10:00:00"},
		{in: -5, want: "-00:05"},
		{in: -3725, want: "-1:02:05"},
		{in: 65.9, want: "01:05"},
		{in: -0.4, want: "-00:00"},
	}
	for _, tc := range cases {
		if got := Clock(tc.in); got != tc.want {
			t.Fatalf("Clock(%v): got %q want %q", tc.in, got, tc.want)
		}
	}
}

func TestClockSignSymmetry(t *testing.T) {
	for _, x := range []float64{1, 59, 60, 61, 3599, 3600, 86399, 123456} {
		if got, want := Clock(-x), "-"+Clock(x); got != want {
			t.Fatalf("Clock(-%v): got %q want %q", x, got, want)
		}
	}
}

func TestClockHoursFieldPresence(t *testing.T) {
	for _, x := range []float64{0, 1, 3599, 3600, 7201, -3599, -3600} {
		got := Clock(x)
		hasHours := strings.Count(got, ":") == 2
		if want := math.Abs(x) >= 3600; hasHours != want {
			t.Fatalf("Clock(%v)=%q hours present=%v want %v", x, got, hasHours, want)
		}
	}
}

func TestClockNonFinite(t *testing.T) {
	if got := Clock(math.NaN()); got != Unknown {
		t.Fatalf("NaN: got %q", got)
	}
	if got := Clock(math.Inf(-1)); got != Unknown {
		t.Fatalf("-Inf: got %q", got)
	}
}

func TestSeconds(t *testing.T) {
	if got := Seconds(-65); got != "-01:05" {
		t.Fatalf("Seconds(-65): got %q", got)
	}
}
