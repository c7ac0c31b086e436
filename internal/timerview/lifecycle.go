package timerview

import "math"

// State is the lifecycle of a run relative to its deadlines.
type State int

const (
	Running State = iota
	AwaitingPickup
	Overdue
)

// String is the badge text for the state.
func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case AwaitingPickup:
		return "awaiting pickup"
	case Overdue:
		return "overdue"
	default:
		return "unknown"
	}
}

// Tag is the machine-readable state stored on the badge.
func (s State) Tag() string {
	switch s {
	case Running:
		return "running"
	case AwaitingPickup:
		return "awaiting"
	case Overdue:
		return "overdue"
	default:
		return ""
	}
}

// Derive places now against a run's end and grace instants. It is a pure
// function: the same inputs always give the same state, and for fixed
// deadlines the state never moves backwards as now grows.
func Derive(nowMS, endMS, graceMS int64) State {
	switch {
	case nowMS < endMS:
		return Running
	case nowMS < graceMS:
		return AwaitingPickup
	default:
		return Overdue
	}
}

// RunLineSeconds derives the state together with the signed number of
// seconds shown next to it: time to end while running, time to grace while
// awaiting pickup, and a non-positive overdue count after that.
func RunLineSeconds(nowMS, endMS, graceMS int64) (State, int64) {
	state := Derive(nowMS, endMS, graceMS)
	switch state {
	case Running:
		return state, roundSeconds(endMS - nowMS)
	case AwaitingPickup:
		return state, roundSeconds(graceMS - nowMS)
	default:
		return state, -roundSeconds(nowMS - graceMS)
	}
}

// IdleSeconds is the whole seconds elapsed since sinceMS, never negative.
func IdleSeconds(nowMS, sinceMS int64) int64 {
	return max(0, roundSeconds(nowMS-sinceMS))
}

// roundSeconds rounds half up, matching how dashboards in browsers round.
func roundSeconds(ms int64) int64 {
	return int64(math.Floor(float64(ms)/1000 + 0.5))
}
