//go:build !unix

package watcher

import "context"

// VisibilitySignals returns nil where the process cannot be stopped and
// continued; the poller then runs on its cadence alone.
func VisibilitySignals(context.Context) <-chan struct{} {
	return nil
}
