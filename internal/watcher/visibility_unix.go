//go:build unix

package watcher

import (
	"context"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// VisibilitySignals delivers a value each time the process is continued
// after a stop, as when a suspended watcher is brought back to the
// foreground. Bursts collapse into one value. The channel closes when ctx is
// done.
func VisibilitySignals(ctx context.Context) <-chan struct{} {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, unix.SIGCONT)

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer signal.Stop(sigs)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigs:
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out
}
