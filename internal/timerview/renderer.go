// Package timerview recomputes the live timers on a dashboard page.
//
// Two kinds of views are rendered. Idle views count up from the instant a
// queue entry became startable. Run-line views count down to a run's end,
// then to the end of its pickup grace, then show how long the run has been
// overdue, keeping an associated badge in step with the derived state.
package timerview

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/izzyreal/washboard/internal/clockfmt"
	"github.com/izzyreal/washboard/internal/clocksync"
)

// IdleView is an element showing time elapsed since Since.
type IdleView interface {
	Since() clocksync.Stamp
	SetText(text string)
}

// RunLineView is an element showing the remaining time of a run.
type RunLineView interface {
	End() clocksync.Stamp
	Grace() clocksync.Stamp
	SetText(text string)
	// Badge returns nil when the run line has no badge.
	Badge() Badge
}

// Badge mirrors a run line's lifecycle state.
type Badge interface {
	SetState(text, tag string)
}

// ViewSource enumerates the views currently on the page. It is consulted on
// every render so views added by a reload are picked up.
type ViewSource interface {
	ListIdleViews() []IdleView
	ListRunLineViews() []RunLineView
}

// Stats summarizes a single render pass.
type Stats struct {
	Idle           int
	Running        int
	AwaitingPickup int
	Overdue        int
	Unknown        int
}

type Renderer struct {
	sync   *clocksync.Sync
	source ViewSource
}

func NewRenderer(sync *clocksync.Sync, source ViewSource) *Renderer {
	return &Renderer{sync: sync, source: source}
}

// Render updates every view against a single corrected instant.
func (r *Renderer) Render() Stats {
	now := r.sync.CorrectedNowMS()
	var st Stats

	for _, v := range r.source.ListIdleViews() {
		st.Idle++
		since := v.Since()
		if !since.Valid {
			v.SetText(clockfmt.Zero)
			continue
		}
		v.SetText(clockfmt.Seconds(IdleSeconds(now, since.MS)))
	}

	for _, v := range r.source.ListRunLineViews() {
		end, grace := v.End(), v.Grace()
		if !end.Valid || !grace.Valid {
			st.Unknown++
			v.SetText(clockfmt.Unknown)
			continue
		}
		state, secs := RunLineSeconds(now, end.MS, grace.MS)
		switch state {
		case Running:
			st.Running++
		case AwaitingPickup:
			st.AwaitingPickup++
		case Overdue:
			st.Overdue++
		}
		v.SetText(clockfmt.Seconds(secs))
		if b := v.Badge(); b != nil {
			b.SetState(state.String(), state.Tag())
		}
	}
	return st
}

// Run renders once immediately and then on every interval tick until ctx is
// done. afterRender, when set, is called after each pass with its stats.
func (r *Renderer) Run(ctx context.Context, clock clockwork.Clock, interval time.Duration, afterRender func(Stats)) {
	render := func() {
		st := r.Render()
		if afterRender != nil {
			afterRender(st)
		}
	}

	render()
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			render()
		}
	}
}
