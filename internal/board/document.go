// Package board holds a parsed dashboard page.
//
// The server embeds everything a client needs into the page itself: a
// #server-meta element carrying the server time at render and the
// last-update marker, ".idle" elements carrying the instant a queue entry
// became startable, and ".runline" elements carrying a run's end and grace
// instants. A Document exposes those elements to timerview as live views and
// can print itself as plain text for a terminal.
package board

import (
	"fmt"
	"io"
	"time"

	"golang.org/x/net/html"

	"github.com/izzyreal/washboard/internal/clocksync"
	"github.com/izzyreal/washboard/internal/timerview"
)

const (
	metaID     = "server-meta"
	idleClass  = "idle"
	runClass   = "runline"
	badgeClass = "state-badge"
)

type Document struct {
	root *html.Node
	loc  *time.Location

	serverNow  clocksync.Stamp
	lastUpdate clocksync.Stamp
	hasMeta    bool

	idle []*idleView
	runs []*runLineView
}

// Parse reads a dashboard page. Zoneless ISO timestamps in the page are read
// in loc, or time.Local when loc is nil.
func Parse(r io.Reader, loc *time.Location) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse dashboard page: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}

	d := &Document{root: root, loc: loc}
	if meta := findByID(root, metaID); meta != nil {
		d.hasMeta = true
		d.serverNow = ParseStamp(dataset(meta, "server-now-ms", "server-now"), loc)
		d.lastUpdate = ParseStamp(dataset(meta, "last-update-ms", "last-update"), loc)
	}

	walk(root, func(n *html.Node) bool {
		switch {
		case hasClass(n, idleClass):
			d.idle = append(d.idle, &idleView{node: n, loc: loc})
		case hasClass(n, runClass):
			v := &runLineView{node: n, loc: loc}
			if li := closest(n, "li"); li != nil {
				if b := firstWithClass(li, badgeClass); b != nil {
					v.badge = &badge{node: b}
				}
			}
			d.runs = append(d.runs, v)
		}
		return true
	})
	return d, nil
}

// Meta returns the server time and last-update marker embedded at render.
// ok is false when the page carries no #server-meta element, in which case
// both stamps are absent.
func (d *Document) Meta() (serverNow, lastUpdate clocksync.Stamp, ok bool) {
	return d.serverNow, d.lastUpdate, d.hasMeta
}

func (d *Document) ListIdleViews() []timerview.IdleView {
	out := make([]timerview.IdleView, 0, len(d.idle))
	for _, v := range d.idle {
		out = append(out, v)
	}
	return out
}

func (d *Document) ListRunLineViews() []timerview.RunLineView {
	out := make([]timerview.RunLineView, 0, len(d.runs))
	for _, v := range d.runs {
		out = append(out, v)
	}
	return out
}

// Title is the page's <title>, or "" when it has none.
func (d *Document) Title() string {
	var title string
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "title" {
			title = textContent(n)
			return false
		}
		return true
	})
	return title
}

// Render writes the document back out as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

type idleView struct {
	node *html.Node
	loc  *time.Location
}

func (v *idleView) Since() clocksync.Stamp {
	return ParseStamp(dataset(v.node, "front-since-ms", "since-ms", "front-since", "since"), v.loc)
}

func (v *idleView) SetText(text string) { setText(v.node, text) }

type runLineView struct {
	node  *html.Node
	loc   *time.Location
	badge *badge
}

func (v *runLineView) End() clocksync.Stamp {
	return ParseStamp(dataset(v.node, "end-ms", "end"), v.loc)
}

func (v *runLineView) Grace() clocksync.Stamp {
	return ParseStamp(dataset(v.node, "grace-ms", "grace-end-ms", "grace", "grace-end"), v.loc)
}

func (v *runLineView) SetText(text string) { setText(v.node, text) }

func (v *runLineView) Badge() timerview.Badge {
	if v.badge == nil {
		return nil
	}
	return v.badge
}

type badge struct {
	node *html.Node
}

func (b *badge) SetState(text, tag string) {
	setText(b.node, text)
	setAttr(b.node, "data-state", tag)
}
