package server

import (
	"html/template"

	"github.com/izzyreal/washboard/internal/clockfmt"
	"github.com/izzyreal/washboard/internal/store"
)

type boardPage struct {
	ServerNowMS  int64
	LastUpdateMS int64
	Unknown      string
	Zero         string
	Machines     []machineView
}

type machineView struct {
	Name          string
	MaxConcurrent int
	Running       int
	Waiting       int
	Entries       []entryView
}

type entryView struct {
	User    string
	Remarks string
	Started bool
	Since   string

	HasDeadline bool
	EndMS       int64
	GraceMS     int64

	Startable     bool
	HasFrontSince bool
	FrontSinceMS  int64
}

func newBoardPage(b store.Board) boardPage {
	page := boardPage{
		ServerNowMS:  b.ServerNow.UnixMilli(),
		LastUpdateMS: b.LastUpdateMS,
		Unknown:      clockfmt.Unknown,
		Zero:         clockfmt.Zero,
		Machines:     make([]machineView, 0, len(b.Machines)),
	}
	for _, m := range b.Machines {
		mv := machineView{
			Name:          m.Name,
			MaxConcurrent: m.MaxConcurrent,
			Running:       m.Running,
			Waiting:       m.Waiting,
		}
		for _, e := range m.Entries {
			ev := entryView{
				User:      e.User,
				Remarks:   e.Remarks,
				Started:   e.Started,
				Startable: e.Startable,
			}
			if !e.Start.IsZero() {
				ev.Since = e.Start.Format("15:04")
			}
			if !e.End.IsZero() && !e.GraceEnd.IsZero() {
				ev.HasDeadline = true
				ev.EndMS = e.End.UnixMilli()
				ev.GraceMS = e.GraceEnd.UnixMilli()
			}
			if !e.FrontSince.IsZero() {
				ev.HasFrontSince = true
				ev.FrontSinceMS = e.FrontSince.UnixMilli()
			}
			mv.Entries = append(mv.Entries, ev)
		}
		page.Machines = append(page.Machines, mv)
	}
	return page
}

var boardTemplate = template.Must(template.New("board").Parse(boardHTML))

const boardHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>washboard</title>
  <style>
    body { font-family: system-ui, sans-serif; margin: 24px; color: #1d2a24; background: #f6f8f7; }
    h1 { margin: 0 0 16px; font-size: 26px; }
    h2 { margin: 0 0 6px; font-size: 18px; }
    .machine { background: #fff; border: 1px solid #d6e0db; border-radius: 10px; padding: 12px 16px; margin-bottom: 14px; }
    .capacity { margin: 0 0 8px; color: #5b6b63; font-size: 13px; }
    ul { list-style: none; margin: 0; padding: 0; }
    li { display: flex; gap: 10px; align-items: baseline; padding: 6px 0; border-top: 1px solid #edf1ef; }
    .user { font-weight: 600; min-width: 140px; }
    .runline, .idle { font-variant-numeric: tabular-nums; }
    .state-badge { font-size: 12px; padding: 2px 8px; border-radius: 999px; background: #edf1ef; }
    .state-badge[data-state="running"] { background: #edf8f2; color: #26644b; }
    .state-badge[data-state="awaiting"] { background: #fff5dd; color: #8a5a00; }
    .state-badge[data-state="overdue"] { background: #fde8e8; color: #a32020; }
    .remarks { color: #5b6b63; }
  </style>
</head>
<body>
  <div id="server-meta" hidden data-server-now-ms="{{.ServerNowMS}}" data-last-update-ms="{{.LastUpdateMS}}"></div>
  <h1>washboard</h1>
{{- $unknown := .Unknown}}{{$zero := .Zero}}
{{- range .Machines}}
  <section class="machine">
    <h2>{{.Name}}</h2>
    <p class="capacity">{{.Running}}/{{.MaxConcurrent}} running, {{.Waiting}} waiting</p>
    <ul>
    {{- range .Entries}}
      <li>
        <span class="user">{{.User}}</span>
        {{- if .Started}}
        <span class="state-badge" data-state="running">running</span>
        {{- if .Since}}
        <span class="since">since {{.Since}}</span>
        {{- end}}
        {{- if .HasDeadline}}
        <span class="runline" data-end-ms="{{.EndMS}}" data-grace-ms="{{.GraceMS}}">{{$unknown}}</span>
        {{- else}}
        <span class="runline">{{$unknown}}</span>
        {{- end}}
        {{- else if .Startable}}
        <span class="state-badge" data-state="startable">may start</span>
        {{- if .HasFrontSince}}
        <span class="idle" data-front-since-ms="{{.FrontSinceMS}}">{{$zero}}</span>
        {{- else}}
        <span class="idle">{{$zero}}</span>
        {{- end}}
        {{- else}}
        <span class="state-badge" data-state="waiting">waiting</span>
        {{- end}}
        {{- with .Remarks}}
        <span class="remarks">{{.}}</span>
        {{- end}}
      </li>
    {{- else}}
      <li class="empty">no reservations</li>
    {{- end}}
    </ul>
  </section>
{{- else}}
  <p>No machines configured.</p>
{{- end}}
</body>
</html>
`
