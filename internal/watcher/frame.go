package watcher

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/izzyreal/washboard/internal/board"
	"github.com/izzyreal/washboard/internal/clocksync"
	"github.com/izzyreal/washboard/internal/timerview"
)

const clearScreen = "\x1b[H\x1b[2J"

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (w *Watcher) draw(doc *board.Document, sync *clocksync.Sync, st timerview.Stats) {
	var buf bytes.Buffer
	if w.clear {
		buf.WriteString(clearScreen)
	}
	writeHeader(&buf, w.baseURL, sync, st)
	if err := doc.WriteText(&buf); err != nil {
		slog.Debug("render dashboard text", "error", err)
		return
	}
	if _, err := w.out.Write(buf.Bytes()); err != nil {
		slog.Debug("write frame", "error", err)
	}
}

func writeHeader(w io.Writer, source string, sync *clocksync.Sync, st timerview.Stats) {
	now := sync.CorrectedNow()
	fmt.Fprintf(w, "%s  %s", source, now.Format("15:04:05"))
	if !sync.Synced() {
		fmt.Fprint(w, " (local clock)")
	}
	if last := sync.LatestUpdate(); last.Valid {
		fmt.Fprintf(w, "  updated %s", humanize.RelTime(last.Time(), now, "ago", "from now"))
	}
	fmt.Fprintf(w, "\n%d running, %d awaiting pickup, %d overdue, %d idle\n\n",
		st.Running, st.AwaitingPickup, st.Overdue, st.Idle)
}
