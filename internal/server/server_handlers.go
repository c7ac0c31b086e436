package server

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/izzyreal/washboard/internal/server/httpx"
	"github.com/izzyreal/washboard/internal/version"
)

type syncStateResponse struct {
	ServerNowMS  int64 `json:"server_now_ms"`
	LastUpdateMS int64 `json:"last_update_ms"`
}

type healthzResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) syncStateHandler(w http.ResponseWriter, r *http.Request) {
	now := s.clock.Now().UnixMilli()
	last, ok, err := s.store.LastUpdateMS()
	if err != nil {
		slog.Error("read last update", "error", err)
		http.Error(w, "state unavailable", http.StatusInternalServerError)
		return
	}
	if !ok {
		last = now
	}
	httpx.WriteJSON(w, http.StatusOK, syncStateResponse{ServerNowMS: now, LastUpdateMS: last})
}

func (s *Server) boardHandler(w http.ResponseWriter, r *http.Request) {
	b, err := s.store.Board(s.clock.Now(), s.grace)
	if err != nil {
		slog.Error("build board", "error", err)
		http.Error(w, "board unavailable", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := boardTemplate.Execute(&buf, newBoardPage(b)); err != nil {
		slog.Error("render board", "error", err)
		http.Error(w, "board unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, healthzResponse{Status: "ok", Version: version.Current()})
}
