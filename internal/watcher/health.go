package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/izzyreal/washboard/internal/version"
)

func (w *Watcher) serverVersion(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/healthz", nil)
	if err != nil {
		return "", fmt.Errorf("create healthz request: %w", err)
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch healthz: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("healthz rejected: status=%d", resp.StatusCode)
	}

	var body struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode healthz: %w", err)
	}
	return body.Version, nil
}

// checkServerVersion warns when the server is a different major release.
// It never stops the watcher.
func (w *Watcher) checkServerVersion(ctx context.Context) {
	v, err := w.serverVersion(ctx)
	if err != nil {
		slog.Debug("server version check skipped", "error", err)
		return
	}
	if !version.Compatible(v) {
		slog.Warn("server version may be incompatible", "server_version", v, "watcher_version", version.Current())
	}
}
