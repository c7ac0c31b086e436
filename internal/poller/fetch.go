package poller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/izzyreal/washboard/internal/clocksync"
)

// SyncStatePath is where the server publishes its clock and last-update
// marker.
const SyncStatePath = "/sync-state"

// Result is a decoded /sync-state response. Either field may be absent when
// the server omitted it or sent something that is not a number.
type Result struct {
	ServerNow  clocksync.Stamp
	LastUpdate clocksync.Stamp
}

// Fetcher retrieves the server's current sync state.
type Fetcher interface {
	FetchSyncState(ctx context.Context) (Result, error)
}

type HTTPFetcher struct {
	client *http.Client
	url    string
}

// NewHTTPFetcher polls baseURL's /sync-state. A nil client means a client
// with no timeout of its own; requests are bounded by their context only.
func NewHTTPFetcher(client *http.Client, baseURL string) *HTTPFetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPFetcher{
		client: client,
		url:    strings.TrimRight(baseURL, "/") + SyncStatePath,
	}
}

func (f *HTTPFetcher) FetchSyncState(ctx context.Context) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("create sync-state request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("send sync-state request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return Result{}, fmt.Errorf("sync-state rejected: status=%d body=%s", resp.StatusCode, bytes.TrimSpace(respBody))
	}

	var payload struct {
		ServerNowMS  json.RawMessage `json:"server_now_ms"`
		LastUpdateMS json.RawMessage `json:"last_update_ms"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Result{}, fmt.Errorf("decode sync-state response: %w", err)
	}
	return Result{
		ServerNow:  decodeStamp(payload.ServerNowMS),
		LastUpdate: decodeStamp(payload.LastUpdateMS),
	}, nil
}

// decodeStamp accepts only JSON numbers; strings, null and other values are
// absent rather than zero.
func decodeStamp(raw json.RawMessage) clocksync.Stamp {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return clocksync.Stamp{}
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return clocksync.Stamp{}
	}
	return clocksync.FromFloat(f)
}
