// Package debugsrv implements the optional, off-by-default HTTP
// observability surface: a Prometheus /metrics endpoint and a
// /debug/playback JSON snapshot. No on-disk or wire formats are defined
// by the coordinator core itself; this surface is purely diagnostic.
package debugsrv

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mediacore/playercore/internal/pconfig"
	"github.com/mediacore/playercore/internal/plog"
)

// Snapshot is the JSON shape returned from /debug/playback. It is
// intentionally minimal and unversioned: a debugging aid, not an API
// contract.
type Snapshot struct {
	PlaybackState        string `json:"playbackState"`
	WindowIndex          int    `json:"windowIndex"`
	PositionMs           int64  `json:"positionMs"`
	PendingOperationAcks int    `json:"pendingOperationAcks"`
	HasPendingSeek       bool   `json:"hasPendingSeek"`
}

// SnapshotFunc supplies the current Snapshot on demand; the caller
// (player.Player, typically) owns how it's computed.
type SnapshotFunc func() Snapshot

// Server wraps a chi router serving /metrics and /debug/playback.
type Server struct {
	httpServer *http.Server
}

// New builds a Server bound to opts.Addr. Callers must check
// opts.Enabled before calling Start; New itself does not consult it, so
// tests can construct a Server directly.
func New(opts pconfig.DebugServerOptions, snapshot SnapshotFunc) *Server {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/debug/playback", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snapshot())
	})
	return &Server{httpServer: &http.Server{Addr: opts.Addr, Handler: r}}
}

// Start begins serving in a background goroutine and returns immediately.
// Listen errors other than http.ErrServerClosed are logged, not returned,
// since the debug surface is diagnostic and must never take the player
// down with it.
func (s *Server) Start() {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			plog.WithComponent("debugsrv").Error().Err(err).Msg("debug server stopped unexpectedly")
		}
	}()
}

// Shutdown gracefully stops the server within timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
