package debugsrv

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mediacore/playercore/internal/pconfig"
)

func TestDebugPlaybackServesSnapshotJSON(t *testing.T) {
	opts := pconfig.DebugServerOptions{Enabled: true, Addr: "127.0.0.1:0"}
	srv := New(opts, func() Snapshot {
		return Snapshot{PlaybackState: "READY", WindowIndex: 1, PositionMs: 2000}
	})
	require.NotNil(t, srv)
	// Addr ":0" means Start would bind an ephemeral port; exercising the
	// handler directly avoids coordinating on which port the OS picked.
	req, err := http.NewRequest(http.MethodGet, "/debug/playback", nil)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "READY")
}

func TestShutdownWithoutStartIsSafe(t *testing.T) {
	srv := New(pconfig.DebugServerOptions{Addr: "127.0.0.1:0"}, func() Snapshot { return Snapshot{} })
	require.NoError(t, srv.Shutdown(time.Second))
}
