// Command playerdemo drives the player facade interactively from stub
// capabilities, for manual exploration of the coordinator's behavior
// without a real media pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mediacore/playercore/internal/pconfig"
	"github.com/mediacore/playercore/internal/playermsg"
	"github.com/mediacore/playercore/internal/plog"
	"github.com/mediacore/playercore/internal/state"
	"github.com/mediacore/playercore/internal/timeline"
	"github.com/mediacore/playercore/player"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var windowCount int
	var windowDurationMs int64

	root := &cobra.Command{
		Use:     "playerdemo",
		Short:   "Drive the player coordinator facade with stub media sources",
		Version: fmt.Sprintf("%s (commit %s)", version, commit),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(configPath, windowCount, windowDurationMs)
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "path to config file (YAML)")
	root.Flags().IntVar(&windowCount, "windows", 3, "number of stub media windows to load")
	root.Flags().Int64Var(&windowDurationMs, "window-duration-ms", 5000, "duration of each stub window, in milliseconds")
	return root
}

func runDemo(configPath string, windowCount int, windowDurationMs int64) error {
	log := plog.WithComponent("playerdemo")

	opts, err := pconfig.Load(configPath)
	if err != nil {
		log.Error().Err(err).Str("config_path", configPath).Msg("failed to load configuration")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := player.New(player.Config{
		TrackSelector: stubTrackSelector{},
		Renderers:     []player.Renderer{stubRenderer{kind: "video"}, stubRenderer{kind: "audio"}},
		Clock:         systemClock{},
		Options:       opts,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to construct player")
		return err
	}

	p.AddListener(&loggingListener{log: log})

	items := make([]player.MediaSource, windowCount)
	for i := range items {
		items[i] = &stubMediaSource{
			name:       fmt.Sprintf("stub-window-%d", i),
			durationUs: windowDurationMs * 1000,
		}
	}

	if err := p.SetMediaItems(ctx, items, -1, 0, true); err != nil {
		log.Error().Err(err).Msg("set_media_items failed")
		return err
	}
	if err := p.Prepare(ctx); err != nil {
		log.Error().Err(err).Msg("prepare failed")
		return err
	}
	if err := p.SetPlayWhenReady(ctx, true); err != nil {
		log.Error().Err(err).Msg("set_play_when_ready failed")
		return err
	}

	p.CreateMessage(loggingTarget{log: log}).
		SetPosition(0, windowDurationMs/2).
		SetDeleteAfterDelivery(true).
		Send()

	log.Info().Int("windows", windowCount).Msg("playerdemo running, press Ctrl+C to exit")
	<-ctx.Done()

	releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Release(releaseCtx); err != nil {
		log.Warn().Err(err).Msg("release reported an error")
	}
	return nil
}

// loggingListener logs the timeline-changed, player-state-changed and
// seek-processed sub-events, useful to watch the fixed dispatch order in
// §4.4 play out against a real run; the others fall through to
// BaseListener's no-ops.
type loggingListener struct {
	player.BaseListener
	log zerolog.Logger
}

func (l *loggingListener) OnTimelineChanged(tl timeline.Timeline, reason player.TimelineChangeReason) {
	l.log.Info().Int("windows", tl.WindowCount()).Str("reason", string(reason)).Msg("timelineChanged")
}

func (l *loggingListener) OnPlayerStateChanged(playWhenReady bool, s state.PlaybackState) {
	l.log.Info().Bool("play_when_ready", playWhenReady).Str("state", string(s)).Msg("playerStateChanged")
}

func (l *loggingListener) OnSeekProcessed() {
	l.log.Info().Msg("seekProcessed")
}

type loggingTarget struct {
	log zerolog.Logger
}

func (t loggingTarget) HandleMessage(payloadType int, payload any) error {
	t.log.Info().Int("payload_type", payloadType).Msg("player message delivered")
	return nil
}

var _ playermsg.Target = loggingTarget{}
