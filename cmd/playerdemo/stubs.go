package main

import (
	"time"

	"github.com/mediacore/playercore/internal/timeline"
	"github.com/mediacore/playercore/player"
)

// stubMediaSource reports a single-window, single-period timeline
// immediately, standing in for a real DASH/HLS/progressive source.
type stubMediaSource struct {
	name       string
	durationUs int64
}

func (s *stubMediaSource) Prepare(onRefresh func(timeline.Timeline)) error {
	onRefresh(timeline.Timeline{
		Windows: []timeline.Window{{Seekable: true, DurationUs: s.durationUs, LastPeriodIndex: 0}},
		Periods: []timeline.Period{{UID: s.name, DurationUs: s.durationUs}},
	})
	return nil
}

func (s *stubMediaSource) MaybeThrowSourceError() error { return nil }
func (s *stubMediaSource) Release()                     {}

// stubRenderer is a no-op renderer for a single track type, enough to
// satisfy player.New's "at least one Renderer" requirement.
type stubRenderer struct{ kind string }

func (r stubRenderer) TrackType() string          { return r.kind }
func (r stubRenderer) SupportsFormat(string) bool { return true }
func (r stubRenderer) Enable() error              { return nil }
func (r stubRenderer) Start() error               { return nil }
func (r stubRenderer) Stop() error                { return nil }
func (r stubRenderer) Disable()                   {}
func (r stubRenderer) ResetPosition(int64)        {}

// IsEnded reports true unconditionally: the demo has no real decode
// pipeline to drain, so EOS is governed entirely by period duration.
func (r stubRenderer) IsEnded() bool                { return true }
func (r stubRenderer) HandleMessage(int, any) error { return nil }

// stubTrackSelector always selects nothing; the demo never inspects
// track groups.
type stubTrackSelector struct{}

func (stubTrackSelector) SelectTracks([]player.Renderer, timeline.MediaPeriodId, timeline.Timeline) (player.TrackSelectorResult, error) {
	return player.TrackSelectorResult{}, nil
}
func (stubTrackSelector) OnSelectionActivated(any) {}

// systemClock is the real wall clock, used unless a test injects a fake.
type systemClock struct{}

func (systemClock) NowMs() int64 { return time.Now().UnixMilli() }
