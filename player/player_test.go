package player

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mediacore/playercore/internal/state"
	"github.com/mediacore/playercore/internal/timeline"
)

type fakeRenderer struct{}

func (fakeRenderer) TrackType() string            { return "video" }
func (fakeRenderer) SupportsFormat(string) bool   { return true }
func (fakeRenderer) Enable() error                { return nil }
func (fakeRenderer) Start() error                 { return nil }
func (fakeRenderer) Stop() error                  { return nil }
func (fakeRenderer) Disable()                     {}
func (fakeRenderer) ResetPosition(int64)          {}
func (fakeRenderer) IsEnded() bool                { return false }
func (fakeRenderer) HandleMessage(int, any) error { return nil }

type fakeTrackSelector struct{}

func (fakeTrackSelector) SelectTracks([]Renderer, timeline.MediaPeriodId, timeline.Timeline) (TrackSelectorResult, error) {
	return TrackSelectorResult{}, nil
}
func (fakeTrackSelector) OnSelectionActivated(any) {}

type fakeClock struct{ ms int64 }

func (c *fakeClock) NowMs() int64 { return c.ms }

type fakeSource struct {
	name       string
	durationUs int64
}

func (s *fakeSource) Prepare(onRefresh func(timeline.Timeline)) error {
	onRefresh(timeline.Timeline{
		Windows: []timeline.Window{{DurationUs: s.durationUs, LastPeriodIndex: 0}},
		Periods: []timeline.Period{{UID: s.name, DurationUs: s.durationUs}},
	})
	return nil
}
func (s *fakeSource) MaybeThrowSourceError() error { return nil }
func (s *fakeSource) Release()                     {}

func newTestPlayer(t *testing.T) *Player {
	t.Helper()
	p, err := New(Config{
		TrackSelector: fakeTrackSelector{},
		Renderers:     []Renderer{fakeRenderer{}},
		Clock:         &fakeClock{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Release(context.Background()) })
	return p
}

func TestNewRejectsMissingCapabilities(t *testing.T) {
	_, err := New(Config{Renderers: []Renderer{fakeRenderer{}}, Clock: &fakeClock{}})
	require.Error(t, err)

	_, err = New(Config{TrackSelector: fakeTrackSelector{}, Clock: &fakeClock{}})
	require.Error(t, err)

	_, err = New(Config{TrackSelector: fakeTrackSelector{}, Renderers: []Renderer{fakeRenderer{}}})
	require.Error(t, err)
}

type recordingListener struct {
	BaseListener
	states []state.PlaybackState
	seeks  int
}

func (l *recordingListener) OnPlayerStateChanged(_ bool, s state.PlaybackState) {
	l.states = append(l.states, s)
}
func (l *recordingListener) OnSeekProcessed() { l.seeks++ }

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestPrepareEmptyPlaylistReachesEnded(t *testing.T) {
	p := newTestPlayer(t)
	l := &recordingListener{}
	p.AddListener(l)

	require.NoError(t, p.Prepare(context.Background()))
	waitFor(t, time.Second, func() bool { return p.GetPlaybackState() == state.Ended })
}

func TestSetMediaItemsThenPrepareReachesReady(t *testing.T) {
	p := newTestPlayer(t)
	require.NoError(t, p.SetMediaItems(context.Background(), []MediaSource{&fakeSource{name: "a", durationUs: 1_000_000}}, -1, 0, true))
	require.NoError(t, p.Prepare(context.Background()))
	waitFor(t, time.Second, func() bool { return p.GetPlaybackState() == state.Ready })
}

func TestSeekToInvalidWindowFailsSynchronously(t *testing.T) {
	p := newTestPlayer(t)
	require.NoError(t, p.SetMediaItems(context.Background(), []MediaSource{&fakeSource{name: "a", durationUs: 1_000_000}}, -1, 0, true))
	err := p.SeekTo(context.Background(), 5, 0)
	require.Error(t, err)
}

func TestSeekProcessedFiresAfterRoundTrip(t *testing.T) {
	p := newTestPlayer(t)
	l := &recordingListener{}
	p.AddListener(l)
	require.NoError(t, p.SetMediaItems(context.Background(), []MediaSource{&fakeSource{name: "a", durationUs: 1_000_000}}, -1, 0, true))
	require.NoError(t, p.SeekTo(context.Background(), 0, 500))
	waitFor(t, time.Second, func() bool { return l.seeks > 0 })
}

func TestAddMediaItemsRejectsOutOfRangeIndex(t *testing.T) {
	p := newTestPlayer(t)
	err := p.AddMediaItems(context.Background(), 5, []MediaSource{&fakeSource{name: "a"}})
	require.Error(t, err)
}

func TestReleaseRejectsFurtherOperations(t *testing.T) {
	p := newTestPlayer(t)
	require.NoError(t, p.Release(context.Background()))
	err := p.Prepare(context.Background())
	require.Error(t, err)
}

func TestPositionMaskingWhileAcksPending(t *testing.T) {
	p := newTestPlayer(t)
	require.NoError(t, p.SetMediaItems(context.Background(), []MediaSource{&fakeSource{name: "a", durationUs: 1_000_000}}, -1, 0, true))
	require.NoError(t, p.SeekTo(context.Background(), 0, 777))
	require.Equal(t, int64(777), p.GetCurrentPositionMs(), "while an ack is pending, position getters must read the facade's mask, not the last PlaybackInfo")
}
