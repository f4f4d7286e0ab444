package playback

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mediacore/playercore/internal/coordbus"
	"github.com/mediacore/playercore/internal/playermsg"
	"github.com/mediacore/playercore/internal/playlist"
	"github.com/mediacore/playercore/internal/state"
)

// fakeClock is an atomically-readable millisecond counter so a test
// goroutine can advance it concurrently with the dispatcher's own ticker
// goroutine.
type fakeClock struct{ ms int64 }

func (c *fakeClock) NowMs() int64            { return atomic.LoadInt64(&c.ms) }
func (c *fakeClock) Advance(d time.Duration) { atomic.AddInt64(&c.ms, d.Milliseconds()) }

// alwaysEndedRenderer reports end-of-stream unconditionally, so progression
// tests gate end-of-window purely on position reaching period duration.
type alwaysEndedRenderer struct{}

func (alwaysEndedRenderer) IsEnded() bool       { return true }
func (alwaysEndedRenderer) ResetPosition(int64) {}

// countingTarget records how many times it was handed a PlayerMessage.
type countingTarget struct{ n int32 }

func (c *countingTarget) HandleMessage(int, any) error {
	atomic.AddInt32(&c.n, 1)
	return nil
}

func newProgressionHarness(t *testing.T, tickInterval time.Duration, opts ...Option) (*coordbus.Bus[Command], *coordbus.Bus[Update], *fakeClock, context.CancelFunc) {
	t.Helper()
	cmds := coordbus.New[Command]("test-cmd", 256)
	updates := coordbus.New[Update]("test-update", 256)
	clk := &fakeClock{}
	allOpts := append([]Option{WithClock(clk), WithTickInterval(tickInterval)}, opts...)
	d := New(cmds, updates, allOpts...)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = d.Run(ctx) }()
	return cmds, updates, clk, cancel
}

// driveClock advances clk by step every tickInterval until stop is closed,
// standing in for real elapsed wall-clock time passing while the test
// asserts on the dispatcher's reaction to it.
func driveClock(clk *fakeClock, tickInterval, step time.Duration) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				clk.Advance(step)
			}
		}
	}()
	return func() { close(done) }
}

func TestThreeWindowLinearPlayEmitsTwoPeriodTransitions(t *testing.T) {
	const tick = 5 * time.Millisecond
	cmds, updates, clk, cancel := newProgressionHarness(t, tick, WithRenderers([]Renderer{alwaysEndedRenderer{}}))
	defer cancel()

	srcs := []playlist.MediaSource{
		&fakeSource{name: "w0", durationUs: 60_000},
		&fakeSource{name: "w1", durationUs: 60_000},
		&fakeSource{name: "w2", durationUs: 60_000},
	}
	require.NoError(t, cmds.Send(context.Background(), Command{Kind: CmdSetMediaItems, Items: srcs}))
	recvUpdate(t, updates) // PLAYLIST_CHANGED

	require.NoError(t, cmds.Send(context.Background(), Command{Kind: CmdPrepare}))
	recvUpdate(t, updates) // BUFFERING
	for range srcs {
		recvUpdate(t, updates) // one SOURCE_UPDATE per holder, eagerly prepared
	}

	require.NoError(t, cmds.Send(context.Background(), Command{Kind: CmdSeekTo, SeekWindow: 0, SeekPosMs: 0}))
	recvUpdate(t, updates) // SEEK

	require.NoError(t, cmds.Send(context.Background(), Command{Kind: CmdSetPlayWhenReady, PlayWhenReady: true}))
	recvUpdate(t, updates) // ack

	stop := driveClock(clk, tick, 20*time.Millisecond)
	defer stop()

	transitions := 0
	deadline := time.After(2 * time.Second)
	for {
		select {
		case u := <-updates.C():
			if u.Discontinuity != nil && *u.Discontinuity == DiscontinuityPeriodTransition {
				transitions++
			}
			if u.Info.PlaybackState == state.Ended {
				require.Equal(t, 2, transitions, "three-window linear play must emit exactly two PERIOD_TRANSITION discontinuities before ENDED")
				return
			}
		case <-deadline:
			t.Fatalf("timed out before reaching ENDED; saw %d transitions", transitions)
		}
	}
}

func TestRepeatOneTransitionsReplaySamePeriod(t *testing.T) {
	const tick = 5 * time.Millisecond
	cmds, updates, clk, cancel := newProgressionHarness(t, tick, WithRenderers([]Renderer{alwaysEndedRenderer{}}))
	defer cancel()

	srcs := []playlist.MediaSource{
		&fakeSource{name: "w0", durationUs: 40_000},
		&fakeSource{name: "w1", durationUs: 40_000},
	}
	require.NoError(t, cmds.Send(context.Background(), Command{Kind: CmdSetMediaItems, Items: srcs}))
	recvUpdate(t, updates)

	require.NoError(t, cmds.Send(context.Background(), Command{Kind: CmdPrepare}))
	recvUpdate(t, updates)
	recvUpdate(t, updates)
	recvUpdate(t, updates)

	require.NoError(t, cmds.Send(context.Background(), Command{Kind: CmdSetRepeatMode, RepeatMode: playlist.RepeatOne}))
	recvUpdate(t, updates)

	require.NoError(t, cmds.Send(context.Background(), Command{Kind: CmdSeekTo, SeekWindow: 0, SeekPosMs: 0}))
	seekUpdate := recvUpdate(t, updates)
	firstUID := seekUpdate.Info.PeriodID.PeriodUID

	require.NoError(t, cmds.Send(context.Background(), Command{Kind: CmdSetPlayWhenReady, PlayWhenReady: true}))
	recvUpdate(t, updates)

	stop := driveClock(clk, tick, 15*time.Millisecond)
	defer stop()

	seen := 0
	deadline := time.After(2 * time.Second)
	for seen < 3 {
		select {
		case u := <-updates.C():
			if u.Discontinuity != nil && *u.Discontinuity == DiscontinuityPeriodTransition {
				require.Equal(t, firstUID, u.Info.PeriodID.PeriodUID, "REPEAT_ONE transitions must keep replaying the same period")
				require.NotEqual(t, seekUpdate.Info.PeriodID.WindowSequenceNumber, u.Info.PeriodID.WindowSequenceNumber,
					"each REPEAT_ONE replay is still a fresh play-through instance with its own window sequence number")
				seen++
			}
		case <-deadline:
			t.Fatalf("timed out after %d REPEAT_ONE transitions", seen)
		}
	}
}

// TestRepeatAllRearmsPositionedMessageEachLoopTraversal exercises testable
// property 7: a PlayerMessage positioned inside a window, with
// delete_after_delivery=false, must deliver again on the window's next
// loop traversal under REPEAT_ALL rather than staying delivered forever.
func TestRepeatAllRearmsPositionedMessageEachLoopTraversal(t *testing.T) {
	const tick = 5 * time.Millisecond
	router := playermsg.New()
	cmds, _, clk, cancel := newProgressionHarness(t, tick,
		WithRenderers([]Renderer{alwaysEndedRenderer{}}),
		WithMessageRouter(router),
	)
	defer cancel()

	srcs := []playlist.MediaSource{
		&fakeSource{name: "w0", durationUs: 40_000},
		&fakeSource{name: "w1", durationUs: 40_000},
	}
	require.NoError(t, cmds.Send(context.Background(), Command{Kind: CmdSetMediaItems, Items: srcs}))
	require.NoError(t, cmds.Send(context.Background(), Command{Kind: CmdSetRepeatMode, RepeatMode: playlist.RepeatAll}))
	require.NoError(t, cmds.Send(context.Background(), Command{Kind: CmdPrepare}))
	require.NoError(t, cmds.Send(context.Background(), Command{Kind: CmdSeekTo, SeekWindow: 0, SeekPosMs: 0}))

	target := &countingTarget{}
	router.Send(&playermsg.Message{
		Target:              target,
		Position:            playermsg.Position{Set: true, WindowIndex: 0, PositionMs: 30},
		DeleteAfterDelivery: false,
	})

	require.NoError(t, cmds.Send(context.Background(), Command{Kind: CmdSetPlayWhenReady, PlayWhenReady: true}))

	stop := driveClock(clk, tick, 10*time.Millisecond)
	defer stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && atomic.LoadInt32(&target.n) < 2 {
		time.Sleep(2 * time.Millisecond)
	}
	require.GreaterOrEqual(t, atomic.LoadInt32(&target.n), int32(2),
		"a delete_after_delivery=false positioned message must redeliver across a REPEAT_ALL loop traversal")
}

// TestImmediateMessageDeliversOnNextCommandDequeue covers §4.5: a message
// with no position set delivers as soon as any command is dequeued, not
// only on a progression tick.
func TestImmediateMessageDeliversOnNextCommandDequeue(t *testing.T) {
	router := playermsg.New()
	cmds, updates, _, cancel := newProgressionHarness(t, time.Hour, WithMessageRouter(router))
	defer cancel()

	target := &countingTarget{}
	router.Send(&playermsg.Message{Target: target, DeleteAfterDelivery: true})

	require.NoError(t, cmds.Send(context.Background(), Command{Kind: CmdSetForegroundMode, ForegroundMode: true}))
	recvUpdate(t, updates)

	require.Eventually(t, func() bool { return atomic.LoadInt32(&target.n) == 1 }, time.Second, time.Millisecond,
		"an immediate PlayerMessage must deliver on the next command dequeue")
}
