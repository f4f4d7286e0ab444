package playback

import (
	"context"
	"fmt"
	"time"

	"github.com/mediacore/playercore/internal/coordbus"
	"github.com/mediacore/playercore/internal/perrors"
	"github.com/mediacore/playercore/internal/playermsg"
	"github.com/mediacore/playercore/internal/playlist"
	"github.com/mediacore/playercore/internal/plog"
	"github.com/mediacore/playercore/internal/pmetrics"
	"github.com/mediacore/playercore/internal/state"
	"github.com/mediacore/playercore/internal/timeline"
)

// Dispatcher is the internal playback thread: it owns its own Store and
// Timeline, consumes Commands FIFO from the app->internal bus, advances
// position/period progression on a timer, and posts Updates on the
// internal->app bus. Dispatcher is not safe for concurrent use; it is
// driven exclusively by its own Run goroutine.
type Dispatcher struct {
	commands *coordbus.Bus[Command]
	updates  *coordbus.Bus[Update]

	store    *playlist.Store
	seqAlloc timeline.SequenceAllocator

	playbackState state.PlaybackState
	periodID      timeline.MediaPeriodId
	positionUs    int64
	contentPosUs  int64

	playWhenReady      bool
	repeatMode         playlist.RepeatMode
	shuffleModeEnabled bool
	playbackParams     PlaybackParameters
	seekParams         SeekParameters
	foregroundMode     bool

	playbackError error
	isLoading     bool

	// clock, renderers and messages drive the progression step: advancing
	// position over real elapsed time, detecting end-of-window, and
	// delivering PlayerMessages as position moves. tickInterval paces that
	// step the same way pconfig.Options.MessagePollInterval documents.
	clock        Clock
	renderers    []Renderer
	messages     *playermsg.Router
	tickInterval time.Duration
	lastTickMs   int64
}

// Option configures optional Dispatcher dependencies, following the
// teacher's resilience.CircuitBreaker functional-options pattern so New's
// required two-argument form keeps working unchanged for callers (and
// tests) that don't need them.
type Option func(*Dispatcher)

// WithClock injects the wall clock the progression step reads elapsed
// time from. Defaults to the real clock.
func WithClock(c Clock) Option {
	return func(d *Dispatcher) {
		if c != nil {
			d.clock = c
		}
	}
}

// WithRenderers supplies the renderers the dispatcher consults for
// end-of-stream via IsEnded, and resets via ResetPosition on a period
// transition.
func WithRenderers(renderers []Renderer) Option {
	return func(d *Dispatcher) { d.renderers = renderers }
}

// WithMessageRouter hands the dispatcher the same Router instance the
// facade's CreateMessage(...).Send() enqueues into, so messages created
// on the application thread are actually delivered on this one.
func WithMessageRouter(r *playermsg.Router) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.messages = r
		}
	}
}

// WithTickInterval overrides the progression step's cadence.
func WithTickInterval(interval time.Duration) Option {
	return func(d *Dispatcher) {
		if interval > 0 {
			d.tickInterval = interval
		}
	}
}

type realClock struct{}

func (realClock) NowMs() int64 { return time.Now().UnixMilli() }

// New creates a Dispatcher bound to the given command/update buses. The
// Store starts empty; it is populated entirely by Commands, mirroring the
// facade's own Store which is kept in sync by the same messages. periodID
// starts as a non-ad identity so an unprepared first seek isn't mistaken
// for "an ad is currently playing".
func New(commands *coordbus.Bus[Command], updates *coordbus.Bus[Update], opts ...Option) *Dispatcher {
	d := &Dispatcher{
		commands:      commands,
		updates:       updates,
		store:         playlist.NewStore(nil),
		playbackState: state.Idle,
		periodID:      timeline.MediaPeriodId{AdGroupIndex: timeline.NoAd, AdIndexInAdGroup: timeline.NoAd},
		clock:         realClock{},
		messages:      playermsg.New(),
		tickInterval:  50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run drains commands in FIFO order and advances playback on a ticker,
// until ctx is done or the command bus is closed, in the same single
// select-loop shape as the teacher's Orchestrator.Run.
func (d *Dispatcher) Run(ctx context.Context) error {
	log := plog.WithComponent("dispatcher")
	ticker := time.NewTicker(d.tickInterval)
	defer ticker.Stop()
	d.lastTickMs = d.clock.NowMs()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.commands.Closed():
			return nil
		case cmd, ok := <-d.commands.C():
			if !ok {
				return nil
			}
			cctx := plog.ContextWithCorrelationID(ctx, cmd.CorrelationID)
			log = plog.WithContext(cctx, log)
			if err := d.handle(cctx, cmd); err != nil {
				log.Error().Err(err).Str("kind", string(cmd.Kind)).Msg("command handling failed")
			}
			// An immediate PlayerMessage delivers "on the playback thread
			// as soon as dequeued" (whichever command dequeue that is),
			// not on the next progression tick.
			d.messages.DeliverImmediate()
		case <-ticker.C:
			if err := d.tick(ctx, d.clock.NowMs()); err != nil {
				log.Error().Err(err).Msg("tick handling failed")
			}
		}
	}
}

// tick is the clock/EOS-driven progression step: it advances position
// while playing, delivers positioned PlayerMessages as position crosses
// their trigger, and transitions to the next period (or ENDED) once the
// current window has played out.
func (d *Dispatcher) tick(ctx context.Context, nowMs int64) error {
	elapsedMs := nowMs - d.lastTickMs
	d.lastTickMs = nowMs
	if elapsedMs < 0 {
		elapsedMs = 0
	}

	playing := d.playbackState == state.Ready && d.playWhenReady && !d.periodID.IsAd()
	if playing {
		speed := d.playbackParams.Speed
		if speed <= 0 {
			speed = 1
		}
		d.positionUs += int64(float64(elapsedMs) * 1000 * speed)
		d.contentPosUs = d.positionUs
	}

	d.messages.PositionCrossed(d.windowIndexOfCurrentPeriod(), d.positionUs/1000)

	if !playing || !d.currentWindowEnded() {
		return nil
	}
	return d.transitionToNextWindow(ctx)
}

// windowIndexOfCurrentPeriod maps the dispatcher's current period identity
// back to its window index in the masked timeline, or 0 if the period is
// not (or no longer) present.
func (d *Dispatcher) windowIndexOfCurrentPeriod() int {
	tl := d.store.MaskedTimeline()
	idx := tl.PeriodIndexOfUID(d.periodID.PeriodUID)
	if idx < 0 {
		return 0
	}
	return tl.Periods[idx].WindowIndex
}

// currentWindowEnded reports whether the current period has both a known
// duration that position has reached and every renderer reporting
// end-of-stream, mirroring the two-condition EOS check (buffered-to-end
// plus renderer drain) rather than a bare position comparison.
func (d *Dispatcher) currentWindowEnded() bool {
	tl := d.store.MaskedTimeline()
	idx := tl.PeriodIndexOfUID(d.periodID.PeriodUID)
	if idx < 0 {
		return false
	}
	period := tl.Periods[idx]
	if period.DurationUs == int64(timeline.UnsetDuration) {
		return false
	}
	if d.positionUs < period.DurationUs {
		return false
	}
	return d.allRenderersEnded()
}

func (d *Dispatcher) allRenderersEnded() bool {
	for _, r := range d.renderers {
		if !r.IsEnded() {
			return false
		}
	}
	return true
}

// linearNextIndex mirrors DefaultShuffleOrder.NextIndex's repeat-mode
// semantics for the non-shuffle (identity) ordering: REPEAT_ONE replays
// current, REPEAT_ALL wraps past the end, REPEAT_OFF signals "no next"
// with -1.
func linearNextIndex(current int, repeat playlist.RepeatMode, length int) int {
	if length == 0 {
		return -1
	}
	if repeat == playlist.RepeatOne {
		return current
	}
	next := current + 1
	if next < length {
		return next
	}
	if repeat == playlist.RepeatAll {
		return 0
	}
	return -1
}

// transitionToNextWindow advances to whatever holder repeat/shuffle
// navigation selects next, emitting a PERIOD_TRANSITION discontinuity, or
// ends playback if there is none. A genuine transition always mints a
// fresh WindowSequenceNumber (even replaying the same period under
// REPEAT_ONE), unlike handleSeekTo's redundant-seek special case, since
// each transition is a new play-through instance.
func (d *Dispatcher) transitionToNextWindow(ctx context.Context) error {
	length := d.store.Len()
	if length == 0 {
		d.advance(state.EvEndOfStream)
		return d.updates.Send(ctx, Update{Info: d.snapshot()})
	}

	currentHolder := d.store.HolderIndexForWindow(d.windowIndexOfCurrentPeriod())
	if currentHolder < 0 {
		currentHolder = 0
	}

	order := d.store.ShuffleOrder()
	var next, firstIdx int
	if d.shuffleModeEnabled {
		next = order.NextIndex(currentHolder, d.repeatMode)
		firstIdx = order.FirstIndex()
	} else {
		next = linearNextIndex(currentHolder, d.repeatMode, length)
		firstIdx = 0
	}

	if next < 0 {
		d.advance(state.EvEndOfStream)
		return d.updates.Send(ctx, Update{Info: d.snapshot()})
	}
	holder := d.store.Holder(next)
	if holder == nil {
		d.advance(state.EvEndOfStream)
		return d.updates.Send(ctx, Update{Info: d.snapshot()})
	}

	tl := d.store.MaskedTimeline()
	firstPeriod, ok := tl.FirstPeriodIndexOfWindow(holder.FirstWindowIndexInPlaylist)
	if !ok {
		return nil
	}
	period := tl.Periods[firstPeriod]
	// A new loop traversal starts when REPEAT_ALL wraps back to the first
	// index, and on every REPEAT_ONE replay.
	newLoop := (d.repeatMode == playlist.RepeatAll && next == firstIdx) || d.repeatMode == playlist.RepeatOne

	d.periodID = timeline.MediaPeriodId{
		PeriodUID:            period.UID,
		WindowSequenceNumber: d.seqAlloc.Next(),
		AdGroupIndex:         timeline.NoAd,
		AdIndexInAdGroup:     timeline.NoAd,
	}
	d.positionUs = 0
	d.contentPosUs = 0
	for _, r := range d.renderers {
		r.ResetPosition(0)
	}
	if period.DurationUs == int64(timeline.UnsetDuration) {
		d.advance(state.EvSeekIntoUnprepared)
	}
	if newLoop {
		d.messages.RearmForNewLoopTraversal()
	}

	pmetrics.RecordDiscontinuity(string(DiscontinuityPeriodTransition))
	reason := DiscontinuityPeriodTransition
	return d.updates.Send(ctx, Update{
		Info:          d.snapshot(),
		Discontinuity: &reason,
	})
}

func (d *Dispatcher) handle(ctx context.Context, cmd Command) error {
	switch cmd.Kind {
	case CmdPrepare:
		return d.handlePrepare(ctx, cmd)
	case CmdSetMediaItems:
		return d.handleSetMediaItems(ctx, cmd)
	case CmdAddMediaItems:
		return d.handleAddMediaItems(ctx, cmd)
	case CmdRemoveMediaItems:
		return d.handleRemoveMediaItems(ctx, cmd)
	case CmdMoveMediaItems:
		return d.handleMoveMediaItems(ctx, cmd)
	case CmdClearMediaItems:
		return d.handleClearMediaItems(ctx, cmd)
	case CmdSeekTo:
		return d.handleSeekTo(ctx, cmd)
	case CmdSetPlayWhenReady:
		d.playWhenReady = cmd.PlayWhenReady
		return d.ackOnly(ctx, 1)
	case CmdSetRepeatMode:
		d.repeatMode = cmd.RepeatMode
		return d.ackOnly(ctx, 1)
	case CmdSetShuffleModeEnabled:
		d.shuffleModeEnabled = cmd.ShuffleModeEnabled
		return d.ackOnly(ctx, 1)
	case CmdSetShuffleOrder:
		if cmd.ShuffleOrder != nil {
			d.store.SetShuffleOrder(cmd.ShuffleOrder)
		}
		return d.ackOnly(ctx, 1)
	case CmdSetPlaybackParameters:
		d.playbackParams = cmd.PlaybackParams
		return d.ackOnly(ctx, 1)
	case CmdSetSeekParameters:
		d.seekParams = cmd.SeekParams
		return d.ackOnly(ctx, 1)
	case CmdSetForegroundMode:
		d.foregroundMode = cmd.ForegroundMode
		return d.ackOnly(ctx, 1)
	case CmdStop:
		return d.handleStop(ctx, cmd)
	case CmdRelease:
		return d.handleRelease(ctx, cmd)
	case CmdSourceInfoRefreshed:
		return d.handleSourceInfoRefreshed(ctx, cmd)
	default:
		return fmt.Errorf("dispatcher: unknown command kind %q", cmd.Kind)
	}
}

// advance applies ev to the current playback state via the shared
// transition table; an event with no matching edge is a no-op.
func (d *Dispatcher) advance(ev state.EventKind) {
	if next, ok := state.Dispatch(d.playbackState, ev); ok {
		d.playbackState = next
	}
}

func (d *Dispatcher) snapshot() PlaybackInfo {
	return PlaybackInfo{
		Timeline:                d.store.MaskedTimeline(),
		PeriodID:                d.periodID,
		PositionUs:              d.positionUs,
		ContentPositionUs:       d.contentPosUs,
		PlaybackState:           d.playbackState,
		PlaybackError:           d.playbackError,
		IsLoading:               d.isLoading,
		LoadingMediaPeriodID:    d.periodID,
		BufferedPositionUs:      d.positionUs,
		TotalBufferedDurationUs: 0,
		PlayWhenReady:           d.playWhenReady,
	}
}

func (d *Dispatcher) ackOnly(ctx context.Context, ackCount int) error {
	return d.updates.Send(ctx, Update{Info: d.snapshot(), AckCount: ackCount})
}

func (d *Dispatcher) handlePrepare(ctx context.Context, cmd Command) error {
	if d.playbackState != state.Idle {
		return d.ackOnly(ctx, 1)
	}
	d.playbackError = nil
	if d.store.Len() == 0 {
		d.advance(state.EvPrepareEmpty)
		return d.ackOnly(ctx, 1)
	}
	d.advance(state.EvPrepareNonEmpty)
	d.prepareUnpreparedHolders(ctx)
	return d.ackOnly(ctx, 1)
}

// prepareUnpreparedHolders calls Prepare on every holder that hasn't
// already been prepared. Each holder's callback posts a
// SourceInfoRefreshed command tagging the exact *playlist.Holder it was
// issued against, so a later suppression check (identity against the
// current store) can discard it if the holder has since been removed or
// the whole playlist replaced.
func (d *Dispatcher) prepareUnpreparedHolders(ctx context.Context) {
	for _, h := range d.store.Holders() {
		if h.Prepared || h.Source == nil {
			continue
		}
		holder := h
		err := holder.Source.Prepare(func(tl timeline.Timeline) {
			_ = d.commands.Send(ctx, Command{
				Kind:        CmdSourceInfoRefreshed,
				Holder:      holder,
				NewTimeline: tl,
			})
		})
		if err != nil {
			d.playbackError, _ = asFatalPlaybackError(&perrors.SourceError{Cause: err})
			d.advance(state.EvFatalError)
		}
	}
}

func (d *Dispatcher) handleSourceInfoRefreshed(ctx context.Context, cmd Command) error {
	present := false
	for _, h := range d.store.Holders() {
		if h == cmd.Holder {
			present = true
			break
		}
	}
	if !present {
		// Suppressed: this holder has been superseded (removed, or the
		// whole playlist replaced before its prepare completed).
		return nil
	}
	// If playback currently sits on this holder's placeholder period, carry
	// the period identity (and its WindowSequenceNumber) over to the first
	// real period, since the placeholder UID leaves the timeline now.
	if d.periodID.PeriodUID == cmd.Holder.PlaceholderUID() && len(cmd.NewTimeline.Periods) > 0 {
		d.periodID.PeriodUID = cmd.NewTimeline.Periods[0].UID
	}
	cmd.Holder.Prepared = true
	cmd.Holder.Timeline = cmd.NewTimeline
	if d.playbackState == state.Buffering {
		d.advance(state.EvBufferedEnough)
	}
	reason := TimelineReasonSourceUpdate
	return d.updates.Send(ctx, Update{
		Info:                 d.snapshot(),
		AckCount:             0,
		TimelineChanged:      true,
		TimelineChangeReason: reason,
	})
}

func (d *Dispatcher) handleSetMediaItems(ctx context.Context, cmd Command) error {
	newHolders := holdersFrom(cmd.Items)
	windowCount := maskedWindowCountOf(newHolders)
	if cmd.HasStartWindow && cmd.StartWindow != 0 && (cmd.StartWindow < 0 || cmd.StartWindow >= windowCount) {
		return d.ackOnly(ctx, 1)
	}
	d.store.ReplaceAll(newHolders)
	if cmd.ResetPosition && !cmd.HasStartWindow {
		d.positionUs = 0
		d.contentPosUs = 0
	}
	if cmd.HasStartWindow {
		d.positionUs = cmd.StartPosMs * 1000
		d.contentPosUs = d.positionUs
	}
	// Holders are only eagerly prepared once the player itself has
	// already been prepared; set_media_items before the first prepare()
	// just replaces the (unprepared) playlist.
	if d.playbackState != state.Idle {
		d.prepareUnpreparedHolders(ctx)
	}
	return d.updates.Send(ctx, Update{
		Info:                 d.snapshot(),
		AckCount:             1,
		TimelineChanged:      true,
		TimelineChangeReason: TimelineReasonPlaylistChanged,
	})
}

func (d *Dispatcher) handleAddMediaItems(ctx context.Context, cmd Command) error {
	newHolders := holdersFrom(cmd.Items)
	d.store.InsertRangeAt(cmd.AddAt, newHolders)
	if d.playbackState != state.Idle {
		d.prepareUnpreparedHolders(ctx)
	}
	return d.timelineChangedAck(ctx, TimelineReasonPlaylistChanged)
}

func (d *Dispatcher) handleRemoveMediaItems(ctx context.Context, cmd Command) error {
	removed := d.store.RemoveRange(cmd.RemoveFrom, cmd.RemoveTo)
	for _, h := range removed {
		if h.Source != nil {
			h.Source.Release()
		}
	}
	if d.store.Len() == 0 && d.playbackState != state.Idle {
		d.advance(state.EvEndOfStream)
	}
	return d.timelineChangedAck(ctx, TimelineReasonPlaylistChanged)
}

func (d *Dispatcher) handleMoveMediaItems(ctx context.Context, cmd Command) error {
	d.store.MoveRange(cmd.MoveFrom, cmd.MoveTo, cmd.MoveNewFrom)
	return d.timelineChangedAck(ctx, TimelineReasonPlaylistChanged)
}

func (d *Dispatcher) handleClearMediaItems(ctx context.Context, cmd Command) error {
	removed := d.store.Clear()
	for _, h := range removed {
		if h.Source != nil {
			h.Source.Release()
		}
	}
	if d.playbackState != state.Idle {
		d.advance(state.EvEndOfStream)
	}
	return d.timelineChangedAck(ctx, TimelineReasonPlaylistChanged)
}

func (d *Dispatcher) timelineChangedAck(ctx context.Context, reason TimelineChangeReason) error {
	return d.updates.Send(ctx, Update{
		Info:                 d.snapshot(),
		AckCount:             1,
		TimelineChanged:      true,
		TimelineChangeReason: reason,
	})
}

func (d *Dispatcher) handleSeekTo(ctx context.Context, cmd Command) error {
	if d.periodID.IsAd() {
		// An ad is currently playing: the seek is silently dropped but
		// still acked, to preserve discontinuity sequencing for the
		// caller's pendingOperationAcks bookkeeping.
		return d.ackOnly(ctx, 1)
	}
	tl := d.store.MaskedTimeline()
	if tl.IsEmpty() {
		pmetrics.RecordDiscontinuity(string(DiscontinuitySeek))
		reason := DiscontinuitySeek
		d.positionUs = cmd.SeekPosMs * 1000
		d.contentPosUs = d.positionUs
		return d.updates.Send(ctx, Update{Info: d.snapshot(), AckCount: 1, Discontinuity: &reason, SeekProcessed: true})
	}
	firstPeriod, ok := tl.FirstPeriodIndexOfWindow(cmd.SeekWindow)
	if !ok {
		return d.ackOnly(ctx, 1)
	}
	period := tl.Periods[firstPeriod]
	wasUnprepared := period.DurationUs == int64(timeline.UnsetDuration)
	if d.playbackState == state.Ended {
		d.advance(state.EvSeekOnEnded)
	} else if wasUnprepared {
		d.advance(state.EvSeekIntoUnprepared)
	}
	// Repeated seeks into the same unprepared period reuse its existing
	// MediaPeriodId rather than minting a new WindowSequenceNumber, so
	// windowSequenceNumber is stable across redundant seeks (tested
	// property: no spurious period recreation).
	if d.periodID.PeriodUID != period.UID {
		d.periodID = timeline.MediaPeriodId{
			PeriodUID:            period.UID,
			WindowSequenceNumber: d.seqAlloc.Next(),
			AdGroupIndex:         timeline.NoAd,
			AdIndexInAdGroup:     timeline.NoAd,
		}
	}
	d.positionUs = cmd.SeekPosMs * 1000
	d.contentPosUs = d.positionUs
	pmetrics.RecordDiscontinuity(string(DiscontinuitySeek))
	reason := DiscontinuitySeek
	return d.updates.Send(ctx, Update{
		Info:          d.snapshot(),
		AckCount:      1,
		Discontinuity: &reason,
		SeekProcessed: true,
	})
}

func (d *Dispatcher) handleStop(ctx context.Context, cmd Command) error {
	d.advance(state.EvStopReset)
	if cmd.ResetPosition {
		d.positionUs = 0
		d.contentPosUs = 0
		d.periodID = timeline.MediaPeriodId{AdGroupIndex: timeline.NoAd, AdIndexInAdGroup: timeline.NoAd}
	}
	return d.ackOnly(ctx, 1)
}

func (d *Dispatcher) handleRelease(ctx context.Context, cmd Command) error {
	d.advance(state.EvRelease)
	for _, h := range d.store.Holders() {
		if h.Source != nil {
			h.Source.Release()
		}
	}
	_ = d.ackOnly(ctx, 1)
	d.updates.Close()
	return nil
}

func holdersFrom(sources []playlist.MediaSource) []*playlist.Holder {
	out := make([]*playlist.Holder, len(sources))
	for i, s := range sources {
		out[i] = playlist.NewPlaceholderHolder(s)
	}
	return out
}

func maskedWindowCountOf(holders []*playlist.Holder) int {
	n := 0
	for _, h := range holders {
		n += h.MaskedWindowCount()
	}
	return n
}
