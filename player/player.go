package player

import (
	"context"
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mediacore/playercore/internal/coordbus"
	"github.com/mediacore/playercore/internal/debugsrv"
	"github.com/mediacore/playercore/internal/listenerbus"
	"github.com/mediacore/playercore/internal/pconfig"
	"github.com/mediacore/playercore/internal/perrors"
	"github.com/mediacore/playercore/internal/playback"
	"github.com/mediacore/playercore/internal/playermsg"
	"github.com/mediacore/playercore/internal/playlist"
	"github.com/mediacore/playercore/internal/plog"
	"github.com/mediacore/playercore/internal/pmetrics"
	"github.com/mediacore/playercore/internal/state"
	"github.com/mediacore/playercore/internal/timeline"
)

// Config bundles the capabilities and tuning a Player is constructed
// with. TrackSelector, Renderers, and Clock are validated non-nil/non-empty
// at construction; LoadControl and BandwidthMeter are optional.
type Config struct {
	TrackSelector  TrackSelector
	Renderers      []Renderer
	Clock          Clock
	LoadControl    LoadControl
	BandwidthMeter BandwidthMeter
	Options        pconfig.Options
}

// maskState holds the facade-local fields that let getters return a
// forward-consistent view of position/timeline while commands are still
// in flight on the internal thread.
type maskState struct {
	windowIndex                  int
	periodIndex                  int
	windowPositionMs             int64
	pendingOperationAcks         int
	hasPendingSeek               bool
	pendingSetPlaybackParamsAcks int
}

// Player is the public facade: the application-thread-owned object that
// mediates the playlist, the masked timeline, and the command/update
// protocol with the internal playback dispatcher. All methods must be
// called from the thread Player was constructed on; it is not safe for
// concurrent use from multiple goroutines.
type Player struct {
	cfg Config

	commands *coordbus.Bus[playback.Command]
	updates  *coordbus.Bus[playback.Update]
	cancel   context.CancelFunc
	eg       *errgroup.Group

	store *playlist.Store
	mask  maskState

	lastInfo  playback.PlaybackInfo
	listeners *listenerbus.Dispatcher[Listener]
	messages  *playermsg.Router
	debugsrv  *debugsrv.Server

	released bool
	corrSeq  uint64
}

// New validates cfg and constructs a Player with its own internal
// playback dispatcher running on a dedicated goroutine, matching the
// two-cooperating-single-threaded-loops concurrency model. It fails fast
// on a missing TrackSelector, an empty Renderers set, or a nil Clock,
// mirroring the teacher's constructor validation posture.
func New(cfg Config) (*Player, error) {
	if cfg.TrackSelector == nil {
		return nil, fmt.Errorf("player: TrackSelector must not be nil")
	}
	if len(cfg.Renderers) == 0 {
		return nil, fmt.Errorf("player: at least one Renderer is required")
	}
	if cfg.Clock == nil {
		return nil, fmt.Errorf("player: Clock must not be nil")
	}
	if cfg.Options == (pconfig.Options{}) {
		cfg.Options = pconfig.Default()
	}
	if err := cfg.Options.Validate(); err != nil {
		return nil, fmt.Errorf("player: %w", err)
	}

	commands := coordbus.New[playback.Command]("commands", cfg.Options.CommandQueueDepth)
	updates := coordbus.New[playback.Update]("updates", cfg.Options.UpdateQueueDepth)

	// messages is constructed before the dispatcher so the same Router
	// instance CreateMessage(...).Send() enqueues into is the one the
	// dispatcher delivers from; a dispatcher-owned Router would never see
	// facade-enqueued messages.
	messages := playermsg.New()
	renderers := make([]playback.Renderer, len(cfg.Renderers))
	for i, r := range cfg.Renderers {
		renderers[i] = r
	}
	dispatcher := playback.New(commands, updates,
		playback.WithClock(cfg.Clock),
		playback.WithRenderers(renderers),
		playback.WithMessageRouter(messages),
		playback.WithTickInterval(cfg.Options.MessagePollInterval),
	)

	ctx, cancel := context.WithCancel(context.Background())
	p := &Player{
		cfg:       cfg,
		commands:  commands,
		updates:   updates,
		cancel:    cancel,
		store:     playlist.NewStore(nil),
		lastInfo:  playback.NewDummy(),
		listeners: listenerbus.New[Listener](),
		messages:  messages,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	p.eg = eg
	eg.Go(func() error { return dispatcher.Run(egCtx) })
	eg.Go(func() error { p.reconcileLoop(egCtx); return nil })

	if cfg.Options.DebugServer.Enabled {
		p.debugsrv = debugsrv.New(cfg.Options.DebugServer, p.debugSnapshot)
		p.debugsrv.Start()
	}

	return p, nil
}

func (p *Player) debugSnapshot() debugsrv.Snapshot {
	return debugsrv.Snapshot{
		PlaybackState:        string(p.GetPlaybackState()),
		WindowIndex:          p.GetCurrentWindowIndex(),
		PositionMs:           p.GetCurrentPositionMs(),
		PendingOperationAcks: p.PendingOperationAcks(),
		HasPendingSeek:       p.HasPendingSeek(),
	}
}

// reconcileLoop is the application thread's consumer of internal->app
// updates: one goroutine whose only job is to apply each Update in
// production order and fire listeners, standing in for "the application
// thread's own message loop" the spec assumes as a given.
func (p *Player) reconcileLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.updates.Closed():
			return
		case u, ok := <-p.updates.C():
			if !ok {
				return
			}
			p.applyUpdate(u)
		}
	}
}

func (p *Player) nextCorrelationID() string {
	n := atomic.AddUint64(&p.corrSeq, 1)
	return fmt.Sprintf("%s-%d", uuid.NewString()[:8], n)
}

func (p *Player) send(ctx context.Context, cmd playback.Command) error {
	cmd.CorrelationID = p.nextCorrelationID()
	cctx := plog.ContextWithCorrelationID(ctx, cmd.CorrelationID)
	log := plog.WithContext(cctx, plog.WithComponent("facade"))
	if err := p.commands.Send(cctx, cmd); err != nil {
		log.Warn().Str("kind", string(cmd.Kind)).Err(err).Msg("dropped command")
		return err
	}
	p.mask.pendingOperationAcks++
	pmetrics.PendingOperationAcks.Set(float64(p.mask.pendingOperationAcks))
	return nil
}

// applyUpdate reconciles one Update from the internal thread: reduces the
// ack counter, updates lastInfo, and fires listeners in §4.4's fixed
// sub-event order, omitting any sub-event unchanged from the previous
// snapshot.
func (p *Player) applyUpdate(u playback.Update) {
	prev := p.lastInfo
	p.lastInfo = u.Info

	if u.AckCount > 0 {
		p.mask.pendingOperationAcks -= u.AckCount
		if p.mask.pendingOperationAcks < 0 {
			p.mask.pendingOperationAcks = 0
		}
		pmetrics.PendingOperationAcks.Set(float64(p.mask.pendingOperationAcks))
	}
	if p.mask.pendingOperationAcks == 0 {
		p.mask.hasPendingSeek = false
	}

	p.listeners.Notify(func(l Listener) {
		if u.TimelineChanged && !timeline.Equal(prev.Timeline, u.Info.Timeline) {
			l.OnTimelineChanged(u.Info.Timeline, u.TimelineChangeReason)
		}
		if u.Discontinuity != nil {
			l.OnPositionDiscontinuity(PositionDiscontinuityReason(*u.Discontinuity))
		}
		if u.Info.PlaybackError != nil && !sameError(prev.PlaybackError, u.Info.PlaybackError) {
			l.OnPlayerError(u.Info.PlaybackError)
		}
		if !sameTrackSelection(prev, u.Info) {
			l.OnTracksChanged(u.Info.TrackGroups, u.Info.TrackSelectorResult)
		}
		if prev.IsLoading != u.Info.IsLoading {
			l.OnLoadingChanged(u.Info.IsLoading)
		}
		if prev.PlaybackState != u.Info.PlaybackState || prev.PlayWhenReady != u.Info.PlayWhenReady {
			l.OnPlayerStateChanged(u.Info.PlayWhenReady, u.Info.PlaybackState)
		}
		isPlayingBefore := prev.PlayWhenReady && prev.PlaybackState == state.Ready
		isPlayingAfter := u.Info.PlayWhenReady && u.Info.PlaybackState == state.Ready
		if isPlayingBefore != isPlayingAfter {
			l.OnIsPlayingChanged(isPlayingAfter)
		}
		if u.SeekProcessed {
			l.OnSeekProcessed()
		}
	})
}

// sameTrackSelection reports whether two PlaybackInfo snapshots carry an
// identical track-groups/selection pair. Selections are opaque
// capability output (see internal/playback.TrackSelectorResult), so a
// deep comparison is the only option short of tracking a revision
// counter the dispatcher doesn't maintain.
func sameTrackSelection(prev, next playback.PlaybackInfo) bool {
	return reflect.DeepEqual(prev.TrackGroups, next.TrackGroups) &&
		reflect.DeepEqual(prev.TrackSelectorResult, next.TrackSelectorResult)
}

func sameError(a, b error) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Error() == b.Error()
}

// AddListener registers l. Safe to call from within a listener callback;
// per listenerbus's re-entrancy contract it takes effect starting with
// the next notification pass.
func (p *Player) AddListener(l Listener) { p.listeners.Add(l) }

// RemoveListener unregisters l by identity.
func (p *Player) RemoveListener(l Listener) {
	p.listeners.Remove(l, func(a, b Listener) bool { return a == b })
}

func (p *Player) rejectIfReleased() error {
	if p.released {
		return fmt.Errorf("player: operation called after release()")
	}
	return nil
}

// errInvalidIndex builds the typed InvalidIndexError the spec requires
// for out-of-range playlist arguments.
func errInvalidIndex(op string, index, bound int) error {
	return &perrors.InvalidIndexError{Op: op, Index: index, Bound: bound}
}
