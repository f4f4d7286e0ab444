package player

import (
	"context"
	"time"

	"github.com/mediacore/playercore/internal/perrors"
	"github.com/mediacore/playercore/internal/playback"
	"github.com/mediacore/playercore/internal/playlist"
	"github.com/mediacore/playercore/internal/state"
	"github.com/mediacore/playercore/internal/timeline"
)

// Prepare: no-op unless playbackState is IDLE. Otherwise forwards a
// prepare command; the internal thread clears any playback error and
// moves to BUFFERING (ENDED for an empty playlist), which the facade
// observes when that update is applied. Does not touch the playlist or
// position.
func (p *Player) Prepare(ctx context.Context) error {
	if err := p.rejectIfReleased(); err != nil {
		return err
	}
	if p.lastInfo.PlaybackState != state.Idle {
		return nil
	}
	return p.send(ctx, playback.Command{Kind: playback.CmdPrepare})
}

// SetMediaItems atomically replaces the playlist with items. If
// startWindow is negative, position is preserved or reset per
// resetPosition; otherwise the player seeks to (startWindow,
// startPositionMs) at the same time. The masked timeline is recomputed
// before the command is sent, so GetCurrentTimeline reflects the new
// playlist at once; listeners receive the PLAYLIST_CHANGED
// timeline-changed event only when the internal thread's update for this
// command is applied, not during this call.
func (p *Player) SetMediaItems(ctx context.Context, items []MediaSource, startWindow int, startPositionMs int64, resetPosition bool) error {
	if err := p.rejectIfReleased(); err != nil {
		return err
	}
	newHolders := make([]*playlist.Holder, len(items))
	for i, it := range items {
		newHolders[i] = playlist.NewPlaceholderHolder(it)
	}
	windowCount := 0
	for _, h := range newHolders {
		windowCount += h.MaskedWindowCount()
	}
	hasStart := startWindow >= 0
	if hasStart && startWindow >= windowCount {
		return errInvalidIndex("set_media_items", startWindow, windowCount)
	}

	p.store.ReplaceAll(newHolders)
	if hasStart {
		p.mask.windowIndex = startWindow
		p.mask.windowPositionMs = startPositionMs
		p.mask.hasPendingSeek = true
	} else if resetPosition {
		p.mask.windowIndex = 0
		p.mask.windowPositionMs = 0
	}

	return p.send(ctx, playback.Command{
		Kind:           playback.CmdSetMediaItems,
		Items:          items,
		HasStartWindow: hasStart,
		StartWindow:    startWindow,
		StartPosMs:     startPositionMs,
		ResetPosition:  resetPosition,
	})
}

// AddMediaItems inserts items at index (0 <= index <= playlist length).
func (p *Player) AddMediaItems(ctx context.Context, index int, items []MediaSource) error {
	if err := p.rejectIfReleased(); err != nil {
		return err
	}
	if index < 0 || index > p.store.Len() {
		return errInvalidIndex("add_media_items", index, p.store.Len())
	}
	holders := make([]*playlist.Holder, len(items))
	for i, it := range items {
		holders[i] = playlist.NewPlaceholderHolder(it)
	}
	p.store.InsertRangeAt(index, holders)
	return p.send(ctx, playback.Command{Kind: playback.CmdAddMediaItems, AddAt: index, Items: items})
}

// RemoveMediaItems removes the half-open range [from,to).
func (p *Player) RemoveMediaItems(ctx context.Context, from, to int) error {
	if err := p.rejectIfReleased(); err != nil {
		return err
	}
	if from < 0 || to > p.store.Len() || to <= from {
		return errInvalidIndex("remove_media_items", from, p.store.Len())
	}
	p.store.RemoveRange(from, to)
	return p.send(ctx, playback.Command{Kind: playback.CmdRemoveMediaItems, RemoveFrom: from, RemoveTo: to})
}

// MoveMediaItems relocates [from,to) so it starts at newFrom.
func (p *Player) MoveMediaItems(ctx context.Context, from, to, newFrom int) error {
	if err := p.rejectIfReleased(); err != nil {
		return err
	}
	if from < 0 || to > p.store.Len() || to <= from {
		return errInvalidIndex("move_media_items", from, p.store.Len())
	}
	p.store.MoveRange(from, to, newFrom)
	return p.send(ctx, playback.Command{Kind: playback.CmdMoveMediaItems, MoveFrom: from, MoveTo: to, MoveNewFrom: newFrom})
}

// ClearMediaItems empties the playlist.
func (p *Player) ClearMediaItems(ctx context.Context) error {
	if err := p.rejectIfReleased(); err != nil {
		return err
	}
	p.store.Clear()
	return p.send(ctx, playback.Command{Kind: playback.CmdClearMediaItems})
}

// SeekTo validates windowIndex against the current masked timeline's
// window count (unless it is empty) and, if valid, updates the mask to
// the target position and forwards a seek command.
func (p *Player) SeekTo(ctx context.Context, windowIndex int, positionMs int64) error {
	if err := p.rejectIfReleased(); err != nil {
		return err
	}
	tl := p.store.MaskedTimeline()
	if !tl.IsEmpty() && (windowIndex < 0 || windowIndex >= tl.WindowCount()) {
		return &perrors.IllegalSeekPositionError{WindowIndex: windowIndex, WindowCount: tl.WindowCount()}
	}
	p.mask.hasPendingSeek = true
	p.mask.windowIndex = windowIndex
	p.mask.windowPositionMs = positionMs
	p.mask.periodIndex, _ = tl.FirstPeriodIndexOfWindow(windowIndex)
	return p.send(ctx, playback.Command{Kind: playback.CmdSeekTo, SeekWindow: windowIndex, SeekPosMs: positionMs})
}

func (p *Player) SetPlayWhenReady(ctx context.Context, flag bool) error {
	if err := p.rejectIfReleased(); err != nil {
		return err
	}
	return p.send(ctx, playback.Command{Kind: playback.CmdSetPlayWhenReady, PlayWhenReady: flag})
}

func (p *Player) SetRepeatMode(ctx context.Context, mode playlist.RepeatMode) error {
	if err := p.rejectIfReleased(); err != nil {
		return err
	}
	return p.send(ctx, playback.Command{Kind: playback.CmdSetRepeatMode, RepeatMode: mode})
}

func (p *Player) SetShuffleModeEnabled(ctx context.Context, flag bool) error {
	if err := p.rejectIfReleased(); err != nil {
		return err
	}
	return p.send(ctx, playback.Command{Kind: playback.CmdSetShuffleModeEnabled, ShuffleModeEnabled: flag})
}

func (p *Player) SetShuffleOrder(ctx context.Context, order playlist.ShuffleOrder) error {
	if err := p.rejectIfReleased(); err != nil {
		return err
	}
	if order != nil {
		p.store.SetShuffleOrder(order)
	}
	return p.send(ctx, playback.Command{Kind: playback.CmdSetShuffleOrder, ShuffleOrder: order})
}

func (p *Player) SetPlaybackParameters(ctx context.Context, params playback.PlaybackParameters) error {
	if err := p.rejectIfReleased(); err != nil {
		return err
	}
	p.mask.pendingSetPlaybackParamsAcks++
	return p.send(ctx, playback.Command{Kind: playback.CmdSetPlaybackParameters, PlaybackParams: params})
}

func (p *Player) SetSeekParameters(ctx context.Context, params playback.SeekParameters) error {
	if err := p.rejectIfReleased(); err != nil {
		return err
	}
	return p.send(ctx, playback.Command{Kind: playback.CmdSetSeekParameters, SeekParams: params})
}

func (p *Player) SetForegroundMode(ctx context.Context, flag bool) error {
	if err := p.rejectIfReleased(); err != nil {
		return err
	}
	return p.send(ctx, playback.Command{Kind: playback.CmdSetForegroundMode, ForegroundMode: flag})
}

// Stop halts playback, reverting playbackState toward IDLE. If reset is
// true, position and playlist-derived mask state are cleared; stop never
// clears the playlist itself (that's ClearMediaItems's job).
func (p *Player) Stop(ctx context.Context, reset bool) error {
	if err := p.rejectIfReleased(); err != nil {
		return err
	}
	if reset {
		p.mask.windowIndex = 0
		p.mask.periodIndex = 0
		p.mask.windowPositionMs = 0
	}
	return p.send(ctx, playback.Command{Kind: playback.CmdStop, ResetPosition: reset})
}

// Release stops the internal thread and drains its queue. Further
// operations on this Player are rejected. Not itself reversible.
func (p *Player) Release(ctx context.Context) error {
	if p.released {
		return nil
	}
	err := p.send(ctx, playback.Command{Kind: playback.CmdRelease})
	if err == nil {
		// Let the internal thread drain the commands queued ahead of the
		// release and release its sources; it closes the update bus when
		// done. ctx bounds the wait.
		select {
		case <-p.updates.Closed():
		case <-ctx.Done():
		}
	}
	p.released = true
	p.cancel()
	if p.debugsrv != nil {
		_ = p.debugsrv.Shutdown(5 * time.Second)
	}
	if p.eg != nil {
		_ = p.eg.Wait()
	}
	return err
}

// maskedTimeline lets tests/internal callers observe the mask
// timeline without waiting on a round trip; kept unexported since it's a
// read path used by getters.go, not an operation in its own right.
func (p *Player) maskedTimeline() timeline.Timeline {
	return p.store.MaskedTimeline()
}
