package player

import (
	"github.com/mediacore/playercore/internal/state"
	"github.com/mediacore/playercore/internal/timeline"
)

// GetPlaybackState returns the coarse playback lifecycle state.
func (p *Player) GetPlaybackState() state.PlaybackState { return p.lastInfo.PlaybackState }

// GetPlayWhenReady returns the last acknowledged play-when-ready flag.
func (p *Player) GetPlayWhenReady() bool { return p.lastInfo.PlayWhenReady }

// GetPlaybackError returns the current playback error, if any.
func (p *Player) GetPlaybackError() error { return p.lastInfo.PlaybackError }

// GetCurrentTimeline returns the facade's masked timeline: the synthetic
// timeline derived from playlist holders, which already reflects queued
// mutations the internal thread hasn't acked yet.
func (p *Player) GetCurrentTimeline() timeline.Timeline { return p.maskedTimeline() }

// isMasking reports whether positional getters must be served from the
// facade's mask fields rather than the last PlaybackInfo: true while
// operations are still in flight, or while the timeline is empty.
func (p *Player) isMasking() bool {
	return p.mask.pendingOperationAcks > 0 || p.maskedTimeline().IsEmpty()
}

// GetCurrentWindowIndex returns the currently playing (or masked) window.
func (p *Player) GetCurrentWindowIndex() int {
	if p.isMasking() {
		return p.mask.windowIndex
	}
	idx := p.lastInfo.Timeline.PeriodIndexOfUID(p.lastInfo.PeriodID.PeriodUID)
	if idx < 0 {
		return 0
	}
	return p.lastInfo.Timeline.Periods[idx].WindowIndex
}

// GetCurrentPeriodIndex returns the currently playing (or masked) period.
func (p *Player) GetCurrentPeriodIndex() int {
	if p.isMasking() {
		return p.mask.periodIndex
	}
	idx := p.lastInfo.Timeline.PeriodIndexOfUID(p.lastInfo.PeriodID.PeriodUID)
	if idx < 0 {
		return 0
	}
	return idx
}

// GetCurrentPositionMs returns the currently playing (or masked) position
// in the current window, in milliseconds.
func (p *Player) GetCurrentPositionMs() int64 {
	if p.isMasking() {
		return p.mask.windowPositionMs
	}
	return p.lastInfo.PositionUs / 1000
}

// GetContentBufferedPositionMs returns the buffered position ignoring ad
// insertion, masked the same way as GetCurrentPositionMs.
func (p *Player) GetContentBufferedPositionMs() int64 {
	if p.isMasking() {
		return p.mask.windowPositionMs
	}
	return p.lastInfo.BufferedPositionUs / 1000
}

// HasPendingSeek reports whether a seek issued by this facade is still
// awaiting acknowledgment from the internal thread.
func (p *Player) HasPendingSeek() bool { return p.mask.hasPendingSeek }

// PendingOperationAcks exposes the current ack-debt count, primarily for
// diagnostics and tests.
func (p *Player) PendingOperationAcks() int { return p.mask.pendingOperationAcks }
