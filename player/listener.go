package player

import (
	"github.com/mediacore/playercore/internal/playback"
	"github.com/mediacore/playercore/internal/state"
	"github.com/mediacore/playercore/internal/timeline"
)

// TimelineChangeReason re-exports the internal reason type for callers
// that only import player.
type TimelineChangeReason = playback.TimelineChangeReason

// PositionDiscontinuityReason classifies a position jump. Its values
// mirror the internal dispatcher's DiscontinuityReason one for one; the
// facade converts the reason carried on each Update directly.
type PositionDiscontinuityReason string

const (
	DiscontinuityPeriodTransition PositionDiscontinuityReason = "PERIOD_TRANSITION"
	DiscontinuitySeek             PositionDiscontinuityReason = "SEEK"
	DiscontinuitySeekAdjustment   PositionDiscontinuityReason = "SEEK_ADJUSTMENT"
	DiscontinuityAdInsertion      PositionDiscontinuityReason = "AD_INSERTION"
	DiscontinuityInternal         PositionDiscontinuityReason = "INTERNAL"
)

// Listener is the facade's public observer interface. Sub-events fire, for
// one update, in this fixed order: TimelineChanged, PositionDiscontinuity,
// PlayerError, TracksChanged, LoadingChanged, PlayerStateChanged,
// IsPlayingChanged, SeekProcessed. A sub-event is omitted from a given
// update's dispatch if unchanged from the previous snapshot.
type Listener interface {
	OnTimelineChanged(tl timeline.Timeline, reason TimelineChangeReason)
	OnPositionDiscontinuity(reason PositionDiscontinuityReason)
	OnPlayerError(err error)
	OnTracksChanged(groups []playback.TrackGroup, selection playback.TrackSelectorResult)
	OnLoadingChanged(isLoading bool)
	OnPlayerStateChanged(playWhenReady bool, playbackState state.PlaybackState)
	OnIsPlayingChanged(isPlaying bool)
	OnSeekProcessed()
}

// BaseListener gives callers a no-op Listener to embed, so they only
// override the sub-events they care about, in the same spirit as the
// teacher's optional-interface capability embeds.
type BaseListener struct{}

func (BaseListener) OnTimelineChanged(timeline.Timeline, TimelineChangeReason)           {}
func (BaseListener) OnPositionDiscontinuity(PositionDiscontinuityReason)                 {}
func (BaseListener) OnPlayerError(error)                                                 {}
func (BaseListener) OnTracksChanged([]playback.TrackGroup, playback.TrackSelectorResult) {}
func (BaseListener) OnLoadingChanged(bool)                                               {}
func (BaseListener) OnPlayerStateChanged(bool, state.PlaybackState)                      {}
func (BaseListener) OnIsPlayingChanged(bool)                                             {}
func (BaseListener) OnSeekProcessed()                                                    {}
