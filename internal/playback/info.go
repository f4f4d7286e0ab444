package playback

import (
	"github.com/mediacore/playercore/internal/perrors"
	"github.com/mediacore/playercore/internal/state"
	"github.com/mediacore/playercore/internal/timeline"
)

// TrackGroup and TrackSelectorResult are opaque capability outputs; the
// coordinator only ever stores and round-trips them, never inspects their
// contents (track selection policy is out of scope for this core).
type TrackGroup struct {
	ID string
}

type TrackSelectorResult struct {
	Selections map[string]string
}

// PlaybackInfo is the authoritative, immutable playback snapshot produced
// only by the internal dispatcher. Every change produces a fresh value;
// nothing ever mutates a PlaybackInfo in place once handed to the facade.
type PlaybackInfo struct {
	Timeline                timeline.Timeline
	PeriodID                timeline.MediaPeriodId
	PositionUs              int64
	ContentPositionUs       int64
	PlaybackState           state.PlaybackState
	PlaybackError           error
	IsLoading               bool
	TrackGroups             []TrackGroup
	TrackSelectorResult     TrackSelectorResult
	LoadingMediaPeriodID    timeline.MediaPeriodId
	BufferedPositionUs      int64
	TotalBufferedDurationUs int64
	PlayWhenReady           bool
}

// NewDummy returns the construction-time placeholder PlaybackInfo: empty
// timeline, zeroed positions, state IDLE, no error.
func NewDummy() PlaybackInfo {
	return PlaybackInfo{
		Timeline:      timeline.Empty,
		PlaybackState: state.Idle,
	}
}

// DiscontinuityReason classifies a position jump.
type DiscontinuityReason string

const (
	DiscontinuityPeriodTransition DiscontinuityReason = "PERIOD_TRANSITION"
	DiscontinuitySeek             DiscontinuityReason = "SEEK"
	DiscontinuitySeekAdjustment   DiscontinuityReason = "SEEK_ADJUSTMENT"
	DiscontinuityAdInsertion      DiscontinuityReason = "AD_INSERTION"
	DiscontinuityInternal         DiscontinuityReason = "INTERNAL"
)

// Update is the single message the internal dispatcher emits back to the
// facade per processed command. Each facade command gets exactly one
// Update with AckCount 1; updates from source-info refreshes, period
// transitions and end of playback carry AckCount 0. Commands are never
// batched into one Update.
type Update struct {
	Info                 PlaybackInfo
	AckCount             int
	Discontinuity        *DiscontinuityReason
	SeekProcessed        bool
	TimelineChanged      bool
	TimelineChangeReason TimelineChangeReason
}

// TimelineChangeReason classifies why the timeline attached to an Update
// changed, matching the facade's onTimelineChanged reason set.
type TimelineChangeReason string

const (
	TimelineReasonPlaylistChanged TimelineChangeReason = "PLAYLIST_CHANGED"
	TimelineReasonSourceUpdate    TimelineChangeReason = "SOURCE_UPDATE"
)

// asFatalPlaybackError converts an internal error into the playback-error
// form PlaybackInfo carries, classifying it for metrics/logging.
func asFatalPlaybackError(err error) (error, perrors.Code) {
	return err, perrors.AsPlaybackError(err)
}
