// Package playlist implements the ordered sequence of MediaSourceHolders,
// the shuffle-order permutation over it, and the synthetic ("masked")
// timeline the facade derives from it before the real timeline arrives.
package playlist

import (
	"github.com/google/uuid"

	"github.com/mediacore/playercore/internal/timeline"
)

// MediaSource is the capability the coordinator consumes opaquely; track
// selection, bandwidth estimation, demuxing, etc. live behind it. It is
// intentionally minimal: the coordinator never inspects a MediaSource's
// internals, only calls these methods and reacts to the Timeline it
// eventually reports.
type MediaSource interface {
	// Prepare begins asynchronous preparation; onSourceInfoRefreshed is
	// invoked (possibly more than once) as the real Timeline becomes known
	// or changes.
	Prepare(onSourceInfoRefreshed func(timeline.Timeline)) error
	MaybeThrowSourceError() error
	Release()
}

// Holder owns one MediaSource plus whether it has been lazily prepared.
// A holder's identity (pointer identity) is stable across its position in
// the playlist; reordering moves holders, it never recreates them.
type Holder struct {
	Source   MediaSource
	Prepared bool
	// Timeline is the last real timeline reported for this holder by its
	// MediaSource, or timeline.Empty if none has arrived yet.
	Timeline timeline.Timeline
	// FirstWindowIndexInPlaylist caches the absolute window offset this
	// holder contributes at, refreshed by Store.reindex.
	FirstWindowIndexInPlaylist int
	FirstPeriodIndexInPlaylist int

	// placeholderUID is the opaque period UID handed out for this holder's
	// single synthetic period while it remains unprepared. It is minted
	// once, lazily, and reused by every MaskedTimeline call so a period's
	// identity stays stable across repeated masking passes (e.g. repeated
	// seeks into the same still-unprepared window must observe the same
	// periodUid, not a fresh one per call).
	placeholderUID string
}

// PlaceholderUID returns this holder's stable synthetic period UID,
// minting it on first use.
func (h *Holder) PlaceholderUID() string {
	if h.placeholderUID == "" {
		h.placeholderUID = uuid.NewString()
	}
	return h.placeholderUID
}

// MaskedWindowCount reports how many windows this holder contributes to
// the masked (or real) timeline: the real count once prepared, 1
// (a single placeholder window) before that.
func (h *Holder) MaskedWindowCount() int {
	if h.Prepared && !h.Timeline.IsEmpty() {
		return h.Timeline.WindowCount()
	}
	return 1
}

func (h *Holder) MaskedPeriodCount() int {
	if h.Prepared && !h.Timeline.IsEmpty() {
		return h.Timeline.PeriodCount()
	}
	return 1
}
