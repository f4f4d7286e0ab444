// Package timeline implements the Timeline/Window/Period data model and the
// MediaPeriodId identity scheme from the coordinator spec.
package timeline

import "time"

// UnsetDuration marks a duration that is not yet known (placeholder
// windows emitted by masking use this).
const UnsetDuration = time.Duration(-1)

// Window is a user-facing unit of content; it may span multiple Periods
// (e.g. ad breaks split a single window into several periods).
type Window struct {
	// Seekable reports whether seeking within this window is permitted.
	Seekable bool
	// Dynamic reports whether the window's content can still change (e.g.
	// a live stream or an unprepared placeholder).
	Dynamic bool
	// DefaultPositionUs is the position a bare seek_to(window, UNSET) lands
	// on, in microseconds relative to the window start.
	DefaultPositionUs int64
	// DurationUs is the window's duration in microseconds, or
	// UnsetDuration if not yet known.
	DurationUs int64
	// FirstPeriodIndex and LastPeriodIndex index into Timeline.Periods.
	FirstPeriodIndex int
	LastPeriodIndex  int
	// PositionInFirstPeriodUs offsets the window's start from the start of
	// its first period (used by clipped sources).
	PositionInFirstPeriodUs int64
}

// AdPlaybackState describes in-progress ad insertion for a Period. A nil
// *AdPlaybackState means the period carries no ad state.
type AdPlaybackState struct {
	AdGroupCount int
}

// Period is a contiguous, independently schedulable media region with a
// stable identity across timeline refreshes.
type Period struct {
	// UID is the period's stable opaque identity.
	UID string
	// DurationUs is the period duration in microseconds, or UnsetDuration.
	DurationUs int64
	// PositionInWindowUs is this period's offset from its window's start.
	PositionInWindowUs int64
	// WindowIndex is the index of the Window this period belongs to.
	WindowIndex int
	// Ads is non-nil when this period carries ad-playback state.
	Ads *AdPlaybackState
}

// Timeline is a finite ordered sequence of windows, each decomposed into
// one or more periods.
type Timeline struct {
	Windows []Window
	Periods []Period
}

// Empty is the canonical empty timeline: zero windows, zero periods.
var Empty = Timeline{}

// WindowCount returns the number of windows.
func (t Timeline) WindowCount() int { return len(t.Windows) }

// PeriodCount returns the number of periods.
func (t Timeline) PeriodCount() int { return len(t.Periods) }

// IsEmpty reports whether the timeline has no windows.
func (t Timeline) IsEmpty() bool { return len(t.Windows) == 0 }

// PeriodIndexOfUID returns the index of the period with the given UID, or
// -1 if not present.
func (t Timeline) PeriodIndexOfUID(uid string) int {
	for i, p := range t.Periods {
		if p.UID == uid {
			return i
		}
	}
	return -1
}

// FirstPeriodIndexOfWindow returns the absolute period index of a window's
// first period.
func (t Timeline) FirstPeriodIndexOfWindow(windowIndex int) (int, bool) {
	if windowIndex < 0 || windowIndex >= len(t.Windows) {
		return 0, false
	}
	return t.Windows[windowIndex].FirstPeriodIndex, true
}

// Equal reports whether two timelines are equal under the definition used
// by listeners to detect "same timeline": window count, period count, and
// all per-window/per-period attributes must match. Period UIDs are
// excluded, matching the spec's equality used for SOURCE_UPDATE
// suppression decisions.
func Equal(a, b Timeline) bool {
	if len(a.Windows) != len(b.Windows) || len(a.Periods) != len(b.Periods) {
		return false
	}
	for i := range a.Windows {
		wa, wb := a.Windows[i], b.Windows[i]
		if wa.Seekable != wb.Seekable ||
			wa.Dynamic != wb.Dynamic ||
			wa.DefaultPositionUs != wb.DefaultPositionUs ||
			wa.DurationUs != wb.DurationUs ||
			wa.FirstPeriodIndex != wb.FirstPeriodIndex ||
			wa.LastPeriodIndex != wb.LastPeriodIndex ||
			wa.PositionInFirstPeriodUs != wb.PositionInFirstPeriodUs {
			return false
		}
	}
	for i := range a.Periods {
		pa, pb := a.Periods[i], b.Periods[i]
		if pa.DurationUs != pb.DurationUs ||
			pa.PositionInWindowUs != pb.PositionInWindowUs ||
			pa.WindowIndex != pb.WindowIndex ||
			(pa.Ads == nil) != (pb.Ads == nil) {
			return false
		}
		if pa.Ads != nil && pa.Ads.AdGroupCount != pb.Ads.AdGroupCount {
			return false
		}
	}
	return true
}

// MediaPeriodId identifies one specific instance of a period being played.
// WindowSequenceNumber disambiguates repeated plays of the same period
// (e.g. under REPEAT_ALL): it is assigned monotonically by
// SequenceAllocator.Next each time a new period instance is created and
// never reused.
type MediaPeriodId struct {
	PeriodUID            string
	WindowSequenceNumber int64
	// AdGroupIndex and AdIndexInAdGroup are -1 when the id does not refer
	// to an ad period, matching the spec's optional-int semantics without
	// overloading a sentinel that could collide with a real index.
	AdGroupIndex     int
	AdIndexInAdGroup int
}

// NoAd is the sentinel used for AdGroupIndex/AdIndexInAdGroup when a
// MediaPeriodId does not refer to an ad.
const NoAd = -1

// IsAd reports whether this id refers to an ad period.
func (id MediaPeriodId) IsAd() bool { return id.AdGroupIndex != NoAd }

// SequenceAllocator hands out monotonically increasing window sequence
// numbers, one per created period instance. It is owned by the internal
// playback thread; the facade never allocates sequence numbers itself.
type SequenceAllocator struct {
	next int64
}

// Next returns the next window sequence number.
func (a *SequenceAllocator) Next() int64 {
	n := a.next
	a.next++
	return n
}
