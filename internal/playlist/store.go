package playlist

import (
	"github.com/mediacore/playercore/internal/timeline"
)

// Store is the ordered sequence of MediaSourceHolders. Both the facade
// (application thread) and the internal dispatcher (playback thread) own
// their own Store instance, kept in sync by command messages; Store itself
// is not safe for concurrent use across threads and must not be shared.
type Store struct {
	holders []*Holder
	shuffle ShuffleOrder
}

// NewStore creates an empty Store with the given ShuffleOrder
// implementation (see DefaultShuffleOrder for the out-of-the-box one).
func NewStore(shuffle ShuffleOrder) *Store {
	if shuffle == nil {
		shuffle = NewDefaultShuffleOrder(0)
	}
	return &Store{shuffle: shuffle}
}

// Len returns the number of holders.
func (s *Store) Len() int { return len(s.holders) }

// Holders returns the holders in insertion order. Callers must not mutate
// the returned slice; it is shared with the Store.
func (s *Store) Holders() []*Holder { return s.holders }

// Holder returns the holder at index, or nil if out of range.
func (s *Store) Holder(index int) *Holder {
	if index < 0 || index >= len(s.holders) {
		return nil
	}
	return s.holders[index]
}

// ShuffleOrder returns the current shuffle order.
func (s *Store) ShuffleOrder() ShuffleOrder { return s.shuffle }

// SetShuffleOrder replaces the shuffle order; the caller must ensure its
// length already matches Len(), matching the spec's invariant that a
// ShuffleOrder's length always equals the playlist length.
func (s *Store) SetShuffleOrder(order ShuffleOrder) {
	if order == nil {
		order = NewDefaultShuffleOrder(len(s.holders))
	}
	s.shuffle = order
}

// InsertRangeAt inserts newHolders at index (0 <= index <= Len()).
func (s *Store) InsertRangeAt(index int, newHolders []*Holder) {
	if index < 0 {
		index = 0
	}
	if index > len(s.holders) {
		index = len(s.holders)
	}
	out := make([]*Holder, 0, len(s.holders)+len(newHolders))
	out = append(out, s.holders[:index]...)
	out = append(out, newHolders...)
	out = append(out, s.holders[index:]...)
	s.holders = out
	s.shuffle = s.shuffle.CloneAndInsert(index, len(newHolders))
	s.reindex()
}

// RemoveRange removes the half-open range [from,to) and returns the
// removed holders.
func (s *Store) RemoveRange(from, to int) []*Holder {
	if from < 0 {
		from = 0
	}
	if to > len(s.holders) {
		to = len(s.holders)
	}
	if from >= to {
		return nil
	}
	removed := append([]*Holder(nil), s.holders[from:to]...)
	out := make([]*Holder, 0, len(s.holders)-(to-from))
	out = append(out, s.holders[:from]...)
	out = append(out, s.holders[to:]...)
	s.holders = out
	s.shuffle = s.shuffle.CloneAndRemove(from, to)
	s.reindex()
	return removed
}

// MoveRange relocates the half-open range [from,to) so it starts at
// newFrom, clamped to len-(to-from). The relative order of moved and
// non-moved items is preserved. The shuffle order is updated by composing
// CloneAndRemove(from,to) with CloneAndInsert(newFrom,count), the same
// remove-then-reinsert decomposition the reference implementation uses to
// keep a move from recreating the shuffle order from scratch.
func (s *Store) MoveRange(from, to, newFrom int) {
	n := len(s.holders)
	if from < 0 {
		from = 0
	}
	if to > n {
		to = n
	}
	if from >= to {
		return
	}
	count := to - from
	maxFrom := n - count
	if newFrom < 0 {
		newFrom = 0
	}
	if newFrom > maxFrom {
		newFrom = maxFrom
	}
	if newFrom == from {
		return
	}

	moved := append([]*Holder(nil), s.holders[from:to]...)
	rest := make([]*Holder, 0, n-count)
	rest = append(rest, s.holders[:from]...)
	rest = append(rest, s.holders[to:]...)

	out := make([]*Holder, 0, n)
	out = append(out, rest[:newFrom]...)
	out = append(out, moved...)
	out = append(out, rest[newFrom:]...)
	s.holders = out
	s.shuffle = s.shuffle.CloneAndRemove(from, to).CloneAndInsert(newFrom, count)
	s.reindex()
}

// ReplaceAll atomically replaces the entire playlist with newHolders.
func (s *Store) ReplaceAll(newHolders []*Holder) []*Holder {
	removed := s.holders
	s.holders = append([]*Holder(nil), newHolders...)
	s.shuffle = NewDefaultShuffleOrder(len(s.holders))
	s.reindex()
	return removed
}

// Clear removes every holder, equivalent to RemoveRange(0, Len()).
func (s *Store) Clear() []*Holder {
	return s.RemoveRange(0, len(s.holders))
}

// HolderIndexForWindow returns the index of the holder that owns
// windowIndex in the masked timeline, or -1 if windowIndex is out of
// range. Used by repeat/shuffle navigation to map a timeline window back
// to the playlist entry it belongs to.
func (s *Store) HolderIndexForWindow(windowIndex int) int {
	for i, h := range s.holders {
		n := h.MaskedWindowCount()
		if windowIndex >= h.FirstWindowIndexInPlaylist && windowIndex < h.FirstWindowIndexInPlaylist+n {
			return i
		}
	}
	return -1
}

// reindex recomputes each holder's cached window/period offsets.
func (s *Store) reindex() {
	windowOffset, periodOffset := 0, 0
	for _, h := range s.holders {
		h.FirstWindowIndexInPlaylist = windowOffset
		h.FirstPeriodIndexInPlaylist = periodOffset
		windowOffset += h.MaskedWindowCount()
		periodOffset += h.MaskedPeriodCount()
	}
}

// NewPlaceholderHolder wraps src in a Holder carrying no real timeline
// yet; MaskedTimeline will synthesize a placeholder window/period for it.
func NewPlaceholderHolder(src MediaSource) *Holder {
	return &Holder{Source: src}
}

// MaskedTimeline computes the synthetic timeline the facade emits
// synchronously: already-prepared holders contribute their last known
// real timeline; unprepared holders contribute a single placeholder
// window (isSeekable=false, isDynamic=true, duration=UNSET) and a single
// placeholder period carrying the holder's PlaceholderUID, which is minted
// on first use and stays the same across calls.
func (s *Store) MaskedTimeline() timeline.Timeline {
	var out timeline.Timeline
	windowOffset := 0
	for _, h := range s.holders {
		if h.Prepared && !h.Timeline.IsEmpty() {
			base := len(out.Periods)
			for _, p := range h.Timeline.Periods {
				p.WindowIndex += windowOffset
				out.Periods = append(out.Periods, p)
			}
			for _, w := range h.Timeline.Windows {
				w.FirstPeriodIndex += base
				w.LastPeriodIndex += base
				out.Windows = append(out.Windows, w)
			}
			windowOffset += h.Timeline.WindowCount()
			continue
		}

		periodIndex := len(out.Periods)
		out.Periods = append(out.Periods, timeline.Period{
			UID:                h.PlaceholderUID(),
			DurationUs:         int64(timeline.UnsetDuration),
			PositionInWindowUs: 0,
			WindowIndex:        windowOffset,
		})
		out.Windows = append(out.Windows, timeline.Window{
			Seekable:         false,
			Dynamic:          true,
			DurationUs:       int64(timeline.UnsetDuration),
			FirstPeriodIndex: periodIndex,
			LastPeriodIndex:  periodIndex,
		})
		windowOffset++
	}
	return out
}
