package playlist

import (
	"testing"

	"github.com/mediacore/playercore/internal/timeline"
	"github.com/stretchr/testify/require"
)

type fakeSource struct{ name string }

func (f *fakeSource) Prepare(func(timeline.Timeline)) error { return nil }
func (f *fakeSource) MaybeThrowSourceError() error          { return nil }
func (f *fakeSource) Release()                              {}

func holders(names ...string) []*Holder {
	out := make([]*Holder, len(names))
	for i, n := range names {
		out[i] = NewPlaceholderHolder(&fakeSource{name: n})
	}
	return out
}

func namesOf(hs []*Holder) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = h.Source.(*fakeSource).name
	}
	return out
}

func TestInsertRangeAt(t *testing.T) {
	s := NewStore(nil)
	s.InsertRangeAt(0, holders("a", "b", "c"))
	require.Equal(t, []string{"a", "b", "c"}, namesOf(s.Holders()))
	require.Equal(t, 3, s.ShuffleOrder().Length())

	s.InsertRangeAt(1, holders("x"))
	require.Equal(t, []string{"a", "x", "b", "c"}, namesOf(s.Holders()))
	require.Equal(t, 4, s.ShuffleOrder().Length())
}

func TestRemoveRange(t *testing.T) {
	s := NewStore(nil)
	s.InsertRangeAt(0, holders("a", "b", "c", "d"))
	removed := s.RemoveRange(1, 3)
	require.Equal(t, []string{"b", "c"}, namesOf(removed))
	require.Equal(t, []string{"a", "d"}, namesOf(s.Holders()))
	require.Equal(t, 2, s.ShuffleOrder().Length())
}

func TestMoveRangePreservesRelativeOrderAndClampsNewFrom(t *testing.T) {
	s := NewStore(nil)
	s.InsertRangeAt(0, holders("a", "b", "c", "d", "e"))

	// Move [1,3) ("b","c") to index 3: removing b,c leaves [a,d,e]; newFrom
	// is clamped to len-(to-from)=3 (already 3) and indexes that
	// post-removal array, so b,c go at the end -> [a,d,e,b,c].
	s.MoveRange(1, 3, 3)
	require.Equal(t, []string{"a", "d", "e", "b", "c"}, namesOf(s.Holders()))
	require.Equal(t, 5, s.ShuffleOrder().Length())
}

func TestMoveRangeClampsOutOfBoundsNewFrom(t *testing.T) {
	s := NewStore(nil)
	s.InsertRangeAt(0, holders("a", "b", "c"))
	// Moving [0,1) to newFrom=100 must clamp to len-(1-0)=2.
	s.MoveRange(0, 1, 100)
	require.Equal(t, []string{"b", "c", "a"}, namesOf(s.Holders()))
}

func TestClearEquivalentToRemoveFullRange(t *testing.T) {
	s := NewStore(nil)
	s.InsertRangeAt(0, holders("a", "b"))
	removed := s.Clear()
	require.Equal(t, 2, len(removed))
	require.Equal(t, 0, s.Len())
	require.Equal(t, 0, s.ShuffleOrder().Length())
}

func TestReplaceAllResetsShuffleOrder(t *testing.T) {
	s := NewStore(nil)
	s.InsertRangeAt(0, holders("a", "b"))
	removed := s.ReplaceAll(holders("x", "y", "z"))
	require.Equal(t, 2, len(removed))
	require.Equal(t, []string{"x", "y", "z"}, namesOf(s.Holders()))
	require.Equal(t, 3, s.ShuffleOrder().Length())
}

func TestMaskedTimelinePlaceholderForUnpreparedHolders(t *testing.T) {
	s := NewStore(nil)
	s.InsertRangeAt(0, holders("a", "b"))
	tl := s.MaskedTimeline()
	require.Equal(t, 2, tl.WindowCount())
	require.Equal(t, 2, tl.PeriodCount())
	for _, w := range tl.Windows {
		require.False(t, w.Seekable)
		require.True(t, w.Dynamic)
		require.Equal(t, int64(timeline.UnsetDuration), w.DurationUs)
	}
	// Placeholder period UIDs must be unique and non-empty.
	require.NotEmpty(t, tl.Periods[0].UID)
	require.NotEqual(t, tl.Periods[0].UID, tl.Periods[1].UID)
}

func TestMaskedTimelinePlaceholderUIDIsStableAcrossCalls(t *testing.T) {
	s := NewStore(nil)
	s.InsertRangeAt(0, holders("a"))

	first := s.MaskedTimeline()
	second := s.MaskedTimeline()
	require.Equal(t, first.Periods[0].UID, second.Periods[0].UID, "an unprepared holder's placeholder period UID must stay stable across repeated masking passes")
}

func TestMaskedTimelineUsesRealTimelineForPreparedHolders(t *testing.T) {
	s := NewStore(nil)
	hs := holders("a")
	real := timeline.Timeline{
		Windows: []timeline.Window{{Seekable: true, DurationUs: 5000, FirstPeriodIndex: 0, LastPeriodIndex: 0}},
		Periods: []timeline.Period{{UID: "real-uid", DurationUs: 5000, WindowIndex: 0}},
	}
	hs[0].Prepared = true
	hs[0].Timeline = real
	s.InsertRangeAt(0, hs)

	tl := s.MaskedTimeline()
	require.Equal(t, 1, tl.WindowCount())
	require.True(t, tl.Windows[0].Seekable)
	require.Equal(t, "real-uid", tl.Periods[0].UID)
}
