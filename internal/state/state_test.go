package state

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionTable_NoDuplicateEdges(t *testing.T) {
	seen := map[PlaybackState]map[EventKind]struct{}{}
	for _, tr := range transitionsTable {
		if _, ok := seen[tr.From]; !ok {
			seen[tr.From] = map[EventKind]struct{}{}
		}
		_, dup := seen[tr.From][tr.Event]
		require.False(t, dup, "duplicate transition for %s + %v", tr.From, tr.Event)
		seen[tr.From][tr.Event] = struct{}{}
	}
}

func TestTransitionTable_Coverage(t *testing.T) {
	for _, from := range AllStates() {
		for _, ev := range AllEvents() {
			tr, ok := TransitionFor(from, ev)
			if !ok {
				// Not every state/event pair is meaningful (e.g. rebuffer
				// from IDLE); absence is a valid "doesn't apply" answer as
				// long as Dispatch reports ok=false rather than panicking.
				to, dispatchOK := Dispatch(from, ev)
				require.False(t, dispatchOK)
				require.Equal(t, from, to)
				continue
			}
			require.Equal(t, from, tr.From)
			to, dispatchOK := Dispatch(from, ev)
			require.True(t, dispatchOK)
			require.Equal(t, tr.To, to)
		}
	}
}

func TestEmptyPlaylistRule(t *testing.T) {
	// prepare() on an empty playlist goes directly to ENDED.
	to, ok := Dispatch(Idle, EvPrepareEmpty)
	require.True(t, ok)
	require.Equal(t, Ended, to)

	// Adding items afterwards does NOT re-enter BUFFERING on its own: there
	// is no transition for that event pair, by design.
	_, ok = TransitionFor(Ended, EvPrepareNonEmpty)
	require.False(t, ok, "adding items to an ENDED player must not auto-transition to BUFFERING")

	// A fresh seek or prepare is required instead.
	to, ok = Dispatch(Ended, EvSeekOnEnded)
	require.True(t, ok)
	require.Equal(t, Buffering, to)
}

func TestStopAndReleaseAlwaysReachIdle(t *testing.T) {
	for _, from := range AllStates() {
		to, ok := Dispatch(from, EvStopReset)
		require.True(t, ok)
		require.Equal(t, Idle, to)

		to, ok = Dispatch(from, EvRelease)
		require.True(t, ok)
		require.Equal(t, Idle, to)

		to, ok = Dispatch(from, EvFatalError)
		require.True(t, ok)
		require.Equal(t, Idle, to)
	}
}
