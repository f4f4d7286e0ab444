// Package state defines the player's coarse playback state machine as a
// data-driven transition table, in the same style as the teacher's
// lifecycle package: a flat slice of allowed edges plus a Dispatch entry
// point that is the only place triggering conditions are interpreted.
package state

import "github.com/mediacore/playercore/internal/pmetrics"

// PlaybackState is the client-visible playback lifecycle.
type PlaybackState string

const (
	Idle      PlaybackState = "IDLE"
	Buffering PlaybackState = "BUFFERING"
	Ready     PlaybackState = "READY"
	Ended     PlaybackState = "ENDED"
)

// EventKind names the triggering condition of a transition.
type EventKind string

const (
	EvPrepareNonEmpty    EventKind = "PREPARE_NON_EMPTY"
	EvPrepareEmpty       EventKind = "PREPARE_EMPTY"
	EvBufferedEnough     EventKind = "BUFFERED_ENOUGH"
	EvRebuffer           EventKind = "REBUFFER"
	EvSeekIntoUnprepared EventKind = "SEEK_INTO_UNPREPARED"
	EvEndOfStream        EventKind = "END_OF_STREAM"
	EvSeekOnEnded        EventKind = "SEEK_ON_ENDED"
	EvNewContentOnEnded  EventKind = "NEW_CONTENT_ON_ENDED"
	EvStopReset          EventKind = "STOP_RESET"
	EvRelease            EventKind = "RELEASE"
	EvFatalError         EventKind = "FATAL_ERROR"
)

// Transition is a single allowed edge in the playback state machine.
type Transition struct {
	From  PlaybackState
	To    PlaybackState
	Event EventKind
}

var transitionsTable = []Transition{
	// IDLE -> BUFFERING: prepare() with a non-empty playlist.
	{From: Idle, To: Buffering, Event: EvPrepareNonEmpty},
	// IDLE -> ENDED: prepare() on an empty playlist (empty-playlist rule).
	{From: Idle, To: Ended, Event: EvPrepareEmpty},

	// BUFFERING -> READY: enough data buffered to render.
	{From: Buffering, To: Ready, Event: EvBufferedEnough},
	// BUFFERING -> ENDED: last renderer signals EOS, no repeat applicable.
	{From: Buffering, To: Ended, Event: EvEndOfStream},

	// READY -> BUFFERING: rebuffer or seek into unprepared region.
	{From: Ready, To: Buffering, Event: EvRebuffer},
	{From: Ready, To: Buffering, Event: EvSeekIntoUnprepared},
	// READY -> ENDED: end of stream.
	{From: Ready, To: Ended, Event: EvEndOfStream},

	// ENDED -> BUFFERING: seek_to, or a new playlist resolving to content.
	// Adding items alone does NOT re-enter BUFFERING (tested invariant).
	{From: Ended, To: Buffering, Event: EvSeekOnEnded},
	{From: Ended, To: Buffering, Event: EvNewContentOnEnded},

	// any -> IDLE: stop(reset), release(), or a fatal playback error.
	{From: Idle, To: Idle, Event: EvStopReset},
	{From: Buffering, To: Idle, Event: EvStopReset},
	{From: Ready, To: Idle, Event: EvStopReset},
	{From: Ended, To: Idle, Event: EvStopReset},
	{From: Idle, To: Idle, Event: EvRelease},
	{From: Buffering, To: Idle, Event: EvRelease},
	{From: Ready, To: Idle, Event: EvRelease},
	{From: Ended, To: Idle, Event: EvRelease},
	{From: Idle, To: Idle, Event: EvFatalError},
	{From: Buffering, To: Idle, Event: EvFatalError},
	{From: Ready, To: Idle, Event: EvFatalError},
	{From: Ended, To: Idle, Event: EvFatalError},
}

// TransitionFor returns the allowed transition for a given state+event.
func TransitionFor(from PlaybackState, ev EventKind) (Transition, bool) {
	for _, tr := range transitionsTable {
		if tr.From == from && tr.Event == ev {
			return tr, true
		}
	}
	return Transition{}, false
}

// Dispatch applies ev to from and returns the resulting state. It is the
// single entry point the facade and dispatcher use to advance the state
// machine; callers never assign PlaybackState values directly. An
// unrecognized (state, event) pair is a no-op that returns from unchanged
// and ok=false, so callers can treat it as "this event doesn't apply here"
// rather than crash.
func Dispatch(from PlaybackState, ev EventKind) (to PlaybackState, ok bool) {
	tr, found := TransitionFor(from, ev)
	if !found {
		return from, false
	}
	if tr.From != tr.To {
		pmetrics.RecordTransition(string(tr.From), string(tr.To))
	}
	return tr.To, true
}

// AllStates lists every PlaybackState, for table-driven coverage tests.
func AllStates() []PlaybackState {
	return []PlaybackState{Idle, Buffering, Ready, Ended}
}

// AllEvents lists every EventKind, for table-driven coverage tests.
func AllEvents() []EventKind {
	return []EventKind{
		EvPrepareNonEmpty, EvPrepareEmpty, EvBufferedEnough, EvRebuffer,
		EvSeekIntoUnprepared, EvEndOfStream, EvSeekOnEnded, EvNewContentOnEnded,
		EvStopReset, EvRelease, EvFatalError,
	}
}
