// Package playback implements the internal playback dispatcher: the
// consumer side of the app->internal command bus. It owns its own Store
// and Timeline, advances the coarse playback state machine, and posts
// PlaybackInfo updates back to the facade over the internal->app bus.
package playback

import (
	"github.com/mediacore/playercore/internal/playlist"
	"github.com/mediacore/playercore/internal/timeline"
)

// CommandKind tags the variant carried by a Command. A tagged-variant
// command set plus a single dispatcher loop replaces the "Action"
// hierarchy the original engine used to parameterize deferred work.
type CommandKind string

const (
	CmdPrepare               CommandKind = "PREPARE"
	CmdSetMediaItems         CommandKind = "SET_MEDIA_ITEMS"
	CmdAddMediaItems         CommandKind = "ADD_MEDIA_ITEMS"
	CmdRemoveMediaItems      CommandKind = "REMOVE_MEDIA_ITEMS"
	CmdMoveMediaItems        CommandKind = "MOVE_MEDIA_ITEMS"
	CmdClearMediaItems       CommandKind = "CLEAR_MEDIA_ITEMS"
	CmdSeekTo                CommandKind = "SEEK_TO"
	CmdSetPlayWhenReady      CommandKind = "SET_PLAY_WHEN_READY"
	CmdSetRepeatMode         CommandKind = "SET_REPEAT_MODE"
	CmdSetShuffleModeEnabled CommandKind = "SET_SHUFFLE_MODE_ENABLED"
	CmdSetShuffleOrder       CommandKind = "SET_SHUFFLE_ORDER"
	CmdSetPlaybackParameters CommandKind = "SET_PLAYBACK_PARAMETERS"
	CmdSetSeekParameters     CommandKind = "SET_SEEK_PARAMETERS"
	CmdSetForegroundMode     CommandKind = "SET_FOREGROUND_MODE"
	CmdStop                  CommandKind = "STOP"
	CmdRelease               CommandKind = "RELEASE"
	CmdSourceInfoRefreshed   CommandKind = "SOURCE_INFO_REFRESHED"
)

// PlaybackParameters mirrors the client-settable speed/pitch pair. The
// internal thread uses Speed only to scale how fast position advances in
// its progression step; Pitch is stored and not interpreted. Neither is
// carried on PlaybackInfo.
type PlaybackParameters struct {
	Speed float64
	Pitch float64
}

// SeekParameters bounds how far a seek may snap to a nearby sync sample;
// the dispatcher stores it and does not interpret it, and PlaybackInfo
// does not carry it.
type SeekParameters struct {
	ToleranceBeforeUs int64
	ToleranceAfterUs  int64
}

// Command is one entry in the FIFO app->internal queue. Exactly one of
// the typed payload fields is meaningful per Kind; unused fields are
// zero. CorrelationID threads through to the dispatcher's log lines so
// they can be joined back to the facade call that issued the command.
type Command struct {
	Kind          CommandKind
	CorrelationID string

	// Playlist mutation payloads.
	Items          []playlist.MediaSource
	AddAt          int
	RemoveFrom     int
	RemoveTo       int
	MoveFrom       int
	MoveTo         int
	MoveNewFrom    int
	StartWindow    int
	HasStartWindow bool
	StartPosMs     int64

	// Seek payload.
	SeekWindow int
	SeekPosMs  int64

	// Scalar-setting payloads.
	PlayWhenReady      bool
	RepeatMode         playlist.RepeatMode
	ShuffleModeEnabled bool
	ShuffleOrder       playlist.ShuffleOrder
	PlaybackParams     PlaybackParameters
	SeekParams         SeekParameters
	ForegroundMode     bool
	ResetPosition      bool

	// SourceInfoRefreshed payload: which holder reported a new timeline,
	// and what it reported. The dispatcher rejects callbacks from a holder
	// that has since been superseded by checking Holder's identity against
	// its current store; HolderGeneration is not set or read by it.
	Holder           *playlist.Holder
	HolderGeneration uint64
	NewTimeline      timeline.Timeline
}
