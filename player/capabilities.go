// Package player implements the public player facade: the application
// thread's view of the coordinator, coupled to the internal playback
// dispatcher via the command/update buses in internal/playback.
package player

import (
	"github.com/mediacore/playercore/internal/playback"
	"github.com/mediacore/playercore/internal/playlist"
	"github.com/mediacore/playercore/internal/timeline"
)

// Renderer mirrors the external renderer capability; the facade never
// drives rendering itself. It hands renderers to the internal thread,
// which calls only IsEnded and ResetPosition on them.
type Renderer interface {
	TrackType() string
	SupportsFormat(format string) bool
	Enable() error
	Start() error
	Stop() error
	Disable()
	ResetPosition(positionUs int64)
	IsEnded() bool
	HandleMessage(messageType int, payload any) error
}

// TrackSelectorResult is the opaque result of a track-selection pass.
type TrackSelectorResult struct {
	Selections map[string]string
}

// TrackSelector mirrors the external track-selection policy capability.
type TrackSelector interface {
	SelectTracks(renderers []Renderer, periodID timeline.MediaPeriodId, tl timeline.Timeline) (TrackSelectorResult, error)
	OnSelectionActivated(info any)
}

// LoadControl and BandwidthMeter are optional: a Player stores them in its
// Config and this core does not call them. Clock is required (checked
// non-nil at construction) and is handed to the internal thread.
type LoadControl interface {
	ShouldContinueLoading() bool
}

type BandwidthMeter interface {
	EstimateBitrate() int64
}

// Clock abstracts wall-clock access so tests can control time; mirrors
// the teacher's pattern of injecting a Clock instead of calling time.Now
// directly inside domain logic. Aliased onto playback.Clock so a Config's
// Clock can be handed to the internal dispatcher without conversion.
type Clock = playback.Clock

// MediaSource re-exports playlist.MediaSource so callers of this package
// don't need to import internal/playlist directly.
type MediaSource = playlist.MediaSource
