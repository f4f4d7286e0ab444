// Package perrors defines the typed error taxonomy for the player
// coordinator: programmer errors that fail synchronously at the facade
// boundary, and runtime errors that travel asynchronously through a
// PlaybackInfo update.
package perrors

import "fmt"

// Code is a closed set of error classes. Keep these stable: callers use
// errors.As against the concrete types below, not string matching.
type Code string

const (
	CodeIllegalSeekPosition Code = "ILLEGAL_SEEK_POSITION"
	CodeInvalidIndex        Code = "INVALID_INDEX"
	CodeSource              Code = "SOURCE_ERROR"
	CodeRenderer            Code = "RENDERER_ERROR"
	CodeUnexpectedState     Code = "UNEXPECTED_STATE"
)

// IllegalSeekPositionError is returned synchronously by seek_to when the
// requested window index is outside the current timeline's window count.
type IllegalSeekPositionError struct {
	WindowIndex int
	WindowCount int
}

func (e *IllegalSeekPositionError) Error() string {
	return fmt.Sprintf("illegal seek position: window %d out of [0,%d)", e.WindowIndex, e.WindowCount)
}

// InvalidIndexError is returned synchronously by playlist mutation
// operations (add/remove/move/set_media_items with a start window) when an
// index argument is out of range.
type InvalidIndexError struct {
	Op    string
	Index int
	Bound int
}

func (e *InvalidIndexError) Error() string {
	return fmt.Sprintf("%s: index %d out of range [0,%d]", e.Op, e.Index, e.Bound)
}

// SourceError wraps a failure originating inside a MediaSource (network,
// parse, I/O). It always carries state IDLE on the PlaybackInfo it rides.
type SourceError struct {
	PeriodUID string
	Cause     error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source error (period %s): %v", e.PeriodUID, e.Cause)
}

func (e *SourceError) Unwrap() error { return e.Cause }

// RendererError wraps a decoder init or runtime failure from a Renderer.
type RendererError struct {
	TrackType string
	Cause     error
}

func (e *RendererError) Error() string {
	return fmt.Sprintf("renderer error (%s): %v", e.TrackType, e.Cause)
}

func (e *RendererError) Unwrap() error { return e.Cause }

// UnexpectedStateError marks an invariant violation inside the internal
// playback loop. It is always fatal and converted to a playback error.
type UnexpectedStateError struct {
	Detail string
}

func (e *UnexpectedStateError) Error() string {
	return fmt.Sprintf("unexpected internal state: %s", e.Detail)
}

// AsPlaybackError classifies an arbitrary error into the Code it would
// surface as on PlaybackInfo, for metrics labeling and logging.
func AsPlaybackError(err error) Code {
	switch err.(type) {
	case *SourceError:
		return CodeSource
	case *RendererError:
		return CodeRenderer
	case *UnexpectedStateError:
		return CodeUnexpectedState
	default:
		return CodeUnexpectedState
	}
}
