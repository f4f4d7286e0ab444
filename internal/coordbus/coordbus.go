// Package coordbus wires the two channels that connect the application
// thread and the internal playback thread. It specializes the teacher's
// general-purpose pub/sub memory bus to exactly one producer and one
// consumer per direction: there is always exactly one facade and exactly
// one internal dispatcher per Player, so the fan-out machinery a shared
// event bus needs is unnecessary here. What is kept is a send bounded by
// its context, with a context-deadline drop path and a drop-reason metric.
package coordbus

import (
	"context"
	"errors"
	"fmt"

	"github.com/mediacore/playercore/internal/plog"
	"github.com/mediacore/playercore/internal/pmetrics"
)

// Bus is a single bounded channel wrapped with a context-bounded Send that
// degrades to a logged, metered drop instead of blocking the caller
// forever when ctx is done.
type Bus[T any] struct {
	ch     chan T
	name   string
	closed chan struct{}
}

// New creates a Bus with the given buffer depth.
func New[T any](name string, depth int) *Bus[T] {
	if depth <= 0 {
		depth = 1
	}
	return &Bus[T]{ch: make(chan T, depth), name: name, closed: make(chan struct{})}
}

// Send enqueues v, blocking until there is room, ctx is done, or the bus
// is closed. A ctx cancellation or deadline is reported as a drop.
func (b *Bus[T]) Send(ctx context.Context, v T) error {
	select {
	case <-b.closed:
		return fmt.Errorf("coordbus %s: closed", b.name)
	default:
	}
	select {
	case b.ch <- v:
		return nil
	default:
	}
	select {
	case b.ch <- v:
		return nil
	case <-ctx.Done():
		reason := dropReason(ctx.Err())
		pmetrics.RecordDroppedCommand(reason)
		plog.WithComponent("coordbus").Warn().
			Str("bus", b.name).
			Str("reason", reason).
			Msg("dropped message: context done before channel had room")
		return fmt.Errorf("coordbus %s: %w", b.name, ctx.Err())
	case <-b.closed:
		return fmt.Errorf("coordbus %s: closed", b.name)
	}
}

// C exposes the receive side for the consumer's select loop.
func (b *Bus[T]) C() <-chan T { return b.ch }

// Close signals pending Sends to abort and stops accepting new ones by
// making further Send calls race-safely observe the closed channel. It
// does not close the underlying data channel itself, so a consumer
// draining b.C() in the same select as <-b.Closed() can still read
// whatever was already enqueued.
func (b *Bus[T]) Close() {
	select {
	case <-b.closed:
	default:
		close(b.closed)
	}
}

// Closed exposes the close signal for the consumer's select loop.
func (b *Bus[T]) Closed() <-chan struct{} { return b.closed }

func dropReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "context_done"
	}
}
