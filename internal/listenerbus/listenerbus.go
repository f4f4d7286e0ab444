// Package listenerbus implements ordered, re-entrancy-safe listener
// notification: a copy-on-write listener set plus a FIFO deque of pending
// notification passes, in the spirit of the teacher's bus/channel
// primitives but specialized to synchronous, same-thread fan-out instead
// of cross-thread delivery.
package listenerbus

import (
	"time"

	"github.com/mediacore/playercore/internal/pmetrics"
)

// Dispatcher holds listeners of type L under a copy-on-write slice so a
// snapshot taken for one notification pass is stable under concurrent
// Add/Remove, and drains re-entrant notifications FIFO so a listener that
// triggers another notification from within a callback never interleaves
// with the pass already in progress.
type Dispatcher[L any] struct {
	listeners []L
	pending   []func(L)
	draining  bool
}

// New creates an empty Dispatcher.
func New[L any]() *Dispatcher[L] {
	return &Dispatcher[L]{}
}

// Add appends a listener. Safe to call from within a notification
// callback; per the re-entrancy contract, it takes effect starting with
// the next notification pass in the same drain, never retroactively for
// the pass currently being delivered.
func (d *Dispatcher[L]) Add(l L) {
	next := make([]L, len(d.listeners)+1)
	copy(next, d.listeners)
	next[len(d.listeners)] = l
	d.listeners = next
}

// Remove drops every listener for which equal(existing, l) reports true;
// the caller supplies the identity comparison (Go generics can't express
// comparable-by-interface directly when L is an interface type).
func (d *Dispatcher[L]) Remove(l L, equal func(a, b L) bool) {
	next := make([]L, 0, len(d.listeners))
	for _, existing := range d.listeners {
		if !equal(existing, l) {
			next = append(next, existing)
		}
	}
	d.listeners = next
}

// Listeners returns a stable snapshot of the current listener set.
func (d *Dispatcher[L]) Listeners() []L {
	return d.listeners
}

// Notify enqueues a notification pass (fn invoked once per listener) and,
// if no pass is currently draining, drains the queue until empty. If a
// pass is already draining (this call happened re-entrantly from within a
// listener callback), the new pass is appended and the outer drain loop
// will pick it up — it is never interleaved into the pass in progress.
// Each queued pass runs against the listener snapshot current at the
// moment it is dequeued, so an Add/Remove made by an earlier pass in the
// same drain is visible to later passes but never to the one already
// running.
func (d *Dispatcher[L]) Notify(fn func(L)) {
	d.pending = append(d.pending, fn)
	pmetrics.ListenerQueueDepth.Set(float64(len(d.pending)))
	if d.draining {
		return
	}
	d.drain()
}

func (d *Dispatcher[L]) drain() {
	d.draining = true
	defer func() { d.draining = false }()

	start := time.Now()
	for len(d.pending) > 0 {
		fn := d.pending[0]
		d.pending = d.pending[1:]
		pmetrics.ListenerQueueDepth.Set(float64(len(d.pending)))
		for _, l := range d.listeners {
			fn(l)
		}
	}
	pmetrics.ListenerNotifyDuration.Observe(time.Since(start).Seconds())
}
