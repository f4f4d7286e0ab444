// Package playermsg implements PlayerMessage: a targeted command that
// delivers immediately or waits for playback position to cross a given
// (window, position) pair. Routing lives here rather than in player/ so
// the internal dispatcher can poll the pending set without reaching back
// into facade internals.
package playermsg

import (
	"sync"

	"github.com/mediacore/playercore/internal/pmetrics"
)

// Target is the capability a message is delivered to; payload is
// caller-defined and opaque to the router.
type Target interface {
	HandleMessage(payloadType int, payload any) error
}

// Handler names the thread a message is addressed to. The Router records
// it on the message but does not consult it: every message is delivered
// on the goroutine that calls DeliverImmediate or PositionCrossed (the
// playback dispatcher), whatever its Handler.
type Handler int

const (
	HandlerPlaybackThread Handler = iota
	HandlerApplicationThread
)

// Position is either "immediate" (Set=false) or a specific window +
// position-in-window pair.
type Position struct {
	Set         bool
	WindowIndex int
	PositionMs  int64
}

// Message is one routed PlayerMessage.
type Message struct {
	seq int64 // insertion sequence, for same-timestamp ordering

	Target              Target
	PayloadType         int
	Payload             any
	Position            Position
	Handler             Handler
	DeleteAfterDelivery bool

	delivered bool
	cancelled bool
}

// Cancel marks the message canceled. Idempotent after delivery: canceling
// an already-delivered message is a silent no-op, matching the spec's
// contract for cancel() called post-delivery.
func (m *Message) Cancel() {
	if m.delivered {
		return
	}
	m.cancelled = true
}

// Delivered reports whether this message has already been delivered at
// least once.
func (m *Message) Delivered() bool { return m.delivered }

// Router owns the pending-message set for one Player and decides, on each
// position update from the internal dispatcher, which messages are now
// due.
type Router struct {
	mu      sync.Mutex
	nextSeq int64
	pending []*Message
}

// New creates an empty Router.
func New() *Router { return &Router{} }

// Send enqueues m for delivery. Ordering among messages with the same
// effective delivery timestamp follows insertion order, so Send assigns a
// monotonic sequence number at enqueue time.
func (r *Router) Send(m *Message) *Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.seq = r.nextSeq
	r.nextSeq++
	r.pending = append(r.pending, m)
	return m
}

// deliver invokes the message's target and records delivery bookkeeping;
// callers hold r.mu.
func deliver(m *Message) {
	kind := "positioned"
	if !m.Position.Set {
		kind = "immediate"
	}
	_ = m.Target.HandleMessage(m.PayloadType, m.Payload)
	m.delivered = true
	pmetrics.PlayerMessagesDelivered.WithLabelValues(kind).Inc()
}

// DeliverImmediate delivers every pending message with no position set,
// removing delete_after_delivery ones and leaving the rest marked
// delivered. Called once per dequeued command by the internal dispatcher,
// since an immediate message delivers "as soon as dequeued."
func (r *Router) DeliverImmediate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.pending[:0]
	for _, m := range r.pending {
		if !m.Position.Set && !m.cancelled && !m.delivered {
			deliver(m)
		}
		if m.cancelled || (m.delivered && m.DeleteAfterDelivery) {
			continue
		}
		kept = append(kept, m)
	}
	r.pending = kept
}

// PositionCrossed is called by the internal dispatcher whenever playback
// position in windowIndex advances to at least positionMs (polled at
// pconfig.Options.MessagePollInterval). It delivers every positioned
// message whose target the crossing satisfies, in insertion-sequence
// order for ties.
//
// A message with delete_after_delivery=false is re-armed rather than
// delivered twice in the same pass: it stays in the pending set so the
// next loop traversal under a repeat mode can redeliver it once position
// crosses its trigger again.
func (r *Router) PositionCrossed(windowIndex int, positionMs int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	due := make([]*Message, 0, len(r.pending))
	for _, m := range r.pending {
		if !m.Position.Set || m.cancelled {
			continue
		}
		if m.Position.WindowIndex != windowIndex {
			continue
		}
		if positionMs < m.Position.PositionMs {
			continue
		}
		if m.delivered && !m.DeleteAfterDelivery {
			// Already delivered this loop traversal; wait for the caller
			// to call RearmForNewLoopTraversal (new loop pass) before it
			// becomes due again.
			continue
		}
		due = append(due, m)
	}
	sortBySeq(due)

	kept := r.pending[:0]
	for _, m := range r.pending {
		isDue := false
		for _, d := range due {
			if d == m {
				isDue = true
				break
			}
		}
		if isDue {
			deliver(m)
		}
		if m.cancelled || (m.delivered && m.DeleteAfterDelivery) {
			continue
		}
		kept = append(kept, m)
	}
	r.pending = kept
}

// RearmForNewLoopTraversal clears the delivered flag on every positioned,
// delete_after_delivery=false message so it becomes eligible again on the
// next traversal, per the REPEAT_ALL/REPEAT_ONE re-arming contract.
func (r *Router) RearmForNewLoopTraversal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.pending {
		if m.Position.Set && !m.DeleteAfterDelivery {
			m.delivered = false
		}
	}
}

// Pending returns a snapshot of the messages still awaiting delivery, for
// diagnostics and tests.
func (r *Router) Pending() []*Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Message, len(r.pending))
	copy(out, r.pending)
	return out
}

func sortBySeq(ms []*Message) {
	for i := 1; i < len(ms); i++ {
		for j := i; j > 0 && ms[j-1].seq > ms[j].seq; j-- {
			ms[j-1], ms[j] = ms[j], ms[j-1]
		}
	}
}
