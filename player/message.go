package player

import "github.com/mediacore/playercore/internal/playermsg"

// MessageBuilder configures a PlayerMessage before it is sent. Mirrors
// the fluent builder the spec names (create_message(target) returns a
// builder bound to the internal thread).
type MessageBuilder struct {
	router *playermsg.Router
	msg    *playermsg.Message
}

// CreateMessage returns a builder targeting target, deliverable on the
// playback thread by default.
func (p *Player) CreateMessage(target playermsg.Target) *MessageBuilder {
	return &MessageBuilder{
		router: p.messages,
		msg: &playermsg.Message{
			Target:              target,
			Handler:             playermsg.HandlerPlaybackThread,
			DeleteAfterDelivery: true,
		},
	}
}

// SetPosition arms a position trigger; without this call the message
// delivers immediately once dequeued.
func (b *MessageBuilder) SetPosition(windowIndex int, positionMs int64) *MessageBuilder {
	b.msg.Position = playermsg.Position{Set: true, WindowIndex: windowIndex, PositionMs: positionMs}
	return b
}

// SetPayload attaches an opaque payload of the given type tag.
func (b *MessageBuilder) SetPayload(payloadType int, payload any) *MessageBuilder {
	b.msg.PayloadType = payloadType
	b.msg.Payload = payload
	return b
}

// SetDeleteAfterDelivery controls whether the message is removed after
// its first delivery (default true) or stays armed, re-triggering on
// every subsequent loop traversal under a repeat mode.
func (b *MessageBuilder) SetDeleteAfterDelivery(flag bool) *MessageBuilder {
	b.msg.DeleteAfterDelivery = flag
	return b
}

// SetHandler records which thread the message is addressed to. The router
// does not act on it: delivery always happens on the playback thread.
func (b *MessageBuilder) SetHandler(h playermsg.Handler) *MessageBuilder {
	b.msg.Handler = h
	return b
}

// Send enqueues the configured message and returns the handle used for
// Cancel.
func (b *MessageBuilder) Send() *playermsg.Message {
	return b.router.Send(b.msg)
}
