package playback

// Clock abstracts wall-clock access so the dispatcher's progression step
// never calls time.Now directly; tests inject a fake to drive ticks
// deterministically. Declared here (not in player/) so the dispatcher can
// depend on it without an import cycle; player.Clock is a type alias onto
// this definition.
type Clock interface {
	NowMs() int64
}

// Renderer is the subset of the external renderer capability the
// dispatcher itself consults: whether it has drained its buffered input
// for the current period, and resetting it at the start of a new one.
// player.Renderer is a separate, wider interface that includes these two
// methods plus the facade-only ones (Enable, Start, ...) the dispatcher
// never calls, so every player.Renderer satisfies this one.
type Renderer interface {
	IsEnded() bool
	ResetPosition(positionUs int64)
}
