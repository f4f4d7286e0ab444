package listenerbus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	id     int
	events *[]string
}

func TestTwoListenersObserveIdenticalOrder(t *testing.T) {
	var eventsA, eventsB []string
	d := New[*recorder]()
	a := &recorder{id: 1, events: &eventsA}
	b := &recorder{id: 2, events: &eventsB}
	d.Add(a)
	d.Add(b)

	d.Notify(func(l *recorder) { *l.events = append(*l.events, "one") })
	d.Notify(func(l *recorder) { *l.events = append(*l.events, "two") })

	require.Equal(t, []string{"one", "two"}, eventsA)
	require.Equal(t, []string{"one", "two"}, eventsB)
}

func TestReentrantNotifyIsAppendedNotInterleaved(t *testing.T) {
	var order []string
	d := New[*recorder]()
	var self *recorder
	self = &recorder{id: 1}
	d.Add(self)

	first := true
	d.Notify(func(l *recorder) {
		order = append(order, "outer-start")
		if first {
			first = false
			// Re-entrant call from within a callback: must be appended,
			// not interleaved into this (the outer) pass.
			d.Notify(func(l *recorder) { order = append(order, "inner") })
		}
		order = append(order, "outer-end")
	})

	require.Equal(t, []string{"outer-start", "outer-end", "inner"}, order)
}

func TestListenerAddedDuringCallbackSeesOnlySubsequentPasses(t *testing.T) {
	var aEvents, bEvents []string
	d := New[*recorder]()
	a := &recorder{id: 1, events: &aEvents}
	b := &recorder{id: 2, events: &bEvents}
	d.Add(a)

	d.Notify(func(l *recorder) {
		*l.events = append(*l.events, "first")
		d.Add(b) // added mid-callback
	})
	d.Notify(func(l *recorder) {
		*l.events = append(*l.events, "second")
	})

	require.Equal(t, []string{"first", "second"}, aEvents)
	require.Equal(t, []string{"second"}, bEvents, "listener added mid-drain must not see the pass during which it was added")
}

func TestRemoveDuringCallbackTakesEffectNextPass(t *testing.T) {
	var aEvents, bEvents []string
	d := New[*recorder]()
	a := &recorder{id: 1, events: &aEvents}
	b := &recorder{id: 2, events: &bEvents}
	d.Add(a)
	d.Add(b)

	equal := func(x, y *recorder) bool { return x == y }

	d.Notify(func(l *recorder) {
		*l.events = append(*l.events, "first")
		if l == a {
			d.Remove(b, equal)
		}
	})
	d.Notify(func(l *recorder) {
		*l.events = append(*l.events, "second")
	})

	require.Equal(t, []string{"first", "second"}, aEvents)
	require.Equal(t, []string{"first"}, bEvents, "listener removed mid-drain must still see the in-progress pass but not later ones")
}
