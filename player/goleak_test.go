package player

import (
	"context"
	"testing"

	"go.uber.org/goleak"
)

func TestReleaseLeavesNoGoroutineLeak(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	p, err := New(Config{
		TrackSelector: fakeTrackSelector{},
		Renderers:     []Renderer{fakeRenderer{}},
		Clock:         &fakeClock{},
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if err := p.SetMediaItems(context.Background(), []MediaSource{&fakeSource{name: "a", durationUs: 1_000_000}}, -1, 0, true); err != nil {
		t.Fatalf("SetMediaItems() failed: %v", err)
	}
	if err := p.Prepare(context.Background()); err != nil {
		t.Fatalf("Prepare() failed: %v", err)
	}
	if err := p.Release(context.Background()); err != nil {
		t.Fatalf("Release() failed: %v", err)
	}
}
