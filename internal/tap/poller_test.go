package tap

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/mj1618/wintheme/internal/model"
	"github.com/mj1618/wintheme/internal/shm"
)

func pollerFixture(t *testing.T) (*atomic.Int32, *Watcher, *fakeMutator) {
	t.Helper()
	svc := newFakeMutator()
	svc.addElement(10, "Fill", "Opacity")

	cfg := &shm.ConfigRecord{
		Mode:    model.ModeDefault,
		Targets: []model.Matcher{{Name: "BackgroundFill", Type: "Rectangle"}},
	}
	w := NewWatcher(cfg, nil, nil)
	w.SetMutator(svc)
	w.OnTreeChange(MutationAdd, rectangle(10, "BackgroundFill"))

	var word atomic.Int32
	word.Store(int32(model.ModeDefault))
	return &word, w, svc
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestPoller_PicksUpModeChange(t *testing.T) {
	word, w, svc := pollerFixture(t)
	p := NewPoller(word.Load, w, 5*time.Millisecond, nil)
	p.Start()
	defer p.Stop()

	word.Store(int32(model.ModeTransparent))
	waitFor(t, func() bool { return w.Mode() == model.ModeTransparent })

	if got := svc.appliedValue(10, "Opacity"); got != "Double=0" {
		t.Errorf("tracked element not updated after poll, opacity = %q", got)
	}
}

func TestPoller_IgnoresUnrecognizedValue(t *testing.T) {
	word, w, svc := pollerFixture(t)
	p := NewPoller(word.Load, w, 5*time.Millisecond, nil)
	p.Start()
	defer p.Stop()

	word.Store(42)
	time.Sleep(50 * time.Millisecond)

	if w.Mode() != model.ModeDefault {
		t.Errorf("hostile word changed the mode to %v", w.Mode())
	}
	if svc.callCount() != 0 {
		t.Errorf("hostile word triggered %d mutation calls", svc.callCount())
	}
}

func TestPoller_UnchangedValueDoesNotReapply(t *testing.T) {
	word, w, svc := pollerFixture(t)
	word.Store(int32(model.ModeTransparent))

	p := NewPoller(word.Load, w, 5*time.Millisecond, nil)
	p.Start()
	defer p.Stop()

	waitFor(t, func() bool { return w.Mode() == model.ModeTransparent })
	applied := svc.callCount()
	time.Sleep(50 * time.Millisecond)

	if got := svc.callCount(); got != applied {
		t.Errorf("steady word reapplied mode: %d calls grew to %d", applied, got)
	}
}

func TestPoller_StopJoins(t *testing.T) {
	word, w, _ := pollerFixture(t)
	p := NewPoller(word.Load, w, 5*time.Millisecond, nil)
	p.Start()

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop did not return")
	}
}
