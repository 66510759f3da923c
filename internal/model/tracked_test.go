package model

import (
	"fmt"
	"testing"
)

func TestTrackedTable_AddRemove(t *testing.T) {
	var tbl TrackedTable

	if !tbl.Add(TrackedElement{Handle: 100, Name: "BackgroundFill"}) {
		t.Fatal("expected first add to succeed")
	}
	if tbl.Len() != 1 {
		t.Fatalf("expected 1 tracked element, got %d", tbl.Len())
	}

	// An element is tracked at most once per live instance.
	if tbl.Add(TrackedElement{Handle: 100, Name: "BackgroundFill"}) {
		t.Error("expected duplicate handle add to be rejected")
	}
	if tbl.Len() != 1 {
		t.Errorf("expected 1 tracked element after duplicate add, got %d", tbl.Len())
	}

	if !tbl.Remove(100) {
		t.Fatal("expected remove of tracked handle to succeed")
	}
	if tbl.Len() != 0 {
		t.Errorf("expected 0 tracked elements after remove, got %d", tbl.Len())
	}
	if tbl.Remove(100) {
		t.Error("expected second remove to report not-tracked")
	}

	// The handle is cleared on removal; a new live instance with the same
	// handle value may be tracked again.
	if !tbl.Add(TrackedElement{Handle: 100, Name: "BackgroundFill"}) {
		t.Error("expected re-add after removal to succeed")
	}
}

func TestTrackedTable_ZeroHandle(t *testing.T) {
	var tbl TrackedTable
	if tbl.Add(TrackedElement{Handle: 0}) {
		t.Error("zero handle must not be tracked")
	}
	if tbl.Remove(0) {
		t.Error("zero handle must not match any slot")
	}
}

func TestTrackedTable_Capacity(t *testing.T) {
	var tbl TrackedTable
	for i := 0; i < MaxTracked; i++ {
		if !tbl.Add(TrackedElement{Handle: uint64(i + 1)}) {
			t.Fatalf("add %d should succeed", i)
		}
	}
	// Overflow is silently dropped.
	if tbl.Add(TrackedElement{Handle: 999}) {
		t.Error("expected add beyond capacity to be dropped")
	}
	if tbl.Len() != MaxTracked {
		t.Errorf("expected %d tracked, got %d", MaxTracked, tbl.Len())
	}

	// Freeing a slot makes room again.
	tbl.Remove(1)
	if !tbl.Add(TrackedElement{Handle: 999}) {
		t.Error("expected add to reuse the freed slot")
	}
}

func TestTrackedTable_Snapshot(t *testing.T) {
	var tbl TrackedTable
	tbl.Add(TrackedElement{Handle: 1, Name: "a", Stroke: true})
	tbl.Add(TrackedElement{Handle: 2, Name: "b"})
	tbl.Remove(1)

	snap := tbl.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected 1 element in snapshot, got %d", len(snap))
	}
	if snap[0].Handle != 2 || snap[0].Name != "b" {
		t.Errorf("unexpected snapshot contents: %+v", snap[0])
	}
}

func TestTrackedTable_ConcurrentAccess(t *testing.T) {
	// Callback threads add/remove while the poller snapshots; must not race.
	var tbl TrackedTable
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			h := uint64(i%8 + 1)
			tbl.Add(TrackedElement{Handle: h, Name: fmt.Sprintf("el%d", h)})
			tbl.Remove(h)
		}
	}()
	for i := 0; i < 1000; i++ {
		tbl.Snapshot()
		tbl.Len()
	}
	<-done
}
