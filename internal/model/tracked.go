package model

import "sync"

// MaxTracked bounds the tracked-element table. Matches beyond capacity are
// silently dropped; shell UI trees produce at most a handful of matches.
const MaxTracked = 32

// TrackedElement is one live UI node under management. The handle is only
// meaningful inside the target process and only while the element is alive;
// once the element is removed the handle is cleared and never reused.
type TrackedElement struct {
	Handle uint64
	Name   string
	Type   string
	Stroke bool
	Active bool
}

// TrackedTable is the bounded element table shared between the diagnostics
// callback threads and the mode poller. The diagnostics subsystem does not
// document whether callbacks are serialized, so every access takes the lock.
type TrackedTable struct {
	mu    sync.Mutex
	slots [MaxTracked]TrackedElement
}

// Add records a newly matched element. It returns false when the table is
// full or the handle is already actively tracked (an element is tracked at
// most once per live instance). Inactive slots are reused.
func (t *TrackedTable) Add(el TrackedElement) bool {
	if el.Handle == 0 {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	free := -1
	for i := range t.slots {
		if t.slots[i].Active {
			if t.slots[i].Handle == el.Handle {
				return false
			}
		} else if free < 0 {
			free = i
		}
	}
	if free < 0 {
		return false
	}
	el.Active = true
	t.slots[free] = el
	return true
}

// Remove invalidates the slot tracking handle, clearing the handle so a
// stale value is never used for mutation. Returns false when the handle was
// not tracked.
func (t *TrackedTable) Remove(handle uint64) bool {
	if handle == 0 {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := false
	for i := range t.slots {
		if t.slots[i].Active && t.slots[i].Handle == handle {
			t.slots[i].Active = false
			t.slots[i].Handle = 0
			removed = true
		}
	}
	return removed
}

// Snapshot returns a copy of all actively tracked elements, safe to iterate
// without holding the lock across property mutations.
func (t *TrackedTable) Snapshot() []TrackedElement {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []TrackedElement
	for i := range t.slots {
		if t.slots[i].Active {
			out = append(out, t.slots[i])
		}
	}
	return out
}

// Len returns the number of actively tracked elements.
func (t *TrackedTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for i := range t.slots {
		if t.slots[i].Active {
			n++
		}
	}
	return n
}
