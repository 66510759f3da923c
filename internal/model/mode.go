package model

import (
	"fmt"
	"sync/atomic"
)

// Mode is the appearance applied to tracked shell elements. The integer
// values are part of the shared-memory contract with the injected module
// and must not be reordered.
type Mode int32

const (
	// ModeDefault restores the element's original template-driven values.
	ModeDefault Mode = 0
	// ModeTransparent hides the element entirely (opacity 0, transparent fill).
	ModeTransparent Mode = 1
	// ModeAcrylic dims the element to a translucent dark tint. Stroke
	// elements are hidden rather than dimmed.
	ModeAcrylic Mode = 2
)

// Valid reports whether m is a recognized mode value. Unrecognized values
// read from shared memory are ignored rather than applied.
func (m Mode) Valid() bool {
	return m >= ModeDefault && m <= ModeAcrylic
}

func (m Mode) String() string {
	switch m {
	case ModeDefault:
		return "default"
	case ModeTransparent:
		return "transparent"
	case ModeAcrylic:
		return "acrylic"
	default:
		return fmt.Sprintf("mode(%d)", int32(m))
	}
}

// AtomicMode is a Mode safe for concurrent load/store. The cached mode is
// read by callback threads and written by the IPC poller.
type AtomicMode struct {
	v atomic.Int32
}

func (a *AtomicMode) Load() Mode   { return Mode(a.v.Load()) }
func (a *AtomicMode) Store(m Mode) { a.v.Store(int32(m)) }

// ParseMode parses a user-supplied mode name.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "default":
		return ModeDefault, nil
	case "transparent":
		return ModeTransparent, nil
	case "acrylic":
		return ModeAcrylic, nil
	default:
		return ModeDefault, fmt.Errorf("unknown mode: %s (use default, transparent, or acrylic)", s)
	}
}
