// Package controller drives the injection workflow from the CLI side:
// publishing the shared-memory handshake segments, injecting the library,
// and the post-injection mode IPC.
package controller

import (
	"errors"
	"time"

	"github.com/mj1618/wintheme/internal/config"
	"github.com/mj1618/wintheme/internal/model"
)

// DefaultAttachWait bounds how long Inject waits for the injected module
// to come up. The module itself retries activation for up to 30 seconds;
// this adds headroom for process startup on top.
const DefaultAttachWait = 45 * time.Second

// ErrUnsupported is returned on platforms without an injection backend.
var ErrUnsupported = errors.New("shell theming requires Windows")

// InjectOptions parameterizes one injection round.
type InjectOptions struct {
	Target config.Target
	// PID overrides process-name resolution when nonzero.
	PID uint32
	// Mode is the initial appearance mode.
	Mode model.Mode
	// DLLPath is the library to load into the host.
	DLLPath string
	// LogPath overrides the discovery log location.
	LogPath string
	// Discovery forces observe-and-log mode even when the target carries
	// element descriptors.
	Discovery bool
	// AttachWait bounds the wait for the module's mode segment to appear;
	// zero means DefaultAttachWait.
	AttachWait time.Duration
}

// InjectResult reports one injection round.
type InjectResult struct {
	Target    string   `yaml:"target"              json:"target"`
	Process   string   `yaml:"process,omitempty"   json:"process,omitempty"`
	PID       uint32   `yaml:"pid"                 json:"pid"`
	Mode      string   `yaml:"mode"                json:"mode"`
	Discovery bool     `yaml:"discovery,omitempty" json:"discovery,omitempty"`
	Elements  []string `yaml:"elements,omitempty"  json:"elements,omitempty"`
	// Attached reports whether the module came up within the wait: its
	// mode IPC segment exists and accepts writes.
	Attached bool `yaml:"attached" json:"attached"`
}

// Status reports the IPC state of one target.
type Status struct {
	Target   string `yaml:"target"         json:"target"`
	Attached bool   `yaml:"attached"       json:"attached"`
	Mode     string `yaml:"mode,omitempty" json:"mode,omitempty"`
}

// Controller is the platform injection backend.
type Controller interface {
	// Inject publishes the handshake segments, loads the library into the
	// target process, and waits (bounded) for the module to come up.
	Inject(opts InjectOptions) (*InjectResult, error)
	// SetMode writes the appearance mode into a running module's IPC
	// segment.
	SetMode(targetID string, mode model.Mode) error
	// Status inspects the IPC segment of a target.
	Status(targetID string) (*Status, error)
}
