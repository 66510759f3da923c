// Package tap implements the injected module: the visual tree watcher that
// matches and rewrites live XAML elements, the mode IPC poller, and the
// bootstrap that activates XAML diagnostics from inside the host process.
//
// The watcher core is platform-independent: all property mutation goes
// through the TreeMutator interface, which the Windows bootstrap backs with
// IVisualTreeService3 and tests back with a fake.
package tap

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/mj1618/wintheme/internal/model"
	"github.com/mj1618/wintheme/internal/shm"
)

// TreeMutator is the slice of the diagnostics tree service the watcher
// needs to rewrite element properties.
type TreeMutator interface {
	// CreateInstance constructs a property value of the named XAML type
	// from its string form and returns its handle.
	CreateInstance(typeName, value string) (uint64, error)
	// PropertyIndex resolves the property chain index by name. The second
	// return is false when the element has no such property. Indices are
	// scoped per compiled element type, so they are resolved fresh for
	// every element and never cached.
	PropertyIndex(handle uint64, name string) (uint32, bool, error)
	SetProperty(handle, value uint64, index uint32) error
	ClearProperty(handle uint64, index uint32) error
}

// Mutation is a visual tree change kind.
type Mutation int32

const (
	MutationAdd    Mutation = 0
	MutationRemove Mutation = 1
)

// Element is one visual tree node as delivered by a change notification.
type Element struct {
	Handle   uint64
	Name     string
	Type     string
	Parent   uint64
	Children uint32
}

// XAML type and value names used for property rewriting.
const (
	brushType        = "Windows.UI.Xaml.Media.SolidColorBrush"
	doubleType       = "Double"
	transparentBrush = "Transparent"
	acrylicTint      = "#44000000"
	acrylicOpacity   = 0.3
)

// Watcher matches tree change notifications against the configured targets
// and applies the current appearance mode to matched elements. Methods are
// safe for concurrent use: notifications arrive on diagnostics-owned
// threads while the poller reapplies modes.
type Watcher struct {
	cfg   *shm.ConfigRecord
	mode  model.AtomicMode
	table model.TrackedTable
	disc  *DiscoveryLog
	log   *zap.Logger

	// svc is installed once, before notifications start.
	svc TreeMutator
}

// NewWatcher builds a watcher for the given configuration. disc may be nil
// when not in discovery mode.
func NewWatcher(cfg *shm.ConfigRecord, disc *DiscoveryLog, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Watcher{cfg: cfg, disc: disc, log: log}
	w.mode.Store(cfg.Mode)
	return w
}

// SetMutator installs the tree service. Must happen before notifications
// are subscribed.
func (w *Watcher) SetMutator(svc TreeMutator) { w.svc = svc }

// Mode returns the currently applied appearance mode.
func (w *Watcher) Mode() model.Mode { return w.mode.Load() }

// TrackedCount returns the number of actively tracked elements.
func (w *Watcher) TrackedCount() int { return w.table.Len() }

// OnTreeChange handles one visual tree notification.
func (w *Watcher) OnTreeChange(mut Mutation, el Element) {
	switch mut {
	case MutationAdd:
		w.onAdded(el)
	case MutationRemove:
		// Handles are not unique across an element's lifetime once
		// removed; clear immediately so a stale handle is never mutated.
		w.table.Remove(el.Handle)
	}
}

func (w *Watcher) onAdded(el Element) {
	if w.cfg.Discovery() {
		// Observe and record only; no mutation of any kind.
		if w.disc != nil {
			w.disc.Log(el)
		}
		return
	}
	if model.MatchAny(w.cfg.Targets, el.Name, el.Type) < 0 {
		return
	}

	tracked := model.TrackedElement{
		Handle: el.Handle,
		Name:   el.Name,
		Type:   el.Type,
		Stroke: model.IsStroke(el.Name),
	}
	if !w.table.Add(tracked) {
		// Already tracked, or the bounded table is full.
		return
	}
	w.log.Debug("tracking element",
		zap.Uint64("handle", el.Handle),
		zap.String("name", el.Name),
		zap.String("type", el.Type),
		zap.Bool("stroke", tracked.Stroke))

	if mode := w.mode.Load(); mode != model.ModeDefault {
		w.applyToElement(tracked, mode)
	}
}

// SetMode updates the cached mode and reapplies it to every tracked
// element. Unrecognized values are ignored.
func (w *Watcher) SetMode(mode model.Mode) {
	if !mode.Valid() {
		return
	}
	w.mode.Store(mode)
	w.ApplyMode(mode)
}

// ApplyMode applies mode to all currently tracked elements.
func (w *Watcher) ApplyMode(mode model.Mode) {
	for _, el := range w.table.Snapshot() {
		w.applyToElement(el, mode)
	}
}

// applyToElement rewrites one element's Fill and Opacity for the mode.
// Individual property failures are logged and recovered: a failed mutation
// leaves that property at its prior value and never disturbs the host.
func (w *Watcher) applyToElement(el model.TrackedElement, mode model.Mode) {
	if w.svc == nil || el.Handle == 0 {
		return
	}
	switch mode {
	case model.ModeDefault:
		w.clearProperty(el.Handle, "Fill")
		w.clearProperty(el.Handle, "Opacity")
	case model.ModeTransparent:
		w.setFill(el.Handle, transparentBrush)
		w.setOpacity(el.Handle, 0)
	case model.ModeAcrylic:
		if el.Stroke {
			// Strokes disappear rather than dim.
			w.setFill(el.Handle, transparentBrush)
			w.setOpacity(el.Handle, 0)
		} else {
			w.setFill(el.Handle, acrylicTint)
			w.setOpacity(el.Handle, acrylicOpacity)
		}
	}
}

func (w *Watcher) setOpacity(handle uint64, opacity float64) {
	idx, ok, err := w.svc.PropertyIndex(handle, "Opacity")
	if err != nil {
		w.log.Warn("resolve Opacity failed", zap.Uint64("handle", handle), zap.Error(err))
		return
	}
	if !ok {
		return
	}
	value, err := w.svc.CreateInstance(doubleType, strconv.FormatFloat(opacity, 'f', -1, 64))
	if err != nil {
		w.log.Warn("create Opacity value failed", zap.Uint64("handle", handle), zap.Error(err))
		return
	}
	if err := w.svc.SetProperty(handle, value, idx); err != nil {
		w.log.Warn("set Opacity failed", zap.Uint64("handle", handle), zap.Error(err))
	}
}

func (w *Watcher) setFill(handle uint64, color string) {
	idx, ok, err := w.svc.PropertyIndex(handle, "Fill")
	if err != nil {
		w.log.Warn("resolve Fill failed", zap.Uint64("handle", handle), zap.Error(err))
		return
	}
	if !ok {
		// Not a shape; opacity alone carries the effect.
		return
	}
	value, err := w.svc.CreateInstance(brushType, color)
	if err != nil {
		w.log.Warn("create Fill brush failed", zap.Uint64("handle", handle), zap.Error(err))
		return
	}
	if err := w.svc.SetProperty(handle, value, idx); err != nil {
		w.log.Warn("set Fill failed", zap.Uint64("handle", handle), zap.Error(err))
	}
}

func (w *Watcher) clearProperty(handle uint64, name string) {
	idx, ok, err := w.svc.PropertyIndex(handle, name)
	if err != nil {
		w.log.Warn("resolve property failed", zap.String("property", name), zap.Uint64("handle", handle), zap.Error(err))
		return
	}
	if !ok {
		return
	}
	if err := w.svc.ClearProperty(handle, idx); err != nil {
		w.log.Warn("clear property failed", zap.String("property", name), zap.Uint64("handle", handle), zap.Error(err))
	}
}
