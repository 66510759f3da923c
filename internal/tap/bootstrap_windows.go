//go:build windows

package tap

import (
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/mj1618/wintheme/internal/logging"
	"github.com/mj1618/wintheme/internal/model"
	"github.com/mj1618/wintheme/internal/shm"
	"github.com/mj1618/wintheme/internal/xamldiag"
)

// Module is the in-process context of the injected library: it owns the
// watcher, the IPC segments, and the diagnostics activation lifecycle.
// There is exactly one per loaded copy of the DLL.
type Module struct {
	mu      sync.Mutex
	log     *zap.Logger
	watcher *Watcher
	disc    *DiscoveryLog
	poller  *Poller
	modeSeg *shm.Segment

	targetID string
	dllPath  string
}

var mod = &Module{log: zap.NewNop()}

// Attach starts the module after the library is loaded into the host.
// It returns immediately; reading the IPC segments and the (potentially
// half-minute) activation retry run on their own goroutine so the host's
// library loader is never blocked.
func Attach(dllPath string) {
	go mod.attach(dllPath)
}

func (m *Module) attach(dllPath string) {
	m.mu.Lock()
	m.dllPath = dllPath
	m.targetID = readTargetID()

	logPath := filepath.Join(filepath.Dir(dllPath), fmt.Sprintf("shelltap_%s.log", m.targetID))
	if log, err := logging.NewFileLogger(logPath); err == nil {
		m.log = log
	}
	log := m.log
	log.Info("module attached",
		zap.String("target", m.targetID),
		zap.String("dll", dllPath),
		zap.Uint32("pid", windows.GetCurrentProcessId()))

	cfg := m.readConfig()
	if cfg.Discovery() {
		discPath := cfg.LogPath
		if discPath == "" {
			discPath = filepath.Join(filepath.Dir(dllPath), fmt.Sprintf("discovery_%s.log", m.targetID))
		}
		disc, err := OpenDiscoveryLog(discPath, m.targetID)
		if err != nil {
			log.Warn("open discovery log failed", zap.String("path", discPath), zap.Error(err))
		} else {
			m.disc = disc
			log.Info("discovery mode", zap.String("path", discPath))
		}
	}

	m.watcher = NewWatcher(cfg, m.disc, log)
	m.mu.Unlock()

	xamldiag.Configure(m, log)

	pid := windows.GetCurrentProcessId()
	n, err := RetryOnFreshThreads(ActivationAttempts, ActivationRetryDelay, func(attempt int) error {
		// Endpoint names must be unique per attempt; a rejected
		// registration poisons its endpoint name.
		endpoint := fmt.Sprintf("VisualDiagConnection%d", attempt)
		return xamldiag.Activate(endpoint, pid, m.dllPath)
	})
	if err != nil {
		log.Error("diagnostics activation failed", zap.Int("attempts", n), zap.Error(err))
		return
	}
	log.Info("diagnostics activation accepted", zap.Int("attempt", n))
}

// readTargetID reads the TargetId handed over by the controller. A missing
// or empty init segment is survivable: the module runs with a default
// identity and a discovery-only config.
func readTargetID() string {
	seg, err := shm.OpenSegmentRead(shm.InitSegmentName, shm.InitSegmentSize)
	if err != nil {
		return "Unknown"
	}
	defer seg.Close()
	id := shm.DecodeInitSegment(seg.Bytes())
	if id == "" {
		return "Unknown"
	}
	return id
}

// readConfig loads the per-target configuration record. Any failure falls
// back to an empty record, which the watcher treats as discovery mode.
func (m *Module) readConfig() *shm.ConfigRecord {
	seg, err := shm.OpenSegmentRead(shm.ConfigSegmentName(m.targetID), shm.RecordSize)
	if err != nil {
		m.log.Warn("config segment unavailable, running discovery", zap.Error(err))
		return &shm.ConfigRecord{Mode: model.ModeDefault}
	}
	defer seg.Close()
	cfg, err := shm.DecodeConfig(seg.Bytes())
	if err != nil {
		m.log.Warn("config record rejected, running discovery", zap.Error(err))
		return &shm.ConfigRecord{Mode: model.ModeDefault}
	}
	return cfg
}

// SiteSet implements xamldiag.SiteHandler. Installing the tree service and
// publishing the mode segment marks the module operational; the controller
// polls for the segment's existence to confirm the injection round-trip.
func (m *Module) SiteSet(diag *xamldiag.XamlDiagnostics, svc *xamldiag.TreeService) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.watcher.SetMutator(svc)

	if m.modeSeg == nil {
		seg, err := shm.CreateSegment(shm.ModeSegmentName(m.targetID), shm.ModeSegmentSize)
		if err != nil {
			m.log.Error("create mode segment failed", zap.Error(err))
		} else {
			seg.StoreInt32(int32(m.watcher.Mode()))
			m.modeSeg = seg
		}
	}
	if m.poller == nil && m.modeSeg != nil {
		m.poller = NewPoller(m.modeSeg.LoadInt32, m.watcher, PollInterval, m.log)
		m.poller.Start()
	}
	m.log.Info("diagnostics site connected")
}

// SiteCleared implements xamldiag.SiteHandler.
func (m *Module) SiteCleared() {
	m.mu.Lock()
	poller := m.poller
	m.poller = nil
	m.mu.Unlock()

	if poller != nil {
		poller.Stop()
	}
	m.log.Info("diagnostics site disconnected")
}

// TreeChanged implements xamldiag.SiteHandler.
func (m *Module) TreeChanged(mut xamldiag.MutationType, parent, handle xamldiag.InstanceHandle, name, typ string, numChildren uint32) {
	m.watcher.OnTreeChange(Mutation(mut), Element{
		Handle:   handle,
		Name:     name,
		Type:     typ,
		Parent:   parent,
		Children: numChildren,
	})
}

// SetMode applies an appearance mode from an in-process caller (the
// exported flat API). It also mirrors the value into the mode segment so
// the poller and out-of-process controllers stay consistent.
func SetMode(v int32) bool {
	mode := model.Mode(v)
	if !mode.Valid() {
		return false
	}
	mod.mu.Lock()
	watcher, seg := mod.watcher, mod.modeSeg
	mod.mu.Unlock()
	if watcher == nil {
		return false
	}
	if seg != nil {
		seg.StoreInt32(v)
	}
	watcher.SetMode(mode)
	return true
}

// CurrentMode reports the mode the watcher last applied.
func CurrentMode() int32 {
	mod.mu.Lock()
	watcher := mod.watcher
	mod.mu.Unlock()
	if watcher == nil {
		return int32(model.ModeDefault)
	}
	return int32(watcher.Mode())
}

// TrackedCount reports how many elements the watcher currently tracks.
func TrackedCount() int32 {
	mod.mu.Lock()
	watcher := mod.watcher
	mod.mu.Unlock()
	if watcher == nil {
		return 0
	}
	return int32(watcher.TrackedCount())
}

// Detach tears the module down: poller stopped, discovery log flushed,
// segments released. Called when the host unloads the library.
func Detach() {
	mod.mu.Lock()
	poller := mod.poller
	mod.poller = nil
	disc := mod.disc
	mod.disc = nil
	seg := mod.modeSeg
	mod.modeSeg = nil
	log := mod.log
	mod.mu.Unlock()

	if poller != nil {
		poller.Stop()
	}
	if disc != nil {
		disc.Close()
	}
	if seg != nil {
		seg.Close()
	}
	log.Info("module detached")
	log.Sync()
}
