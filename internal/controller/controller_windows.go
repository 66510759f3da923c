//go:build windows

package controller

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mj1618/wintheme/internal/injector"
	"github.com/mj1618/wintheme/internal/model"
	"github.com/mj1618/wintheme/internal/shm"
)

type windowsController struct {
	log *zap.Logger
}

// New returns the Windows injection backend.
func New(log *zap.Logger) Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &windowsController{log: log}
}

func (c *windowsController) Inject(opts InjectOptions) (*InjectResult, error) {
	target := opts.Target
	dllPath, err := filepath.Abs(opts.DLLPath)
	if err != nil {
		return nil, err
	}

	pid := opts.PID
	if pid == 0 {
		pid, err = c.resolvePID(target.Process)
		if err != nil {
			return nil, err
		}
	}

	elements := target.Elements
	if opts.Discovery {
		elements = nil
	}
	cfg := &shm.ConfigRecord{
		Mode:    opts.Mode,
		Targets: elements,
		LogPath: opts.LogPath,
	}

	// The handshake segments stay open until the module has read them:
	// named mappings are refcounted by the kernel, so closing before the
	// module attaches would let them vanish mid-handshake.
	initSeg, cfgSeg, err := c.publishSegments(target.ID, cfg)
	if err != nil {
		return nil, err
	}
	defer initSeg.Close()
	defer cfgSeg.Close()

	c.log.Info("injecting",
		zap.String("target", target.ID),
		zap.Uint32("pid", pid),
		zap.String("dll", dllPath))
	if err := injector.Inject(pid, dllPath); err != nil {
		return nil, err
	}

	wait := opts.AttachWait
	if wait == 0 {
		wait = DefaultAttachWait
	}
	attached := c.waitForModule(target.ID, wait)
	if attached {
		c.log.Info("module attached", zap.String("target", target.ID))
	} else {
		c.log.Warn("module did not come up in time; check its log next to the dll",
			zap.String("target", target.ID), zap.Duration("waited", wait))
	}

	res := &InjectResult{
		Target:    target.ID,
		Process:   target.Process,
		PID:       pid,
		Mode:      cfg.Mode.String(),
		Discovery: cfg.Discovery(),
		Attached:  attached,
	}
	for _, m := range elements {
		res.Elements = append(res.Elements, m.String())
	}
	return res, nil
}

func (c *windowsController) resolvePID(process string) (uint32, error) {
	// The desktop's own explorer instance is special-cased: several
	// explorer.exe processes may exist (file windows, crashed restarts)
	// and only the one owning the shell window hosts the taskbar tree.
	if strings.EqualFold(process, "explorer.exe") {
		if pid, err := injector.DesktopPID(); err == nil {
			return pid, nil
		}
	}
	return injector.FindProcess(process)
}

func (c *windowsController) publishSegments(targetID string, cfg *shm.ConfigRecord) (initSeg, cfgSeg *shm.Segment, err error) {
	initBuf, err := shm.EncodeInitSegment(targetID)
	if err != nil {
		return nil, nil, err
	}
	cfgBuf, err := cfg.Encode()
	if err != nil {
		return nil, nil, err
	}

	initSeg, err = shm.CreateSegment(shm.InitSegmentName, shm.InitSegmentSize)
	if err != nil {
		return nil, nil, fmt.Errorf("create init segment: %w", err)
	}
	copy(initSeg.Bytes(), initBuf)

	cfgSeg, err = shm.CreateSegment(shm.ConfigSegmentName(targetID), shm.RecordSize)
	if err != nil {
		initSeg.Close()
		return nil, nil, fmt.Errorf("create config segment: %w", err)
	}
	copy(cfgSeg.Bytes(), cfgBuf)
	return initSeg, cfgSeg, nil
}

// waitForModule polls for the module's mode segment, which it publishes
// only once diagnostics activation succeeded and the watcher is live.
func (c *windowsController) waitForModule(targetID string, wait time.Duration) bool {
	name := shm.ModeSegmentName(targetID)
	deadline := time.Now().Add(wait)
	for time.Now().Before(deadline) {
		if shm.Exists(name) {
			return true
		}
		time.Sleep(250 * time.Millisecond)
	}
	return shm.Exists(name)
}

func (c *windowsController) SetMode(targetID string, mode model.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("invalid mode %d", int32(mode))
	}
	seg, err := shm.OpenSegment(shm.ModeSegmentName(targetID), shm.ModeSegmentSize)
	if err != nil {
		return fmt.Errorf("target %s is not attached (inject first): %w", targetID, err)
	}
	defer seg.Close()
	seg.StoreInt32(int32(mode))
	c.log.Info("mode written", zap.String("target", targetID), zap.Stringer("mode", mode))
	return nil
}

func (c *windowsController) Status(targetID string) (*Status, error) {
	seg, err := shm.OpenSegmentRead(shm.ModeSegmentName(targetID), shm.ModeSegmentSize)
	if err != nil {
		return &Status{Target: targetID, Attached: false}, nil
	}
	defer seg.Close()
	return &Status{
		Target:   targetID,
		Attached: true,
		Mode:     model.Mode(seg.LoadInt32()).String(),
	}, nil
}
