package tap

import (
	"time"

	"go.uber.org/zap"

	"github.com/mj1618/wintheme/internal/model"
)

// PollInterval is the mode IPC polling cadence. One shared-memory read per
// tick; the shared word has no signaling primitive attached, so polling is
// the wake mechanism. A controller-written change is reflected within at
// most one interval plus mutation time.
const PollInterval = 250 * time.Millisecond

// Poller watches the shared mode word and pushes recognized changes into
// the watcher. It is the only mechanism by which a separate controller
// process changes appearance after injection.
type Poller struct {
	load     func() int32
	watcher  *Watcher
	interval time.Duration
	log      *zap.Logger

	stop chan struct{}
	done chan struct{}
}

// NewPoller builds a poller reading the shared word via load.
func NewPoller(load func() int32, w *Watcher, interval time.Duration, log *zap.Logger) *Poller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{
		load:     load,
		watcher:  w,
		interval: interval,
		log:      log,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the polling goroutine.
func (p *Poller) Start() {
	go p.run()
}

func (p *Poller) run() {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

func (p *Poller) tick() {
	mode := model.Mode(p.load())
	if !mode.Valid() || mode == p.watcher.Mode() {
		return
	}
	p.log.Info("mode change via shared memory", zap.Stringer("mode", mode))
	p.watcher.SetMode(mode)
}

// Stop signals the polling loop and waits (bounded) for it to exit, so the
// loop never touches freed state after module unload.
func (p *Poller) Stop() {
	close(p.stop)
	select {
	case <-p.done:
	case <-time.After(2 * time.Second):
		p.log.Warn("mode poller did not stop in time")
	}
}
