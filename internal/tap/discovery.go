package tap

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// DiscoveryLog records every observed element to a plain text file, one
// line per element. Used to map an unfamiliar UI tree before writing
// target matchers; human-readable, not meant for machine parsing.
type DiscoveryLog struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
}

// OpenDiscoveryLog creates (truncating) the discovery log at path.
func OpenDiscoveryLog(path, targetID string) (*DiscoveryLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	d := NewDiscoveryLog(f, targetID)
	d.closer = f
	return d, nil
}

// NewDiscoveryLog writes the log header to w and returns the logger.
func NewDiscoveryLog(w io.Writer, targetID string) *DiscoveryLog {
	fmt.Fprintf(w, "=== ShellTap discovery log (target=%s) ===\n", targetID)
	fmt.Fprintf(w, "Format: [handle] name | type (parent=H, children=N)\n\n")
	return &DiscoveryLog{w: w}
}

// Log appends one element observation.
func (d *DiscoveryLog) Log(el Element) {
	name := el.Name
	if name == "" {
		name = "(unnamed)"
	}
	typ := el.Type
	if typ == "" {
		typ = "(unknown)"
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.w, "[%d] %s | %s (parent=%d, children=%d)\n",
		el.Handle, name, typ, el.Parent, el.Children)
}

// Close flushes and closes the underlying file, if any.
func (d *DiscoveryLog) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closer != nil {
		err := d.closer.Close()
		d.closer = nil
		return err
	}
	return nil
}
