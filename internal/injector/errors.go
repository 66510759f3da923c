// Package injector loads the shelltap module into a running shell process
// using the remote-thread loader primitive: allocate a path string in the
// target, then start a remote thread at LoadLibraryW.
package injector

import (
	"errors"
	"fmt"
)

var (
	// ErrPermissionDenied means the calling process lacks the privilege to
	// open the target with full access. Injection structurally requires
	// equal-or-higher privilege than the target; run elevated.
	ErrPermissionDenied = errors.New("injection requires an elevated process")

	// ErrProcessNotFound means no running process matched the requested
	// name or PID.
	ErrProcessNotFound = errors.New("target process not found")

	// ErrInjectionTimeout means the remote loader thread did not finish
	// within the bounded wait. The module may still be initializing, so
	// callers report this but need not treat it as fatal.
	ErrInjectionTimeout = errors.New("remote loader thread did not complete in time")
)

// InjectionError wraps the OS error from a failed Win32 step, keeping the
// step name for diagnostics.
type InjectionError struct {
	Step string
	Err  error
}

func (e *InjectionError) Error() string {
	return fmt.Sprintf("injection failed at %s: %v", e.Step, e.Err)
}

func (e *InjectionError) Unwrap() error { return e.Err }
