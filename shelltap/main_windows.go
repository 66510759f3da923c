//go:build windows

// The shelltap library is loaded into a shell host process and rewrites its
// XAML visual tree. Build it as a shared library:
//
//	go build -buildmode=c-shared -o shelltap.dll ./shelltap
//
// Besides the COM class-object exports consumed by the XAML diagnostics
// subsystem, it exposes a flat API for in-process callers.
package main

import "C"

import (
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/mj1618/wintheme/internal/model"
	"github.com/mj1618/wintheme/internal/tap"
	"github.com/mj1618/wintheme/internal/version"
	"github.com/mj1618/wintheme/internal/xamldiag"
)

const (
	hrOK          = 0
	hrFalse       = 1
	hrEInvalidArg = 0x80070057
	hrEFail       = 0x80004005
)

// anchor exists to have an address inside this module image, so the
// loaded library can discover its own on-disk path.
var anchor byte

func modulePath() (string, error) {
	const flags = windows.GET_MODULE_HANDLE_EX_FLAG_FROM_ADDRESS |
		windows.GET_MODULE_HANDLE_EX_FLAG_UNCHANGED_REFCOUNT
	var h windows.Handle
	if err := windows.GetModuleHandleEx(flags, (*uint16)(unsafe.Pointer(&anchor)), &h); err != nil {
		return "", err
	}
	buf := make([]uint16, windows.MAX_LONG_PATH)
	n, err := windows.GetModuleFileName(h, &buf[0], uint32(len(buf)))
	if err != nil {
		return "", err
	}
	return windows.UTF16ToString(buf[:n]), nil
}

func init() {
	path, err := modulePath()
	if err != nil {
		// Without its own path the module cannot name its logs or hand
		// the diagnostics subsystem a library to load; stay dormant.
		return
	}
	tap.Attach(path)
}

// SetShellTapMode applies an appearance mode. Returns S_OK, E_INVALIDARG
// for unrecognized values, or E_FAIL before the watcher is operational.
//
//export SetShellTapMode
func SetShellTapMode(mode int32) uint32 {
	if !model.Mode(mode).Valid() {
		return hrEInvalidArg
	}
	if !tap.SetMode(mode) {
		return hrEFail
	}
	return hrOK
}

// GetShellTapMode reports the currently applied appearance mode.
//
//export GetShellTapMode
func GetShellTapMode() int32 {
	return tap.CurrentMode()
}

// GetShellTapVersion reports the module's interface version.
//
//export GetShellTapVersion
func GetShellTapVersion() int32 {
	return version.TapVersion
}

// GetShellTapTrackedCount reports how many elements are being tracked.
//
//export GetShellTapTrackedCount
func GetShellTapTrackedCount() int32 {
	return tap.TrackedCount()
}

// DllGetClassObject hands out the class factory the XAML diagnostics
// subsystem requests right after loading this library.
//
//export DllGetClassObject
func DllGetClassObject(rclsid, riid, ppv uintptr) uintptr {
	return xamldiag.ClassObject(rclsid, riid, ppv)
}

// DllCanUnloadNow reports whether all COM objects have been released.
//
//export DllCanUnloadNow
func DllCanUnloadNow() uintptr {
	if xamldiag.CanUnload() {
		return hrOK
	}
	return hrFalse
}

func main() {}
