//go:build windows

package xamldiag

import (
	"fmt"
	"unsafe"

	"github.com/go-ole/go-ole"
	"golang.org/x/sys/windows"
)

var (
	// Windows.UI.Xaml.dll is already mapped in any process rendering shell
	// XAML; the lazy DLL resolves it from System32 only.
	winUIXaml = windows.NewLazySystemDLL("Windows.UI.Xaml.dll")

	procInitializeXamlDiagnosticsEx = winUIXaml.NewProc("InitializeXamlDiagnosticsEx")
)

// Activate calls InitializeXamlDiagnosticsEx for the current process,
// registering tapDLL's CLSIDShellTapSite as the diagnostics provider on the
// named connection endpoint.
//
// The activation succeeds at most once per calling OS thread, so callers
// retry on a fresh thread per attempt with a new endpoint name.
func Activate(endpoint string, pid uint32, tapDLL string) error {
	if err := procInitializeXamlDiagnosticsEx.Find(); err != nil {
		return fmt.Errorf("resolve InitializeXamlDiagnosticsEx: %w", err)
	}

	endpoint16, err := windows.UTF16PtrFromString(endpoint)
	if err != nil {
		return err
	}
	dll16, err := windows.UTF16PtrFromString(tapDLL)
	if err != nil {
		return err
	}

	// The CLSID is passed by value; on amd64 a 16-byte struct argument
	// travels as a pointer to the caller's copy.
	clsid := *CLSIDShellTapSite
	hr, _, _ := procInitializeXamlDiagnosticsEx.Call(
		uintptr(unsafe.Pointer(endpoint16)),
		uintptr(pid),
		0, // wszDllXamlDiagnostics: use the host's own XAML diagnostics
		uintptr(unsafe.Pointer(dll16)),
		uintptr(unsafe.Pointer(&clsid)),
		0, // wszInitializationData
	)
	if hrFailed(hr) {
		return fmt.Errorf("InitializeXamlDiagnosticsEx(%s): %w", endpoint, ole.NewError(hr))
	}
	return nil
}
