//go:build windows

package injector

import (
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

// FindProcess returns the PID of the first running process whose executable
// name equals name (case-insensitive), e.g. "StartMenuExperienceHost.exe".
func FindProcess(name string) (uint32, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return 0, fmt.Errorf("process snapshot: %w", err)
	}
	defer windows.CloseHandle(snap)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	for err = windows.Process32First(snap, &entry); err == nil; err = windows.Process32Next(snap, &entry) {
		if strings.EqualFold(windows.UTF16ToString(entry.ExeFile[:]), name) {
			return entry.ProcessID, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrProcessNotFound, name)
}

// DesktopPID returns the PID of the process rendering the active desktop
// shell, normally explorer.exe.
func DesktopPID() (uint32, error) {
	hwnd := windows.GetShellWindow()
	if hwnd == 0 {
		return 0, fmt.Errorf("%w: no shell window present", ErrProcessNotFound)
	}
	var pid uint32
	windows.GetWindowThreadProcessId(hwnd, &pid)
	if pid == 0 {
		return 0, fmt.Errorf("%w: no process for shell window", ErrProcessNotFound)
	}
	return pid, nil
}
