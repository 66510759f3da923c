//go:build windows

package injector

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
	"unsafe"

	"github.com/dblohm7/wingoes"
	"golang.org/x/sys/windows"
)

var (
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procVirtualAllocEx     = kernel32.NewProc("VirtualAllocEx")
	procVirtualFreeEx      = kernel32.NewProc("VirtualFreeEx")
	procWriteProcessMemory = kernel32.NewProc("WriteProcessMemory")
	procCreateRemoteThread = kernel32.NewProc("CreateRemoteThread")
	procLoadLibraryW       = kernel32.NewProc("LoadLibraryW")
)

// remoteThreadTimeout bounds the wait for the remote LoadLibraryW thread.
const remoteThreadTimeout = 10 * time.Second

// Inject loads the module at dllPath into the process identified by pid.
// The module's entry point runs synchronously on the remote thread; from
// the caller's point of view injection is fire-and-forget beyond the
// bounded wait. On ErrInjectionTimeout the module may still be loading.
func Inject(pid uint32, dllPath string) error {
	if _, err := os.Stat(dllPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("module %s: %w", dllPath, err)
		}
		return err
	}
	// Check elevation before touching the target at all: a denied caller
	// must not allocate remote memory or start remote threads.
	if !windows.GetCurrentProcessToken().IsElevated() {
		return ErrPermissionDenied
	}
	// XAML diagnostics activation needs a modern Windows 10+ build.
	if !wingoes.IsWin10BuildOrGreater(wingoes.Win10Build1703) {
		return errors.New("this Windows build does not support XAML diagnostics injection")
	}

	proc, err := windows.OpenProcess(windows.PROCESS_ALL_ACCESS, false, pid)
	if err != nil {
		switch {
		case errors.Is(err, windows.ERROR_ACCESS_DENIED):
			return ErrPermissionDenied
		case errors.Is(err, windows.ERROR_INVALID_PARAMETER):
			// OpenProcess reports a stale or unknown PID this way.
			return ErrProcessNotFound
		default:
			return &InjectionError{Step: "OpenProcess", Err: err}
		}
	}
	defer windows.CloseHandle(proc)

	path16, err := windows.UTF16FromString(dllPath)
	if err != nil {
		return err
	}
	size := uintptr(len(path16) * 2)

	remote, _, errno := procVirtualAllocEx.Call(
		uintptr(proc),
		0,
		size,
		windows.MEM_COMMIT|windows.MEM_RESERVE,
		windows.PAGE_READWRITE,
	)
	if remote == 0 {
		return &InjectionError{Step: "VirtualAllocEx", Err: errno}
	}

	var written uintptr
	ok, _, errno := procWriteProcessMemory.Call(
		uintptr(proc),
		remote,
		uintptr(unsafe.Pointer(&path16[0])),
		size,
		uintptr(unsafe.Pointer(&written)),
	)
	if ok == 0 || written != size {
		freeRemote(proc, remote)
		return &InjectionError{Step: "WriteProcessMemory", Err: errno}
	}

	// kernel32 is mapped at the same base in every process of a session,
	// so LoadLibraryW's address in this process is valid in the target.
	loader := procLoadLibraryW.Addr()

	thread, _, errno := procCreateRemoteThread.Call(
		uintptr(proc),
		0,
		0,
		loader,
		remote,
		0,
		0,
	)
	if thread == 0 {
		freeRemote(proc, remote)
		return &InjectionError{Step: "CreateRemoteThread", Err: errno}
	}
	defer windows.CloseHandle(windows.Handle(thread))

	event, err := windows.WaitForSingleObject(windows.Handle(thread),
		uint32(remoteThreadTimeout.Milliseconds()))
	if err != nil {
		return &InjectionError{Step: "WaitForSingleObject", Err: err}
	}
	if event == uint32(windows.WAIT_TIMEOUT) {
		// Leave the path allocation in place: the loader thread may still
		// be reading it.
		return ErrInjectionTimeout
	}

	freeRemote(proc, remote)
	return nil
}

func freeRemote(proc windows.Handle, addr uintptr) {
	procVirtualFreeEx.Call(uintptr(proc), addr, 0, windows.MEM_RELEASE)
}
