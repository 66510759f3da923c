//go:build windows

package shm

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"
)

// x/sys/windows wraps CreateFileMapping and MapViewOfFile but not
// OpenFileMappingW, so that one is resolved by hand.
var (
	kernel32            = windows.NewLazySystemDLL("kernel32.dll")
	procOpenFileMapping = kernel32.NewProc("OpenFileMappingW")
)

func openFileMapping(access uint32, inheritHandle bool, name *uint16) (windows.Handle, error) {
	var inherit uintptr
	if inheritHandle {
		inherit = 1
	}
	h, _, err := procOpenFileMapping.Call(
		uintptr(access),
		inherit,
		uintptr(unsafe.Pointer(name)),
	)
	if h == 0 {
		return 0, err
	}
	return windows.Handle(h), nil
}

// Segment is a named shared-memory mapping backed by the system paging
// file. Segments are reference-counted by the kernel: a segment exists for
// as long as at least one process holds a handle or view, so writers must
// keep their Segment open until the reader has attached.
type Segment struct {
	handle windows.Handle
	addr   uintptr
	size   int
}

// CreateSegment creates (or opens, if it already exists) a named read/write
// segment of the given size.
func CreateSegment(name string, size int) (*Segment, error) {
	name16, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, err
	}
	h, err := windows.CreateFileMapping(windows.InvalidHandle, nil,
		windows.PAGE_READWRITE, 0, uint32(size), name16)
	if err != nil {
		return nil, fmt.Errorf("create file mapping %s: %w", name, err)
	}
	return mapView(h, name, size, windows.FILE_MAP_READ|windows.FILE_MAP_WRITE)
}

// OpenSegment opens an existing named segment read/write. It fails when the
// segment does not exist.
func OpenSegment(name string, size int) (*Segment, error) {
	return openSegment(name, size, windows.FILE_MAP_READ|windows.FILE_MAP_WRITE)
}

// OpenSegmentRead opens an existing named segment read-only.
func OpenSegmentRead(name string, size int) (*Segment, error) {
	return openSegment(name, size, windows.FILE_MAP_READ)
}

func openSegment(name string, size int, access uint32) (*Segment, error) {
	name16, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, err
	}
	h, err := openFileMapping(access, false, name16)
	if err != nil {
		return nil, fmt.Errorf("open file mapping %s: %w", name, err)
	}
	return mapView(h, name, size, access)
}

func mapView(h windows.Handle, name string, size int, access uint32) (*Segment, error) {
	addr, err := windows.MapViewOfFile(h, access, 0, 0, uintptr(size))
	if err != nil {
		windows.CloseHandle(h)
		return nil, fmt.Errorf("map view of %s: %w", name, err)
	}
	return &Segment{handle: h, addr: addr, size: size}, nil
}

// Exists reports whether a named segment currently exists, without keeping
// it alive. The controller polls this on the mode segment as its proxy for
// "did the bootstrap inside the target process succeed".
func Exists(name string) bool {
	name16, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return false
	}
	h, err := openFileMapping(windows.FILE_MAP_READ, false, name16)
	if err != nil {
		return false
	}
	windows.CloseHandle(h)
	return true
}

// Bytes returns the mapped view. The slice is valid until Close.
func (s *Segment) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(s.addr)), s.size)
}

// LoadInt32 atomically reads the first machine word of the segment. Used
// for the mode IPC channel, which is a single int32 with no other locking.
func (s *Segment) LoadInt32() int32 {
	return atomic.LoadInt32((*int32)(unsafe.Pointer(s.addr)))
}

// StoreInt32 atomically writes the first machine word of the segment.
func (s *Segment) StoreInt32(v int32) {
	atomic.StoreInt32((*int32)(unsafe.Pointer(s.addr)), v)
}

// Close unmaps the view and releases the handle. The segment itself
// disappears once every process has closed it.
func (s *Segment) Close() error {
	if s.addr != 0 {
		if err := windows.UnmapViewOfFile(s.addr); err != nil {
			return err
		}
		s.addr = 0
	}
	if s.handle != 0 {
		if err := windows.CloseHandle(s.handle); err != nil {
			return err
		}
		s.handle = 0
	}
	return nil
}
