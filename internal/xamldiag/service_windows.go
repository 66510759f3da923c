//go:build windows

package xamldiag

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/go-ole/go-ole"
	"golang.org/x/sys/windows"
)

// XamlDiagnostics wraps the host's IXamlDiagnostics. The watcher only needs
// it to prove the site exposes the diagnostics contract; all mutation goes
// through the tree service.
type XamlDiagnostics struct {
	ole.IUnknown
}

// TreeService wraps the host's IVisualTreeService3.
type TreeService struct {
	ole.IUnknown
}

func (s *TreeService) vtbl() *treeServiceVtbl {
	return (*treeServiceVtbl)(unsafe.Pointer(s.RawVTable))
}

// treeServiceVtbl lays out IVisualTreeService3's full method chain:
// IUnknown, then IVisualTreeService, IVisualTreeService2 and
// IVisualTreeService3 in declaration order. Only the methods this module
// calls are reached through it, but every slot must be present for the
// offsets to line up.
type treeServiceVtbl struct {
	ole.IUnknownVtbl
	// IVisualTreeService
	AdviseVisualTreeChange   uintptr
	UnadviseVisualTreeChange uintptr
	GetEnums                 uintptr
	CreateInstance           uintptr
	GetPropertyValuesChain   uintptr
	SetProperty              uintptr
	ClearProperty            uintptr
	GetCollectionCount       uintptr
	GetCollectionElements    uintptr
	AddChild                 uintptr
	RemoveChild              uintptr
	ClearChildren            uintptr
	// IVisualTreeService2
	GetPropertyIndex   uintptr
	GetProperty        uintptr
	ReplaceResource    uintptr
	RenderTargetBitmap uintptr
	// IVisualTreeService3
	ResolveResource      uintptr
	GetDictionaryItem    uintptr
	AddDictionaryItem    uintptr
	RemoveDictionaryItem uintptr
}

// AdviseVisualTreeChange subscribes cb (an IVisualTreeServiceCallback2
// pointer) to ongoing change notifications.
func (s *TreeService) AdviseVisualTreeChange(cb unsafe.Pointer) error {
	hr, _, _ := syscall.SyscallN(s.vtbl().AdviseVisualTreeChange,
		uintptr(unsafe.Pointer(s)),
		uintptr(cb),
	)
	if hrFailed(hr) {
		return ole.NewError(hr)
	}
	return nil
}

// CreateInstance asks the diagnostics service to construct a new property
// value of the named XAML type from its string representation, e.g.
// ("Double", "0.3") or ("Windows.UI.Xaml.Media.SolidColorBrush",
// "Transparent"). The returned handle can then be assigned with SetProperty.
func (s *TreeService) CreateInstance(typeName, value string) (InstanceHandle, error) {
	bType := ole.SysAllocStringLen(typeName)
	defer ole.SysFreeString(bType)
	var bValue *int16
	if value != "" {
		bValue = ole.SysAllocStringLen(value)
		defer ole.SysFreeString(bValue)
	}

	var h InstanceHandle
	hr, _, _ := syscall.SyscallN(s.vtbl().CreateInstance,
		uintptr(unsafe.Pointer(s)),
		uintptr(unsafe.Pointer(bType)),
		uintptr(unsafe.Pointer(bValue)),
		uintptr(unsafe.Pointer(&h)),
	)
	if hrFailed(hr) {
		return 0, fmt.Errorf("CreateInstance(%s, %s): %w", typeName, value, ole.NewError(hr))
	}
	return h, nil
}

// PropertyIndex resolves the property chain index for the named property of
// the element. Indices are scoped per compiled element type and are not
// stable across framework versions, so they are resolved by name on every
// call and never cached across element instances. The second return is
// false when the element has no such property.
func (s *TreeService) PropertyIndex(handle InstanceHandle, name string) (uint32, bool, error) {
	var (
		srcCount uint32
		sources  *PropertyChainSource
		valCount uint32
		values   *PropertyChainValue
	)
	hr, _, _ := syscall.SyscallN(s.vtbl().GetPropertyValuesChain,
		uintptr(unsafe.Pointer(s)),
		uintptr(handle),
		uintptr(unsafe.Pointer(&srcCount)),
		uintptr(unsafe.Pointer(&sources)),
		uintptr(unsafe.Pointer(&valCount)),
		uintptr(unsafe.Pointer(&values)),
	)
	if hrFailed(hr) {
		return 0, false, fmt.Errorf("GetPropertyValuesChain(%d): %w", handle, ole.NewError(hr))
	}
	defer freePropertyChain(srcCount, sources, valCount, values)

	if values != nil {
		vals := unsafe.Slice(values, valCount)
		for i := range vals {
			if bstrToString(vals[i].PropertyName) == name {
				return vals[i].Index, true, nil
			}
		}
	}
	return 0, false, nil
}

// SetProperty assigns the value instance to the element's property at the
// resolved chain index.
func (s *TreeService) SetProperty(handle, value InstanceHandle, index uint32) error {
	hr, _, _ := syscall.SyscallN(s.vtbl().SetProperty,
		uintptr(unsafe.Pointer(s)),
		uintptr(handle),
		uintptr(value),
		uintptr(index),
	)
	if hrFailed(hr) {
		return fmt.Errorf("SetProperty(%d, idx=%d): %w", handle, index, ole.NewError(hr))
	}
	return nil
}

// ClearProperty removes a previously set override, restoring the
// template-driven value.
func (s *TreeService) ClearProperty(handle InstanceHandle, index uint32) error {
	hr, _, _ := syscall.SyscallN(s.vtbl().ClearProperty,
		uintptr(unsafe.Pointer(s)),
		uintptr(handle),
		uintptr(index),
	)
	if hrFailed(hr) {
		return fmt.Errorf("ClearProperty(%d, idx=%d): %w", handle, index, ole.NewError(hr))
	}
	return nil
}

// freePropertyChain releases the chain arrays per the COM allocation
// contract: every BSTR individually, then the CoTaskMem arrays.
func freePropertyChain(srcCount uint32, sources *PropertyChainSource, valCount uint32, values *PropertyChainValue) {
	if values != nil {
		vals := unsafe.Slice(values, valCount)
		for i := range vals {
			freeBSTR(vals[i].Type)
			freeBSTR(vals[i].DeclaringType)
			freeBSTR(vals[i].ValueType)
			freeBSTR(vals[i].ItemType)
			freeBSTR(vals[i].Value)
			freeBSTR(vals[i].PropertyName)
		}
		windows.CoTaskMemFree(unsafe.Pointer(values))
	}
	if sources != nil {
		srcs := unsafe.Slice(sources, srcCount)
		for i := range srcs {
			freeBSTR(srcs[i].TargetType)
			freeBSTR(srcs[i].Name)
			freeBSTR(srcs[i].SrcInfo.FileName)
			freeBSTR(srcs[i].SrcInfo.Hash)
		}
		windows.CoTaskMemFree(unsafe.Pointer(sources))
	}
}

func freeBSTR(b bstr) {
	if b != nil {
		ole.SysFreeString((*int16)(unsafe.Pointer(b)))
	}
}
