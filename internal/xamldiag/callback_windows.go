//go:build windows

package xamldiag

import (
	"sync"
	"sync/atomic"
	"syscall"
	"unsafe"

	"github.com/go-ole/go-ole"
	"go.uber.org/zap"
	"golang.org/x/sys/windows"
)

// SiteHandler receives the diagnostics interfaces and tree notifications.
// Implemented by the injected module context. Callbacks arrive on threads
// owned by the diagnostics subsystem, possibly concurrently.
type SiteHandler interface {
	// SiteSet is called once the site exposes both diagnostics interfaces.
	// The change-notification subscription starts right after it returns.
	SiteSet(diag *XamlDiagnostics, svc *TreeService)
	// SiteCleared is called when the diagnostics subsystem disconnects.
	SiteCleared()
	// TreeChanged delivers one visual tree mutation. Name and typ are
	// copied out of the caller-owned notification.
	TreeChanged(mutation MutationType, parent, handle InstanceHandle, name, typ string, numChildren uint32)
}

var (
	handlerMu sync.RWMutex
	handler   SiteHandler
	logger    = zap.NewNop()

	// refCount tracks live COM objects plus LockServer locks, for
	// DllCanUnloadNow.
	refCount atomic.Int32

	// objects pins every live COM instance so the GC neither frees nor
	// collects memory the diagnostics subsystem still points at.
	objects sync.Map
)

// Configure installs the site handler and logger. Must be called before
// the activation entry point is invoked, since the diagnostics subsystem
// may instantiate the site object at any time afterwards.
func Configure(h SiteHandler, log *zap.Logger) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	handler = h
	if log != nil {
		logger = log
	}
}

func currentHandler() SiteHandler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return handler
}

// CanUnload reports whether no COM objects are outstanding.
func CanUnload() bool { return refCount.Load() == 0 }

// Object kinds. Each object exposes IUnknown plus exactly one interface.
const (
	kindFactory = iota
	kindSite
	kindCallback
)

// comInstance is the memory layout of every COM object this module serves:
// the vtable pointer first (so the COM `this` is the instance address),
// then Go-side state.
type comInstance struct {
	vtbl unsafe.Pointer
	kind int32
	refs atomic.Int32
	// site is the IUnknown the diagnostics subsystem passed to SetSite,
	// kept AddRef'd for GetSite.
	site uintptr
}

type factoryVtbl struct {
	queryInterface uintptr
	addRef         uintptr
	release        uintptr
	createInstance uintptr
	lockServer     uintptr
}

type siteVtbl struct {
	queryInterface uintptr
	addRef         uintptr
	release        uintptr
	setSite        uintptr
	getSite        uintptr
}

type callbackVtbl struct {
	queryInterface        uintptr
	addRef                uintptr
	release               uintptr
	onVisualTreeChange    uintptr
	onElementStateChanged uintptr
}

var (
	theFactoryVtbl  factoryVtbl
	theSiteVtbl     siteVtbl
	theCallbackVtbl callbackVtbl
)

func init() {
	qi := windows.NewCallback(comQueryInterface)
	addRef := windows.NewCallback(comAddRef)
	release := windows.NewCallback(comRelease)

	theFactoryVtbl = factoryVtbl{
		queryInterface: qi,
		addRef:         addRef,
		release:        release,
		createInstance: windows.NewCallback(factoryCreateInstance),
		lockServer:     windows.NewCallback(factoryLockServer),
	}
	theSiteVtbl = siteVtbl{
		queryInterface: qi,
		addRef:         addRef,
		release:        release,
		setSite:        windows.NewCallback(siteSetSite),
		getSite:        windows.NewCallback(siteGetSite),
	}
	theCallbackVtbl = callbackVtbl{
		queryInterface:        qi,
		addRef:                addRef,
		release:               release,
		onVisualTreeChange:    windows.NewCallback(callbackOnVisualTreeChange),
		onElementStateChanged: windows.NewCallback(callbackOnElementStateChanged),
	}
}

func newInstance(kind int32, vtbl unsafe.Pointer) uintptr {
	inst := &comInstance{vtbl: vtbl, kind: kind}
	inst.refs.Store(1)
	this := uintptr(unsafe.Pointer(inst))
	objects.Store(this, inst)
	refCount.Add(1)
	return this
}

func instanceFor(this uintptr) *comInstance {
	if v, ok := objects.Load(this); ok {
		return v.(*comInstance)
	}
	return nil
}

// ClassObject backs the DLL's DllGetClassObject export.
func ClassObject(rclsid, riid, ppv uintptr) uintptr {
	if ppv == 0 {
		return hrEPointer
	}
	*(*uintptr)(unsafe.Pointer(ppv)) = 0
	if !ole.IsEqualGUID((*ole.GUID)(unsafe.Pointer(rclsid)), CLSIDShellTapSite) {
		return hrClassEClassNotAvailable
	}
	factory := newInstance(kindFactory, unsafe.Pointer(&theFactoryVtbl))
	hr := comQueryInterface(factory, riid, ppv)
	comRelease(factory)
	return hr
}

func supportsInterface(kind int32, iid *ole.GUID) bool {
	if ole.IsEqualGUID(iid, iidIUnknown) {
		return true
	}
	switch kind {
	case kindFactory:
		return ole.IsEqualGUID(iid, iidIClassFactory)
	case kindSite:
		return ole.IsEqualGUID(iid, iidIObjectWithSite)
	case kindCallback:
		return ole.IsEqualGUID(iid, iidIVisualTreeServiceCallback) ||
			ole.IsEqualGUID(iid, iidIVisualTreeServiceCallback2)
	}
	return false
}

func comQueryInterface(this, riid, ppv uintptr) uintptr {
	if ppv == 0 {
		return hrEPointer
	}
	*(*uintptr)(unsafe.Pointer(ppv)) = 0
	inst := instanceFor(this)
	if inst == nil || riid == 0 {
		return hrEInvalidArg
	}
	if !supportsInterface(inst.kind, (*ole.GUID)(unsafe.Pointer(riid))) {
		return hrENoInterface
	}
	inst.refs.Add(1)
	*(*uintptr)(unsafe.Pointer(ppv)) = this
	return hrSOK
}

func comAddRef(this uintptr) uintptr {
	inst := instanceFor(this)
	if inst == nil {
		return 0
	}
	return uintptr(inst.refs.Add(1))
}

func comRelease(this uintptr) uintptr {
	inst := instanceFor(this)
	if inst == nil {
		return 0
	}
	n := inst.refs.Add(-1)
	if n == 0 {
		if inst.site != 0 {
			unknownRelease(inst.site)
			inst.site = 0
		}
		objects.Delete(this)
		refCount.Add(-1)
	}
	return uintptr(n)
}

func factoryCreateInstance(this, outer, riid, ppv uintptr) uintptr {
	if ppv == 0 {
		return hrEPointer
	}
	*(*uintptr)(unsafe.Pointer(ppv)) = 0
	if outer != 0 {
		return hrClassENoAggregation
	}
	site := newInstance(kindSite, unsafe.Pointer(&theSiteVtbl))
	hr := comQueryInterface(site, riid, ppv)
	comRelease(site)
	return hr
}

func factoryLockServer(this, lock uintptr) uintptr {
	if lock != 0 {
		refCount.Add(1)
	} else {
		refCount.Add(-1)
	}
	return hrSOK
}

// siteSetSite is the activation hand-off: the diagnostics subsystem sites
// us with its provider object. We query it for the two interfaces the
// watcher needs and subscribe for tree change notifications. A failed
// query aborts initialization; no callbacks will ever arrive.
func siteSetSite(this, unkSite uintptr) uintptr {
	defer recoverCallback("SetSite")

	inst := instanceFor(this)
	if inst == nil {
		return hrEFail
	}
	if inst.site != 0 {
		unknownRelease(inst.site)
		inst.site = 0
	}
	if unkSite == 0 {
		if h := currentHandler(); h != nil {
			h.SiteCleared()
		}
		return hrSOK
	}
	inst.site = unkSite
	unknownAddRef(unkSite)

	diagPtr, hr := unknownQueryInterface(unkSite, iidIXamlDiagnostics)
	if hrFailed(hr) {
		logger.Error("site does not expose IXamlDiagnostics", zap.Uint32("hresult", uint32(hr)))
		return hr
	}
	svcPtr, hr := unknownQueryInterface(unkSite, iidIVisualTreeService3)
	if hrFailed(hr) {
		logger.Error("site does not expose IVisualTreeService3", zap.Uint32("hresult", uint32(hr)))
		unknownRelease(diagPtr)
		return hr
	}

	diag := (*XamlDiagnostics)(unsafe.Pointer(diagPtr))
	svc := (*TreeService)(unsafe.Pointer(svcPtr))

	h := currentHandler()
	if h == nil {
		logger.Error("no site handler configured; diagnostics connection ignored")
		return hrEFail
	}
	h.SiteSet(diag, svc)

	// Subscribe on a separate goroutine: AdviseVisualTreeChange replays
	// the existing tree synchronously and must not block the siting call.
	cb := newInstance(kindCallback, unsafe.Pointer(&theCallbackVtbl))
	go func() {
		if err := svc.AdviseVisualTreeChange(unsafe.Pointer(cb)); err != nil {
			logger.Error("AdviseVisualTreeChange failed", zap.Error(err))
			comRelease(cb)
			return
		}
		logger.Info("visual tree change subscription active")
	}()
	return hrSOK
}

func siteGetSite(this, riid, ppv uintptr) uintptr {
	if ppv == 0 {
		return hrEPointer
	}
	*(*uintptr)(unsafe.Pointer(ppv)) = 0
	inst := instanceFor(this)
	if inst == nil || inst.site == 0 {
		return hrEFail
	}
	out, hr := unknownQueryInterface(inst.site, (*ole.GUID)(unsafe.Pointer(riid)))
	if hrFailed(hr) {
		return hr
	}
	*(*uintptr)(unsafe.Pointer(ppv)) = out
	return hrSOK
}

// callbackOnVisualTreeChange receives every element add/remove in the host
// process. It runs on a diagnostics-owned thread and must never panic or
// block: a crash here takes down the desktop shell.
func callbackOnVisualTreeChange(this, relation, element, mutation uintptr) uintptr {
	defer recoverCallback("OnVisualTreeChange")

	if relation == 0 || element == 0 {
		return hrSOK
	}
	rel := (*ParentChildRelation)(unsafe.Pointer(relation))
	el := (*VisualElement)(unsafe.Pointer(element))

	if h := currentHandler(); h != nil {
		h.TreeChanged(MutationType(int32(mutation)), rel.Parent, el.Handle,
			bstrToString(el.Name), bstrToString(el.Type), el.NumChildren)
	}
	return hrSOK
}

func callbackOnElementStateChanged(this, element, state, context uintptr) uintptr {
	return hrSOK
}

func recoverCallback(name string) {
	if r := recover(); r != nil {
		logger.Error("panic in COM callback recovered", zap.String("callback", name), zap.Any("panic", r))
	}
}

// Raw IUnknown calls for pointers owned by the host process.

func unknownVtbl(unk uintptr) *ole.IUnknownVtbl {
	u := (*ole.IUnknown)(unsafe.Pointer(unk))
	return (*ole.IUnknownVtbl)(unsafe.Pointer(u.RawVTable))
}

func unknownQueryInterface(unk uintptr, iid *ole.GUID) (uintptr, uintptr) {
	var out uintptr
	hr, _, _ := syscall.SyscallN(unknownVtbl(unk).QueryInterface,
		unk,
		uintptr(unsafe.Pointer(iid)),
		uintptr(unsafe.Pointer(&out)),
	)
	return out, hr
}

func unknownAddRef(unk uintptr) {
	syscall.SyscallN(unknownVtbl(unk).AddRef, unk)
}

func unknownRelease(unk uintptr) {
	syscall.SyscallN(unknownVtbl(unk).Release, unk)
}
