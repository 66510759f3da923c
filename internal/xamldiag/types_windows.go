//go:build windows

// Package xamldiag binds the XAML diagnostics subsystem: the
// InitializeXamlDiagnosticsEx activation entry point, client wrappers for
// IXamlDiagnostics / IVisualTreeService3, and the COM callback objects the
// diagnostics subsystem instantiates inside the host process.
package xamldiag

import (
	"github.com/go-ole/go-ole"
)

// InstanceHandle is an opaque, process-local identifier for one live XAML
// object. Valid only until the object is destroyed.
type InstanceHandle = uint64

// MutationType distinguishes visual tree change notifications.
type MutationType int32

const (
	MutationAdd    MutationType = 0
	MutationRemove MutationType = 1
)

// BSTR fields in the structs below are owned by the diagnostics subsystem
// when passed into callbacks; copy, never free.
type bstr *uint16

// SourceInfo mirrors the xamlom.h struct of the same name.
type SourceInfo struct {
	FileName     bstr
	LineNumber   uint32
	ColumnNumber uint32
	CharPosition uint32
	Hash         bstr
}

// VisualElement mirrors the xamlom.h struct: one node of the live tree as
// reported by OnVisualTreeChange.
type VisualElement struct {
	Handle      InstanceHandle
	SrcInfo     SourceInfo
	Type        bstr
	Name        bstr
	NumChildren uint32
}

// ParentChildRelation mirrors the xamlom.h struct.
type ParentChildRelation struct {
	Parent     InstanceHandle
	Child      InstanceHandle
	ChildIndex uint32
}

// PropertyChainValue mirrors the xamlom.h struct: one entry of an
// element's property chain.
type PropertyChainValue struct {
	Index              uint32
	Type               bstr
	DeclaringType      bstr
	ValueType          bstr
	ItemType           bstr
	Value              bstr
	Overridden         int32
	MetadataBits       int64
	PropertyName       bstr
	PropertyChainIndex uint32
}

// PropertyChainSource mirrors the xamlom.h struct.
type PropertyChainSource struct {
	Handle     InstanceHandle
	Source     int32
	TargetType bstr
	Name       bstr
	SrcInfo    SourceInfo
}

// Interface and class identifiers.
var (
	// CLSIDShellTapSite identifies this module's TAP site object. The
	// diagnostics subsystem CoCreates it via DllGetClassObject after the
	// activation call names it.
	CLSIDShellTapSite = ole.NewGUID("{A1B2C3D4-E5F6-7890-ABCD-EF1234567890}")

	iidIUnknown                    = ole.IID_IUnknown
	iidIClassFactory               = ole.NewGUID("{00000001-0000-0000-C000-000000000046}")
	iidIObjectWithSite             = ole.NewGUID("{FC4801A3-2BA9-11CF-A229-00AA003D7352}")
	iidIXamlDiagnostics            = ole.NewGUID("{18C9E2B6-3F43-4116-9F2B-FF935D7770D2}")
	iidIVisualTreeService3         = ole.NewGUID("{0E79C6E0-85A0-4BE8-B41A-655CF1FD19BD}")
	iidIVisualTreeServiceCallback  = ole.NewGUID("{AA7A8931-80E4-4FEC-8F3B-553F87B4966E}")
	iidIVisualTreeServiceCallback2 = ole.NewGUID("{BAD9EB88-AE77-4397-B948-5FA2DB0A19EA}")
)

// HRESULTs used by the COM plumbing.
const (
	hrSOK                     = 0
	hrSFalse                  = 1
	hrEFail                   = 0x80004005
	hrENoInterface            = 0x80004002
	hrEPointer                = 0x80004003
	hrEInvalidArg             = 0x80070057
	hrClassENoAggregation     = 0x80040110
	hrClassEClassNotAvailable = 0x80040111
)

func hrFailed(hr uintptr) bool { return int32(hr) < 0 }

// bstrToString copies a caller-owned BSTR into a Go string.
func bstrToString(b bstr) string {
	if b == nil {
		return ""
	}
	return ole.BstrToString(b)
}
