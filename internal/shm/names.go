// Package shm defines the shared-memory contract between the wintheme
// controller and the injected shelltap module: the segment naming scheme
// and the fixed binary layout of the configuration record. The controller
// and the DLL are built separately; they interoperate as long as both
// agree on this wire layout.
package shm

// Segment names. All segments live in the session-local kernel namespace;
// <TargetId> namespaces the per-target segments so one DLL binary can serve
// several shell processes at once.
const segmentPrefix = "WinTheme_ShellTap"

// InitSegmentName is the fixed-name segment holding the TargetId string the
// injected instance should operate as. Written by the controller before
// injection, read once by the DLL at load.
const InitSegmentName = segmentPrefix + "_Init"

// InitSegmentSize is the byte size of the init segment: a null-terminated
// UTF-16 TargetId of at most 63 code units.
const InitSegmentSize = 64 * 2

// ModeSegmentSize is the byte size of the mode segment: one int32.
const ModeSegmentSize = 4

// ConfigSegmentName returns the name of the per-target configuration
// segment.
func ConfigSegmentName(targetID string) string {
	return segmentPrefix + "_" + targetID + "_Config"
}

// ModeSegmentName returns the name of the per-target mode IPC segment.
func ModeSegmentName(targetID string) string {
	return segmentPrefix + "_" + targetID + "_Mode"
}
