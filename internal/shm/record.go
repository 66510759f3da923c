package shm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf16"

	"github.com/mj1618/wintheme/internal/model"
)

// ConfigVersion is the expected version tag of the configuration record. A
// record with any other version is not interpreted; the reader falls back
// to discovery mode instead of guessing at a stale layout.
const ConfigVersion = 1

// Fixed field widths, in UTF-16 code units including the terminator.
const (
	nameUnits = 64
	typeUnits = 128
	pathUnits = 260
)

// Byte offsets of the packed little-endian record.
const (
	offVersion = 0
	offMode    = 4
	offCount   = 8
	offNames   = 12
	offTypes   = offNames + model.MaxMatchers*nameUnits*2
	offLogPath = offTypes + model.MaxMatchers*typeUnits*2
	offFlags   = offLogPath + pathUnits*2

	// RecordSize is the total size of the encoded configuration record.
	RecordSize = offFlags + 4
)

var (
	// ErrVersionMismatch is returned when the record's version tag does not
	// match ConfigVersion.
	ErrVersionMismatch = errors.New("config record version mismatch")
	// ErrShortRecord is returned when the buffer is too small to hold a
	// complete record.
	ErrShortRecord = errors.New("config record truncated")
)

// ConfigRecord is the controller-to-module configuration. Zero targets
// means discovery mode: observe and log every element, mutate nothing.
type ConfigRecord struct {
	Mode    model.Mode
	Targets []model.Matcher
	LogPath string
}

// Discovery reports whether the record requests discovery mode.
func (r *ConfigRecord) Discovery() bool {
	return len(r.Targets) == 0
}

// Encode serializes the record into its fixed binary layout.
func (r *ConfigRecord) Encode() ([]byte, error) {
	if len(r.Targets) > model.MaxMatchers {
		return nil, fmt.Errorf("too many target elements: %d (max %d)", len(r.Targets), model.MaxMatchers)
	}
	if !r.Mode.Valid() {
		return nil, fmt.Errorf("invalid mode value %d", int32(r.Mode))
	}

	buf := make([]byte, RecordSize)
	le := binary.LittleEndian
	le.PutUint32(buf[offVersion:], uint32(ConfigVersion))
	le.PutUint32(buf[offMode:], uint32(r.Mode))
	le.PutUint32(buf[offCount:], uint32(len(r.Targets)))

	for i, m := range r.Targets {
		if err := putUTF16(buf[offNames+i*nameUnits*2:], m.Name, nameUnits); err != nil {
			return nil, fmt.Errorf("target %d name: %w", i, err)
		}
		if err := putUTF16(buf[offTypes+i*typeUnits*2:], m.Type, typeUnits); err != nil {
			return nil, fmt.Errorf("target %d type: %w", i, err)
		}
	}
	if err := putUTF16(buf[offLogPath:], r.LogPath, pathUnits); err != nil {
		return nil, fmt.Errorf("log path: %w", err)
	}
	return buf, nil
}

// DecodeConfig parses an encoded configuration record. Any version other
// than ConfigVersion returns ErrVersionMismatch; callers are expected to
// fall back to discovery mode.
func DecodeConfig(buf []byte) (*ConfigRecord, error) {
	if len(buf) < RecordSize {
		return nil, ErrShortRecord
	}
	le := binary.LittleEndian
	if v := int32(le.Uint32(buf[offVersion:])); v != ConfigVersion {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrVersionMismatch, ConfigVersion, v)
	}

	r := &ConfigRecord{Mode: model.Mode(le.Uint32(buf[offMode:]))}
	if !r.Mode.Valid() {
		r.Mode = model.ModeDefault
	}

	count := int(int32(le.Uint32(buf[offCount:])))
	if count < 0 {
		count = 0
	}
	if count > model.MaxMatchers {
		count = model.MaxMatchers
	}
	for i := 0; i < count; i++ {
		r.Targets = append(r.Targets, model.Matcher{
			Name: getUTF16(buf[offNames+i*nameUnits*2:], nameUnits),
			Type: getUTF16(buf[offTypes+i*typeUnits*2:], typeUnits),
		})
	}
	r.LogPath = getUTF16(buf[offLogPath:], pathUnits)
	return r, nil
}

// putUTF16 writes s as little-endian UTF-16 with a null terminator into a
// field of max code units.
func putUTF16(dst []byte, s string, max int) error {
	u := utf16.Encode([]rune(s))
	if len(u) > max-1 {
		return fmt.Errorf("string too long: %d UTF-16 units (max %d)", len(u), max-1)
	}
	for i, cu := range u {
		binary.LittleEndian.PutUint16(dst[i*2:], cu)
	}
	// Zero the remainder so stale bytes never leak past the terminator.
	for i := len(u); i < max; i++ {
		binary.LittleEndian.PutUint16(dst[i*2:], 0)
	}
	return nil
}

// getUTF16 reads a null-terminated little-endian UTF-16 string from a field
// of max code units.
func getUTF16(src []byte, max int) string {
	var u []uint16
	for i := 0; i < max; i++ {
		cu := binary.LittleEndian.Uint16(src[i*2:])
		if cu == 0 {
			break
		}
		u = append(u, cu)
	}
	return string(utf16.Decode(u))
}

// EncodeInitSegment serializes a TargetId for the fixed-name init segment.
func EncodeInitSegment(targetID string) ([]byte, error) {
	buf := make([]byte, InitSegmentSize)
	if err := putUTF16(buf, targetID, InitSegmentSize/2); err != nil {
		return nil, fmt.Errorf("target id: %w", err)
	}
	return buf, nil
}

// DecodeInitSegment parses the TargetId from the init segment contents.
func DecodeInitSegment(buf []byte) string {
	if len(buf) < InitSegmentSize {
		return ""
	}
	return getUTF16(buf, InitSegmentSize/2)
}
