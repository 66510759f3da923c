//go:build windows

package shm

import (
	"bytes"
	"fmt"
	"os"
	"testing"
)

func uniqueName(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("WinTheme_Test_%d_%s", os.Getpid(), t.Name())
}

func TestSegment_CreateOpenRoundTrip(t *testing.T) {
	name := uniqueName(t)
	writer, err := CreateSegment(name, 64)
	if err != nil {
		t.Fatal(err)
	}
	defer writer.Close()
	copy(writer.Bytes(), []byte("handshake"))

	reader, err := OpenSegmentRead(name, 64)
	if err != nil {
		t.Fatalf("open existing segment: %v", err)
	}
	defer reader.Close()
	if !bytes.Equal(reader.Bytes()[:9], []byte("handshake")) {
		t.Errorf("reader view = %q", reader.Bytes()[:9])
	}
}

func TestSegment_OpenMissingFails(t *testing.T) {
	if _, err := OpenSegment(uniqueName(t), 64); err == nil {
		t.Error("opening a nonexistent segment must fail")
	}
}

func TestSegment_Exists(t *testing.T) {
	name := uniqueName(t)
	if Exists(name) {
		t.Fatalf("segment %s should not exist yet", name)
	}
	seg, err := CreateSegment(name, ModeSegmentSize)
	if err != nil {
		t.Fatal(err)
	}
	if !Exists(name) {
		t.Error("segment should exist while a handle is held")
	}
	seg.StoreInt32(2)
	if got := seg.LoadInt32(); got != 2 {
		t.Errorf("mode word = %d, want 2", got)
	}
	seg.Close()
	if Exists(name) {
		t.Error("segment should vanish after the last handle closes")
	}
}
