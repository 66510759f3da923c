package tap

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiscoveryLog_Format(t *testing.T) {
	var buf bytes.Buffer
	d := NewDiscoveryLog(&buf, "StartMenu")

	d.Log(Element{Handle: 42, Name: "BackgroundFill", Type: "Windows.UI.Xaml.Shapes.Rectangle", Parent: 7, Children: 0})
	d.Log(Element{Handle: 43})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if !strings.Contains(lines[0], "target=StartMenu") {
		t.Errorf("header missing target id: %q", lines[0])
	}
	want := "[42] BackgroundFill | Windows.UI.Xaml.Shapes.Rectangle (parent=7, children=0)"
	if lines[3] != want {
		t.Errorf("line = %q, want %q", lines[3], want)
	}
	if lines[4] != "[43] (unnamed) | (unknown) (parent=0, children=0)" {
		t.Errorf("placeholder line = %q", lines[4])
	}
}

func TestOpenDiscoveryLog_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "discovery.log")
	d, err := OpenDiscoveryLog(path, "Taskbar")
	if err != nil {
		t.Fatal(err)
	}
	d.Log(Element{Handle: 1, Name: "A", Type: "B"})
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	// Idempotent close.
	if err := d.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "[1] A | B") {
		t.Errorf("file missing logged element:\n%s", raw)
	}
}
