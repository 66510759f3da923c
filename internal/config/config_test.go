package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTargets_BuiltInPresets(t *testing.T) {
	targets, err := Targets("")
	if err != nil {
		t.Fatal(err)
	}
	byID := make(map[string]Target)
	for _, target := range targets {
		byID[target.ID] = target
	}

	taskbar, ok := byID["Taskbar"]
	if !ok {
		t.Fatal("Taskbar preset missing")
	}
	if taskbar.Process != "explorer.exe" {
		t.Errorf("Taskbar process = %q", taskbar.Process)
	}
	if len(taskbar.Elements) != 2 || taskbar.Discovery() {
		t.Errorf("Taskbar elements = %v", taskbar.Elements)
	}
	if taskbar.Elements[0].Name != "BackgroundFill" || taskbar.Elements[0].Type != "Rectangle" {
		t.Errorf("Taskbar first matcher = %v", taskbar.Elements[0])
	}

	for _, id := range []string{"StartMenu", "ActionCenter"} {
		target, ok := byID[id]
		if !ok {
			t.Fatalf("%s preset missing", id)
		}
		if !target.Discovery() {
			t.Errorf("%s should default to discovery, has elements %v", id, target.Elements)
		}
	}
}

func TestTargets_Sorted(t *testing.T) {
	targets, err := Targets("")
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(targets); i++ {
		if targets[i-1].ID >= targets[i].ID {
			t.Fatalf("targets not sorted by id: %s before %s", targets[i-1].ID, targets[i].ID)
		}
	}
}

func writeOverrides(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "targets.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTargets_OverridesReplaceAndExtend(t *testing.T) {
	path := writeOverrides(t, `
targets:
  - id: Taskbar
    process: explorer.exe
    elements:
      - name: BackgroundFill
        type: Rectangle
  - id: Widgets
    process: Widgets.exe
`)
	taskbar, err := Lookup("Taskbar", path)
	if err != nil {
		t.Fatal(err)
	}
	if len(taskbar.Elements) != 1 {
		t.Errorf("override should replace the preset matcher list, got %v", taskbar.Elements)
	}

	widgets, err := Lookup("Widgets", path)
	if err != nil {
		t.Fatal(err)
	}
	if widgets.Process != "Widgets.exe" || !widgets.Discovery() {
		t.Errorf("new target = %+v", widgets)
	}
}

func TestLookup_UnknownTarget(t *testing.T) {
	_, err := Lookup("Dock", "")
	if err == nil || !strings.Contains(err.Error(), "Dock") {
		t.Errorf("err = %v, want unknown-target error naming it", err)
	}
}

func TestTargets_InvalidOverrides(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing id", "targets:\n  - process: a.exe\n", "no id"},
		{"missing process", "targets:\n  - id: X\n", "no process"},
		{"too many elements", tooManyElements(), "max"},
		{"malformed yaml", "targets: [", "parse"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Targets(writeOverrides(t, tc.body))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("err = %v, want substring %q", err, tc.want)
			}
		})
	}
}

func tooManyElements() string {
	var b strings.Builder
	b.WriteString("targets:\n  - id: X\n    process: a.exe\n    elements:\n")
	for i := 0; i < 9; i++ {
		b.WriteString("      - name: n\n        type: t\n")
	}
	return b.String()
}
