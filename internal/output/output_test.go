package output

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/mj1618/wintheme/internal/config"
	"github.com/mj1618/wintheme/internal/model"
)

func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w

	callErr := fn()
	w.Close()
	os.Stdout = old

	if callErr != nil {
		t.Fatal(callErr)
	}
	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func sampleResult() TargetsResult {
	return TargetsResult{
		Targets: []config.Target{
			{
				ID:      "Taskbar",
				Process: "explorer.exe",
				Elements: []model.Matcher{
					{Name: "BackgroundFill", Type: "Rectangle"},
				},
			},
		},
	}
}

func TestPrintJSON_Compact(t *testing.T) {
	out := captureStdout(t, func() error { return PrintJSON(sampleResult()) })

	if strings.Count(out, "\n") > 1 {
		t.Errorf("compact output should be single line, got:\n%s", out)
	}
	var decoded TargetsResult
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Targets[0].Elements[0].Name != "BackgroundFill" {
		t.Errorf("round-trip lost matcher: %+v", decoded)
	}
}

func TestPrintPrettyJSON_Indented(t *testing.T) {
	out := captureStdout(t, func() error { return PrintPrettyJSON(sampleResult()) })
	if !strings.Contains(out, "\n  ") {
		t.Errorf("pretty output should be indented, got:\n%s", out)
	}
}

func TestPrintYAML(t *testing.T) {
	out := captureStdout(t, func() error { return PrintYAML(sampleResult()) })
	for _, want := range []string{"targets:", "id: Taskbar", "process: explorer.exe", "name: BackgroundFill"} {
		if !strings.Contains(out, want) {
			t.Errorf("yaml output missing %q:\n%s", want, out)
		}
	}
}

func TestPrint_RespectsFormat(t *testing.T) {
	defer func() { OutputFormat = FormatYAML; PrettyOutput = false }()

	OutputFormat = FormatJSON
	out := captureStdout(t, func() error { return Print(sampleResult()) })
	if !strings.HasPrefix(out, "{") {
		t.Errorf("json format should emit JSON, got:\n%s", out)
	}

	OutputFormat = FormatYAML
	out = captureStdout(t, func() error { return Print(sampleResult()) })
	if strings.HasPrefix(out, "{") {
		t.Errorf("yaml format should not emit JSON, got:\n%s", out)
	}

	OutputFormat = Format("xml")
	if err := Print(sampleResult()); err == nil {
		t.Error("unknown format should error")
	}
}
