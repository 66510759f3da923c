// Package config defines the built-in target presets and the optional
// user overrides file. A target ties a shell host process to the element
// matchers worth theming inside it.
package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/wintheme/internal/model"
)

// Target is one themable shell surface: the process hosting it and the
// element descriptors to match inside its visual tree.
type Target struct {
	ID       string          `yaml:"id" json:"id"`
	Process  string          `yaml:"process" json:"process"`
	Elements []model.Matcher `yaml:"elements,omitempty" json:"elements,omitempty"`
}

// Discovery reports whether this target carries no element descriptors,
// which puts the injected module into observe-and-log mode.
func (t Target) Discovery() bool { return len(t.Elements) == 0 }

// Built-in presets. Element names come from walking the respective hosts'
// trees in discovery mode; StartMenu and ActionCenter ship without
// descriptors so a fresh OS build can be mapped before committing to names.
var presets = map[string]Target{
	"Taskbar": {
		ID:      "Taskbar",
		Process: "explorer.exe",
		Elements: []model.Matcher{
			{Name: "BackgroundFill", Type: "Rectangle"},
			{Name: "BackgroundStroke", Type: "Rectangle"},
		},
	},
	"StartMenu": {
		ID:      "StartMenu",
		Process: "StartMenuExperienceHost.exe",
	},
	"ActionCenter": {
		ID:      "ActionCenter",
		Process: "ShellExperienceHost.exe",
	},
}

// Targets returns all known targets, presets merged with any overrides,
// sorted by ID.
func Targets(overridesPath string) ([]Target, error) {
	merged := make(map[string]Target, len(presets))
	for id, t := range presets {
		merged[id] = t
	}
	if overridesPath != "" {
		overrides, err := loadOverrides(overridesPath)
		if err != nil {
			return nil, err
		}
		for _, t := range overrides {
			merged[t.ID] = t
		}
	}
	out := make([]Target, 0, len(merged))
	for _, t := range merged {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Lookup resolves a target by ID, checking overrides first.
func Lookup(id, overridesPath string) (Target, error) {
	targets, err := Targets(overridesPath)
	if err != nil {
		return Target{}, err
	}
	for _, t := range targets {
		if t.ID == id {
			return t, nil
		}
	}
	return Target{}, fmt.Errorf("unknown target %q (see `wintheme targets`)", id)
}

type overridesFile struct {
	Targets []Target `yaml:"targets"`
}

func loadOverrides(path string) ([]Target, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read overrides: %w", err)
	}
	var f overridesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse overrides %s: %w", path, err)
	}
	for i, t := range f.Targets {
		if t.ID == "" {
			return nil, fmt.Errorf("overrides %s: target %d has no id", path, i)
		}
		if t.Process == "" {
			return nil, fmt.Errorf("overrides %s: target %q has no process", path, t.ID)
		}
		if len(t.Elements) > model.MaxMatchers {
			return nil, fmt.Errorf("overrides %s: target %q has %d elements (max %d)",
				path, t.ID, len(t.Elements), model.MaxMatchers)
		}
	}
	return f.Targets, nil
}
