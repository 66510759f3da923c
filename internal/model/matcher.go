package model

import (
	"fmt"
	"strings"
)

// MaxMatchers is the maximum number of target descriptors a configuration
// record can carry. Part of the shared-memory contract.
const MaxMatchers = 8

// Wildcard matches any name or type.
const Wildcard = "*"

// Matcher describes one target element: a name pattern and a type pattern.
// The name matches exactly or via "*". The type matches as a substring —
// XAML type names are namespace-qualified (e.g. "Rectangle" matches
// "Windows.UI.Xaml.Shapes.Rectangle") — or via "*".
type Matcher struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"`
}

// Matches reports whether an element with the given name and fully-qualified
// type satisfies the matcher. Both fields must match. An empty type pattern
// is a substring of every type and so matches any type, same as "*".
func (m Matcher) Matches(name, typ string) bool {
	nameOK := m.Name == Wildcard || name == m.Name
	typeOK := m.Type == Wildcard || strings.Contains(typ, m.Type)
	return nameOK && typeOK
}

func (m Matcher) String() string {
	return m.Name + ":" + m.Type
}

// ParseMatcher parses the "Name:Type" form used on the command line, e.g.
// "BackgroundFill:Rectangle". Either side may be "*". A missing type means
// match any type.
func ParseMatcher(s string) (Matcher, error) {
	name, typ, found := strings.Cut(s, ":")
	if !found {
		typ = Wildcard
	}
	if name == "" {
		return Matcher{}, fmt.Errorf("invalid element matcher %q: empty name (use * to match any)", s)
	}
	if typ == "" {
		typ = Wildcard
	}
	return Matcher{Name: name, Type: typ}, nil
}

// MatchAny returns the first matcher in matchers satisfied by the element,
// or -1 when none match.
func MatchAny(matchers []Matcher, name, typ string) int {
	for i, m := range matchers {
		if m.Matches(name, typ) {
			return i
		}
	}
	return -1
}

// IsStroke classifies an element as a stroke/outline by its name. Stroke
// elements get the more aggressive transparency treatment: they disappear
// under acrylic instead of dimming.
func IsStroke(name string) bool {
	return strings.Contains(name, "Stroke")
}
