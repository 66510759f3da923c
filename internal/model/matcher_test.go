package model

import "testing"

func TestMatcher_Matches(t *testing.T) {
	tests := []struct {
		name    string
		matcher Matcher
		elName  string
		elType  string
		want    bool
	}{
		{"exact_name_substring_type", Matcher{"BackgroundFill", "Rectangle"}, "BackgroundFill", "Windows.UI.Xaml.Shapes.Rectangle", true},
		{"name_mismatch", Matcher{"BackgroundFill", "Rectangle"}, "BackgroundStroke", "Windows.UI.Xaml.Shapes.Rectangle", false},
		{"type_mismatch", Matcher{"BackgroundFill", "Grid"}, "BackgroundFill", "Windows.UI.Xaml.Shapes.Rectangle", false},
		{"wildcard_name", Matcher{"*", "Rectangle"}, "Anything", "Windows.UI.Xaml.Shapes.Rectangle", true},
		{"wildcard_type", Matcher{"BackgroundFill", "*"}, "BackgroundFill", "Some.Type", true},
		{"wildcard_both", Matcher{"*", "*"}, "", "", true},
		{"name_is_not_substring_match", Matcher{"Background", "Rectangle"}, "BackgroundFill", "Windows.UI.Xaml.Shapes.Rectangle", false},
		{"empty_type_pattern_matches_any_type", Matcher{"BackgroundFill", ""}, "BackgroundFill", "Rectangle", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.matcher.Matches(tt.elName, tt.elType); got != tt.want {
				t.Errorf("%v.Matches(%q, %q) = %v, want %v", tt.matcher, tt.elName, tt.elType, got, tt.want)
			}
		})
	}
}

func TestParseMatcher(t *testing.T) {
	tests := []struct {
		in      string
		want    Matcher
		wantErr bool
	}{
		{"BackgroundFill:Rectangle", Matcher{"BackgroundFill", "Rectangle"}, false},
		{"BackgroundFill", Matcher{"BackgroundFill", "*"}, false},
		{"BackgroundFill:", Matcher{"BackgroundFill", "*"}, false},
		{"*:TaskbarFrame", Matcher{"*", "TaskbarFrame"}, false},
		{":Rectangle", Matcher{}, true},
		{"", Matcher{}, true},
	}
	for _, tt := range tests {
		got, err := ParseMatcher(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMatcher(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseMatcher(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMatchAny(t *testing.T) {
	matchers := []Matcher{
		{"BackgroundFill", "Rectangle"},
		{"BackgroundStroke", "Rectangle"},
	}
	if i := MatchAny(matchers, "BackgroundStroke", "Windows.UI.Xaml.Shapes.Rectangle"); i != 1 {
		t.Errorf("expected index 1, got %d", i)
	}
	if i := MatchAny(matchers, "Other", "Windows.UI.Xaml.Shapes.Rectangle"); i != -1 {
		t.Errorf("expected -1 for no match, got %d", i)
	}
	if i := MatchAny(nil, "BackgroundFill", "Rectangle"); i != -1 {
		t.Errorf("expected -1 for empty matcher list, got %d", i)
	}
}

func TestIsStroke(t *testing.T) {
	if !IsStroke("BackgroundStroke") {
		t.Error("BackgroundStroke should classify as stroke")
	}
	if IsStroke("BackgroundFill") {
		t.Error("BackgroundFill should not classify as stroke")
	}
}
