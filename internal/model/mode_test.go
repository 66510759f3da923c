package model

import "testing"

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"default", ModeDefault, false},
		{"transparent", ModeTransparent, false},
		{"acrylic", ModeAcrylic, false},
		{"", ModeDefault, true},
		{"Transparent", ModeDefault, true},
		{"opaque", ModeDefault, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMode_Valid(t *testing.T) {
	for _, m := range []Mode{ModeDefault, ModeTransparent, ModeAcrylic} {
		if !m.Valid() {
			t.Errorf("expected %v to be valid", m)
		}
	}
	for _, m := range []Mode{Mode(-1), Mode(3), Mode(99)} {
		if m.Valid() {
			t.Errorf("expected %v to be invalid", m)
		}
	}
}

func TestMode_String(t *testing.T) {
	if ModeAcrylic.String() != "acrylic" {
		t.Errorf("unexpected string: %s", ModeAcrylic)
	}
	if Mode(7).String() != "mode(7)" {
		t.Errorf("unexpected string for unknown mode: %s", Mode(7))
	}
}
