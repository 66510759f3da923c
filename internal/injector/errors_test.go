package injector

import (
	"errors"
	"strings"
	"testing"
)

func TestInjectionError_Unwrap(t *testing.T) {
	inner := errors.New("access is denied")
	err := &InjectionError{Step: "VirtualAllocEx", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("expected errors.Is to reach the wrapped OS error")
	}
	if !strings.Contains(err.Error(), "VirtualAllocEx") {
		t.Errorf("error text should name the failed step: %s", err.Error())
	}

	var ie *InjectionError
	if !errors.As(err, &ie) || ie.Step != "VirtualAllocEx" {
		t.Error("errors.As should recover the InjectionError")
	}
}
