package mdt

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateInput(t *testing.T) {
	if err := ValidateInput([]byte("# perfectly fine markdown\n")); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
	if err := ValidateInput(nil); err != nil {
		t.Fatalf("empty input rejected: %v", err)
	}
	if err := ValidateInput([]byte("bad \xff\xfe bytes")); !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("want ErrInvalidUTF8, got %v", err)
	}
	if err := ValidateInput([]byte("has\x00nul" + strings.Repeat("a", 100))); !errors.Is(err, ErrBinaryInput) {
		t.Fatalf("want ErrBinaryInput for NUL, got %v", err)
	}
	binary := strings.Repeat("\x01\x02", 64)
	if err := ValidateInput([]byte(binary)); !errors.Is(err, ErrBinaryInput) {
		t.Fatalf("want ErrBinaryInput, got %v", err)
	}
	// Tabs and newlines are not binary markers.
	if err := ValidateInput([]byte(strings.Repeat("a\tb\n", 50))); err != nil {
		t.Fatalf("text with tabs rejected: %v", err)
	}
}

func TestValidateWidth(t *testing.T) {
	for _, ok := range []int{MinWidth, 80, MaxWidth} {
		if err := ValidateWidth(ok); err != nil {
			t.Fatalf("width %d rejected: %v", ok, err)
		}
	}
	for _, bad := range []int{0, -1, MinWidth - 1, MaxWidth + 1} {
		if err := ValidateWidth(bad); !errors.Is(err, ErrInvalidWidth) {
			t.Fatalf("width %d: want ErrInvalidWidth, got %v", bad, err)
		}
	}
}
