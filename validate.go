package mdt

import (
	"errors"
	"unicode/utf8"
)

var (
	// ErrInvalidUTF8 reports invalid UTF-8 input.
	ErrInvalidUTF8 = errors.New("invalid utf-8 input")
	// ErrBinaryInput reports input that appears to be binary.
	ErrBinaryInput = errors.New("binary input detected")
	// ErrInvalidWidth reports a render width outside the supported range.
	ErrInvalidWidth = errors.New("width must be between 20 and 200")
)

const (
	// MinWidth is the narrowest supported render width.
	MinWidth = 20
	// MaxWidth is the widest supported render width.
	MaxWidth = 200
)

const (
	minBinarySample = 64
	maxControlPct   = 2
)

// ValidateInput returns an error if the input is not valid UTF-8 or appears
// to be binary.
func ValidateInput(src []byte) error {
	if !utf8.Valid(src) {
		return ErrInvalidUTF8
	}
	var total, control int
	for _, b := range src {
		total++
		if b == 0x00 {
			return ErrBinaryInput
		}
		if isControlByte(b) {
			control++
		}
	}
	if total >= minBinarySample && control*100 >= total*maxControlPct {
		return ErrBinaryInput
	}
	return nil
}

// ValidateWidth checks a render width against the supported range. The
// renderer itself assumes a validated width; callers validate up front.
func ValidateWidth(width int) error {
	if width < MinWidth || width > MaxWidth {
		return ErrInvalidWidth
	}
	return nil
}

func isControlByte(b byte) bool {
	if b < 0x09 {
		return true
	}
	if b > 0x0D && b < 0x20 {
		return true
	}
	if b == 0x7F {
		return true
	}
	return false
}
