package mdt

import (
	"errors"
	"fmt"
)

// LexErrorKind classifies lexer failures.
type LexErrorKind uint8

const (
	// LexUnterminatedFence reports a code fence that was never closed.
	LexUnterminatedFence LexErrorKind = iota
	// LexInvalidEscape reports a backslash escape of a non-escapable character.
	LexInvalidEscape
)

func (k LexErrorKind) String() string {
	switch k {
	case LexUnterminatedFence:
		return "unterminated code fence"
	case LexInvalidEscape:
		return "invalid escape sequence"
	default:
		return "unknown lex error"
	}
}

// LexError reports a lexical problem at a source position.
type LexError struct {
	Kind   LexErrorKind
	Line   int
	Column int
}

func (e *LexError) Error() string {
	return e.Kind.String()
}

// ParseErrorKind classifies parser failures.
type ParseErrorKind uint8

const (
	// ParseNestingTooDeep reports block or inline nesting beyond the configured bound.
	ParseNestingTooDeep ParseErrorKind = iota
	// ParseDanglingReference reports a link whose target could not be resolved.
	ParseDanglingReference
	// ParseUnmatchedDelimiter reports an emphasis, strikethrough or code span
	// run that never paired and degraded to literal text.
	ParseUnmatchedDelimiter
)

func (k ParseErrorKind) String() string {
	switch k {
	case ParseNestingTooDeep:
		return "nesting too deep"
	case ParseDanglingReference:
		return "dangling reference"
	case ParseUnmatchedDelimiter:
		return "unmatched delimiter run"
	default:
		return "unknown parse error"
	}
}

// ParseError reports a structural problem at a source position.
type ParseError struct {
	Kind   ParseErrorKind
	Line   int
	Column int
}

func (e *ParseError) Error() string {
	return e.Kind.String()
}

// RenderErrorKind classifies renderer failures.
type RenderErrorKind uint8

const (
	// RenderMissingThemeRole reports a theme with an unset style role.
	RenderMissingThemeRole RenderErrorKind = iota
	// RenderUnsupportedHighlightLanguage reports a fence language tag with no
	// highlighting grammar. It is always surfaced as a diagnostic, never as a
	// hard failure.
	RenderUnsupportedHighlightLanguage
)

func (k RenderErrorKind) String() string {
	switch k {
	case RenderMissingThemeRole:
		return "missing theme role"
	case RenderUnsupportedHighlightLanguage:
		return "unsupported highlight language"
	default:
		return "unknown render error"
	}
}

// RenderError reports a rendering problem.
type RenderError struct {
	Kind     RenderErrorKind
	Role     Role
	Language string
}

func (e *RenderError) Error() string {
	switch e.Kind {
	case RenderMissingThemeRole:
		return fmt.Sprintf("%s: %s", e.Kind, e.Role)
	case RenderUnsupportedHighlightLanguage:
		return fmt.Sprintf("%s: %q", e.Kind, e.Language)
	default:
		return e.Kind.String()
	}
}

// Position extracts the source position from a lex or parse error, when the
// error carries one.
func Position(err error) (line, column int, ok bool) {
	var lexErr *LexError
	if errors.As(err, &lexErr) {
		return lexErr.Line, lexErr.Column, true
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Line, parseErr.Column, true
	}
	return 0, 0, false
}

// Diagnostic is a non-fatal problem observed on a degrade path. The pipeline
// keeps going and returns diagnostics alongside the partial result so callers
// can show "line N, column M: description" without losing output.
type Diagnostic struct {
	Err    error
	Line   int
	Column int
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("line %d, column %d: %v", d.Line, d.Column, d.Err)
	}
	return d.Err.Error()
}
