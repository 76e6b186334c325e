package mdt

import (
	"regexp"
	"strings"
	"testing"
)

var ansiRE = regexp.MustCompile(`\x1b(\[[0-9;]*m|\]8;;[^\x1b]*\x1b\\)`)

func stripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

func TestLineANSIText(t *testing.T) {
	line := StyledLine{Fragments: []Fragment{
		{Text: "hello ", Style: Style{Foreground: Color{R: 10, G: 20, B: 30}}},
		{Text: "world", Style: Style{Foreground: Color{R: 1, G: 2, B: 3}, Bold: true}},
	}}
	out := LineANSI(line, ANSIOptions{})
	if stripANSI(out) != "hello world" {
		t.Fatalf("text content: %q", stripANSI(out))
	}
	if !strings.Contains(out, "\x1b[0;38;2;10;20;30m") {
		t.Fatalf("foreground sequence missing: %q", out)
	}
	if !strings.Contains(out, "\x1b[0;1;38;2;1;2;3m") {
		t.Fatalf("bold sequence missing: %q", out)
	}
	if !strings.HasSuffix(out, ansiReset) {
		t.Fatalf("missing trailing reset: %q", out)
	}
}

func TestLineANSIBackground(t *testing.T) {
	line := StyledLine{Fragments: []Fragment{
		{Text: "code", Style: Style{
			Foreground:    Color{R: 1, G: 1, B: 1},
			Background:    Color{R: 9, G: 9, B: 9},
			HasBackground: true,
		}},
	}}
	out := LineANSI(line, ANSIOptions{})
	if !strings.Contains(out, ";48;2;9;9;9m") {
		t.Fatalf("background sequence missing: %q", out)
	}
}

func TestLineANSIOSC8(t *testing.T) {
	line := StyledLine{Fragments: []Fragment{
		{Text: "docs", Style: Style{Foreground: Color{}}, LinkURL: "https://example.com"},
	}}

	off := LineANSI(line, ANSIOptions{OSC8: false})
	if strings.Contains(off, "\x1b]8;;") {
		t.Fatalf("osc8 emitted when disabled: %q", off)
	}

	on := LineANSI(line, ANSIOptions{OSC8: true})
	if !strings.Contains(on, "\x1b]8;;https://example.com\x1b\\") {
		t.Fatalf("osc8 open missing: %q", on)
	}
	if !strings.HasSuffix(on, osc8End) {
		t.Fatalf("osc8 close missing: %q", on)
	}
	if stripANSI(on) != "docs" {
		t.Fatalf("text content: %q", stripANSI(on))
	}
}

func TestRenderANSINewlines(t *testing.T) {
	lines := []StyledLine{
		{Fragments: []Fragment{{Text: "a"}}},
		{},
		{Fragments: []Fragment{{Text: "b"}}},
	}
	out := RenderANSI(lines, ANSIOptions{})
	if strings.Count(out, "\n") != 3 {
		t.Fatalf("newline count: %q", out)
	}
	if stripANSI(out) != "a\n\nb\n" {
		t.Fatalf("content: %q", stripANSI(out))
	}
}

func TestDetectOSC8Support(t *testing.T) {
	clear := func() {
		for _, key := range []string{"OSC8", "DOMTERM", "WT_SESSION", "TERM_PROGRAM", "TERM", "VTE_VERSION"} {
			t.Setenv(key, "")
		}
	}

	clear()
	if DetectOSC8Support() {
		t.Fatal("bare environment should not claim support")
	}

	clear()
	t.Setenv("TERM_PROGRAM", "WezTerm")
	if !DetectOSC8Support() {
		t.Fatal("WezTerm should support osc8")
	}

	clear()
	t.Setenv("VTE_VERSION", "6003")
	if !DetectOSC8Support() {
		t.Fatal("modern VTE should support osc8")
	}

	clear()
	t.Setenv("WT_SESSION", "x")
	t.Setenv("OSC8", "0")
	if DetectOSC8Support() {
		t.Fatal("OSC8=0 should force off")
	}
}
