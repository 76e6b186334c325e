package mdt

import (
	"os"
	"strconv"
	"strings"
)

const (
	ansiReset = "\x1b[0m"
	osc8Start = "\x1b]8;;"
	osc8End   = "\x1b]8;;\x1b\\"
)

// ANSIOptions configures terminal escape emission.
type ANSIOptions struct {
	// OSC8 wraps link fragments in OSC 8 hyperlink sequences.
	OSC8 bool
}

// ansiPrefix builds the SGR sequence for a style. The zero style still
// resets, so fragment boundaries never leak attributes.
func (s Style) ansiPrefix() string {
	var b strings.Builder
	b.WriteString("\x1b[0")
	if s.Bold {
		b.WriteString(";1")
	}
	if s.Italic {
		b.WriteString(";3")
	}
	if s.Underline {
		b.WriteString(";4")
	}
	if s.Strike {
		b.WriteString(";9")
	}
	b.WriteString(";38;2;")
	b.WriteString(strconv.Itoa(int(s.Foreground.R)))
	b.WriteByte(';')
	b.WriteString(strconv.Itoa(int(s.Foreground.G)))
	b.WriteByte(';')
	b.WriteString(strconv.Itoa(int(s.Foreground.B)))
	if s.HasBackground {
		b.WriteString(";48;2;")
		b.WriteString(strconv.Itoa(int(s.Background.R)))
		b.WriteByte(';')
		b.WriteString(strconv.Itoa(int(s.Background.G)))
		b.WriteByte(';')
		b.WriteString(strconv.Itoa(int(s.Background.B)))
	}
	b.WriteByte('m')
	return b.String()
}

// LineANSI renders one styled line as an ANSI string without a trailing
// newline.
func LineANSI(line StyledLine, opts ANSIOptions) string {
	var b strings.Builder
	for _, frag := range line.Fragments {
		link := opts.OSC8 && frag.LinkURL != ""
		if link {
			b.WriteString(osc8Start)
			b.WriteString(frag.LinkURL)
			b.WriteString("\x1b\\")
		}
		b.WriteString(frag.Style.ansiPrefix())
		b.WriteString(frag.Text)
		b.WriteString(ansiReset)
		if link {
			b.WriteString(osc8End)
		}
	}
	return b.String()
}

// RenderANSI joins styled lines into terminal output.
func RenderANSI(lines []StyledLine, opts ANSIOptions) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(LineANSI(line, opts))
		b.WriteByte('\n')
	}
	return b.String()
}

// DetectOSC8Support returns true if the current environment likely supports
// OSC 8 hyperlinks.
func DetectOSC8Support() bool {
	if os.Getenv("OSC8") == "0" {
		return false
	}
	if os.Getenv("DOMTERM") != "" {
		return true
	}
	if os.Getenv("WT_SESSION") != "" {
		return true
	}
	termProgram := os.Getenv("TERM_PROGRAM")
	if termProgram == "iTerm.app" || termProgram == "WezTerm" || termProgram == "vscode" {
		return true
	}
	if strings.Contains(strings.ToLower(os.Getenv("TERM")), "kitty") {
		return true
	}
	if vte := os.Getenv("VTE_VERSION"); vte != "" {
		if n, err := strconv.Atoi(vte); err == nil && n >= 5000 {
			return true
		}
	}
	return false
}
