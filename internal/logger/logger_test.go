package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"ERR":     slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelWarn, &buf)

	Debugf("hidden %d", 1)
	Infof("also hidden")
	Warnf("visible warning")
	Errorf("visible error")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("below-level message logged: %q", out)
	}
	if !strings.Contains(out, "visible warning") || !strings.Contains(out, "visible error") {
		t.Fatalf("messages missing: %q", out)
	}

	SetLevel(slog.LevelDebug)
	Debugf("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Fatalf("level change ignored: %q", buf.String())
	}
}

func TestGetNeverNil(t *testing.T) {
	if Get() == nil {
		t.Fatal("Get returned nil")
	}
}
