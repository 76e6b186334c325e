// Package config loads viewer settings and color overrides from a TOML
// file and validates them against the supported ranges.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"pkt.systems/mdt"
	"pkt.systems/mdt/internal/logger"
)

// Exit codes reported by the CLI for configuration and input failures.
const (
	ExitUsage     = 2
	ExitInvalid   = 22
	ExitConfigErr = 78
)

// Error wraps a configuration failure with the file it came from.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Settings holds the viewer options under the top-level TOML table.
type Settings struct {
	Theme              string   `toml:"theme"`
	Width              int      `toml:"width"`
	SyntaxHighlighting bool     `toml:"syntax_highlighting"`
	HiddenFiles        bool     `toml:"hidden_files"`
	IgnoredDirs        []string `toml:"ignored_dirs"`
	LogLevel           string   `toml:"log_level"`
	LogFile            string   `toml:"log_file"`
}

// ColorSet names every themable role as a #rrggbb string. All fields must
// be present for the table to take effect.
type ColorSet struct {
	Background string `toml:"background"`
	Text       string `toml:"text"`
	CodeBlock  string `toml:"code_block"`
	H1         string `toml:"h1"`
	H2         string `toml:"h2"`
	H3         string `toml:"h3"`
	H4         string `toml:"h4"`
	H5         string `toml:"h5"`
	H6         string `toml:"h6"`
	Link       string `toml:"link"`
	Passive    string `toml:"passive"`
}

// Colors carries the per-mode override tables.
type Colors struct {
	Dark  *ColorSet `toml:"dark"`
	Light *ColorSet `toml:"light"`
}

// Config is the full decoded file.
type Config struct {
	Settings
	Colors Colors `toml:"colors"`

	path string
}

// Default returns the built-in configuration used when no file exists.
func Default() *Config {
	return &Config{
		Settings: Settings{
			Theme:              "dark",
			Width:              80,
			SyntaxHighlighting: true,
			HiddenFiles:        false,
			IgnoredDirs:        []string{"node_modules", "target", "vendor", ".git"},
			LogLevel:           "info",
		},
	}
}

// DefaultPath returns the conventional config file location, or "" when
// the user config dir cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "mdt", "config.toml")
}

// Load reads and validates the config file at path. A missing file is not
// an error; defaults apply. An empty path means DefaultPath.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}
	cfg.path = path
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Debugf("no config file at %s, using defaults", path)
		return cfg, nil
	}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	for _, key := range meta.Undecoded() {
		logger.Warnf("%s: unrecognized key %q", path, key)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting and color table. The first failure is
// returned with the offending key named.
func (c *Config) Validate() error {
	if c.Theme != "dark" && c.Theme != "light" {
		return &Error{Path: c.path, Err: fmt.Errorf("theme must be %q or %q, got %q", "dark", "light", c.Theme)}
	}
	if err := mdt.ValidateWidth(c.Width); err != nil {
		return &Error{Path: c.path, Err: fmt.Errorf("width %d: %w", c.Width, err)}
	}
	if c.Colors.Dark != nil {
		if err := c.Colors.Dark.validate("colors.dark"); err != nil {
			return &Error{Path: c.path, Err: err}
		}
	}
	if c.Colors.Light != nil {
		if err := c.Colors.Light.validate("colors.light"); err != nil {
			return &Error{Path: c.path, Err: err}
		}
	}
	return nil
}

func (s *ColorSet) fields() []struct{ key, value string } {
	return []struct{ key, value string }{
		{"background", s.Background},
		{"text", s.Text},
		{"code_block", s.CodeBlock},
		{"h1", s.H1},
		{"h2", s.H2},
		{"h3", s.H3},
		{"h4", s.H4},
		{"h5", s.H5},
		{"h6", s.H6},
		{"link", s.Link},
		{"passive", s.Passive},
	}
}

func (s *ColorSet) validate(table string) error {
	for _, f := range s.fields() {
		if f.value == "" {
			return fmt.Errorf("[%s] missing color %q", table, f.key)
		}
		if _, err := mdt.ParseColor(f.value); err != nil {
			return fmt.Errorf("[%s] %s = %q: %w", table, f.key, f.value, err)
		}
	}
	return nil
}

// roleFor maps a ColorSet key back to its style role. Keys come from
// fields() so the mapping is total.
func roleFor(key string) mdt.Role {
	switch key {
	case "background":
		return mdt.RoleBackground
	case "text":
		return mdt.RoleText
	case "code_block":
		return mdt.RoleCodeBlock
	case "h1":
		return mdt.RoleH1
	case "h2":
		return mdt.RoleH2
	case "h3":
		return mdt.RoleH3
	case "h4":
		return mdt.RoleH4
	case "h5":
		return mdt.RoleH5
	case "h6":
		return mdt.RoleH6
	case "link":
		return mdt.RoleLink
	default:
		return mdt.RolePassive
	}
}

// ToTheme converts a validated color table into a theme. Callers must
// validate first; an unparsable color here is a programming error.
func (s *ColorSet) ToTheme(name string, dark bool) (*mdt.Theme, error) {
	colors := make(map[mdt.Role]mdt.Color, len(s.fields()))
	for _, f := range s.fields() {
		c, err := mdt.ParseColor(f.value)
		if err != nil {
			return nil, fmt.Errorf("color %s = %q: %w", f.key, f.value, err)
		}
		colors[roleFor(f.key)] = c
	}
	theme := mdt.NewTheme(name, dark, colors)
	if err := theme.Validate(); err != nil {
		return nil, err
	}
	return theme, nil
}

// SelectTheme resolves the effective theme: a matching override table
// from the config file if present, otherwise the built-in theme of the
// same name.
func (c *Config) SelectTheme(name string) (*mdt.Theme, error) {
	switch name {
	case "dark":
		if c.Colors.Dark != nil {
			return c.Colors.Dark.ToTheme("dark", true)
		}
	case "light":
		if c.Colors.Light != nil {
			return c.Colors.Light.ToTheme("light", false)
		}
	}
	theme, ok := mdt.ThemeByName(name)
	if !ok {
		return nil, &Error{Path: c.path, Err: fmt.Errorf("unknown theme %q", name)}
	}
	return theme, nil
}
