package mdt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"pkt.systems/mdt/internal/palette"
)

// Color is a 24-bit RGB terminal color.
type Color struct {
	R, G, B uint8
}

// Hex returns the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor parses a "#rrggbb" string.
func ParseColor(s string) (Color, error) {
	parsed, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := parsed.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// Role is a semantic style slot. The set is fixed so a missing role is
// detectable up front rather than per-node during rendering.
type Role uint8

const (
	// RoleBackground is the page background.
	RoleBackground Role = iota
	// RoleText is ordinary paragraph text.
	RoleText
	// RoleCodeBlock is the code block background.
	RoleCodeBlock
	// RoleH1 through RoleH6 color headings by level.
	RoleH1
	RoleH2
	RoleH3
	RoleH4
	RoleH5
	RoleH6
	// RoleLink colors link text and targets.
	RoleLink
	// RolePassive is de-emphasized text: list markers, quote bars, rules.
	RolePassive

	roleCount
)

var roleNames = [...]string{
	RoleBackground: "background",
	RoleText:       "text",
	RoleCodeBlock:  "code_block",
	RoleH1:         "h1",
	RoleH2:         "h2",
	RoleH3:         "h3",
	RoleH4:         "h4",
	RoleH5:         "h5",
	RoleH6:         "h6",
	RoleLink:       "link",
	RolePassive:    "passive",
}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return "invalid"
}

// Roles lists every style role a complete theme must define.
func Roles() []Role {
	out := make([]Role, 0, roleCount)
	for r := Role(0); r < roleCount; r++ {
		out = append(out, r)
	}
	return out
}

// HeadingRole maps a heading level (1-6) to its role.
func HeadingRole(level int) Role {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return RoleH1 + Role(level-1)
}

// Theme maps every style role to a concrete color. A Theme is immutable
// once built and safe to share across concurrent render passes.
type Theme struct {
	name   string
	dark   bool
	colors [roleCount]Color
	set    [roleCount]bool
}

// NewTheme builds a theme from a role-to-color table. Completeness is not
// checked here; the renderer validates before any pass begins.
func NewTheme(name string, dark bool, colors map[Role]Color) *Theme {
	t := &Theme{name: name, dark: dark}
	for role, color := range colors {
		if int(role) < int(roleCount) {
			t.colors[role] = color
			t.set[role] = true
		}
	}
	return t
}

// Name returns the theme's display name.
func (t *Theme) Name() string { return t.name }

// IsDark reports whether the theme is designed for dark terminals.
func (t *Theme) IsDark() bool { return t.dark }

// Color returns the color for a role and whether the role is defined.
func (t *Theme) Color(role Role) (Color, bool) {
	if int(role) >= int(roleCount) {
		return Color{}, false
	}
	return t.colors[role], t.set[role]
}

// Validate reports the first missing role, if any. A missing role is a
// configuration error and fails a render pass before it begins.
func (t *Theme) Validate() error {
	for r := Role(0); r < roleCount; r++ {
		if !t.set[r] {
			return &RenderError{Kind: RenderMissingThemeRole, Role: r}
		}
	}
	return nil
}

func themeFromPalette(name string, dark bool, p palette.Palette) *Theme {
	colors := map[Role]Color{
		RoleBackground: mustColor(p.Background),
		RoleText:       mustColor(p.Text),
		RoleCodeBlock:  mustColor(p.CodeBlock),
		RoleH1:         mustColor(p.H1),
		RoleH2:         mustColor(p.H2),
		RoleH3:         mustColor(p.H3),
		RoleH4:         mustColor(p.H4),
		RoleH5:         mustColor(p.H5),
		RoleH6:         mustColor(p.H6),
		RoleLink:       mustColor(p.Link),
		RolePassive:    mustColor(p.Passive),
	}
	return NewTheme(name, dark, colors)
}

func mustColor(hex string) Color {
	c, err := ParseColor(hex)
	if err != nil {
		panic(err)
	}
	return c
}

var builtinThemes = map[string]*Theme{
	"dark":  themeFromPalette("dark", true, palette.Dark),
	"light": themeFromPalette("light", false, palette.Light),
}

// AvailableThemes returns the names of built-in themes.
func AvailableThemes() []string {
	names := make([]string, 0, len(builtinThemes))
	for name := range builtinThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ThemeByName returns a built-in theme by name.
func ThemeByName(name string) (*Theme, bool) {
	if name == "" {
		return builtinThemes["dark"], true
	}
	theme, ok := builtinThemes[strings.ToLower(strings.TrimSpace(name))]
	return theme, ok
}

// DefaultTheme returns the default built-in theme.
func DefaultTheme() *Theme {
	return builtinThemes["dark"]
}
