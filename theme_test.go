package mdt

import (
	"errors"
	"testing"
)

func TestBuiltinThemesComplete(t *testing.T) {
	for _, name := range AvailableThemes() {
		theme, ok := ThemeByName(name)
		if !ok {
			t.Fatalf("theme %q not found by its own name", name)
		}
		if err := theme.Validate(); err != nil {
			t.Fatalf("theme %q incomplete: %v", name, err)
		}
		for _, role := range Roles() {
			if _, ok := theme.Color(role); !ok {
				t.Fatalf("theme %q missing role %s", name, role)
			}
		}
	}
}

func TestThemeByName(t *testing.T) {
	if _, ok := ThemeByName("dark"); !ok {
		t.Fatal("dark missing")
	}
	if _, ok := ThemeByName("  Light "); !ok {
		t.Fatal("lookup should trim and fold case")
	}
	if _, ok := ThemeByName("nope"); ok {
		t.Fatal("unknown theme resolved")
	}
	theme, ok := ThemeByName("")
	if !ok || theme.Name() != "dark" {
		t.Fatalf("empty name should default to dark, got %v", theme)
	}
}

func TestThemeDarkFlag(t *testing.T) {
	dark, _ := ThemeByName("dark")
	light, _ := ThemeByName("light")
	if !dark.IsDark() || light.IsDark() {
		t.Fatalf("dark=%v light=%v", dark.IsDark(), light.IsDark())
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#1e222a")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.R != 0x1e || c.G != 0x22 || c.B != 0x2a {
		t.Fatalf("components: %+v", c)
	}
	if c.Hex() != "#1e222a" {
		t.Fatalf("hex round trip: %q", c.Hex())
	}
	for _, bad := range []string{"", "red", "#12345", "#gggggg", "1e222a"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("%q parsed without error", bad)
		}
	}
}

func TestThemeValidateNamesRole(t *testing.T) {
	theme := NewTheme("partial", false, map[Role]Color{
		RoleBackground: {},
		RoleText:       {},
	})
	err := theme.Validate()
	var rerr *RenderError
	if !errors.As(err, &rerr) {
		t.Fatalf("want RenderError, got %v", err)
	}
	if rerr.Kind != RenderMissingThemeRole {
		t.Fatalf("kind: %v", rerr.Kind)
	}
	if rerr.Role != RoleCodeBlock {
		t.Fatalf("first missing role should be %s, got %s", RoleCodeBlock, rerr.Role)
	}
}

func TestHeadingRoleMapping(t *testing.T) {
	if HeadingRole(1) != RoleH1 || HeadingRole(6) != RoleH6 {
		t.Fatal("heading role mapping broken")
	}
	// Out-of-range levels clamp rather than panic.
	if HeadingRole(0) != RoleH1 || HeadingRole(7) != RoleH6 {
		t.Fatal("heading role clamp broken")
	}
}
