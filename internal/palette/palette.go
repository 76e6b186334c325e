// Package palette holds the built-in color tables consumed by the theme
// layer. Values are "#rrggbb" and are parsed once at startup.
package palette

// Palette is one mode's color table: the eleven style roles a theme needs.
type Palette struct {
	Background string
	Text       string
	CodeBlock  string
	H1         string
	H2         string
	H3         string
	H4         string
	H5         string
	H6         string
	Link       string
	Passive    string
}

// Dark is the default palette for dark terminals.
var Dark = Palette{
	Background: "#1e222a",
	Text:       "#c5cdd9",
	CodeBlock:  "#2a2f38",
	H1:         "#61afef",
	H2:         "#56b6c2",
	H3:         "#98c379",
	H4:         "#e5c07b",
	H5:         "#d19a66",
	H6:         "#c678dd",
	Link:       "#61afef",
	Passive:    "#5c6370",
}

// Light is the default palette for light terminals.
var Light = Palette{
	Background: "#fafafa",
	Text:       "#383a42",
	CodeBlock:  "#eaeaeb",
	H1:         "#4078f2",
	H2:         "#0184bc",
	H3:         "#50a14f",
	H4:         "#c18401",
	H5:         "#986801",
	H6:         "#a626a4",
	Link:       "#4078f2",
	Passive:    "#a0a1a7",
}
