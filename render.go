package mdt

import (
	"context"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Style is a resolved terminal style: a foreground color plus attribute
// flags, and optionally a background.
type Style struct {
	Foreground    Color
	Background    Color
	HasBackground bool
	Bold          bool
	Italic        bool
	Underline     bool
	Strike        bool
}

// Fragment is a run of text under one style. LinkURL carries the target for
// OSC 8 hyperlink emission; it never affects layout.
type Fragment struct {
	Text    string
	Style   Style
	LinkURL string
}

// StyledLine is one terminal-ready output line. Block identifies the
// top-level source block the line came from, for scroll-to-heading
// navigation. Continuation marks lines produced by visual wrapping as
// opposed to semantic line starts.
type StyledLine struct {
	Fragments    []Fragment
	Block        int
	Continuation bool
}

// Text returns the line's text content with styling stripped.
func (l StyledLine) Text() string {
	var sb strings.Builder
	for _, f := range l.Fragments {
		sb.WriteString(f.Text)
	}
	return sb.String()
}

// Width returns the visible width of the line in terminal cells.
func (l StyledLine) Width() int {
	w := 0
	for _, f := range l.Fragments {
		w += runewidth.StringWidth(f.Text)
	}
	return w
}

// RenderOption configures rendering behavior.
type RenderOption func(*renderConfig)

type renderConfig struct {
	highlight      bool
	highlightStyle string
}

// WithSyntaxHighlighting enables or disables code block highlighting.
func WithSyntaxHighlighting(enabled bool) RenderOption {
	return func(cfg *renderConfig) {
		cfg.highlight = enabled
	}
}

// WithHighlightStyle overrides the chroma style used for code blocks.
func WithHighlightStyle(name string) RenderOption {
	return func(cfg *renderConfig) {
		cfg.highlightStyle = name
	}
}

// Render converts a Document into styled terminal lines at the given width.
// The theme is validated up front; a missing role fails the whole pass.
// Width is assumed to be caller-validated per ValidateWidth. Rendering
// checks ctx once per top-level block, so a cancelled context returns
// quickly with the lines produced so far and ctx's error.
func Render(ctx context.Context, doc *Document, theme *Theme, width int, opts ...RenderOption) ([]StyledLine, []Diagnostic, error) {
	if err := theme.Validate(); err != nil {
		return nil, nil, err
	}
	cfg := renderConfig{highlight: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	r := &renderer{theme: theme, cfg: cfg, width: width}
	for i, block := range doc.Blocks {
		if err := ctx.Err(); err != nil {
			return r.lines, r.diags, err
		}
		r.block = i
		r.blankSeparator()
		r.renderBlock(block, prefix{})
	}
	return r.lines, r.diags, nil
}

type renderer struct {
	theme *Theme
	cfg   renderConfig
	width int
	block int
	lines []StyledLine
	diags []Diagnostic
}

// prefix carries the indentation context accumulated from enclosing lists
// and blockquotes: first decorates the construct's first line, rest every
// following line.
type prefix struct {
	first []Fragment
	rest  []Fragment
}

func (p prefix) width() int {
	w := 0
	for _, f := range p.rest {
		w += runewidth.StringWidth(f.Text)
	}
	return w
}

// push returns a prefix whose first line continues the parent's rest
// context plus the given marker, and whose rest context gets the filler.
func (p prefix) push(marker, filler Fragment) prefix {
	first := make([]Fragment, 0, len(p.rest)+1)
	first = append(first, p.rest...)
	first = append(first, marker)
	rest := make([]Fragment, 0, len(p.rest)+1)
	rest = append(rest, p.rest...)
	rest = append(rest, filler)
	return prefix{first: first, rest: rest}
}

// indent returns a prefix with both contexts set to the parent's rest.
func (p prefix) indent() prefix {
	return prefix{first: p.rest, rest: p.rest}
}

func (r *renderer) color(role Role) Color {
	c, _ := r.theme.Color(role)
	return c
}

func (r *renderer) textStyle() Style {
	return Style{Foreground: r.color(RoleText)}
}

func (r *renderer) passiveStyle() Style {
	return Style{Foreground: r.color(RolePassive)}
}

func (r *renderer) codeStyle() Style {
	return Style{
		Foreground:    r.color(RoleText),
		Background:    r.color(RoleCodeBlock),
		HasBackground: true,
	}
}

// blankSeparator appends exactly one blank line between blocks; runs of
// blank separators collapse.
func (r *renderer) blankSeparator() {
	if len(r.lines) == 0 {
		return
	}
	if len(r.lines[len(r.lines)-1].Fragments) == 0 {
		return
	}
	r.lines = append(r.lines, StyledLine{Block: r.block})
}

func (r *renderer) renderBlock(block Block, pfx prefix) {
	switch b := block.(type) {
	case *Heading:
		style := Style{Foreground: r.color(HeadingRole(b.Level)), Bold: true}
		atoms := r.flowInlines(b.Content, style)
		r.wrapAtoms(atoms, pfx)
	case *Paragraph:
		atoms := r.flowInlines(b.Content, r.textStyle())
		r.wrapAtoms(atoms, pfx)
	case *CodeBlock:
		r.renderCodeBlock(b, pfx)
	case *List:
		r.renderList(b, pfx)
	case *BlockQuote:
		bar := Fragment{Text: "│ ", Style: r.passiveStyle()}
		inner := pfx.push(bar, bar)
		inner.first = inner.rest
		for i, child := range b.Blocks {
			if i > 0 {
				r.quotedBlank(inner)
			}
			r.renderBlock(child, inner)
		}
	case *ThematicBreak:
		avail := r.width - pfx.width()
		if avail < 1 {
			avail = 1
		}
		line := append([]Fragment{}, pfx.first...)
		line = append(line, Fragment{Text: strings.Repeat("─", avail), Style: r.passiveStyle()})
		r.lines = append(r.lines, StyledLine{Fragments: line, Block: r.block})
	case *Table:
		r.renderTable(b, pfx)
	}
}

// quotedBlank separates blocks inside a quote while keeping the bar.
func (r *renderer) quotedBlank(pfx prefix) {
	line := append([]Fragment{}, pfx.rest...)
	r.lines = append(r.lines, StyledLine{Fragments: line, Block: r.block})
}

func (r *renderer) renderList(list *List, pfx prefix) {
	for i, item := range list.Items {
		var marker string
		if list.Ordered {
			marker = strconv.Itoa(list.Start+i) + ". "
		} else {
			marker = "- "
		}
		filler := strings.Repeat(" ", runewidth.StringWidth(marker))
		inner := pfx.push(
			Fragment{Text: marker, Style: r.passiveStyle()},
			Fragment{Text: filler, Style: r.textStyle()},
		)
		atoms := r.flowInlines(item.Content, r.textStyle())
		r.wrapAtoms(atoms, inner)
		for _, child := range item.Blocks {
			if _, isList := child.(*List); !isList {
				r.blankSeparator()
			}
			r.renderBlock(child, inner.indent())
		}
	}
}

func (r *renderer) renderCodeBlock(b *CodeBlock, pfx prefix) {
	lines, ok := r.highlightCode(b)
	if !ok {
		plain := b.Lines()
		lines = make([][]Fragment, 0, len(plain))
		for _, text := range plain {
			lines = append(lines, []Fragment{{Text: text, Style: r.codeStyle()}})
		}
	}
	first := true
	for _, frags := range lines {
		out := make([]Fragment, 0, len(frags)+1)
		if first {
			out = append(out, pfx.first...)
			first = false
		} else {
			out = append(out, pfx.rest...)
		}
		out = append(out, frags...)
		r.lines = append(r.lines, StyledLine{Fragments: out, Block: r.block})
	}
}

func (r *renderer) renderTable(t *Table, pfx prefix) {
	widths := make([]int, len(t.Headers))
	measure := func(row []*TableCell) {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if w := runewidth.StringWidth(cell.TextContent()); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.Headers)
	for _, row := range t.Rows {
		measure(row)
	}

	// Cap column widths when the table would overflow the render width.
	avail := r.width - pfx.width() - 2*(len(widths)-1)
	total := 0
	for _, w := range widths {
		total += w
	}
	if total > avail && len(widths) > 0 {
		colCap := avail / len(widths)
		if colCap < 4 {
			colCap = 4
		}
		for i, w := range widths {
			if w > colCap {
				widths[i] = colCap
			}
		}
	}

	emit := func(row []*TableCell, style Style, first bool) {
		var line []Fragment
		if first {
			line = append(line, pfx.first...)
		} else {
			line = append(line, pfx.rest...)
		}
		for i := range widths {
			if i > 0 {
				line = append(line, Fragment{Text: "  ", Style: r.textStyle()})
			}
			text := ""
			if i < len(row) {
				text = truncateWithEllipsis(row[i].TextContent(), widths[i])
			}
			pad := widths[i] - runewidth.StringWidth(text)
			if pad < 0 {
				pad = 0
			}
			line = append(line, Fragment{Text: text + strings.Repeat(" ", pad), Style: style})
		}
		r.lines = append(r.lines, StyledLine{Fragments: line, Block: r.block})
	}

	header := r.textStyle()
	header.Bold = true
	emit(t.Headers, header, true)

	var sep []Fragment
	sep = append(sep, pfx.rest...)
	for i, w := range widths {
		if i > 0 {
			sep = append(sep, Fragment{Text: "  ", Style: r.textStyle()})
		}
		sep = append(sep, Fragment{Text: strings.Repeat("─", w), Style: r.passiveStyle()})
	}
	r.lines = append(r.lines, StyledLine{Fragments: sep, Block: r.block})

	for _, row := range t.Rows {
		emit(row, r.textStyle(), false)
	}
}

// flowAtom is a unit of wrappable content: a styled fragment or a hard
// break.
type flowAtom struct {
	frag      Fragment
	hardBreak bool
}

// flowInlines flattens an inline tree into flow atoms, composing styles
// additively. Link color wins over surrounding emphasis for color only;
// bold and italic flags pass through.
func (r *renderer) flowInlines(content []Inline, base Style) []flowAtom {
	var atoms []flowAtom
	var walk func(nodes []Inline, style Style, linkURL string)
	walk = func(nodes []Inline, style Style, linkURL string) {
		for _, node := range nodes {
			switch n := node.(type) {
			case *Text:
				atoms = append(atoms, flowAtom{frag: Fragment{Text: n.Value, Style: style, LinkURL: linkURL}})
			case *Emphasis:
				next := style
				if n.Strong {
					next.Bold = true
				} else {
					next.Italic = true
				}
				walk(n.Content, next, linkURL)
			case *Strikethrough:
				next := style
				next.Strike = true
				walk(n.Content, next, linkURL)
			case *CodeSpan:
				code := style
				code.Background = r.color(RoleCodeBlock)
				code.HasBackground = true
				atoms = append(atoms, flowAtom{frag: Fragment{Text: n.Value, Style: code, LinkURL: linkURL}})
			case *Link:
				next := style
				next.Foreground = r.color(RoleLink)
				next.Underline = true
				walk(n.Content, next, n.Target)
			case *Image:
				next := style
				next.Foreground = r.color(RoleLink)
				next.Underline = true
				walk(n.Alt, next, n.Target)
			case *LineBreak:
				if n.Hard {
					atoms = append(atoms, flowAtom{hardBreak: true})
				} else {
					atoms = append(atoms, flowAtom{frag: Fragment{Text: " ", Style: style}})
				}
			}
		}
	}
	walk(content, base, "")
	return atoms
}
