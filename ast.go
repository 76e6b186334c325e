package mdt

import "strings"

// Span locates a node in the source. Start and End are byte offsets; Line
// and Column point at the first character. Sibling spans never overlap and
// every child span is contained in its parent's span.
type Span struct {
	Start  int
	End    int
	Line   int
	Column int
}

// Node is the common interface of all AST nodes.
type Node interface {
	Span() Span
	// TextContent returns the plain text of the node and its descendants,
	// with all markup stripped.
	TextContent() string
}

// Block is a block-level node: a direct child of a Document, BlockQuote or
// ListItem.
type Block interface {
	Node
	block()
}

// Inline is an inline-level node inside a Heading, Paragraph or ListItem.
type Inline interface {
	Node
	inline()
}

type position struct {
	span Span
}

func (p position) Span() Span { return p.span }

// Document is the AST root.
type Document struct {
	position
	Blocks []Block
}

func (d *Document) TextContent() string {
	parts := make([]string, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		parts = append(parts, b.TextContent())
	}
	return strings.Join(parts, "\n")
}

// Heading is an ATX heading with level 1-6.
type Heading struct {
	position
	Level   int
	Content []Inline
}

func (h *Heading) block() {}
func (h *Heading) TextContent() string {
	return inlineText(h.Content)
}

// Paragraph is a run of inline content separated from its neighbors by
// blank lines.
type Paragraph struct {
	position
	Content []Inline
}

func (p *Paragraph) block() {}
func (p *Paragraph) TextContent() string {
	return inlineText(p.Content)
}

// CodeBlock is a fenced code block. Code preserves the author's line
// structure verbatim; it is never wrapped.
type CodeBlock struct {
	position
	Language string
	Code     string
}

func (c *CodeBlock) block() {}
func (c *CodeBlock) TextContent() string {
	return c.Code
}

// Lines splits the code into display lines.
func (c *CodeBlock) Lines() []string {
	if c.Code == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(c.Code, "\n"), "\n")
}

// List is an ordered or unordered list. Depth is 0 for a top-level list and
// grows with each level of nesting.
type List struct {
	position
	Ordered bool
	Start   int
	Depth   int
	Items   []*ListItem
}

func (l *List) block() {}
func (l *List) TextContent() string {
	parts := make([]string, 0, len(l.Items))
	for _, item := range l.Items {
		parts = append(parts, item.TextContent())
	}
	return strings.Join(parts, "\n")
}

// ListItem holds the item's own inline content plus any nested blocks
// (continuation paragraphs, nested lists).
type ListItem struct {
	position
	Content []Inline
	Blocks  []Block
}

func (li *ListItem) block() {}
func (li *ListItem) TextContent() string {
	text := inlineText(li.Content)
	for _, b := range li.Blocks {
		text += "\n" + b.TextContent()
	}
	return text
}

// BlockQuote nests block content. Depth is 1 for a top-level quote.
type BlockQuote struct {
	position
	Depth  int
	Blocks []Block
}

func (q *BlockQuote) block() {}
func (q *BlockQuote) TextContent() string {
	parts := make([]string, 0, len(q.Blocks))
	for _, b := range q.Blocks {
		parts = append(parts, b.TextContent())
	}
	return strings.Join(parts, "\n")
}

// ThematicBreak is a horizontal rule.
type ThematicBreak struct {
	position
}

func (t *ThematicBreak) block() {}
func (t *ThematicBreak) TextContent() string {
	return ""
}

// TableCell is one cell of a table row.
type TableCell struct {
	position
	Content []Inline
}

func (c *TableCell) TextContent() string {
	return inlineText(c.Content)
}

// Table is a pipe table with a header row and zero or more data rows.
type Table struct {
	position
	Headers []*TableCell
	Rows    [][]*TableCell
}

func (t *Table) block() {}
func (t *Table) TextContent() string {
	lines := make([]string, 0, len(t.Rows)+1)
	lines = append(lines, cellText(t.Headers))
	for _, row := range t.Rows {
		lines = append(lines, cellText(row))
	}
	return strings.Join(lines, "\n")
}

func cellText(cells []*TableCell) string {
	parts := make([]string, 0, len(cells))
	for _, c := range cells {
		parts = append(parts, c.TextContent())
	}
	return strings.Join(parts, " | ")
}

// Text is a literal text run.
type Text struct {
	position
	Value string
}

func (t *Text) inline() {}
func (t *Text) TextContent() string {
	return t.Value
}

// Emphasis is italic or, when Strong is set, bold content. Bold italic is
// represented as nested Emphasis nodes; styles compose additively.
type Emphasis struct {
	position
	Strong  bool
	Content []Inline
}

func (e *Emphasis) inline() {}
func (e *Emphasis) TextContent() string {
	return inlineText(e.Content)
}

// Strikethrough is struck-through content.
type Strikethrough struct {
	position
	Content []Inline
}

func (s *Strikethrough) inline() {}
func (s *Strikethrough) TextContent() string {
	return inlineText(s.Content)
}

// CodeSpan is inline code.
type CodeSpan struct {
	position
	Value string
}

func (c *CodeSpan) inline() {}
func (c *CodeSpan) TextContent() string {
	return c.Value
}

// Link is inline display content pointing at a target. Relative targets are
// preserved verbatim; resolution is the presentation layer's concern.
type Link struct {
	position
	Content []Inline
	Target  string
}

func (l *Link) inline() {}
func (l *Link) TextContent() string {
	return inlineText(l.Content)
}

// Image is an inline image reference, rendered like a link.
type Image struct {
	position
	Alt    []Inline
	Target string
}

func (i *Image) inline() {}
func (i *Image) TextContent() string {
	return inlineText(i.Alt)
}

// LineBreak separates lines inside a paragraph. Hard breaks force a new
// output line; soft breaks render as a space.
type LineBreak struct {
	position
	Hard bool
}

func (b *LineBreak) inline() {}
func (b *LineBreak) TextContent() string {
	return "\n"
}

func inlineText(content []Inline) string {
	var sb strings.Builder
	for _, in := range content {
		sb.WriteString(in.TextContent())
	}
	return sb.String()
}

// Headings returns every heading in document order, for outline navigation.
func (d *Document) Headings() []*Heading {
	var out []*Heading
	var walk func(blocks []Block)
	walk = func(blocks []Block) {
		for _, b := range blocks {
			switch n := b.(type) {
			case *Heading:
				out = append(out, n)
			case *BlockQuote:
				walk(n.Blocks)
			case *List:
				for _, item := range n.Items {
					walk(item.Blocks)
				}
			}
		}
	}
	walk(d.Blocks)
	return out
}
