package mdt

import (
	"errors"
	"strings"
	"testing"
)

func parseSource(t *testing.T, src string, opts ...ParseOption) *Document {
	t.Helper()
	toks := mustTokenize(t, src)
	doc, _, err := Parse(toks, opts...)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func singleBlock[T Block](t *testing.T, src string) T {
	t.Helper()
	doc := parseSource(t, src)
	if len(doc.Blocks) != 1 {
		t.Fatalf("want 1 block, got %d: %#v", len(doc.Blocks), doc.Blocks)
	}
	block, ok := doc.Blocks[0].(T)
	if !ok {
		t.Fatalf("want %T, got %T", block, doc.Blocks[0])
	}
	return block
}

func TestParseHeadingLevels(t *testing.T) {
	for level := 1; level <= 6; level++ {
		src := strings.Repeat("#", level) + " Title text"
		h := singleBlock[*Heading](t, src)
		if h.Level != level {
			t.Fatalf("level: got %d want %d", h.Level, level)
		}
		if h.TextContent() != "Title text" {
			t.Fatalf("heading text: %q", h.TextContent())
		}
	}
}

func TestParseHashtagStaysParagraph(t *testing.T) {
	p := singleBlock[*Paragraph](t, "#hashtag is not a heading")
	if !strings.HasPrefix(p.TextContent(), "#") {
		t.Fatalf("paragraph text: %q", p.TextContent())
	}
}

func TestParseEmphasis(t *testing.T) {
	cases := []struct {
		src    string
		strong bool
		text   string
	}{
		{"*italic words*", false, "italic words"},
		{"_also italic_", false, "also italic"},
		{"**strong words**", true, "strong words"},
		{"__also strong__", true, "also strong"},
	}
	for _, tc := range cases {
		p := singleBlock[*Paragraph](t, tc.src)
		if len(p.Content) != 1 {
			t.Fatalf("%q: want 1 inline, got %d", tc.src, len(p.Content))
		}
		em, ok := p.Content[0].(*Emphasis)
		if !ok {
			t.Fatalf("%q: got %T", tc.src, p.Content[0])
		}
		if em.Strong != tc.strong {
			t.Fatalf("%q: strong=%v", tc.src, em.Strong)
		}
		if em.TextContent() != tc.text {
			t.Fatalf("%q: text %q", tc.src, em.TextContent())
		}
	}
}

func TestParseNestedEmphasis(t *testing.T) {
	p := singleBlock[*Paragraph](t, "***both***")
	em, ok := p.Content[0].(*Emphasis)
	if !ok {
		t.Fatalf("got %T", p.Content[0])
	}
	inner, ok := em.Content[0].(*Emphasis)
	if !ok {
		t.Fatalf("inner: got %T", em.Content[0])
	}
	if em.Strong == inner.Strong {
		t.Fatalf("want one strong and one italic, got %v/%v", em.Strong, inner.Strong)
	}
	if p.TextContent() != "both" {
		t.Fatalf("text: %q", p.TextContent())
	}
}

func TestParseStrikethrough(t *testing.T) {
	p := singleBlock[*Paragraph](t, "~~gone~~")
	if _, ok := p.Content[0].(*Strikethrough); !ok {
		t.Fatalf("got %T", p.Content[0])
	}
	// Single tildes do not strike.
	p = singleBlock[*Paragraph](t, "~nope~")
	if p.TextContent() != "~nope~" {
		t.Fatalf("single tilde: %q", p.TextContent())
	}
}

func TestParseUnterminatedEmphasisDegrades(t *testing.T) {
	p := singleBlock[*Paragraph](t, "**unterminated bold text")
	if len(p.Content) != 1 {
		t.Fatalf("want single literal inline, got %d: %#v", len(p.Content), p.Content)
	}
	text, ok := p.Content[0].(*Text)
	if !ok {
		t.Fatalf("got %T", p.Content[0])
	}
	if text.Value != "**unterminated bold text" {
		t.Fatalf("literal: %q", text.Value)
	}
}

func TestParseLink(t *testing.T) {
	p := singleBlock[*Paragraph](t, "see [the docs](https://example.com/docs) here")
	var link *Link
	for _, in := range p.Content {
		if l, ok := in.(*Link); ok {
			link = l
		}
	}
	if link == nil {
		t.Fatalf("no link in %#v", p.Content)
	}
	if link.Target != "https://example.com/docs" {
		t.Fatalf("target: %q", link.Target)
	}
	if link.TextContent() != "the docs" {
		t.Fatalf("content: %q", link.TextContent())
	}
}

func TestParseImage(t *testing.T) {
	p := singleBlock[*Paragraph](t, "![alt text](img.png)")
	img, ok := p.Content[0].(*Image)
	if !ok {
		t.Fatalf("got %T", p.Content[0])
	}
	if img.Target != "img.png" || img.TextContent() != "alt text" {
		t.Fatalf("image: %q -> %q", img.TextContent(), img.Target)
	}
}

func TestParseDanglingLinkDegrades(t *testing.T) {
	p := singleBlock[*Paragraph](t, "a [dangling bracket here")
	if p.TextContent() != "a [dangling bracket here" {
		t.Fatalf("text: %q", p.TextContent())
	}
	p = singleBlock[*Paragraph](t, "[no target] either")
	if p.TextContent() != "[no target] either" {
		t.Fatalf("text: %q", p.TextContent())
	}
}

func TestParseDanglingLinkDiagnostic(t *testing.T) {
	toks := mustTokenize(t, "a [dangling bracket here")
	_, diags, err := Parse(toks)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(diags) != 1 {
		t.Fatalf("want 1 diagnostic, got %+v", diags)
	}
	var parseErr *ParseError
	if !errors.As(diags[0].Err, &parseErr) || parseErr.Kind != ParseDanglingReference {
		t.Fatalf("kind: %v", diags[0].Err)
	}
	if line, col, ok := Position(diags[0].Err); !ok || line != 1 || col != 3 {
		t.Fatalf("position: line %d column %d ok %v", line, col, ok)
	}
}

func TestParseDegradeDiagnostics(t *testing.T) {
	cases := []struct {
		src  string
		kind ParseErrorKind
	}{
		{"**unterminated bold text", ParseUnmatchedDelimiter},
		{"~nope~", ParseUnmatchedDelimiter},
		{"`unterminated code span", ParseUnmatchedDelimiter},
		{"[no target] either", ParseDanglingReference},
	}
	for _, tc := range cases {
		toks := mustTokenize(t, tc.src)
		_, diags, err := Parse(toks)
		if err != nil {
			t.Fatalf("%q: parse: %v", tc.src, err)
		}
		if len(diags) == 0 {
			t.Fatalf("%q: degraded silently", tc.src)
		}
		var parseErr *ParseError
		if !errors.As(diags[0].Err, &parseErr) || parseErr.Kind != tc.kind {
			t.Fatalf("%q: kind: %v", tc.src, diags[0].Err)
		}
	}

	// Well-formed markup reports nothing.
	toks := mustTokenize(t, "**fine** and [ok](x.md) and `code`\n")
	if _, diags, err := Parse(toks); err != nil || len(diags) != 0 {
		t.Fatalf("clean source: diags %+v err %v", diags, err)
	}
}

func TestParseCodeSpan(t *testing.T) {
	p := singleBlock[*Paragraph](t, "use `go vet` often")
	var code *CodeSpan
	for _, in := range p.Content {
		if c, ok := in.(*CodeSpan); ok {
			code = c
		}
	}
	if code == nil || code.Value != "go vet" {
		t.Fatalf("code span: %#v", p.Content)
	}
}

func TestParseCodeBlock(t *testing.T) {
	src := "```go\nfunc main() {}\nfmt.Println(\"x\")\n```\n"
	cb := singleBlock[*CodeBlock](t, src)
	if cb.Language != "go" {
		t.Fatalf("language: %q", cb.Language)
	}
	want := "func main() {}\nfmt.Println(\"x\")\n"
	if cb.Code != want {
		t.Fatalf("code:\n got %q\nwant %q", cb.Code, want)
	}
}

func TestParseCodeBlockKeepsMarkup(t *testing.T) {
	src := "```\n**not bold** and # not a heading\n```\n"
	cb := singleBlock[*CodeBlock](t, src)
	if !strings.Contains(cb.Code, "**not bold**") {
		t.Fatalf("markup not preserved: %q", cb.Code)
	}
}

func TestParseList(t *testing.T) {
	src := "- first item\n- second item\n- third item\n"
	list := singleBlock[*List](t, src)
	if list.Ordered {
		t.Fatal("want unordered")
	}
	if len(list.Items) != 3 {
		t.Fatalf("items: %d", len(list.Items))
	}
	if got := list.Items[1].TextContent(); got != "second item" {
		t.Fatalf("item text: %q", got)
	}
}

func TestParseOrderedListStart(t *testing.T) {
	src := "3. third\n4. fourth\n"
	list := singleBlock[*List](t, src)
	if !list.Ordered || list.Start != 3 {
		t.Fatalf("ordered=%v start=%d", list.Ordered, list.Start)
	}
}

func TestParseNestedList(t *testing.T) {
	src := "- outer\n  - inner one\n  - inner two\n"
	list := singleBlock[*List](t, src)
	if len(list.Items) != 1 {
		t.Fatalf("outer items: %d", len(list.Items))
	}
	if len(list.Items[0].Blocks) != 1 {
		t.Fatalf("nested blocks: %d", len(list.Items[0].Blocks))
	}
	inner, ok := list.Items[0].Blocks[0].(*List)
	if !ok {
		t.Fatalf("nested: %T", list.Items[0].Blocks[0])
	}
	if len(inner.Items) != 2 {
		t.Fatalf("inner items: %d", len(inner.Items))
	}
}

func TestParseListBlankLineContinuation(t *testing.T) {
	src := "- item one\n\n  continuation paragraph\n- item two\n"
	list := singleBlock[*List](t, src)
	if len(list.Items) != 2 {
		t.Fatalf("items: %d", len(list.Items))
	}
	if len(list.Items[0].Blocks) != 1 {
		t.Fatalf("continuation blocks: %d", len(list.Items[0].Blocks))
	}
}

func TestParseListDoubleBlankEnds(t *testing.T) {
	src := "- item one\n\n\nplain paragraph\n"
	doc := parseSource(t, src)
	if len(doc.Blocks) != 2 {
		t.Fatalf("blocks: %d", len(doc.Blocks))
	}
	if _, ok := doc.Blocks[0].(*List); !ok {
		t.Fatalf("first: %T", doc.Blocks[0])
	}
	if _, ok := doc.Blocks[1].(*Paragraph); !ok {
		t.Fatalf("second: %T", doc.Blocks[1])
	}
}

func TestParseBlockQuote(t *testing.T) {
	src := "> quoted text\n> more quoted\n"
	quote := singleBlock[*BlockQuote](t, src)
	if quote.Depth != 1 {
		t.Fatalf("depth: %d", quote.Depth)
	}
	if len(quote.Blocks) != 1 {
		t.Fatalf("inner blocks: %d", len(quote.Blocks))
	}
	if got := quote.TextContent(); got != "quoted text\nmore quoted" {
		t.Fatalf("text: %q", got)
	}
}

func TestParseNestedBlockQuote(t *testing.T) {
	src := "> outer\n> > inner\n"
	quote := singleBlock[*BlockQuote](t, src)
	found := false
	for _, b := range quote.Blocks {
		if inner, ok := b.(*BlockQuote); ok {
			found = true
			if inner.Depth != 2 {
				t.Fatalf("inner depth: %d", inner.Depth)
			}
		}
	}
	if !found {
		t.Fatalf("no nested quote: %#v", quote.Blocks)
	}
}

func TestParseThematicBreak(t *testing.T) {
	singleBlock[*ThematicBreak](t, "---")
	singleBlock[*ThematicBreak](t, "***")
	// Two hyphens stay a paragraph.
	doc := parseSource(t, "--")
	if _, ok := doc.Blocks[0].(*ThematicBreak); ok {
		t.Fatal("two hyphens should not break")
	}
}

func TestParseTable(t *testing.T) {
	src := "| Name | Value |\n|------|-------|\n| a | 1 |\n| b | 2 |\n"
	table := singleBlock[*Table](t, src)
	if len(table.Headers) != 2 {
		t.Fatalf("headers: %d", len(table.Headers))
	}
	if table.Headers[0].TextContent() != "Name" {
		t.Fatalf("header: %q", table.Headers[0].TextContent())
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows: %d", len(table.Rows))
	}
	if table.Rows[1][1].TextContent() != "2" {
		t.Fatalf("cell: %q", table.Rows[1][1].TextContent())
	}
}

func TestParsePipeWithoutSeparatorIsParagraph(t *testing.T) {
	doc := parseSource(t, "| not | a table |\njust text\n")
	if _, ok := doc.Blocks[0].(*Table); ok {
		t.Fatal("should not parse as table without separator row")
	}
}

func TestParseHardBreak(t *testing.T) {
	src := "line one  \nline two\n"
	p := singleBlock[*Paragraph](t, src)
	hard := false
	for _, in := range p.Content {
		if br, ok := in.(*LineBreak); ok && br.Hard {
			hard = true
		}
	}
	if !hard {
		t.Fatalf("no hard break in %#v", p.Content)
	}
}

func TestParseSoftBreak(t *testing.T) {
	src := "line one\nline two\n"
	p := singleBlock[*Paragraph](t, src)
	for _, in := range p.Content {
		if br, ok := in.(*LineBreak); ok && br.Hard {
			t.Fatal("unexpected hard break")
		}
	}
}

func TestParseNestingDepthBoundary(t *testing.T) {
	const max = 4
	build := func(depth int) string {
		var sb strings.Builder
		for i := 0; i < depth; i++ {
			sb.WriteString(strings.Repeat("  ", i))
			sb.WriteString("- item\n")
		}
		return sb.String()
	}

	toks := mustTokenize(t, build(max))
	if _, _, err := Parse(toks, WithMaxNestingDepth(max)); err != nil {
		t.Fatalf("depth %d should parse: %v", max, err)
	}

	toks = mustTokenize(t, build(max+1))
	_, _, err := Parse(toks, WithMaxNestingDepth(max))
	var parseErr *ParseError
	if !errors.As(err, &parseErr) || parseErr.Kind != ParseNestingTooDeep {
		t.Fatalf("depth %d: want nesting error, got %v", max+1, err)
	}
}

func TestParseHeadingsWalker(t *testing.T) {
	src := "# One\n\ntext\n\n## Two\n\n### Three\n"
	doc := parseSource(t, src)
	headings := doc.Headings()
	if len(headings) != 3 {
		t.Fatalf("headings: %d", len(headings))
	}
	if headings[1].Level != 2 || headings[1].TextContent() != "Two" {
		t.Fatalf("second heading: %d %q", headings[1].Level, headings[1].TextContent())
	}
}

func TestParseDocumentStripsFrontMatter(t *testing.T) {
	src := "---\ntitle: test\n---\n# Real heading\n"
	doc, _, err := ParseDocument(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Blocks) == 0 {
		t.Fatal("no blocks")
	}
	h, ok := doc.Blocks[0].(*Heading)
	if !ok || h.TextContent() != "Real heading" {
		t.Fatalf("first block: %#v", doc.Blocks[0])
	}
}
