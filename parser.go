package mdt

import "strings"

// DefaultMaxNestingDepth bounds list, blockquote and link nesting. Deep
// enough for any real document, small enough to bound resource use on
// adversarial input.
const DefaultMaxNestingDepth = 32

// ParseOption configures parsing behavior.
type ParseOption func(*parseConfig)

type parseConfig struct {
	maxDepth int
}

// WithMaxNestingDepth overrides the nesting depth bound.
func WithMaxNestingDepth(depth int) ParseOption {
	return func(cfg *parseConfig) {
		if depth > 0 {
			cfg.maxDepth = depth
		}
	}
}

// Parse builds a Document from a token sequence. Content-level ambiguities
// degrade to literal text and are reported as diagnostics; the only hard
// failure is exceeding the nesting depth bound.
func Parse(tokens []Token, opts ...ParseOption) (*Document, []Diagnostic, error) {
	cfg := parseConfig{maxDepth: DefaultMaxNestingDepth}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	p := &parser{maxDepth: cfg.maxDepth}
	p.lines = splitLines(tokens)
	blocks, err := p.parseBlocks(p.lines, 0)
	if err != nil {
		return nil, p.diags, err
	}
	doc := &Document{Blocks: blocks}
	if len(tokens) > 0 {
		first := tokens[0]
		last := tokens[len(tokens)-1]
		doc.span = Span{Start: first.Offset, End: last.End(), Line: first.Line, Column: first.Column}
	}
	return doc, p.diags, nil
}

type parser struct {
	lines    []tokenLine
	maxDepth int
	diags    []Diagnostic
}

// reportDegrade records a non-fatal diagnostic for markup that degraded to
// literal text, positioned at the token that started the construct.
func (p *parser) reportDegrade(kind ParseErrorKind, tok Token) {
	p.diags = append(p.diags, Diagnostic{
		Err:    &ParseError{Kind: kind, Line: tok.Line, Column: tok.Column},
		Line:   tok.Line,
		Column: tok.Column,
	})
}

// tokenLine is one source line of tokens, excluding its terminating newline.
type tokenLine struct {
	toks []Token
}

func splitLines(tokens []Token) []tokenLine {
	var lines []tokenLine
	var cur []Token
	for _, tok := range tokens {
		switch tok.Kind {
		case TokenNewline:
			lines = append(lines, tokenLine{toks: cur})
			cur = nil
		case TokenEOF:
			if len(cur) > 0 {
				lines = append(lines, tokenLine{toks: cur})
				cur = nil
			}
		default:
			cur = append(cur, tok)
		}
	}
	return lines
}

func (ln tokenLine) isBlank() bool {
	for _, tok := range ln.toks {
		if tok.Kind != TokenWhitespace {
			return false
		}
	}
	return true
}

// indent returns the visual indentation of the line (tabs count as four
// columns) and the index of the first non-whitespace token.
func (ln tokenLine) indent() (width, first int) {
	for i, tok := range ln.toks {
		if tok.Kind != TokenWhitespace {
			return width, i
		}
		for _, r := range tok.Raw {
			if r == '\t' {
				width += 4
			} else {
				width++
			}
		}
	}
	return width, len(ln.toks)
}

// endsWithHardBreak reports whether the line ends in two or more spaces.
func (ln tokenLine) endsWithHardBreak() bool {
	if len(ln.toks) == 0 {
		return false
	}
	last := ln.toks[len(ln.toks)-1]
	return last.Kind == TokenWhitespace && len(last.Raw) >= 2
}

func (ln tokenLine) span() Span {
	if len(ln.toks) == 0 {
		return Span{}
	}
	first := ln.toks[0]
	last := ln.toks[len(ln.toks)-1]
	return Span{Start: first.Offset, End: last.End(), Line: first.Line, Column: first.Column}
}

func spanOver(from, to Span) Span {
	if from.Start == 0 && from.End == 0 {
		return to
	}
	if to.End > from.End {
		from.End = to.End
	}
	return from
}

func (p *parser) nestingError(tok Token) error {
	return &ParseError{Kind: ParseNestingTooDeep, Line: tok.Line, Column: tok.Column}
}

// parseBlocks is the block-level grammar over a window of lines. depth
// counts list/blockquote nesting and is enforced against maxDepth.
func (p *parser) parseBlocks(lines []tokenLine, depth int) ([]Block, error) {
	var blocks []Block
	li := 0
	for li < len(lines) {
		ln := lines[li]
		if ln.isBlank() {
			li++
			continue
		}
		_, first := ln.indent()
		tok := ln.toks[first]

		switch {
		case tok.Kind == TokenHash && headingMarkerValid(ln.toks, first):
			heading, err := p.parseHeading(ln, first, depth)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, heading)
			li++
		case isThematicBreakLine(ln):
			blocks = append(blocks, &ThematicBreak{position: position{span: ln.span()}})
			li++
		case isFenceOpen(tok):
			block, next := p.parseCodeBlock(lines, li, first)
			blocks = append(blocks, block)
			li = next
		case tok.Kind == TokenGreaterThan:
			block, next, err := p.parseBlockQuote(lines, li, depth)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, block)
			li = next
		case isListMarker(ln.toks, first):
			block, next, err := p.parseList(lines, li, depth)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, block)
			li = next
		case tok.Kind == TokenPipe && isTableStart(lines, li):
			block, next, err := p.parseTable(lines, li, depth)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, block)
			li = next
		default:
			block, next, err := p.parseParagraph(lines, li, depth)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, block)
			li = next
		}
	}
	return blocks, nil
}

// headingMarkerValid requires the hash run to be followed by whitespace or
// end of line; "#hashtag" stays a paragraph.
func headingMarkerValid(toks []Token, first int) bool {
	if first+1 >= len(toks) {
		return true
	}
	return toks[first+1].Kind == TokenWhitespace
}

func (p *parser) parseHeading(ln tokenLine, first, depth int) (*Heading, error) {
	tok := ln.toks[first]
	content := ln.toks[first+1:]
	if len(content) > 0 && content[0].Kind == TokenWhitespace {
		content = content[1:]
	}
	inlines, err := p.parseInlines(content, depth)
	if err != nil {
		return nil, err
	}
	return &Heading{
		position: position{span: ln.span()},
		Level:    tok.Count,
		Content:  inlines,
	}, nil
}

// isThematicBreakLine matches a line of three or more hyphens or asterisks
// with nothing else on it.
func isThematicBreakLine(ln tokenLine) bool {
	count := 0
	var marker TokenKind
	for _, tok := range ln.toks {
		switch tok.Kind {
		case TokenWhitespace:
			continue
		case TokenHyphen:
			if marker != 0 && marker != TokenHyphen {
				return false
			}
			marker = TokenHyphen
			count++
		case TokenAsterisk:
			if marker != 0 && marker != TokenAsterisk {
				return false
			}
			marker = TokenAsterisk
			count += tok.Count
		default:
			return false
		}
	}
	return count >= 3
}

func isFenceOpen(tok Token) bool {
	return (tok.Kind == TokenBacktick || tok.Kind == TokenTilde) && tok.Count >= fenceMinimumRun
}

// parseCodeBlock collects raw lines until a matching closing fence. An
// unterminated fence swallows the rest of the input; the lexer has already
// reported it.
func (p *parser) parseCodeBlock(lines []tokenLine, li, first int) (*CodeBlock, int) {
	open := lines[li].toks[first]
	language := ""
	for _, tok := range lines[li].toks[first+1:] {
		if tok.Kind == TokenWhitespace {
			continue
		}
		language = strings.TrimSpace(tok.Raw)
		break
	}
	var code strings.Builder
	sp := lines[li].span()
	li++
	for li < len(lines) {
		ln := lines[li]
		if _, f := ln.indent(); f < len(ln.toks) {
			tok := ln.toks[f]
			if (tok.Kind == TokenBacktick || tok.Kind == TokenTilde) &&
				tok.Kind == open.Kind && tok.Count >= open.Count {
				sp = spanOver(sp, ln.span())
				li++
				break
			}
		}
		for _, tok := range ln.toks {
			code.WriteString(tok.Raw)
		}
		code.WriteString("\n")
		sp = spanOver(sp, ln.span())
		li++
	}
	return &CodeBlock{
		position: position{span: sp},
		Language: language,
		Code:     code.String(),
	}, li
}

// parseBlockQuote gathers consecutive quoted lines, strips one marker level
// and recursively parses the inner content, so nested quotes and lists
// inside quotes fall out of the recursion.
func (p *parser) parseBlockQuote(lines []tokenLine, li, depth int) (*BlockQuote, int, error) {
	if depth+1 > p.maxDepth {
		return nil, li, p.nestingError(lines[li].toks[0])
	}
	var inner []tokenLine
	sp := lines[li].span()
	for li < len(lines) {
		ln := lines[li]
		if ln.isBlank() {
			break
		}
		_, first := ln.indent()
		if ln.toks[first].Kind != TokenGreaterThan {
			break
		}
		rest := ln.toks[first+1:]
		if len(rest) > 0 && rest[0].Kind == TokenWhitespace {
			rest = trimOneSpace(rest)
		}
		inner = append(inner, tokenLine{toks: rest})
		sp = spanOver(sp, ln.span())
		li++
	}
	blocks, err := p.parseBlocks(inner, depth+1)
	if err != nil {
		return nil, li, err
	}
	return &BlockQuote{
		position: position{span: sp},
		Depth:    depth + 1,
		Blocks:   blocks,
	}, li, nil
}

// trimOneSpace drops a single leading space from a whitespace token,
// preserving deeper indentation for nested content.
func trimOneSpace(toks []Token) []Token {
	ws := toks[0]
	if len(ws.Raw) <= 1 {
		return toks[1:]
	}
	trimmed := ws
	trimmed.Raw = ws.Raw[1:]
	trimmed.Text = trimmed.Raw
	trimmed.Offset++
	trimmed.Column++
	out := make([]Token, 0, len(toks))
	out = append(out, trimmed)
	out = append(out, toks[1:]...)
	return out
}

// isListMarker matches "-", "+", "*" or "N." followed by whitespace.
func isListMarker(toks []Token, first int) bool {
	tok := toks[first]
	switch tok.Kind {
	case TokenHyphen, TokenPlus:
		return first+1 < len(toks) && toks[first+1].Kind == TokenWhitespace
	case TokenAsterisk:
		return tok.Count == 1 && first+1 < len(toks) && toks[first+1].Kind == TokenWhitespace
	case TokenNumber:
		return first+1 < len(toks) && toks[first+1].Kind == TokenDot
	}
	return false
}

// parseList parses sibling items at one indent level. Indented markers open
// nested lists; a blank line followed by indented content continues the
// current item; two consecutive blank lines terminate the list.
func (p *parser) parseList(lines []tokenLine, li, depth int) (*List, int, error) {
	if depth+1 > p.maxDepth {
		_, first := lines[li].indent()
		return nil, li, p.nestingError(lines[li].toks[first])
	}
	baseIndent, first := lines[li].indent()
	marker := lines[li].toks[first]
	list := &List{
		position: position{span: lines[li].span()},
		Ordered:  marker.Kind == TokenNumber,
		Start:    1,
		Depth:    depth,
	}
	if list.Ordered {
		list.Start = marker.Count
	}

	for li < len(lines) {
		ln := lines[li]
		if ln.isBlank() {
			// One blank line may continue the item; two end the list.
			if li+1 >= len(lines) || lines[li+1].isBlank() {
				li++
				break
			}
			nextIndent, nf := lines[li+1].indent()
			if nf < len(lines[li+1].toks) && nextIndent > baseIndent {
				li++
				continue
			}
			if nf < len(lines[li+1].toks) && nextIndent == baseIndent && isListMarker(lines[li+1].toks, nf) {
				li++
				continue
			}
			break
		}
		indent, f := ln.indent()
		if f >= len(ln.toks) {
			li++
			continue
		}
		switch {
		case indent == baseIndent && isListMarker(ln.toks, f) && sameListKind(ln.toks[f], marker):
			item, next, err := p.parseListItem(lines, li, baseIndent, depth)
			if err != nil {
				return nil, li, err
			}
			list.Items = append(list.Items, item)
			list.span = spanOver(list.span, item.span)
			li = next
		default:
			return list, li, nil
		}
	}
	return list, li, nil
}

func sameListKind(a, b Token) bool {
	if a.Kind == TokenNumber || b.Kind == TokenNumber {
		return a.Kind == b.Kind
	}
	return true
}

// parseListItem reads the item's first line plus any continuation content:
// deeper-indented lines become nested blocks (paragraphs, nested lists).
func (p *parser) parseListItem(lines []tokenLine, li, baseIndent, depth int) (*ListItem, int, error) {
	ln := lines[li]
	_, f := ln.indent()
	content := ln.toks[f+1:]
	if lines[li].toks[f].Kind == TokenNumber {
		// Skip the dot after the number.
		content = content[1:]
	}
	if len(content) > 0 && content[0].Kind == TokenWhitespace {
		content = content[1:]
	}
	inlines, err := p.parseInlines(content, depth)
	if err != nil {
		return nil, li, err
	}
	item := &ListItem{
		position: position{span: ln.span()},
		Content:  inlines,
	}
	li++

	// Gather continuation lines indented past the marker.
	var nested []tokenLine
	sawBlank := false
	for li < len(lines) {
		next := lines[li]
		if next.isBlank() {
			if sawBlank {
				break
			}
			sawBlank = true
			nested = append(nested, next)
			li++
			continue
		}
		indent, nf := next.indent()
		if nf >= len(next.toks) || indent <= baseIndent {
			break
		}
		sawBlank = false
		nested = append(nested, tokenLine{toks: trimIndentTokens(next.toks, baseIndent+2)})
		item.span = spanOver(item.span, next.span())
		li++
	}
	for len(nested) > 0 && nested[len(nested)-1].isBlank() {
		nested = nested[:len(nested)-1]
	}
	if len(nested) > 0 {
		blocks, err := p.parseBlocks(nested, depth+1)
		if err != nil {
			return nil, li, err
		}
		item.Blocks = blocks
	}
	return item, li, nil
}

// trimIndentTokens removes up to cols columns of leading whitespace,
// preserving any deeper indentation so nested structures keep their
// relative depth.
func trimIndentTokens(toks []Token, cols int) []Token {
	for cols > 0 && len(toks) > 0 && toks[0].Kind == TokenWhitespace {
		ws := toks[0]
		width := 0
		cut := 0
		for _, r := range ws.Raw {
			if width >= cols {
				break
			}
			if r == '\t' {
				width += 4
			} else {
				width++
			}
			cut++
		}
		if cut >= len(ws.Raw) {
			toks = toks[1:]
			cols -= width
			continue
		}
		trimmed := ws
		trimmed.Raw = ws.Raw[cut:]
		trimmed.Text = trimmed.Raw
		trimmed.Offset += cut
		trimmed.Column += cut
		rest := make([]Token, 0, len(toks))
		rest = append(rest, trimmed)
		rest = append(rest, toks[1:]...)
		return rest
	}
	return toks
}

// isTableStart requires a pipe-led line followed by a separator row of
// pipes, hyphens, colons and whitespace.
func isTableStart(lines []tokenLine, li int) bool {
	if li+1 >= len(lines) {
		return false
	}
	sep := lines[li+1]
	if sep.isBlank() {
		return false
	}
	sawHyphen := false
	for _, tok := range sep.toks {
		switch tok.Kind {
		case TokenPipe, TokenColon, TokenWhitespace:
		case TokenHyphen:
			sawHyphen = true
		default:
			return false
		}
	}
	return sawHyphen
}

func (p *parser) parseTable(lines []tokenLine, li, depth int) (*Table, int, error) {
	sp := lines[li].span()
	headers, err := p.parseTableRow(lines[li], depth)
	if err != nil {
		return nil, li, err
	}
	li += 2 // header + separator

	table := &Table{Headers: headers}
	for li < len(lines) {
		ln := lines[li]
		if ln.isBlank() {
			break
		}
		_, f := ln.indent()
		if ln.toks[f].Kind != TokenPipe {
			break
		}
		row, err := p.parseTableRow(ln, depth)
		if err != nil {
			return nil, li, err
		}
		table.Rows = append(table.Rows, row)
		sp = spanOver(sp, ln.span())
		li++
	}
	table.span = sp
	return table, li, nil
}

func (p *parser) parseTableRow(ln tokenLine, depth int) ([]*TableCell, error) {
	var cells []*TableCell
	var cur []Token
	flush := func() error {
		cur = trimWhitespaceTokens(cur)
		if len(cur) == 0 {
			cur = nil
			return nil
		}
		inlines, err := p.parseInlines(cur, depth)
		if err != nil {
			return err
		}
		sp := Span{Start: cur[0].Offset, End: cur[len(cur)-1].End(), Line: cur[0].Line, Column: cur[0].Column}
		cells = append(cells, &TableCell{position: position{span: sp}, Content: inlines})
		cur = nil
		return nil
	}
	_, f := ln.indent()
	for _, tok := range ln.toks[f:] {
		if tok.Kind == TokenPipe {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		cur = append(cur, tok)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return cells, nil
}

func trimWhitespaceTokens(toks []Token) []Token {
	for len(toks) > 0 && toks[0].Kind == TokenWhitespace {
		toks = toks[1:]
	}
	for len(toks) > 0 && toks[len(toks)-1].Kind == TokenWhitespace {
		toks = toks[:len(toks)-1]
	}
	return toks
}

// parseParagraph joins consecutive plain lines, inserting soft breaks (or
// hard breaks after trailing double spaces) between them.
func (p *parser) parseParagraph(lines []tokenLine, li, depth int) (*Paragraph, int, error) {
	var toks []Token
	sp := lines[li].span()
	for li < len(lines) {
		ln := lines[li]
		if ln.isBlank() {
			break
		}
		_, f := ln.indent()
		if len(toks) > 0 && startsNewBlock(lines, li, f) {
			break
		}
		if len(toks) > 0 {
			// Synthetic break marker between joined lines; resolved to a
			// hard or soft LineBreak by the inline pass.
			br := Token{Kind: TokenNewline, Line: ln.toks[0].Line, Column: 1, Offset: ln.toks[0].Offset}
			if lines[li-1].endsWithHardBreak() {
				br.Count = 1
			}
			toks = append(toks, br)
		}
		toks = append(toks, ln.toks[f:]...)
		sp = spanOver(sp, ln.span())
		li++
	}
	inlines, err := p.parseInlines(toks, depth)
	if err != nil {
		return nil, li, err
	}
	return &Paragraph{position: position{span: sp}, Content: inlines}, li, nil
}

func startsNewBlock(lines []tokenLine, li, first int) bool {
	ln := lines[li]
	tok := ln.toks[first]
	switch {
	case tok.Kind == TokenHash && headingMarkerValid(ln.toks, first):
		return true
	case isThematicBreakLine(ln):
		return true
	case isFenceOpen(tok):
		return true
	case tok.Kind == TokenGreaterThan:
		return true
	case isListMarker(ln.toks, first):
		return true
	case tok.Kind == TokenPipe && isTableStart(lines, li):
		return true
	}
	return false
}
