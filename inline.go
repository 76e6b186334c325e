package mdt

import "strings"

// inlineItem is one entry in the inline working sequence: either a resolved
// node or an unresolved delimiter-run candidate.
type inlineItem struct {
	node  Inline
	tok   Token
	count int
	delim bool
}

// parseInlines runs the inline grammar over one block's tokens. Emphasis is
// resolved with an explicit stack of open-delimiter candidates; anything
// that fails to pair degrades to literal text.
func (p *parser) parseInlines(toks []Token, depth int) ([]Inline, error) {
	items, err := p.collectInlineItems(toks, depth)
	if err != nil {
		return nil, err
	}
	return p.resolveDelimiters(items), nil
}

func (p *parser) collectInlineItems(toks []Token, depth int) ([]inlineItem, error) {
	var items []inlineItem
	i := 0
	for i < len(toks) {
		tok := toks[i]
		switch tok.Kind {
		case TokenWhitespace:
			// Interior whitespace collapses to a single space.
			items = appendTextItem(items, " ", tok)
			i++
		case TokenNewline:
			items = append(items, inlineItem{node: &LineBreak{
				position: position{span: tokenSpan(tok)},
				Hard:     tok.Count == 1,
			}})
			i++
		case TokenURL:
			items = append(items, inlineItem{node: &Link{
				position: position{span: tokenSpan(tok)},
				Content:  []Inline{textNode(tok.Raw, tok)},
				Target:   tok.Raw,
			}})
			i++
		case TokenBacktick:
			node, next := parseCodeSpan(toks, i)
			if node != nil {
				items = append(items, inlineItem{node: node})
			} else {
				p.reportDegrade(ParseUnmatchedDelimiter, tok)
				items = appendTextItem(items, tok.Raw, tok)
				next = i + 1
			}
			i = next
		case TokenBang:
			if i+1 < len(toks) && toks[i+1].Kind == TokenLeftBracket {
				node, next, ok, err := p.parseLinkOrImage(toks, i+1, depth, true)
				if err != nil {
					return nil, err
				}
				if ok {
					items = append(items, inlineItem{node: node})
					i = next
					continue
				}
			}
			items = appendTextItem(items, "!", tok)
			i++
		case TokenLeftBracket:
			node, next, ok, err := p.parseLinkOrImage(toks, i, depth, false)
			if err != nil {
				return nil, err
			}
			if ok {
				items = append(items, inlineItem{node: node})
				i = next
				continue
			}
			// Unterminated link degrades to a literal bracket.
			p.reportDegrade(ParseDanglingReference, tok)
			items = appendTextItem(items, "[", tok)
			i++
		case TokenAsterisk, TokenUnderscore, TokenTilde:
			if tok.CanOpen || tok.CanClose {
				items = append(items, inlineItem{tok: tok, count: tok.Count, delim: true})
			} else {
				items = appendTextItem(items, tok.Raw, tok)
			}
			i++
		case TokenEOF:
			i++
		default:
			items = appendTextItem(items, tok.Text, tok)
			i++
		}
	}
	return items, nil
}

func tokenSpan(tok Token) Span {
	return Span{Start: tok.Offset, End: tok.End(), Line: tok.Line, Column: tok.Column}
}

func textNode(text string, tok Token) *Text {
	return &Text{position: position{span: tokenSpan(tok)}, Value: text}
}

// appendTextItem adds literal text, merging into a preceding text node so
// word-wrapping sees whole words rather than lexer fragments.
func appendTextItem(items []inlineItem, text string, tok Token) []inlineItem {
	if len(items) > 0 {
		last := &items[len(items)-1]
		if !last.delim {
			if prev, ok := last.node.(*Text); ok {
				prev.Value += text
				if end := tok.End(); end > prev.span.End {
					prev.span.End = end
				}
				return items
			}
		}
	}
	return append(items, inlineItem{node: textNode(text, tok)})
}

// parseCodeSpan matches a backtick run of one or two against the next run of
// the same length. Returns nil when unterminated.
func parseCodeSpan(toks []Token, i int) (Inline, int) {
	open := toks[i]
	if open.Count > 2 {
		return nil, i
	}
	for j := i + 1; j < len(toks); j++ {
		if toks[j].Kind == TokenNewline {
			break
		}
		if toks[j].Kind == TokenBacktick && toks[j].Count == open.Count {
			var sb strings.Builder
			for _, inner := range toks[i+1 : j] {
				sb.WriteString(inner.Raw)
			}
			sp := spanOver(tokenSpan(open), tokenSpan(toks[j]))
			return &CodeSpan{position: position{span: sp}, Value: sb.String()}, j + 1
		}
	}
	return nil, i
}

// parseLinkOrImage parses "[content](target)" starting at the left bracket.
// ok is false when the syntax is incomplete, in which case the caller falls
// back to literal text.
func (p *parser) parseLinkOrImage(toks []Token, i, depth int, image bool) (Inline, int, bool, error) {
	rb := -1
	nesting := 0
	for j := i + 1; j < len(toks); j++ {
		switch toks[j].Kind {
		case TokenLeftBracket:
			nesting++
		case TokenRightBracket:
			if nesting == 0 {
				rb = j
			} else {
				nesting--
			}
		}
		if rb != -1 {
			break
		}
	}
	if rb == -1 || rb+1 >= len(toks) || toks[rb+1].Kind != TokenLeftParen {
		return nil, i, false, nil
	}
	rp := -1
	for j := rb + 2; j < len(toks); j++ {
		if toks[j].Kind == TokenRightParen {
			rp = j
			break
		}
		if toks[j].Kind == TokenNewline {
			break
		}
	}
	if rp == -1 {
		return nil, i, false, nil
	}

	if depth+1 > p.maxDepth {
		return nil, i, false, p.nestingError(toks[i])
	}
	content, err := p.parseInlines(toks[i+1:rb], depth+1)
	if err != nil {
		return nil, i, false, err
	}
	var target strings.Builder
	for _, tok := range toks[rb+2 : rp] {
		target.WriteString(tok.Raw)
	}
	sp := spanOver(tokenSpan(toks[i]), tokenSpan(toks[rp]))
	if image {
		// Widen to cover the leading bang.
		sp = spanOver(tokenSpan(toks[i-1]), sp)
		return &Image{
			position: position{span: sp},
			Alt:      content,
			Target:   strings.TrimSpace(target.String()),
		}, rp + 1, true, nil
	}
	return &Link{
		position: position{span: sp},
		Content:  content,
		Target:   strings.TrimSpace(target.String()),
	}, rp + 1, true, nil
}

// resolveDelimiters pairs delimiter runs innermost-first. On run length
// mismatch the shorter side wins and the remainder degrades to literal
// text.
func (p *parser) resolveDelimiters(items []inlineItem) []Inline {
	var out []inlineItem
	for _, item := range items {
		if !item.delim || !item.tok.CanClose {
			out = append(out, item)
			continue
		}
		closer := item
		for closer.count > 0 {
			j := findOpener(out, closer.tok.Kind)
			if j == -1 {
				break
			}
			children := p.itemsToInlines(out[j+1:])
			opener := out[j]
			out = out[:j+1]

			node, openLeft, closeLeft := wrapEmphasis(opener, closer, children)
			if node == nil {
				// Unmatched strikethrough run lengths; opener degrades.
				out = out[:j]
				out = append(out, p.literalItem(opener, opener.count))
				out = append(out, childrenAsItems(children)...)
				continue
			}
			out = out[:j]
			if openLeft > 0 {
				out = append(out, p.literalItem(opener, openLeft))
			}
			out = append(out, inlineItem{node: node})
			closer.count = closeLeft
		}
		if closer.count > 0 {
			if closer.tok.CanOpen {
				out = append(out, closer)
			} else {
				out = append(out, p.literalItem(closer, closer.count))
			}
		}
	}
	return p.itemsToInlines(out)
}

func findOpener(items []inlineItem, kind TokenKind) int {
	for j := len(items) - 1; j >= 0; j-- {
		if items[j].delim && items[j].tok.Kind == kind && items[j].tok.CanOpen {
			return j
		}
	}
	return -1
}

// wrapEmphasis builds the emphasis node for one opener/closer pairing and
// returns the unconsumed run lengths on each side.
func wrapEmphasis(opener, closer inlineItem, children []Inline) (Inline, int, int) {
	sp := spanOver(tokenSpan(opener.tok), tokenSpan(closer.tok))
	if opener.tok.Kind == TokenTilde {
		if opener.count == 2 && closer.count == 2 {
			return &Strikethrough{position: position{span: sp}, Content: children}, 0, 0
		}
		return nil, opener.count, closer.count
	}
	o, c := opener.count, closer.count
	var node Inline
	for o > 0 && c > 0 {
		if o >= 2 && c >= 2 {
			node = &Emphasis{position: position{span: sp}, Strong: true, Content: children}
			o -= 2
			c -= 2
		} else {
			node = &Emphasis{position: position{span: sp}, Strong: false, Content: children}
			o--
			c--
		}
		children = []Inline{node}
	}
	return node, o, c
}

// literalItem degrades an unpaired delimiter run to literal text and records
// the degrade as a diagnostic.
func (p *parser) literalItem(item inlineItem, count int) inlineItem {
	p.reportDegrade(ParseUnmatchedDelimiter, item.tok)
	text := strings.Repeat(string(delimiterChar(item.tok.Kind)), count)
	return inlineItem{node: textNode(text, item.tok)}
}

func delimiterChar(kind TokenKind) rune {
	switch kind {
	case TokenAsterisk:
		return '*'
	case TokenUnderscore:
		return '_'
	case TokenTilde:
		return '~'
	}
	return '?'
}

func childrenAsItems(children []Inline) []inlineItem {
	items := make([]inlineItem, 0, len(children))
	for _, c := range children {
		items = append(items, inlineItem{node: c})
	}
	return items
}

// itemsToInlines converts the working sequence to final nodes, turning any
// still-unresolved delimiters into literal text and merging adjacent text
// nodes so degraded markup reads as one literal run.
func (p *parser) itemsToInlines(items []inlineItem) []Inline {
	out := make([]Inline, 0, len(items))
	for _, item := range items {
		node := item.node
		if item.delim {
			node = p.literalItem(item, item.count).node
		}
		if t, ok := node.(*Text); ok && len(out) > 0 {
			if prev, ok := out[len(out)-1].(*Text); ok {
				prev.Value += t.Value
				if t.span.End > prev.span.End {
					prev.span.End = t.span.End
				}
				continue
			}
		}
		out = append(out, node)
	}
	return out
}
