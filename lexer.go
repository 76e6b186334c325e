package mdt

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxHeadingLevel = 6
	maxDelimiterRun = 3
	maxBacktickRun  = 4
	maxNumberDigits = 9
	fenceMinimumRun = 3
)

// Tokenize converts Markdown source into a flat token sequence ending in a
// synthetic EOF token. It performs a single forward scan and never backtracks.
// Content-level problems (unterminated fences, invalid escapes) are reported
// as diagnostics while lexing continues; the only hard failures are invalid
// UTF-8 and binary input.
func Tokenize(source string) ([]Token, []Diagnostic, error) {
	if err := ValidateInput([]byte(source)); err != nil {
		return nil, nil, err
	}
	lx := &lexer{src: source, line: 1, column: 1}
	lx.run()
	return lx.tokens, lx.diags, nil
}

type lexer struct {
	src    string
	pos    int
	line   int
	column int

	tokens []Token
	diags  []Diagnostic

	lineHasContent bool

	inFence     bool
	fenceChar   rune
	fenceCount  int
	fenceLine   int
	fenceColumn int
}

func (lx *lexer) run() {
	for lx.pos < len(lx.src) {
		lx.scanToken()
	}
	if lx.inFence {
		lx.diags = append(lx.diags, Diagnostic{
			Err:    &LexError{Kind: LexUnterminatedFence, Line: lx.fenceLine, Column: lx.fenceColumn},
			Line:   lx.fenceLine,
			Column: lx.fenceColumn,
		})
	}
	lx.tokens = append(lx.tokens, Token{
		Kind:   TokenEOF,
		Line:   lx.line,
		Column: lx.column,
		Offset: lx.pos,
	})
}

func (lx *lexer) scanToken() {
	start := lx.mark()
	r := lx.peek()
	switch r {
	case '\n':
		lx.advance()
		lx.emit(start, TokenNewline, 0)
		lx.lineHasContent = false
		return
	case '\r':
		lx.advance()
		if lx.peek() == '\n' {
			lx.advance()
		}
		lx.emit(start, TokenNewline, 0)
		lx.lineHasContent = false
		return
	case ' ', '\t':
		lx.scanWhitespace(start)
		return
	case '#':
		count := lx.scanRun('#', maxHeadingLevel)
		lx.emit(start, TokenHash, count)
	case '*':
		lx.scanDelimiterRun(start, '*', TokenAsterisk)
	case '_':
		lx.scanDelimiterRun(start, '_', TokenUnderscore)
	case '~':
		lx.scanDelimiterRun(start, '~', TokenTilde)
	case '`':
		count := lx.scanRun('`', maxBacktickRun)
		lx.trackFence(start, '`', count)
		lx.emit(start, TokenBacktick, count)
	case '[':
		lx.advance()
		lx.emit(start, TokenLeftBracket, 0)
	case ']':
		lx.advance()
		lx.emit(start, TokenRightBracket, 0)
	case '(':
		lx.advance()
		lx.emit(start, TokenLeftParen, 0)
	case ')':
		lx.advance()
		lx.emit(start, TokenRightParen, 0)
	case '!':
		lx.advance()
		lx.emit(start, TokenBang, 0)
	case '>':
		lx.advance()
		lx.emit(start, TokenGreaterThan, 0)
	case '-':
		lx.advance()
		lx.emit(start, TokenHyphen, 0)
	case '+':
		lx.advance()
		lx.emit(start, TokenPlus, 0)
	case '.':
		lx.advance()
		lx.emit(start, TokenDot, 0)
	case '|':
		lx.advance()
		lx.emit(start, TokenPipe, 0)
	case ':':
		lx.advance()
		lx.emit(start, TokenColon, 0)
	case '\\':
		lx.scanEscape(start)
	default:
		if r >= '0' && r <= '9' {
			lx.scanNumber(start)
			return
		}
		lx.scanText(start)
	}
	lx.lineHasContent = true
}

type lexMark struct {
	offset int
	line   int
	column int
}

func (lx *lexer) mark() lexMark {
	return lexMark{offset: lx.pos, line: lx.line, column: lx.column}
}

func (lx *lexer) emit(start lexMark, kind TokenKind, count int) {
	raw := lx.src[start.offset:lx.pos]
	lx.tokens = append(lx.tokens, Token{
		Kind:   kind,
		Raw:    raw,
		Text:   raw,
		Count:  count,
		Line:   start.line,
		Column: start.column,
		Offset: start.offset,
	})
}

func (lx *lexer) peek() rune {
	if lx.pos >= len(lx.src) {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(lx.src[lx.pos:])
	return r
}

// prevRune decodes the rune immediately before the given offset, or 0 at the
// start of input.
func (lx *lexer) prevRune(offset int) rune {
	if offset <= 0 {
		return 0
	}
	r, _ := utf8.DecodeLastRuneInString(lx.src[:offset])
	return r
}

func (lx *lexer) nextRune() rune {
	if lx.pos >= len(lx.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(lx.src[lx.pos:])
	return r
}

func (lx *lexer) advance() rune {
	if lx.pos >= len(lx.src) {
		return 0
	}
	r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
	lx.pos += size
	if r == '\n' {
		lx.line++
		lx.column = 1
	} else {
		lx.column++
	}
	return r
}

func (lx *lexer) scanRun(ch rune, max int) int {
	count := 0
	for lx.peek() == ch && count < max {
		lx.advance()
		count++
	}
	return count
}

func (lx *lexer) scanWhitespace(start lexMark) {
	for {
		r := lx.peek()
		if r != ' ' && r != '\t' {
			break
		}
		lx.advance()
	}
	lx.emit(start, TokenWhitespace, 0)
}

// scanDelimiterRun reads an emphasis or strikethrough delimiter run and
// records the flanking test: a run can open when followed by non-whitespace
// and not preceded by an alphanumeric, and can close when preceded by
// non-whitespace and not followed by an alphanumeric. Runs that can do
// neither fall through to literal text in the parser.
func (lx *lexer) scanDelimiterRun(start lexMark, ch rune, kind TokenKind) {
	count := lx.scanRun(ch, maxDelimiterRun)
	if ch == '~' {
		lx.trackFence(start, '~', count)
	}
	prev := lx.prevRune(start.offset)
	next := lx.nextRune()
	tok := Token{
		Kind:     kind,
		Raw:      lx.src[start.offset:lx.pos],
		Count:    count,
		Line:     start.line,
		Column:   start.column,
		Offset:   start.offset,
		CanOpen:  next != 0 && !unicode.IsSpace(next) && !isAlphanumeric(prev),
		CanClose: prev != 0 && !unicode.IsSpace(prev) && !isAlphanumeric(next),
	}
	tok.Text = tok.Raw
	lx.tokens = append(lx.tokens, tok)
}

func (lx *lexer) trackFence(start lexMark, ch rune, count int) {
	if count < fenceMinimumRun {
		return
	}
	if lx.inFence {
		if ch == lx.fenceChar && count >= lx.fenceCount && !lx.lineHasContent {
			lx.inFence = false
		}
		return
	}
	if !lx.lineHasContent {
		lx.inFence = true
		lx.fenceChar = ch
		lx.fenceCount = count
		lx.fenceLine = start.line
		lx.fenceColumn = start.column
	}
}

func (lx *lexer) scanNumber(start lexMark) {
	digits := 0
	for {
		r := lx.peek()
		if r < '0' || r > '9' {
			break
		}
		lx.advance()
		digits++
	}
	raw := lx.src[start.offset:lx.pos]
	if digits > maxNumberDigits {
		// Too large for a list marker; keep it as plain text.
		lx.tokens = append(lx.tokens, Token{
			Kind: TokenText, Raw: raw, Text: raw,
			Line: start.line, Column: start.column, Offset: start.offset,
		})
		lx.lineHasContent = true
		return
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		value = 0
	}
	lx.tokens = append(lx.tokens, Token{
		Kind: TokenNumber, Raw: raw, Text: raw, Count: value,
		Line: start.line, Column: start.column, Offset: start.offset,
	})
	lx.lineHasContent = true
}

// scanEscape handles backslash escapes. ASCII punctuation is escapable and
// yields a literal text token whose display form drops the backslash. Any
// other escape keeps both characters and surfaces an InvalidEscape
// diagnostic; nothing is dropped.
func (lx *lexer) scanEscape(start lexMark) {
	lx.advance()
	next := lx.peek()
	if next != utf8.RuneError && isASCIIPunct(next) {
		lx.advance()
		raw := lx.src[start.offset:lx.pos]
		lx.tokens = append(lx.tokens, Token{
			Kind: TokenText, Raw: raw, Text: raw[1:],
			Line: start.line, Column: start.column, Offset: start.offset,
		})
		return
	}
	lx.diags = append(lx.diags, Diagnostic{
		Err:    &LexError{Kind: LexInvalidEscape, Line: start.line, Column: start.column},
		Line:   start.line,
		Column: start.column,
	})
	raw := lx.src[start.offset:lx.pos]
	lx.tokens = append(lx.tokens, Token{
		Kind: TokenText, Raw: raw, Text: raw,
		Line: start.line, Column: start.column, Offset: start.offset,
	})
}

func (lx *lexer) scanText(start lexMark) {
	lx.advance()
	for {
		r := lx.peek()
		if r == utf8.RuneError || isTextBoundary(r) {
			break
		}
		lx.advance()
	}
	raw := lx.src[start.offset:lx.pos]
	kind := TokenText
	if isAutolink(raw) {
		kind = TokenURL
	}
	lx.tokens = append(lx.tokens, Token{
		Kind: kind, Raw: raw, Text: raw,
		Line: start.line, Column: start.column, Offset: start.offset,
	})
}

func isTextBoundary(r rune) bool {
	switch r {
	case '\n', '\r', ' ', '\t', '#', '*', '`', '_', '~', '[', ']', '(', ')', '!', '>', '-', '|', '+', '\\':
		return true
	}
	return false
}

func isAutolink(word string) bool {
	return strings.HasPrefix(word, "http://") ||
		strings.HasPrefix(word, "https://") ||
		strings.HasPrefix(word, "ftp://") ||
		strings.HasPrefix(word, "mailto:")
}

func isAlphanumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isASCIIPunct(r rune) bool {
	switch {
	case r >= '!' && r <= '/':
		return true
	case r >= ':' && r <= '@':
		return true
	case r >= '[' && r <= '`':
		return true
	case r >= '{' && r <= '~':
		return true
	}
	return false
}
