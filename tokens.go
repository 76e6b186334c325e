package mdt

// TokenKind identifies the lexical class of a Token.
type TokenKind uint8

const (
	// TokenText represents a run of literal characters.
	TokenText TokenKind = iota
	// TokenWhitespace represents a run of spaces and tabs.
	TokenWhitespace
	// TokenNewline represents a line ending (LF or CRLF).
	TokenNewline
	// TokenHash represents a heading marker run; Count holds the level (1-6).
	TokenHash
	// TokenAsterisk represents an asterisk delimiter run; Count is 1-3.
	TokenAsterisk
	// TokenUnderscore represents an underscore delimiter run; Count is 1-3.
	TokenUnderscore
	// TokenTilde represents a tilde run; Count of 2 marks strikethrough,
	// 3 a fence delimiter.
	TokenTilde
	// TokenBacktick represents a backtick run; Count of 3 or more marks a
	// fence delimiter.
	TokenBacktick
	// TokenLeftBracket marks the start of link or image text.
	TokenLeftBracket
	// TokenRightBracket marks the end of link or image text.
	TokenRightBracket
	// TokenLeftParen marks the start of a link target.
	TokenLeftParen
	// TokenRightParen marks the end of a link target.
	TokenRightParen
	// TokenBang precedes a bracket in image syntax.
	TokenBang
	// TokenGreaterThan represents a blockquote marker.
	TokenGreaterThan
	// TokenHyphen represents a single hyphen (list marker or rule component).
	TokenHyphen
	// TokenPlus represents a plus list marker.
	TokenPlus
	// TokenDot represents a dot after an ordered list number.
	TokenDot
	// TokenPipe represents a table cell separator.
	TokenPipe
	// TokenColon represents a table alignment colon.
	TokenColon
	// TokenNumber represents an integer; Count holds its value.
	TokenNumber
	// TokenURL represents a bare autolinked URL.
	TokenURL
	// TokenEOF is the synthetic end-of-input token.
	TokenEOF
)

var tokenKindNames = [...]string{
	TokenText:         "text",
	TokenWhitespace:   "whitespace",
	TokenNewline:      "newline",
	TokenHash:         "hash",
	TokenAsterisk:     "asterisk",
	TokenUnderscore:   "underscore",
	TokenTilde:        "tilde",
	TokenBacktick:     "backtick",
	TokenLeftBracket:  "left-bracket",
	TokenRightBracket: "right-bracket",
	TokenLeftParen:    "left-paren",
	TokenRightParen:   "right-paren",
	TokenBang:         "bang",
	TokenGreaterThan:  "greater-than",
	TokenHyphen:       "hyphen",
	TokenPlus:         "plus",
	TokenDot:          "dot",
	TokenPipe:         "pipe",
	TokenColon:        "colon",
	TokenNumber:       "number",
	TokenURL:          "url",
	TokenEOF:          "eof",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "invalid"
}

// Token is one lexical unit. Raw is the exact source slice the token was read
// from; concatenating Raw over a full token sequence reproduces the input.
// Text is the display form and differs from Raw only for escape sequences.
type Token struct {
	Kind   TokenKind
	Raw    string
	Text   string
	Count  int
	Line   int
	Column int
	Offset int

	// CanOpen and CanClose record the flanking test for delimiter runs so
	// emphasis matching in the parser never re-inspects source context.
	CanOpen  bool
	CanClose bool
}

// End returns the byte offset just past the token's raw slice.
func (t Token) End() int {
	return t.Offset + len(t.Raw)
}
