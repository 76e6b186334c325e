package mdt

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

const (
	darkHighlightStyle  = "monokai"
	lightHighlightStyle = "github"
)

// highlightCode tokenizes a code block with chroma and styles each token on
// the code_block background. Returns ok=false when highlighting is disabled
// or no grammar matches the language tag; the caller falls back to plain
// code styling. A missing grammar is reported as a diagnostic, never a
// failure.
func (r *renderer) highlightCode(b *CodeBlock) ([][]Fragment, bool) {
	if !r.cfg.highlight || b.Language == "" {
		return nil, false
	}
	lexer := lexers.Get(b.Language)
	if lexer == nil {
		sp := b.Span()
		r.diags = append(r.diags, Diagnostic{
			Err:    &RenderError{Kind: RenderUnsupportedHighlightLanguage, Language: b.Language},
			Line:   sp.Line,
			Column: sp.Column,
		})
		return nil, false
	}
	lexer = chroma.Coalesce(lexer)

	styleName := r.cfg.highlightStyle
	if styleName == "" {
		styleName = lightHighlightStyle
		if r.theme.IsDark() {
			styleName = darkHighlightStyle
		}
	}
	chromaStyle := styles.Get(styleName)
	if chromaStyle == nil {
		chromaStyle = styles.Fallback
	}

	code := strings.TrimSuffix(b.Code, "\n")
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return nil, false
	}

	base := r.codeStyle()
	var lines [][]Fragment
	var cur []Fragment
	for tok := iterator(); tok != chroma.EOF; tok = iterator() {
		style := base
		entry := chromaStyle.Get(tok.Type)
		if entry.Colour.IsSet() {
			style.Foreground = Color{R: entry.Colour.Red(), G: entry.Colour.Green(), B: entry.Colour.Blue()}
		}
		if entry.Bold == chroma.Yes {
			style.Bold = true
		}
		if entry.Italic == chroma.Yes {
			style.Italic = true
		}
		// Token values may span lines; split so each output line stays a
		// self-contained fragment list.
		parts := strings.Split(tok.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				lines = append(lines, cur)
				cur = nil
			}
			if part != "" {
				cur = append(cur, Fragment{Text: part, Style: style})
			}
		}
	}
	lines = append(lines, cur)
	// Some grammars append a trailing newline to their input; drop the
	// resulting empty line so highlighted and plain output line up.
	if want := len(b.Lines()); len(lines) == want+1 && len(lines[want]) == 0 {
		lines = lines[:want]
	}
	return lines, true
}
