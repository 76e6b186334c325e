package mdt

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
)

// wrapAtoms greedily wraps flow atoms at the renderer's width. Words never
// split mid-word: a single token wider than the available space goes alone
// on its own line. Wrapped lines carry the continuation flag; hard breaks
// start semantic lines.
func (r *renderer) wrapAtoms(atoms []flowAtom, pfx prefix) {
	w := &wrapper{r: r, pfx: pfx, width: r.width}
	for _, atom := range atoms {
		if atom.hardBreak {
			w.flushWord()
			w.endLine(false)
			continue
		}
		w.writeFragment(atom.frag)
	}
	w.flushWord()
	w.finish()
}

type wrapper struct {
	r     *renderer
	pfx   prefix
	width int

	line      []Fragment
	lineWidth int
	word      []Fragment
	wordWidth int

	pendingSpace bool
	spaceStyle   Style

	emitted         int
	curContinuation bool
}

func (w *wrapper) avail() int {
	var prefixWidth int
	frags := w.pfx.rest
	if w.emitted == 0 {
		frags = w.pfx.first
	}
	for _, f := range frags {
		prefixWidth += runewidth.StringWidth(f.Text)
	}
	avail := w.width - prefixWidth
	if avail < 1 {
		avail = 1
	}
	return avail
}

func (w *wrapper) writeFragment(frag Fragment) {
	text := frag.Text
	for text != "" {
		if text[0] == ' ' {
			i := 0
			for i < len(text) && text[i] == ' ' {
				i++
			}
			w.flushWord()
			w.pendingSpace = true
			w.spaceStyle = frag.Style
			text = text[i:]
			continue
		}
		end := strings.IndexByte(text, ' ')
		if end == -1 {
			end = len(text)
		}
		w.appendWordPiece(text[:end], frag)
		text = text[end:]
	}
}

func (w *wrapper) appendWordPiece(piece string, frag Fragment) {
	if len(w.word) > 0 {
		last := &w.word[len(w.word)-1]
		if last.Style == frag.Style && last.LinkURL == frag.LinkURL {
			last.Text += piece
			w.wordWidth += runewidth.StringWidth(piece)
			return
		}
	}
	w.word = append(w.word, Fragment{Text: piece, Style: frag.Style, LinkURL: frag.LinkURL})
	w.wordWidth += runewidth.StringWidth(piece)
}

// flushWord places the pending word, wrapping first when it will not fit on
// the current line. A word wider than the whole line still goes down in one
// piece.
func (w *wrapper) flushWord() {
	if w.wordWidth == 0 {
		w.word = w.word[:0]
		return
	}
	if w.lineWidth > 0 {
		need := w.wordWidth
		if w.pendingSpace {
			need++
		}
		if w.lineWidth+need > w.avail() {
			w.endLine(true)
		} else if w.pendingSpace {
			w.line = append(w.line, Fragment{Text: " ", Style: w.spaceStyle})
			w.lineWidth++
		}
	}
	w.line = append(w.line, w.word...)
	w.lineWidth += w.wordWidth
	w.word = nil
	w.wordWidth = 0
	w.pendingSpace = false
}

// endLine emits the current line. nextIsWrap marks whether the following
// line, if any, is a visual continuation.
func (w *wrapper) endLine(nextIsWrap bool) {
	var out []Fragment
	if w.emitted == 0 {
		out = append(out, w.pfx.first...)
	} else {
		out = append(out, w.pfx.rest...)
	}
	out = append(out, w.line...)
	w.r.lines = append(w.r.lines, StyledLine{
		Fragments:    out,
		Block:        w.r.block,
		Continuation: w.curContinuation,
	})
	w.emitted++
	w.curContinuation = nextIsWrap
	w.line = nil
	w.lineWidth = 0
	w.pendingSpace = false
}

// finish emits the trailing line. Constructs with no content (an empty list
// item) still produce their marker line.
func (w *wrapper) finish() {
	if w.lineWidth > 0 || w.emitted == 0 {
		w.endLine(false)
	}
}

// truncateWithEllipsis shortens text to the limit, reserving one cell for
// the ellipsis.
func truncateWithEllipsis(text string, limit int) string {
	if ansi.PrintableRuneWidth(text) <= limit {
		return text
	}
	if limit <= 0 {
		return ""
	}
	if limit == 1 {
		return "…"
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "…"
}

// FitURL shortens a URL for display, dropping the scheme before resorting
// to truncation. Presentation layers use it for status lines; layout never
// truncates.
func FitURL(url string, limit int) string {
	if ansi.PrintableRuneWidth(url) <= limit {
		return url
	}
	if idx := strings.Index(url, "://"); idx != -1 {
		trimmed := url[idx+3:]
		if ansi.PrintableRuneWidth(trimmed) <= limit {
			return trimmed
		}
	}
	return truncateWithEllipsis(url, limit)
}
