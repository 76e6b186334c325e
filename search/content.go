package search

import (
	"strings"

	"pkt.systems/mdt"
)

// Match is one content hit inside a document, tagged with the nearest
// heading above it so the UI can show where in the document it lives.
type Match struct {
	File    string
	Line    int
	Heading string
	Text    string
}

// SearchContent scans a document for the query, case-insensitively, line
// by line. Heading context comes from the parsed document rather than a
// regexp so that setext-free ATX headings with inline markup still report
// their plain text.
func SearchContent(file string, source string, query string) []Match {
	if query == "" {
		return nil
	}
	headings := headingLines(source)
	q := strings.ToLower(query)
	var matches []Match
	for i, line := range strings.Split(source, "\n") {
		if !strings.Contains(strings.ToLower(line), q) {
			continue
		}
		lineNo := i + 1
		matches = append(matches, Match{
			File:    file,
			Line:    lineNo,
			Heading: headingAbove(headings, lineNo),
			Text:    strings.TrimSpace(line),
		})
	}
	return matches
}

type headingLine struct {
	line int
	text string
}

func headingLines(source string) []headingLine {
	doc, _, err := mdt.ParseDocument(source)
	if err != nil {
		return nil
	}
	var out []headingLine
	for _, h := range doc.Headings() {
		out = append(out, headingLine{line: h.Span().Line, text: h.TextContent()})
	}
	return out
}

func headingAbove(headings []headingLine, line int) string {
	text := ""
	for _, h := range headings {
		if h.line > line {
			break
		}
		text = h.text
	}
	return text
}
