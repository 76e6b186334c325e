package mdt

import "context"

// ParseDocument runs the front half of the pipeline: front matter
// stripping, tokenization and parsing. Diagnostics from both stages are
// merged in source order.
func ParseDocument(source string, opts ...ParseOption) (*Document, []Diagnostic, error) {
	body := StripFrontMatter(source)
	tokens, diags, err := Tokenize(body)
	if err != nil {
		return nil, nil, err
	}
	doc, parseDiags, err := Parse(tokens, opts...)
	diags = append(diags, parseDiags...)
	if err != nil {
		return nil, diags, err
	}
	return doc, diags, nil
}

// RenderDocument runs the whole pipeline: source text in, styled lines out.
// Width is validated here so the renderer can assume it; the theme is
// validated by Render before any output is produced.
func RenderDocument(ctx context.Context, source string, theme *Theme, width int, opts ...RenderOption) ([]StyledLine, []Diagnostic, error) {
	if err := ValidateWidth(width); err != nil {
		return nil, nil, err
	}
	doc, diags, err := ParseDocument(source)
	if err != nil {
		return nil, diags, err
	}
	lines, renderDiags, err := Render(ctx, doc, theme, width, opts...)
	diags = append(diags, renderDiags...)
	if err != nil {
		return lines, diags, err
	}
	return lines, diags, nil
}
