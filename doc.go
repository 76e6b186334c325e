// Package mdt renders Markdown as styled, navigable terminal output.
//
// The pipeline is a single synchronous pass per document: a lexer produces
// a position-tagged token stream, a parser builds a block/inline AST from
// it, and a renderer walks the AST into width-wrapped, theme-styled lines.
// Malformed input degrades to literal text wherever the ambiguity is
// content-level; every degrade path surfaces a Diagnostic alongside the
// partial result.
//
// Core properties:
//   - Token raw slices partition the source; re-tokenizing their
//     concatenation reproduces the input
//   - Greedy word wrap that never splits mid-word
//   - Theme-driven styling over a fixed set of eleven roles
//   - Optional chroma syntax highlighting for fenced code blocks
//
// Example:
//
//	theme := mdt.DefaultTheme()
//	lines, diags, err := mdt.RenderDocument(ctx, source, theme, 80)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, d := range diags {
//		fmt.Fprintln(os.Stderr, d)
//	}
//	fmt.Print(mdt.RenderANSI(lines, mdt.ANSIOptions{OSC8: mdt.DetectOSC8Support()}))
//
// Documents are independent: any number of render passes may run
// concurrently as long as each owns its own token stream, AST and output
// lines. Themes are immutable and shared freely.
package mdt
