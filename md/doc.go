// Package md parses CommonMark-flavored markdown (with GitHub autolinks,
// math spans, task lists, footnotes, header labels and tables) into a
// fully-positioned AST.
//
// Every node records its start/end line and column in the virgin
// (original, pre-normalization) source, so downstream tools - editors,
// linters, structural diffing, live previewers - can map AST nodes back
// to bytes in the input.
//
// # Usage
//
// Parse a file once and walk the resulting document:
//
//	p := md.NewParser()
//	doc := p.Parse("README.md", true)
//	for _, it := range doc.Items {
//	    // ...
//	}
//
// In-memory content is parsed with ParseContent or ParseReader.
//
// # Design Principles
//
//   - Parsing never fails: malformed constructs degrade to plain text,
//     missing files degrade to an empty document with a single anchor
//   - Positions are virgin: tab expansion, entity replacement and
//     backslash removal are tracked edits, never silent rewrites
//   - Two passes: reference definitions and footnotes are collected
//     first, so forward references always resolve
package md
