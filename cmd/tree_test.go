package cmd

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/igormironchik/md4qt/md"
)

func TestRenderTree_BasicBlocks(t *testing.T) {
	doc := md.NewParser().ParseContent(
		"# Title\n\npara text\n\n- item\n",
		"", "test.md")

	out := renderTree(doc, false)

	assert.Contains(t, out, "Document")
	assert.Contains(t, out, "Heading1")
	assert.Contains(t, out, "Paragraph")
	assert.Contains(t, out, "List")
	assert.Contains(t, out, "ListItem")
	assert.Contains(t, out, `"para text"`)
}

func TestRenderTree_Positions(t *testing.T) {
	doc := md.NewParser().ParseContent("hello\n", "", "test.md")

	out := renderTree(doc, false)

	// The text spans line 0, columns 0 to 4.
	assert.Contains(t, out, "[0:0-0:4]")
}

func TestRenderTree_StyledText(t *testing.T) {
	doc := md.NewParser().ParseContent("**strong**\n", "", "test.md")

	out := renderTree(doc, false)

	assert.Contains(t, out, "(bold)")
}

func TestRenderTree_Footnotes(t *testing.T) {
	doc := md.NewParser().ParseContent("[^a]: body\n", "", "test.md")

	out := renderTree(doc, false)

	assert.Contains(t, out, "Footnotes")
	assert.Contains(t, out, "#^A/test.md")
}

func TestRenderTree_CodeBlock(t *testing.T) {
	doc := md.NewParser().ParseContent("```go\nx\n```\n", "", "test.md")

	out := renderTree(doc, false)

	assert.Contains(t, out, "CodeBlock")
	assert.Contains(t, out, "syntax=go")
}

func TestRenderTree_NoANSIWhenUncolored(t *testing.T) {
	doc := md.NewParser().ParseContent("# H\n", "", "test.md")

	out := renderTree(doc, false)

	assert.False(t, strings.Contains(out, "\x1b["),
		"plain output must not contain ANSI escapes")
}

func TestPreview_Truncates(t *testing.T) {
	long := strings.Repeat("x", 100)
	out := preview(long)

	assert.True(t, len(out) < 60)
	assert.Contains(t, out, "…")
}
