package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/igormironchik/md4qt/internal/theme"
	"github.com/igormironchik/md4qt/md"
)

// previewLimit caps literal text shown next to a node.
const previewLimit = 40

// renderTree renders the document as an indented tree, one node per
// line, with virgin positions.
func renderTree(doc *md.Document, colored bool) string {
	var b strings.Builder
	st := newTreeStyles(colored)

	b.WriteString(st.block.Render("Document"))
	b.WriteByte('\n')
	renderItems(&b, doc.Items, "", st)

	if doc.Footnotes().Len() > 0 {
		b.WriteString(st.block.Render("Footnotes"))
		b.WriteByte('\n')
		for _, key := range doc.Footnotes().Keys() {
			fn, _ := doc.Footnotes().Get(key)
			b.WriteString("└─ ")
			b.WriteString(st.attr.Render(key))
			b.WriteByte('\n')
			renderItems(&b, fn.Items, "   ", st)
		}
	}

	return b.String()
}

// treeStyles bundles the lipgloss styles used by the printer.
type treeStyles struct {
	block   lipgloss.Style
	inline  lipgloss.Style
	literal lipgloss.Style
	attr    lipgloss.Style
	muted   lipgloss.Style
}

func newTreeStyles(colored bool) treeStyles {
	if !colored {
		plain := lipgloss.NewStyle()

		return treeStyles{plain, plain, plain, plain, plain}
	}

	th := theme.Current()

	return treeStyles{
		block:   lipgloss.NewStyle().Foreground(th.Primary).Bold(true),
		inline:  lipgloss.NewStyle().Foreground(th.Secondary),
		literal: lipgloss.NewStyle().Foreground(th.Literal),
		attr:    lipgloss.NewStyle().Foreground(th.Attr),
		muted:   lipgloss.NewStyle().Foreground(th.Muted),
	}
}

// renderItems renders a slice of items under the given prefix.
func renderItems(b *strings.Builder, items []md.Item, prefix string, st treeStyles) {
	for i, it := range items {
		last := i == len(items)-1
		branch := "├─ "
		childPrefix := prefix + "│  "
		if last {
			branch = "└─ "
			childPrefix = prefix + "   "
		}

		b.WriteString(prefix)
		b.WriteString(st.muted.Render(branch))
		b.WriteString(nodeLine(it, st))
		b.WriteByte('\n')

		renderItems(b, childrenOf(it), childPrefix, st)
	}
}

// nodeLine renders one node's label, payload preview and position.
//
//nolint:revive // cyclomatic - one case per item type
func nodeLine(it md.Item, st treeStyles) string {
	pos := it.Pos()
	posStr := st.muted.Render(fmt.Sprintf(" [%d:%d-%d:%d]",
		pos.StartLine, pos.StartCol, pos.EndLine, pos.EndCol))

	switch v := it.(type) {
	case *md.Text:
		return st.inline.Render("Text") + " " +
			st.literal.Render(preview(v.Data)) + styleSuffix(v.Opts, st) + posStr
	case *md.LineBreak:
		return st.inline.Render("LineBreak") + posStr
	case *md.Code:
		name := "CodeBlock"
		if v.Inline {
			name = "CodeSpan"
		}
		out := st.inline.Render(name) + " " + st.literal.Render(preview(v.Text))
		if v.Syntax != "" {
			out += " " + st.attr.Render("syntax="+v.Syntax)
		}

		return out + posStr
	case *md.Math:
		name := "MathDisplay"
		if v.Inline {
			name = "MathInline"
		}

		return st.inline.Render(name) + " " + st.literal.Render(preview(v.Expr)) + posStr
	case *md.Link:
		return st.inline.Render("Link") + " " + st.literal.Render(preview(v.Text)) +
			" " + st.attr.Render(v.URL) + posStr
	case *md.Image:
		return st.inline.Render("Image") + " " + st.literal.Render(preview(v.Text)) +
			" " + st.attr.Render(v.URL) + posStr
	case *md.FootnoteRef:
		return st.inline.Render("FootnoteRef") + " " + st.attr.Render(v.ID) + posStr
	case *md.RawHTML:
		return st.inline.Render("RawHTML") + " " + st.literal.Render(preview(v.Text)) + posStr
	case *md.Anchor:
		return st.block.Render("Anchor") + " " + st.attr.Render(v.Label)
	case *md.Paragraph:
		return st.block.Render("Paragraph") + posStr
	case *md.Heading:
		out := st.block.Render(fmt.Sprintf("Heading%d", v.Level))
		if v.IsLabeled() {
			out += " " + st.attr.Render(v.Label)
		}

		return out + posStr
	case *md.Blockquote:
		return st.block.Render("Blockquote") + posStr
	case *md.List:
		return st.block.Render("List") + posStr
	case *md.ListItem:
		out := st.block.Render("ListItem")
		if v.ListType == md.Ordered {
			out += " " + st.attr.Render(fmt.Sprintf("n=%d", v.StartNumber))
		}
		if v.TaskList {
			box := "[ ]"
			if v.Checked {
				box = "[x]"
			}
			out += " " + st.attr.Render(box)
		}

		return out + posStr
	case *md.Table:
		return st.block.Render("Table") +
			" " + st.attr.Render(fmt.Sprintf("cols=%d", len(v.Alignments))) + posStr
	case *md.TableRow:
		return st.block.Render("TableRow") + posStr
	case *md.TableCell:
		return st.block.Render("TableCell") + posStr
	case *md.Footnote:
		return st.block.Render("Footnote") + posStr
	case *md.HorizontalLine:
		return st.block.Render("HorizontalLine") + posStr
	case *md.PageBreak:
		return st.block.Render("PageBreak")
	default:
		return st.block.Render(it.Type().String()) + posStr
	}
}

// styleSuffix summarizes a text's style bits.
func styleSuffix(opts md.StyleOpts, st treeStyles) string {
	if opts == md.TextWithoutFormat {
		return ""
	}

	var parts []string
	if opts&md.BoldText != 0 {
		parts = append(parts, "bold")
	}
	if opts&md.ItalicText != 0 {
		parts = append(parts, "italic")
	}
	if opts&md.StrikethroughText != 0 {
		parts = append(parts, "strike")
	}

	return " " + st.attr.Render("("+strings.Join(parts, ",")+")")
}

// childrenOf returns the nested items of a block node.
func childrenOf(it md.Item) []md.Item {
	switch v := it.(type) {
	case *md.Paragraph:
		return v.Items
	case *md.Blockquote:
		return v.Items
	case *md.List:
		return v.Items
	case *md.ListItem:
		return v.Items
	case *md.Footnote:
		return v.Items
	case *md.Heading:
		if v.P != nil {
			return v.P.Items
		}
	case *md.Link:
		if v.P != nil {
			return v.P.Items
		}
	case *md.Table:
		out := make([]md.Item, 0, len(v.Rows))
		for _, r := range v.Rows {
			out = append(out, r)
		}

		return out
	case *md.TableRow:
		out := make([]md.Item, 0, len(v.Cells))
		for _, c := range v.Cells {
			out = append(out, c)
		}

		return out
	case *md.TableCell:
		return v.Items
	}

	return nil
}

// preview shortens literal text for one-line display.
func preview(s string) string {
	s = strings.ReplaceAll(s, "\n", "\\n")
	r := []rune(s)
	if len(r) > previewLimit {
		return "\"" + string(r[:previewLimit]) + "…\""
	}

	return "\"" + s + "\""
}
