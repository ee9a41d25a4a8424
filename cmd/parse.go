// This file contains the parse command: parse markdown files and print
// their positioned AST as a tree or as JSON.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/igormironchik/md4qt/internal/mderrs"
	"github.com/igormironchik/md4qt/md"
)

// ParseCmd parses one or more markdown files and prints the AST.
//
// Output formats:
//   - Default: an indented tree with one node per line, each carrying
//     its virgin start/end line and column
//   - --json: machine-readable JSON for tooling
//
// Examples:
//
//	md4qt parse README.md
//	md4qt parse --recursive docs/index.md
//	md4qt parse --json spec.md | jq '.items[0]'
type ParseCmd struct {
	// Paths are the markdown files to parse.
	Paths []string `arg:"" name:"path" help:"Markdown files to parse"`

	// Recursive follows local markdown links and concatenates the
	// referenced documents, separated by page breaks.
	Recursive bool `help:"Follow local markdown links" short:"r"`

	// Ext overrides the extensions recursive mode follows.
	Ext []string `help:"Extensions followed in recursive mode" default:"md,markdown"`

	// JSON enables JSON output format for scripting and automation.
	JSON bool `help:"Output the AST as JSON"`

	// Copy also places the output on the system clipboard.
	Copy bool `help:"Copy the output to the clipboard"`
}

// Run executes the parse command.
func (c *ParseCmd) Run() error {
	var out strings.Builder

	for _, path := range c.Paths {
		if _, err := os.Stat(path); err != nil {
			return &mderrs.InputNotFoundError{Path: path, Err: err}
		}

		doc := md.NewParser().Parse(path, c.Recursive, c.Ext...)

		if c.JSON {
			data, err := marshalDocument(doc)
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			out.Write(data)
			out.WriteByte('\n')

			continue
		}

		out.WriteString(renderTree(doc, colorEnabled))
	}

	fmt.Print(out.String())

	if c.Copy {
		if err := clipboard.WriteAll(out.String()); err != nil {
			return &mderrs.ClipboardError{Err: err}
		}
	}

	return nil
}

// marshalDocument converts a document to indented JSON.
func marshalDocument(doc *md.Document) ([]byte, error) {
	root := map[string]interface{}{
		"type":  doc.Type().String(),
		"items": jsonItems(doc.Items),
	}

	footnotes := make([]interface{}, 0, doc.Footnotes().Len())
	for _, key := range doc.Footnotes().Keys() {
		fn, _ := doc.Footnotes().Get(key)
		footnotes = append(footnotes, map[string]interface{}{
			"id":    key,
			"items": jsonItems(fn.Items),
		})
	}
	root["footnotes"] = footnotes

	return json.MarshalIndent(root, "", "  ")
}

// jsonItems converts items to JSON-friendly maps.
func jsonItems(items []md.Item) []interface{} {
	out := make([]interface{}, 0, len(items))
	for _, it := range items {
		out = append(out, jsonItem(it))
	}

	return out
}

// jsonItem flattens one item: type, position, type-specific payload
// and children.
//
//nolint:revive // cyclomatic - one case per item type
func jsonItem(it md.Item) map[string]interface{} {
	pos := it.Pos()
	node := map[string]interface{}{
		"type": it.Type().String(),
		"pos": map[string]int{
			"startLine": pos.StartLine,
			"startCol":  pos.StartCol,
			"endLine":   pos.EndLine,
			"endCol":    pos.EndCol,
		},
	}

	switch v := it.(type) {
	case *md.Text:
		node["text"] = v.Data
		node["bold"] = v.Opts&md.BoldText != 0
		node["italic"] = v.Opts&md.ItalicText != 0
		node["strikethrough"] = v.Opts&md.StrikethroughText != 0
	case *md.Code:
		node["text"] = v.Text
		node["inline"] = v.Inline
		node["fenced"] = v.Fenced
		if v.Syntax != "" {
			node["syntax"] = v.Syntax
		}
	case *md.Math:
		node["expr"] = v.Expr
		node["inline"] = v.Inline
	case *md.Link:
		node["text"] = v.Text
		node["url"] = v.URL
	case *md.Image:
		node["text"] = v.Text
		node["url"] = v.URL
	case *md.FootnoteRef:
		node["id"] = v.ID
	case *md.RawHTML:
		node["text"] = v.Text
		node["freeTag"] = v.FreeTag
	case *md.Anchor:
		node["label"] = v.Label
	case *md.Heading:
		node["level"] = v.Level
		if v.IsLabeled() {
			node["label"] = v.Label
		}
	case *md.ListItem:
		node["ordered"] = v.ListType == md.Ordered
		if v.ListType == md.Ordered {
			node["startNumber"] = v.StartNumber
		}
		if v.TaskList {
			node["checked"] = v.Checked
		}
	case *md.Table:
		aligns := make([]string, 0, len(v.Alignments))
		for _, a := range v.Alignments {
			switch a {
			case md.AlignCenter:
				aligns = append(aligns, "center")
			case md.AlignRight:
				aligns = append(aligns, "right")
			default:
				aligns = append(aligns, "left")
			}
		}
		node["alignments"] = aligns
	}

	if children := childrenOf(it); len(children) > 0 {
		node["items"] = jsonItems(children)
	}

	return node
}
