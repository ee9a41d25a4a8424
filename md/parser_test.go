package md

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
)

// =============================================================================
// End-to-end scenarios
// =============================================================================

func TestScenario_SoftBreakParagraph(t *testing.T) {
	items := parseBody(t, "foo\nbar\n")

	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	p := items[0].(*Paragraph)
	texts := textsOf(p)
	if len(texts) != 2 || texts[0].Data != "foo" || texts[1].Data != "bar" {
		t.Fatalf("texts = %v", texts)
	}
}

func TestScenario_HeadingWithLabel(t *testing.T) {
	doc := NewParser().ParseContent("# Hi\n", "", "test.md")

	var h *Heading
	for _, it := range doc.Items {
		if hh, ok := it.(*Heading); ok {
			h = hh
		}
	}
	if h == nil {
		t.Fatal("no heading")
	}
	if h.Level != 1 {
		t.Errorf("level = %d", h.Level)
	}
	if h.Label != "#hi/test.md" {
		t.Errorf("label = %q, want %q", h.Label, "#hi/test.md")
	}
	if got, ok := doc.LabeledHeading(h.Label); !ok || got != h {
		t.Error("heading must be registered under its label")
	}
	texts := textsOf(h.P)
	if len(texts) != 1 || texts[0].Data != "Hi" {
		t.Errorf("heading text = %v", texts)
	}
}

func TestScenario_BlockquoteWithList(t *testing.T) {
	items := parseBody(t, "> - a\n> - b\n")

	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	bq := items[0].(*Blockquote)
	if len(bq.Items) != 1 {
		t.Fatalf("blockquote items = %v", bq.Items)
	}
	list := bq.Items[0].(*List)
	if len(list.Items) != 2 {
		t.Fatalf("got %d list items, want 2", len(list.Items))
	}
	for i, want := range []string{"a", "b"} {
		li := list.Items[i].(*ListItem)
		if len(li.Items) != 1 {
			t.Fatalf("item %d children = %v", i, li.Items)
		}
		p := li.Items[0].(*Paragraph)
		texts := textsOf(p)
		if len(texts) != 1 || texts[0].Data != want {
			t.Errorf("item %d text = %v, want %q", i, texts, want)
		}
	}
}

func TestScenario_FencedCode(t *testing.T) {
	items := parseBody(t, "```py\nx=1\n```\n")

	c := items[0].(*Code)
	if !c.Fenced || c.Syntax != "py" || c.Text != "x=1" {
		t.Fatalf("code = %#v", c)
	}
	if !c.StartDelim.IsSet() || !c.EndDelim.IsSet() || !c.SyntaxPos.IsSet() {
		t.Error("fence and syntax positions must be set")
	}
	if c.SyntaxPos.StartCol != 3 {
		t.Errorf("syntax starts after the fence, got col %d", c.SyntaxPos.StartCol)
	}
}

func TestScenario_ReferenceLink(t *testing.T) {
	doc := NewParser().ParseContent("[x]: /u\n[x]\n", "", "test.md")

	def, ok := doc.LabeledLink("#X/test.md")
	if !ok || def.URL != "/u" {
		t.Fatalf("labeledLinks missing: %v", def)
	}

	var link *Link
	for _, it := range doc.Items {
		if p, okP := it.(*Paragraph); okP {
			for _, inner := range p.Items {
				if l, okL := inner.(*Link); okL {
					link = l
				}
			}
		}
	}
	if link == nil {
		t.Fatal("shortcut reference did not resolve")
	}
	if link.Text != "x" || link.URL != "/u" {
		t.Errorf("link = %+v", link)
	}
}

func TestScenario_TabExpansionPositions(t *testing.T) {
	items := parseBody(t, "a\t b\n")

	p := items[0].(*Paragraph)
	texts := textsOf(p)
	if len(texts) != 1 {
		t.Fatalf("texts = %v", texts)
	}
	tx := texts[0]
	if tx.StartCol != 0 {
		t.Errorf("start col = %d, want 0", tx.StartCol)
	}
	// The b sits at virgin column 3 (a, tab, space, b).
	if tx.EndCol != 3 {
		t.Errorf("end col = %d, want the pre-expansion column 3", tx.EndCol)
	}
}

// =============================================================================
// Boundary behaviors
// =============================================================================

func TestParse_EmptyInput(t *testing.T) {
	doc := NewParser().ParseContent("", "", "test.md")

	if len(doc.Items) != 1 || doc.Items[0].Type() != ItemTypeAnchor {
		t.Fatalf("empty input: items = %v", doc.Items)
	}
	if doc.Footnotes().Len() != 0 || doc.LabeledLinksCount() != 0 {
		t.Error("empty input must produce empty maps")
	}
}

func TestParse_BareHashIsParagraph(t *testing.T) {
	items := parseBody(t, "#\n")

	p, ok := items[0].(*Paragraph)
	if !ok {
		t.Fatalf("want paragraph, got %#v", items[0])
	}
	texts := textsOf(p)
	if len(texts) != 1 || texts[0].Data != "#" {
		t.Errorf("texts = %v", texts)
	}
}

func TestParse_HashSpaceIsEmptyHeading(t *testing.T) {
	items := parseBody(t, "# \n")

	h, ok := items[0].(*Heading)
	if !ok {
		t.Fatalf("want heading, got %#v", items[0])
	}
	if h.Level != 1 || len(h.P.Items) != 0 {
		t.Errorf("heading = %+v", h)
	}
	if h.IsLabeled() {
		t.Error("an empty heading carries no label")
	}
}

// =============================================================================
// Universal properties
// =============================================================================

// envelopeCheck walks the tree and verifies every child lies within
// its parent's position envelope.
func envelopeCheck(t *testing.T, parent *Position, items []Item) {
	t.Helper()

	for _, it := range items {
		pos := it.Pos()
		if parent != nil && pos.IsSet() && parent.IsSet() {
			if !parent.Contains(pos) {
				t.Errorf("child %v at %+v escapes parent %+v", it.Type(), *pos, *parent)
			}
		}
		switch v := it.(type) {
		case *Paragraph:
			envelopeCheck(t, pos, v.Items)
		case *Blockquote:
			envelopeCheck(t, pos, v.Items)
		case *List:
			envelopeCheck(t, pos, v.Items)
		case *ListItem:
			envelopeCheck(t, pos, v.Items)
		case *Heading:
			if v.P != nil {
				envelopeCheck(t, pos, v.P.Items)
			}
		}
	}
}

func TestProperty_PositionEnvelope(t *testing.T) {
	content := "# Title\n\npara *styled* text\n\n> - one\n> - two\n\n" +
		"```go\ncode\n```\n\n| a |\n|---|\n"
	doc := NewParser().ParseContent(content, "", "test.md")

	envelopeCheck(t, nil, doc.Items)
}

func TestProperty_VirginRoundTrip(t *testing.T) {
	content := "plain *styled* `code`\nsecond line here\n"
	lines := strings.Split(content, "\n")
	doc := NewParser().ParseContent(content, "", "test.md")

	var walk func(items []Item)
	walk = func(items []Item) {
		for _, it := range items {
			if tx, ok := it.(*Text); ok {
				line := lines[tx.StartLine]
				if tx.StartCol >= len(line) || tx.EndCol >= len(line) {
					t.Errorf("text %q columns out of range: %+v", tx.Data, tx.Position)
				}
			}
			if p, ok := it.(*Paragraph); ok {
				walk(p.Items)
			}
		}
	}
	walk(doc.Items)
}

func TestProperty_Determinism(t *testing.T) {
	content := "# H\n\n[r]: /u\n\ntext [r] and *more*\n\n- l1\n- l2\n"

	a := NewParser().ParseContent(content, "", "test.md")
	b := NewParser().ParseContent(content, "", "test.md")

	if len(a.Items) != len(b.Items) {
		t.Fatalf("item counts differ: %d vs %d", len(a.Items), len(b.Items))
	}
	for i := range a.Items {
		if a.Items[i].Type() != b.Items[i].Type() {
			t.Errorf("item %d types differ", i)
		}
	}
	ka, kb := a.Footnotes().Keys(), b.Footnotes().Keys()
	if len(ka) != len(kb) {
		t.Error("footnote maps differ")
	}
}

func TestProperty_FootnoteOrderStable(t *testing.T) {
	content := "[^z]: last letter\n\n[^a]: first letter\n\n[^m]: middle\n"
	doc := NewParser().ParseContent(content, "", "test.md")

	keys := doc.Footnotes().Keys()
	want := []string{"#^Z/test.md", "#^A/test.md", "#^M/test.md"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key %d = %q, want %q (definition order)", i, keys[i], want[i])
		}
	}
}

// =============================================================================
// Files and recursion
// =============================================================================

func TestParse_MissingFileYieldsAnchorOnly(t *testing.T) {
	p := NewParser(WithFs(afero.NewMemMapFs()))
	doc := p.Parse("/nope/missing.md", false)

	if len(doc.Items) != 1 || doc.Items[0].Type() != ItemTypeAnchor {
		t.Fatalf("items = %v", doc.Items)
	}
}

func TestParse_FileAnchorLabel(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/docs/a.md", []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewParser(WithFs(fs))
	doc := p.Parse("/docs/a.md", false)

	anchor, ok := doc.Items[0].(*Anchor)
	if !ok {
		t.Fatalf("first item = %#v", doc.Items[0])
	}
	if anchor.Label != "/docs/a.md" {
		t.Errorf("anchor label = %q", anchor.Label)
	}
}

func TestParse_RecursiveWithCycle(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/docs/a.md", []byte("[to b](b.md)\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, "/docs/b.md", []byte("[back](a.md)\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewParser(WithFs(fs))
	doc := p.Parse("/docs/a.md", true)

	var anchors, breaks int
	for _, it := range doc.Items {
		switch it.Type() {
		case ItemTypeAnchor:
			anchors++
		case ItemTypePageBreak:
			breaks++
		}
	}
	if anchors != 2 {
		t.Errorf("got %d anchors, want one per file", anchors)
	}
	if breaks != 1 {
		t.Errorf("got %d page breaks, want 1", breaks)
	}
}

func TestParse_NonRecursiveSkipsLinkedFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/docs/a.md", []byte("[to b](b.md)\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, "/docs/b.md", []byte("unseen\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewParser(WithFs(fs))
	doc := p.Parse("/docs/a.md", false)

	for _, it := range doc.Items {
		if it.Type() == ItemTypePageBreak {
			t.Fatal("non-recursive parse must not concatenate files")
		}
	}
}

func TestLocalFileTarget(t *testing.T) {
	tests := []struct {
		url  string
		ok   bool
		want string
	}{
		{"other.md", true, "/w/other.md"},
		{"sub/deep.markdown", true, "/w/sub/deep.markdown"},
		{"doc.md#section", true, "/w/doc.md"},
		{"https://x.com/a.md", false, ""},
		{"#anchor", false, ""},
		{"mailto:a@b.com", false, ""},
		{"image.png", false, ""},
	}

	for _, tt := range tests {
		got, ok := localFileTarget(tt.url, "/w", DefaultExtensions)
		if ok != tt.ok {
			t.Errorf("localFileTarget(%q) ok = %v, want %v", tt.url, ok, tt.ok)

			continue
		}
		if ok && got != tt.want {
			t.Errorf("localFileTarget(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestParse_ConcurrentDocuments(t *testing.T) {
	content := "# Doc\n\nsome *text* here\n"
	done := make(chan *Document, 4)

	for i := 0; i < 4; i++ {
		go func() {
			done <- NewParser().ParseContent(content, "", "test.md")
		}()
	}
	for i := 0; i < 4; i++ {
		doc := <-done
		if len(doc.Items) != 3 {
			t.Errorf("concurrent parse items = %d", len(doc.Items))
		}
	}
}
