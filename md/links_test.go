package md

import (
	"testing"
)

// firstLink returns the first Link of the first paragraph.
func firstLink(t *testing.T, content string) *Link {
	t.Helper()

	p := firstParagraph(t, content)
	for _, it := range p.Items {
		if l, ok := it.(*Link); ok {
			return l
		}
	}
	t.Fatalf("no link in %v", p.Items)

	return nil
}

func TestLinks_Inline(t *testing.T) {
	l := firstLink(t, "see [docs](https://example.com) now\n")

	if l.Text != "docs" {
		t.Errorf("text = %q", l.Text)
	}
	if l.URL != "https://example.com" {
		t.Errorf("url = %q", l.URL)
	}
	if l.TextPos.StartCol != 5 || l.TextPos.EndCol != 8 {
		t.Errorf("text pos = %+v", l.TextPos)
	}
	if l.URLPos.StartCol != 11 {
		t.Errorf("url pos = %+v", l.URLPos)
	}
	if l.P == nil || len(l.P.Items) != 1 {
		t.Errorf("parsed label = %v", l.P)
	}
}

func TestLinks_InlineWithTitle(t *testing.T) {
	l := firstLink(t, "[a](/u \"title\")\n")

	if l.URL != "/u" {
		t.Errorf("url = %q", l.URL)
	}
}

func TestLinks_BracketedDestination(t *testing.T) {
	l := firstLink(t, "[a](</with space>)\n")

	if l.URL != "/with space" {
		t.Errorf("url = %q", l.URL)
	}
}

func TestLinks_UnclosedStaysLiteral(t *testing.T) {
	p := firstParagraph(t, "[foo](bar\n")

	for _, it := range p.Items {
		if it.Type() == ItemTypeLink {
			t.Fatal("malformed link must degrade to text")
		}
	}
	texts := textsOf(p)
	if len(texts) == 0 || texts[0].Data != "[foo](bar" {
		t.Errorf("texts = %v", texts)
	}
}

func TestLinks_FullReference(t *testing.T) {
	doc := NewParser().ParseContent("[ref]: /target\n\n[text][ref]\n", "", "test.md")

	def, ok := doc.LabeledLink("#REF/test.md")
	if !ok || def.URL != "/target" {
		t.Fatalf("definition missing: %v", def)
	}

	var link *Link
	for _, it := range doc.Items {
		p, okP := it.(*Paragraph)
		if !okP {
			continue
		}
		for _, inner := range p.Items {
			if l, okL := inner.(*Link); okL {
				link = l
			}
		}
	}
	if link == nil {
		t.Fatal("reference link not resolved")
	}
	if link.URL != "/target" || link.Text != "text" {
		t.Errorf("link = %+v", link)
	}
}

func TestLinks_CollapsedAndShortcut(t *testing.T) {
	content := "[x]: /u\n\n[x][]\n\n[x]\n"
	doc := NewParser().ParseContent(content, "", "test.md")

	var links []*Link
	for _, it := range doc.Items {
		if p, ok := it.(*Paragraph); ok {
			for _, inner := range p.Items {
				if l, okL := inner.(*Link); okL {
					links = append(links, l)
				}
			}
		}
	}
	if len(links) != 2 {
		t.Fatalf("got %d links, want collapsed + shortcut", len(links))
	}
	for i, l := range links {
		if l.URL != "/u" {
			t.Errorf("link %d url = %q", i, l.URL)
		}
	}
}

func TestLinks_LabelNormalization(t *testing.T) {
	doc := NewParser().ParseContent("[Foo   Bar]: /x\n\n[foo bar]\n", "", "test.md")

	if _, ok := doc.LabeledLink("#FOO BAR/test.md"); !ok {
		t.Fatal("normalized definition key missing")
	}

	found := false
	for _, it := range doc.Items {
		if p, ok := it.(*Paragraph); ok {
			for _, inner := range p.Items {
				if inner.Type() == ItemTypeLink {
					found = true
				}
			}
		}
	}
	if !found {
		t.Error("case- and whitespace-folded lookup must resolve")
	}
}

func TestLinks_UndefinedReferenceStaysLiteral(t *testing.T) {
	p := firstParagraph(t, "[nope][missing]\n")

	for _, it := range p.Items {
		if it.Type() == ItemTypeLink {
			t.Fatal("undefined reference must stay literal")
		}
	}
}

func TestLinks_Image(t *testing.T) {
	p := firstParagraph(t, "![alt text](img.png)\n")

	var img *Image
	for _, it := range p.Items {
		if i, ok := it.(*Image); ok {
			img = i
		}
	}
	if img == nil {
		t.Fatalf("no image in %v", p.Items)
	}
	if img.Text != "alt text" || img.URL != "img.png" {
		t.Errorf("image = %+v", img)
	}
}

func TestLinks_ImageInsideLink(t *testing.T) {
	l := firstLink(t, "[![alt](i.png)](https://example.com)\n")

	if l.Img == nil {
		t.Fatal("link must capture its image body")
	}
	if l.Img.URL != "i.png" {
		t.Errorf("image url = %q", l.Img.URL)
	}
}

func TestLinks_NoLinkInsideLinkText(t *testing.T) {
	p := firstParagraph(t, "[a [b](/inner) c](/outer)\n")

	var links []*Link
	for _, it := range p.Items {
		if l, ok := it.(*Link); ok {
			links = append(links, l)
		}
	}
	// The outer bracket pair forms the link and the inner one stays
	// text; there must be exactly one link and no link nested in link text.
	if len(links) != 1 {
		t.Fatalf("got %d top-level links, want 1", len(links))
	}
	if links[0].P != nil {
		for _, inner := range links[0].P.Items {
			if inner.Type() == ItemTypeLink {
				t.Error("links must not nest inside link text")
			}
		}
	}
}

func TestLinks_AutolinkURI(t *testing.T) {
	l := firstLink(t, "<https://example.com/path>\n")

	if l.URL != "https://example.com/path" || l.Text != "https://example.com/path" {
		t.Errorf("autolink = %+v", l)
	}
	if l.StartCol != 0 {
		t.Errorf("autolink starts at the <, got col %d", l.StartCol)
	}
}

func TestLinks_AutolinkEmail(t *testing.T) {
	l := firstLink(t, "<user@example.com>\n")

	if l.URL != "user@example.com" {
		t.Errorf("email autolink url = %q", l.URL)
	}
}

func TestLinks_AngleNonsenseStaysLiteral(t *testing.T) {
	p := firstParagraph(t, "a < b > c\n")

	for _, it := range p.Items {
		if it.Type() == ItemTypeLink || it.Type() == ItemTypeRawHTML {
			t.Fatalf("bare angle brackets must stay literal, got %v", it.Type())
		}
	}
}

func TestLinks_FootnoteRef(t *testing.T) {
	doc := NewParser().ParseContent("text[^1] more\n\n[^1]: note\n", "", "test.md")

	var ref *FootnoteRef
	for _, it := range doc.Items {
		if p, ok := it.(*Paragraph); ok {
			for _, inner := range p.Items {
				if r, okR := inner.(*FootnoteRef); okR {
					ref = r
				}
			}
		}
	}
	if ref == nil {
		t.Fatal("no footnote reference")
	}
	if ref.ID != "#^1/test.md" {
		t.Errorf("ref id = %q", ref.ID)
	}
	if _, ok := doc.Footnotes().Get(ref.ID); !ok {
		t.Error("reference id must match the definition key")
	}
}

func TestLinks_GitHubAutolinkPlugin(t *testing.T) {
	p := firstParagraph(t, "visit https://example.com today\n")

	if len(p.Items) != 3 {
		t.Fatalf("got %d items, want Text, Link, Text", len(p.Items))
	}
	l, ok := p.Items[1].(*Link)
	if !ok || l.URL != "https://example.com" {
		t.Fatalf("middle item: %#v", p.Items[1])
	}
	if txt := p.Items[0].(*Text); txt.Data != "visit" {
		t.Errorf("leading text = %q", txt.Data)
	}
}

func TestLinks_GitHubAutolinkWWW(t *testing.T) {
	p := firstParagraph(t, "see www.example.com\n")

	var link *Link
	for _, it := range p.Items {
		if l, ok := it.(*Link); ok {
			link = l
		}
	}
	if link == nil || link.URL != "www.example.com" {
		t.Fatalf("www autolink missing: %v", p.Items)
	}
}

func TestLinks_PluginRemoval(t *testing.T) {
	parser := NewParser()
	parser.RemoveTextPlugin(GitHubAutoLinkPluginID)

	doc := parser.ParseContent("visit https://example.com today\n", "", "t.md")
	for _, it := range doc.Items {
		if p, ok := it.(*Paragraph); ok {
			if len(p.Items) != 1 {
				t.Fatalf("without the plugin the text stays whole, got %v", p.Items)
			}
		}
	}
}

func TestIsAbsoluteURI(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://example.com", true},
		{"ftp://host", true},
		{"made-up+scheme:thing", true},
		{"no spaces here", false},
		{"://missing", false},
		{"a b:c", false},
	}

	for _, tt := range tests {
		if got := isAbsoluteURI(tt.input); got != tt.want {
			t.Errorf("isAbsoluteURI(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestIsEmailAddress(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"a@b.com", true},
		{"first.last@sub.example.org", true},
		{"@nope.com", false},
		{"nope@", false},
		{"sp ace@x.com", false},
	}

	for _, tt := range tests {
		if got := isEmailAddress(tt.input); got != tt.want {
			t.Errorf("isEmailAddress(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
