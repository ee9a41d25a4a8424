package md

import (
	"testing"
)

// firstParagraph parses content and returns its first paragraph.
func firstParagraph(t *testing.T, content string) *Paragraph {
	t.Helper()

	items := parseBody(t, content)
	for _, it := range items {
		if p, ok := it.(*Paragraph); ok {
			return p
		}
	}
	t.Fatalf("no paragraph in %q, items = %v", content, items)

	return nil
}

// textsOf filters the paragraph's Text items.
func textsOf(p *Paragraph) []*Text {
	var out []*Text
	for _, it := range p.Items {
		if t, ok := it.(*Text); ok {
			out = append(out, t)
		}
	}

	return out
}

func TestInline_PlainTextPositions(t *testing.T) {
	p := firstParagraph(t, "hello\n")

	texts := textsOf(p)
	if len(texts) != 1 {
		t.Fatalf("got %d texts, want 1", len(texts))
	}
	tx := texts[0]
	if tx.Data != "hello" {
		t.Errorf("data = %q", tx.Data)
	}
	if tx.StartLine != 0 || tx.StartCol != 0 || tx.EndLine != 0 || tx.EndCol != 4 {
		t.Errorf("position = %+v", tx.Position)
	}
}

func TestInline_SoftBreakSplitsTexts(t *testing.T) {
	p := firstParagraph(t, "foo\nbar\n")

	texts := textsOf(p)
	if len(texts) != 2 {
		t.Fatalf("got %d texts, want 2", len(texts))
	}
	if texts[0].Data != "foo" || texts[1].Data != "bar" {
		t.Errorf("texts = %q, %q", texts[0].Data, texts[1].Data)
	}
	if texts[1].StartLine != 1 {
		t.Errorf("second text line = %d, want 1", texts[1].StartLine)
	}
}

func TestInline_Bold(t *testing.T) {
	p := firstParagraph(t, "**bold**\n")

	texts := textsOf(p)
	if len(texts) != 1 {
		t.Fatalf("got %d texts, want 1", len(texts))
	}
	tx := texts[0]
	if tx.Data != "bold" || tx.Opts != BoldText {
		t.Errorf("got %q opts %v", tx.Data, tx.Opts)
	}
	if len(tx.OpenStyles) != 1 || len(tx.CloseStyles) != 1 {
		t.Fatalf("style delims: open %d close %d", len(tx.OpenStyles), len(tx.CloseStyles))
	}
	if tx.OpenStyles[0].StartCol != 0 || tx.OpenStyles[0].EndCol != 1 {
		t.Errorf("open delim = %+v", tx.OpenStyles[0].Position)
	}
	if tx.CloseStyles[0].StartCol != 6 || tx.CloseStyles[0].EndCol != 7 {
		t.Errorf("close delim = %+v", tx.CloseStyles[0].Position)
	}
}

func TestInline_Italic(t *testing.T) {
	p := firstParagraph(t, "a *i* b\n")

	texts := textsOf(p)
	if len(texts) != 3 {
		t.Fatalf("got %d texts, want 3", len(texts))
	}
	if texts[1].Data != "i" || texts[1].Opts != ItalicText {
		t.Errorf("middle text: %q %v", texts[1].Data, texts[1].Opts)
	}
	if texts[0].Opts != TextWithoutFormat || texts[2].Opts != TextWithoutFormat {
		t.Error("outer texts must be unstyled")
	}
}

func TestInline_BoldItalicCombined(t *testing.T) {
	p := firstParagraph(t, "***x***\n")

	texts := textsOf(p)
	if len(texts) != 1 {
		t.Fatalf("got %d texts, want 1", len(texts))
	}
	if texts[0].Opts != BoldText|ItalicText {
		t.Errorf("opts = %v, want bold|italic", texts[0].Opts)
	}
}

func TestInline_Strikethrough(t *testing.T) {
	p := firstParagraph(t, "~~gone~~\n")

	texts := textsOf(p)
	if len(texts) != 1 || texts[0].Opts != StrikethroughText {
		t.Fatalf("texts = %v", texts)
	}
}

func TestInline_UnderscoreIntraWord(t *testing.T) {
	p := firstParagraph(t, "snake_case_name\n")

	texts := textsOf(p)
	if len(texts) != 1 {
		t.Fatalf("got %d texts, want 1", len(texts))
	}
	if texts[0].Data != "snake_case_name" || texts[0].Opts != TextWithoutFormat {
		t.Errorf("intra-word underscores must stay literal: %q %v",
			texts[0].Data, texts[0].Opts)
	}
}

func TestInline_EscapedStar(t *testing.T) {
	p := firstParagraph(t, "\\*not\\*\n")

	texts := textsOf(p)
	if len(texts) != 1 {
		t.Fatalf("got %d texts, want 1", len(texts))
	}
	if texts[0].Data != "*not*" || texts[0].Opts != TextWithoutFormat {
		t.Errorf("got %q %v", texts[0].Data, texts[0].Opts)
	}
}

func TestInline_CodeSpan(t *testing.T) {
	p := firstParagraph(t, "use `go vet` here\n")

	var code *Code
	for _, it := range p.Items {
		if c, ok := it.(*Code); ok {
			code = c
		}
	}
	if code == nil {
		t.Fatalf("no code span in %v", p.Items)
	}
	if !code.Inline || code.Text != "go vet" {
		t.Errorf("code = %#v", code)
	}
	if !code.StartDelim.IsSet() || !code.EndDelim.IsSet() {
		t.Error("code span delimiters must be positioned")
	}
}

func TestInline_CodeSpanDoubleBacktick(t *testing.T) {
	p := firstParagraph(t, "`` a`b ``\n")

	var code *Code
	for _, it := range p.Items {
		if c, ok := it.(*Code); ok {
			code = c
		}
	}
	if code == nil {
		t.Fatal("no code span")
	}
	if code.Text != "a`b" {
		t.Errorf("text = %q, want %q", code.Text, "a`b")
	}
}

func TestInline_CodeSpanUnclosedStaysLiteral(t *testing.T) {
	p := firstParagraph(t, "a `b\n")

	for _, it := range p.Items {
		if it.Type() == ItemTypeCode {
			t.Fatal("unclosed backtick must not form a code span")
		}
	}
}

func TestInline_MathSpans(t *testing.T) {
	p := firstParagraph(t, "$x^2$ and $$\\int$$\n")

	var maths []*Math
	for _, it := range p.Items {
		if m, ok := it.(*Math); ok {
			maths = append(maths, m)
		}
	}
	if len(maths) != 2 {
		t.Fatalf("got %d math spans, want 2", len(maths))
	}
	if !maths[0].Inline || maths[0].Expr != "x^2" {
		t.Errorf("inline math: %#v", maths[0])
	}
	if maths[1].Inline || maths[1].Expr != "\\int" {
		t.Errorf("display math: %#v", maths[1])
	}
}

func TestInline_HardBreakSpaces(t *testing.T) {
	p := firstParagraph(t, "foo  \nbar\n")

	if len(p.Items) != 3 {
		t.Fatalf("got %d items, want Text, LineBreak, Text", len(p.Items))
	}
	if p.Items[1].Type() != ItemTypeLineBreak {
		t.Errorf("middle item = %v", p.Items[1].Type())
	}
}

func TestInline_HardBreakBackslash(t *testing.T) {
	p := firstParagraph(t, "foo\\\nbar\n")

	if len(p.Items) != 3 || p.Items[1].Type() != ItemTypeLineBreak {
		t.Fatalf("items = %v", p.Items)
	}
	if textsOf(p)[0].Data != "foo" {
		t.Errorf("backslash must not leak into text: %q", textsOf(p)[0].Data)
	}
}

func TestInline_EntityDecoded(t *testing.T) {
	p := firstParagraph(t, "fish &amp; chips\n")

	texts := textsOf(p)
	if len(texts) != 1 || texts[0].Data != "fish & chips" {
		t.Fatalf("texts = %v", texts)
	}
}

func TestInline_SpaceFlags(t *testing.T) {
	p := firstParagraph(t, "a *b* c\n")

	texts := textsOf(p)
	if len(texts) != 3 {
		t.Fatalf("got %d texts", len(texts))
	}
	mid := texts[1]
	if !mid.SpaceBefore || !mid.SpaceAfter {
		t.Errorf("emphasized word surrounded by spaces: before=%v after=%v",
			mid.SpaceBefore, mid.SpaceAfter)
	}
}
