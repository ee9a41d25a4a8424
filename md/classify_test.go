package md

import (
	"testing"
)

func classifyLine(input string) lineType {
	s := NewVirginString(input)
	s.ExpandTabs()
	kind, _ := whatIsTheLine(&s, &lineContext{})

	return kind
}

func TestWhatIsTheLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  lineType
	}{
		{"empty", "", lineEmpty},
		{"spaces only", "   ", lineEmpty},
		{"plain text", "hello world", lineText},
		{"atx h1", "# Heading", lineHeading},
		{"atx h6", "###### deep", lineHeading},
		{"seven hashes", "####### nope", lineText},
		{"bare hash", "#", lineText},
		{"hash no space", "#nope", lineText},
		{"blockquote", "> quoted", lineBlockquote},
		{"blockquote indented", "   > q", lineBlockquote},
		{"unordered dash", "- item", lineList},
		{"unordered plus", "+ item", lineList},
		{"unordered star", "* item", lineList},
		{"ordered dot", "1. item", lineList},
		{"ordered paren", "23) item", lineList},
		{"ordered too long", "1234567890. x", lineText},
		{"empty item", "-", lineListWithFirstEmptyLine},
		{"backtick fence", "```go", lineCode},
		{"tilde fence", "~~~", lineCode},
		{"short fence", "``", lineText},
		{"indented code", "    x := 1", lineCodeIndentedBySpaces},
		{"thematic stars", "***", lineHorizontalLine},
		{"thematic spaced", "- - -", lineHorizontalLine},
		{"thematic underscores", "___", lineHorizontalLine},
		{"footnote", "[^note]: body", lineFootnote},
		{"link def is text", "[x]: /url", lineText},
		{"html block", "<div>", lineHTML},
		{"html rule 7", "<a>", lineHTML},
		{"not html", "<3 things", lineText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyLine(tt.input); got != tt.want {
				t.Errorf("whatIsTheLine(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSetextLevel(t *testing.T) {
	tests := []struct {
		input string
		level int
		ok    bool
	}{
		{"===", 1, true},
		{"=", 1, true},
		{"---", 2, true},
		{"   ---", 2, true},
		{"    ---", 0, false},
		{"== =", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		s := NewVirginString(tt.input)
		level, ok := setextLevel(&s)
		if ok != tt.ok || level != tt.level {
			t.Errorf("setextLevel(%q) = (%d, %v), want (%d, %v)",
				tt.input, level, ok, tt.level, tt.ok)
		}
	}
}

func TestIsCodeFence(t *testing.T) {
	tests := []struct {
		input string
		ch    rune
		n     int
		ok    bool
	}{
		{"```", '`', 3, true},
		{"`````", '`', 5, true},
		{"~~~~", '~', 4, true},
		{"``", 0, 0, false},
		{"```a`b", 0, 0, false}, // backtick in backtick info string
		{"~~~a`b", '~', 3, true},
	}

	for _, tt := range tests {
		s := NewVirginString(tt.input)
		ch, n, ok := isCodeFence(&s, 0)
		if ok != tt.ok || ch != tt.ch || n != tt.n {
			t.Errorf("isCodeFence(%q) = (%q, %d, %v), want (%q, %d, %v)",
				tt.input, ch, n, ok, tt.ch, tt.n, tt.ok)
		}
	}
}

func TestParseListMarker(t *testing.T) {
	tests := []struct {
		input      string
		ok         bool
		ordered    bool
		start      int
		contentPos int
	}{
		{"- item", true, false, 0, 2},
		{"-  item", true, false, 0, 3},
		{"12. x", true, true, 12, 4},
		{"0) x", true, true, 0, 3},
		{"-item", false, false, 0, 0},
		{"12x", false, false, 0, 0},
	}

	for _, tt := range tests {
		s := NewVirginString(tt.input)
		m, ok := parseListMarker(&s, 0)
		if ok != tt.ok {
			t.Errorf("parseListMarker(%q) ok = %v, want %v", tt.input, ok, tt.ok)

			continue
		}
		if !ok {
			continue
		}
		if m.ordered != tt.ordered || m.startNumber != tt.start || m.contentPos != tt.contentPos {
			t.Errorf("parseListMarker(%q) = %+v", tt.input, m)
		}
	}
}

func TestIsFootnoteStart(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
	}{
		{"[^a]: x", true},
		{"[^long-label]:", true},
		{"[^]: x", false},
		{"[^a b]: x", false},
		{"[a]: x", false},
	}

	for _, tt := range tests {
		s := NewVirginString(tt.input)
		_, ok := isFootnoteStart(&s, 0)
		if ok != tt.ok {
			t.Errorf("isFootnoteStart(%q) = %v, want %v", tt.input, ok, tt.ok)
		}
	}
}

func TestHTMLBlockRule(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"<pre>", 1},
		{"<script src=\"x\">", 1},
		{"<!-- comment", 2},
		{"<?php", 3},
		{"<!DOCTYPE html>", 4},
		{"<![CDATA[data", 5},
		{"<div class=\"x\">content", 6},
		{"</table>", 6},
		{"<a>", 7},
		{"<a> trailing", 0},
		{"plain", 0},
	}

	for _, tt := range tests {
		s := NewVirginString(tt.input)
		if got := htmlBlockRule(&s, 0); got != tt.want {
			t.Errorf("htmlBlockRule(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
