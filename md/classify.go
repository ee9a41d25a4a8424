package md

import (
	"unicode"
)

// lineType is the block kind the classifier assigns to a single line.
type lineType uint8

const (
	// lineUnknown is the zero value; never returned by the classifier.
	lineUnknown lineType = iota
	// lineEmpty is an all-whitespace line.
	lineEmpty
	// lineText is a plain paragraph line.
	lineText
	// lineList starts a list item.
	lineList
	// lineListWithFirstEmptyLine starts a list item with no content
	// after the marker.
	lineListWithFirstEmptyLine
	// lineCodeIndentedBySpaces is indented code (>= 4 leading spaces).
	lineCodeIndentedBySpaces
	// lineCode opens or closes a fenced code block.
	lineCode
	// lineBlockquote begins with a > marker.
	lineBlockquote
	// lineHeading is an ATX heading.
	lineHeading
	// lineSomethingInList continues a list item without starting a new
	// block of its own.
	lineSomethingInList
	// lineFencedCodeInList is a fence line at a list item's indent.
	lineFencedCodeInList
	// lineFootnote starts a footnote definition.
	lineFootnote
	// lineHorizontalLine is a thematic break.
	lineHorizontalLine
	// lineHTML starts an HTML block.
	lineHTML
)

// String returns a human-readable name for the line type.
func (t lineType) String() string {
	switch t {
	case lineEmpty:
		return "EmptyLine"
	case lineText:
		return "Text"
	case lineList:
		return "List"
	case lineListWithFirstEmptyLine:
		return "ListWithFirstEmptyLine"
	case lineCodeIndentedBySpaces:
		return "CodeIndentedBySpaces"
	case lineCode:
		return "Code"
	case lineBlockquote:
		return "Blockquote"
	case lineHeading:
		return "Heading"
	case lineSomethingInList:
		return "SomethingInList"
	case lineFencedCodeInList:
		return "FencedCodeInList"
	case lineFootnote:
		return "Footnote"
	case lineHorizontalLine:
		return "HorizontalLine"
	case lineHTML:
		return "HTML"
	default:
		return "Unknown"
	}
}

// maxBlockIndent is the largest leading-space count that still starts
// a block construct; four or more spaces mean indented code.
const maxBlockIndent = 3

// maxOrderedMarkerDigits bounds ordered-list marker length.
const maxOrderedMarkerDigits = 9

// lineContext carries the flags the classifier needs beyond the line
// itself.
type lineContext struct {
	inList             bool
	listFirstLineEmpty bool
	fencedCodeInList   bool
	// codeFence is the run that opened an active fenced block
	// ("```...", "~~~..."); empty when no fence is open.
	codeFence string
	// indents holds the content columns of enclosing list items,
	// innermost last.
	indents []int
	// emptyLinePreceded is set when the previous line was blank.
	emptyLinePreceded bool
}

// listMarker describes a recognized list marker.
type listMarker struct {
	char        rune // '-', '+', '*' or the ordered delimiter '.'/')'
	ordered     bool
	startNumber int
	markerPos   int // column of the marker's first character
	markerLen   int // characters in the marker itself
	contentPos  int // column where item content starts
	emptyFirst  bool
}

// skipSpaces returns the index of the first non-space character at or
// after i, or the length of the line.
func skipSpaces(s *VirginString, i int) int {
	for i < s.Len() && (s.At(i) == ' ' || s.At(i) == '\t') {
		i++
	}

	return i
}

// isEmptyLine reports whether the line is all whitespace.
func isEmptyLine(s *VirginString) bool {
	for i := 0; i < s.Len(); i++ {
		if !unicode.IsSpace(s.At(i)) {
			return false
		}
	}

	return true
}

// isCodeFence reports whether the line at ns starts a fence run of at
// least three backticks or tildes, returning the fence character and
// run length. Backtick-fenced info strings must not contain backticks.
func isCodeFence(s *VirginString, ns int) (ch rune, n int, ok bool) {
	if ns >= s.Len() {
		return 0, 0, false
	}

	ch = s.At(ns)
	if ch != '`' && ch != '~' {
		return 0, 0, false
	}

	i := ns
	for i < s.Len() && s.At(i) == ch {
		i++
	}
	n = i - ns
	if n < 3 {
		return 0, 0, false
	}

	if ch == '`' {
		for j := i; j < s.Len(); j++ {
			if s.At(j) == '`' {
				return 0, 0, false
			}
		}
	}

	return ch, n, true
}

// isClosingCodeFence reports whether the line closes a fence opened by
// openCh/openLen: same character, at least the opening length, nothing
// but whitespace after.
func isClosingCodeFence(s *VirginString, openCh rune, openLen int) bool {
	ns := skipSpaces(s, 0)
	if ns > maxBlockIndent || ns >= s.Len() || s.At(ns) != openCh {
		return false
	}

	i := ns
	for i < s.Len() && s.At(i) == openCh {
		i++
	}
	if i-ns < openLen {
		return false
	}

	return skipSpaces(s, i) == s.Len()
}

// isAtxHeading reports whether the line is a 1-6 run of # followed by
// a space, returning the level. A bare # run with nothing after it
// stays a paragraph.
func isAtxHeading(s *VirginString, ns int) (level int, ok bool) {
	i := ns
	for i < s.Len() && s.At(i) == '#' {
		i++
	}
	level = i - ns
	if level < 1 || level > 6 {
		return 0, false
	}
	if i >= s.Len() {
		return 0, false
	}
	if s.At(i) != ' ' && s.At(i) != '\t' {
		return 0, false
	}

	return level, true
}

// parseListMarker recognizes -, + or * followed by space/EOL, or a run
// of up to nine digits ending in . or ) followed by space/EOL.
func parseListMarker(s *VirginString, ns int) (listMarker, bool) {
	if ns >= s.Len() {
		return listMarker{}, false
	}

	c := s.At(ns)
	if c == '-' || c == '+' || c == '*' {
		after := ns + 1
		if after < s.Len() && s.At(after) != ' ' && s.At(after) != '\t' {
			return listMarker{}, false
		}

		return finishListMarker(s, listMarker{
			char:      c,
			markerPos: ns,
			markerLen: 1,
		}, after), true
	}

	if c >= '0' && c <= '9' {
		i := ns
		num := 0
		for i < s.Len() && s.At(i) >= '0' && s.At(i) <= '9' {
			num = num*10 + int(s.At(i)-'0')
			i++
		}
		if i-ns > maxOrderedMarkerDigits {
			return listMarker{}, false
		}
		if i >= s.Len() || (s.At(i) != '.' && s.At(i) != ')') {
			return listMarker{}, false
		}
		delim := s.At(i)
		after := i + 1
		if after < s.Len() && s.At(after) != ' ' && s.At(after) != '\t' {
			return listMarker{}, false
		}

		return finishListMarker(s, listMarker{
			char:        delim,
			ordered:     true,
			startNumber: num,
			markerPos:   ns,
			markerLen:   after - ns,
		}, after), true
	}

	return listMarker{}, false
}

// finishListMarker computes the content column for a recognized
// marker: one space, or up to four trailing spaces before content; an
// item with nothing after the marker gets content at marker end + 1.
func finishListMarker(s *VirginString, m listMarker, after int) listMarker {
	ns := skipSpaces(s, after)
	switch {
	case ns == s.Len():
		m.emptyFirst = true
		m.contentPos = after + 1
	case ns-after > 4:
		// Indented code after the marker: content starts one past it.
		m.contentPos = after + 1
	default:
		m.contentPos = ns
	}

	return m
}

// isHorizontalLine reports whether the line is a thematic break: three
// or more of the same *, - or _, optionally separated by spaces, and
// nothing else.
func isHorizontalLine(s *VirginString, ns int) bool {
	if ns >= s.Len() {
		return false
	}

	ch := s.At(ns)
	if ch != '*' && ch != '-' && ch != '_' {
		return false
	}

	count := 0
	for i := ns; i < s.Len(); i++ {
		c := s.At(i)
		switch {
		case c == ch:
			count++
		case c == ' ' || c == '\t':
		default:
			return false
		}
	}

	return count >= 3
}

// setextLevel reports whether the line is a setext underline, and its
// heading level: a run of = gives 1, a run of - gives 2. The line must
// be indented less than four and contain nothing after the run.
func setextLevel(s *VirginString) (int, bool) {
	ns := skipSpaces(s, 0)
	if ns > maxBlockIndent || ns >= s.Len() {
		return 0, false
	}

	ch := s.At(ns)
	if ch != '=' && ch != '-' {
		return 0, false
	}

	i := ns
	for i < s.Len() && s.At(i) == ch {
		i++
	}
	if skipSpaces(s, i) != s.Len() {
		return 0, false
	}

	if ch == '=' {
		return 1, true
	}

	return 2, true
}

// isFootnoteStart reports whether the line begins a footnote
// definition: [^label]: with a non-empty, non-space label, indented
// less than four.
func isFootnoteStart(s *VirginString, ns int) (idEnd int, ok bool) {
	if ns > maxBlockIndent {
		return 0, false
	}
	if ns+2 >= s.Len() || s.At(ns) != '[' || s.At(ns+1) != '^' {
		return 0, false
	}

	i := ns + 2
	for i < s.Len() && s.At(i) != ']' {
		if unicode.IsSpace(s.At(i)) {
			return 0, false
		}
		i++
	}
	if i == ns+2 || i >= s.Len() {
		return 0, false
	}
	if i+1 >= s.Len() || s.At(i+1) != ':' {
		return 0, false
	}

	return i + 2, true
}

// listIndentFor returns the innermost enclosing list item's content
// column, or zero when the context has no list.
func listIndentFor(ctx *lineContext) int {
	if len(ctx.indents) == 0 {
		return 0
	}

	return ctx.indents[len(ctx.indents)-1]
}

// whatIsTheLine classifies one (tab-expanded) line given its context.
// For list starts the recognized marker is returned alongside.
//
//nolint:revive // cognitive-complexity: classification is one decision table
func whatIsTheLine(s *VirginString, ctx *lineContext) (lineType, listMarker) {
	ns := skipSpaces(s, 0)

	if ns == s.Len() {
		return lineEmpty, listMarker{}
	}

	indent := listIndentFor(ctx)
	rel := ns
	if ctx.inList {
		rel = ns - indent
	}

	// An open fence absorbs everything; the segmenter checks closing.
	if ctx.codeFence != "" {
		return lineText, listMarker{}
	}

	first := s.At(ns)

	if first == '>' && rel >= 0 && rel <= maxBlockIndent {
		return lineBlockquote, listMarker{}
	}

	if rel >= 0 && rel <= maxBlockIndent {
		if _, ok := isAtxHeading(s, ns); ok {
			return lineHeading, listMarker{}
		}
		if _, ok := isFootnoteStart(s, ns); ok && !ctx.inList {
			return lineFootnote, listMarker{}
		}
		if _, _, ok := isCodeFence(s, ns); ok {
			if ctx.inList {
				return lineFencedCodeInList, listMarker{}
			}

			return lineCode, listMarker{}
		}
	}

	if isHorizontalLine(s, ns) && rel >= 0 && rel <= maxBlockIndent {
		// A * or - run could also be a list marker; the break wins
		// unless the marker line has nothing after the marker.
		if m, ok := parseListMarker(s, ns); !ok || !m.emptyFirst {
			return lineHorizontalLine, listMarker{}
		}
	}

	if m, ok := parseListMarker(s, ns); ok && rel >= 0 && rel <= maxBlockIndent {
		if m.emptyFirst {
			return lineListWithFirstEmptyLine, m
		}

		return lineList, m
	}

	if !ctx.inList && ns >= 4 {
		return lineCodeIndentedBySpaces, listMarker{}
	}

	if ctx.inList && ns >= indent {
		return lineSomethingInList, listMarker{}
	}

	if htmlBlockRule(s, ns) > 0 && rel >= 0 && rel <= maxBlockIndent {
		return lineHTML, listMarker{}
	}

	return lineText, listMarker{}
}
