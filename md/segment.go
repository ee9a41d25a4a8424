package md

import (
	"strings"
)

// fragmentLine is one tab-expanded source line together with its
// virgin line number.
type fragmentLine struct {
	str  VirginString
	line int
}

// fragment is a contiguous run of lines that together form one block.
type fragment struct {
	kind             lineType
	lines            []fragmentLine
	emptyLinesBefore int

	// Fenced code state.
	fenceChar rune
	fenceLen  int

	// HTML block state.
	htmlRule int

	// Setext promotion: level and the underline line.
	setext     int
	setextLine fragmentLine

	// List state.
	marker    listMarker
	looseList bool
}

// blockContext carries the per-stream flags of one segmentation run.
type blockContext struct {
	collectRefLinks bool
	allowSetext     bool
	workingPath     string
	fileName        string
	// nesting level of enclosing blockquotes, for position bookkeeping
	quoteLevel int
}

// parseLines drives the line-by-line state machine over one stream of
// lines and returns the block items it produces. Container blocks
// recurse through it with their markers stripped.
//
//nolint:revive // function-length,cognitive-complexity: the block state machine is one unit
func (p *Parser) parseLines(lines []fragmentLine, doc *Document, ctx *blockContext) []Item {
	var items []Item
	var frag fragment
	emptyCount := 0

	flush := func() {
		if len(frag.lines) > 0 || frag.setext > 0 {
			items = append(items, p.parseFragment(&frag, doc, ctx)...)
		}
		frag = fragment{}
	}

	i := 0
	for i < len(lines) {
		ln := &lines[i]

		switch frag.kind {
		case lineCode:
			frag.lines = append(frag.lines, *ln)
			if isClosingCodeFence(&ln.str, frag.fenceChar, frag.fenceLen) {
				flush()
			}
			i++

			continue

		case lineHTML:
			done := false
			if frag.htmlRule >= 1 && frag.htmlRule <= 5 {
				frag.lines = append(frag.lines, *ln)
				done = htmlBlockClosed(&ln.str, frag.htmlRule)
			} else {
				if isEmptyLine(&ln.str) {
					done = true
				} else {
					frag.lines = append(frag.lines, *ln)
				}
			}
			if done {
				blankEnded := frag.htmlRule >= 6 && isEmptyLine(&ln.str)
				flush()
				if blankEnded {
					emptyCount = 1
				}
			}
			i++

			continue

		case lineCodeIndentedBySpaces:
			if isEmptyLine(&ln.str) {
				// Absorb; trailing blanks are trimmed at build time.
				frag.lines = append(frag.lines, *ln)
				i++

				continue
			}
			if skipSpaces(&ln.str, 0) >= 4 {
				frag.lines = append(frag.lines, *ln)
				i++

				continue
			}
			flush()

			continue

		case lineFootnote:
			if i > 0 && isEmptyLine(&lines[i-1].str) {
				ns := skipSpaces(&ln.str, 0)
				if !isEmptyLine(&ln.str) && ns < 4 {
					// An under-indented line after a blank ends the
					// footnote.
					flush()

					continue
				}
			}
			if isEmptyLine(&ln.str) || skipSpaces(&ln.str, 0) >= 4 {
				frag.lines = append(frag.lines, *ln)
				i++

				continue
			}
			flush()

			continue

		case lineBlockquote:
			if p.continuesBlockquote(&frag, ln) {
				frag.lines = append(frag.lines, *ln)
				i++

				continue
			}
			flush()

			continue

		case lineList:
			absorbed, closed := p.continuesList(&frag, lines, i)
			if absorbed {
				frag.lines = append(frag.lines, *ln)
				i++
				if closed {
					flush()
				}

				continue
			}
			flush()

			continue

		case lineText:
			if isEmptyLine(&ln.str) {
				flush()
				emptyCount = 1
				i++

				continue
			}
			if ctx.allowSetext {
				if lvl, ok := setextLevel(&ln.str); ok {
					frag.setext = lvl
					frag.setextLine = *ln
					flush()
					i++

					continue
				}
			}
			kind, m := whatIsTheLine(&ln.str, &lineContext{})
			if kind == lineHTML {
				// Rule 7 never interrupts a paragraph.
				ns := skipSpaces(&ln.str, 0)
				if htmlBlockRule(&ln.str, ns) == 7 {
					kind = lineText
				}
			}
			if p.continuesParagraph(kind, m) {
				frag.lines = append(frag.lines, *ln)
				i++

				continue
			}
			flush()

			continue
		}

		// No open fragment: classify and open one.
		kind, m := whatIsTheLine(&ln.str, &lineContext{})

		switch kind {
		case lineEmpty:
			emptyCount++
			i++

			continue

		case lineHorizontalLine:
			hr := &HorizontalLine{}
			hr.StartLine = ln.line
			hr.EndLine = ln.line
			ns := skipSpaces(&ln.str, 0)
			hr.StartCol = ln.str.VirginPos(ns)
			hr.EndCol = ln.str.VirginPos(ln.str.Len() - 1)
			if !ctx.collectRefLinks {
				items = append(items, hr)
			}
			emptyCount = 0
			i++

			continue

		case lineHeading:
			frag = fragment{kind: lineHeading, emptyLinesBefore: emptyCount}
			frag.lines = append(frag.lines, *ln)
			flush()
			i++

		case lineCode, lineFencedCodeInList:
			ns := skipSpaces(&ln.str, 0)
			ch, n, _ := isCodeFence(&ln.str, ns)
			frag = fragment{
				kind:             lineCode,
				emptyLinesBefore: emptyCount,
				fenceChar:        ch,
				fenceLen:         n,
			}
			frag.lines = append(frag.lines, *ln)
			i++

		case lineHTML:
			ns := skipSpaces(&ln.str, 0)
			rule := htmlBlockRule(&ln.str, ns)
			frag = fragment{
				kind:             lineHTML,
				emptyLinesBefore: emptyCount,
				htmlRule:         rule,
			}
			frag.lines = append(frag.lines, *ln)
			if rule <= 5 && htmlBlockClosed(&ln.str, rule) {
				flush()
			}
			i++

		case lineList, lineListWithFirstEmptyLine:
			frag = fragment{
				kind:             lineList,
				emptyLinesBefore: emptyCount,
				marker:           m,
			}
			frag.lines = append(frag.lines, *ln)
			i++

		case lineBlockquote, lineFootnote, lineCodeIndentedBySpaces, lineText:
			frag = fragment{kind: kind, emptyLinesBefore: emptyCount}
			frag.lines = append(frag.lines, *ln)
			i++

		default:
			frag = fragment{kind: lineText, emptyLinesBefore: emptyCount}
			frag.lines = append(frag.lines, *ln)
			i++
		}

		if kind != lineEmpty {
			emptyCount = 0
		}
	}

	flush()

	return items
}

// continuesParagraph reports whether a line of the given kind may be
// appended to an open paragraph instead of starting a block of its
// own. Indented code never interrupts a paragraph; lists interrupt
// only when they could plausibly start one (non-empty first line and,
// for ordered items, a start number of one); HTML rule 7 never
// interrupts.
func (p *Parser) continuesParagraph(kind lineType, m listMarker) bool {
	switch kind {
	case lineText, lineSomethingInList, lineCodeIndentedBySpaces:
		return true
	case lineList, lineListWithFirstEmptyLine:
		if m.emptyFirst {
			return true
		}
		if m.ordered && m.startNumber != 1 {
			return true
		}

		return false
	case lineHTML:
		return false
	default:
		return false
	}
}

// continuesBlockquote reports whether a line belongs to the open
// blockquote fragment: an explicit > line, or a lazy paragraph
// continuation.
func (p *Parser) continuesBlockquote(frag *fragment, ln *fragmentLine) bool {
	if isEmptyLine(&ln.str) {
		return false
	}

	kind, _ := whatIsTheLine(&ln.str, &lineContext{})
	if kind == lineBlockquote {
		return true
	}

	// Lazy continuation: a plain text line is absorbed when the
	// quote's last line carried paragraph content.
	if kind != lineText {
		return false
	}
	last := frag.lines[len(frag.lines)-1]
	stripped, _ := stripQuoteMarker(&last.str)

	return !isEmptyLine(&stripped)
}

// continuesList decides whether lines[i] stays inside the open list
// fragment. closed is set when the line is absorbed but the list must
// be flushed right after it (a lone fenced block closing the item).
//
//nolint:revive // cognitive-complexity: list continuation is one rule table
func (p *Parser) continuesList(frag *fragment, lines []fragmentLine, i int) (absorbed, closed bool) {
	ln := &lines[i]
	indent := frag.marker.contentPos

	if isEmptyLine(&ln.str) {
		// A blank inside a list: continue only if the next line is
		// still part of it (one-line peek).
		if i+1 >= len(lines) {
			return false, false
		}
		next := &lines[i+1]
		if isEmptyLine(&next.str) {
			return false, false
		}
		ns := skipSpaces(&next.str, 0)
		if ns >= indent {
			frag.looseList = true

			return true, false
		}
		if m, ok := parseListMarker(&next.str, ns); ok && !m.emptyFirst &&
			ns <= frag.marker.markerPos && m.char == frag.marker.char {
			frag.looseList = true

			return true, false
		}

		return false, false
	}

	ns := skipSpaces(&ln.str, 0)

	// Inside an open fence within the item everything is content.
	if inFence, justClosed := listFenceState(frag, ln); inFence {
		return true, justClosed
	}

	if ns >= indent {
		return true, false
	}

	if m, ok := parseListMarker(&ln.str, ns); ok && ns <= frag.marker.markerPos+1 {
		if m.char == frag.marker.char {
			return true, false
		}
		// A different marker character starts a new list.
		return false, false
	}

	// A non-indented plain text line is a lazy continuation of the
	// item's trailing paragraph.
	kind, _ := whatIsTheLine(&ln.str, &lineContext{})
	if kind == lineText && len(frag.lines) > 0 &&
		!isEmptyLine(&frag.lines[len(frag.lines)-1].str) {
		return true, false
	}

	return false, false
}

// listFenceState tracks whether the list fragment currently has an
// open fenced code block, and whether this line closes a fence that
// was the item's only content.
func listFenceState(frag *fragment, ln *fragmentLine) (inFence, closesLoneFence bool) {
	var fenceCh rune
	fenceLen := 0
	contentBefore := false

	for idx := range frag.lines {
		l := &frag.lines[idx]
		ns := skipSpaces(&l.str, 0)
		body := ns
		if idx == 0 {
			body = frag.marker.contentPos
			if body > l.str.Len() {
				body = l.str.Len()
			}
			body = skipSpaces(&l.str, body)
		}
		if fenceLen == 0 {
			if ch, n, ok := isCodeFence(&l.str, body); ok {
				fenceCh = ch
				fenceLen = n

				continue
			}
			if idx == 0 {
				if body < l.str.Len() {
					contentBefore = true
				}
			} else if !isEmptyLine(&l.str) {
				contentBefore = true
			}
		} else if isClosingFenceAt(&l.str, fenceCh, fenceLen) {
			fenceCh = 0
			fenceLen = 0
		}
	}

	if fenceLen == 0 {
		return false, false
	}

	if isClosingFenceAt(&ln.str, fenceCh, fenceLen) {
		return true, !contentBefore
	}

	return true, false
}

// isClosingFenceAt checks a closing fence at any indent (list items
// carry their own indentation).
func isClosingFenceAt(s *VirginString, ch rune, openLen int) bool {
	ns := skipSpaces(s, 0)
	if ns >= s.Len() || s.At(ns) != ch {
		return false
	}
	i := ns
	for i < s.Len() && s.At(i) == ch {
		i++
	}
	if i-ns < openLen {
		return false
	}

	return skipSpaces(s, i) == s.Len()
}

// stripQuoteMarker removes one leading > (with up to three leading
// spaces and one optional space after) and returns the remainder plus
// the marker's column, or the line unchanged with -1 when there is no
// marker.
func stripQuoteMarker(s *VirginString) (VirginString, int) {
	ns := skipSpaces(s, 0)
	if ns > maxBlockIndent || ns >= s.Len() || s.At(ns) != '>' {
		return *s, -1
	}

	cut := ns + 1
	if cut < s.Len() && s.At(cut) == ' ' {
		cut++
	}

	return s.Sliced(cut, -1), ns
}

// trimIndent removes up to n leading spaces.
func trimIndent(s *VirginString, n int) VirginString {
	i := 0
	for i < s.Len() && i < n && s.At(i) == ' ' {
		i++
	}

	return s.Sliced(i, -1)
}

// fragmentText joins a fragment's current lines; used by tests and
// debug output.
func (f *fragment) text() string {
	var b strings.Builder
	for i := range f.lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(f.lines[i].str.String())
	}

	return b.String()
}
