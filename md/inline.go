package md

import (
	"strings"
	"unicode"
)

// inlineOpts carries flags for one inline-parsing run.
type inlineOpts struct {
	// inLink suppresses link recognition inside link text; images
	// stay allowed.
	inLink bool
	// skipPlugins suppresses text plugins (used for nested runs; the
	// per-plugin processInLinks flag reenables them for link text).
	skipPlugins bool
}

// inlinePoint addresses one character of a fragment: line indexes the
// fragment's line slice, pos the character in the edited line.
type inlinePoint struct {
	line int
	pos  int
}

func pointBeforeEq(a, b inlinePoint) bool {
	if a.line != b.line {
		return a.line < b.line
	}

	return a.pos <= b.pos
}

// inlineEvent is a structural construct (code span, math, autolink,
// raw HTML, link, image, footnote reference) consuming the inclusive
// character range [start, end].
type inlineEvent struct {
	item  Item
	start inlinePoint
	end   inlinePoint
}

// styleSpan is one resolved emphasis pairing. Open and close ranges
// are single-line character windows of the consumed delimiter runs.
type styleSpan struct {
	style     StyleOpts
	openLine  int
	openPos   int
	openLen   int
	closeLine int
	closePos  int
	closeLen  int
}

// parseFormattedText runs the full inline pass over one fragment and
// returns the inline items in source order.
func (p *Parser) parseFormattedText(lines []fragmentLine, doc *Document, ctx *blockContext, opts inlineOpts) []Item {
	if len(lines) == 0 {
		return nil
	}

	delims := collectDelimiters(lines)
	consumed := make([]bool, len(delims))
	var events []inlineEvent
	var candidates []int

	// Probe pass: code spans, math spans, autolinks and raw HTML are
	// matched first so brackets and emphasis inside them never pair.
	for i := 0; i < len(delims); i++ {
		if consumed[i] {
			continue
		}
		d := &delims[i]

		switch d.t {
		case dlmBacktick:
			if d.backslashed {
				continue
			}
			j := findMatchingRun(delims, consumed, i, dlmBacktick, d.len)
			if j < 0 {
				continue
			}
			events = append(events, p.makeCodeSpan(lines, &delims[i], &delims[j]))
			markConsumed(consumed, i, j)
			i = j

		case dlmDollar:
			if d.backslashed {
				continue
			}
			j := findMatchingRun(delims, consumed, i, dlmDollar, d.len)
			if j < 0 {
				continue
			}
			events = append(events, p.makeMathSpan(lines, &delims[i], &delims[j]))
			markConsumed(consumed, i, j)
			i = j

		case dlmLess:
			if d.backslashed {
				continue
			}
			ev, ok := p.checkAutolinkOrHTML(lines, d)
			if !ok {
				continue
			}
			events = append(events, ev)
			consumeRange(delims, consumed, ev.start, ev.end)
		}
	}

	// Link pass.
	for i := 0; i < len(delims); i++ {
		if consumed[i] {
			continue
		}
		d := &delims[i]
		if d.t != dlmSquareOpen && d.t != dlmImageOpen {
			continue
		}
		if d.backslashed {
			continue
		}

		ev, ok := p.checkForLinkOrImage(lines, delims, consumed, i, doc, ctx, opts)
		if !ok {
			continue
		}
		events = append(events, ev)
		consumeRange(delims, consumed, ev.start, ev.end)
	}

	// Emphasis candidates are what is left.
	for i := range delims {
		if consumed[i] {
			continue
		}
		switch delims[i].t {
		case dlmAsterisk, dlmUnderscore, dlmStrike:
			candidates = append(candidates, i)
		}
	}

	spans := resolveEmphasis(delims, candidates)

	items := p.emitInline(lines, events, spans)

	if !opts.skipPlugins {
		items = p.runTextPlugins(items, doc, opts)
	}

	return items
}

// findMatchingRun finds the next unconsumed delimiter of type t with
// exactly length n after index i.
func findMatchingRun(delims []delimiter, consumed []bool, i int, t delimType, n int) int {
	for j := i + 1; j < len(delims); j++ {
		if consumed[j] {
			continue
		}
		if delims[j].t == t && delims[j].len == n && !delims[j].backslashed {
			return j
		}
	}

	return -1
}

// markConsumed marks the inclusive delimiter index range.
func markConsumed(consumed []bool, from, to int) {
	for k := from; k <= to; k++ {
		consumed[k] = true
	}
}

// consumeRange marks every delimiter whose start lies inside the
// inclusive character range [start, end].
func consumeRange(delims []delimiter, consumed []bool, start, end inlinePoint) {
	for k := range delims {
		pt := inlinePoint{line: delims[k].line, pos: delims[k].pos}
		if pointBeforeEq(start, pt) && pointBeforeEq(pt, end) {
			consumed[k] = true
		}
	}
}

// textBetween extracts the raw text between two points (exclusive of
// both delimiters), joining lines with sep.
func textBetween(lines []fragmentLine, from, to inlinePoint, sep string) string {
	if !pointBeforeEq(from, to) {
		return ""
	}

	var parts []string
	for li := from.line; li <= to.line; li++ {
		s := &lines[li].str
		lo := 0
		if li == from.line {
			lo = from.pos
		}
		hi := s.Len()
		if li == to.line {
			hi = to.pos + 1
		}
		if lo > hi {
			lo = hi
		}
		part := s.Sliced(lo, hi-lo)
		parts = append(parts, part.String())
	}

	return strings.Join(parts, sep)
}

// delimPosition converts a delimiter's character window to virgin
// coordinates.
func delimPosition(lines []fragmentLine, line, pos, length int) Position {
	s := &lines[line].str
	out := UnsetPosition()
	out.StartLine = lines[line].line
	out.EndLine = lines[line].line
	out.StartCol = s.VirginPos(pos)
	out.EndCol = s.VirginPos(pos + length - 1)

	return out
}

// makeCodeSpan builds an inline code item between two backtick runs.
func (p *Parser) makeCodeSpan(lines []fragmentLine, open, closeDlm *delimiter) inlineEvent {
	c := &Code{Inline: true}
	c.StartDelim = delimPosition(lines, open.line, open.pos, open.len)
	c.EndDelim = delimPosition(lines, closeDlm.line, closeDlm.pos, closeDlm.len)
	c.SyntaxPos = UnsetPosition()

	from := inlinePoint{line: open.line, pos: open.pos + open.len}
	to := inlinePoint{line: closeDlm.line, pos: closeDlm.pos - 1}
	text := textBetween(lines, from, to, " ")

	// One leading and one trailing space are stripped when both ends
	// are spaces and the content has at least one non-space.
	if len(text) > 1 && text[0] == ' ' && text[len(text)-1] == ' ' &&
		strings.TrimSpace(text) != "" {
		text = text[1 : len(text)-1]
	}
	c.Text = text

	c.StartLine = c.StartDelim.StartLine
	c.StartCol = c.StartDelim.StartCol
	c.EndLine = c.EndDelim.EndLine
	c.EndCol = c.EndDelim.EndCol

	return inlineEvent{
		item:  c,
		start: inlinePoint{line: open.line, pos: open.pos},
		end:   inlinePoint{line: closeDlm.line, pos: closeDlm.pos + closeDlm.len - 1},
	}
}

// makeMathSpan builds a math item between two $ runs.
func (p *Parser) makeMathSpan(lines []fragmentLine, open, closeDlm *delimiter) inlineEvent {
	m := &Math{Inline: open.len == 1}
	m.StartDelim = delimPosition(lines, open.line, open.pos, open.len)
	m.EndDelim = delimPosition(lines, closeDlm.line, closeDlm.pos, closeDlm.len)

	from := inlinePoint{line: open.line, pos: open.pos + open.len}
	to := inlinePoint{line: closeDlm.line, pos: closeDlm.pos - 1}
	expr := textBetween(lines, from, to, " ")

	// Trim one backtick pair when the whole expression is code-quoted.
	if len(expr) > 1 && expr[0] == '`' && expr[len(expr)-1] == '`' {
		expr = expr[1 : len(expr)-1]
	}
	m.Expr = expr

	m.StartLine = m.StartDelim.StartLine
	m.StartCol = m.StartDelim.StartCol
	m.EndLine = m.EndDelim.EndLine
	m.EndCol = m.EndDelim.EndCol

	return inlineEvent{
		item:  m,
		start: inlinePoint{line: open.line, pos: open.pos},
		end:   inlinePoint{line: closeDlm.line, pos: closeDlm.pos + closeDlm.len - 1},
	}
}

// emphCandidate is the mutable state of one emphasis run during
// resolution.
type emphCandidate struct {
	idx           int
	remaining     int
	origLen       int
	consumedClose int
	canOpen       bool
	canClose      bool
}

// resolveEmphasis pairs emphasis runs with the CommonMark delimiter
// stack algorithm and the rule of three.
//
//nolint:revive // cognitive-complexity: the delimiter stack is one algorithm
func resolveEmphasis(delims []delimiter, candidates []int) []styleSpan {
	var spans []styleSpan
	var stack []*emphCandidate

	for _, ci := range candidates {
		d := &delims[ci]
		c := &emphCandidate{
			idx:       ci,
			remaining: d.len,
			origLen:   d.len,
			canOpen:   canOpenEmphasis(d),
			canClose:  canCloseEmphasis(d),
		}
		if d.t == dlmStrike {
			c.canOpen = !d.backslashed && d.leftFlanking
			c.canClose = !d.backslashed && d.rightFlanking
		}

		if c.canClose {
			for c.remaining > 0 {
				oi := -1
				for k := len(stack) - 1; k >= 0; k-- {
					o := stack[k]
					if delims[o.idx].t != d.t || !o.canOpen {
						continue
					}
					if d.t != dlmStrike &&
						!ruleOfThree(o.origLen, c.origLen,
							o.canOpen && o.canClose,
							c.canOpen && c.canClose) {
						continue
					}
					oi = k

					break
				}
				if oi < 0 {
					break
				}
				o := stack[oi]

				n := 1
				style := ItalicText
				switch {
				case d.t == dlmStrike:
					n = 2
					style = StrikethroughText
				case o.remaining >= 2 && c.remaining >= 2:
					n = 2
					style = BoldText
				}
				if o.remaining < n || c.remaining < n {
					break
				}

				od := &delims[o.idx]
				spans = append(spans, styleSpan{
					style:     style,
					openLine:  od.line,
					openPos:   od.pos + o.remaining - n,
					openLen:   n,
					closeLine: d.line,
					closePos:  d.pos + c.consumedClose,
					closeLen:  n,
				})

				o.remaining -= n
				c.remaining -= n
				c.consumedClose += n

				// Delimiters between the pair cannot match anymore.
				stack = stack[:oi+1]
				if o.remaining == 0 {
					stack = stack[:oi]
				}
			}
		}

		if c.remaining > 0 && c.canOpen {
			stack = append(stack, c)
		}
	}

	return spans
}

// emitToken is one interruption of plain text during emission.
type emitToken struct {
	line int
	pos  int
	// endLine/endPos are the inclusive end of the consumed range.
	endLine int
	endPos  int

	item  Item       // non-nil for structural events
	style StyleOpts  // for style open/close tokens
	open  bool       // style token direction
	pos0  Position   // virgin window of a style token
}

// emitInline walks the fragment text, skipping consumed ranges, and
// produces Text, LineBreak and structural items in source order.
//
//nolint:revive // function-length,cognitive-complexity: the emission walk is one unit
func (p *Parser) emitInline(lines []fragmentLine, events []inlineEvent, spans []styleSpan) []Item {
	var tokens []emitToken

	for i := range events {
		ev := &events[i]
		tokens = append(tokens, emitToken{
			line:    ev.start.line,
			pos:     ev.start.pos,
			endLine: ev.end.line,
			endPos:  ev.end.pos,
			item:    ev.item,
		})
	}
	for i := range spans {
		sp := &spans[i]
		tokens = append(tokens, emitToken{
			line:    sp.openLine,
			pos:     sp.openPos,
			endLine: sp.openLine,
			endPos:  sp.openPos + sp.openLen - 1,
			style:   sp.style,
			open:    true,
			pos0:    delimPosition(lines, sp.openLine, sp.openPos, sp.openLen),
		})
		tokens = append(tokens, emitToken{
			line:    sp.closeLine,
			pos:     sp.closePos,
			endLine: sp.closeLine,
			endPos:  sp.closePos + sp.closeLen - 1,
			style:   sp.style,
			pos0:    delimPosition(lines, sp.closeLine, sp.closePos, sp.closeLen),
		})
	}

	sortTokens(tokens)

	em := &inlineEmitter{parser: p, lines: lines, carry: true}
	cur := inlinePoint{}

	for i := range tokens {
		t := &tokens[i]

		// A token inside an already-consumed range (a code span the
		// probe matched before it ended up in link text) is emitted by
		// the recursive label parse, not here.
		if t.line < cur.line || (t.line == cur.line && t.pos < cur.pos) {
			continue
		}

		em.emitTextRange(cur, inlinePoint{line: t.line, pos: t.pos - 1})

		switch {
		case t.item != nil:
			em.items = append(em.items, t.item)
			em.lastText = nil
			em.carry = false
		case t.open:
			em.opts |= t.style
			em.pendingOpen = append(em.pendingOpen, StyleDelim{
				Position: t.pos0,
				Style:    t.style,
			})
		default:
			em.opts &^= t.style
			if em.lastText != nil {
				em.lastText.CloseStyles = append(em.lastText.CloseStyles, StyleDelim{
					Position: t.pos0,
					Style:    t.style,
				})
				// The closer is transparent: a space right after it
				// counts as following the closed text.
				s := &lines[t.endLine].str
				if t.endPos+1 >= s.Len() ||
					(t.endPos+1 < s.Len() && s.At(t.endPos+1) == ' ') {
					em.lastText.SpaceAfter = true
				}
			}
		}

		cur = inlinePoint{line: t.endLine, pos: t.endPos + 1}
	}

	last := len(lines) - 1
	em.emitTextRange(cur, inlinePoint{line: last, pos: lines[last].str.Len() - 1})

	return em.items
}

// sortTokens orders tokens by (line, pos); close tokens sort before
// open tokens at the same position only by construction order, which
// the stable insertion sort preserves.
func sortTokens(tokens []emitToken) {
	for i := 1; i < len(tokens); i++ {
		for j := i; j > 0; j-- {
			a, b := &tokens[j-1], &tokens[j]
			if a.line < b.line || (a.line == b.line && a.pos <= b.pos) {
				break
			}
			tokens[j-1], tokens[j] = tokens[j], tokens[j-1]
		}
	}
}

// inlineEmitter accumulates items during the emission walk. carry
// remembers whether whitespace (or a line start) immediately precedes
// the next text region across transparent delimiter runs.
type inlineEmitter struct {
	parser      *Parser
	lines       []fragmentLine
	items       []Item
	opts        StyleOpts
	pendingOpen []StyleDelim
	lastText    *Text
	carry       bool
}

// emitTextRange emits the text between two points, one Text item per
// line, with hard breaks at line ends that carry them.
func (em *inlineEmitter) emitTextRange(from, to inlinePoint) {
	if !pointBeforeEq(from, to) {
		// Empty range: nothing lies between the two points.
		return
	}

	for li := from.line; li <= to.line && li < len(em.lines); li++ {
		s := &em.lines[li].str
		lo := 0
		if li == from.line {
			lo = from.pos
		}
		hi := s.Len() - 1
		if li == to.line {
			hi = to.pos
		}
		if hi >= s.Len() {
			hi = s.Len() - 1
		}

		em.emitTextSegment(li, lo, hi, li < to.line)
		if li < to.line {
			// A soft break reads as whitespace.
			em.carry = true
		}
	}
}

// emitTextSegment emits one line's [lo, hi] slice as a Text item (when
// non-blank) plus a trailing LineBreak when the line ends in a hard
// break and another line follows.
//
//nolint:revive // cognitive-complexity: trimming, breaks and styles in one place
func (em *inlineEmitter) emitTextSegment(li, lo, hi int, lineEndsHere bool) {
	s := &em.lines[li].str
	if lo > hi || lo >= s.Len() {
		return
	}

	hardBreak := false
	var breakPos Position

	if lineEndsHere && hi == s.Len()-1 {
		// Backslash hard break.
		if s.At(hi) == '\\' && !isEscaped(s, hi) {
			hardBreak = true
			breakPos = delimPosition(em.lines, li, hi, 1)
			hi--
		} else {
			// Two or more trailing spaces.
			ws := hi
			for ws >= lo && s.At(ws) == ' ' {
				ws--
			}
			if hi-ws >= 2 {
				hardBreak = true
				breakPos = delimPosition(em.lines, li, ws+1, hi-ws)
			}
		}
	}

	if lo <= hi {
		seg := s.Sliced(lo, hi-lo+1)
		removeBackslashes(&seg)
		replaceEntities(&seg)
		simplified := seg.Simplified()

		if !simplified.IsEmpty() {
			t := &Text{Opts: em.opts, Data: simplified.String()}
			t.Position = UnsetPosition()
			t.StartLine = em.lines[li].line
			t.EndLine = em.lines[li].line
			t.StartCol = simplified.VirginPos(0)
			t.EndCol = simplified.VirginPos(simplified.Len() - 1)

			t.SpaceBefore = em.carry || lo == 0 ||
				unicode.IsSpace(s.At(lo-1)) || unicode.IsSpace(s.At(lo))
			t.SpaceAfter = hi >= s.Len()-1 || unicode.IsSpace(s.At(hi+1)) ||
				unicode.IsSpace(s.At(hi))

			t.OpenStyles = em.pendingOpen
			em.pendingOpen = nil

			em.items = append(em.items, t)
			em.lastText = t
		}
		em.carry = unicode.IsSpace(s.At(hi))
	}

	if hardBreak {
		br := &LineBreak{}
		br.Position = breakPos
		em.items = append(em.items, br)
		em.lastText = nil
	}
}
