package md

import (
	"strings"
)

// lineScanner is a character cursor over a fragment's lines, used by
// the link destination and title grammars.
type lineScanner struct {
	lines []fragmentLine
	line  int
	pos   int
}

func (sc *lineScanner) atEnd() bool {
	return sc.line >= len(sc.lines)
}

func (sc *lineScanner) cur() (rune, bool) {
	if sc.atEnd() {
		return 0, false
	}
	s := &sc.lines[sc.line].str
	if sc.pos >= s.Len() {
		return 0, false
	}

	return s.At(sc.pos), true
}

func (sc *lineScanner) advance() {
	s := &sc.lines[sc.line].str
	sc.pos++
	if sc.pos >= s.Len() {
		// Stay at end-of-line; nextLine moves on explicitly.
		return
	}
}

func (sc *lineScanner) atLineEnd() bool {
	if sc.atEnd() {
		return true
	}

	return sc.pos >= sc.lines[sc.line].str.Len()
}

func (sc *lineScanner) nextLine() bool {
	if sc.line+1 >= len(sc.lines) {
		sc.line = len(sc.lines)

		return false
	}
	sc.line++
	sc.pos = 0

	return true
}

// skipSpacesAndBreaks skips spaces, allowing at most one line break.
func (sc *lineScanner) skipSpacesAndBreaks() bool {
	brokeOnce := false
	for {
		r, ok := sc.cur()
		if ok && (r == ' ' || r == '\t') {
			sc.advance()

			continue
		}
		if !ok && sc.atLineEnd() && !sc.atEnd() {
			if brokeOnce {
				return false
			}
			if !sc.nextLine() {
				return false
			}
			brokeOnce = true

			continue
		}

		return true
	}
}

// subLines extracts the inclusive character range as its own line
// slice, preserving virgin mappings.
func subLines(lines []fragmentLine, from, to inlinePoint) []fragmentLine {
	var out []fragmentLine
	for li := from.line; li <= to.line && li < len(lines); li++ {
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
		out = append(out, fragmentLine{
			str:  s.Sliced(lo, hi-lo),
			line: lines[li].line,
		})
	}

	return out
}

// rangePosition converts an inclusive character range to virgin
// coordinates.
func rangePosition(lines []fragmentLine, from, to inlinePoint) Position {
	out := UnsetPosition()
	if from.line >= len(lines) || to.line >= len(lines) {
		return out
	}

	fs := &lines[from.line].str
	ts := &lines[to.line].str
	out.StartLine = lines[from.line].line
	out.EndLine = lines[to.line].line
	if from.pos < fs.Len() {
		out.StartCol = fs.VirginPos(from.pos)
	}
	if to.pos >= 0 && to.pos < ts.Len() {
		out.EndCol = ts.VirginPos(to.pos)
	}

	return out
}

// isAbsoluteURI reports whether text scans as scheme ':' rest with no
// spaces or angle brackets.
func isAbsoluteURI(text string) bool {
	colon := strings.IndexByte(text, ':')
	if colon < 1 || colon > 32 {
		return false
	}

	scheme := text[:colon]
	if !isASCIILetter(rune(scheme[0])) {
		return false
	}
	for _, r := range scheme[1:] {
		if !isASCIIAlnum(r) && r != '+' && r != '.' && r != '-' {
			return false
		}
	}

	for _, r := range text[colon+1:] {
		if r == ' ' || r == '\t' || r == '<' || r == '>' {
			return false
		}
	}

	return true
}

// isEmailAddress applies the RFC-5322-lite shape CommonMark autolinks
// use.
func isEmailAddress(text string) bool {
	at := strings.IndexByte(text, '@')
	if at < 1 || at == len(text)-1 {
		return false
	}

	const localExtra = ".!#$%&'*+/=?^_`{|}~-"
	for _, r := range text[:at] {
		if !isASCIIAlnum(r) && !strings.ContainsRune(localExtra, r) {
			return false
		}
	}

	domain := text[at+1:]
	for _, part := range strings.Split(domain, ".") {
		if part == "" {
			return false
		}
		if part[0] == '-' || part[len(part)-1] == '-' {
			return false
		}
		for _, r := range part {
			if !isASCIIAlnum(r) && r != '-' {
				return false
			}
		}
	}

	return true
}

// checkAutolinkOrHTML recognizes <...> at the delimiter as an absolute
// URI autolink, an email autolink, or a raw HTML tag, in that order.
func (p *Parser) checkAutolinkOrHTML(lines []fragmentLine, d *delimiter) (inlineEvent, bool) {
	s := &lines[d.line].str

	gt := -1
	for i := d.pos + 1; i < s.Len(); i++ {
		r := s.At(i)
		if r == '>' {
			gt = i

			break
		}
		if r == '<' || r == ' ' || r == '\t' {
			break
		}
	}

	if gt > d.pos+1 {
		body := s.Sliced(d.pos+1, gt-d.pos-1)
		text := body.String()

		if isAbsoluteURI(text) || isEmailAddress(text) {
			l := &Link{Img: nil, P: nil}
			l.TextPos = rangePosition(lines,
				inlinePoint{line: d.line, pos: d.pos + 1},
				inlinePoint{line: d.line, pos: gt - 1})
			l.URLPos = l.TextPos
			l.Text = text
			l.URL = text
			l.StartLine = lines[d.line].line
			l.EndLine = lines[d.line].line
			l.StartCol = s.VirginPos(d.pos)
			l.EndCol = s.VirginPos(gt)

			return inlineEvent{
				item:  l,
				start: inlinePoint{line: d.line, pos: d.pos},
				end:   inlinePoint{line: d.line, pos: gt},
			}, true
		}
	}

	if n := matchHTMLTag(s, d.pos); n > 0 {
		tag := s.Sliced(d.pos, n)
		h := &RawHTML{Text: tag.String()}
		h.StartLine = lines[d.line].line
		h.EndLine = lines[d.line].line
		h.StartCol = s.VirginPos(d.pos)
		h.EndCol = s.VirginPos(d.pos + n - 1)

		return inlineEvent{
			item:  h,
			start: inlinePoint{line: d.line, pos: d.pos},
			end:   inlinePoint{line: d.line, pos: d.pos + n - 1},
		}, true
	}

	return inlineEvent{}, false
}

// findClosingBracket finds the ] matching the opener at openIdx,
// respecting nested unescaped brackets and skipping delimiters
// consumed by the probe pass.
func findClosingBracket(delims []delimiter, consumed []bool, openIdx int) int {
	depth := 0
	for j := openIdx + 1; j < len(delims); j++ {
		if consumed[j] || delims[j].backslashed {
			continue
		}
		switch delims[j].t {
		case dlmSquareOpen, dlmImageOpen:
			depth++
		case dlmSquareClose:
			if depth == 0 {
				return j
			}
			depth--
		}
	}

	return -1
}

// checkForLinkOrImage classifies the bracketed construct at openIdx as
// a footnote reference, inline link/image, reference link/image
// (full, collapsed or shortcut), or nothing.
//
//nolint:revive // function-length,cognitive-complexity: the link grammar is one decision tree
func (p *Parser) checkForLinkOrImage(
	lines []fragmentLine,
	delims []delimiter,
	consumed []bool,
	openIdx int,
	doc *Document,
	ctx *blockContext,
	opts inlineOpts,
) (inlineEvent, bool) {
	open := &delims[openIdx]
	isImage := open.t == dlmImageOpen

	closeIdx := findClosingBracket(delims, consumed, openIdx)
	if closeIdx < 0 {
		return inlineEvent{}, false
	}
	closeDlm := &delims[closeIdx]

	start := inlinePoint{line: open.line, pos: open.pos}
	labelFrom := inlinePoint{line: open.line, pos: open.pos + open.len}
	labelTo := inlinePoint{line: closeDlm.line, pos: closeDlm.pos - 1}
	label := textBetween(lines, labelFrom, labelTo, " ")

	// Footnote reference: [^id] with a non-empty, space-free id.
	if !isImage && strings.HasPrefix(label, "^") &&
		len(label) > 1 && !strings.ContainsAny(label, " \t") {
		fr := &FootnoteRef{IDPos: UnsetPosition()}
		fr.ID = labelKey(label, ctx.workingPath, ctx.fileName)
		fr.IDPos = rangePosition(lines, labelFrom, labelTo)
		fr.Position = rangePosition(lines, start,
			inlinePoint{line: closeDlm.line, pos: closeDlm.pos})

		return inlineEvent{
			item:  fr,
			start: start,
			end:   inlinePoint{line: closeDlm.line, pos: closeDlm.pos},
		}, true
	}

	if opts.inLink && !isImage {
		return inlineEvent{}, false
	}

	after := inlinePoint{line: closeDlm.line, pos: closeDlm.pos + 1}
	afterStr := &lines[after.line].str

	// Inline form: ](...).
	if after.pos < afterStr.Len() && afterStr.At(after.pos) == '(' {
		url, urlPos, end, ok := parseLinkTail(lines, after)
		if ok {
			item := p.makeLinkOrImage(lines, doc, ctx, opts, isImage,
				label, labelFrom, labelTo, url, urlPos, start, end)

			return inlineEvent{item: item, start: start, end: end}, true
		}

		return inlineEvent{}, false
	}

	// Full or collapsed reference: ][ref] or ][].
	if after.pos < afterStr.Len() && afterStr.At(after.pos) == '[' {
		refEnd := afterStr.IndexOf("]", after.pos+1)
		if refEnd < 0 {
			return inlineEvent{}, false
		}
		refLabelSlice := afterStr.Sliced(after.pos+1, refEnd-after.pos-1)
		refLabel := refLabelSlice.String()
		if refLabel == "" {
			refLabel = label
		}
		def, found := doc.LabeledLink(labelKey(refLabel, ctx.workingPath, ctx.fileName))
		if !found {
			return inlineEvent{}, false
		}
		end := inlinePoint{line: after.line, pos: refEnd}
		item := p.makeLinkOrImage(lines, doc, ctx, opts, isImage,
			label, labelFrom, labelTo, def.URL, def.URLPos, start, end)

		return inlineEvent{item: item, start: start, end: end}, true
	}

	// Shortcut reference: bare [label].
	def, found := doc.LabeledLink(labelKey(label, ctx.workingPath, ctx.fileName))
	if !found {
		return inlineEvent{}, false
	}
	end := inlinePoint{line: closeDlm.line, pos: closeDlm.pos}
	item := p.makeLinkOrImage(lines, doc, ctx, opts, isImage,
		label, labelFrom, labelTo, def.URL, def.URLPos, start, end)

	return inlineEvent{item: item, start: start, end: end}, true
}

// makeLinkOrImage builds the Link or Image item, recursively parsing
// the label with links suppressed.
func (p *Parser) makeLinkOrImage(
	lines []fragmentLine,
	doc *Document,
	ctx *blockContext,
	opts inlineOpts,
	isImage bool,
	label string,
	labelFrom, labelTo inlinePoint,
	url string,
	urlPos Position,
	start, end inlinePoint,
) Item {
	inner := subLines(lines, labelFrom, labelTo)
	sub := inlineOpts{inLink: true, skipPlugins: true}
	para := &Paragraph{}
	para.Position = UnsetPosition()
	para.Items = p.parseFormattedText(inner, doc, ctx, sub)
	fitEnvelope(&para.Position, para.Items)

	if isImage {
		img := &Image{P: para}
		img.Text = label
		img.URL = url
		img.TextPos = rangePosition(lines, labelFrom, labelTo)
		img.URLPos = urlPos
		img.Position = rangePosition(lines, start, end)

		return img
	}

	l := &Link{P: para}
	l.Text = label
	l.URL = url
	l.TextPos = rangePosition(lines, labelFrom, labelTo)
	l.URLPos = urlPos
	l.Position = rangePosition(lines, start, end)

	for _, it := range para.Items {
		if img, ok := it.(*Image); ok {
			l.Img = img

			break
		}
	}

	return l
}

// parseLinkTail parses the (destination "title") tail of an inline
// link, starting at the ( character. The title is validated and
// discarded. Returns the destination, its virgin position and the
// inclusive end point at the closing parenthesis.
//
//nolint:revive // function-length,cognitive-complexity: destination and title grammars
func parseLinkTail(lines []fragmentLine, at inlinePoint) (string, Position, inlinePoint, bool) {
	sc := &lineScanner{lines: lines, line: at.line, pos: at.pos + 1}
	urlPos := UnsetPosition()

	if !sc.skipSpacesAndBreaks() {
		return "", urlPos, inlinePoint{}, false
	}

	var url VirginString
	urlFrom := inlinePoint{line: sc.line, pos: sc.pos}

	r, ok := sc.cur()
	if !ok {
		return "", urlPos, inlinePoint{}, false
	}

	if r == '<' {
		// Bracketed destination: anything except <, > and line ends.
		sc.advance()
		from := sc.pos
		s := &lines[sc.line].str
		for {
			c, ok2 := sc.cur()
			if !ok2 {
				return "", urlPos, inlinePoint{}, false
			}
			if c == '<' {
				return "", urlPos, inlinePoint{}, false
			}
			if c == '>' && !isEscaped(s, sc.pos) {
				break
			}
			sc.advance()
		}
		url = s.Sliced(from, sc.pos-from)
		urlFrom = inlinePoint{line: sc.line, pos: from}
		sc.advance()
	} else {
		// Bare destination: balanced parentheses, stops at whitespace
		// or an unmatched ).
		s := &lines[sc.line].str
		from := sc.pos
		depth := 0
		for {
			c, ok2 := sc.cur()
			if !ok2 {
				break
			}
			if c == ' ' || c == '\t' {
				break
			}
			if !isEscaped(s, sc.pos) {
				if c == '(' {
					depth++
				}
				if c == ')' {
					if depth == 0 {
						break
					}
					depth--
				}
			}
			sc.advance()
		}
		if depth != 0 || sc.pos == from {
			if sc.pos == from {
				// An empty bare destination is accepted only when the ) follows at once.
				r2, _ := sc.cur()
				if r2 != ')' {
					return "", urlPos, inlinePoint{}, false
				}
			} else {
				return "", urlPos, inlinePoint{}, false
			}
		}
		url = s.Sliced(from, sc.pos-from)
	}

	if !url.IsEmpty() {
		urlPos.StartLine = lines[urlFrom.line].line
		urlPos.EndLine = lines[urlFrom.line].line
		urlPos.StartCol = url.VirginPos(0)
		urlPos.EndCol = url.VirginPos(url.Len() - 1)
	}

	hadSpace := false
	if c, ok2 := sc.cur(); !ok2 || c == ' ' || c == '\t' {
		hadSpace = true
	}
	if !sc.skipSpacesAndBreaks() {
		return "", urlPos, inlinePoint{}, false
	}

	// Optional title, separated from the destination by whitespace.
	if c, ok2 := sc.cur(); ok2 && hadSpace && (c == '"' || c == '\'' || c == '(') {
		closeCh := c
		if c == '(' {
			closeCh = ')'
		}
		sc.advance()
		for {
			c2, ok3 := sc.cur()
			if !ok3 {
				if sc.atLineEnd() && !sc.atEnd() {
					if !sc.nextLine() {
						return "", urlPos, inlinePoint{}, false
					}

					continue
				}

				return "", urlPos, inlinePoint{}, false
			}
			if c2 == closeCh && !isEscaped(&lines[sc.line].str, sc.pos) {
				sc.advance()

				break
			}
			sc.advance()
		}
		if !sc.skipSpacesAndBreaks() {
			return "", urlPos, inlinePoint{}, false
		}
	}

	c, ok2 := sc.cur()
	if !ok2 || c != ')' {
		return "", urlPos, inlinePoint{}, false
	}
	end := inlinePoint{line: sc.line, pos: sc.pos}

	removeBackslashes(&url)

	return url.String(), urlPos, end, true
}

// parseLinkRefDefinition harvests a [label]: destination "title"
// definition at the start of a text fragment. Returns the number of
// lines consumed (zero when the fragment does not start with one).
//
//nolint:revive // function-length,cognitive-complexity: the definition grammar spans lines
func (p *Parser) parseLinkRefDefinition(lines []fragmentLine, doc *Document, ctx *blockContext) int {
	if len(lines) == 0 {
		return 0
	}

	s := &lines[0].str
	ns := skipSpaces(s, 0)
	if ns > maxBlockIndent || ns >= s.Len() || s.At(ns) != '[' {
		return 0
	}
	if ns+1 < s.Len() && s.At(ns+1) == '^' {
		return 0
	}

	// Label: up to the first unescaped ] on the same line.
	end := -1
	for i := ns + 1; i < s.Len(); i++ {
		if s.At(i) == ']' && !isEscaped(s, i) {
			end = i

			break
		}
	}
	if end < 0 || end == ns+1 {
		return 0
	}
	if end+1 >= s.Len() || s.At(end+1) != ':' {
		return 0
	}

	labelSlice := s.Sliced(ns+1, end-ns-1)
	label := labelSlice.String()
	if strings.TrimSpace(label) == "" {
		return 0
	}

	sc := &lineScanner{lines: lines, line: 0, pos: end + 2}
	if !sc.skipSpacesAndBreaks() {
		return 0
	}
	if sc.atEnd() || sc.atLineEnd() {
		return 0
	}

	// Destination.
	ds := &lines[sc.line].str
	from := sc.pos
	if r, _ := sc.cur(); r == '<' {
		sc.advance()
		from = sc.pos
		for {
			c, ok := sc.cur()
			if !ok {
				return 0
			}
			if c == '>' && !isEscaped(ds, sc.pos) {
				break
			}
			sc.advance()
		}
	} else {
		for {
			c, ok := sc.cur()
			if !ok || c == ' ' || c == '\t' {
				break
			}
			sc.advance()
		}
		if sc.pos == from {
			return 0
		}
	}
	url := ds.Sliced(from, sc.pos-from)
	urlLine := sc.line
	if r, _ := sc.cur(); r == '>' {
		sc.advance()
	}

	destLine := sc.line

	// Optional title; everything after it must be whitespace.
	sc.skipSpacesAndBreaks()
	lastLine := sc.line
	if c, ok := sc.cur(); ok && (c == '"' || c == '\'' || c == '(') {
		closeCh := c
		if c == '(' {
			closeCh = ')'
		}
		sc.advance()
		for {
			c2, ok2 := sc.cur()
			if !ok2 {
				if sc.atLineEnd() && !sc.atEnd() && sc.nextLine() {
					continue
				}

				return 0
			}
			if c2 == closeCh && !isEscaped(&lines[sc.line].str, sc.pos) {
				sc.advance()

				break
			}
			sc.advance()
		}
		lastLine = sc.line
		if !sc.atLineEnd() {
			rest := lines[sc.line].str.Sliced(sc.pos, -1)
			if !isEmptyLine(&rest) {
				// Junk after the title: fall back to a definition
				// without one when the destination line was clean.
				if destLine == 0 && sc.line == 0 {
					return 0
				}
				lastLine = destLine
			}
		}
	} else if ok && sc.line == destLine && !sc.atLineEnd() {
		// Non-title junk after the destination invalidates the
		// definition.
		return 0
	} else {
		lastLine = destLine
	}

	urlPos := UnsetPosition()
	if !url.IsEmpty() {
		urlPos.StartLine = lines[urlLine].line
		urlPos.EndLine = lines[urlLine].line
		urlPos.StartCol = url.VirginPos(0)
		urlPos.EndCol = url.VirginPos(url.Len() - 1)
	}

	removeBackslashes(&url)

	def := &Link{}
	def.URL = url.String()
	def.URLPos = urlPos
	def.Text = label
	def.StartLine = lines[0].line
	def.EndLine = lines[lastLine].line
	def.StartCol = s.VirginPos(ns)

	doc.insertLabeledLink(labelKey(label, ctx.workingPath, ctx.fileName), def)

	return lastLine + 1
}
