package md

import (
	"strings"
	"unicode"
)

// parseFragment turns one flushed fragment into block items. In the
// reference-collection pass only definitions are harvested and no
// items are emitted.
func (p *Parser) parseFragment(f *fragment, doc *Document, ctx *blockContext) []Item {
	switch f.kind {
	case lineHeading:
		return p.parseHeading(f, doc, ctx)
	case lineCode:
		return p.parseFencedCode(f, ctx)
	case lineCodeIndentedBySpaces:
		return p.parseIndentedCode(f, ctx)
	case lineBlockquote:
		return p.parseBlockquote(f, doc, ctx)
	case lineList:
		return p.parseList(f, doc, ctx)
	case lineFootnote:
		p.parseFootnote(f, doc, ctx)

		return nil
	case lineHTML:
		return p.parseHTMLBlock(f, ctx)
	case lineText:
		return p.parseText(f, doc, ctx)
	default:
		return nil
	}
}

// labelKey builds a document-scoped label key: "#LABEL/workdir/file".
// Labels are whitespace-collapsed and case-folded to upper. Heading
// labels keep their slug casing and use headingLabelKey instead.
func labelKey(label, workingPath, fileName string) string {
	collapsed := strings.Join(strings.Fields(label), " ")

	return "#" + strings.ToUpper(collapsed) + "/" + workingPath + fileName
}

// headingLabelKey builds the key headings are registered under.
func headingLabelKey(label, workingPath, fileName string) string {
	return "#" + label + "/" + workingPath + fileName
}

// slugify turns heading text into an auto label: letters and digits
// lowercased, runs of spaces, dashes and underscores between them
// turned into one dash, every other character dropped.
func slugify(text string) string {
	var b strings.Builder
	dash := false

	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r) || r == '-' || r == '_':
			dash = true
		}
	}

	return b.String()
}

// parseHeading builds an ATX heading from a single-line fragment.
//
//nolint:revive // function-length: heading anatomy has several regions
func (p *Parser) parseHeading(f *fragment, doc *Document, ctx *blockContext) []Item {
	ln := f.lines[0]
	s := ln.str
	ns := skipSpaces(&s, 0)

	level := 0
	i := ns
	for i < s.Len() && s.At(i) == '#' {
		i++
		level++
	}

	h := &Heading{Level: level}
	h.StartLine = ln.line
	h.EndLine = ln.line
	h.StartCol = s.VirginPos(ns)
	h.EndCol = s.VirginPos(s.Len() - 1)

	delim := UnsetPosition()
	delim.StartLine = ln.line
	delim.EndLine = ln.line
	delim.StartCol = s.VirginPos(ns)
	delim.EndCol = s.VirginPos(i - 1)
	h.Delims = append(h.Delims, delim)

	content := s.Sliced(skipSpaces(&s, i), -1)

	// Trailing closing sequence of #, preceded by a space.
	if content.Len() > 0 {
		j := content.Len()
		for j > 0 && content.At(j-1) == '#' {
			j--
		}
		if j < content.Len() && (j == 0 || content.At(j-1) == ' ' || content.At(j-1) == '\t') {
			closeStart := j
			for closeStart > 0 && (content.At(closeStart-1) == ' ' || content.At(closeStart-1) == '\t') {
				closeStart--
			}
			closePos := UnsetPosition()
			closePos.StartLine = ln.line
			closePos.EndLine = ln.line
			closePos.StartCol = content.VirginPos(j)
			closePos.EndCol = content.VirginPos(content.Len() - 1)
			h.Delims = append(h.Delims, closePos)
			content = content.Sliced(0, closeStart)
		}
	}

	// Explicit {#id} label suffix.
	label := ""
	if end := content.Len(); end > 0 && content.At(end-1) == '}' {
		if open := content.IndexOf("{#", 0); open >= 0 && end-open > 3 {
			body := content.Sliced(open+2, end-open-3)
			if !body.IsEmpty() {
				label = body.String()
				h.LabelPos = UnsetPosition()
				h.LabelPos.StartLine = ln.line
				h.LabelPos.EndLine = ln.line
				h.LabelPos.StartCol = content.VirginPos(open)
				h.LabelPos.EndCol = content.VirginPos(end - 1)
				content = content.Sliced(0, open)
			}
		}
	}

	para := &Paragraph{}
	para.Position = UnsetPosition()
	if !isEmptyLine(&content) {
		inner := []fragmentLine{{str: content, line: ln.line}}
		para.Items = p.parseFormattedText(inner, doc, ctx, inlineOpts{})
		fitEnvelope(&para.Position, para.Items)
	}
	h.P = para

	if label == "" && len(para.Items) > 0 {
		label = slugify(plainText(para.Items))
	}
	if label != "" {
		h.Label = headingLabelKey(label, ctx.workingPath, ctx.fileName)
		doc.insertLabeledHeading(h.Label, h)
	}

	if ctx.collectRefLinks {
		return nil
	}

	return []Item{h}
}

// parseFencedCode builds a fenced code block.
//
//nolint:revive // function-length: open fence, body and close fence regions
func (p *Parser) parseFencedCode(f *fragment, ctx *blockContext) []Item {
	open := f.lines[0]
	ns := skipSpaces(&open.str, 0)
	fenceEnd := ns
	for fenceEnd < open.str.Len() && open.str.At(fenceEnd) == f.fenceChar {
		fenceEnd++
	}

	c := &Code{Fenced: true}
	c.StartLine = open.line
	c.StartCol = open.str.VirginPos(ns)
	c.StartDelim = UnsetPosition()
	c.StartDelim.StartLine = open.line
	c.StartDelim.EndLine = open.line
	c.StartDelim.StartCol = open.str.VirginPos(ns)
	c.StartDelim.EndCol = open.str.VirginPos(fenceEnd - 1)
	c.EndDelim = UnsetPosition()
	c.SyntaxPos = UnsetPosition()

	info := open.str.Sliced(fenceEnd, -1)
	trimmed := info.Simplified()
	if !trimmed.IsEmpty() {
		syntax := trimmed
		if sp := syntax.IndexOf(" ", 0); sp >= 0 {
			syntax = syntax.Sliced(0, sp)
		}
		c.Syntax = syntax.String()
		c.SyntaxPos.StartLine = open.line
		c.SyntaxPos.EndLine = open.line
		c.SyntaxPos.StartCol = syntax.VirginPos(0)
		c.SyntaxPos.EndCol = syntax.VirginPos(syntax.Len() - 1)
	}

	body := f.lines[1:]
	if len(body) > 0 {
		last := body[len(body)-1]
		if isClosingCodeFence(&last.str, f.fenceChar, f.fenceLen) {
			cns := skipSpaces(&last.str, 0)
			cend := cns
			for cend < last.str.Len() && last.str.At(cend) == f.fenceChar {
				cend++
			}
			c.EndDelim.StartLine = last.line
			c.EndDelim.EndLine = last.line
			c.EndDelim.StartCol = last.str.VirginPos(cns)
			c.EndDelim.EndCol = last.str.VirginPos(cend - 1)
			body = body[:len(body)-1]
		}
	}

	var text []string
	for i := range body {
		content := trimIndent(&body[i].str, ns)
		text = append(text, content.String())
	}
	c.Text = strings.Join(text, "\n")

	last := f.lines[len(f.lines)-1]
	c.EndLine = last.line
	if last.str.Len() > 0 {
		c.EndCol = last.str.VirginPos(last.str.Len() - 1)
	}

	if ctx.collectRefLinks {
		return nil
	}

	return []Item{c}
}

// parseIndentedCode builds an indented code block, trimming trailing
// blank lines the segmenter absorbed.
func (p *Parser) parseIndentedCode(f *fragment, ctx *blockContext) []Item {
	lines := f.lines
	for len(lines) > 0 && isEmptyLine(&lines[len(lines)-1].str) {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil
	}

	c := &Code{}
	c.StartDelim = UnsetPosition()
	c.EndDelim = UnsetPosition()
	c.SyntaxPos = UnsetPosition()
	c.StartLine = lines[0].line
	c.EndLine = lines[len(lines)-1].line
	c.StartCol = lines[0].str.VirginPos(4)
	lastLn := lines[len(lines)-1]
	if lastLn.str.Len() > 0 {
		c.EndCol = lastLn.str.VirginPos(lastLn.str.Len() - 1)
	}

	var text []string
	for i := range lines {
		content := trimIndent(&lines[i].str, 4)
		text = append(text, content.String())
	}
	c.Text = strings.Join(text, "\n")

	if ctx.collectRefLinks {
		return nil
	}

	return []Item{c}
}

// parseBlockquote strips the > markers, records their virgin
// positions, and recursively segments the inner lines.
func (p *Parser) parseBlockquote(f *fragment, doc *Document, ctx *blockContext) []Item {
	bq := &Blockquote{}
	bq.Position = UnsetPosition()

	inner := make([]fragmentLine, 0, len(f.lines))
	for i := range f.lines {
		ln := &f.lines[i]
		stripped, col := stripQuoteMarker(&ln.str)
		if col >= 0 {
			d := UnsetPosition()
			d.StartLine = ln.line
			d.EndLine = ln.line
			d.StartCol = ln.str.VirginPos(col)
			d.EndCol = d.StartCol
			bq.Delims = append(bq.Delims, d)
		}
		inner = append(inner, fragmentLine{str: stripped, line: ln.line})
	}

	sub := *ctx
	sub.quoteLevel++
	bq.Items = p.parseLines(inner, doc, &sub)

	if ctx.collectRefLinks {
		return nil
	}

	first := &f.lines[0]
	last := &f.lines[len(f.lines)-1]
	bq.StartLine = first.line
	bq.StartCol = first.str.VirginPos(skipSpaces(&first.str, 0))
	bq.EndLine = last.line
	if last.str.Len() > 0 {
		bq.EndCol = last.str.VirginPos(last.str.Len() - 1)
	} else {
		bq.EndCol = bq.StartCol
	}

	return []Item{bq}
}

// parseList splits the fragment into items on marker lines and
// recursively parses each item's dedented content.
//
//nolint:revive // function-length,cognitive-complexity: item splitting plus recursion
func (p *Parser) parseList(f *fragment, doc *Document, ctx *blockContext) []Item {
	list := &List{}
	list.Position = UnsetPosition()

	var raw []listRawItem

	for i := range f.lines {
		ln := &f.lines[i]
		ns := skipSpaces(&ln.str, 0)
		if m, ok := parseListMarker(&ln.str, ns); ok &&
			m.char == f.marker.char && ns <= f.marker.markerPos+1 &&
			!insideOpenFence(raw) {
			raw = append(raw, listRawItem{marker: m})
		}
		if len(raw) == 0 {
			continue
		}
		raw[len(raw)-1].lines = append(raw[len(raw)-1].lines, *ln)
	}

	ordered := f.marker.ordered
	for idx := range raw {
		it := &raw[idx]
		li := &ListItem{Delim: UnsetPosition(), TaskDelim: UnsetPosition()}
		li.Position = UnsetPosition()

		first := &it.lines[0]
		li.StartLine = first.line
		li.StartCol = first.str.VirginPos(it.marker.markerPos)
		last := &it.lines[len(it.lines)-1]
		li.EndLine = last.line
		if last.str.Len() > 0 {
			li.EndCol = last.str.VirginPos(last.str.Len() - 1)
		} else {
			li.EndCol = li.StartCol
		}

		li.Delim.StartLine = first.line
		li.Delim.EndLine = first.line
		li.Delim.StartCol = first.str.VirginPos(it.marker.markerPos)
		li.Delim.EndCol = first.str.VirginPos(it.marker.markerPos + it.marker.markerLen - 1)

		if ordered {
			li.ListType = Ordered
			li.StartNumber = it.marker.startNumber
			if idx == 0 {
				li.PreState = Start
			} else {
				li.PreState = Continue
			}
		}

		// Item content: the first line past the marker, the rest
		// dedented by the content column.
		content := first.str.Sliced(it.marker.contentPos, -1)

		// Task list box.
		if box, checked, delim := parseTaskBox(&content, first.line); box {
			li.TaskList = true
			li.Checked = checked
			li.TaskDelim = delim
			content = content.Sliced(skipSpaces(&content, 3), -1)
		}

		inner := []fragmentLine{{str: content, line: first.line}}
		for j := 1; j < len(it.lines); j++ {
			dedented := trimIndent(&it.lines[j].str, it.marker.contentPos)
			inner = append(inner, fragmentLine{str: dedented, line: it.lines[j].line})
		}

		sub := *ctx
		li.Items = p.parseLines(inner, doc, &sub)

		list.Items = append(list.Items, li)
	}

	if ctx.collectRefLinks || len(list.Items) == 0 {
		return nil
	}

	fitEnvelope(&list.Position, list.Items)

	return []Item{list}
}

// listRawItem is one list item's marker and raw lines before
// recursion.
type listRawItem struct {
	marker listMarker
	lines  []fragmentLine
}

// insideOpenFence reports whether the last raw item being accumulated
// currently has an unclosed code fence, so marker-looking lines inside
// it stay content.
func insideOpenFence(raw []listRawItem) bool {
	if len(raw) == 0 {
		return false
	}
	it := raw[len(raw)-1]

	var ch rune
	n := 0
	for i := range it.lines {
		s := &it.lines[i].str
		body := skipSpaces(s, 0)
		if i == 0 {
			body = it.marker.contentPos
			if body > s.Len() {
				body = s.Len()
			}
			body = skipSpaces(s, body)
		}
		if n == 0 {
			if c, l, ok := isCodeFence(s, body); ok {
				ch = c
				n = l
			}
		} else if isClosingFenceAt(s, ch, n) {
			ch = 0
			n = 0
		}
	}

	return n > 0
}

// parseTaskBox recognizes a [ ] / [x] / [X] box at the start of item
// content.
func parseTaskBox(content *VirginString, line int) (ok, checked bool, delim Position) {
	delim = UnsetPosition()
	if content.Len() < 3 || content.At(0) != '[' || content.At(2) != ']' {
		return false, false, delim
	}
	mid := content.At(1)
	if mid != ' ' && mid != 'x' && mid != 'X' {
		return false, false, delim
	}
	if content.Len() > 3 && content.At(3) != ' ' && content.At(3) != '\t' {
		return false, false, delim
	}

	delim.StartLine = line
	delim.EndLine = line
	delim.StartCol = content.VirginPos(0)
	delim.EndCol = content.VirginPos(2)

	return true, mid != ' ', delim
}

// parseFootnote registers a footnote definition with the document.
// Footnotes live in the document map, not in the item tree.
func (p *Parser) parseFootnote(f *fragment, doc *Document, ctx *blockContext) {
	first := &f.lines[0]
	ns := skipSpaces(&first.str, 0)
	idEnd, ok := isFootnoteStart(&first.str, ns)
	if !ok {
		return
	}

	// The label spans [^...]; the id excludes the brackets and caret.
	id := first.str.Sliced(ns+2, idEnd-2-(ns+2))
	key := labelKey("^"+id.String(), ctx.workingPath, ctx.fileName)

	fn := &Footnote{IDPos: UnsetPosition()}
	fn.Position = UnsetPosition()
	fn.IDPos.StartLine = first.line
	fn.IDPos.EndLine = first.line
	fn.IDPos.StartCol = first.str.VirginPos(ns)
	fn.IDPos.EndCol = first.str.VirginPos(idEnd - 1)

	rest := first.str.Sliced(skipSpaces(&first.str, idEnd), -1)
	inner := []fragmentLine{{str: rest, line: first.line}}
	for j := 1; j < len(f.lines); j++ {
		dedented := trimIndent(&f.lines[j].str, 4)
		inner = append(inner, fragmentLine{str: dedented, line: f.lines[j].line})
	}

	fn.StartLine = first.line
	fn.StartCol = first.str.VirginPos(ns)
	last := &f.lines[len(f.lines)-1]
	fn.EndLine = last.line
	if last.str.Len() > 0 {
		fn.EndCol = last.str.VirginPos(last.str.Len() - 1)
	} else {
		fn.EndCol = fn.StartCol
	}

	if !ctx.collectRefLinks {
		fn.Items = p.parseLines(inner, doc, ctx)
	}

	doc.footnotes.Insert(key, fn)
}

// parseHTMLBlock emits the fragment verbatim as a free-standing raw
// HTML item.
func (p *Parser) parseHTMLBlock(f *fragment, ctx *blockContext) []Item {
	if ctx.collectRefLinks {
		return nil
	}

	var text []string
	for i := range f.lines {
		text = append(text, f.lines[i].str.String())
	}

	h := &RawHTML{Text: strings.Join(text, "\n"), FreeTag: true}
	first := &f.lines[0]
	last := &f.lines[len(f.lines)-1]
	h.StartLine = first.line
	h.StartCol = first.str.VirginPos(skipSpaces(&first.str, 0))
	h.EndLine = last.line
	if last.str.Len() > 0 {
		h.EndCol = last.str.VirginPos(last.str.Len() - 1)
	} else {
		h.EndCol = h.StartCol
	}

	return []Item{h}
}

// fitEnvelope widens pos to contain every child's envelope.
func fitEnvelope(pos *Position, items []Item) {
	for _, it := range items {
		c := it.Pos()
		if !c.IsSet() {
			continue
		}
		if !pos.IsSet() || beforePoint(c.StartLine, c.StartCol, pos.StartLine, pos.StartCol) {
			pos.StartLine = c.StartLine
			pos.StartCol = c.StartCol
		}
		if pos.EndLine < 0 || beforePoint(pos.EndLine, pos.EndCol, c.EndLine, c.EndCol) {
			pos.EndLine = c.EndLine
			pos.EndCol = c.EndCol
		}
	}
}

// plainText concatenates the Data of every Text item, for auto labels.
func plainText(items []Item) string {
	var b strings.Builder
	for _, it := range items {
		if t, ok := it.(*Text); ok {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(t.Data)
		}
	}

	return b.String()
}
