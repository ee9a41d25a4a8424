package md

// parseText turns a text fragment into paragraphs, a setext heading,
// or a table split, harvesting link reference definitions first.
func (p *Parser) parseText(f *fragment, doc *Document, ctx *blockContext) []Item {
	lines := f.lines

	// Link reference definitions live at the start of a fresh
	// paragraph; several may stack.
	for {
		n := p.parseLinkRefDefinition(lines, doc, ctx)
		if n == 0 {
			break
		}
		lines = lines[n:]
	}

	if f.setext > 0 {
		return p.parseSetextHeading(f, lines, doc, ctx)
	}

	if len(lines) == 0 {
		return nil
	}

	var out []Item
	for len(lines) > 0 {
		ti := findTableStart(lines)
		if ti < 0 {
			out = append(out, p.makeParagraph(lines, doc, ctx)...)

			break
		}
		if ti > 0 {
			out = append(out, p.makeParagraph(lines[:ti], doc, ctx)...)
		}
		tbl, consumed := p.parseTable(lines[ti:], doc, ctx)
		if tbl != nil {
			out = append(out, tbl)
		}
		if consumed == 0 {
			break
		}
		lines = lines[ti+consumed:]
	}

	if ctx.collectRefLinks {
		return nil
	}

	return out
}

// makeParagraph runs the inline pass over the lines and wraps the
// result.
func (p *Parser) makeParagraph(lines []fragmentLine, doc *Document, ctx *blockContext) []Item {
	items := p.parseFormattedText(lines, doc, ctx, inlineOpts{})
	if len(items) == 0 {
		return nil
	}

	para := &Paragraph{Items: items}
	para.Position = UnsetPosition()
	fitEnvelope(&para.Position, items)

	return []Item{para}
}

// parseSetextHeading promotes the flushed paragraph to a heading of
// the underline's level, carrying the underline as its delimiter.
func (p *Parser) parseSetextHeading(f *fragment, lines []fragmentLine, doc *Document, ctx *blockContext) []Item {
	h := &Heading{Level: f.setext}
	h.Position = UnsetPosition()
	h.LabelPos = UnsetPosition()

	ul := f.setextLine
	ns := skipSpaces(&ul.str, 0)
	delim := UnsetPosition()
	delim.StartLine = ul.line
	delim.EndLine = ul.line
	delim.StartCol = ul.str.VirginPos(ns)
	if ul.str.Len() > 0 {
		delim.EndCol = ul.str.VirginPos(ul.str.Len() - 1)
	}
	h.Delims = append(h.Delims, delim)

	para := &Paragraph{}
	para.Position = UnsetPosition()
	if len(lines) > 0 {
		para.Items = p.parseFormattedText(lines, doc, ctx, inlineOpts{})
		fitEnvelope(&para.Position, para.Items)
	}
	h.P = para

	if len(lines) > 0 {
		first := &lines[0]
		h.StartLine = first.line
		h.StartCol = first.str.VirginPos(skipSpaces(&first.str, 0))
	} else {
		h.StartLine = delim.StartLine
		h.StartCol = delim.StartCol
	}
	h.EndLine = delim.EndLine
	h.EndCol = delim.EndCol

	if label := slugify(plainText(para.Items)); label != "" {
		h.Label = headingLabelKey(label, ctx.workingPath, ctx.fileName)
		doc.insertLabeledHeading(h.Label, h)
	}

	if ctx.collectRefLinks {
		return nil
	}

	return []Item{h}
}
