package md

// tableCellRange is one cell's inclusive character window on a row
// line.
type tableCellRange struct {
	from int
	to   int
}

// splitTableRow cuts a row line on unescaped pipes, dropping the
// optional leading and trailing empty cells.
func splitTableRow(s *VirginString) []tableCellRange {
	var cells []tableCellRange
	start := 0

	for i := 0; i <= s.Len(); i++ {
		atEnd := i == s.Len()
		if !atEnd && (s.At(i) != '|' || isEscaped(s, i)) {
			continue
		}
		cells = append(cells, tableCellRange{from: start, to: i - 1})
		start = i + 1
	}

	// A leading pipe produces an empty first range; a trailing pipe an
	// empty last one. Both are syntax, not cells.
	if len(cells) > 0 && rangeBlank(s, cells[0]) {
		cells = cells[1:]
	}
	if len(cells) > 0 && rangeBlank(s, cells[len(cells)-1]) {
		cells = cells[:len(cells)-1]
	}

	return cells
}

func rangeBlank(s *VirginString, c tableCellRange) bool {
	for i := c.from; i <= c.to && i < s.Len(); i++ {
		if s.At(i) != ' ' && s.At(i) != '\t' {
			return false
		}
	}

	return true
}

// parseAlignmentRow recognizes the :---/---:/:---: delimiter row and
// returns one alignment per column.
func parseAlignmentRow(s *VirginString) ([]TableAlignment, bool) {
	if s.IndexOf("|", 0) < 0 && s.IndexOf("-", 0) < 0 {
		return nil, false
	}

	cells := splitTableRow(s)
	if len(cells) == 0 {
		return nil, false
	}

	var aligns []TableAlignment
	for _, c := range cells {
		left := false
		right := false
		dashes := 0
		i := skipSpaces(s, c.from)
		if i <= c.to && s.At(i) == ':' {
			left = true
			i++
		}
		for i <= c.to && s.At(i) == '-' {
			dashes++
			i++
		}
		if i <= c.to && s.At(i) == ':' {
			right = true
			i++
		}
		if dashes == 0 || skipSpaces(s, i) <= c.to {
			return nil, false
		}

		switch {
		case left && right:
			aligns = append(aligns, AlignCenter)
		case right:
			aligns = append(aligns, AlignRight)
		default:
			aligns = append(aligns, AlignLeft)
		}
	}

	return aligns, true
}

// findTableStart locates a header line followed by a matching
// alignment row inside a text fragment, or returns -1.
func findTableStart(lines []fragmentLine) int {
	for i := 0; i+1 < len(lines); i++ {
		header := &lines[i].str
		if header.IndexOf("|", 0) < 0 {
			continue
		}
		headerCells := splitTableRow(header)
		if len(headerCells) == 0 {
			continue
		}
		aligns, ok := parseAlignmentRow(&lines[i+1].str)
		if !ok || len(aligns) != len(headerCells) {
			continue
		}

		return i
	}

	return -1
}

// parseTable builds a Table from the header line, the alignment row
// and every following row containing a pipe. Each cell is an
// inline-parsed mini paragraph.
//
//nolint:revive // function-length: rows, cells and envelopes in one builder
func (p *Parser) parseTable(lines []fragmentLine, doc *Document, ctx *blockContext) (Item, int) {
	aligns, ok := parseAlignmentRow(&lines[1].str)
	if !ok {
		return nil, 0
	}

	t := &Table{Alignments: aligns}
	t.Position = UnsetPosition()

	consumed := 0
	for li := range lines {
		if li == 1 {
			consumed++

			continue
		}
		s := &lines[li].str
		if li > 1 && (s.IndexOf("|", 0) < 0 || isEmptyLine(s)) {
			break
		}
		consumed++

		row := &TableRow{}
		row.Position = UnsetPosition()
		row.StartLine = lines[li].line
		row.EndLine = lines[li].line
		if s.Len() > 0 {
			row.StartCol = s.VirginPos(skipSpaces(s, 0))
			row.EndCol = s.VirginPos(s.Len() - 1)
		}

		cells := splitTableRow(s)
		for ci := 0; ci < len(aligns); ci++ {
			cell := &TableCell{}
			cell.Position = UnsetPosition()

			if ci < len(cells) {
				c := cells[ci]
				cell.StartLine = lines[li].line
				cell.EndLine = lines[li].line
				if c.from <= c.to && c.from < s.Len() {
					cell.StartCol = s.VirginPos(c.from)
					cell.EndCol = s.VirginPos(minInt(c.to, s.Len()-1))

					inner := []fragmentLine{{
						str:  s.Sliced(c.from, c.to-c.from+1),
						line: lines[li].line,
					}}
					cell.Items = p.parseFormattedText(inner, doc, ctx, inlineOpts{})
				}
			}

			row.Cells = append(row.Cells, cell)
		}

		t.Rows = append(t.Rows, row)
	}

	if ctx.collectRefLinks {
		return nil, consumed
	}

	first := &lines[0]
	t.StartLine = first.line
	t.StartCol = first.str.VirginPos(skipSpaces(&first.str, 0))
	lastIdx := consumed - 1
	t.EndLine = lines[lastIdx].line
	if lines[lastIdx].str.Len() > 0 {
		t.EndCol = lines[lastIdx].str.VirginPos(lines[lastIdx].str.Len() - 1)
	}

	return t, consumed
}
