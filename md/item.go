//nolint:revive // max-public-structs - item types intentionally public for AST API
package md

// ItemType identifies the kind of an AST item.
type ItemType uint8

const (
	// Block-level items

	// ItemTypeDocument is the root of a parsed tree.
	ItemTypeDocument ItemType = iota
	// ItemTypeParagraph holds a run of inline items.
	ItemTypeParagraph
	// ItemTypeHeading is an ATX or setext heading.
	ItemTypeHeading
	// ItemTypeBlockquote holds nested block items.
	ItemTypeBlockquote
	// ItemTypeList holds list items with a uniform marker.
	ItemTypeList
	// ItemTypeListItem is one bullet or numbered entry.
	ItemTypeListItem
	// ItemTypeCode is a fenced or indented code block, or a code span.
	ItemTypeCode
	// ItemTypeTable is a pipe table.
	ItemTypeTable
	// ItemTypeTableRow is one row of a table.
	ItemTypeTableRow
	// ItemTypeTableCell is one cell of a table row.
	ItemTypeTableCell
	// ItemTypeFootnote is a footnote definition block.
	ItemTypeFootnote
	// ItemTypeHorizontalLine is a thematic break.
	ItemTypeHorizontalLine
	// ItemTypePageBreak separates recursively concatenated files.
	ItemTypePageBreak
	// ItemTypeAnchor marks the start of a parsed file.
	ItemTypeAnchor

	// Inline items

	// ItemTypeText is styled plain text.
	ItemTypeText
	// ItemTypeLineBreak is a hard line break.
	ItemTypeLineBreak
	// ItemTypeLink is an inline, reference or autolinked link.
	ItemTypeLink
	// ItemTypeImage is an image.
	ItemTypeImage
	// ItemTypeFootnoteRef references a footnote definition.
	ItemTypeFootnoteRef
	// ItemTypeRawHTML is inline or block-level raw HTML.
	ItemTypeRawHTML
	// ItemTypeMath is an inline or display math span.
	ItemTypeMath
)

// String returns a human-readable name for the item type.
//
//nolint:revive // cyclomatic - switch cases are simple string returns
func (t ItemType) String() string {
	switch t {
	case ItemTypeDocument:
		return "Document"
	case ItemTypeParagraph:
		return "Paragraph"
	case ItemTypeHeading:
		return "Heading"
	case ItemTypeBlockquote:
		return "Blockquote"
	case ItemTypeList:
		return "List"
	case ItemTypeListItem:
		return "ListItem"
	case ItemTypeCode:
		return "Code"
	case ItemTypeTable:
		return "Table"
	case ItemTypeTableRow:
		return "TableRow"
	case ItemTypeTableCell:
		return "TableCell"
	case ItemTypeFootnote:
		return "Footnote"
	case ItemTypeHorizontalLine:
		return "HorizontalLine"
	case ItemTypePageBreak:
		return "PageBreak"
	case ItemTypeAnchor:
		return "Anchor"
	case ItemTypeText:
		return "Text"
	case ItemTypeLineBreak:
		return "LineBreak"
	case ItemTypeLink:
		return "Link"
	case ItemTypeImage:
		return "Image"
	case ItemTypeFootnoteRef:
		return "FootnoteRef"
	case ItemTypeRawHTML:
		return "RawHTML"
	case ItemTypeMath:
		return "Math"
	default:
		return "Unknown"
	}
}

// Item is implemented by every AST node. Concrete items embed Position
// and expose their data through exported fields.
type Item interface {
	// Type returns the kind of this item.
	Type() ItemType

	// Pos returns the item's position envelope in virgin coordinates.
	Pos() *Position
}

// StyleOpts is a bitset of text styles applied to an inline item.
type StyleOpts uint8

const (
	// TextWithoutFormat is the zero style.
	TextWithoutFormat StyleOpts = 0
	// ItalicText is emphasis produced by a single * or _ run.
	ItalicText StyleOpts = 1 << iota
	// BoldText is strong emphasis produced by a double * or _ run.
	BoldText
	// StrikethroughText is produced by a ~~ run.
	StrikethroughText
)

// StyleDelim records the style and virgin position of one delimiter
// run surrounding a text item, so editors can highlight the delimiters
// independently of the text they surround.
type StyleDelim struct {
	Position
	Style StyleOpts
}

// WithDelims is embedded by items that keep their surrounding
// delimiters' virgin positions.
type WithDelims struct {
	OpenStyles  []StyleDelim
	CloseStyles []StyleDelim
}

// Text is a run of characters sharing one style combination.
type Text struct {
	Position
	WithDelims
	Opts        StyleOpts
	Data        string
	SpaceBefore bool
	SpaceAfter  bool
}

// Type returns ItemTypeText.
func (t *Text) Type() ItemType { return ItemTypeText }

// LineBreak is a hard break produced by two trailing spaces or a
// trailing backslash.
type LineBreak struct {
	Position
}

// Type returns ItemTypeLineBreak.
func (b *LineBreak) Type() ItemType { return ItemTypeLineBreak }

// Code is a code block (fenced or indented) or an inline code span.
type Code struct {
	Position
	Text       string
	Inline     bool
	Fenced     bool
	Syntax     string
	StartDelim Position
	EndDelim   Position
	SyntaxPos  Position
}

// Type returns ItemTypeCode.
func (c *Code) Type() ItemType { return ItemTypeCode }

// Math is an inline ($...$) or display ($$...$$) math span.
type Math struct {
	Position
	Expr       string
	Inline     bool
	StartDelim Position
	EndDelim   Position
}

// Type returns ItemTypeMath.
func (m *Math) Type() ItemType { return ItemTypeMath }

// Link is an inline, reference, shortcut or autolinked link.
type Link struct {
	Position
	WithDelims
	Text    string
	URL     string
	Opts    StyleOpts
	Img     *Image
	P       *Paragraph
	TextPos Position
	URLPos  Position
}

// Type returns ItemTypeLink.
func (l *Link) Type() ItemType { return ItemTypeLink }

// Image is an embedded image; the alt text is kept both raw and as a
// parsed paragraph.
type Image struct {
	Position
	Text    string
	URL     string
	P       *Paragraph
	TextPos Position
	URLPos  Position
}

// Type returns ItemTypeImage.
func (i *Image) Type() ItemType { return ItemTypeImage }

// FootnoteRef references a footnote definition by document-scoped ID.
type FootnoteRef struct {
	Position
	ID     string
	IDPos  Position
}

// Type returns ItemTypeFootnoteRef.
func (f *FootnoteRef) Type() ItemType { return ItemTypeFootnoteRef }

// RawHTML is raw HTML, inline or as a block. FreeTag marks block-level
// HTML that stands on its own rather than interrupting a paragraph.
type RawHTML struct {
	Position
	Text    string
	FreeTag bool
}

// Type returns ItemTypeRawHTML.
func (h *RawHTML) Type() ItemType { return ItemTypeRawHTML }

// Anchor marks the beginning of a parsed file inside a (possibly
// concatenated) document. For a file the label is its absolute path with
// forward slashes; for a stream it is the working path joined with the
// file name.
type Anchor struct {
	Position
	Label string
}

// Type returns ItemTypeAnchor.
func (a *Anchor) Type() ItemType { return ItemTypeAnchor }

// Paragraph holds a run of inline items.
type Paragraph struct {
	Position
	Items []Item
}

// Type returns ItemTypeParagraph.
func (p *Paragraph) Type() ItemType { return ItemTypeParagraph }

// Heading is an ATX (#) or setext (=== / ---) heading.
type Heading struct {
	Position
	Level    int
	P        *Paragraph
	Label    string
	Delims   []Position
	LabelPos Position
}

// Type returns ItemTypeHeading.
func (h *Heading) Type() ItemType { return ItemTypeHeading }

// IsLabeled reports whether the heading carries a label, either
// explicit ({#id}) or derived from non-empty text.
func (h *Heading) IsLabeled() bool {
	return h.Label != ""
}

// Blockquote holds nested block items. Delims records the virgin
// position of every > marker.
type Blockquote struct {
	Position
	Items  []Item
	Delims []Position
}

// Type returns ItemTypeBlockquote.
func (b *Blockquote) Type() ItemType { return ItemTypeBlockquote }

// ListItemType distinguishes ordered from unordered items.
type ListItemType uint8

const (
	// Unordered items use -, + or * markers.
	Unordered ListItemType = iota
	// Ordered items use digit runs ending in . or ).
	Ordered
)

// OrderedListPreState tells whether an ordered item starts its list's
// numbering or continues it.
type OrderedListPreState uint8

const (
	// Start means the item's number begins the sequence.
	Start OrderedListPreState = iota
	// Continue means the item follows a previous number.
	Continue
)

// List holds list items sharing one marker character.
type List struct {
	Position
	Items []Item
}

// Type returns ItemTypeList.
func (l *List) Type() ItemType { return ItemTypeList }

// ListItem is one bullet or numbered entry, possibly a task item.
type ListItem struct {
	Position
	ListType    ListItemType
	PreState    OrderedListPreState
	StartNumber int
	TaskList    bool
	Checked     bool
	Delim       Position
	TaskDelim   Position
	Items       []Item
}

// Type returns ItemTypeListItem.
func (l *ListItem) Type() ItemType { return ItemTypeListItem }

// TableAlignment is a column alignment in a pipe table.
type TableAlignment uint8

const (
	// AlignLeft is the default alignment (:--- or ---).
	AlignLeft TableAlignment = iota
	// AlignRight is ---:.
	AlignRight
	// AlignCenter is :---:.
	AlignCenter
)

// Table is a pipe table with per-column alignments.
type Table struct {
	Position
	Rows       []*TableRow
	Alignments []TableAlignment
}

// Type returns ItemTypeTable.
func (t *Table) Type() ItemType { return ItemTypeTable }

// TableRow is one row of a table.
type TableRow struct {
	Position
	Cells []*TableCell
}

// Type returns ItemTypeTableRow.
func (r *TableRow) Type() ItemType { return ItemTypeTableRow }

// TableCell is one inline-parsed cell.
type TableCell struct {
	Position
	Items []Item
}

// Type returns ItemTypeTableCell.
func (c *TableCell) Type() ItemType { return ItemTypeTableCell }

// Footnote is a footnote definition block.
type Footnote struct {
	Position
	Items []Item
	IDPos Position
}

// Type returns ItemTypeFootnote.
func (f *Footnote) Type() ItemType { return ItemTypeFootnote }

// HorizontalLine is a thematic break.
type HorizontalLine struct {
	Position
}

// Type returns ItemTypeHorizontalLine.
func (h *HorizontalLine) Type() ItemType { return ItemTypeHorizontalLine }

// PageBreak separates the documents of recursively parsed files.
type PageBreak struct {
	Position
}

// Type returns ItemTypePageBreak.
func (p *PageBreak) Type() ItemType { return ItemTypePageBreak }

// FootnoteMap is a footnote table with stable (insertion) iteration
// order regardless of the host map implementation.
type FootnoteMap struct {
	keys   []string
	values map[string]*Footnote
}

// NewFootnoteMap returns an empty footnote map.
func NewFootnoteMap() *FootnoteMap {
	return &FootnoteMap{values: make(map[string]*Footnote)}
}

// Insert registers a footnote under its normalized ID. Re-inserting
// an ID replaces the value but keeps the original definition order,
// so the build pass refreshes what the collection pass registered.
func (m *FootnoteMap) Insert(id string, f *Footnote) {
	if _, ok := m.values[id]; !ok {
		m.keys = append(m.keys, id)
	}
	m.values[id] = f
}

// Get returns the footnote for the given ID.
func (m *FootnoteMap) Get(id string) (*Footnote, bool) {
	f, ok := m.values[id]

	return f, ok
}

// Len returns the number of registered footnotes.
func (m *FootnoteMap) Len() int {
	return len(m.keys)
}

// Keys returns the IDs in definition order.
func (m *FootnoteMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)

	return out
}

// Document is the root of a parsed tree. It owns all items and the
// three label tables.
type Document struct {
	Position
	Items []Item

	footnotes       *FootnoteMap
	labeledLinks    map[string]*Link
	labeledHeadings map[string]*Heading
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		footnotes:       NewFootnoteMap(),
		labeledLinks:    make(map[string]*Link),
		labeledHeadings: make(map[string]*Heading),
	}
}

// Type returns ItemTypeDocument.
func (d *Document) Type() ItemType { return ItemTypeDocument }

// Footnotes returns the document's footnote table.
func (d *Document) Footnotes() *FootnoteMap {
	return d.footnotes
}

// LabeledLink returns the link reference definition for label, if any.
func (d *Document) LabeledLink(label string) (*Link, bool) {
	l, ok := d.labeledLinks[label]

	return l, ok
}

// LabeledHeading returns the heading registered under label, if any.
func (d *Document) LabeledHeading(label string) (*Heading, bool) {
	h, ok := d.labeledHeadings[label]

	return h, ok
}

// LabeledLinksCount returns the number of registered link definitions.
func (d *Document) LabeledLinksCount() int {
	return len(d.labeledLinks)
}

// insertLabeledLink registers a link reference definition. Only the
// parser calls this; insertions are immutable thereafter.
func (d *Document) insertLabeledLink(label string, l *Link) {
	if _, ok := d.labeledLinks[label]; ok {
		return
	}
	d.labeledLinks[label] = l
}

// insertLabeledHeading registers a heading under its label.
func (d *Document) insertLabeledHeading(label string, h *Heading) {
	d.labeledHeadings[label] = h
}
