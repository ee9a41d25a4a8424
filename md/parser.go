package md

import (
	"bufio"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// DefaultExtensions are the file extensions recursive parsing follows.
var DefaultExtensions = []string{"md", "markdown"}

// Parser is the orchestrator: it segments input into fragments, runs
// the reference-collection pass and then the build pass, and optionally
// recurses into referenced markdown files.
//
// A Parser is a pure transformation and holds no per-document state;
// separate documents may be parsed concurrently on separate parsers.
type Parser struct {
	fs          afero.Fs
	textPlugins map[int]textPluginEntry
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithFs makes the parser read files through the given filesystem.
func WithFs(fs afero.Fs) ParserOption {
	return func(p *Parser) {
		p.fs = fs
	}
}

// NewParser returns a parser with the OS filesystem and the GitHub
// autolink plugin registered.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		fs:          afero.NewOsFs(),
		textPlugins: make(map[int]textPluginEntry),
	}
	p.AddTextPlugin(GitHubAutoLinkPluginID, githubAutoLink, false, nil)

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Parse reads and parses the named file. With recursive set, local
// links to files with one of the given extensions (DefaultExtensions
// when none are passed) are parsed too and concatenated, separated by
// PageBreak items.
//
// Parsing never fails: unreadable files yield an empty document with a
// single Anchor.
func (p *Parser) Parse(fileName string, recursive bool, extensions ...string) *Document {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	doc := NewDocument()
	parsed := make(map[string]bool)
	p.parseFile(fileName, recursive, doc, parsed, extensions, true)

	return doc
}

// ParseReader parses markdown from a stream. workingPath and fileName
// scope the document's label keys the way file parsing does.
func (p *Parser) ParseReader(r io.Reader, workingPath, fileName string) *Document {
	doc := NewDocument()

	anchor := &Anchor{Label: ensureTrailingSlash(filepath.ToSlash(workingPath)) + fileName}
	anchor.Position = UnsetPosition()
	doc.Items = append(doc.Items, anchor)

	lines := readLines(r)
	p.parseContent(lines, doc, workingPath, fileName)

	return doc
}

// ParseContent parses an in-memory markdown string.
func (p *Parser) ParseContent(content, workingPath, fileName string) *Document {
	return p.ParseReader(strings.NewReader(content), workingPath, fileName)
}

// parseFile parses one file into doc, guarding against cycles, and
// recurses into its local links when asked.
func (p *Parser) parseFile(
	fileName string,
	recursive bool,
	doc *Document,
	parsed map[string]bool,
	extensions []string,
	first bool,
) {
	abs, err := filepath.Abs(fileName)
	if err != nil {
		abs = fileName
	}
	abs = filepath.ToSlash(abs)

	if parsed[abs] {
		return
	}
	parsed[abs] = true

	if !first {
		doc.Items = append(doc.Items, &PageBreak{Position: UnsetPosition()})
	}

	anchor := &Anchor{Label: abs}
	anchor.Position = UnsetPosition()
	doc.Items = append(doc.Items, anchor)

	f, err := p.fs.Open(fileName)
	if err != nil {
		return
	}
	lines := readLines(f)
	_ = f.Close()

	workingPath := filepath.ToSlash(filepath.Dir(abs))
	base := filepath.Base(abs)

	before := len(doc.Items)
	p.parseContent(lines, doc, workingPath, base)

	if !recursive {
		return
	}

	targets := collectLinkTargets(doc.Items[before:])
	for _, target := range targets {
		local, ok := localFileTarget(target, workingPath, extensions)
		if !ok {
			continue
		}
		p.parseFile(local, true, doc, parsed, extensions, false)
	}
}

// parseContent runs the two passes over prepared lines and appends the
// produced items to the document.
func (p *Parser) parseContent(lines []string, doc *Document, workingPath, fileName string) {
	collect := blockContext{
		collectRefLinks: true,
		allowSetext:     true,
		workingPath:     ensureTrailingSlash(workingPath),
		fileName:        fileName,
	}
	p.parseLines(prepareLines(lines), doc, &collect)

	build := collect
	build.collectRefLinks = false
	items := p.parseLines(prepareLines(lines), doc, &build)

	doc.Items = append(doc.Items, items...)
	fitEnvelope(&doc.Position, items)
}

// prepareLines wraps raw lines as tab-expanded VirginStrings with NUL
// bytes replaced by U+FFFD.
func prepareLines(lines []string) []fragmentLine {
	out := make([]fragmentLine, len(lines))
	for i, l := range lines {
		l = strings.ReplaceAll(l, "\x00", "�")
		vs := NewVirginString(l)
		vs.ExpandTabs()
		out[i] = fragmentLine{str: vs, line: i}
	}

	return out
}

// readLines splits a stream into lines, normalizing CRLF and CR
// endings.
func readLines(r io.Reader) []string {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		line = strings.ReplaceAll(line, "\r", "\n")
		if strings.Contains(line, "\n") {
			lines = append(lines, strings.Split(line, "\n")...)

			continue
		}
		lines = append(lines, line)
	}

	return lines
}

// ensureTrailingSlash keeps label keys of the form "#LABEL/dir/file".
func ensureTrailingSlash(path string) string {
	if path == "" || strings.HasSuffix(path, "/") {
		return path
	}

	return path + "/"
}

// collectLinkTargets walks the item tree and gathers every link URL.
func collectLinkTargets(items []Item) []string {
	var out []string

	var walk func(items []Item)
	walk = func(items []Item) {
		for _, it := range items {
			switch v := it.(type) {
			case *Link:
				out = append(out, v.URL)
				if v.P != nil {
					walk(v.P.Items)
				}
			case *Image:
				if v.P != nil {
					walk(v.P.Items)
				}
			case *Paragraph:
				walk(v.Items)
			case *Heading:
				if v.P != nil {
					walk(v.P.Items)
				}
			case *Blockquote:
				walk(v.Items)
			case *List:
				walk(v.Items)
			case *ListItem:
				walk(v.Items)
			case *Footnote:
				walk(v.Items)
			case *Table:
				for _, row := range v.Rows {
					for _, cell := range row.Cells {
						walk(cell.Items)
					}
				}
			}
		}
	}
	walk(items)

	return out
}

// localFileTarget resolves a link URL to a local markdown file path
// when it looks like one: no scheme, no fragment-only reference, and a
// recognized extension.
func localFileTarget(url, workingPath string, extensions []string) (string, bool) {
	if url == "" || strings.HasPrefix(url, "#") {
		return "", false
	}
	if strings.Contains(url, "://") || strings.HasPrefix(url, "mailto:") {
		return "", false
	}
	if strings.HasPrefix(strings.ToLower(url), "www.") {
		return "", false
	}

	// Strip a trailing fragment.
	if idx := strings.IndexByte(url, '#'); idx >= 0 {
		url = url[:idx]
	}
	if url == "" {
		return "", false
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(url)), ".")
	okExt := false
	for _, e := range extensions {
		if ext == strings.ToLower(e) {
			okExt = true

			break
		}
	}
	if !okExt {
		return "", false
	}

	if filepath.IsAbs(url) {
		return url, true
	}

	return filepath.Join(workingPath, url), true
}
