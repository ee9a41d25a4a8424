package md

import (
	"sort"
	"strings"
)

// GitHubAutoLinkPluginID is the registry ID of the built-in GitHub
// autolink plugin.
const GitHubAutoLinkPluginID = 1

// UserDefinedPluginID is the first ID available to callers; the range
// below it is reserved for built-in plugins.
const UserDefinedPluginID = 255

// TextPlugin rewrites the inline items of one parsed paragraph after
// the main inline pass. It returns the replacement item list.
type TextPlugin func(items []Item, userData interface{}) []Item

// textPluginEntry is one registered plugin.
type textPluginEntry struct {
	fn             TextPlugin
	processInLinks bool
	userData       interface{}
}

// AddTextPlugin registers a plugin under the given ID, replacing any
// previous registration.
func (p *Parser) AddTextPlugin(id int, fn TextPlugin, processInLinks bool, userData interface{}) {
	p.textPlugins[id] = textPluginEntry{
		fn:             fn,
		processInLinks: processInLinks,
		userData:       userData,
	}
}

// RemoveTextPlugin drops the plugin registered under id.
func (p *Parser) RemoveTextPlugin(id int) {
	delete(p.textPlugins, id)
}

// runTextPlugins applies every registered plugin in ID order. Plugins
// with processInLinks also descend into link text.
func (p *Parser) runTextPlugins(items []Item, doc *Document, opts inlineOpts) []Item {
	if len(p.textPlugins) == 0 {
		return items
	}

	ids := make([]int, 0, len(p.textPlugins))
	for id := range p.textPlugins {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		entry := p.textPlugins[id]
		items = entry.fn(items, entry.userData)

		if !entry.processInLinks {
			continue
		}
		for _, it := range items {
			if l, ok := it.(*Link); ok && l.P != nil {
				l.P.Items = entry.fn(l.P.Items, entry.userData)
			}
		}
	}

	return items
}

// isBareURL reports whether word is a GitHub-style bare URL: an
// absolute URI with scheme://host, or a www. host with at least one
// further dot.
func isBareURL(word string) bool {
	lower := strings.ToLower(word)

	if strings.HasPrefix(lower, "www.") {
		rest := word[4:]

		return len(rest) > 0 && strings.Contains(rest, ".")
	}

	sep := strings.Index(word, "://")
	if sep < 1 {
		return false
	}
	scheme := word[:sep]
	if !isASCIILetter(rune(scheme[0])) {
		return false
	}
	for _, r := range scheme[1:] {
		if !isASCIIAlnum(r) && r != '+' && r != '.' && r != '-' {
			return false
		}
	}

	return len(word) > sep+3
}

// githubAutoLink is the built-in plugin: it scans every unstyled Text
// item for bare URLs, www. hosts and emails and splits the text into
// Text - Link - Text triples in place. Styled Text items are passed
// through unchanged.
func githubAutoLink(items []Item, _ interface{}) []Item {
	var out []Item

	for _, it := range items {
		t, ok := it.(*Text)
		if !ok || t.Opts != TextWithoutFormat {
			out = append(out, it)

			continue
		}
		out = append(out, splitBareLinks(t)...)
	}

	return out
}

// splitBareLinks cuts one Text item on every recognized bare URL or
// email.
//
//nolint:revive // cognitive-complexity: word scan plus position arithmetic
func splitBareLinks(t *Text) []Item {
	data := t.Data
	var out []Item
	emitted := 0

	words := strings.Fields(data)
	offset := 0
	for _, w := range words {
		idx := strings.Index(data[offset:], w)
		if idx < 0 {
			break
		}
		wordStart := offset + idx
		offset = wordStart + len(w)

		trimmed := strings.TrimRight(w, ".,;:!?)")
		if trimmed == "" {
			continue
		}
		if !isBareURL(trimmed) && !isEmailAddress(trimmed) {
			continue
		}

		if wordStart > emitted {
			before := strings.TrimRight(data[emitted:wordStart], " ")
			if before != "" {
				bt := &Text{Opts: t.Opts, Data: before}
				bt.Position = textSlicePosition(t, emitted, wordStart-1)
				bt.SpaceBefore = t.SpaceBefore || emitted > 0
				bt.SpaceAfter = true
				out = append(out, bt)
			}
		}

		l := &Link{}
		l.Text = trimmed
		l.URL = trimmed
		l.Position = textSlicePosition(t, wordStart, wordStart+len(trimmed)-1)
		l.TextPos = l.Position
		l.URLPos = l.Position
		out = append(out, l)

		emitted = wordStart + len(trimmed)
	}

	if emitted == 0 {
		return []Item{t}
	}

	if emitted < len(data) {
		after := strings.TrimLeft(data[emitted:], " ")
		if after != "" {
			at := &Text{Opts: t.Opts, Data: after}
			at.Position = textSlicePosition(t, emitted, len(data)-1)
			at.SpaceBefore = true
			at.SpaceAfter = t.SpaceAfter
			out = append(out, at)
		}
	}

	return out
}

// textSlicePosition maps a byte range of a Text item's data back to
// virgin columns, assuming the data's columns are contiguous from its
// start.
func textSlicePosition(t *Text, from, to int) Position {
	out := UnsetPosition()
	out.StartLine = t.StartLine
	out.EndLine = t.EndLine
	out.StartCol = t.StartCol + len([]rune(string([]byte(t.Data)[:minInt(from, len(t.Data))])))
	out.EndCol = t.StartCol + len([]rune(string([]byte(t.Data)[:minInt(to+1, len(t.Data))]))) - 1

	return out
}
