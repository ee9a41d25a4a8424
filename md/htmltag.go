package md

import (
	"strings"
	"unicode"
)

// rule1Tags are the tag names whose blocks run to an explicit closing
// tag (HTML block rule 1).
var rule1Tags = []string{"pre", "script", "style", "textarea"}

// rule6Tags is the fixed set of block-level tag names for HTML block
// rule 6.
var rule6Tags = map[string]bool{
	"address": true, "article": true, "aside": true, "base": true,
	"basefont": true, "blockquote": true, "body": true, "caption": true,
	"center": true, "col": true, "colgroup": true, "dd": true,
	"details": true, "dialog": true, "dir": true, "div": true,
	"dl": true, "dt": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "frame": true,
	"frameset": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "head": true, "header": true, "hr": true,
	"html": true, "iframe": true, "legend": true, "li": true,
	"link": true, "main": true, "menu": true, "menuitem": true,
	"nav": true, "noframes": true, "ol": true, "optgroup": true,
	"option": true, "p": true, "param": true, "search": true,
	"section": true, "summary": true, "table": true, "tbody": true,
	"td": true, "tfoot": true, "th": true, "thead": true, "title": true,
	"tr": true, "track": true, "ul": true,
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isASCIIAlnum(r rune) bool {
	return isASCIILetter(r) || (r >= '0' && r <= '9')
}

// tagNameAt reads a tag name (letter, then letters/digits/hyphens)
// starting at i; returns the lowercase name and the index past it.
func tagNameAt(s *VirginString, i int) (string, int) {
	if i >= s.Len() || !isASCIILetter(s.At(i)) {
		return "", i
	}

	var b strings.Builder
	for i < s.Len() {
		r := s.At(i)
		if !isASCIIAlnum(r) && r != '-' {
			break
		}
		b.WriteRune(unicode.ToLower(r))
		i++
	}

	return b.String(), i
}

// htmlBlockRule returns the CommonMark HTML block rule (1-7) started
// by the line at ns, or zero.
//
//nolint:revive // cyclomatic - the seven rules are a fixed decision table
func htmlBlockRule(s *VirginString, ns int) int {
	if ns >= s.Len() || s.At(ns) != '<' {
		return 0
	}

	rest := s.Sliced(ns, -1)
	text := rest.String()

	// Rule 2: comment.
	if strings.HasPrefix(text, "<!--") {
		return 2
	}
	// Rule 5: CDATA.
	if strings.HasPrefix(text, "<![CDATA[") {
		return 5
	}
	// Rule 3: processing instruction.
	if strings.HasPrefix(text, "<?") {
		return 3
	}
	// Rule 4: declaration.
	if strings.HasPrefix(text, "<!") && len(text) > 2 &&
		text[2] >= 'A' && text[2] <= 'Z' {
		return 4
	}

	i := ns + 1
	closing := false
	if i < s.Len() && s.At(i) == '/' {
		closing = true
		i++
	}

	name, j := tagNameAt(s, i)
	if name == "" {
		return 0
	}

	after := rune(0)
	if j < s.Len() {
		after = s.At(j)
	}

	// Rule 1: pre, script, style, textarea opening tags.
	if !closing {
		for _, t := range rule1Tags {
			if name == t && (after == 0 || after == ' ' || after == '\t' || after == '>') {
				return 1
			}
		}
	}

	// Rule 6: known block-level tag name.
	if rule6Tags[name] {
		if after == 0 || after == ' ' || after == '\t' || after == '>' {
			return 6
		}
		if after == '/' && j+1 < s.Len() && s.At(j+1) == '>' {
			return 6
		}

		return 0
	}

	// Rule 7: any other complete tag followed only by whitespace.
	if n := matchHTMLTag(s, ns); n > 0 {
		if skipSpaces(s, ns+n) == s.Len() {
			return 7
		}
	}

	return 0
}

// htmlBlockClosed reports whether the line terminates an HTML block of
// the given rule. Rules 6 and 7 terminate on blank lines, which the
// segmenter checks itself.
func htmlBlockClosed(s *VirginString, rule int) bool {
	text := s.String()

	switch rule {
	case 1:
		lower := strings.ToLower(text)
		for _, t := range rule1Tags {
			if strings.Contains(lower, "</"+t+">") {
				return true
			}
		}

		return false
	case 2:
		return strings.Contains(text, "-->")
	case 3:
		return strings.Contains(text, "?>")
	case 4:
		return strings.Contains(text, ">")
	case 5:
		return strings.Contains(text, "]]>")
	default:
		return false
	}
}

// matchHTMLTag recognizes one of the seven inline HTML shapes starting
// at pos: open tag, closing tag, comment, processing instruction,
// declaration, or CDATA section. Returns the matched length in
// characters, or zero. The match never crosses the end of the line.
//
//nolint:revive // cognitive-complexity: tag grammar is one state walk
func matchHTMLTag(s *VirginString, pos int) int {
	if pos >= s.Len() || s.At(pos) != '<' {
		return 0
	}

	rest := s.Sliced(pos, -1)
	text := rest.String()

	// Comment: <!-- ... --> with no --> inside.
	if strings.HasPrefix(text, "<!--") {
		if end := strings.Index(text[4:], "-->"); end >= 0 {
			return 4 + end + 3
		}

		return 0
	}
	// CDATA.
	if strings.HasPrefix(text, "<![CDATA[") {
		if end := strings.Index(text[9:], "]]>"); end >= 0 {
			return 9 + end + 3
		}

		return 0
	}
	// Processing instruction.
	if strings.HasPrefix(text, "<?") {
		if end := strings.Index(text[2:], "?>"); end >= 0 {
			return 2 + end + 2
		}

		return 0
	}
	// Declaration: <! letter ... >.
	if strings.HasPrefix(text, "<!") {
		if len(text) > 2 && isASCIILetter(rune(text[2])) {
			if end := strings.IndexByte(text, '>'); end >= 0 {
				return end + 1
			}
		}

		return 0
	}

	i := pos + 1
	closing := false
	if i < s.Len() && s.At(i) == '/' {
		closing = true
		i++
	}

	name, i := tagNameAt(s, i)
	if name == "" {
		return 0
	}

	if closing {
		i = skipSpaces(s, i)
		if i < s.Len() && s.At(i) == '>' {
			return i - pos + 1
		}

		return 0
	}

	// Attributes.
	for {
		start := i
		i = skipSpaces(s, i)

		if i < s.Len() && s.At(i) == '/' {
			if i+1 < s.Len() && s.At(i+1) == '>' {
				return i + 2 - pos
			}

			return 0
		}
		if i < s.Len() && s.At(i) == '>' {
			return i - pos + 1
		}
		if i == start || i >= s.Len() {
			return 0
		}

		// Attribute name: letter, _ or :, then alnum/_/./:/-.
		r := s.At(i)
		if !isASCIILetter(r) && r != '_' && r != ':' {
			return 0
		}
		i++
		for i < s.Len() {
			r = s.At(i)
			if !isASCIIAlnum(r) && r != '_' && r != '.' && r != ':' && r != '-' {
				break
			}
			i++
		}

		// Optional value.
		j := skipSpaces(s, i)
		if j >= s.Len() || s.At(j) != '=' {
			continue
		}
		i = skipSpaces(s, j+1)
		if i >= s.Len() {
			return 0
		}

		switch s.At(i) {
		case '"':
			i++
			for i < s.Len() && s.At(i) != '"' {
				i++
			}
			if i >= s.Len() {
				return 0
			}
			i++
		case '\'':
			i++
			for i < s.Len() && s.At(i) != '\'' {
				i++
			}
			if i >= s.Len() {
				return 0
			}
			i++
		default:
			start := i
			for i < s.Len() {
				r = s.At(i)
				if r == ' ' || r == '\t' || r == '"' || r == '\'' ||
					r == '=' || r == '<' || r == '>' || r == '`' {
					break
				}
				i++
			}
			if i == start {
				return 0
			}
		}
	}
}
