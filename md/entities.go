package md

import (
	"strconv"
	"strings"
)

// maxEntityLen bounds the scan for a closing ; after an &.
const maxEntityLen = 32

// namedEntities maps HTML entity names (without & and ;) to their
// replacement text. The set follows the original HTML4 core plus the
// names markdown documents actually use; unknown names stay literal.
var namedEntities = map[string]string{
	"amp":      "&",
	"lt":       "<",
	"gt":       ">",
	"quot":     "\"",
	"apos":     "'",
	"nbsp":     " ",
	"iexcl":    "¡",
	"cent":     "¢",
	"pound":    "£",
	"curren":   "¤",
	"yen":      "¥",
	"brvbar":   "¦",
	"sect":     "§",
	"uml":      "¨",
	"copy":     "©",
	"ordf":     "ª",
	"laquo":    "«",
	"not":      "¬",
	"shy":      "­",
	"reg":      "®",
	"macr":     "¯",
	"deg":      "°",
	"plusmn":   "±",
	"sup2":     "²",
	"sup3":     "³",
	"acute":    "´",
	"micro":    "µ",
	"para":     "¶",
	"middot":   "·",
	"cedil":    "¸",
	"sup1":     "¹",
	"ordm":     "º",
	"raquo":    "»",
	"frac14":   "¼",
	"frac12":   "½",
	"frac34":   "¾",
	"iquest":   "¿",
	"Agrave":   "À",
	"Aacute":   "Á",
	"Acirc":    "Â",
	"Atilde":   "Ã",
	"Auml":     "Ä",
	"Aring":    "Å",
	"AElig":    "Æ",
	"Ccedil":   "Ç",
	"Egrave":   "È",
	"Eacute":   "É",
	"Ecirc":    "Ê",
	"Euml":     "Ë",
	"Igrave":   "Ì",
	"Iacute":   "Í",
	"Icirc":    "Î",
	"Iuml":     "Ï",
	"ETH":      "Ð",
	"Ntilde":   "Ñ",
	"Ograve":   "Ò",
	"Oacute":   "Ó",
	"Ocirc":    "Ô",
	"Otilde":   "Õ",
	"Ouml":     "Ö",
	"times":    "×",
	"Oslash":   "Ø",
	"Ugrave":   "Ù",
	"Uacute":   "Ú",
	"Ucirc":    "Û",
	"Uuml":     "Ü",
	"Yacute":   "Ý",
	"THORN":    "Þ",
	"szlig":    "ß",
	"agrave":   "à",
	"aacute":   "á",
	"acirc":    "â",
	"atilde":   "ã",
	"auml":     "ä",
	"aring":    "å",
	"aelig":    "æ",
	"ccedil":   "ç",
	"egrave":   "è",
	"eacute":   "é",
	"ecirc":    "ê",
	"euml":     "ë",
	"igrave":   "ì",
	"iacute":   "í",
	"icirc":    "î",
	"iuml":     "ï",
	"eth":      "ð",
	"ntilde":   "ñ",
	"ograve":   "ò",
	"oacute":   "ó",
	"ocirc":    "ô",
	"otilde":   "õ",
	"ouml":     "ö",
	"divide":   "÷",
	"oslash":   "ø",
	"ugrave":   "ù",
	"uacute":   "ú",
	"ucirc":    "û",
	"uuml":     "ü",
	"yacute":   "ý",
	"thorn":    "þ",
	"yuml":     "ÿ",
	"OElig":    "Œ",
	"oelig":    "œ",
	"Scaron":   "Š",
	"scaron":   "š",
	"Yuml":     "Ÿ",
	"fnof":     "ƒ",
	"circ":     "ˆ",
	"tilde":    "˜",
	"ensp":     " ",
	"emsp":     " ",
	"thinsp":   " ",
	"zwnj":     "‌",
	"zwj":      "‍",
	"lrm":      "‎",
	"rlm":      "‏",
	"ndash":    "–",
	"mdash":    "—",
	"lsquo":    "‘",
	"rsquo":    "’",
	"sbquo":    "‚",
	"ldquo":    "“",
	"rdquo":    "”",
	"bdquo":    "„",
	"dagger":   "†",
	"Dagger":   "‡",
	"bull":     "•",
	"hellip":   "…",
	"permil":   "‰",
	"prime":    "′",
	"Prime":    "″",
	"lsaquo":   "‹",
	"rsaquo":   "›",
	"oline":    "‾",
	"frasl":    "⁄",
	"euro":     "€",
	"trade":    "™",
	"alefsym":  "ℵ",
	"larr":     "←",
	"uarr":     "↑",
	"rarr":     "→",
	"darr":     "↓",
	"harr":     "↔",
	"crarr":    "↵",
	"lArr":     "⇐",
	"uArr":     "⇑",
	"rArr":     "⇒",
	"dArr":     "⇓",
	"hArr":     "⇔",
	"forall":   "∀",
	"part":     "∂",
	"exist":    "∃",
	"empty":    "∅",
	"nabla":    "∇",
	"isin":     "∈",
	"notin":    "∉",
	"ni":       "∋",
	"prod":     "∏",
	"sum":      "∑",
	"minus":    "−",
	"lowast":   "∗",
	"radic":    "√",
	"prop":     "∝",
	"infin":    "∞",
	"ang":      "∠",
	"and":      "∧",
	"or":       "∨",
	"cap":      "∩",
	"cup":      "∪",
	"int":      "∫",
	"there4":   "∴",
	"sim":      "∼",
	"cong":     "≅",
	"asymp":    "≈",
	"ne":       "≠",
	"equiv":    "≡",
	"le":       "≤",
	"ge":       "≥",
	"sub":      "⊂",
	"sup":      "⊃",
	"nsub":     "⊄",
	"sube":     "⊆",
	"supe":     "⊇",
	"oplus":    "⊕",
	"otimes":   "⊗",
	"perp":     "⊥",
	"sdot":     "⋅",
	"lceil":    "⌈",
	"rceil":    "⌉",
	"lfloor":   "⌊",
	"rfloor":   "⌋",
	"lang":     "〈",
	"rang":     "〉",
	"loz":      "◊",
	"spades":   "♠",
	"clubs":    "♣",
	"hearts":   "♥",
	"diams":    "♦",
	"Alpha":    "Α",
	"Beta":     "Β",
	"Gamma":    "Γ",
	"Delta":    "Δ",
	"Epsilon":  "Ε",
	"Zeta":     "Ζ",
	"Eta":      "Η",
	"Theta":    "Θ",
	"Iota":     "Ι",
	"Kappa":    "Κ",
	"Lambda":   "Λ",
	"Mu":       "Μ",
	"Nu":       "Ν",
	"Xi":       "Ξ",
	"Omicron":  "Ο",
	"Pi":       "Π",
	"Rho":      "Ρ",
	"Sigma":    "Σ",
	"Tau":      "Τ",
	"Upsilon":  "Υ",
	"Phi":      "Φ",
	"Chi":      "Χ",
	"Psi":      "Ψ",
	"Omega":    "Ω",
	"alpha":    "α",
	"beta":     "β",
	"gamma":    "γ",
	"delta":    "δ",
	"epsilon":  "ε",
	"zeta":     "ζ",
	"eta":      "η",
	"theta":    "θ",
	"iota":     "ι",
	"kappa":    "κ",
	"lambda":   "λ",
	"mu":       "μ",
	"nu":       "ν",
	"xi":       "ξ",
	"omicron":  "ο",
	"pi":       "π",
	"rho":      "ρ",
	"sigmaf":   "ς",
	"sigma":    "σ",
	"tau":      "τ",
	"upsilon":  "υ",
	"phi":      "φ",
	"chi":      "χ",
	"psi":      "ψ",
	"omega":    "ω",
	"thetasym": "ϑ",
	"upsih":    "ϒ",
	"piv":      "ϖ",
}

// replaceOne rewrites the window [pos, pos+oldLen) with with, recording
// one editing pass so VirginPos keeps mapping.
func (s *VirginString) replaceOne(pos, oldLen int, with string) {
	repl := []rune(with)
	totalLen := len(s.data)

	out := make([]rune, 0, totalLen-oldLen+len(repl))
	out = append(out, s.data[:pos]...)
	out = append(out, repl...)
	out = append(out, s.data[pos+oldLen:]...)
	s.data = out

	s.edits = append(s.edits, editPass{
		length: totalLen,
		changes: []posRange{{
			pos:    pos,
			oldLen: oldLen,
			newLen: len(repl),
		}},
	})
}

// decodeEntity resolves the entity body (text between & and ;).
// Returns the replacement and whether the body is a valid entity.
func decodeEntity(body string) (string, bool) {
	if body == "" {
		return "", false
	}

	if body[0] == '#' {
		num := body[1:]
		base := 10
		if len(num) > 1 && (num[0] == 'x' || num[0] == 'X') {
			num = num[1:]
			base = 16
		}
		if num == "" {
			return "", false
		}
		v, err := strconv.ParseInt(num, base, 32)
		if err != nil || v < 0 || v > 0x10ffff {
			return "", false
		}
		if v == 0 {
			v = 0xfffd
		}

		return string(rune(v)), true
	}

	if r, ok := namedEntities[body]; ok {
		return r, true
	}

	return "", false
}

// replaceEntities decodes XML entities (&amp;, &#64;, &#x40;, ...) in
// the string, recording each replacement. Backslashed ampersands are
// left alone.
func replaceEntities(s *VirginString) {
	for i := 0; i < s.Len(); i++ {
		if s.At(i) != '&' {
			continue
		}
		if i > 0 && s.At(i-1) == '\\' && !isEscaped(s, i-1) {
			continue
		}

		end := -1
		limit := minInt(s.Len(), i+maxEntityLen)
		for j := i + 1; j < limit; j++ {
			c := s.At(j)
			if c == ';' {
				end = j

				break
			}
			if c == '&' || c == ' ' || c == '\t' {
				break
			}
		}
		if end < 0 {
			continue
		}

		body := string(s.data[i+1 : end])
		repl, ok := decodeEntity(body)
		if !ok {
			continue
		}

		s.replaceOne(i, end-i+1, repl)
		i += len([]rune(repl)) - 1
	}
}

// backslashEscapable is the ASCII punctuation set a backslash escapes.
const backslashEscapable = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// isEscaped reports whether the character at pos is itself preceded by
// an odd number of backslashes.
func isEscaped(s *VirginString, pos int) bool {
	n := 0
	for i := pos - 1; i >= 0 && s.At(i) == '\\'; i-- {
		n++
	}

	return n%2 == 1
}

// removeBackslashes strips backslashes that escape ASCII punctuation,
// recording each removal so positions of the escaped characters still
// map back.
func removeBackslashes(s *VirginString) {
	for i := 0; i < s.Len()-1; i++ {
		if s.At(i) != '\\' {
			continue
		}
		next := s.At(i + 1)
		if next < 0x80 && strings.ContainsRune(backslashEscapable, next) {
			s.Remove(i, 1)
			// The escaped character must stay literal: skip it.
		}
	}
}
