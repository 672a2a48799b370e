package inline

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	escapedMark = regexp.MustCompile(`\\(<<|\[\[|(?:https?|ftp|irc|mailto|link|xref|image|footnote|kbd|btn|menu|pass|stem|latexmath|asciimath|anchor):|[*_#` + "`" + `+^~])`)

	stemMacro        = regexp.MustCompile(`(?:stem|latexmath|asciimath):\[((?:\\\]|[^\]])*)\]`)
	passMacro        = regexp.MustCompile(`pass:[a-z,]*\[((?:\\\]|[^\]])*)\]`)
	triplePlus       = regexp.MustCompile(`\+\+\+(.+?)\+\+\+`)
	doublePlus       = regexp.MustCompile(`\+\+(\S|\S.*?\S)\+\+`)
	curlyDouble      = regexp.MustCompile(`"` + "`" + `(.+?)` + "`" + `"`)
	curlySingle      = regexp.MustCompile(`'` + "`" + `(.+?)` + "`" + `'`)
	doubleBacktick   = regexp.MustCompile("``(.+?)``")
	xrefShorthand    = regexp.MustCompile(`<<([^<>,]+?)(?:,\s*([^<>]*?))?>>`)
	angleAutolink    = regexp.MustCompile(`<((?:https?|ftp|irc)://[^\s<>]+)>`)
	emailAutolink    = regexp.MustCompile(`<[\w.%+-]+@[\w-]+(?:\.[\w-]+)+>`)
	tagLikeAngle     = regexp.MustCompile(`<([A-Za-z/!])`)
	roleSpan         = regexp.MustCompile(`\[\.([\w-]+(?:\.[\w-]+)*)\]##?(.+?)##?`)
	doubleHash       = regexp.MustCompile(`##(.+?)##`)
	doubleUnderscore = regexp.MustCompile(`__(.+?)__`)
	superscript      = regexp.MustCompile(`\^(\S+?)\^`)
	subscript        = regexp.MustCompile(`~(\S+?)~`)
	schemeURL        = regexp.MustCompile(`(?:https?|ftp|irc)://[^\s\[\]<>"]+`)
)

// quotes converts emphasis, code spans, passthroughs, math and quote marks.
// Scheme URLs are shielded from emphasis matching for the duration of
// this step only, so attribute references inside them still expand.
func (p *Pipeline) quotes(text string) string {
	text = escapedMark.ReplaceAllStringFunc(text, func(m string) string {
		mark := m[1:]
		if len(mark) == 1 {
			return p.protect(m)
		}
		return p.protect(mark)
	})

	text = stemMacro.ReplaceAllStringFunc(text, func(m string) string {
		inner := stemMacro.FindStringSubmatch(m)[1]
		return p.protect("$" + unescapeBracket(inner) + "$")
	})
	text = passMacro.ReplaceAllStringFunc(text, func(m string) string {
		inner := passMacro.FindStringSubmatch(m)[1]
		return p.protect(unescapeBracket(inner))
	})
	text = triplePlus.ReplaceAllStringFunc(text, func(m string) string {
		return p.protect(m[3 : len(m)-3])
	})
	text = doublePlus.ReplaceAllStringFunc(text, func(m string) string {
		return p.protect(m[2 : len(m)-2])
	})
	text = constrained(text, '+', func(inner string) string {
		return p.protect(inner)
	})

	text = curlyDouble.ReplaceAllString(text, p.attrs.Value("ldquo")+"$1"+p.attrs.Value("rdquo"))
	text = curlySingle.ReplaceAllString(text, p.attrs.Value("lsquo")+"$1"+p.attrs.Value("rsquo"))

	code := func(inner string) string {
		return p.protect("`" + p.Attributes(inner) + "`")
	}
	text = doubleBacktick.ReplaceAllStringFunc(text, func(m string) string {
		return code(m[2 : len(m)-2])
	})
	text = constrained(text, '`', code)

	text = xrefShorthand.ReplaceAllStringFunc(text, func(m string) string {
		parts := xrefShorthand.FindStringSubmatch(m)
		return p.xrefLink(strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2]))
	})

	var urls []string
	text = angleAutolink.ReplaceAllString(text, "$1")
	text = schemeURL.ReplaceAllStringFunc(text, func(m string) string {
		urls = append(urls, m)
		return urlStart + strconv.Itoa(len(urls)-1) + urlEnd
	})

	text = emailAutolink.ReplaceAllStringFunc(text, p.protect)
	text = tagLikeAngle.ReplaceAllString(text, "&lt;$1")
	text = superscript.ReplaceAllString(text, "<sup>$1</sup>")
	text = subscript.ReplaceAllString(text, "<sub>$1</sub>")

	text = roleSpan.ReplaceAllStringFunc(text, func(m string) string {
		parts := roleSpan.FindStringSubmatch(m)
		roles := strings.Split(parts[1], ".")
		for _, r := range roles {
			switch r {
			case "line-through":
				return "~~" + parts[2] + "~~"
			case "underline":
				return "<ins>" + parts[2] + "</ins>"
			}
		}
		return parts[2]
	})
	text = doubleHash.ReplaceAllString(text, "<mark>$1</mark>")
	text = constrained(text, '#', func(inner string) string {
		return "<mark>" + inner + "</mark>"
	})

	text = constrained(text, '*', func(inner string) string {
		return "**" + inner + "**"
	})
	text = doubleUnderscore.ReplaceAllString(text, "_${1}_")

	text = smartApostrophes(text, p.attrs.Value("rsquo"))

	for i, u := range urls {
		text = strings.Replace(text, urlStart+strconv.Itoa(i)+urlEnd, u, 1)
	}
	return text
}

// URL shielding placeholders, also in the Private Use Area.
const (
	urlStart = "\uE022"
	urlEnd   = "\uE023"
)

// constrained replaces spans delimited by a single mark character that
// open after a non-word character and close before one. Content must not
// start or end with whitespace. A mark doubled with its neighbour is left
// alone.
func constrained(text string, mark byte, fn func(inner string) string) string {
	if strings.IndexByte(text, mark) < 0 {
		return text
	}
	var b strings.Builder
	i := 0
	for i < len(text) {
		if text[i] != mark || !opens(text, i, mark) {
			b.WriteByte(text[i])
			i++
			continue
		}
		j := closing(text, i, mark)
		if j < 0 {
			b.WriteByte(text[i])
			i++
			continue
		}
		b.WriteString(fn(text[i+1 : j]))
		i = j + 1
	}
	return b.String()
}

func opens(text string, i int, mark byte) bool {
	if i+1 >= len(text) || text[i+1] == mark || isSpace(text[i+1]) {
		return false
	}
	if i == 0 {
		return true
	}
	if text[i-1] == mark {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWord(r) && r != ':' && r != ';' && r != '}'
}

func closing(text string, i int, mark byte) int {
	for j := i + 2; j < len(text); j++ {
		if text[j] != mark || isSpace(text[j-1]) {
			continue
		}
		if j+1 < len(text) {
			if text[j+1] == mark {
				continue
			}
			r, _ := utf8.DecodeRuneInString(text[j+1:])
			if isWord(r) {
				continue
			}
		}
		return j
	}
	return -1
}

// smartApostrophes turns a straight apostrophe between word characters into rsquo.
func smartApostrophes(text, rsquo string) string {
	if !strings.Contains(text, "'") {
		return text
	}
	var b strings.Builder
	for i, r := range text {
		if r == '\'' && i > 0 && i+1 < len(text) {
			prev, _ := utf8.DecodeLastRuneInString(text[:i])
			next, _ := utf8.DecodeRuneInString(text[i+1:])
			if (unicode.IsLetter(prev) || unicode.IsDigit(prev)) && unicode.IsLetter(next) {
				b.WriteString(rsquo)
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}
