package engine

import (
	"regexp"
	"strings"

	"github.com/alnah/go-adoc2md/internal/attrs"
	"github.com/alnah/go-adoc2md/internal/blockattr"
	"github.com/alnah/go-adoc2md/internal/inline"
	"github.com/alnah/go-adoc2md/internal/table"
)

var delimiterPattern = regexp.MustCompile(`^(?:-{4,}|\.{4,}|={4,}|\*{4,}|_{4,}|\+{4,}|/{4,}|--|\|={3,})$`)

type containerKind int

const (
	kindVerbatim containerKind = iota
	kindComment
	kindCompound
	kindTable
	kindPassthrough
)

// container is one open delimited block.
type container struct {
	kind      containerKind
	delimiter string

	savedIndent string
	savedBase   string
	savedLists  []*listContext

	// inner lines are emitted before the saved indent is restored, outer
	// lines after. An empty string schedules a blank line.
	inner []string
	outer []string

	lang     string
	subs     bool
	callouts bool
	outdent  int
	lines    []string
	counter  int

	verse bool
	table *table.Builder
}

// raw reports whether only the container's own delimiter is recognized inside it.
func (ct *container) raw() bool {
	return ct.kind == kindVerbatim || ct.kind == kindComment || ct.kind == kindPassthrough
}

type containerStack []*container

func (s *containerStack) push(ct *container) {
	*s = append(*s, ct)
}

func (s *containerStack) pop() *container {
	n := len(*s)
	if n == 0 {
		return nil
	}
	ct := (*s)[n-1]
	*s = (*s)[:n-1]
	return ct
}

func (s containerStack) top() *container {
	if len(s) == 0 {
		return nil
	}
	return s[len(s)-1]
}

// delimiter closes the innermost container when line is its delimiter,
// otherwise it opens a new container.
func (c *converter) delimiter(line string) {
	if ct := c.containers.top(); ct != nil && ct.delimiter == line {
		c.closeContainer()
		return
	}
	c.openContainer(line)
}

func (c *converter) openContainer(delim string) {
	a := c.takeAttrs()
	title := c.takeTitle()
	ct := &container{
		kind:      kindFor(delim, a),
		delimiter: delim,
		outdent:   -1,
	}
	if ct.kind != kindComment {
		c.settleLists()
	}
	ct.savedIndent, ct.savedBase, ct.savedLists = c.indent, c.base, c.lists

	prefix := ""
	switch ct.kind {
	case kindVerbatim:
		c.blockPreamble(a, title)
		ct.lang = c.verbatimLang(a)
		ct.subs = wantsAttributes(a.Get("subs"))
		ct.callouts = ct.lang != "math"
		ct.outdent = a.Int("indent", -1)
	case kindTable:
		c.blockPreamble(a, title)
		ct.table = table.New(table.Options{
			Cols:     a.Get("cols"),
			Header:   a.HasOption("header"),
			NoHeader: a.HasOption("noheader"),
			Format:   c.inline.Apply,
		})
	case kindCompound:
		prefix = c.openCompound(ct, a, title)
	}

	c.containers.push(ct)
	c.indent = ct.savedIndent + prefix
	c.base = c.indent
	c.lists = nil
}

// openCompound renders the opening of an example, sidebar, quote or open
// block and returns the prefix its content lines take.
func (c *converter) openCompound(ct *container, a *blockattr.List, title string) string {
	style := a.Style
	switch {
	case attrs.IsAdmonition(style):
		dt := "<strong>" + strings.TrimSpace(c.attrs.Icon(style)+" "+style) + "</strong>"
		if title != "" {
			dt += " " + title
		}
		c.emit(c.blockAnchor(a, title) + "<dl><dt>" + dt + "</dt><dd>")
		c.blank()
		ct.outer = []string{"", "</dd></dl>"}
	case a.HasOption("collapsible"):
		summary := title
		if summary == "" {
			summary = "Details"
		}
		anchor := c.blockAnchor(a, title)
		variant := c.attrs.Value("markdown-collapsible-variant")
		if variant == "" || variant == "disclosure" {
			open := "<details>"
			if a.HasOption("open") {
				open = "<details open>"
			}
			c.emit(anchor + open)
			c.emit("<summary>" + summary + "</summary>")
			c.blank()
			ct.outer = []string{"", "</details>"}
			break
		}
		if anchor != "" {
			c.emit(anchor)
			c.blank()
		}
		c.emit("```" + variant + " " + summary)
		ct.outer = []string{"```"}
	case style == "quote" || style == "verse" || ct.delimiter[0] == '_':
		c.blockPreamble(a, title)
		ct.verse = style == "verse"
		if by := c.attribution(a); by != "" {
			ct.inner = []string{"", "— " + by}
		}
		return "> "
	default:
		c.blockPreamble(a, title)
	}
	return ""
}

// closeContainer pops the innermost container, flushes its content and
// restores the indent and list stack saved when it opened.
func (c *converter) closeContainer() {
	c.closeParagraph()
	c.closeLiteral()
	ct := c.containers.pop()
	if ct == nil {
		return
	}

	switch ct.kind {
	case kindVerbatim:
		c.emitFenced(ct.lang, reindent(ct.lines, ct.outdent))
	case kindTable:
		for _, line := range ct.table.Render() {
			c.emit(line)
		}
	}
	c.emitAll(ct.inner)

	c.indent, c.base, c.lists = ct.savedIndent, ct.savedBase, ct.savedLists
	c.emitAll(ct.outer)
	if ct.kind != kindComment {
		c.blank()
	}
}

// rawLine handles a line inside a verbatim, comment or passthrough container.
func (c *converter) rawLine(ct *container, line string) {
	if line == ct.delimiter {
		c.closeContainer()
		return
	}
	switch ct.kind {
	case kindPassthrough:
		c.emit(line)
	case kindVerbatim:
		if ct.subs {
			line = c.inline.Attributes(line)
		}
		if ct.callouts {
			line = inline.Callouts(line, &ct.counter)
		}
		ct.lines = append(ct.lines, line)
	}
}

func (c *converter) emitAll(lines []string) {
	for _, l := range lines {
		if l == "" {
			c.blank()
			continue
		}
		c.emit(l)
	}
}

// emitFenced writes a fenced code block. The fence grows past any
// backtick run inside the content.
func (c *converter) emitFenced(lang string, lines []string) {
	fence := "```"
	for _, l := range lines {
		for strings.Contains(l, fence) {
			fence += "`"
		}
	}
	c.emit(fence + lang)
	for _, l := range lines {
		c.emit(l)
	}
	c.emit(fence)
}

func (c *converter) verbatimLang(a *blockattr.List) string {
	switch a.Style {
	case "source":
		if lang := a.Pos(2); lang != "" {
			return lang
		}
		return c.attrs.Value("source-language")
	case "":
		return a.Pos(2)
	case "listing", "literal":
		return ""
	case "stem", "latexmath", "asciimath":
		return "math"
	default:
		return a.Style
	}
}

func (c *converter) attribution(a *blockattr.List) string {
	who := a.Pos(2)
	if who == "" {
		who = a.Get("attribution")
	}
	cite := a.Pos(3)
	if cite == "" {
		cite = a.Get("citetitle")
	}
	var parts []string
	for _, p := range []string{who, cite} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, c.inline.Apply(p))
		}
	}
	return strings.Join(parts, ", ")
}

func kindFor(delim string, a *blockattr.List) containerKind {
	switch delim[0] {
	case '/':
		return kindComment
	case '|':
		return kindTable
	case '+':
		switch a.Style {
		case "stem", "latexmath", "asciimath":
			return kindVerbatim
		}
		return kindPassthrough
	case '.':
		return kindVerbatim
	case '-':
		if delim != "--" {
			return kindVerbatim
		}
		switch a.Style {
		case "source", "listing", "literal":
			return kindVerbatim
		}
	}
	return kindCompound
}

// wantsAttributes reports whether a subs value enables attribute substitution.
func wantsAttributes(subs string) bool {
	for _, s := range strings.Split(subs, ",") {
		switch strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "+")) {
		case "attributes", "normal":
			return true
		}
	}
	return false
}

// reindent strips the common leading whitespace of lines and indents them
// by width spaces. A negative width leaves lines untouched.
func reindent(lines []string, width int) []string {
	if width < 0 {
		return lines
	}
	common := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if w := indentWidth(l); common < 0 || w < common {
			common = w
		}
	}
	if common < 0 {
		common = 0
	}
	pad := strings.Repeat(" ", width)
	out := make([]string, len(lines))
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			out[i] = ""
			continue
		}
		out[i] = pad + l[common:]
	}
	return out
}
