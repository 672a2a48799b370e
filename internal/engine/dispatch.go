package engine

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/alnah/go-adoc2md/internal/attrs"
	"github.com/alnah/go-adoc2md/internal/blockattr"
	"github.com/alnah/go-adoc2md/internal/inline"
	"github.com/alnah/go-adoc2md/internal/xref"
)

var (
	headingPattern      = regexp.MustCompile(`^(={1,6}|#{1,6})[ \t]+(.+?)(?:[ \t]+(?:=+|#+))?$`)
	attributeEntry      = regexp.MustCompile(`^:(!?)(\w[\w-]*)(!?):(?:[ \t]+(.*))?$`)
	blockAttributeLine  = regexp.MustCompile(`^\[(.*)\]$`)
	blockTitlePattern   = regexp.MustCompile(`^\.([^ \t.].*)$`)
	admonitionShorthand = regexp.MustCompile(`^(NOTE|TIP|IMPORTANT|WARNING|CAUTION):[ \t]+(.*)$`)
	blockImagePattern   = regexp.MustCompile(`^image::([^\[\s]+)\[(.*)\]$`)
	authorPattern       = regexp.MustCompile(`^([\p{L}\w][\p{L}\w.'-]*)(?:[ \t]+([\p{L}\w.'-]+))?(?:[ \t]+([\p{L}\w.'-]+))?(?:[ \t]+<([^>]+)>)?$`)
	revisionPattern     = regexp.MustCompile(`^v?(\d[^\s,:]*)(?:,[ \t]*([^:]*?))?(?:[ \t]*:[ \t]*(.*))?$`)
)

// dispatch classifies one input line and applies the first rule that
// matches it.
func (c *converter) dispatch(line string, depth int) {
	line = strings.TrimRightFunc(line, unicode.IsSpace)

	if c.skip.active() {
		c.directive(line, depth)
		return
	}
	if line == "" {
		c.blankLine()
		return
	}

	escaped := strings.HasPrefix(line, `\`) && directivePattern.MatchString(line[1:])
	if escaped {
		line = line[1:]
	} else if c.directive(line, depth) {
		return
	}

	ct := c.containers.top()
	if ct != nil && ct.raw() {
		c.rawLine(ct, line)
		return
	}
	if l := c.literal; l != nil {
		if l.outdent == 0 || indentWidth(line) >= l.outdent {
			c.literalLine(line)
			return
		}
		c.closeLiteral()
	}
	if strings.HasPrefix(line, "//") && !strings.HasPrefix(line, "////") {
		return
	}
	if ct != nil && ct.kind == kindTable {
		if line == ct.delimiter {
			c.closeContainer()
			return
		}
		ct.table.Line(line)
		return
	}
	if c.headerInfo {
		if c.headerLine(line) {
			return
		}
		c.headerInfo = false
	}

	if delimiterPattern.MatchString(line) {
		c.closeParagraph()
		c.delimiter(line)
		return
	}

	if c.para != nil {
		if len(c.lists) > 0 {
			if line == "+" {
				c.listContinuation()
				return
			}
			if item, ok := parseListItem(line); ok {
				c.listEntry(item)
				return
			}
		}
		c.continueParagraph(line)
		return
	}

	if m := headingPattern.FindStringSubmatch(line); m != nil {
		c.heading(m[1], m[2])
		return
	}
	if m := attributeEntry.FindStringSubmatch(line); m != nil {
		c.attributeEntry(m)
		return
	}
	if m := blockAttributeLine.FindStringSubmatch(line); m != nil {
		c.pendingAttrs = c.pendingAttrs.Merge(blockattr.Parse(m[1]))
		return
	}
	if line == "+" && len(c.lists) > 0 {
		c.listContinuation()
		return
	}
	if item, ok := parseListItem(line); ok {
		c.listEntry(item)
		return
	}
	if m := blockTitlePattern.FindStringSubmatch(line); m != nil {
		c.title = c.inline.Apply(m[1])
		return
	}
	if indentWidth(line) > 0 {
		c.openLiteral(line)
		return
	}
	if m := admonitionShorthand.FindStringSubmatch(line); m != nil {
		c.startParagraph(m[2], m[1])
		return
	}
	if m := blockImagePattern.FindStringSubmatch(line); m != nil {
		c.blockImage(m[1], m[2])
		return
	}

	switch line {
	case "'''", "***", "---":
		c.takeAttrs()
		c.takeTitle()
		c.settleLists()
		c.blank()
		c.emit("---")
		c.blank()
		return
	case "<<<", "toc::[]":
		return
	}

	c.startParagraph(line, "")
}

// blankLine ends the open paragraph or literal block. Inside verbatim
// content and tables the blank line belongs to the container.
func (c *converter) blankLine() {
	if ct := c.containers.top(); ct != nil {
		switch ct.kind {
		case kindVerbatim:
			ct.lines = append(ct.lines, "")
			return
		case kindPassthrough:
			c.emit("")
			return
		case kindComment:
			return
		case kindTable:
			ct.table.Blank()
			return
		}
	}
	c.closeParagraph()
	c.closeLiteral()
	c.headerInfo = false
	c.pendingAttrs = nil
	c.title = ""
	c.blank()
}

// heading emits a section title. The first level-one title of the
// document is the document title and opens the header.
func (c *converter) heading(marks, raw string) {
	a := c.takeAttrs()
	c.takeTitle()
	c.lists = nil
	c.attach = false
	c.indent = c.base

	level := len(marks)
	title := c.inline.Apply(raw)

	if level == 1 && marks[0] == '=' && !c.started && !c.titleSeen {
		c.titleSeen = true
		c.attrs.Set("doctitle", c.inline.Attributes(raw))
		c.headerInfo = true
		c.headerLines = 0
		c.slug(title)
		c.emit("# " + title)
		c.blank()
		return
	}

	id := a.ID
	if id == "" && c.attrs.IsSet("sectids") {
		id = c.sectionID(raw)
	}
	anchor := c.slug(title)
	if id != "" {
		if !c.refs.Register(xref.Entry{ID: id, Anchor: anchor, Reftext: a.Reftext, Title: title}) {
			c.logger.Debug("duplicate id", zap.String("id", id))
		}
	}

	c.blank()
	c.emit(strings.Repeat("#", level) + " " + title)
	c.blank()
}

// sectionID generates the id of a heading without an explicit one. A
// taken id gets the separator and a counter from 2 appended.
func (c *converter) sectionID(raw string) string {
	sep := c.attrs.Value("idseparator")
	id := xref.SectionID(idText(c.inline.Attributes(raw)), c.attrs.Value("idprefix"), sep)
	if id == "" {
		return ""
	}
	candidate := id
	for n := 2; ; n++ {
		if _, taken := c.refs.Lookup(candidate); !taken {
			return candidate
		}
		candidate = id + sep + strconv.Itoa(n)
	}
}

// slug returns the anchor a Markdown renderer gives a heading, numbering
// repeats the way GitHub does.
func (c *converter) slug(title string) string {
	s := xref.Anchor(title)
	n := c.slugs[s]
	c.slugs[s]++
	if n > 0 {
		s += "-" + strconv.Itoa(n)
	}
	return s
}

// idText blanks out every character that cannot appear in a section id.
func idText(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.' {
			return r
		}
		return ' '
	}, s)
}

func (c *converter) attributeEntry(m []string) {
	name := m[2]
	if m[1] == "!" || m[3] == "!" {
		if !c.attrs.Delete(name) {
			c.logger.Debug("attribute locked", zap.String("name", name))
		}
		return
	}
	if !c.attrs.Set(name, c.inline.Attributes(m[4])) {
		c.logger.Debug("attribute locked", zap.String("name", name))
	}
}

// headerLine consumes attribute entries and the author and revision lines
// of the document header. It reports whether line belonged to the header.
func (c *converter) headerLine(line string) bool {
	if m := attributeEntry.FindStringSubmatch(line); m != nil {
		c.attributeEntry(m)
		return true
	}
	switch c.headerLines {
	case 0:
		if c.authors(line) {
			c.headerLines = 1
			return true
		}
		fallthrough
	case 1:
		if c.revision(line) {
			c.headerLines = 2
			return true
		}
	}
	return false
}

func (c *converter) authors(line string) bool {
	var found [][]string
	for _, part := range strings.Split(line, ";") {
		m := authorPattern.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			return false
		}
		found = append(found, m)
	}

	var names []string
	for i, m := range found {
		first, middle, last := m[1], m[2], m[3]
		if last == "" {
			middle, last = "", middle
		}
		var parts []string
		for _, p := range []string{first, middle, last} {
			if p != "" {
				parts = append(parts, strings.ReplaceAll(p, "_", " "))
			}
		}
		name := strings.Join(parts, " ")
		names = append(names, name)

		suffix := ""
		if i > 0 {
			suffix = "_" + strconv.Itoa(i+1)
		}
		c.attrs.Set("author"+suffix, name)
		c.attrs.Set("firstname"+suffix, first)
		if middle != "" {
			c.attrs.Set("middlename"+suffix, middle)
		}
		if last != "" {
			c.attrs.Set("lastname"+suffix, last)
		}
		if m[4] != "" {
			c.attrs.Set("email"+suffix, m[4])
		}
		c.attrs.Set("authorinitials"+suffix, initials(parts))
	}
	c.attrs.Set("authors", strings.Join(names, ", "))
	return true
}

func initials(parts []string) string {
	var sb strings.Builder
	for _, p := range parts {
		r := []rune(p)
		sb.WriteRune(r[0])
	}
	return sb.String()
}

func (c *converter) revision(line string) bool {
	m := revisionPattern.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	if m[2] == "" && !strings.HasPrefix(line, "v") && m[3] == "" {
		c.attrs.Set("revdate", m[1])
		return true
	}
	c.attrs.Set("revnumber", m[1])
	if m[2] != "" {
		c.attrs.Set("revdate", strings.TrimSpace(m[2]))
	}
	if m[3] != "" {
		c.attrs.Set("revremark", m[3])
	}
	return true
}

// paragraph is the state of the open paragraph.
type paragraph struct {
	hardbreaks bool
	breakNext  bool
	raw        bool
	// empty is set until the paragraph has emitted its first line.
	empty bool

	quoted      bool
	restore     string
	attribution string
}

// startParagraph opens a paragraph on line. label is the admonition label
// of a NOTE: style shorthand, or "".
func (c *converter) startParagraph(line, label string) {
	a := c.takeAttrs()
	title := c.takeTitle()
	c.settleLists()

	style := a.Style
	if label != "" {
		style = label
	}
	switch style {
	case "source", "listing", "literal":
		c.blockPreamble(a, title)
		lang := ""
		if style == "source" {
			lang = c.verbatimLang(a)
		}
		c.literal = &literalBlock{lang: lang}
		c.literalLine(line)
		return
	}

	top := c.containers.top()
	p := &paragraph{
		hardbreaks: a.HasOption("hardbreaks") || c.attrs.IsSet("hardbreaks-option") ||
			style == "verse" || (top != nil && top.verse),
		raw: style == "pass",
	}
	anchor := c.preamble(a, title)
	if style == "quote" || style == "verse" {
		p.quoted, p.restore = true, c.indent
		p.attribution = c.attribution(a)
		c.indent += "> "
	}
	c.para = p

	if attrs.IsAdmonition(style) {
		c.emit(anchor + "**" + strings.TrimSpace(c.attrs.Icon(style)+" "+style) + "**")
		p.breakNext = true
		c.continueParagraph(line)
		return
	}
	text := c.paragraphText(line)
	if text == "" && anchor == "" {
		p.empty = true
		return
	}
	c.emit(anchor + text)
}

// paragraphText substitutes one paragraph line. A trailing " +" requests
// a hard break before the next line.
func (c *converter) paragraphText(line string) string {
	brk := false
	if strings.HasSuffix(line, " +") {
		line = strings.TrimRight(strings.TrimSuffix(line, " +"), " \t")
		brk = true
	}
	if c.para != nil {
		c.para.breakNext = brk
		if c.para.raw {
			return line
		}
	}
	return c.inline.Apply(line)
}

func (c *converter) continueParagraph(line string) {
	p := c.para
	brk := p.breakNext || p.hardbreaks
	text := c.paragraphText(strings.TrimLeft(line, " \t"))
	if text == "" {
		return
	}
	switch {
	case p.empty:
		p.empty = false
		c.emit(text)
	case brk:
		c.appendLast(c.lineBreak())
		c.emit(text)
	case c.attrs.IsSet("markdown-unwrap-prose"):
		c.appendLast(" " + text)
	default:
		c.emit(text)
	}
}

func (c *converter) closeParagraph() {
	p := c.para
	if p == nil {
		return
	}
	c.para = nil
	if !p.quoted {
		return
	}
	if p.attribution != "" {
		c.emit("")
		c.emit("— " + p.attribution)
	}
	c.indent = p.restore
}

// literalBlock is an open literal paragraph: an indented block or a
// paragraph styled source, listing or literal.
type literalBlock struct {
	outdent int
	lang    string
	lines   []string
}

// openLiteral starts an implicit literal block on an indented line. The
// block attaches to the current list item when lists are open.
func (c *converter) openLiteral(line string) {
	a := c.takeAttrs()
	title := c.takeTitle()
	if len(c.lists) > 0 {
		c.attach = false
		c.indent = c.lists[len(c.lists)-1].child
	}
	c.blockPreamble(a, title)

	lang := ""
	if strings.HasPrefix(strings.TrimLeft(line, " \t"), "$ ") {
		lang = "console"
	}
	if l := c.verbatimLang(a); a.Style == "source" && l != "" {
		lang = l
	}
	c.literal = &literalBlock{outdent: indentWidth(line), lang: lang}
	c.literalLine(line)
}

func (c *converter) literalLine(line string) {
	l := c.literal
	l.lines = append(l.lines, line[min(l.outdent, indentWidth(line)):])
}

func (c *converter) closeLiteral() {
	l := c.literal
	if l == nil {
		return
	}
	c.literal = nil
	c.emitFenced(l.lang, l.lines)
	c.blank()
}

// blockImage renders image::target[alt,...] as a Markdown image, wrapped
// in a link when link= is given.
func (c *converter) blockImage(target, attrList string) {
	a := c.takeAttrs()
	title := c.takeTitle()
	c.settleLists()

	opts := blockattr.Parse(attrList)
	alt, _, _ := strings.Cut(attrList, ",")
	if strings.Contains(alt, "=") {
		alt = ""
	}
	alt = strings.TrimSpace(strings.Trim(strings.TrimSpace(alt), `"`))
	if alt == "" {
		alt = opts.Get("alt")
	}
	target = c.inline.Attributes(target)
	if alt == "" {
		alt = inline.Stem(target)
	}

	md := "![" + alt + "](" + inline.ImagePath(c.attrs.Value("imagesdir"), target) + ")"
	if link := opts.Get("link"); link != "" {
		md = "[" + md + "](" + c.inline.Attributes(link) + ")"
	}
	c.emit(c.preamble(a, title) + md)
	c.blank()
}
