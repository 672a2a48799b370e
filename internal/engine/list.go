package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/alnah/go-adoc2md/internal/inline"
)

var (
	unorderedItem   = regexp.MustCompile(`^[ \t]*(\*{1,5}|-)[ \t]+(.*)$`)
	orderedItem     = regexp.MustCompile(`^[ \t]*(\.{1,5}|\d+\.)[ \t]+(.*)$`)
	descriptionItem = regexp.MustCompile(`^[ \t]*([^ \t:;/][^\t]*?)(:{2,4}|;;)(?:[ \t]+(.*))?$`)
	calloutItem     = regexp.MustCompile(`^<(\d+|\.)>[ \t]+(.*)$`)
)

type listKind int

const (
	listUnordered listKind = iota
	listOrdered
	listDescription
	listCallout
)

// listContext is one level of the list stack.
type listContext struct {
	class   string
	kind    listKind
	indent  string
	child   string
	numeral int
	style   string
	// callout numbering of <.> items
	counter int
}

// listItem is a parsed list marker line.
type listItem struct {
	class  string
	kind   listKind
	marker string
	text   string
	term   string
}

// parseListItem recognizes a list marker line.
func parseListItem(line string) (listItem, bool) {
	if m := unorderedItem.FindStringSubmatch(line); m != nil {
		return listItem{class: m[1], kind: listUnordered, marker: m[1], text: m[2]}, true
	}
	if m := orderedItem.FindStringSubmatch(line); m != nil {
		class := m[1]
		if class[0] != '.' {
			class = "N."
		}
		return listItem{class: class, kind: listOrdered, marker: m[1], text: m[2]}, true
	}
	if m := calloutItem.FindStringSubmatch(line); m != nil {
		return listItem{class: "<>", kind: listCallout, marker: m[1], text: m[2]}, true
	}
	if m := descriptionItem.FindStringSubmatch(line); m != nil {
		return listItem{class: m[2], kind: listDescription, term: strings.TrimSpace(m[1]), text: m[3]}, true
	}
	return listItem{}, false
}

// listEntry renders a list item. An ancestor with the same marker class
// is resumed and every deeper context dropped; otherwise a nested list
// starts under the current item.
func (c *converter) listEntry(item listItem) {
	c.closeParagraph()
	c.closeLiteral()
	a := c.takeAttrs()
	title := c.takeTitle()
	c.attach = false

	var ctx *listContext
	for i := len(c.lists) - 1; i >= 0; i-- {
		if c.lists[i].class == item.class {
			ctx = c.lists[i]
			c.lists = c.lists[:i+1]
			break
		}
	}

	anchor := ""
	if ctx != nil {
		ctx.numeral++
		c.pendingBlank = false
		anchor = c.blockAnchor(a, title)
	} else {
		ctx = &listContext{class: item.class, kind: item.kind, numeral: 1, style: a.Style}
		if len(c.lists) == 0 {
			c.indent = c.base
			anchor = c.preamble(a, title)
			ctx.indent = c.base
		} else {
			ctx.indent = c.lists[len(c.lists)-1].child
			c.pendingBlank = false
			anchor = c.blockAnchor(a, title)
		}
		if n, err := strconv.Atoi(strings.TrimSuffix(item.marker, ".")); err == nil && item.kind == listOrdered {
			ctx.numeral = n
		}
		if start := a.Int("start", 0); start != 0 {
			ctx.numeral = start
		}
		c.lists = append(c.lists, ctx)
	}
	c.indent = ctx.indent

	var head, label string
	switch ctx.kind {
	case listUnordered:
		head = "* "
	case listOrdered:
		head = strconv.Itoa(ctx.numeral) + ". "
	case listDescription:
		term := c.inline.Apply(item.term)
		if ctx.style == "qanda" {
			head, label = strconv.Itoa(ctx.numeral)+". ", "_"+term+"_"
		} else {
			head, label = "* ", "**"+term+"**"
		}
	case listCallout:
		n := inline.NextCallout(item.marker, &ctx.counter)
		if ctx.numeral > 1 {
			c.appendLast(c.lineBreak())
			c.pendingBlank = false
		}
		head = inline.Glyph(n) + " "
	}

	ctx.child = ctx.indent + strings.Repeat(" ", len(head))
	if w, err := strconv.Atoi(c.attrs.Value("markdown-list-indent")); err == nil && w >= 0 {
		ctx.child = ctx.indent + strings.Repeat(" ", w)
	}
	if ctx.kind == listCallout {
		ctx.child = ctx.indent
	}

	c.para = &paragraph{}
	if ctx.kind == listDescription {
		c.emit(anchor + head + label)
		c.indent = ctx.child
		c.para.breakNext = true
		if strings.TrimSpace(item.text) != "" {
			c.continueParagraph(item.text)
		}
		return
	}
	c.emit(anchor + head + c.paragraphText(item.text))
	c.indent = ctx.child
}

// settleLists ends the open lists before a block unless the block was
// attached to the current item with a list continuation.
func (c *converter) settleLists() {
	if c.attach {
		c.attach = false
		return
	}
	if len(c.lists) > 0 {
		c.lists = nil
		c.indent = c.base
	}
}

// listContinuation handles a lone "+" inside a list: the next block joins
// the current item.
func (c *converter) listContinuation() {
	c.closeParagraph()
	c.closeLiteral()
	c.attach = true
	c.indent = c.lists[len(c.lists)-1].child
	c.blank()
}
