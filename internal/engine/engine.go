// Package engine converts AsciiDoc text to GitHub-flavoured Markdown in a
// single forward pass over the input lines.
//
// Each line is classified by an ordered rule set (see dispatch.go). The
// rules consult per-call state: the attribute store, the conditional skip
// stack, the container stack, the list stack and the reference registry.
// Cross-references are written as placeholders during the pass and resolved
// once the whole document has been seen.
package engine

import (
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/alnah/go-adoc2md/internal/attrs"
	"github.com/alnah/go-adoc2md/internal/blockattr"
	"github.com/alnah/go-adoc2md/internal/inline"
	"github.com/alnah/go-adoc2md/internal/xref"
)

// maxIncludeDepth bounds nested include:: resolution.
const maxIncludeDepth = 64

// IncludeResolver returns the text of an include:: target. The target has
// already been attribute-expanded. An error degrades the directive to a link.
type IncludeResolver func(target string) (string, error)

// Options configure one conversion.
type Options struct {
	// Attributes are caller-supplied attributes. They override built-ins and
	// cannot be changed by the document. A name ending in "!" is unset.
	Attributes map[string]string
	// Include resolves include:: directives. Nil degrades every include to a link.
	Include IncludeResolver
	// Logger receives debug diagnostics. Nil discards them.
	Logger *zap.Logger
}

// converter holds all state of one conversion call.
type converter struct {
	attrs    *attrs.Store
	refs     *xref.Registry
	inline   *inline.Pipeline
	resolver IncludeResolver
	logger   *zap.Logger

	out          []string
	pendingBlank bool
	started      bool

	skip       skipStack
	containers containerStack
	lists      []*listContext
	attach     bool

	// indent prefixes every emitted line; base is the indent of the
	// innermost container, which lists and quotes build on.
	indent string
	base   string

	para    *paragraph
	literal *literalBlock

	pendingAttrs *blockattr.List
	title        string

	headerInfo  bool
	headerLines int
	titleSeen   bool

	slugs map[string]int
}

// Convert converts AsciiDoc text to Markdown. It never fails: malformed or
// unexpected input degrades to a best-effort rendering. The result has no
// trailing whitespace.
func Convert(text string, opts Options) string {
	c := newConverter(opts)
	c.run(splitLines(text), 0)
	return c.finish()
}

func newConverter(opts Options) *converter {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := attrs.New(opts.Attributes)
	refs := xref.NewRegistry()
	return &converter{
		attrs:    store,
		refs:     refs,
		inline:   inline.New(store, refs, logger),
		resolver: opts.Include,
		logger:   logger,
		slugs:    make(map[string]int),
	}
}

func (c *converter) run(lines []string, depth int) {
	for _, line := range lines {
		c.dispatch(line, depth)
	}
}

// finish closes everything still open and applies the final rewrite:
// footnote definitions are appended and cross-references resolved.
func (c *converter) finish() string {
	c.closeParagraph()
	c.closeLiteral()
	for c.containers.top() != nil {
		c.logger.Debug("closing unterminated block", zap.String("delimiter", c.containers.top().delimiter))
		c.closeContainer()
	}

	text := strings.Join(c.out, "\n")
	if notes := c.inline.Footnotes(); len(notes) > 0 {
		text = strings.TrimRightFunc(text, unicode.IsSpace) + "\n\n" + strings.Join(notes, "\n")
	}
	text, dangling := c.refs.Resolve(text)
	for _, id := range dangling {
		c.logger.Debug("unresolved cross reference", zap.String("id", id))
	}
	return strings.TrimRightFunc(text, unicode.IsSpace)
}

// emit writes one output line under the current indent, preceded by a
// pending blank line if one is scheduled.
func (c *converter) emit(text string) {
	c.flushBlank()
	c.started = true
	if text == "" {
		c.out = append(c.out, strings.TrimRight(c.indent, " "))
		return
	}
	c.out = append(c.out, c.indent+text)
}

// blank schedules a single blank line. Consecutive requests collapse and
// nothing is scheduled before the first output line.
func (c *converter) blank() {
	if len(c.out) > 0 {
		c.pendingBlank = true
	}
}

func (c *converter) flushBlank() {
	if !c.pendingBlank {
		return
	}
	c.pendingBlank = false
	c.out = append(c.out, strings.TrimRight(c.indent, " "))
}

// appendLast extends the previous output line.
func (c *converter) appendLast(s string) {
	if len(c.out) > 0 {
		c.out[len(c.out)-1] += s
	}
}

func (c *converter) lineBreak() string {
	if v, ok := c.attrs.Get("markdown-line-break"); ok {
		return v
	}
	return `\`
}

func (c *converter) takeAttrs() *blockattr.List {
	a := c.pendingAttrs
	c.pendingAttrs = nil
	if a == nil {
		a = blockattr.Parse("")
	}
	return a
}

func (c *converter) takeTitle() string {
	t := c.title
	c.title = ""
	return t
}

// blockAnchor registers the id of a block and returns the inline anchor
// standing in for it, or "" when the block has no id.
func (c *converter) blockAnchor(a *blockattr.List, title string) string {
	if a == nil || a.ID == "" {
		return ""
	}
	if !c.refs.Register(xref.Entry{ID: a.ID, Anchor: a.ID, Reftext: a.Reftext, Title: title}) {
		c.logger.Debug("duplicate id", zap.String("id", a.ID))
	}
	return `<a name="` + a.ID + `"></a>`
}

// preamble emits the block title (with the block anchor) on its own line
// followed by a blank line. Without a title the anchor is returned for the
// caller to place.
func (c *converter) preamble(a *blockattr.List, title string) string {
	anchor := c.blockAnchor(a, title)
	if title == "" {
		return anchor
	}
	c.emit(anchor + "**" + title + "**")
	c.blank()
	return ""
}

// blockPreamble is preamble for blocks that cannot carry an inline anchor.
func (c *converter) blockPreamble(a *blockattr.List, title string) {
	if anchor := c.preamble(a, title); anchor != "" {
		c.emit(anchor)
		c.blank()
	}
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func indentWidth(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}
