// Package inline applies the ordered inline substitutions to prose:
// quotes, then attribute references, then macros.
//
// Text that must survive later steps untouched (passthroughs, code spans,
// escaped marks, rendered macros) is swapped for private-use placeholders
// and restored once every step has run.
package inline

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/go-adoc2md/internal/attrs"
	"github.com/alnah/go-adoc2md/internal/xref"
)

// Protection placeholders use Unicode Private Use Area characters.
const (
	protectStart = "\uE020"
	protectEnd   = "\uE021"
)

var protectedPattern = regexp.MustCompile(protectStart + `(\d+)` + protectEnd)

// Registrar records inline anchors so cross-references can reach them.
type Registrar interface {
	Register(e xref.Entry) bool
}

// Pipeline carries the per-conversion state of inline substitution.
// A Pipeline is not safe for concurrent use.
type Pipeline struct {
	attrs  *attrs.Store
	refs   Registrar
	logger *zap.Logger

	protected   []string
	footnotes   []string
	footnoteIDs map[string]int
	dropLine    bool
}

// New returns a pipeline reading attributes from store and registering
// inline anchors with refs. A nil logger discards output.
func New(store *attrs.Store, refs Registrar, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		attrs:       store,
		refs:        refs,
		logger:      logger,
		footnoteIDs: make(map[string]int),
	}
}

// Apply runs the full substitution chain on one line of prose.
func (p *Pipeline) Apply(text string) string {
	p.protected = p.protected[:0]
	p.dropLine = false

	text = p.quotes(text)
	text = p.Attributes(text)
	if p.dropLine {
		return ""
	}
	text = p.macros(text)
	return p.restore(text)
}

// Footnotes returns the Markdown footnote definitions collected so far.
func (p *Pipeline) Footnotes() []string {
	return append([]string(nil), p.footnotes...)
}

// protect stores s and returns the placeholder standing in for it.
func (p *Pipeline) protect(s string) string {
	p.protected = append(p.protected, s)
	return protectStart + strconv.Itoa(len(p.protected)-1) + protectEnd
}

// restore swaps placeholders back. Protected text may itself contain
// placeholders, so restoration repeats until none remain.
func (p *Pipeline) restore(text string) string {
	for range len(p.protected) + 1 {
		if !strings.Contains(text, protectStart) {
			break
		}
		text = protectedPattern.ReplaceAllStringFunc(text, func(m string) string {
			i, err := strconv.Atoi(m[len(protectStart) : len(m)-len(protectEnd)])
			if err != nil || i >= len(p.protected) {
				return m
			}
			return p.protected[i]
		})
	}
	return text
}
