package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/shurcooL/sanitized_anchor_name"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// HighlightStyle is the chroma style the preview highlights code with.
const HighlightStyle = "github"

// htmlTemplate wraps Goldmark's fragment output in a complete HTML5 document.
// The title is filled in later by InjectTitle.
const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Document</title>
</head>
<body>
%s
</body>
</html>`

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// GoldmarkConverter renders converted Markdown the way a GitHub-style
// renderer would, so the preview shows what readers of the .md will see.
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a GoldmarkConverter with GFM, footnotes and
// syntax highlighting.
func NewGoldmarkConverter() *GoldmarkConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithStyle(HighlightStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			// Converted documents carry inline HTML (anchors, <details>, <kbd>).
			html.WithUnsafe(),
		),
	)
	return &GoldmarkConverter{md: md}
}

// ToHTML converts Markdown content to a standalone HTML5 document.
// Heading ids follow the GitHub slug rules the engine uses for
// cross-reference anchors.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		pc := parser.NewContext(parser.WithIDs(newAnchorIDs()))
		if err := c.md.Convert([]byte(content), &buf, parser.WithContext(pc)); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: fmt.Sprintf(htmlTemplate, buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// anchorIDs generates heading ids as GitHub does: a sanitized slug of the
// heading text, numbered from -1 on repeats.
type anchorIDs struct {
	seen map[string]int
}

func newAnchorIDs() *anchorIDs {
	return &anchorIDs{seen: make(map[string]int)}
}

// Generate implements parser.IDs.
func (a *anchorIDs) Generate(value []byte, _ ast.NodeKind) []byte {
	base := sanitized_anchor_name.Create(string(value))
	if base == "" {
		base = "heading"
	}
	n := a.seen[base]
	a.seen[base]++
	if n > 0 {
		return []byte(base + "-" + strconv.Itoa(n))
	}
	return []byte(base)
}

// Put implements parser.IDs.
func (a *anchorIDs) Put(value []byte) {
	a.seen[string(value)]++
}
