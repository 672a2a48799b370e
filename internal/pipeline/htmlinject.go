package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/alnah/go-adoc2md/internal/assets"
)

// CSSInjector defines the contract for CSS injection into HTML.
type CSSInjector interface {
	InjectCSS(ctx context.Context, htmlContent, cssContent string) string
}

// CSSInjection injects CSS as a <style> block into HTML content.
type CSSInjection struct{}

// InjectCSS inserts a <style> block into HTML content.
// Tries </head> first, then <body>, then prepends to the HTML.
func (s *CSSInjection) InjectCSS(ctx context.Context, htmlContent, cssContent string) string {
	if cssContent == "" {
		return htmlContent
	}
	if ctx.Err() != nil {
		return htmlContent
	}

	styleBlock := "<style>" + sanitizeCSS(cssContent) + "</style>"
	lowerHTML := strings.ToLower(htmlContent)

	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + styleBlock + htmlContent[idx:]
	}

	if idx := strings.Index(lowerHTML, "<body"); idx != -1 {
		if closeIdx := strings.Index(htmlContent[idx:], ">"); closeIdx != -1 {
			insertPos := idx + closeIdx + 1
			return htmlContent[:insertPos] + styleBlock + htmlContent[insertPos:]
		}
	}

	return styleBlock + htmlContent
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// PreviewCSS returns the preview stylesheet: the embedded base rules
// followed by the chroma classes for HighlightStyle.
func PreviewCSS() (string, error) {
	base, err := assets.LoadStyle(assets.PreviewStyle)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	buf.WriteString(base)
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(HighlightStyle)); err != nil {
		return "", fmt.Errorf("writing highlight CSS: %w", err)
	}
	return buf.String(), nil
}

// headingInfo represents an extracted heading from HTML.
type headingInfo struct {
	Level int
	ID    string
	Text  string
}

// headingPattern matches h1-h6 tags with id attribute.
// Captures: 1=level, 2=id, 3=inner HTML (may contain inline tags)
var headingPattern = regexp.MustCompile(`(?is)<h([1-6])[^>]*\bid="([^"]*)"[^>]*>(.*?)</h[1-6]>`)

var (
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
	titlePattern   = regexp.MustCompile(`(?i)<title>[^<]*</title>`)
)

// stripHTMLTags removes HTML tags from a string, decodes HTML entities,
// and trims whitespace.
func stripHTMLTags(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(s)
}

// extractHeadings returns the headings of htmlContent that carry an id,
// in document order.
func extractHeadings(htmlContent string) []headingInfo {
	var headings []headingInfo
	for _, m := range headingPattern.FindAllStringSubmatch(htmlContent, -1) {
		level, _ := strconv.Atoi(m[1])
		headings = append(headings, headingInfo{
			Level: level,
			ID:    m[2],
			Text:  stripHTMLTags(m[3]),
		})
	}
	return headings
}

// HeadingIDs returns the ids of the headings in htmlContent.
func HeadingIDs(htmlContent string) []string {
	var ids []string
	for _, h := range extractHeadings(htmlContent) {
		ids = append(ids, h.ID)
	}
	return ids
}

// InjectTitle sets the <title> of the preview document to the text of its
// first level-one heading, else to fallback. Without either the document
// is returned unchanged.
func InjectTitle(htmlContent, fallback string) string {
	title := fallback
	for _, h := range extractHeadings(htmlContent) {
		if h.Level == 1 {
			title = h.Text
			break
		}
	}
	if title == "" {
		return htmlContent
	}
	loc := titlePattern.FindStringIndex(htmlContent)
	if loc == nil {
		return htmlContent
	}
	return htmlContent[:loc[0]] + "<title>" + html.EscapeString(title) + "</title>" + htmlContent[loc[1]:]
}
