package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// byteOrderMark is the UTF-8 encoded U+FEFF some editors write first.
const byteOrderMark = "\uFEFF"

var crlfOrCR = regexp.MustCompile(`\r\n?`)

// SourcePreprocessor defines the contract for source preprocessing.
type SourcePreprocessor interface {
	PreprocessSource(ctx context.Context, content string) string
}

// AsciiDocPreprocessor prepares AsciiDoc source for the engine.
type AsciiDocPreprocessor struct{}

// PreprocessSource normalizes line endings and drops a leading byte order
// mark. Tabs are left alone.
func (p *AsciiDocPreprocessor) PreprocessSource(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}

	content = strings.TrimPrefix(content, byteOrderMark)
	return normalizeLineEndings(content)
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}
