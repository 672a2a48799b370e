package adoc2md

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/alnah/go-adoc2md/internal/engine"
	"github.com/alnah/go-adoc2md/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.SourcePreprocessor = (*pipeline.AsciiDocPreprocessor)(nil)
	_ pipeline.HTMLConverter      = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.CSSInjector        = (*pipeline.CSSInjection)(nil)
)

// Convert converts AsciiDoc text to GitHub-flavoured Markdown. It never
// fails: unexpected input degrades to a best-effort rendering.
func Convert(text string, opts Options) string {
	pre := &pipeline.AsciiDocPreprocessor{}
	return engine.Convert(pre.PreprocessSource(context.Background(), text), opts.engine())
}

// Converter runs conversions with shared configuration.
// It holds no per-call state and is safe for concurrent use.
type Converter struct {
	cfg           converterConfig
	preprocessor  pipeline.SourcePreprocessor
	htmlConverter pipeline.HTMLConverter
	cssInjector   pipeline.CSSInjector
	previewCSS    string
}

// NewConverter creates a Converter with default configuration.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		cfg:           converterConfig{logger: zap.NewNop()},
		preprocessor:  &pipeline.AsciiDocPreprocessor{},
		htmlConverter: pipeline.NewGoldmarkConverter(),
		cssInjector:   &pipeline.CSSInjection{},
	}

	for _, opt := range opts {
		opt(c)
	}

	css, err := pipeline.PreviewCSS()
	if err != nil {
		c.cfg.logger.Warn("preview stylesheet unavailable", zap.Error(err))
	}
	c.previewCSS = css

	return c
}

// Convert converts input.Source and, if input.HTML is set, renders an HTML
// preview of the result. Errors are limited to context cancellation,
// ErrHTMLConversion and ErrInternal for recovered panics.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source := c.preprocessor.PreprocessSource(ctx, input.Source)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	include := c.cfg.include
	if input.Include != nil {
		include = input.Include
	}
	md := engine.Convert(source, engine.Options{
		Attributes: mergeAttributes(c.cfg.attributes, input.Attributes),
		Include:    engine.IncludeResolver(include),
		Logger:     c.cfg.logger,
	})

	res := &ConvertResult{Markdown: md}
	if !input.HTML {
		return res, nil
	}

	htmlContent, err := c.htmlConverter.ToHTML(ctx, md)
	if err != nil {
		return nil, fmt.Errorf("converting to HTML: %w", err)
	}

	htmlContent = c.cssInjector.InjectCSS(ctx, htmlContent, c.previewCSS)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	htmlContent = pipeline.InjectTitle(htmlContent, input.Name)
	c.cfg.logger.Debug("rendered preview",
		zap.String("name", input.Name),
		zap.Strings("headings", pipeline.HeadingIDs(htmlContent)))

	res.HTML = []byte(htmlContent)
	return res, nil
}
