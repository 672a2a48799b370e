package adoc2md

import (
	"maps"

	"go.uber.org/zap"

	"github.com/alnah/go-adoc2md/internal/engine"
)

// IncludeResolver returns the text of an include:: target. The target has
// already been attribute-expanded. Returning an error degrades the
// directive to a link to the target.
type IncludeResolver func(target string) (string, error)

// Options configure a single call to Convert.
type Options struct {
	// Attributes override the built-in attributes and cannot be changed by
	// the document. A name ending in "!" unsets the attribute.
	Attributes map[string]string
	// Include resolves include:: directives. Nil turns them into links.
	Include IncludeResolver
	// Logger receives debug diagnostics. Nil discards them.
	Logger *zap.Logger
}

func (o Options) engine() engine.Options {
	return engine.Options{
		Attributes: o.Attributes,
		Include:    engine.IncludeResolver(o.Include),
		Logger:     o.Logger,
	}
}

// Input contains conversion parameters.
type Input struct {
	Source     string            // AsciiDoc text
	Attributes map[string]string // Merged over the converter's attributes (optional)
	Include    IncludeResolver   // Overrides the converter's resolver (optional)
	Name       string            // Preview title when the document has none (optional)
	HTML       bool              // Also render an HTML preview of the Markdown
}

// ConvertResult holds the output of a conversion.
type ConvertResult struct {
	Markdown string
	HTML     []byte // nil unless Input.HTML was set
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	attributes map[string]string
	include    IncludeResolver
	logger     *zap.Logger
}

// WithAttributes sets attributes applied to every conversion.
// The map is copied.
func WithAttributes(attributes map[string]string) Option {
	return func(c *Converter) {
		c.cfg.attributes = maps.Clone(attributes)
	}
}

// WithIncludeResolver sets the resolver used for include:: directives.
func WithIncludeResolver(r IncludeResolver) Option {
	return func(c *Converter) {
		c.cfg.include = r
	}
}

// WithLogger sets the logger for conversion diagnostics.
// A nil logger discards them.
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) {
		if l == nil {
			l = zap.NewNop()
		}
		c.cfg.logger = l
	}
}

// mergeAttributes returns base overlaid with override. Unsetting a name in
// override ("name!") drops a plain setting of the same name from base.
func mergeAttributes(base, override map[string]string) map[string]string {
	if len(override) == 0 {
		return base
	}
	merged := make(map[string]string, len(base)+len(override))
	maps.Copy(merged, base)
	for name, value := range override {
		if len(name) > 1 && name[len(name)-1] == '!' {
			delete(merged, name[:len(name)-1])
		} else {
			delete(merged, name+"!")
		}
		merged[name] = value
	}
	return merged
}
