// Package adoc2md converts AsciiDoc documents to GitHub-flavoured Markdown.
//
// # Quick Start
//
// For a one-off conversion use the pure function:
//
//	md := adoc2md.Convert(source, adoc2md.Options{})
//
// For repeated conversions sharing attributes, an include resolver or a
// logger, create a Converter:
//
//	conv := adoc2md.NewConverter(
//	    adoc2md.WithAttributes(map[string]string{"product": "Acme"}),
//	    adoc2md.WithLogger(logger),
//	)
//
//	result, err := conv.Convert(ctx, adoc2md.Input{
//	    Source: "= Hello\n\nWorld",
//	    HTML:   true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("hello.md", []byte(result.Markdown), 0644)
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Source preprocessing (line endings, byte order mark)
//  2. Single-pass line conversion: headers, sections, lists, delimited
//     blocks, tables, conditionals and includes
//  3. Inline substitutions (quotes, attribute references, macros)
//  4. Cross-reference resolution against the collected anchors
//  5. Optional HTML preview of the Markdown via Goldmark (GFM, footnotes,
//     syntax highlighting)
//
// # Attributes
//
// Attributes passed by the caller take precedence over both the built-in
// defaults and the document's own attribute entries. A name ending in "!"
// unsets the attribute:
//
//	adoc2md.Convert(source, adoc2md.Options{
//	    Attributes: map[string]string{"env-github": "", "sectids!": ""},
//	})
//
// # Includes
//
// The library performs no file I/O. include:: directives are handed to an
// IncludeResolver; without one they become links to their target.
package adoc2md
