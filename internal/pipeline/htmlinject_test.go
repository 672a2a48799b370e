package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/alnah/go-adoc2md/internal/assets"
)

func TestSanitizeCSS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "no escape needed",
			input:    "body { color: red; }",
			expected: "body { color: red; }",
		},
		{
			name:     "escapes style close",
			input:    "</style>",
			expected: `<\/style>`,
		},
		{
			name:     "escapes script close",
			input:    "</script>",
			expected: `<\/script>`,
		},
		{
			name:     "multiple occurrences",
			input:    "</a></b>",
			expected: `<\/a><\/b>`,
		},
		{
			name:     "nested sequences",
			input:    "</</style>",
			expected: `<\/<\/style>`,
		},
		{
			name:     "case variation STYLE",
			input:    "</STYLE>",
			expected: `<\/STYLE>`,
		},
		{
			name:     "case variation Script",
			input:    "</Script>",
			expected: `<\/Script>`,
		},
		{
			name:     "mixed case sTyLe",
			input:    "</sTyLe>",
			expected: `<\/sTyLe>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := sanitizeCSS(tt.input)
			if got != tt.expected {
				t.Errorf("sanitizeCSS(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestInjectCSS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		html     string
		css      string
		expected string
	}{
		{
			name:     "empty CSS returns HTML unchanged",
			html:     "<html><head></head><body>Hello</body></html>",
			css:      "",
			expected: "<html><head></head><body>Hello</body></html>",
		},
		{
			name:     "injects before </head>",
			html:     "<html><head></head><body>Hello</body></html>",
			css:      "body { color: red; }",
			expected: "<html><head><style>body { color: red; }</style></head><body>Hello</body></html>",
		},
		{
			name:     "injects before </HEAD> mixed case",
			html:     "<html><HEAD></HEAD><body>Hello</body></html>",
			css:      "body { color: red; }",
			expected: "<html><HEAD><style>body { color: red; }</style></HEAD><body>Hello</body></html>",
		},
		{
			name:     "injects after <body> when no </head>",
			html:     "<html><body>Hello</body></html>",
			css:      "body { color: red; }",
			expected: "<html><body><style>body { color: red; }</style>Hello</body></html>",
		},
		{
			name:     "injects after <body> with attributes",
			html:     `<html><body class="main" id="app">Hello</body></html>`,
			css:      "body { color: red; }",
			expected: `<html><body class="main" id="app"><style>body { color: red; }</style>Hello</body></html>`,
		},
		{
			name:     "injects after <BODY> mixed case",
			html:     "<html><BODY>Hello</BODY></html>",
			css:      "body { color: red; }",
			expected: "<html><BODY><style>body { color: red; }</style>Hello</BODY></html>",
		},
		{
			name:     "prepends to bare fragment",
			html:     "<p>Hello</p>",
			css:      "p { color: blue; }",
			expected: "<style>p { color: blue; }</style><p>Hello</p>",
		},
		{
			name:     "sanitizes CSS with closing tags",
			html:     "<html><head></head><body>Hello</body></html>",
			css:      "</style><script>alert('xss')</script>",
			expected: `<html><head><style><\/style><script>alert('xss')<\/script></style></head><body>Hello</body></html>`,
		},
		{
			name:     "unicode in CSS content property",
			html:     "<html><head></head><body>Hello</body></html>",
			css:      `.icon::before { content: ""; }`,
			expected: `<html><head><style>.icon::before { content: ""; }</style></head><body>Hello</body></html>`,
		},
		{
			name:     "unicode in HTML preserved",
			html:     "<html><head></head><body>Bonjour le monde</body></html>",
			css:      "body { color: red; }",
			expected: "<html><head><style>body { color: red; }</style></head><body>Bonjour le monde</body></html>",
		},
	}

	injector := &CSSInjection{}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			got := injector.InjectCSS(ctx, tt.html, tt.css)
			if got != tt.expected {
				t.Errorf("InjectCSS() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestInjectCSS_ContextCancellation(t *testing.T) {
	t.Parallel()

	injector := &CSSInjection{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	html := "<html><head></head><body>Hello</body></html>"
	css := "body { color: red; }"

	// When context is cancelled, returns HTML unchanged
	got := injector.InjectCSS(ctx, html, css)
	if got != html {
		t.Errorf("InjectCSS() with cancelled context should return HTML unchanged, got %q", got)
	}
}


func TestExtractHeadings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want []headingInfo
	}{
		{
			name: "empty HTML returns nil",
			html: "",
			want: nil,
		},
		{
			name: "heading without id is skipped",
			html: "<h1>No ID</h1>",
			want: nil,
		},
		{
			name: "multiple headings",
			html: `<h1 id="a">A</h1><h2 id="b">B</h2><h6 id="c">C</h6>`,
			want: []headingInfo{
				{Level: 1, ID: "a", Text: "A"},
				{Level: 2, ID: "b", Text: "B"},
				{Level: 6, ID: "c", Text: "C"},
			},
		},
		{
			name: "mixed case tag and attribute",
			html: `<H2 ID="mixed">Mixed</H2>`,
			want: []headingInfo{{Level: 2, ID: "mixed", Text: "Mixed"}},
		},
		{
			name: "heading with extra attributes",
			html: `<h1 class="title" id="main" data-foo="bar">Main</h1>`,
			want: []headingInfo{{Level: 1, ID: "main", Text: "Main"}},
		},
		{
			name: "inline tags stripped",
			html: `<h1 id="multi"><code>code</code> and <em>emphasis</em></h1>`,
			want: []headingInfo{{Level: 1, ID: "multi", Text: "code and emphasis"}},
		},
		{
			name: "entities decoded",
			html: `<h1 id="ab">A &amp; B &lt; C</h1>`,
			want: []headingInfo{{Level: 1, ID: "ab", Text: "A & B < C"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := extractHeadings(tt.html)

			if len(got) != len(tt.want) {
				t.Fatalf("extractHeadings() returned %d headings, want %d", len(got), len(tt.want))
			}

			for i, want := range tt.want {
				if got[i] != want {
					t.Errorf("heading[%d] = %+v, want %+v", i, got[i], want)
				}
			}
		})
	}
}

func TestStripHTMLTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"plain text", "plain text"},
		{"<em>emphasized</em>", "emphasized"},
		{"<strong>bold</strong>", "bold"},
		{"<code>code</code>", "code"},
		{"<a href=\"#\">link</a>", "link"},
		{"<em>Hello</em> World", "Hello World"},
		{"Plain <strong>bold</strong> plain", "Plain bold plain"},
		{"<em><strong>nested</strong></em>", "nested"},
		{"  <em>spaced</em>  ", "spaced"},
		{"", ""},
		{"no tags", "no tags"},
		{"<br/>self closing", "self closing"},
		{"<div class=\"foo\">with attrs</div>", "with attrs"},
		// HTML entity decoding - fixes double-encoding bug in TOC
		{"A &amp; B", "A & B"},
		{"&lt;script&gt;", "<script>"},
		{"&quot;quoted&quot;", "\"quoted\""},
		{"&#39;apostrophe&#39;", "'apostrophe'"},
		{"&lt;em&gt;not a tag&lt;/em&gt;", "<em>not a tag</em>"},
		{"mixed &amp; <em>tags</em> &amp; entities", "mixed & tags & entities"},
		{"&#8212; em dash", "— em dash"},
		{"&copy; 2025", "© 2025"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got := stripHTMLTags(tt.input)
			if got != tt.want {
				t.Errorf("stripHTMLTags(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}



func TestInjectTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		html     string
		fallback string
		expected string
	}{
		{
			name:     "first h1 wins",
			html:     `<head><title>Document</title></head><h2 id="a">A</h2><h1 id="b">B &amp; C</h1><h1 id="d">D</h1>`,
			expected: `<head><title>B &amp; C</title></head><h2 id="a">A</h2><h1 id="b">B &amp; C</h1><h1 id="d">D</h1>`,
		},
		{
			name:     "fallback without h1",
			html:     `<head><title>Document</title></head><p>x</p>`,
			fallback: "notes.adoc",
			expected: `<head><title>notes.adoc</title></head><p>x</p>`,
		},
		{
			name:     "unchanged without h1 or fallback",
			html:     `<head><title>Document</title></head><p>x</p>`,
			expected: `<head><title>Document</title></head><p>x</p>`,
		},
		{
			name:     "unchanged without title element",
			html:     `<h1 id="a">A</h1>`,
			expected: `<h1 id="a">A</h1>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := InjectTitle(tt.html, tt.fallback)
			if got != tt.expected {
				t.Errorf("InjectTitle() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestPreviewCSS(t *testing.T) {
	t.Parallel()

	css, err := PreviewCSS()
	if err != nil {
		t.Fatalf("PreviewCSS() unexpected error: %v", err)
	}
	base, err := assets.LoadStyle(assets.PreviewStyle)
	if err != nil {
		t.Fatalf("LoadStyle() unexpected error: %v", err)
	}
	if !strings.HasPrefix(css, base) {
		t.Error("PreviewCSS() should start with the base stylesheet")
	}
	if !strings.Contains(css, ".chroma") {
		t.Error("PreviewCSS() should contain chroma highlight classes")
	}
}
