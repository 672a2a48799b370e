// Package xref records identifiable headings and blocks and resolves
// cross-reference placeholders once the whole document has been converted.
package xref

import (
	"regexp"
	"strings"

	"github.com/shurcooL/sanitized_anchor_name"
)

// Placeholder delimiters use Unicode Private Use Area characters so they
// cannot collide with document text and survive every inline substitution.
const (
	refStart = "\uE010"
	refText  = "\uE011"
	refEnd   = "\uE012"
)

var placeholderPattern = regexp.MustCompile(refStart + `([^` + refText + refEnd + `]*)` + refText + `([^` + refEnd + `]*)` + refEnd)

// Entry is one registered reference target.
type Entry struct {
	ID      string
	Anchor  string
	Reftext string
	Title   string
}

// Registry maps ids to reference entries for a single conversion.
type Registry struct {
	entries map[string]Entry
	titles  map[string]string
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry), titles: make(map[string]string)}
}

// Register adds e. The first registration of an id wins; later duplicates
// are rejected and Register returns false.
func (r *Registry) Register(e Entry) bool {
	if e.ID == "" {
		return false
	}
	if _, exists := r.entries[e.ID]; exists {
		return false
	}
	if e.Anchor == "" {
		e.Anchor = e.ID
	}
	r.entries[e.ID] = e
	r.order = append(r.order, e.ID)
	if _, exists := r.titles[e.Title]; e.Title != "" && !exists {
		r.titles[e.Title] = e.ID
	}
	return true
}

// Lookup returns the entry registered under id. A natural reference
// written as the target's title is matched against titles as a fallback.
func (r *Registry) Lookup(id string) (Entry, bool) {
	if e, ok := r.entries[id]; ok {
		return e, true
	}
	if byTitle, ok := r.titles[id]; ok {
		return r.entries[byTitle], true
	}
	return Entry{}, false
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	return len(r.order)
}

// IDs returns registered ids in registration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Placeholder returns the token standing in for a reference to id until Resolve runs.
func Placeholder(id, text string) string {
	return refStart + id + refText + text + refEnd
}

// Resolve replaces every placeholder in text with a Markdown link.
// Link text is the explicit text, else the entry reftext, else its title.
// Unknown ids render as [text](#id) when text was given, else as [id].
// The dangling ids are returned in order of appearance.
func (r *Registry) Resolve(text string) (string, []string) {
	var dangling []string
	out := placeholderPattern.ReplaceAllStringFunc(text, func(m string) string {
		parts := placeholderPattern.FindStringSubmatch(m)
		id, label := parts[1], parts[2]
		e, ok := r.Lookup(id)
		if !ok {
			dangling = append(dangling, id)
			if label != "" {
				return "[" + label + "](#" + id + ")"
			}
			return "[" + id + "]"
		}
		if label == "" {
			label = e.Reftext
		}
		if label == "" {
			label = e.Title
		}
		if label == "" {
			label = id
		}
		return "[" + label + "](#" + e.Anchor + ")"
	})
	return out, dangling
}

// Anchor returns the GitHub-style anchor a Markdown renderer derives from a heading title.
func Anchor(title string) string {
	return sanitized_anchor_name.Create(title)
}

// SectionID derives an AsciiDoc-style section id: the title is lower-cased,
// split on whitespace and joined with separator after prefix.
func SectionID(title, prefix, separator string) string {
	words := strings.Fields(strings.ToLower(title))
	if len(words) == 0 {
		return ""
	}
	return prefix + strings.Join(words, separator)
}
