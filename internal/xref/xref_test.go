package xref

import (
	"reflect"
	"testing"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register(Entry{ID: "_setup", Anchor: "setup", Title: "Setup"})
	r.Register(Entry{ID: "install", Anchor: "install", Reftext: "Installation", Title: "Install it"})

	tests := []struct {
		name     string
		input    string
		expected string
		dangling []string
	}{
		{
			name:     "title used when no text",
			input:    "See " + Placeholder("_setup", "") + ".",
			expected: "See [Setup](#setup).",
		},
		{
			name:     "reftext preferred over title",
			input:    Placeholder("install", ""),
			expected: "[Installation](#install)",
		},
		{
			name:     "explicit text wins",
			input:    Placeholder("install", "here"),
			expected: "[here](#install)",
		},
		{
			name:     "dangling without text",
			input:    "x " + Placeholder("nowhere", "") + " y",
			expected: "x [nowhere] y",
			dangling: []string{"nowhere"},
		},
		{
			name:     "dangling with text",
			input:    Placeholder("nowhere", "Elsewhere"),
			expected: "[Elsewhere](#nowhere)",
			dangling: []string{"nowhere"},
		},
		{
			name:     "several on one line",
			input:    Placeholder("_setup", "") + " and " + Placeholder("install", "it"),
			expected: "[Setup](#setup) and [it](#install)",
		},
		{
			name:     "natural reference by title",
			input:    Placeholder("Install it", ""),
			expected: "[Installation](#install)",
		},
		{
			name:     "no placeholders",
			input:    "plain text",
			expected: "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, dangling := r.Resolve(tt.input)
			if got != tt.expected {
				t.Errorf("Resolve() = %q, want %q", got, tt.expected)
			}
			if !reflect.DeepEqual(dangling, tt.dangling) {
				t.Errorf("Resolve() dangling = %q, want %q", dangling, tt.dangling)
			}
		})
	}
}

func TestRegisterFirstWins(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if !r.Register(Entry{ID: "a", Title: "First"}) {
		t.Fatal("Register(a) = false, want true")
	}
	if r.Register(Entry{ID: "a", Title: "Second"}) {
		t.Error("Register(a) duplicate = true, want false")
	}
	if r.Register(Entry{}) {
		t.Error("Register(empty id) = true, want false")
	}

	e, ok := r.Lookup("a")
	if !ok || e.Title != "First" {
		t.Errorf("Lookup(a) = %+v, %v, want title First", e, ok)
	}
	if e.Anchor != "a" {
		t.Errorf("Anchor = %q, want id fallback %q", e.Anchor, "a")
	}
	if r.Len() != 1 || !reflect.DeepEqual(r.IDs(), []string{"a"}) {
		t.Errorf("IDs() = %q, want [a]", r.IDs())
	}
}

func TestSectionID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title, prefix, sep, expected string
	}{
		{"Setup", "_", "_", "_setup"},
		{"Getting  Started Now", "_", "_", "_getting_started_now"},
		{"Getting Started", "", "-", "getting-started"},
		{"   ", "_", "_", ""},
	}

	for _, tt := range tests {
		if got := SectionID(tt.title, tt.prefix, tt.sep); got != tt.expected {
			t.Errorf("SectionID(%q, %q, %q) = %q, want %q", tt.title, tt.prefix, tt.sep, got, tt.expected)
		}
	}
}

func TestAnchor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title, expected string
	}{
		{"Setup", "setup"},
		{"Hello World", "hello-world"},
		{"What's new?", "what-s-new"},
	}

	for _, tt := range tests {
		if got := Anchor(tt.title); got != tt.expected {
			t.Errorf("Anchor(%q) = %q, want %q", tt.title, got, tt.expected)
		}
	}
}
