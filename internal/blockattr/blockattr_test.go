package blockattr

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		style      string
		id         string
		reftext    string
		positional []string
		named      map[string]string
		roles      []string
		options    []string
	}{
		{
			name:       "source with language",
			input:      "source,go",
			style:      "source",
			positional: []string{"source", "go"},
			named:      map[string]string{},
		},
		{
			name:       "empty style with language",
			input:      ",ruby",
			positional: []string{"", "ruby"},
			named:      map[string]string{},
		},
		{
			name:       "named values quoted and bare",
			input:      `source,java,indent=0,subs="attributes+"`,
			style:      "source",
			positional: []string{"source", "java"},
			named:      map[string]string{"indent": "0", "subs": "attributes+"},
		},
		{
			name:       "quoted positional keeps commas",
			input:      `quote, Albert Einstein, "Ideas, 1954"`,
			style:      "quote",
			positional: []string{"quote", "Albert Einstein", "Ideas, 1954"},
			named:      map[string]string{},
		},
		{
			name:       "shorthand id role option",
			input:      "sidebar#intro.lead.wide%collapsible%open",
			style:      "sidebar",
			id:         "intro",
			positional: []string{"sidebar"},
			named:      map[string]string{},
			roles:      []string{"lead", "wide"},
			options:    []string{"collapsible", "open"},
		},
		{
			name:       "shorthand without style",
			input:      "#setup",
			id:         "setup",
			positional: []string{""},
			named:      map[string]string{},
		},
		{
			name:    "anchor shorthand",
			input:   "[install,Installation Guide]",
			id:      "install",
			reftext: "Installation Guide",
			named:   map[string]string{},
		},
		{
			name:    "named options",
			input:   `cols="1,2",options="header,footer"`,
			named:   map[string]string{"cols": "1,2", "options": "header,footer"},
			options: []string{"header", "footer"},
		},
		{
			name:  "empty",
			input: "",
			named: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Parse(tt.input)
			if got.Style != tt.style {
				t.Errorf("Style = %q, want %q", got.Style, tt.style)
			}
			if got.ID != tt.id {
				t.Errorf("ID = %q, want %q", got.ID, tt.id)
			}
			if got.Reftext != tt.reftext {
				t.Errorf("Reftext = %q, want %q", got.Reftext, tt.reftext)
			}
			if !reflect.DeepEqual(got.Positional, tt.positional) {
				t.Errorf("Positional = %q, want %q", got.Positional, tt.positional)
			}
			if !reflect.DeepEqual(got.Named, tt.named) {
				t.Errorf("Named = %v, want %v", got.Named, tt.named)
			}
			if !reflect.DeepEqual(got.Roles, tt.roles) {
				t.Errorf("Roles = %q, want %q", got.Roles, tt.roles)
			}
			if !reflect.DeepEqual(got.Options, tt.options) {
				t.Errorf("Options = %q, want %q", got.Options, tt.options)
			}
		})
	}
}

func TestListAccessors(t *testing.T) {
	t.Parallel()

	l := Parse("source,go,indent=2,start=x")

	if got := l.Pos(2); got != "go" {
		t.Errorf("Pos(2) = %q, want %q", got, "go")
	}
	if got := l.Pos(5); got != "" {
		t.Errorf("Pos(5) = %q, want empty", got)
	}
	if got := l.Int("indent", -1); got != 2 {
		t.Errorf("Int(indent) = %d, want 2", got)
	}
	if got := l.Int("start", 1); got != 1 {
		t.Errorf("Int(start) = %d, want default 1 for malformed value", got)
	}
	if !l.Has("INDENT") {
		t.Error("Has(INDENT) = false, want true")
	}

	var nilList *List
	if nilList.Pos(1) != "" || nilList.Get("x") != "" || nilList.HasOption("x") {
		t.Error("nil List accessors should return zero values")
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	base := Parse("source,go")
	merged := base.Merge(Parse("#example%linenums"))

	if merged.Style != "source" {
		t.Errorf("Style = %q, want %q (id-only list must not clear the style)", merged.Style, "source")
	}
	if merged.Pos(2) != "go" {
		t.Errorf("Pos(2) = %q, want %q", merged.Pos(2), "go")
	}
	if merged.ID != "example" {
		t.Errorf("ID = %q, want %q", merged.ID, "example")
	}
	if !merged.HasOption("linenums") {
		t.Error("HasOption(linenums) = false after merge")
	}

	var none *List
	if got := none.Merge(base); got != base {
		t.Error("nil.Merge(x) should return x")
	}
}
