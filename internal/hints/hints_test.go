package hints

import (
	"strings"
	"testing"
)

func TestForConfigNotFound(t *testing.T) {
	tests := []struct {
		name     string
		paths    []string
		contains string
	}{
		{
			name:     "empty paths",
			paths:    []string{},
			contains: "--config",
		},
		{
			name:     "with paths",
			paths:    []string{"./foo.yaml", "~/.config/go-adoc2md/foo.yaml"},
			contains: "go-adoc2md/foo.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := ForConfigNotFound(tt.paths)

			if !strings.Contains(hint, "hint:") {
				t.Error("expected hint prefix")
			}
			if !strings.Contains(hint, tt.contains) {
				t.Errorf("expected hint to contain %q, got %q", tt.contains, hint)
			}
		})
	}
}

func TestForUnsupportedInput(t *testing.T) {
	hint := ForUnsupportedInput()

	for _, want := range []string{".adoc", ".asciidoc", ".asc", "stdin"} {
		if !strings.Contains(hint, want) {
			t.Errorf("expected hint to contain %q, got %q", want, hint)
		}
	}
}

func TestForDateFormat(t *testing.T) {
	hint := ForDateFormat([]string{"iso", "long"})

	if !strings.Contains(hint, "iso, long") {
		t.Errorf("expected presets in hint, got %q", hint)
	}
}

func TestFormat_Consistency(t *testing.T) {
	hints := []string{
		ForConfigNotFound(nil),
		ForOutputDirectory(),
		ForUnsupportedInput(),
		ForIncludeOutsideRoot(),
		ForDateFormat(nil),
	}

	for _, h := range hints {
		if !strings.HasPrefix(h, "\n  hint: ") {
			t.Errorf("hint format inconsistent: %q", h)
		}
	}
}
