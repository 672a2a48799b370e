// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"strings"

	"github.com/alnah/go-adoc2md/internal/fileutil"
)

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config and the user config directory that was searched.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-adoc2md") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForUnsupportedInput returns hints for inputs without an AsciiDoc extension.
func ForUnsupportedInput() string {
	return format("supported extensions: " + strings.Join(fileutil.SourceExtensions, ", ") + "; use - to read stdin")
}

// ForIncludeOutsideRoot returns hints for include targets above the input root.
func ForIncludeOutsideRoot() string {
	return format("convert from a directory that contains the included file")
}

// ForDateFormat returns hints for invalid date.format values.
func ForDateFormat(presets []string) string {
	return format("use tokens YYYY MM DD or a preset: " + strings.Join(presets, ", "))
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
