// Package attrs holds the document attribute store used during a single conversion.
//
// Attributes are name/value pairs. Built-in defaults are seeded first, then
// caller overrides are applied and locked: in-document entries can neither
// change nor delete a locked name.
package attrs

import "strings"

// Admonition labels recognized in shorthand paragraphs and block styles.
var AdmonitionLabels = []string{"NOTE", "TIP", "IMPORTANT", "WARNING", "CAUTION"}

// defaults are the built-in attributes every conversion starts with.
var defaults = map[string]string{
	"empty":      "",
	"blank":      "",
	"sp":         " ",
	"nbsp":       "&#160;",
	"zwsp":       "&#8203;",
	"vbar":       "|",
	"amp":        "&",
	"lt":         "<",
	"gt":         ">",
	"plus":       "+",
	"startsb":    "[",
	"endsb":      "]",
	"caret":      "^",
	"tilde":      "~",
	"backslash":  `\`,
	"backtick":   "`",
	"two-colons": "::",
	"deg":        "&#176;",

	"lsquo": "‘",
	"rsquo": "’",
	"ldquo": "“",
	"rdquo": "”",

	"note-icon":      "\U0001F4CC",
	"tip-icon":       "\U0001F4A1",
	"important-icon": "❗",
	"warning-icon":   "⚠️",
	"caution-icon":   "\U0001F525",

	"idprefix":    "_",
	"idseparator": "_",
	"sectids":     "",

	"markdown-line-break":          `\`,
	"markdown-collapsible-variant": "disclosure",
	"attribute-missing":            "skip",
}

// Store maps attribute names to values for one conversion call.
// The zero value is not usable; create stores with New.
type Store struct {
	values map[string]string
	locked map[string]bool
}

// New returns a store seeded with the built-in defaults and the given overrides.
// An override key ending in "!" unsets the name and locks it unset.
func New(overrides map[string]string) *Store {
	s := &Store{
		values: make(map[string]string, len(defaults)+len(overrides)),
		locked: make(map[string]bool, len(overrides)),
	}
	for k, v := range defaults {
		s.values[k] = v
	}
	for k, v := range overrides {
		name := strings.ToLower(k)
		if strings.HasSuffix(name, "!") {
			name = strings.TrimSuffix(name, "!")
			delete(s.values, name)
		} else {
			s.values[name] = v
		}
		s.locked[name] = true
	}
	return s
}

// Get returns the value of name and whether it is defined.
func (s *Store) Get(name string) (string, bool) {
	v, ok := s.values[strings.ToLower(name)]
	return v, ok
}

// Value returns the value of name, or "" when undefined.
func (s *Store) Value(name string) string {
	v, _ := s.Get(name)
	return v
}

// IsSet reports whether name is currently defined.
func (s *Store) IsSet(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Locked reports whether name was supplied by the caller.
func (s *Store) Locked(name string) bool {
	return s.locked[strings.ToLower(name)]
}

// Set stores value under name. It returns false if name is locked.
func (s *Store) Set(name, value string) bool {
	name = strings.ToLower(name)
	if s.locked[name] {
		return false
	}
	s.values[name] = value
	return true
}

// SetDefault stores value only when name is not yet defined and not locked.
func (s *Store) SetDefault(name, value string) bool {
	if s.IsSet(name) {
		return false
	}
	return s.Set(name, value)
}

// Delete unsets name. It returns false if name is locked.
func (s *Store) Delete(name string) bool {
	name = strings.ToLower(name)
	if s.locked[name] {
		return false
	}
	delete(s.values, name)
	return true
}

// Icon returns the icon configured for an admonition label such as "NOTE".
func (s *Store) Icon(label string) string {
	return s.Value(strings.ToLower(label) + "-icon")
}

// IsAdmonition reports whether label is one of the recognized admonition labels.
func IsAdmonition(label string) bool {
	for _, l := range AdmonitionLabels {
		if l == label {
			return true
		}
	}
	return false
}
