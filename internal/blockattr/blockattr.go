// Package blockattr parses block attribute lists such as [source,go,indent=0].
package blockattr

import (
	"strconv"
	"strings"
)

// List is a parsed block attribute list.
// Positional values are 1-based through Pos; named values are lower-cased keys.
type List struct {
	Positional []string
	Named      map[string]string
	Style      string
	ID         string
	Reftext    string
	Roles      []string
	Options    []string
}

// Parse parses the text between the outer brackets of a block attribute line.
// Inner text of the form [id,reftext] (from a [[id,reftext]] line) yields an
// anchor-only list.
func Parse(text string) *List {
	l := &List{Named: make(map[string]string)}
	text = strings.TrimSpace(text)
	if text == "" {
		return l
	}

	if len(text) >= 2 && text[0] == '[' && text[len(text)-1] == ']' {
		id, reftext, _ := strings.Cut(text[1:len(text)-1], ",")
		l.ID = strings.TrimSpace(id)
		l.Reftext = strings.TrimSpace(reftext)
		return l
	}

	for i, entry := range split(text) {
		if name, value, ok := named(entry); ok {
			l.setNamed(name, value)
			continue
		}
		value := unquote(strings.TrimSpace(entry))
		if i == 0 {
			l.parseShorthand(value)
			value = l.Style
		}
		l.Positional = append(l.Positional, value)
	}
	return l
}

// Pos returns the positional value at 1-based position n, or "".
func (l *List) Pos(n int) string {
	if l == nil || n < 1 || n > len(l.Positional) {
		return ""
	}
	return l.Positional[n-1]
}

// Get returns the named value for name, or "".
func (l *List) Get(name string) string {
	if l == nil {
		return ""
	}
	return l.Named[strings.ToLower(name)]
}

// Has reports whether a named value exists.
func (l *List) Has(name string) bool {
	if l == nil {
		return false
	}
	_, ok := l.Named[strings.ToLower(name)]
	return ok
}

// HasOption reports whether the option flag name is set.
func (l *List) HasOption(name string) bool {
	if l == nil {
		return false
	}
	for _, o := range l.Options {
		if o == name {
			return true
		}
	}
	return false
}

// Int returns the named value as an integer, or def if missing or malformed.
func (l *List) Int(name string, def int) int {
	v := strings.TrimSpace(l.Get(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Merge folds other into l. Values from other win; options and roles accumulate.
// Merging into a nil list returns other.
func (l *List) Merge(other *List) *List {
	if other == nil {
		return l
	}
	if l == nil {
		return other
	}
	if other.Style != "" || len(other.Positional) > 1 {
		l.Positional = other.Positional
		l.Style = other.Style
	}
	for k, v := range other.Named {
		l.Named[k] = v
	}
	if other.ID != "" {
		l.ID = other.ID
	}
	if other.Reftext != "" {
		l.Reftext = other.Reftext
	}
	l.Roles = append(l.Roles, other.Roles...)
	l.Options = append(l.Options, other.Options...)
	return l
}

// parseShorthand splits style#id.role%option shorthand found at position 1.
func (l *List) parseShorthand(value string) {
	end := strings.IndexAny(value, "#.%")
	if end < 0 {
		l.Style = value
		return
	}
	l.Style = value[:end]
	rest := value[end:]
	for rest != "" {
		marker := rest[0]
		rest = rest[1:]
		next := strings.IndexAny(rest, "#.%")
		if next < 0 {
			next = len(rest)
		}
		part := rest[:next]
		rest = rest[next:]
		if part == "" {
			continue
		}
		switch marker {
		case '#':
			l.ID = part
		case '.':
			l.Roles = append(l.Roles, part)
		case '%':
			l.Options = append(l.Options, part)
		}
	}
}

func (l *List) setNamed(name, value string) {
	l.Named[name] = value
	switch name {
	case "id":
		l.ID = value
	case "reftext":
		l.Reftext = value
	case "role":
		l.Roles = append(l.Roles, strings.Fields(value)...)
	case "options", "opts":
		for _, o := range strings.Split(value, ",") {
			if o = strings.TrimSpace(o); o != "" {
				l.Options = append(l.Options, o)
			}
		}
	}
}

// split breaks text on commas that are outside quoted values.
func split(text string) []string {
	var (
		entries []string
		b       strings.Builder
		quote   byte
	)
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\\' && quote != 0 && i+1 < len(text) && text[i+1] == quote:
			b.WriteByte(c)
			b.WriteByte(text[i+1])
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
			b.WriteByte(c)
		case c == '"' || c == '\'':
			if strings.TrimSpace(b.String()) == "" || strings.HasSuffix(b.String(), "=") {
				quote = c
			}
			b.WriteByte(c)
		case c == ',':
			entries = append(entries, b.String())
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}
	return append(entries, b.String())
}

// named splits a name=value entry. Names are word characters and dashes.
func named(entry string) (string, string, bool) {
	name, value, ok := strings.Cut(entry, "=")
	if !ok {
		return "", "", false
	}
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, "\"' ") {
		return "", "", false
	}
	for _, r := range name {
		if !(r == '-' || r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return "", "", false
		}
	}
	return strings.ToLower(name), unquote(strings.TrimSpace(value)), true
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		q := string(v[0])
		return strings.ReplaceAll(v[1:len(v)-1], `\`+q, q)
	}
	return v
}
