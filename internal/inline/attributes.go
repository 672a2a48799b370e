package inline

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var attributeRef = regexp.MustCompile(`(\\)?\{([A-Za-z0-9_][\w-]*)(?::([\w-]+)(?::([^{}]*))?)?\}`)

// Attributes expands {name} references using the current store values.
// An escaped reference \{name} renders as {name}. Undefined references
// follow the attribute-missing policy: skip keeps them, drop removes them,
// drop-line empties the line and warn keeps them and logs.
func (p *Pipeline) Attributes(text string) string {
	if !strings.Contains(text, "{") {
		return text
	}
	return attributeRef.ReplaceAllStringFunc(text, func(m string) string {
		parts := attributeRef.FindStringSubmatch(m)
		if parts[1] != "" {
			return m[1:]
		}
		name := strings.ToLower(parts[2])

		switch name {
		case "counter", "counter2":
			if parts[3] == "" {
				break
			}
			v := p.counter(parts[3], parts[4])
			if name == "counter2" {
				return ""
			}
			return v
		}
		if parts[3] != "" {
			return m
		}

		if v, ok := p.attrs.Get(name); ok {
			return v
		}
		switch p.attrs.Value("attribute-missing") {
		case "drop":
			return ""
		case "drop-line":
			p.dropLine = true
			return ""
		case "warn":
			p.logger.Warn("missing attribute reference", zap.String("name", name))
		}
		return m
	})
}

// counter increments the named counter and returns its new value.
// A counter starts at seed (default 1); a single-letter seed counts letters.
func (p *Pipeline) counter(name, seed string) string {
	current, ok := p.attrs.Get(name)
	var next string
	switch {
	case !ok && seed == "":
		next = "1"
	case !ok:
		next = seed
	default:
		if n, err := strconv.Atoi(current); err == nil {
			next = strconv.Itoa(n + 1)
		} else if len(current) == 1 {
			next = string(current[0] + 1)
		} else {
			next = "1"
		}
	}
	if !p.attrs.Set(name, next) {
		return current
	}
	return next
}
