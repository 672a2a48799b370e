package engine

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/go-adoc2md/internal/blockattr"
)

var (
	directivePattern = regexp.MustCompile(`^(ifdef|ifndef|ifeval|endif|include)::([^\[]*)\[(.*)\]$`)
	evalPattern      = regexp.MustCompile(`^\s*(.*?)\s*(==|!=|<=|>=|<|>)\s*(.*?)\s*$`)
)

// skipStack holds the target of each open guard of a skipped region.
// The region ends when the stack empties.
type skipStack []string

func (s skipStack) active() bool {
	return len(s) > 0
}

func (s *skipStack) push(target string) {
	*s = append(*s, target)
}

// pop closes the innermost guard when target names it. An empty target
// on either side matches any guard.
func (s *skipStack) pop(target string) bool {
	n := len(*s)
	if n == 0 {
		return false
	}
	if top := (*s)[n-1]; target != "" && top != "" && top != target {
		return false
	}
	*s = (*s)[:n-1]
	return true
}

// directive handles a preprocessor line and reports whether line was one.
// While a region is skipped every nested block guard is pushed whatever
// its condition, so each endif pops only its own guard. Single-line
// guards have no endif and are never pushed.
func (c *converter) directive(line string, depth int) bool {
	m := directivePattern.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	name, target, payload := m[1], strings.TrimSpace(m[2]), m[3]

	if c.skip.active() {
		switch name {
		case "ifdef", "ifndef":
			if payload == "" {
				c.skip.push(target)
			}
		case "ifeval":
			c.skip.push("")
		case "endif":
			if !c.skip.pop(target) {
				c.logger.Debug("mismatched endif", zap.String("target", target))
			}
		}
		return true
	}

	switch name {
	case "endif":
	case "include":
		c.include(target, payload, depth)
	case "ifeval":
		ok, valid := c.evaluate(payload)
		if !valid {
			c.logger.Debug("malformed ifeval expression", zap.String("expression", payload))
			return true
		}
		if !ok {
			c.skip.push("")
		}
	default:
		ok := c.defined(name, target)
		if payload != "" {
			if ok {
				c.dispatch(payload, depth)
			}
			return true
		}
		if !ok {
			c.skip.push(target)
		}
	}
	return true
}

// defined evaluates an ifdef or ifndef condition. Names joined by ","
// test for any, names joined by "+" test for all.
func (c *converter) defined(directive, target string) bool {
	sep, all := ",", false
	if strings.Contains(target, "+") {
		sep, all = "+", true
	}
	names := strings.Split(target, sep)
	set := 0
	for _, n := range names {
		if c.attrs.IsSet(strings.TrimSpace(n)) {
			set++
		}
	}

	var skip bool
	switch {
	case directive == "ifdef" && all:
		skip = set < len(names)
	case directive == "ifdef":
		skip = set == 0
	case all:
		skip = set == len(names)
	default:
		skip = set > 0
	}
	return !skip
}

// evaluate computes an ifeval expression. Operands are attribute-expanded
// and unquoted; they compare as numbers when both parse as numbers.
func (c *converter) evaluate(expr string) (result, valid bool) {
	m := evalPattern.FindStringSubmatch(expr)
	if m == nil || m[1] == "" || m[3] == "" {
		return false, false
	}
	lhs, op, rhs := c.operand(m[1]), m[2], c.operand(m[3])

	var cmp int
	l, lerr := strconv.ParseFloat(lhs, 64)
	r, rerr := strconv.ParseFloat(rhs, 64)
	switch {
	case lerr == nil && rerr == nil && l < r:
		cmp = -1
	case lerr == nil && rerr == nil && l > r:
		cmp = 1
	case lerr == nil && rerr == nil:
		cmp = 0
	default:
		cmp = strings.Compare(lhs, rhs)
	}

	switch op {
	case "==":
		return cmp == 0, true
	case "!=":
		return cmp != 0, true
	case "<":
		return cmp < 0, true
	case "<=":
		return cmp <= 0, true
	case ">":
		return cmp > 0, true
	default:
		return cmp >= 0, true
	}
}

func (c *converter) operand(s string) string {
	s = c.inline.Attributes(strings.TrimSpace(s))
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// include splices the resolved text of target in place of the directive.
// Without a resolver, past the depth limit, or when resolution fails the
// directive degrades to a link, unless the include is optional.
func (c *converter) include(target, attrList string, depth int) {
	target = c.inline.Attributes(target)
	opts := blockattr.Parse(attrList)

	switch {
	case c.resolver == nil:
	case depth >= maxIncludeDepth:
		c.logger.Debug("include depth limit reached", zap.String("target", target), zap.Int("depth", depth))
	default:
		text, err := c.resolver(target)
		if err == nil {
			c.run(splitLines(text), depth+1)
			return
		}
		c.logger.Debug("include not resolved", zap.String("target", target), zap.Error(err))
	}

	if opts.HasOption("optional") {
		return
	}
	c.dispatch("link:"+target+"[]", depth)
}
