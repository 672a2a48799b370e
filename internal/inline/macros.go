package inline

import (
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/alnah/go-adoc2md/internal/xref"
)

var (
	imageMacro    = regexp.MustCompile(`image:([^\s:\[][^\s\[]*)\[([^\]]*)\]`)
	footnoteMacro = regexp.MustCompile(`footnote:([\w-]*)\[((?:\\\]|[^\]])*)\]`)
	kbdMacro      = regexp.MustCompile(`kbd:\[((?:\\\]|[^\]])+)\]`)
	btnMacro      = regexp.MustCompile(`btn:\[([^\]]+)\]`)
	menuMacro     = regexp.MustCompile(`menu:([^\s\[]+)\[([^\]]*)\]`)
	anchorMacro   = regexp.MustCompile(`anchor:([A-Za-z_][\w:.-]*)\[([^\]]*)\]`)
	inlineAnchor  = regexp.MustCompile(`\[\[([A-Za-z_][\w:.-]*)(?:,\s*([^\]]+))?\]\]`)
	xrefMacro     = regexp.MustCompile(`xref:([^\s\[]+)\[((?:\\\]|[^\]])*)\]`)
	linkMacro     = regexp.MustCompile(`link:([^\s\[]+)\[((?:\\\]|[^\]])*)\]`)
	mailtoMacro   = regexp.MustCompile(`mailto:([^\s\[]+)\[([^\]]*)\]`)
	urlMacro      = regexp.MustCompile(`((?:https?|ftp|irc)://[^\s\[\]<>"]+)(?:\[((?:\\\]|[^\]])*)\])?`)
)

// macros renders inline macros. Each rendered macro is protected so later
// macro patterns cannot match inside its output.
func (p *Pipeline) macros(text string) string {
	text = imageMacro.ReplaceAllStringFunc(text, func(m string) string {
		parts := imageMacro.FindStringSubmatch(m)
		return p.protect(p.image(parts[1], parts[2]))
	})

	text = footnoteMacro.ReplaceAllStringFunc(text, func(m string) string {
		parts := footnoteMacro.FindStringSubmatch(m)
		return p.protect(p.footnote(parts[1], unescapeBracket(parts[2])))
	})

	text = kbdMacro.ReplaceAllStringFunc(text, func(m string) string {
		keys := unescapeBracket(kbdMacro.FindStringSubmatch(m)[1])
		return p.protect(keyboard(keys))
	})
	text = btnMacro.ReplaceAllStringFunc(text, func(m string) string {
		return p.protect("**[" + btnMacro.FindStringSubmatch(m)[1] + "]**")
	})
	text = menuMacro.ReplaceAllStringFunc(text, func(m string) string {
		parts := menuMacro.FindStringSubmatch(m)
		items := []string{parts[1]}
		for _, item := range strings.Split(parts[2], ">") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return p.protect("**" + strings.Join(items, " › ") + "**")
	})

	anchor := func(id, reftext string) string {
		if p.refs != nil {
			p.refs.Register(xref.Entry{ID: id, Anchor: id, Reftext: reftext})
		}
		return p.protect(`<a name="` + id + `"></a>`)
	}
	text = anchorMacro.ReplaceAllStringFunc(text, func(m string) string {
		parts := anchorMacro.FindStringSubmatch(m)
		return anchor(parts[1], strings.TrimSpace(parts[2]))
	})
	text = inlineAnchor.ReplaceAllStringFunc(text, func(m string) string {
		parts := inlineAnchor.FindStringSubmatch(m)
		return anchor(parts[1], strings.TrimSpace(parts[2]))
	})

	text = xrefMacro.ReplaceAllStringFunc(text, func(m string) string {
		parts := xrefMacro.FindStringSubmatch(m)
		return p.xrefLink(parts[1], unescapeBracket(parts[2]))
	})

	text = linkMacro.ReplaceAllStringFunc(text, func(m string) string {
		parts := linkMacro.FindStringSubmatch(m)
		return p.protect(p.link(parts[1], unescapeBracket(parts[2])))
	})
	text = mailtoMacro.ReplaceAllStringFunc(text, func(m string) string {
		parts := mailtoMacro.FindStringSubmatch(m)
		label := strings.TrimSpace(parts[2])
		if label == "" {
			label = parts[1]
		}
		return p.protect("[" + label + "](mailto:" + parts[1] + ")")
	})
	text = urlMacro.ReplaceAllStringFunc(text, func(m string) string {
		parts := urlMacro.FindStringSubmatch(m)
		if !strings.Contains(m, "[") {
			return p.protect(p.bareURL(parts[1]))
		}
		return p.protect(p.link(parts[1], unescapeBracket(parts[2])))
	})
	return text
}

// xrefLink renders a cross-reference. References into another document
// become relative Markdown links; internal ids become placeholders that
// are resolved after the whole document has been converted.
func (p *Pipeline) xrefLink(target, text string) string {
	doc, id, hasFragment := strings.Cut(target, "#")
	if !hasFragment && !isDocument(doc) {
		return xref.Placeholder(target, text)
	}
	if doc == "" {
		return xref.Placeholder(id, text)
	}
	doc = strings.TrimSuffix(strings.TrimSuffix(doc, path.Ext(doc)), ".") + ".md"
	href := doc
	if id != "" {
		href += "#" + id
	}
	if text == "" {
		text = strings.TrimSuffix(doc, ".md")
		if id != "" {
			text = id
		}
	}
	return "[" + text + "](" + href + ")"
}

func isDocument(target string) bool {
	switch path.Ext(target) {
	case ".adoc", ".asciidoc", ".asc", ".ad":
		return true
	}
	return false
}

// link renders a [text](target) link. An empty label falls back to the
// target, scheme-stripped when hide-uri-scheme is set. A trailing caret
// (the new-window hint) is dropped.
func (p *Pipeline) link(target, label string) string {
	label = strings.TrimSpace(label)
	if first, _, ok := strings.Cut(label, ","); ok && !strings.HasPrefix(label, `"`) && strings.Contains(label, "=") {
		label = strings.TrimSpace(first)
	}
	label = strings.TrimSpace(strings.TrimSuffix(label, "^"))
	if label == "" {
		label = p.displayURL(target)
	}
	return "[" + label + "](" + target + ")"
}

// bareURL keeps a bare URL as a GFM autolink unless its scheme must be hidden.
// Sentence punctuation after the URL stays outside the link.
func (p *Pipeline) bareURL(url string) string {
	trimmed := strings.TrimRight(url, ".,;:!?)")
	tail := url[len(trimmed):]
	if !p.attrs.IsSet("hide-uri-scheme") {
		return url
	}
	return "[" + p.displayURL(trimmed) + "](" + trimmed + ")" + tail
}

func (p *Pipeline) displayURL(target string) string {
	if !p.attrs.IsSet("hide-uri-scheme") {
		return target
	}
	if _, rest, ok := strings.Cut(target, "://"); ok {
		return rest
	}
	return strings.TrimPrefix(target, "mailto:")
}

// image renders an inline image. The alt text defaults to the file stem.
func (p *Pipeline) image(target, attrList string) string {
	alt, _, _ := strings.Cut(attrList, ",")
	alt = strings.TrimSpace(strings.Trim(alt, `"`))
	if alt == "" {
		alt = Stem(target)
	}
	return "![" + alt + "](" + ImagePath(p.attrs.Value("imagesdir"), target) + ")"
}

// footnote registers a footnote and returns its reference marker.
// footnote:id[] reuses the number of an earlier footnote:id[text].
func (p *Pipeline) footnote(id, text string) string {
	if id != "" {
		if n, ok := p.footnoteIDs[id]; ok && strings.TrimSpace(text) == "" {
			return "[^" + strconv.Itoa(n) + "]"
		}
	}
	n := len(p.footnotes) + 1
	p.footnotes = append(p.footnotes, "[^"+strconv.Itoa(n)+"]: "+strings.TrimSpace(text))
	if id != "" {
		p.footnoteIDs[id] = n
	}
	return "[^" + strconv.Itoa(n) + "]"
}

// keyboard renders a key combination such as Ctrl+Shift+T.
func keyboard(keys string) string {
	sep := "+"
	if !strings.Contains(keys, "+") && strings.Contains(keys, ",") {
		sep = ","
	}
	var trailing bool
	if strings.HasSuffix(keys, sep+sep) {
		keys = strings.TrimSuffix(keys, sep)
		trailing = true
	}
	var out []string
	for _, k := range strings.Split(keys, sep) {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, "<kbd>"+k+"</kbd>")
		}
	}
	if trailing {
		out = append(out, "<kbd>"+sep+"</kbd>")
	}
	return strings.Join(out, "+")
}

// Stem returns the file name of target without directories or extension.
func Stem(target string) string {
	base := path.Base(target)
	return strings.TrimSuffix(base, path.Ext(base))
}

// ImagePath joins imagesdir and target unless target is absolute or a URL.
func ImagePath(imagesdir, target string) string {
	if imagesdir == "" || strings.HasPrefix(target, "/") || strings.Contains(target, "://") {
		return target
	}
	return strings.TrimSuffix(imagesdir, "/") + "/" + target
}

func unescapeBracket(s string) string {
	return strings.ReplaceAll(s, `\]`, "]")
}
