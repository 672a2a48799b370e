// Package table assembles delimited table rows and renders them as a
// GitHub-flavoured Markdown table once the table closes.
package table

import (
	"regexp"
	"strconv"
	"strings"
)

// Align is a column alignment.
type Align int

const (
	AlignNone Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

var (
	colSpec  = regexp.MustCompile(`^(?:(\d+)\*)?([<^>])?(?:\.[<^>])?(?:\d+%?|~)?[aehlmsdv]?$`)
	cellSpec = regexp.MustCompile(`^(?:\d+[*+]|\d*\.\d+\+)?[<^>]?(?:\.[<^>])?[aehlmsdv]?$`)
	trailing = regexp.MustCompile(`[ \t]+((?:\d+[*+]|\d*\.\d+\+)?[<^>]?(?:\.[<^>])?[aehlmsdv]?)$`)
)

// Builder accumulates table cells line by line. A Builder is not safe for
// concurrent use.
type Builder struct {
	cols   int
	aligns []Align
	format func(string) string

	header   bool
	noHeader bool

	rows    [][]string
	pending []string

	lines           int
	blankSeen       bool
	headerCandidate bool
	blankAfterFirst bool
}

// Options configure a Builder from the table's block attributes.
type Options struct {
	// Cols is the raw cols attribute, e.g. "1,2" or "3*^".
	Cols string
	// Header forces the first row to be the header.
	Header bool
	// NoHeader disables implicit header detection.
	NoHeader bool
	// Format is applied to each cell's text as it is read. Nil leaves text as is.
	Format func(string) string
}

// New returns a Builder for one table.
func New(opts Options) *Builder {
	b := &Builder{
		header:   opts.Header,
		noHeader: opts.NoHeader,
		format:   opts.Format,
	}
	if b.format == nil {
		b.format = func(s string) string { return s }
	}
	b.cols, b.aligns = ParseCols(opts.Cols)
	return b
}

// ParseCols returns the column count and alignments declared by a cols
// attribute. A bare integer is a column count. It returns 0 when cols is empty.
func ParseCols(cols string) (int, []Align) {
	cols = strings.TrimSpace(strings.Trim(cols, `"`))
	if cols == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(cols); err == nil && n > 0 {
		return n, make([]Align, n)
	}
	var aligns []Align
	for _, entry := range strings.FieldsFunc(cols, func(r rune) bool { return r == ',' || r == ';' }) {
		m := colSpec.FindStringSubmatch(strings.TrimSpace(entry))
		if m == nil {
			aligns = append(aligns, AlignNone)
			continue
		}
		repeat := 1
		if m[1] != "" {
			repeat, _ = strconv.Atoi(m[1])
		}
		align := AlignNone
		switch m[2] {
		case "<":
			align = AlignLeft
		case "^":
			align = AlignCenter
		case ">":
			align = AlignRight
		}
		for range repeat {
			aligns = append(aligns, align)
		}
	}
	return len(aligns), aligns
}

// Line feeds one content line of the table.
func (b *Builder) Line(line string) {
	b.lines++
	if b.lines == 2 {
		b.headerCandidate = b.headerCandidate && b.blankAfterFirst
	}

	segments := splitCells(line)
	lead := strings.TrimSpace(segments[0])
	cells := segments[1:]

	if len(cells) == 0 {
		b.continueCell(lead)
		return
	}
	if lead != "" && !cellSpec.MatchString(lead) {
		b.continueCell(lead)
	}
	for i, c := range cells {
		if i < len(cells)-1 {
			c = trailing.ReplaceAllString(c, "")
		}
		cells[i] = b.format(strings.TrimSpace(c))
	}

	if b.cols == 0 {
		b.cols = len(cells)
		b.aligns = make([]Align, b.cols)
	}
	b.pending = append(b.pending, cells...)
	for len(b.pending) >= b.cols {
		b.rows = append(b.rows, b.pending[:b.cols:b.cols])
		b.pending = append([]string(nil), b.pending[b.cols:]...)
	}

	if b.lines == 1 {
		b.headerCandidate = !b.blankSeen && len(b.rows) == 1 && len(b.pending) == 0
	}
}

// Blank records a blank line inside the table. Blank lines never split
// a row; they only take part in implicit header detection.
func (b *Builder) Blank() {
	b.blankSeen = true
	if b.lines == 1 {
		b.blankAfterFirst = true
	}
}

// HasHeader reports whether the first row renders as the header.
func (b *Builder) HasHeader() bool {
	if b.header {
		return true
	}
	return !b.noHeader && b.headerCandidate && b.blankAfterFirst
}

// Render returns the Markdown table lines. An incomplete last row is
// padded with empty cells. Tables with no cells render nothing.
func (b *Builder) Render() []string {
	rows := b.rows
	if len(b.pending) > 0 {
		last := append([]string(nil), b.pending...)
		for len(last) < b.cols {
			last = append(last, "")
		}
		rows = append(rows, last)
	}
	if len(rows) == 0 {
		return nil
	}

	head := make([]string, b.cols)
	if b.HasHeader() {
		head, rows = rows[0], rows[1:]
	}

	out := make([]string, 0, len(rows)+2)
	out = append(out, renderRow(head), b.divider())
	for _, r := range rows {
		out = append(out, renderRow(r))
	}
	return out
}

func (b *Builder) divider() string {
	cells := make([]string, b.cols)
	for i := range cells {
		var a Align
		if i < len(b.aligns) {
			a = b.aligns[i]
		}
		switch a {
		case AlignLeft:
			cells[i] = ":---"
		case AlignCenter:
			cells[i] = ":---:"
		case AlignRight:
			cells[i] = "---:"
		default:
			cells[i] = "---"
		}
	}
	return "| " + strings.Join(cells, " | ") + " |"
}

func (b *Builder) continueCell(text string) {
	if text == "" {
		return
	}
	text = b.format(text)
	switch {
	case len(b.pending) > 0:
		b.pending[len(b.pending)-1] += "<br>" + text
	case len(b.rows) > 0:
		row := b.rows[len(b.rows)-1]
		row[len(row)-1] += "<br>" + text
	}
}

func renderRow(cells []string) string {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = escapePipes(c)
	}
	return "| " + strings.Join(escaped, " | ") + " |"
}

// escapePipes escapes every | not already escaped.
func escapePipes(s string) string {
	if !strings.Contains(s, "|") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '|' && (i == 0 || s[i-1] != '\\') {
			sb.WriteByte('\\')
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// splitCells splits line on unescaped bars. The first segment is the text
// before the first bar.
func splitCells(line string) []string {
	var (
		segments []string
		start    int
	)
	for i := 0; i < len(line); i++ {
		if line[i] == '|' && (i == 0 || line[i-1] != '\\') {
			segments = append(segments, line[start:i])
			start = i + 1
		}
	}
	return append(segments, line[start:])
}
