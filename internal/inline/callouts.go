package inline

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	trailingCallouts = regexp.MustCompile(`\s*(?:(?://|#|--|;;)\s*)?((?:(?:<(?:\d+|\.)>|<!--(?:\d+|\.)-->)\s*)+)$`)
	calloutMarker    = regexp.MustCompile(`<(?:!--)?(\d+|\.)(?:--)?>`)
)

// Callouts replaces the trailing callout markers of a verbatim line with
// circled number glyphs. Explicit numbers reset *counter; <.> markers take
// the next number after it.
func Callouts(line string, counter *int) string {
	loc := trailingCallouts.FindStringSubmatchIndex(line)
	if loc == nil {
		return line
	}
	var glyphs []string
	for _, m := range calloutMarker.FindAllStringSubmatch(line[loc[2]:loc[3]], -1) {
		glyphs = append(glyphs, Glyph(NextCallout(m[1], counter)))
	}
	head := strings.TrimRight(line[:loc[0]], " \t")
	if head == "" {
		return strings.Join(glyphs, " ")
	}
	return head + " " + strings.Join(glyphs, " ")
}

// NextCallout returns the number a callout marker stands for and
// advances counter. The marker is either a number or ".".
func NextCallout(marker string, counter *int) int {
	if n, err := strconv.Atoi(marker); err == nil {
		*counter = n
		return n
	}
	*counter++
	return *counter
}

// Glyph returns the circled glyph for callout n: ❶ to ❿, then ⓫ to ⓴,
// then a parenthesized number.
func Glyph(n int) string {
	switch {
	case n >= 1 && n <= 10:
		return string(rune(0x2776 + n - 1))
	case n >= 11 && n <= 20:
		return string(rune(0x24EB + n - 11))
	default:
		return "(" + strconv.Itoa(n) + ")"
	}
}
