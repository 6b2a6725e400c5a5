package canon

import (
	"regexp"
	"strconv"
	"strings"
)

// decimalRe matches a decimal literal with a non-empty fractional part,
// optionally signed. Integers and bare fractions are deliberately not
// matched and pass through untouched.
var decimalRe = regexp.MustCompile(`-?\d+\.\d+`)

// pathDataRe matches a whole path-data attribute.
var pathDataRe = regexp.MustCompile(`d="([^"]*)"`)

// graphicalAttrs are the positional and size attributes subject to numeric
// normalization, in processing order.
var graphicalAttrs = []string{"points", "x", "y", "width", "height", "cx", "cy", "r"}

var graphicalAttrRes = func() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp, len(graphicalAttrs))
	for _, name := range graphicalAttrs {
		res[name] = regexp.MustCompile(name + `="([^"]*)"`)
	}
	return res
}()

// normalizeDecimal rewrites one matched decimal literal to exactly one
// fractional digit. strconv.FormatFloat rounds half to even; that choice is
// fixed so repeated runs agree byte for byte.
func normalizeDecimal(lit string) string {
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return lit
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// NormalizeNumbers rewrites decimal literals in path data and the
// enumerated graphical attributes to one fractional digit. Attribute values
// inside <text> elements are left alone: label positioning carries
// precision that is meaningful, unlike plot geometry.
func NormalizeNumbers(doc string) string {
	doc = normalizePathData(doc)
	for _, name := range graphicalAttrs {
		doc = normalizeAttr(doc, name)
	}
	return doc
}

// normalizePathData rewrites coordinate runs in d="..." values. The value
// is a sequence of single-letter draw commands each followed by coordinate
// data; the value is split on command letters and only the coordinate runs
// between them are rewritten, so commands keep their case and position.
func normalizePathData(doc string) string {
	return pathDataRe.ReplaceAllStringFunc(doc, func(m string) string {
		data := m[len(`d="`) : len(m)-1]
		var b strings.Builder
		b.Grow(len(m))
		b.WriteString(`d="`)
		start := 0
		for i := 0; i < len(data); i++ {
			if isCommandLetter(data[i]) {
				b.WriteString(decimalRe.ReplaceAllStringFunc(data[start:i], normalizeDecimal))
				b.WriteByte(data[i])
				start = i + 1
			}
		}
		b.WriteString(decimalRe.ReplaceAllStringFunc(data[start:], normalizeDecimal))
		b.WriteByte('"')
		return b.String()
	})
}

func isCommandLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// normalizeAttr rewrites decimal literals in every name="..." value that
// falls outside a text element. Matching is positional; the skip check
// needs the match offset, which ReplaceAllStringFunc does not expose, so
// the document is rebuilt from submatch indices.
func normalizeAttr(doc, name string) string {
	locs := graphicalAttrRes[name].FindAllStringSubmatchIndex(doc, -1)
	if locs == nil {
		return doc
	}
	var b strings.Builder
	b.Grow(len(doc))
	last := 0
	for _, loc := range locs {
		b.WriteString(doc[last:loc[0]])
		if insideTextElement(doc, loc[0]) {
			b.WriteString(doc[loc[0]:loc[1]])
		} else {
			b.WriteString(name)
			b.WriteString(`="`)
			b.WriteString(decimalRe.ReplaceAllStringFunc(doc[loc[2]:loc[3]], normalizeDecimal))
			b.WriteByte('"')
		}
		last = loc[1]
	}
	b.WriteString(doc[last:])
	return b.String()
}

// insideTextElement reports whether pos falls inside a <text> element,
// using the substring-count heuristic: more "<text" openings than "</text"
// closings before pos means the nearest text tag is still open. This is an
// approximation, not a tree-aware check; the generator family never nests
// text elements in a way that defeats it.
func insideTextElement(doc string, pos int) bool {
	prefix := doc[:pos]
	return strings.Count(prefix, "<text") > strings.Count(prefix, "</text")
}

// stripTrailingWhitespace trims spaces and tabs from the end of every line.
// Renderers pad some lines; the padding is diff noise.
func stripTrailingWhitespace(doc string) string {
	lines := strings.Split(doc, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
