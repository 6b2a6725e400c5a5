package canon

import (
	"regexp"
	"strconv"
	"strings"
)

// Auto-generated identifiers are a single-letter tag ('p' or 'm') followed
// by 9-10 hex digits, e.g. p117440ae8c or maeebeef912. Documents from older
// generator versions also carry linkN anchors.
const hexID = `[mp][0-9a-f]{9,10}`

// idPasses are the discovery passes, in contract order: hex-id definitions,
// hex-id href references, hex-id clip-path references, legacy link ids.
// Each pass discovers, assigns names, and substitutes before the next pass
// runs, so a later pass never sees names minted by an earlier one.
var idPasses = []struct {
	re     *regexp.Regexp
	legacy bool
}{
	{regexp.MustCompile(`id="(` + hexID + `)"`), false},
	{regexp.MustCompile(`href="#(` + hexID + `)"`), false},
	{regexp.MustCompile(`clip-path="url\(#(` + hexID + `)\)"`), false},
	{regexp.MustCompile(`id="(link\d+)"`), true},
}

// idSites are the shapes an identifier can occur in. Substitution matches
// whole sites and consults the pass table, so identifiers that are
// substrings of one another cannot interfere.
var idSites = []struct {
	re   *regexp.Regexp
	wrap func(id string) string
}{
	{regexp.MustCompile(`id="([A-Za-z][A-Za-z0-9]*)"`),
		func(id string) string { return `id="` + id + `"` }},
	{regexp.MustCompile(`href="#([A-Za-z][A-Za-z0-9]*)"`),
		func(id string) string { return `href="#` + id + `"` }},
	{regexp.MustCompile(`clip-path="url\(#([A-Za-z][A-Za-z0-9]*)\)"`),
		func(id string) string { return `clip-path="url(#` + id + `)"` }},
}

// RenumberIDs gives every auto-generated identifier a short deterministic
// sequential name and rewrites all of its occurrences consistently. New
// names keep the original identifier's first character as prefix (p1, m2)
// or the link prefix for the legacy shape; the sequence restarts at 1 for
// each pass and follows first-seen document order.
func RenumberIDs(doc string) string {
	for _, pass := range idPasses {
		table := discoverPass(doc, pass.re, pass.legacy)
		if len(table) == 0 {
			continue
		}
		doc = substituteIDs(doc, table)
	}
	return doc
}

// discoverPass collects distinct identifiers in first-seen order and builds
// the old-to-new name table for one pass. Identifiers without a definition
// site anywhere in the document are skipped, leaving dangling references
// exactly as found.
func discoverPass(doc string, re *regexp.Regexp, legacy bool) map[string]string {
	seen := make(map[string]bool)
	table := make(map[string]string)
	seq := 0
	for _, m := range re.FindAllStringSubmatch(doc, -1) {
		id := m[1]
		if seen[id] {
			continue
		}
		seen[id] = true
		if !strings.Contains(doc, `id="`+id+`"`) {
			continue
		}
		seq++
		if legacy {
			table[id] = "link" + strconv.Itoa(seq)
		} else {
			table[id] = id[:1] + strconv.Itoa(seq)
		}
	}
	return table
}

// substituteIDs rewrites every site of every identifier in the table in one
// pass over each site shape. Sites whose identifier is not in the table are
// returned unchanged.
func substituteIDs(doc string, table map[string]string) string {
	for _, site := range idSites {
		re, wrap := site.re, site.wrap
		doc = re.ReplaceAllStringFunc(doc, func(m string) string {
			sub := re.FindStringSubmatch(m)
			if newName, ok := table[sub[1]]; ok {
				return wrap(newName)
			}
			return m
		})
	}
	return doc
}
