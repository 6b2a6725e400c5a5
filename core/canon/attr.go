package canon

import "strings"

// SVG 2 deprecated the xlink namespace on href, but the generator family
// still emits the old name. It is an attribute name and never legitimately
// part of other content, so a global literal replace is safe.
const (
	deprecatedHrefAttr = "xlink:href"
	modernHrefAttr     = "href"
)

// RewriteLinkAttrs replaces every occurrence of the deprecated xlink:href
// attribute name with href. Absence of the token is a no-op.
func RewriteLinkAttrs(doc string) string {
	return strings.ReplaceAll(doc, deprecatedHrefAttr, modernHrefAttr)
}
