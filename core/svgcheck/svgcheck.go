// Package svgcheck verifies identifier integrity in SVG documents.
//
// The canonicalizer in core/canon works on text and assumes every
// reference site points at exactly one definition; svgcheck is the
// tree-aware complement that checks the assumption for real. It parses the
// document as XML and resolves href="#id", xlink:href="#id" and url(#id)
// references against the set of id attributes.
package svgcheck

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	apperrors "github.com/chartproof/chartproof/core/errors"
)

// Reference is one resolved or dangling reference site.
type Reference struct {
	Target  string // the identifier referred to
	Element string // element name carrying the reference
	Attr    string // attribute name the reference appeared in
}

// Report is the outcome of checking one document.
type Report struct {
	Definitions map[string]int // id value -> number of definition sites
	References  []Reference    // every reference site found
	Duplicates  []string       // ids defined more than once, sorted
	Dangling    []Reference    // references without a definition
}

// OK reports whether every reference resolves to exactly one definition.
func (r *Report) OK() bool {
	return len(r.Duplicates) == 0 && len(r.Dangling) == 0
}

// Summary returns a one-line human-readable result.
func (r *Report) Summary() string {
	if r.OK() {
		return fmt.Sprintf("ok: %d definitions, %d references", len(r.Definitions), len(r.References))
	}
	return fmt.Sprintf("%d duplicate ids, %d dangling references (%d definitions, %d references)",
		len(r.Duplicates), len(r.Dangling), len(r.Definitions), len(r.References))
}

var (
	idDefExpr = xpath.MustCompile("//*[@id]")
	urlRefRe  = regexp.MustCompile(`url\(#([^)]+)\)`)
)

// Check parses data as XML and resolves every identifier reference.
func Check(data []byte) (*Report, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &apperrors.ParseError{Format: "SVG", Message: err.Error(), Err: err}
	}

	report := &Report{Definitions: make(map[string]int)}

	for _, n := range xmlquery.QuerySelectorAll(doc, idDefExpr) {
		report.Definitions[n.SelectAttr("id")]++
	}
	for id, count := range report.Definitions {
		if count > 1 {
			report.Duplicates = append(report.Duplicates, id)
		}
	}
	sort.Strings(report.Duplicates)

	collectReferences(doc, report)

	for _, ref := range report.References {
		if report.Definitions[ref.Target] == 0 {
			report.Dangling = append(report.Dangling, ref)
		}
	}
	return report, nil
}

// collectReferences walks every element attribute looking for the three
// reference shapes the generator family emits.
func collectReferences(n *xmlquery.Node, report *Report) {
	if n.Type == xmlquery.ElementNode {
		for _, attr := range n.Attr {
			name := attr.Name.Local
			if attr.Name.Space != "" {
				name = attr.Name.Space + ":" + attr.Name.Local
			}
			switch {
			case (name == "href" || name == "xlink:href") && strings.HasPrefix(attr.Value, "#"):
				report.References = append(report.References, Reference{
					Target:  attr.Value[1:],
					Element: n.Data,
					Attr:    name,
				})
			default:
				for _, m := range urlRefRe.FindAllStringSubmatch(attr.Value, -1) {
					report.References = append(report.References, Reference{
						Target:  m[1],
						Element: n.Data,
						Attr:    name,
					})
				}
			}
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectReferences(child, report)
	}
}
