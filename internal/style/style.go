// Package style implements the Style-Sheet Parser component (§4.2): a
// regex-grade extraction of defined class selectors from a style file. The
// spec is explicit that "the extraction is regex-grade; no full CSS parser
// is required" (§4.2), so this package stays on the standard library
// regexp rather than pulling in a tree-sitter CSS grammar (see DESIGN.md
// for why this is the one place this repository stays on stdlib).
package style

import (
	"os"
	"regexp"
	"strings"
)

// classSelectorRe matches a `.` followed by an identifier-ish selector
// token (letters, digits, hyphen, underscore, and CSS escapes collapse to
// the same character class for our purposes).
var classSelectorRe = regexp.MustCompile(`\.(-?[_a-zA-Z][_a-zA-Z0-9-]*)`)

// applyDirectiveRe matches a Tailwind-style `@apply ...;` directive body.
var applyDirectiveRe = regexp.MustCompile(`@apply\s+([^;]+);`)

// ParseFile reads path and extracts its defined class selector names. I/O
// failure returns an error; the caller treats this as a StyleParseFailure
// (§7) and the file contributes no classes.
func ParseFile(path string) (map[string]struct{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSource(string(data)), nil
}

// ParseSource extracts class selector names from raw style-sheet text.
func ParseSource(src string) map[string]struct{} {
	classes := make(map[string]struct{})

	for _, m := range classSelectorRe.FindAllStringSubmatch(src, -1) {
		classes[m[1]] = struct{}{}
	}

	for _, m := range applyDirectiveRe.FindAllStringSubmatch(src, -1) {
		for _, tok := range strings.Fields(m[1]) {
			if strings.HasPrefix(tok, "!") {
				continue
			}
			classes[tok] = struct{}{}
		}
	}

	return classes
}
