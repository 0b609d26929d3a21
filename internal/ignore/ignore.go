// Package ignore implements the Ignore Filter component (C10, §4.9): a
// narrow, case-insensitive glob-to-regex translator applied to each
// finder's output after it runs. This is deliberately not doublestar (used
// elsewhere for recursive file-tree globs, §2): §4.9 specifies a flatter
// match against a single identifying string field (a name, not a path
// tree), so the translation is the teacher's own "compile once, match many"
// regex-cache idiom (internal/config/config.go's exclude-pattern handling)
// rather than a filesystem walk.
package ignore

import (
	"regexp"
	"strings"
	"sync"
)

var (
	cacheMu sync.Mutex
	cache   = make(map[string]*regexp.Regexp)
)

// compile translates one glob pattern into an anchored, case-insensitive
// regex per §4.9: `*` -> `.*`, `?` -> `.`, every other regex-special
// character escaped.
func compile(pattern string) *regexp.Regexp {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if re, ok := cache[pattern]; ok {
		return re
	}

	var b strings.Builder
	b.WriteString("(?i)^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	re := regexp.MustCompile(b.String())
	cache[pattern] = re
	return re
}

// Matches reports whether value matches any of patterns (§4.9).
func Matches(value string, patterns []string) bool {
	for _, p := range patterns {
		if compile(p).MatchString(value) {
			return true
		}
	}
	return false
}

// Filter retains items from values for which keep(item) is true, i.e. for
// which field(item) matches none of patterns. Used by every finder to
// apply its corresponding config.ignore.* pattern list (§4.9) without
// duplicating the filter loop per result type.
func Filter[T any](values []T, patterns []string, field func(T) string) []T {
	if len(patterns) == 0 {
		return values
	}
	out := make([]T, 0, len(values))
	for _, v := range values {
		if !Matches(field(v), patterns) {
			out = append(out, v)
		}
	}
	return out
}
