package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	markupTagPattern  = regexp.MustCompile(`</?[A-Za-z][^<>]*>`)
	scriptSchemeRegex = regexp.MustCompile(`(?i)(java|vb)script\s*:`)
)

// unsafeSearchChars alter a pattern-match predicate or its surrounding filter
// syntax: quotes, comparison operators, LIKE wildcards and their escape,
// statement separators and grouping
const unsafeSearchChars = "'\"`<>=!;%_\\*(),"

// SanitizeSearch prepares a free-text term for a case-insensitive contains
// match. It removes markup tags, script schemes and predicate syntax
// characters, collapses whitespace, and returns "" when nothing is left.
func SanitizeSearch(raw string) string {
	s := markupTagPattern.ReplaceAllString(raw, " ")
	s = scriptSchemeRegex.ReplaceAllString(s, " ")

	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(unsafeSearchChars, r) {
			return -1
		}
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)

	return strings.Join(strings.Fields(s), " ")
}

// DedupeStrings drops repeated values, keeping first-occurrence order
func DedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
