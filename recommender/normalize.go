package recommender

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// abbreviations expanded token-by-token when building identity keys.
// Expansion is word-bounded on purpose: a substring replace would mangle
// "IIIT" while expanding "IIT".
var abbreviations = map[string]string{
	"IIT":  "INDIAN INSTITUTE OF TECHNOLOGY",
	"NIT":  "NATIONAL INSTITUTE OF TECHNOLOGY",
	"IIIT": "INDIAN INSTITUTE OF INFORMATION TECHNOLOGY",
	"INST": "INSTITUTE",
	"TECH": "TECHNOLOGY",
	"ENGG": "ENGINEERING",
	"GOVT": "GOVERNMENT",
	"UNIV": "UNIVERSITY",
}

// foldName canonicalizes a college name without expanding abbreviations:
// NFKC fold, uppercase, punctuation removed. Punctuation is deleted rather
// than spaced so dotted initialisms ("I.I.T.") collapse to the token their
// plain spelling would produce. Fuzzy similarity is scored on this form.
func foldName(name string) string {
	s := norm.NFKC.String(name)
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "&", " AND ")
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return r
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeName is foldName plus abbreviation expansion. It is the identity
// key: two names normalize equally exactly when they spell the same
// institution out or abbreviated.
func NormalizeName(name string) string {
	fields := strings.Fields(foldName(name))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if exp, ok := abbreviations[f]; ok {
			out = append(out, exp)
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}

// normalizeCell trims whitespace and a UTF-8 BOM from a raw CSV cell.
func normalizeCell(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "\ufeff")
	return v
}
