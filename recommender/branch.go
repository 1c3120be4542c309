package recommender

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// BranchRule maps a set of keywords to a normalized branch label. Rules are
// evaluated in order and the first rule with a matching keyword wins, so the
// position of a rule in the table is part of its meaning.
type BranchRule struct {
	Branch   Branch   `json:"branch"`
	Keywords []string `json:"keywords"`
}

// defaultBranchRules is the built-in rule table. "COMPUTER SCIENCE" must sit
// above the bare "CS" token, and "ELECTRONICS" above "EC", or the generic
// token would shadow the specific program name.
var defaultBranchRules = []BranchRule{
	{BranchComputerScience, []string{"COMPUTER SCIENCE", "COMPUTER ENGINEERING", "CSE", "CS", "COMPUTER"}},
	{BranchElectrical, []string{"ELECTRICAL", "EE"}},
	{BranchMechanical, []string{"MECHANICAL", "MECH", "ME"}},
	{BranchElectronics, []string{"ELECTRONICS", "COMMUNICATION", "ECE", "EC"}},
	{BranchCivil, []string{"CIVIL", "CE"}},
	{BranchInfoTech, []string{"INFORMATION TECHNOLOGY", "IT"}},
	{BranchChemical, []string{"CHEMICAL", "CH"}},
	{BranchAerospace, []string{"AEROSPACE", "AERONAUTICAL", "AE"}},
	{BranchBiotechnology, []string{"BIOTECHNOLOGY", "BIO TECHNOLOGY", "BIOTECH", "BT"}},
	{BranchInstrumentation, []string{"INSTRUMENTATION", "CONTROL", "IC"}},
	{BranchMetallurgical, []string{"METALLURG", "MT"}},
	{BranchMining, []string{"MINING", "MN"}},
	{BranchProduction, []string{"PRODUCTION", "INDUSTRIAL"}},
	{BranchTextile, []string{"TEXTILE"}},
	{BranchAgricultural, []string{"AGRICULTUR", "FOOD PROCESS"}},
	{BranchPhysics, []string{"PHYSICS"}},
	{BranchMathematics, []string{"MATHEMATICS", "MATHS"}},
}

// BranchExtractor classifies free-text program names into the closed branch
// enum using an ordered keyword table.
type BranchExtractor struct {
	rules []BranchRule
}

// NewBranchExtractor builds an extractor over the given rule table, or the
// built-in defaults when rules is empty.
func NewBranchExtractor(rules []BranchRule) *BranchExtractor {
	if len(rules) == 0 {
		rules = defaultBranchRules
	}
	compiled := make([]BranchRule, 0, len(rules))
	for _, r := range rules {
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			kw = strings.ToUpper(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			kws = append(kws, kw)
		}
		if len(kws) == 0 {
			continue
		}
		compiled = append(compiled, BranchRule{Branch: r.Branch, Keywords: kws})
	}
	return &BranchExtractor{rules: compiled}
}

// Extract returns the branch for a program name. Every input maps to some
// branch; text matching no rule lands in BranchOther.
func (e *BranchExtractor) Extract(programText string) Branch {
	text := strings.ToUpper(strings.TrimSpace(programText))
	if text == "" {
		return BranchOther
	}
	for _, rule := range e.rules {
		for _, kw := range rule.Keywords {
			if containsKeyword(text, kw) {
				return rule.Branch
			}
		}
	}
	return BranchOther
}

// ExtractBranch classifies with the default rule table.
func ExtractBranch(programText string) Branch {
	return defaultExtractor.Extract(programText)
}

var defaultExtractor = NewBranchExtractor(nil)

func containsKeyword(text, kw string) bool {
	if kw == "" {
		return false
	}
	if useWordBoundary(kw) {
		return containsAsWord(text, kw)
	}
	return strings.Contains(text, kw)
}

// useWordBoundary reports whether a keyword is short enough that substring
// matching would misfire ("EE" inside "ENGINEERING"). Short all-alphanumeric
// ASCII tokens are matched on word boundaries instead.
func useWordBoundary(kw string) bool {
	if kw == "" {
		return false
	}
	count := 0
	for _, r := range kw {
		if r > unicode.MaxASCII {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
		count++
		if count > 4 {
			return false
		}
	}
	return count > 0
}

func containsAsWord(text, word string) bool {
	start := 0
	for start < len(text) {
		idx := strings.Index(text[start:], word)
		if idx < 0 {
			return false
		}
		idx += start
		var before rune
		if idx > 0 {
			before, _ = utf8.DecodeLastRuneInString(text[:idx])
		}
		var after rune
		if end := idx + len(word); end < len(text) {
			after, _ = utf8.DecodeRuneInString(text[end:])
		}
		if !isAlphaNumRune(before) && !isAlphaNumRune(after) {
			return true
		}
		start = idx + len(word)
	}
	return false
}

func isAlphaNumRune(r rune) bool {
	if r == 0 || r == utf8.RuneError {
		return false
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
