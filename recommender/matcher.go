package recommender

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

// DefaultMatchThreshold is the similarity score at or above which two
// college names are treated as the same institution.
const DefaultMatchThreshold = 75

// Matcher is an insertion-ordered registry of college identities. Raw names
// resolve to an existing identity when their normalized forms are similar
// enough; otherwise a new identity is registered. Insertion order is stable
// across reruns of the same input, which makes canonical names reproducible.
//
// Exact matching runs on the abbreviation-expanded key, fuzzy scoring on the
// folded form. Expanded names share the long "INDIAN INSTITUTE OF TECHNOLOGY"
// mass, which would pull distinct campuses of one system over the threshold.
type Matcher struct {
	threshold  int
	identities []*CollegeIdentity
	folded     []string
	byNorm     map[string]int
}

// NewMatcher builds an empty registry. A threshold outside (0,100] falls
// back to DefaultMatchThreshold.
func NewMatcher(threshold int) *Matcher {
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultMatchThreshold
	}
	return &Matcher{
		threshold: threshold,
		byNorm:    make(map[string]int),
	}
}

// Resolve maps a raw college name to its canonical identity, registering a
// new identity when nothing known is similar enough. The raw spelling is
// recorded as an alias on the identity it joined.
func (m *Matcher) Resolve(rawName string) *CollegeIdentity {
	raw := strings.TrimSpace(rawName)
	norm := NormalizeName(raw)
	if idx, ok := m.byNorm[norm]; ok {
		id := m.identities[idx]
		id.addAlias(raw)
		return id
	}
	if idx, score := m.bestMatch(foldName(raw)); score >= m.threshold {
		id := m.identities[idx]
		id.addAlias(raw)
		m.byNorm[norm] = idx
		return id
	}
	id := &CollegeIdentity{CanonicalName: raw, Aliases: []string{raw}}
	m.identities = append(m.identities, id)
	m.folded = append(m.folded, foldName(raw))
	m.byNorm[norm] = len(m.identities) - 1
	return id
}

// Lookup finds the identity a raw name would resolve to without registering
// anything. Used for joining auxiliary datasets onto the registry.
func (m *Matcher) Lookup(rawName string) (*CollegeIdentity, bool) {
	if idx, ok := m.byNorm[NormalizeName(rawName)]; ok {
		return m.identities[idx], true
	}
	if idx, score := m.bestMatch(foldName(rawName)); score >= m.threshold {
		return m.identities[idx], true
	}
	return nil, false
}

// Identities returns the registry in insertion order.
func (m *Matcher) Identities() []*CollegeIdentity {
	return m.identities
}

// bestMatch scores the folded name against every known identity and returns
// the index of the best one. Ties keep the earliest insertion.
func (m *Matcher) bestMatch(folded string) (int, int) {
	bestIdx, bestScore := -1, -1
	for i, known := range m.folded {
		score := tokenSortRatio(folded, known)
		if score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	return bestIdx, bestScore
}

func (id *CollegeIdentity) addAlias(raw string) {
	if raw == "" {
		return
	}
	for _, a := range id.Aliases {
		if a == raw {
			return
		}
	}
	id.Aliases = append(id.Aliases, raw)
}

// tokenSortRatio scores two normalized names in [0,100]. Tokens are sorted
// before comparison so word order does not matter, then the score is the
// Levenshtein similarity of the rejoined strings.
func tokenSortRatio(a, b string) int {
	sa := sortTokens(a)
	sb := sortTokens(b)
	if sa == sb {
		return 100
	}
	longest := len(sa)
	if len(sb) > longest {
		longest = len(sb)
	}
	if longest == 0 {
		return 100
	}
	dist := matchr.Levenshtein(sa, sb)
	return (longest - dist) * 100 / longest
}

func sortTokens(s string) string {
	fields := strings.Fields(s)
	sort.Strings(fields)
	return strings.Join(fields, " ")
}
