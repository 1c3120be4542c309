package recommender

import (
	"fmt"
	"sort"
	"strings"
)

// Category is a normalized admission seat category.
type Category string

const (
	CategoryOpen    Category = "OPEN"
	CategoryOBC     Category = "OBC-NCL"
	CategorySC      Category = "SC"
	CategoryST      Category = "ST"
	CategoryEWS     Category = "EWS"
	CategoryGeneral Category = "GENERAL"
)

// ParseCategory maps a raw seat-type cell to a normalized category.
// The containment checks are order-sensitive and must not be reordered:
// "OBC-NCL (PwD)" has to resolve before the SC/ST checks get a chance.
func ParseCategory(seatType string) Category {
	upper := strings.ToUpper(strings.TrimSpace(seatType))
	switch {
	case strings.Contains(upper, "OPEN") && !strings.Contains(upper, "PWD"):
		return CategoryOpen
	case strings.Contains(upper, "OBC"):
		return CategoryOBC
	case strings.Contains(upper, "SC"):
		return CategorySC
	case strings.Contains(upper, "ST"):
		return CategoryST
	case strings.Contains(upper, "EWS"):
		return CategoryEWS
	default:
		return CategoryGeneral
	}
}

// Branch is a normalized engineering discipline label.
type Branch string

const (
	BranchComputerScience Branch = "Computer Science"
	BranchElectrical      Branch = "Electrical"
	BranchMechanical      Branch = "Mechanical"
	BranchElectronics     Branch = "Electronics & Communication"
	BranchCivil           Branch = "Civil"
	BranchInfoTech        Branch = "Information Technology"
	BranchChemical        Branch = "Chemical"
	BranchAerospace       Branch = "Aerospace"
	BranchBiotechnology   Branch = "Biotechnology"
	BranchInstrumentation Branch = "Instrumentation"
	BranchMetallurgical   Branch = "Metallurgical"
	BranchMining          Branch = "Mining"
	BranchProduction      Branch = "Production/Industrial"
	BranchTextile         Branch = "Textile"
	BranchAgricultural    Branch = "Agricultural"
	BranchPhysics         Branch = "Engineering Physics"
	BranchMathematics     Branch = "Mathematics"
	BranchOther           Branch = "Other"
)

// CutoffRecord is one historical admission data point after normalization.
type CutoffRecord struct {
	CollegeRaw       string   `json:"collegeRaw"`
	CollegeCanonical string   `json:"collegeCanonical"`
	BranchRaw        string   `json:"branchRaw"`
	Branch           Branch   `json:"branch"`
	Category         Category `json:"category"`
	OpeningRank      int      `json:"openingRank"`
	ClosingRank      int      `json:"closingRank"`
	Year             int      `json:"year,omitempty"`
	Source           string   `json:"source,omitempty"`
}

// CollegeIdentity is the resolved canonical entity for a college. The
// canonical name is the first raw spelling seen for the identity; every
// later spelling that matched lands in Aliases.
type CollegeIdentity struct {
	CanonicalName string   `json:"canonicalName"`
	Aliases       []string `json:"aliases,omitempty"`
	VFMScore      float64  `json:"vfmScore,omitempty"`
	HasVFM        bool     `json:"hasVfm,omitempty"`
}

// MergedTable is the unified, read-only result of a dataset load. Records
// reference identities by canonical name; identities keep their insertion
// order so reruns stay reproducible.
type MergedTable struct {
	Identities []*CollegeIdentity       `json:"identities"`
	Records    []CutoffRecord           `json:"records"`
	BranchVFM  map[string]float64       `json:"branchVfm,omitempty"`
	byName     map[string]*CollegeIdentity
}

// reindex rebuilds the canonical-name lookup after construction or after
// the table was decoded from the model store.
func (t *MergedTable) reindex() {
	t.byName = make(map[string]*CollegeIdentity, len(t.Identities))
	for _, id := range t.Identities {
		t.byName[id.CanonicalName] = id
	}
}

// Identity returns the identity registered under the canonical name.
func (t *MergedTable) Identity(canonical string) (*CollegeIdentity, bool) {
	if t.byName == nil {
		return nil, false
	}
	id, ok := t.byName[canonical]
	return id, ok
}

// Categories lists every category present in the table, sorted.
func (t *MergedTable) Categories() []Category {
	seen := make(map[Category]struct{})
	out := make([]Category, 0)
	for _, r := range t.Records {
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		out = append(out, r.Category)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Branches lists every normalized branch present in the table, sorted.
func (t *MergedTable) Branches() []Branch {
	seen := make(map[Branch]struct{})
	out := make([]Branch, 0)
	for _, r := range t.Records {
		if _, ok := seen[r.Branch]; ok {
			continue
		}
		seen[r.Branch] = struct{}{}
		out = append(out, r.Branch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// branchVFMKey addresses the per-(college, branch) VFM map.
func branchVFMKey(canonical string, branch Branch) string {
	return canonical + " - " + string(branch)
}

// Query is one recommendation request.
type Query struct {
	Rank           int
	Category       Category
	BranchFilter   []Branch
	MinProbability float64
}

func (q Query) wantsBranch(b Branch) bool {
	if len(q.BranchFilter) == 0 {
		return true
	}
	for _, want := range q.BranchFilter {
		if want == b {
			return true
		}
	}
	return false
}

// Entry is a single recommendation produced for a query.
type Entry struct {
	CollegeCanonical string
	Branch           Branch
	Category         Category
	Probability      float64
	Chance           ChanceBand
	VFMScore         float64
	HasVFM           bool
	Composite        float64
	OpeningRank      int
	ClosingRank      int
}

// VFMStars renders a VFM score as a five-star string with half-star
// rounding, e.g. "★★★☆☆ (3.2)".
func VFMStars(score float64) string {
	if score < 0 {
		score = 0
	}
	if score > 5 {
		score = 5
	}
	full := int(score)
	half := 0
	if score-float64(full) >= 0.5 {
		half = 1
	}
	var b strings.Builder
	b.WriteString(strings.Repeat("★", full))
	if half == 1 {
		b.WriteString("☆")
	}
	b.WriteString(strings.Repeat("☆", 5-full-half))
	return fmt.Sprintf("%s (%.1f)", b.String(), score)
}
