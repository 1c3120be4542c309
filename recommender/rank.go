package recommender

import "sort"

const (
	// DefaultProbabilityWeight and DefaultVFMWeight blend admission chance
	// with value for money in the composite score.
	DefaultProbabilityWeight = 0.6
	DefaultVFMWeight         = 0.4
)

// Ranker turns a merged table and a query into an ordered recommendation
// list. Reruns over the same table and query produce byte-identical output.
type Ranker struct {
	Estimator         Estimator
	ProbabilityWeight float64
	VFMWeight         float64
	DefaultVFM        float64
}

// NewRanker builds a ranker; non-positive weights fall back to the defaults.
func NewRanker(est Estimator, probWeight, vfmWeight, defaultVFM float64) Ranker {
	if probWeight <= 0 || vfmWeight < 0 || probWeight+vfmWeight <= 0 {
		probWeight, vfmWeight = DefaultProbabilityWeight, DefaultVFMWeight
	}
	if defaultVFM <= 0 {
		defaultVFM = DefaultVFM
	}
	return Ranker{
		Estimator:         est,
		ProbabilityWeight: probWeight,
		VFMWeight:         vfmWeight,
		DefaultVFM:        defaultVFM,
	}
}

// Recommend scores every (college, branch) pair that can serve the query's
// category and returns the survivors ordered by composite score. Pairs below
// the query's minimum probability are dropped; with no minimum set even
// zero-probability pairs stay, labeled VERY LOW, and sort to the bottom.
func (r Ranker) Recommend(table *MergedTable, q Query) []Entry {
	if table == nil || q.Rank <= 0 {
		return nil
	}
	type pairKey struct {
		college string
		branch  Branch
	}
	best := make(map[pairKey]Entry)
	order := make([]pairKey, 0)

	for _, pool := range categoryPools(q.Category) {
		for _, rec := range table.Records {
			if !poolHas(pool, rec.Category) {
				continue
			}
			if !q.wantsBranch(rec.Branch) {
				continue
			}
			key := pairKey{rec.CollegeCanonical, rec.Branch}
			if _, ok := best[key]; ok {
				continue
			}
			entry, ok := r.scorePair(table, q, key.college, key.branch, pool)
			if !ok {
				continue
			}
			best[key] = entry
			order = append(order, key)
		}
		// Later pools only fill pairs the preferred pool left uncovered,
		// so EWS data always wins over its OPEN fallback.
	}

	out := make([]Entry, 0, len(order))
	for _, key := range order {
		entry := best[key]
		if entry.Probability < q.MinProbability {
			continue
		}
		out = append(out, entry)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Composite != b.Composite {
			return a.Composite > b.Composite
		}
		if a.Probability != b.Probability {
			return a.Probability > b.Probability
		}
		if a.CollegeCanonical != b.CollegeCanonical {
			return a.CollegeCanonical < b.CollegeCanonical
		}
		return a.Branch < b.Branch
	})
	return out
}

// scorePair evaluates one (college, branch) against the query using the
// records of one category pool. With several records (pool members, years,
// sources) the most favorable window wins; ties prefer the later year, then
// the tighter closing rank.
func (r Ranker) scorePair(table *MergedTable, q Query, college string, branch Branch, pool []Category) (Entry, bool) {
	var bestRec CutoffRecord
	bestProb := -1.0
	for _, rec := range table.Records {
		if rec.CollegeCanonical != college || rec.Branch != branch || !poolHas(pool, rec.Category) {
			continue
		}
		p := r.Estimator.Probability(q.Rank, rec.OpeningRank, rec.ClosingRank)
		switch {
		case p > bestProb:
			bestProb, bestRec = p, rec
		case p == bestProb && rec.Year > bestRec.Year:
			bestRec = rec
		case p == bestProb && rec.Year == bestRec.Year && rec.ClosingRank < bestRec.ClosingRank:
			bestRec = rec
		}
	}
	if bestProb < 0 {
		return Entry{}, false
	}

	vfm, hasVFM := r.vfmFor(table, college, branch)
	entry := Entry{
		CollegeCanonical: college,
		Branch:           branch,
		Category:         bestRec.Category,
		Probability:      bestProb,
		Chance:           r.Estimator.Band(q.Rank, bestRec.OpeningRank, bestRec.ClosingRank),
		VFMScore:         vfm,
		HasVFM:           hasVFM,
		OpeningRank:      bestRec.OpeningRank,
		ClosingRank:      bestRec.ClosingRank,
	}
	entry.Composite = r.ProbabilityWeight*bestProb + r.VFMWeight*(vfm/5.0)
	return entry, true
}

func (r Ranker) vfmFor(table *MergedTable, college string, branch Branch) (float64, bool) {
	if score, ok := table.BranchVFM[branchVFMKey(college, branch)]; ok {
		return score, true
	}
	if id, ok := table.Identity(college); ok && id.HasVFM {
		return id.VFMScore * vfmAverageWeight, true
	}
	return r.DefaultVFM, false
}
