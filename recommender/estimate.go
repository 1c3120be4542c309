package recommender

// ChanceBand is the coarse admission-chance label shown next to the numeric
// probability.
type ChanceBand string

const (
	ChanceHigh    ChanceBand = "HIGH"
	ChanceGood    ChanceBand = "GOOD"
	ChanceMedium  ChanceBand = "MEDIUM"
	ChanceLow     ChanceBand = "LOW"
	ChanceVeryLow ChanceBand = "VERY LOW"
)

const (
	// DefaultProbabilityFloor is the probability assigned exactly at the
	// closing rank.
	DefaultProbabilityFloor = 0.1
	// DefaultOverflowMargin is how far past the closing rank, as a fraction
	// of it, the probability decays before reaching zero.
	DefaultOverflowMargin = 0.2
)

// Estimator turns a candidate rank and a historical cutoff window into an
// admission probability. The curve is a deterministic heuristic, total on
// positive ranks and monotonically non-increasing in rank.
type Estimator struct {
	Floor          float64
	OverflowMargin float64
}

// NewEstimator builds an estimator, replacing out-of-range parameters with
// the defaults.
func NewEstimator(floor, overflowMargin float64) Estimator {
	if floor <= 0 || floor >= 1 {
		floor = DefaultProbabilityFloor
	}
	if overflowMargin <= 0 {
		overflowMargin = DefaultOverflowMargin
	}
	return Estimator{Floor: floor, OverflowMargin: overflowMargin}
}

// Probability estimates the admission chance for a rank against an
// opening/closing window:
//
//	rank <= opening            -> 1.0
//	opening < rank <= closing  -> linear from 1.0 down to Floor
//	closing < rank <= limit    -> linear from Floor down to 0, where
//	                              limit = closing * (1 + OverflowMargin)
//	beyond                     -> 0
func (e Estimator) Probability(rank, opening, closing int) float64 {
	if rank <= 0 || opening <= 0 || closing < opening {
		return 0
	}
	if rank <= opening {
		return 1.0
	}
	if rank <= closing {
		if closing == opening {
			return 1.0
		}
		pos := float64(rank-opening) / float64(closing-opening)
		return 1.0 - (1.0-e.Floor)*pos
	}
	limit := float64(closing) * (1 + e.OverflowMargin)
	if float64(rank) <= limit {
		over := float64(rank-closing) / (float64(closing) * e.OverflowMargin)
		return e.Floor * (1 - over)
	}
	return 0
}

// Band labels the rank's standing inside the cutoff window.
func (e Estimator) Band(rank, opening, closing int) ChanceBand {
	if rank <= opening {
		return ChanceHigh
	}
	if rank <= closing {
		if closing == opening {
			return ChanceHigh
		}
		pos := float64(rank-opening) / float64(closing-opening)
		if pos <= 0.5 {
			return ChanceGood
		}
		return ChanceMedium
	}
	overflow := float64(rank-closing) / float64(closing)
	if overflow <= e.OverflowMargin {
		return ChanceLow
	}
	return ChanceVeryLow
}

// categoryPools returns the record categories that can serve a query
// category, grouped into preference tiers. GENERAL and OPEN records form one
// shared pool scanned together; EWS prefers its own records and falls back
// to the shared pool for pairs with no EWS data.
func categoryPools(c Category) [][]Category {
	shared := []Category{CategoryOpen, CategoryGeneral}
	switch c {
	case CategoryGeneral, CategoryOpen:
		return [][]Category{shared}
	case CategoryEWS:
		return [][]Category{{CategoryEWS}, shared}
	default:
		return [][]Category{{c}}
	}
}

func poolHas(pool []Category, c Category) bool {
	for _, p := range pool {
		if p == c {
			return true
		}
	}
	return false
}
