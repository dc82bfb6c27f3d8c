// Package gap implements the demand-inference core: per-cuisine and
// per-attribute gap measures against a zip's geographic neighbors, and the
// composite opportunity score built on top of them.
package gap

// RiskTier buckets a zip's closure rate into a qualitative risk label.
type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// riskOrder ranks tiers for tolerance comparisons and relaxation.
var riskOrder = map[RiskTier]int{RiskLow: 0, RiskMedium: 1, RiskHigh: 2}

// Less reports whether r is a strictly lower-risk tier than other.
func (r RiskTier) Less(other RiskTier) bool {
	return riskOrder[r] < riskOrder[other]
}

// NextHigher returns the next-higher risk tier and ok=false when r is
// already the highest.
func (r RiskTier) NextHigher() (RiskTier, bool) {
	switch r {
	case RiskLow:
		return RiskMedium, true
	case RiskMedium:
		return RiskHigh, true
	default:
		return RiskHigh, false
	}
}

// ParseRiskTier resolves a risk tier name; ok=false for unknown names.
func ParseRiskTier(s string) (RiskTier, bool) {
	switch s {
	case "low":
		return RiskLow, true
	case "medium":
		return RiskMedium, true
	case "high":
		return RiskHigh, true
	default:
		return "", false
	}
}

// Policy carries every named scoring constant.  All values are overridable
// through configuration; Default returns the reference policy.
type Policy struct {
	// RiskLowMax and RiskMediumMax are the closure-rate boundaries of the
	// risk tiers: low < RiskLowMax ≤ medium ≤ RiskMediumMax < high.
	RiskLowMax    float64
	RiskMediumMax float64

	// AttributeGapThreshold is the minimum neighbor-vs-local rate gap for an
	// attribute gap to be considered actionable.
	AttributeGapThreshold float64

	// MinNeighborDemand is the minimum summed neighbor count for a cuisine
	// gap to be emitted at all; below it the regional signal is noise.
	MinNeighborDemand int

	// MinGapScore filters out negligible cuisine gaps.
	MinGapScore float64

	// TopCuisineGaps caps the per-zip cuisine gap list.
	TopCuisineGaps int

	// WeakCompetitorMinGap is the gap score above which existing local
	// competition is considered weak (used by the weakspot filter).
	WeakCompetitorMinGap float64
}

// Default returns the reference policy constants.
func Default() Policy {
	return Policy{
		RiskLowMax:            0.20,
		RiskMediumMax:         0.35,
		AttributeGapThreshold: 0.15,
		MinNeighborDemand:     2,
		MinGapScore:           1.0,
		TopCuisineGaps:        10,
		WeakCompetitorMinGap:  5.0,
	}
}

// RiskTierFor derives the risk tier from a closure rate.  Pure function, no
// hidden state.
func (p Policy) RiskTierFor(closureRate float64) RiskTier {
	switch {
	case closureRate < p.RiskLowMax:
		return RiskLow
	case closureRate <= p.RiskMediumMax:
		return RiskMedium
	default:
		return RiskHigh
	}
}
