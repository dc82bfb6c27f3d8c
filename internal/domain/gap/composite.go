package gap

import (
	"math"

	"github.com/marketgap-io/marketgap/internal/domain/market"
)

// Composite score weights.  The formula is fixed (the weights are the model,
// not tunables):
//
//	score = top_gap×0.6 + ln(total_reviews+1)×2 + actionable_attribute_count×5
//
// The log is the natural log; tests pin literal values against math.Log.
const (
	weightTopGap         = 0.6
	weightMarketSize     = 2.0
	weightAttributeBonus = 5.0
)

// OpportunityScore is the composite ranking value for one zip.
type OpportunityScore struct {
	Score                float64  `json:"score"`
	TopGapScore          float64  `json:"top_gap_score"`
	ActionableAttributes int      `json:"actionable_attributes"`
	Risk                 RiskTier `json:"risk"`
}

// Composite combines a top gap score, market size, and actionable attribute
// count into the opportunity score.  Exposed separately from Score so the
// recommendation matcher can re-blend with a concept-specific top gap.
func Composite(topGap float64, totalReviews, actionableAttrs int) float64 {
	return topGap*weightTopGap +
		math.Log(float64(totalReviews)+1)*weightMarketSize +
		float64(actionableAttrs)*weightAttributeBonus
}

// Score produces the zip's OpportunityScore from its sorted cuisine gaps and
// actionable attribute gaps.  The top gap is the first element of the sorted
// gap list, 0 when the zip has no cuisine gaps.
func (s *Scorer) Score(m *market.ZipMarket, cuisineGaps []CuisineGap, attrGaps []AttributeGap) OpportunityScore {
	topGap := 0.0
	if len(cuisineGaps) > 0 {
		topGap = cuisineGaps[0].GapScore
	}
	return OpportunityScore{
		Score:                Composite(topGap, m.TotalReviews, len(attrGaps)),
		TopGapScore:          topGap,
		ActionableAttributes: len(attrGaps),
		Risk:                 s.policy.RiskTierFor(m.ClosureRate),
	}
}

// ScoreForCuisine recomputes the composite with the gap for one specific
// cuisine as the top gap (0 when the zip has no gap for it).  Used by
// cuisine-filtered listings and the recommendation matcher.
func (s *Scorer) ScoreForCuisine(m *market.ZipMarket, cuisineGaps []CuisineGap, attrGaps []AttributeGap, c market.Cuisine) OpportunityScore {
	topGap := 0.0
	if g, ok := GapFor(cuisineGaps, c); ok {
		topGap = g.GapScore
	}
	return OpportunityScore{
		Score:                Composite(topGap, m.TotalReviews, len(attrGaps)),
		TopGapScore:          topGap,
		ActionableAttributes: len(attrGaps),
		Risk:                 s.policy.RiskTierFor(m.ClosureRate),
	}
}
