package recommendation

import (
	"fmt"
	"sort"

	"github.com/marketgap-io/marketgap/internal/application/analysis"
	"github.com/marketgap-io/marketgap/internal/domain/gap"
	"github.com/marketgap-io/marketgap/internal/domain/market"
)

// step is one relaxation move: a pure transform of the constraints plus a
// per-zip reporter saying whether this particular zip needed the move (a zip
// admitted in a relaxed pass may still satisfy most of the original
// constraints, so issues are computed per result, not per pass).
type step struct {
	description string
	apply       func(constraints) constraints
	issue       func(orig constraints, a *analysis.ZipAnalysis) (string, bool)
}

// buildPlan lays out the relaxation order as data: required attributes are
// dropped one at a time (least-distinctive first), then the price ceiling is
// raised a tier at a time, then the risk set grows a tier at a time, then the
// market-size floor is halved and finally waived.  Steps that cannot change
// the constraint set are omitted.
func buildPlan(orig constraints, attrFreq map[market.Attribute]int) []step {
	var plan []step

	for _, a := range attributesByDistinctiveness(orig.required, attrFreq) {
		plan = append(plan, dropAttributeStep(a))
	}

	if orig.maxPrice > 0 {
		for t := orig.maxPrice + 1; t <= 4; t++ {
			plan = append(plan, raisePriceStep(t))
		}
	}

	if orig.risk != nil {
		for _, r := range []gap.RiskTier{gap.RiskMedium, gap.RiskHigh} {
			if !orig.risk[r] {
				plan = append(plan, expandRiskStep(r))
			}
		}
	}

	if orig.minMarket > 0 {
		if half := orig.minMarket / 2; half > 0 {
			plan = append(plan, lowerMarketFloorStep(half))
		}
		plan = append(plan, lowerMarketFloorStep(0))
	}

	return plan
}

// attributesByDistinctiveness orders required attributes for dropping: the
// attribute whose gap is most common across the snapshot carries the least
// signal, so it goes first.  Ties break by name for stable plans.
func attributesByDistinctiveness(required []market.Attribute, freq map[market.Attribute]int) []market.Attribute {
	out := append([]market.Attribute{}, required...)
	sort.Slice(out, func(i, j int) bool {
		if freq[out[i]] != freq[out[j]] {
			return freq[out[i]] > freq[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

func dropAttributeStep(attr market.Attribute) step {
	return step{
		description: fmt.Sprintf("required attribute %s waived", attr),
		apply: func(cs constraints) constraints {
			out := cs.clone()
			kept := out.required[:0]
			for _, a := range out.required {
				if a != attr {
					kept = append(kept, a)
				}
			}
			out.required = kept
			return out
		},
		issue: func(orig constraints, a *analysis.ZipAnalysis) (string, bool) {
			if !requiredAttr(orig.required, attr) || hasAttributeGap(a, attr) {
				return "", false
			}
			return fmt.Sprintf("required attribute %s waived", attr), true
		},
	}
}

func raisePriceStep(tier int) step {
	return step{
		description: fmt.Sprintf("price ceiling raised to %d", tier),
		apply: func(cs constraints) constraints {
			out := cs.clone()
			out.maxPrice = tier
			return out
		},
		issue: func(orig constraints, a *analysis.ZipAnalysis) (string, bool) {
			p := a.Market.AvgPriceTier
			if orig.maxPrice == 0 || p <= float64(orig.maxPrice) {
				return "", false
			}
			// Report from the one step whose ceiling first admits this zip.
			if p > float64(tier-1) && p <= float64(tier) {
				return fmt.Sprintf("price ceiling raised to %d", tier), true
			}
			return "", false
		},
	}
}

func expandRiskStep(tier gap.RiskTier) step {
	return step{
		description: fmt.Sprintf("risk tolerance expanded to %s", tier),
		apply: func(cs constraints) constraints {
			out := cs.clone()
			out.risk[tier] = true
			return out
		},
		issue: func(orig constraints, a *analysis.ZipAnalysis) (string, bool) {
			zipTier := a.Opportunity.Risk
			if orig.risk[zipTier] || zipTier != tier {
				return "", false
			}
			return fmt.Sprintf("risk tolerance expanded to %s", tier), true
		},
	}
}

func lowerMarketFloorStep(floor int) step {
	d := fmt.Sprintf("market size floor lowered to %d", floor)
	if floor == 0 {
		d = "market size floor waived"
	}
	return step{
		description: d,
		apply: func(cs constraints) constraints {
			out := cs.clone()
			out.minMarket = floor
			return out
		},
		issue: func(orig constraints, a *analysis.ZipAnalysis) (string, bool) {
			if a.Market.TotalReviews >= orig.minMarket {
				return "", false
			}
			// Only the step that first admits the zip reports.
			if a.Market.TotalReviews >= floor {
				prev := orig.minMarket
				if floor == 0 {
					prev = orig.minMarket / 2
				}
				if a.Market.TotalReviews < prev {
					return d, true
				}
			}
			return "", false
		},
	}
}

func requiredAttr(required []market.Attribute, attr market.Attribute) bool {
	for _, a := range required {
		if a == attr {
			return true
		}
	}
	return false
}

func hasAttributeGap(a *analysis.ZipAnalysis, attr market.Attribute) bool {
	for _, g := range a.AttributeGaps {
		if g.Attribute == attr {
			return true
		}
	}
	return false
}
