package opportunity

import (
	"fmt"
	"sort"

	"github.com/marketgap-io/marketgap/internal/domain/gap"
	"github.com/marketgap-io/marketgap/internal/domain/market"
	apperrors "github.com/marketgap-io/marketgap/pkg/errors"
)

// SortKey selects the listing order.
type SortKey string

const (
	SortOpportunityScore SortKey = "opportunity_score"
	SortMarketSize       SortKey = "market_size"
	SortStars            SortKey = "stars"
	SortClosureRisk      SortKey = "closure_risk"
	SortDistanceToTarget SortKey = "distance_to_target"
)

// ParseSortKey resolves a sort key name; empty means opportunity_score.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "", SortOpportunityScore:
		return SortOpportunityScore, nil
	case SortMarketSize, SortStars, SortClosureRisk, SortDistanceToTarget:
		return SortKey(s), nil
	default:
		return "", apperrors.NewValidation(fmt.Sprintf("unknown sort key %q", s))
	}
}

// DefaultListLimit caps listings when the caller does not ask for a limit.
const DefaultListLimit = 20

// ListParams are the optional opportunity-listing filters.  Zero values mean
// "no filter"; Limit 0 means DefaultListLimit.
type ListParams struct {
	// Cuisine restricts the listing to zips with a gap for this cuisine and
	// re-blends the score around it.
	Cuisine *market.Cuisine

	MinGapScore   float64
	MinMarketSize int
	Risk          []gap.RiskTier

	Sort SortKey
	// TargetZip anchors distance_to_target sorting; required for that key.
	TargetZip string

	Limit int
}

func (p ListParams) allowsRisk(r gap.RiskTier) bool {
	if len(p.Risk) == 0 {
		return true
	}
	for _, t := range p.Risk {
		if t == r {
			return true
		}
	}
	return false
}

// List returns ranked zip summaries under the given filters.
func (s *Service) List(p ListParams) ([]ZipSummary, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	if p.Sort == "" {
		p.Sort = SortOpportunityScore
	}
	if p.Limit <= 0 {
		p.Limit = DefaultListLimit
	}
	if p.Sort == SortDistanceToTarget {
		if p.TargetZip == "" {
			return nil, apperrors.NewValidation("sort distance_to_target requires a target zip")
		}
		if !snap.Index.HasGeo(p.TargetZip) {
			return nil, apperrors.New(apperrors.ErrCodeNoGeoData,
				fmt.Sprintf("target zip %s has no geo data", p.TargetZip))
		}
	}

	out := make([]ZipSummary, 0, len(snap.Zips()))
	for _, zip := range snap.Zips() {
		a, _ := snap.Analysis(zip)

		score := a.Opportunity
		gaps := a.CuisineGaps
		topGap := score.TopGapScore
		if p.Cuisine != nil {
			g, ok := gap.GapFor(a.CuisineGaps, *p.Cuisine)
			if !ok {
				continue
			}
			score = s.scorer.ScoreForCuisine(a.Market, a.CuisineGaps, a.AttributeGaps, *p.Cuisine)
			gaps = cuisineFirst(a.CuisineGaps, g)
			topGap = g.GapScore
		}
		if topGap < p.MinGapScore {
			continue
		}
		if a.Market.TotalReviews < p.MinMarketSize {
			continue
		}
		if !p.allowsRisk(score.Risk) {
			continue
		}

		sum := summarize(a, score, gaps)
		if p.Sort == SortDistanceToTarget {
			d, ok := snap.Index.DistanceKM(p.TargetZip, zip)
			if !ok {
				continue
			}
			sum.DistanceKM = &d
		}
		out = append(out, sum)
	}

	sortSummaries(out, p.Sort)
	if len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out, nil
}

// cuisineFirst reorders a gap list so the requested cuisine leads.
func cuisineFirst(gaps []gap.CuisineGap, first gap.CuisineGap) []gap.CuisineGap {
	out := make([]gap.CuisineGap, 0, len(gaps))
	out = append(out, first)
	for _, g := range gaps {
		if g.Cuisine != first.Cuisine {
			out = append(out, g)
		}
	}
	return out
}

// sortSummaries orders the listing.  closure_risk sorts riskiest first: the
// listing is a scan for churn, not a safety ranking.  All keys tie-break by
// zip ascending so output is reproducible.
func sortSummaries(rows []ZipSummary, key SortKey) {
	less := func(i, j int) bool { return rows[i].OpportunityScore > rows[j].OpportunityScore }
	switch key {
	case SortMarketSize:
		less = func(i, j int) bool { return rows[i].TotalReviews > rows[j].TotalReviews }
	case SortStars:
		less = func(i, j int) bool { return rows[i].AvgStars > rows[j].AvgStars }
	case SortClosureRisk:
		less = func(i, j int) bool { return rows[i].ClosureRate > rows[j].ClosureRate }
	case SortDistanceToTarget:
		less = func(i, j int) bool { return *rows[i].DistanceKM < *rows[j].DistanceKM }
	}
	sort.Slice(rows, func(i, j int) bool {
		switch {
		case less(i, j):
			return true
		case less(j, i):
			return false
		default:
			return rows[i].Zip < rows[j].Zip
		}
	})
}
